package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/aryan0dhankhar/wellpulse/internal/domain"
	"github.com/aryan0dhankhar/wellpulse/internal/observability/metrics"
	"github.com/aryan0dhankhar/wellpulse/internal/repository"
	"github.com/aryan0dhankhar/wellpulse/pkg/cache"
	"github.com/aryan0dhankhar/wellpulse/pkg/csvutil"
	"github.com/aryan0dhankhar/wellpulse/pkg/pagination"
)

// PDFPlaceholder is the body returned for PDF exports
const PDFPlaceholder = "PDF Content"

var reportCSVHeaders = []string{"Setor", "Respostas", "Estresse", "Satisfação", "Burnout"}

// Alert thresholds on the 0-10 scale
const (
	stressWarning        = 6.0
	stressCritical       = 7.5
	burnoutWarning       = 6.0
	burnoutCritical      = 7.0
	satisfactionWarning  = 5.0
	satisfactionCritical = 3.5
)

// ReportService builds aggregated reports from survey responses. Generation
// is asynchronous: Generate stores a report in "generating" state and queues
// its id for the report worker.
type ReportService struct {
	*crud[domain.Report, *domain.Report]
	surveys       *SurveyService
	questions     *QuestionService
	notifications *NotificationService
	queue         chan string
	exports       *cache.Cache[string]
	logger        *slog.Logger
}

func NewReportService(
	store *repository.Store,
	surveys *SurveyService,
	questions *QuestionService,
	notifications *NotificationService,
	cfg Config,
	logger *slog.Logger,
) *ReportService {
	if logger == nil {
		logger = slog.Default()
	}
	s := &ReportService{
		surveys:       surveys,
		questions:     questions,
		notifications: notifications,
		queue:         make(chan string, 64),
		exports:       cache.New[string](10 * time.Minute),
		logger:        logger,
	}
	s.crud = newCrud[domain.Report]("report", store.Reports, hooks[domain.Report]{
		defaults: func(r *domain.Report) {
			if r.Status == "" {
				r.Status = domain.ReportPending
			}
		},
		validate: func(_ context.Context, r, _ *domain.Report) error {
			return r.Validate()
		},
		remove: func(r *domain.Report, now time.Time) error {
			r.DeletedAt = &now
			return nil
		},
		visible: func(r *domain.Report) bool {
			return r.DeletedAt == nil
		},
	}, cfg, logger)
	return s
}

// Queue delivers ids of reports waiting to be built
func (s *ReportService) Queue() <-chan string {
	return s.queue
}

func (s *ReportService) ListBySurvey(ctx context.Context, surveyID string, p pagination.Params) (pagination.Page[domain.Report], error) {
	return s.query(ctx, func(r *domain.Report) bool { return r.SurveyID == surveyID }, p)
}

func (s *ReportService) ListByCompany(ctx context.Context, companyID string, p pagination.Params) (pagination.Page[domain.Report], error) {
	return s.query(ctx, func(r *domain.Report) bool { return r.CompanyID == companyID }, p)
}

// ListBySector returns the sector's reports and the company-wide ones
func (s *ReportService) ListBySector(ctx context.Context, companyID, sector string, p pagination.Params) (pagination.Page[domain.Report], error) {
	return s.query(ctx, func(r *domain.Report) bool {
		return r.CompanyID == companyID && r.VisibleToSector(sector)
	}, p)
}

func (s *ReportService) ListByStatus(ctx context.Context, status domain.ReportStatus, p pagination.Params) (pagination.Page[domain.Report], error) {
	return s.query(ctx, func(r *domain.Report) bool { return r.Status == status }, p)
}

// Generate stores a report for the cycle and queues it. An empty cycleID
// uses the survey's active cycle.
func (s *ReportService) Generate(ctx context.Context, surveyID, cycleID, requestedBy string) (*domain.Report, error) {
	sv, err := s.surveys.GetByID(ctx, surveyID)
	if err != nil {
		return nil, err
	}
	var cycle *domain.SurveyCycle
	if cycleID == "" {
		cycle, err = s.surveys.activeCycle(ctx, surveyID)
	} else {
		cycle, err = s.surveys.FindCycle(ctx, cycleID)
	}
	if err != nil {
		return nil, err
	}
	if cycle.SurveyID != sv.ID {
		return nil, domain.Invalid("cycle does not belong to survey")
	}

	r, err := s.Create(ctx, domain.Report{
		SurveyID:    sv.ID,
		CycleID:     cycle.ID,
		CompanyID:   sv.CompanyID,
		Title:       "Relatório - " + sv.Title,
		RequestedBy: requestedBy,
		Status:      domain.ReportGenerating,
		Data:        emptyReportData(),
	})
	if err != nil {
		return nil, err
	}

	select {
	case s.queue <- r.ID:
	default:
		s.discard(ctx, r.ID)
		return nil, domain.Conflict("report queue is full, try again later")
	}
	s.logger.Info("report queued",
		slog.String("report_id", r.ID),
		slog.String("survey_id", sv.ID),
		slog.String("cycle_id", cycle.ID),
	)
	return r, nil
}

// discard soft-deletes a report that never reached the queue
func (s *ReportService) discard(ctx context.Context, id string) {
	now := s.cfg.now()
	_, err := s.mutate(context.WithoutCancel(ctx), id, func(r *domain.Report) error {
		r.DeletedAt = &now
		return nil
	})
	if err != nil {
		s.logger.Error("failed to discard unqueued report",
			slog.String("report_id", id),
			slog.String("error", err.Error()),
		)
	}
}

// Fail moves a report still generating to error. Reports that were deleted
// or already finished are left alone.
func (s *ReportService) Fail(ctx context.Context, id string, cause error) error {
	_, err := s.mutate(ctx, id, func(r *domain.Report) error {
		if r.Status != domain.ReportGenerating {
			return nil
		}
		r.Status = domain.ReportError
		r.Error = cause.Error()
		return nil
	})
	if domain.IsNotFound(err) {
		return nil
	}
	if err != nil {
		return err
	}
	metrics.ObserveReportGeneration("error", 0)
	return nil
}

func emptyReportData() domain.ReportData {
	return domain.ReportData{
		Sectors:  []domain.SectorReport{},
		Insights: []domain.Insight{},
		Charts:   []domain.ChartData{},
	}
}

// Process builds a queued report and moves it to ready, or to error when
// aggregation fails. Deleted reports are skipped.
func (s *ReportService) Process(ctx context.Context, id string) error {
	start := time.Now()
	r, err := s.find(ctx, id)
	if domain.IsNotFound(err) {
		return nil
	}
	if err != nil {
		return err
	}

	data, buildErr := s.build(ctx, r)
	now := s.cfg.now()
	updated, err := s.mutate(ctx, id, func(r *domain.Report) error {
		if buildErr != nil {
			r.Status = domain.ReportError
			r.Error = buildErr.Error()
			return nil
		}
		r.Status = domain.ReportReady
		r.Data = data
		r.Error = ""
		r.GeneratedAt = &now
		return nil
	})
	if domain.IsNotFound(err) {
		return nil
	}
	if err != nil {
		return err
	}

	result := "ready"
	if buildErr != nil {
		result = "error"
		s.logger.Error("report generation failed",
			slog.String("report_id", id),
			slog.String("error", buildErr.Error()),
		)
	} else {
		s.logger.Info("report generated",
			slog.String("report_id", id),
			slog.Int("responses", data.TotalResponses),
		)
	}
	metrics.ObserveReportGeneration(result, time.Since(start))

	if updated.RequestedBy != "" {
		msg := "O relatório \"" + updated.Title + "\" está disponível."
		if buildErr != nil {
			msg = "Falha ao gerar o relatório \"" + updated.Title + "\"."
		}
		if _, err := s.notifications.Notify(ctx, updated.RequestedBy, domain.NotificationReportReady,
			"Relatório atualizado", msg, "/relatorios"); err != nil {
			s.logger.Warn("failed to notify report requester", slog.String("error", err.Error()))
		}
	}
	return nil
}

type tally struct {
	sum   float64
	count int
}

// build aggregates the cycle's responses per sector and question category
func (s *ReportService) build(ctx context.Context, r *domain.Report) (domain.ReportData, error) {
	data := emptyReportData()

	sv, err := s.surveys.find(ctx, r.SurveyID)
	if err != nil {
		return data, fmt.Errorf("survey unavailable: %w", err)
	}
	cycle, err := s.surveys.FindCycle(ctx, r.CycleID)
	if err != nil {
		return data, fmt.Errorf("cycle unavailable: %w", err)
	}
	questions, err := s.questions.byID(ctx, sv.Questions)
	if err != nil {
		return data, err
	}
	responses, err := s.surveys.Responses(ctx, r.CycleID)
	if err != nil {
		return data, err
	}

	var order []string
	counts := map[string]int{}
	scores := map[string]map[string]*tally{}
	for _, resp := range responses {
		if r.Sector != "" && resp.Sector != r.Sector {
			continue
		}
		sector := resp.Sector
		if sector == "" {
			sector = "Geral"
		}
		if _, ok := scores[sector]; !ok {
			order = append(order, sector)
			scores[sector] = map[string]*tally{}
		}
		counts[sector]++
		data.TotalResponses++

		for _, a := range resp.Answers {
			q, ok := questions[a.QuestionID]
			if !ok {
				continue
			}
			score, ok := normalise(q, a)
			if !ok {
				continue
			}
			t := scores[sector][q.Category]
			if t == nil {
				t = &tally{}
				scores[sector][q.Category] = t
			}
			t.sum += score
			t.count++
		}
	}

	sort.Strings(order)
	for _, sector := range order {
		avg := map[string]float64{}
		for category, t := range scores[sector] {
			avg[category] = round1(t.sum / float64(t.count))
		}
		data.Sectors = append(data.Sectors, domain.SectorReport{
			Sector:        sector,
			ResponseCount: counts[sector],
			AverageScores: avg,
			Alerts:        alertsFor(sector, avg),
		})
	}
	if cycle.TargetCount > 0 {
		data.ResponseRate = round1(float64(data.TotalResponses) * 100 / float64(cycle.TargetCount))
	}
	data.Insights = insightsFor(data.Sectors)
	data.Charts = chartsFor(data.Sectors)
	return data, nil
}

// normalise maps an answer onto 0-10. Text answers have no score.
func normalise(q domain.Question, a domain.Answer) (float64, bool) {
	switch q.Type {
	case domain.QuestionScale:
		n, ok := a.Number()
		if !ok || q.ScaleMin == nil || q.ScaleMax == nil || *q.ScaleMax <= *q.ScaleMin {
			return 0, false
		}
		lo, hi := float64(*q.ScaleMin), float64(*q.ScaleMax)
		return math.Max(0, math.Min(10, (n-lo)/(hi-lo)*10)), true
	case domain.QuestionYesNo:
		yes, ok := a.YesNo()
		if !ok {
			return 0, false
		}
		if yes {
			return 10, true
		}
		return 0, true
	case domain.QuestionMultipleChoice:
		text, _ := a.Text()
		if len(q.Options) < 2 {
			return 0, false
		}
		for i, o := range q.Options {
			if o == text {
				return float64(i) / float64(len(q.Options)-1) * 10, true
			}
		}
	}
	return 0, false
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func alertsFor(sector string, avg map[string]float64) []domain.Alert {
	alerts := []domain.Alert{}
	if v, ok := avg[domain.CategoryStress]; ok {
		switch {
		case v >= stressCritical:
			alerts = append(alerts, domain.Alert{Type: domain.AlertStress, Level: domain.AlertCritical,
				Message: fmt.Sprintf("Nível crítico de estresse no setor %s (%.1f)", sector, v)})
		case v >= stressWarning:
			alerts = append(alerts, domain.Alert{Type: domain.AlertStress, Level: domain.AlertWarning,
				Message: fmt.Sprintf("Nível elevado de estresse no setor %s (%.1f)", sector, v)})
		}
	}
	if v, ok := avg[domain.CategoryBurnout]; ok {
		switch {
		case v >= burnoutCritical:
			alerts = append(alerts, domain.Alert{Type: domain.AlertBurnout, Level: domain.AlertCritical,
				Message: fmt.Sprintf("Risco crítico de burnout no setor %s (%.1f)", sector, v)})
		case v >= burnoutWarning:
			alerts = append(alerts, domain.Alert{Type: domain.AlertBurnout, Level: domain.AlertWarning,
				Message: fmt.Sprintf("Sinais de burnout no setor %s (%.1f)", sector, v)})
		}
	}
	if v, ok := avg[domain.CategorySatisfaction]; ok {
		switch {
		case v <= satisfactionCritical:
			alerts = append(alerts, domain.Alert{Type: domain.AlertDissatisfaction, Level: domain.AlertCritical,
				Message: fmt.Sprintf("Insatisfação crítica no setor %s (%.1f)", sector, v)})
		case v <= satisfactionWarning:
			alerts = append(alerts, domain.Alert{Type: domain.AlertDissatisfaction, Level: domain.AlertWarning,
				Message: fmt.Sprintf("Baixa satisfação no setor %s (%.1f)", sector, v)})
		}
	}
	return alerts
}

var insightCategories = []struct {
	category string
	alert    domain.AlertType
	label    string
}{
	{domain.CategoryStress, domain.AlertStress, "estresse"},
	{domain.CategoryBurnout, domain.AlertBurnout, "burnout"},
	{domain.CategorySatisfaction, domain.AlertDissatisfaction, "satisfação"},
}

// insightsFor summarises alerts per category across sectors
func insightsFor(sectors []domain.SectorReport) []domain.Insight {
	insights := []domain.Insight{}
	for _, ic := range insightCategories {
		var measured, warned, critical []string
		for _, sr := range sectors {
			if _, ok := sr.AverageScores[ic.category]; !ok {
				continue
			}
			measured = append(measured, sr.Sector)
			for _, a := range sr.Alerts {
				if a.Type != ic.alert {
					continue
				}
				if a.Level == domain.AlertCritical {
					critical = append(critical, sr.Sector)
				} else {
					warned = append(warned, sr.Sector)
				}
			}
		}
		switch {
		case len(measured) == 0:
			continue
		case len(critical) > 0:
			insights = append(insights, domain.Insight{Category: ic.category, Level: domain.InsightCritical,
				Message:         fmt.Sprintf("Indicadores críticos de %s em %s", ic.label, strings.Join(critical, ", ")),
				AffectedSectors: append(critical, warned...)})
		case len(warned) > 0:
			insights = append(insights, domain.Insight{Category: ic.category, Level: domain.InsightHigh,
				Message:         fmt.Sprintf("Indicadores de %s acima do esperado em %s", ic.label, strings.Join(warned, ", ")),
				AffectedSectors: warned})
		default:
			insights = append(insights, domain.Insight{Category: ic.category, Level: domain.InsightLow,
				Message:         fmt.Sprintf("Indicadores de %s dentro do esperado", ic.label),
				AffectedSectors: measured})
		}
	}
	return insights
}

func chartsFor(sectors []domain.SectorReport) []domain.ChartData {
	if len(sectors) == 0 {
		return []domain.ChartData{}
	}
	labels := make([]string, len(sectors))
	responses := make([]int, len(sectors))
	for i, sr := range sectors {
		labels[i] = sr.Sector
		responses[i] = sr.ResponseCount
	}
	charts := []domain.ChartData{{
		Type:  "pie",
		Title: "Respostas por Setor",
		Data:  map[string]any{"labels": labels, "data": responses},
	}}
	for _, ic := range insightCategories {
		values := make([]any, len(sectors))
		has := false
		for i, sr := range sectors {
			if v, ok := sr.AverageScores[ic.category]; ok {
				values[i] = v
				has = true
			}
		}
		if has {
			charts = append(charts, domain.ChartData{
				Type:  "bar",
				Title: "Índice de " + ic.label + " por Setor",
				Data:  map[string]any{"labels": labels, "data": values},
			})
		}
	}
	return charts
}

func scoreCell(avg map[string]float64, category string) string {
	v, ok := avg[category]
	if !ok {
		return "-"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ExportCSV renders one row per sector. Results are cached per report
// version, so an update produces a fresh export.
func (s *ReportService) ExportCSV(ctx context.Context, id string) (string, error) {
	r, err := s.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	key := r.ID + "@" + strconv.FormatInt(r.UpdatedAt.UnixNano(), 10)
	return s.exports.GetOrLoad(key, func() (string, error) {
		body := csvutil.ToCSV(r.Data.Sectors, reportCSVHeaders, func(sr domain.SectorReport, h string) string {
			switch h {
			case "Setor":
				return sr.Sector
			case "Respostas":
				return strconv.Itoa(sr.ResponseCount)
			case "Estresse":
				return scoreCell(sr.AverageScores, domain.CategoryStress)
			case "Satisfação":
				return scoreCell(sr.AverageScores, domain.CategorySatisfaction)
			case "Burnout":
				return scoreCell(sr.AverageScores, domain.CategoryBurnout)
			}
			return ""
		})
		return body + "\n", nil
	})
}

// ExportPDF returns a placeholder document
func (s *ReportService) ExportPDF(ctx context.Context, id string) ([]byte, error) {
	if _, err := s.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return []byte(PDFPlaceholder), nil
}

// Filename derives a download name from the report title
func Filename(r *domain.Report, ext string) string {
	slug := slugify(r.Title)
	if slug == "" {
		slug = "relatorio-" + r.ID
	}
	return slug + "." + strings.TrimPrefix(ext, ".")
}

func slugify(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	plain, _, err := transform.String(t, s)
	if err != nil {
		plain = s
	}
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(plain) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

func (s *ReportService) Stats(ctx context.Context) (domain.ReportStats, error) {
	var stats domain.ReportStats
	if err := s.wait(ctx); err != nil {
		return stats, err
	}
	items, err := s.list(ctx)
	if err != nil {
		return stats, err
	}
	for _, r := range items {
		stats.Total++
		switch r.Status {
		case domain.ReportReady:
			stats.Ready++
		case domain.ReportGenerating:
			stats.Generating++
		case domain.ReportError:
			stats.Error++
		}
	}
	return stats, nil
}
