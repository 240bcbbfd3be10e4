package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aryan0dhankhar/wellpulse/internal/domain"
	"github.com/aryan0dhankhar/wellpulse/pkg/pagination"
)

func submit(t *testing.T, env *testEnv, userID, sector string, answers []domain.Answer) {
	t.Helper()
	_, err := env.surveys.SubmitResponse(env.ctx, "survey-1", SubmitRequest{UserID: userID, Sector: sector, Answers: answers})
	require.NoError(t, err)
}

func generated(t *testing.T, env *testEnv) *domain.Report {
	t.Helper()
	r, err := env.reports.Generate(env.ctx, "survey-1", "", "1")
	require.NoError(t, err)
	assert.Equal(t, domain.ReportGenerating, r.Status)
	assert.Equal(t, "Relatório - Pesquisa de Clima Organizacional", r.Title)
	assert.Equal(t, "cycle-1", r.CycleID)

	queued := <-env.reports.Queue()
	require.Equal(t, r.ID, queued)
	require.NoError(t, env.reports.Process(env.ctx, r.ID))

	out, err := env.reports.GetByID(env.ctx, r.ID)
	require.NoError(t, err)
	return out
}

func TestReportAggregatesPerSector(t *testing.T) {
	env := newTestEnv(t)
	submit(t, env, "3", "Tecnologia", answersFor(10, true, "Sempre"))
	submit(t, env, "u-2", "Tecnologia", answersFor(10, false, "Sempre"))
	submit(t, env, "u-3", "RH", answersFor(1, true, "Nunca"))

	r := generated(t, env)
	require.Equal(t, domain.ReportReady, r.Status)
	require.NotNil(t, r.GeneratedAt)
	assert.Equal(t, 3, r.Data.TotalResponses)
	assert.Equal(t, 3.0, r.Data.ResponseRate)

	require.Len(t, r.Data.Sectors, 2)
	rh, tech := r.Data.Sectors[0], r.Data.Sectors[1]
	assert.Equal(t, "RH", rh.Sector)
	assert.Equal(t, 1, rh.ResponseCount)
	assert.Equal(t, map[string]float64{"stress": 0, "satisfaction": 10, "burnout": 0}, rh.AverageScores)
	assert.Empty(t, rh.Alerts)

	assert.Equal(t, "Tecnologia", tech.Sector)
	assert.Equal(t, 2, tech.ResponseCount)
	assert.Equal(t, map[string]float64{"stress": 5, "satisfaction": 5, "burnout": 10}, tech.AverageScores)
	require.Len(t, tech.Alerts, 2)
	assert.Equal(t, domain.AlertBurnout, tech.Alerts[0].Type)
	assert.Equal(t, domain.AlertCritical, tech.Alerts[0].Level)
	assert.Equal(t, domain.AlertDissatisfaction, tech.Alerts[1].Type)
	assert.Equal(t, domain.AlertWarning, tech.Alerts[1].Level)

	require.Len(t, r.Data.Insights, 3)
	assert.Equal(t, domain.InsightLow, r.Data.Insights[0].Level)
	assert.Equal(t, domain.InsightCritical, r.Data.Insights[1].Level)
	assert.Equal(t, []string{"Tecnologia"}, r.Data.Insights[1].AffectedSectors)
	assert.Equal(t, domain.InsightHigh, r.Data.Insights[2].Level)
	assert.Len(t, r.Data.Charts, 4)

	notes, err := env.notifications.List(env.ctx, "1")
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, domain.NotificationReportReady, notes[0].Type)

	csv, err := env.reports.ExportCSV(env.ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "Setor,Respostas,Estresse,Satisfação,Burnout\nRH,1,0,10,0\nTecnologia,2,5,5,10\n", csv)
}

func TestReportWithoutResponses(t *testing.T) {
	env := newTestEnv(t)

	r := generated(t, env)
	assert.Equal(t, domain.ReportReady, r.Status)
	assert.Zero(t, r.Data.TotalResponses)
	assert.Empty(t, r.Data.Sectors)
	assert.Empty(t, r.Data.Charts)
}

func TestReportBuildFailureMarksError(t *testing.T) {
	env := newTestEnv(t)

	r, err := env.reports.Create(env.ctx, domain.Report{
		SurveyID: "survey-1", CycleID: "ghost", CompanyID: "company-1", Title: "Quebrado", Status: domain.ReportGenerating,
	})
	require.NoError(t, err)
	require.NoError(t, env.reports.Process(env.ctx, r.ID))

	got, err := env.reports.GetByID(env.ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ReportError, got.Status)
	assert.NotEmpty(t, got.Error)
}

func TestProcessSkipsDeletedReport(t *testing.T) {
	env := newTestEnv(t)

	r, err := env.reports.Generate(env.ctx, "survey-1", "cycle-1", "")
	require.NoError(t, err)
	<-env.reports.Queue()
	require.NoError(t, env.reports.Delete(env.ctx, r.ID))

	assert.NoError(t, env.reports.Process(env.ctx, r.ID))
	stored, err := env.store.Reports.Get(env.ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ReportGenerating, stored.Status)
	assert.NotNil(t, stored.DeletedAt)
}

func TestGenerateValidatesCycle(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.reports.Generate(env.ctx, "survey-1", "cycle-2", "1")
	assert.True(t, domain.IsInvalid(err))

	_, err = env.reports.Generate(env.ctx, "survey-2", "", "1")
	assert.True(t, domain.IsNotFound(err), "draft survey has no active cycle")
}

func TestReportExports(t *testing.T) {
	env := newTestEnv(t)

	csv, err := env.reports.ExportCSV(env.ctx, "report-2")
	require.NoError(t, err)
	assert.Equal(t, "Setor,Respostas,Estresse,Satisfação,Burnout\nConsultoria,78,-,7.9,-\n", csv)

	pdf, err := env.reports.ExportPDF(env.ctx, "report-2")
	require.NoError(t, err)
	assert.Equal(t, PDFPlaceholder, string(pdf))

	_, err = env.reports.ExportPDF(env.ctx, "missing")
	assert.True(t, domain.IsNotFound(err))
}

func TestReportFilename(t *testing.T) {
	tests := []struct {
		title string
		ext   string
		want  string
	}{
		{"Relatório - Pesquisa de Clima Organizacional", "csv", "relatorio-pesquisa-de-clima-organizacional.csv"},
		{"Satisfação Q4 2024!", ".pdf", "satisfacao-q4-2024.pdf"},
		{"***", "csv", "relatorio-r1.csv"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			r := &domain.Report{Base: domain.Base{ID: "r1"}, Title: tt.title}
			assert.Equal(t, tt.want, Filename(r, tt.ext))
		})
	}
}

func TestManagersSeeTheirSectorReports(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.reports.Create(env.ctx, domain.Report{
		SurveyID: "survey-1", CycleID: "cycle-1", CompanyID: "company-1", Sector: "RH", Title: "RH", Status: domain.ReportReady,
	})
	require.NoError(t, err)

	tech, err := env.reports.ListBySector(env.ctx, "company-1", "Tecnologia", pagination.Params{})
	require.NoError(t, err)
	require.Equal(t, 1, tech.Total)
	assert.Equal(t, "report-1", tech.Data[0].ID)

	hr, err := env.reports.ListBySector(env.ctx, "company-1", "RH", pagination.Params{})
	require.NoError(t, err)
	assert.Equal(t, 2, hr.Total)

	stats, err := env.reports.Stats(env.ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.ReportStats{Total: 3, Ready: 3}, stats)
}

func TestGenerateFailsFastWhenQueueIsFull(t *testing.T) {
	env := newTestEnv(t)
	before, err := env.reports.ListByStatus(env.ctx, domain.ReportGenerating, pagination.Params{})
	require.NoError(t, err)

	for i := 0; i < cap(env.reports.queue); i++ {
		_, err := env.reports.Generate(env.ctx, "survey-1", "", "1")
		require.NoError(t, err)
	}

	_, err = env.reports.Generate(env.ctx, "survey-1", "", "1")
	require.Error(t, err)
	assert.Equal(t, domain.ErrCodeConflict, domain.CodeOf(err))

	after, err := env.reports.ListByStatus(env.ctx, domain.ReportGenerating, pagination.Params{})
	require.NoError(t, err)
	assert.Equal(t, before.Total+cap(env.reports.queue), after.Total)
}

func TestFailMovesGeneratingReportToError(t *testing.T) {
	env := newTestEnv(t)
	r, err := env.reports.Generate(env.ctx, "survey-1", "", "1")
	require.NoError(t, err)

	require.NoError(t, env.reports.Fail(env.ctx, r.ID, errors.New("store unavailable")))
	got, err := env.reports.GetByID(env.ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ReportError, got.Status)
	assert.Equal(t, "store unavailable", got.Error)

	// finished reports keep their status
	require.NoError(t, env.reports.Fail(env.ctx, "report-1", errors.New("late")))
	ready, err := env.reports.GetByID(env.ctx, "report-1")
	require.NoError(t, err)
	assert.Equal(t, domain.ReportReady, ready.Status)

	require.NoError(t, env.reports.Fail(env.ctx, "missing", errors.New("gone")))
}
