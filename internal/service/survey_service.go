package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aryan0dhankhar/wellpulse/internal/domain"
	"github.com/aryan0dhankhar/wellpulse/internal/observability/metrics"
	"github.com/aryan0dhankhar/wellpulse/internal/repository"
	"github.com/aryan0dhankhar/wellpulse/pkg/pagination"
)

// SubmitRequest is an employee's answers to a survey. Only Sector is kept
// on the stored response.
type SubmitRequest struct {
	UserID  string          `json:"-"`
	Sector  string          `json:"-"`
	Answers []domain.Answer `json:"answers"`
}

// SurveyView is what an employee sees when opening a survey
type SurveyView struct {
	Survey    domain.Survey       `json:"survey"`
	Questions []domain.Question   `json:"questions"`
	Cycle     *domain.SurveyCycle `json:"cycle,omitempty"`
	Answered  bool                `json:"answered"`
}

// SurveyService manages surveys, their cycles and incoming responses
type SurveyService struct {
	*crud[domain.Survey, *domain.Survey]
	cycles       *crud[domain.SurveyCycle, *domain.SurveyCycle]
	responses    domain.Collection[domain.SurveyResponse]
	completions  domain.Collection[domain.Completion]
	questions    *QuestionService
	settings     *SettingsService
	gamification *GamificationService
	logger       *slog.Logger
}

func NewSurveyService(
	store *repository.Store,
	questions *QuestionService,
	settings *SettingsService,
	gamification *GamificationService,
	cfg Config,
	logger *slog.Logger,
) *SurveyService {
	if logger == nil {
		logger = slog.Default()
	}
	s := &SurveyService{
		responses:    store.Responses,
		completions:  store.Completions,
		questions:    questions,
		settings:     settings,
		gamification: gamification,
		logger:       logger,
	}
	s.crud = newCrud[domain.Survey]("survey", store.Surveys, hooks[domain.Survey]{
		defaults: func(sv *domain.Survey) {
			if sv.Status == "" {
				sv.Status = domain.SurveyDraft
			}
			if sv.Questions == nil {
				sv.Questions = []string{}
			}
		},
		validate: func(_ context.Context, next, prev *domain.Survey) error {
			if err := next.Validate(); err != nil {
				return err
			}
			if prev != nil && !prev.Status.CanMoveTo(next.Status) {
				return domain.Invalidf("survey status cannot move from %s to %s", prev.Status, next.Status)
			}
			return nil
		},
		remove: func(sv *domain.Survey, now time.Time) error {
			sv.DeletedAt = &now
			return nil
		},
		visible: func(sv *domain.Survey) bool {
			return sv.DeletedAt == nil
		},
	}, cfg, logger)
	s.cycles = newCrud[domain.SurveyCycle]("survey_cycle", store.Cycles, hooks[domain.SurveyCycle]{
		validate: func(_ context.Context, c, _ *domain.SurveyCycle) error {
			if c.SurveyID == "" {
				return domain.Invalid("surveyId is required")
			}
			if c.TargetCount < 0 {
				return domain.Invalid("targetCount cannot be negative")
			}
			return nil
		},
	}, cfg, logger)
	return s
}

func (s *SurveyService) ListByStatus(ctx context.Context, status domain.SurveyStatus, p pagination.Params) (pagination.Page[domain.Survey], error) {
	return s.query(ctx, func(sv *domain.Survey) bool { return sv.Status == status }, p)
}

func (s *SurveyService) ListByCompany(ctx context.Context, companyID string, p pagination.Params) (pagination.Page[domain.Survey], error) {
	return s.query(ctx, func(sv *domain.Survey) bool { return sv.CompanyID == companyID }, p)
}

// UpdateStatus moves a survey forward. Activating opens a cycle when none is
// active; closing closes the active cycle.
func (s *SurveyService) UpdateStatus(ctx context.Context, id string, status domain.SurveyStatus) (*domain.Survey, error) {
	if !status.Valid() {
		return nil, domain.Invalidf("unknown survey status %q", status)
	}
	sv, err := s.crud.Update(ctx, id, map[string]any{"status": status})
	if err != nil {
		return nil, err
	}

	switch status {
	case domain.SurveyActive:
		if _, err := s.activeCycle(ctx, id); domain.IsNotFound(err) {
			if _, err := s.CreateCycle(ctx, id, sv.MinResponses); err != nil {
				return nil, err
			}
		} else if err != nil {
			return nil, err
		}
	case domain.SurveyClosed:
		if c, err := s.activeCycle(ctx, id); err == nil {
			if _, err := s.CloseCycle(ctx, c.ID); err != nil {
				return nil, err
			}
		} else if !domain.IsNotFound(err) {
			return nil, err
		}
	}

	s.logger.Info("survey status updated",
		slog.String("survey_id", id),
		slog.String("status", string(status)),
	)
	return sv, nil
}

// Update applies a patch. A status change goes through UpdateStatus so the
// survey's cycles open and close with it.
func (s *SurveyService) Update(ctx context.Context, id string, patch map[string]any) (*domain.Survey, error) {
	raw, ok := patch["status"]
	if !ok {
		return s.crud.Update(ctx, id, patch)
	}
	var status domain.SurveyStatus
	switch v := raw.(type) {
	case string:
		status = domain.SurveyStatus(v)
	case domain.SurveyStatus:
		status = v
	default:
		return nil, domain.Invalid("status must be a string")
	}

	current, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if status == current.Status {
		return s.crud.Update(ctx, id, patch)
	}
	if !status.Valid() {
		return nil, domain.Invalidf("unknown survey status %q", status)
	}
	if !current.Status.CanMoveTo(status) {
		return nil, domain.Invalidf("survey status cannot move from %s to %s", current.Status, status)
	}

	rest := make(map[string]any, len(patch)-1)
	for k, v := range patch {
		if k != "status" {
			rest[k] = v
		}
	}
	if len(rest) > 0 {
		if _, err := s.crud.Update(ctx, id, rest); err != nil {
			return nil, err
		}
	}
	return s.UpdateStatus(ctx, id, status)
}

// Duplicate copies a survey as a new draft without cycles
func (s *SurveyService) Duplicate(ctx context.Context, id string) (*domain.Survey, error) {
	orig, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	cp := *orig
	cp.Title = orig.Title + " (Copy)"
	cp.Status = domain.SurveyDraft
	cp.DeletedAt = nil
	cp.Questions = append([]string{}, orig.Questions...)
	return s.Create(ctx, cp)
}

func (s *SurveyService) Stats(ctx context.Context) (domain.SurveyStats, error) {
	var stats domain.SurveyStats
	if err := s.wait(ctx); err != nil {
		return stats, err
	}
	items, err := s.list(ctx)
	if err != nil {
		return stats, err
	}
	for _, sv := range items {
		stats.Total++
		switch sv.Status {
		case domain.SurveyActive:
			stats.Active++
		case domain.SurveyDraft:
			stats.Draft++
		case domain.SurveyClosed:
			stats.Closed++
		}
	}
	return stats, nil
}

// Cycles lists a survey's cycles in creation order
func (s *SurveyService) Cycles(ctx context.Context, surveyID string) ([]domain.SurveyCycle, error) {
	if _, err := s.GetByID(ctx, surveyID); err != nil {
		return nil, err
	}
	return s.cycles.filter(ctx, func(c *domain.SurveyCycle) bool { return c.SurveyID == surveyID })
}

func (s *SurveyService) activeCycle(ctx context.Context, surveyID string) (*domain.SurveyCycle, error) {
	items, err := s.cycles.filter(ctx, func(c *domain.SurveyCycle) bool {
		return c.SurveyID == surveyID && c.Status == domain.SurveyActive
	})
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, domain.NotFound("active cycle")
	}
	return &items[0], nil
}

// ActiveCycle returns the survey's open cycle
func (s *SurveyService) ActiveCycle(ctx context.Context, surveyID string) (*domain.SurveyCycle, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	return s.activeCycle(ctx, surveyID)
}

// CreateCycle opens a cycle over the survey's dates. A survey has at most
// one active cycle.
func (s *SurveyService) CreateCycle(ctx context.Context, surveyID string, targetCount int) (*domain.SurveyCycle, error) {
	sv, err := s.GetByID(ctx, surveyID)
	if err != nil {
		return nil, err
	}

	s.cycles.mu.Lock()
	defer s.cycles.mu.Unlock()

	if _, err := s.activeCycle(ctx, surveyID); err == nil {
		return nil, domain.Conflict("survey already has an active cycle")
	} else if !domain.IsNotFound(err) {
		return nil, err
	}

	c, err := s.cycles.create(ctx, domain.SurveyCycle{
		SurveyID:    sv.ID,
		CompanyID:   sv.CompanyID,
		StartDate:   sv.StartDate,
		EndDate:     sv.EndDate,
		Status:      domain.SurveyActive,
		TargetCount: targetCount,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("survey cycle opened",
		slog.String("survey_id", surveyID),
		slog.String("cycle_id", c.ID),
	)
	return c, nil
}

// CloseCycle closes an active cycle
func (s *SurveyService) CloseCycle(ctx context.Context, cycleID string) (*domain.SurveyCycle, error) {
	if err := s.cycles.wait(ctx); err != nil {
		return nil, err
	}
	return s.cycles.mutate(ctx, cycleID, func(c *domain.SurveyCycle) error {
		if c.Status == domain.SurveyClosed {
			return domain.Conflict("cycle already closed")
		}
		c.Status = domain.SurveyClosed
		return nil
	})
}

// View returns a survey with its questions for an employee of companyID
func (s *SurveyService) View(ctx context.Context, surveyID, companyID, userID string) (*SurveyView, error) {
	sv, err := s.GetByID(ctx, surveyID)
	if err != nil {
		return nil, err
	}
	if companyID != "" && sv.CompanyID != companyID {
		return nil, domain.NotFound("survey")
	}
	byID, err := s.questions.byID(ctx, sv.Questions)
	if err != nil {
		return nil, err
	}
	view := &SurveyView{Survey: *sv, Questions: make([]domain.Question, 0, len(sv.Questions))}
	for _, id := range sv.Questions {
		if q, ok := byID[id]; ok {
			view.Questions = append(view.Questions, q)
		}
	}
	if c, err := s.activeCycle(ctx, surveyID); err == nil {
		view.Cycle = c
		view.Answered, err = s.answered(ctx, userID, c.ID)
		if err != nil {
			return nil, err
		}
	} else if !domain.IsNotFound(err) {
		return nil, err
	}
	return view, nil
}

func (s *SurveyService) answered(ctx context.Context, userID, cycleID string) (bool, error) {
	if userID == "" {
		return false, nil
	}
	_, err := s.completions.Get(ctx, completionID(userID, cycleID))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, domain.ErrRecordNotFound) {
		return false, nil
	}
	return false, fmt.Errorf("failed to load completion: %w", err)
}

func completionID(userID, cycleID string) string {
	return userID + ":" + cycleID
}

// SubmitResponse stores an anonymised response to the survey's active cycle
func (s *SurveyService) SubmitResponse(ctx context.Context, surveyID string, req SubmitRequest) (resp *domain.SurveyResponse, err error) {
	ctx, finish, err := s.begin(ctx, "submit_response")
	if err != nil {
		return nil, err
	}
	defer finish(&err)

	if req.UserID == "" {
		return nil, domain.Unauthorized("user is required")
	}
	if len(req.Answers) == 0 {
		return nil, domain.Invalid("at least one answer is required")
	}

	sv, err := s.find(ctx, surveyID)
	if err != nil {
		return nil, err
	}
	now := s.cfg.now()
	if sv.Status != domain.SurveyActive {
		return nil, domain.Invalid("survey is not active")
	}
	if !sv.InWindow(now) {
		return nil, domain.Invalid("survey is outside its response window")
	}
	cycle, err := s.activeCycle(ctx, surveyID)
	if domain.IsNotFound(err) {
		return nil, domain.Invalid("survey has no active cycle")
	}
	if err != nil {
		return nil, err
	}
	open, err := s.settings.IsWithinBusinessHours(ctx, sv.CompanyID, now)
	if err != nil {
		return nil, err
	}
	if !open {
		return nil, domain.Forbidden("responses are only accepted during business hours")
	}
	if err := s.checkAnswers(ctx, sv, req.Answers); err != nil {
		return nil, err
	}

	s.mu.Lock()
	answered, err := s.answered(ctx, req.UserID, cycle.ID)
	if err == nil && answered {
		err = domain.Conflict("survey already answered in this cycle")
	}
	if err == nil {
		resp, err = s.record(ctx, sv, cycle, req, now)
	}
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	if _, err := s.cycles.mutate(ctx, cycle.ID, func(c *domain.SurveyCycle) error {
		c.ResponseCount++
		return nil
	}); err != nil {
		return nil, err
	}
	if _, _, err := s.gamification.AddPoints(ctx, req.UserID, domain.ActivitySurvey); err != nil {
		s.logger.Warn("failed to award survey points",
			slog.String("user_id", req.UserID),
			slog.String("error", err.Error()),
		)
	}
	metrics.ObserveSurveyResponse(surveyID)
	s.logger.Info("survey response recorded",
		slog.String("survey_id", surveyID),
		slog.String("cycle_id", cycle.ID),
		slog.String("sector", req.Sector),
	)
	return resp, nil
}

// record writes the response and the completion marker; requires s.mu
func (s *SurveyService) record(ctx context.Context, sv *domain.Survey, cycle *domain.SurveyCycle, req SubmitRequest, now time.Time) (*domain.SurveyResponse, error) {
	resp := domain.SurveyResponse{
		Base:        domain.Base{ID: domain.NewID(now), CreatedAt: now, UpdatedAt: now},
		SurveyID:    sv.ID,
		CycleID:     cycle.ID,
		CompanyID:   sv.CompanyID,
		Sector:      req.Sector,
		Answers:     req.Answers,
		SubmittedAt: now,
	}
	if err := s.responses.Put(ctx, resp.ID, resp); err != nil {
		return nil, fmt.Errorf("failed to store response: %w", err)
	}
	done := domain.Completion{
		Base:     domain.Base{ID: completionID(req.UserID, cycle.ID), CreatedAt: now, UpdatedAt: now},
		UserID:   req.UserID,
		SurveyID: sv.ID,
		CycleID:  cycle.ID,
	}
	if err := s.completions.Put(ctx, done.ID, done); err != nil {
		return nil, fmt.Errorf("failed to store completion: %w", err)
	}
	return &resp, nil
}

// checkAnswers requires every answer to reference a survey question and to
// fit that question's type
func (s *SurveyService) checkAnswers(ctx context.Context, sv *domain.Survey, answers []domain.Answer) error {
	byID, err := s.questions.byID(ctx, sv.Questions)
	if err != nil {
		return err
	}
	seen := map[string]bool{}
	for _, a := range answers {
		if !sv.HasQuestion(a.QuestionID) {
			return domain.Invalidf("question %s is not part of this survey", a.QuestionID)
		}
		if seen[a.QuestionID] {
			return domain.Invalidf("question %s answered twice", a.QuestionID)
		}
		seen[a.QuestionID] = true

		q, ok := byID[a.QuestionID]
		if !ok {
			continue
		}
		switch q.Type {
		case domain.QuestionScale:
			n, ok := a.Number()
			if !ok || (q.ScaleMin != nil && n < float64(*q.ScaleMin)) || (q.ScaleMax != nil && n > float64(*q.ScaleMax)) {
				return domain.Invalidf("answer to %s must be a number on the question's scale", q.ID)
			}
		case domain.QuestionYesNo:
			if _, ok := a.YesNo(); !ok {
				return domain.Invalidf("answer to %s must be yes or no", q.ID)
			}
		case domain.QuestionMultipleChoice:
			text, _ := a.Text()
			valid := false
			for _, o := range q.Options {
				if o == text {
					valid = true
					break
				}
			}
			if !valid {
				return domain.Invalidf("answer to %s must be one of the options", q.ID)
			}
		}
	}
	return nil
}

// Responses returns the stored responses of a cycle
func (s *SurveyService) Responses(ctx context.Context, cycleID string) ([]domain.SurveyResponse, error) {
	all, err := s.responses.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list responses: %w", err)
	}
	out := make([]domain.SurveyResponse, 0)
	for _, r := range all {
		if r.CycleID == cycleID {
			out = append(out, r)
		}
	}
	return out, nil
}

// Completions returns the completion markers of a user
func (s *SurveyService) Completions(ctx context.Context, userID string) ([]domain.Completion, error) {
	all, err := s.completions.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list completions: %w", err)
	}
	out := make([]domain.Completion, 0)
	for _, c := range all {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

// FindCycle returns a cycle by id
func (s *SurveyService) FindCycle(ctx context.Context, cycleID string) (*domain.SurveyCycle, error) {
	return s.cycles.find(ctx, cycleID)
}

// AllCycles lists every cycle, used by dashboards
func (s *SurveyService) AllCycles(ctx context.Context) ([]domain.SurveyCycle, error) {
	return s.cycles.list(ctx)
}

// CloseExpired closes active cycles whose end date has passed, then closes
// active surveys that were left without an active cycle
func (s *SurveyService) CloseExpired(ctx context.Context, now time.Time) (cycles, surveys int, err error) {
	expired, err := s.cycles.filter(ctx, func(c *domain.SurveyCycle) bool {
		return c.Status == domain.SurveyActive && !c.EndDate.IsZero() && now.After(c.EndDate)
	})
	if err != nil {
		return 0, 0, err
	}
	touched := map[string]bool{}
	for _, c := range expired {
		if _, err := s.cycles.mutate(ctx, c.ID, func(c *domain.SurveyCycle) error {
			c.Status = domain.SurveyClosed
			return nil
		}); err != nil {
			return cycles, surveys, err
		}
		cycles++
		touched[c.SurveyID] = true
	}

	for surveyID := range touched {
		if _, err := s.activeCycle(ctx, surveyID); err == nil {
			continue
		} else if !domain.IsNotFound(err) {
			return cycles, surveys, err
		}
		_, err := s.mutate(ctx, surveyID, func(sv *domain.Survey) error {
			if sv.Status != domain.SurveyActive {
				return errSkip
			}
			sv.Status = domain.SurveyClosed
			return nil
		})
		switch {
		case err == nil:
			surveys++
		case err == errSkip, domain.IsNotFound(err):
		default:
			return cycles, surveys, err
		}
	}
	return cycles, surveys, nil
}
