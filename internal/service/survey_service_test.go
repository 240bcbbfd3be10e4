package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aryan0dhankhar/wellpulse/internal/domain"
)

const day = 24 * time.Hour

func TestSurveyStatusOnlyMovesForward(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.surveys.UpdateStatus(env.ctx, "survey-3", domain.SurveyActive)
	assert.True(t, domain.IsInvalid(err))

	_, err = env.surveys.UpdateStatus(env.ctx, "survey-2", "paused")
	assert.True(t, domain.IsInvalid(err))

	sv, err := env.surveys.UpdateStatus(env.ctx, "survey-2", domain.SurveyActive)
	require.NoError(t, err)
	assert.Equal(t, domain.SurveyActive, sv.Status)

	cycle, err := env.surveys.ActiveCycle(env.ctx, "survey-2")
	require.NoError(t, err)
	assert.Equal(t, 15, cycle.TargetCount)
	assert.Equal(t, "company-1", cycle.CompanyID)

	_, err = env.surveys.UpdateStatus(env.ctx, "survey-2", domain.SurveyDraft)
	assert.True(t, domain.IsInvalid(err))

	_, err = env.surveys.UpdateStatus(env.ctx, "survey-2", domain.SurveyClosed)
	require.NoError(t, err)
	_, err = env.surveys.ActiveCycle(env.ctx, "survey-2")
	assert.True(t, domain.IsNotFound(err))

	cycles, err := env.surveys.Cycles(env.ctx, "survey-2")
	require.NoError(t, err)
	require.Len(t, cycles, 1)
	assert.Equal(t, domain.SurveyClosed, cycles[0].Status)
}

func TestPatchingStatusOpensCycle(t *testing.T) {
	env := newTestEnv(t)

	sv, err := env.surveys.Update(env.ctx, "survey-2", map[string]any{"status": "active", "title": "Pulso trimestral"})
	require.NoError(t, err)
	assert.Equal(t, domain.SurveyActive, sv.Status)
	assert.Equal(t, "Pulso trimestral", sv.Title)

	cycle, err := env.surveys.ActiveCycle(env.ctx, "survey-2")
	require.NoError(t, err)
	assert.Equal(t, 15, cycle.TargetCount)

	_, err = env.surveys.Update(env.ctx, "survey-2", map[string]any{"status": "draft", "title": "Voltou"})
	assert.True(t, domain.IsInvalid(err))
	got, err := env.surveys.GetByID(env.ctx, "survey-2")
	require.NoError(t, err)
	assert.Equal(t, "Pulso trimestral", got.Title)

	_, err = env.surveys.Update(env.ctx, "survey-2", map[string]any{"status": 3})
	assert.True(t, domain.IsInvalid(err))

	_, err = env.surveys.Update(env.ctx, "survey-2", map[string]any{"status": "closed"})
	require.NoError(t, err)
	_, err = env.surveys.ActiveCycle(env.ctx, "survey-2")
	assert.True(t, domain.IsNotFound(err))
}

func TestOneActiveCyclePerSurvey(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.surveys.CreateCycle(env.ctx, "survey-1", 10)
	assert.Equal(t, domain.ErrCodeConflict, domain.CodeOf(err))

	closed, err := env.surveys.CloseCycle(env.ctx, "cycle-1")
	require.NoError(t, err)
	assert.Equal(t, domain.SurveyClosed, closed.Status)

	_, err = env.surveys.CloseCycle(env.ctx, "cycle-1")
	assert.Equal(t, domain.ErrCodeConflict, domain.CodeOf(err))

	fresh, err := env.surveys.CreateCycle(env.ctx, "survey-1", 30)
	require.NoError(t, err)
	assert.Equal(t, domain.SurveyActive, fresh.Status)
	assert.Equal(t, 0, fresh.ResponseCount)
	assert.Equal(t, 30, fresh.TargetCount)

	err = env.surveys.cycles.Delete(env.ctx, fresh.ID)
	assert.Equal(t, domain.ErrCodeForbidden, domain.CodeOf(err))
}

func TestSubmitResponse(t *testing.T) {
	env := newTestEnv(t)

	resp, err := env.surveys.SubmitResponse(env.ctx, "survey-1", SubmitRequest{
		UserID: "3", Sector: "Tecnologia", Answers: answersFor(8, true, "Às vezes"),
	})
	require.NoError(t, err)
	assert.Equal(t, "cycle-1", resp.CycleID)
	assert.Equal(t, "company-1", resp.CompanyID)
	assert.Equal(t, "Tecnologia", resp.Sector)
	assert.Equal(t, testNow, resp.SubmittedAt)

	cycle, err := env.surveys.FindCycle(env.ctx, "cycle-1")
	require.NoError(t, err)
	assert.Equal(t, 46, cycle.ResponseCount)

	done, err := env.surveys.Completions(env.ctx, "3")
	require.NoError(t, err)
	require.Len(t, done, 1)
	assert.Equal(t, "cycle-1", done[0].CycleID)

	progress, err := env.gamification.Progress(env.ctx, "3")
	require.NoError(t, err)
	assert.Equal(t, 50, progress.TotalPoints)
	assert.Equal(t, 1, progress.SurveysCompleted)
	assert.True(t, progress.HasBadge("first-survey"))

	view, err := env.surveys.View(env.ctx, "survey-1", "company-1", "3")
	require.NoError(t, err)
	assert.True(t, view.Answered)
	assert.Len(t, view.Questions, 5)

	_, err = env.surveys.SubmitResponse(env.ctx, "survey-1", SubmitRequest{
		UserID: "3", Sector: "Tecnologia", Answers: answersFor(2, true, "Nunca"),
	})
	assert.Equal(t, domain.ErrCodeConflict, domain.CodeOf(err))

	responses, err := env.surveys.Responses(env.ctx, "cycle-1")
	require.NoError(t, err)
	assert.Len(t, responses, 1)
}

func TestSubmitResponseRejectsBadInput(t *testing.T) {
	env := newTestEnv(t)
	valid := answersFor(5, true, "Nunca")

	tests := []struct {
		name     string
		surveyID string
		req      SubmitRequest
		code     domain.ErrorCode
	}{
		{"anonymous caller", "survey-1", SubmitRequest{Answers: valid}, domain.ErrCodeUnauthorized},
		{"no answers", "survey-1", SubmitRequest{UserID: "3"}, domain.ErrCodeInvalid},
		{"unknown survey", "survey-x", SubmitRequest{UserID: "3", Answers: valid}, domain.ErrCodeNotFound},
		{"draft survey", "survey-2", SubmitRequest{UserID: "3", Answers: []domain.Answer{{QuestionID: "q-1", Value: 3.0}}}, domain.ErrCodeInvalid},
		{"foreign question", "survey-1", SubmitRequest{UserID: "3", Answers: []domain.Answer{{QuestionID: "q-99", Value: 3.0}}}, domain.ErrCodeInvalid},
		{"scale out of range", "survey-1", SubmitRequest{UserID: "3", Answers: []domain.Answer{{QuestionID: "q-1", Value: 11.0}}}, domain.ErrCodeInvalid},
		{"scale not a number", "survey-1", SubmitRequest{UserID: "3", Answers: []domain.Answer{{QuestionID: "q-1", Value: "muito"}}}, domain.ErrCodeInvalid},
		{"yes/no maybe", "survey-1", SubmitRequest{UserID: "3", Answers: []domain.Answer{{QuestionID: "q-2", Value: "talvez"}}}, domain.ErrCodeInvalid},
		{"unknown option", "survey-1", SubmitRequest{UserID: "3", Answers: []domain.Answer{{QuestionID: "q-3", Value: "Chefe"}}}, domain.ErrCodeInvalid},
		{"duplicate question", "survey-1", SubmitRequest{UserID: "3", Answers: []domain.Answer{{QuestionID: "q-1", Value: 3.0}, {QuestionID: "q-1", Value: 4.0}}}, domain.ErrCodeInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.surveys.SubmitResponse(env.ctx, tt.surveyID, tt.req)
			require.Error(t, err)
			assert.Equal(t, tt.code, domain.CodeOf(err))
		})
	}

	responses, err := env.surveys.Responses(env.ctx, "cycle-1")
	require.NoError(t, err)
	assert.Empty(t, responses)
}

func TestSubmitResponseHonoursBusinessHours(t *testing.T) {
	env := newTestEnv(t)
	env.advance(8 * time.Hour) // 20:00 in São Paulo

	req := SubmitRequest{UserID: "3", Sector: "Tecnologia", Answers: answersFor(5, true, "Nunca")}
	_, err := env.surveys.SubmitResponse(env.ctx, "survey-1", req)
	assert.Equal(t, domain.ErrCodeForbidden, domain.CodeOf(err))

	_, err = env.settings.ToggleOutsideHours(env.ctx, "company-1")
	require.NoError(t, err)
	_, err = env.surveys.SubmitResponse(env.ctx, "survey-1", req)
	assert.NoError(t, err)
}

func TestSubmitResponseOutsideWindow(t *testing.T) {
	env := newTestEnv(t)
	env.advance(24 * day)

	_, err := env.surveys.SubmitResponse(env.ctx, "survey-1", SubmitRequest{
		UserID: "3", Answers: answersFor(5, true, "Nunca"),
	})
	assert.True(t, domain.IsInvalid(err))
}

func TestCloseExpired(t *testing.T) {
	env := newTestEnv(t)

	cycles, surveys, err := env.surveys.CloseExpired(env.ctx, env.now)
	require.NoError(t, err)
	assert.Zero(t, cycles)
	assert.Zero(t, surveys)

	env.advance(24 * day)
	cycles, surveys, err = env.surveys.CloseExpired(env.ctx, env.now)
	require.NoError(t, err)
	assert.Equal(t, 1, cycles)
	assert.Equal(t, 1, surveys)

	sv, err := env.surveys.GetByID(env.ctx, "survey-1")
	require.NoError(t, err)
	assert.Equal(t, domain.SurveyClosed, sv.Status)
}

func TestDuplicateSurvey(t *testing.T) {
	env := newTestEnv(t)

	cp, err := env.surveys.Duplicate(env.ctx, "survey-1")
	require.NoError(t, err)
	assert.NotEqual(t, "survey-1", cp.ID)
	assert.Equal(t, "Pesquisa de Clima Organizacional (Copy)", cp.Title)
	assert.Equal(t, domain.SurveyDraft, cp.Status)
	assert.Equal(t, []string{"q-1", "q-2", "q-3", "q-4", "q-5"}, cp.Questions)

	_, err = env.surveys.ActiveCycle(env.ctx, cp.ID)
	assert.True(t, domain.IsNotFound(err))
}

func TestSurveyStatsAndViews(t *testing.T) {
	env := newTestEnv(t)

	stats, err := env.surveys.Stats(env.ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.SurveyStats{Total: 3, Active: 1, Draft: 1, Closed: 1}, stats)

	_, err = env.surveys.View(env.ctx, "survey-1", "company-2", "3")
	assert.True(t, domain.IsNotFound(err), "surveys of other companies are hidden")

	view, err := env.surveys.View(env.ctx, "survey-1", "company-1", "3")
	require.NoError(t, err)
	require.NotNil(t, view.Cycle)
	assert.False(t, view.Answered)
	assert.Equal(t, "q-1", view.Questions[0].ID)
}
