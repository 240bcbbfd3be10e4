package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aryan0dhankhar/wellpulse/internal/domain"
	"github.com/aryan0dhankhar/wellpulse/internal/repository"
)

// 12:00 in America/Sao_Paulo, inside the seeded business hours
var testNow = time.Date(2025, 3, 5, 15, 0, 0, 0, time.UTC)

type recordingPublisher struct {
	mu   sync.Mutex
	sent []domain.Notification
}

func (p *recordingPublisher) Publish(n domain.Notification) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, n)
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.sent)
}

type testEnv struct {
	ctx           context.Context
	now           time.Time
	store         *repository.Store
	publisher     *recordingPublisher
	notifications *NotificationService
	companies     *CompanyService
	employees     *EmployeeService
	questions     *QuestionService
	settings      *SettingsService
	gamification  *GamificationService
	surveys       *SurveyService
	reports       *ReportService
	payments      *PaymentService
	videos        *VideoService
	dashboard     *DashboardService
}

// newTestEnv wires every service over a seeded memory store with a clock
// that tests can move through env.now
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{ctx: context.Background(), now: testNow, publisher: &recordingPublisher{}}
	env.store = repository.NewMemoryStore()
	require.NoError(t, repository.Seed(env.ctx, env.store, testNow))

	cfg := Config{Now: func() time.Time { return env.now }}
	svc := NewServices(env.store, env.publisher, cfg, time.Minute, nil)
	env.notifications = svc.Notifications
	env.companies = svc.Companies
	env.employees = svc.Employees
	env.questions = svc.Questions
	env.settings = svc.Settings
	env.gamification = svc.Gamification
	env.surveys = svc.Surveys
	env.reports = svc.Reports
	env.payments = svc.Payments
	env.videos = svc.Videos
	env.dashboard = svc.Dashboard
	return env
}

func (e *testEnv) advance(d time.Duration) {
	e.now = e.now.Add(d)
}

// answersFor builds a valid answer set for the seeded survey-1
func answersFor(stress float64, satisfied bool, burnout string) []domain.Answer {
	yes := "não"
	if satisfied {
		yes = "sim"
	}
	return []domain.Answer{
		{QuestionID: "q-1", Value: stress},
		{QuestionID: "q-2", Value: yes},
		{QuestionID: "q-3", Value: "Carga de trabalho"},
		{QuestionID: "q-4", Value: "Tudo certo"},
		{QuestionID: "q-5", Value: burnout},
	}
}
