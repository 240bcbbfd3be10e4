package repository

import (
	"database/sql"
	"log/slog"

	"github.com/aryan0dhankhar/wellpulse/internal/domain"
)

// Store is the process-wide set of collections. It is built once at startup
// and handed to every service.
type Store struct {
	Companies     domain.Collection[domain.Company]
	Employees     domain.Collection[domain.Employee]
	Questions     domain.Collection[domain.Question]
	Surveys       domain.Collection[domain.Survey]
	Cycles        domain.Collection[domain.SurveyCycle]
	Responses     domain.Collection[domain.SurveyResponse]
	Completions   domain.Collection[domain.Completion]
	Reports       domain.Collection[domain.Report]
	Payments      domain.Collection[domain.Payment]
	Videos        domain.Collection[domain.Video]
	Quizzes       domain.Collection[domain.Quiz]
	VideoProgress domain.Collection[domain.VideoProgress]
	Gamification  domain.Collection[domain.GamificationProgress]
	Notifications domain.Collection[domain.Notification]
	Settings      domain.Collection[domain.Settings]
}

// Record kinds, used as the partition key in the records table
const (
	KindCompanies     = "companies"
	KindEmployees     = "employees"
	KindQuestions     = "questions"
	KindSurveys       = "surveys"
	KindCycles        = "survey_cycles"
	KindResponses     = "survey_responses"
	KindCompletions   = "survey_completions"
	KindReports       = "reports"
	KindPayments      = "payments"
	KindVideos        = "videos"
	KindQuizzes       = "quizzes"
	KindVideoProgress = "video_progress"
	KindGamification  = "gamification"
	KindNotifications = "notifications"
	KindSettings      = "settings"
)

// NewMemoryStore returns an empty in-process store
func NewMemoryStore() *Store {
	return &Store{
		Companies:     NewMemoryCollection[domain.Company](KindCompanies),
		Employees:     NewMemoryCollection[domain.Employee](KindEmployees),
		Questions:     NewMemoryCollection[domain.Question](KindQuestions),
		Surveys:       NewMemoryCollection[domain.Survey](KindSurveys),
		Cycles:        NewMemoryCollection[domain.SurveyCycle](KindCycles),
		Responses:     NewMemoryCollection[domain.SurveyResponse](KindResponses),
		Completions:   NewMemoryCollection[domain.Completion](KindCompletions),
		Reports:       NewMemoryCollection[domain.Report](KindReports),
		Payments:      NewMemoryCollection[domain.Payment](KindPayments),
		Videos:        NewMemoryCollection[domain.Video](KindVideos),
		Quizzes:       NewMemoryCollection[domain.Quiz](KindQuizzes),
		VideoProgress: NewMemoryCollection[domain.VideoProgress](KindVideoProgress),
		Gamification:  NewMemoryCollection[domain.GamificationProgress](KindGamification),
		Notifications: NewMemoryCollection[domain.Notification](KindNotifications),
		Settings:      NewMemoryCollection[domain.Settings](KindSettings),
	}
}

// NewPostgresStore returns a store backed by the records table. The schema
// must already be migrated (see database.Migrate).
func NewPostgresStore(db *sql.DB, logger *slog.Logger) *Store {
	return &Store{
		Companies:     NewPostgresCollection[domain.Company](db, KindCompanies, logger),
		Employees:     NewPostgresCollection[domain.Employee](db, KindEmployees, logger),
		Questions:     NewPostgresCollection[domain.Question](db, KindQuestions, logger),
		Surveys:       NewPostgresCollection[domain.Survey](db, KindSurveys, logger),
		Cycles:        NewPostgresCollection[domain.SurveyCycle](db, KindCycles, logger),
		Responses:     NewPostgresCollection[domain.SurveyResponse](db, KindResponses, logger),
		Completions:   NewPostgresCollection[domain.Completion](db, KindCompletions, logger),
		Reports:       NewPostgresCollection[domain.Report](db, KindReports, logger),
		Payments:      NewPostgresCollection[domain.Payment](db, KindPayments, logger),
		Videos:        NewPostgresCollection[domain.Video](db, KindVideos, logger),
		Quizzes:       NewPostgresCollection[domain.Quiz](db, KindQuizzes, logger),
		VideoProgress: NewPostgresCollection[domain.VideoProgress](db, KindVideoProgress, logger),
		Gamification:  NewPostgresCollection[domain.GamificationProgress](db, KindGamification, logger),
		Notifications: NewPostgresCollection[domain.Notification](db, KindNotifications, logger),
		Settings:      NewPostgresCollection[domain.Settings](db, KindSettings, logger),
	}
}
