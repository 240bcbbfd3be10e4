package service

import (
	"log/slog"
	"time"

	"github.com/aryan0dhankhar/wellpulse/internal/repository"
)

// Services is every domain service wired over one store
type Services struct {
	Notifications *NotificationService
	Companies     *CompanyService
	Employees     *EmployeeService
	Questions     *QuestionService
	Settings      *SettingsService
	Gamification  *GamificationService
	Surveys       *SurveyService
	Reports       *ReportService
	Payments      *PaymentService
	Videos        *VideoService
	Dashboard     *DashboardService
}

// NewServices wires the services in dependency order. publisher may be nil.
func NewServices(store *repository.Store, publisher Publisher, cfg Config, dashboardTTL time.Duration, logger *slog.Logger) *Services {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Services{}
	s.Notifications = NewNotificationService(store, publisher, cfg, logger)
	s.Companies = NewCompanyService(store, cfg, logger)
	s.Employees = NewEmployeeService(store, s.Notifications, cfg, logger)
	s.Questions = NewQuestionService(store, cfg, logger)
	s.Settings = NewSettingsService(store, cfg, logger)
	s.Gamification = NewGamificationService(store, s.Notifications, cfg, logger)
	s.Surveys = NewSurveyService(store, s.Questions, s.Settings, s.Gamification, cfg, logger)
	s.Reports = NewReportService(store, s.Surveys, s.Questions, s.Notifications, cfg, logger)
	s.Payments = NewPaymentService(store, cfg, logger)
	s.Videos = NewVideoService(store, s.Gamification, cfg, logger)
	s.Dashboard = NewDashboardService(store, s.Surveys, s.Reports, s.Videos, s.Gamification, s.Notifications, dashboardTTL, logger)
	return s
}
