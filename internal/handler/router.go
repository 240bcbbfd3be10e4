package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/aryan0dhankhar/wellpulse/internal/domain"
	"github.com/aryan0dhankhar/wellpulse/internal/observability/metrics"
	"github.com/aryan0dhankhar/wellpulse/internal/security"
	"github.com/aryan0dhankhar/wellpulse/internal/security/audit"
	"github.com/aryan0dhankhar/wellpulse/internal/security/middleware"
	"github.com/aryan0dhankhar/wellpulse/internal/security/ratelimit"
	"github.com/aryan0dhankhar/wellpulse/internal/service"
)

// Deps is everything the HTTP surface needs
type Deps struct {
	Auth          *service.AuthService
	Companies     *service.CompanyService
	Employees     *service.EmployeeService
	Questions     *service.QuestionService
	Surveys       *service.SurveyService
	Reports       *service.ReportService
	Videos        *service.VideoService
	Gamification  *service.GamificationService
	Payments      *service.PaymentService
	Settings      *service.SettingsService
	Dashboard     *service.DashboardService
	Notifications *service.NotificationService

	Hub     *NotificationHub
	Authz   *security.AuthorizationService
	Scope   *security.ScopeService
	Audit   *audit.Logger
	Limiter *ratelimit.Limiter

	LoginAttemptsPerMin int
	CORSAllowedOrigins  []string
	SanitizeInputs      bool
	Health              map[string]Pinger
	Now                 func() time.Time
	Logger              *slog.Logger
}

// NewRouter registers every endpoint and wraps the mux in the middleware chain
func NewRouter(d Deps) http.Handler {
	log := d.Logger
	if log == nil {
		log = slog.Default()
	}
	if d.Authz == nil {
		d.Authz = security.NewAuthorizationService(log)
	}
	if d.Audit == nil {
		d.Audit = audit.NewLogger(log)
	}
	if d.Hub == nil {
		d.Hub = NewNotificationHub(d.CORSAllowedOrigins, log)
	}

	guard := func(id security.RouteID, h http.HandlerFunc, roles ...domain.Role) http.Handler {
		var next http.Handler = h
		if len(roles) > 0 {
			next = middleware.RequireRoles(roles...)(next)
		}
		return middleware.RequireRoute(d.Authz, id, d.Audit)(next)
	}

	requireFields := func(h http.HandlerFunc, fields ...string) http.HandlerFunc {
		return middleware.ValidateJSONSchema(fields, log)(h).ServeHTTP
	}

	mux := http.NewServeMux()

	health := NewHealthHandler(d.Health, log)
	mux.HandleFunc("GET /healthz", health.Health)
	mux.HandleFunc("GET /readyz", health.Ready)
	mux.Handle("GET /metrics", promhttp.Handler())

	authH := NewAuthHandler(d.Auth, d.Limiter, d.LoginAttemptsPerMin, d.Audit, log)
	mux.HandleFunc("POST /api/auth/login", authH.Login)
	mux.Handle("POST /api/auth/logout", guard(security.RouteHome, authH.Logout))
	mux.Handle("GET /api/auth/me", guard(security.RouteHome, authH.Me))

	routesH := NewRoutesHandler(d.Authz, log)
	mux.Handle("GET /api/routes", guard(security.RouteHome, routesH.List))
	mux.Handle("GET /api/routes/access", guard(security.RouteHome, routesH.Resolve))
	mux.Handle("GET /api/routes/{id}/access", guard(security.RouteHome, routesH.Access))

	companies := NewCompanyHandler(d.Companies, log)
	mux.Handle("GET /api/companies", guard(security.RouteCompanies, companies.List))
	mux.Handle("POST /api/companies", guard(security.RouteCompanies, companies.Create))
	mux.Handle("GET /api/companies/{id}", guard(security.RouteCompanies, companies.Get))
	mux.Handle("PATCH /api/companies/{id}", guard(security.RouteCompanies, companies.Update))
	mux.Handle("DELETE /api/companies/{id}", guard(security.RouteCompanies, companies.Delete))

	employees := NewEmployeeHandler(d.Employees, log)
	mux.Handle("GET /api/employees", guard(security.RouteEmployees, employees.List))
	mux.Handle("POST /api/employees", guard(security.RouteEmployees, employees.Create))
	mux.Handle("GET /api/employees/{id}", guard(security.RouteEmployees, employees.Get))
	mux.Handle("PATCH /api/employees/{id}", guard(security.RouteEmployees, employees.Update))
	mux.Handle("DELETE /api/employees/{id}", guard(security.RouteEmployees, employees.Delete))
	mux.Handle("POST /api/employees/import", guard(security.RouteEmployees, employees.Import))
	mux.Handle("GET /api/employees/export", guard(security.RouteEmployees, employees.Export))
	mux.Handle("GET /api/employees/template", guard(security.RouteEmployees, employees.Template))

	questions := NewQuestionHandler(d.Questions, log)
	mux.Handle("GET /api/questions", guard(security.RouteQuestions, questions.List))
	mux.Handle("POST /api/questions", guard(security.RouteQuestions, questions.Create))
	mux.Handle("GET /api/questions/categories", guard(security.RouteQuestions, questions.Categories))
	mux.Handle("GET /api/questions/{id}", guard(security.RouteQuestions, questions.Get))
	mux.Handle("PATCH /api/questions/{id}", guard(security.RouteQuestions, questions.Update))
	mux.Handle("DELETE /api/questions/{id}", guard(security.RouteQuestions, questions.Delete))

	surveys := NewSurveyHandler(d.Surveys, log)
	mux.Handle("GET /api/surveys", guard(security.RouteSurveys, surveys.List))
	mux.Handle("POST /api/surveys", guard(security.RouteSurveys, surveys.Create))
	mux.Handle("GET /api/surveys/stats", guard(security.RouteSurveys, surveys.Stats))
	mux.Handle("GET /api/surveys/{id}", guard(security.RouteSurveys, surveys.Get))
	mux.Handle("PATCH /api/surveys/{id}", guard(security.RouteSurveys, surveys.Update))
	mux.Handle("DELETE /api/surveys/{id}", guard(security.RouteSurveys, surveys.Delete))
	mux.Handle("POST /api/surveys/{id}/status", guard(security.RouteSurveys, surveys.UpdateStatus))
	mux.Handle("POST /api/surveys/{id}/duplicate", guard(security.RouteSurveys, surveys.Duplicate))
	mux.Handle("GET /api/surveys/{id}/cycles", guard(security.RouteSurveys, surveys.Cycles))
	mux.Handle("POST /api/surveys/{id}/cycles", guard(security.RouteSurveys, surveys.CreateCycle))
	mux.Handle("POST /api/cycles/{id}/close", guard(security.RouteSurveys, surveys.CloseCycle))
	mux.Handle("GET /api/me/surveys/{id}", guard(security.RouteEmployeeSurvey, surveys.View))
	mux.Handle("POST /api/me/surveys/{id}/responses", guard(security.RouteEmployeeSurvey, requireFields(surveys.Submit, "answers")))

	reports := NewReportHandler(d.Reports, d.Scope, log)
	mux.Handle("GET /api/reports", guard(security.RouteReports, reports.List))
	mux.Handle("GET /api/reports/stats", guard(security.RouteReports, reports.Stats, domain.RoleAdmin))
	mux.Handle("POST /api/reports/generate", guard(security.RouteReports, requireFields(reports.Generate, "surveyId"), domain.RoleAdmin))
	mux.Handle("GET /api/reports/{id}", guard(security.RouteReports, reports.Get))
	mux.Handle("DELETE /api/reports/{id}", guard(security.RouteReports, reports.Delete, domain.RoleAdmin))
	mux.Handle("GET /api/reports/{id}/export", guard(security.RouteReports, reports.Export))

	videos := NewVideoHandler(d.Videos, d.Gamification, log)
	mux.Handle("GET /api/videos", guard(security.RouteVideos, videos.List))
	mux.Handle("POST /api/videos", guard(security.RouteVideos, videos.Create))
	mux.Handle("GET /api/videos/categories", guard(security.RouteVideos, videos.Categories))
	mux.Handle("GET /api/videos/{id}", guard(security.RouteVideos, videos.Get))
	mux.Handle("PATCH /api/videos/{id}", guard(security.RouteVideos, videos.Update))
	mux.Handle("DELETE /api/videos/{id}", guard(security.RouteVideos, videos.Delete))
	mux.Handle("GET /api/me/videos", guard(security.RouteEmployeeVideos, videos.Mine))
	mux.Handle("GET /api/me/videos/{id}/quiz", guard(security.RouteEmployeeVideos, videos.Quiz))
	mux.Handle("POST /api/me/videos/{id}/watched", guard(security.RouteEmployeeVideos, videos.Watched))
	mux.Handle("POST /api/me/quizzes/{id}/submit", guard(security.RouteEmployeeVideos, videos.SubmitQuiz))
	mux.Handle("GET /api/me/gamification", guard(security.RouteEmployeeGamification, videos.Progress))
	mux.Handle("GET /api/gamification/leaderboard", guard(security.RouteEmployeeGamification, videos.Leaderboard))

	payments := NewPaymentHandler(d.Payments, log)
	mux.Handle("GET /api/payments", guard(security.RoutePayments, payments.List))
	mux.Handle("POST /api/payments", guard(security.RoutePayments, payments.Create))
	mux.Handle("GET /api/payments/stats", guard(security.RoutePayments, payments.Stats))
	mux.Handle("GET /api/payments/{id}", guard(security.RoutePayments, payments.Get))
	mux.Handle("PATCH /api/payments/{id}", guard(security.RoutePayments, payments.Update))
	mux.Handle("DELETE /api/payments/{id}", guard(security.RoutePayments, payments.Delete))
	mux.Handle("POST /api/payments/{id}/pay", guard(security.RoutePayments, payments.Pay))

	settings := NewSettingsHandler(d.Settings, d.Now, log)
	mux.Handle("GET /api/settings", guard(security.RouteSettings, settings.Get))
	mux.Handle("PATCH /api/settings", guard(security.RouteSettings, settings.Update))
	mux.Handle("PUT /api/settings/business-hours", guard(security.RouteSettings, settings.BusinessHours))
	mux.Handle("POST /api/settings/outside-hours", guard(security.RouteSettings, settings.ToggleOutsideHours))
	mux.Handle("GET /api/settings/business-hours/status", guard(security.RouteSettings, settings.Status))

	dashboards := NewDashboardHandler(d.Dashboard, log)
	mux.Handle("GET /api/dashboard/admin", guard(security.RouteHome, dashboards.Admin, domain.RoleAdmin))
	mux.Handle("GET /api/dashboard/manager", guard(security.RouteManagerDashboard, dashboards.Manager))
	mux.Handle("GET /api/dashboard/employee", guard(security.RouteEmployeeDashboard, dashboards.Employee))

	inbox := NewNotificationHandler(d.Notifications, log)
	mux.Handle("GET /api/me/notifications", guard(security.RouteHome, inbox.List))
	mux.Handle("POST /api/me/notifications/{id}/read", guard(security.RouteHome, inbox.MarkRead))
	mux.Handle("GET /ws/notifications", guard(security.RouteHome, d.Hub.ServeHTTP))

	chain := []func(http.Handler) http.Handler{
		middleware.RequestID(log),
		func(next http.Handler) http.Handler { return otelhttp.NewHandler(next, "wellpulse") },
		metrics.HTTPMetricsMiddleware,
		middleware.CORS(d.CORSAllowedOrigins),
	}
	if d.SanitizeInputs {
		chain = append(chain, middleware.SanitizeInputs(log))
	}
	chain = append(chain,
		middleware.ValidateJSONContentType(log, "/import"),
		middleware.JWTMiddleware(d.Auth, log),
	)
	if d.Limiter != nil {
		chain = append(chain, middleware.RateLimitMiddleware(d.Limiter, log))
	}
	chain = append(chain, middleware.AuditMiddleware(d.Audit))

	return middleware.Chain(mux, chain...)
}
