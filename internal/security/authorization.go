package security

import (
	"log/slog"
	"slices"
	"strings"

	"github.com/aryan0dhankhar/wellpulse/internal/domain"
	"github.com/aryan0dhankhar/wellpulse/internal/observability/metrics"
)

// Landing paths used by guard decisions
const (
	HomePath  = "/"
	LoginPath = "/login"
)

// RouteID names a guarded area of the application
type RouteID string

const (
	RouteHome                 RouteID = "home"
	RouteCompanies            RouteID = "companies"
	RouteEmployees            RouteID = "employees"
	RouteQuestions            RouteID = "questions"
	RouteSurveys              RouteID = "surveys"
	RouteReports              RouteID = "reports"
	RouteVideos               RouteID = "videos"
	RoutePayments             RouteID = "payments"
	RouteSettings             RouteID = "settings"
	RouteManagerDashboard     RouteID = "manager-dashboard"
	RouteManagerReports       RouteID = "manager-reports"
	RouteEmployeeDashboard    RouteID = "employee-dashboard"
	RouteEmployeeSurvey       RouteID = "employee-survey"
	RouteEmployeeVideos       RouteID = "employee-videos"
	RouteEmployeeGamification RouteID = "employee-gamification"
	RouteLogin                RouteID = "login"
)

// RoleSet is the set of roles allowed on a route. Empty means any role.
type RoleSet []domain.Role

func (s RoleSet) Contains(r domain.Role) bool {
	return len(s) == 0 || slices.Contains(s, r)
}

// Policy declares who may reach a route
type Policy struct {
	ID          RouteID `json:"id"`
	Path        string  `json:"path"`
	RequireAuth bool    `json:"requireAuth"`
	Allowed     RoleSet `json:"allowed,omitempty"`
}

func only(roles ...domain.Role) RoleSet { return RoleSet(roles) }

// Routes is the access table, in menu order
var Routes = []Policy{
	{ID: RouteHome, Path: "/", RequireAuth: true},
	{ID: RouteCompanies, Path: "/empresas", RequireAuth: true, Allowed: only(domain.RoleAdmin)},
	{ID: RouteEmployees, Path: "/funcionarios", RequireAuth: true, Allowed: only(domain.RoleAdmin)},
	{ID: RouteQuestions, Path: "/perguntas", RequireAuth: true, Allowed: only(domain.RoleAdmin)},
	{ID: RouteSurveys, Path: "/questionarios", RequireAuth: true, Allowed: only(domain.RoleAdmin)},
	{ID: RouteReports, Path: "/relatorios", RequireAuth: true, Allowed: only(domain.RoleAdmin, domain.RoleManager)},
	{ID: RouteVideos, Path: "/videos", RequireAuth: true, Allowed: only(domain.RoleAdmin)},
	{ID: RoutePayments, Path: "/pagamentos", RequireAuth: true, Allowed: only(domain.RoleAdmin)},
	{ID: RouteSettings, Path: "/configuracoes", RequireAuth: true, Allowed: only(domain.RoleAdmin)},
	{ID: RouteManagerDashboard, Path: "/gerente/dashboard", RequireAuth: true, Allowed: only(domain.RoleManager)},
	{ID: RouteManagerReports, Path: "/gerente/relatorios", RequireAuth: true, Allowed: only(domain.RoleManager)},
	{ID: RouteEmployeeDashboard, Path: "/funcionario/dashboard", RequireAuth: true, Allowed: only(domain.RoleEmployee)},
	{ID: RouteEmployeeSurvey, Path: "/funcionario/questionario/:id", RequireAuth: true, Allowed: only(domain.RoleEmployee)},
	{ID: RouteEmployeeVideos, Path: "/funcionario/videos", RequireAuth: true, Allowed: only(domain.RoleEmployee)},
	{ID: RouteEmployeeGamification, Path: "/funcionario/gamificacao", RequireAuth: true, Allowed: only(domain.RoleEmployee)},
	{ID: RouteLogin, Path: "/login"},
}

// PolicyFor looks up a route by id
func PolicyFor(id RouteID) (Policy, bool) {
	for _, p := range Routes {
		if p.ID == id {
			return p, true
		}
	}
	return Policy{}, false
}

// MatchPath finds the policy for a concrete path. ":param" segments match anything.
func MatchPath(path string) (Policy, bool) {
	want := splitPath(path)
	for _, p := range Routes {
		pattern := splitPath(p.Path)
		if len(pattern) != len(want) {
			continue
		}
		ok := true
		for i, seg := range pattern {
			if !strings.HasPrefix(seg, ":") && seg != want[i] {
				ok = false
				break
			}
		}
		if ok {
			return p, true
		}
	}
	return Policy{}, false
}

func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

// SessionView is what the guard needs to know about the caller
type SessionView struct {
	Loading       bool
	Authenticated bool
	Role          domain.Role
}

// Decision is the outcome of a guard evaluation
type Decision string

const (
	DecisionLoading       Decision = "loading"
	DecisionRedirectLogin Decision = "redirect_login"
	DecisionAccessDenied  Decision = "access_denied"
	DecisionAllow         Decision = "allow"
)

// Evaluate decides access for one request. It has no side effects.
func Evaluate(view SessionView, policy Policy) Decision {
	switch {
	case view.Loading:
		return DecisionLoading
	case policy.RequireAuth && !view.Authenticated:
		return DecisionRedirectLogin
	case policy.RequireAuth && !policy.Allowed.Contains(view.Role):
		return DecisionAccessDenied
	default:
		return DecisionAllow
	}
}

// VisibleRoutes lists the routes the caller would be allowed into
func VisibleRoutes(view SessionView) []Policy {
	out := make([]Policy, 0, len(Routes))
	for _, p := range Routes {
		if !p.RequireAuth {
			continue
		}
		if Evaluate(view, p) == DecisionAllow {
			out = append(out, p)
		}
	}
	return out
}

// AuthorizationService evaluates route policies and records the outcome
type AuthorizationService struct {
	logger *slog.Logger
}

// NewAuthorizationService creates a new authorization service
func NewAuthorizationService(logger *slog.Logger) *AuthorizationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthorizationService{
		logger: logger,
	}
}

// Check evaluates a route for the caller, logging denials
func (as *AuthorizationService) Check(view SessionView, id RouteID) Decision {
	policy, ok := PolicyFor(id)
	if !ok {
		as.logger.Error("unknown route in guard", slog.String("route", string(id)))
		metrics.ObserveGuardDecision(string(id), string(DecisionAccessDenied))
		return DecisionAccessDenied
	}

	decision := Evaluate(view, policy)
	metrics.ObserveGuardDecision(string(id), string(decision))
	if decision == DecisionAccessDenied {
		as.logger.Warn("route access denied",
			slog.String("route", string(id)),
			slog.String("role", string(view.Role)),
		)
	}
	return decision
}
