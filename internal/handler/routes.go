package handler

import (
	"log/slog"
	"net/http"

	"github.com/aryan0dhankhar/wellpulse/internal/security"
	"github.com/aryan0dhankhar/wellpulse/internal/security/middleware"
)

// RoutesHandler exposes the route guard to clients building menus
type RoutesHandler struct {
	authz  *security.AuthorizationService
	logger *slog.Logger
}

func NewRoutesHandler(authz *security.AuthorizationService, logger *slog.Logger) *RoutesHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &RoutesHandler{authz: authz, logger: logger}
}

// AccessResponse is the guard's answer for one route
type AccessResponse struct {
	Route    security.RouteID  `json:"route"`
	Path     string            `json:"path"`
	Decision security.Decision `json:"decision"`
	Redirect string            `json:"redirect,omitempty"`
	Home     string            `json:"home,omitempty"`
}

// List handles GET /api/routes
func (h *RoutesHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, security.VisibleRoutes(middleware.ViewFromContext(r.Context())))
}

// Access handles GET /api/routes/{id}/access
func (h *RoutesHandler) Access(w http.ResponseWriter, r *http.Request) {
	policy, ok := security.PolicyFor(security.RouteID(r.PathValue("id")))
	if !ok {
		writeMessage(w, http.StatusNotFound, "route not found")
		return
	}
	h.respond(w, r, policy)
}

// Resolve handles GET /api/routes/access?path=/relatorios, matching a
// concrete client path against the route table.
func (h *RoutesHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		writeMessage(w, http.StatusBadRequest, "path is required")
		return
	}
	policy, ok := security.MatchPath(path)
	if !ok {
		writeMessage(w, http.StatusNotFound, "route not found")
		return
	}
	h.respond(w, r, policy)
}

func (h *RoutesHandler) respond(w http.ResponseWriter, r *http.Request, policy security.Policy) {
	resp := AccessResponse{
		Route:    policy.ID,
		Path:     policy.Path,
		Decision: h.authz.Check(middleware.ViewFromContext(r.Context()), policy.ID),
	}
	switch resp.Decision {
	case security.DecisionRedirectLogin:
		resp.Redirect = security.LoginPath
	case security.DecisionAccessDenied:
		resp.Home = security.HomePath
	}
	writeJSON(w, http.StatusOK, resp)
}
