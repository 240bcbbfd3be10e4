package handler

import (
	"log/slog"
	"net/http"

	"github.com/aryan0dhankhar/wellpulse/internal/service"
)

// DashboardHandler serves one dashboard per role
type DashboardHandler struct {
	svc    *service.DashboardService
	logger *slog.Logger
}

func NewDashboardHandler(svc *service.DashboardService, logger *slog.Logger) *DashboardHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &DashboardHandler{svc: svc, logger: logger}
}

// Admin handles GET /api/dashboard/admin
func (h *DashboardHandler) Admin(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Admin(r.Context())
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// Manager handles GET /api/dashboard/manager for the caller's sector
func (h *DashboardHandler) Manager(w http.ResponseWriter, r *http.Request) {
	claims, err := caller(r)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	stats, err := h.svc.Manager(r.Context(), claims.CompanyID, claims.Sector)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// Employee handles GET /api/dashboard/employee
func (h *DashboardHandler) Employee(w http.ResponseWriter, r *http.Request) {
	claims, err := caller(r)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	stats, err := h.svc.Employee(r.Context(), claims.UserID, claims.CompanyID)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
