package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aryan0dhankhar/wellpulse/internal/domain"
	"github.com/aryan0dhankhar/wellpulse/internal/service"
)

// SettingsHandler serves the settings of one company, chosen by ?companyId
// or the caller's company
type SettingsHandler struct {
	svc    *service.SettingsService
	now    func() time.Time
	logger *slog.Logger
}

func NewSettingsHandler(svc *service.SettingsService, now func() time.Time, logger *slog.Logger) *SettingsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if now == nil {
		now = time.Now
	}
	return &SettingsHandler{svc: svc, now: now, logger: logger}
}

// Get handles GET /api/settings
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.Get(r.Context(), companyParam(r))
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// Update handles PATCH /api/settings
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch map[string]any
	if err := decode(r, &patch); err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	st, err := h.svc.Update(r.Context(), companyParam(r), patch)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// BusinessHours handles PUT /api/settings/business-hours
func (h *SettingsHandler) BusinessHours(w http.ResponseWriter, r *http.Request) {
	var hours domain.BusinessHours
	if err := decode(r, &hours); err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	st, err := h.svc.UpdateBusinessHours(r.Context(), companyParam(r), hours)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// ToggleOutsideHours handles POST /api/settings/outside-hours
func (h *SettingsHandler) ToggleOutsideHours(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.ToggleOutsideHours(r.Context(), companyParam(r))
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// BusinessHoursStatus is whether responses are accepted right now
type BusinessHoursStatus struct {
	CompanyID string    `json:"companyId"`
	Within    bool      `json:"withinBusinessHours"`
	CheckedAt time.Time `json:"checkedAt"`
}

// Status handles GET /api/settings/business-hours/status
func (h *SettingsHandler) Status(w http.ResponseWriter, r *http.Request) {
	companyID := companyParam(r)
	now := h.now()
	within, err := h.svc.IsWithinBusinessHours(r.Context(), companyID, now)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, BusinessHoursStatus{CompanyID: companyID, Within: within, CheckedAt: now})
}
