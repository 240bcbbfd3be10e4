package handler

import (
	"log/slog"
	"net/http"

	"github.com/aryan0dhankhar/wellpulse/internal/domain"
	"github.com/aryan0dhankhar/wellpulse/internal/service"
	"github.com/aryan0dhankhar/wellpulse/pkg/pagination"
)

// SurveyHandler serves survey management and the employee answering flow
type SurveyHandler struct {
	*CRUDHandler[domain.Survey]
	svc    *service.SurveyService
	logger *slog.Logger
}

func NewSurveyHandler(svc *service.SurveyService, logger *slog.Logger) *SurveyHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SurveyHandler{CRUDHandler: NewCRUDHandler[domain.Survey](svc, logger), svc: svc, logger: logger}
}

// List handles GET /api/surveys with optional status and companyId filters
func (h *SurveyHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	p := pagination.FromQuery(q)
	var (
		page pagination.Page[domain.Survey]
		err  error
	)
	switch {
	case q.Get("status") != "":
		page, err = h.svc.ListByStatus(r.Context(), domain.SurveyStatus(q.Get("status")), p)
	case q.Get("companyId") != "":
		page, err = h.svc.ListByCompany(r.Context(), q.Get("companyId"), p)
	default:
		page, err = h.svc.GetAll(r.Context(), p)
	}
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

type statusRequest struct {
	Status domain.SurveyStatus `json:"status"`
}

// UpdateStatus handles POST /api/surveys/{id}/status
func (h *SurveyHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decode(r, &req); err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	sv, err := h.svc.UpdateStatus(r.Context(), r.PathValue("id"), req.Status)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sv)
}

// Duplicate handles POST /api/surveys/{id}/duplicate
func (h *SurveyHandler) Duplicate(w http.ResponseWriter, r *http.Request) {
	sv, err := h.svc.Duplicate(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sv)
}

// Stats handles GET /api/surveys/stats
func (h *SurveyHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// Cycles handles GET /api/surveys/{id}/cycles
func (h *SurveyHandler) Cycles(w http.ResponseWriter, r *http.Request) {
	cycles, err := h.svc.Cycles(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cycles)
}

type cycleRequest struct {
	TargetCount int `json:"targetCount"`
}

// CreateCycle handles POST /api/surveys/{id}/cycles
func (h *SurveyHandler) CreateCycle(w http.ResponseWriter, r *http.Request) {
	var req cycleRequest
	if err := decode(r, &req); err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	c, err := h.svc.CreateCycle(r.Context(), r.PathValue("id"), req.TargetCount)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// CloseCycle handles POST /api/cycles/{id}/close
func (h *SurveyHandler) CloseCycle(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.CloseCycle(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// View handles GET /api/me/surveys/{id}
func (h *SurveyHandler) View(w http.ResponseWriter, r *http.Request) {
	claims, err := caller(r)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	view, err := h.svc.View(r.Context(), r.PathValue("id"), claims.CompanyID, claims.UserID)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Submit handles POST /api/me/surveys/{id}/responses. Only the caller's
// sector is stored with the answers.
func (h *SurveyHandler) Submit(w http.ResponseWriter, r *http.Request) {
	claims, err := caller(r)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	var req service.SubmitRequest
	if err := decode(r, &req); err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	req.UserID = claims.UserID
	req.Sector = claims.Sector

	sv, err := h.svc.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	if sv.CompanyID != claims.CompanyID {
		writeError(w, h.logger, r, domain.NotFound("survey"))
		return
	}

	resp, err := h.svc.SubmitResponse(r.Context(), r.PathValue("id"), req)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}
