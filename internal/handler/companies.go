package handler

import (
	"log/slog"
	"net/http"

	"github.com/aryan0dhankhar/wellpulse/internal/domain"
	"github.com/aryan0dhankhar/wellpulse/internal/service"
)

type CompanyHandler struct {
	*CRUDHandler[domain.Company]
	svc    *service.CompanyService
	logger *slog.Logger
}

func NewCompanyHandler(svc *service.CompanyService, logger *slog.Logger) *CompanyHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CompanyHandler{CRUDHandler: NewCRUDHandler[domain.Company](svc, logger), svc: svc, logger: logger}
}

// List handles GET /api/companies. With active=true it returns the active
// companies as a plain array.
func (h *CompanyHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("active") != "true" {
		h.CRUDHandler.List(w, r)
		return
	}
	items, err := h.svc.ListActive(r.Context())
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}
