package handler

import (
	"log/slog"
	"net/http"

	"github.com/aryan0dhankhar/wellpulse/internal/domain"
	"github.com/aryan0dhankhar/wellpulse/internal/service"
	"github.com/aryan0dhankhar/wellpulse/pkg/pagination"
)

type PaymentHandler struct {
	*CRUDHandler[domain.Payment]
	svc    *service.PaymentService
	logger *slog.Logger
}

func NewPaymentHandler(svc *service.PaymentService, logger *slog.Logger) *PaymentHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PaymentHandler{CRUDHandler: NewCRUDHandler[domain.Payment](svc, logger), svc: svc, logger: logger}
}

// List handles GET /api/payments with optional companyId and status filters
func (h *PaymentHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	p := pagination.FromQuery(q)
	var (
		page pagination.Page[domain.Payment]
		err  error
	)
	switch {
	case q.Get("companyId") != "":
		page, err = h.svc.ListByCompany(r.Context(), q.Get("companyId"), p)
	case q.Get("status") != "":
		page, err = h.svc.ListByStatus(r.Context(), domain.PaymentStatus(q.Get("status")), p)
	default:
		page, err = h.svc.GetAll(r.Context(), p)
	}
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// Pay handles POST /api/payments/{id}/pay
func (h *PaymentHandler) Pay(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.MarkAsPaid(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Stats handles GET /api/payments/stats
func (h *PaymentHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
