package handler

import (
	"log/slog"
	"net/http"

	"github.com/aryan0dhankhar/wellpulse/internal/domain"
	"github.com/aryan0dhankhar/wellpulse/internal/service"
)

type QuestionHandler struct {
	*CRUDHandler[domain.Question]
	svc    *service.QuestionService
	logger *slog.Logger
}

func NewQuestionHandler(svc *service.QuestionService, logger *slog.Logger) *QuestionHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &QuestionHandler{CRUDHandler: NewCRUDHandler[domain.Question](svc, logger), svc: svc, logger: logger}
}

// List handles GET /api/questions. A category, type or active filter returns
// a plain array instead of a page.
func (h *QuestionHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var (
		items []domain.Question
		err   error
	)
	switch {
	case q.Get("category") != "":
		items, err = h.svc.ListByCategory(r.Context(), q.Get("category"))
	case q.Get("type") != "":
		items, err = h.svc.ListByType(r.Context(), domain.QuestionType(q.Get("type")))
	case q.Get("active") == "true":
		items, err = h.svc.ListActive(r.Context())
	default:
		h.CRUDHandler.List(w, r)
		return
	}
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// Categories handles GET /api/questions/categories
func (h *QuestionHandler) Categories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.svc.Categories(r.Context())
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cats)
}
