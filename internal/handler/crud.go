package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/aryan0dhankhar/wellpulse/pkg/pagination"
)

// crudService is the surface every entity service exposes
type crudService[T any] interface {
	GetAll(ctx context.Context, p pagination.Params) (pagination.Page[T], error)
	GetByID(ctx context.Context, id string) (*T, error)
	Create(ctx context.Context, input T) (*T, error)
	Update(ctx context.Context, id string, patch map[string]any) (*T, error)
	Delete(ctx context.Context, id string) error
}

// CRUDHandler serves list/get/create/patch/delete for one entity
type CRUDHandler[T any] struct {
	svc    crudService[T]
	logger *slog.Logger
}

func NewCRUDHandler[T any](svc crudService[T], logger *slog.Logger) *CRUDHandler[T] {
	if logger == nil {
		logger = slog.Default()
	}
	return &CRUDHandler[T]{svc: svc, logger: logger}
}

// List handles GET /api/<entity>?page=&limit=
func (h *CRUDHandler[T]) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.svc.GetAll(r.Context(), pagination.FromQuery(r.URL.Query()))
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// Get handles GET /api/<entity>/{id}
func (h *CRUDHandler[T]) Get(w http.ResponseWriter, r *http.Request) {
	item, err := h.svc.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// Create handles POST /api/<entity>
func (h *CRUDHandler[T]) Create(w http.ResponseWriter, r *http.Request) {
	var input T
	if err := decode(r, &input); err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	created, err := h.svc.Create(r.Context(), input)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// Update handles PATCH /api/<entity>/{id}
func (h *CRUDHandler[T]) Update(w http.ResponseWriter, r *http.Request) {
	var patch map[string]any
	if err := decode(r, &patch); err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	updated, err := h.svc.Update(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// Delete handles DELETE /api/<entity>/{id}
func (h *CRUDHandler[T]) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
