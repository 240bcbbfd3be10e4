package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/aryan0dhankhar/wellpulse/internal/domain"
	"github.com/aryan0dhankhar/wellpulse/internal/service"
)

// VideoHandler serves the video library and the employee watch/quiz flow
type VideoHandler struct {
	*CRUDHandler[domain.Video]
	svc          *service.VideoService
	gamification *service.GamificationService
	logger       *slog.Logger
}

func NewVideoHandler(svc *service.VideoService, gamification *service.GamificationService, logger *slog.Logger) *VideoHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &VideoHandler{
		CRUDHandler:  NewCRUDHandler[domain.Video](svc, logger),
		svc:          svc,
		gamification: gamification,
		logger:       logger,
	}
}

// List handles GET /api/videos with an optional category filter
func (h *VideoHandler) List(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	if category == "" {
		h.CRUDHandler.List(w, r)
		return
	}
	items, err := h.svc.ListByCategory(r.Context(), category)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// Categories handles GET /api/videos/categories
func (h *VideoHandler) Categories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.svc.Categories(r.Context())
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cats)
}

// MyVideosResponse is the employee's video library with their progress
type MyVideosResponse struct {
	Videos   []domain.Video         `json:"videos"`
	Progress []domain.VideoProgress `json:"progress"`
}

// Mine handles GET /api/me/videos
func (h *VideoHandler) Mine(w http.ResponseWriter, r *http.Request) {
	claims, err := caller(r)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	videos, err := h.svc.ListActive(r.Context())
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	progress, err := h.svc.Progress(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MyVideosResponse{Videos: videos, Progress: progress})
}

// Quiz handles GET /api/me/videos/{id}/quiz
func (h *VideoHandler) Quiz(w http.ResponseWriter, r *http.Request) {
	q, err := h.svc.Quiz(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

// Watched handles POST /api/me/videos/{id}/watched
func (h *VideoHandler) Watched(w http.ResponseWriter, r *http.Request) {
	claims, err := caller(r)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	p, err := h.svc.MarkWatched(r.Context(), claims.UserID, r.PathValue("id"))
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

type quizRequest struct {
	Answers []int `json:"answers"`
}

// SubmitQuiz handles POST /api/me/quizzes/{id}/submit
func (h *VideoHandler) SubmitQuiz(w http.ResponseWriter, r *http.Request) {
	claims, err := caller(r)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	var req quizRequest
	if err := decode(r, &req); err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	res, err := h.svc.SubmitQuiz(r.Context(), claims.UserID, r.PathValue("id"), req.Answers)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Progress handles GET /api/me/gamification
func (h *VideoHandler) Progress(w http.ResponseWriter, r *http.Request) {
	claims, err := caller(r)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	p, err := h.gamification.Progress(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Leaderboard handles GET /api/gamification/leaderboard?limit=
func (h *VideoHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		limit = v
	}
	entries, err := h.gamification.Leaderboard(r.Context(), limit)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
