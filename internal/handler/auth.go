package handler

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aryan0dhankhar/wellpulse/internal/security/audit"
	"github.com/aryan0dhankhar/wellpulse/internal/security/ratelimit"
	"github.com/aryan0dhankhar/wellpulse/internal/service"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authService *service.AuthService
	limiter     *ratelimit.Limiter
	maxAttempts int
	audit       *audit.Logger
	logger      *slog.Logger
}

// NewAuthHandler creates a new auth handler. A nil limiter disables the
// per-email login limit.
func NewAuthHandler(authService *service.AuthService, limiter *ratelimit.Limiter, maxAttempts int, auditLog *audit.Logger, logger *slog.Logger) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if auditLog == nil {
		auditLog = audit.NewLogger(logger)
	}

	return &AuthHandler{
		authService: authService,
		limiter:     limiter,
		maxAttempts: maxAttempts,
		audit:       auditLog,
		logger:      logger,
	}
}

// AuthLoginRequest represents login request
type AuthLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req AuthLoginRequest
	if err := decode(r, &req); err != nil {
		h.logger.Warn("failed to decode login request", slog.String("error", err.Error()))
		writeMessage(w, http.StatusBadRequest, "invalid request")
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if h.limiter != nil && email != "" && !h.limiter.AllowStrict("login:"+email, h.maxAttempts, time.Minute) {
		h.audit.LogLogin(r.Context(), email, "throttled")
		writeMessage(w, http.StatusTooManyRequests, "too many login attempts")
		return
	}

	result, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.audit.LogLogin(r.Context(), email, "failed")
		writeError(w, h.logger, r, err)
		return
	}

	h.audit.LogLogin(r.Context(), email, "success")
	writeJSON(w, http.StatusOK, result)
}

// Logout handles POST /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims, err := caller(r)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	if err := h.authService.Logout(r.Context(), claims); err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "logged out"})
}

// Me handles GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, err := caller(r)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	user, err := h.authService.Me(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
