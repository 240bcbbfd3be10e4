package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aryan0dhankhar/wellpulse/internal/domain"
	"github.com/aryan0dhankhar/wellpulse/internal/security"
	"github.com/aryan0dhankhar/wellpulse/internal/security/audit"
	"github.com/aryan0dhankhar/wellpulse/internal/security/auth"
	"github.com/aryan0dhankhar/wellpulse/internal/security/ratelimit"
)

type ClaimsContextKey struct{}

// ClaimsResolver turns a bearer token into verified claims
type ClaimsResolver interface {
	Claims(ctx context.Context, token string) (*auth.Claims, error)
}

// PublicPaths need no token
var PublicPaths = []string{
	"/healthz",
	"/readyz",
	"/metrics",
	"/api/auth/login",
}

func isPublic(path string) bool {
	for _, p := range PublicPaths {
		if path == p {
			return true
		}
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// WithClaims stores verified claims on the context
func WithClaims(ctx context.Context, claims *auth.Claims) context.Context {
	return context.WithValue(ctx, ClaimsContextKey{}, claims)
}

func GetClaimsFromContext(ctx context.Context) *auth.Claims {
	c, _ := ctx.Value(ClaimsContextKey{}).(*auth.Claims)
	return c
}

// GetCompanyFromContext returns the caller's company, or ""
func GetCompanyFromContext(ctx context.Context) string {
	if c := GetClaimsFromContext(ctx); c != nil {
		return c.CompanyID
	}
	return ""
}

// ViewFromContext builds the guard's view of the caller
func ViewFromContext(ctx context.Context) security.SessionView {
	c := GetClaimsFromContext(ctx)
	if c == nil {
		return security.SessionView{}
	}
	return security.SessionView{Authenticated: true, Role: c.Role}
}

// JWTMiddleware verifies the bearer token on every non-public path. Websocket
// upgrades may pass the token as ?token= because browsers cannot set headers.
func JWTMiddleware(resolver ClaimsResolver, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isPublic(r.URL.Path) || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			var tokenString string
			if header := r.Header.Get("Authorization"); header != "" {
				t, err := auth.ExtractToken(header)
				if err != nil {
					writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid auth", "redirect": security.LoginPath})
					return
				}
				tokenString = t
			} else if strings.HasPrefix(r.URL.Path, "/ws/") {
				tokenString = r.URL.Query().Get("token")
			}
			if tokenString == "" {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "authentication required", "redirect": security.LoginPath})
				return
			}

			claims, err := resolver.Claims(r.Context(), tokenString)
			if err != nil {
				log.Info("token rejected",
					slog.String("path", r.URL.Path),
					slog.String("error", err.Error()),
				)
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid token", "redirect": security.LoginPath})
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// RequireRoute guards a handler with a route policy
func RequireRoute(authz *security.AuthorizationService, id security.RouteID, auditLog *audit.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch authz.Check(ViewFromContext(r.Context()), id) {
			case security.DecisionAllow:
				next.ServeHTTP(w, r)
			case security.DecisionRedirectLogin, security.DecisionLoading:
				writeJSON(w, http.StatusUnauthorized, map[string]string{
					"error":    "authentication required",
					"redirect": security.LoginPath,
				})
			default:
				if c := GetClaimsFromContext(r.Context()); auditLog != nil && c != nil {
					auditLog.LogDenied(r.Context(), c.CompanyID, c.UserID, string(id), "role "+string(c.Role))
				}
				writeJSON(w, http.StatusForbidden, map[string]string{
					"error": "access denied",
					"home":  security.HomePath,
				})
			}
		})
	}
}

// RequireRoles admits any authenticated caller whose role is listed
func RequireRoles(roles ...domain.Role) func(http.Handler) http.Handler {
	allowed := security.RoleSet(roles)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			view := ViewFromContext(r.Context())
			if !view.Authenticated {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "authentication required", "redirect": security.LoginPath})
				return
			}
			if !allowed.Contains(view.Role) {
				writeJSON(w, http.StatusForbidden, map[string]string{"error": "access denied", "home": security.HomePath})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RateLimitMiddleware throttles authenticated callers per user
func RateLimitMiddleware(limiter *ratelimit.Limiter, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := GetClaimsFromContext(r.Context())
			if claims == nil {
				next.ServeHTTP(w, r)
				return
			}
			if !limiter.Allow(claims.UserID) {
				log.Warn("rate limit exceeded",
					slog.String("user_id", claims.UserID),
					slog.String("path", r.URL.Path),
				)
				writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": "rate limit exceeded"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// AuditMiddleware writes an audit line for every mutating request
func AuditMiddleware(auditLog *audit.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}
			sw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r)

			companyID, userID := "", ""
			if c := GetClaimsFromContext(r.Context()); c != nil {
				companyID, userID = c.CompanyID, c.UserID
			}
			auditLog.LogMutation(r.Context(), companyID, userID, r.Method, r.URL.Path, sw.status)
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// RequestID attaches a request id to the context and response headers
func RequestID(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := r.Header.Get("X-Request-ID")
			if reqID == "" {
				reqID = uuid.NewString()
			}
			w.Header().Set("X-Request-ID", reqID)
			start := time.Now()

			next.ServeHTTP(w, r.WithContext(audit.WithRequestID(r.Context(), reqID)))

			log.Info("request completed",
				slog.String("request_id", reqID),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Duration("duration_ms", time.Since(start)),
			)
		})
	}
}

// CORS honours the configured origins and answers preflight requests
func CORS(allowed []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if originAllowed(allowed, origin) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
			} else if len(allowed) > 0 {
				w.Header().Set("Access-Control-Allow-Origin", allowed[0])
			}
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept, Authorization, X-Request-ID")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func originAllowed(allowed []string, origin string) bool {
	if origin == "" {
		return false
	}
	for _, a := range allowed {
		if a == "*" || a == origin {
			return true
		}
	}
	return false
}

// Chain applies middlewares so the first one listed runs first
func Chain(h http.Handler, mws ...func(http.Handler) http.Handler) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}
