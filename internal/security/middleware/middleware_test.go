package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aryan0dhankhar/wellpulse/internal/domain"
	"github.com/aryan0dhankhar/wellpulse/internal/security"
	"github.com/aryan0dhankhar/wellpulse/internal/security/audit"
	"github.com/aryan0dhankhar/wellpulse/internal/security/auth"
	"github.com/aryan0dhankhar/wellpulse/internal/security/ratelimit"
)

type fakeResolver map[string]*auth.Claims

func (f fakeResolver) Claims(_ context.Context, token string) (*auth.Claims, error) {
	c, ok := f[token]
	if !ok {
		return nil, errors.New("bad token")
	}
	return c, nil
}

var resolver = fakeResolver{
	"admin":    {UserID: "1", Role: domain.RoleAdmin, CompanyID: "company-1"},
	"employee": {UserID: "3", Role: domain.RoleEmployee, CompanyID: "company-1"},
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func ok() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestJWTMiddleware(t *testing.T) {
	var seen *auth.Claims
	h := JWTMiddleware(resolver, discard())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetClaimsFromContext(r.Context())
	}))

	cases := []struct {
		name   string
		path   string
		header string
		status int
	}{
		{"public path", "/healthz", "", http.StatusOK},
		{"missing token", "/api/companies", "", http.StatusUnauthorized},
		{"malformed header", "/api/companies", "Token admin", http.StatusUnauthorized},
		{"unknown token", "/api/companies", "Bearer nope", http.StatusUnauthorized},
		{"valid token", "/api/companies", "Bearer admin", http.StatusOK},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			seen = nil
			req := httptest.NewRequest(http.MethodGet, c.path, nil)
			if c.header != "" {
				req.Header.Set("Authorization", c.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, c.status, rec.Code)
			if c.status == http.StatusUnauthorized {
				assert.Equal(t, "/login", decode(t, rec)["redirect"])
			}
		})
	}

	req := httptest.NewRequest(http.MethodGet, "/api/companies", nil)
	req.Header.Set("Authorization", "Bearer admin")
	h.ServeHTTP(httptest.NewRecorder(), req)
	require.NotNil(t, seen)
	assert.Equal(t, "1", seen.UserID)
}

func TestJWTMiddlewareWebsocketQueryToken(t *testing.T) {
	h := JWTMiddleware(resolver, discard())(ok())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ws/notifications?token=employee", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/companies?token=employee", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRoute(t *testing.T) {
	h := JWTMiddleware(resolver, discard())(
		RequireRoute(security.NewAuthorizationService(discard()), security.RouteCompanies, audit.NewLogger(discard()))(ok()),
	)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/companies", nil)
	req.Header.Set("Authorization", "Bearer employee")
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, map[string]string{"error": "access denied", "home": "/"}, decode(t, rec))

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/companies", nil)
	req.Header.Set("Authorization", "Bearer admin")
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	// guard alone, without a token on the context
	rec = httptest.NewRecorder()
	RequireRoute(security.NewAuthorizationService(discard()), security.RouteCompanies, nil)(ok()).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/companies", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, map[string]string{"error": "authentication required", "redirect": "/login"}, decode(t, rec))
}

func TestRequireRoles(t *testing.T) {
	h := RequireRoles(domain.RoleManager, domain.RoleAdmin)(ok())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req.WithContext(WithClaims(req.Context(), resolver["admin"])))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req.WithContext(WithClaims(req.Context(), resolver["employee"])))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRateLimitMiddleware(t *testing.T) {
	limiter := ratelimit.NewLimiter(1, time.Minute)
	defer limiter.Stop()
	h := RateLimitMiddleware(limiter, discard())(ok())

	req := httptest.NewRequest(http.MethodGet, "/api/companies", nil)
	req = req.WithContext(WithClaims(req.Context(), resolver["admin"]))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code, "anonymous callers are not limited here")
}

func TestAuditMiddlewareLogsMutations(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	h := RequestID(discard())(AuditMiddleware(audit.NewLogger(logger))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/companies", nil))
	assert.Empty(t, buf.String())

	req := httptest.NewRequest(http.MethodPost, "/api/companies", nil)
	req.Header.Set("X-Request-ID", "req-42")
	req = req.WithContext(WithClaims(req.Context(), resolver["admin"]))
	h.ServeHTTP(httptest.NewRecorder(), req)

	line := buf.String()
	assert.Contains(t, line, `"action":"POST"`)
	assert.Contains(t, line, `"status":"success"`)
	assert.Contains(t, line, `"request_id":"req-42"`)
	assert.Contains(t, line, `"company_id":"company-1"`)
}

func TestCORS(t *testing.T) {
	h := CORS([]string{"http://localhost:5173"})(ok())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/api/companies", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/companies", nil)
	req.Header.Set("Origin", "http://evil.example")
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestValidateJSONContentType(t *testing.T) {
	h := ValidateJSONContentType(discard(), "/import")(ok())

	cases := []struct {
		path, contentType string
		status            int
	}{
		{"/api/companies", "application/json; charset=utf-8", http.StatusOK},
		{"/api/companies", "text/plain", http.StatusUnsupportedMediaType},
		{"/api/employees/import", "text/csv", http.StatusOK},
	}
	for _, c := range cases {
		req := httptest.NewRequest(http.MethodPost, c.path, strings.NewReader("x"))
		req.Header.Set("Content-Type", c.contentType)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, c.status, rec.Code, c.path+" "+c.contentType)
	}
}

func TestValidateJSONSchemaRestoresBody(t *testing.T) {
	var got []byte
	h := ValidateJSONSchema([]string{"email"}, discard())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = io.ReadAll(r.Body)
	}))

	body := `{"email":"a@b.com","password":"x"}`
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, body, string(got))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"password":"x"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "missing required field: email", decode(t, rec)["error"])

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSanitizeInputs(t *testing.T) {
	h := SanitizeInputs(discard())(ok())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/employees?search=%3Cscript%3E", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/employees?page=2", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestChainOrder(t *testing.T) {
	var order []string
	mw := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}
	Chain(ok(), mw("a"), mw("b"), mw("c")).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, []string{"a", "b", "c"}, order)
}
