package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

func hasBody(r *http.Request) bool {
	if r.Method != http.MethodPost && r.Method != http.MethodPut && r.Method != http.MethodPatch {
		return false
	}
	return r.ContentLength != 0
}

// ValidateJSONContentType rejects non-JSON write bodies. Paths with one of the
// exempt suffixes (file uploads) may send any content type.
func ValidateJSONContentType(log *slog.Logger, exemptSuffixes ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !hasBody(r) {
				next.ServeHTTP(w, r)
				return
			}
			for _, s := range exemptSuffixes {
				if strings.HasSuffix(r.URL.Path, s) {
					next.ServeHTTP(w, r)
					return
				}
			}

			contentType := r.Header.Get("Content-Type")
			if !strings.Contains(contentType, "application/json") {
				log.Warn("invalid content type",
					slog.String("path", r.URL.Path),
					slog.String("content_type", contentType),
					slog.String("method", r.Method),
				)
				writeJSON(w, http.StatusUnsupportedMediaType, map[string]string{"error": "Content-Type must be application/json"})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ValidateJSONSchema checks that the payload is a JSON object carrying the
// required fields. The body is restored for the handler.
func ValidateJSONSchema(required []string, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !hasBody(r) {
				next.ServeHTTP(w, r)
				return
			}

			raw, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
			_ = r.Body.Close()
			if err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "failed to read body"})
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(raw))

			var payload map[string]any
			if err := json.Unmarshal(raw, &payload); err != nil {
				log.Warn("invalid json payload",
					slog.String("path", r.URL.Path),
					slog.String("error", err.Error()),
				)
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
				return
			}

			for _, field := range required {
				if _, exists := payload[field]; !exists {
					log.Warn("missing required field",
						slog.String("path", r.URL.Path),
						slog.String("field", field),
					)
					writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing required field: " + field})
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// SanitizeInputs rejects markup characters in query params and path traversal
func SanitizeInputs(log *slog.Logger) func(http.Handler) http.Handler {
	dangerousChars := []string{"<", ">", "\"", "'"}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for key, values := range r.URL.Query() {
				if key == "token" {
					continue
				}
				for _, val := range values {
					for _, char := range dangerousChars {
						if strings.Contains(val, char) {
							log.Warn("suspicious input detected",
								slog.String("path", r.URL.Path),
								slog.String("param", key),
								slog.String("pattern", char),
							)
							writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid input: dangerous characters detected"})
							return
						}
					}
				}
			}

			if strings.Contains(r.URL.Path, "..") || strings.Contains(r.URL.Path, "//") {
				log.Warn("suspicious path pattern detected",
					slog.String("path", r.URL.Path),
				)
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid path"})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
