package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestPathLabel(t *testing.T) {
	assert.Equal(t, "/api/companies", pathLabel("/api/companies/company-1"))
	assert.Equal(t, "/healthz", pathLabel("/healthz"))
	assert.Equal(t, "/", pathLabel("/"))
}

func TestHTTPMetricsMiddlewareRecordsStatus(t *testing.T) {
	h := HTTPMetricsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/api/teapot", "418"))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/teapot/1", nil))

	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/api/teapot", "418"))
	assert.Equal(t, before+1, after)
}

func TestObserveImport(t *testing.T) {
	before := testutil.ToFloat64(importedRows.WithLabelValues("error"))
	ObserveImport(3, 2)
	assert.Equal(t, before+2, testutil.ToFloat64(importedRows.WithLabelValues("error")))
}
