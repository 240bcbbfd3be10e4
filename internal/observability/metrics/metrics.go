package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wellpulse_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "wellpulse_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	serviceOperations = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "wellpulse_service_operation_duration_seconds",
		Help:    "Duration of service operations by entity, operation and result",
		Buckets: prometheus.DefBuckets,
	}, []string{"entity", "operation", "result"})

	loginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wellpulse_login_attempts_total",
		Help: "Login attempts by result",
	}, []string{"result"})

	importedRows = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wellpulse_employee_import_rows_total",
		Help: "Employee import rows by result",
	}, []string{"result"})

	reportGenerations = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "wellpulse_report_generation_duration_seconds",
		Help:    "Duration of report generation by result",
		Buckets: []float64{0.5, 1, 2, 5, 10, 30},
	}, []string{"result"})

	surveyResponses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wellpulse_survey_responses_total",
		Help: "Survey responses accepted per survey",
	}, []string{"survey"})

	guardDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wellpulse_guard_decisions_total",
		Help: "Route guard decisions by route and outcome",
	}, []string{"route", "decision"})

	lifecycleTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wellpulse_lifecycle_transitions_total",
		Help: "Records moved by the lifecycle worker",
	}, []string{"kind", "result"})

	notificationClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "wellpulse_notification_clients",
		Help: "Connected notification websocket clients",
	})
)

// ObserveHTTPRequest records an HTTP request metric
func ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// ObserveOperation records a service call on an entity collection
func ObserveOperation(entity, operation, result string, duration time.Duration) {
	serviceOperations.WithLabelValues(entity, operation, result).Observe(duration.Seconds())
}

// ObserveLogin counts a login attempt with result success or failure
func ObserveLogin(result string) {
	loginAttempts.WithLabelValues(result).Inc()
}

// ObserveImport records the tally of an employee import
func ObserveImport(success, failed int) {
	importedRows.WithLabelValues("success").Add(float64(success))
	importedRows.WithLabelValues("error").Add(float64(failed))
}

// ObserveReportGeneration records how long a report took to build
func ObserveReportGeneration(result string, duration time.Duration) {
	reportGenerations.WithLabelValues(result).Observe(duration.Seconds())
}

// ObserveSurveyResponse counts an accepted response
func ObserveSurveyResponse(surveyID string) {
	surveyResponses.WithLabelValues(surveyID).Inc()
}

// ObserveGuardDecision counts a route guard outcome
func ObserveGuardDecision(route, decision string) {
	guardDecisions.WithLabelValues(route, decision).Inc()
}

// ObserveLifecycle counts records moved by the lifecycle worker
func ObserveLifecycle(kind, result string, count int) {
	if count <= 0 {
		return
	}
	lifecycleTransitions.WithLabelValues(kind, result).Add(float64(count))
}

// SetNotificationClients sets the connected websocket gauge
func SetNotificationClients(count int) {
	if count < 0 {
		count = 0
	}
	notificationClients.Set(float64(count))
}
