package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce         sync.Once
	httpRequestsTotal    *prometheus.CounterVec
	httpLatencySeconds   *prometheus.HistogramVec
	httpErrorsTotal      *prometheus.CounterVec
	submissionWrites     *prometheus.CounterVec
	loginAttemptsTotal   *prometheus.CounterVec
	dashboardCacheLookup *prometheus.CounterVec
	artifactUploads      *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used by the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "eduportal_http_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "eduportal_http_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		httpErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "eduportal_http_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		submissionWrites = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "eduportal_submission_writes_total",
			Help: "Submission ledger writes by outcome.",
		}, []string{"outcome"})

		loginAttemptsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "eduportal_login_attempts_total",
			Help: "Login attempts by role and result.",
		}, []string{"role", "result"})

		dashboardCacheLookup = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "eduportal_dashboard_cache_lookups_total",
			Help: "Dashboard cache lookups by result.",
		}, []string{"result"})

		artifactUploads = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "eduportal_artifact_uploads_total",
			Help: "Artifact uploads by result.",
		}, []string{"result"})

		prometheus.MustRegister(
			httpRequestsTotal,
			httpLatencySeconds,
			httpErrorsTotal,
			submissionWrites,
			loginAttemptsTotal,
			dashboardCacheLookup,
			artifactUploads,
		)
	})
}

// HTTPRequests exposes the request counter.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the latency histogram.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// HTTPErrors exposes the error response counter.
func HTTPErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return httpErrorsTotal
}

// SubmissionWrites counts created, replaced and graded submissions.
func SubmissionWrites() *prometheus.CounterVec {
	RegisterMetrics()
	return submissionWrites
}

// LoginAttempts counts login outcomes.
func LoginAttempts() *prometheus.CounterVec {
	RegisterMetrics()
	return loginAttemptsTotal
}

// DashboardCacheLookups counts dashboard cache hits and misses.
func DashboardCacheLookups() *prometheus.CounterVec {
	RegisterMetrics()
	return dashboardCacheLookup
}

// ArtifactUploads counts accepted and rejected artifact uploads.
func ArtifactUploads() *prometheus.CounterVec {
	RegisterMetrics()
	return artifactUploads
}
