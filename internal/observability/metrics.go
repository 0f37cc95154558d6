package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce              sync.Once
	httpRequestsTotal         *prometheus.CounterVec
	httpLatencySeconds        *prometheus.HistogramVec
	httpErrorsTotal           *prometheus.CounterVec
	assignmentsCreatedTotal   prometheus.Counter
	studentAssignmentsCreated prometheus.Counter
	assignmentFailuresTotal   *prometheus.CounterVec
	fanoutDurationSeconds     prometheus.Histogram
	progressCacheTotal        *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used by the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "classroom_http_requests_total",
			Help: "Total number of classroom API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "classroom_http_latency_seconds",
			Help:    "Latency distribution for classroom API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		httpErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "classroom_http_errors_total",
			Help: "Total number of error responses returned by classroom endpoints.",
		}, []string{"method", "route", "status"})

		assignmentsCreatedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "classroom_assignments_created_total",
			Help: "Assignments created from tests.",
		})

		studentAssignmentsCreated = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "classroom_student_assignments_created_total",
			Help: "Student assignment records created by the fan-out.",
		})

		assignmentFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "classroom_assignment_failures_total",
			Help: "Assignment factory failures by kind.",
		}, []string{"operation", "kind"})

		fanoutDurationSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "classroom_fanout_duration_seconds",
			Help:    "Time spent creating student assignments for one assignment.",
			Buckets: prometheus.DefBuckets,
		})

		progressCacheTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "classroom_progress_cache_total",
			Help: "Assignment progress cache lookups by result.",
		}, []string{"result"})

		prometheus.MustRegister(
			httpRequestsTotal,
			httpLatencySeconds,
			httpErrorsTotal,
			assignmentsCreatedTotal,
			studentAssignmentsCreated,
			assignmentFailuresTotal,
			fanoutDurationSeconds,
			progressCacheTotal,
		)
	})
}

// HTTPRequests exposes the request counter.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the request latency histogram.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// HTTPErrors exposes the error response counter.
func HTTPErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return httpErrorsTotal
}

// AssignmentsCreated counts assignments materialised from tests.
func AssignmentsCreated() prometheus.Counter {
	RegisterMetrics()
	return assignmentsCreatedTotal
}

// StudentAssignmentsCreated counts per-student records inserted by the fan-out.
func StudentAssignmentsCreated() prometheus.Counter {
	RegisterMetrics()
	return studentAssignmentsCreated
}

// AssignmentFailures counts factory failures labelled by operation and kind.
func AssignmentFailures() *prometheus.CounterVec {
	RegisterMetrics()
	return assignmentFailuresTotal
}

// FanoutDuration observes fan-out latency.
func FanoutDuration() prometheus.Histogram {
	RegisterMetrics()
	return fanoutDurationSeconds
}

// ProgressCache counts progress cache hits and misses.
func ProgressCache() *prometheus.CounterVec {
	RegisterMetrics()
	return progressCacheTotal
}
