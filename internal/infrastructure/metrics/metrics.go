package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	importJobsSubmitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "backoffice_import_jobs_submitted_total",
		Help: "Total number of vendor import jobs enqueued",
	})

	importJobsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backoffice_import_jobs_processed_total",
			Help: "Total number of vendor import jobs processed by outcome",
		},
		[]string{"outcome"},
	)

	importJobDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "backoffice_import_job_duration_seconds",
		Help:    "Duration of vendor import job processing",
		Buckets: prometheus.DefBuckets,
	})

	propertyMatches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backoffice_property_matches_total",
			Help: "Property match decisions by kind",
		},
		[]string{"kind"},
	)

	oracleCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backoffice_match_oracle_calls_total",
			Help: "Match oracle calls by status",
		},
		[]string{"status"},
	)

	oracleDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "backoffice_match_oracle_duration_seconds",
		Help:    "Duration of match oracle calls",
		Buckets: prometheus.DefBuckets,
	})

	lineItemsImported = promauto.NewCounter(prometheus.CounterOpts{
		Name: "backoffice_line_items_imported_total",
		Help: "Total line items persisted by vendor imports",
	})
)

// JobSubmitted records a successfully enqueued import job.
func JobSubmitted() {
	importJobsSubmitted.Inc()
}

// JobProcessed records a finished job with its outcome and duration.
func JobProcessed(outcome string, elapsed time.Duration) {
	importJobsProcessed.WithLabelValues(outcome).Inc()
	importJobDuration.Observe(elapsed.Seconds())
}

// Matches records match decisions of one kind (exact, oracle, unmatched).
func Matches(kind string, n int) {
	propertyMatches.WithLabelValues(kind).Add(float64(n))
}

// OracleCall records one oracle round trip.
func OracleCall(status string, elapsed time.Duration) {
	oracleCalls.WithLabelValues(status).Inc()
	oracleDuration.Observe(elapsed.Seconds())
}

// LineItemsImported records persisted import line items.
func LineItemsImported(n int) {
	lineItemsImported.Add(float64(n))
}
