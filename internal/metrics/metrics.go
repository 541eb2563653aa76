// internal/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	GradesWrittenTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "grades_written_total",
			Help: "Total number of grade rows created or updated",
		},
		[]string{"course", "source"},
	)

	RecalcRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recalc_runs_total",
			Help: "Total number of grade recalculation runs",
		},
		[]string{"course", "result"},
	)

	RecalcStudentsSkippedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recalc_students_skipped_total",
			Help: "Students skipped during recalculation because their calculation function failed",
		},
		[]string{"course"},
	)

	GradeValueHistogram = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "grade_value",
			Help:    "Distribution of numeric grade values as entered",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
		[]string{"course"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method", "status"},
	)
)
