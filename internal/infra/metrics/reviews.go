package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		reviewsProcessed,
		storesProcessed,
		storesExcluded,
		cycleDuration,
	)
}

var (
	reviewsProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wb_reviews_processed_total",
			Help: "Reviews handled per cycle outcome (answered/error/skipped).",
		},
		[]string{"outcome"},
	)

	storesProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wb_stores_processed_total",
			Help: "Store runs per outcome (ok/failed).",
		},
		[]string{"outcome"},
	)

	storesExcluded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "wb_stores_excluded_total",
			Help: "Stores excluded from a cycle because their credential expired.",
		},
	)

	cycleDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "wb_cycle_duration_seconds",
			Help:    "Wall time of one full fleet cycle.",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
		},
	)
)

func IncReviewOutcome(outcome string) {
	reviewsProcessed.WithLabelValues(norm(outcome)).Inc()
}

func IncStoreOutcome(outcome string) {
	storesProcessed.WithLabelValues(norm(outcome)).Inc()
}

func IncStoreExcluded() {
	storesExcluded.Inc()
}

func ObserveCycleDuration(seconds float64) {
	cycleDuration.Observe(seconds)
}
