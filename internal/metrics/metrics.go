// Package metrics provides Prometheus metrics for StockCal.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DatasetRequests counts dataset reads served over HTTP.
	DatasetRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "stockcal",
			Name:      "dataset_requests_total",
			Help:      "Total number of dataset requests",
		},
		[]string{"dataset", "status"},
	)

	// RegenerateRuns counts regeneration runs by outcome.
	RegenerateRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "stockcal",
			Name:      "regenerate_runs_total",
			Help:      "Total number of regeneration runs",
		},
		[]string{"kind", "status"},
	)

	// RegenerateDuration measures regeneration runs, AI call included.
	RegenerateDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "stockcal",
			Name:      "regenerate_duration_seconds",
			Help:      "Duration of regeneration runs in seconds",
			Buckets:   []float64{1, 2.5, 5, 10, 20, 40, 80, 160},
		},
		[]string{"kind"},
	)

	// LastRegenerated is the unix time of the last successful run per kind.
	LastRegenerated = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "stockcal",
			Name:      "last_regenerated_timestamp_seconds",
			Help:      "Unix time of the last successful regeneration",
		},
		[]string{"kind"},
	)

	// PublishTotal counts publish attempts.
	PublishTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "stockcal",
			Name:      "publish_total",
			Help:      "Total number of publish attempts",
		},
		[]string{"status"},
	)
)

// RecordDatasetRequest records one dataset read.
func RecordDatasetRequest(dataset, status string) {
	DatasetRequests.WithLabelValues(dataset, status).Inc()
}

// RecordRegenerate records one regeneration run.
func RecordRegenerate(kind, status string, duration float64, finishedAt int64) {
	RegenerateRuns.WithLabelValues(kind, status).Inc()
	RegenerateDuration.WithLabelValues(kind).Observe(duration)
	if status == "success" {
		LastRegenerated.WithLabelValues(kind).Set(float64(finishedAt))
	}
}

// RecordPublish records one publish attempt.
func RecordPublish(status string) {
	PublishTotal.WithLabelValues(status).Inc()
}
