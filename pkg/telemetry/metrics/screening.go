package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"sentinel-hq/sentinel/pkg/config"
)

// ScreeningMetrics tracks metrics for completed screening runs.
//
// Metrics:
//   - sentinel_screening_validations_total: Completed runs by verdict and serving path
//   - sentinel_screening_validation_duration_seconds: End-to-end run duration
//   - sentinel_screening_batch_size: Names per batch request
type ScreeningMetrics struct {
	// Completed runs (counter, labels: verdict, served)
	validations *prometheus.CounterVec

	// End-to-end run duration (histogram, label: served)
	duration *prometheus.HistogramVec

	// Batch request size histogram
	batchSize prometheus.Histogram
}

// NewScreeningMetrics creates and registers screening metrics with the
// provided registry.
func NewScreeningMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *ScreeningMetrics {
	sm := &ScreeningMetrics{
		validations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "validations_total",
				Help:      "Total completed screening runs by verdict and serving path",
			},
			[]string{"verdict", "served"},
		),

		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "validation_duration_seconds",
				Help:      "End-to-end screening run duration in seconds",
				Buckets:   cfg.SourceLatencyBuckets,
			},
			[]string{"served"},
		),

		batchSize: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "batch_size",
				Help:      "Number of names per batch screening request",
				Buckets:   []float64{1, 2, 5, 10, 25, 50, 100, 250},
			},
		),
	}

	registry.MustRegister(
		sm.validations,
		sm.duration,
		sm.batchSize,
	)

	return sm
}
