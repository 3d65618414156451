package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"sentinel-hq/sentinel/pkg/config"
)

// SourceMetrics tracks metrics related to watchlist source health and
// performance.
//
// Metrics:
//   - sentinel_screening_source_health: Source health status (1=healthy, 0=unhealthy)
//   - sentinel_screening_source_latency_seconds: Source lookup latency
//   - sentinel_screening_source_errors_total: Source error count by type
//   - sentinel_screening_source_requests_total: Total lookups per source
//   - sentinel_screening_source_matches_total: Lookups that found a matching record
type SourceMetrics struct {
	// Source health status (gauge: 1=healthy, 0=unhealthy)
	health *prometheus.GaugeVec

	// Source lookup latency histogram
	latency *prometheus.HistogramVec

	// Source error counter by type
	errors *prometheus.CounterVec

	// Total lookups per source
	requests *prometheus.CounterVec

	// Lookups that found a matching record
	matches *prometheus.CounterVec
}

// NewSourceMetrics creates and registers source metrics with the provided
// registry.
func NewSourceMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *SourceMetrics {
	sm := &SourceMetrics{
		health: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "source_health",
				Help:      "Source health status (1=healthy, 0=unhealthy)",
			},
			[]string{"source"},
		),

		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "source_latency_seconds",
				Help:      "Source lookup latency in seconds",
				Buckets:   cfg.SourceLatencyBuckets,
			},
			[]string{"source"},
		),

		errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "source_errors_total",
				Help:      "Total source lookup errors by type",
			},
			[]string{"source", "error_type"},
		),

		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "source_requests_total",
				Help:      "Total lookups per source",
			},
			[]string{"source"},
		),

		matches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "source_matches_total",
				Help:      "Total lookups that found a matching record",
			},
			[]string{"source"},
		),
	}

	registry.MustRegister(
		sm.health,
		sm.latency,
		sm.errors,
		sm.requests,
		sm.matches,
	)

	return sm
}
