package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"sentinel-hq/sentinel/pkg/config"
)

// CacheMetrics tracks verdict cache effectiveness.
//
// Metrics:
//   - sentinel_screening_cache_hits_total: Verdicts served from cache
//   - sentinel_screening_cache_misses_total: Lookups that required a fresh fan-out
//   - sentinel_screening_cache_entries: Current number of cached verdicts
//   - sentinel_screening_cache_sweeps_total: Completed expiry sweeps
//   - sentinel_screening_cache_swept_entries_total: Expired verdicts deleted by sweeps
type CacheMetrics struct {
	hits         prometheus.Counter
	misses       prometheus.Counter
	entries      prometheus.Gauge
	sweeps       prometheus.Counter
	sweptEntries prometheus.Counter
}

// NewCacheMetrics creates and registers cache metrics with the provided
// registry.
func NewCacheMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *CacheMetrics {
	cm := &CacheMetrics{
		hits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "cache_hits_total",
			Help:      "Total verdicts served from the cache",
		}),

		misses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "cache_misses_total",
			Help:      "Total lookups that required a fresh source fan-out",
		}),

		entries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "cache_entries",
			Help:      "Current number of cached verdicts",
		}),

		sweeps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "cache_sweeps_total",
			Help:      "Total completed cache expiry sweeps",
		}),

		sweptEntries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "cache_swept_entries_total",
			Help:      "Total expired verdicts deleted by sweeps",
		}),
	}

	registry.MustRegister(
		cm.hits,
		cm.misses,
		cm.entries,
		cm.sweeps,
		cm.sweptEntries,
	)

	return cm
}
