package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"sentinel-hq/sentinel/pkg/config"
)

// Collector is the orchestrator for all Prometheus metrics in Sentinel.
// It owns the registry, registers metric groups on construction, and
// provides a unified recording interface for the engine, the sources,
// and the cache.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	screening *ScreeningMetrics
	sources   *SourceMetrics
	cache     *CacheMetrics
}

// NewCollector creates a metrics collector with the specified configuration
// and Prometheus registry. If registry is nil a new private registry is
// created, keeping Sentinel's metrics isolated from the global default.
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	if cfg.Namespace == "" {
		cfg.Namespace = "sentinel"
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = "screening"
	}
	if len(cfg.SourceLatencyBuckets) == 0 {
		// Watchlist APIs answer in tens of milliseconds to tens of seconds.
		cfg.SourceLatencyBuckets = []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0}
	}

	c := &Collector{
		config:   cfg,
		registry: registry,
	}

	c.screening = NewScreeningMetrics(cfg, registry)
	c.sources = NewSourceMetrics(cfg, registry)
	c.cache = NewCacheMetrics(cfg, registry)

	return c
}

// Registry returns the underlying Prometheus registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// RecordValidation records a completed screening run.
//
// verdict is "blocked" or "clear"; served is "cache" or "fresh".
func (c *Collector) RecordValidation(verdict, served string, duration time.Duration) {
	c.screening.validations.WithLabelValues(verdict, served).Inc()
	c.screening.duration.WithLabelValues(served).Observe(duration.Seconds())
}

// RecordBatch records the size of a batch screening request.
func (c *Collector) RecordBatch(size int) {
	c.screening.batchSize.Observe(float64(size))
}

// RecordSourceCheck records one source lookup within a screening run.
//
// outcome is "match", "clear", or "error".
func (c *Collector) RecordSourceCheck(source, outcome string, duration time.Duration) {
	c.sources.requests.WithLabelValues(source).Inc()
	c.sources.latency.WithLabelValues(source).Observe(duration.Seconds())
	if outcome == "error" {
		return
	}
	if outcome == "match" {
		c.sources.matches.WithLabelValues(source).Inc()
	}
}

// RecordSourceError records a failed source lookup by error type
// (e.g. "timeout", "rate_limited", "auth", "http").
func (c *Collector) RecordSourceError(source, errorType string) {
	c.sources.errors.WithLabelValues(source, errorType).Inc()
}

// SetSourceHealth records a source's health state (true=healthy).
func (c *Collector) SetSourceHealth(source string, healthy bool) {
	v := 0.0
	if healthy {
		v = 1.0
	}
	c.sources.health.WithLabelValues(source).Set(v)
}

// RecordCacheHit records a verdict served from the cache.
func (c *Collector) RecordCacheHit() {
	c.cache.hits.Inc()
}

// RecordCacheMiss records a cache miss (expired or absent verdict).
func (c *Collector) RecordCacheMiss() {
	c.cache.misses.Inc()
}

// RecordCacheSweep records the outcome of a cache sweep.
func (c *Collector) RecordCacheSweep(deleted int64) {
	c.cache.sweeps.Inc()
	c.cache.sweptEntries.Add(float64(deleted))
}

// SetCachedEntries records the current number of cached verdicts.
func (c *Collector) SetCachedEntries(n int64) {
	c.cache.entries.Set(float64(n))
}
