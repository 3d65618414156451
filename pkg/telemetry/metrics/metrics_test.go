package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"sentinel-hq/sentinel/pkg/config"
)

func newTestCollector(t *testing.T) *Collector {
	t.Helper()
	cfg := &config.MetricsConfig{Enabled: true}
	return NewCollector(cfg, prometheus.NewRegistry())
}

func TestCollectorDefaults(t *testing.T) {
	c := newTestCollector(t)

	if c.config.Namespace != "sentinel" {
		t.Errorf("namespace = %q, want sentinel", c.config.Namespace)
	}
	if c.config.Subsystem != "screening" {
		t.Errorf("subsystem = %q, want screening", c.config.Subsystem)
	}
	if len(c.config.SourceLatencyBuckets) == 0 {
		t.Error("expected default latency buckets")
	}
}

func TestRecordAndExpose(t *testing.T) {
	c := newTestCollector(t)

	c.RecordValidation("blocked", "fresh", 150*time.Millisecond)
	c.RecordValidation("clear", "cache", time.Millisecond)
	c.RecordBatch(3)
	c.RecordSourceCheck("ofac", "match", 80*time.Millisecond)
	c.RecordSourceCheck("fbi", "error", 10*time.Second)
	c.RecordSourceError("fbi", "timeout")
	c.SetSourceHealth("ofac", true)
	c.SetSourceHealth("fbi", false)
	c.RecordCacheHit()
	c.RecordCacheMiss()
	c.RecordCacheSweep(7)
	c.SetCachedEntries(42)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body := rec.Body.String()
	for _, want := range []string{
		`sentinel_screening_validations_total{served="fresh",verdict="blocked"} 1`,
		`sentinel_screening_validations_total{served="cache",verdict="clear"} 1`,
		`sentinel_screening_source_requests_total{source="ofac"} 1`,
		`sentinel_screening_source_matches_total{source="ofac"} 1`,
		`sentinel_screening_source_errors_total{error_type="timeout",source="fbi"} 1`,
		`sentinel_screening_source_health{source="ofac"} 1`,
		`sentinel_screening_source_health{source="fbi"} 0`,
		`sentinel_screening_cache_hits_total 1`,
		`sentinel_screening_cache_misses_total 1`,
		`sentinel_screening_cache_swept_entries_total 7`,
		`sentinel_screening_cache_entries 42`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("exposition missing %q", want)
		}
	}
}

func TestCollectorIsolatedRegistry(t *testing.T) {
	// Two collectors on separate registries must not collide.
	c1 := NewCollector(&config.MetricsConfig{}, prometheus.NewRegistry())
	c2 := NewCollector(&config.MetricsConfig{}, prometheus.NewRegistry())

	c1.RecordCacheHit()

	rec := httptest.NewRecorder()
	c2.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if strings.Contains(rec.Body.String(), "cache_hits_total 1") {
		t.Error("collector registries are not isolated")
	}
}
