//go:build integration

package test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"sentinel-hq/sentinel/pkg/api"
	"sentinel-hq/sentinel/pkg/config"
	"sentinel-hq/sentinel/pkg/screening"
	"sentinel-hq/sentinel/pkg/screening/cache"
	"sentinel-hq/sentinel/pkg/screening/engine"
	"sentinel-hq/sentinel/pkg/server"
	"sentinel-hq/sentinel/pkg/sourcefactory"
	"sentinel-hq/sentinel/pkg/sources"
	"sentinel-hq/sentinel/pkg/telemetry/metrics"
)

// newTestServer assembles the full stack the way cmd/sentinel does: a
// denylist source built through the factory, a memory cache, the engine,
// metrics, and the server handler with its middleware chain.
func newTestServer(t *testing.T) (*httptest.Server, *engine.Engine) {
	t.Helper()

	listPath := filepath.Join(t.TempDir(), "denylist.txt")
	if err := os.WriteFile(listPath, []byte("Bad Actor\nEvil Corp\n"), 0o644); err != nil {
		t.Fatalf("write denylist: %v", err)
	}

	registry := sources.NewRegistry(sourcefactory.New)
	err := registry.Register(sources.Config{
		Name:    "internal-denylist",
		Type:    "dataset",
		Dataset: sources.DatasetConfig{Path: listPath},
	})
	if err != nil {
		t.Fatalf("register source: %v", err)
	}
	t.Cleanup(func() { registry.Close() })

	metricsCfg := &config.MetricsConfig{Enabled: true, Path: "/metrics"}
	collector := metrics.NewCollector(metricsCfg, nil)

	store := cache.NewMemoryStore()
	eng := engine.New(registry, store, engine.Options{
		TTL:     time.Hour,
		Metrics: collector,
	})

	serverCfg := &config.ServerConfig{
		ListenAddress:   "127.0.0.1:0",
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    30 * time.Second,
		IdleTimeout:     120 * time.Second,
		ShutdownTimeout: 30 * time.Second,
		MaxHeaderBytes:  1 << 20,
	}

	srv := httptest.NewServer(server.New(serverCfg, metricsCfg, eng, collector).Handler())
	t.Cleanup(srv.Close)
	return srv, eng
}

func TestScreeningIntegration(t *testing.T) {
	srv, _ := newTestServer(t)

	t.Run("listed name is blocked", func(t *testing.T) {
		result := postValidate(t, srv.URL, "Bad Actor")
		if !result.IsBlocked {
			t.Error("expected blocked verdict")
		}
		if result.Confidence != 0.9 {
			t.Errorf("Confidence = %v, want 0.9", result.Confidence)
		}
		if len(result.Sources) != 1 || result.Sources[0] != "internal-denylist" {
			t.Errorf("Sources = %v", result.Sources)
		}
	})

	t.Run("unlisted name is clear", func(t *testing.T) {
		result := postValidate(t, srv.URL, "Alice Johnson")
		if result.IsBlocked {
			t.Error("expected clear verdict")
		}
	})

	t.Run("second lookup is served from cache", func(t *testing.T) {
		first := postValidate(t, srv.URL, "Evil Corp")
		second := postValidate(t, srv.URL, "Evil Corp")
		if !first.LastUpdated.Equal(second.LastUpdated) {
			t.Error("expected cached verdict to keep its original timestamp")
		}
	})

	t.Run("batch preserves order", func(t *testing.T) {
		body, _ := json.Marshal(api.BatchValidateRequest{
			Names: []string{"Bad Actor", "Alice Johnson"},
		})
		resp, err := http.Post(srv.URL+"/v1/validate/batch", "application/json", bytes.NewReader(body))
		if err != nil {
			t.Fatalf("POST batch: %v", err)
		}
		defer resp.Body.Close()

		var batch api.BatchValidateResponse
		if err := json.NewDecoder(resp.Body).Decode(&batch); err != nil {
			t.Fatalf("decode batch: %v", err)
		}
		if len(batch.Results) != 2 {
			t.Fatalf("Results = %d, want 2", len(batch.Results))
		}
		if !batch.Results[0].Result.IsBlocked || batch.Results[1].Result.IsBlocked {
			t.Errorf("verdicts = %v, %v, want blocked then clear",
				batch.Results[0].Result.IsBlocked, batch.Results[1].Result.IsBlocked)
		}
	})

	t.Run("stats reflect cached verdicts", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/v1/stats")
		if err != nil {
			t.Fatalf("GET stats: %v", err)
		}
		defer resp.Body.Close()

		var stats screening.Stats
		if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
			t.Fatalf("decode stats: %v", err)
		}
		if stats.TotalCached == 0 {
			t.Error("expected cached verdicts in stats")
		}
		if stats.TotalBlocked == 0 {
			t.Error("expected blocked verdicts in stats")
		}
	})

	t.Run("metrics endpoint exposes counters", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/metrics")
		if err != nil {
			t.Fatalf("GET metrics: %v", err)
		}
		defer resp.Body.Close()

		exposition, err := io.ReadAll(resp.Body)
		if err != nil {
			t.Fatalf("read metrics: %v", err)
		}
		if !strings.Contains(string(exposition), "sentinel_screening_validations_total") {
			t.Error("expected validations counter in exposition")
		}
	})

	t.Run("request IDs are assigned", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/healthz")
		if err != nil {
			t.Fatalf("GET healthz: %v", err)
		}
		defer resp.Body.Close()

		if resp.Header.Get("X-Request-ID") == "" {
			t.Error("expected X-Request-ID header")
		}
	})
}

func postValidate(t *testing.T, baseURL, name string) *screening.WatchlistResult {
	t.Helper()

	body, _ := json.Marshal(api.ValidateRequest{Name: name})
	resp, err := http.Post(baseURL+"/v1/validate", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST validate: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var result screening.WatchlistResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	return &result
}
