package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"sentinel-hq/sentinel/pkg/screening"
	"sentinel-hq/sentinel/pkg/screening/cache"
	"sentinel-hq/sentinel/pkg/screening/engine"
	"sentinel-hq/sentinel/pkg/sources"
)

// stubClient answers lookups from a fixed denylist of normalized names.
type stubClient struct {
	name    string
	blocked map[string]bool
}

func (s *stubClient) Check(ctx context.Context, name, category string) (*screening.SourceCheckResult, error) {
	if s.blocked[name] {
		return &screening.SourceCheckResult{
			IsBlocked:  true,
			Confidence: 0.9,
			Reasons:    []string{fmt.Sprintf("%s: listed", s.name)},
		}, nil
	}
	return &screening.SourceCheckResult{Confidence: 0.8}, nil
}

func (s *stubClient) Name() string           { return s.name }
func (s *stubClient) Type() string           { return "stub" }
func (s *stubClient) Health() sources.Health { return sources.Health{IsHealthy: true} }
func (s *stubClient) Close() error           { return nil }

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()

	registry := sources.NewRegistry(func(cfg sources.Config) (sources.Client, error) {
		return &stubClient{
			name:    cfg.Name,
			blocked: map[string]bool{"Bad Actor": true},
		}, nil
	})
	cfg := sources.Config{Name: "denylist", Type: "stub", RequiresAuth: true, APIKey: "k", Enabled: true}
	if err := registry.Register(cfg); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	eng := engine.New(registry, cache.NewMemoryStore(), engine.Options{})
	return NewHandler(eng, nil).Routes()
}

func postJSON(t *testing.T, handler http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestValidateEndpoint(t *testing.T) {
	handler := newTestHandler(t)

	rec := postJSON(t, handler, "/v1/validate", ValidateRequest{Name: "Bad Actor"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rec.Code, rec.Body.String())
	}

	var result screening.WatchlistResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("response is not a result: %v", err)
	}
	if !result.IsBlocked || result.Confidence != 0.9 {
		t.Errorf("verdict = %+v", result)
	}
	if len(result.Sources) != 1 || result.Sources[0] != "denylist" {
		t.Errorf("sources = %v", result.Sources)
	}
}

func TestValidateEndpointRejectsEmptyName(t *testing.T) {
	handler := newTestHandler(t)

	rec := postJSON(t, handler, "/v1/validate", ValidateRequest{Name: "   "})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response is not an error: %v", err)
	}
	if resp.Error.Type != "invalid_input" {
		t.Errorf("error type = %q", resp.Error.Type)
	}
}

func TestValidateEndpointRejectsBadJSON(t *testing.T) {
	handler := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/validate", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestBatchEndpoint(t *testing.T) {
	handler := newTestHandler(t)

	rec := postJSON(t, handler, "/v1/validate/batch", BatchValidateRequest{
		Names: []string{"Alice One", "Bad Actor", ""},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rec.Code, rec.Body.String())
	}

	var resp BatchValidateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response: %v", err)
	}
	if len(resp.Results) != 3 {
		t.Fatalf("got %d results, want 3", len(resp.Results))
	}
	if resp.Results[0].Result == nil || resp.Results[0].Result.IsBlocked {
		t.Error("expected Alice One clear")
	}
	if resp.Results[1].Result == nil || !resp.Results[1].Result.IsBlocked {
		t.Error("expected Bad Actor blocked")
	}
	if resp.Results[2].Error == nil || resp.Results[2].Error.Type != "invalid_input" {
		t.Errorf("expected invalid_input for empty name, got %+v", resp.Results[2].Error)
	}
}

func TestBatchEndpointRejectsEmptyList(t *testing.T) {
	handler := newTestHandler(t)

	rec := postJSON(t, handler, "/v1/validate/batch", BatchValidateRequest{})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestStatsEndpoint(t *testing.T) {
	handler := newTestHandler(t)

	postJSON(t, handler, "/v1/validate", ValidateRequest{Name: "Bad Actor"})

	req := httptest.NewRequest(http.MethodGet, "/v1/stats", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var stats screening.Stats
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("bad response: %v", err)
	}
	if stats.TotalCached != 1 || stats.TotalBlocked != 1 {
		t.Errorf("stats = %+v", stats)
	}
	if len(stats.EnabledSources) != 1 {
		t.Errorf("enabled sources = %v", stats.EnabledSources)
	}
}

func TestSourceEndpoints(t *testing.T) {
	handler := newTestHandler(t)

	// List
	req := httptest.NewRequest(http.MethodGet, "/v1/sources", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	var listResp map[string][]SourceStatus
	if err := json.Unmarshal(rec.Body.Bytes(), &listResp); err != nil {
		t.Fatalf("bad list response: %v", err)
	}
	if len(listResp["sources"]) != 1 || !listResp["sources"][0].HasAPIKey {
		t.Errorf("sources = %+v", listResp["sources"])
	}

	// Disable
	rec = postJSON(t, handler, "/v1/sources/denylist/disable", struct{}{})
	if rec.Code != http.StatusOK {
		t.Fatalf("disable status = %d", rec.Code)
	}

	// Unknown source is a 404
	rec = postJSON(t, handler, "/v1/sources/nope/enable", struct{}{})
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown source status = %d, want 404", rec.Code)
	}

	// Set key
	data, _ := json.Marshal(SourceKeyRequest{APIKey: "new-key"})
	keyReq := httptest.NewRequest(http.MethodPut, "/v1/sources/denylist/key", bytes.NewReader(data))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, keyReq)
	if rec.Code != http.StatusOK {
		t.Fatalf("set key status = %d, body: %s", rec.Code, rec.Body.String())
	}

	// Empty key rejected
	data, _ = json.Marshal(SourceKeyRequest{})
	keyReq = httptest.NewRequest(http.MethodPut, "/v1/sources/denylist/key", bytes.NewReader(data))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, keyReq)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty key status = %d, want 400", rec.Code)
	}
}

func TestClearCacheEndpoint(t *testing.T) {
	handler := newTestHandler(t)

	postJSON(t, handler, "/v1/validate", ValidateRequest{Name: "Bad Actor"})

	req := httptest.NewRequest(http.MethodDelete, "/v1/cache", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	statsReq := httptest.NewRequest(http.MethodGet, "/v1/stats", nil)
	statsRec := httptest.NewRecorder()
	handler.ServeHTTP(statsRec, statsReq)
	var stats screening.Stats
	if err := json.Unmarshal(statsRec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("bad stats response: %v", err)
	}
	if stats.TotalCached != 0 {
		t.Errorf("total cached = %d after clear, want 0", stats.TotalCached)
	}
}

func TestHealthzEndpoint(t *testing.T) {
	handler := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response: %v", err)
	}
	if resp.Status != "ok" {
		t.Errorf("status = %q", resp.Status)
	}
}

func TestMiddlewareChain(t *testing.T) {
	var handler http.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})
	handler = LoggingMiddleware(handler)
	handler = RequestIDMiddleware(handler)
	handler = RecoveryMiddleware(handler)

	req := httptest.NewRequest(http.MethodGet, "/v1/validate", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	if rec.Header().Get(RequestIDHeader) == "" {
		t.Error("missing request ID header")
	}
}

func TestRequestIDReused(t *testing.T) {
	var seen string
	var handler http.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler = RequestIDMiddleware(handler)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, "client-id-1")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	seen = rec.Header().Get(RequestIDHeader)
	if seen != "client-id-1" {
		t.Errorf("request ID = %q, want client-id-1", seen)
	}
}
