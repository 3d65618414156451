package sources

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func testConfig(name, endpoint string) Config {
	return Config{
		Name:     name,
		Type:     "generic",
		Endpoint: endpoint,
		Enabled:  true,
		Timeout:  2 * time.Second,
	}
}

func TestDoRequestSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); ua == "" {
			t.Error("missing User-Agent header")
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := NewHTTPSource(testConfig("test", srv.URL))
	defer s.Close()

	resp, err := s.DoRequest(context.Background(), http.MethodGet, srv.URL, nil, nil)
	if err != nil {
		t.Fatalf("DoRequest failed: %v", err)
	}
	resp.Body.Close()

	health := s.Health()
	if !health.IsHealthy || health.TotalRequests != 1 || health.FailedRequests != 0 {
		t.Errorf("health = %+v", health)
	}
}

func TestDoRequestRetriesServerErrors(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cfg := testConfig("test", srv.URL)
	cfg.MaxRetries = 1
	s := NewHTTPSource(cfg)
	defer s.Close()

	resp, err := s.DoRequest(context.Background(), http.MethodGet, srv.URL, nil, nil)
	if err != nil {
		t.Fatalf("DoRequest failed after retry: %v", err)
	}
	resp.Body.Close()

	if calls.Load() != 2 {
		t.Errorf("server called %d times, want 2", calls.Load())
	}
}

func TestDoRequestAuthErrorNotRetried(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	cfg := testConfig("test", srv.URL)
	cfg.MaxRetries = 3
	s := NewHTTPSource(cfg)
	defer s.Close()

	_, err := s.DoRequest(context.Background(), http.MethodGet, srv.URL, nil, nil)
	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("error = %v, want AuthError", err)
	}
	if calls.Load() != 1 {
		t.Errorf("server called %d times, want 1", calls.Load())
	}
}

func TestDoRequestRateLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	s := NewHTTPSource(testConfig("test", srv.URL))
	defer s.Close()

	_, err := s.DoRequest(context.Background(), http.MethodGet, srv.URL, nil, nil)
	var rateErr *RateLimitError
	if !errors.As(err, &rateErr) {
		t.Fatalf("error = %v, want RateLimitError", err)
	}
	if rateErr.RetryAfter != 30*time.Second {
		t.Errorf("retry after = %v, want 30s", rateErr.RetryAfter)
	}
}

func TestDoRequestBadRequestNotRetried(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	cfg := testConfig("test", srv.URL)
	cfg.MaxRetries = 2
	s := NewHTTPSource(cfg)
	defer s.Close()

	_, err := s.DoRequest(context.Background(), http.MethodGet, srv.URL, nil, nil)
	var srcErr *SourceError
	if !errors.As(err, &srcErr) {
		t.Fatalf("error = %v, want SourceError", err)
	}
	if srcErr.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d", srcErr.StatusCode)
	}
	if calls.Load() != 1 {
		t.Errorf("server called %d times, want 1", calls.Load())
	}
}

func TestHealthCircuitBreaker(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	s := NewHTTPSource(testConfig("test", srv.URL))
	defer s.Close()

	for i := 0; i < 3; i++ {
		s.DoRequest(context.Background(), http.MethodGet, srv.URL, nil, nil)
	}

	health := s.Health()
	if health.IsHealthy {
		t.Error("source still healthy after 3 consecutive failures")
	}
	if health.ConsecutiveFailures != 3 {
		t.Errorf("consecutive failures = %d, want 3", health.ConsecutiveFailures)
	}
}

func TestHealthRecoversOnSuccess(t *testing.T) {
	var failing atomic.Bool
	failing.Store(true)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if failing.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := NewHTTPSource(testConfig("test", srv.URL))
	defer s.Close()

	for i := 0; i < 3; i++ {
		s.DoRequest(context.Background(), http.MethodGet, srv.URL, nil, nil)
	}
	if s.Health().IsHealthy {
		t.Fatal("expected unhealthy after failures")
	}

	failing.Store(false)
	resp, err := s.DoRequest(context.Background(), http.MethodGet, srv.URL, nil, nil)
	if err != nil {
		t.Fatalf("DoRequest failed: %v", err)
	}
	resp.Body.Close()

	if !s.Health().IsHealthy {
		t.Error("source did not recover after success")
	}
}

func TestDoJSONGet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "john doe" {
			t.Errorf("q = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"total": 2}`))
	}))
	defer srv.Close()

	s := NewHTTPSource(testConfig("test", srv.URL))
	defer s.Close()

	var resp struct {
		Total int `json:"total"`
	}
	params := map[string][]string{"q": {"john doe"}}
	if err := s.DoJSONGet(context.Background(), srv.URL, params, &resp, nil); err != nil {
		t.Fatalf("DoJSONGet failed: %v", err)
	}
	if resp.Total != 2 {
		t.Errorf("total = %d, want 2", resp.Total)
	}
}

func TestDoJSONGetParseError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer srv.Close()

	s := NewHTTPSource(testConfig("test", srv.URL))
	defer s.Close()

	var resp map[string]any
	err := s.DoJSONGet(context.Background(), srv.URL, nil, &resp, nil)
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("error = %v, want ParseError", err)
	}
}

func TestFetchBodyCapped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for i := 0; i < 1000; i++ {
			w.Write([]byte("0123456789"))
		}
	}))
	defer srv.Close()

	s := NewHTTPSource(testConfig("test", srv.URL))
	defer s.Close()

	body, err := s.FetchBody(context.Background(), srv.URL, 100)
	if err != nil {
		t.Fatalf("FetchBody failed: %v", err)
	}
	if len(body) != 100 {
		t.Errorf("body length = %d, want 100", len(body))
	}
}

func TestParseRetryAfter(t *testing.T) {
	tests := []struct {
		header string
		want   time.Duration
	}{
		{"", 0},
		{"30", 30 * time.Second},
		{"garbage", 0},
	}

	for _, tt := range tests {
		if got := parseRetryAfter(tt.header); got != tt.want {
			t.Errorf("parseRetryAfter(%q) = %v, want %v", tt.header, got, tt.want)
		}
	}
}
