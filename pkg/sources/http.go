package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"sync"
	"time"
)

// HTTPSource is the base implementation for HTTP-backed source adapters.
// It provides connection pooling, retry logic, timeout handling, and
// health monitoring.
//
// Concrete adapters (ofac, fbi, interpol, ...) embed this struct and
// implement the Client interface methods on top of DoRequest/DoJSONGet.
type HTTPSource struct {
	// config contains the source configuration
	config Config

	// client is the HTTP client with connection pooling
	client *http.Client

	// health tracks the source's availability
	health Health

	// healthMu protects concurrent access to health
	healthMu sync.RWMutex
}

// NewHTTPSource creates a new base HTTP source with connection pooling.
func NewHTTPSource(config Config) *HTTPSource {
	transport := &http.Transport{
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 5,
		IdleConnTimeout:     90 * time.Second,
		ForceAttemptHTTP2:   true,
	}

	client := &http.Client{
		Transport: transport,
		Timeout:   config.Timeout,
	}

	return &HTTPSource{
		config: config,
		client: client,
		health: Health{
			IsHealthy:             true, // Start optimistic
			LastCheck:             time.Now(),
			LastSuccessfulRequest: time.Now(),
		},
	}
}

// Name returns the source's configured name.
func (s *HTTPSource) Name() string {
	return s.config.Name
}

// Type returns the source's adapter type.
func (s *HTTPSource) Type() string {
	return s.config.Type
}

// Config returns the source's configuration.
func (s *HTTPSource) Config() Config {
	return s.config
}

// Health returns the source's current health information.
func (s *HTTPSource) Health() Health {
	s.healthMu.RLock()
	defer s.healthMu.RUnlock()
	return s.health
}

// updateHealth records the outcome of a completed lookup.
func (s *HTTPSource) updateHealth(success bool, err error) {
	s.healthMu.Lock()
	defer s.healthMu.Unlock()

	s.health.LastCheck = time.Now()

	if success {
		s.health.IsHealthy = true
		s.health.ConsecutiveFailures = 0
		s.health.LastError = nil
		s.health.LastSuccessfulRequest = time.Now()
	} else {
		s.health.ConsecutiveFailures++
		s.health.LastError = err

		// Mark unhealthy after 3 consecutive failures (circuit breaker)
		if s.health.ConsecutiveFailures >= 3 {
			s.health.IsHealthy = false
			slog.Warn("source marked unhealthy",
				"source", s.config.Name,
				"consecutive_failures", s.health.ConsecutiveFailures,
				"error", err,
			)
		}
	}
}

// recordRequest records request counters.
func (s *HTTPSource) recordRequest(success bool) {
	s.healthMu.Lock()
	defer s.healthMu.Unlock()

	s.health.TotalRequests++
	if !success {
		s.health.FailedRequests++
	}
}

// DoRequest performs an HTTP request with retry logic.
// Transient errors (5xx, network failures) are retried with exponential
// backoff; auth failures, rate limits, and bad requests are not.
func (s *HTTPSource) DoRequest(ctx context.Context, method, rawURL string, body []byte, headers map[string]string) (*http.Response, error) {
	var lastErr error

	for attempt := 0; attempt <= s.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * time.Second
			slog.Debug("retrying source lookup",
				"source", s.config.Name,
				"attempt", attempt,
				"max_retries", s.config.MaxRetries,
				"backoff", backoff,
			)

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		var bodyReader io.Reader
		if body != nil {
			bodyReader = bytes.NewReader(body)
		}

		req, err := http.NewRequestWithContext(ctx, method, rawURL, bodyReader)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}

		for key, value := range headers {
			req.Header.Set(key, value)
		}
		if req.Header.Get("User-Agent") == "" {
			req.Header.Set("User-Agent", "sentinel/1.0 (watchlist-screening)")
		}

		resp, err := s.client.Do(req)
		if err != nil {
			lastErr = err
			s.recordRequest(false)

			if ctx.Err() != nil {
				// Context cancelled or deadline exceeded - don't retry
				return nil, &TimeoutError{
					Source:  s.config.Name,
					Timeout: s.config.Timeout,
				}
			}

			slog.Warn("source lookup failed, will retry",
				"source", s.config.Name,
				"attempt", attempt+1,
				"error", err,
			)
			continue
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			s.recordRequest(true)
			s.updateHealth(true, nil)
			return resp, nil
		}

		errorBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()

		switch resp.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			s.recordRequest(false)
			s.updateHealth(false, fmt.Errorf("authentication failed"))
			return nil, &AuthError{
				Source:  s.config.Name,
				Message: string(errorBody),
			}

		case http.StatusTooManyRequests:
			s.recordRequest(false)
			return nil, &RateLimitError{
				Source:     s.config.Name,
				RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
				Message:    string(errorBody),
			}

		case http.StatusBadRequest:
			s.recordRequest(false)
			return nil, &SourceError{
				Source:     s.config.Name,
				StatusCode: resp.StatusCode,
				Message:    string(errorBody),
			}

		default:
			lastErr = &SourceError{
				Source:     s.config.Name,
				StatusCode: resp.StatusCode,
				Message:    string(errorBody),
			}
			s.recordRequest(false)

			slog.Warn("source returned error status, will retry",
				"source", s.config.Name,
				"status", resp.StatusCode,
				"attempt", attempt+1,
			)
		}
	}

	s.updateHealth(false, lastErr)
	return nil, lastErr
}

// DoJSONGet performs a GET with query parameters and decodes a JSON response.
func (s *HTTPSource) DoJSONGet(ctx context.Context, rawURL string, params url.Values, respBody interface{}, headers map[string]string) error {
	if len(params) > 0 {
		sep := "?"
		if u, err := url.Parse(rawURL); err == nil && u.RawQuery != "" {
			sep = "&"
		}
		rawURL = rawURL + sep + params.Encode()
	}

	resp, err := s.DoRequest(ctx, http.MethodGet, rawURL, nil, headers)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	responseBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return &ParseError{
			Source: s.config.Name,
			Cause:  fmt.Errorf("failed to read response: %w", err),
		}
	}

	if respBody != nil && len(responseBytes) > 0 {
		if err := json.Unmarshal(responseBytes, respBody); err != nil {
			return &ParseError{
				Source:      s.config.Name,
				RawResponse: string(responseBytes),
				Cause:       fmt.Errorf("failed to unmarshal response: %w", err),
			}
		}
	}

	return nil
}

// FetchBody performs a GET and returns the raw response body, capped at
// maxBytes. Used by adapters that scan text or XML feeds.
func (s *HTTPSource) FetchBody(ctx context.Context, rawURL string, maxBytes int64) ([]byte, error) {
	resp, err := s.DoRequest(ctx, http.MethodGet, rawURL, nil, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBytes))
	if err != nil {
		return nil, &ParseError{
			Source: s.config.Name,
			Cause:  fmt.Errorf("failed to read response: %w", err),
		}
	}

	return body, nil
}

// Close releases idle connections.
func (s *HTTPSource) Close() error {
	s.client.CloseIdleConnections()
	slog.Debug("source closed", "source", s.config.Name)
	return nil
}

// parseRetryAfter parses the Retry-After header value.
// It supports both delay-seconds and HTTP-date formats.
func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}

	var seconds int
	if _, err := fmt.Sscanf(header, "%d", &seconds); err == nil {
		return time.Duration(seconds) * time.Second
	}

	if t, err := http.ParseTime(header); err == nil {
		return time.Until(t)
	}

	return 0
}
