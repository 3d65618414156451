// Package generic implements an adapter for any JSON screening API that
// follows the common response shape: is_blocked, confidence, reasons.
// Industry watchlists (brokered risk databases, public-records search,
// social-media risk scoring) are all wired through this adapter.
package generic

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"sentinel-hq/sentinel/pkg/screening"
	"sentinel-hq/sentinel/pkg/sources"
)

// Default confidences when the upstream response omits its own.
const (
	defaultMatchConfidence = 0.8
	defaultClearConfidence = 0.7
)

// Source queries a generic JSON screening endpoint.
type Source struct {
	*sources.HTTPSource
}

type checkResponse struct {
	IsBlocked  bool     `json:"is_blocked"`
	Confidence float64  `json:"confidence"`
	Reasons    []string `json:"reasons"`
}

// NewSource creates a new generic screening source.
func NewSource(cfg sources.Config) (*Source, error) {
	if cfg.Name == "" {
		return nil, &sources.ConfigError{
			Source:  "generic",
			Field:   "name",
			Message: "source name is required",
		}
	}
	if cfg.Endpoint == "" {
		return nil, &sources.ConfigError{
			Source:  cfg.Name,
			Field:   "endpoint",
			Message: "endpoint is required",
		}
	}

	s := &Source{HTTPSource: sources.NewHTTPSource(cfg)}

	slog.Info("generic screening source initialized",
		"source", cfg.Name,
		"endpoint", cfg.Endpoint,
		"requires_auth", cfg.RequiresAuth,
	)

	return s, nil
}

// Check queries the endpoint with name and category parameters.
func (s *Source) Check(ctx context.Context, name, category string) (*screening.SourceCheckResult, error) {
	cfg := s.Config()

	if cfg.RequiresAuth && cfg.APIKey == "" {
		return nil, &sources.AuthError{
			Source:  cfg.Name,
			Message: "API key not configured",
		}
	}

	headers := map[string]string{}
	if cfg.APIKey != "" {
		headers["Authorization"] = "Bearer " + cfg.APIKey
	}

	params := url.Values{}
	params.Set("name", name)
	params.Set("category", category)

	var resp checkResponse
	if err := s.DoJSONGet(ctx, cfg.Endpoint, params, &resp, headers); err != nil {
		return nil, err
	}

	if resp.IsBlocked {
		confidence := resp.Confidence
		if confidence == 0 {
			confidence = defaultMatchConfidence
		}
		reasons := resp.Reasons
		if len(reasons) == 0 {
			reasons = []string{fmt.Sprintf("%s match", cfg.Name)}
		}
		return &screening.SourceCheckResult{
			IsBlocked:  true,
			Confidence: confidence,
			Reasons:    reasons,
		}, nil
	}

	confidence := resp.Confidence
	if confidence == 0 {
		confidence = defaultClearConfidence
	}
	return &screening.SourceCheckResult{
		IsBlocked:  false,
		Confidence: confidence,
	}, nil
}
