// Package ofac implements the consolidated screening list adapter
// (OFAC Specially Designated Nationals and related trade lists).
//
// The upstream API requires an API key; a source configured without one
// answers every lookup with an AuthError, which the engine records as
// "no data" rather than a clear.
package ofac

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"sentinel-hq/sentinel/pkg/screening"
	"sentinel-hq/sentinel/pkg/screening/normalize"
	"sentinel-hq/sentinel/pkg/sources"
)

// matchConfidence is the confidence reported for an SDN record match.
const matchConfidence = 0.9

// clearConfidence is the confidence reported when the list was searched
// and no record matched.
const clearConfidence = 0.8

// Source queries the consolidated screening list API.
type Source struct {
	*sources.HTTPSource
}

// searchResponse is the upstream response shape.
type searchResponse struct {
	Results []searchResult `json:"results"`
}

type searchResult struct {
	Name     string   `json:"name"`
	Type     string   `json:"type"`
	Programs []string `json:"programs"`
	Remarks  string   `json:"remarks"`
	Source   string   `json:"source"`
}

// NewSource creates a new OFAC screening list source.
func NewSource(cfg sources.Config) (*Source, error) {
	if cfg.Name == "" {
		return nil, &sources.ConfigError{
			Source:  "ofac",
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

	slog.Info("OFAC screening source initialized",
		"source", cfg.Name,
		"endpoint", cfg.Endpoint,
	)

	return s, nil
}

// Check searches the consolidated list for the name.
func (s *Source) Check(ctx context.Context, name, category string) (*screening.SourceCheckResult, error) {
	cfg := s.Config()
	if cfg.APIKey == "" {
		return nil, &sources.AuthError{
			Source:  cfg.Name,
			Message: "API key not configured",
		}
	}

	params := url.Values{}
	params.Set("api_key", cfg.APIKey)
	params.Set("q", name)
	params.Set("type", "Individual")

	var resp searchResponse
	if err := s.DoJSONGet(ctx, cfg.Endpoint, params, &resp, nil); err != nil {
		return nil, err
	}

	for _, result := range resp.Results {
		if normalize.Matches(name, result.Name) {
			return &screening.SourceCheckResult{
				IsBlocked:  true,
				Confidence: matchConfidence,
				Reasons:    []string{fmt.Sprintf("OFAC SDN: %v", result.Programs)},
				SourceData: map[string]any{
					"name":     result.Name,
					"type":     result.Type,
					"programs": result.Programs,
					"remarks":  result.Remarks,
					"source":   result.Source,
				},
			}, nil
		}
	}

	return &screening.SourceCheckResult{
		IsBlocked:  false,
		Confidence: clearConfidence,
	}, nil
}
