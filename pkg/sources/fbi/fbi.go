// Package fbi implements the FBI Wanted public API adapter. The API is
// open; no credential is required.
package fbi

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"sentinel-hq/sentinel/pkg/screening"
	"sentinel-hq/sentinel/pkg/screening/normalize"
	"sentinel-hq/sentinel/pkg/sources"
)

const matchConfidence = 0.95

const clearConfidence = 0.8

// Source queries the FBI Wanted list.
type Source struct {
	*sources.HTTPSource
}

type listResponse struct {
	Items []listItem `json:"items"`
}

type listItem struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Subjects    []string `json:"subjects"`
	WarningTxt  string   `json:"warning_message"`
	URL         string   `json:"url"`
}

// NewSource creates a new FBI Wanted source.
func NewSource(cfg sources.Config) (*Source, error) {
	if cfg.Name == "" {
		return nil, &sources.ConfigError{
			Source:  "fbi",
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

	slog.Info("FBI Wanted source initialized",
		"source", cfg.Name,
		"endpoint", cfg.Endpoint,
	)

	return s, nil
}

// Check searches the wanted list for the name.
func (s *Source) Check(ctx context.Context, name, category string) (*screening.SourceCheckResult, error) {
	cfg := s.Config()

	params := url.Values{}
	params.Set("title", name)

	var resp listResponse
	if err := s.DoJSONGet(ctx, cfg.Endpoint, params, &resp, nil); err != nil {
		return nil, err
	}

	for _, item := range resp.Items {
		if normalize.Matches(name, item.Title) {
			reason := fmt.Sprintf("FBI Most Wanted: %s", strings.TrimSpace(item.Description))
			return &screening.SourceCheckResult{
				IsBlocked:  true,
				Confidence: matchConfidence,
				Reasons:    []string{reason},
				SourceData: map[string]any{
					"title":       item.Title,
					"description": item.Description,
					"subjects":    item.Subjects,
					"url":         item.URL,
				},
			}, nil
		}
	}

	return &screening.SourceCheckResult{
		IsBlocked:  false,
		Confidence: clearConfidence,
	}, nil
}
