// Package interpol implements the Interpol Red Notices adapter. The query
// splits the candidate into forename and family name the way the upstream
// API expects.
package interpol

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

const matchConfidence = 0.9

const clearConfidence = 0.8

// Source queries the Red Notices API.
type Source struct {
	*sources.HTTPSource
}

type noticesResponse struct {
	Embedded struct {
		Notices []notice `json:"notices"`
	} `json:"_embedded"`
}

type notice struct {
	Name           string   `json:"name"`
	Forename       string   `json:"forename"`
	EntityID       string   `json:"entity_id"`
	Nationalities  []string `json:"nationalities"`
	ArrestWarrants []struct {
		Charge        string `json:"charge"`
		IssuingCountry string `json:"issuing_country_id"`
	} `json:"arrest_warrants"`
}

// NewSource creates a new Interpol Red Notices source.
func NewSource(cfg sources.Config) (*Source, error) {
	if cfg.Name == "" {
		return nil, &sources.ConfigError{
			Source:  "interpol",
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

	slog.Info("Interpol Red Notices source initialized",
		"source", cfg.Name,
		"endpoint", cfg.Endpoint,
	)

	return s, nil
}

// Check searches red notices for the name.
func (s *Source) Check(ctx context.Context, name, category string) (*screening.SourceCheckResult, error) {
	cfg := s.Config()

	params := url.Values{}
	fields := strings.Fields(name)
	if len(fields) > 1 {
		params.Set("forename", fields[0])
		params.Set("name", strings.Join(fields[1:], " "))
	} else {
		params.Set("name", name)
	}

	var resp noticesResponse
	if err := s.DoJSONGet(ctx, cfg.Endpoint, params, &resp, nil); err != nil {
		return nil, err
	}

	for _, n := range resp.Embedded.Notices {
		full := strings.TrimSpace(n.Forename + " " + n.Name)
		if normalize.Matches(name, full) {
			charges := make([]string, 0, len(n.ArrestWarrants))
			for _, w := range n.ArrestWarrants {
				charges = append(charges, w.Charge)
			}
			return &screening.SourceCheckResult{
				IsBlocked:  true,
				Confidence: matchConfidence,
				Reasons:    []string{fmt.Sprintf("Interpol Red Notice: %v", charges)},
				SourceData: map[string]any{
					"name":          full,
					"entity_id":     n.EntityID,
					"nationalities": n.Nationalities,
					"charges":       charges,
				},
			}, nil
		}
	}

	return &screening.SourceCheckResult{
		IsBlocked:  false,
		Confidence: clearConfidence,
	}, nil
}
