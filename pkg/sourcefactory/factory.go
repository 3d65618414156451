// Package sourcefactory builds source clients from configuration.
// It lives apart from pkg/sources so adapter packages can depend on the
// shared base without an import cycle.
package sourcefactory

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"sentinel-hq/sentinel/pkg/sources"
	"sentinel-hq/sentinel/pkg/sources/dataset"
	"sentinel-hq/sentinel/pkg/sources/fbi"
	"sentinel-hq/sentinel/pkg/sources/generic"
	"sentinel-hq/sentinel/pkg/sources/interpol"
	"sentinel-hq/sentinel/pkg/sources/ofac"
	"sentinel-hq/sentinel/pkg/sources/sanctions"
)

// New creates a source client based on the configuration.
//
// Supported source types:
//   - "ofac":      consolidated screening list JSON API (API key required)
//   - "fbi":       FBI Wanted public JSON API
//   - "interpol":  Interpol Red Notices API
//   - "sanctions": XML consolidated sanctions feeds (UN/EU style)
//   - "dataset":   local denylist file, optionally git-synced
//   - "generic":   any JSON screening API with the common response shape
//
// If Type is empty it is inferred from the source name; unknown names
// fall back to the generic adapter.
func New(cfg sources.Config) (sources.Client, error) {
	if cfg.Type == "" {
		cfg.Type = inferSourceType(cfg.Name)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 2
	}

	slog.Debug("creating source client",
		"source", cfg.Name,
		"type", cfg.Type,
		"endpoint", cfg.Endpoint,
	)

	var client sources.Client
	var err error

	switch cfg.Type {
	case "ofac":
		client, err = ofac.NewSource(cfg)

	case "fbi":
		client, err = fbi.NewSource(cfg)

	case "interpol":
		client, err = interpol.NewSource(cfg)

	case "sanctions":
		client, err = sanctions.NewSource(cfg)

	case "dataset":
		client, err = dataset.NewSource(cfg)

	case "generic":
		client, err = generic.NewSource(cfg)

	default:
		return nil, &sources.ConfigError{
			Source: cfg.Name,
			Field:  "type",
			Message: fmt.Sprintf(
				"unsupported source type: %q (supported: ofac, fbi, interpol, sanctions, dataset, generic)",
				cfg.Type),
		}
	}

	if err != nil {
		return nil, fmt.Errorf("failed to create source %q: %w", cfg.Name, err)
	}

	return client, nil
}

// inferSourceType infers the adapter type from the source name.
func inferSourceType(name string) string {
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "ofac"):
		return "ofac"
	case strings.Contains(lower, "fbi"):
		return "fbi"
	case strings.Contains(lower, "interpol"):
		return "interpol"
	case strings.Contains(lower, "sanction"):
		return "sanctions"
	case strings.Contains(lower, "denylist"), strings.Contains(lower, "dataset"):
		return "dataset"
	default:
		return "generic"
	}
}
