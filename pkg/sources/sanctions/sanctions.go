// Package sanctions implements an adapter for XML consolidated sanctions
// feeds (UN and EU style lists). The whole feed is fetched and scanned;
// name-bearing elements are matched against the queried name.
package sanctions

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"sentinel-hq/sentinel/pkg/screening"
	"sentinel-hq/sentinel/pkg/screening/normalize"
	"sentinel-hq/sentinel/pkg/sources"
)

const matchConfidence = 0.85

const clearConfidence = 0.7

// maxFeedBytes caps how much of a feed is read. Consolidated lists run a
// few megabytes; anything beyond this is truncated, not failed.
const maxFeedBytes = 32 << 20

// Source fetches and scans an XML sanctions feed.
type Source struct {
	*sources.HTTPSource
}

// NewSource creates a new XML sanctions feed source.
func NewSource(cfg sources.Config) (*Source, error) {
	if cfg.Name == "" {
		return nil, &sources.ConfigError{
			Source:  "sanctions",
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

	slog.Info("sanctions feed source initialized",
		"source", cfg.Name,
		"endpoint", cfg.Endpoint,
	)

	return s, nil
}

// Check fetches the feed and scans it for the name.
func (s *Source) Check(ctx context.Context, name, category string) (*screening.SourceCheckResult, error) {
	cfg := s.Config()

	feed, err := s.FetchBody(ctx, cfg.Endpoint, maxFeedBytes)
	if err != nil {
		return nil, err
	}

	matched, err := scanFeed(feed, name)
	if err != nil {
		return nil, &sources.ParseError{
			Source: cfg.Name,
			Cause:  err,
		}
	}

	if matched != "" {
		return &screening.SourceCheckResult{
			IsBlocked:  true,
			Confidence: matchConfidence,
			Reasons:    []string{fmt.Sprintf("%s: listed as %q", cfg.Name, matched)},
			SourceData: map[string]any{"listed_name": matched},
		}, nil
	}

	return &screening.SourceCheckResult{
		IsBlocked:  false,
		Confidence: clearConfidence,
	}, nil
}

// scanFeed streams the XML and matches the queried name against the text
// of every name-bearing element. Returns the first listed name that
// matches, or "" if none do.
func scanFeed(feed []byte, queried string) (string, error) {
	decoder := xml.NewDecoder(bytes.NewReader(feed))
	decoder.Strict = false

	var inNameElement bool
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			return "", nil
		}
		if err != nil {
			return "", err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			inNameElement = isNameElement(t.Name.Local)
		case xml.EndElement:
			inNameElement = false
		case xml.CharData:
			if !inNameElement {
				continue
			}
			candidate := strings.TrimSpace(string(t))
			if candidate == "" {
				continue
			}
			if normalize.Matches(queried, candidate) {
				return candidate, nil
			}
		}
	}
}

// isNameElement reports whether an element is expected to carry a listed
// person's name. Both the UN and EU schemas tag these with "NAME" in the
// element name.
func isNameElement(local string) bool {
	upper := strings.ToUpper(local)
	return strings.Contains(upper, "NAME") && !strings.Contains(upper, "FILENAME")
}
