package config

import (
	"strings"
	"testing"

	"sentinel-hq/sentinel/pkg/sources"
)

func validTestConfig() *Config {
	cfg := &Config{
		Sources: []sources.Config{
			{
				Name:     "fbi",
				Type:     "fbi",
				Endpoint: "https://api.fbi.gov/wanted/v1/list",
				Enabled:  true,
			},
		},
	}
	ApplyDefaults(cfg)
	return cfg
}

func TestValidateAccepts(t *testing.T) {
	if err := Validate(validTestConfig()); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantSub string
	}{
		{
			name:    "bad listen address",
			mutate:  func(c *Config) { c.Server.ListenAddress = "no-port" },
			wantSub: "server.listen_address",
		},
		{
			name:    "unsupported cache backend",
			mutate:  func(c *Config) { c.Cache.Backend = "redis" },
			wantSub: "cache.backend",
		},
		{
			name:    "non-positive ttl",
			mutate:  func(c *Config) { c.Cache.TTL = 0 },
			wantSub: "cache.ttl",
		},
		{
			name:    "bad sweep schedule",
			mutate:  func(c *Config) { c.Cache.SweepSchedule = "every hour please" },
			wantSub: "cache.sweep_schedule",
		},
		{
			name:    "missing source name",
			mutate:  func(c *Config) { c.Sources[0].Name = "" },
			wantSub: "sources[0].name",
		},
		{
			name: "duplicate source name",
			mutate: func(c *Config) {
				c.Sources = append(c.Sources, c.Sources[0])
			},
			wantSub: "duplicate source name",
		},
		{
			name:    "missing endpoint",
			mutate:  func(c *Config) { c.Sources[0].Endpoint = "" },
			wantSub: "sources[0].endpoint",
		},
		{
			name:    "relative endpoint",
			mutate:  func(c *Config) { c.Sources[0].Endpoint = "/v1/list" },
			wantSub: "invalid endpoint URL",
		},
		{
			name: "dataset without path",
			mutate: func(c *Config) {
				c.Sources[0].Type = "dataset"
				c.Sources[0].Endpoint = ""
			},
			wantSub: "dataset.path",
		},
		{
			name:    "negative rate limit",
			mutate:  func(c *Config) { c.Sources[0].RateLimitPerMinute = -1 },
			wantSub: "rate_limit_per_minute",
		},
		{
			name:    "unknown log level",
			mutate:  func(c *Config) { c.Telemetry.Logging.Level = "verbose" },
			wantSub: "telemetry.logging.level",
		},
		{
			name:    "metrics path without slash",
			mutate:  func(c *Config) { c.Telemetry.Metrics.Path = "metrics" },
			wantSub: "telemetry.metrics.path",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validTestConfig()
			tt.mutate(cfg)

			err := Validate(cfg)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("error %q does not mention %q", err.Error(), tt.wantSub)
			}
		})
	}
}

func TestValidationErrorCollectsAll(t *testing.T) {
	cfg := validTestConfig()
	cfg.Server.ListenAddress = ""
	cfg.Cache.Backend = "redis"

	err := Validate(cfg)
	verr, ok := err.(ValidationError)
	if !ok {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if len(verr.Errors) < 2 {
		t.Errorf("expected at least 2 field errors, got %d", len(verr.Errors))
	}
}
