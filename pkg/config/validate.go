package config

import (
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/robfig/cron/v3"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field
	// (e.g., "server.listen_address").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any rules fail. All validation errors are collected and returned
// together rather than failing on the first one.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateServer(&cfg.Server)...)
	errs = append(errs, validateCache(&cfg.Cache)...)
	errs = append(errs, validateSources(cfg)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

func validateServer(cfg *ServerConfig) []FieldError {
	var errs []FieldError

	if cfg.ListenAddress == "" {
		errs = append(errs, FieldError{
			Field:   "server.listen_address",
			Message: "listen address is required",
		})
	} else if _, _, err := net.SplitHostPort(cfg.ListenAddress); err != nil {
		errs = append(errs, FieldError{
			Field:   "server.listen_address",
			Message: fmt.Sprintf("invalid host:port address: %v", err),
		})
	}

	if cfg.ShutdownTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.shutdown_timeout",
			Message: "must not be negative",
		})
	}

	return errs
}

func validateCache(cfg *CacheConfig) []FieldError {
	var errs []FieldError

	switch cfg.Backend {
	case "sqlite", "memory":
	default:
		errs = append(errs, FieldError{
			Field:   "cache.backend",
			Message: fmt.Sprintf("unsupported backend %q (supported: sqlite, memory)", cfg.Backend),
		})
	}

	if cfg.TTL <= 0 {
		errs = append(errs, FieldError{
			Field:   "cache.ttl",
			Message: "must be positive",
		})
	}

	if cfg.SweepSchedule != "" {
		if _, err := cron.ParseStandard(cfg.SweepSchedule); err != nil {
			errs = append(errs, FieldError{
				Field:   "cache.sweep_schedule",
				Message: fmt.Sprintf("invalid cron expression: %v", err),
			})
		}
	}

	if cfg.Backend == "sqlite" && cfg.SQLite.Path == "" {
		errs = append(errs, FieldError{
			Field:   "cache.sqlite.path",
			Message: "database path is required for the sqlite backend",
		})
	}

	return errs
}

func validateSources(cfg *Config) []FieldError {
	var errs []FieldError

	seen := make(map[string]bool, len(cfg.Sources))
	for i, src := range cfg.Sources {
		field := func(name string) string {
			return fmt.Sprintf("sources[%d].%s", i, name)
		}

		if src.Name == "" {
			errs = append(errs, FieldError{
				Field:   field("name"),
				Message: "source name is required",
			})
			continue
		}
		if seen[src.Name] {
			errs = append(errs, FieldError{
				Field:   field("name"),
				Message: fmt.Sprintf("duplicate source name %q", src.Name),
			})
		}
		seen[src.Name] = true

		if src.Type == "dataset" || src.Dataset.Path != "" {
			if src.Dataset.Path == "" {
				errs = append(errs, FieldError{
					Field:   field("dataset.path"),
					Message: "dataset path is required for dataset sources",
				})
			}
			if src.Dataset.RefreshSchedule != "" {
				if _, err := cron.ParseStandard(src.Dataset.RefreshSchedule); err != nil {
					errs = append(errs, FieldError{
						Field:   field("dataset.refresh_schedule"),
						Message: fmt.Sprintf("invalid cron expression: %v", err),
					})
				}
			}
		} else {
			if src.Endpoint == "" {
				errs = append(errs, FieldError{
					Field:   field("endpoint"),
					Message: "endpoint URL is required",
				})
			} else if u, err := url.Parse(src.Endpoint); err != nil || u.Scheme == "" || u.Host == "" {
				errs = append(errs, FieldError{
					Field:   field("endpoint"),
					Message: fmt.Sprintf("invalid endpoint URL %q", src.Endpoint),
				})
			}
		}

		if src.RateLimitPerMinute < 0 {
			errs = append(errs, FieldError{
				Field:   field("rate_limit_per_minute"),
				Message: "must not be negative",
			})
		}
		if src.Timeout < 0 {
			errs = append(errs, FieldError{
				Field:   field("timeout"),
				Message: "must not be negative",
			})
		}
	}

	return errs
}

func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("unsupported level %q (supported: debug, info, warn, error)", cfg.Logging.Level),
		})
	}

	switch cfg.Logging.Format {
	case "json", "text":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("unsupported format %q (supported: json, text)", cfg.Logging.Format),
		})
	}

	switch cfg.Logging.Output {
	case "stdout", "stderr":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.output",
			Message: fmt.Sprintf("unsupported output %q (supported: stdout, stderr)", cfg.Logging.Output),
		})
	}

	if cfg.Metrics.Enabled && !strings.HasPrefix(cfg.Metrics.Path, "/") {
		errs = append(errs, FieldError{
			Field:   "telemetry.metrics.path",
			Message: "must start with /",
		})
	}

	return errs
}
