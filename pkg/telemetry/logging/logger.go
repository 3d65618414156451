// Package logging configures structured logging for Sentinel on top of
// log/slog. It maps the telemetry configuration to a handler and carries
// per-validation identifiers through context.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"sentinel-hq/sentinel/pkg/config"
)

// New creates a slog.Logger from the logging configuration. The returned
// logger is also installed as the process-wide slog default so packages
// that log through slog.Default pick it up.
func New(cfg config.LoggingConfig) (*slog.Logger, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	writer, err := parseOutput(cfg.Output)
	if err != nil {
		return nil, err
	}

	handler, err := newHandler(cfg.Format, writer, level)
	if err != nil {
		return nil, err
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger, nil
}

func newHandler(format string, w io.Writer, level slog.Level) (slog.Handler, error) {
	opts := &slog.HandlerOptions{Level: level}

	switch strings.ToLower(format) {
	case "", "json":
		return slog.NewJSONHandler(w, opts), nil
	case "text":
		return slog.NewTextHandler(w, opts), nil
	default:
		return nil, fmt.Errorf("unsupported log format %q (supported: json, text)", format)
	}
}

func parseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unsupported log level %q (supported: debug, info, warn, error)", level)
	}
}

func parseOutput(output string) (io.Writer, error) {
	switch strings.ToLower(output) {
	case "", "stdout":
		return os.Stdout, nil
	case "stderr":
		return os.Stderr, nil
	default:
		return nil, fmt.Errorf("unsupported log output %q (supported: stdout, stderr)", output)
	}
}
