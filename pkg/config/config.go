package config

import (
	"time"

	"sentinel-hq/sentinel/pkg/sources"
)

// Config is the root configuration structure for Sentinel. It contains all
// configuration sections for the HTTP API server, the verdict cache, the
// watchlist sources, and telemetry.
type Config struct {
	// Server contains HTTP API server configuration including listen
	// address, timeouts, and connection limits.
	Server ServerConfig `yaml:"server"`

	// Cache contains verdict cache configuration including the storage
	// backend, verdict time-to-live, and the sweep schedule.
	Cache CacheConfig `yaml:"cache"`

	// Sources lists every configured watchlist source. Order matters:
	// blocking reasons are reported in this order.
	Sources []sources.Config `yaml:"sources"`

	// Telemetry contains observability configuration for logging and
	// metrics.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig contains configuration for the HTTP API server.
type ServerConfig struct {
	// ListenAddress is the address and port to listen on.
	// Format: "host:port" (e.g., "127.0.0.1:8080", "0.0.0.0:8080").
	// Default: "127.0.0.1:8080"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire request,
	// including the body. A zero or negative value means no timeout.
	// Default: 15s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of
	// the response. Must cover a full source fan-out.
	// Default: 60s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the maximum amount of time to wait for the next
	// request when keep-alives are enabled.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout is the maximum duration to wait for graceful
	// shutdown before in-flight requests are dropped.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxHeaderBytes limits the size of request headers.
	// Default: 1048576 (1MB)
	MaxHeaderBytes int `yaml:"max_header_bytes"`
}

// CacheConfig contains configuration for the verdict cache.
type CacheConfig struct {
	// Backend selects the cache storage backend: "sqlite" or "memory".
	// Default: "sqlite"
	Backend string `yaml:"backend"`

	// TTL is how long a cached verdict stays valid.
	// Default: 24h
	TTL time.Duration `yaml:"ttl"`

	// SweepSchedule is a cron expression controlling when expired
	// verdicts are deleted. Empty disables the sweeper.
	// Default: "0 * * * *" (hourly)
	SweepSchedule string `yaml:"sweep_schedule"`

	// SQLite contains backend settings used when Backend is "sqlite".
	SQLite SQLiteConfig `yaml:"sqlite"`
}

// SQLiteConfig contains SQLite cache backend settings.
type SQLiteConfig struct {
	// Path is the database file path.
	// Default: "./data/sentinel.db"
	Path string `yaml:"path"`

	// MaxOpenConns limits open database connections.
	// Default: 10
	MaxOpenConns int `yaml:"max_open_conns"`

	// MaxIdleConns limits idle database connections.
	// Default: 5
	MaxIdleConns int `yaml:"max_idle_conns"`

	// WALMode enables write-ahead logging.
	// Default: true
	WALMode bool `yaml:"wal_mode"`

	// BusyTimeout is how long SQLite waits on a locked database.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	// Logging contains structured logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains Prometheus metrics configuration.
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig contains structured logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	// Default: "info"
	Level string `yaml:"level"`

	// Format selects the output encoding: "json" or "text".
	// Default: "json"
	Format string `yaml:"format"`

	// Output selects the destination: "stdout" or "stderr".
	// Default: "stdout"
	Output string `yaml:"output"`
}

// MetricsConfig contains Prometheus metrics configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics are collected and exposed.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path the metrics endpoint is mounted at.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the Prometheus metric namespace.
	// Default: "sentinel"
	Namespace string `yaml:"namespace"`

	// Subsystem is the Prometheus metric subsystem.
	// Default: "screening"
	Subsystem string `yaml:"subsystem"`

	// SourceLatencyBuckets are histogram buckets for source lookup
	// latencies in seconds. Defaults cover 50ms to 30s.
	SourceLatencyBuckets []float64 `yaml:"source_latency_buckets"`
}
