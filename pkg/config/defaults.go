package config

import "time"

// Default values for configuration fields.
const (
	// Server defaults
	DefaultListenAddress   = "127.0.0.1:8080"
	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 60 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultMaxHeaderBytes  = 1048576 // 1MB

	// Cache defaults
	DefaultCacheBackend       = "sqlite"
	DefaultCacheTTL           = 24 * time.Hour
	DefaultCacheSweepSchedule = "0 * * * *"
	DefaultSQLitePath         = "data/sentinel.db"
	DefaultSQLiteMaxOpenConns = 10
	DefaultSQLiteMaxIdleConns = 5
	DefaultSQLiteWALMode      = true
	DefaultSQLiteBusyTimeout  = 5 * time.Second

	// Source defaults
	DefaultSourceTimeout    = 10 * time.Second
	DefaultSourceMaxRetries = 2

	// Telemetry defaults
	DefaultLoggingLevel     = "info"
	DefaultLoggingFormat    = "json"
	DefaultLoggingOutput    = "stdout"
	DefaultMetricsEnabled   = true
	DefaultPrometheusPath   = "/metrics"
	DefaultMetricsNamespace = "sentinel"
	DefaultMetricsSubsystem = "screening"
)

// ApplyDefaults fills in default values for any configuration fields that
// are unset. It modifies the configuration in place.
func ApplyDefaults(cfg *Config) {
	// Server defaults
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.MaxHeaderBytes == 0 {
		cfg.Server.MaxHeaderBytes = DefaultMaxHeaderBytes
	}

	// Cache defaults
	if cfg.Cache.Backend == "" {
		cfg.Cache.Backend = DefaultCacheBackend
	}
	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = DefaultCacheTTL
	}
	if cfg.Cache.SweepSchedule == "" {
		cfg.Cache.SweepSchedule = DefaultCacheSweepSchedule
	}
	if cfg.Cache.SQLite.Path == "" {
		// An entirely unset sqlite section also gets WAL mode; an explicit
		// wal_mode: false with a path set is respected.
		cfg.Cache.SQLite.Path = DefaultSQLitePath
		cfg.Cache.SQLite.WALMode = DefaultSQLiteWALMode
	}
	if cfg.Cache.SQLite.MaxOpenConns == 0 {
		cfg.Cache.SQLite.MaxOpenConns = DefaultSQLiteMaxOpenConns
	}
	if cfg.Cache.SQLite.MaxIdleConns == 0 {
		cfg.Cache.SQLite.MaxIdleConns = DefaultSQLiteMaxIdleConns
	}
	if cfg.Cache.SQLite.BusyTimeout == 0 {
		cfg.Cache.SQLite.BusyTimeout = DefaultSQLiteBusyTimeout
	}

	// Source defaults
	for i := range cfg.Sources {
		if cfg.Sources[i].Timeout == 0 {
			cfg.Sources[i].Timeout = DefaultSourceTimeout
		}
		if cfg.Sources[i].MaxRetries == 0 {
			cfg.Sources[i].MaxRetries = DefaultSourceMaxRetries
		}
	}

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Logging.Output == "" {
		cfg.Telemetry.Logging.Output = DefaultLoggingOutput
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Enabled = DefaultMetricsEnabled
		cfg.Telemetry.Metrics.Path = DefaultPrometheusPath
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Telemetry.Metrics.Subsystem == "" {
		cfg.Telemetry.Metrics.Subsystem = DefaultMetricsSubsystem
	}
}
