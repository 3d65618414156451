package main

import (
	"fmt"

	"sentinel-hq/sentinel/pkg/config"
	"sentinel-hq/sentinel/pkg/screening/cache"
	"sentinel-hq/sentinel/pkg/screening/engine"
	"sentinel-hq/sentinel/pkg/sourcefactory"
	"sentinel-hq/sentinel/pkg/sources"
	"sentinel-hq/sentinel/pkg/telemetry/logging"
	"sentinel-hq/sentinel/pkg/telemetry/metrics"
)

// loadConfig loads the configuration file named by the global --config flag
// and installs the configured logger.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}
	if _, err := logging.New(cfg.Telemetry.Logging); err != nil {
		return nil, fmt.Errorf("failed to configure logging: %w", err)
	}

	return cfg, nil
}

// buildStore creates the verdict cache backend named by the configuration.
func buildStore(cfg *config.Config) (cache.Store, error) {
	switch cfg.Cache.Backend {
	case "sqlite":
		return cache.NewSQLiteStore(&cache.SQLiteConfig{
			Path:         cfg.Cache.SQLite.Path,
			MaxOpenConns: cfg.Cache.SQLite.MaxOpenConns,
			MaxIdleConns: cfg.Cache.SQLite.MaxIdleConns,
			WALMode:      cfg.Cache.SQLite.WALMode,
			BusyTimeout:  cfg.Cache.SQLite.BusyTimeout,
		})
	case "memory":
		return cache.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unsupported cache backend: %s", cfg.Cache.Backend)
	}
}

// buildRegistry creates the source registry with every configured source
// registered. A source that fails to build is reported but does not abort
// startup; the remaining sources still screen.
func buildRegistry(cfg *config.Config) (*sources.Registry, []error) {
	registry := sources.NewRegistry(sourcefactory.New)

	var failed []error
	for _, src := range cfg.Sources {
		if err := registry.Register(src); err != nil {
			failed = append(failed, fmt.Errorf("source %q: %w", src.Name, err))
		}
	}
	return registry, failed
}

// buildEngine assembles the full screening stack from the configuration.
// The returned collector is nil when metrics are disabled.
func buildEngine(cfg *config.Config) (*engine.Engine, cache.Store, *metrics.Collector, []error, error) {
	store, err := buildStore(cfg)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	registry, failed := buildRegistry(cfg)

	var collector *metrics.Collector
	if cfg.Telemetry.Metrics.Enabled {
		collector = metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
	}

	eng := engine.New(registry, store, engine.Options{
		TTL:     cfg.Cache.TTL,
		Metrics: collector,
	})

	return eng, store, collector, failed, nil
}
