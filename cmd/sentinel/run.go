package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"sentinel-hq/sentinel/pkg/config"
	"sentinel-hq/sentinel/pkg/screening/cache"
	"sentinel-hq/sentinel/pkg/server"
	"sentinel-hq/sentinel/pkg/sources"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
	watch         bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the Sentinel API server",
	Long: `Start the Sentinel API server with the specified configuration.

The server exposes the screening API, starts the cache sweeper, and serves
Prometheus metrics.

Examples:
  # Start with default config
  sentinel run

  # Start with custom config
  sentinel run --config /etc/sentinel/config.yaml

  # Override listen address
  sentinel run --listen 0.0.0.0:8080

  # Reload source credentials when the config file changes
  sentinel run --watch

  # Validate config without starting the server
  sentinel run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting the server")
	runCmd.Flags().BoolVar(&runFlags.watch, "watch", false, "reload source settings when the config file changes")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}

	if runFlags.dryRun {
		fmt.Println("✓ Configuration valid")
		return nil
	}

	fmt.Printf("Sentinel v%s\n", Version)
	fmt.Printf("Loading configuration from: %s\n", cfgFile)
	fmt.Println("✓ Configuration loaded")

	eng, store, collector, failed, err := buildEngine(cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	defer eng.Registry().Close()

	for _, ferr := range failed {
		slog.Warn("source failed to initialize", "error", ferr)
	}
	fmt.Printf("✓ Sources registered (%d enabled)\n", len(eng.Registry().EnabledNames()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Cache sweeper
	if cfg.Cache.SweepSchedule != "" {
		sweeper := cache.NewSweeper(store, cfg.Cache.SweepSchedule)
		if err := sweeper.Start(ctx); err != nil {
			slog.Warn("failed to start cache sweeper", "error", err)
		} else {
			defer sweeper.Stop()
			fmt.Println("✓ Cache sweeper started")
		}
	}

	// Config watcher
	if runFlags.watch {
		watcher, err := config.NewWatcher(cfgFile, slog.Default())
		if err != nil {
			slog.Warn("failed to create config watcher", "error", err)
		} else {
			defer watcher.Close()
			go func() {
				if err := watcher.Watch(ctx, func(newCfg *config.Config) {
					applySourceChanges(eng.Registry(), newCfg.Sources)
				}); err != nil {
					slog.Error("config watcher stopped", "error", err)
				}
			}()
			fmt.Println("✓ Config watcher started")
		}
	}

	srv := server.New(&cfg.Server, &cfg.Telemetry.Metrics, eng, collector)

	fmt.Printf("✓ Server listening on %s\n", cfg.Server.ListenAddress)
	if cfg.Telemetry.Metrics.Enabled {
		fmt.Printf("✓ Metrics endpoint: http://%s%s\n", cfg.Server.ListenAddress, cfg.Telemetry.Metrics.Path)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	return srv.Start(ctx)
}

// applySourceChanges syncs a reloaded source list into the running
// registry. Only credentials and enabled state are applied; adding or
// removing sources requires a restart.
func applySourceChanges(registry *sources.Registry, configs []sources.Config) {
	current := make(map[string]sources.Config)
	for _, cfg := range registry.Configs() {
		current[cfg.Name] = cfg
	}

	for _, next := range configs {
		prev, ok := current[next.Name]
		if !ok {
			slog.Warn("new source in reloaded config ignored, restart to add sources",
				"source", next.Name)
			continue
		}

		if next.APIKey != prev.APIKey && next.APIKey != "" {
			if err := registry.Configure(next.Name, next.APIKey); err != nil {
				slog.Error("failed to apply reloaded API key", "source", next.Name, "error", err)
			}
		}
		if next.Enabled != prev.Enabled {
			var err error
			if next.Enabled {
				err = registry.Enable(next.Name)
			} else {
				err = registry.Disable(next.Name)
			}
			if err != nil {
				slog.Error("failed to apply reloaded enabled state", "source", next.Name, "error", err)
			}
		}
	}
}
