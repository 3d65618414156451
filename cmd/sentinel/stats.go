package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var statsFlags struct {
	jsonOut bool
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache and screening statistics",
	Long: `Show the number of cached verdicts, blocked names, recent screenings,
and the enabled sources.

Examples:
  sentinel stats
  sentinel stats --json`,
	RunE: runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().BoolVar(&statsFlags.jsonOut, "json", false, "print statistics as JSON")
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	eng, store, _, _, err := buildEngine(cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	defer eng.Registry().Close()

	stats, err := eng.Stats(context.Background())
	if err != nil {
		return fmt.Errorf("failed to compute statistics: %w", err)
	}

	if statsFlags.jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	}

	fmt.Printf("Cached verdicts:      %d\n", stats.TotalCached)
	fmt.Printf("Blocked names:        %d\n", stats.TotalBlocked)
	fmt.Printf("Screenings (24h):     %d\n", stats.RecentValidations)
	fmt.Printf("Cache TTL:            %dh\n", stats.CacheDurationHours)
	fmt.Printf("Enabled sources:      %s\n", strings.Join(stats.EnabledSources, ", "))
	return nil
}
