package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "sentinel",
	Short: "Sentinel - multi-source watchlist screening service",
	Long: `Sentinel screens candidate names against sanctions and wanted-person
watchlists and aggregates the per-source answers into a single verdict.

It supports:
  - OFAC consolidated screening list, FBI Wanted, and Interpol Red Notices
  - Consolidated sanctions XML feeds and git-synced local denylists
  - Verdict caching with a configurable time-to-live
  - An HTTP API with per-source health, rate limits, and Prometheus metrics`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
