package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Verdict cache maintenance",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Drop every cached verdict",
	Long: `Delete all cached verdicts. Subsequent screenings consult the sources
fresh.

Examples:
  sentinel cache clear`,
	RunE: runCacheClear,
}

var cacheSweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Delete expired verdicts now",
	Long: `Run one expiry sweep immediately, independent of the configured sweep
schedule.

Examples:
  sentinel cache sweep`,
	RunE: runCacheSweep,
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheSweepCmd)
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := buildStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Clear(context.Background()); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	fmt.Println("✓ Cache cleared")
	return nil
}

func runCacheSweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := buildStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	deleted, err := store.Sweep(context.Background())
	if err != nil {
		return fmt.Errorf("sweep failed: %w", err)
	}
	fmt.Printf("✓ Sweep complete (%d expired verdicts deleted)\n", deleted)
	return nil
}
