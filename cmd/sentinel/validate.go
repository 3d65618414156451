package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var validateFlags struct {
	category string
	jsonOut  bool
	timeout  time.Duration
}

var validateCmd = &cobra.Command{
	Use:   "validate <name> [name...]",
	Short: "Screen one or more names against the configured sources",
	Long: `Screen names against every enabled watchlist source and print the
aggregated verdict. Cached verdicts are served when still valid.

Examples:
  # Screen a single name
  sentinel validate "John Doe"

  # Screen several names at once
  sentinel validate "John Doe" "Jane Roe"

  # Machine-readable output
  sentinel validate --json "John Doe"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVar(&validateFlags.category, "category", "", "category hint passed to the sources")
	validateCmd.Flags().BoolVar(&validateFlags.jsonOut, "json", false, "print results as JSON")
	validateCmd.Flags().DurationVar(&validateFlags.timeout, "timeout", 60*time.Second, "overall screening timeout")
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	eng, store, _, failed, err := buildEngine(cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	defer eng.Registry().Close()

	for _, ferr := range failed {
		fmt.Fprintf(os.Stderr, "warning: %v\n", ferr)
	}

	ctx, cancel := context.WithTimeout(context.Background(), validateFlags.timeout)
	defer cancel()

	items := eng.ValidateBatch(ctx, args, validateFlags.category)

	if validateFlags.jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(items)
	}

	var hadError bool
	for _, item := range items {
		if item.Err != nil {
			hadError = true
			fmt.Printf("%-30s ERROR    %v\n", item.Name, item.Err)
			continue
		}

		verdict := "CLEAR"
		if item.Result.IsBlocked {
			verdict = "BLOCKED"
		}
		fmt.Printf("%-30s %-8s confidence=%.2f", item.Name, verdict, item.Result.Confidence)
		if len(item.Result.Sources) > 0 {
			fmt.Printf(" sources=%s", strings.Join(item.Result.Sources, ","))
		}
		fmt.Println()
		for _, reason := range item.Result.Reasons {
			fmt.Printf("    %s\n", reason)
		}
	}

	if hadError {
		return fmt.Errorf("one or more names could not be screened")
	}
	return nil
}
