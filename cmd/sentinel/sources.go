package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "Inspect configured watchlist sources",
}

var sourcesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured sources and their state",
	Long: `List every configured source with its type, enabled state, credential
presence, and rate limit.

Examples:
  sentinel sources list`,
	RunE: runSourcesList,
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
	sourcesCmd.AddCommand(sourcesListCmd)
}

func runSourcesList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	registry, failed := buildRegistry(cfg)
	defer registry.Close()
	for _, ferr := range failed {
		fmt.Fprintf(os.Stderr, "warning: %v\n", ferr)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tTYPE\tENABLED\tAUTH\tKEY\tRATE LIMIT/MIN")
	for _, src := range registry.Configs() {
		key := "-"
		if src.APIKey != "" {
			key = "set"
		} else if src.RequiresAuth {
			key = "MISSING"
		}
		limit := "-"
		if src.RateLimitPerMinute > 0 {
			limit = fmt.Sprintf("%d", src.RateLimitPerMinute)
		}
		fmt.Fprintf(w, "%s\t%s\t%t\t%t\t%s\t%s\n",
			src.Name, src.Type, src.Enabled, src.RequiresAuth, key, limit)
	}
	return w.Flush()
}
