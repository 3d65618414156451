// Sentinel is a multi-source watchlist screening service.
//
// It screens candidate names against sanctions and wanted-person lists
// (OFAC, FBI, Interpol, consolidated sanctions feeds, local denylists),
// aggregates the per-source answers into one verdict, and caches verdicts
// with a configurable time-to-live.
//
// Usage:
//
//	# Start the API server with default configuration
//	sentinel run
//
//	# Start with a custom configuration file
//	sentinel run --config /etc/sentinel/config.yaml
//
//	# Screen a name from the command line
//	sentinel validate "John Doe"
//
//	# Show configured sources
//	sentinel sources list
//
//	# Cache maintenance
//	sentinel cache clear
//	sentinel cache sweep
//
//	# Show cache and screening statistics
//	sentinel stats
package main

func main() {
	Execute()
}
