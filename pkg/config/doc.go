// Package config loads and validates Sentinel's YAML configuration.
//
// Configuration is loaded in three stages: the YAML file is parsed, defaults
// are applied to unset fields, and SENTINEL_* environment variables override
// the result. The final configuration is validated before use.
//
// Example minimal configuration:
//
//	server:
//	  listen_address: "127.0.0.1:8080"
//	cache:
//	  backend: sqlite
//	  ttl: 24h
//	sources:
//	  - name: ofac
//	    endpoint: "https://api.trade.gov/consolidated_screening_list/search"
//	    requires_auth: true
//	    enabled: true
//
// Environment overrides follow the SENTINEL_SECTION_FIELD convention, e.g.
// SENTINEL_SERVER_LISTEN_ADDRESS or SENTINEL_SOURCES_OFAC_API_KEY.
package config
