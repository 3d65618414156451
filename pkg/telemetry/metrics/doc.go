// Package metrics provides Prometheus instrumentation for Sentinel.
//
// The Collector owns a private Prometheus registry and groups metrics by
// concern: screening verdicts, source lookups, and the verdict cache. All
// metrics share the configured namespace and subsystem, so a default
// installation produces series like sentinel_screening_validations_total.
package metrics
