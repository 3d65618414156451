package screening

import "time"

// WatchlistResult is the aggregated verdict for one screened name.
// It is immutable once constructed; cached and fresh verdicts share the
// same shape.
type WatchlistResult struct {
	// Name is the candidate name exactly as submitted.
	Name string `json:"name"`

	// IsBlocked is true if at least one source reported a match.
	IsBlocked bool `json:"is_blocked"`

	// Sources lists the names of every source that reported a match.
	// Non-empty whenever IsBlocked is true.
	Sources []string `json:"sources"`

	// Confidence is the engine's certainty in the verdict, in [0,1].
	// For blocked verdicts it is the maximum confidence among blocking
	// sources; for clear verdicts the maximum among all sources that
	// answered, or 0 if none did.
	Confidence float64 `json:"confidence"`

	// Reasons concatenates the blocking sources' reasons in registry
	// iteration order.
	Reasons []string `json:"reasons"`

	// LastUpdated is when the verdict was computed (not when it was
	// served from cache).
	LastUpdated time.Time `json:"last_updated"`

	// RawData holds the per-source outcome keyed by source name. A nil
	// value records a source that produced no usable answer.
	RawData map[string]*SourceCheckResult `json:"raw_data"`
}

// SourceCheckResult is one source's answer for one screened name.
// The absence of a SourceCheckResult (a source error, timeout, or missing
// credential) is "no data" and must not be read as a clear.
type SourceCheckResult struct {
	// IsBlocked is true if the source holds a matching record.
	IsBlocked bool `json:"is_blocked"`

	// Confidence is the source's certainty in its answer, in [0,1].
	Confidence float64 `json:"confidence"`

	// Reasons describe each matching record, if any.
	Reasons []string `json:"reasons,omitempty"`

	// SourceData carries the raw matched record for observability.
	SourceData map[string]any `json:"source_data,omitempty"`
}

// CacheRecord is the persisted form of a WatchlistResult. Records are keyed
// by the hash of the normalized name and always replaced whole; a record
// whose ExpiresAt has passed must never be served.
type CacheRecord struct {
	NameHash   string                        `json:"name_hash"`
	FullName   string                        `json:"full_name"`
	IsBlocked  bool                          `json:"is_blocked"`
	Sources    []string                      `json:"sources"`
	Confidence float64                       `json:"confidence"`
	Reasons    []string                      `json:"reasons"`
	RawData    map[string]*SourceCheckResult `json:"raw_data"`
	CreatedAt  time.Time                     `json:"created_at"`
	ExpiresAt  time.Time                     `json:"expires_at"`
}

// Expired reports whether the record is stale at the given instant.
func (r *CacheRecord) Expired(now time.Time) bool {
	return !r.ExpiresAt.After(now)
}

// Result converts the cached record back into a WatchlistResult.
func (r *CacheRecord) Result() WatchlistResult {
	return WatchlistResult{
		Name:        r.FullName,
		IsBlocked:   r.IsBlocked,
		Sources:     r.Sources,
		Confidence:  r.Confidence,
		Reasons:     r.Reasons,
		LastUpdated: r.CreatedAt,
		RawData:     r.RawData,
	}
}

// CheckLog is one audit entry for a single source check within a run.
type CheckLog struct {
	Name         string        `json:"name"`
	Source       string        `json:"source"`
	Result       string        `json:"result"`
	ResponseTime time.Duration `json:"response_time"`
	Timestamp    time.Time     `json:"timestamp"`
}

// Stats summarizes engine and cache activity.
type Stats struct {
	TotalCached        int64    `json:"total_cached_results"`
	TotalBlocked       int64    `json:"total_blocked_names"`
	RecentValidations  int64    `json:"recent_validations_24h"`
	EnabledSources     []string `json:"enabled_sources"`
	CacheDurationHours int      `json:"cache_duration_hours"`
}
