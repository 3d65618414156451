package sources

import (
	"context"
	"time"

	"sentinel-hq/sentinel/pkg/screening"
)

// Client is the core interface every watchlist source adapter implements.
//
// All methods accept a context.Context for cancellation and timeout
// control. Implementations must respect context cancellation and return
// promptly when the context is cancelled.
type Client interface {
	// Check looks the name up in the source's records. It returns the
	// source's verdict, or (nil, err) when the lookup could not be
	// completed - which callers must treat as "no data", not as clear.
	Check(ctx context.Context, name, category string) (*screening.SourceCheckResult, error)

	// Name returns the source's configured name (e.g. "ofac_sdn").
	Name() string

	// Type returns the adapter type (e.g. "ofac", "fbi", "generic").
	Type() string

	// Health returns the source's current health information.
	Health() Health

	// Close releases any resources held by the client.
	Close() error
}

// Config describes one watchlist source. Mutable only through explicit
// registry operations; the engine reads a snapshot before each fan-out so
// a config change never affects a check already in flight.
type Config struct {
	// Name identifies the source ("ofac_sdn", "fbi_wanted", ...).
	Name string `yaml:"name"`

	// Type selects the adapter ("ofac", "fbi", "interpol", "sanctions",
	// "generic", "dataset"). Inferred from Name when empty.
	Type string `yaml:"type"`

	// Endpoint is the source's lookup URL.
	Endpoint string `yaml:"endpoint"`

	// RequiresAuth marks sources that cannot be queried without an APIKey.
	RequiresAuth bool `yaml:"requires_auth"`

	// APIKey authenticates requests when RequiresAuth is set. Typically
	// injected from the environment rather than written into config files.
	APIKey string `yaml:"api_key"`

	// RateLimitPerMinute caps lookups against this source. Zero disables
	// the limit.
	RateLimitPerMinute int `yaml:"rate_limit_per_minute"`

	// Enabled controls whether the source participates in fan-outs.
	Enabled bool `yaml:"enabled"`

	// Timeout bounds a single lookup. Default: 10s.
	Timeout time.Duration `yaml:"timeout"`

	// MaxRetries is the number of retry attempts for transient failures.
	// Default: 2.
	MaxRetries int `yaml:"max_retries"`

	// Dataset configures the "dataset" adapter; ignored by the others.
	Dataset DatasetConfig `yaml:"dataset"`
}

// DatasetConfig configures a local denylist source.
type DatasetConfig struct {
	// Path is the list file location on disk.
	Path string `yaml:"path"`

	// GitURL, when set, is a repository the list file is synced from.
	GitURL string `yaml:"git_url"`

	// GitBranch is the branch to sync. Default: the remote default branch.
	GitBranch string `yaml:"git_branch"`

	// GitDir is the local clone location. Default: alongside Path.
	GitDir string `yaml:"git_dir"`

	// RefreshSchedule is a cron expression for re-syncing and reloading
	// the list. Empty disables scheduled refresh.
	RefreshSchedule string `yaml:"refresh_schedule"`

	// SnapshotDB is an optional SQLite file the loaded list is mirrored
	// into, so the source can answer before the first sync completes.
	SnapshotDB string `yaml:"snapshot_db"`
}

// Health holds a source's availability information, maintained by the
// shared HTTP base after every request.
type Health struct {
	// IsHealthy is false after ConsecutiveFailures reaches the breaker
	// threshold.
	IsHealthy bool

	// LastCheck is when health was last updated.
	LastCheck time.Time

	// ConsecutiveFailures counts failures since the last success.
	ConsecutiveFailures int

	// LastError is the most recent failure, nil after a success.
	LastError error

	// LastSuccessfulRequest is when the source last answered.
	LastSuccessfulRequest time.Time

	// TotalRequests and FailedRequests count lifetime lookups.
	TotalRequests  int64
	FailedRequests int64
}
