package cache

import (
	"context"
	"time"

	"sentinel-hq/sentinel/pkg/screening"
)

// Store is the verdict cache contract.
//
// Implementations must support concurrent Get/Put from multiple in-flight
// validations without corruption. Records are always replaced whole, so a
// single-writer mutex or a transactional store is sufficient.
type Store interface {
	// Get returns the cached record for a name hash, or (nil, false) if
	// the record is absent or expired. The expiry check happens here, not
	// in the caller.
	Get(ctx context.Context, hashKey string) (*screening.CacheRecord, bool, error)

	// Put upserts a record by its name hash, replacing any prior record
	// atomically.
	Put(ctx context.Context, record *screening.CacheRecord) error

	// Clear removes all cached records.
	Clear(ctx context.Context) error

	// Sweep deletes expired records and returns how many were removed.
	Sweep(ctx context.Context) (int64, error)

	// LogCheck appends one per-source audit entry.
	LogCheck(ctx context.Context, entry *screening.CheckLog) error

	// CountCached returns the number of cached records, expired included.
	CountCached(ctx context.Context) (int64, error)

	// CountBlocked returns the number of cached blocked verdicts.
	CountBlocked(ctx context.Context) (int64, error)

	// CountRecentChecks returns the number of audit entries newer than
	// the given cutoff.
	CountRecentChecks(ctx context.Context, since time.Time) (int64, error)

	// Close releases any resources held by the store.
	Close() error
}
