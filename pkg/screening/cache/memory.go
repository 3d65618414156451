package cache

import (
	"context"
	"sync"
	"time"

	"sentinel-hq/sentinel/pkg/screening"
)

// MemoryStore implements the Store interface using an in-memory map.
// Useful for tests and for runs that do not need verdicts to survive a
// restart.
type MemoryStore struct {
	records map[string]*screening.CacheRecord
	logs    []*screening.CheckLog
	mu      sync.RWMutex
}

// NewMemoryStore creates a new in-memory cache backend.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]*screening.CacheRecord),
	}
}

// Get returns the cached record for a name hash, or (nil, false) if the
// record is absent or expired.
func (s *MemoryStore) Get(ctx context.Context, hashKey string) (*screening.CacheRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[hashKey]
	if !ok || record.Expired(time.Now()) {
		return nil, false, nil
	}

	// Copy to keep stored records immutable from the caller's view
	recordCopy := *record
	return &recordCopy, true, nil
}

// Put upserts a record by its name hash.
func (s *MemoryStore) Put(ctx context.Context, record *screening.CacheRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	recordCopy := *record
	s.records[record.NameHash] = &recordCopy
	return nil
}

// Clear removes all cached records.
func (s *MemoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = make(map[string]*screening.CacheRecord)
	return nil
}

// Sweep deletes expired records and returns how many were removed.
func (s *MemoryStore) Sweep(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	var deleted int64
	for hash, record := range s.records {
		if record.Expired(now) {
			delete(s.records, hash)
			deleted++
		}
	}
	return deleted, nil
}

// LogCheck appends one per-source audit entry.
func (s *MemoryStore) LogCheck(ctx context.Context, entry *screening.CheckLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entryCopy := *entry
	s.logs = append(s.logs, &entryCopy)
	return nil
}

// CountCached returns the number of cached records, expired included.
func (s *MemoryStore) CountCached(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.records)), nil
}

// CountBlocked returns the number of cached blocked verdicts.
func (s *MemoryStore) CountBlocked(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, record := range s.records {
		if record.IsBlocked {
			count++
		}
	}
	return count, nil
}

// CountRecentChecks returns the number of audit entries newer than the cutoff.
func (s *MemoryStore) CountRecentChecks(ctx context.Context, since time.Time) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, entry := range s.logs {
		if entry.Timestamp.After(since) {
			count++
		}
	}
	return count, nil
}

// Close is a no-op for the memory backend.
func (s *MemoryStore) Close() error {
	return nil
}
