package cache

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"sentinel-hq/sentinel/pkg/screening"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()

	cfg := DefaultSQLiteConfig()
	cfg.Path = filepath.Join(t.TempDir(), "cache.db")

	store, err := NewSQLiteStore(cfg)
	if err != nil {
		t.Fatalf("NewSQLiteStore() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return store
}

// TestSQLiteStore_PutAndGet tests round-tripping a record through SQLite.
func TestSQLiteStore_PutAndGet(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()

	record := testRecord("hash-1", true, time.Hour)
	if err := store.Put(ctx, record); err != nil {
		t.Fatalf("Put() failed: %v", err)
	}

	got, ok, err := store.Get(ctx, "hash-1")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if !ok {
		t.Fatal("Get() returned no record, want hit")
	}

	if got.FullName != record.FullName {
		t.Errorf("FullName = %q, want %q", got.FullName, record.FullName)
	}
	if got.IsBlocked != record.IsBlocked {
		t.Errorf("IsBlocked = %v, want %v", got.IsBlocked, record.IsBlocked)
	}
	if len(got.Sources) != 1 || got.Sources[0] != "ofac" {
		t.Errorf("Sources = %v, want [ofac]", got.Sources)
	}
	if got.Confidence != 0.9 {
		t.Errorf("Confidence = %v, want 0.9", got.Confidence)
	}
	if got.RawData["ofac"] == nil || !got.RawData["ofac"].IsBlocked {
		t.Errorf("RawData = %v, want ofac blocked entry", got.RawData)
	}
}

// TestSQLiteStore_ExpiredIsMiss verifies the expiry check happens inside Get.
func TestSQLiteStore_ExpiredIsMiss(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()

	if err := store.Put(ctx, testRecord("stale", true, -time.Minute)); err != nil {
		t.Fatalf("Put() failed: %v", err)
	}

	_, ok, err := store.Get(ctx, "stale")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if ok {
		t.Error("Get() returned an expired record")
	}

	// The row is still present until swept
	count, err := store.CountCached(ctx)
	if err != nil {
		t.Fatalf("CountCached() failed: %v", err)
	}
	if count != 1 {
		t.Errorf("CountCached() = %d, want 1 before sweep", count)
	}
}

// TestSQLiteStore_UpsertReplacesRow verifies INSERT OR REPLACE semantics.
func TestSQLiteStore_UpsertReplacesRow(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()

	store.Put(ctx, testRecord("hash-1", false, time.Hour))
	store.Put(ctx, testRecord("hash-1", true, time.Hour))

	got, ok, err := store.Get(ctx, "hash-1")
	if err != nil || !ok {
		t.Fatalf("Get() = %v, %v", ok, err)
	}
	if !got.IsBlocked {
		t.Error("upsert did not replace the prior row")
	}

	count, _ := store.CountCached(ctx)
	if count != 1 {
		t.Errorf("CountCached() = %d, want 1", count)
	}
}

// TestSQLiteStore_Sweep deletes only expired rows.
func TestSQLiteStore_Sweep(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()

	store.Put(ctx, testRecord("live", true, time.Hour))
	store.Put(ctx, testRecord("stale", false, -time.Minute))

	deleted, err := store.Sweep(ctx)
	if err != nil {
		t.Fatalf("Sweep() failed: %v", err)
	}
	if deleted != 1 {
		t.Errorf("Sweep() deleted %d rows, want 1", deleted)
	}

	if _, ok, _ := store.Get(ctx, "live"); !ok {
		t.Error("Sweep() removed an unexpired row")
	}
}

// TestSQLiteStore_ClearAndCounts tests Clear and the stats queries.
func TestSQLiteStore_ClearAndCounts(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()

	store.Put(ctx, testRecord("a", true, time.Hour))
	store.Put(ctx, testRecord("b", false, time.Hour))

	blocked, err := store.CountBlocked(ctx)
	if err != nil {
		t.Fatalf("CountBlocked() failed: %v", err)
	}
	if blocked != 1 {
		t.Errorf("CountBlocked() = %d, want 1", blocked)
	}

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear() failed: %v", err)
	}
	count, _ := store.CountCached(ctx)
	if count != 0 {
		t.Errorf("CountCached() = %d after Clear(), want 0", count)
	}
}

// TestSQLiteStore_CheckLogs tests the audit log table.
func TestSQLiteStore_CheckLogs(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()
	now := time.Now()

	entries := []struct {
		ts time.Time
	}{
		{now},
		{now.Add(-time.Hour)},
		{now.Add(-30 * time.Hour)},
	}
	for _, e := range entries {
		err := store.LogCheck(ctx, &screening.CheckLog{
			Name:         "John Smith",
			Source:       "fbi",
			Result:       "clear",
			ResponseTime: 80 * time.Millisecond,
			Timestamp:    e.ts,
		})
		if err != nil {
			t.Fatalf("LogCheck() failed: %v", err)
		}
	}

	recent, err := store.CountRecentChecks(ctx, now.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("CountRecentChecks() failed: %v", err)
	}
	if recent != 2 {
		t.Errorf("CountRecentChecks() = %d, want 2", recent)
	}
}

// TestSQLiteStore_ReopenPersists verifies verdicts survive a restart.
func TestSQLiteStore_ReopenPersists(t *testing.T) {
	cfg := DefaultSQLiteConfig()
	cfg.Path = filepath.Join(t.TempDir(), "cache.db")
	ctx := context.Background()

	store, err := NewSQLiteStore(cfg)
	if err != nil {
		t.Fatalf("NewSQLiteStore() failed: %v", err)
	}
	if err := store.Put(ctx, testRecord("persist", true, time.Hour)); err != nil {
		t.Fatalf("Put() failed: %v", err)
	}
	store.Close()

	reopened, err := NewSQLiteStore(cfg)
	if err != nil {
		t.Fatalf("NewSQLiteStore() reopen failed: %v", err)
	}
	defer reopened.Close()

	_, ok, err := reopened.Get(ctx, "persist")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if !ok {
		t.Error("record did not survive a store reopen")
	}
}
