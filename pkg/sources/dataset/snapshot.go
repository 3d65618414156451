package dataset

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// snapshotStore mirrors the loaded denylist into a small SQLite file so a
// restarted process can answer lookups before the first sync completes.
// The CGO-free driver keeps the dataset source usable in static builds.
type snapshotStore struct {
	db *sql.DB
}

const snapshotSchema = `
CREATE TABLE IF NOT EXISTS denylist_entries (
    normalized TEXT PRIMARY KEY,
    raw TEXT NOT NULL,
    loaded_at TIMESTAMP NOT NULL
);
`

func openSnapshotStore(path string) (*snapshotStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot db: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}
	if _, err := db.Exec(snapshotSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create snapshot schema: %w", err)
	}

	return &snapshotStore{db: db}, nil
}

// Replace swaps the stored entries for the given set in one transaction.
func (s *snapshotStore) Replace(ctx context.Context, entries map[string]string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin snapshot transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM denylist_entries"); err != nil {
		return fmt.Errorf("failed to clear snapshot: %w", err)
	}

	now := time.Now().UTC()
	for normalized, raw := range entries {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO denylist_entries (normalized, raw, loaded_at) VALUES (?, ?, ?)",
			normalized, raw, now,
		)
		if err != nil {
			return fmt.Errorf("failed to insert snapshot entry: %w", err)
		}
	}

	return tx.Commit()
}

// Load returns the stored entries keyed by normalized form.
func (s *snapshotStore) Load(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT normalized, raw FROM denylist_entries")
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	defer rows.Close()

	entries := make(map[string]string)
	for rows.Next() {
		var normalized, raw string
		if err := rows.Scan(&normalized, &raw); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot row: %w", err)
		}
		entries[normalized] = raw
	}

	return entries, rows.Err()
}

func (s *snapshotStore) Close() error {
	return s.db.Close()
}
