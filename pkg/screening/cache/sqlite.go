package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"sentinel-hq/sentinel/pkg/screening"
)

// SQLiteConfig contains configuration for the SQLite cache backend.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// MaxOpenConns is the maximum number of open connections to the database.
	// Default: 10
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5
	MaxIdleConns int

	// WALMode enables Write-Ahead Logging mode for better concurrency.
	// Default: true
	WALMode bool

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:         "data/sentinel.db",
		MaxOpenConns: 10,
		MaxIdleConns: 5,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	}
}

// SQLiteStore implements the Store interface using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	config *SQLiteConfig
	logger *slog.Logger
}

// NewSQLiteStore creates a new SQLite cache backend.
// It initializes the database schema and enables WAL mode if configured.
func NewSQLiteStore(config *SQLiteConfig) (*SQLiteStore, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}

	logger := slog.Default().With("component", "screening.cache.sqlite")

	db, err := sql.Open("sqlite3", config.Path)
	if err != nil {
		return nil, screening.NewStorageError("sqlite", "open", err)
	}

	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)

	s := &SQLiteStore{
		db:     db,
		config: config,
		logger: logger,
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("SQLite verdict cache initialized",
		"path", config.Path,
		"wal_mode", config.WALMode,
		"max_open_conns", config.MaxOpenConns,
	)

	return s, nil
}

// initialize sets up the database schema and enables WAL mode.
func (s *SQLiteStore) initialize() error {
	if s.config.WALMode {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return screening.NewStorageError("sqlite", "enable_wal", err)
		}
		s.logger.Debug("WAL mode enabled")
	}

	busyTimeoutMs := s.config.BusyTimeout.Milliseconds()
	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", busyTimeoutMs)); err != nil {
		return screening.NewStorageError("sqlite", "set_busy_timeout", err)
	}

	if _, err := s.db.Exec(Schema); err != nil {
		return screening.NewStorageError("sqlite", "create_schema", err)
	}

	if _, err := s.db.Exec(InsertSchemaVersion, SchemaVersion); err != nil {
		return screening.NewStorageError("sqlite", "insert_schema_version", err)
	}

	var version int
	err := s.db.QueryRow(GetSchemaVersion).Scan(&version)
	if err != nil && err != sql.ErrNoRows {
		return screening.NewStorageError("sqlite", "get_schema_version", err)
	}

	if version != SchemaVersion {
		return screening.NewStorageError("sqlite", "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}

	return nil
}

// Get returns the cached record for a name hash, or (nil, false) if the
// record is absent or expired.
func (s *SQLiteStore) Get(ctx context.Context, hashKey string) (*screening.CacheRecord, bool, error) {
	query := `
		SELECT name_hash, full_name, is_blocked, sources, confidence, reasons, raw_data, created_at, expires_at
		FROM watchlist_cache
		WHERE name_hash = ? AND expires_at > ?
	`

	row := s.db.QueryRowContext(ctx, query, hashKey, time.Now().UTC())

	var record screening.CacheRecord
	var sources, reasons, rawData string
	err := row.Scan(
		&record.NameHash, &record.FullName, &record.IsBlocked,
		&sources, &record.Confidence, &reasons, &rawData,
		&record.CreatedAt, &record.ExpiresAt,
	)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, screening.NewStorageError("sqlite", "get", err)
	}

	if err := json.Unmarshal([]byte(sources), &record.Sources); err != nil {
		return nil, false, screening.NewStorageError("sqlite", "decode_sources", err)
	}
	if err := json.Unmarshal([]byte(reasons), &record.Reasons); err != nil {
		return nil, false, screening.NewStorageError("sqlite", "decode_reasons", err)
	}
	if err := json.Unmarshal([]byte(rawData), &record.RawData); err != nil {
		return nil, false, screening.NewStorageError("sqlite", "decode_raw_data", err)
	}

	return &record, true, nil
}

// Put upserts a record by its name hash, replacing any prior row whole.
func (s *SQLiteStore) Put(ctx context.Context, record *screening.CacheRecord) error {
	sources, err := json.Marshal(record.Sources)
	if err != nil {
		return screening.NewStorageError("sqlite", "encode_sources", err)
	}
	reasons, err := json.Marshal(record.Reasons)
	if err != nil {
		return screening.NewStorageError("sqlite", "encode_reasons", err)
	}
	rawData, err := json.Marshal(record.RawData)
	if err != nil {
		return screening.NewStorageError("sqlite", "encode_raw_data", err)
	}

	query := `
		INSERT OR REPLACE INTO watchlist_cache
		(name_hash, full_name, is_blocked, sources, confidence, reasons, raw_data, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = s.db.ExecContext(ctx, query,
		record.NameHash, record.FullName, record.IsBlocked,
		string(sources), record.Confidence, string(reasons), string(rawData),
		record.CreatedAt.UTC(), record.ExpiresAt.UTC(),
	)
	if err != nil {
		return screening.NewStorageError("sqlite", "put", err)
	}

	return nil
}

// Clear removes all cached records.
func (s *SQLiteStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM watchlist_cache"); err != nil {
		return screening.NewStorageError("sqlite", "clear", err)
	}
	s.logger.Info("verdict cache cleared")
	return nil
}

// Sweep deletes expired records and returns how many were removed.
func (s *SQLiteStore) Sweep(ctx context.Context) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM watchlist_cache WHERE expires_at <= ?", time.Now().UTC())
	if err != nil {
		return 0, screening.NewStorageError("sqlite", "sweep", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, screening.NewStorageError("sqlite", "sweep", err)
	}

	return deleted, nil
}

// LogCheck appends one per-source audit entry.
func (s *SQLiteStore) LogCheck(ctx context.Context, entry *screening.CheckLog) error {
	query := `
		INSERT INTO validation_logs (name, source, result, response_time_ms, timestamp)
		VALUES (?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		entry.Name, entry.Source, entry.Result,
		entry.ResponseTime.Milliseconds(), entry.Timestamp.UTC(),
	)
	if err != nil {
		return screening.NewStorageError("sqlite", "log_check", err)
	}
	return nil
}

// CountCached returns the number of cached records, expired included.
func (s *SQLiteStore) CountCached(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM watchlist_cache").Scan(&count)
	if err != nil {
		return 0, screening.NewStorageError("sqlite", "count_cached", err)
	}
	return count, nil
}

// CountBlocked returns the number of cached blocked verdicts.
func (s *SQLiteStore) CountBlocked(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM watchlist_cache WHERE is_blocked = 1").Scan(&count)
	if err != nil {
		return 0, screening.NewStorageError("sqlite", "count_blocked", err)
	}
	return count, nil
}

// CountRecentChecks returns the number of audit entries newer than the cutoff.
func (s *SQLiteStore) CountRecentChecks(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM validation_logs WHERE timestamp > ?", since.UTC()).Scan(&count)
	if err != nil {
		return 0, screening.NewStorageError("sqlite", "count_recent", err)
	}
	return count, nil
}

// Close releases the database connection.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return screening.NewStorageError("sqlite", "close", err)
	}
	s.logger.Info("SQLite verdict cache closed")
	return nil
}
