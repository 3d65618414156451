package cache

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// Schema contains the SQL statements to create the verdict cache schema.
const Schema = `
-- Cached verdicts, one row per normalized name hash
CREATE TABLE IF NOT EXISTS watchlist_cache (
    name_hash TEXT PRIMARY KEY,
    full_name TEXT NOT NULL,
    is_blocked BOOLEAN NOT NULL,
    sources TEXT NOT NULL,
    confidence REAL NOT NULL,
    reasons TEXT NOT NULL,
    raw_data TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL,
    expires_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_watchlist_cache_expires_at
    ON watchlist_cache(expires_at);

-- Per-source check audit entries
CREATE TABLE IF NOT EXISTS validation_logs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    source TEXT NOT NULL,
    result TEXT NOT NULL,
    response_time_ms INTEGER NOT NULL,
    timestamp TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_validation_logs_timestamp
    ON validation_logs(timestamp);

-- Schema version table
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY
);
`

// InsertSchemaVersion records the schema version if not already present.
const InsertSchemaVersion = `INSERT OR IGNORE INTO schema_version (version) VALUES (?)`

// GetSchemaVersion reads the recorded schema version.
const GetSchemaVersion = `SELECT version FROM schema_version LIMIT 1`
