// Package cache persists screening verdicts with a time-to-live.
//
// The Store contract is what matters: Get performs the expiry check itself
// and never returns a stale record, Put replaces the record for a name hash
// atomically as a whole row, and both are safe under concurrent in-flight
// validations. Two backends are provided:
//
//   - SQLiteStore - durable single-file store, WAL mode (production)
//   - MemoryStore - map-based store for tests and ephemeral runs
//
// Expired rows are invisible to Get immediately; the Sweeper additionally
// deletes them on a cron schedule so the database does not grow unbounded.
package cache
