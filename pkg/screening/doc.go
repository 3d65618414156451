// Package screening defines the core domain types for watchlist screening.
//
// A screening run takes a candidate name, checks it against every enabled
// record source, and produces a single WatchlistResult: blocked or clear,
// with a confidence score, the sources that matched, and the reasons they
// gave. Verdicts are cached with a TTL so repeated lookups of the same
// normalized name are answered without touching any source.
//
// # Result Model
//
// Each source contributes at most one SourceCheckResult per run. A source
// that errors, times out, or is rate limited contributes "no data", which is
// distinct from "checked, clear": a clear verdict built from partial data
// carries a lower confidence than one every source answered.
//
// The subpackages implement the moving parts:
//
//   - normalize - name canonicalization, hashing, and fuzzy matching
//   - cache     - TTL verdict cache (SQLite or in-memory) with sweeping
//   - engine    - cache lookup, concurrent source fan-out, aggregation
package screening
