// Package engine orchestrates watchlist screening runs.
//
// A run takes a candidate name, consults the verdict cache, and on a miss
// fans out to every enabled source concurrently. Per-source answers are
// aggregated into a single verdict: the name is blocked if any source
// reported a match, and the verdict confidence is the strongest blocking
// source's confidence (or the strongest clear answer when nothing matched).
// Fresh verdicts are cached with a configurable time-to-live, and every
// source check is written to the audit log.
//
// A source that fails to answer (timeout, rate limit, missing credential)
// contributes no data: it can neither block nor clear a name.
package engine
