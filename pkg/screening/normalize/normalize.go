// Package normalize canonicalizes candidate names for comparison and
// cache keying, and decides whether a queried name matches a record
// returned by a source.
//
// All functions are pure and deterministic: two inputs that normalize
// identically always produce the same hash key, so two verdicts can never
// coexist for the same normalized name.
package normalize

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Normalize canonicalizes a raw name: lowercase, internal whitespace runs
// collapsed to a single space, surrounding whitespace trimmed, and every
// character outside [a-z \-] stripped. Idempotent for all inputs.
func Normalize(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))

	lastSpace := true // leading whitespace is dropped
	for _, r := range strings.ToLower(raw) {
		switch {
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
		case (r >= 'a' && r <= 'z') || r == '-':
			b.WriteRune(r)
			lastSpace = false
		}
	}

	return strings.TrimRight(b.String(), " ")
}

// HashKey returns the hex-encoded SHA-256 of the normalized name. The empty
// string normalizes to itself and hashes to a fixed sentinel value.
func HashKey(raw string) string {
	sum := sha256.Sum256([]byte(Normalize(raw)))
	return hex.EncodeToString(sum[:])
}
