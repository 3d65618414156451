package normalize

import "strings"

// Matches reports whether a queried name matches a candidate record name.
// Both sides are normalized first. Rules apply in order, first success wins:
//
//  1. Exact match of the normalized forms.
//  2. Token-set overlap: at least 2 tokens in common, catching first+last
//     name matches regardless of order or middle-name insertion.
//  3. Substring containment either way, catching partial record entries.
//
// A single-token name can never satisfy rule 2; rules 1 and 3 still apply.
// The policy deliberately favors recall over precision for short inputs.
func Matches(queried, candidate string) bool {
	q := Normalize(queried)
	c := Normalize(candidate)

	if q == "" || c == "" {
		return false
	}

	if q == c {
		return true
	}

	if tokenOverlap(q, c) >= 2 {
		return true
	}

	return strings.Contains(q, c) || strings.Contains(c, q)
}

// tokenOverlap counts distinct whitespace-delimited tokens the two
// normalized names share.
func tokenOverlap(a, b string) int {
	setA := make(map[string]struct{})
	for _, tok := range strings.Fields(a) {
		setA[tok] = struct{}{}
	}

	seen := make(map[string]struct{})
	overlap := 0
	for _, tok := range strings.Fields(b) {
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		if _, ok := setA[tok]; ok {
			overlap++
		}
	}

	return overlap
}
