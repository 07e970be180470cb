package duplicate

import "github.com/agnivade/levenshtein"

// stringSimilarity implements spec §4.6's normalized Levenshtein measure:
// 1 - dist/max(|a|,|b|), with the degenerate empty-string cases spec §4.6
// and invariant 11 name explicitly.
func stringSimilarity(a, b string) float64 {
	if a == "" && b == "" {
		return 1.0
	}
	if a == "" || b == "" {
		return 0.0
	}
	if a == b {
		return 1.0
	}

	dist := levenshtein.ComputeDistance(a, b)
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	return 1.0 - float64(dist)/float64(maxLen)
}
