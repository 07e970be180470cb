package learning

import (
	"regexp"
	"sort"
)

// valueKind classifies a corrected value for pattern grouping, spec §4.5.
type valueKind string

const (
	kindNumeric valueKind = "numeric"
	kindDate    valueKind = "date"
	kindText    valueKind = "text"
)

var (
	numericValue = regexp.MustCompile(`^-?\d+([.,]\d+)?$`)
	dateValue    = regexp.MustCompile(`^\d{1,4}[./-]\d{1,2}[./-]\d{1,4}$`)
)

func classifyValue(v string) valueKind {
	switch {
	case dateValue.MatchString(v):
		return kindDate
	case numericValue.MatchString(v):
		return kindNumeric
	default:
		return kindText
	}
}

// patternKey groups corrections by field and value kind, spec §4.5.
type patternKey struct {
	field string
	kind  valueKind
}

// pattern is one candidate pattern mined from a group of corrections.
type pattern struct {
	field           string
	kind            valueKind
	corrections     []Correction
	mostCommonValue string
	consistency     float64
	confidence      float64
}

// minePatterns groups corrections by (field, valueKind), keeps groups
// meeting minOccurrences, and scores each per spec §4.5: date groups are
// always accepted with a flat 0.8 confidence and consistency 1.0; other
// groups are accepted only when their value consistency meets threshold,
// with confidence clamp(0.5 + 0.4*consistency, 0.5, 0.9).
func minePatterns(corrections []Correction, minOccurrences int, similarityThreshold float64) []pattern {
	groups := make(map[patternKey][]Correction)
	var order []patternKey

	for _, c := range corrections {
		key := patternKey{field: c.Field, kind: classifyValue(c.CorrectedValue)}
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], c)
	}

	var patterns []pattern
	for _, key := range order {
		group := groups[key]
		if len(group) < minOccurrences {
			continue
		}

		if key.kind == kindDate {
			patterns = append(patterns, pattern{
				field:           key.field,
				kind:            key.kind,
				corrections:     group,
				mostCommonValue: mostCommonValue(group),
				consistency:     1.0,
				confidence:      0.8,
			})
			continue
		}

		consistency := valueConsistency(group)
		if consistency < similarityThreshold {
			continue
		}

		confidence := clampRange(0.5+0.4*consistency, 0.5, 0.9)
		patterns = append(patterns, pattern{
			field:           key.field,
			kind:            key.kind,
			corrections:     group,
			mostCommonValue: mostCommonValue(group),
			consistency:     consistency,
			confidence:      confidence,
		})
	}

	return patterns
}

// valueConsistency implements spec §4.5's formula:
// 1 - (|unique values| - 1) / |corrections|.
func valueConsistency(group []Correction) float64 {
	unique := make(map[string]bool, len(group))
	for _, c := range group {
		unique[c.CorrectedValue] = true
	}
	return 1 - (float64(len(unique))-1)/float64(len(group))
}

func mostCommonValue(group []Correction) string {
	counts := make(map[string]int, len(group))
	for _, c := range group {
		counts[c.CorrectedValue]++
	}

	values := make([]string, 0, len(counts))
	for v := range counts {
		values = append(values, v)
	}
	sort.Strings(values)

	best := values[0]
	bestCount := counts[best]
	for _, v := range values[1:] {
		if counts[v] > bestCount {
			best = v
			bestCount = counts[v]
		}
	}
	return best
}

func clampRange(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// batchGroups groups corrections by (field, correctedValue) exactly equal,
// spec §4.5's Batch strategy, keeping only groups of at least two.
func batchGroups(corrections []Correction) [][]Correction {
	type key struct{ field, value string }
	groups := make(map[key][]Correction)
	var order []key

	for _, c := range corrections {
		k := key{field: c.Field, value: c.CorrectedValue}
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], c)
	}

	var out [][]Correction
	for _, k := range order {
		if len(groups[k]) >= 2 {
			out = append(out, groups[k])
		}
	}
	return out
}
