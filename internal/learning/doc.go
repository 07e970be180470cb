// Package learning implements the Learning engine of spec §4.5: it turns
// human corrections, full processing outcomes, and approved applied
// memories into new or reinforced memories, with three selectable
// strategies and a pattern-mining pass grounded on the same
// group-then-score idiom as internal/recognizer.
package learning
