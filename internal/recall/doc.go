// Package recall implements the Recall engine of spec §4.3: given an
// invoice context, return a ranked, deterministic list of relevant
// memories. All ranking math is pure; the only suspension point is the
// storage query that gathers candidates.
package recall
