// Package duplicate implements the Duplicate Detector of spec §4.6: given
// an invoice, it scores every prior invoice sharing the same vendor across
// exact/fuzzy invoice number, date proximity, and amount tolerance
// criteria, and reports potential duplicates with a similarity score.
package duplicate
