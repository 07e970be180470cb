// Package invoice holds the small, shared view of an invoice that the
// recall, recognizer, learning, and duplicate-detector engines all consume.
// Raw extraction and normalization themselves are external collaborators
// (spec §1); this package only models the shape those collaborators hand
// across the boundary.
package invoice

import "time"

// Invoice is an invoice at any stage (raw extraction or normalized),
// carrying just the fields the memory engines need.
type Invoice struct {
	VendorID        string
	InvoiceNumber   string
	InvoiceDate     *time.Time
	RawText         string
	ExtractedFields []ExtractedField
	Amount          *float64
	Currency        string
}

// ExtractedField is one raw field pulled off an invoice by OCR/extraction,
// before normalization.
type ExtractedField struct {
	Name       string
	Value      string
	Confidence float64
}

// Field looks up an extracted field by name (case-sensitive, matching the
// raw extraction name such as "Leistungsdatum").
func (inv Invoice) Field(name string) (ExtractedField, bool) {
	for _, f := range inv.ExtractedFields {
		if f.Name == name {
			return f, true
		}
	}
	return ExtractedField{}, false
}

// VendorInfo is what the pipeline knows about the vendor issuing an
// invoice, independent of any memory recorded for them.
type VendorInfo struct {
	ID               string
	Name             string
	Language         string
	RelationshipType string
}
