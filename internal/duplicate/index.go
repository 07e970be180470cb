package duplicate

import (
	"context"
	"time"
)

// InvoiceRecord is the minimal view of a prior invoice the detector
// compares a new one against. This is a different data source than
// memstore.Storage's memories: spec §4.6 queries "all prior invoices with
// identical vendorId," not memory records, so it gets its own small index
// rather than being folded into the memory store.
type InvoiceRecord struct {
	ID            string
	VendorID      string
	InvoiceNumber string
	InvoiceDate   *time.Time
	Amount        *float64
}

// Index is the collaborator the detector queries for prior invoices. A
// SQLite-backed implementation lives in sqliteindex.go; tests may supply a
// fake.
type Index interface {
	// FindByVendor returns every prior invoice with vendorId == v, strict
	// equality, case-sensitive.
	FindByVendor(ctx context.Context, vendorID string) ([]InvoiceRecord, error)
	// Record stores a new invoice so later calls can detect it as a
	// duplicate candidate.
	Record(ctx context.Context, rec InvoiceRecord) error
	Close() error
}
