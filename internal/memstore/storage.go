package memstore

import (
	"context"

	"github.com/Veraticus/invoice-memory/internal/memory"
)

// Storage is the collaborator every engine consumes (spec §4.1/§6). Any
// backing store satisfying it is acceptable; SQLiteStore is this module's
// implementation.
type Storage interface {
	// Save upserts a memory; envelope and variant payload are written
	// atomically.
	Save(ctx context.Context, m memory.Memory) error
	// FindByID returns a single memory, or common.ErrNotFound if absent or
	// archived.
	FindByID(ctx context.Context, id string) (memory.Memory, error)
	// FindByVendor returns memories where either context.vendorId == v or
	// (type==Vendor and payload.vendorId == v), excluding archived memories.
	FindByVendor(ctx context.Context, vendorID string) ([]memory.Memory, error)
	// FindByPattern returns non-archived memories whose pattern.patternType
	// matches p.PatternType.
	FindByPattern(ctx context.Context, p memory.Pattern) ([]memory.Memory, error)
	// FindByType returns all non-archived memories of the given type.
	FindByType(ctx context.Context, t memory.Type) ([]memory.Memory, error)
	// UpdateConfidence persists c for id; a c outside [0,1] is rejected
	// with common.ErrInvalidInput.
	UpdateConfidence(ctx context.Context, id string, c float64) error
	// Archive soft-deletes id; archived memories are excluded from every
	// finder.
	Archive(ctx context.Context, id string) error
	// Delete hard-deletes id.
	Delete(ctx context.Context, id string) error
	// All returns every non-archived memory.
	All(ctx context.Context) ([]memory.Memory, error)
	// Count returns the number of non-archived memories.
	Count(ctx context.Context) (int, error)
	// Close releases the underlying connection.
	Close() error
}
