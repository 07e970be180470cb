package duplicate

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/invoice-memory/internal/auditlog"
	"github.com/Veraticus/invoice-memory/internal/clock"
)

func newEngine(t *testing.T) (*Engine, *SQLiteIndex) {
	t.Helper()
	idx, err := NewSQLiteIndex(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })

	fixed := clock.Fixed{At: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	eng := New(idx, DefaultConfig(), fixed, &clock.Sequential{Prefix: "audit"}, auditlog.New(), nil)
	return eng, idx
}

func dateAt(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestEngine_Detect_ExactDuplicate(t *testing.T) {
	eng, idx := newEngine(t)
	ctx := context.Background()

	require.NoError(t, idx.Record(ctx, InvoiceRecord{
		ID: "inv-002", VendorID: "vendor-123", InvoiceNumber: "INV-2024-001",
		InvoiceDate: dateAt(2024, 1, 15),
	}))

	out := eng.Detect(ctx, Query{
		VendorID: "vendor-123", InvoiceNumber: "INV-2024-001", InvoiceDate: dateAt(2024, 1, 15),
	})

	require.True(t, out.DuplicatesFound)
	require.Len(t, out.PotentialDuplicates, 1)
	assert.Greater(t, out.PotentialDuplicates[0].SimilarityScore, 0.9)
	require.Len(t, out.ValidationIssues, 1)
	assert.Equal(t, SeverityWarning, out.ValidationIssues[0].Severity)
}

func TestEngine_Detect_VendorMismatch(t *testing.T) {
	eng, idx := newEngine(t)
	ctx := context.Background()

	require.NoError(t, idx.Record(ctx, InvoiceRecord{
		ID: "inv-001", VendorID: "vendor-456", InvoiceNumber: "INV-2024-001",
	}))

	out := eng.Detect(ctx, Query{VendorID: "vendor-123", InvoiceNumber: "INV-2024-001"})
	assert.False(t, out.DuplicatesFound)
}

func TestEngine_Detect_DateOutsideProximity(t *testing.T) {
	eng, idx := newEngine(t)
	ctx := context.Background()

	require.NoError(t, idx.Record(ctx, InvoiceRecord{
		ID: "inv-003", VendorID: "vendor-789", InvoiceNumber: "INV-2024-002",
		InvoiceDate: dateAt(2024, 1, 15),
	}))

	out := eng.Detect(ctx, Query{
		VendorID: "vendor-789", InvoiceNumber: "INV-2024-002", InvoiceDate: dateAt(2024, 1, 30),
	})
	assert.False(t, out.DuplicatesFound)
}

func TestEngine_Detect_BoundaryWithinProximity(t *testing.T) {
	eng, idx := newEngine(t)
	ctx := context.Background()

	require.NoError(t, idx.Record(ctx, InvoiceRecord{
		ID: "inv-004", VendorID: "vendor-1", InvoiceNumber: "INV-100",
		InvoiceDate: dateAt(2024, 1, 1),
	}))

	out := eng.Detect(ctx, Query{
		VendorID: "vendor-1", InvoiceNumber: "INV-100", InvoiceDate: dateAt(2024, 1, 8), // Δ=7
	})

	require.True(t, out.DuplicatesFound)
	require.Len(t, out.PotentialDuplicates, 1)
	assert.Greater(t, out.PotentialDuplicates[0].SimilarityScore, 0.8)
}

func TestEngine_Detect_Deterministic(t *testing.T) {
	eng, idx := newEngine(t)
	ctx := context.Background()

	require.NoError(t, idx.Record(ctx, InvoiceRecord{
		ID: "inv-005", VendorID: "vendor-2", InvoiceNumber: "INV-200",
		InvoiceDate: dateAt(2024, 1, 1),
	}))

	q := Query{VendorID: "vendor-2", InvoiceNumber: "INV-200", InvoiceDate: dateAt(2024, 1, 2)}
	first := eng.Detect(ctx, q)
	second := eng.Detect(ctx, q)
	assert.InDelta(t, first.Confidence, second.Confidence, 1e-2)
}
