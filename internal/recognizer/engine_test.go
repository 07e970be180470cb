package recognizer

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/invoice-memory/internal/auditlog"
	"github.com/Veraticus/invoice-memory/internal/clock"
	"github.com/Veraticus/invoice-memory/internal/invoice"
	"github.com/Veraticus/invoice-memory/internal/memory"
	"github.com/Veraticus/invoice-memory/internal/memstore"
)

func newEngine(t *testing.T) (*Engine, memstore.Storage) {
	t.Helper()
	store, err := memstore.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	fixed := clock.Fixed{At: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	ids := &clock.Sequential{Prefix: "mem"}
	eng := New(store, DefaultConfig(), fixed, ids, auditlog.New(), nil)
	return eng, store
}

func germanInvoices() []invoice.Invoice {
	mk := func(num string) invoice.Invoice {
		return invoice.Invoice{
			VendorID: "vendor-acme",
			RawText:  "Alle Preise inkl. MwSt. Brutto Gesamtbetrag",
			ExtractedFields: []invoice.ExtractedField{
				{Name: "Rechnungsdatum", Value: "01.03.2026", Confidence: 0.9},
				{Name: "Rechnungsnummer", Value: num, Confidence: 0.95},
				{Name: "Gesamtbetrag", Value: "119,00 €", Confidence: 0.85},
			},
		}
	}
	return []invoice.Invoice{mk("RE-1001"), mk("RE-1002"), mk("RE-1003")}
}

func TestEngine_Recognize_GermanFieldMapping(t *testing.T) {
	eng, _ := newEngine(t)

	m, err := eng.Recognize(context.Background(), "vendor-acme", germanInvoices(), nil)
	require.NoError(t, err)

	assert.Equal(t, memory.TypeVendor, m.Type)
	vp, ok := m.Payload.(memory.VendorPayload)
	require.True(t, ok)
	assert.Equal(t, "vendor-acme", vp.VendorID)

	var sawInvoiceDate bool
	for _, fm := range vp.FieldMappings {
		if fm.TargetField == "invoiceDate" {
			sawInvoiceDate = true
			assert.Equal(t, "DATE_PARSING", fm.TransformationRule.Type)
		}
	}
	assert.True(t, sawInvoiceDate)
	assert.True(t, vp.VATBehavior.VATIncludedInPrices)
}

func TestEngine_Recognize_InsufficientEvidence(t *testing.T) {
	eng, _ := newEngine(t)

	_, err := eng.Recognize(context.Background(), "vendor-acme", germanInvoices()[:1], nil)
	assert.Error(t, err)
}

func TestEngine_Recognize_MergesOnReanalysis(t *testing.T) {
	eng, _ := newEngine(t)
	ctx := context.Background()

	first, err := eng.Recognize(ctx, "vendor-acme", germanInvoices(), nil)
	require.NoError(t, err)

	second, err := eng.Recognize(ctx, "vendor-acme", germanInvoices(), nil)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.GreaterOrEqual(t, second.Confidence, first.Confidence)
}

func TestEngine_IsolateVendorMemories_StrictVendorMatch(t *testing.T) {
	eng, store := newEngine(t)
	ctx := context.Background()

	vendorA := "vendor-a"
	vendorB := "vendor-b"

	require.NoError(t, store.Save(ctx, memory.Memory{
		ID:         "vendor-mem-a",
		Type:       memory.TypeVendor,
		Confidence: 0.8,
		Pattern:    memory.Pattern{PatternType: "vendor-field-mapping", Threshold: 0.5},
		CreatedAt:  time.Now(),
		LastUsed:   time.Now(),
		Context:    memory.Context{VendorID: &vendorA},
		Payload:    memory.VendorPayload{VendorID: vendorA},
	}))
	require.NoError(t, store.Save(ctx, memory.Memory{
		ID:         "vendor-mem-b",
		Type:       memory.TypeVendor,
		Confidence: 0.8,
		Pattern:    memory.Pattern{PatternType: "vendor-field-mapping", Threshold: 0.5},
		CreatedAt:  time.Now(),
		LastUsed:   time.Now(),
		Context:    memory.Context{VendorID: &vendorB},
		Payload:    memory.VendorPayload{VendorID: vendorB},
	}))
	correctionID := "correction-a"
	require.NoError(t, store.Save(ctx, memory.Memory{
		ID:         correctionID,
		Type:       memory.TypeCorrection,
		Confidence: 0.7,
		Pattern:    memory.Pattern{PatternType: "correction", Threshold: 0.5},
		CreatedAt:  time.Now(),
		LastUsed:   time.Now(),
		Context:    memory.Context{VendorID: &vendorA},
		Payload:    memory.CorrectionPayload{CorrectionType: "FIELD_MAPPING"},
	}))

	isolated, err := eng.IsolateVendorMemories(ctx, vendorA)
	require.NoError(t, err)
	require.Len(t, isolated, 1)
	assert.Equal(t, "vendor-mem-a", isolated[0].ID)
}

// TestEngine_IsolateVendorMemories_ConcurrentSaveAndQuery exercises spec §8
// invariant 3 under a concurrent workload: many goroutines save VendorMemory
// records for distinct vendors concurrently, then, once every save has
// finished, other goroutines call IsolateVendorMemories concurrently, and
// no vendor's isolated set ever contains another vendor's memory.
func TestEngine_IsolateVendorMemories_ConcurrentSaveAndQuery(t *testing.T) {
	eng, store := newEngine(t)
	ctx := context.Background()

	const vendorCount = 6

	var wg sync.WaitGroup
	for v := 0; v < vendorCount; v++ {
		vendorID := fmt.Sprintf("vendor-%d", v)
		wg.Add(1)
		go func(vendorID string) {
			defer wg.Done()
			require.NoError(t, store.Save(ctx, memory.Memory{
				ID:         vendorID + "-mem",
				Type:       memory.TypeVendor,
				Confidence: 0.8,
				Pattern:    memory.Pattern{PatternType: "vendor-field-mapping", Threshold: 0.5},
				CreatedAt:  time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
				LastUsed:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
				Context:    memory.Context{VendorID: &vendorID},
				Payload:    memory.VendorPayload{VendorID: vendorID},
			}))
		}(vendorID)
	}
	wg.Wait()

	var mu sync.Mutex
	var violations []string

	wg = sync.WaitGroup{}
	for v := 0; v < vendorCount; v++ {
		vendorID := fmt.Sprintf("vendor-%d", v)
		wg.Add(1)
		go func(vendorID string) {
			defer wg.Done()
			isolated, err := eng.IsolateVendorMemories(ctx, vendorID)
			if err != nil {
				mu.Lock()
				violations = append(violations, fmt.Sprintf("IsolateVendorMemories(%s): %v", vendorID, err))
				mu.Unlock()
				return
			}
			for _, m := range isolated {
				vp, ok := m.Payload.(memory.VendorPayload)
				if !ok || vp.VendorID != vendorID {
					mu.Lock()
					violations = append(violations, fmt.Sprintf("vendor %s: cross-vendor memory %s leaked in", vendorID, m.ID))
					mu.Unlock()
				}
			}
		}(vendorID)
	}
	wg.Wait()

	assert.Empty(t, violations)
}
