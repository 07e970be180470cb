package recognizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/invoice-memory/internal/auditlog"
	"github.com/Veraticus/invoice-memory/internal/clock"
	"github.com/Veraticus/invoice-memory/internal/common"
	"github.com/Veraticus/invoice-memory/internal/invoice"
	"github.com/Veraticus/invoice-memory/internal/memory"
	"github.com/Veraticus/invoice-memory/internal/memstore"
)

// mergeConfidenceBump is the confidence increase spec §4.4 applies when an
// existing VendorMemory is re-analyzed with new evidence, on top of the
// recomputed fused confidence.
const mergeConfidenceBump = 0.15

// recognizeAuditInput is the audit record's Input summary for a Recognize
// call: the full invoice/correction slices are omitted to keep records
// small, just the counts that drove the result.
type recognizeAuditInput struct {
	VendorID        string
	InvoiceCount    int
	CorrectionCount int
}

// Engine implements the Vendor pattern recognizer of spec §4.4.
type Engine struct {
	storage memstore.Storage
	clock   clock.Clock
	idGen   clock.IDGenerator
	config  Config
	audit   *auditlog.Log
	logger  *slog.Logger
}

// New constructs a recognizer Engine. logger may be nil, in which case
// slog.Default() is used.
func New(storage memstore.Storage, config Config, clk clock.Clock, idGen clock.IDGenerator, audit *auditlog.Log, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{storage: storage, clock: clk, idGen: idGen, config: config, audit: audit, logger: logger}
}

// Recognize analyzes vendorID's invoices (and any accompanying human
// corrections) and returns a VendorMemory capturing field mappings, VAT
// behavior, and currency/date format patterns. If a VendorMemory already
// exists for vendorID it is merged with the newly analyzed evidence per
// spec §4.4's merge rule rather than replaced outright.
func (e *Engine) Recognize(ctx context.Context, vendorID string, invoices []invoice.Invoice, corrections []Correction) (memory.Memory, error) {
	start := e.clock.Now()

	if vendorID == "" {
		return memory.Memory{}, common.NewInvalidInput("vendorId", "must not be empty")
	}
	if len(invoices) < e.config.MinExamplesForPattern {
		return memory.Memory{}, fmt.Errorf("%w: need at least %d invoices, got %d",
			common.ErrPatternInsufficient, e.config.MinExamplesForPattern, len(invoices))
	}

	fieldMappings := detectFieldMappings(invoices, e.config.VendorSpecificBoost)
	fieldMappings = mergeFieldMappings(fieldMappings, detectCorrectionMappings(corrections, e.config.VendorSpecificBoost))

	var vatBehavior memory.VATBehavior
	vatFired := false
	if e.config.EnableVATDetection {
		vatBehavior, _, vatFired = detectVATBehavior(invoices)
	}

	var currencyPatterns []memory.CurrencyPattern
	if e.config.EnableCurrencyLearning {
		currencyPatterns = detectCurrencyPatterns(invoices, e.config.MinExamplesForPattern)
	}

	var dateFormats []memory.DateFormatPattern
	if e.config.EnableDateFormatLearning {
		dateFormats = detectDateFormats(invoices, e.config.MinExamplesForPattern)
	}

	confidence := fusedConfidence(fieldMappings, vatFired, currencyPatterns, dateFormats)
	if confidence < e.config.MinPatternConfidence {
		return memory.Memory{}, fmt.Errorf("%w: fused confidence %.2f below minimum %.2f",
			common.ErrPatternInsufficient, confidence, e.config.MinPatternConfidence)
	}

	existing, err := e.IsolateVendorMemories(ctx, vendorID)
	if err != nil {
		return memory.Memory{}, err
	}

	now := e.clock.Now()

	var result memory.Memory
	if len(existing) > 0 {
		result = e.mergeInto(existing[0], fieldMappings, vatBehavior, currencyPatterns, dateFormats, confidence, now)
	} else {
		result = memory.Memory{
			ID:         e.idGen.NewID(),
			Type:       memory.TypeVendor,
			Confidence: memory.ClampConfidence(confidence),
			Pattern: memory.Pattern{
				PatternType: "vendor-field-mapping",
				Threshold:   e.config.MinPatternConfidence,
			},
			CreatedAt:   now,
			LastUsed:    now,
			UsageCount:  0,
			SuccessRate: 0,
			Context: memory.Context{
				VendorID: &vendorID,
			},
			Payload: memory.VendorPayload{
				VendorID:         vendorID,
				FieldMappings:    fieldMappings,
				VATBehavior:      vatBehavior,
				CurrencyPatterns: currencyPatterns,
				DateFormats:      dateFormats,
			},
		}
	}

	if err := e.storage.Save(ctx, result); err != nil {
		return memory.Memory{}, err
	}

	e.audit.Append(auditlog.Record{
		ID:          e.idGen.NewID(),
		Timestamp:   start,
		Operation:   auditlog.OperationMemoryLearning,
		Description: fmt.Sprintf("recognized vendor pattern for %q from %d invoices", vendorID, len(invoices)),
		Input:       recognizeAuditInput{VendorID: vendorID, InvoiceCount: len(invoices), CorrectionCount: len(corrections)},
		Output:      result,
		Actor:       "recognizer",
		DurationMs:  e.clock.Now().Sub(start).Milliseconds(),
	})

	return result, nil
}

// mergeInto applies spec §4.4's merge rule to an existing VendorMemory: new
// field mappings replace old ones only when strictly more confident, VAT
// behavior is overwritten by the new majority with indicator sets unioned,
// and the overall confidence gets a bump on top of the recomputed fusion.
func (e *Engine) mergeInto(existing memory.Memory, fieldMappings []memory.FieldMapping, vatBehavior memory.VATBehavior, currencyPatterns []memory.CurrencyPattern, dateFormats []memory.DateFormatPattern, confidence float64, now time.Time) memory.Memory {
	existingPayload, _ := existing.Payload.(memory.VendorPayload)

	merged := memory.VendorPayload{
		VendorID:         existingPayload.VendorID,
		FieldMappings:    mergeFieldMappings(existingPayload.FieldMappings, fieldMappings),
		VATBehavior:      mergeVATBehavior(existingPayload.VATBehavior, vatBehavior),
		CurrencyPatterns: mergeCurrencyPatterns(existingPayload.CurrencyPatterns, currencyPatterns),
		DateFormats:      mergeDateFormats(existingPayload.DateFormats, dateFormats),
	}

	result := existing
	result.Payload = merged
	result.Confidence = memory.ClampConfidence(confidence + mergeConfidenceBump)
	result.LastUsed = now
	return result
}

// IsolateVendorMemories returns only the VendorMemory records whose
// payload.vendorId strictly equals vendorID (spec §4.4's isolation
// contract), a narrower guarantee than Storage.FindByVendor's broader
// context-or-payload OR-match.
func (e *Engine) IsolateVendorMemories(ctx context.Context, vendorID string) ([]memory.Memory, error) {
	candidates, err := e.storage.FindByVendor(ctx, vendorID)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return nil, common.WrapStorage("recognizer.isolateVendorMemories", err)
	}

	var out []memory.Memory
	for _, m := range candidates {
		if m.Type != memory.TypeVendor {
			continue
		}
		vp, ok := m.Payload.(memory.VendorPayload)
		if !ok || vp.VendorID != vendorID {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

// fusedConfidence implements spec §4.4's confidence fusion: the mean of
// every component that actually fired (detected at least one pattern).
func fusedConfidence(fieldMappings []memory.FieldMapping, vatFired bool, currencyPatterns []memory.CurrencyPattern, dateFormats []memory.DateFormatPattern) float64 {
	var sum float64
	var count int

	if len(fieldMappings) > 0 {
		var s float64
		for _, fm := range fieldMappings {
			s += fm.Confidence
		}
		sum += s / float64(len(fieldMappings))
		count++
	}
	if vatFired {
		sum += 0.8
		count++
	}
	if len(currencyPatterns) > 0 {
		var s float64
		for _, p := range currencyPatterns {
			s += p.Confidence
		}
		sum += s / float64(len(currencyPatterns))
		count++
	}
	if len(dateFormats) > 0 {
		var s float64
		for _, p := range dateFormats {
			s += p.Confidence
		}
		sum += s / float64(len(dateFormats))
		count++
	}

	if count == 0 {
		return 0
	}
	return sum / float64(count)
}
