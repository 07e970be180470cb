package memory

import (
	"time"

	"github.com/Veraticus/invoice-memory/internal/common"
)

// Type identifies which payload variant a Memory carries.
type Type string

// The three memory variants.
const (
	TypeVendor     Type = "Vendor"
	TypeCorrection Type = "Correction"
	TypeResolution Type = "Resolution"
)

// MinConfidence is the floor every memory-visible confidence read must
// respect (open question 1, resolved in SPEC_FULL.md).
const MinConfidence = 0.1

// MaxConfidence is the ceiling on confidence.
const MaxConfidence = 1.0

// Payload is implemented by the three variant payload types. It exists only
// to constrain what can be stored in Memory.Payload; dispatch on the
// concrete variant happens via Memory.Type, not via methods on Payload, per
// the "free functions dispatched on tag" design note.
type Payload interface {
	isPayload()
}

func (VendorPayload) isPayload()     {}
func (CorrectionPayload) isPayload() {}
func (ResolutionPayload) isPayload() {}

// Pattern is the free-form pattern descriptor carried by every memory.
// PatternData is intentionally opaque outside of pattern mining.
type Pattern struct {
	PatternType string         `json:"patternType"`
	PatternData map[string]any `json:"patternData,omitempty"`
	Threshold   float64        `json:"threshold"`
}

// InvoiceCharacteristics summarizes the shape of the invoice a memory's
// context was recorded against.
type InvoiceCharacteristics struct {
	Complexity        string  `json:"complexity,omitempty"`
	Language          string  `json:"language,omitempty"`
	DocumentFormat    string  `json:"documentFormat,omitempty"`
	ExtractionQuality float64 `json:"extractionQuality"`
}

// Context is the envelope's context block. VendorID is optional: a
// cross-vendor generic memory (e.g. a date-format CorrectionMemory learned
// from no particular vendor) carries a nil VendorID.
type Context struct {
	VendorID               *string                `json:"vendorId,omitempty"`
	InvoiceCharacteristics InvoiceCharacteristics `json:"invoiceCharacteristics"`
	HistoricalContext      map[string]any         `json:"historicalContext,omitempty"`
	EnvironmentalFactors   map[string]any         `json:"environmentalFactors,omitempty"`
}

// Memory is the common envelope shared by every variant.
type Memory struct {
	ID          string
	Type        Type
	Confidence  float64
	Pattern     Pattern
	CreatedAt   time.Time
	LastUsed    time.Time
	UsageCount  int
	SuccessRate float64
	Context     Context
	Payload     Payload
}

// Validate enforces the invariants of spec §3/§8.1-2: confidence/success
// rate bounds, non-negative usage count, variant/tag consistency, and the
// vendor-isolation invariant for VendorMemory.
func (m Memory) Validate() error {
	if m.ID == "" {
		return common.NewInvalidInput("id", "must not be empty")
	}
	if m.Confidence < MinConfidence || m.Confidence > MaxConfidence {
		return common.NewInvalidInput("confidence", "must be in [0.1, 1.0]")
	}
	if m.SuccessRate < 0 || m.SuccessRate > 1 {
		return common.NewInvalidInput("successRate", "must be in [0, 1]")
	}
	if m.UsageCount < 0 {
		return common.NewInvalidInput("usageCount", "must be non-negative")
	}

	switch p := m.Payload.(type) {
	case VendorPayload:
		if m.Type != TypeVendor {
			return common.NewInvalidInput("type", "payload is VendorPayload but type is not Vendor")
		}
		if p.VendorID == "" {
			return common.NewInvalidInput("payload.vendorId", "must not be empty")
		}
		if m.Context.VendorID != nil && *m.Context.VendorID != p.VendorID {
			return common.NewInvalidInput("payload.vendorId", "must equal context.vendorId")
		}
	case CorrectionPayload:
		if m.Type != TypeCorrection {
			return common.NewInvalidInput("type", "payload is CorrectionPayload but type is not Correction")
		}
	case ResolutionPayload:
		if m.Type != TypeResolution {
			return common.NewInvalidInput("type", "payload is ResolutionPayload but type is not Resolution")
		}
	default:
		return common.NewInvalidInput("payload", "missing or unrecognized variant payload")
	}

	return nil
}

// ClampConfidence clamps c into [0.1, 1.0], the floor every memory-visible
// read must respect regardless of what Storage transiently holds.
func ClampConfidence(c float64) float64 {
	if c < MinConfidence {
		return MinConfidence
	}
	if c > MaxConfidence {
		return MaxConfidence
	}
	return c
}
