package recall

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Veraticus/invoice-memory/internal/invoice"
	"github.com/Veraticus/invoice-memory/internal/memory"
)

func vid(s string) *string { return &s }

func TestCalculateRelevance_Vendor(t *testing.T) {
	m := memory.Memory{
		Type:        memory.TypeVendor,
		Confidence:  0.8,
		SuccessRate: 0.9,
		Context: memory.Context{
			VendorID: vid("vendor-1"),
			InvoiceCharacteristics: memory.InvoiceCharacteristics{
				Language: "de",
			},
		},
		Payload: memory.VendorPayload{VendorID: "vendor-1"},
	}

	ctx := InvoiceContext{
		VendorInfo:      invoice.VendorInfo{ID: "vendor-1", Language: "de"},
		Characteristics: memory.InvoiceCharacteristics{Language: "de"},
	}
	relevance := calculateRelevance(m, ctx)
	assert.Greater(t, relevance, 0.0)
	assert.LessOrEqual(t, relevance, 1.0)

	otherVendor := InvoiceContext{VendorInfo: invoice.VendorInfo{ID: "vendor-2"}}
	assert.Equal(t, 0.0, calculateRelevance(m, otherVendor))
}

func TestCalculateRelevance_Correction_RequiresTrigger(t *testing.T) {
	m := memory.Memory{
		Type:       memory.TypeCorrection,
		Confidence: 0.7,
		Payload:    memory.CorrectionPayload{},
	}
	assert.Equal(t, 0.0, calculateRelevance(m, InvoiceContext{}))

	m.Payload = memory.CorrectionPayload{
		TriggerConditions: []memory.TriggerCondition{{Field: "totalAmount", Operator: "EXISTS"}},
	}
	assert.Greater(t, calculateRelevance(m, InvoiceContext{}), 0.0)
}

func TestCalculateRelevance_Resolution(t *testing.T) {
	m := memory.Memory{
		Type:       memory.TypeResolution,
		Confidence: 0.6,
		Payload: memory.ResolutionPayload{
			HumanDecision:  memory.HumanDecision{Confidence: 0.9},
			ContextFactors: []memory.ContextFactor{{Name: "amount", Weight: 2}},
		},
	}
	relevance := calculateRelevance(m, InvoiceContext{})
	assert.Greater(t, relevance, 0.0)
	assert.LessOrEqual(t, relevance, 1.0)
}

func TestCalculateRelevance_UnknownPayload(t *testing.T) {
	m := memory.Memory{Type: memory.TypeVendor}
	assert.Equal(t, 0.0, calculateRelevance(m, InvoiceContext{}))
}
