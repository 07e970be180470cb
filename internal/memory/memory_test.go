package memory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func vendorID(s string) *string { return &s }

func validVendorMemory() Memory {
	vid := "vendor-123"
	return Memory{
		ID:         "mem-1",
		Type:       TypeVendor,
		Confidence: 0.8,
		Pattern:    Pattern{PatternType: "fieldMapping", Threshold: 0.5},
		CreatedAt:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		LastUsed:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		UsageCount: 0,
		Context: Context{
			VendorID: vendorID(vid),
			InvoiceCharacteristics: InvoiceCharacteristics{
				Complexity: "simple",
				Language:   "de",
			},
		},
		Payload: VendorPayload{VendorID: vid},
	}
}

func TestMemory_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(Memory) Memory
		wantErr bool
	}{
		{
			name:    "valid vendor memory",
			mutate:  func(m Memory) Memory { return m },
			wantErr: false,
		},
		{
			name:    "empty id",
			mutate:  func(m Memory) Memory { m.ID = ""; return m },
			wantErr: true,
		},
		{
			name:    "confidence below floor",
			mutate:  func(m Memory) Memory { m.Confidence = 0.05; return m },
			wantErr: true,
		},
		{
			name:    "confidence above ceiling",
			mutate:  func(m Memory) Memory { m.Confidence = 1.5; return m },
			wantErr: true,
		},
		{
			name:    "negative success rate",
			mutate:  func(m Memory) Memory { m.SuccessRate = -0.1; return m },
			wantErr: true,
		},
		{
			name:    "success rate above 1",
			mutate:  func(m Memory) Memory { m.SuccessRate = 1.1; return m },
			wantErr: true,
		},
		{
			name:    "negative usage count",
			mutate:  func(m Memory) Memory { m.UsageCount = -1; return m },
			wantErr: true,
		},
		{
			name: "vendor payload/context mismatch",
			mutate: func(m Memory) Memory {
				m.Payload = VendorPayload{VendorID: "vendor-999"}
				return m
			},
			wantErr: true,
		},
		{
			name: "type tag mismatch",
			mutate: func(m Memory) Memory {
				m.Type = TypeCorrection
				return m
			},
			wantErr: true,
		},
		{
			name:    "missing payload",
			mutate:  func(m Memory) Memory { m.Payload = nil; return m },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := tt.mutate(validVendorMemory())
			err := m.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestMemory_Validate_CorrectionAndResolution(t *testing.T) {
	correction := Memory{
		ID:         "mem-2",
		Type:       TypeCorrection,
		Confidence: 0.5,
		Context:    Context{},
		Payload: CorrectionPayload{
			CorrectionType: "PRICE",
			TriggerConditions: []TriggerCondition{
				{Field: "totalAmount", Operator: "EXISTS"},
			},
			CorrectionAction: CorrectionAction{ActionType: "SET_FIELD", TargetField: "totalAmount"},
		},
	}
	require.NoError(t, correction.Validate())

	resolution := Memory{
		ID:         "mem-3",
		Type:       TypeResolution,
		Confidence: 0.6,
		Payload: ResolutionPayload{
			DiscrepancyType:   "AMOUNT_MISMATCH",
			ResolutionOutcome: "accepted",
			HumanDecision:     HumanDecision{Decision: "accept", Confidence: 0.9},
		},
	}
	require.NoError(t, resolution.Validate())
}

func TestClampConfidence(t *testing.T) {
	assert.Equal(t, MinConfidence, ClampConfidence(0.0))
	assert.Equal(t, MinConfidence, ClampConfidence(0.05))
	assert.Equal(t, MaxConfidence, ClampConfidence(1.2))
	assert.InDelta(t, 0.5, ClampConfidence(0.5), 1e-9)
}
