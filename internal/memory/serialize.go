package memory

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/Veraticus/invoice-memory/internal/common"
)

// wireMemory is the bit-stable wire representation of spec §6's
// SerializedMemory: the envelope fields plus exactly one of
// vendorData/correctionData/resolutionData.
type wireMemory struct {
	ID          string    `json:"id"`
	Type        Type      `json:"type"`
	Confidence  float64   `json:"confidence"`
	Pattern     Pattern   `json:"pattern"`
	CreatedAt   time.Time `json:"createdAt"`
	LastUsed    time.Time `json:"lastUsed"`
	UsageCount  int       `json:"usageCount"`
	SuccessRate float64   `json:"successRate"`
	Context     Context   `json:"context"`

	VendorData     *VendorPayload     `json:"vendorData,omitempty"`
	CorrectionData *CorrectionPayload `json:"correctionData,omitempty"`
	ResolutionData *ResolutionPayload `json:"resolutionData,omitempty"`
}

// MarshalJSON encodes m in the SerializedMemory wire format of spec §6.
func (m Memory) MarshalJSON() ([]byte, error) {
	w := wireMemory{
		ID:          m.ID,
		Type:        m.Type,
		Confidence:  m.Confidence,
		Pattern:     m.Pattern,
		CreatedAt:   m.CreatedAt,
		LastUsed:    m.LastUsed,
		UsageCount:  m.UsageCount,
		SuccessRate: m.SuccessRate,
		Context:     m.Context,
	}

	switch p := m.Payload.(type) {
	case VendorPayload:
		w.VendorData = &p
	case CorrectionPayload:
		w.CorrectionData = &p
	case ResolutionPayload:
		w.ResolutionData = &p
	}

	return json.Marshal(w)
}

// UnmarshalJSON decodes the SerializedMemory wire format of spec §6,
// rejecting records whose expected variant payload is absent
// (ErrInvalidInput, per spec §7).
func (m *Memory) UnmarshalJSON(data []byte) error {
	var w wireMemory
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("decode memory: %w", err)
	}

	out := Memory{
		ID:          w.ID,
		Type:        w.Type,
		Confidence:  w.Confidence,
		Pattern:     w.Pattern,
		CreatedAt:   w.CreatedAt,
		LastUsed:    w.LastUsed,
		UsageCount:  w.UsageCount,
		SuccessRate: w.SuccessRate,
		Context:     w.Context,
	}

	switch w.Type {
	case TypeVendor:
		if w.VendorData == nil {
			return common.NewInvalidInput("vendorData", "missing for type Vendor")
		}
		out.Payload = *w.VendorData
	case TypeCorrection:
		if w.CorrectionData == nil {
			return common.NewInvalidInput("correctionData", "missing for type Correction")
		}
		out.Payload = *w.CorrectionData
	case TypeResolution:
		if w.ResolutionData == nil {
			return common.NewInvalidInput("resolutionData", "missing for type Resolution")
		}
		out.Payload = *w.ResolutionData
	default:
		return common.NewInvalidInput("type", fmt.Sprintf("unrecognized memory type %q", w.Type))
	}

	*m = out
	return nil
}
