package statemgr

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Veraticus/invoice-memory/internal/memory"
)

func sampleMemory(id string, confidence float64) memory.Memory {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	vendorID := "vendor-1"
	return memory.Memory{
		ID:         id,
		Type:       memory.TypeVendor,
		Confidence: confidence,
		Pattern:    memory.Pattern{PatternType: "vendor-field-mapping", Threshold: 0.5},
		CreatedAt:  now,
		LastUsed:   now,
		Context:    memory.Context{VendorID: &vendorID},
		Payload:    memory.VendorPayload{VendorID: vendorID},
	}
}

func TestState_BuildMetadata(t *testing.T) {
	s := State{Memories: []memory.Memory{sampleMemory("a", 0.5), sampleMemory("b", 0.9)}}
	meta := s.BuildMetadata()

	assert.Equal(t, 2, meta.TotalMemories)
	assert.Equal(t, 2, meta.MemoryTypeBreakdown[memory.TypeVendor])
	assert.InDelta(t, 0.7, meta.AverageConfidence, 1e-9)
}

func TestState_BuildMetadata_Empty(t *testing.T) {
	meta := State{}.BuildMetadata()
	assert.Equal(t, 0, meta.TotalMemories)
	assert.Equal(t, 0.0, meta.AverageConfidence)
}
