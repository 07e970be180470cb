package statemgr

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/invoice-memory/internal/memory"
)

func TestSerializeDeserialize_RoundTrip(t *testing.T) {
	s := State{
		Memories:   []memory.Memory{sampleMemory("a", 0.7), sampleMemory("b", 0.9)},
		CapturedAt: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
	}

	data, err := Serialize(s)
	require.NoError(t, err)

	restored, err := Deserialize(data)
	require.NoError(t, err)

	assert.True(t, CompareStates(s, restored))
	assert.True(t, s.CapturedAt.Equal(restored.CapturedAt))
}

func TestDeserialize_RejectsMissingVariant(t *testing.T) {
	malformed := `{
		"memories": [{"id":"a","type":"Vendor","confidence":0.5,"pattern":{"patternType":"x","threshold":0.5},"createdAt":"2026-01-01T00:00:00Z","lastUsed":"2026-01-01T00:00:00Z","usageCount":0,"successRate":0,"context":{"invoiceCharacteristics":{"extractionQuality":0}}}],
		"capturedAt": "2026-01-01T00:00:00Z",
		"version": "1.0.0",
		"metadata": {"totalMemories":1,"memoryTypeBreakdown":{"Vendor":1},"averageConfidence":0.5}
	}`

	_, err := Deserialize([]byte(malformed))
	assert.Error(t, err)
}
