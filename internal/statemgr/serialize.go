package statemgr

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/Veraticus/invoice-memory/internal/memory"
)

// wireState mirrors spec §6's bit-stable JSON state format.
type wireState struct {
	Memories   []memory.Memory `json:"memories"`
	CapturedAt string          `json:"capturedAt"`
	Version    string          `json:"version"`
	Metadata   wireMetadata    `json:"metadata"`
}

type wireMetadata struct {
	TotalMemories       int                 `json:"totalMemories"`
	MemoryTypeBreakdown map[memory.Type]int `json:"memoryTypeBreakdown"`
	AverageConfidence   float64             `json:"averageConfidence"`
}

// Serialize encodes s into spec §6's bit-stable JSON wire format. Each
// memory.Memory marshals through its own MarshalJSON, which already
// produces the SerializedMemory shape (envelope fields plus exactly one
// variant payload).
func Serialize(s State) ([]byte, error) {
	meta := s.BuildMetadata()

	w := wireState{
		Memories:   s.Memories,
		CapturedAt: s.CapturedAt.Format(time.RFC3339),
		Version:    stateVersion,
		Metadata: wireMetadata{
			TotalMemories:       meta.TotalMemories,
			MemoryTypeBreakdown: meta.MemoryTypeBreakdown,
			AverageConfidence:   meta.AverageConfidence,
		},
	}

	data, err := json.Marshal(w)
	if err != nil {
		return nil, fmt.Errorf("marshal state: %w", err)
	}
	return data, nil
}

// Deserialize decodes data back into a State. It propagates, rather than
// catches, any malformed-record error from an individual memory's
// UnmarshalJSON (spec §7: deserialization errors are not among the
// catch-and-degrade operations).
func Deserialize(data []byte) (State, error) {
	var w wireState
	if err := json.Unmarshal(data, &w); err != nil {
		return State{}, fmt.Errorf("unmarshal state: %w", err)
	}

	capturedAt, err := time.Parse(time.RFC3339, w.CapturedAt)
	if err != nil {
		return State{}, fmt.Errorf("parse capturedAt: %w", err)
	}

	return State{Memories: w.Memories, CapturedAt: capturedAt}, nil
}
