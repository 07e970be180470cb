package statemgr

import (
	"time"

	"github.com/Veraticus/invoice-memory/internal/memory"
)

// stateVersion is the fixed version tag of spec §6's wire format.
const stateVersion = "1.0.0"

// State is an in-memory snapshot of every memory record at a point in
// time, spec §6's captureState() result.
type State struct {
	Memories   []memory.Memory
	CapturedAt time.Time
}

// Metadata summarizes a State, spec §6's metadata block.
type Metadata struct {
	TotalMemories       int
	MemoryTypeBreakdown map[memory.Type]int
	AverageConfidence   float64
}

// BuildMetadata computes Metadata from s.Memories.
func (s State) BuildMetadata() Metadata {
	breakdown := make(map[memory.Type]int)
	var confidenceSum float64
	for _, m := range s.Memories {
		breakdown[m.Type]++
		confidenceSum += m.Confidence
	}

	avg := 0.0
	if len(s.Memories) > 0 {
		avg = confidenceSum / float64(len(s.Memories))
	}

	return Metadata{
		TotalMemories:       len(s.Memories),
		MemoryTypeBreakdown: breakdown,
		AverageConfidence:   avg,
	}
}
