package statemgr

import (
	"context"
	"fmt"
	"sort"

	"github.com/Veraticus/invoice-memory/internal/clock"
	"github.com/Veraticus/invoice-memory/internal/memory"
	"github.com/Veraticus/invoice-memory/internal/memstore"
)

// Manager implements the State manager of spec §6.
type Manager struct {
	storage memstore.Storage
	clock   clock.Clock
}

// New constructs a Manager.
func New(storage memstore.Storage, clk clock.Clock) *Manager {
	return &Manager{storage: storage, clock: clk}
}

// CaptureState reads every non-archived memory from storage into a State.
func (m *Manager) CaptureState(ctx context.Context) (State, error) {
	memories, err := m.storage.All(ctx)
	if err != nil {
		return State{}, fmt.Errorf("capture state: %w", err)
	}
	return State{Memories: memories, CapturedAt: m.clock.Now()}, nil
}

// RestoreState writes every memory in s back into storage, upserting each
// one (spec §4.1's save is itself an upsert, so restoring over an existing
// store is safe).
func (m *Manager) RestoreState(ctx context.Context, s State) error {
	for _, mem := range s.Memories {
		if err := m.storage.Save(ctx, mem); err != nil {
			return fmt.Errorf("restore memory %q: %w", mem.ID, err)
		}
	}
	return nil
}

// CompareStates reports whether a and b contain the same set of memories,
// independent of slice order, per spec §6's compareStates(a, b) -> bool.
func CompareStates(a, b State) bool {
	if len(a.Memories) != len(b.Memories) {
		return false
	}

	sortedA := sortedByID(a.Memories)
	sortedB := sortedByID(b.Memories)

	for i := range sortedA {
		if !memoriesEqual(sortedA[i], sortedB[i]) {
			return false
		}
	}
	return true
}

func sortedByID(memories []memory.Memory) []memory.Memory {
	out := make([]memory.Memory, len(memories))
	copy(out, memories)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// memoriesEqual compares two memories by round-tripping both through their
// own wire format and comparing bytes, avoiding a hand-maintained
// field-by-field comparison that would drift from MarshalJSON's shape.
func memoriesEqual(a, b memory.Memory) bool {
	aBytes, errA := a.MarshalJSON()
	bBytes, errB := b.MarshalJSON()
	if errA != nil || errB != nil {
		return false
	}
	return string(aBytes) == string(bBytes)
}

// Diff reports the memory ids present in b but not a, and vice versa. Not
// named in spec §6's operation list but a direct, additive convenience on
// top of CompareStates for callers that need to know *what* differs.
func Diff(a, b State) (onlyInA, onlyInB []string) {
	idsA := make(map[string]bool, len(a.Memories))
	for _, m := range a.Memories {
		idsA[m.ID] = true
	}
	idsB := make(map[string]bool, len(b.Memories))
	for _, m := range b.Memories {
		idsB[m.ID] = true
	}

	for id := range idsA {
		if !idsB[id] {
			onlyInA = append(onlyInA, id)
		}
	}
	for id := range idsB {
		if !idsA[id] {
			onlyInB = append(onlyInB, id)
		}
	}
	sort.Strings(onlyInA)
	sort.Strings(onlyInB)
	return onlyInA, onlyInB
}
