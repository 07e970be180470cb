// Package statemgr implements the State manager auxiliary collaborator of
// spec §6: it captures the full memory store into a snapshot, serializes
// that snapshot to the bit-stable JSON wire format, restores it back into
// storage, and compares two snapshots for equality. Grounded on the
// teacher's internal/storage.CheckpointManager, reworked from a
// file-copy-based database checkpoint into an in-memory/serializable
// snapshot of memory records, since the core here forbids holding
// anything beyond storage itself as shared state (spec §5).
package statemgr
