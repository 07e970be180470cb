package memstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Veraticus/invoice-memory/internal/common"
	"github.com/Veraticus/invoice-memory/internal/memory"
)

// Save upserts m, writing the envelope's indexed columns and the full
// payload JSON atomically in one statement (spec §4.1's atomicity
// requirement needs no explicit transaction since SQLite's ON CONFLICT
// upsert is itself atomic).
func (s *SQLiteStore) Save(ctx context.Context, m memory.Memory) error {
	if err := m.Validate(); err != nil {
		return err
	}

	payload, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal memory: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO memories (
			id, type, vendor_id, pattern_type, confidence, usage_count,
			success_rate, created_at, last_used, archived_at, payload_json
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, NULL, ?)
		ON CONFLICT(id) DO UPDATE SET
			type = excluded.type,
			vendor_id = excluded.vendor_id,
			pattern_type = excluded.pattern_type,
			confidence = excluded.confidence,
			usage_count = excluded.usage_count,
			success_rate = excluded.success_rate,
			created_at = excluded.created_at,
			last_used = excluded.last_used,
			payload_json = excluded.payload_json
	`,
		m.ID, string(m.Type), storedVendorID(m), m.Pattern.PatternType, m.Confidence,
		m.UsageCount, m.SuccessRate, m.CreatedAt, m.LastUsed, string(payload),
	)
	if err != nil {
		return common.WrapStorage("save", err)
	}
	return nil
}

// storedVendorID is the column value findByVendor matches against: the
// context's vendor id when set, else the payload's vendor id for Vendor
// memories. Invariant 2 (spec §3) keeps these equal whenever both exist.
func storedVendorID(m memory.Memory) sql.NullString {
	if m.Context.VendorID != nil {
		return sql.NullString{String: *m.Context.VendorID, Valid: true}
	}
	if vp, ok := m.Payload.(memory.VendorPayload); ok {
		return sql.NullString{String: vp.VendorID, Valid: true}
	}
	return sql.NullString{}
}

// FindByID returns the memory for id, or common.ErrNotFound if it is
// missing or archived.
func (s *SQLiteStore) FindByID(ctx context.Context, id string) (memory.Memory, error) {
	if id == "" {
		return memory.Memory{}, common.NewInvalidInput("id", "must not be empty")
	}

	var payload string
	err := s.db.QueryRowContext(ctx, `
		SELECT payload_json FROM memories WHERE id = ? AND archived_at IS NULL
	`, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return memory.Memory{}, common.ErrNotFound
	}
	if err != nil {
		return memory.Memory{}, common.WrapStorage("findById", err)
	}

	return decodeMemory(payload)
}

// FindByVendor returns every non-archived memory scoped to vendorID, per
// the match rule of spec §4.1.
func (s *SQLiteStore) FindByVendor(ctx context.Context, vendorID string) ([]memory.Memory, error) {
	if vendorID == "" {
		return nil, common.NewInvalidInput("vendorId", "must not be empty")
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT payload_json FROM memories
		WHERE vendor_id = ? AND archived_at IS NULL
	`, vendorID)
	if err != nil {
		return nil, common.WrapStorage("findByVendor", err)
	}
	return scanMemories(rows)
}

// FindByPattern returns non-archived memories sharing p's pattern type.
// pattern.patternData is opaque (spec §9) so matching is on patternType
// alone.
func (s *SQLiteStore) FindByPattern(ctx context.Context, p memory.Pattern) ([]memory.Memory, error) {
	if p.PatternType == "" {
		return nil, common.NewInvalidInput("pattern.patternType", "must not be empty")
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT payload_json FROM memories
		WHERE pattern_type = ? AND archived_at IS NULL
	`, p.PatternType)
	if err != nil {
		return nil, common.WrapStorage("findByPattern", err)
	}
	return scanMemories(rows)
}

// FindByType returns every non-archived memory of type t.
func (s *SQLiteStore) FindByType(ctx context.Context, t memory.Type) ([]memory.Memory, error) {
	if t == "" {
		return nil, common.NewInvalidInput("type", "must not be empty")
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT payload_json FROM memories
		WHERE type = ? AND archived_at IS NULL
	`, string(t))
	if err != nil {
		return nil, common.WrapStorage("findByType", err)
	}
	return scanMemories(rows)
}

// UpdateConfidence persists c for id. A c outside [0,1] is rejected with
// common.ErrInvalidInput rather than clamped. Callers on the
// Confidence-manager path are responsible for the [0.1,1.0] floor; storage
// itself only guards the wider [0,1] range (open question 1).
func (s *SQLiteStore) UpdateConfidence(ctx context.Context, id string, c float64) error {
	if id == "" {
		return common.NewInvalidInput("id", "must not be empty")
	}
	if c < 0 || c > 1 {
		return common.NewInvalidInput("confidence", "must be in [0, 1]")
	}

	existing, err := s.FindByID(ctx, id)
	if err != nil {
		return err
	}
	existing.Confidence = c

	payload, err := json.Marshal(existing)
	if err != nil {
		return fmt.Errorf("marshal memory: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE memories SET confidence = ?, payload_json = ?
		WHERE id = ? AND archived_at IS NULL
	`, c, string(payload), id)
	if err != nil {
		return common.WrapStorage("updateConfidence", err)
	}
	return requireRowAffected(res, "updateConfidence")
}

// Archive soft-deletes id so it no longer appears in any finder.
func (s *SQLiteStore) Archive(ctx context.Context, id string) error {
	if id == "" {
		return common.NewInvalidInput("id", "must not be empty")
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE memories SET archived_at = CURRENT_TIMESTAMP
		WHERE id = ? AND archived_at IS NULL
	`, id)
	if err != nil {
		return common.WrapStorage("archive", err)
	}
	return requireRowAffected(res, "archive")
}

// Delete hard-deletes id.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	if id == "" {
		return common.NewInvalidInput("id", "must not be empty")
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM memories WHERE id = ?`, id)
	if err != nil {
		return common.WrapStorage("delete", err)
	}
	return requireRowAffected(res, "delete")
}

// All returns every non-archived memory.
func (s *SQLiteStore) All(ctx context.Context) ([]memory.Memory, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT payload_json FROM memories WHERE archived_at IS NULL
	`)
	if err != nil {
		return nil, common.WrapStorage("all", err)
	}
	return scanMemories(rows)
}

// Count returns the number of non-archived memories.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM memories WHERE archived_at IS NULL
	`).Scan(&n)
	if err != nil {
		return 0, common.WrapStorage("count", err)
	}
	return n, nil
}

func decodeMemory(payload string) (memory.Memory, error) {
	var m memory.Memory
	if err := json.Unmarshal([]byte(payload), &m); err != nil {
		return memory.Memory{}, fmt.Errorf("decode stored memory: %w", err)
	}
	return m, nil
}

func scanMemories(rows *sql.Rows) ([]memory.Memory, error) {
	defer func() { _ = rows.Close() }()

	var out []memory.Memory
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, common.WrapStorage("scan", err)
		}
		m, err := decodeMemory(payload)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, common.WrapStorage("scan", err)
	}
	return out, nil
}

func requireRowAffected(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return common.WrapStorage(op, err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}
