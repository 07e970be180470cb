package memstore

import (
	"database/sql"
	"fmt"
)

// expectedSchemaVersion is the latest schema version this binary expects.
const expectedSchemaVersion = 1

type migration struct {
	up          func(*sql.Tx) error
	description string
	version     int
}

var migrations = []migration{
	{
		version:     1,
		description: "initial memory schema",
		up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS memories (
					id TEXT PRIMARY KEY,
					type TEXT NOT NULL,
					vendor_id TEXT,
					pattern_type TEXT NOT NULL,
					confidence REAL NOT NULL,
					usage_count INTEGER NOT NULL DEFAULT 0,
					success_rate REAL NOT NULL DEFAULT 0,
					created_at DATETIME NOT NULL,
					last_used DATETIME NOT NULL,
					archived_at DATETIME,
					payload_json TEXT NOT NULL
				)`,
				`CREATE INDEX IF NOT EXISTS idx_memories_vendor ON memories(vendor_id)`,
				`CREATE INDEX IF NOT EXISTS idx_memories_type ON memories(type)`,
				`CREATE INDEX IF NOT EXISTS idx_memories_pattern_type ON memories(pattern_type)`,
				`CREATE INDEX IF NOT EXISTS idx_memories_archived ON memories(archived_at)`,
			}
			for _, q := range queries {
				if _, err := tx.Exec(q); err != nil {
					return fmt.Errorf("exec migration query: %w", err)
				}
			}
			return nil
		},
	},
}

// migrate applies every pending migration, tracked via PRAGMA user_version,
// exactly as the teacher's internal/storage/migrations.go does.
func (s *SQLiteStore) migrate() error {
	var currentVersion int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&currentVersion); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.version, err)
		}

		if err := m.up(tx); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d (%s): %w", m.version, m.description, err)
		}

		if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", m.version)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("set schema version %d: %w", m.version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.version, err)
		}
	}

	var finalVersion int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&finalVersion); err != nil {
		return fmt.Errorf("verify schema version: %w", err)
	}
	if finalVersion != expectedSchemaVersion {
		return fmt.Errorf("schema version mismatch: expected %d, got %d", expectedSchemaVersion, finalVersion)
	}

	return nil
}
