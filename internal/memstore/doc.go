// Package memstore implements the Storage collaborator of spec §4.1 and
// §6 on top of SQLite, mirroring the teacher's internal/storage package
// (connection setup, a versioned PRAGMA user_version migration ladder,
// upsert-on-conflict writes) without its in-process vendor cache: spec §5
// requires every read to go through storage so vendor isolation stays
// testable under concurrent writes.
package memstore
