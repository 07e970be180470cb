package duplicate

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// sqliteIndexSchemaVersion is the latest schema version this index expects.
const sqliteIndexSchemaVersion = 1

// SQLiteIndex implements Index on a single SQLite connection, grounded on
// memstore.SQLiteStore's connection-and-migration pattern.
type SQLiteIndex struct {
	db *sql.DB
}

// NewSQLiteIndex opens (and, if needed, creates) the database at dbPath and
// migrates it to the current schema. dbPath may be ":memory:" for tests.
func NewSQLiteIndex(dbPath string) (*SQLiteIndex, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("dbPath must not be empty")
	}

	if dbPath != ":memory:" {
		if dir := filepath.Dir(dbPath); dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, fmt.Errorf("create database directory: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	idx := &SQLiteIndex{db: db}
	if err := idx.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return idx, nil
}

func (idx *SQLiteIndex) migrate() error {
	var currentVersion int
	if err := idx.db.QueryRow("PRAGMA user_version").Scan(&currentVersion); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if currentVersion >= sqliteIndexSchemaVersion {
		return nil
	}

	tx, err := idx.db.Begin()
	if err != nil {
		return fmt.Errorf("begin migration: %w", err)
	}

	queries := []string{
		`CREATE TABLE IF NOT EXISTS invoices (
			id TEXT PRIMARY KEY,
			vendor_id TEXT NOT NULL,
			invoice_number TEXT NOT NULL,
			invoice_date DATETIME,
			amount REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_invoices_vendor ON invoices(vendor_id)`,
	}
	for _, q := range queries {
		if _, err := tx.Exec(q); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("exec migration query: %w", err)
		}
	}

	if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", sqliteIndexSchemaVersion)); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("set schema version: %w", err)
	}
	return tx.Commit()
}

// FindByVendor returns every invoice with vendor_id == vendorID.
func (idx *SQLiteIndex) FindByVendor(ctx context.Context, vendorID string) ([]InvoiceRecord, error) {
	rows, err := idx.db.QueryContext(ctx, `
		SELECT id, vendor_id, invoice_number, invoice_date, amount
		FROM invoices WHERE vendor_id = ?
	`, vendorID)
	if err != nil {
		return nil, fmt.Errorf("query invoices: %w", err)
	}
	defer rows.Close()

	var out []InvoiceRecord
	for rows.Next() {
		var rec InvoiceRecord
		var invoiceDate sql.NullTime
		var amount sql.NullFloat64
		if err := rows.Scan(&rec.ID, &rec.VendorID, &rec.InvoiceNumber, &invoiceDate, &amount); err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		if invoiceDate.Valid {
			rec.InvoiceDate = &invoiceDate.Time
		}
		if amount.Valid {
			rec.Amount = &amount.Float64
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Record upserts rec into the index.
func (idx *SQLiteIndex) Record(ctx context.Context, rec InvoiceRecord) error {
	var invoiceDate any
	if rec.InvoiceDate != nil {
		invoiceDate = *rec.InvoiceDate
	}
	var amount any
	if rec.Amount != nil {
		amount = *rec.Amount
	}

	_, err := idx.db.ExecContext(ctx, `
		INSERT INTO invoices (id, vendor_id, invoice_number, invoice_date, amount)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			vendor_id = excluded.vendor_id,
			invoice_number = excluded.invoice_number,
			invoice_date = excluded.invoice_date,
			amount = excluded.amount
	`, rec.ID, rec.VendorID, rec.InvoiceNumber, invoiceDate, amount)
	if err != nil {
		return fmt.Errorf("record invoice: %w", err)
	}
	return nil
}

// Close releases the underlying connection.
func (idx *SQLiteIndex) Close() error {
	return idx.db.Close()
}
