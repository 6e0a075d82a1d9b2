// Package storage persists cleaned sales records in SQLite and serves the
// immutable snapshot every analysis run computes over.
//
// The store is append-oriented: records go in once after cleaning and are
// never updated in place. Records returns the full snapshot in a stable order
// (sale date ascending, insertion order as tie-break), so two runs over the
// same store see byte-identical input. Use ":memory:" as the path for an
// ephemeral store in tests.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"github.com/merrow-labs/shopsight/internal/models"
)

// dateLayout is how sale dates are serialized. Dates are day-resolution;
// storing the bare date keeps the column human-readable and sortable.
const dateLayout = "2006-01-02"

const schema = `
CREATE TABLE IF NOT EXISTS sales_records (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	sale_date   TEXT    NOT NULL,
	customer_id INTEGER NOT NULL,
	product_id  INTEGER NOT NULL,
	category    TEXT    NOT NULL,
	quantity    INTEGER NOT NULL,
	unit_price  TEXT    NOT NULL,
	revenue     TEXT    NOT NULL,
	store_id    INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_sales_records_customer ON sales_records(customer_id);
CREATE INDEX IF NOT EXISTS idx_sales_records_product  ON sales_records(product_id);
CREATE INDEX IF NOT EXISTS idx_sales_records_date     ON sales_records(sale_date);
`

// Store provides SQLite-backed persistence for sales records.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the store at path and migrates the schema.
// Use ":memory:" for an in-memory store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// modernc sqlite serializes access through a single connection; more than
	// one connection to a ":memory:" DSN would each get a private database.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// InsertRecords appends cleaned records in a single transaction. Every record
// is validated first; one invalid record rejects the whole batch so the store
// never holds a partially written snapshot.
func (s *Store) InsertRecords(ctx context.Context, records []models.SalesRecord) error {
	for i := range records {
		if err := records[i].Validate(); err != nil {
			return fmt.Errorf("invalid record at index %d: %w", i, err)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO sales_records
			(sale_date, customer_id, product_id, category, quantity, unit_price, revenue, store_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i := range records {
		r := &records[i]
		_, err := stmt.ExecContext(ctx,
			r.Day().Format(dateLayout),
			r.CustomerID,
			r.ProductID,
			r.Category,
			r.Quantity,
			r.UnitPrice.String(),
			r.Revenue.String(),
			r.StoreID,
		)
		if err != nil {
			return fmt.Errorf("failed to insert record %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit records: %w", err)
	}
	return nil
}

// Records returns the full snapshot ordered by sale date ascending with
// insertion order as tie-break. The returned slice is a fresh copy on every
// call; callers may hold it across runs without interference.
func (s *Store) Records(ctx context.Context) ([]models.SalesRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT sale_date, customer_id, product_id, category, quantity, unit_price, revenue, store_id
		FROM sales_records
		ORDER BY sale_date, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	var records []models.SalesRecord
	for rows.Next() {
		var (
			r         models.SalesRecord
			date      string
			unitPrice string
			revenue   string
		)
		if err := rows.Scan(&date, &r.CustomerID, &r.ProductID, &r.Category, &r.Quantity, &unitPrice, &revenue, &r.StoreID); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		if r.Date, err = time.ParseInLocation(dateLayout, date, time.UTC); err != nil {
			return nil, fmt.Errorf("invalid stored date %q: %w", date, err)
		}
		if r.UnitPrice, err = decimal.NewFromString(unitPrice); err != nil {
			return nil, fmt.Errorf("invalid stored unit price %q: %w", unitPrice, err)
		}
		if r.Revenue, err = decimal.NewFromString(revenue); err != nil {
			return nil, fmt.Errorf("invalid stored revenue %q: %w", revenue, err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read records: %w", err)
	}
	return records, nil
}

// Count returns the number of stored records.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sales_records`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return n, nil
}
