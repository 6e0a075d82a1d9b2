// Package dataset handles everything that happens to sales data before it
// reaches the record store: CSV parsing, cleaning (deduplication, bad-row
// removal, per-product price imputation, revenue derivation), and seeded
// synthetic dataset generation for demos and tests.
//
// Cleaning is the only stage allowed to drop rows; once records are cleaned
// and stored, every downstream computation keeps all of them.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// csvHeader is the expected input column order.
var csvHeader = []string{"date", "customer_id", "product_id", "category", "quantity", "unit_price", "store_id"}

const dateLayout = "2006-01-02"

// RawRecord is one parsed but not yet cleaned CSV row. HasPrice distinguishes
// a genuinely missing unit price (empty field, to be imputed) from a zero one.
type RawRecord struct {
	Date       time.Time
	CustomerID int64
	ProductID  int64
	Category   string
	Quantity   int
	UnitPrice  decimal.Decimal
	HasPrice   bool
	StoreID    int64
}

// LoadCSV reads a sales CSV file. The header row is required and must match
// the expected column order; an unparseable row fails the whole load rather
// than being skipped silently.
func LoadCSV(path string) ([]RawRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	if len(header) != len(csvHeader) {
		return nil, fmt.Errorf("unexpected header: got %d columns, want %d", len(header), len(csvHeader))
	}
	for i, col := range csvHeader {
		if header[i] != col {
			return nil, fmt.Errorf("unexpected header column %d: got %q, want %q", i, header[i], col)
		}
	}

	var records []RawRecord
	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", line, err)
		}
		r, err := parseRow(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		records = append(records, r)
	}
	return records, nil
}

func parseRow(row []string) (RawRecord, error) {
	var r RawRecord
	var err error

	if r.Date, err = time.ParseInLocation(dateLayout, row[0], time.UTC); err != nil {
		return r, fmt.Errorf("invalid date %q: %w", row[0], err)
	}
	if r.CustomerID, err = strconv.ParseInt(row[1], 10, 64); err != nil {
		return r, fmt.Errorf("invalid customer ID %q: %w", row[1], err)
	}
	if r.ProductID, err = strconv.ParseInt(row[2], 10, 64); err != nil {
		return r, fmt.Errorf("invalid product ID %q: %w", row[2], err)
	}
	r.Category = row[3]
	if r.Quantity, err = strconv.Atoi(row[4]); err != nil {
		return r, fmt.Errorf("invalid quantity %q: %w", row[4], err)
	}
	if row[5] != "" {
		if r.UnitPrice, err = decimal.NewFromString(row[5]); err != nil {
			return r, fmt.Errorf("invalid unit price %q: %w", row[5], err)
		}
		r.HasPrice = true
	}
	if r.StoreID, err = strconv.ParseInt(row[6], 10, 64); err != nil {
		return r, fmt.Errorf("invalid store ID %q: %w", row[6], err)
	}
	return r, nil
}

// WriteCSV writes raw records to path, creating parent directories. The write
// goes through a temp file plus rename so readers never observe a partial
// dataset.
func WriteCSV(path string, records []RawRecord) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create dataset directory: %w", err)
	}

	tempPath := path + ".tmp"
	f, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("failed to create dataset file: %w", err)
	}

	writer := csv.NewWriter(f)
	if err := writer.Write(csvHeader); err != nil {
		_ = f.Close()
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i := range records {
		r := &records[i]
		price := ""
		if r.HasPrice {
			price = r.UnitPrice.String()
		}
		row := []string{
			r.Date.UTC().Format(dateLayout),
			strconv.FormatInt(r.CustomerID, 10),
			strconv.FormatInt(r.ProductID, 10),
			r.Category,
			strconv.Itoa(r.Quantity),
			price,
			strconv.FormatInt(r.StoreID, 10),
		}
		if err := writer.Write(row); err != nil {
			_ = f.Close()
			_ = os.Remove(tempPath)
			return fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		_ = f.Close()
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to flush dataset: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to close dataset file: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to rename dataset file: %w", err)
	}
	return nil
}
