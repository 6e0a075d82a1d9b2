package storage

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/merrow-labs/shopsight/internal/models"
)

func mustStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testRecord(d time.Time, customerID, productID int64, quantity int, price string) models.SalesRecord {
	unitPrice := decimal.RequireFromString(price)
	return models.SalesRecord{
		Date:       d,
		CustomerID: customerID,
		ProductID:  productID,
		Category:   "grocery",
		Quantity:   quantity,
		UnitPrice:  unitPrice,
		Revenue:    unitPrice.Mul(decimal.NewFromInt(int64(quantity))),
		StoreID:    1,
	}
}

func TestStore_InsertAndReadBack(t *testing.T) {
	s := mustStore(t)
	ctx := context.Background()

	d := time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)
	records := []models.SalesRecord{
		testRecord(d, 1, 100, 3, "2.49"),
		testRecord(d.AddDate(0, 0, 1), 2, 101, 1, "17.99"),
	}

	if err := s.InsertRecords(ctx, records); err != nil {
		t.Fatalf("InsertRecords failed: %v", err)
	}

	got, err := s.Records(ctx)
	if err != nil {
		t.Fatalf("Records failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(got))
	}

	r := got[0]
	if !r.Date.Equal(d) {
		t.Errorf("Expected date %v, got %v", d, r.Date)
	}
	if r.CustomerID != 1 || r.ProductID != 100 || r.Quantity != 3 {
		t.Errorf("Record fields mangled: %+v", r)
	}
	// Decimals must round-trip exactly through TEXT columns.
	if !r.UnitPrice.Equal(decimal.RequireFromString("2.49")) {
		t.Errorf("Expected unit price 2.49, got %s", r.UnitPrice)
	}
	if !r.Revenue.Equal(decimal.RequireFromString("7.47")) {
		t.Errorf("Expected revenue 7.47, got %s", r.Revenue)
	}
}

func TestStore_SnapshotOrder(t *testing.T) {
	s := mustStore(t)
	ctx := context.Background()

	d := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	// Inserted out of date order; snapshot must come back date-ascending with
	// insertion order breaking ties.
	records := []models.SalesRecord{
		testRecord(d.AddDate(0, 0, 9), 1, 100, 1, "1.00"),
		testRecord(d, 2, 100, 1, "1.00"),
		testRecord(d, 3, 100, 1, "1.00"),
	}
	if err := s.InsertRecords(ctx, records); err != nil {
		t.Fatalf("InsertRecords failed: %v", err)
	}

	got, err := s.Records(ctx)
	if err != nil {
		t.Fatalf("Records failed: %v", err)
	}

	wantCustomers := []int64{2, 3, 1}
	for i, want := range wantCustomers {
		if got[i].CustomerID != want {
			t.Fatalf("Expected customer order %v, got %d at position %d", wantCustomers, got[i].CustomerID, i)
		}
	}
}

func TestStore_InvalidRecordRejectsBatch(t *testing.T) {
	s := mustStore(t)
	ctx := context.Background()

	d := time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)
	bad := testRecord(d, 1, 100, 3, "2.49")
	bad.Revenue = decimal.RequireFromString("999.99") // revenue ≠ qty × price

	err := s.InsertRecords(ctx, []models.SalesRecord{
		testRecord(d, 2, 101, 1, "5.00"),
		bad,
	})
	if err == nil {
		t.Fatal("Expected error for invalid record in batch")
	}

	n, err := s.Count(ctx)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 0 {
		t.Errorf("Expected empty store after rejected batch, got %d records", n)
	}
}

func TestStore_EmptySnapshot(t *testing.T) {
	s := mustStore(t)

	got, err := s.Records(context.Background())
	if err != nil {
		t.Fatalf("Records failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Expected empty snapshot, got %d records", len(got))
	}
}
