// Package models defines the core domain entities for the shopsight engine.
// These models represent cleaned sales transactions, derived customer features,
// inventory profiles, and trend aggregates. All models include built-in
// validation to ensure data integrity throughout an analysis run.
//
// Monetary amounts (unit price, revenue, spend) are decimal.Decimal, never
// float64: revenue sums must be exact to the currency precision present in
// the input data.
package models

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// SalesRecord represents a single cleaned sales transaction. Records are
// immutable once cleaned: Revenue is derived exactly once (quantity × unit
// price) during cleaning and never recomputed or mutated afterwards.
type SalesRecord struct {
	Date       time.Time       `json:"date"`        // Calendar date (UTC midnight)
	CustomerID int64           `json:"customer_id"` // Customer identity
	ProductID  int64           `json:"product_id"`  // Product identity
	Category   string          `json:"category"`    // Product category
	Quantity   int             `json:"quantity"`    // Units sold, never negative after cleaning
	UnitPrice  decimal.Decimal `json:"unit_price"`  // Price per unit, never negative after cleaning
	Revenue    decimal.Decimal `json:"revenue"`     // Quantity × UnitPrice, derived during cleaning
	StoreID    int64           `json:"store_id"`    // Selling store
}

// Validate checks that all record fields are valid.
func (r *SalesRecord) Validate() error {
	if r.Date.IsZero() {
		return errors.New("record date must not be zero")
	}
	if r.CustomerID <= 0 {
		return errors.New("customer ID must be positive")
	}
	if r.ProductID <= 0 {
		return errors.New("product ID must be positive")
	}
	if r.Category == "" {
		return errors.New("category must not be empty")
	}
	if r.Quantity < 0 {
		return errors.New("quantity must not be negative")
	}
	if r.UnitPrice.IsNegative() {
		return errors.New("unit price must not be negative")
	}
	expected := r.UnitPrice.Mul(decimal.NewFromInt(int64(r.Quantity)))
	if !r.Revenue.Equal(expected) {
		return errors.New("revenue must equal quantity × unit price")
	}
	return nil
}

// Day returns the record date truncated to UTC midnight. Input dates may
// carry a time-of-day component; all bucketing and recency math works on
// whole days.
func (r *SalesRecord) Day() time.Time {
	y, m, d := r.Date.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
