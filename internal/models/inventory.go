package models

import (
	"errors"
	"time"
)

// ProductProfile summarizes historical demand for one product and carries the
// derived reorder point. The reorder point is the mean-plus-safety-stock
// heuristic: mean + z × std dev of per-transaction quantity, which under a
// normality assumption approximates the (z-dependent) service-level
// percentile. It is a named heuristic, not a fitted demand model.
type ProductProfile struct {
	ProductID      int64     `json:"product_id"`
	Category       string    `json:"category"`
	TotalQuantity  int       `json:"total_quantity"`
	MeanQuantity   float64   `json:"mean_quantity"`
	QuantityStdDev float64   `json:"quantity_std_dev"`
	FirstSaleDate  time.Time `json:"first_sale_date"`
	LastSaleDate   time.Time `json:"last_sale_date"`
	DaysActive     int       `json:"days_active"`      // last − first in days, floor-clamped to 1
	DailySalesRate float64   `json:"daily_sales_rate"` // TotalQuantity / DaysActive
	ReorderPoint   float64   `json:"reorder_point"`    // MeanQuantity + z × QuantityStdDev
}

// Validate checks that all profile fields are valid.
func (p *ProductProfile) Validate() error {
	if p.ProductID <= 0 {
		return errors.New("product ID must be positive")
	}
	if p.TotalQuantity < 0 {
		return errors.New("total quantity must not be negative")
	}
	if p.QuantityStdDev < 0 {
		return errors.New("quantity std dev must not be negative")
	}
	if p.LastSaleDate.Before(p.FirstSaleDate) {
		return errors.New("last sale date must not precede first sale date")
	}
	if p.DaysActive < 1 {
		return errors.New("days active must be at least 1")
	}
	if p.ReorderPoint < p.MeanQuantity {
		return errors.New("reorder point must be at least the mean quantity")
	}
	return nil
}
