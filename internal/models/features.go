package models

import (
	"errors"

	"github.com/shopspring/decimal"
)

// CustomerFeatures holds the RFM (Recency/Frequency/Monetary) behavioral
// features for one customer, derived from the full record snapshot.
//
// Recency is measured against the latest date in the snapshot, not against
// wall-clock "today", so a historical dataset always produces the same
// features no matter when the analysis runs.
type CustomerFeatures struct {
	CustomerID  int64           `json:"customer_id"`
	RecencyDays int             `json:"recency_days"` // Days since this customer's last purchase, relative to the snapshot's max date
	Frequency   int             `json:"frequency"`    // Transaction count, ≥ 1
	Monetary    decimal.Decimal `json:"monetary"`     // Total revenue attributed to this customer
}

// Validate checks that all feature fields are valid.
func (f *CustomerFeatures) Validate() error {
	if f.CustomerID <= 0 {
		return errors.New("customer ID must be positive")
	}
	if f.RecencyDays < 0 {
		return errors.New("recency must not be negative")
	}
	if f.Frequency < 1 {
		return errors.New("frequency must be at least 1")
	}
	if f.Monetary.IsNegative() {
		return errors.New("monetary must not be negative")
	}
	return nil
}

// Segmentation maps customers to k-means segment labels. A segmentation is
// owned by the analysis run that produced it: a new run replaces it wholesale,
// never patches it incrementally.
type Segmentation struct {
	K         int           `json:"k"`
	Seed      int64         `json:"seed"`
	Labels    map[int64]int `json:"labels"`    // customer ID → segment label in [0, K)
	Centroids [][]float64   `json:"centroids"` // K centroid vectors in scaled feature space
}
