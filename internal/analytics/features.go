// Package analytics implements the customer analytics engine: RFM feature
// derivation, feature scaling, k-means segmentation, time-bucketed revenue
// trends, and inventory reorder-point estimation.
//
// Every function is a pure computation over an immutable snapshot of sales
// records. Nothing here performs I/O, mutates its inputs, or keeps state
// between runs; callers own loading the snapshot and persisting results.
// Concurrent runs over the same snapshot are safe and independent.
package analytics

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/merrow-labs/shopsight/internal/models"
)

// CustomerFeatureSet holds one RFM vector per distinct customer in the
// snapshot it was derived from. Row order in Matrix is fixed by ascending
// customer ID, so the same snapshot always yields the same matrix.
type CustomerFeatureSet struct {
	byID    map[int64]models.CustomerFeatures
	ids     []int64 // ascending
	maxDate time.Time
}

// DeriveCustomerFeatures computes Recency/Frequency/Monetary features for
// every distinct customer in the snapshot.
//
// Recency is (max date across all records) − (this customer's last purchase
// date), in whole days. Frequency counts transactions, so a repeat purchase
// of the same product on the same day counts twice. Monetary sums revenue.
func DeriveCustomerFeatures(records []models.SalesRecord) (*CustomerFeatureSet, error) {
	if len(records) == 0 {
		return nil, &EmptyInputError{Op: "derive customer features"}
	}

	var maxDate time.Time
	lastPurchase := make(map[int64]time.Time)
	frequency := make(map[int64]int)
	monetary := make(map[int64]decimal.Decimal)

	for i := range records {
		r := &records[i]
		day := r.Day()
		if day.After(maxDate) {
			maxDate = day
		}
		if day.After(lastPurchase[r.CustomerID]) {
			lastPurchase[r.CustomerID] = day
		}
		frequency[r.CustomerID]++
		monetary[r.CustomerID] = monetary[r.CustomerID].Add(r.Revenue)
	}

	ids := make([]int64, 0, len(frequency))
	for id := range frequency {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	byID := make(map[int64]models.CustomerFeatures, len(ids))
	for _, id := range ids {
		byID[id] = models.CustomerFeatures{
			CustomerID:  id,
			RecencyDays: wholeDays(lastPurchase[id], maxDate),
			Frequency:   frequency[id],
			Monetary:    monetary[id],
		}
	}

	return &CustomerFeatureSet{byID: byID, ids: ids, maxDate: maxDate}, nil
}

// wholeDays returns the number of whole days from a to b. Both are UTC
// midnights, so the division is exact.
func wholeDays(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}

// Len returns the number of distinct customers in the set.
func (s *CustomerFeatureSet) Len() int {
	return len(s.ids)
}

// CustomerIDs returns the customer IDs in ascending order. The returned slice
// is a copy; row i of Matrix corresponds to CustomerIDs()[i].
func (s *CustomerFeatureSet) CustomerIDs() []int64 {
	ids := make([]int64, len(s.ids))
	copy(ids, s.ids)
	return ids
}

// MaxDate returns the latest record date in the snapshot the features were
// derived from. Recency is measured against this date.
func (s *CustomerFeatureSet) MaxDate() time.Time {
	return s.maxDate
}

// Get returns the features for one customer. A lookup for a customer absent
// from the snapshot returns an InconsistentKeyError: the caller is holding an
// ID the snapshot never contained.
func (s *CustomerFeatureSet) Get(customerID int64) (models.CustomerFeatures, error) {
	f, ok := s.byID[customerID]
	if !ok {
		return models.CustomerFeatures{}, &InconsistentKeyError{Kind: "customer", Key: customerID}
	}
	return f, nil
}

// All returns the features in ascending customer ID order.
func (s *CustomerFeatureSet) All() []models.CustomerFeatures {
	out := make([]models.CustomerFeatures, 0, len(s.ids))
	for _, id := range s.ids {
		out = append(out, s.byID[id])
	}
	return out
}

// Matrix returns the n×3 feature matrix (recency, frequency, monetary) with
// rows ordered by ascending customer ID. Monetary is converted to float64
// here, at the clustering boundary; exact decimal values stay on the feature
// structs.
func (s *CustomerFeatureSet) Matrix() [][]float64 {
	matrix := make([][]float64, len(s.ids))
	for i, id := range s.ids {
		f := s.byID[id]
		matrix[i] = []float64{
			float64(f.RecencyDays),
			float64(f.Frequency),
			f.Monetary.InexactFloat64(),
		}
	}
	return matrix
}
