package analytics

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/merrow-labs/shopsight/internal/models"
)

// DefaultServiceZ is the safety-stock multiplier applied when the caller
// passes 0: mean + 2σ approximates a 97.5th-percentile service level under a
// normality assumption. Callers wanting a different service level supply
// their own z-score.
const DefaultServiceZ = 2.0

// DeriveInventoryProfiles computes one demand profile per distinct product in
// the snapshot. Quantity mean and standard deviation are per-transaction
// statistics (sample std dev; a product with a single transaction has std
// dev 0 and reorder point equal to its mean). DaysActive is the span between
// first and last sale, floor-clamped to 1 so the daily sales rate is always
// defined.
func DeriveInventoryProfiles(records []models.SalesRecord, serviceZ float64) (map[int64]models.ProductProfile, error) {
	if len(records) == 0 {
		return nil, &EmptyInputError{Op: "derive inventory profiles"}
	}
	if serviceZ < 0 {
		return nil, fmt.Errorf("invalid service z-score %.2f: must not be negative", serviceZ)
	}
	if serviceZ == 0 {
		serviceZ = DefaultServiceZ
	}

	type accum struct {
		category   string
		quantities []float64
		total      int
		first      time.Time
		last       time.Time
	}
	byProduct := make(map[int64]*accum)

	for i := range records {
		r := &records[i]
		day := r.Day()
		a, ok := byProduct[r.ProductID]
		if !ok {
			a = &accum{category: r.Category, first: day, last: day}
			byProduct[r.ProductID] = a
		}
		a.quantities = append(a.quantities, float64(r.Quantity))
		a.total += r.Quantity
		if day.Before(a.first) {
			a.first = day
		}
		if day.After(a.last) {
			a.last = day
		}
	}

	profiles := make(map[int64]models.ProductProfile, len(byProduct))
	for id, a := range byProduct {
		mean, std := meanStdDev(a.quantities)
		daysActive := int(a.last.Sub(a.first).Hours() / 24)
		if daysActive < 1 {
			daysActive = 1
		}
		profiles[id] = models.ProductProfile{
			ProductID:      id,
			Category:       a.category,
			TotalQuantity:  a.total,
			MeanQuantity:   mean,
			QuantityStdDev: std,
			FirstSaleDate:  a.first,
			LastSaleDate:   a.last,
			DaysActive:     daysActive,
			DailySalesRate: float64(a.total) / float64(daysActive),
			ReorderPoint:   mean + serviceZ*std,
		}
	}
	return profiles, nil
}

// SortedProfiles flattens a profile map into a slice ordered by descending
// daily sales rate (product ID ascending as tie-break), the order reports and
// alerts present products in.
func SortedProfiles(profiles map[int64]models.ProductProfile) []models.ProductProfile {
	out := make([]models.ProductProfile, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DailySalesRate != out[j].DailySalesRate {
			return out[i].DailySalesRate > out[j].DailySalesRate
		}
		return out[i].ProductID < out[j].ProductID
	})
	return out
}

// meanStdDev returns the sample mean and sample standard deviation (Bessel
// correction) of xs. A single observation has std dev 0.
func meanStdDev(xs []float64) (mean, std float64) {
	if len(xs) == 0 {
		return 0, 0
	}
	for _, x := range xs {
		mean += x
	}
	mean /= float64(len(xs))
	if len(xs) < 2 {
		return mean, 0
	}
	var variance float64
	for _, x := range xs {
		d := x - mean
		variance += d * d
	}
	variance /= float64(len(xs) - 1)
	return mean, math.Sqrt(variance)
}
