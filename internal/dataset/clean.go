package dataset

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/merrow-labs/shopsight/internal/models"
)

// CleanReport records what cleaning did to the raw rows. Every dropped or
// repaired row is counted; cleaning never discards data silently.
type CleanReport struct {
	Input             int // raw rows in
	Output            int // cleaned records out
	DuplicatesDropped int // exact duplicate rows removed
	NegativesDropped  int // rows with negative quantity or unit price
	PricesImputed     int // missing unit prices filled with the per-product mean
	UnpricedDropped   int // rows whose product has no priced row at all
}

// dupKey identifies an exact duplicate row. Prices compare by canonical
// string so 2.50 and 2.500 collide.
type dupKey struct {
	date       time.Time
	customerID int64
	productID  int64
	category   string
	quantity   int
	price      string
	hasPrice   bool
	storeID    int64
}

// Clean turns raw rows into a cleaned record snapshot:
//
//  1. Exact duplicate rows are dropped (first occurrence wins).
//  2. Rows with negative quantity or negative unit price are dropped.
//  3. Missing unit prices are imputed with the mean unit price of the SAME
//     product, rounded to cents. A product with no priced row at all cannot
//     be imputed (a cross-product mean would fabricate revenue), so its rows
//     are dropped and counted.
//  4. Revenue is derived exactly once as quantity × unit price.
//
// The input slice is never mutated; cleaning produces a new snapshot in input
// order. After Clean, no quantity or unit price is negative and every record
// carries its derived revenue.
func Clean(raw []RawRecord) ([]models.SalesRecord, CleanReport, error) {
	report := CleanReport{Input: len(raw)}

	seen := make(map[dupKey]bool, len(raw))
	kept := make([]RawRecord, 0, len(raw))
	for _, r := range raw {
		key := dupKey{
			date:       dayOf(r.Date),
			customerID: r.CustomerID,
			productID:  r.ProductID,
			category:   r.Category,
			quantity:   r.Quantity,
			price:      r.UnitPrice.String(),
			hasPrice:   r.HasPrice,
			storeID:    r.StoreID,
		}
		if seen[key] {
			report.DuplicatesDropped++
			continue
		}
		seen[key] = true

		if r.Quantity < 0 || (r.HasPrice && r.UnitPrice.IsNegative()) {
			report.NegativesDropped++
			continue
		}
		kept = append(kept, r)
	}

	// Per-product mean prices over the rows that survived the drops.
	priceSum := make(map[int64]decimal.Decimal)
	priceCount := make(map[int64]int64)
	for _, r := range kept {
		if r.HasPrice {
			priceSum[r.ProductID] = priceSum[r.ProductID].Add(r.UnitPrice)
			priceCount[r.ProductID]++
		}
	}

	cleaned := make([]models.SalesRecord, 0, len(kept))
	for _, r := range kept {
		price := r.UnitPrice
		if !r.HasPrice {
			n, ok := priceCount[r.ProductID]
			if !ok {
				report.UnpricedDropped++
				continue
			}
			price = priceSum[r.ProductID].Div(decimal.NewFromInt(n)).Round(2)
			report.PricesImputed++
		}

		record := models.SalesRecord{
			Date:       dayOf(r.Date),
			CustomerID: r.CustomerID,
			ProductID:  r.ProductID,
			Category:   r.Category,
			Quantity:   r.Quantity,
			UnitPrice:  price,
			Revenue:    price.Mul(decimal.NewFromInt(int64(r.Quantity))),
			StoreID:    r.StoreID,
		}
		if err := record.Validate(); err != nil {
			return nil, report, fmt.Errorf("cleaned record for customer %d invalid: %w", r.CustomerID, err)
		}
		cleaned = append(cleaned, record)
	}

	report.Output = len(cleaned)
	return cleaned, report, nil
}

func dayOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
