package dataset

import (
	"math/rand"
	"time"

	"github.com/shopspring/decimal"
)

// GenSpec controls synthetic dataset generation. The zero value is unusable;
// call DefaultGenSpec and override what you need. Generation is fully
// determined by Seed, so demo datasets are reproducible.
type GenSpec struct {
	Seed             int64
	Records          int
	Customers        int
	Products         int
	Stores           int
	Categories       []string
	Start            time.Time // first sale date (UTC midnight)
	Days             int       // date range length
	MissingPriceRate float64   // fraction of rows with an empty unit price
	DuplicateRate    float64   // fraction of rows emitted twice, back to back
}

// DefaultGenSpec returns a demo-sized generation spec.
func DefaultGenSpec() GenSpec {
	return GenSpec{
		Seed:             1,
		Records:          5000,
		Customers:        200,
		Products:         50,
		Stores:           5,
		Categories:       []string{"electronics", "grocery", "apparel", "toys", "home"},
		Start:            time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		Days:             365,
		MissingPriceRate: 0.02,
		DuplicateRate:    0.01,
	}
}

// Generate produces a raw synthetic sales history: a stable product catalog
// (each product keeps one base price and category), randomized purchases
// across the date range, and a sprinkle of missing prices and duplicate rows
// so the cleaning stage has realistic work to do.
func Generate(spec GenSpec) []RawRecord {
	rng := rand.New(rand.NewSource(spec.Seed))

	type product struct {
		category  string
		basePrice decimal.Decimal
	}
	catalog := make([]product, spec.Products)
	for i := range catalog {
		// Base prices land on cents between 1.00 and 500.99.
		cents := int64(rng.Intn(50000) + 100)
		catalog[i] = product{
			category:  spec.Categories[i%len(spec.Categories)],
			basePrice: decimal.New(cents, -2),
		}
	}

	records := make([]RawRecord, 0, spec.Records)
	for len(records) < spec.Records {
		productID := rng.Intn(spec.Products)
		p := catalog[productID]

		r := RawRecord{
			Date:       spec.Start.AddDate(0, 0, rng.Intn(spec.Days)),
			CustomerID: int64(rng.Intn(spec.Customers) + 1),
			ProductID:  int64(productID + 1),
			Category:   p.category,
			Quantity:   rng.Intn(5) + 1,
			UnitPrice:  p.basePrice,
			HasPrice:   true,
			StoreID:    int64(rng.Intn(spec.Stores) + 1),
		}
		if rng.Float64() < spec.MissingPriceRate {
			r.UnitPrice = decimal.Decimal{}
			r.HasPrice = false
		}
		records = append(records, r)

		if rng.Float64() < spec.DuplicateRate && len(records) < spec.Records {
			records = append(records, r)
		}
	}
	return records
}
