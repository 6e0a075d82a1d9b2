// Command gendata writes a synthetic retail sales CSV for local development
// and demos. The output intentionally contains duplicates and missing prices
// so the cleaning pipeline has something to do.
package main

import (
	"flag"
	"log"
	"time"

	"github.com/merrow-labs/shopsight/internal/dataset"
)

var (
	outPath   = flag.String("out", "data/sales.csv", "Output CSV path")
	seed      = flag.Int64("seed", 7, "Random seed")
	records   = flag.Int("records", 5000, "Number of records to generate")
	customers = flag.Int("customers", 200, "Number of distinct customers")
	products  = flag.Int("products", 50, "Number of distinct products")
	start     = flag.String("start", "2024-01-01", "First sale date (YYYY-MM-DD)")
	days      = flag.Int("days", 365, "Number of days covered")
)

func main() {
	flag.Parse()

	startDate, err := time.Parse("2006-01-02", *start)
	if err != nil {
		log.Fatalf("Invalid start date: %v", err)
	}

	spec := dataset.DefaultGenSpec()
	spec.Seed = *seed
	spec.Records = *records
	spec.Customers = *customers
	spec.Products = *products
	spec.Start = startDate
	spec.Days = *days

	generated := dataset.Generate(spec)
	if err := dataset.WriteCSV(*outPath, generated); err != nil {
		log.Fatalf("Failed to write CSV: %v", err)
	}

	log.Printf("Wrote %d records to %s", len(generated), *outPath)
}
