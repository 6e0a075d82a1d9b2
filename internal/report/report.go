// Package report serializes analysis results to CSV files in a report
// directory. The analytics engine defines no file format; every column and
// ordering choice lives here.
//
// Files are written atomically (temp file, then rename) so a crashed run
// never leaves a half-written report behind, and rows are emitted in a
// deterministic order so re-running over the same snapshot reproduces the
// report byte for byte.
package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/merrow-labs/shopsight/internal/analytics"
	"github.com/merrow-labs/shopsight/internal/marketing"
	"github.com/merrow-labs/shopsight/internal/models"
)

const dateLayout = "2006-01-02"

// WriteSegments writes segments.csv: one row per customer with RFM features
// and the assigned segment label. A customer present in the feature set but
// missing from the segmentation surfaces the underlying key error; the two
// must come from the same analysis run.
func WriteSegments(dir string, features *analytics.CustomerFeatureSet, seg *models.Segmentation) (string, error) {
	rows := make([][]string, 0, features.Len())
	for _, f := range features.All() {
		label, err := analytics.SegmentFor(seg, f.CustomerID)
		if err != nil {
			return "", fmt.Errorf("segment report: %w", err)
		}
		rows = append(rows, []string{
			strconv.FormatInt(f.CustomerID, 10),
			strconv.Itoa(f.RecencyDays),
			strconv.Itoa(f.Frequency),
			f.Monetary.String(),
			strconv.Itoa(label),
		})
	}

	path := filepath.Join(dir, "segments.csv")
	header := []string{"customer_id", "recency_days", "frequency", "monetary", "segment"}
	if err := writeFile(path, header, rows); err != nil {
		return "", err
	}
	return path, nil
}

// WriteTrends writes trends.csv: one row per (period, category) bucket.
func WriteTrends(dir string, buckets []models.TrendBucket) (string, error) {
	rows := make([][]string, 0, len(buckets))
	for _, b := range buckets {
		rows = append(rows, []string{
			b.PeriodStart.Format(dateLayout),
			b.Category,
			b.Revenue.String(),
			strconv.Itoa(b.Orders),
		})
	}

	path := filepath.Join(dir, "trends.csv")
	header := []string{"period_start", "category", "revenue", "orders"}
	if err := writeFile(path, header, rows); err != nil {
		return "", err
	}
	return path, nil
}

// WriteTrendSpend writes trend_spend.csv: trend buckets annotated with the
// marketing spend that landed in the same period and category.
func WriteTrendSpend(dir string, merged []marketing.TrendWithSpend) (string, error) {
	rows := make([][]string, 0, len(merged))
	for _, m := range merged {
		rows = append(rows, []string{
			m.PeriodStart.Format(dateLayout),
			m.Category,
			m.Revenue.String(),
			strconv.Itoa(m.Orders),
			m.Spend.String(),
		})
	}

	path := filepath.Join(dir, "trend_spend.csv")
	header := []string{"period_start", "category", "revenue", "orders", "spend"}
	if err := writeFile(path, header, rows); err != nil {
		return "", err
	}
	return path, nil
}

// WriteInventory writes inventory.csv: one row per product, ordered by
// descending daily sales rate.
func WriteInventory(dir string, profiles map[int64]models.ProductProfile) (string, error) {
	sorted := analytics.SortedProfiles(profiles)
	rows := make([][]string, 0, len(sorted))
	for _, p := range sorted {
		rows = append(rows, []string{
			strconv.FormatInt(p.ProductID, 10),
			p.Category,
			strconv.Itoa(p.TotalQuantity),
			strconv.FormatFloat(p.MeanQuantity, 'f', 4, 64),
			strconv.FormatFloat(p.QuantityStdDev, 'f', 4, 64),
			p.FirstSaleDate.Format(dateLayout),
			p.LastSaleDate.Format(dateLayout),
			strconv.Itoa(p.DaysActive),
			strconv.FormatFloat(p.DailySalesRate, 'f', 4, 64),
			strconv.FormatFloat(p.ReorderPoint, 'f', 4, 64),
		})
	}

	path := filepath.Join(dir, "inventory.csv")
	header := []string{
		"product_id", "category", "total_quantity", "mean_quantity", "quantity_std_dev",
		"first_sale_date", "last_sale_date", "days_active", "daily_sales_rate", "reorder_point",
	}
	if err := writeFile(path, header, rows); err != nil {
		return "", err
	}
	return path, nil
}

// writeFile writes header+rows to path through a temp file and rename.
func writeFile(path string, header []string, rows [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}

	tempPath := path + ".tmp"
	f, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}

	writer := csv.NewWriter(f)
	if err := writer.Write(header); err != nil {
		_ = f.Close()
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			_ = f.Close()
			_ = os.Remove(tempPath)
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		_ = f.Close()
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to flush report: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to close report file: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to rename report file: %w", err)
	}
	return nil
}
