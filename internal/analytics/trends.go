package analytics

import (
	"fmt"
	"sort"
	"time"

	"github.com/merrow-labs/shopsight/internal/models"
)

// Granularity is the time-bucket width used for trend aggregation.
type Granularity int

const (
	// GranularityDay buckets revenue by calendar day.
	GranularityDay Granularity = iota
	// GranularityWeek buckets revenue by ISO week (periods start Monday).
	GranularityWeek
	// GranularityMonth buckets revenue by calendar month.
	GranularityMonth
)

// ParseGranularity parses "day", "week", or "month".
func ParseGranularity(s string) (Granularity, error) {
	switch s {
	case "day":
		return GranularityDay, nil
	case "week":
		return GranularityWeek, nil
	case "month":
		return GranularityMonth, nil
	default:
		return 0, fmt.Errorf("invalid granularity %q: must be one of: day, week, month", s)
	}
}

// String returns the configuration spelling of the granularity.
func (g Granularity) String() string {
	switch g {
	case GranularityWeek:
		return "week"
	case GranularityMonth:
		return "month"
	default:
		return "day"
	}
}

// PeriodStart returns the start (UTC midnight) of the period containing t.
func (g Granularity) PeriodStart(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	switch g {
	case GranularityWeek:
		day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		return day.AddDate(0, 0, -((int(day.Weekday()) + 6) % 7)) // back to Monday
	case GranularityMonth:
		return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
	default:
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}
}

type bucketKey struct {
	period   time.Time
	category string
}

// AggregateTrends sums revenue into one bucket per (period, category) pair
// present in the snapshot. Periods with no records are omitted rather than
// zero-filled; callers needing dense series must post-process. Revenue within
// a bucket is the exact decimal sum of the constituent records' revenue.
//
// Buckets are returned sorted by period start ascending, then category
// ascending, so repeated runs over the same snapshot serialize identically.
func AggregateTrends(records []models.SalesRecord, g Granularity) ([]models.TrendBucket, error) {
	if len(records) == 0 {
		return nil, &EmptyInputError{Op: "aggregate trends"}
	}

	byKey := make(map[bucketKey]*models.TrendBucket)
	for i := range records {
		r := &records[i]
		key := bucketKey{period: g.PeriodStart(r.Date), category: r.Category}
		b, ok := byKey[key]
		if !ok {
			b = &models.TrendBucket{PeriodStart: key.period, Category: key.category}
			byKey[key] = b
		}
		b.Revenue = b.Revenue.Add(r.Revenue)
		b.Orders++
	}

	buckets := make([]models.TrendBucket, 0, len(byKey))
	for _, b := range byKey {
		buckets = append(buckets, *b)
	}
	sort.Slice(buckets, func(i, j int) bool {
		if !buckets[i].PeriodStart.Equal(buckets[j].PeriodStart) {
			return buckets[i].PeriodStart.Before(buckets[j].PeriodStart)
		}
		return buckets[i].Category < buckets[j].Category
	})
	return buckets, nil
}
