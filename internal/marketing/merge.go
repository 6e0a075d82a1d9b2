package marketing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/merrow-labs/shopsight/internal/analytics"
	"github.com/merrow-labs/shopsight/internal/models"
)

// TrendWithSpend is a revenue trend bucket joined with the marketing spend
// that landed in the same (period, category) pair.
type TrendWithSpend struct {
	models.TrendBucket
	Spend decimal.Decimal `json:"spend"`
}

// MergeSpend joins campaign spend onto trend buckets by (period, category).
// Spend rows are folded into the period containing their date under the same
// granularity the buckets were aggregated with. Spend for pairs that have no
// revenue bucket is discarded: the merge annotates the trend report, it does
// not extend it. Bucket order is preserved.
func MergeSpend(buckets []models.TrendBucket, spends []models.CampaignSpend, g analytics.Granularity) []TrendWithSpend {
	type key struct {
		period   time.Time
		category string
	}

	spendByKey := make(map[key]decimal.Decimal)
	for i := range spends {
		s := &spends[i]
		k := key{period: g.PeriodStart(s.Date), category: s.Category}
		spendByKey[k] = spendByKey[k].Add(s.Spend)
	}

	merged := make([]TrendWithSpend, len(buckets))
	for i, b := range buckets {
		merged[i] = TrendWithSpend{
			TrendBucket: b,
			Spend:       spendByKey[key{period: b.PeriodStart, category: b.Category}],
		}
	}
	return merged
}
