package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TrendBucket holds the summed revenue for one (period, category) pair.
// Buckets exist only for pairs actually present in the data; empty periods
// are omitted, never zero-filled.
type TrendBucket struct {
	PeriodStart time.Time       `json:"period_start"` // Start of the period (UTC midnight)
	Category    string          `json:"category"`
	Revenue     decimal.Decimal `json:"revenue"` // Exact sum of constituent records' revenue
	Orders      int             `json:"orders"`  // Number of records in the bucket
}

// Validate checks that all bucket fields are valid.
func (b *TrendBucket) Validate() error {
	if b.PeriodStart.IsZero() {
		return errors.New("period start must not be zero")
	}
	if b.Category == "" {
		return errors.New("category must not be empty")
	}
	if b.Orders < 1 {
		return errors.New("bucket must contain at least one order")
	}
	return nil
}

// CampaignSpend is one day of marketing spend for a category, fetched from
// the external marketing API. It is a collaborator-side entity: the analytics
// core never consumes it, the trend/spend merge happens in the marketing
// package.
type CampaignSpend struct {
	CampaignID uuid.UUID       `json:"campaign_id"`
	Date       time.Time       `json:"date"`
	Category   string          `json:"category"`
	Spend      decimal.Decimal `json:"spend"`
}

// Validate checks that all spend fields are valid.
func (s *CampaignSpend) Validate() error {
	if s.CampaignID == uuid.Nil {
		return errors.New("campaign ID must not be empty")
	}
	if s.Date.IsZero() {
		return errors.New("spend date must not be zero")
	}
	if s.Category == "" {
		return errors.New("category must not be empty")
	}
	if s.Spend.IsNegative() {
		return errors.New("spend must not be negative")
	}
	return nil
}
