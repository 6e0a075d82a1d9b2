package analytics

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/merrow-labs/shopsight/internal/models"
)

func TestAggregateTrends_Daily(t *testing.T) {
	records := []models.SalesRecord{
		rec(day(1), 1, 100, "grocery", 2, "3.00"),
		rec(day(1), 2, 101, "grocery", 1, "4.00"),
		rec(day(1), 3, 102, "toys", 1, "15.00"),
		rec(day(2), 1, 100, "grocery", 1, "3.00"),
	}

	buckets, err := AggregateTrends(records, GranularityDay)
	if err != nil {
		t.Fatalf("AggregateTrends failed: %v", err)
	}

	// (day 1, grocery), (day 1, toys), (day 2, grocery); empty pairs omitted.
	if len(buckets) != 3 {
		t.Fatalf("Expected 3 buckets, got %d", len(buckets))
	}

	first := buckets[0]
	if !first.PeriodStart.Equal(day(1)) || first.Category != "grocery" {
		t.Errorf("Expected first bucket (day 1, grocery), got (%v, %s)", first.PeriodStart, first.Category)
	}
	if !first.Revenue.Equal(decimal.RequireFromString("10.00")) {
		t.Errorf("Expected day-1 grocery revenue 10.00, got %s", first.Revenue)
	}
	if first.Orders != 2 {
		t.Errorf("Expected 2 orders in day-1 grocery bucket, got %d", first.Orders)
	}
}

func TestAggregateTrends_RevenueConservation(t *testing.T) {
	records := []models.SalesRecord{
		rec(day(1), 1, 100, "grocery", 3, "2.49"),
		rec(day(4), 2, 101, "toys", 1, "17.99"),
		rec(day(9), 1, 102, "electronics", 2, "129.95"),
		rec(day(22), 3, 100, "grocery", 5, "2.49"),
		rec(day(28), 2, 103, "toys", 4, "8.25"),
	}

	var total decimal.Decimal
	for _, r := range records {
		total = total.Add(r.Revenue)
	}

	for _, g := range []Granularity{GranularityDay, GranularityWeek, GranularityMonth} {
		buckets, err := AggregateTrends(records, g)
		if err != nil {
			t.Fatalf("AggregateTrends(%s) failed: %v", g, err)
		}
		var sum decimal.Decimal
		for _, b := range buckets {
			sum = sum.Add(b.Revenue)
		}
		if !sum.Equal(total) {
			t.Errorf("%s: bucket revenue sum %s must equal total revenue %s", g, sum, total)
		}
	}
}

func TestAggregateTrends_WeekStartsMonday(t *testing.T) {
	// 2024-03-06 is a Wednesday; its ISO week starts Monday 2024-03-04.
	records := []models.SalesRecord{
		rec(day(6), 1, 100, "grocery", 1, "5.00"),
	}

	buckets, err := AggregateTrends(records, GranularityWeek)
	if err != nil {
		t.Fatalf("AggregateTrends failed: %v", err)
	}
	if len(buckets) != 1 {
		t.Fatalf("Expected 1 bucket, got %d", len(buckets))
	}
	if !buckets[0].PeriodStart.Equal(day(4)) {
		t.Errorf("Expected week start 2024-03-04, got %v", buckets[0].PeriodStart)
	}
	if buckets[0].PeriodStart.Weekday() != time.Monday {
		t.Errorf("Expected Monday week start, got %v", buckets[0].PeriodStart.Weekday())
	}
}

func TestAggregateTrends_MonthlyBucketsSpanMonths(t *testing.T) {
	march := day(15)
	april := time.Date(2024, time.April, 2, 0, 0, 0, 0, time.UTC)
	records := []models.SalesRecord{
		rec(march, 1, 100, "grocery", 1, "5.00"),
		rec(april, 1, 100, "grocery", 1, "5.00"),
	}

	buckets, err := AggregateTrends(records, GranularityMonth)
	if err != nil {
		t.Fatalf("AggregateTrends failed: %v", err)
	}
	if len(buckets) != 2 {
		t.Fatalf("Expected 2 monthly buckets, got %d", len(buckets))
	}
	if !buckets[0].PeriodStart.Equal(day(1)) {
		t.Errorf("Expected March bucket to start 2024-03-01, got %v", buckets[0].PeriodStart)
	}
	if !buckets[1].PeriodStart.Equal(time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Expected April bucket to start 2024-04-01, got %v", buckets[1].PeriodStart)
	}
}

func TestAggregateTrends_SortedOutput(t *testing.T) {
	records := []models.SalesRecord{
		rec(day(9), 1, 100, "toys", 1, "1.00"),
		rec(day(2), 1, 100, "toys", 1, "1.00"),
		rec(day(2), 1, 101, "grocery", 1, "1.00"),
		rec(day(9), 1, 101, "electronics", 1, "1.00"),
	}

	buckets, err := AggregateTrends(records, GranularityDay)
	if err != nil {
		t.Fatalf("AggregateTrends failed: %v", err)
	}

	for i := 1; i < len(buckets); i++ {
		prev, cur := buckets[i-1], buckets[i]
		if cur.PeriodStart.Before(prev.PeriodStart) {
			t.Fatalf("Buckets out of period order at %d: %v after %v", i, cur.PeriodStart, prev.PeriodStart)
		}
		if cur.PeriodStart.Equal(prev.PeriodStart) && cur.Category < prev.Category {
			t.Fatalf("Buckets out of category order at %d: %s after %s", i, cur.Category, prev.Category)
		}
	}
}

func TestAggregateTrends_Empty(t *testing.T) {
	_, err := AggregateTrends(nil, GranularityDay)
	var emptyErr *EmptyInputError
	if !errors.As(err, &emptyErr) {
		t.Fatalf("Expected EmptyInputError, got %v", err)
	}
}

func TestParseGranularity(t *testing.T) {
	cases := []struct {
		in      string
		want    Granularity
		wantErr bool
	}{
		{"day", GranularityDay, false},
		{"week", GranularityWeek, false},
		{"month", GranularityMonth, false},
		{"hour", 0, true},
		{"", 0, true},
	}

	for _, tc := range cases {
		got, err := ParseGranularity(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseGranularity(%q): expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseGranularity(%q) failed: %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseGranularity(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
