package analytics

import (
	"errors"
	"math"
	"testing"

	"github.com/merrow-labs/shopsight/internal/models"
)

func TestKMeans_SingleCluster(t *testing.T) {
	matrix := [][]float64{
		{1, 2},
		{3, 4},
		{5, 0},
	}

	labels, centroids, err := KMeans(matrix, 1, 7)
	if err != nil {
		t.Fatalf("KMeans failed: %v", err)
	}

	for i, l := range labels {
		if l != 0 {
			t.Errorf("Row %d: expected label 0, got %d", i, l)
		}
	}

	// The single centroid is the column-wise mean.
	want := []float64{3, 2}
	for j := range want {
		if math.Abs(centroids[0][j]-want[j]) > floatTol {
			t.Errorf("Centroid component %d: expected %g, got %g", j, want[j], centroids[0][j])
		}
	}
}

func TestKMeans_Deterministic(t *testing.T) {
	matrix := [][]float64{
		{0.1, 0.2}, {0.0, 0.3}, {0.2, 0.1},
		{9.5, 9.1}, {9.9, 9.7}, {9.2, 9.8},
		{-5.0, 4.0}, {-5.5, 4.4}, {-4.8, 3.9},
	}

	labels1, centroids1, err := KMeans(matrix, 3, 42)
	if err != nil {
		t.Fatalf("First run failed: %v", err)
	}
	labels2, centroids2, err := KMeans(matrix, 3, 42)
	if err != nil {
		t.Fatalf("Second run failed: %v", err)
	}

	for i := range labels1 {
		if labels1[i] != labels2[i] {
			t.Fatalf("Labels differ at row %d: %d vs %d", i, labels1[i], labels2[i])
		}
	}
	for c := range centroids1 {
		for j := range centroids1[c] {
			if centroids1[c][j] != centroids2[c][j] {
				t.Fatalf("Centroid %d component %d differs: %g vs %g", c, j, centroids1[c][j], centroids2[c][j])
			}
		}
	}
}

func TestKMeans_SeparatedClouds(t *testing.T) {
	// Two tight, well-separated clouds must land in different clusters.
	matrix := [][]float64{
		{0, 0}, {0.1, 0}, {0, 0.1},
		{10, 10}, {10.1, 10}, {10, 10.1},
	}

	labels, _, err := KMeans(matrix, 2, 1)
	if err != nil {
		t.Fatalf("KMeans failed: %v", err)
	}

	if labels[0] != labels[1] || labels[1] != labels[2] {
		t.Errorf("First cloud split across clusters: %v", labels[:3])
	}
	if labels[3] != labels[4] || labels[4] != labels[5] {
		t.Errorf("Second cloud split across clusters: %v", labels[3:])
	}
	if labels[0] == labels[3] {
		t.Errorf("Clouds merged into one cluster: %v", labels)
	}
}

func TestKMeans_NonEmptyClusters(t *testing.T) {
	// k distinct points with k clusters: every cluster must receive a point.
	matrix := [][]float64{
		{0, 0}, {5, 5}, {10, 0}, {0, 10},
	}

	labels, _, err := KMeans(matrix, 4, 99)
	if err != nil {
		t.Fatalf("KMeans failed: %v", err)
	}

	seen := make(map[int]bool)
	for _, l := range labels {
		if l < 0 || l >= 4 {
			t.Fatalf("Label %d outside [0, 4)", l)
		}
		seen[l] = true
	}
	if len(seen) != 4 {
		t.Errorf("Expected 4 non-empty clusters, got %d (labels %v)", len(seen), labels)
	}
}

func TestKMeans_InvalidClusterCount(t *testing.T) {
	matrix := [][]float64{{1, 2}}

	// K=2 requested on 1 data point.
	_, _, err := KMeans(matrix, 2, 0)
	var countErr *InvalidClusterCountError
	if !errors.As(err, &countErr) {
		t.Fatalf("Expected InvalidClusterCountError for k > n, got %v", err)
	}
	if countErr.K != 2 || countErr.N != 1 {
		t.Errorf("Expected K=2 N=1 in error, got K=%d N=%d", countErr.K, countErr.N)
	}

	_, _, err = KMeans(matrix, 0, 0)
	if !errors.As(err, &countErr) {
		t.Fatalf("Expected InvalidClusterCountError for k < 1, got %v", err)
	}
}

func TestSegmentCustomers(t *testing.T) {
	// One low-value one-off customer, one high-value regular. With k = n = 2
	// every initialization is the full point set, so the two customers always
	// land in distinct segments.
	records := []models.SalesRecord{
		rec(day(1), 1, 100, "grocery", 1, "5.00"),
		rec(day(1), 2, 101, "electronics", 2, "400.00"),
		rec(day(10), 2, 101, "electronics", 1, "400.00"),
		rec(day(12), 2, 102, "electronics", 1, "250.00"),
	}

	features, err := DeriveCustomerFeatures(records)
	if err != nil {
		t.Fatalf("DeriveCustomerFeatures failed: %v", err)
	}

	seg, err := SegmentCustomers(features, 2, 42)
	if err != nil {
		t.Fatalf("SegmentCustomers failed: %v", err)
	}

	if seg.K != 2 || len(seg.Labels) != 2 {
		t.Fatalf("Expected 2 labeled customers across 2 segments, got K=%d labels=%d", seg.K, len(seg.Labels))
	}
	for id, label := range seg.Labels {
		if label < 0 || label >= 2 {
			t.Errorf("Customer %d: label %d outside [0, 2)", id, label)
		}
	}
	if seg.Labels[1] == seg.Labels[2] {
		t.Errorf("Distinct customers with k = n merged into one segment: %v", seg.Labels)
	}

	if _, err := SegmentFor(seg, 1); err != nil {
		t.Errorf("SegmentFor(1) failed: %v", err)
	}
	_, err = SegmentFor(seg, 999)
	var keyErr *InconsistentKeyError
	if !errors.As(err, &keyErr) {
		t.Errorf("Expected InconsistentKeyError for unknown customer, got %v", err)
	}
}

func TestSegmentCustomers_ReplacesWholesale(t *testing.T) {
	records := []models.SalesRecord{
		rec(day(1), 1, 100, "grocery", 1, "5.00"),
		rec(day(3), 2, 100, "grocery", 2, "5.00"),
		rec(day(4), 2, 101, "toys", 1, "20.00"),
		rec(day(5), 3, 101, "toys", 1, "20.00"),
		rec(day(7), 4, 101, "toys", 3, "20.00"),
	}

	features, err := DeriveCustomerFeatures(records)
	if err != nil {
		t.Fatalf("DeriveCustomerFeatures failed: %v", err)
	}

	first, err := SegmentCustomers(features, 2, 11)
	if err != nil {
		t.Fatalf("First segmentation failed: %v", err)
	}
	second, err := SegmentCustomers(features, 2, 11)
	if err != nil {
		t.Fatalf("Second segmentation failed: %v", err)
	}

	// Same snapshot, k, and seed reproduce the assignment exactly; the second
	// run is an independent replacement, not a mutation of the first.
	for id, label := range first.Labels {
		if second.Labels[id] != label {
			t.Errorf("Customer %d: label changed across identical runs: %d vs %d", id, label, second.Labels[id])
		}
	}
	second.Labels[1] = 99
	if first.Labels[1] == 99 {
		t.Error("Segmentations must not share label storage")
	}
}

func TestSegmentCustomers_DegenerateFeatureForwarded(t *testing.T) {
	// Every customer has exactly one transaction, so the frequency column has
	// zero variance. The segmentation is still produced over the substituted
	// matrix; the degenerate condition is surfaced for the caller to judge.
	records := []models.SalesRecord{
		rec(day(1), 1, 100, "grocery", 1, "5.00"),
		rec(day(4), 2, 100, "grocery", 1, "50.00"),
		rec(day(9), 3, 100, "grocery", 1, "500.00"),
	}

	features, err := DeriveCustomerFeatures(records)
	if err != nil {
		t.Fatalf("DeriveCustomerFeatures failed: %v", err)
	}

	seg, err := SegmentCustomers(features, 2, 7)
	var degenerate *DegenerateFeatureError
	if !errors.As(err, &degenerate) {
		t.Fatalf("Expected DegenerateFeatureError, got %v", err)
	}
	if seg == nil {
		t.Fatal("Expected a segmentation alongside the degenerate-feature report")
	}
	if len(seg.Labels) != 3 {
		t.Errorf("Expected 3 labeled customers, got %d", len(seg.Labels))
	}
}
