package analytics

import (
	"errors"
	"math"
	"math/rand"

	"github.com/merrow-labs/shopsight/internal/models"
)

const (
	// maxIterations bounds the assign/recompute loop. The last computed
	// assignment is returned even when the cap is hit without convergence.
	maxIterations = 100

	// convergenceTol is the centroid-movement threshold below which the
	// partition is considered stable.
	convergenceTol = 1e-6
)

// KMeans partitions the rows of a scaled feature matrix into k segments via
// iterative centroid assignment. It returns a length-n label slice with
// values in [0, k) and the k final centroid vectors.
//
// Initial centroids are k distinct rows chosen by a PRNG seeded with seed, so
// identical (matrix, k, seed) always reproduces identical labels and
// centroids. The numeric label a cluster receives is an artifact of the seed;
// only the partition itself is meaningful across seeds.
//
// Distance ties break toward the lowest centroid index. A centroid left with
// zero assigned rows is re-seeded from the row currently farthest from its
// assigned centroid, guaranteeing k non-empty clusters whenever the matrix
// has at least k distinct rows.
func KMeans(matrix [][]float64, k int, seed int64) ([]int, [][]float64, error) {
	n := len(matrix)
	if k < 1 || k > n {
		return nil, nil, &InvalidClusterCountError{K: k, N: n}
	}
	m := len(matrix[0])

	rng := rand.New(rand.NewSource(seed))
	centroids := make([][]float64, k)
	for i, rowIdx := range rng.Perm(n)[:k] {
		centroids[i] = append([]float64(nil), matrix[rowIdx]...)
	}

	labels := make([]int, n)
	for i := range labels {
		labels[i] = -1
	}

	for iter := 0; iter < maxIterations; iter++ {
		// Assignment pass: nearest centroid, lowest index wins ties.
		changed := 0
		dists := make([]float64, n) // distance of each row to its assigned centroid
		counts := make([]int, k)
		for i, row := range matrix {
			best, bestDist := 0, math.Inf(1)
			for c := range centroids {
				if d := squaredDistance(row, centroids[c]); d < bestDist {
					best, bestDist = c, d
				}
			}
			if labels[i] != best {
				changed++
				labels[i] = best
			}
			dists[i] = bestDist
			counts[best]++
		}

		// Re-seed any empty centroid from the row farthest from its current
		// centroid, then hand that row over so the cluster is non-empty.
		for c := 0; c < k; c++ {
			if counts[c] > 0 {
				continue
			}
			farthest, farthestDist := -1, -1.0
			for i := range matrix {
				if counts[labels[i]] > 1 && dists[i] > farthestDist {
					farthest, farthestDist = i, dists[i]
				}
			}
			if farthest < 0 {
				continue // fewer distinct rows than clusters; leave centroid in place
			}
			counts[labels[farthest]]--
			labels[farthest] = c
			counts[c] = 1
			dists[farthest] = 0
			centroids[c] = append([]float64(nil), matrix[farthest]...)
			changed++
		}

		// Recompute centroids as the component-wise mean of assigned rows.
		next := make([][]float64, k)
		for c := range next {
			next[c] = make([]float64, m)
		}
		for i, row := range matrix {
			for j, v := range row {
				next[labels[i]][j] += v
			}
		}
		movement := 0.0
		for c := range next {
			if counts[c] == 0 {
				next[c] = centroids[c]
				continue
			}
			for j := range next[c] {
				next[c][j] /= float64(counts[c])
			}
			if d := math.Sqrt(squaredDistance(next[c], centroids[c])); d > movement {
				movement = d
			}
			centroids[c] = next[c]
		}

		if changed == 0 || movement < convergenceTol {
			break
		}
	}

	return labels, centroids, nil
}

// squaredDistance returns the squared Euclidean distance between two vectors.
// Squared form preserves ordering and avoids the sqrt in the hot loop.
func squaredDistance(a, b []float64) float64 {
	var sum float64
	for j := range a {
		d := a[j] - b[j]
		sum += d * d
	}
	return sum
}

// SegmentCustomers scales the RFM feature matrix and clusters customers into
// k segments. The returned Segmentation replaces any previous one wholesale.
//
// A DegenerateFeatureError from scaling is forwarded together with a valid
// segmentation computed over the zero-substituted matrix, mirroring the
// scaler's contract: the caller chooses between aborting and accepting the
// substitution. Any other error aborts with a nil segmentation.
func SegmentCustomers(features *CustomerFeatureSet, k int, seed int64) (*models.Segmentation, error) {
	scaled, scaleErr := StandardScale(features.Matrix())
	if scaleErr != nil {
		var degenerate *DegenerateFeatureError
		if !errors.As(scaleErr, &degenerate) {
			return nil, scaleErr
		}
	}

	labels, centroids, err := KMeans(scaled, k, seed)
	if err != nil {
		return nil, err
	}

	assignment := make(map[int64]int, features.Len())
	for i, id := range features.CustomerIDs() {
		assignment[id] = labels[i]
	}

	seg := &models.Segmentation{
		K:         k,
		Seed:      seed,
		Labels:    assignment,
		Centroids: centroids,
	}
	return seg, scaleErr
}

// SegmentFor returns the segment label assigned to a customer, surfacing an
// InconsistentKeyError when the segmentation never saw that customer.
func SegmentFor(seg *models.Segmentation, customerID int64) (int, error) {
	label, ok := seg.Labels[customerID]
	if !ok {
		return 0, &InconsistentKeyError{Kind: "customer", Key: customerID}
	}
	return label, nil
}
