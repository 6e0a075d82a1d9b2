package analytics

import "math"

// StandardScale transforms an n×m feature matrix so every column has mean 0
// and sample standard deviation 1, fit and applied over the supplied rows in
// a single pass (there is no separately fitted reference population).
//
// Zero-variance columns cannot be scaled: their values are substituted with
// zeros and reported through a DegenerateFeatureError returned alongside the
// scaled matrix. Callers that cannot tolerate the substitution should treat
// the error as fatal; callers that can (a cohort where every customer shares
// a feature value) may use the returned matrix as-is. The same input always
// produces the same substitution.
func StandardScale(matrix [][]float64) ([][]float64, error) {
	n := len(matrix)
	if n == 0 {
		return nil, &EmptyInputError{Op: "standard scale"}
	}
	m := len(matrix[0])

	means := make([]float64, m)
	for _, row := range matrix {
		for j, v := range row {
			means[j] += v
		}
	}
	for j := range means {
		means[j] /= float64(n)
	}

	// Sample standard deviation (Bessel correction). A single row has no
	// defined sample deviation, so every column degenerates.
	stds := make([]float64, m)
	if n > 1 {
		for _, row := range matrix {
			for j, v := range row {
				d := v - means[j]
				stds[j] += d * d
			}
		}
		for j := range stds {
			stds[j] = math.Sqrt(stds[j] / float64(n-1))
		}
	}

	var degenerate []int
	for j := range stds {
		if stds[j] == 0 {
			degenerate = append(degenerate, j)
		}
	}

	scaled := make([][]float64, n)
	for i, row := range matrix {
		scaled[i] = make([]float64, m)
		for j, v := range row {
			if stds[j] == 0 {
				scaled[i][j] = 0
				continue
			}
			scaled[i][j] = (v - means[j]) / stds[j]
		}
	}

	if degenerate != nil {
		return scaled, &DegenerateFeatureError{Columns: degenerate}
	}
	return scaled, nil
}
