package metrics

import (
	"math"

	"github.com/RamySaleem/seismiqb/internal/geometry"
)

// higherIsBetter tells the quality aggregation which way each metric
// points. Correlations and window rate improve upward; distances
// downward.
func higherIsBetter(metric string) bool {
	switch metric {
	case "support_hellinger":
		return false
	default:
		return true
	}
}

// QualityMap folds the collected per-metric maps into one per-trace
// anomaly score in [0, 1]: each map is min-max normalized, flipped so
// that 1 always means suspicious, and averaged over the metrics defined
// at that trace. An optional Gaussian smoothing pass (smooth > 1)
// suppresses single-trace speckle.
func QualityMap(maps map[string]*geometry.Matrix, smooth int) *geometry.Matrix {
	var rows, cols int
	for _, m := range maps {
		rows, cols = m.Rows, m.Cols
		break
	}
	if rows == 0 || cols == 0 {
		return geometry.NewMatrix(0, 0)
	}

	out := geometry.NewMatrix(rows, cols)
	counts := make([]int, rows*cols)
	sums := make([]float64, rows*cols)

	for name, m := range maps {
		lo, hi := m.MinMax()
		span := hi - lo
		for idx, v := range m.Data {
			if math.IsNaN(v) {
				continue
			}
			score := 0.0
			if span > 0 {
				score = (v - lo) / span
			}
			if higherIsBetter(name) {
				score = 1 - score
			}
			sums[idx] += score
			counts[idx]++
		}
	}
	for idx := range sums {
		if counts[idx] > 0 {
			out.Data[idx] = sums[idx] / float64(counts[idx])
		}
	}

	if smooth > 1 {
		out = Convolve(out, GaussianKernel(smooth, float64(smooth)/3))
	}
	return out
}
