package metrics

import (
	"math"

	"github.com/RamySaleem/seismiqb/internal/geometry"
)

// pearson computes the Pearson correlation of two equal-length vectors.
// Returns NaN for degenerate (zero variance) inputs.
func pearson(a, b []float64) float64 {
	n := len(a)
	if n == 0 || n != len(b) {
		return math.NaN()
	}
	meanA, meanB := mean(a), mean(b)
	var cov, varA, varB float64
	for i := 0; i < n; i++ {
		da, db := a[i]-meanA, b[i]-meanB
		cov += da * db
		varA += da * da
		varB += db * db
	}
	if varA == 0 || varB == 0 {
		return math.NaN()
	}
	return cov / math.Sqrt(varA*varB)
}

func mean(a []float64) float64 {
	sum := 0.0
	for _, v := range a {
		sum += v
	}
	return sum / float64(len(a))
}

// histogram bins values into bins equal-width buckets over [lo, hi] and
// normalizes counts to a probability vector.
func histogram(values []float64, bins int, lo, hi float64) []float64 {
	h := make([]float64, bins)
	if hi <= lo {
		return h
	}
	n := 0
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		b := int(float64(bins) * (v - lo) / (hi - lo))
		if b < 0 {
			b = 0
		}
		if b >= bins {
			b = bins - 1
		}
		h[b]++
		n++
	}
	if n > 0 {
		for i := range h {
			h[i] /= float64(n)
		}
	}
	return h
}

// hellinger is the Hellinger distance between two probability vectors:
// (1/sqrt(2)) * l2-norm of the difference of elementwise square roots.
// Ranges over [0, 1].
func hellinger(p, q []float64) float64 {
	if len(p) != len(q) {
		return math.NaN()
	}
	sum := 0.0
	for i := range p {
		d := math.Sqrt(p[i]) - math.Sqrt(q[i])
		sum += d * d
	}
	return math.Sqrt(sum) / math.Sqrt2
}

// RunningMean smooths a matrix with a k x k window mean that skips NaN
// cells, using two summed-area tables (value sum and defined-cell count)
// so the cost is independent of the kernel size. Cells that are NaN in
// the input stay NaN in the output.
func RunningMean(m *geometry.Matrix, kernel int) *geometry.Matrix {
	if kernel < 1 {
		kernel = 1
	}
	k := kernel / 2
	rows, cols := m.Rows, m.Cols

	// Summed-area tables with a leading zero row/column.
	sum := make([]float64, (rows+1)*(cols+1))
	cnt := make([]float64, (rows+1)*(cols+1))
	idx := func(i, j int) int { return i*(cols+1) + j }
	for i := 1; i <= rows; i++ {
		for j := 1; j <= cols; j++ {
			v := m.At(i-1, j-1)
			s, c := 0.0, 0.0
			if !math.IsNaN(v) {
				s, c = v, 1
			}
			sum[idx(i, j)] = s + sum[idx(i-1, j)] + sum[idx(i, j-1)] - sum[idx(i-1, j-1)]
			cnt[idx(i, j)] = c + cnt[idx(i-1, j)] + cnt[idx(i, j-1)] - cnt[idx(i-1, j-1)]
		}
	}

	out := geometry.NewMatrix(rows, cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if math.IsNaN(m.At(i, j)) {
				continue
			}
			lo0, hi0 := maxInt(0, i-k), minInt(rows-1, i+k)
			lo1, hi1 := maxInt(0, j-k), minInt(cols-1, j+k)
			s := sum[idx(hi0+1, hi1+1)] - sum[idx(lo0, hi1+1)] - sum[idx(hi0+1, lo1)] + sum[idx(lo0, lo1)]
			c := cnt[idx(hi0+1, hi1+1)] - cnt[idx(lo0, hi1+1)] - cnt[idx(hi0+1, lo1)] + cnt[idx(lo0, lo1)]
			if c > 0 {
				out.Set(i, j, s/c)
			}
		}
	}
	return out
}

// GaussianKernel builds a normalized size x size Gaussian kernel.
func GaussianKernel(size int, sigma float64) [][]float64 {
	if size < 1 {
		size = 1
	}
	if sigma <= 0 {
		sigma = 1
	}
	kernel := make([][]float64, size)
	center := float64(size-1) / 2
	total := 0.0
	for i := range kernel {
		kernel[i] = make([]float64, size)
		for j := range kernel[i] {
			dx, dy := float64(i)-center, float64(j)-center
			v := math.Exp(-0.5 * (dx*dx + dy*dy) / (sigma * sigma))
			kernel[i][j] = v
			total += v
		}
	}
	for i := range kernel {
		for j := range kernel[i] {
			kernel[i][j] /= total
		}
	}
	return kernel
}

// Convolve applies a kernel to the matrix, skipping NaN cells and
// renormalizing the kernel mass over the defined neighborhood.
func Convolve(m *geometry.Matrix, kernel [][]float64) *geometry.Matrix {
	size := len(kernel)
	k := size / 2
	out := geometry.NewMatrix(m.Rows, m.Cols)
	for i := 0; i < m.Rows; i++ {
		for j := 0; j < m.Cols; j++ {
			if math.IsNaN(m.At(i, j)) {
				continue
			}
			acc, mass := 0.0, 0.0
			for di := -k; di <= k; di++ {
				for dj := -k; dj <= k; dj++ {
					ni, nj := i+di, j+dj
					if ni < 0 || ni >= m.Rows || nj < 0 || nj >= m.Cols {
						continue
					}
					v := m.At(ni, nj)
					if math.IsNaN(v) {
						continue
					}
					w := kernel[di+k][dj+k]
					acc += v * w
					mass += w
				}
			}
			if mass > 0 {
				out.Set(i, j, acc/mass)
			}
		}
	}
	return out
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
