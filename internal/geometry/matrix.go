package geometry

import "math"

// Matrix is a dense 2-D float64 grid with NaN marking absent values.
// Slides, horizon matrices and metric maps all use this representation.
type Matrix struct {
	Rows int
	Cols int
	Data []float64
}

// NewMatrix allocates a Rows x Cols matrix filled with NaN.
func NewMatrix(rows, cols int) *Matrix {
	data := make([]float64, rows*cols)
	for i := range data {
		data[i] = math.NaN()
	}
	return &Matrix{Rows: rows, Cols: cols, Data: data}
}

// At returns the value at (i, j).
func (m *Matrix) At(i, j int) float64 {
	return m.Data[i*m.Cols+j]
}

// Set stores v at (i, j).
func (m *Matrix) Set(i, j int, v float64) {
	m.Data[i*m.Cols+j] = v
}

// MinMax returns the minimum and maximum over defined (non-NaN) cells
// in a single pass. Returns (NaN, NaN) when every cell is NaN.
func (m *Matrix) MinMax() (float64, float64) {
	lo, hi := math.NaN(), math.NaN()
	for _, v := range m.Data {
		if math.IsNaN(v) {
			continue
		}
		if math.IsNaN(lo) || v < lo {
			lo = v
		}
		if math.IsNaN(hi) || v > hi {
			hi = v
		}
	}
	return lo, hi
}

// DefinedCount returns the number of non-NaN cells.
func (m *Matrix) DefinedCount() int {
	n := 0
	for _, v := range m.Data {
		if !math.IsNaN(v) {
			n++
		}
	}
	return n
}
