// Package plot renders matrices to PNG files with simple colormaps and
// draws coarse terminal previews. NaN cells come out fully transparent
// in files and blank in previews.
package plot

import (
	"fmt"
	"image"
	"image/png"
	"math"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/RamySaleem/seismiqb/internal/geometry"
)

// Options control rendering of one matrix.
type Options struct {
	// Colormap; Gray when nil.
	Colormap Colormap
	// Symmetric centers the value range on zero, for amplitude data.
	Symmetric bool
	// Transpose swaps rows and columns; slides use it so depth runs
	// downward in the image.
	Transpose bool
	// Scale is the integer pixel size per cell (min 1).
	Scale int
}

// normalize maps a value into [0, 1] given the matrix bounds.
func normalize(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return math.NaN()
	}
	if hi <= lo {
		return 0.5
	}
	t := (v - lo) / (hi - lo)
	return math.Max(0, math.Min(1, t))
}

// bounds picks the normalization range for a matrix.
func bounds(m *geometry.Matrix, symmetric bool) (float64, float64) {
	lo, hi := m.MinMax()
	if symmetric {
		b := math.Max(math.Abs(lo), math.Abs(hi))
		return -b, b
	}
	return lo, hi
}

// Render writes the matrix as a PNG file.
func Render(m *geometry.Matrix, path string, opts Options) error {
	if m.Rows == 0 || m.Cols == 0 {
		return fmt.Errorf("plot: empty matrix for %s", path)
	}
	cmap := opts.Colormap
	if cmap == nil {
		cmap = Gray
	}
	scale := opts.Scale
	if scale < 1 {
		scale = 1
	}

	rows, cols := m.Rows, m.Cols
	at := m.At
	if opts.Transpose {
		rows, cols = cols, rows
		at = func(i, j int) float64 { return m.At(j, i) }
	}
	lo, hi := bounds(m, opts.Symmetric)

	img := image.NewNRGBA(image.Rect(0, 0, cols*scale, rows*scale))
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			c := cmap(normalize(at(i, j), lo, hi))
			for dy := 0; dy < scale; dy++ {
				for dx := 0; dx < scale; dx++ {
					img.SetNRGBA(j*scale+dx, i*scale+dy, c)
				}
			}
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("plot: %w", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("plot: encode %s: %w", path, err)
	}
	return nil
}

// previewWidth bounds the terminal heatmap size.
const previewWidth = 60

// Preview renders a downsampled ANSI heatmap of the matrix for
// interactive display. Each character cell is the mean of the matrix
// block behind it.
func Preview(m *geometry.Matrix, opts Options) string {
	if m.Rows == 0 || m.Cols == 0 {
		return ""
	}
	cmap := opts.Colormap
	if cmap == nil {
		cmap = Gray
	}
	rows, cols := m.Rows, m.Cols
	at := m.At
	if opts.Transpose {
		rows, cols = cols, rows
		at = func(i, j int) float64 { return m.At(j, i) }
	}
	lo, hi := bounds(m, opts.Symmetric)

	step := 1
	if cols > previewWidth {
		step = (cols + previewWidth - 1) / previewWidth
	}
	// Terminal cells are about twice as tall as wide.
	vstep := step * 2

	var b strings.Builder
	for i := 0; i < rows; i += vstep {
		for j := 0; j < cols; j += step {
			sum, n := 0.0, 0
			for di := 0; di < vstep && i+di < rows; di++ {
				for dj := 0; dj < step && j+dj < cols; dj++ {
					v := at(i+di, j+dj)
					if !math.IsNaN(v) {
						sum += v
						n++
					}
				}
			}
			if n == 0 {
				b.WriteString(" ")
				continue
			}
			c := cmap(normalize(sum/float64(n), lo, hi))
			style := lipgloss.NewStyle().Foreground(lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)))
			b.WriteString(style.Render("█"))
		}
		b.WriteString("\n")
	}
	return b.String()
}
