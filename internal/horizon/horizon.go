// Package horizon handles labeled seismic surfaces stored as text point
// clouds: one (inline, crossline, depth) triple per line. Horizons are
// matched against a cube geometry to produce dense depth matrices that
// the metric evaluator consumes.
package horizon

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/RamySaleem/seismiqb/internal/geometry"
)

// FillValue marks absent depths in exported matrices and point clouds.
const FillValue = -999

// Point is one labeled location.
type Point struct {
	Iline int32
	Xline int32
	Depth float64
}

// Horizon is a labeled surface as a point cloud in native line numbers.
type Horizon struct {
	Name   string
	Points []Point
}

// Load reads a whitespace-separated point cloud: iline, xline, depth.
// Lines that do not parse as three numbers are rejected; rows carrying
// the fill value are skipped.
func Load(path string) (*Horizon, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("horizon: %w", err)
	}
	defer f.Close()

	name := strings.TrimSuffix(strings.TrimPrefix(path, "./"), ".txt")
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}
	h := &Horizon{Name: name}

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) < 3 {
			return nil, fmt.Errorf("horizon %s: line %d: want 3 columns, got %d", name, lineNo, len(fields))
		}
		il, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, fmt.Errorf("horizon %s: line %d: %w", name, lineNo, err)
		}
		xl, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("horizon %s: line %d: %w", name, lineNo, err)
		}
		depth, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return nil, fmt.Errorf("horizon %s: line %d: %w", name, lineNo, err)
		}
		if depth == FillValue {
			continue
		}
		h.Points = append(h.Points, Point{Iline: int32(il), Xline: int32(xl), Depth: depth})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("horizon %s: %w", name, err)
	}
	if len(h.Points) == 0 {
		return nil, fmt.Errorf("horizon %s: empty point cloud", name)
	}
	return h, nil
}

// ReduceMode selects how duplicate (iline, xline) entries are merged.
type ReduceMode string

const (
	ReduceMean ReduceMode = "mean"
	ReduceMin  ReduceMode = "min"
	ReduceMax  ReduceMode = "max"
)

// Dedupe merges duplicate (iline, xline) points in place using the given
// reduction and leaves the cloud sorted by (iline, xline).
func (h *Horizon) Dedupe(mode ReduceMode) error {
	sort.Slice(h.Points, func(a, b int) bool {
		if h.Points[a].Iline != h.Points[b].Iline {
			return h.Points[a].Iline < h.Points[b].Iline
		}
		return h.Points[a].Xline < h.Points[b].Xline
	})

	out := h.Points[:0]
	i := 0
	for i < len(h.Points) {
		j := i + 1
		for j < len(h.Points) &&
			h.Points[j].Iline == h.Points[i].Iline &&
			h.Points[j].Xline == h.Points[i].Xline {
			j++
		}
		p := h.Points[i]
		switch mode {
		case ReduceMean:
			sum := 0.0
			for k := i; k < j; k++ {
				sum += h.Points[k].Depth
			}
			p.Depth = sum / float64(j-i)
		case ReduceMin:
			for k := i + 1; k < j; k++ {
				p.Depth = math.Min(p.Depth, h.Points[k].Depth)
			}
		case ReduceMax:
			for k := i + 1; k < j; k++ {
				p.Depth = math.Max(p.Depth, h.Points[k].Depth)
			}
		default:
			return fmt.Errorf("horizon %s: unknown reduce mode %q", h.Name, mode)
		}
		out = append(out, p)
		i = j
	}
	h.Points = out
	return nil
}

// Matrix projects the cloud onto the cube grid: a Lens[0] x Lens[1]
// matrix of depth values, NaN where the horizon carries no label. Points
// outside the cube grid are dropped.
func (h *Horizon) Matrix(g geometry.Geometry) *geometry.Matrix {
	lens := g.Lens()
	m := geometry.NewMatrix(lens[0], lens[1])

	ilPos := linePositions(g.Ilines())
	xlPos := linePositions(g.Xlines())
	for _, p := range h.Points {
		i, ok := ilPos[p.Iline]
		if !ok {
			continue
		}
		x, ok := xlPos[p.Xline]
		if !ok {
			continue
		}
		m.Set(i, x, p.Depth)
	}
	return m
}

// Coverage is the fraction of live (non-zero) traces the horizon labels.
func (h *Horizon) Coverage(g geometry.Geometry) float64 {
	m := h.Matrix(g)
	zero := g.ZeroTraces()

	labeled, live := 0, 0
	for i := 0; i < m.Rows; i++ {
		for x := 0; x < m.Cols; x++ {
			if zero.At(i, x) != 0 {
				continue
			}
			live++
			if !math.IsNaN(m.At(i, x)) {
				labeled++
			}
		}
	}
	if live == 0 {
		return 0
	}
	return float64(labeled) / float64(live)
}

func linePositions(lines []int32) map[int32]int {
	pos := make(map[int32]int, len(lines))
	for i, v := range lines {
		pos[v] = i
	}
	return pos
}
