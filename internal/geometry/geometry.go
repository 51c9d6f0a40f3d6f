// Package geometry reads 3-D seismic cubes and exposes their indexing
// structure: axis extents, inline/crossline labels and 2-D slicing.
//
// Two on-disk formats are supported: standard SEG-Y (.sgy/.segy) and the
// flat converted QBlob format (.qblob) produced by `seiq convert`, which
// trades disk space for much cheaper depth slicing.
package geometry

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Axis identifiers for slicing.
const (
	AxisInline    = 0
	AxisCrossline = 1
	AxisDepth     = 2
)

// axisLabels name each spatial axis in output filenames and summaries.
var axisLabels = [3]string{"iline", "xline", "height"}

// AxisLabel returns the display label of an axis.
func AxisLabel(axis int) string {
	return axisLabels[axis]
}

// Geometry is a handle to one cube on disk.
type Geometry interface {
	// ShortName is the cube file name without directory or extension.
	ShortName() string
	// Lens returns per-axis extents: inlines, crosslines, depth samples.
	Lens() [3]int
	// IndexHeaders returns the per-axis index labels.
	IndexHeaders() [3]string
	// Slide extracts a 2-D section at the given location along an axis.
	Slide(loc, axis int) (*Matrix, error)
	// Ilines and Xlines return the sorted native line numbers.
	Ilines() []int32
	Xlines() []int32
	// ZeroTraces reports whether the trace at grid position (i, x) is absent.
	ZeroTraces() *Matrix
	Close() error
}

// Open dispatches on the file extension and loads the cube's index.
func Open(path string) (Geometry, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".sgy", ".segy":
		return OpenSEGY(path)
	case ".qblob":
		return OpenQBlob(path)
	default:
		return nil, fmt.Errorf("geometry: unsupported cube format %q", filepath.Ext(path))
	}
}

// shortName strips directory and extension from a cube path.
func shortName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// SampleLocations partitions an axis extent into n evenly spaced slide
// locations. The stride is extent/n and the first sample sits at a third
// of a stride, so the sequence never touches either boundary:
//
//	extent=100, n=5 -> stride=20, offset=6, locations [6 26 46 66 86]
func SampleLocations(extent, n int) []int {
	if extent <= 0 || n <= 0 {
		return nil
	}
	stride := extent / n
	if stride == 0 {
		stride = 1
	}
	offset := stride / 3
	var locs []int
	for loc := offset; loc < extent; loc += stride {
		locs = append(locs, loc)
	}
	return locs
}

// Summary formats a short human-readable description of a geometry,
// printed by `seiq info`.
func Summary(g Geometry) string {
	lens := g.Lens()
	headers := g.IndexHeaders()
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", g.ShortName())
	for axis := 0; axis < 3; axis++ {
		fmt.Fprintf(&b, "  %-8s %d\n", headers[axis], lens[axis])
	}
	ilines, xlines := g.Ilines(), g.Xlines()
	if len(ilines) > 0 && len(xlines) > 0 {
		fmt.Fprintf(&b, "  ilines   %d..%d\n", ilines[0], ilines[len(ilines)-1])
		fmt.Fprintf(&b, "  xlines   %d..%d\n", xlines[0], xlines[len(xlines)-1])
	}
	return b.String()
}
