package horizon

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RamySaleem/seismiqb/internal/geometry"
)

// fakeGeom is a minimal in-memory Geometry for horizon tests.
type fakeGeom struct {
	ilines, xlines []int32
	depth          int
	zero           *geometry.Matrix
}

func newFakeGeom(ilines, xlines []int32, depth int) *fakeGeom {
	g := &fakeGeom{ilines: ilines, xlines: xlines, depth: depth}
	g.zero = geometry.NewMatrix(len(ilines), len(xlines))
	for i := range ilines {
		for x := range xlines {
			g.zero.Set(i, x, 0)
		}
	}
	return g
}

func (g *fakeGeom) ShortName() string       { return "fake" }
func (g *fakeGeom) Lens() [3]int            { return [3]int{len(g.ilines), len(g.xlines), g.depth} }
func (g *fakeGeom) IndexHeaders() [3]string { return [3]string{"iline", "xline", "height"} }
func (g *fakeGeom) Ilines() []int32         { return g.ilines }
func (g *fakeGeom) Xlines() []int32         { return g.xlines }
func (g *fakeGeom) ZeroTraces() *geometry.Matrix {
	return g.zero
}
func (g *fakeGeom) Slide(loc, axis int) (*geometry.Matrix, error) { return nil, nil }
func (g *fakeGeom) Close() error                                  { return nil }

func writeCloud(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hor_01.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeCloud(t, "100 200 55.5\n100 201 56\n101 200 57\n")
	h, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "hor_01", h.Name)
	require.Len(t, h.Points, 3)
	assert.Equal(t, int32(100), h.Points[0].Iline)
	assert.Equal(t, 55.5, h.Points[0].Depth)
}

func TestLoadSkipsFillValues(t *testing.T) {
	path := writeCloud(t, "100 200 55.5\n100 201 -999\n")
	h, err := Load(path)
	require.NoError(t, err)
	require.Len(t, h.Points, 1)
	assert.Equal(t, int32(200), h.Points[0].Xline)
}

func TestLoadRejectsShortRows(t *testing.T) {
	path := writeCloud(t, "100 200\n")
	_, err := Load(path)
	require.Error(t, err)
}

func TestDedupe(t *testing.T) {
	h := &Horizon{Name: "d", Points: []Point{
		{100, 200, 10},
		{100, 200, 20},
		{100, 201, 5},
	}}
	require.NoError(t, h.Dedupe(ReduceMean))
	require.Len(t, h.Points, 2)
	assert.Equal(t, 15.0, h.Points[0].Depth)
	assert.Equal(t, 5.0, h.Points[1].Depth)

	h2 := &Horizon{Name: "d", Points: []Point{{1, 1, 10}, {1, 1, 20}}}
	require.NoError(t, h2.Dedupe(ReduceMax))
	assert.Equal(t, 20.0, h2.Points[0].Depth)

	h3 := &Horizon{Name: "d", Points: []Point{{1, 1, 10}}}
	require.Error(t, h3.Dedupe(ReduceMode("median")))
}

func TestMatrixAndCoverage(t *testing.T) {
	g := newFakeGeom([]int32{100, 101}, []int32{200, 201}, 16)
	h := &Horizon{Name: "m", Points: []Point{
		{100, 200, 8},
		{101, 201, 9},
		{500, 200, 1}, // outside the grid, dropped
	}}

	m := h.Matrix(g)
	assert.Equal(t, 8.0, m.At(0, 0))
	assert.Equal(t, 9.0, m.At(1, 1))
	assert.True(t, math.IsNaN(m.At(0, 1)))

	assert.Equal(t, 0.5, h.Coverage(g))

	// A dead trace under a label: drops out of both counts.
	g.zero.Set(1, 1, 1)
	assert.InDelta(t, 1.0/3.0, h.Coverage(g), 1e-12)
}

func TestSavePointCloud(t *testing.T) {
	m := geometry.NewMatrix(2, 2)
	m.Set(0, 0, 3.5)
	m.Set(1, 1, 4)

	path := filepath.Join(t.TempDir(), "cloud.txt")
	require.NoError(t, SavePointCloud(m, path, []int32{100, 101}, []int32{200, 201}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Equal(t, []string{"100 200 3.5", "101 201 4"}, lines)
}

func TestConvertCloud(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "petrel.txt")
	dst := filepath.Join(dir, "plain.txt")

	// Petrel export: keyword columns plus data, unsorted, one bad row.
	content := strings.Join([]string{
		"INLINE 3 101 XLINE 7 201 4.1 4.2 60",
		"INLINE 3 100 XLINE 7 200 4.0 4.0 50",
		"INLINE 3 bad XLINE 7 200 4.0 4.0 50",
	}, "\n")
	require.NoError(t, os.WriteFile(src, []byte(content), 0644))

	require.NoError(t, ConvertCloud(src, dst, nil, nil))

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Equal(t, []string{"100 200 50", "101 201 60"}, lines)

	h, err := Load(dst)
	require.NoError(t, err)
	require.Len(t, h.Points, 2)
}
