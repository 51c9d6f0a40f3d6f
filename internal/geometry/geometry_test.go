package geometry

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSampleLocations(t *testing.T) {
	cases := []struct {
		extent, n int
		want      []int
	}{
		{100, 5, []int{6, 26, 46, 66, 86}},
		{10, 3, []int{1, 4, 7}},
		{5, 10, []int{0, 1, 2, 3, 4}}, // stride clamps to 1
		{0, 5, nil},
		{100, 0, nil},
	}
	for _, c := range cases {
		got := SampleLocations(c.extent, c.n)
		if diff := cmp.Diff(c.want, got); diff != "" {
			t.Errorf("SampleLocations(%d, %d) mismatch (-want +got):\n%s", c.extent, c.n, diff)
		}
	}
}

func TestSampleLocationsBounded(t *testing.T) {
	for extent := 1; extent < 200; extent += 7 {
		for n := 1; n < 20; n++ {
			stride := extent / n
			if stride == 0 {
				stride = 1
			}
			locs := SampleLocations(extent, n)
			if len(locs) == 0 {
				t.Fatalf("extent=%d n=%d: empty", extent, n)
			}
			if locs[0] != stride/3 {
				t.Errorf("extent=%d n=%d: first location %d, want %d", extent, n, locs[0], stride/3)
			}
			for _, loc := range locs {
				if loc >= extent {
					t.Errorf("extent=%d n=%d: location %d out of range", extent, n, loc)
				}
			}
		}
	}
}

func TestMatrixMinMax(t *testing.T) {
	m := NewMatrix(2, 2)
	if n := m.DefinedCount(); n != 0 {
		t.Fatalf("fresh matrix has %d defined cells", n)
	}
	lo, hi := m.MinMax()
	if !math.IsNaN(lo) || !math.IsNaN(hi) {
		t.Fatalf("all-NaN matrix MinMax = (%v, %v)", lo, hi)
	}

	m.Set(0, 0, -3)
	m.Set(1, 1, 7)
	lo, hi = m.MinMax()
	if lo != -3 || hi != 7 {
		t.Fatalf("MinMax = (%v, %v), want (-3, 7)", lo, hi)
	}
	if m.DefinedCount() != 2 {
		t.Fatalf("DefinedCount = %d, want 2", m.DefinedCount())
	}
}
