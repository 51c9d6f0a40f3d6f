package results

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAndLoad(t *testing.T) {
	s := openTestStore(t)

	run := &Run{
		Experiment: "extension_grid",
		Key:        JoinKey("CUBE_01", "hor_top"),
		Coverage:   []float64{0.42, 0.71, 0.93},
		WindowRate: []float64{0.88, 0.92, 0.97},
		Corrs:      []float64{0.81, 0.85, 0.9},
		LocalCorrs: []float64{0.7, 0.8, 0.86},
	}
	require.NoError(t, s.Record(run))
	assert.NotEmpty(t, run.ID, "Record assigns an id")

	runs, err := s.LoadTable("extension_grid")
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, run.Key, runs[0].Key)
	assert.Equal(t, []float64{0.42, 0.71, 0.93}, runs[0].Coverage)

	// Unknown experiment loads empty.
	runs, err = s.LoadTable("nothing")
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestExperiments(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Record(&Run{Experiment: "b", Key: JoinKey("c", "h")}))
	require.NoError(t, s.Record(&Run{Experiment: "a", Key: JoinKey("c", "h")}))

	names, err := s.Experiments()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, names)
}

func TestSplitKey(t *testing.T) {
	cube, hor, err := SplitKey("CUBE_01+hor_top")
	require.NoError(t, err)
	assert.Equal(t, "CUBE_01", cube)
	assert.Equal(t, "hor_top", hor)

	_, _, err = SplitKey("nodelimiter")
	require.Error(t, err)
	_, _, err = SplitKey("a+b+c")
	require.Error(t, err)
}

func TestSummarizeKeepsLatestPerKey(t *testing.T) {
	s := openTestStore(t)

	// Two runs of the same pair and one of another pair.
	require.NoError(t, s.Record(&Run{
		Experiment: "exp", Key: JoinKey("CUBE_01", "hor_a"), Coverage: []float64{0.5},
	}))
	require.NoError(t, s.Record(&Run{
		Experiment: "exp", Key: JoinKey("CUBE_01", "hor_a"), Coverage: []float64{0.9},
	}))
	require.NoError(t, s.Record(&Run{
		Experiment: "exp", Key: JoinKey("CUBE_02", "hor_b"), Coverage: []float64{0.3, 0.6},
	}))

	runs, err := s.LoadTable("exp")
	require.NoError(t, err)
	rows, err := Summarize(runs)
	require.NoError(t, err)

	require.Len(t, rows, 2, "one row per (cube, horizon) pair")
	assert.Equal(t, "CUBE_01", rows[0].Cube)
	assert.Equal(t, "hor_a", rows[0].Horizon)
	assert.Equal(t, "CUBE_02", rows[1].Cube)
	assert.Equal(t, 2, Iterations(rows))
}

func TestWriteCSV(t *testing.T) {
	rows := []Row{
		{
			Cube: "c1", Horizon: "h1",
			Metrics: map[string][]float64{
				"coverage":    {0.5, 0.75},
				"window_rate": {1},
				"corrs":       {0.8, 0.9},
				"local_corrs": {0.7},
			},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(rows, &buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t,
		"cube,horizon,coverage_0,coverage_1,window_rate_0,window_rate_1,corrs_0,corrs_1,local_corrs_0,local_corrs_1",
		lines[0])
	assert.Contains(t, lines[1], "c1,h1,0.5000,0.7500")
	// Short sequences pad with empty cells.
	assert.Contains(t, lines[1], "1.0000,")
}

func TestRenderTable(t *testing.T) {
	rows := []Row{
		{
			Cube: "CUBE_01", Horizon: "hor_a",
			Metrics: map[string][]float64{
				"coverage":    {0.42},
				"window_rate": {0.88},
				"corrs":       {0.81},
				"local_corrs": {0.7},
			},
		},
	}
	out := RenderTable(rows)
	assert.Contains(t, out, "coverage_0")
	assert.Contains(t, out, "CUBE_01")
	assert.Contains(t, out, "0.4200")
}
