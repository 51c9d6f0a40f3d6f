package main

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/RamySaleem/seismiqb/internal/config"
	"github.com/RamySaleem/seismiqb/internal/results"
)

func testSetup(t *testing.T) {
	t.Helper()
	logger = zap.NewNop()
	cfg = config.DefaultConfig()
}

// writeTestCube writes a tiny converted cube for CLI-level tests.
func writeTestCube(t *testing.T, path string, ni, nx, ns int) {
	t.Helper()

	ilines := make([]int32, ni)
	xlines := make([]int32, nx)
	for i := range ilines {
		ilines[i] = int32(10 + i)
	}
	for x := range xlines {
		xlines[x] = int32(20 + x)
	}
	hdr, err := json.Marshal(map[string]any{
		"ilines":          ilines,
		"xlines":          xlines,
		"samples":         ns,
		"sample_interval": 4000,
	})
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	buf.WriteString("QBLB")
	var word [4]byte
	binary.LittleEndian.PutUint32(word[:], uint32(len(hdr)))
	buf.Write(word[:])
	buf.Write(hdr)
	for n := 0; n < ni*nx*ns; n++ {
		binary.LittleEndian.PutUint32(word[:], math.Float32bits(float32(n%7)))
		buf.Write(word[:])
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestRunInfo(t *testing.T) {
	testSetup(t)
	cube := filepath.Join(t.TempDir(), "field.qblob")
	writeTestCube(t, cube, 3, 4, 16)

	output := captureOutput(t, func() {
		if err := runInfo(&cobra.Command{}, []string{cube}); err != nil {
			t.Fatalf("runInfo returned error: %v", err)
		}
	})

	if !strings.Contains(output, "field") {
		t.Fatalf("expected cube name in output, got: %s", output)
	}
	if !strings.Contains(output, "iline") {
		t.Fatalf("expected axis headers in output, got: %s", output)
	}
	if !strings.Contains(output, "10..12") {
		t.Fatalf("expected iline range in output, got: %s", output)
	}
}

func TestRunSummaryNoExperiments(t *testing.T) {
	testSetup(t)
	summaryDB = filepath.Join(t.TempDir(), "runs.db")
	defer func() { summaryDB = "" }()

	output := captureOutput(t, func() {
		if err := runSummary(&cobra.Command{}, nil); err != nil {
			t.Fatalf("runSummary returned error: %v", err)
		}
	})

	if !strings.Contains(output, "No experiments recorded") {
		t.Fatalf("expected empty-store notice, got: %s", output)
	}
}

func TestRunSummaryRendersTable(t *testing.T) {
	testSetup(t)
	summaryDB = filepath.Join(t.TempDir(), "runs.db")
	defer func() { summaryDB = "" }()

	store, err := results.NewStore(summaryDB)
	if err != nil {
		t.Fatal(err)
	}
	run := &results.Run{
		Experiment: "baseline",
		Key:        results.JoinKey("FIELD_01", "hor_top"),
		Coverage:   []float64{0.62},
		Corrs:      []float64{0.91},
	}
	if err := store.Record(run); err != nil {
		t.Fatal(err)
	}
	store.Close()

	output := captureOutput(t, func() {
		if err := runSummary(&cobra.Command{}, []string{"baseline"}); err != nil {
			t.Fatalf("runSummary returned error: %v", err)
		}
	})

	if !strings.Contains(output, "FIELD_01") {
		t.Fatalf("expected cube in table, got: %s", output)
	}
	if !strings.Contains(output, "coverage_0") {
		t.Fatalf("expected metric columns, got: %s", output)
	}
}

func TestRunSummaryUnknownExperiment(t *testing.T) {
	testSetup(t)
	summaryDB = filepath.Join(t.TempDir(), "runs.db")
	defer func() { summaryDB = "" }()

	if err := runSummary(&cobra.Command{}, []string{"missing"}); err == nil {
		t.Fatal("expected error for unknown experiment")
	}
}

func TestRunConvertCloud(t *testing.T) {
	testSetup(t)
	dir := t.TempDir()
	src := filepath.Join(dir, "petrel.txt")
	dst := filepath.Join(dir, "plain.txt")

	lines := []string{
		`"hor" "top" 12 a b 34 600100.0 6000100.0 1520.5`,
		`"hor" "top" 11 a b 33 600000.0 6000000.0 1510.0`,
	}
	if err := os.WriteFile(src, []byte(strings.Join(lines, "\n")), 0644); err != nil {
		t.Fatal(err)
	}

	captureOutput(t, func() {
		if err := runConvertCloud(&cobra.Command{}, []string{src, dst}); err != nil {
			t.Fatalf("runConvertCloud returned error: %v", err)
		}
	})

	data, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	got := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(got) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(got))
	}
	if got[0] != "11 33 1510" {
		t.Fatalf("expected sorted plain row, got: %s", got[0])
	}
}

func captureOutput(t *testing.T, fn func()) string {
	t.Helper()

	origOut := os.Stdout
	origErr := os.Stderr
	rOut, wOut, _ := os.Pipe()
	rErr, wErr, _ := os.Pipe()
	os.Stdout = wOut
	os.Stderr = wErr

	done := make(chan string)
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, rOut)
		_, _ = io.Copy(&buf, rErr)
		done <- buf.String()
	}()

	fn()

	_ = wOut.Close()
	_ = wErr.Close()
	os.Stdout = origOut
	os.Stderr = origErr
	return <-done
}
