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

// SavePointCloud writes a 2-D map as a text point cloud readable by the
// GENERAL format importer of geological software: one
// "iline xline value" row per defined cell, sorted by (iline, xline).
// Grid indices are translated back to native line numbers.
func SavePointCloud(m *geometry.Matrix, path string, ilines, xlines []int32) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("point cloud: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for i := 0; i < m.Rows; i++ {
		for x := 0; x < m.Cols; x++ {
			v := m.At(i, x)
			if math.IsNaN(v) {
				continue
			}
			il, xl := int32(i), int32(x)
			if i < len(ilines) {
				il = ilines[i]
			}
			if x < len(xlines) {
				xl = xlines[x]
			}
			if _, err := fmt.Fprintf(w, "%d %d %g\n", il, xl, v); err != nil {
				return fmt.Errorf("point cloud: %w", err)
			}
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("point cloud: %w", err)
	}
	return nil
}

// PetrelNames is the column layout of a Petrel horizon export; "_"
// stands for keyword columns that carry no data.
var PetrelNames = []string{"_", "_", "iline", "_", "_", "xline", "cdp_x", "cdp_y", "height"}

// DefaultOrder is the column set kept by ConvertCloud.
var DefaultOrder = []string{"iline", "xline", "height"}

// ConvertCloud rewrites a point-cloud file keeping only the columns in
// order, dropping rows with unparsable values, sorted by (iline, xline)
// when both are kept. Used to strip Petrel exports down to the plain
// three-column form Load expects.
func ConvertCloud(src, dst string, names, order []string) error {
	if len(names) == 0 {
		names = PetrelNames
	}
	if len(order) == 0 {
		order = DefaultOrder
	}

	colIdx := make([]int, len(order))
	for oi, want := range order {
		colIdx[oi] = -1
		for ni, n := range names {
			if n == want {
				colIdx[oi] = ni
				break
			}
		}
		if colIdx[oi] < 0 {
			return fmt.Errorf("convert cloud: column %q not present in names", want)
		}
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("convert cloud: %w", err)
	}
	defer in.Close()

	var rows [][]float64
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < len(names) {
			continue
		}
		row := make([]float64, len(order))
		ok := true
		for oi, ci := range colIdx {
			v, err := strconv.ParseFloat(fields[ci], 64)
			if err != nil {
				ok = false
				break
			}
			row[oi] = v
		}
		if ok {
			rows = append(rows, row)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("convert cloud: %w", err)
	}

	ilCol, xlCol := indexOf(order, "iline"), indexOf(order, "xline")
	if ilCol >= 0 && xlCol >= 0 {
		sort.SliceStable(rows, func(a, b int) bool {
			if rows[a][ilCol] != rows[b][ilCol] {
				return rows[a][ilCol] < rows[b][ilCol]
			}
			return rows[a][xlCol] < rows[b][xlCol]
		})
	}

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("convert cloud: %w", err)
	}
	defer out.Close()

	w := bufio.NewWriter(out)
	for _, row := range rows {
		parts := make([]string, len(row))
		for i, v := range row {
			parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		if _, err := fmt.Fprintln(w, strings.Join(parts, " ")); err != nil {
			return fmt.Errorf("convert cloud: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("convert cloud: %w", err)
	}
	return nil
}

func indexOf(list []string, v string) int {
	for i, s := range list {
		if s == v {
			return i
		}
	}
	return -1
}
