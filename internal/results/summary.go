package results

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// metricColumns is the fixed projected column set, in display order.
var metricColumns = []string{"coverage", "window_rate", "corrs", "local_corrs"}

// Row is one summarized (cube, horizon) pair with its per-iteration
// metric sequences.
type Row struct {
	Cube    string
	Horizon string
	Metrics map[string][]float64
}

// SplitKey splits a composite run key into its cube and horizon parts.
// The key must contain exactly one delimiter.
func SplitKey(key string) (string, string, error) {
	parts := strings.Split(key, KeyDelimiter)
	if len(parts) != 2 {
		return "", "", fmt.Errorf("results: key %q: want exactly one %q delimiter", key, KeyDelimiter)
	}
	return parts[0], parts[1], nil
}

// JoinKey builds a composite run key.
func JoinKey(cube, horizon string) string {
	return cube + KeyDelimiter + horizon
}

// Summarize projects runs onto the fixed column set, splitting each
// composite key into the two index levels. Runs come in newest-first per
// key (see LoadTable); only the latest per key is kept, so the result
// has one row per (cube, horizon) pair.
func Summarize(runs []Run) ([]Row, error) {
	var out []Row
	seen := make(map[string]bool)
	for _, r := range runs {
		if seen[r.Key] {
			continue
		}
		seen[r.Key] = true

		cube, hor, err := SplitKey(r.Key)
		if err != nil {
			return nil, err
		}
		out = append(out, Row{
			Cube:    cube,
			Horizon: hor,
			Metrics: map[string][]float64{
				"coverage":    r.Coverage,
				"window_rate": r.WindowRate,
				"corrs":       r.Corrs,
				"local_corrs": r.LocalCorrs,
			},
		})
	}
	return out, nil
}

// Iterations is the longest sequence length across all rows and
// metrics: the number of per-iteration columns the reshaped table gets.
func Iterations(rows []Row) int {
	n := 0
	for _, row := range rows {
		for _, seq := range row.Metrics {
			if len(seq) > n {
				n = len(seq)
			}
		}
	}
	return n
}

// header builds the reshaped column names: cube, horizon, then one
// column per metric per iteration index.
func header(iterations int) []string {
	cols := []string{"cube", "horizon"}
	for _, m := range metricColumns {
		for i := 0; i < iterations; i++ {
			cols = append(cols, fmt.Sprintf("%s_%d", m, i))
		}
	}
	return cols
}

// record flattens one row into reshaped cells; missing iterations are
// empty.
func record(row Row, iterations int) []string {
	cells := []string{row.Cube, row.Horizon}
	for _, m := range metricColumns {
		seq := row.Metrics[m]
		for i := 0; i < iterations; i++ {
			if i < len(seq) {
				cells = append(cells, strconv.FormatFloat(seq[i], 'f', 4, 64))
			} else {
				cells = append(cells, "")
			}
		}
	}
	return cells
}

// WriteCSV writes the reshaped table.
func WriteCSV(rows []Row, w io.Writer) error {
	iterations := Iterations(rows)
	cw := csv.NewWriter(w)
	if err := cw.Write(header(iterations)); err != nil {
		return fmt.Errorf("results: csv: %w", err)
	}
	for _, row := range rows {
		if err := cw.Write(record(row, iterations)); err != nil {
			return fmt.Errorf("results: csv: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("results: csv: %w", err)
	}
	return nil
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	indexStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

// RenderTable formats the reshaped table for the terminal.
func RenderTable(rows []Row) string {
	iterations := Iterations(rows)
	cols := header(iterations)

	records := make([][]string, 0, len(rows))
	widths := make([]int, len(cols))
	for i, c := range cols {
		widths[i] = len(c)
	}
	for _, row := range rows {
		rec := record(row, iterations)
		for i, cell := range rec {
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
		records = append(records, rec)
	}

	var b strings.Builder
	for i, c := range cols {
		b.WriteString(headerStyle.Render(pad(c, widths[i])))
		b.WriteString("  ")
	}
	b.WriteString("\n")
	for _, rec := range records {
		for i, cell := range rec {
			if i < 2 {
				b.WriteString(indexStyle.Render(pad(cell, widths[i])))
			} else {
				b.WriteString(pad(cell, widths[i]))
			}
			b.WriteString("  ")
		}
		b.WriteString("\n")
	}
	return b.String()
}

func pad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
