// Package results persists experiment runs of the iterative
// labeling-and-refinement pipeline and reshapes them for display. Each
// run is keyed by "<cube>+<horizon>" and carries per-iteration sequences
// of the four tracked quality metrics.
package results

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// KeyDelimiter separates the cube and horizon identifiers inside a
// composite run key.
const KeyDelimiter = "+"

// Run is one recorded experiment: metric values per refinement
// iteration for one (cube, horizon) pair.
type Run struct {
	ID         string
	Experiment string
	Key        string // "<cube>+<horizon>"
	Coverage   []float64
	WindowRate []float64
	Corrs      []float64
	LocalCorrs []float64
	CreatedAt  time.Time
}

// Store keeps experiment runs in SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates or opens the results database.
func NewStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("results: open database: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("results: init schema: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id               TEXT PRIMARY KEY,
		experiment       TEXT NOT NULL,
		run_key          TEXT NOT NULL,
		coverage_json    TEXT NOT NULL,
		window_rate_json TEXT NOT NULL,
		corrs_json       TEXT NOT NULL,
		local_corrs_json TEXT NOT NULL,
		created_at       DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_runs_experiment ON runs(experiment);
	CREATE INDEX IF NOT EXISTS idx_runs_key ON runs(run_key);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Record inserts a run, assigning an id and timestamp when absent.
func (s *Store) Record(run *Run) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	cols := [][]float64{run.Coverage, run.WindowRate, run.Corrs, run.LocalCorrs}
	encoded := make([]string, len(cols))
	for i, seq := range cols {
		if seq == nil {
			seq = []float64{}
		}
		raw, err := json.Marshal(seq)
		if err != nil {
			return fmt.Errorf("results: encode run %s: %w", run.Key, err)
		}
		encoded[i] = string(raw)
	}

	_, err := s.db.Exec(`
		INSERT INTO runs (id, experiment, run_key, coverage_json, window_rate_json, corrs_json, local_corrs_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Experiment, run.Key, encoded[0], encoded[1], encoded[2], encoded[3], run.CreatedAt)
	if err != nil {
		return fmt.Errorf("results: record run %s: %w", run.Key, err)
	}
	return nil
}

// LoadTable returns every run of the named experiment, newest first
// within each key, ordered by key.
func (s *Store) LoadTable(experiment string) ([]Run, error) {
	rows, err := s.db.Query(`
		SELECT id, experiment, run_key, coverage_json, window_rate_json, corrs_json, local_corrs_json, created_at
		FROM runs WHERE experiment = ?
		ORDER BY run_key ASC, created_at DESC`, experiment)
	if err != nil {
		return nil, fmt.Errorf("results: load %q: %w", experiment, err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		var cov, wr, corrs, local string
		if err := rows.Scan(&r.ID, &r.Experiment, &r.Key, &cov, &wr, &corrs, &local, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("results: scan run: %w", err)
		}
		for _, pair := range []struct {
			raw string
			dst *[]float64
		}{
			{cov, &r.Coverage},
			{wr, &r.WindowRate},
			{corrs, &r.Corrs},
			{local, &r.LocalCorrs},
		} {
			if err := json.Unmarshal([]byte(pair.raw), pair.dst); err != nil {
				return nil, fmt.Errorf("results: decode run %s: %w", r.Key, err)
			}
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("results: load %q: %w", experiment, err)
	}
	return out, nil
}

// Experiments lists the distinct experiment names in the store.
func (s *Store) Experiments() ([]string, error) {
	rows, err := s.db.Query(`SELECT DISTINCT experiment FROM runs ORDER BY experiment`)
	if err != nil {
		return nil, fmt.Errorf("results: experiments: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("results: experiments: %w", err)
		}
		out = append(out, name)
	}
	return out, rows.Err()
}
