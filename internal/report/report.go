// Package report drives the batch loops: for every matched cube, create
// its output directory, open the geometry and run the requested
// exports. Processing is strictly sequential; a failure aborts the
// current batch and propagates to the caller.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"

	"github.com/RamySaleem/seismiqb/internal/geometry"
)

// CollectSources expands a glob pattern into a deterministic, sorted
// list of cube paths.
func CollectSources(pattern string) ([]string, error) {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("report: glob %q: %w", pattern, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("report: no sources match %q", pattern)
	}
	sort.Strings(matches)
	return matches, nil
}

// EnsureDir creates a directory if it does not exist yet. An existing
// directory is not an error.
func EnsureDir(path string) error {
	if err := os.MkdirAll(path, 0755); err != nil {
		return fmt.Errorf("report: create %s: %w", path, err)
	}
	return nil
}

// forEachSource opens every source geometry in order and hands it to fn
// together with its source path and prepared output directory.
func forEachSource(sources []string, outDir string, log *zap.Logger, fn func(src string, g geometry.Geometry, dir string) error) error {
	for _, src := range sources {
		g, err := geometry.Open(src)
		if err != nil {
			return err
		}
		dir := filepath.Join(outDir, g.ShortName())
		if err := EnsureDir(dir); err != nil {
			g.Close()
			return err
		}
		log.Info("processing source",
			zap.String("cube", g.ShortName()),
			zap.String("dir", dir))
		if err := fn(src, g, dir); err != nil {
			g.Close()
			return err
		}
		if err := g.Close(); err != nil {
			return fmt.Errorf("report: close %s: %w", g.ShortName(), err)
		}
	}
	return nil
}
