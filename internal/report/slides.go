package report

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/RamySaleem/seismiqb/internal/geometry"
	"github.com/RamySaleem/seismiqb/internal/plot"
)

// SliceExporter renders evenly sampled 2-D slides of every source cube
// to "<outDir>/<cube>/<axis>-<location>.png".
type SliceExporter struct {
	Sources []string
	OutDir  string
	// Slides is the target slide count per axis.
	Slides int
	// Show echoes a terminal preview of each slide.
	Show bool
	// Colormap for the rendered slides; gray when nil.
	Colormap plot.Colormap
	// Scale is the pixel size per cell in the rendered images.
	Scale int
	Log   *zap.Logger
}

// Run executes the export batch.
func (e *SliceExporter) Run() error {
	if e.Slides <= 0 {
		return fmt.Errorf("report: slide count must be positive, got %d", e.Slides)
	}
	log := e.Log
	if log == nil {
		log = zap.NewNop()
	}

	return forEachSource(e.Sources, e.OutDir, log, func(_ string, g geometry.Geometry, dir string) error {
		lens := g.Lens()
		for axis := 0; axis < 3; axis++ {
			label := geometry.AxisLabel(axis)
			for _, loc := range geometry.SampleLocations(lens[axis], e.Slides) {
				m, err := g.Slide(loc, axis)
				if err != nil {
					return err
				}
				opts := plot.Options{
					Colormap:  e.Colormap,
					Symmetric: true,
					// Sections run depth downward; depth slides are
					// map views and stay untransposed.
					Transpose: axis != geometry.AxisDepth,
					Scale:     e.Scale,
				}
				path := filepath.Join(dir, fmt.Sprintf("%s-%d.png", label, loc))
				if err := plot.Render(m, path, opts); err != nil {
					return err
				}
				if e.Show {
					fmt.Fprintln(os.Stdout, plot.Preview(m, opts))
				}
				log.Debug("slide written",
					zap.String("cube", g.ShortName()),
					zap.String("axis", label),
					zap.Int("loc", loc))
			}
		}
		return nil
	})
}
