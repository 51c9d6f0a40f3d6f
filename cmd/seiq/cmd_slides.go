package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/RamySaleem/seismiqb/internal/plot"
	"github.com/RamySaleem/seismiqb/internal/report"
)

var (
	slidesOut   string
	slidesCount int
	slidesCmap  string
	slidesScale int
	slidesShow  bool
)

// slidesCmd exports evenly sampled 2-D slides for every matched cube.
var slidesCmd = &cobra.Command{
	Use:   "slides [glob]",
	Short: "Render evenly sampled slide images for each cube",
	Long: `Renders 2-D slides of every cube matching the glob, spread evenly
along each axis, into "<out>/<cube>/<axis>-<location>.png".

Example:
  seiq slides 'data/*.sgy' --out reports/slides -n 7`,
	Args: cobra.ExactArgs(1),
	RunE: runSlides,
}

func init() {
	slidesCmd.Flags().StringVarP(&slidesOut, "out", "o", "reports/slides", "Output directory")
	slidesCmd.Flags().IntVarP(&slidesCount, "count", "n", 0, "Slides per axis (default from config)")
	slidesCmd.Flags().StringVar(&slidesCmap, "colormap", "", "Colormap: gray, seismic or viridis (default from config)")
	slidesCmd.Flags().IntVar(&slidesScale, "scale", 0, "Pixel size per cell (default from config)")
	slidesCmd.Flags().BoolVar(&slidesShow, "show", false, "Echo a terminal preview of each slide")
}

func runSlides(cmd *cobra.Command, args []string) error {
	sources, err := report.CollectSources(args[0])
	if err != nil {
		return err
	}

	count := slidesCount
	if count == 0 {
		count = cfg.Slides.Count
	}
	name := slidesCmap
	if name == "" {
		name = cfg.Slides.Colormap
	}
	cmap, err := plot.ByName(name)
	if err != nil {
		return err
	}

	scale := slidesScale
	if scale == 0 {
		scale = cfg.Slides.Scale
	}

	exporter := &report.SliceExporter{
		Sources:  sources,
		OutDir:   slidesOut,
		Slides:   count,
		Show:     slidesShow || cfg.Slides.Show,
		Colormap: cmap,
		Scale:    scale,
		Log:      logger,
	}
	if err := exporter.Run(); err != nil {
		return err
	}
	logger.Info("slides exported",
		zap.Int("cubes", len(sources)),
		zap.String("dir", slidesOut))
	return nil
}
