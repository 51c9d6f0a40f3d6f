package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/RamySaleem/seismiqb/internal/geometry"
	"github.com/RamySaleem/seismiqb/internal/horizon"
	"github.com/RamySaleem/seismiqb/internal/metrics"
	"github.com/RamySaleem/seismiqb/internal/plot"
)

// MetricReporter evaluates named quality metrics for each source cube
// and its horizon, renders the maps and an aggregate quality map, and
// optionally dumps raw values as point clouds.
type MetricReporter struct {
	Sources []string
	OutDir  string
	// HorizonFor locates the horizon point cloud for a cube path.
	// Default: "<cube dir>/<cube short name>_horizon.txt".
	HorizonFor func(cubePath string) string

	Metrics       []string
	SupportParams metrics.Params
	LocalParams   metrics.Params
	// AddSuffix appends the canonical parameter encoding to filenames,
	// so runs with different presets do not collide.
	AddSuffix bool
	// SaveClouds also writes each metric map as a text point cloud.
	SaveClouds bool
	// Smooth is the quality-map smoothing kernel size (0 disables).
	Smooth int
	Show   bool
	Log    *zap.Logger
}

// MetricFileName builds the output stem for one metric, optionally
// carrying the parameter suffix.
func MetricFileName(metric string, params metrics.Params, addSuffix bool) string {
	if !addSuffix {
		return metric
	}
	suffix := params.Suffix()
	if suffix == "" {
		return metric
	}
	return metric + "_" + suffix
}

// CubeResult carries the aggregate scores of one processed cube, for
// callers that persist run results.
type CubeResult struct {
	Cube     string
	Horizon  string
	Coverage float64
	// Scores maps metric name to the mean of its map.
	Scores map[string]float64
}

func defaultHorizonFor(cubePath string) string {
	dir := filepath.Dir(cubePath)
	base := strings.TrimSuffix(filepath.Base(cubePath), filepath.Ext(cubePath))
	return filepath.Join(dir, base+"_horizon.txt")
}

// Run executes the metric batch and returns the aggregate scores per
// cube, in source order.
func (r *MetricReporter) Run() ([]CubeResult, error) {
	if len(r.Metrics) == 0 {
		return nil, fmt.Errorf("report: no metrics requested")
	}
	log := r.Log
	if log == nil {
		log = zap.NewNop()
	}
	horizonFor := r.HorizonFor
	if horizonFor == nil {
		horizonFor = defaultHorizonFor
	}
	support := r.SupportParams
	if support == nil {
		support = metrics.DefaultSupportParams()
	}
	local := r.LocalParams
	if local == nil {
		local = metrics.DefaultLocalParams()
	}

	var results []CubeResult
	err := forEachSource(r.Sources, r.OutDir, log, func(cubePath string, g geometry.Geometry, dir string) error {
		h, err := horizon.Load(horizonFor(cubePath))
		if err != nil {
			return err
		}
		eval, err := metrics.NewEvaluator(g, h, metrics.WithLogger(log))
		if err != nil {
			return err
		}
		result := CubeResult{
			Cube:     g.ShortName(),
			Horizon:  h.Name,
			Coverage: h.Coverage(g),
			Scores:   make(map[string]float64, len(r.Metrics)),
		}

		collected := make(map[string]*geometry.Matrix, len(r.Metrics))
		for _, name := range r.Metrics {
			params := metrics.PresetFor(name, support, local)
			m, err := eval.Evaluate(name, params)
			if err != nil {
				return err
			}
			collected[name] = m
			result.Scores[name] = metrics.MeanScore(m)

			stem := MetricFileName(name, params, r.AddSuffix)
			opts := plot.Options{Colormap: plot.Viridis}
			if err := plot.Render(m, filepath.Join(dir, stem+".png"), opts); err != nil {
				return err
			}
			if r.SaveClouds {
				cloudPath := filepath.Join(dir, stem+".txt")
				if err := horizon.SavePointCloud(m, cloudPath, g.Ilines(), g.Xlines()); err != nil {
					return err
				}
			}
			if r.Show {
				fmt.Fprintln(os.Stdout, plot.Preview(m, opts))
			}
			log.Info("metric evaluated",
				zap.String("cube", g.ShortName()),
				zap.String("horizon", h.Name),
				zap.String("metric", name),
				zap.Float64("mean", metrics.MeanScore(m)))
		}

		quality := metrics.QualityMap(collected, r.Smooth)
		if err := plot.Render(quality, filepath.Join(dir, "quality_map.png"), plot.Options{Colormap: plot.Viridis}); err != nil {
			return err
		}
		if r.Show {
			fmt.Fprintln(os.Stdout, plot.Preview(quality, plot.Options{Colormap: plot.Viridis}))
		}
		log.Info("quality map written",
			zap.String("cube", g.ShortName()),
			zap.Float64("mean", metrics.MeanScore(quality)))
		results = append(results, result)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}
