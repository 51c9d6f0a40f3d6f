package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/RamySaleem/seismiqb/internal/report"
	"github.com/RamySaleem/seismiqb/internal/results"
)

var (
	metricsOut    string
	metricsNames  []string
	metricsSuffix bool
	metricsClouds bool
	metricsSmooth int
	metricsShow   bool
	metricsRecord string
	metricsDB     string
)

// metricsCmd evaluates horizon quality metrics for every matched cube.
var metricsCmd = &cobra.Command{
	Use:   "metrics [glob]",
	Short: "Evaluate horizon quality metrics for each cube",
	Long: `Evaluates the configured metrics for every cube matching the glob
and its horizon, writes one map image per metric plus an aggregate
quality map, and optionally dumps the raw values as point clouds.

The horizon is looked up next to each cube as "<cube>_horizon.txt".
With --record, aggregate scores are appended to the results database
under the given experiment name.

Example:
  seiq metrics 'data/*.qblob' --out reports/maps --clouds --record baseline`,
	Args: cobra.ExactArgs(1),
	RunE: runMetrics,
}

func init() {
	metricsCmd.Flags().StringVarP(&metricsOut, "out", "o", "reports/maps", "Output directory")
	metricsCmd.Flags().StringSliceVarP(&metricsNames, "metrics", "m", nil, "Metrics to evaluate (default from config)")
	metricsCmd.Flags().BoolVar(&metricsSuffix, "suffix", true, "Append parameter suffix to filenames")
	metricsCmd.Flags().BoolVar(&metricsClouds, "clouds", false, "Also save metric maps as text point clouds")
	metricsCmd.Flags().IntVar(&metricsSmooth, "smooth", 0, "Quality-map smoothing kernel size (0 disables)")
	metricsCmd.Flags().BoolVar(&metricsShow, "show", false, "Echo a terminal preview of each map")
	metricsCmd.Flags().StringVar(&metricsRecord, "record", "", "Record aggregate scores under this experiment name")
	metricsCmd.Flags().StringVar(&metricsDB, "db", "", "Results database path (default from config)")
}

func runMetrics(cmd *cobra.Command, args []string) error {
	sources, err := report.CollectSources(args[0])
	if err != nil {
		return err
	}

	names := metricsNames
	if len(names) == 0 {
		names = cfg.Metrics.Names
	}
	smooth := metricsSmooth
	if smooth == 0 {
		smooth = cfg.Metrics.Smooth
	}

	reporter := &report.MetricReporter{
		Sources:       sources,
		OutDir:        metricsOut,
		Metrics:       names,
		SupportParams: cfg.SupportParams(),
		LocalParams:   cfg.LocalParams(),
		AddSuffix:     metricsSuffix && cfg.Metrics.AddSuffix,
		SaveClouds:    metricsClouds || cfg.Metrics.SaveClouds,
		Smooth:        smooth,
		Show:          metricsShow || cfg.Metrics.Show,
		Log:           logger,
	}
	cubeResults, err := reporter.Run()
	if err != nil {
		return err
	}
	logger.Info("metrics evaluated",
		zap.Int("cubes", len(cubeResults)),
		zap.String("dir", metricsOut))

	if metricsRecord == "" {
		return nil
	}
	return recordResults(metricsRecord, cubeResults)
}

// recordResults appends one run per cube to the results database.
func recordResults(experiment string, cubeResults []report.CubeResult) error {
	dbPath := metricsDB
	if dbPath == "" {
		dbPath = cfg.Results.DatabasePath
	}
	store, err := results.NewStore(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	for _, cr := range cubeResults {
		run := &results.Run{
			Experiment: experiment,
			Key:        results.JoinKey(cr.Cube, cr.Horizon),
			Coverage:   []float64{cr.Coverage},
		}
		if v, ok := cr.Scores["window_rate"]; ok {
			run.WindowRate = []float64{v}
		}
		if v, ok := cr.Scores["support_corrs"]; ok {
			run.Corrs = []float64{v}
		}
		if v, ok := cr.Scores["local_corrs"]; ok {
			run.LocalCorrs = []float64{v}
		}
		if err := store.Record(run); err != nil {
			return err
		}
		logger.Debug("run recorded",
			zap.String("experiment", experiment),
			zap.String("key", run.Key))
	}
	logger.Info("runs recorded",
		zap.String("experiment", experiment),
		zap.Int("count", len(cubeResults)))
	return nil
}
