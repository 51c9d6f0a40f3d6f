package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/RamySaleem/seismiqb/internal/results"
)

var (
	summaryDB  string
	summaryCSV string
)

// summaryCmd renders the per-iteration results table of an experiment.
var summaryCmd = &cobra.Command{
	Use:   "summary [experiment]",
	Short: "Summarize persisted experiment results",
	Long: `Loads the persisted runs of an experiment, keeps the latest run per
(cube, horizon) pair and prints a table with one column per metric and
iteration. Without an experiment argument, lists the stored experiment
names instead.

Example:
  seiq summary baseline --csv baseline.csv`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSummary,
}

func init() {
	summaryCmd.Flags().StringVar(&summaryDB, "db", "", "Results database path (default from config)")
	summaryCmd.Flags().StringVar(&summaryCSV, "csv", "", "Also write the table to this CSV file")
}

func runSummary(cmd *cobra.Command, args []string) error {
	dbPath := summaryDB
	if dbPath == "" {
		dbPath = cfg.Results.DatabasePath
	}
	store, err := results.NewStore(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	if len(args) == 0 {
		names, err := store.Experiments()
		if err != nil {
			return err
		}
		if len(names) == 0 {
			fmt.Println("No experiments recorded.")
			return nil
		}
		for _, name := range names {
			fmt.Println(name)
		}
		return nil
	}

	experiment := args[0]
	runs, err := store.LoadTable(experiment)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		return fmt.Errorf("no runs recorded for experiment %q", experiment)
	}
	rows, err := results.Summarize(runs)
	if err != nil {
		return err
	}
	logger.Debug("summary built",
		zap.String("experiment", experiment),
		zap.Int("rows", len(rows)),
		zap.Int("iterations", results.Iterations(rows)))

	fmt.Println(results.RenderTable(rows))

	if summaryCSV != "" {
		f, err := os.Create(summaryCSV)
		if err != nil {
			return fmt.Errorf("create csv: %w", err)
		}
		defer f.Close()
		if err := results.WriteCSV(rows, f); err != nil {
			return err
		}
		logger.Info("summary written", zap.String("csv", summaryCSV))
	}
	return nil
}
