package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/RamySaleem/seismiqb/internal/config"
)

var (
	// Global flags
	verbose    bool
	configPath string

	// Loaded configuration and logger, shared by the subcommands.
	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "seiq",
	Short: "seiq - seismic cube interpretation reports",
	Long: `seiq renders batch reports over seismic cubes and their horizons.

It exports evenly sampled 2-D slides, evaluates horizon quality metrics
into map images and point clouds, and summarizes persisted experiment
results into per-iteration tables.

Cubes are read from SEG-Y or from the converted binary format produced
by "seiq convert cube".`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		// Initialize logger
		zcfg := zap.NewProductionConfig()
		level := cfg.Logging.Level
		if verbose {
			level = "debug"
		}
		var lvl zapcore.Level
		if err := lvl.UnmarshalText([]byte(level)); err != nil {
			return fmt.Errorf("failed to parse log level: %w", err)
		}
		zcfg.Level = zap.NewAtomicLevelAt(lvl)
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "seiq.yaml", "Configuration file")

	rootCmd.AddCommand(slidesCmd, metricsCmd, summaryCmd, convertCmd, infoCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
