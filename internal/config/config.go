// Package config holds the seiq configuration: defaults, YAML loading
// and environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/RamySaleem/seismiqb/internal/metrics"
)

// Config holds all seiq configuration.
type Config struct {
	// Slides configures the slide exporter.
	Slides SlidesConfig `yaml:"slides"`

	// Metrics configures the metric reporter.
	Metrics MetricsConfig `yaml:"metrics"`

	// Results configures the persisted run store.
	Results ResultsConfig `yaml:"results"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// SlidesConfig configures the slide exporter.
type SlidesConfig struct {
	// Count is the target number of slides per axis.
	Count int `yaml:"count"`
	// Colormap names the palette: gray, seismic or viridis.
	Colormap string `yaml:"colormap"`
	// Scale is the pixel size per cell in rendered images.
	Scale int `yaml:"scale"`
	// Show echoes a terminal preview of each rendered image.
	Show bool `yaml:"show"`
}

// MetricsConfig configures the metric reporter.
type MetricsConfig struct {
	// Names lists the metrics to evaluate per cube.
	Names []string `yaml:"names"`
	// Support holds the parameter preset for support-based metrics.
	Support map[string]any `yaml:"support"`
	// Local holds the parameter preset for local (neighborhood) metrics.
	Local map[string]any `yaml:"local"`
	// AddSuffix appends the parameter encoding to output filenames.
	AddSuffix bool `yaml:"add_suffix"`
	// SaveClouds also writes each metric map as a text point cloud.
	SaveClouds bool `yaml:"save_clouds"`
	// Smooth is the quality-map smoothing kernel size (0 disables).
	Smooth int  `yaml:"smooth"`
	Show   bool `yaml:"show"`
}

// ResultsConfig configures the run store.
type ResultsConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Slides: SlidesConfig{
			Count:    7,
			Colormap: "gray",
			Scale:    1,
		},
		Metrics: MetricsConfig{
			Names:     append([]string(nil), metrics.Names...),
			AddSuffix: true,
		},
		Results: ResultsConfig{
			DatabasePath: "data/seiq.db",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file. A missing file is not an
// error: defaults apply, then environment overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if path := os.Getenv("SEIQ_DB"); path != "" {
		c.Results.DatabasePath = path
	}
	if level := os.Getenv("SEIQ_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if cmap := os.Getenv("SEIQ_COLORMAP"); cmap != "" {
		c.Slides.Colormap = cmap
	}
}

// SupportParams converts the configured support preset into ordered
// parameters, falling back to the built-in defaults when unset.
func (c *Config) SupportParams() metrics.Params {
	return presetParams(c.Metrics.Support, metrics.DefaultSupportParams())
}

// LocalParams converts the configured local preset into ordered
// parameters, falling back to the built-in defaults when unset.
func (c *Config) LocalParams() metrics.Params {
	return presetParams(c.Metrics.Local, metrics.DefaultLocalParams())
}

// presetParams overlays configured values on the default preset.
// Default keys keep their position so filename suffixes stay stable;
// keys outside the default preset append in sorted order after them.
func presetParams(override map[string]any, defaults metrics.Params) metrics.Params {
	if len(override) == 0 {
		return defaults
	}
	out := make(metrics.Params, 0, len(defaults)+len(override))
	seen := make(map[string]bool, len(override))
	for _, p := range defaults {
		if v, ok := override[p.Key]; ok {
			out = append(out, metrics.Param{Key: p.Key, Value: v})
			seen[p.Key] = true
			continue
		}
		out = append(out, p)
	}
	extra := make([]string, 0, len(override))
	for k := range override {
		if !seen[k] {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	for _, k := range extra {
		out = append(out, metrics.Param{Key: k, Value: override[k]})
	}
	return out
}

// ValidLevels lists the supported logging levels.
var ValidLevels = []string{"debug", "info", "warn", "error"}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Slides.Count <= 0 {
		return fmt.Errorf("slides.count must be positive, got %d", c.Slides.Count)
	}
	if len(c.Metrics.Names) == 0 {
		return fmt.Errorf("metrics.names must not be empty")
	}
	known := metrics.Names
	for _, name := range c.Metrics.Names {
		found := false
		for _, k := range known {
			if name == k {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("unknown metric: %s (valid: %v)", name, known)
		}
	}
	if c.Metrics.Smooth < 0 {
		return fmt.Errorf("metrics.smooth must not be negative, got %d", c.Metrics.Smooth)
	}
	validLevel := false
	for _, l := range ValidLevels {
		if c.Logging.Level == l {
			validLevel = true
			break
		}
	}
	if !validLevel {
		return fmt.Errorf("invalid logging level: %s (valid: %v)", c.Logging.Level, ValidLevels)
	}
	return nil
}
