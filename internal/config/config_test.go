package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RamySaleem/seismiqb/internal/metrics"
)

func TestDefaultConfigValidates(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seiq.yaml")
	data := `
slides:
  count: 3
  colormap: seismic
metrics:
  names: [window_rate]
  smooth: 5
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Slides.Count)
	assert.Equal(t, "seismic", cfg.Slides.Colormap)
	assert.Equal(t, []string{"window_rate"}, cfg.Metrics.Names)
	assert.Equal(t, 5, cfg.Metrics.Smooth)
	assert.Equal(t, "debug", cfg.Logging.Level)
	// Untouched sections keep their defaults.
	assert.Equal(t, "data/seiq.db", cfg.Results.DatabasePath)
	require.NoError(t, cfg.Validate())
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seiq.yaml")
	require.NoError(t, os.WriteFile(path, []byte("slides: ["), 0644))
	_, err := Load(path)
	require.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SEIQ_DB", "/tmp/other.db")
	t.Setenv("SEIQ_LOG_LEVEL", "warn")
	t.Setenv("SEIQ_COLORMAP", "viridis")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "/tmp/other.db", cfg.Results.DatabasePath)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "viridis", cfg.Slides.Colormap)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "seiq.yaml")

	cfg := DefaultConfig()
	cfg.Slides.Count = 11
	cfg.Metrics.Local = map[string]any{"kernel_size": 7}
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Slides, loaded.Slides)
	assert.Equal(t, cfg.Metrics.Names, loaded.Metrics.Names)
	assert.Equal(t, cfg.Metrics.Local, loaded.Metrics.Local)
	assert.Equal(t, cfg.Results, loaded.Results)
}

func TestPresetParams(t *testing.T) {
	// Unset preset keeps the defaults.
	cfg := DefaultConfig()
	assert.Equal(t, metrics.DefaultSupportParams(), cfg.SupportParams())

	// Overrides replace in place, extras append sorted.
	cfg.Metrics.Support = map[string]any{
		"supports": 40,
		"zeta":     1,
		"alpha":    2,
	}
	got := cfg.SupportParams()
	require.Len(t, got, 4)
	assert.Equal(t, metrics.Param{Key: "supports", Value: 40}, got[0])
	assert.Equal(t, "agg", got[1].Key)
	assert.Equal(t, "alpha", got[2].Key)
	assert.Equal(t, "zeta", got[3].Key)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero slide count", func(c *Config) { c.Slides.Count = 0 }},
		{"no metrics", func(c *Config) { c.Metrics.Names = nil }},
		{"unknown metric", func(c *Config) { c.Metrics.Names = []string{"bogus"} }},
		{"negative smooth", func(c *Config) { c.Metrics.Smooth = -1 }},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
