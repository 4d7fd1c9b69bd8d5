package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/image-patterns-mcp/internal/imaging"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func envMap(vars map[string]string) func(string) string {
	return func(key string) string { return vars[key] }
}

func TestDefault(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
	assert.Equal(t, DefaultMaxDimension, cfg.Preprocess.MaxDimension)
	assert.Equal(t, 0, cfg.MaxLinks)
	assert.Equal(t, 1, cfg.Heatmap.Scale)
}

func TestLoad_EmptyPath(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
log_level: debug
max_links: 5000
preprocess:
  max_dimension: 64
  region: {x1: 10, y1: 20, x2: 30, y2: 40}
hotspots:
  threshold: 3
  min_area: 4
heatmap:
  scale: 8
snapshot:
  enabled: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
	assert.Equal(t, 5000, cfg.MaxLinks)
	assert.Equal(t, &imaging.Region{X1: 10, Y1: 20, X2: 30, Y2: 40}, cfg.Preprocess.Region)
	assert.Equal(t, uint64(3), cfg.Hotspots.Threshold)
	assert.Equal(t, 4, cfg.Hotspots.MinArea)
	assert.True(t, cfg.Snapshot.Enabled)

	// Unset keys keep their defaults.
	assert.True(t, cfg.Heatmap.Legend)
	assert.Equal(t, 0.6, cfg.Heatmap.Opacity)

	opts := cfg.PrepareOptions()
	assert.Equal(t, 64, opts.MaxDimension)
	assert.Equal(t, cfg.Preprocess.Region, opts.Region)
	assert.Equal(t, 8, cfg.HeatmapOptions().Scale)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errMsg  string
	}{
		{"unknown field", "log_levl: debug\n", "failed to parse YAML"},
		{"malformed", "log_level: [debug\n", "failed to parse YAML"},
		{"bad level", "log_level: loud\n", "unknown log level"},
		{"negative links", "max_links: -1\n", "max_links"},
		{"empty region", "preprocess:\n  region: {x1: 5, y1: 5, x2: 5, y2: 9}\n", "preprocess.region"},
		{"zero scale", "heatmap:\n  scale: 0\n", "heatmap.scale"},
		{"huge scale", "heatmap:\n  scale: 1000000\n", "heatmap.scale must be at most 8192"},
		{"opacity", "heatmap:\n  opacity: 1.5\n", "heatmap.opacity"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read config file")
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()

	err := cfg.ApplyEnv(envMap(map[string]string{
		EnvLogLevel:     " DEBUG ",
		EnvMaxDimension: "128",
		EnvMaxLinks:     "900",
	}))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 128, cfg.Preprocess.MaxDimension)
	assert.Equal(t, 900, cfg.MaxLinks)
}

func TestApplyEnv_Empty(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.ApplyEnv(envMap(nil)))
	assert.Equal(t, Default(), cfg)
}

func TestApplyEnv_Invalid(t *testing.T) {
	tests := []struct {
		name string
		vars map[string]string
	}{
		{"dimension not a number", map[string]string{EnvMaxDimension: "big"}},
		{"negative dimension", map[string]string{EnvMaxDimension: "-4"}},
		{"links not a number", map[string]string{EnvMaxLinks: "lots"}},
		{"level", map[string]string{EnvLogLevel: "verbose"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, Default().ApplyEnv(envMap(tt.vars)))
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.name)
		require.NoError(t, err, tt.name)
		assert.Equal(t, tt.want, got, tt.name)
	}
}
