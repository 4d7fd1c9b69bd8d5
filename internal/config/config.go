package config

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ironsheep/image-patterns-mcp/internal/imaging"
)

// Environment variables that override file settings.
const (
	EnvLogLevel     = "IMAGE_PATTERNS_LOG_LEVEL"
	EnvMaxDimension = "IMAGE_PATTERNS_MAX_DIMENSION"
	EnvMaxLinks     = "IMAGE_PATTERNS_MAX_LINKS"
)

// DefaultMaxDimension bounds the longest image side before recognition.
const DefaultMaxDimension = 256

// Config holds every tunable setting.
type Config struct {
	// LogLevel is one of debug, info, warn or error.
	LogLevel string `yaml:"log_level"`

	// MaxLinks caps the relation store per run; 0 means unlimited.
	MaxLinks int `yaml:"max_links"`

	Preprocess Preprocess `yaml:"preprocess"`
	Hotspots   Hotspots   `yaml:"hotspots"`
	Heatmap    Heatmap    `yaml:"heatmap"`
	Snapshot   Snapshot   `yaml:"snapshot"`
}

// Preprocess selects the part of the image to analyze.
type Preprocess struct {
	// MaxDimension downscales larger images; 0 disables downscaling.
	MaxDimension int `yaml:"max_dimension"`

	// Quadrant names a predefined region such as "top-left".
	Quadrant string `yaml:"quadrant"`

	// Region is an explicit crop. It takes precedence over Quadrant.
	Region *imaging.Region `yaml:"region"`
}

// Hotspots configures hotspot detection.
type Hotspots struct {
	// Threshold is the minimum level; 0 derives it from the maximum level.
	Threshold uint64 `yaml:"threshold"`
	MinArea   int    `yaml:"min_area"`
}

// Heatmap configures level heatmap rendering.
type Heatmap struct {
	Scale   int     `yaml:"scale"`
	Legend  bool    `yaml:"legend"`
	Opacity float64 `yaml:"opacity"`
}

// Snapshot configures persistence of runs.
type Snapshot struct {
	// Enabled writes every run to a snapshot database.
	Enabled bool `yaml:"enabled"`

	// Path overrides the default "<image>.links" location.
	Path string `yaml:"path"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Preprocess: Preprocess{
			MaxDimension: DefaultMaxDimension,
		},
		Hotspots: Hotspots{
			MinArea: 1,
		},
		Heatmap: Heatmap{
			Scale:   1,
			Legend:  true,
			Opacity: 0.6,
		},
	}
}

// Load reads a YAML file over the defaults. An empty path returns the
// defaults. Unknown fields are rejected.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overrides settings from environment variables read through
// getenv, normally os.Getenv. Empty variables are ignored.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := getenv(EnvLogLevel); v != "" {
		c.LogLevel = strings.ToLower(strings.TrimSpace(v))
	}
	if v := getenv(EnvMaxDimension); v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s: %w", EnvMaxDimension, err)
		}
		c.Preprocess.MaxDimension = n
	}
	if v := getenv(EnvMaxLinks); v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s: %w", EnvMaxLinks, err)
		}
		c.MaxLinks = n
	}
	return c.Validate()
}

// Validate checks every setting and reports the first problem.
func (c *Config) Validate() error {
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.MaxLinks < 0 {
		return fmt.Errorf("max_links must be non-negative, got %d", c.MaxLinks)
	}
	if c.Preprocess.MaxDimension < 0 {
		return fmt.Errorf("preprocess.max_dimension must be non-negative, got %d", c.Preprocess.MaxDimension)
	}
	if r := c.Preprocess.Region; r != nil && r.Empty() {
		return fmt.Errorf("preprocess.region is empty: (%d,%d)-(%d,%d)", r.X1, r.Y1, r.X2, r.Y2)
	}
	if c.Hotspots.MinArea < 0 {
		return fmt.Errorf("hotspots.min_area must be non-negative, got %d", c.Hotspots.MinArea)
	}
	if c.Heatmap.Scale < 1 {
		return fmt.Errorf("heatmap.scale must be at least 1, got %d", c.Heatmap.Scale)
	}
	if c.Heatmap.Scale > imaging.MaxHeatmapSide {
		return fmt.Errorf("heatmap.scale must be at most %d, got %d", imaging.MaxHeatmapSide, c.Heatmap.Scale)
	}
	if c.Heatmap.Opacity < 0 || c.Heatmap.Opacity > 1 {
		return fmt.Errorf("heatmap.opacity must be between 0 and 1, got %g", c.Heatmap.Opacity)
	}
	return nil
}

// ParseLevel maps a level name to its slog level.
func ParseLevel(name string) (slog.Level, error) {
	switch name {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q (use debug, info, warn or error)", name)
	}
}

// SlogLevel returns the configured log level.
func (c *Config) SlogLevel() slog.Level {
	level, _ := ParseLevel(c.LogLevel)
	return level
}

// PrepareOptions converts the preprocessing settings.
func (c *Config) PrepareOptions() imaging.PrepareOptions {
	return imaging.PrepareOptions{
		Region:       c.Preprocess.Region,
		Quadrant:     c.Preprocess.Quadrant,
		MaxDimension: c.Preprocess.MaxDimension,
	}
}

// HeatmapOptions converts the heatmap settings.
func (c *Config) HeatmapOptions() imaging.HeatmapOptions {
	return imaging.HeatmapOptions{
		Scale:   c.Heatmap.Scale,
		Legend:  c.Heatmap.Legend,
		Opacity: c.Heatmap.Opacity,
	}
}
