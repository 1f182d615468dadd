// Package config loads planner configuration from TOML files and
// applies defaults so callers can run with a partial or absent file.
package config

import (
	"os"

	"github.com/BurntSushi/toml"

	"github.com/sceneplan/sceneplan/pkg/errors"
	"github.com/sceneplan/sceneplan/pkg/place"
)

// Config is the full file layout. Zero values mean "use the default".
type Config struct {
	Canvas CanvasConfig `toml:"canvas"`
	Layout LayoutConfig `toml:"layout"`
	Cache  CacheConfig  `toml:"cache"`
	Server ServerConfig `toml:"server"`
}

// CanvasConfig sets the working surface dimensions.
type CanvasConfig struct {
	Width  float64 `toml:"width"`
	Height float64 `toml:"height"`
}

// LayoutConfig tunes the planner.
type LayoutConfig struct {
	Margin   float64    `toml:"margin"`
	Strategy place.Name `toml:"strategy"`

	// GridRows and GridCols configure the grid strategy when selected.
	GridRows int `toml:"grid_rows"`
	GridCols int `toml:"grid_cols"`
}

// CacheConfig selects the pipeline cache backend. RedisURL takes
// precedence over Dir when both are set.
type CacheConfig struct {
	Dir      string `toml:"dir"`
	RedisURL string `toml:"redis_url"`
	Disabled bool   `toml:"disabled"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr     string `toml:"addr"`
	MongoURI string `toml:"mongo_uri"`
	MongoDB  string `toml:"mongo_db"`
}

// Default returns the configuration used when no file is present.
// The canvas matches a 16:9 frame at manim-style scene units.
func Default() Config {
	return Config{
		Canvas: CanvasConfig{Width: 14.2, Height: 8.0},
		Layout: LayoutConfig{
			Margin:   0.1,
			Strategy: place.NameRegionPreferential,
			GridRows: 2,
			GridCols: 3,
		},
		Server: ServerConfig{Addr: ":8080", MongoDB: "sceneplan"},
	}
}

// Load reads a TOML file and merges it over the defaults. A missing
// file is not an error; a malformed or invalid one is.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects settings the planner cannot run with.
func (c Config) Validate() error {
	if c.Canvas.Width <= 0 || c.Canvas.Height <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "canvas dimensions must be positive (got %gx%g)", c.Canvas.Width, c.Canvas.Height)
	}
	if c.Layout.Margin < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "margin must not be negative")
	}
	if c.Layout.Strategy != "" {
		if _, err := place.ForName(c.Layout.Strategy); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "layout.strategy")
		}
	}
	if c.Layout.GridRows < 0 || c.Layout.GridCols < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "grid dimensions must not be negative")
	}
	return nil
}
