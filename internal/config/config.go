// Package config loads loopsub settings from a JSON file and merges them
// with command line flags.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/taigrr/loopsub/pkg/math3d"
	"github.com/taigrr/loopsub/pkg/models"
	"github.com/taigrr/loopsub/pkg/render"
)

// Config holds subdivision, loading and render settings.
type Config struct {
	// Subdivision
	Levels *int `json:"levels"`

	// Loading
	MergeTolerance float64 `json:"merge_tolerance"`
	Clean          *bool   `json:"clean"`

	// Render settings
	RenderWidth  int        `json:"render_width"`
	RenderHeight int        `json:"render_height"`
	Supersample  int        `json:"supersample"`
	LineWidth    float64    `json:"line_width"`
	LightDir     [3]float64 `json:"light_dir"`
	Background   string     `json:"background"`
	SurfaceColor string     `json:"surface_color"`
	WireColor    string     `json:"wire_color"`

	// Viewer
	FPS float64 `json:"fps"`
}

// Flags holds CLI flag values that override config file settings.
// Zero values mean "not given"; Levels is nil when unset.
type Flags struct {
	Levels         *int
	Width, Height  int
	Supersample    int
	FPS            float64
	MergeTolerance float64
	NoClean        bool
}

// DefaultPath returns the per-user config file location, or "" if the
// user config directory is unknown.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "loopsub", "config.json")
}

// Load reads a JSON config file. Fields not set in the file keep their
// zero values until Resolve fills them in.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault loads path, or DefaultPath when path is empty. A missing
// default file is not an error.
func LoadOrDefault(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
		if path == "" {
			return Config{}, nil
		}
	}
	cfg, err := Load(path)
	if err != nil && !explicit && errors.Is(err, os.ErrNotExist) {
		return Config{}, nil
	}
	return cfg, err
}

// Resolve applies flag overrides, then fills any unset field with its default.
func (c *Config) Resolve(flags Flags) {
	// CLI flags override config file
	if flags.Levels != nil {
		levels := *flags.Levels
		c.Levels = &levels
	}
	if flags.Width > 0 {
		c.RenderWidth = flags.Width
	}
	if flags.Height > 0 {
		c.RenderHeight = flags.Height
	}
	if flags.Supersample > 0 {
		c.Supersample = flags.Supersample
	}
	if flags.FPS > 0 {
		c.FPS = flags.FPS
	}
	if flags.MergeTolerance > 0 {
		c.MergeTolerance = flags.MergeTolerance
	}
	if flags.NoClean {
		c.Clean = new(bool)
	}

	// Defaults
	if c.Levels == nil {
		one := 1
		c.Levels = &one
	} else if *c.Levels < 0 {
		zero := 0
		c.Levels = &zero
	}
	if c.Clean == nil {
		clean := true
		c.Clean = &clean
	}
	if c.RenderWidth <= 0 {
		c.RenderWidth = 512
	}
	if c.RenderHeight <= 0 {
		c.RenderHeight = c.RenderWidth
	}
	if c.Supersample <= 0 {
		c.Supersample = 2
	}
	if c.LineWidth <= 0 {
		c.LineWidth = 1
	}
	if c.LightDir == [3]float64{} {
		c.LightDir = [3]float64{0.5, 1, 0.3}
	}
	if c.Background == "" {
		c.Background = "#ffffff"
	}
	if c.SurfaceColor == "" {
		c.SurfaceColor = "#c8c8c8"
	}
	if c.WireColor == "" {
		c.WireColor = "#141414"
	}
	if c.FPS <= 0 {
		c.FPS = 60
	}
}

// LevelCount returns the number of subdivision levels, 1 when unset.
func (c *Config) LevelCount() int {
	if c.Levels == nil {
		return 1
	}
	return *c.Levels
}

// LoadOptions returns the mesh loading options.
func (c *Config) LoadOptions() models.LoadOptions {
	return models.LoadOptions{
		MergeTolerance: c.MergeTolerance,
		Clean:          c.Clean == nil || *c.Clean,
	}
}

// RenderOptions converts the render settings, validating the colors.
func (c *Config) RenderOptions() (render.Options, error) {
	opts := render.DefaultOptions()
	opts.Width = c.RenderWidth
	opts.Height = c.RenderHeight
	opts.Supersample = c.Supersample
	opts.LineWidth = c.LineWidth
	opts.LightDir = math3d.V3(c.LightDir[0], c.LightDir[1], c.LightDir[2]).Normalize()

	var err error
	if opts.Background, err = render.ParseColor(c.Background); err != nil {
		return opts, fmt.Errorf("config: background: %w", err)
	}
	if opts.Surface, err = render.ParseColor(c.SurfaceColor); err != nil {
		return opts, fmt.Errorf("config: surface_color: %w", err)
	}
	if opts.Wire, err = render.ParseColor(c.WireColor); err != nil {
		return opts, fmt.Errorf("config: wire_color: %w", err)
	}
	return opts, nil
}
