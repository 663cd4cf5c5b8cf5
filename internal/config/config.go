// Package config provides the tunables of the fog-of-war engine and viewer.
// They are loaded from a JSON file so each table can adjust its own setup.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"image/color"
	"os"
	"strconv"
	"strings"

	"chosenoffset.com/fogofwar/internal/core/shadows"
	"chosenoffset.com/fogofwar/internal/render/lighting"
	"chosenoffset.com/fogofwar/internal/scene"
	"chosenoffset.com/fogofwar/internal/vision"
)

// Config holds all engine and viewer settings
type Config struct {
	Visibility VisibilityConfig `json:"visibility"`
	Lighting   LightingConfig   `json:"lighting"`
	Fog        FogConfig        `json:"fog"`
	Display    DisplayConfig    `json:"display"`
}

// VisibilityConfig tunes the ray sweep
type VisibilityConfig struct {
	Epsilon         float64 `json:"epsilon"`           // Side ray offset in radians
	RayLengthFactor float64 `json:"ray_length_factor"` // Ray length in image diagonals (>= 2)
	Index           string  `json:"index"`             // "brute" or "grid"
	GridCellSize    float64 `json:"grid_cell_size"`    // Grid bucket size in pixels
	Workers         int     `json:"workers"`           // Concurrent polygon builds
}

// LightingConfig defines light reach and grid defaults
type LightingConfig struct {
	TokenVisionRadius float64 `json:"token_vision_radius"` // Token light reach in pixels, 0 = unbounded
	DefaultGridFeet   float64 `json:"default_grid_feet"`   // Feet per square when the scene leaves it unset
	DefaultGridPixels float64 `json:"default_grid_pixels"` // Pixels per square when the scene leaves it unset
}

// FogConfig defines how hidden areas look
type FogConfig struct {
	Color       string `json:"color"`        // Hex "RRGGBB" or "RRGGBBAA"
	Memory      bool   `json:"memory"`       // Keep explored areas lighter
	MemoryAlpha int    `json:"memory_alpha"` // Fog alpha over explored areas (0-255)
}

// DisplayConfig defines the viewer window
type DisplayConfig struct {
	WindowWidth  int    `json:"window_width"`
	WindowHeight int    `json:"window_height"`
	Title        string `json:"title"`
	TPS          int    `json:"tps"` // Ticks per second
}

// DefaultConfig returns sensible defaults for a tabletop map
func DefaultConfig() *Config {
	return &Config{
		Visibility: VisibilityConfig{
			Epsilon:         shadows.DefaultEpsilon,
			RayLengthFactor: shadows.DefaultRayLengthFactor,
			Index:           vision.IndexGrid,
			GridCellSize:    shadows.DefaultCellSize,
			Workers:         4,
		},
		Lighting: LightingConfig{
			TokenVisionRadius: 1500,
			DefaultGridFeet:   lighting.DefaultGridFeet,
			DefaultGridPixels: lighting.DefaultGridPixels,
		},
		Fog: FogConfig{
			Color:       "000000",
			Memory:      false,
			MemoryAlpha: 160,
		},
		Display: DisplayConfig{
			WindowWidth:  1280,
			WindowHeight: 960,
			Title:        "Fog of War",
			TPS:          60,
		},
	}
}

// LoadConfig loads config from a JSON file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		// Return defaults if file doesn't exist
		if errors.Is(err, os.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	config := DefaultConfig() // Start with defaults
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return config, nil
}

// Validate rejects settings the engine cannot run with and clamps the rest
func (c *Config) Validate() error {
	v := &c.Visibility
	if v.Epsilon <= 0 || v.Epsilon >= 0.1 {
		return fmt.Errorf("visibility.epsilon must be in (0, 0.1), got %v", v.Epsilon)
	}
	if v.RayLengthFactor < shadows.DefaultRayLengthFactor {
		v.RayLengthFactor = shadows.DefaultRayLengthFactor
	}
	switch v.Index {
	case vision.IndexBruteForce, vision.IndexGrid:
	default:
		return fmt.Errorf("visibility.index must be %q or %q, got %q", vision.IndexBruteForce, vision.IndexGrid, v.Index)
	}
	if v.GridCellSize <= 0 {
		v.GridCellSize = shadows.DefaultCellSize
	}
	if v.Workers < 1 {
		v.Workers = 1
	}

	if c.Lighting.TokenVisionRadius < 0 {
		return fmt.Errorf("lighting.token_vision_radius must not be negative, got %v", c.Lighting.TokenVisionRadius)
	}
	if c.Lighting.DefaultGridFeet <= 0 {
		c.Lighting.DefaultGridFeet = lighting.DefaultGridFeet
	}
	if c.Lighting.DefaultGridPixels <= 0 {
		c.Lighting.DefaultGridPixels = lighting.DefaultGridPixels
	}

	if _, err := ParseColor(c.Fog.Color); err != nil {
		return fmt.Errorf("fog.color: %w", err)
	}
	c.Fog.MemoryAlpha = min(max(c.Fog.MemoryAlpha, 0), 255)

	if c.Display.TPS <= 0 {
		c.Display.TPS = 60
	}
	if c.Display.WindowWidth <= 0 || c.Display.WindowHeight <= 0 {
		return fmt.Errorf("display window must be positive, got %dx%d", c.Display.WindowWidth, c.Display.WindowHeight)
	}
	return nil
}

// EngineOptions returns the vision engine options.
func (c *Config) EngineOptions() vision.Options {
	return vision.Options{
		Epsilon:         c.Visibility.Epsilon,
		RayLengthFactor: c.Visibility.RayLengthFactor,
		Index:           c.Visibility.Index,
		CellSize:        c.Visibility.GridCellSize,
		Workers:         c.Visibility.Workers,
	}
}

// StoreOptions returns the scene store options.
func (c *Config) StoreOptions() scene.Options {
	return scene.Options{
		TokenVisionRadius: c.Lighting.TokenVisionRadius,
		DefaultGridFeet:   c.Lighting.DefaultGridFeet,
		DefaultGridPixels: c.Lighting.DefaultGridPixels,
	}
}

// FogColor returns the parsed fog colour, black if it does not parse.
func (c *Config) FogColor() color.NRGBA {
	col, err := ParseColor(c.Fog.Color)
	if err != nil {
		return color.NRGBA{A: 255}
	}
	return col
}

// ParseColor parses hex colours of the form "RRGGBB" or "RRGGBBAA", with
// an optional leading '#'.
func ParseColor(s string) (color.NRGBA, error) {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 && len(s) != 8 {
		return color.NRGBA{}, fmt.Errorf("invalid colour %q", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid colour %q: %w", s, err)
	}
	if len(s) == 6 {
		v = v<<8 | 0xff
	}
	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}
