// Package config provides configuration loading and access for flow field runs.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all scenario configuration parameters.
type Config struct {
	Grid        GridConfig      `yaml:"grid"`
	Destination PointConfig     `yaml:"destination"`
	Blockers    []BlockerConfig `yaml:"blockers"`
	Terrain     TerrainConfig   `yaml:"terrain"`
	Solver      SolverConfig    `yaml:"solver"`
	Spawner     SpawnerConfig   `yaml:"spawner"`
	Swarm       SwarmConfig     `yaml:"swarm"`
	Telemetry   TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// GridConfig holds field dimensions in cells.
type GridConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// PointConfig is a cell coordinate.
type PointConfig struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

// BlockerConfig is a half-open rectangle of blocked cells [Min, Max).
type BlockerConfig struct {
	Min PointConfig `yaml:"min"`
	Max PointConfig `yaml:"max"`
}

// TerrainConfig controls procedural noise blockers, applied on top of Blockers.
type TerrainConfig struct {
	Enabled       bool    `yaml:"enabled"`
	Seed          int64   `yaml:"seed"`
	Scale         float64 `yaml:"scale"`          // Noise frequency per cell
	Threshold     float64 `yaml:"threshold"`      // Noise above this blocks a cell, in [-1, 1]
	CaveThreshold float64 `yaml:"cave_threshold"` // Second noise layer above this reopens a cell
	Border        int     `yaml:"border"`         // Rows/columns kept open along the edges
	ClearRadius   int     `yaml:"clear_radius"`   // Chebyshev radius kept open around the destination
}

// SolverConfig holds solve parameters.
type SolverConfig struct {
	Workers           int `yaml:"workers"`            // Extraction goroutines (0 = GOMAXPROCS)
	ParallelThreshold int `yaml:"parallel_threshold"` // Minimum cells for parallel extraction
}

// SpawnerConfig lays out a block of agents.
type SpawnerConfig struct {
	CountX  int         `yaml:"count_x"`
	CountY  int         `yaml:"count_y"`
	Origin  PointConfig `yaml:"origin"`
	Spacing int         `yaml:"spacing"` // Cells between agents (0 = 1)
}

// SwarmConfig holds agent simulation parameters.
type SwarmConfig struct {
	MaxSteps int `yaml:"max_steps"`
}

// TelemetryConfig holds measurement parameters.
type TelemetryConfig struct {
	Repeat     int `yaml:"repeat"`      // Solves per run
	PerfWindow int `yaml:"perf_window"` // Rolling window for the perf collector
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	Cells   int // Grid.Width * Grid.Height
	Workers int // Solver.Workers with 0 resolved to GOMAXPROCS
	Agents  int // Spawner.CountX * Spawner.CountY
}

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg, err := Defaults()
	if err != nil {
		return nil, err
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := cfg.Merge(data); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()

	return cfg, nil
}

// Defaults returns the embedded default configuration.
func Defaults() (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}
	cfg.computeDerived()
	return cfg, nil
}

// Merge overlays YAML data onto c. Only fields present in data are overwritten,
// except lists, which are replaced wholesale.
func (c *Config) Merge(data []byte) error {
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}
	c.computeDerived()
	return nil
}

// Validate checks that the configuration describes a solvable scenario.
func (c *Config) Validate() error {
	if c.Grid.Width <= 0 || c.Grid.Height <= 0 {
		return fmt.Errorf("%w: grid %dx%d must be positive", ErrInvalid, c.Grid.Width, c.Grid.Height)
	}
	d := c.Destination
	if d.X < 0 || d.Y < 0 || d.X >= c.Grid.Width || d.Y >= c.Grid.Height {
		return fmt.Errorf("%w: destination (%d,%d) outside %dx%d grid", ErrInvalid, d.X, d.Y, c.Grid.Width, c.Grid.Height)
	}
	if c.Solver.Workers < 0 {
		return fmt.Errorf("%w: solver.workers %d is negative", ErrInvalid, c.Solver.Workers)
	}
	if c.Spawner.CountX < 0 || c.Spawner.CountY < 0 || c.Spawner.Spacing < 0 {
		return fmt.Errorf("%w: spawner counts and spacing must not be negative", ErrInvalid)
	}
	if c.Terrain.Enabled && c.Terrain.Scale <= 0 {
		return fmt.Errorf("%w: terrain.scale %v must be positive", ErrInvalid, c.Terrain.Scale)
	}
	if c.Terrain.Border < 0 || c.Terrain.ClearRadius < 0 {
		return fmt.Errorf("%w: terrain border and clear_radius must not be negative", ErrInvalid)
	}
	if c.Swarm.MaxSteps < 0 {
		return fmt.Errorf("%w: swarm.max_steps %d is negative", ErrInvalid, c.Swarm.MaxSteps)
	}
	if c.Telemetry.Repeat < 0 {
		return fmt.Errorf("%w: telemetry.repeat %d is negative", ErrInvalid, c.Telemetry.Repeat)
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.Cells = c.Grid.Width * c.Grid.Height
	c.Derived.Workers = c.Solver.Workers
	if c.Derived.Workers == 0 {
		c.Derived.Workers = runtime.GOMAXPROCS(0)
	}
	c.Derived.Agents = c.Spawner.CountX * c.Spawner.CountY
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
