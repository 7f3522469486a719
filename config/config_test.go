package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") failed: %v", err)
	}
	if cfg.Grid.Width != 100 || cfg.Grid.Height != 100 {
		t.Errorf("grid = %dx%d, want 100x100", cfg.Grid.Width, cfg.Grid.Height)
	}
	if cfg.Destination != (PointConfig{X: 50, Y: 50}) {
		t.Errorf("destination = %+v, want (50,50)", cfg.Destination)
	}
	if len(cfg.Blockers) != 3 {
		t.Errorf("len(blockers) = %d, want 3", len(cfg.Blockers))
	}
	if cfg.Derived.Cells != 10000 {
		t.Errorf("Derived.Cells = %d, want 10000", cfg.Derived.Cells)
	}
	if cfg.Derived.Workers < 1 {
		t.Errorf("Derived.Workers = %d, want >= 1", cfg.Derived.Workers)
	}
	if cfg.Derived.Agents != 100 {
		t.Errorf("Derived.Agents = %d, want 100", cfg.Derived.Agents)
	}
}

// TestLoadOverlay verifies a user file only overrides the keys it sets.
func TestLoadOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	data := []byte(`
grid:
  width: 40
destination:
  x: 3
  y: 4
blockers: []
solver:
  workers: 2
`)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("writing scenario: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Grid.Width != 40 || cfg.Grid.Height != 100 {
		t.Errorf("grid = %dx%d, want 40x100", cfg.Grid.Width, cfg.Grid.Height)
	}
	if cfg.Destination != (PointConfig{X: 3, Y: 4}) {
		t.Errorf("destination = %+v, want (3,4)", cfg.Destination)
	}
	if len(cfg.Blockers) != 0 {
		t.Errorf("len(blockers) = %d, want 0", len(cfg.Blockers))
	}
	if cfg.Derived.Workers != 2 {
		t.Errorf("Derived.Workers = %d, want 2", cfg.Derived.Workers)
	}
	if cfg.Swarm.MaxSteps != 1000 {
		t.Errorf("swarm.max_steps = %d, want default 1000", cfg.Swarm.MaxSteps)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Load of a missing file succeeded")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"zero width", func(c *Config) { c.Grid.Width = 0 }},
		{"negative height", func(c *Config) { c.Grid.Height = -3 }},
		{"destination outside", func(c *Config) { c.Destination.X = c.Grid.Width }},
		{"negative destination", func(c *Config) { c.Destination.Y = -1 }},
		{"negative workers", func(c *Config) { c.Solver.Workers = -1 }},
		{"negative spawner", func(c *Config) { c.Spawner.CountX = -1 }},
		{"terrain zero scale", func(c *Config) { c.Terrain.Enabled = true; c.Terrain.Scale = 0 }},
		{"negative terrain border", func(c *Config) { c.Terrain.Border = -1 }},
		{"negative steps", func(c *Config) { c.Swarm.MaxSteps = -1 }},
		{"negative repeat", func(c *Config) { c.Telemetry.Repeat = -1 }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := Defaults()
			if err != nil {
				t.Fatalf("Defaults failed: %v", err)
			}
			tc.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
				t.Errorf("Validate() = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg, err := Defaults()
	if err != nil {
		t.Fatalf("Defaults failed: %v", err)
	}
	cfg.Grid.Width = 64
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML failed: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Grid.Width != 64 {
		t.Errorf("grid.width = %d, want 64", loaded.Grid.Width)
	}
	if len(loaded.Blockers) != len(cfg.Blockers) {
		t.Errorf("len(blockers) = %d, want %d", len(loaded.Blockers), len(cfg.Blockers))
	}
}

func TestCfgBeforeInitPanics(t *testing.T) {
	saved := global
	global = nil
	defer func() {
		global = saved
		if recover() == nil {
			t.Error("Cfg() before Init did not panic")
		}
	}()
	Cfg()
}

func TestMustInit(t *testing.T) {
	saved := global
	defer func() { global = saved }()

	MustInit("")
	if Cfg().Grid.Width != 100 {
		t.Errorf("Grid.Width = %d, want 100", Cfg().Grid.Width)
	}

	defer func() {
		if recover() == nil {
			t.Error("MustInit with a missing file did not panic")
		}
	}()
	MustInit("/nonexistent/config.yaml")
}
