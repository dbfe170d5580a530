package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error: %v", err)
	}

	if cfg.Simulation.Width != 32 || cfg.Simulation.Height != 24 {
		t.Errorf("simulation size = %gx%g, want 32x24", cfg.Simulation.Width, cfg.Simulation.Height)
	}
	if cfg.Solver.Preconditioner != "jacobi" {
		t.Errorf("preconditioner = %q, want jacobi", cfg.Solver.Preconditioner)
	}
	if cfg.Surface.MinParticlesPerCell != 1 {
		t.Errorf("min_particles_per_cell = %d, want 1", cfg.Surface.MinParticlesPerCell)
	}
	if cfg.Derived.Cols != 33 || cfg.Derived.Rows != 25 {
		t.Errorf("derived grid = %dx%d, want 33x25", cfg.Derived.Cols, cfg.Derived.Rows)
	}
	if cfg.Derived.Cells != 33*25 {
		t.Errorf("derived cells = %d, want %d", cfg.Derived.Cells, 33*25)
	}
}

func TestLoadOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	data := []byte("simulation:\n  width: 8\n  height: 8\nsolver:\n  preconditioner: none\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.Simulation.Width != 8 || cfg.Simulation.Height != 8 {
		t.Errorf("overlay size = %gx%g, want 8x8", cfg.Simulation.Width, cfg.Simulation.Height)
	}
	if cfg.Solver.Preconditioner != "none" {
		t.Errorf("overlay preconditioner = %q, want none", cfg.Solver.Preconditioner)
	}
	// Fields absent from the overlay keep their defaults
	if cfg.Simulation.GravityY != -9.81 {
		t.Errorf("gravity_y = %g, want default -9.81", cfg.Simulation.GravityY)
	}
	if cfg.Solver.MaxIterations != 200 {
		t.Errorf("max_iterations = %d, want default 200", cfg.Solver.MaxIterations)
	}
	if cfg.Derived.Cols != 9 {
		t.Errorf("derived cols = %d, want 9", cfg.Derived.Cols)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !strings.Contains(err.Error(), "reading config file") {
		t.Errorf("error = %v, want reading config file prefix", err)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"zero width", func(c *Config) { c.Simulation.Width = 0 }, "simulation size"},
		{"negative frame time", func(c *Config) { c.Simulation.FrameTime = -1 }, "frame_time"},
		{"zero cfl", func(c *Config) { c.Simulation.CFL = 0 }, "cfl"},
		{"zero substeps", func(c *Config) { c.Simulation.MaxSubsteps = 0 }, "max_substeps"},
		{"bad order", func(c *Config) { c.Simulation.AdvectionOrder = 3 }, "advection_order"},
		{"zero iterations", func(c *Config) { c.Solver.MaxIterations = 0 }, "max_iterations"},
		{"zero tolerance", func(c *Config) { c.Solver.Tolerance = 0 }, "tolerance"},
		{"bad preconditioner", func(c *Config) { c.Solver.Preconditioner = "ilu" }, "preconditioner"},
		{"zero votes", func(c *Config) { c.Surface.MinParticlesPerCell = 0 }, "min_particles_per_cell"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestGridExtent(t *testing.T) {
	tests := []struct {
		size float64
		want int
	}{
		{0, 3},
		{1, 3},
		{2, 3},
		{2.5, 4},
		{8, 9},
	}
	for _, tt := range tests {
		if got := gridExtent(tt.size); got != tt.want {
			t.Errorf("gridExtent(%g) = %d, want %d", tt.size, got, tt.want)
		}
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg := Defaults()
	cfg.Simulation.Width = 12
	path := filepath.Join(t.TempDir(), "snapshot.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML error: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load snapshot error: %v", err)
	}
	if loaded.Simulation.Width != 12 {
		t.Errorf("snapshot width = %g, want 12", loaded.Simulation.Width)
	}
}

func TestCfgPanicsBeforeInit(t *testing.T) {
	saved := global
	global = nil
	defer func() {
		global = saved
		if recover() == nil {
			t.Error("Cfg() did not panic before Init")
		}
	}()
	Cfg()
}
