// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Screen     ScreenConfig     `yaml:"screen"`
	Simulation SimulationConfig `yaml:"simulation"`
	Solver     SolverConfig     `yaml:"solver"`
	Surface    SurfaceConfig    `yaml:"surface"`
	Scenario   ScenarioConfig   `yaml:"scenario"`
	Tracers    TracersConfig    `yaml:"tracers"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// SimulationConfig holds the domain size and time stepping parameters.
type SimulationConfig struct {
	Width          float64 `yaml:"width"`           // World units, one unit per cell
	Height         float64 `yaml:"height"`          // World units, one unit per cell
	FrameTime      float64 `yaml:"frame_time"`      // Simulated seconds per advanceFrame
	CFL            float64 `yaml:"cfl"`             // Max cells travelled per substep
	MaxSubsteps    int     `yaml:"max_substeps"`    // Bound on substeps per frame
	GravityX       float64 `yaml:"gravity_x"`
	GravityY       float64 `yaml:"gravity_y"`
	AdvectionOrder int     `yaml:"advection_order"` // 1 = Euler trace, 2 = RK2 midpoint
}

// SolverConfig holds pressure solve parameters.
type SolverConfig struct {
	MaxIterations  int     `yaml:"max_iterations"`
	Tolerance      float64 `yaml:"tolerance"`      // Relative residual target
	Preconditioner string  `yaml:"preconditioner"` // "jacobi" or "none"
}

// SurfaceConfig holds free-surface reclassification parameters.
type SurfaceConfig struct {
	MinParticlesPerCell int `yaml:"min_particles_per_cell"` // Votes needed to mark a cell FLUID
}

// ScenarioConfig describes the deterministic scenario seeded on reset.
type ScenarioConfig struct {
	FillX            float64 `yaml:"fill_x"`             // Fraction of width filled from the left
	FillY            float64 `yaml:"fill_y"`             // Fraction of height filled from the bottom
	ParticlesPerAxis int     `yaml:"particles_per_axis"` // Particles per cell = this squared
	VelocityX        float64 `yaml:"velocity_x"`
	VelocityY        float64 `yaml:"velocity_y"`
}

// TracersConfig holds dye tracer parameters for the viewer.
type TracersConfig struct {
	Count     int     `yaml:"count"`
	Lifespan  float64 `yaml:"lifespan"`   // Seconds
	SpawnRate int     `yaml:"spawn_rate"` // Max spawns per update
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow int `yaml:"stats_window"` // Frames per stats window
	PerfWindow  int `yaml:"perf_window"`  // Steps in the perf rolling window
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	Cols, Rows int     // Grid storage size including the velocity border
	Cells      int     // Cols * Rows
	FrameRate  float64 // 1 / FrameTime
}

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

// Defaults returns a fresh copy of the embedded defaults.
func Defaults() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults are invalid: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	cfg.computeDerived()

	return cfg, nil
}

// Validate reports every parameter that would make the solver misbehave.
func (c *Config) Validate() error {
	var errs []error
	if c.Simulation.Width <= 0 || c.Simulation.Height <= 0 {
		errs = append(errs, fmt.Errorf("simulation size must be positive, got %gx%g",
			c.Simulation.Width, c.Simulation.Height))
	}
	if c.Simulation.FrameTime <= 0 {
		errs = append(errs, fmt.Errorf("simulation.frame_time must be positive, got %g", c.Simulation.FrameTime))
	}
	if c.Simulation.CFL <= 0 {
		errs = append(errs, fmt.Errorf("simulation.cfl must be positive, got %g", c.Simulation.CFL))
	}
	if c.Simulation.MaxSubsteps < 1 {
		errs = append(errs, fmt.Errorf("simulation.max_substeps must be at least 1, got %d", c.Simulation.MaxSubsteps))
	}
	if o := c.Simulation.AdvectionOrder; o != 1 && o != 2 {
		errs = append(errs, fmt.Errorf("simulation.advection_order must be 1 or 2, got %d", o))
	}
	if c.Solver.MaxIterations < 1 {
		errs = append(errs, fmt.Errorf("solver.max_iterations must be at least 1, got %d", c.Solver.MaxIterations))
	}
	if c.Solver.Tolerance <= 0 {
		errs = append(errs, fmt.Errorf("solver.tolerance must be positive, got %g", c.Solver.Tolerance))
	}
	switch c.Solver.Preconditioner {
	case "jacobi", "none":
	default:
		errs = append(errs, fmt.Errorf("solver.preconditioner must be jacobi or none, got %q", c.Solver.Preconditioner))
	}
	if c.Surface.MinParticlesPerCell < 1 {
		errs = append(errs, fmt.Errorf("surface.min_particles_per_cell must be at least 1, got %d",
			c.Surface.MinParticlesPerCell))
	}
	return errors.Join(errs...)
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.Cols = gridExtent(c.Simulation.Width)
	c.Derived.Rows = gridExtent(c.Simulation.Height)
	c.Derived.Cells = c.Derived.Cols * c.Derived.Rows
	c.Derived.FrameRate = 1 / c.Simulation.FrameTime

	if c.Scenario.ParticlesPerAxis < 1 {
		c.Scenario.ParticlesPerAxis = 1
	}
	if c.Telemetry.StatsWindow < 1 {
		c.Telemetry.StatsWindow = 30
	}
	if c.Telemetry.PerfWindow < 1 {
		c.Telemetry.PerfWindow = 60
	}
}

// gridExtent mirrors the grid sizing rule: one extra row/column holds the far
// face velocities, and never fewer than three.
func gridExtent(size float64) int {
	n := int(size)
	if float64(n) < size {
		n++
	}
	n++
	if n < 3 {
		n = 3
	}
	return n
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
