package fluid

import (
	"log/slog"

	"github.com/pthm-cable/macfluid/config"
	"github.com/pthm-cable/macfluid/linsolve"
)

// Phase names reported to a PhaseTimer during AdvanceTimeStep.
const (
	PhaseAdvect    = "advect"
	PhaseForces    = "forces"
	PhaseBoundary  = "boundary"
	PhaseProject   = "project"
	PhaseParticles = "particles"
	PhaseMark      = "mark"
)

// Phases lists the step phases in execution order.
var Phases = []string{
	PhaseAdvect, PhaseForces, PhaseBoundary, PhaseProject, PhaseParticles, PhaseMark,
}

// PhaseTimer receives per-phase timing callbacks for each timestep.
type PhaseTimer interface {
	StartStep()
	StartPhase(phase string)
	EndStep()
}

// Options configures a Solver.
type Options struct {
	FrameTime      float64 // Simulated seconds per AdvanceFrame
	CFL            float64 // Max cells a sample may travel per substep
	MaxSubsteps    int
	Gravity        Vec2
	AdvectionOrder int // 1 = Euler trace, 2 = RK2 midpoint

	Linear              linsolve.Options
	MinParticlesPerCell int

	// Scenario builds the initial conditions used by Reset.
	// Defaults to a dam break over the lower-left corner.
	Scenario func(width, height float64) Scenario

	CommandBuffer int

	Logger *slog.Logger
	Timer  PhaseTimer
	OnStep func(StepStats)
}

// DefaultOptions returns the options used by the interactive viewer.
func DefaultOptions() Options {
	return Options{
		FrameTime:           1.0 / 30,
		CFL:                 1,
		MaxSubsteps:         16,
		Gravity:             Vec2{Y: -9.81},
		AdvectionOrder:      1,
		Linear:              linsolve.DefaultOptions(),
		MinParticlesPerCell: 1,
		CommandBuffer:       16,
	}
}

// OptionsFromConfig maps loaded configuration onto solver options.
func OptionsFromConfig(cfg *config.Config) Options {
	opts := DefaultOptions()
	opts.FrameTime = cfg.Simulation.FrameTime
	opts.CFL = cfg.Simulation.CFL
	opts.MaxSubsteps = cfg.Simulation.MaxSubsteps
	opts.Gravity = Vec2{X: cfg.Simulation.GravityX, Y: cfg.Simulation.GravityY}
	opts.AdvectionOrder = cfg.Simulation.AdvectionOrder

	opts.Linear.MaxIterations = cfg.Solver.MaxIterations
	opts.Linear.Tolerance = cfg.Solver.Tolerance
	// Validate has already rejected unknown names.
	opts.Linear.Preconditioner, _ = linsolve.ParsePreconditioner(cfg.Solver.Preconditioner)

	opts.MinParticlesPerCell = cfg.Surface.MinParticlesPerCell

	sc := cfg.Scenario
	opts.Scenario = func(width, height float64) Scenario {
		s := DamBreak(width, height, sc.FillX, sc.FillY, sc.ParticlesPerAxis)
		s.Velocity = Vec2{X: sc.VelocityX, Y: sc.VelocityY}
		return s
	}
	return opts
}

func (o *Options) normalize() {
	d := DefaultOptions()
	if o.FrameTime <= 0 {
		o.FrameTime = d.FrameTime
	}
	if o.CFL <= 0 {
		o.CFL = d.CFL
	}
	if o.MaxSubsteps < 1 {
		o.MaxSubsteps = d.MaxSubsteps
	}
	if o.AdvectionOrder < 1 {
		o.AdvectionOrder = 1
	}
	if o.Linear.MaxIterations < 1 {
		o.Linear.MaxIterations = d.Linear.MaxIterations
	}
	if o.Linear.Tolerance <= 0 {
		o.Linear.Tolerance = d.Linear.Tolerance
	}
	if o.MinParticlesPerCell < 1 {
		o.MinParticlesPerCell = 1
	}
	if o.Scenario == nil {
		o.Scenario = func(width, height float64) Scenario {
			return DamBreak(width, height, 0.4, 0.75, 2)
		}
	}
	if o.CommandBuffer < 1 {
		o.CommandBuffer = d.CommandBuffer
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
}
