// Package fluid implements an incompressible 2D fluid solver on a staggered
// marker-and-cell grid with marker particles tracking the free surface.
package fluid

import (
	"log/slog"

	"gonum.org/v1/gonum/spatial/r2"
)

// minSpeed is the max-velocity magnitude below which the CFL limit is ignored.
const minSpeed = 1e-9

// Renderer receives a read-only view of the simulation from Solver.Draw. The
// grid and particle slice are only valid for the duration of the call.
type Renderer interface {
	DrawGrid(g *Grid)
	DrawParticles(particles []Vec2)
}

// Solver owns one Grid and one particle set and advances them in place.
// All methods except Post must be called from a single goroutine.
type Solver struct {
	width, height float64
	opts          Options
	logger        *slog.Logger

	grid      *Grid
	particles []Vec2
	gravity   Vec2

	proj   *projector
	marker *marker

	commands   chan Command
	frameReady bool

	step      int64
	frame     int64
	simTime   float64
	lastStep  StepStats
	lastFrame FrameStats
}

// New creates a solver over a width×height domain and seeds the default
// scenario.
func New(width, height float64, opts Options) *Solver {
	opts.normalize()
	s := &Solver{
		width:    width,
		height:   height,
		opts:     opts,
		logger:   opts.Logger,
		proj:     newProjector(opts.Linear),
		marker:   &marker{minPerCell: opts.MinParticlesPerCell},
		commands: make(chan Command, opts.CommandBuffer),
		gravity:  opts.Gravity,
	}
	s.Reset()
	return s
}

// Reset discards all state and seeds the default scenario.
func (s *Solver) Reset() {
	w := float64(gridExtent(s.width) - 1)
	h := float64(gridExtent(s.height) - 1)
	s.ResetWith(s.opts.Scenario(w, h))
}

// ResetWith discards grid and particle state and seeds sc. The current
// gravity is kept.
func (s *Solver) ResetWith(sc Scenario) {
	s.grid = NewGrid(s.width, s.height)
	s.step, s.frame, s.simTime = 0, 0, 0
	s.lastStep, s.lastFrame = StepStats{}, FrameStats{}
	s.frameReady = false

	boundaryCollide(s.grid)
	s.particles = append(s.particles[:0], sc.Particles...)
	fluid := s.marker.mark(s.grid, s.particles)

	// Faces start at rest, so a unit-time force sets them to the velocity.
	applyForce(s.grid, sc.Velocity, 1)
	boundaryCollide(s.grid)

	s.logger.Debug("reset",
		"scenario", sc.Name,
		"particles", len(s.particles),
		"fluid_cells", fluid,
		"cols", s.grid.Cols(),
		"rows", s.grid.Rows(),
	)
}

// AdvanceFrame advances simulated time by one frame using CFL-limited
// substeps, then marks a frame ready for Draw.
func (s *Solver) AdvanceFrame() {
	s.drainCommands()

	remaining := s.opts.FrameTime
	substeps := 0
	clamped := false
	for remaining > 0 {
		step := remaining
		if speed := r2.Norm(s.grid.MaxVelocity()); speed > minSpeed {
			step = min(remaining, s.opts.CFL/speed)
		}
		if substeps == s.opts.MaxSubsteps-1 && step < remaining {
			// Last allowed substep takes whatever time is left.
			step = remaining
			clamped = true
		}
		s.AdvanceTimeStep(step)
		remaining -= step
		substeps++
	}

	s.frame++
	s.lastFrame = FrameStats{
		Frame:    s.frame,
		Substeps: substeps,
		SimTime:  s.simTime,
		Clamped:  clamped,
	}
	if clamped {
		s.logger.Warn("substep limit reached", "frame", s.lastFrame, "max_substeps", s.opts.MaxSubsteps)
	}
	s.frameReady = true
}

// AdvanceTimeStep runs one full pipeline step of length dt.
func (s *Solver) AdvanceTimeStep(dt float64) {
	t := s.opts.Timer
	if t != nil {
		t.StartStep()
	}
	phase := func(name string) {
		if t != nil {
			t.StartPhase(name)
		}
	}

	phase(PhaseAdvect)
	advectVelocity(s.grid, dt, s.opts.AdvectionOrder)

	phase(PhaseForces)
	applyForce(s.grid, s.gravity, dt)

	phase(PhaseBoundary)
	boundaryCollide(s.grid)

	phase(PhaseProject)
	proj := s.proj.project(s.grid, dt)

	phase(PhaseBoundary)
	boundaryCollide(s.grid)

	phase(PhaseParticles)
	moveParticles(s.grid, s.particles, dt)

	phase(PhaseMark)
	fluid := s.marker.mark(s.grid, s.particles)
	pockets := airPockets(s.grid)

	if t != nil {
		t.EndStep()
	}

	s.step++
	s.simTime += dt
	s.lastStep = StepStats{
		Step:       s.step,
		Dt:         dt,
		MaxSpeed:   r2.Norm(s.grid.MaxVelocity()),
		FluidCells: fluid,
		AirPockets: pockets,
		Particles:  len(s.particles),
		Projection: proj,
	}

	if !proj.Converged {
		s.logger.Warn("pressure solve did not converge",
			"step", s.step,
			"iterations", proj.Iterations,
			"residual", proj.Residual,
		)
	}
	if pockets > 0 {
		s.logger.Debug("air pockets", "step", s.step, "count", pockets)
	}
	if s.opts.OnStep != nil {
		s.opts.OnStep(s.lastStep)
	}
}

// Draw hands the current grid and particles to r if a new frame is ready and
// reports whether it did.
func (s *Solver) Draw(r Renderer) bool {
	if !s.frameReady {
		return false
	}
	r.DrawGrid(s.grid)
	r.DrawParticles(s.particles)
	s.frameReady = false
	return true
}

// FrameReady reports whether AdvanceFrame has produced a frame not yet drawn.
func (s *Solver) FrameReady() bool { return s.frameReady }

// SimulationWidth returns the world-space width of the simulated domain.
func (s *Solver) SimulationWidth() float64 { return s.grid.Width() }

// SimulationHeight returns the world-space height of the simulated domain.
func (s *Solver) SimulationHeight() float64 { return s.grid.Height() }

// Gravity returns the current global force.
func (s *Solver) Gravity() Vec2 { return s.gravity }

// Velocity samples the current velocity field at p.
func (s *Solver) Velocity(p Vec2) Vec2 { return s.grid.Velocity(p) }

// Grid returns the owned grid. Callers must not retain it across steps.
func (s *Solver) Grid() *Grid { return s.grid }

// Particles returns the owned particle slice. Callers must not retain it
// across steps.
func (s *Solver) Particles() []Vec2 { return s.particles }

// LastStep returns stats for the most recent timestep.
func (s *Solver) LastStep() StepStats { return s.lastStep }

// LastFrame returns stats for the most recent frame.
func (s *Solver) LastFrame() FrameStats { return s.lastFrame }

// MoveParticles advances every particle through the current field.
func (s *Solver) MoveParticles(dt float64) { moveParticles(s.grid, s.particles, dt) }

// MarkCells reclassifies FLUID/AIR cells from particle occupancy and returns
// the FLUID cell count.
func (s *Solver) MarkCells() int { return s.marker.mark(s.grid, s.particles) }

// BoundaryCollide enforces the wall conditions on the outer ring.
func (s *Solver) BoundaryCollide() { boundaryCollide(s.grid) }
