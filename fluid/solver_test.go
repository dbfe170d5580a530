package fluid

import (
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm-cable/macfluid/config"
)

func quietOptions() Options {
	opts := DefaultOptions()
	opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	return opts
}

type recordingRenderer struct {
	grids     int
	particles int
	lastCols  int
}

func (r *recordingRenderer) DrawGrid(g *Grid) {
	r.grids++
	r.lastCols = g.Cols()
}

func (r *recordingRenderer) DrawParticles(p []Vec2) {
	r.particles = len(p)
}

type recordingTimer struct {
	steps, ends int
	phases      []string
}

func (r *recordingTimer) StartStep()          { r.steps++ }
func (r *recordingTimer) StartPhase(p string) { r.phases = append(r.phases, p) }
func (r *recordingTimer) EndStep()            { r.ends++ }

func TestNewSeedsScenario(t *testing.T) {
	s := New(8, 6, quietOptions())

	assert.Equal(t, 8.0, s.SimulationWidth())
	assert.Equal(t, 6.0, s.SimulationHeight())
	// Default dam break: ceil(0.4*8) x ceil(0.75*6) cells, 4 particles each.
	assert.Len(t, s.Particles(), 4*5*4)
	assert.Equal(t, 4*5, s.Grid().CountType(Fluid))
	assert.Equal(t, s.Grid().Cols()+s.Grid().Rows()-1, s.Grid().CountType(Solid))
	assert.Equal(t, Vec2{Y: -9.81}, s.Gravity())
	assert.False(t, s.FrameReady())
}

func TestDrawGate(t *testing.T) {
	s := New(6, 6, quietOptions())
	r := &recordingRenderer{}

	assert.False(t, s.Draw(r), "draw before any frame")
	assert.Zero(t, r.grids)

	s.AdvanceFrame()
	assert.True(t, s.Draw(r))
	assert.Equal(t, 1, r.grids)
	assert.Equal(t, len(s.Particles()), r.particles)
	assert.Equal(t, s.Grid().Cols(), r.lastCols)

	assert.False(t, s.Draw(r), "frame consumed")
	assert.Equal(t, 1, r.grids)
}

func TestAdvanceFrameAtRest(t *testing.T) {
	opts := quietOptions()
	opts.Gravity = Vec2{}
	s := New(6, 6, opts)

	s.AdvanceFrame()

	f := s.LastFrame()
	assert.Equal(t, 1, f.Substeps)
	assert.False(t, f.Clamped)
	assert.InDelta(t, opts.FrameTime, f.SimTime, 1e-15)

	st := s.LastStep()
	assert.False(t, math.IsNaN(st.Dt) || math.IsInf(st.Dt, 0))
	assert.Equal(t, opts.FrameTime, st.Dt)
	assert.Zero(t, st.MaxSpeed)
}

func TestAdvanceFrameCFLSubsteps(t *testing.T) {
	opts := quietOptions()
	opts.Gravity = Vec2{}
	opts.FrameTime = 1
	opts.CFL = 1
	opts.MaxSubsteps = 1000
	s := New(10, 10, opts)
	s.ResetWith(Scenario{
		Particles: DamBreak(10, 10, 1, 1, 1).Particles,
		Velocity:  Vec2{X: 4},
	})

	s.AdvanceFrame()

	f := s.LastFrame()
	assert.Greater(t, f.Substeps, 1)
	assert.False(t, f.Clamped)
	assert.InDelta(t, 1.0, f.SimTime, 1e-9)
}

func TestAdvanceFrameSubstepLimit(t *testing.T) {
	opts := quietOptions()
	opts.FrameTime = 1
	opts.MaxSubsteps = 2
	steps := 0
	opts.OnStep = func(StepStats) { steps++ }
	s := New(10, 10, opts)
	s.ResetWith(Scenario{
		Particles: DamBreak(10, 10, 0.5, 0.5, 2).Particles,
		Velocity:  Vec2{X: 50},
	})

	s.AdvanceFrame()

	f := s.LastFrame()
	assert.Equal(t, 2, f.Substeps)
	assert.True(t, f.Clamped)
	assert.InDelta(t, 1.0, f.SimTime, 1e-12)
	assert.Equal(t, 2, steps)
}

func TestAdvanceTimeStepPhases(t *testing.T) {
	opts := quietOptions()
	timer := &recordingTimer{}
	opts.Timer = timer
	s := New(6, 6, opts)

	s.AdvanceTimeStep(0.01)

	assert.Equal(t, 1, timer.steps)
	assert.Equal(t, 1, timer.ends)
	assert.Equal(t, []string{
		PhaseAdvect, PhaseForces, PhaseBoundary, PhaseProject,
		PhaseBoundary, PhaseParticles, PhaseMark,
	}, timer.phases)
}

func TestAdvanceTimeStepProjects(t *testing.T) {
	s := New(12, 10, quietOptions())
	for i := 0; i < 5; i++ {
		s.AdvanceTimeStep(0.02)
		p := s.LastStep().Projection
		require.Positive(t, p.Unknowns)
		assert.True(t, p.Converged, "step %d residual %g", i, p.Residual)
		assert.LessOrEqual(t, p.DivergenceAfter, p.DivergenceBefore+1e-12)
	}
	assert.Equal(t, int64(5), s.LastStep().Step)
}

func TestFluidFalls(t *testing.T) {
	s := New(8, 8, quietOptions())
	meanY := func() float64 {
		sum := 0.0
		for _, p := range s.Particles() {
			sum += p.Y
		}
		return sum / float64(len(s.Particles()))
	}
	before := meanY()
	for i := 0; i < 10; i++ {
		s.AdvanceFrame()
	}
	assert.Less(t, meanY(), before)
	assert.Len(t, s.Particles(), 4*4*6)
}

func TestDeterministic(t *testing.T) {
	a := New(8, 6, quietOptions())
	b := New(8, 6, quietOptions())
	for i := 0; i < 3; i++ {
		a.AdvanceFrame()
		b.AdvanceFrame()
	}
	assert.Equal(t, a.Particles(), b.Particles())
	assert.Equal(t, a.Grid().cells, b.Grid().cells)
}

func TestCommandQueue(t *testing.T) {
	opts := quietOptions()
	opts.CommandBuffer = 1
	s := New(6, 6, opts)

	require.True(t, s.Post(GravityCommand{Gravity: Vec2{X: 1}}))
	assert.False(t, s.Post(ResetCommand{}), "queue full")
	// Not applied until the next frame.
	assert.Equal(t, Vec2{Y: -9.81}, s.Gravity())

	s.AdvanceFrame()
	assert.Equal(t, Vec2{X: 1}, s.Gravity())
	assert.True(t, s.Post(ResetCommand{}))
}

func TestResetCommand(t *testing.T) {
	s := New(6, 6, quietOptions())
	seeded := append([]Vec2(nil), s.Particles()...)
	for i := 0; i < 3; i++ {
		s.AdvanceFrame()
	}
	require.NotEqual(t, seeded, s.Particles())

	require.True(t, s.Post(ResetCommand{}))
	s.AdvanceFrame()
	assert.Equal(t, int64(1), s.LastFrame().Frame)

	s.Reset()
	assert.Equal(t, seeded, s.Particles())
	assert.Zero(t, s.LastStep().Step)
	assert.False(t, s.FrameReady())
}

func TestResetWithScenario(t *testing.T) {
	s := New(4, 4, quietOptions())
	mask := []bool{
		true, false, false, true,
		false, false, false, false,
		false, true, false, false,
		false, false, false, false,
	}
	sc, err := FromMask(4, 4, mask, 1)
	require.NoError(t, err)

	require.True(t, s.Post(ScenarioCommand{Scenario: sc}))
	s.drainCommands()

	assert.Len(t, s.Particles(), 3)
	assert.Equal(t, 3, s.Grid().CountType(Fluid))
	assert.Equal(t, Fluid, s.Grid().At(3, 0).Type)
	assert.Equal(t, Fluid, s.Grid().At(1, 2).Type)
}

func TestResetWithVelocity(t *testing.T) {
	opts := quietOptions()
	s := New(6, 6, opts)
	s.ResetWith(Scenario{
		Particles: []Vec2{{X: 2.5, Y: 2.5}},
		Velocity:  Vec2{X: 1, Y: 2},
	})
	g := s.Grid()
	assert.Equal(t, [2]float64{1, 2}, g.At(2, 2).Vel)
	// Forward faces bordering the FLUID cell carry the velocity too.
	assert.Equal(t, 1.0, g.At(3, 2).Vel[AxisX])
	assert.Equal(t, 2.0, g.At(2, 3).Vel[AxisY])
	assert.Equal(t, [2]float64{}, g.At(0, 0).Vel)
}

func TestParticlesNotShared(t *testing.T) {
	sc := DamBreak(4, 4, 0.5, 0.5, 1)
	s := New(4, 4, quietOptions())
	s.ResetWith(sc)
	s.MoveParticles(1)
	assert.Equal(t, DamBreak(4, 4, 0.5, 0.5, 1).Particles, sc.Particles)
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.Defaults()
	cfg.Solver.Preconditioner = "none"
	cfg.Scenario.VelocityX = 0.5
	opts := OptionsFromConfig(cfg)

	assert.Equal(t, cfg.Simulation.FrameTime, opts.FrameTime)
	assert.Equal(t, cfg.Simulation.MaxSubsteps, opts.MaxSubsteps)
	assert.Equal(t, Vec2{X: cfg.Simulation.GravityX, Y: cfg.Simulation.GravityY}, opts.Gravity)
	assert.Equal(t, cfg.Solver.MaxIterations, opts.Linear.MaxIterations)
	assert.Equal(t, "none", opts.Linear.Preconditioner.String())
	assert.Equal(t, cfg.Surface.MinParticlesPerCell, opts.MinParticlesPerCell)

	sc := opts.Scenario(32, 24)
	assert.Equal(t, "dam_break", sc.Name)
	assert.Equal(t, 0.5, sc.Velocity.X)
	assert.NotEmpty(t, sc.Particles)
}

func TestStatsLogValue(t *testing.T) {
	st := StepStats{Step: 3, Dt: 0.01, FluidCells: 12}
	v := st.LogValue()
	require.Equal(t, slog.KindGroup, v.Kind())
	attrs := v.Group()
	assert.Equal(t, "step", attrs[0].Key)
	assert.Equal(t, int64(3), attrs[0].Value.Int64())

	f := FrameStats{Frame: 2, Substeps: 4}.LogValue()
	assert.Equal(t, slog.KindGroup, f.Kind())
}

func BenchmarkAdvanceTimeStep(b *testing.B) {
	s := New(32, 24, quietOptions())
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.AdvanceTimeStep(1.0 / 120)
	}
}

func BenchmarkMaxVelocity(b *testing.B) {
	g := linearField(64, 48)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		g.MaxVelocity()
	}
}
