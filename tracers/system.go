package tracers

import (
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/macfluid/config"
	"github.com/pthm-cable/macfluid/fluid"
)

// Field is the read-only view of the simulation tracers need.
// *fluid.Solver satisfies it.
type Field interface {
	Velocity(p fluid.Vec2) fluid.Vec2
	Particles() []fluid.Vec2
	SimulationWidth() float64
	SimulationHeight() float64
}

// Options configures a System.
type Options struct {
	Count     int     // Live tracer cap
	Lifespan  float64 // Seconds of simulated time
	SpawnRate int     // Max spawns per Update
	Jitter    float64 // Spawn offset from the seed particle, in cells
}

// OptionsFromConfig maps the tracers config section onto Options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Count:     cfg.Tracers.Count,
		Lifespan:  cfg.Tracers.Lifespan,
		SpawnRate: cfg.Tracers.SpawnRate,
		Jitter:    0.5,
	}
}

// System owns the tracer world.
type System struct {
	opts Options
	rng  *rand.Rand

	world  *ecs.World
	mapper *ecs.Map3[Position, Age, Trail]
	filter *ecs.Filter3[Position, Age, Trail]

	count int
	dead  []ecs.Entity
}

// NewSystem creates an empty tracer system.
func NewSystem(opts Options, rng *rand.Rand) *System {
	world := ecs.NewWorld()
	return &System{
		opts:   opts,
		rng:    rng,
		world:  world,
		mapper: ecs.NewMap3[Position, Age, Trail](world),
		filter: ecs.NewFilter3[Position, Age, Trail](world),
	}
}

// Count returns the number of live tracers.
func (s *System) Count() int { return s.count }

// Update advances live tracers by dt, retires expired or escaped ones and
// spawns replacements near fluid particles.
func (s *System) Update(f Field, dt float64) {
	w, h := f.SimulationWidth(), f.SimulationHeight()

	s.dead = s.dead[:0]
	query := s.filter.Query()
	for query.Next() {
		pos, age, trail := query.Get()

		p := pos.Vec()
		v := f.Velocity(p)
		trail.Push(p)
		pos.X += v.X * dt
		pos.Y += v.Y * dt
		age.Elapsed += dt

		if age.Elapsed >= age.Lifespan || pos.X < 0 || pos.Y < 0 || pos.X > w || pos.Y > h {
			s.dead = append(s.dead, query.Entity())
		}
	}

	// Remove after iteration completes
	for _, e := range s.dead {
		s.world.RemoveEntity(e)
		s.count--
	}

	s.spawn(f.Particles(), w, h)
}

func (s *System) spawn(seeds []fluid.Vec2, w, h float64) {
	if len(seeds) == 0 {
		return
	}
	n := min(s.opts.SpawnRate, s.opts.Count-s.count)
	for i := 0; i < n; i++ {
		seed := seeds[s.rng.Intn(len(seeds))]
		pos := Position{
			X: clamp(seed.X+(s.rng.Float64()*2-1)*s.opts.Jitter, 0, w),
			Y: clamp(seed.Y+(s.rng.Float64()*2-1)*s.opts.Jitter, 0, h),
		}
		// Stagger lifespans so tracers do not expire in lockstep.
		age := Age{Lifespan: s.opts.Lifespan * (0.5 + 0.5*s.rng.Float64())}
		trail := Trail{}
		s.mapper.NewEntity(&pos, &age, &trail)
		s.count++
	}
}

// Clear removes every tracer.
func (s *System) Clear() {
	s.world.RemoveEntities(s.filter.Batch(), nil)
	s.count = 0
}

// Each calls fn for every live tracer with its position, trail (oldest
// first) and remaining life in [0, 1]. The trail slice is reused between
// calls.
func (s *System) Each(fn func(pos fluid.Vec2, trail []fluid.Vec2, fade float64)) {
	var buf []fluid.Vec2
	query := s.filter.Query()
	for query.Next() {
		pos, age, trail := query.Get()
		buf = trail.Points(buf[:0])
		fn(pos.Vec(), buf, age.Fade())
	}
}

func clamp(v, lo, hi float64) float64 {
	return max(lo, min(hi, v))
}
