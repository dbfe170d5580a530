// Package tracers advects passive dye markers through a velocity field as a
// viewing aid. Tracers are ECS entities and never feed back into the solver.
package tracers

import "github.com/pthm-cable/macfluid/fluid"

// TrailLength is the number of past positions each tracer remembers.
const TrailLength = 12

// Position is a tracer's world position.
type Position struct {
	X, Y float64
}

// Vec returns p as a fluid vector.
func (p Position) Vec() fluid.Vec2 { return fluid.Vec2{X: p.X, Y: p.Y} }

// Age tracks how long a tracer has lived.
type Age struct {
	Elapsed  float64
	Lifespan float64
}

// Fade returns remaining life in [0, 1].
func (a Age) Fade() float64 {
	if a.Lifespan <= 0 {
		return 0
	}
	return max(0, 1-a.Elapsed/a.Lifespan)
}

// Trail is a fixed ring of recent positions, oldest first when read with
// Points.
type Trail struct {
	buf  [TrailLength]fluid.Vec2
	head int
	n    int
}

// Push records p as the newest trail point.
func (t *Trail) Push(p fluid.Vec2) {
	t.buf[t.head] = p
	t.head = (t.head + 1) % TrailLength
	if t.n < TrailLength {
		t.n++
	}
}

// Len returns the number of recorded points.
func (t *Trail) Len() int { return t.n }

// Points appends the trail, oldest first, to dst.
func (t *Trail) Points(dst []fluid.Vec2) []fluid.Vec2 {
	start := (t.head - t.n + TrailLength) % TrailLength
	for i := 0; i < t.n; i++ {
		dst = append(dst, t.buf[(start+i)%TrailLength])
	}
	return dst
}
