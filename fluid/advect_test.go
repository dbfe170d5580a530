package fluid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/spatial/r2"
)

func TestAdvectUniformFieldUnchanged(t *testing.T) {
	for _, order := range []int{1, 2} {
		g := NewGrid(5, 4)
		for i := range g.cells {
			g.cells[i].Vel = [2]float64{0.75, -0.5}
		}

		advectVelocity(g, 0.2, order)

		for i, c := range g.cells {
			assert.InDelta(t, 0.75, c.Vel[AxisX], 1e-12, "order %d cell %d", order, i)
			assert.InDelta(t, -0.5, c.Vel[AxisY], 1e-12, "order %d cell %d", order, i)
		}
	}
}

func TestAdvectReadsPriorField(t *testing.T) {
	g := NewGrid(6, 5)
	randomField(g, 4)
	prior := g.Clone()
	const dt = 0.3

	advectVelocity(g, dt, 1)

	back := func(p Vec2) Vec2 {
		return clampBox(r2.Sub(p, r2.Scale(dt, prior.Velocity(p))), prior.Width(), prior.Height())
	}
	for y := 0; y < g.Rows(); y++ {
		for x := 0; x < g.Cols(); x++ {
			px := Vec2{X: float64(x), Y: float64(y) + 0.5}
			py := Vec2{X: float64(x) + 0.5, Y: float64(y)}
			c := g.At(x, y)
			assert.InDelta(t, prior.Velocity(back(px)).X, c.Vel[AxisX], 1e-12, "vel[X] at (%d,%d)", x, y)
			assert.InDelta(t, prior.Velocity(back(py)).Y, c.Vel[AxisY], 1e-12, "vel[Y] at (%d,%d)", x, y)
			assert.Equal(t, c.Vel, c.Staged)
		}
	}
}

func TestAdvectShear(t *testing.T) {
	// vel[X] = y carries itself along X only, so a straight trace is exact
	// away from the walls.
	g := NewGrid(8, 8)
	for y := 0; y < g.Rows(); y++ {
		for x := 0; x < g.Cols(); x++ {
			g.At(x, y).Vel = [2]float64{float64(y) + 0.5, 0}
		}
	}

	advectVelocity(g, 0.1, 2)

	for y := 0; y < g.Rows()-1; y++ {
		for x := 2; x < g.Cols()-1; x++ {
			assert.InDelta(t, float64(y)+0.5, g.At(x, y).Vel[AxisX], 1e-12, "(%d,%d)", x, y)
		}
	}
}

func TestApplyForceBordersFluid(t *testing.T) {
	g := NewGrid(3, 3)
	g.At(1, 1).Type = Fluid

	applyForce(g, Vec2{X: 2, Y: -10}, 0.1)

	for y := 0; y < g.Rows(); y++ {
		for x := 0; x < g.Cols(); x++ {
			c := g.At(x, y)
			wantX, wantY := 0.0, 0.0
			if (x == 1 || x == 2) && y == 1 {
				wantX = 0.2
			}
			if x == 1 && (y == 1 || y == 2) {
				wantY = -1
			}
			assert.InDelta(t, wantX, c.Vel[AxisX], 1e-12, "vel[X] at (%d,%d)", x, y)
			assert.InDelta(t, wantY, c.Vel[AxisY], 1e-12, "vel[Y] at (%d,%d)", x, y)
		}
	}
}
