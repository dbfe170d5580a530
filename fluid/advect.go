package fluid

import "gonum.org/v1/gonum/spatial/r2"

// advectVelocity moves the velocity field along itself by dt. Every sample
// reads the prior field and writes only Staged; all cells commit together
// after both sweeps.
func advectVelocity(g *Grid, dt float64, order int) {
	w, h := g.Width(), g.Height()
	trace := func(p Vec2) Vec2 {
		if order >= 2 {
			mid := clampBox(r2.Sub(p, r2.Scale(dt/2, g.Velocity(p))), w, h)
			return clampBox(r2.Sub(p, r2.Scale(dt, g.Velocity(mid))), w, h)
		}
		return clampBox(r2.Sub(p, r2.Scale(dt, g.Velocity(p))), w, h)
	}

	for y := 0; y < g.rows; y++ {
		for x := 0; x < g.cols; x++ {
			c := g.At(x, y)
			px := Vec2{X: float64(x), Y: float64(y) + 0.5}
			c.Staged[AxisX] = component(g.Velocity(trace(px)), AxisX)
		}
	}
	for y := 0; y < g.rows; y++ {
		for x := 0; x < g.cols; x++ {
			c := g.At(x, y)
			py := Vec2{X: float64(x) + 0.5, Y: float64(y)}
			c.Staged[AxisY] = component(g.Velocity(trace(py)), AxisY)
		}
	}

	for i := range g.cells {
		g.cells[i].CommitStaged()
	}
}

// applyForce adds force*dt to every face bordering at least one FLUID cell.
func applyForce(g *Grid, force Vec2, dt float64) {
	if force.X == 0 && force.Y == 0 {
		return
	}
	dx, dy := force.X*dt, force.Y*dt
	for y := 0; y < g.rows; y++ {
		for x := 0; x < g.cols; x++ {
			c := g.At(x, y)
			fluid := c.Type == Fluid
			if fluid || (x > 0 && g.At(x-1, y).Type == Fluid) {
				c.Vel[AxisX] += dx
			}
			if fluid || (y > 0 && g.At(x, y-1).Type == Fluid) {
				c.Vel[AxisY] += dy
			}
		}
	}
}
