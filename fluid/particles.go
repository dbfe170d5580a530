package fluid

import "gonum.org/v1/gonum/spatial/r2"

// moveParticles advances each particle by explicit Euler through the grid
// velocity. Particles are not clamped and may leave the domain.
func moveParticles(g *Grid, particles []Vec2, dt float64) {
	for i, p := range particles {
		particles[i] = r2.Add(p, r2.Scale(dt, g.Velocity(p)))
	}
}

// marker reclassifies FLUID/AIR cells from particle occupancy.
type marker struct {
	minPerCell int
	votes      []int
}

// mark resets every FLUID cell to AIR, then marks a non-SOLID cell FLUID once
// at least minPerCell particles inside [0,W)×[0,H) fall in it. Returns the
// number of FLUID cells.
func (m *marker) mark(g *Grid, particles []Vec2) int {
	for i := range g.cells {
		if g.cells[i].Type == Fluid {
			g.cells[i].Type = Air
		}
	}

	m.votes = resizeInts(m.votes, len(g.cells))
	for i := range m.votes {
		m.votes[i] = 0
	}

	w, h := g.Width(), g.Height()
	for _, p := range particles {
		if p.X < 0 || p.Y < 0 || p.X >= w || p.Y >= h {
			continue
		}
		m.votes[g.Index(int(p.X), int(p.Y))]++
	}

	need := max(m.minPerCell, 1)
	fluid := 0
	for i, v := range m.votes {
		if v >= need && g.cells[i].Type != Solid {
			g.cells[i].Type = Fluid
			fluid++
		}
	}
	return fluid
}

// airPockets counts AIR cells of the simulated extent that touch FLUID and
// have no AIR side neighbor. These are the gaps left by under-seeded regions.
func airPockets(g *Grid) int {
	nx, ny := g.cols-1, g.rows-1
	pockets := 0
	for y := 0; y < ny; y++ {
		for x := 0; x < nx; x++ {
			if g.At(x, y).Type != Air {
				continue
			}
			enclosed, touchesFluid := true, false
			for _, d := range [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
				ox, oy := x+d[0], y+d[1]
				if !g.InBounds(ox, oy) {
					continue
				}
				switch g.At(ox, oy).Type {
				case Fluid:
					touchesFluid = true
				case Air:
					enclosed = false
				}
			}
			if enclosed && touchesFluid {
				pockets++
			}
		}
	}
	return pockets
}
