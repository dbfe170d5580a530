package fluid

import (
	"math"

	"github.com/pthm-cable/macfluid/linsolve"
)

// projector assembles and solves the pressure system. Buffers are reused
// across steps.
type projector struct {
	opts linsolve.Options

	unknown []int     // interior cell -> unknown index, or -1
	faces   []int     // interior cell -> open face count
	cells   []int     // unknown index -> interior cell
	b, p    []float64 // right-hand side and pressure, per unknown
}

func newProjector(opts linsolve.Options) *projector {
	return &projector{opts: opts}
}

// forEachFace calls fn once for every face shared by two cells of the
// nx×ny interior sub-grid, with a the left/bottom cell and b the right/top.
func forEachFace(nx, ny int, fn func(a, b int)) {
	for y := 0; y < ny; y++ {
		for x := 0; x < nx; x++ {
			i := y*nx + x
			if x+1 < nx {
				fn(i, i+1)
			}
			if y+1 < ny {
				fn(i, i+nx)
			}
		}
	}
}

// wallDivergence returns the divergence of interior cell (x, y) with faces on
// the sub-grid edge or against SOLID cells carrying zero flux.
func wallDivergence(g *Grid, x, y, nx, ny int) float64 {
	c := g.At(x, y)
	open := func(ox, oy int) bool {
		return ox >= 0 && oy >= 0 && ox < nx && oy < ny && g.At(ox, oy).Type != Solid
	}

	div := 0.0
	if open(x+1, y) {
		div += g.At(x+1, y).Vel[AxisX]
	}
	if open(x-1, y) {
		div -= c.Vel[AxisX]
	}
	if open(x, y+1) {
		div += g.At(x, y+1).Vel[AxisY]
	}
	if open(x, y-1) {
		div -= c.Vel[AxisY]
	}
	return div
}

// assemble numbers the FLUID unknowns of the interior sub-grid and builds
// the pressure matrix. Every shared face is visited exactly once: FLUID|FLUID
// couples both cells, FLUID|AIR adds to the FLUID diagonal only, and faces
// touching SOLID or the sub-grid edge contribute nothing. FLUID cells with no
// open face are left out. Returns nil when there are no unknowns.
func (pr *projector) assemble(g *Grid, dt float64) *linsolve.SymMatrix {
	nx, ny := g.cols-1, g.rows-1
	n := nx * ny
	pr.unknown = resizeInts(pr.unknown, n)
	pr.faces = resizeInts(pr.faces, n)
	for i := 0; i < n; i++ {
		pr.unknown[i] = -1
		pr.faces[i] = 0
	}

	typeOf := func(i int) CellType {
		return g.cells[g.Index(i%nx, i/nx)].Type
	}

	forEachFace(nx, ny, func(a, b int) {
		ta, tb := typeOf(a), typeOf(b)
		if ta == Fluid && tb != Solid {
			pr.faces[a]++
		}
		if tb == Fluid && ta != Solid {
			pr.faces[b]++
		}
	})

	pr.cells = pr.cells[:0]
	for i := 0; i < n; i++ {
		if typeOf(i) == Fluid && pr.faces[i] > 0 {
			pr.unknown[i] = len(pr.cells)
			pr.cells = append(pr.cells, i)
		}
	}
	if len(pr.cells) == 0 {
		return nil
	}

	a := linsolve.NewSymMatrix(len(pr.cells))
	forEachFace(nx, ny, func(ca, cb int) {
		ua, ub := pr.unknown[ca], pr.unknown[cb]
		switch {
		case ua >= 0 && ub >= 0:
			a.AddDiag(ua, dt)
			a.AddDiag(ub, dt)
			a.AddSym(ua, ub, -dt)
		case ua >= 0 && typeOf(cb) == Air:
			a.AddDiag(ua, dt)
		case ub >= 0 && typeOf(ca) == Air:
			a.AddDiag(ub, dt)
		}
	})
	return a
}

// project makes the velocity field divergence-free over FLUID cells.
func (pr *projector) project(g *Grid, dt float64) ProjectionStats {
	nx, ny := g.cols-1, g.rows-1

	a := pr.assemble(g, dt)
	if a == nil {
		for i := range g.cells {
			g.cells[i].Pressure = 0
		}
		return ProjectionStats{Converged: true}
	}

	m := len(pr.cells)
	stats := ProjectionStats{Unknowns: m}
	pr.b = resizeFloats(pr.b, m)
	pr.p = resizeFloats(pr.p, m)

	for k, i := range pr.cells {
		x, y := i%nx, i/nx
		div := wallDivergence(g, x, y, nx, ny)
		stats.DivergenceBefore += math.Abs(div)
		pr.b[k] = -div
		// Warm start from the previous step's pressure.
		pr.p[k] = g.At(x, y).Pressure
	}

	res := linsolve.ConjugateGradient(a, pr.b, pr.p, pr.opts)
	stats.Iterations = res.Iterations
	stats.Residual = res.Residual
	stats.Converged = res.Converged

	// Only unknowns carry pressure.
	for i := range g.cells {
		g.cells[i].Pressure = 0
	}

	for k, i := range pr.cells {
		x, y := i%nx, i/nx
		idx := g.Index(x, y)
		pressure := pr.p[k]
		dp := dt * pressure

		c := &g.cells[idx]
		c.Pressure = pressure
		c.Vel[AxisX] -= dp
		c.Vel[AxisY] -= dp
		if nb := g.adj[idx][PosX]; nb != noNeighbor {
			g.cells[nb].Vel[AxisX] += dp
		}
		if nb := g.adj[idx][PosY]; nb != noNeighbor {
			g.cells[nb].Vel[AxisY] += dp
		}
	}

	for _, i := range pr.cells {
		stats.DivergenceAfter += math.Abs(wallDivergence(g, i%nx, i/nx, nx, ny))
	}

	return stats
}

func resizeInts(s []int, n int) []int {
	if cap(s) < n {
		return make([]int, n)
	}
	return s[:n]
}

func resizeFloats(s []float64, n int) []float64 {
	if cap(s) < n {
		return make([]float64, n)
	}
	return s[:n]
}
