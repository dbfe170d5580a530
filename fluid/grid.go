package fluid

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// ErrIndexOutOfRange is returned by the checked cell accessors.
var ErrIndexOutOfRange = errors.New("index out of range")

// Grid is a dense row-major MAC grid. Cell (x, y) covers [x,x+1]×[y,y+1].
// One extra column and row beyond the simulated extent hold the velocities of
// the far faces, so Width() is Cols()-1 and Height() is Rows()-1.
type Grid struct {
	cols, rows int
	cells      []Cell

	// adj[i][d] is the index of cell i's neighbor in direction d, or noNeighbor.
	adj [][3]int
}

// NewGrid creates an all-AIR grid covering at least width×height world units.
func NewGrid(width, height float64) *Grid {
	g := &Grid{
		cols: gridExtent(width),
		rows: gridExtent(height),
	}
	g.cells = make([]Cell, g.cols*g.rows)
	g.buildAdjacency()
	return g
}

func gridExtent(size float64) int {
	n := 0
	if size > 0 {
		n = int(math.Ceil(size))
	}
	return max(3, n+1)
}

// buildAdjacency computes the forward neighbor table from scratch.
func (g *Grid) buildAdjacency() {
	g.adj = make([][3]int, len(g.cells))
	for y := 0; y < g.rows; y++ {
		for x := 0; x < g.cols; x++ {
			n := [3]int{noNeighbor, noNeighbor, noNeighbor}
			hasX, hasY := x+1 < g.cols, y+1 < g.rows
			if hasX {
				n[PosX] = g.Index(x+1, y)
			}
			if hasY {
				n[PosY] = g.Index(x, y+1)
			}
			if hasX && hasY {
				n[PosXY] = g.Index(x+1, y+1)
			}
			g.adj[g.Index(x, y)] = n
		}
	}
}

// Cols returns the number of stored columns.
func (g *Grid) Cols() int { return g.cols }

// Rows returns the number of stored rows.
func (g *Grid) Rows() int { return g.rows }

// Width returns the simulated world width.
func (g *Grid) Width() float64 { return float64(g.cols - 1) }

// Height returns the simulated world height.
func (g *Grid) Height() float64 { return float64(g.rows - 1) }

// Len returns the number of stored cells.
func (g *Grid) Len() int { return len(g.cells) }

// Index returns the row-major storage index of (x, y). The caller ensures
// (x, y) is in range.
func (g *Grid) Index(x, y int) int { return y*g.cols + x }

// InBounds reports whether (x, y) addresses a stored cell.
func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < g.cols && y < g.rows
}

// At returns the cell at (x, y) without bounds checking.
func (g *Grid) At(x, y int) *Cell { return &g.cells[y*g.cols+x] }

// Cell returns a copy of the cell at (x, y).
func (g *Grid) Cell(x, y int) (Cell, error) {
	if !g.InBounds(x, y) {
		return Cell{}, fmt.Errorf("cell (%d,%d): %w", x, y, ErrIndexOutOfRange)
	}
	return *g.At(x, y), nil
}

// SetVelocity sets both staggered velocity components of the cell at (x, y).
func (g *Grid) SetVelocity(x, y int, v Vec2) error {
	if !g.InBounds(x, y) {
		return fmt.Errorf("cell (%d,%d): %w", x, y, ErrIndexOutOfRange)
	}
	g.At(x, y).Vel = [2]float64{v.X, v.Y}
	return nil
}

// SetType sets the type of the cell at (x, y).
func (g *Grid) SetType(x, y int, t CellType) error {
	if !g.InBounds(x, y) {
		return fmt.Errorf("cell (%d,%d): %w", x, y, ErrIndexOutOfRange)
	}
	g.At(x, y).Type = t
	return nil
}

// Neighbor returns the forward neighbor of (x, y) in direction d, or nil on
// the far edges.
func (g *Grid) Neighbor(x, y int, d Direction) *Cell {
	n := g.adj[g.Index(x, y)][d]
	if n == noNeighbor {
		return nil
	}
	return &g.cells[n]
}

// AllNeighbors reports whether (x, y) has all three forward neighbors.
func (g *Grid) AllNeighbors(x, y int) bool {
	return g.adj[g.Index(x, y)][PosXY] != noNeighbor
}

// faceVel returns the axis velocity stored at index i, or 0 for a missing cell.
func (g *Grid) faceVel(i, axis int) float64 {
	if i == noNeighbor {
		return 0
	}
	return g.cells[i].Vel[axis]
}

// Velocity bilinearly interpolates the staggered field at p. Positions outside
// the simulated extent are clamped onto it.
func (g *Grid) Velocity(p Vec2) Vec2 {
	return Vec2{
		X: g.sampleAxis(p, AxisX),
		Y: g.sampleAxis(p, AxisY),
	}
}

func (g *Grid) sampleAxis(p Vec2, axis int) float64 {
	p = clampBox(p, g.Width(), g.Height())

	// X samples sit at face mid-height, Y samples at face mid-width.
	if axis == AxisX {
		p.Y -= 0.5
	} else {
		p.X -= 0.5
	}
	p.X = math.Max(p.X, 0)
	p.Y = math.Max(p.Y, 0)

	i, j := int(p.X), int(p.Y)
	fx, fy := p.X-float64(i), p.Y-float64(j)

	base := g.Index(i, j)
	n := g.adj[base]
	v00 := g.cells[base].Vel[axis]
	v10 := g.faceVel(n[PosX], axis)
	v01 := g.faceVel(n[PosY], axis)
	v11 := g.faceVel(n[PosXY], axis)

	return (1-fx)*(1-fy)*v00 + fx*(1-fy)*v10 + (1-fx)*fy*v01 + fx*fy*v11
}

// VelocityDivergence returns the net outflow of cell (x, y). Missing forward
// neighbors contribute zero velocity.
func (g *Grid) VelocityDivergence(x, y int) float64 {
	i := g.Index(x, y)
	c := &g.cells[i]
	n := g.adj[i]
	return (g.faceVel(n[PosX], AxisX) - c.Vel[AxisX]) +
		(g.faceVel(n[PosY], AxisY) - c.Vel[AxisY])
}

// MaxVelocity samples every cell center of the simulated extent and returns
// the velocity with the largest magnitude.
func (g *Grid) MaxVelocity() Vec2 {
	var best Vec2
	bestNorm := -1.0
	for y := 0; y < g.rows-1; y++ {
		for x := 0; x < g.cols-1; x++ {
			v := g.Velocity(Vec2{X: float64(x) + 0.5, Y: float64(y) + 0.5})
			if n := r2.Norm2(v); n > bestNorm {
				best, bestNorm = v, n
			}
		}
	}
	return best
}

// TotalAbsDivergence sums |divergence| over the simulated extent, optionally
// restricted to FLUID cells.
func (g *Grid) TotalAbsDivergence(onlyFluid bool) float64 {
	total := 0.0
	for y := 0; y < g.rows-1; y++ {
		for x := 0; x < g.cols-1; x++ {
			if onlyFluid && g.At(x, y).Type != Fluid {
				continue
			}
			total += math.Abs(g.VelocityDivergence(x, y))
		}
	}
	return total
}

// CountType returns the number of cells of type t.
func (g *Grid) CountType(t CellType) int {
	n := 0
	for i := range g.cells {
		if g.cells[i].Type == t {
			n++
		}
	}
	return n
}

// Clone returns a deep copy. Adjacency is rebuilt for the new storage.
func (g *Grid) Clone() *Grid {
	c := &Grid{
		cols:  g.cols,
		rows:  g.rows,
		cells: make([]Cell, len(g.cells)),
	}
	copy(c.cells, g.cells)
	c.buildAdjacency()
	return c
}
