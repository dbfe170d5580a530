package fluid

import "fmt"

// CellType classifies a grid cell.
type CellType uint8

const (
	Air CellType = iota
	Fluid
	Solid
)

func (t CellType) String() string {
	switch t {
	case Air:
		return "air"
	case Fluid:
		return "fluid"
	case Solid:
		return "solid"
	default:
		return fmt.Sprintf("CellType(%d)", uint8(t))
	}
}

// Cell holds the staggered state of one grid cell.
//
// Vel[AxisX] is sampled at the middle of the cell's left face (x, y+0.5) and
// Vel[AxisY] at the middle of its bottom face (x+0.5, y). Staged receives
// advected values until CommitStaged copies them into Vel.
type Cell struct {
	Pressure float64
	Vel      [2]float64
	Staged   [2]float64
	Type     CellType
}

// CommitStaged replaces the live velocity with the staged one.
func (c *Cell) CommitStaged() {
	c.Vel = c.Staged
}

// Direction names a forward neighbor in the adjacency table.
type Direction int

const (
	PosX  Direction = iota // (x+1, y)
	PosY                   // (x, y+1)
	PosXY                  // (x+1, y+1)
)

const noNeighbor = -1
