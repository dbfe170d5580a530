package fluid

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Vec2 is a 2D world-space vector. Arithmetic uses the r2 helpers
// (r2.Add, r2.Sub, r2.Scale, r2.Norm).
type Vec2 = r2.Vec

// Axis indices into Cell.Vel and Cell.Staged.
const (
	AxisX = 0
	AxisY = 1
)

// component returns the axis component of v.
func component(v Vec2, axis int) float64 {
	if axis == AxisX {
		return v.X
	}
	return v.Y
}

// clampBox clamps p into [0,maxX]×[0,maxY].
func clampBox(p Vec2, maxX, maxY float64) Vec2 {
	return Vec2{
		X: math.Min(math.Max(p.X, 0), maxX),
		Y: math.Min(math.Max(p.Y, 0), maxY),
	}
}
