package fluid

import (
	"fmt"
	"math"
)

// Scenario is a set of initial conditions accepted by Solver.ResetWith.
type Scenario struct {
	Name      string
	Particles []Vec2
	Velocity  Vec2 // Initial velocity on FLUID faces
}

// DamBreak fills the lower-left fillX×fillY fraction of a width×height domain
// with perAxis×perAxis particles per cell at fixed sub-cell offsets.
func DamBreak(width, height, fillX, fillY float64, perAxis int) Scenario {
	cols := int(math.Ceil(clampUnit(fillX) * width))
	rows := int(math.Ceil(clampUnit(fillY) * height))
	cols = min(cols, int(math.Ceil(width)))
	rows = min(rows, int(math.Ceil(height)))

	s := Scenario{Name: "dam_break"}
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			s.Particles = appendCell(s.Particles, x, y, perAxis)
		}
	}
	return s
}

// FromMask seeds particles in every cell whose mask entry is true. The mask is
// row-major over a cols×rows region starting at the origin.
func FromMask(cols, rows int, mask []bool, perAxis int) (Scenario, error) {
	if len(mask) != cols*rows {
		return Scenario{}, fmt.Errorf("mask has %d entries, want %d", len(mask), cols*rows)
	}
	s := Scenario{Name: "mask"}
	for i, filled := range mask {
		if filled {
			s.Particles = appendCell(s.Particles, i%cols, i/cols, perAxis)
		}
	}
	return s, nil
}

// appendCell adds perAxis² evenly spaced particles inside cell (x, y).
func appendCell(dst []Vec2, x, y, perAxis int) []Vec2 {
	perAxis = max(perAxis, 1)
	step := 1 / float64(perAxis)
	for j := 0; j < perAxis; j++ {
		for i := 0; i < perAxis; i++ {
			dst = append(dst, Vec2{
				X: float64(x) + (float64(i)+0.5)*step,
				Y: float64(y) + (float64(j)+0.5)*step,
			})
		}
	}
	return dst
}

func clampUnit(f float64) float64 {
	return math.Min(math.Max(f, 0), 1)
}
