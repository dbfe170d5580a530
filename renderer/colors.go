package renderer

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/macfluid/fluid"
)

// Palette
var (
	ColorBackgroundTop    = rl.Color{R: 18, G: 22, B: 30, A: 255}
	ColorBackgroundBottom = rl.Color{R: 8, G: 10, B: 14, A: 255}

	ColorAir      = rl.Color{R: 0, G: 0, B: 0, A: 0}
	ColorFluid    = rl.Color{R: 60, G: 130, B: 210, A: 150}
	ColorSolid    = rl.Color{R: 90, G: 90, B: 96, A: 255}
	ColorGridLine = rl.Color{R: 255, G: 255, B: 255, A: 40}

	ColorFaceVelocity   = rl.Color{R: 230, G: 70, B: 60, A: 220}
	ColorCenterVelocity = rl.Color{R: 240, G: 210, B: 60, A: 230}
	ColorParticle       = rl.Color{R: 200, G: 235, B: 255, A: 200}
	ColorTracer         = rl.Color{R: 250, G: 120, B: 200, A: 255}
)

// CellColor returns the fill colour for a cell type.
func CellColor(t fluid.CellType) rl.Color {
	switch t {
	case fluid.Fluid:
		return ColorFluid
	case fluid.Solid:
		return ColorSolid
	default:
		return ColorAir
	}
}

// PressureColor maps p onto a blue (low) to red (high) ramp with
// |p| <= scale mapped to the full range. Zero pressure is transparent.
func PressureColor(p, scale float64) rl.Color {
	if scale <= 0 || p == 0 {
		return ColorAir
	}
	t := math.Max(-1, math.Min(1, p/scale))
	a := uint8(math.Abs(t) * 200)
	if t > 0 {
		return rl.Color{R: 255, G: uint8(140 * (1 - t)), B: 40, A: a}
	}
	return rl.Color{R: 40, G: uint8(140 * (1 + t)), B: 255, A: a}
}

// Faded scales the alpha of c by f in [0, 1].
func Faded(c rl.Color, f float64) rl.Color {
	f = math.Max(0, math.Min(1, f))
	c.A = uint8(float64(c.A) * f)
	return c
}
