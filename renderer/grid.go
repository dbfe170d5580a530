package renderer

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/macfluid/camera"
	"github.com/pthm-cable/macfluid/fluid"
)

// Layers selects what GridRenderer draws.
type Layers struct {
	Cells          bool
	Pressure       bool
	GridLines      bool
	FaceVelocity   bool
	CenterVelocity bool
	Particles      bool
}

// DefaultLayers matches the classic debug view.
func DefaultLayers() Layers {
	return Layers{
		Cells:          true,
		GridLines:      true,
		FaceVelocity:   true,
		CenterVelocity: true,
		Particles:      true,
	}
}

// GridRenderer draws the MAC grid and marker particles through a viewport.
// It implements fluid.Renderer.
type GridRenderer struct {
	view   *camera.Viewport
	Layers Layers

	// VelocityScale is the world length drawn per unit of velocity.
	VelocityScale float32
	ParticleSize  float32 // Screen pixels
}

var _ fluid.Renderer = (*GridRenderer)(nil)

// NewGridRenderer creates a renderer drawing through view.
func NewGridRenderer(view *camera.Viewport) *GridRenderer {
	return &GridRenderer{
		view:          view,
		Layers:        DefaultLayers(),
		VelocityScale: 0.25,
		ParticleSize:  1.5,
	}
}

func (r *GridRenderer) point(x, y float32) rl.Vector2 {
	sx, sy := r.view.WorldToScreen(x, y)
	return rl.NewVector2(sx, sy)
}

// cellRect returns the screen rectangle of the unit cell with lower-left
// corner (x, y).
func (r *GridRenderer) cellRect(x, y int) rl.Rectangle {
	tl := r.point(float32(x), float32(y+1))
	s := r.view.Scale()
	return rl.NewRectangle(tl.X, tl.Y, s, s)
}

// DrawGrid renders cell types, pressure, grid lines and velocity vectors.
func (r *GridRenderer) DrawGrid(g *fluid.Grid) {
	cols, rows := g.Cols(), g.Rows()

	if r.Layers.Cells {
		for y := 0; y < rows; y++ {
			for x := 0; x < cols; x++ {
				if c := CellColor(g.At(x, y).Type); c.A > 0 {
					rl.DrawRectangleRec(r.cellRect(x, y), c)
				}
			}
		}
	}

	if r.Layers.Pressure {
		scale := 0.0
		for i := 0; i < g.Len(); i++ {
			scale = math.Max(scale, math.Abs(g.At(i%cols, i/cols).Pressure))
		}
		for y := 0; y < rows; y++ {
			for x := 0; x < cols; x++ {
				if c := PressureColor(g.At(x, y).Pressure, scale); c.A > 0 {
					rl.DrawRectangleRec(r.cellRect(x, y), c)
				}
			}
		}
	}

	if r.Layers.GridLines {
		w, h := float32(cols), float32(rows)
		for x := 0; x <= cols; x++ {
			rl.DrawLineV(r.point(float32(x), 0), r.point(float32(x), h), ColorGridLine)
		}
		for y := 0; y <= rows; y++ {
			rl.DrawLineV(r.point(0, float32(y)), r.point(w, float32(y)), ColorGridLine)
		}
	}

	k := r.VelocityScale
	if r.Layers.FaceVelocity {
		// Staggered samples: x on the left face, y on the bottom face.
		for y := 0; y < rows; y++ {
			for x := 0; x < cols; x++ {
				v := g.At(x, y).Vel
				fx, fy := float32(x), float32(y)
				if v[fluid.AxisX] != 0 {
					rl.DrawLineV(r.point(fx, fy+0.5), r.point(fx+float32(v[fluid.AxisX])*k, fy+0.5), ColorFaceVelocity)
				}
				if v[fluid.AxisY] != 0 {
					rl.DrawLineV(r.point(fx+0.5, fy), r.point(fx+0.5, fy+float32(v[fluid.AxisY])*k), ColorFaceVelocity)
				}
			}
		}
	}

	if r.Layers.CenterVelocity {
		for y := 0.5; y < g.Height(); y++ {
			for x := 0.5; x < g.Width(); x++ {
				v := g.Velocity(fluid.Vec2{X: x, Y: y})
				if v.X == 0 && v.Y == 0 {
					continue
				}
				fx, fy := float32(x), float32(y)
				rl.DrawLineV(r.point(fx, fy), r.point(fx+float32(v.X)*k, fy+float32(v.Y)*k), ColorCenterVelocity)
			}
		}
	}
}

// DrawParticles renders marker particles as small dots.
func (r *GridRenderer) DrawParticles(particles []fluid.Vec2) {
	if !r.Layers.Particles {
		return
	}
	for _, p := range particles {
		rl.DrawCircleV(r.point(float32(p.X), float32(p.Y)), r.ParticleSize, ColorParticle)
	}
}
