package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/macfluid/camera"
	"github.com/pthm-cable/macfluid/fluid"
	"github.com/pthm-cable/macfluid/tracers"
)

// TracerRenderer draws dye tracers with fading trails.
type TracerRenderer struct {
	view    *camera.Viewport
	Enabled bool
	Size    float32

	strip []rl.Vector2
}

// NewTracerRenderer creates a tracer renderer drawing through view.
func NewTracerRenderer(view *camera.Viewport) *TracerRenderer {
	return &TracerRenderer{view: view, Enabled: true, Size: 2}
}

// Draw renders every live tracer in sys.
func (r *TracerRenderer) Draw(sys *tracers.System) {
	if !r.Enabled {
		return
	}
	sys.Each(func(pos fluid.Vec2, trail []fluid.Vec2, fade float64) {
		c := Faded(ColorTracer, fade)

		r.strip = r.strip[:0]
		for _, p := range trail {
			sx, sy := r.view.WorldToScreen(float32(p.X), float32(p.Y))
			r.strip = append(r.strip, rl.NewVector2(sx, sy))
		}
		sx, sy := r.view.WorldToScreen(float32(pos.X), float32(pos.Y))
		head := rl.NewVector2(sx, sy)
		r.strip = append(r.strip, head)

		if len(r.strip) > 1 {
			rl.DrawLineStrip(r.strip, Faded(c, 0.5))
		}
		rl.DrawCircleV(head, r.Size, c)
	})
}
