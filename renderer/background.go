package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/macfluid/camera"
)

// BackgroundRenderer fills the window with a vertical gradient and outlines
// the simulated domain.
type BackgroundRenderer struct {
	view     *camera.Viewport
	top      rl.Color
	bottom   rl.Color
	outline  rl.Color
	viewRect rl.Rectangle
}

// NewBackgroundRenderer creates a new background renderer.
func NewBackgroundRenderer(view *camera.Viewport) *BackgroundRenderer {
	return &BackgroundRenderer{
		view:    view,
		top:     ColorBackgroundTop,
		bottom:  ColorBackgroundBottom,
		outline: rl.Color{R: 255, G: 255, B: 255, A: 90},
	}
}

// Draw renders the gradient and the domain outline.
func (b *BackgroundRenderer) Draw() {
	w, h := int32(b.view.ScreenW), int32(b.view.ScreenH)
	rl.DrawRectangleGradientV(0, 0, w, h, b.top, b.bottom)

	x0, y0 := b.view.WorldToScreen(0, b.view.WorldH)
	x1, y1 := b.view.WorldToScreen(b.view.WorldW, 0)
	b.viewRect = rl.NewRectangle(x0, y0, x1-x0, y1-y0)
	rl.DrawRectangleLinesEx(b.viewRect, 1, b.outline)
}
