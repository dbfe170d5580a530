// Package camera maps the bounded, y-up simulation world onto a y-down
// screen.
package camera

// Margin is the world-space border kept visible around the domain.
const Margin = 1

// Viewport fits the simulation domain plus Margin into the screen while
// keeping its aspect ratio. Zoom and pan are applied on top of the fit.
type Viewport struct {
	// Viewport dimensions (screen size)
	ScreenW, ScreenH float32

	// World dimensions
	WorldW, WorldH float32

	// Center is the world point shown at the screen center
	CenterX, CenterY float32

	// Zoom multiplies the fitted scale (1.0 = whole domain visible)
	Zoom             float32
	MinZoom, MaxZoom float32

	fit float32 // Pixels per world unit at Zoom 1
}

// New creates a viewport showing the whole domain.
func New(screenW, screenH, worldW, worldH float32) *Viewport {
	v := &Viewport{
		WorldW:  worldW,
		WorldH:  worldH,
		MinZoom: 1,
		MaxZoom: 8,
	}
	v.Resize(screenW, screenH)
	v.Reset()
	return v
}

// Resize updates the screen dimensions and recomputes the fitted scale.
func (v *Viewport) Resize(screenW, screenH float32) {
	v.ScreenW = screenW
	v.ScreenH = screenH

	paddedW := v.WorldW + 2*Margin
	paddedH := v.WorldH + 2*Margin
	// The tighter axis decides; the other axis gets extra room.
	v.fit = min(screenW/paddedW, screenH/paddedH)
}

// Reset centers the domain at Zoom 1.
func (v *Viewport) Reset() {
	v.CenterX = v.WorldW / 2
	v.CenterY = v.WorldH / 2
	v.Zoom = 1
}

// Scale returns the current pixels per world unit.
func (v *Viewport) Scale() float32 {
	return v.fit * v.Zoom
}

// WorldToScreen converts world coordinates to screen coordinates.
func (v *Viewport) WorldToScreen(wx, wy float32) (sx, sy float32) {
	s := v.Scale()
	sx = v.ScreenW/2 + (wx-v.CenterX)*s
	sy = v.ScreenH/2 - (wy-v.CenterY)*s
	return sx, sy
}

// ScreenToWorld converts screen coordinates to world coordinates.
func (v *Viewport) ScreenToWorld(sx, sy float32) (wx, wy float32) {
	s := v.Scale()
	wx = v.CenterX + (sx-v.ScreenW/2)/s
	wy = v.CenterY - (sy-v.ScreenH/2)/s
	return wx, wy
}

// Pan moves the view by the given delta in screen pixels.
// The center stays inside the padded domain.
func (v *Viewport) Pan(dx, dy float32) {
	s := v.Scale()
	v.CenterX = clamp(v.CenterX-dx/s, -Margin, v.WorldW+Margin)
	v.CenterY = clamp(v.CenterY+dy/s, -Margin, v.WorldH+Margin)
}

// SetZoom sets the zoom level, clamped to min/max.
func (v *Viewport) SetZoom(zoom float32) {
	v.Zoom = clamp(zoom, v.MinZoom, v.MaxZoom)
}

// ZoomBy multiplies the current zoom by the given factor.
func (v *Viewport) ZoomBy(factor float32) {
	v.SetZoom(v.Zoom * factor)
}

// VisibleWorldBounds returns the world-coordinate bounds of the visible area.
func (v *Viewport) VisibleWorldBounds() (minX, minY, maxX, maxY float32) {
	s := v.Scale()
	halfW := v.ScreenW / (2 * s)
	halfH := v.ScreenH / (2 * s)
	return v.CenterX - halfW, v.CenterY - halfH, v.CenterX + halfW, v.CenterY + halfH
}

// clamp restricts a value to a range.
func clamp(x, lo, hi float32) float32 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
