package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/macfluid/fluid"
)

// maxGravity bounds the gravity sliders on each axis.
const maxGravity = 20

// Actions reports what the user asked for through the controls panel this
// frame.
type Actions struct {
	TogglePause    bool
	Step           bool
	Reset          bool
	GravityChanged bool
	Gravity        fluid.Vec2
}

// Any reports whether any action was requested.
func (a Actions) Any() bool {
	return a.TogglePause || a.Step || a.Reset || a.GravityChanged
}

// ControlsPanel renders the right-side panel with simulation buttons,
// gravity sliders and overlay toggles.
type ControlsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	visible  bool
}

// NewControlsPanel creates a new controls panel.
func NewControlsPanel(x, y, width int32) *ControlsPanel {
	return &ControlsPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
		visible:  true,
	}
}

// SetPosition updates the panel position.
func (c *ControlsPanel) SetPosition(x, y int32) {
	c.x = x
	c.y = y
}

// IsVisible returns whether the panel is shown.
func (c *ControlsPanel) IsVisible() bool {
	return c.visible
}

// Toggle switches panel visibility.
func (c *ControlsPanel) Toggle() bool {
	c.visible = !c.visible
	return c.visible
}

// Contains reports whether a screen point lies over the panel, so callers can
// skip camera input there.
func (c *ControlsPanel) Contains(x, y float32, overlays *OverlayRegistry) bool {
	if !c.visible {
		return false
	}
	r := rl.NewRectangle(float32(c.x), float32(c.y), float32(c.width), float32(c.height(overlays)))
	return rl.CheckCollisionPointRec(rl.NewVector2(x, y), r)
}

func (c *ControlsPanel) height(overlays *OverlayRegistry) int32 {
	t := c.renderer.Theme
	items := 0
	for _, cat := range overlays.Categories() {
		items += len(overlays.ByCategory(cat)) + 1
	}
	controls := t.ButtonHeight + 4 + (t.LineHeight+22)*2 + t.LineHeight
	return t.Padding*3 + t.LineHeight + controls + int32(items)*t.LineHeight
}

// Draw renders the panel and returns the actions triggered this frame.
func (c *ControlsPanel) Draw(overlays *OverlayRegistry, paused bool, gravity fluid.Vec2) Actions {
	var act Actions
	if !c.visible {
		return act
	}

	r := c.renderer
	t := r.Theme
	r.DrawPanel(c.x, c.y, c.width, c.height(overlays))

	x := float32(c.x + t.Padding)
	y := c.y + t.Padding
	inner := float32(c.width - t.Padding*2)

	y = r.DrawSectionHeader(int32(x), y, "Simulation")

	bw := (inner - 8) / 3
	bh := float32(t.ButtonHeight)
	if gui.Button(rl.Rectangle{X: x, Y: float32(y), Width: bw, Height: bh}, toggleText(paused, "Resume", "Pause")) {
		act.TogglePause = true
	}
	if gui.Button(rl.Rectangle{X: x + bw + 4, Y: float32(y), Width: bw, Height: bh}, "Step") {
		act.Step = true
	}
	if gui.Button(rl.Rectangle{X: x + 2*(bw+4), Y: float32(y), Width: bw, Height: bh}, "Reset") {
		act.Reset = true
	}
	y += t.ButtonHeight + 4

	gx := c.slider(x, &y, inner, "Gravity X", float32(gravity.X))
	gy := c.slider(x, &y, inner, "Gravity Y", float32(gravity.Y))
	if float64(gx) != gravity.X || float64(gy) != gravity.Y {
		act.GravityChanged = true
		act.Gravity = fluid.Vec2{X: float64(gx), Y: float64(gy)}
	}
	y += t.LineHeight

	for _, category := range overlays.Categories() {
		rl.DrawText(categoryLabel(category), int32(x), y, t.HeaderFontSize, t.SectionHeader)
		y += t.LineHeight
		for _, desc := range overlays.ByCategory(category) {
			c.drawToggle(int32(x), y, desc, overlays.IsEnabled(desc.ID), int32(inner))
			y += t.LineHeight
		}
	}
	return act
}

func (c *ControlsPanel) slider(x float32, y *int32, width float32, label string, value float32) float32 {
	t := c.renderer.Theme
	rl.DrawText(fmt.Sprintf("%s: %.2f", label, value), int32(x), *y, t.FontSize, t.LabelColor)
	*y += t.LineHeight
	v := gui.SliderBar(
		rl.Rectangle{X: x + 24, Y: float32(*y), Width: width - 48, Height: 16},
		fmt.Sprintf("%d", -maxGravity), fmt.Sprintf("%d", maxGravity),
		value, -maxGravity, maxGravity,
	)
	*y += 22
	return v
}

// drawToggle draws a single overlay toggle line.
func (c *ControlsPanel) drawToggle(x, y int32, desc OverlayDescriptor, enabled bool, width int32) {
	r := c.renderer

	statusColor := rl.Color{R: 80, G: 80, B: 80, A: 255}
	if enabled {
		statusColor = rl.Color{R: 100, G: 200, B: 100, A: 255}
	}
	rl.DrawRectangle(x, y+2, 8, 8, statusColor)

	nameColor := r.Theme.LabelColor
	if enabled {
		nameColor = rl.White
	}
	rl.DrawText(desc.Name, x+14, y, r.Theme.FontSize, nameColor)

	if desc.KeyLabel != "" {
		keyText := fmt.Sprintf("[%s]", desc.KeyLabel)
		keyWidth := rl.MeasureText(keyText, r.Theme.FontSize)
		rl.DrawText(keyText, x+width-keyWidth, y, r.Theme.FontSize, rl.Color{R: 150, G: 150, B: 150, A: 255})
	}
}

// categoryLabel returns a display label for a category.
func categoryLabel(cat string) string {
	switch cat {
	case "field":
		return "Field"
	case "velocity":
		return "Velocity"
	case "markers":
		return "Markers"
	default:
		return cat
	}
}

func toggleText(on bool, ifOn, ifOff string) string {
	if on {
		return ifOn
	}
	return ifOff
}
