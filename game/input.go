package game

import (
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// gravityNudge is the gravity change per arrow key press with Shift held.
const gravityNudge = 1.0

// handleInput processes keyboard and mouse input and reports whether a single
// frame step was requested.
func (g *Game) handleInput() (step bool) {
	g.handleResize()

	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}

	if rl.IsKeyPressed(rl.KeySpace) {
		g.paused = !g.paused
	}
	if rl.IsKeyPressed(rl.KeyN) && g.paused {
		step = true
	}
	if rl.IsKeyPressed(rl.KeyR) {
		g.reset()
	}
	if rl.IsKeyPressed(rl.KeyTab) {
		g.controls.Toggle()
	}
	if rl.IsKeyPressed(rl.KeyF3) {
		g.showPerf = !g.showPerf
	}
	if rl.IsKeyPressed(rl.KeyS) {
		g.saveSnapshot(nil)
	}

	if key := rl.GetKeyPressed(); key != 0 {
		if id, on, ok := g.overlays.HandleKeyPress(key); ok {
			slog.Debug("overlay toggled", "overlay", id, "enabled", on)
			g.sceneDirty = true
		}
	}

	if rl.IsKeyDown(rl.KeyLeftShift) || rl.IsKeyDown(rl.KeyRightShift) {
		g.handleGravityKeys()
	} else {
		g.handleCameraInput()
	}
	return step
}

// handleGravityKeys tilts gravity with Shift+arrows.
func (g *Game) handleGravityKeys() {
	v := g.gravity
	switch {
	case rl.IsKeyPressed(rl.KeyLeft):
		v.X -= gravityNudge
	case rl.IsKeyPressed(rl.KeyRight):
		v.X += gravityNudge
	case rl.IsKeyPressed(rl.KeyUp):
		v.Y += gravityNudge
	case rl.IsKeyPressed(rl.KeyDown):
		v.Y -= gravityNudge
	default:
		return
	}
	g.setGravity(v)
}

// handleResize checks for window resize and propagates new dimensions.
func (g *Game) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w := float32(rl.GetScreenWidth())
	h := float32(rl.GetScreenHeight())
	if w == g.screenWidth && h == g.screenHeight {
		return
	}
	g.screenWidth = w
	g.screenHeight = h

	g.view.Resize(w, h)
	rl.UnloadRenderTexture(g.scene)
	g.scene = rl.LoadRenderTexture(int32(w), int32(h))
	g.sceneDirty = true

	g.controls.SetPosition(int32(w)-250, 10)
	g.perfPanel.SetPosition(20, int32(h)-150)
}

// handleCameraInput processes camera pan/zoom controls.
func (g *Game) handleCameraInput() {
	before := *g.view

	// Pan speed in screen pixels per frame
	const panSpeed = 8

	if rl.IsKeyDown(rl.KeyRight) {
		g.view.Pan(-panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyLeft) {
		g.view.Pan(panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyUp) {
		g.view.Pan(0, panSpeed)
	}
	if rl.IsKeyDown(rl.KeyDown) {
		g.view.Pan(0, -panSpeed)
	}

	// Right-drag pans, skipped over the controls panel
	mouse := rl.GetMousePosition()
	if rl.IsMouseButtonDown(rl.MouseButtonRight) && !g.controls.Contains(mouse.X, mouse.Y, g.overlays) {
		d := rl.GetMouseDelta()
		g.view.Pan(d.X, d.Y)
	}

	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		g.view.ZoomBy(1 + wheel*0.1)
	}
	if rl.IsKeyPressed(rl.KeyEqual) || rl.IsKeyPressed(rl.KeyKpAdd) {
		g.view.ZoomBy(1.25)
	}
	if rl.IsKeyPressed(rl.KeyMinus) || rl.IsKeyPressed(rl.KeyKpSubtract) {
		g.view.ZoomBy(0.8)
	}

	if rl.IsKeyPressed(rl.KeyHome) {
		g.view.Reset()
	}

	if *g.view != before {
		g.sceneDirty = true
	}
}
