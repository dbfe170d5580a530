package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/macfluid/renderer"
	"github.com/pthm-cable/macfluid/ui"
)

const controlsLegend = "SPACE pause | N step | R reset | Shift+arrows gravity | arrows/RMB pan | wheel zoom | TAB panel | F3 perf | S snapshot"

// Draw renders the game state.
func (g *Game) Draw() {
	g.renderScene()

	rl.BeginDrawing()
	rl.ClearBackground(renderer.ColorBackgroundBottom)

	// Render textures are stored bottom-up, so flip the source rectangle.
	src := rl.NewRectangle(0, 0, float32(g.scene.Texture.Width), -float32(g.scene.Texture.Height))
	rl.DrawTextureRec(g.scene.Texture, src, rl.NewVector2(0, 0), rl.White)

	g.drawUI()
	rl.EndDrawing()
}

// renderScene redraws the simulation layer when the solver has a new frame
// or the view changed. Solver.Draw only hands over a frame once, so a paused
// viewer keeps showing the cached texture.
func (g *Game) renderScene() {
	if !g.solver.FrameReady() && !g.sceneDirty {
		return
	}

	g.gridRenderer.Layers = g.overlays.Layers()
	g.tracerRenderer.Enabled = g.overlays.IsEnabled(ui.OverlayTracers)

	rl.BeginTextureMode(g.scene)
	rl.ClearBackground(rl.Blank)
	g.background.Draw()
	if !g.solver.Draw(g.gridRenderer) {
		// View-only change: redraw the state already on screen.
		g.gridRenderer.DrawGrid(g.solver.Grid())
		g.gridRenderer.DrawParticles(g.solver.Particles())
	}
	g.tracerRenderer.Draw(g.tracers)
	rl.EndTextureMode()

	g.sceneDirty = false
}

func (g *Game) drawUI() {
	step := g.solver.LastStep()
	frame := g.solver.LastFrame()

	g.hud.Draw(ui.HUDData{
		Frame:         frame.Frame,
		SimTime:       frame.SimTime,
		Substeps:      frame.Substeps,
		Clamped:       frame.Clamped,
		FluidCells:    step.FluidCells,
		Particles:     step.Particles,
		AirPockets:    step.AirPockets,
		Tracers:       g.tracers.Count(),
		Iterations:    step.Projection.Iterations,
		MaxIterations: g.cfg.Solver.MaxIterations,
		Residual:      step.Projection.Residual,
		Converged:     step.Projection.Converged,
		DivAfter:      step.Projection.DivergenceAfter,
		Gravity:       g.gravity,
		FPS:           rl.GetFPS(),
		Paused:        g.paused,
	})

	act := g.controls.Draw(g.overlays, g.paused, g.gravity)
	g.applyActions(act)

	if g.showPerf {
		stats := g.perfCollector.Stats()
		g.perfPanel.Draw(stats.AvgStepDuration, stats.PhaseAvg)
	}

	g.hud.DrawControls(int32(g.screenWidth), int32(g.screenHeight), controlsLegend)
}

// applyActions turns controls panel clicks into game actions. raygui reports
// clicks while drawing, so they take effect on the next Update.
func (g *Game) applyActions(act ui.Actions) {
	if !act.Any() {
		return
	}
	if act.TogglePause {
		g.paused = !g.paused
	}
	if act.Reset {
		g.reset()
	}
	if act.GravityChanged {
		g.setGravity(act.Gravity)
	}
	if act.Step && g.paused {
		g.advance()
		g.tracers.Update(g.solver, g.cfg.Simulation.FrameTime)
	}
}
