// Scenario preview tool - interactive dam-break setup with sliders.
//
// Usage: go run ./cmd/scenariopreview -out scenario.yaml
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/macfluid/camera"
	"github.com/pthm-cable/macfluid/config"
	"github.com/pthm-cable/macfluid/fluid"
	"github.com/pthm-cable/macfluid/renderer"
)

const (
	windowWidth  = 1100
	windowHeight = 720
	previewWidth = 720
	panelWidth   = windowWidth - previewWidth - 30
)

// slider is one scenario parameter bound to a raygui slider.
type slider struct {
	label    string
	min, max float32
	value    *float64
	format   string
}

func main() {
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	outPath := flag.String("out", "scenario.yaml", "Where Save writes the full config")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	base := *cfg

	rl.InitWindow(windowWidth, windowHeight, "Scenario Preview")
	defer rl.CloseWindow()
	rl.SetTargetFPS(30)

	perAxis := float64(cfg.Scenario.ParticlesPerAxis)
	sliders := []slider{
		{"Fill X (fraction of width)", 0, 1, &cfg.Scenario.FillX, "%.2f"},
		{"Fill Y (fraction of height)", 0, 1, &cfg.Scenario.FillY, "%.2f"},
		{"Particles per axis", 1, 4, &perAxis, "%.0f"},
		{"Initial velocity X", -10, 10, &cfg.Scenario.VelocityX, "%.1f"},
		{"Initial velocity Y", -10, 10, &cfg.Scenario.VelocityY, "%.1f"},
		{"Gravity Y", -20, 0, &cfg.Simulation.GravityY, "%.2f"},
	}

	var solver *fluid.Solver
	rebuild := func() {
		cfg.Scenario.ParticlesPerAxis = int(perAxis + 0.5)
		opts := fluid.OptionsFromConfig(cfg)
		opts.Logger = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		solver = fluid.New(cfg.Simulation.Width, cfg.Simulation.Height, opts)
	}
	rebuild()

	view := camera.New(previewWidth, windowHeight-20, float32(cfg.Simulation.Width), float32(cfg.Simulation.Height))
	bg := renderer.NewBackgroundRenderer(view)
	grid := renderer.NewGridRenderer(view)
	grid.Layers.FaceVelocity = false

	running := false
	status := ""

	for !rl.WindowShouldClose() {
		if running {
			solver.AdvanceFrame()
		}

		rl.BeginDrawing()
		rl.ClearBackground(rl.RayWhite)

		bg.Draw()
		if !solver.Draw(grid) {
			grid.DrawGrid(solver.Grid())
			grid.DrawParticles(solver.Particles())
		}

		panelX := float32(previewWidth + 20)
		panelY := float32(10)

		rl.DrawText("Dam Break Scenario", int32(panelX), int32(panelY), 20, rl.DarkGray)
		panelY += 35

		changed := false
		for _, s := range sliders {
			rl.DrawText(s.label, int32(panelX), int32(panelY), 14, rl.Gray)
			panelY += 18
			v := gui.SliderBar(
				rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
				fmt.Sprintf("%g", s.min), fmt.Sprintf("%g", s.max),
				float32(*s.value), s.min, s.max,
			)
			rl.DrawText(fmt.Sprintf(s.format, *s.value), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
			if float64(v) != *s.value {
				*s.value = float64(v)
				changed = true
			}
			panelY += 35
		}
		if changed {
			rebuild()
			status = ""
		}

		panelY += 10
		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, toggleText(running, "Stop", "Run")) {
			running = !running
		}
		if gui.Button(rl.Rectangle{X: panelX + 130, Y: panelY, Width: 120, Height: 30}, "Restart") {
			rebuild()
		}
		panelY += 45

		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, "Reset All") {
			*cfg = base
			perAxis = float64(cfg.Scenario.ParticlesPerAxis)
			rebuild()
		}
		if gui.Button(rl.Rectangle{X: panelX + 130, Y: panelY, Width: 120, Height: 30}, "Save") {
			if err := cfg.WriteYAML(*outPath); err != nil {
				status = err.Error()
			} else {
				status = "saved " + *outPath
			}
		}
		panelY += 45

		frame := solver.LastFrame()
		rl.DrawText(fmt.Sprintf("Particles: %d  Frame: %d  t=%.2fs", len(solver.Particles()), frame.Frame, frame.SimTime),
			int32(panelX), int32(panelY), 14, rl.DarkGray)
		panelY += 20
		if status != "" {
			rl.DrawText(status, int32(panelX), int32(panelY), 14, rl.DarkGreen)
		}

		rl.DrawText("Press C to copy scenario YAML to clipboard", int32(panelX), int32(windowHeight-30), 12, rl.Gray)
		if rl.IsKeyPressed(rl.KeyC) {
			if text, err := scenarioYAML(cfg); err == nil {
				rl.SetClipboardText(text)
			}
		}

		rl.EndDrawing()
	}
}

// scenarioYAML renders the scenario and simulation sections as they appear
// in a config file.
func scenarioYAML(cfg *config.Config) (string, error) {
	out, err := yaml.Marshal(map[string]any{
		"scenario":   cfg.Scenario,
		"simulation": map[string]float64{"gravity_y": cfg.Simulation.GravityY},
	})
	return string(out), err
}

func toggleText(cond bool, ifTrue, ifFalse string) string {
	if cond {
		return ifTrue
	}
	return ifFalse
}
