// Package game wires the fluid solver to the viewer: input, telemetry,
// tracers and rendering.
package game

import (
	"log/slog"
	"math/rand"
	"path/filepath"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/macfluid/camera"
	"github.com/pthm-cable/macfluid/config"
	"github.com/pthm-cable/macfluid/fluid"
	"github.com/pthm-cable/macfluid/renderer"
	"github.com/pthm-cable/macfluid/telemetry"
	"github.com/pthm-cable/macfluid/tracers"
	"github.com/pthm-cable/macfluid/ui"
)

// Options configures a Game.
type Options struct {
	Config      *config.Config // nil = config.Cfg()
	Seed        int64
	LogStats    bool
	OutputDir   string // CSV logs and config snapshot; empty disables
	SnapshotDir string // Bookmark snapshots; defaults to OutputDir/snapshots
	Headless    bool
}

// Game holds the complete viewer state.
type Game struct {
	cfg    *config.Config
	rng    *rand.Rand
	solver *fluid.Solver

	tracers *tracers.System

	// Telemetry
	perfCollector    *telemetry.PerfCollector
	collector        *telemetry.Collector
	outputManager    *telemetry.OutputManager
	bookmarkDetector *telemetry.BookmarkDetector
	logStats         bool
	snapshotDir      string

	// Rendering (nil when headless)
	view           *camera.Viewport
	background     *renderer.BackgroundRenderer
	gridRenderer   *renderer.GridRenderer
	tracerRenderer *renderer.TracerRenderer
	scene          rl.RenderTexture2D
	sceneDirty     bool

	// UI
	overlays  *ui.OverlayRegistry
	hud       *ui.HUD
	controls  *ui.ControlsPanel
	perfPanel *ui.PerfPanel
	showPerf  bool

	// State
	headless bool
	paused   bool
	frames   int64      // Frames advanced since start, across resets
	gravity  fluid.Vec2 // Last requested gravity, applied on the next frame

	screenWidth, screenHeight float32
}

// NewGameWithOptions creates a game. Rendering resources are only created when
// not headless, which requires an open raylib window.
func NewGameWithOptions(opts Options) *Game {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Cfg()
	}

	g := &Game{
		cfg:              cfg,
		rng:              rand.New(rand.NewSource(opts.Seed)),
		perfCollector:    telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow),
		collector:        telemetry.NewCollector(cfg.Telemetry.StatsWindow),
		bookmarkDetector: telemetry.NewBookmarkDetector(10),
		logStats:         opts.LogStats,
		snapshotDir:      opts.SnapshotDir,
		headless:         opts.Headless,
		overlays:         ui.NewOverlayRegistry(),
	}

	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		slog.Error("failed to create output manager", "error", err)
	}
	g.outputManager = om
	if err := om.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config", "error", err)
	}
	if g.snapshotDir == "" && opts.OutputDir != "" {
		g.snapshotDir = filepath.Join(opts.OutputDir, "snapshots")
	}

	solverOpts := fluid.OptionsFromConfig(cfg)
	solverOpts.Logger = slog.Default()
	solverOpts.Timer = g.perfCollector
	solverOpts.OnStep = g.onStep
	g.solver = fluid.New(cfg.Simulation.Width, cfg.Simulation.Height, solverOpts)

	g.gravity = g.solver.Gravity()

	g.tracers = tracers.NewSystem(tracers.OptionsFromConfig(cfg), g.rng)

	if !g.headless {
		g.initRendering()
	}

	slog.Info("game initialized",
		"cols", g.solver.Grid().Cols(),
		"rows", g.solver.Grid().Rows(),
		"particles", len(g.solver.Particles()),
		"headless", g.headless,
		"output_dir", opts.OutputDir,
	)
	return g
}

func (g *Game) initRendering() {
	g.screenWidth = float32(rl.GetScreenWidth())
	g.screenHeight = float32(rl.GetScreenHeight())

	g.view = camera.New(g.screenWidth, g.screenHeight,
		float32(g.solver.SimulationWidth()), float32(g.solver.SimulationHeight()))
	g.background = renderer.NewBackgroundRenderer(g.view)
	g.gridRenderer = renderer.NewGridRenderer(g.view)
	g.tracerRenderer = renderer.NewTracerRenderer(g.view)
	g.scene = rl.LoadRenderTexture(int32(g.screenWidth), int32(g.screenHeight))
	g.sceneDirty = true

	g.hud = ui.NewHUD()
	g.controls = ui.NewControlsPanel(int32(g.screenWidth)-250, 10, 240)
	g.perfPanel = ui.NewPerfPanel(20, int32(g.screenHeight)-150)
}

// onStep feeds every solver timestep to telemetry. It runs inside
// AdvanceFrame, before the frame counter moves.
func (g *Game) onStep(s fluid.StepStats) {
	g.collector.RecordStep(s)
	g.perfCollector.RecordIterations(s.Projection.Iterations)
	frame := g.solver.LastFrame().Frame + 1
	if err := g.outputManager.WriteStep(telemetry.NewStepRecord(frame, s)); err != nil {
		slog.Error("failed to write step", "error", err)
	}
}

// Update processes input and advances the simulation by one frame unless
// paused.
func (g *Game) Update() {
	g.perfCollector.RecordFrame()
	step := g.handleInput()

	if g.paused && !step {
		return
	}
	g.advance()
	g.tracers.Update(g.solver, g.cfg.Simulation.FrameTime)
}

// UpdateHeadless advances one frame with no input or tracers.
func (g *Game) UpdateHeadless() {
	g.advance()
}

func (g *Game) advance() {
	g.solver.AdvanceFrame()
	g.frames++
	g.collector.RecordFrame(g.solver.LastFrame())
	g.flushTelemetry()
}

// reset reseeds the default scenario and restarts the telemetry window.
// The solver applies it at the start of the next frame.
func (g *Game) reset() {
	if !g.solver.Post(fluid.ResetCommand{}) {
		slog.Warn("command queue full, reset dropped")
		return
	}
	g.collector.Reset(0)
	g.bookmarkDetector.Reset()
	g.tracers.Clear()
	if g.paused {
		// Let a paused viewer see the fresh scenario.
		g.advance()
	}
}

// setGravity queues a new global force for the next frame.
func (g *Game) setGravity(v fluid.Vec2) {
	if !g.solver.Post(fluid.GravityCommand{Gravity: v}) {
		slog.Warn("command queue full, gravity change dropped", "gravity", v)
		return
	}
	g.gravity = v
}

// Solver returns the owned solver.
func (g *Game) Solver() *fluid.Solver { return g.solver }

// Frames returns the number of frames advanced since start.
func (g *Game) Frames() int64 { return g.frames }

// Paused reports whether the viewer is paused.
func (g *Game) Paused() bool { return g.paused }

// Unload releases rendering resources and closes telemetry output.
func (g *Game) Unload() {
	if !g.headless {
		rl.UnloadRenderTexture(g.scene)
	}
	if err := g.outputManager.Close(); err != nil {
		slog.Error("failed to close output", "error", err)
	}
}
