// Command projcheck runs the solver headless for a fixed number of frames and
// writes per-step projection stats, the config used, a divergence plot and a
// final pressure heatmap.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/pthm-cable/macfluid/config"
	"github.com/pthm-cable/macfluid/game"
	"github.com/pthm-cable/macfluid/telemetry"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	frames := flag.Int64("frames", 300, "Frames to simulate")
	outputDir := flag.String("output-dir", "projcheck_out", "Output directory")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	if err := run(*configPath, *outputDir, *frames); err != nil {
		slog.Error("projcheck failed", "error", err)
		os.Exit(1)
	}
}

func run(configPath, outputDir string, frames int64) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	g := game.NewGameWithOptions(game.Options{
		Config:    cfg,
		OutputDir: outputDir,
		Headless:  true,
	})
	for g.Frames() < frames {
		g.UpdateHeadless()
	}
	grid := g.Solver().Grid()
	g.Unload()

	f, err := os.Open(filepath.Join(outputDir, "steps.csv"))
	if err != nil {
		return fmt.Errorf("opening steps: %w", err)
	}
	defer f.Close()
	records, err := telemetry.ReadSteps(f)
	if err != nil {
		return err
	}

	divPath := filepath.Join(outputDir, "divergence.png")
	if err := telemetry.PlotDivergence(records, divPath); err != nil {
		return err
	}
	pressurePath := filepath.Join(outputDir, "pressure.png")
	if err := telemetry.PlotPressure(grid, pressurePath); err != nil {
		return err
	}

	var nonConverged int
	var worst float64
	for _, r := range records {
		if !r.Converged {
			nonConverged++
		}
		worst = max(worst, r.DivAfter)
	}
	slog.Info("projcheck complete",
		"frames", frames,
		"steps", len(records),
		"non_converged", nonConverged,
		"max_div_after", worst,
		"divergence_plot", divPath,
		"pressure_plot", pressurePath,
	)
	return nil
}
