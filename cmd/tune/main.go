// Command tune searches solver settings (CFL number, CG tolerance, substep
// bound) with CMA-ES for the cheapest run that keeps post-projection
// divergence under a budget.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/macfluid/config"
)

// EvalRecord is one row of tune_log.csv.
type EvalRecord struct {
	Eval          int     `csv:"eval"`
	Cost          float64 `csv:"cost"`
	CFL           float64 `csv:"cfl"`
	Log10Tol      float64 `csv:"log10_tolerance"`
	MaxSubsteps   float64 `csv:"max_substeps"`
	Iterations    int     `csv:"iterations"`
	MaxDivAfter   float64 `csv:"max_div_after"`
	ClampedFrames int     `csv:"clamped_frames"`
}

// formatDuration formats a duration as HH:MM:SS or MM:SS for shorter durations.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	frames := flag.Int("frames", 150, "Frames simulated per evaluation")
	divBudget := flag.Float64("div-budget", 1e-3, "Max allowed per-step divergence after projection")
	maxEvals := flag.Int("max-evals", 60, "Maximum number of evaluations")
	population := flag.Int("population", 0, "CMA-ES population size (0 = auto)")
	outputDir := flag.String("output", "", "Output directory for results")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	if err := run(*configPath, *outputDir, *frames, *divBudget, *maxEvals, *population); err != nil {
		slog.Error("tune failed", "error", err)
		os.Exit(1)
	}
}

func run(configPath, outputDir string, frames int, divBudget float64, maxEvals, population int) error {
	if outputDir == "" {
		return fmt.Errorf("-output is required")
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	if err := config.Init(configPath); err != nil {
		return err
	}
	baseCfg := config.Cfg()

	params := NewParamVector()
	// Per-step solver warnings are expected while exploring bad settings.
	quiet := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	evaluator := NewEvaluator(params, frames, divBudget, baseCfg, quiet)

	dim := params.Dim()
	initX := params.Normalize(params.ExtractFromConfig(baseCfg))

	logFile, err := os.Create(filepath.Join(outputDir, "tune_log.csv"))
	if err != nil {
		return fmt.Errorf("creating log file: %w", err)
	}
	defer logFile.Close()

	evalCount := 0
	bestCost := evaluator.Evaluate(params.ExtractFromConfig(baseCfg))
	bestParams := params.Clamp(params.ExtractFromConfig(baseCfg))
	slog.Info("baseline", "cost", bestCost, "result", fmt.Sprintf("%+v", evaluator.LastResult()))
	startTime := time.Now()

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			raw := params.Denormalize(x)
			cost := evaluator.Evaluate(raw)
			evalCount++

			clamped := params.Clamp(raw)
			if cost < bestCost {
				bestCost = cost
				bestParams = clamped
			}

			r := evaluator.LastResult()
			rec := []EvalRecord{{
				Eval:          evalCount,
				Cost:          cost,
				CFL:           clamped[0],
				Log10Tol:      clamped[1],
				MaxSubsteps:   clamped[2],
				Iterations:    r.Iterations,
				MaxDivAfter:   r.MaxDivAfter,
				ClampedFrames: r.ClampedFrames,
			}}
			var werr error
			if evalCount == 1 {
				werr = gocsv.Marshal(rec, logFile)
			} else {
				werr = gocsv.MarshalWithoutHeaders(rec, logFile)
			}
			if werr != nil {
				slog.Error("failed to write eval record", "error", werr)
			}

			elapsed := time.Since(startTime)
			remaining := time.Duration(maxEvals-evalCount) * (elapsed / time.Duration(evalCount))
			slog.Info("eval",
				"n", evalCount,
				"cost", cost,
				"best", bestCost,
				"elapsed", formatDuration(elapsed),
				"eta", formatDuration(remaining),
			)
			return cost
		},
	}

	// Population size
	popSize := population
	if popSize == 0 {
		popSize = 4 + int(3.0*float64(dim)/2.0)
	}

	settings := &optimize.Settings{
		FuncEvaluations: maxEvals,
		Concurrent:      0, // Sequential evaluation
	}
	method := &optimize.CmaEsChol{
		InitStepSize: 0.3,
		Population:   popSize,
	}

	slog.Info("starting CMA-ES", "params", dim, "population", popSize, "max_evals", maxEvals, "frames", frames)
	if _, err := optimize.Minimize(problem, initX, settings, method); err != nil {
		slog.Warn("optimization ended", "error", err)
	}

	for i, spec := range params.Specs {
		slog.Info("best parameter", "name", spec.Name, "path", spec.Path, "value", bestParams[i])
	}

	bestCfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	params.ApplyToConfig(bestCfg, bestParams)

	configOutPath := filepath.Join(outputDir, "best_config.yaml")
	if err := bestCfg.WriteYAML(configOutPath); err != nil {
		return err
	}
	slog.Info("tune complete",
		"evals", evalCount,
		"best_cost", bestCost,
		"elapsed", formatDuration(time.Since(startTime)),
		"config", configOutPath,
	)
	return nil
}
