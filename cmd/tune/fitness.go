package main

import (
	"log/slog"
	"math"

	"github.com/pthm-cable/macfluid/config"
	"github.com/pthm-cable/macfluid/fluid"
)

// Cost weights. A run pays for solver work, then heavily for leaving more
// divergence behind than the budget allows and for frames that hit the
// substep bound.
const (
	divergencePenalty = 1000.0
	clampPenalty      = 50.0
)

// RunResult holds the measurements from a single headless run.
type RunResult struct {
	Frames        int
	Steps         int
	Iterations    int     // CG iterations summed over all steps
	MaxDivAfter   float64 // Worst per-step divergence left by projection
	NonConverged  int
	ClampedFrames int
}

// Evaluator runs headless simulations and computes cost.
type Evaluator struct {
	params    *ParamVector
	frames    int
	divBudget float64
	baseCfg   *config.Config
	logger    *slog.Logger

	last RunResult
}

// NewEvaluator creates an evaluator running frames frames per evaluation.
func NewEvaluator(params *ParamVector, frames int, divBudget float64, baseCfg *config.Config, logger *slog.Logger) *Evaluator {
	return &Evaluator{
		params:    params,
		frames:    frames,
		divBudget: divBudget,
		baseCfg:   baseCfg,
		logger:    logger,
	}
}

// LastResult returns the measurements from the most recent Evaluate call.
func (e *Evaluator) LastResult() RunResult {
	return e.last
}

// Evaluate computes cost for a raw parameter vector (lower = better).
func (e *Evaluator) Evaluate(raw []float64) float64 {
	cfg := *e.baseCfg
	e.params.ApplyToConfig(&cfg, raw)

	e.last = e.run(&cfg)
	return e.Cost(e.last)
}

// Cost scores a run: average CG iterations per frame, plus penalties.
func (e *Evaluator) Cost(r RunResult) float64 {
	if r.Frames == 0 {
		return math.Inf(1)
	}
	cost := float64(r.Iterations) / float64(r.Frames)
	if e.divBudget > 0 && r.MaxDivAfter > e.divBudget {
		cost += divergencePenalty * (r.MaxDivAfter/e.divBudget - 1)
	}
	cost += divergencePenalty * float64(r.NonConverged) / float64(r.Frames)
	cost += clampPenalty * float64(r.ClampedFrames) / float64(r.Frames)
	return cost
}

func (e *Evaluator) run(cfg *config.Config) RunResult {
	var res RunResult

	opts := fluid.OptionsFromConfig(cfg)
	opts.Logger = e.logger
	opts.OnStep = func(s fluid.StepStats) {
		res.Steps++
		res.Iterations += s.Projection.Iterations
		res.MaxDivAfter = max(res.MaxDivAfter, s.Projection.DivergenceAfter)
		if !s.Projection.Converged {
			res.NonConverged++
		}
	}

	s := fluid.New(cfg.Simulation.Width, cfg.Simulation.Height, opts)
	for range e.frames {
		s.AdvanceFrame()
		res.Frames++
		if s.LastFrame().Clamped {
			res.ClampedFrames++
		}
	}
	return res
}
