package main

import (
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm-cable/macfluid/config"
)

func TestParamRoundTrip(t *testing.T) {
	pv := NewParamVector()
	raw := pv.DefaultVector()

	back := pv.Denormalize(pv.Normalize(raw))
	assert.InDeltaSlice(t, raw, back, 1e-12)
}

func TestParamClamp(t *testing.T) {
	pv := NewParamVector()
	c := pv.Clamp([]float64{100, -100, 8})
	assert.Equal(t, []float64{4, -9, 8}, c)
}

func TestApplyExtract(t *testing.T) {
	pv := NewParamVector()
	cfg := config.Defaults()

	pv.ApplyToConfig(cfg, []float64{2, -5, 7.6})
	assert.Equal(t, 2.0, cfg.Simulation.CFL)
	assert.InDelta(t, 1e-5, cfg.Solver.Tolerance, 1e-18)
	assert.Equal(t, 8, cfg.Simulation.MaxSubsteps)

	got := pv.ExtractFromConfig(cfg)
	assert.InDeltaSlice(t, []float64{2, -5, 8}, got, 1e-9)
}

func TestCost(t *testing.T) {
	e := NewEvaluator(NewParamVector(), 10, 0.01, config.Defaults(), nil)

	assert.True(t, math.IsInf(e.Cost(RunResult{}), 1))
	assert.InDelta(t, 5.0, e.Cost(RunResult{Frames: 10, Iterations: 50, MaxDivAfter: 0.005}), 1e-12)
	// Twice the budget costs one full penalty.
	assert.InDelta(t, 5+divergencePenalty, e.Cost(RunResult{Frames: 10, Iterations: 50, MaxDivAfter: 0.02}), 1e-9)
	assert.InDelta(t, 5+clampPenalty/2, e.Cost(RunResult{Frames: 10, Iterations: 50, ClampedFrames: 5}), 1e-12)
}

func TestEvaluateRunsSolver(t *testing.T) {
	cfg := config.Defaults()
	cfg.Simulation.Width = 8
	cfg.Simulation.Height = 6

	pv := NewParamVector()
	e := NewEvaluator(pv, 5, 1, cfg, slog.New(slog.DiscardHandler))

	cost := e.Evaluate(pv.DefaultVector())
	r := e.LastResult()
	require.Equal(t, 5, r.Frames)
	assert.GreaterOrEqual(t, r.Steps, 5)
	assert.False(t, math.IsInf(cost, 0))
	assert.Equal(t, 8.0, cfg.Simulation.Width, "base config must not be modified")
	assert.Equal(t, config.Defaults().Simulation.CFL, cfg.Simulation.CFL)
}
