package fluid

import "log/slog"

// ProjectionStats reports one pressure solve.
type ProjectionStats struct {
	Unknowns         int
	Iterations       int
	Residual         float64
	Converged        bool
	DivergenceBefore float64 // Sum of |div| over unknowns before the solve
	DivergenceAfter  float64 // Same sum after the velocity update
}

// LogValue implements slog.LogValuer for structured logging.
func (p ProjectionStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("unknowns", p.Unknowns),
		slog.Int("iterations", p.Iterations),
		slog.Float64("residual", p.Residual),
		slog.Bool("converged", p.Converged),
		slog.Float64("div_before", p.DivergenceBefore),
		slog.Float64("div_after", p.DivergenceAfter),
	)
}

// StepStats reports one AdvanceTimeStep.
type StepStats struct {
	Step       int64
	Dt         float64
	MaxSpeed   float64
	FluidCells int
	AirPockets int
	Particles  int
	Projection ProjectionStats
}

// LogValue implements slog.LogValuer for structured logging.
func (s StepStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("step", s.Step),
		slog.Float64("dt", s.Dt),
		slog.Float64("max_speed", s.MaxSpeed),
		slog.Int("fluid_cells", s.FluidCells),
		slog.Int("air_pockets", s.AirPockets),
		slog.Int("particles", s.Particles),
		slog.Any("projection", s.Projection),
	)
}

// FrameStats reports one AdvanceFrame.
type FrameStats struct {
	Frame    int64
	Substeps int
	SimTime  float64 // Total simulated time since the last reset
	Clamped  bool    // Substep bound was hit
}

// LogValue implements slog.LogValuer for structured logging.
func (f FrameStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("frame", f.Frame),
		slog.Int("substeps", f.Substeps),
		slog.Float64("sim_time", f.SimTime),
		slog.Bool("clamped", f.Clamped),
	)
}
