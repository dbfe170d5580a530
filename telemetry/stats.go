package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// WindowStats holds aggregated solver statistics for a window of frames.
type WindowStats struct {
	WindowStartFrame int64   `csv:"-"`
	WindowEndFrame   int64   `csv:"window_end"`
	SimTimeSec       float64 `csv:"sim_time"`

	// Stepping
	Frames        int     `csv:"frames"`
	Steps         int     `csv:"steps"`
	SubstepsMean  float64 `csv:"substeps_mean"`
	SubstepsMax   int     `csv:"substeps_max"`
	ClampedFrames int     `csv:"clamped_frames"`
	DtMin         float64 `csv:"dt_min"`
	DtMean        float64 `csv:"dt_mean"`

	// Surface (sampled at window end)
	FluidCells int `csv:"fluid_cells"`
	Particles  int `csv:"particles"`

	// Under-seeding diagnostic
	AirPocketsMean float64 `csv:"air_pockets_mean"`
	AirPocketsMax  int     `csv:"air_pockets_max"`

	// Max-speed distribution over steps
	SpeedMean float64 `csv:"speed_mean"`
	SpeedP50  float64 `csv:"speed_p50"`
	SpeedP90  float64 `csv:"speed_p90"`
	SpeedMax  float64 `csv:"speed_max"`

	// Pressure solve
	IterMean      float64 `csv:"iter_mean"`
	IterP90       float64 `csv:"iter_p90"`
	IterMax       int     `csv:"iter_max"`
	ResidualMax   float64 `csv:"residual_max"`
	NonConverged  int     `csv:"non_converged"`
	DivBeforeMean float64 `csv:"div_before_mean"`
	DivAfterMean  float64 `csv:"div_after_mean"`
	DivAfterMax   float64 `csv:"div_after_max"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// Summarize calculates mean and percentiles of values without modifying them.
func Summarize(values []float64) (mean, p10, p50, p90 float64) {
	n := len(values)
	if n == 0 {
		return 0, 0, 0, 0
	}

	mean = floats.Sum(values) / float64(n)

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	p10 = Percentile(sorted, 0.10)
	p50 = Percentile(sorted, 0.50)
	p90 = Percentile(sorted, 0.90)

	return mean, p10, p50, p90
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("window_start", s.WindowStartFrame),
		slog.Int64("window_end", s.WindowEndFrame),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("frames", s.Frames),
		slog.Int("steps", s.Steps),
		slog.Float64("substeps_mean", s.SubstepsMean),
		slog.Int("substeps_max", s.SubstepsMax),
		slog.Int("clamped_frames", s.ClampedFrames),
		slog.Float64("dt_min", s.DtMin),
		slog.Float64("dt_mean", s.DtMean),
		slog.Int("fluid_cells", s.FluidCells),
		slog.Int("particles", s.Particles),
		slog.Float64("air_pockets_mean", s.AirPocketsMean),
		slog.Int("air_pockets_max", s.AirPocketsMax),
		slog.Float64("speed_mean", s.SpeedMean),
		slog.Float64("speed_p50", s.SpeedP50),
		slog.Float64("speed_p90", s.SpeedP90),
		slog.Float64("speed_max", s.SpeedMax),
		slog.Float64("iter_mean", s.IterMean),
		slog.Float64("iter_p90", s.IterP90),
		slog.Int("iter_max", s.IterMax),
		slog.Float64("residual_max", s.ResidualMax),
		slog.Int("non_converged", s.NonConverged),
		slog.Float64("div_before_mean", s.DivBeforeMean),
		slog.Float64("div_after_mean", s.DivAfterMean),
		slog.Float64("div_after_max", s.DivAfterMax),
	)
}

// LogStats logs the headline window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndFrame,
		"sim_time", s.SimTimeSec,
		"steps", s.Steps,
		"substeps_max", s.SubstepsMax,
		"fluid_cells", s.FluidCells,
		"air_pockets_max", s.AirPocketsMax,
		"speed_max", s.SpeedMax,
		"iter_mean", s.IterMean,
		"non_converged", s.NonConverged,
		"div_after_max", s.DivAfterMax,
	)
}
