package telemetry

import (
	"math"

	"github.com/pthm-cable/macfluid/fluid"
)

// Collector accumulates step and frame stats within windows of frames and
// produces WindowStats.
type Collector struct {
	windowFrames int64

	// Current window tracking
	windowStartFrame int64

	// Per-step samples for the current window
	speeds     []float64
	iterations []float64
	dts        []float64
	divBefore  float64
	divAfter   float64
	divMax     float64
	residual   float64
	nonConv    int
	pockets    int
	pocketsMax int

	// Per-frame counters for the current window
	frames      int
	substeps    int
	substepsMax int
	clamped     int

	last      fluid.StepStats
	lastFrame fluid.FrameStats
}

// NewCollector creates a collector that flushes every windowFrames frames.
func NewCollector(windowFrames int) *Collector {
	if windowFrames < 1 {
		windowFrames = 1
	}
	return &Collector{windowFrames: int64(windowFrames)}
}

// RecordStep records one solver timestep.
func (c *Collector) RecordStep(s fluid.StepStats) {
	c.speeds = append(c.speeds, s.MaxSpeed)
	c.iterations = append(c.iterations, float64(s.Projection.Iterations))
	c.dts = append(c.dts, s.Dt)
	c.divBefore += s.Projection.DivergenceBefore
	c.divAfter += s.Projection.DivergenceAfter
	c.divMax = math.Max(c.divMax, s.Projection.DivergenceAfter)
	c.residual = math.Max(c.residual, s.Projection.Residual)
	if !s.Projection.Converged {
		c.nonConv++
	}
	c.pockets += s.AirPockets
	c.pocketsMax = max(c.pocketsMax, s.AirPockets)
	c.last = s
}

// RecordFrame records one completed frame.
func (c *Collector) RecordFrame(f fluid.FrameStats) {
	c.frames++
	c.substeps += f.Substeps
	c.substepsMax = max(c.substepsMax, f.Substeps)
	if f.Clamped {
		c.clamped++
	}
	c.lastFrame = f
}

// ShouldFlush returns true if enough frames have passed to flush the window.
func (c *Collector) ShouldFlush(currentFrame int64) bool {
	return currentFrame-c.windowStartFrame >= c.windowFrames
}

// Flush produces a WindowStats and resets counters for the next window.
func (c *Collector) Flush(currentFrame int64) WindowStats {
	steps := len(c.speeds)
	stats := WindowStats{
		WindowStartFrame: c.windowStartFrame,
		WindowEndFrame:   currentFrame,
		SimTimeSec:       c.lastFrame.SimTime,

		Frames:        c.frames,
		Steps:         steps,
		SubstepsMax:   c.substepsMax,
		ClampedFrames: c.clamped,

		FluidCells: c.last.FluidCells,
		Particles:  c.last.Particles,

		AirPocketsMax: c.pocketsMax,

		ResidualMax:  c.residual,
		NonConverged: c.nonConv,
		DivAfterMax:  c.divMax,
	}
	if c.frames > 0 {
		stats.SubstepsMean = float64(c.substeps) / float64(c.frames)
	}

	if steps > 0 {
		n := float64(steps)
		stats.AirPocketsMean = float64(c.pockets) / n
		stats.DivBeforeMean = c.divBefore / n
		stats.DivAfterMean = c.divAfter / n

		stats.SpeedMean, _, stats.SpeedP50, stats.SpeedP90 = Summarize(c.speeds)
		for _, v := range c.speeds {
			stats.SpeedMax = math.Max(stats.SpeedMax, v)
		}

		stats.IterMean, _, _, stats.IterP90 = Summarize(c.iterations)
		for _, v := range c.iterations {
			stats.IterMax = max(stats.IterMax, int(v))
		}

		var dtMean float64
		dtMean, _, _, _ = Summarize(c.dts)
		stats.DtMean = dtMean
		stats.DtMin = c.dts[0]
		for _, v := range c.dts {
			stats.DtMin = math.Min(stats.DtMin, v)
		}
	}

	// Reset for next window
	c.windowStartFrame = currentFrame
	c.speeds = c.speeds[:0]
	c.iterations = c.iterations[:0]
	c.dts = c.dts[:0]
	c.divBefore, c.divAfter, c.divMax, c.residual = 0, 0, 0, 0
	c.nonConv, c.pockets, c.pocketsMax = 0, 0, 0
	c.frames, c.substeps, c.substepsMax, c.clamped = 0, 0, 0, 0

	return stats
}

// Reset discards the current window, starting a new one at frame.
func (c *Collector) Reset(frame int64) {
	c.Flush(frame)
	c.last = fluid.StepStats{}
	c.lastFrame = fluid.FrameStats{}
}

// WindowFrames returns the number of frames per window.
func (c *Collector) WindowFrames() int64 {
	return c.windowFrames
}
