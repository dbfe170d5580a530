package telemetry

import (
	"testing"
	"time"

	"github.com/pthm-cable/macfluid/fluid"
)

func TestPerfCollector_BasicTiming(t *testing.T) {
	pc := NewPerfCollector(10)

	// Simulate a few steps
	for i := 0; i < 5; i++ {
		pc.StartStep()
		pc.StartPhase(fluid.PhaseAdvect)
		time.Sleep(100 * time.Microsecond)
		pc.StartPhase(fluid.PhaseProject)
		time.Sleep(200 * time.Microsecond)
		pc.EndStep()
	}

	stats := pc.Stats()

	// Verify we got timing data
	if stats.AvgStepDuration <= 0 {
		t.Error("expected positive average step duration")
	}

	// Verify phases are tracked
	if len(stats.PhaseAvg) == 0 {
		t.Error("expected phase averages to be populated")
	}

	if _, ok := stats.PhaseAvg[fluid.PhaseAdvect]; !ok {
		t.Error("expected advect phase to be tracked")
	}

	if _, ok := stats.PhaseAvg[fluid.PhaseProject]; !ok {
		t.Error("expected project phase to be tracked")
	}
}

func TestPerfCollector_RollingWindow(t *testing.T) {
	pc := NewPerfCollector(5) // Small window

	// Fill window completely
	for i := 0; i < 10; i++ {
		pc.StartStep()
		pc.StartPhase(fluid.PhaseAdvect)
		pc.EndStep()
	}

	stats := pc.Stats()

	// Should have data
	if stats.AvgStepDuration <= 0 {
		t.Error("expected positive average step duration after window filled")
	}

	if stats.StepsPerSecond <= 0 {
		t.Error("expected positive steps per second")
	}
}

func TestPerfCollector_PhasePercentages(t *testing.T) {
	pc := NewPerfCollector(10)

	// Simulate with uneven phase durations
	for i := 0; i < 5; i++ {
		pc.StartStep()
		pc.StartPhase("fast")
		time.Sleep(10 * time.Microsecond)
		pc.StartPhase("slow")
		time.Sleep(100 * time.Microsecond)
		pc.EndStep()
	}

	stats := pc.Stats()

	fastPct := stats.PhasePct["fast"]
	slowPct := stats.PhasePct["slow"]

	// Slow phase should take more % than fast
	if slowPct <= fastPct {
		t.Errorf("expected slow phase (%v%%) > fast phase (%v%%)", slowPct, fastPct)
	}
}

func TestPerfCollector_EmptyStats(t *testing.T) {
	pc := NewPerfCollector(10)

	stats := pc.Stats()

	// Empty collector should return zero values without panicking
	if stats.AvgStepDuration != 0 {
		t.Error("expected zero avg step duration for empty collector")
	}

	if stats.PhaseAvg == nil {
		t.Error("expected non-nil PhaseAvg map")
	}

	if stats.PhasePct == nil {
		t.Error("expected non-nil PhasePct map")
	}
}

func TestPerfCollector_FrameTiming(t *testing.T) {
	pc := NewPerfCollector(10)

	// First call establishes baseline
	pc.RecordFrame()
	time.Sleep(16 * time.Millisecond) // ~60fps frame time
	// Second call measures duration
	pc.RecordFrame()

	stats := pc.Stats()

	if stats.FrameDuration < 15*time.Millisecond {
		t.Errorf("expected frame duration >= 15ms, got %v", stats.FrameDuration)
	}

	if stats.FPS <= 0 {
		t.Error("expected positive FPS")
	}

	// With 16ms frames, expect ~60 FPS (allow range 40-80)
	if stats.FPS < 40 || stats.FPS > 80 {
		t.Errorf("expected FPS between 40-80 with 16ms frame time, got %v", stats.FPS)
	}
}

func TestPerfCollector_RepeatedPhaseAccumulates(t *testing.T) {
	pc := NewPerfCollector(4)

	pc.StartStep()
	pc.StartPhase(fluid.PhaseBoundary)
	time.Sleep(50 * time.Microsecond)
	pc.StartPhase(fluid.PhaseProject)
	pc.StartPhase(fluid.PhaseBoundary)
	time.Sleep(50 * time.Microsecond)
	pc.EndStep()

	stats := pc.Stats()
	if got := stats.PhaseAvg[fluid.PhaseBoundary]; got < 100*time.Microsecond {
		t.Errorf("boundary phase = %v, want both entries summed (>= 100us)", got)
	}
}

func TestPerfStatsToCSV(t *testing.T) {
	stats := PerfStats{
		AvgStepDuration: 1500 * time.Microsecond,
		PhasePct: map[string]float64{
			fluid.PhaseAdvect:  10,
			fluid.PhaseProject: 70,
			fluid.PhaseMark:    5,
		},
		StepsPerSecond: 666,
	}

	row := stats.ToCSV(90)
	if row.WindowEnd != 90 || row.AvgStepUS != 1500 {
		t.Errorf("unexpected header fields: %+v", row)
	}
	if row.AdvectPct != 10 || row.ProjectPct != 70 || row.MarkPct != 5 {
		t.Errorf("phase pct not mapped: %+v", row)
	}
	if row.ForcesPct != 0 {
		t.Errorf("forces pct = %v, want 0", row.ForcesPct)
	}
}

func TestPerfCollectorAsSolverTimer(t *testing.T) {
	pc := NewPerfCollector(8)
	opts := fluid.DefaultOptions()
	opts.Logger = quietLogger()
	opts.Timer = pc
	s := fluid.New(8, 6, opts)

	s.AdvanceTimeStep(0.01)
	s.AdvanceTimeStep(0.01)

	stats := pc.Stats()
	for _, phase := range fluid.Phases {
		if _, ok := stats.PhaseAvg[phase]; !ok {
			t.Errorf("phase %q not recorded", phase)
		}
	}
}

func TestPerfCollector_IterationCost(t *testing.T) {
	pc := NewPerfCollector(4)

	// Before any step there is nothing to attach to.
	pc.RecordIterations(99)

	for _, iters := range []int{10, 30} {
		pc.StartStep()
		pc.StartPhase(fluid.PhaseProject)
		time.Sleep(200 * time.Microsecond)
		pc.EndStep()
		pc.RecordIterations(iters)
	}

	stats := pc.Stats()
	if stats.AvgIterations != 20 {
		t.Errorf("avg iterations = %v, want 20", stats.AvgIterations)
	}
	// PhaseAvg is truncated to whole nanoseconds, so allow one of slack.
	want := 2 * stats.PhaseAvg[fluid.PhaseProject] / 40
	if d := stats.ProjectPerIter - want; d < -1 || d > 1 {
		t.Errorf("project per iteration = %v, want %v", stats.ProjectPerIter, want)
	}
	if stats.ProjectPerIter < 5*time.Microsecond {
		t.Errorf("project per iteration = %v, want >= 5us (400us over 40 iterations)", stats.ProjectPerIter)
	}
	if row := stats.ToCSV(2); row.AvgIters != 20 || row.NsPerIter != stats.ProjectPerIter.Nanoseconds() {
		t.Errorf("iteration cost not exported: %+v", row)
	}
}
