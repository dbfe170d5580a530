package telemetry

import (
	"os"
	"path/filepath"
	"testing"
)

func TestPlotDivergence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "divergence.png")
	records := []StepRecord{
		{Step: 1, DivBefore: 2, DivAfter: 0.01},
		{Step: 2, DivBefore: 1.5, DivAfter: 0.02},
		{Step: 3, DivBefore: 1.2, DivAfter: 0.005},
	}
	if err := PlotDivergence(records, path); err != nil {
		t.Fatalf("PlotDivergence: %v", err)
	}
	if info, err := os.Stat(path); err != nil || info.Size() == 0 {
		t.Errorf("plot not written: %v", err)
	}

	if err := PlotDivergence(nil, path); err == nil {
		t.Error("expected error for empty records")
	}
}

func TestPlotPressure(t *testing.T) {
	dir := t.TempDir()
	s := testSolver(t)

	// Fresh grid: flat zero pressure must still render.
	if err := PlotPressure(s.Grid(), filepath.Join(dir, "flat.png")); err != nil {
		t.Fatalf("PlotPressure on flat field: %v", err)
	}

	s.AdvanceFrame()
	path := filepath.Join(dir, "pressure.png")
	if err := PlotPressure(s.Grid(), path); err != nil {
		t.Fatalf("PlotPressure: %v", err)
	}
	if info, err := os.Stat(path); err != nil || info.Size() == 0 {
		t.Errorf("plot not written: %v", err)
	}
}
