package telemetry

import (
	"testing"
)

func hasBookmark(bookmarks []Bookmark, typ BookmarkType) bool {
	for _, bm := range bookmarks {
		if bm.Type == typ {
			return true
		}
	}
	return false
}

func TestBookmarkDetector_SolverStall(t *testing.T) {
	bd := NewBookmarkDetector(10)

	if bms := bd.Check(WindowStats{WindowEndFrame: 30, Steps: 30}); hasBookmark(bms, BookmarkSolverStall) {
		t.Error("unexpected solver_stall on converged window")
	}

	stalled := WindowStats{WindowEndFrame: 60, Steps: 30, NonConverged: 4, ResidualMax: 0.2}
	bms := bd.Check(stalled)
	if !hasBookmark(bms, BookmarkSolverStall) {
		t.Fatal("expected solver_stall bookmark")
	}
	if bms[0].Frame != 60 {
		t.Errorf("frame = %d, want 60", bms[0].Frame)
	}

	// Still stalled: edge triggered, no repeat
	stalled.WindowEndFrame = 90
	if hasBookmark(bd.Check(stalled), BookmarkSolverStall) {
		t.Error("solver_stall should not repeat on consecutive windows")
	}

	// Recovers, then stalls again
	bd.Check(WindowStats{WindowEndFrame: 120, Steps: 30})
	stalled.WindowEndFrame = 150
	if !hasBookmark(bd.Check(stalled), BookmarkSolverStall) {
		t.Error("expected solver_stall after recovery")
	}
}

func TestBookmarkDetector_SubstepClamp(t *testing.T) {
	bd := NewBookmarkDetector(10)

	bms := bd.Check(WindowStats{WindowEndFrame: 30, ClampedFrames: 2, SpeedMax: 400})
	if !hasBookmark(bms, BookmarkSubstepClamp) {
		t.Error("expected substep_clamp bookmark")
	}
	if hasBookmark(bd.Check(WindowStats{WindowEndFrame: 60, ClampedFrames: 1}), BookmarkSubstepClamp) {
		t.Error("substep_clamp should not repeat while still clamped")
	}
}

func TestBookmarkDetector_SpeedSpike(t *testing.T) {
	bd := NewBookmarkDetector(10)

	for i := 0; i < 5; i++ {
		bd.Check(WindowStats{WindowEndFrame: int64(i * 30), SpeedMax: 2, FluidCells: 50})
	}

	bms := bd.Check(WindowStats{WindowEndFrame: 150, SpeedMax: 9, FluidCells: 50})
	if !hasBookmark(bms, BookmarkSpeedSpike) {
		t.Error("expected speed_spike bookmark")
	}

	// Below the absolute floor never triggers
	quiet := NewBookmarkDetector(10)
	for i := 0; i < 5; i++ {
		quiet.Check(WindowStats{SpeedMax: 0.1})
	}
	if hasBookmark(quiet.Check(WindowStats{SpeedMax: 0.5}), BookmarkSpeedSpike) {
		t.Error("speed_spike should need a minimum absolute speed")
	}
}

func TestBookmarkDetector_AirPocketSpike(t *testing.T) {
	bd := NewBookmarkDetector(10)

	for i := 0; i < 4; i++ {
		bd.Check(WindowStats{AirPocketsMean: 0.5, AirPocketsMax: 1, SpeedMax: 2})
	}
	if !hasBookmark(bd.Check(WindowStats{AirPocketsMax: 6, SpeedMax: 2}), BookmarkAirPocketSpike) {
		t.Error("expected air_pocket_spike bookmark")
	}
}

func TestBookmarkDetector_Settled(t *testing.T) {
	bd := NewBookmarkDetector(10)

	var emitted int
	for i := 0; i < 8; i++ {
		bms := bd.Check(WindowStats{WindowEndFrame: int64(i * 30), FluidCells: 40, SpeedMax: 0.01})
		if hasBookmark(bms, BookmarkSettled) {
			emitted++
			if i != settledWindows-1 {
				t.Errorf("settled emitted at window %d, want %d", i, settledWindows-1)
			}
		}
	}
	if emitted != 1 {
		t.Errorf("settled emitted %d times, want exactly once", emitted)
	}

	// Motion resets the run
	bd.Check(WindowStats{FluidCells: 40, SpeedMax: 3})
	for i := 0; i < settledWindows; i++ {
		if hasBookmark(bd.Check(WindowStats{FluidCells: 40}), BookmarkSettled) {
			emitted++
		}
	}
	if emitted != 2 {
		t.Errorf("expected settled again after motion, got %d total", emitted)
	}
}

func TestBookmarkDetector_Reset(t *testing.T) {
	bd := NewBookmarkDetector(3)
	if bd.historySize != settledWindows {
		t.Errorf("history size = %d, want minimum %d", bd.historySize, settledWindows)
	}

	bd.Check(WindowStats{NonConverged: 1})
	bd.Reset()
	if len(bd.getHistory()) != 0 {
		t.Error("history not cleared")
	}
	if !hasBookmark(bd.Check(WindowStats{NonConverged: 1}), BookmarkSolverStall) {
		t.Error("stall state not cleared by reset")
	}
}
