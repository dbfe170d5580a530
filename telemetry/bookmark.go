package telemetry

import (
	"fmt"
	"log/slog"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkSolverStall    BookmarkType = "solver_stall"
	BookmarkSubstepClamp   BookmarkType = "substep_clamp"
	BookmarkAirPocketSpike BookmarkType = "air_pocket_spike"
	BookmarkSpeedSpike     BookmarkType = "speed_spike"
	BookmarkSettled        BookmarkType = "settled"
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type" json:"type"`
	Frame       int64        `csv:"frame" json:"frame"`
	Description string       `csv:"description" json:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"frame", b.Frame,
		"description", b.Description,
	)
}

// Detection thresholds.
const (
	spikeFactor    = 2.0
	minSpikeSpeed  = 1.0
	minSpikePocket = 3
	settledSpeed   = 0.05
	settledWindows = 5
)

// BookmarkDetector detects interesting moments in the simulation.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	// State tracking
	stalled        bool // previous window had a non-converged solve
	clamped        bool // previous window had a clamped frame
	settledCount   int  // consecutive quiet windows
	settledEmitted bool
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < settledWindows {
		historySize = settledWindows
	}
	return &BookmarkDetector{
		history:     make([]WindowStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark

	// Edge triggered: only the first window of a stall or clamp run.
	if b := bd.checkSolverStall(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if b := bd.checkSubstepClamp(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	if bd.historyFull || bd.historyIdx > 0 {
		if b := bd.checkAirPocketSpike(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
		if b := bd.checkSpeedSpike(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
	}

	if b := bd.checkSettled(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	bd.addToHistory(stats)
	return bookmarks
}

// Reset forgets all history, e.g. after the solver is reset.
func (bd *BookmarkDetector) Reset() {
	*bd = *NewBookmarkDetector(bd.historySize)
}

func (bd *BookmarkDetector) addToHistory(stats WindowStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

func (bd *BookmarkDetector) getHistory() []WindowStats {
	if bd.historyFull {
		return bd.history
	}
	return bd.history[:bd.historyIdx]
}

func (bd *BookmarkDetector) checkSolverStall(stats WindowStats) *Bookmark {
	was := bd.stalled
	bd.stalled = stats.NonConverged > 0
	if !bd.stalled || was {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkSolverStall,
		Frame:       stats.WindowEndFrame,
		Description: fmt.Sprintf("%d of %d pressure solves hit the iteration cap (residual %.3g)", stats.NonConverged, stats.Steps, stats.ResidualMax),
	}
}

func (bd *BookmarkDetector) checkSubstepClamp(stats WindowStats) *Bookmark {
	was := bd.clamped
	bd.clamped = stats.ClampedFrames > 0
	if !bd.clamped || was {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkSubstepClamp,
		Frame:       stats.WindowEndFrame,
		Description: fmt.Sprintf("%d frames exceeded the substep limit (max speed %.2f)", stats.ClampedFrames, stats.SpeedMax),
	}
}

func (bd *BookmarkDetector) checkAirPocketSpike(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 || stats.AirPocketsMax < minSpikePocket {
		return nil
	}

	var total float64
	for _, h := range history {
		total += h.AirPocketsMean
	}
	avg := total / float64(len(history))

	if float64(stats.AirPocketsMax) > max(avg, 1)*spikeFactor {
		return &Bookmark{
			Type:        BookmarkAirPocketSpike,
			Frame:       stats.WindowEndFrame,
			Description: fmt.Sprintf("%d enclosed air cells vs %.1f average", stats.AirPocketsMax, avg),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkSpeedSpike(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 || stats.SpeedMax < minSpikeSpeed {
		return nil
	}

	var total float64
	for _, h := range history {
		total += h.SpeedMax
	}
	avg := total / float64(len(history))
	if avg == 0 {
		return nil
	}

	if stats.SpeedMax > avg*spikeFactor {
		return &Bookmark{
			Type:        BookmarkSpeedSpike,
			Frame:       stats.WindowEndFrame,
			Description: fmt.Sprintf("Max speed %.2f is %.1fx average (%.2f)", stats.SpeedMax, stats.SpeedMax/avg, avg),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkSettled(stats WindowStats) *Bookmark {
	if stats.FluidCells == 0 || stats.SpeedMax > settledSpeed {
		bd.settledCount = 0
		bd.settledEmitted = false
		return nil
	}

	bd.settledCount++
	if bd.settledCount >= settledWindows && !bd.settledEmitted {
		bd.settledEmitted = true
		return &Bookmark{
			Type:        BookmarkSettled,
			Frame:       stats.WindowEndFrame,
			Description: fmt.Sprintf("Fluid at rest (%d cells, max speed %.3f) over %d windows", stats.FluidCells, stats.SpeedMax, bd.settledCount),
		}
	}
	return nil
}
