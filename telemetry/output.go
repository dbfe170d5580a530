package telemetry

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
	"github.com/pthm-cable/macfluid/config"
	"github.com/pthm-cable/macfluid/fluid"
)

// StepRecord is one row of steps.csv.
type StepRecord struct {
	Frame      int64   `csv:"frame"`
	Step       int64   `csv:"step"`
	Dt         float64 `csv:"dt"`
	MaxSpeed   float64 `csv:"max_speed"`
	FluidCells int     `csv:"fluid_cells"`
	AirPockets int     `csv:"air_pockets"`
	Particles  int     `csv:"particles"`
	Unknowns   int     `csv:"unknowns"`
	Iterations int     `csv:"iterations"`
	Residual   float64 `csv:"residual"`
	Converged  bool    `csv:"converged"`
	DivBefore  float64 `csv:"div_before"`
	DivAfter   float64 `csv:"div_after"`
}

// NewStepRecord flattens s for CSV export.
func NewStepRecord(frame int64, s fluid.StepStats) StepRecord {
	return StepRecord{
		Frame:      frame,
		Step:       s.Step,
		Dt:         s.Dt,
		MaxSpeed:   s.MaxSpeed,
		FluidCells: s.FluidCells,
		AirPockets: s.AirPockets,
		Particles:  s.Particles,
		Unknowns:   s.Projection.Unknowns,
		Iterations: s.Projection.Iterations,
		Residual:   s.Projection.Residual,
		Converged:  s.Projection.Converged,
		DivBefore:  s.Projection.DivergenceBefore,
		DivAfter:   s.Projection.DivergenceAfter,
	}
}

// csvFile writes gocsv records, emitting the header only once.
type csvFile struct {
	name          string
	f             *os.File
	headerWritten bool
}

func (c *csvFile) write(records any) error {
	var err error
	if !c.headerWritten {
		err = gocsv.Marshal(records, c.f)
		c.headerWritten = err == nil
	} else {
		err = gocsv.MarshalWithoutHeaders(records, c.f)
	}
	if err != nil {
		return fmt.Errorf("writing %s: %w", c.name, err)
	}
	return nil
}

// OutputManager handles structured run output with CSV logging.
type OutputManager struct {
	dir       string
	telemetry *csvFile
	perf      *csvFile
	steps     *csvFile
	bookmarks *csvFile
}

// NewOutputManager creates a new output manager and initializes the output directory.
// Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}
	for _, slot := range []struct {
		dst  **csvFile
		name string
	}{
		{&om.telemetry, "telemetry.csv"},
		{&om.perf, "perf.csv"},
		{&om.steps, "steps.csv"},
		{&om.bookmarks, "bookmarks.csv"},
	} {
		f, err := os.Create(filepath.Join(dir, slot.name))
		if err != nil {
			om.Close()
			return nil, fmt.Errorf("creating %s: %w", slot.name, err)
		}
		*slot.dst = &csvFile{name: slot.name, f: f}
	}

	return om, nil
}

// WriteConfig saves the current configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteTelemetry writes a window stats record to telemetry.csv.
func (om *OutputManager) WriteTelemetry(stats WindowStats) error {
	if om == nil {
		return nil
	}
	return om.telemetry.write([]WindowStats{stats})
}

// WritePerf writes a performance stats record to perf.csv.
func (om *OutputManager) WritePerf(stats PerfStats, windowEnd int64) error {
	if om == nil {
		return nil
	}
	return om.perf.write([]PerfStatsCSV{stats.ToCSV(windowEnd)})
}

// WriteStep writes one solver step record to steps.csv.
func (om *OutputManager) WriteStep(r StepRecord) error {
	if om == nil {
		return nil
	}
	return om.steps.write([]StepRecord{r})
}

// WriteBookmark writes a bookmark record to bookmarks.csv.
func (om *OutputManager) WriteBookmark(b Bookmark) error {
	if om == nil {
		return nil
	}
	return om.bookmarks.write([]Bookmark{b})
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close flushes and closes all output files.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}

	var errs []error
	for _, c := range []*csvFile{om.telemetry, om.perf, om.steps, om.bookmarks} {
		if c == nil || c.f == nil {
			continue
		}
		if err := c.f.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing %s: %w", c.name, err))
		}
	}
	return errors.Join(errs...)
}

// ReadSteps parses a steps.csv stream.
func ReadSteps(r io.Reader) ([]StepRecord, error) {
	var records []StepRecord
	if err := gocsv.Unmarshal(r, &records); err != nil {
		return nil, fmt.Errorf("reading steps: %w", err)
	}
	return records, nil
}
