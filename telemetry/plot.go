package telemetry

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/pthm-cable/macfluid/fluid"
)

// PlotDivergence charts per-step divergence before and after projection
// and writes it to path. The image format follows the file extension.
func PlotDivergence(records []StepRecord, path string) error {
	if len(records) == 0 {
		return fmt.Errorf("plot divergence: no step records")
	}

	before := make(plotter.XYs, len(records))
	after := make(plotter.XYs, len(records))
	for i, r := range records {
		before[i] = plotter.XY{X: float64(r.Step), Y: r.DivBefore}
		after[i] = plotter.XY{X: float64(r.Step), Y: r.DivAfter}
	}

	p := plot.New()
	p.Title.Text = "Divergence per step"
	p.X.Label.Text = "step"
	p.Y.Label.Text = "sum |div|"
	p.Legend.Top = true

	if err := plotutil.AddLines(p, "before", before, "after", after); err != nil {
		return fmt.Errorf("plot divergence: %w", err)
	}
	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("save divergence plot: %w", err)
	}
	return nil
}

// pressureGrid adapts a fluid grid to plotter.GridXYZ, sampling pressure at
// cell centres.
type pressureGrid struct {
	g *fluid.Grid
}

func (pg pressureGrid) Dims() (c, r int)   { return pg.g.Cols(), pg.g.Rows() }
func (pg pressureGrid) Z(c, r int) float64 { return pg.g.At(c, r).Pressure }
func (pg pressureGrid) X(c int) float64    { return float64(c) + 0.5 }
func (pg pressureGrid) Y(r int) float64    { return float64(r) + 0.5 }

// PlotPressure renders the pressure field of g as a heat map at path.
func PlotPressure(g *fluid.Grid, path string) error {
	hm := plotter.NewHeatMap(pressureGrid{g}, palette.Heat(32, 1))
	if hm.Min == hm.Max {
		// Flat field; widen the range so every cell maps to one colour.
		hm.Max = hm.Min + 1
	}

	p := plot.New()
	p.Title.Text = "Pressure"
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"
	p.Add(hm)

	aspect := float64(g.Rows()) / float64(g.Cols())
	w := 6 * vg.Inch
	if err := p.Save(w, vg.Length(aspect)*w, path); err != nil {
		return fmt.Errorf("save pressure plot: %w", err)
	}
	return nil
}
