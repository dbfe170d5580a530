package ui

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/macfluid/fluid"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Frame      int64
	SimTime    float64
	Substeps   int
	Clamped    bool
	FluidCells int
	Particles  int
	AirPockets int
	Tracers    int

	Iterations    int
	MaxIterations int
	Residual      float64
	Converged     bool
	DivAfter      float64

	Gravity fluid.Vec2
	FPS     int32
	Paused  bool
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
	width    int32
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{
		renderer: NewRenderer(),
		width:    260,
	}
}

// Draw renders the HUD at the top-left corner.
func (h *HUD) Draw(data HUDData) {
	r := h.renderer
	pad := r.Theme.Padding
	x := pad * 2
	height := r.Theme.LineHeight*12 + pad*2

	r.DrawPanel(pad, pad, h.width, height)
	y := pad * 2

	status := "Running"
	if data.Paused {
		status = "PAUSED"
	}
	y = r.DrawSectionHeader(x, y, fmt.Sprintf("MAC Fluid  [%s]", status))

	y = r.DrawLabelValue(x, y, "Frame", fmt.Sprintf("%d  (%d fps)", data.Frame, data.FPS))
	y = r.DrawLabelValue(x, y, "Sim time", fmt.Sprintf("%.2fs", data.SimTime))
	substeps := fmt.Sprintf("%d", data.Substeps)
	if data.Clamped {
		substeps += " (clamped)"
	}
	y = r.DrawLabelValue(x, y, "Substeps", substeps)
	y = r.DrawLabelValue(x, y, "Fluid cells", fmt.Sprintf("%d", data.FluidCells))
	y = r.DrawLabelValue(x, y, "Particles", fmt.Sprintf("%d", data.Particles))
	y = r.DrawLabelValue(x, y, "Tracers", fmt.Sprintf("%d", data.Tracers))
	y = r.DrawLabelValue(x, y, "Air pockets", fmt.Sprintf("%d", data.AirPockets))
	y = r.DrawLabelValue(x, y, "Gravity", fmt.Sprintf("(%.2f, %.2f)", data.Gravity.X, data.Gravity.Y))

	y = r.DrawUsageBar(x, y, "Iterations", float32(data.Iterations), float32(data.MaxIterations), h.width-pad*2)
	residual := fmt.Sprintf("%.2e", data.Residual)
	if !data.Converged {
		rl.DrawText(residual+" !", x+r.Theme.LabelWidth, y, r.Theme.FontSize, r.Theme.WarnColor)
		rl.DrawText("Residual:", x, y, r.Theme.FontSize, r.Theme.LabelColor)
		y += r.Theme.LineHeight
	} else {
		y = r.DrawLabelValue(x, y, "Residual", residual)
	}
	r.DrawLabelValue(x, y, "Div after", fmt.Sprintf("%.2e", data.DivAfter))
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenWidth, screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// PerfPanel renders the per-phase solver timing panel.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y int32) *PerfPanel {
	return &PerfPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
	}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the average step time and its breakdown over fluid.Phases.
func (p *PerfPanel) Draw(avgStep time.Duration, phaseAvg map[string]time.Duration) {
	x := p.x
	y := p.y

	rl.DrawText("Step Performance", x, y, 16, rl.White)
	y += 20

	rl.DrawText(fmt.Sprintf("Step: %s", avgStep.Round(time.Microsecond)), x, y, 14, rl.Yellow)
	y += 16

	for _, name := range fluid.Phases {
		avg := phaseAvg[name]
		pct := float64(0)
		if avgStep > 0 {
			pct = float64(avg) / float64(avgStep) * 100
		}

		color := rl.LightGray
		if pct > 50 {
			color = rl.Red
		} else if pct > 25 {
			color = rl.Orange
		}

		rl.DrawText(
			fmt.Sprintf("%-10s %6s %5.1f%%", name, avg.Round(time.Microsecond), pct),
			x, y, 12, color,
		)
		y += 14
	}
}
