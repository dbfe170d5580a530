package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pthm-cable/macfluid/fluid"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// Snapshot holds the complete simulation state for replay.
type Snapshot struct {
	Version int `json:"version"`

	Frame   int64   `json:"frame"`
	SimTime float64 `json:"sim_time"`

	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Cols   int     `json:"cols"`
	Rows   int     `json:"rows"`

	Gravity fluid.Vec2 `json:"gravity"`

	// Row-major, Cols*Rows entries.
	Cells     []CellState  `json:"cells"`
	Particles []fluid.Vec2 `json:"particles"`

	Bookmark *Bookmark `json:"bookmark,omitempty"`
}

// CellState holds one cell's persisted state.
type CellState struct {
	Pressure float64        `json:"p"`
	VelX     float64        `json:"u"`
	VelY     float64        `json:"v"`
	Type     fluid.CellType `json:"t"`
}

// NewSnapshot captures the current state of s.
func NewSnapshot(s *fluid.Solver) *Snapshot {
	g := s.Grid()
	snap := &Snapshot{
		Version:   SnapshotVersion,
		Frame:     s.LastFrame().Frame,
		SimTime:   s.LastFrame().SimTime,
		Width:     g.Width(),
		Height:    g.Height(),
		Cols:      g.Cols(),
		Rows:      g.Rows(),
		Gravity:   s.Gravity(),
		Cells:     make([]CellState, 0, g.Len()),
		Particles: append([]fluid.Vec2(nil), s.Particles()...),
	}
	for y := 0; y < g.Rows(); y++ {
		for x := 0; x < g.Cols(); x++ {
			c := g.At(x, y)
			snap.Cells = append(snap.Cells, CellState{
				Pressure: c.Pressure,
				VelX:     c.Vel[fluid.AxisX],
				VelY:     c.Vel[fluid.AxisY],
				Type:     c.Type,
			})
		}
	}
	return snap
}

// Scenario returns the snapshot's particles as a scenario at rest.
func (snap *Snapshot) Scenario() fluid.Scenario {
	name := fmt.Sprintf("snapshot_%d", snap.Frame)
	return fluid.Scenario{
		Name:      name,
		Particles: append([]fluid.Vec2(nil), snap.Particles...),
	}
}

// Restore resets s to the snapshot's particles, face velocities and
// pressures, and queues the snapshot's gravity for the next frame. The solver
// must have been created with the same domain size. s is left untouched when
// an error is returned.
func (snap *Snapshot) Restore(s *fluid.Solver) error {
	g := s.Grid()
	if g.Cols() != snap.Cols || g.Rows() != snap.Rows {
		return fmt.Errorf("snapshot grid %dx%d does not match solver grid %dx%d",
			snap.Cols, snap.Rows, g.Cols(), g.Rows())
	}
	if len(snap.Cells) != snap.Cols*snap.Rows {
		return fmt.Errorf("snapshot has %d cells, want %d", len(snap.Cells), snap.Cols*snap.Rows)
	}
	if !s.Post(fluid.GravityCommand{Gravity: snap.Gravity}) {
		return fmt.Errorf("command queue full")
	}

	s.ResetWith(snap.Scenario())
	g = s.Grid()
	for i, c := range snap.Cells {
		cell := g.At(i%snap.Cols, i/snap.Cols)
		cell.Vel[fluid.AxisX] = c.VelX
		cell.Vel[fluid.AxisY] = c.VelY
		// Warm start for the first projection after restore.
		cell.Pressure = c.Pressure
	}
	s.BoundaryCollide()
	return nil
}

// SaveSnapshot writes a snapshot to disk.
// Returns the filepath where it was saved.
func SaveSnapshot(snapshot *Snapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	name := fmt.Sprintf("snapshot_%d", snapshot.Frame)
	if snapshot.Bookmark != nil {
		sanitized := strings.ReplaceAll(string(snapshot.Bookmark.Type), " ", "_")
		name = fmt.Sprintf("snapshot_%d_%s", snapshot.Frame, sanitized)
	}
	name += ".json"

	path := filepath.Join(dir, name)

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}

	return path, nil
}

// LoadSnapshot reads a snapshot from disk.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	if snapshot.Version != SnapshotVersion {
		return nil, fmt.Errorf("snapshot version %d, want %d", snapshot.Version, SnapshotVersion)
	}

	return &snapshot, nil
}
