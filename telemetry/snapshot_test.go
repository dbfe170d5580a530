package telemetry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pthm-cable/macfluid/fluid"
)

func testSolver(t *testing.T) *fluid.Solver {
	t.Helper()
	opts := fluid.DefaultOptions()
	opts.Logger = quietLogger()
	return fluid.New(8, 6, opts)
}

func TestSnapshotSaveLoad(t *testing.T) {
	tmpDir := t.TempDir()

	s := testSolver(t)
	for i := 0; i < 3; i++ {
		s.AdvanceFrame()
	}

	snapshot := NewSnapshot(s)
	snapshot.Bookmark = &Bookmark{
		Type:        BookmarkSpeedSpike,
		Frame:       3,
		Description: "Test bookmark",
	}

	if snapshot.Cols != s.Grid().Cols() || len(snapshot.Cells) != s.Grid().Len() {
		t.Fatalf("snapshot grid %dx%d with %d cells", snapshot.Cols, snapshot.Rows, len(snapshot.Cells))
	}

	path, err := SaveSnapshot(snapshot, tmpDir)
	if err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("Snapshot file not created at %s", path)
	}

	loaded, err := LoadSnapshot(path)
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}

	if loaded.Version != snapshot.Version {
		t.Errorf("Version mismatch: got %d, want %d", loaded.Version, snapshot.Version)
	}
	if loaded.Frame != 3 {
		t.Errorf("Frame mismatch: got %d, want 3", loaded.Frame)
	}
	if loaded.Gravity != s.Gravity() {
		t.Errorf("Gravity mismatch: got %v, want %v", loaded.Gravity, s.Gravity())
	}
	if len(loaded.Particles) != len(snapshot.Particles) {
		t.Errorf("Particle count mismatch: got %d, want %d", len(loaded.Particles), len(snapshot.Particles))
	}
	for i, c := range loaded.Cells {
		if c != snapshot.Cells[i] {
			t.Fatalf("cell %d mismatch: got %+v, want %+v", i, c, snapshot.Cells[i])
		}
	}
	if loaded.Bookmark == nil {
		t.Error("Bookmark not loaded")
	} else if loaded.Bookmark.Type != snapshot.Bookmark.Type {
		t.Errorf("Bookmark type mismatch: got %s, want %s", loaded.Bookmark.Type, snapshot.Bookmark.Type)
	}
}

func TestSnapshotFilename(t *testing.T) {
	tmpDir := t.TempDir()

	snapshot := &Snapshot{
		Version: SnapshotVersion,
		Frame:   5000,
		Bookmark: &Bookmark{
			Type:  BookmarkSolverStall,
			Frame: 5000,
		},
	}

	path, err := SaveSnapshot(snapshot, tmpDir)
	if err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}

	expected := filepath.Join(tmpDir, "snapshot_5000_solver_stall.json")
	if path != expected {
		t.Errorf("Path mismatch: got %s, want %s", path, expected)
	}

	snapshotNoBookmark := &Snapshot{
		Version: SnapshotVersion,
		Frame:   3000,
	}

	path, err = SaveSnapshot(snapshotNoBookmark, tmpDir)
	if err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}

	expected = filepath.Join(tmpDir, "snapshot_3000.json")
	if path != expected {
		t.Errorf("Path mismatch: got %s, want %s", path, expected)
	}
}

func TestLoadSnapshotVersionMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "old.json")
	if err := os.WriteFile(path, []byte(`{"version": 99}`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadSnapshot(path); err == nil {
		t.Error("expected version mismatch error")
	}
}

func TestSnapshotRestore(t *testing.T) {
	src := testSolver(t)
	for i := 0; i < 4; i++ {
		src.AdvanceFrame()
	}
	snap := NewSnapshot(src)
	snap.Gravity = fluid.Vec2{X: 1, Y: -3}

	dst := testSolver(t)
	if err := snap.Restore(dst); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}

	if len(dst.Particles()) != len(src.Particles()) {
		t.Fatalf("particles = %d, want %d", len(dst.Particles()), len(src.Particles()))
	}
	for i, p := range dst.Particles() {
		if p != src.Particles()[i] {
			t.Fatalf("particle %d = %v, want %v", i, p, src.Particles()[i])
		}
	}
	g, want := dst.Grid(), src.Grid()
	for y := 0; y < g.Rows(); y++ {
		for x := 0; x < g.Cols(); x++ {
			if g.At(x, y).Vel != want.At(x, y).Vel {
				t.Fatalf("velocity at (%d,%d) = %v, want %v", x, y, g.At(x, y).Vel, want.At(x, y).Vel)
			}
			if g.At(x, y).Type != want.At(x, y).Type {
				t.Fatalf("type at (%d,%d) = %v, want %v", x, y, g.At(x, y).Type, want.At(x, y).Type)
			}
			if g.At(x, y).Pressure != want.At(x, y).Pressure {
				t.Fatalf("pressure at (%d,%d) = %v, want %v", x, y, g.At(x, y).Pressure, want.At(x, y).Pressure)
			}
		}
	}

	dst.AdvanceFrame()
	if dst.Gravity() != snap.Gravity {
		t.Errorf("gravity = %v, want %v", dst.Gravity(), snap.Gravity)
	}
}

func TestSnapshotRestoreQueueFull(t *testing.T) {
	src := testSolver(t)
	src.AdvanceFrame()
	snap := NewSnapshot(src)

	opts := fluid.DefaultOptions()
	opts.Logger = quietLogger()
	opts.CommandBuffer = 1
	dst := fluid.New(8, 6, opts)
	dst.AdvanceFrame()
	dst.AdvanceFrame()
	if !dst.Post(fluid.GravityCommand{}) {
		t.Fatal("first post should fit")
	}

	grid := dst.Grid()
	frame := dst.LastFrame()
	if err := snap.Restore(dst); err == nil {
		t.Fatal("expected queue full error")
	}
	if dst.Grid() != grid {
		t.Error("solver was reset despite the error")
	}
	if dst.LastFrame() != frame {
		t.Errorf("last frame = %+v, want %+v", dst.LastFrame(), frame)
	}
}

func TestSnapshotRestoreSizeMismatch(t *testing.T) {
	snap := NewSnapshot(testSolver(t))

	opts := fluid.DefaultOptions()
	opts.Logger = quietLogger()
	other := fluid.New(12, 6, opts)
	if err := snap.Restore(other); err == nil {
		t.Error("expected grid size mismatch error")
	}
}
