package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pthm-cable/flowfield/config"
	"github.com/pthm-cable/flowfield/field"
	"github.com/pthm-cable/flowfield/grid"
)

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return strings.Split(strings.TrimSpace(string(data)), "\n")
}

func TestNewOutputManagerDisabled(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil {
		t.Fatalf("NewOutputManager(\"\") failed: %v", err)
	}
	if om != nil {
		t.Fatal("expected nil manager when output is disabled")
	}
	// All methods are nil-safe
	if err := om.WriteSolve(SolveRecord{}); err != nil {
		t.Errorf("WriteSolve on nil manager: %v", err)
	}
	if err := om.WriteArrivals([]ArrivalRecord{{}}); err != nil {
		t.Errorf("WriteArrivals on nil manager: %v", err)
	}
	if om.Dir() != "" {
		t.Errorf("Dir() = %q, want empty", om.Dir())
	}
	if err := om.Close(); err != nil {
		t.Errorf("Close on nil manager: %v", err)
	}
}

// TestOutputHeadersWrittenOnce verifies repeated writes append rows under one header.
func TestOutputHeadersWrittenOnce(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("NewOutputManager failed: %v", err)
	}

	for i := 0; i < 3; i++ {
		rec := NewSolveRecord(i, field.SolveStats{Destination: grid.Pt(1, 2), Cells: 9})
		if err := om.WriteSolve(rec); err != nil {
			t.Fatalf("WriteSolve failed: %v", err)
		}
	}
	if err := om.WriteArrivals([]ArrivalRecord{{Agent: 1, Steps: 4}, {Agent: 2, Steps: 5}}); err != nil {
		t.Fatalf("WriteArrivals failed: %v", err)
	}
	if err := om.WriteArrivals([]ArrivalRecord{{Agent: 3, Steps: 6}}); err != nil {
		t.Fatalf("WriteArrivals failed: %v", err)
	}
	cfg, err := config.Defaults()
	if err != nil {
		t.Fatalf("config.Defaults failed: %v", err)
	}
	if err := om.WriteConfig(cfg); err != nil {
		t.Fatalf("WriteConfig failed: %v", err)
	}
	if err := om.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	solves := readLines(t, filepath.Join(dir, "solves.csv"))
	if len(solves) != 4 {
		t.Fatalf("solves.csv has %d lines, want 4", len(solves))
	}
	if !strings.HasPrefix(solves[0], "solve,dest_x,dest_y") {
		t.Errorf("solves.csv header = %q", solves[0])
	}
	if solves[1] != "0,1,2,9,0,0,0,0,0,0,0" {
		t.Errorf("solves.csv first row = %q", solves[1])
	}

	arrivals := readLines(t, filepath.Join(dir, "arrivals.csv"))
	if len(arrivals) != 4 {
		t.Errorf("arrivals.csv has %d lines, want 4", len(arrivals))
	}
	if _, err := os.Stat(filepath.Join(dir, "config.yaml")); err != nil {
		t.Errorf("config.yaml not written: %v", err)
	}
}

func TestTileRecords(t *testing.T) {
	f, err := field.New(3, 3)
	if err != nil {
		t.Fatalf("field.New failed: %v", err)
	}
	defer f.Dispose()

	if _, err := TileRecords(f); err == nil {
		t.Error("TileRecords on an unsolved field succeeded")
	}

	f.SetBlocked(grid.Pt(1, 0), true)
	if _, err := f.Solve(grid.Pt(1, 2)); err != nil {
		t.Fatalf("Solve failed: %v", err)
	}
	records, err := TileRecords(f)
	if err != nil {
		t.Fatalf("TileRecords failed: %v", err)
	}
	if len(records) != 9 {
		t.Fatalf("len(records) = %d, want 9", len(records))
	}

	blocked := records[1]
	if blocked.State == 0 || blocked.Reachable || blocked.NextX != -1 {
		t.Errorf("blocked record = %+v, want blocked, unreachable, no step", blocked)
	}
	dest := records[7]
	if !dest.Reachable || dest.NextX != -1 {
		t.Errorf("destination record = %+v, want reachable with no step", dest)
	}
	corner := records[0]
	if corner.NextX != 0 || corner.NextY != 1 {
		t.Errorf("corner steps to (%d,%d), want (0,1)", corner.NextX, corner.NextY)
	}

	segments, err := SegmentRecords(f)
	if err != nil {
		t.Fatalf("SegmentRecords failed: %v", err)
	}
	// Every cell with a step has exactly one segment, matching its tile record
	withStep := 0
	for _, r := range records {
		if r.NextX >= 0 {
			withStep++
		}
	}
	if len(segments) != withStep {
		t.Fatalf("len(segments) = %d, want %d", len(segments), withStep)
	}
	if first := segments[0]; first != (SegmentRecord{FromX: 0, FromY: 0, ToX: 0, ToY: 1}) {
		t.Errorf("first segment = %+v, want (0,0)->(0,1)", first)
	}
}

func TestWriteSegments(t *testing.T) {
	dir := t.TempDir()
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("NewOutputManager failed: %v", err)
	}
	batch := []SegmentRecord{{FromX: 1, FromY: 1, ToX: 0, ToY: 0}}
	for i := 0; i < 2; i++ {
		if err := om.WriteSegments(batch); err != nil {
			t.Fatalf("WriteSegments failed: %v", err)
		}
	}
	if err := om.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	lines := readLines(t, filepath.Join(dir, "segments.csv"))
	want := []string{"from_x,from_y,to_x,to_y", "1,1,0,0", "1,1,0,0"}
	if len(lines) != len(want) {
		t.Fatalf("segments.csv = %q, want %q", lines, want)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}
