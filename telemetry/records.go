package telemetry

import (
	"github.com/pthm-cable/flowfield/field"
	"github.com/pthm-cable/flowfield/grid"
)

// SolveRecord is one row of solves.csv.
type SolveRecord struct {
	Solve       int   `csv:"solve"`
	DestX       int   `csv:"dest_x"`
	DestY       int   `csv:"dest_y"`
	Cells       int   `csv:"cells"`
	Reachable   int   `csv:"reachable"`
	Blocked     int   `csv:"blocked"`
	Unreachable int   `csv:"unreachable"`
	Expansions  int   `csv:"expansions"`
	Workers     int   `csv:"workers"`
	PropagateUS int64 `csv:"propagate_us"`
	ExtractUS   int64 `csv:"extract_us"`
}

// NewSolveRecord flattens SolveStats for CSV export.
func NewSolveRecord(solve int, s field.SolveStats) SolveRecord {
	return SolveRecord{
		Solve:       solve,
		DestX:       s.Destination.X,
		DestY:       s.Destination.Y,
		Cells:       s.Cells,
		Reachable:   s.Reachable,
		Blocked:     s.Blocked,
		Unreachable: s.Unreachable,
		Expansions:  s.Expansions,
		Workers:     s.Workers,
		PropagateUS: s.Propagate.Microseconds(),
		ExtractUS:   s.Extract.Microseconds(),
	}
}

// TileRecord is one row of tiles.csv, for external visualisers.
type TileRecord struct {
	X         int    `csv:"x"`
	Y         int    `csv:"y"`
	State     uint8  `csv:"state"`
	Direction uint8  `csv:"direction"`
	Name      string `csv:"direction_name"`
	Reachable bool   `csv:"reachable"`
	NextX     int    `csv:"next_x"` // -1 when the cell has no step
	NextY     int    `csv:"next_y"`
}

// TileRecords reads every tile of a solved field in row-major order.
func TileRecords(f *field.FlowField) ([]TileRecord, error) {
	n := f.Width() * f.Height()
	records := make([]TileRecord, 0, n)
	for i := 0; i < n; i++ {
		t, err := f.TileAt(i)
		if err != nil {
			return nil, err
		}
		p := grid.Pt(i%f.Width(), i/f.Width())
		reachable, err := f.Reachable(p)
		if err != nil {
			return nil, err
		}
		next, ok, err := f.Next(p)
		if err != nil {
			return nil, err
		}
		r := TileRecord{
			X:         p.X,
			Y:         p.Y,
			State:     t.State,
			Direction: t.Direction,
			Name:      field.DirectionName(t.Direction),
			Reachable: reachable,
			NextX:     -1,
			NextY:     -1,
		}
		if ok {
			r.NextX, r.NextY = next.X, next.Y
		}
		records = append(records, r)
	}
	return records, nil
}

// SegmentRecord is one row of segments.csv: a cell and the cell it steps to.
type SegmentRecord struct {
	FromX int `csv:"from_x"`
	FromY int `csv:"from_y"`
	ToX   int `csv:"to_x"`
	ToY   int `csv:"to_y"`
}

// SegmentRecords lists every step of a solved field in row-major order.
func SegmentRecords(f *field.FlowField) ([]SegmentRecord, error) {
	segments, err := f.Segments()
	if err != nil {
		return nil, err
	}
	records := make([]SegmentRecord, len(segments))
	for i, seg := range segments {
		records[i] = SegmentRecord{FromX: seg.From.X, FromY: seg.From.Y, ToX: seg.To.X, ToY: seg.To.Y}
	}
	return records, nil
}

// ArrivalRecord is one row of arrivals.csv.
type ArrivalRecord struct {
	Agent  uint32 `csv:"agent"`
	StartX int    `csv:"start_x"`
	StartY int    `csv:"start_y"`
	Steps  int    `csv:"steps"`
	Step   int    `csv:"arrived_step"`
}
