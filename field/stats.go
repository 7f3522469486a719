package field

import (
	"log/slog"
	"time"

	"github.com/pthm-cable/flowfield/grid"
)

// SolveStats describes one Solve call.
type SolveStats struct {
	Destination grid.Point
	Cells       int // total cells
	Reachable   int // cells with a path to the destination, destination included
	Blocked     int // cells marked as blockers
	Unreachable int // walkable cells cut off from the destination
	Expansions  int // frontier nodes popped during propagation
	Workers     int // extraction bands run (1 = sequential)

	Propagate time.Duration
	Extract   time.Duration
}

// Total returns the combined duration of both stages.
func (s SolveStats) Total() time.Duration {
	return s.Propagate + s.Extract
}

// LogValue implements slog.LogValuer for structured logging.
func (s SolveStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("dest_x", s.Destination.X),
		slog.Int("dest_y", s.Destination.Y),
		slog.Int("cells", s.Cells),
		slog.Int("reachable", s.Reachable),
		slog.Int("blocked", s.Blocked),
		slog.Int("unreachable", s.Unreachable),
		slog.Int("expansions", s.Expansions),
		slog.Int("workers", s.Workers),
		slog.Int64("propagate_us", s.Propagate.Microseconds()),
		slog.Int64("extract_us", s.Extract.Microseconds()),
	)
}
