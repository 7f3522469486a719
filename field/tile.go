// Package field computes flow fields: per-cell directions that lead every
// walkable cell of a grid toward a single destination.
package field

import (
	"errors"
	"math"

	"github.com/pthm-cable/flowfield/grid"
)

// FlowTile is one cell of a flow field.
type FlowTile struct {
	Direction uint8 // index into the direction table, meaningful only when walkable
	State     uint8 // 0 = walkable, non-zero = blocked
}

// Blocked reports whether the tile is marked as a blocker.
func (t FlowTile) Blocked() bool {
	return t.State != 0
}

// Direction indices. The order defines tie-break priority: lower wins.
const (
	DirUpLeft    uint8 = iota // (-1,-1)
	DirLeft                   // (-1, 0)
	DirDownLeft               // (-1, 1)
	DirDown                   // ( 0, 1)
	DirDownRight              // ( 1, 1)
	DirRight                  // ( 1, 0)
	DirUpRight                // ( 1,-1)
	DirUp                     // ( 0,-1)
	NumDirections
)

// directions holds the neighbour offset for each direction index.
var directions = [NumDirections]grid.Point{
	{X: -1, Y: -1}, {X: -1, Y: 0}, {X: -1, Y: 1}, {X: 0, Y: 1},
	{X: 1, Y: 1}, {X: 1, Y: 0}, {X: 1, Y: -1}, {X: 0, Y: -1},
}

var dirNames = [NumDirections]string{
	"up-left", "left", "down-left", "down", "down-right", "right", "up-right", "up",
}

// Offset returns the neighbour offset for direction d.
// Directions outside the table map to the zero offset.
func Offset(d uint8) grid.Point {
	if d >= NumDirections {
		return grid.Point{}
	}
	return directions[d]
}

// DirectionName returns a human-readable name for d.
func DirectionName(d uint8) string {
	if d >= NumDirections {
		return "invalid"
	}
	return dirNames[d]
}

// Cost surface values.
const (
	CostUnvisited   uint32 = 0
	CostDestination uint32 = 1
	CostBlocked     uint32 = math.MaxUint32 // blocked or unreachable
)

var (
	ErrOutOfBounds       = grid.ErrOutOfBounds
	ErrInvalidDimensions = grid.ErrInvalidDimensions
	ErrDisposed          = grid.ErrDisposed

	// ErrDimensionMismatch is returned when a cost surface does not match its tiles.
	ErrDimensionMismatch = errors.New("field: cost surface dimensions do not match tiles")
	// ErrNotSolved is returned by read helpers that need a completed solve.
	ErrNotSolved = errors.New("field: not solved")
	// ErrUnreachable is returned when tracing from a cell with no path to the destination.
	ErrUnreachable = errors.New("field: cell cannot reach destination")
	// ErrTraceLimit is returned when Trace runs out of steps.
	ErrTraceLimit = errors.New("field: trace step limit exceeded")
)
