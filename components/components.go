// Package components defines ECS components for flow field agents.
package components

// Cell is an entity's grid position.
type Cell struct {
	X, Y int
}

// Walker holds per-agent bookkeeping.
type Walker struct {
	ID    uint32
	Start Cell // spawn position
	Steps int  // cells moved so far
}
