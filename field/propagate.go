package field

import (
	"fmt"

	"github.com/pthm-cable/flowfield/grid"
)

// searchNode is a frontier entry.
type searchNode struct {
	root int // flat index
	cost uint32
}

// frontier is a FIFO of search nodes backed by a single slice.
type frontier struct {
	nodes []searchNode
	head  int
}

func (q *frontier) push(n searchNode) {
	q.nodes = append(q.nodes, n)
}

func (q *frontier) pop() searchNode {
	n := q.nodes[q.head]
	q.head++
	// Reclaim the consumed prefix once it dominates the buffer
	if q.head > 1024 && q.head*2 > len(q.nodes) {
		remaining := copy(q.nodes, q.nodes[q.head:])
		q.nodes = q.nodes[:remaining]
		q.head = 0
	}
	return n
}

func (q *frontier) len() int {
	return len(q.nodes) - q.head
}

// Propagate computes the hop-distance cost surface from dest over tiles.
//
// The destination costs 1, every reachable walkable cell costs 1 + its
// 8-connected hop distance, and blocked or unreachable cells cost CostBlocked.
// A blocked destination is treated as walkable. The returned grid is owned by
// the caller.
func Propagate(tiles *grid.Grid[FlowTile], dest grid.Point) (*grid.Grid[uint32], error) {
	costs, _, err := propagate(tiles, dest)
	return costs, err
}

// propagate also returns the number of frontier expansions.
func propagate(tiles *grid.Grid[FlowTile], dest grid.Point) (*grid.Grid[uint32], int, error) {
	if tiles.Disposed() {
		return nil, 0, ErrDisposed
	}
	if !tiles.Contains(dest) {
		return nil, 0, fmt.Errorf("destination %v: %w", dest, ErrOutOfBounds)
	}

	costs, err := grid.New[uint32](tiles.Width(), tiles.Height())
	if err != nil {
		return nil, 0, err
	}

	w, h := tiles.Width(), tiles.Height()
	cells := tiles.Cells()
	state := costs.Cells()

	destIdx := tiles.Index(dest)
	state[destIdx] = CostDestination

	var search frontier
	search.nodes = make([]searchNode, 0, w+h)
	search.push(searchNode{root: destIdx, cost: CostDestination})

	expansions := 0
	for search.len() > 0 {
		node := search.pop()
		expansions++
		rx := node.root % w
		ry := node.root / w

		for _, off := range directions {
			nx := rx + off.X
			ny := ry + off.Y
			if nx < 0 || ny < 0 || nx >= w || ny >= h {
				continue
			}
			ni := ny*w + nx

			existing := state[ni]
			// A neighbour already at or below the node's cost cannot improve
			if existing != CostUnvisited && existing <= node.cost {
				continue
			}

			if cells[ni].Blocked() {
				state[ni] = CostBlocked
				continue
			}

			tentative := node.cost + 1
			if existing == CostUnvisited || existing > tentative {
				state[ni] = tentative
				search.push(searchNode{root: ni, cost: tentative})
			}
		}
	}

	// Blocked and never-reached cells both become the sentinel so that no
	// cell is left at 0, which would look cheaper than the destination.
	for i := range state {
		if i == destIdx {
			continue
		}
		if state[i] == CostUnvisited || cells[i].Blocked() {
			state[i] = CostBlocked
		}
	}

	return costs, expansions, nil
}
