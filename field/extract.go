package field

import (
	"fmt"

	"github.com/pthm-cable/flowfield/grid"
)

// Extract writes, for every walkable cell, the direction of its cheapest
// in-bounds neighbour in costs. Ties go to the lowest direction index.
// Blocked cells, and cells with no neighbour cheaper than CostBlocked,
// get direction 0.
//
// Rows are split across workers goroutines (GOMAXPROCS when workers <= 0).
// costs must be a completed surface from Propagate over the same tiles.
func Extract(tiles *grid.Grid[FlowTile], costs *grid.Grid[uint32], workers int) error {
	job, err := newExtractJob(tiles, costs)
	if err != nil {
		return err
	}
	if workers == 1 || tiles.Len() < defaultParallelThreshold {
		job.rows(0, job.height)
		return nil
	}
	pool := newWorkerPool(workers)
	defer pool.stop()
	pool.run(job)
	return nil
}

func newExtractJob(tiles *grid.Grid[FlowTile], costs *grid.Grid[uint32]) (*extractJob, error) {
	if tiles.Disposed() || costs.Disposed() {
		return nil, ErrDisposed
	}
	if tiles.Dims() != costs.Dims() {
		return nil, fmt.Errorf("%w: tiles %v, costs %v", ErrDimensionMismatch, tiles.Dims(), costs.Dims())
	}
	return &extractJob{
		tiles:  tiles.Cells(),
		costs:  costs.Cells(),
		width:  tiles.Width(),
		height: tiles.Height(),
	}, nil
}

// rows processes rows [y0, y1). It only writes tiles inside those rows.
func (j *extractJob) rows(y0, y1 int) {
	w, h := j.width, j.height
	for y := y0; y < y1; y++ {
		for x := 0; x < w; x++ {
			idx := y*w + x
			if j.tiles[idx].Blocked() {
				j.tiles[idx].Direction = 0
				continue
			}

			var mask uint8
			best := CostBlocked
			for d, off := range directions {
				nx := x + off.X
				ny := y + off.Y
				if nx < 0 || ny < 0 || nx >= w || ny >= h {
					continue
				}
				if c := j.costs[ny*w+nx]; c < best {
					best = c
					mask = uint8(d)
				}
			}
			j.tiles[idx].Direction = mask
		}
	}
}
