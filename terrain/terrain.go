// Package terrain generates procedural blocker layouts from coherent noise.
package terrain

import (
	"github.com/ojrac/opensimplex-go"

	"github.com/pthm-cable/flowfield/field"
	"github.com/pthm-cable/flowfield/grid"
)

// Params controls terrain generation.
type Params struct {
	Seed          int64
	Scale         float64 // noise frequency per cell
	Threshold     float64 // solid where noise > Threshold
	CaveThreshold float64 // reopened where the cave layer > CaveThreshold
	Border        int     // open rows/columns along every edge
	ClearRadius   int     // open Chebyshev radius around each kept point
}

// DefaultParams returns the parameters used by the default scenario.
func DefaultParams() Params {
	return Params{
		Seed:          1,
		Scale:         0.08,
		Threshold:     0.45,
		CaveThreshold: 0.65,
		Border:        1,
		ClearRadius:   2,
	}
}

// Generate returns a width by height mask of solid cells. Cells within
// ClearRadius of any keep point are always open.
func Generate(width, height int, p Params, keep ...grid.Point) (*grid.Grid[bool], error) {
	mask, err := grid.New[bool](width, height)
	if err != nil {
		return nil, err
	}

	noise := opensimplex.New(p.Seed)
	cells := mask.Cells()
	for i := range cells {
		pos := mask.Pos(i)
		x, y := float64(pos.X)*p.Scale, float64(pos.Y)*p.Scale

		// 1. Islands: 2D noise above threshold
		if noise.Eval2(x, y) <= p.Threshold {
			continue
		}
		// 2. Cave carving: offset layer reopens cells for connectivity
		if noise.Eval2(x+300, y+300) > p.CaveThreshold {
			continue
		}
		cells[i] = true
	}

	clearEdges(mask, p.Border)
	for _, k := range keep {
		clearAround(mask, k, p.ClearRadius)
	}
	return mask, nil
}

// Apply generates terrain for f and marks every solid cell as blocked.
// Existing blockers are kept. It returns the number of cells newly blocked.
func Apply(f *field.FlowField, p Params, keep ...grid.Point) (int, error) {
	mask, err := Generate(f.Width(), f.Height(), p, keep...)
	if err != nil {
		return 0, err
	}

	changed := 0
	for i, solid := range mask.Cells() {
		if !solid {
			continue
		}
		pos := mask.Pos(i)
		t, err := f.Tile(pos)
		if err != nil {
			return changed, err
		}
		if t.Blocked() {
			continue
		}
		if err := f.SetBlocked(pos, true); err != nil {
			return changed, err
		}
		changed++
	}
	return changed, nil
}

// clearEdges keeps a band of open cells along the grid edges.
func clearEdges(mask *grid.Grid[bool], border int) {
	w, h := mask.Width(), mask.Height()
	cells := mask.Cells()
	for i := range cells {
		pos := mask.Pos(i)
		if pos.X < border || pos.Y < border || pos.X >= w-border || pos.Y >= h-border {
			cells[i] = false
		}
	}
}

// clearAround opens every cell within radius of c.
func clearAround(mask *grid.Grid[bool], c grid.Point, radius int) {
	for y := c.Y - radius; y <= c.Y+radius; y++ {
		for x := c.X - radius; x <= c.X+radius; x++ {
			p := grid.Pt(x, y)
			if mask.Contains(p) {
				mask.Cells()[mask.Index(p)] = false
			}
		}
	}
}
