package field

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/pthm-cable/flowfield/grid"
)

// Options configures a FlowField.
type Options struct {
	// Workers is the number of extraction goroutines (0 = GOMAXPROCS).
	Workers int
	// ParallelThreshold is the minimum cell count to extract in parallel
	// (0 = default, negative = always sequential).
	ParallelThreshold int
	// Logger receives solve diagnostics at debug level (nil = slog.Default()).
	Logger *slog.Logger
}

// DefaultOptions returns sensible defaults.
func DefaultOptions() Options {
	return Options{
		ParallelThreshold: defaultParallelThreshold,
	}
}

// FlowField owns a grid of FlowTiles and recomputes their directions on Solve.
//
// A FlowField is not safe for concurrent use. Independent fields may be
// solved concurrently.
type FlowField struct {
	tiles *grid.Grid[FlowTile]

	// Per-cell reachability from the last solve
	reach []bool
	dest  grid.Point

	solved   bool
	disposed bool

	pool              *workerPool
	parallelThreshold int
	logger            *slog.Logger
}

// Segment is one (cell, next cell) step of a solved field.
type Segment struct {
	From, To grid.Point
}

// New creates a field of walkable tiles with default options.
func New(width, height int) (*FlowField, error) {
	return NewWithOptions(width, height, DefaultOptions())
}

// NewWithOptions creates a field of walkable tiles.
func NewWithOptions(width, height int, opts Options) (*FlowField, error) {
	tiles, err := grid.New[FlowTile](width, height)
	if err != nil {
		return nil, err
	}

	threshold := opts.ParallelThreshold
	if threshold == 0 {
		threshold = defaultParallelThreshold
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &FlowField{
		tiles:             tiles,
		reach:             make([]bool, tiles.Len()),
		pool:              newWorkerPool(opts.Workers),
		parallelThreshold: threshold,
		logger:            logger,
	}, nil
}

// Width, Height, Dims and Workers describe the field's fixed shape and stay
// valid after Dispose.

// Width returns the field width in cells.
func (f *FlowField) Width() int { return f.tiles.Width() }

// Height returns the field height in cells.
func (f *FlowField) Height() int { return f.tiles.Height() }

// Dims returns the field dimensions.
func (f *FlowField) Dims() grid.Point { return f.tiles.Dims() }

// Workers returns the size of the extraction worker pool.
func (f *FlowField) Workers() int { return f.pool.numWorkers }

// Tile returns the tile at p.
func (f *FlowField) Tile(p grid.Point) (FlowTile, error) {
	return f.tiles.Get(p)
}

// TileAt returns the tile at flat index i.
func (f *FlowField) TileAt(i int) (FlowTile, error) {
	return f.tiles.GetIndex(i)
}

// SetBlocked marks or clears the blocker at p.
// Changes take effect on the next Solve.
func (f *FlowField) SetBlocked(p grid.Point, blocked bool) error {
	t, err := f.tiles.Get(p)
	if err != nil {
		return err
	}
	t.State = 0
	if blocked {
		t.State = 1
	}
	return f.tiles.Set(p, t)
}

// BlockRect blocks every cell in the half-open rectangle [lo, hi),
// clamped to the field. It returns the number of cells that changed.
func (f *FlowField) BlockRect(lo, hi grid.Point) (int, error) {
	if f.disposed {
		return 0, ErrDisposed
	}
	dims := f.tiles.Dims()
	x0, y0 := clamp(lo.X, 0, dims.X), clamp(lo.Y, 0, dims.Y)
	x1, y1 := clamp(hi.X, 0, dims.X), clamp(hi.Y, 0, dims.Y)

	cells := f.tiles.Cells()
	changed := 0
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			i := y*dims.X + x
			if !cells[i].Blocked() {
				changed++
			}
			cells[i] = FlowTile{State: 1}
		}
	}
	return changed, nil
}

// ClearBlockers makes every tile walkable again.
func (f *FlowField) ClearBlockers() error {
	if f.disposed {
		return ErrDisposed
	}
	cells := f.tiles.Cells()
	for i := range cells {
		cells[i].State = 0
	}
	return nil
}

// Solve recomputes every tile's direction toward dest.
//
// Cost propagation runs to completion on the calling goroutine before
// direction extraction starts; extraction is split by rows across the
// worker pool. All scratch state is released before Solve returns.
func (f *FlowField) Solve(dest grid.Point) (SolveStats, error) {
	stats := SolveStats{Destination: dest, Cells: f.tiles.Len()}
	if f.disposed {
		return stats, ErrDisposed
	}

	start := time.Now()
	costs, expansions, err := propagate(f.tiles, dest)
	if err != nil {
		return stats, fmt.Errorf("propagating from %v: %w", dest, err)
	}
	stats.Expansions = expansions
	stats.Propagate = time.Since(start)

	start = time.Now()
	job, err := newExtractJob(f.tiles, costs)
	if err != nil {
		return stats, err
	}
	if f.parallelThreshold < 0 || f.tiles.Len() < f.parallelThreshold || f.pool.numWorkers == 1 {
		job.rows(0, job.height)
		stats.Workers = 1
	} else {
		stats.Workers = f.pool.run(job)
	}
	stats.Extract = time.Since(start)

	for i, c := range costs.Cells() {
		f.reach[i] = c != CostBlocked
		if f.reach[i] {
			stats.Reachable++
		}
	}
	for i, t := range f.tiles.Cells() {
		switch {
		case t.Blocked():
			stats.Blocked++
		case !f.reach[i]:
			stats.Unreachable++
		}
	}
	costs.Dispose()

	f.dest = dest
	f.solved = true

	f.logger.Debug("flow field solved", "stats", stats)
	return stats, nil
}

// Destination returns the destination of the last solve.
func (f *FlowField) Destination() (grid.Point, bool) {
	return f.dest, f.solved
}

// Reachable reports whether p had a path to the destination in the last solve.
func (f *FlowField) Reachable(p grid.Point) (bool, error) {
	if err := f.readable(); err != nil {
		return false, err
	}
	if !f.tiles.Contains(p) {
		return false, fmt.Errorf("%w: %v", ErrOutOfBounds, p)
	}
	return f.reach[f.tiles.Index(p)], nil
}

// Next returns the cell an agent at p should step to. ok is false when p is
// the destination, blocked or unreachable.
func (f *FlowField) Next(p grid.Point) (next grid.Point, ok bool, err error) {
	if err := f.readable(); err != nil {
		return p, false, err
	}
	t, err := f.tiles.Get(p)
	if err != nil {
		return p, false, err
	}
	next, ok = f.step(p, t)
	return next, ok, nil
}

func (f *FlowField) step(p grid.Point, t FlowTile) (grid.Point, bool) {
	if p == f.dest || t.Blocked() || !f.reach[f.tiles.Index(p)] {
		return p, false
	}
	n := p.Add(directions[t.Direction])
	if !f.tiles.Contains(n) {
		return p, false
	}
	i := f.tiles.Index(n)
	// Blockers added since the solve are never entered; the destination
	// is walkable for the solve even when blocked.
	if !f.reach[i] || (n != f.dest && f.tiles.Cells()[i].Blocked()) {
		return p, false
	}
	return n, true
}

// Trace follows the field from start and returns every visited cell,
// start and destination included. limit bounds the number of steps
// (0 = number of cells).
func (f *FlowField) Trace(start grid.Point, limit int) ([]grid.Point, error) {
	if err := f.readable(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = f.tiles.Len()
	}

	path := []grid.Point{start}
	p := start
	for steps := 0; p != f.dest; steps++ {
		if steps >= limit {
			return path, fmt.Errorf("%w: from %v after %d steps", ErrTraceLimit, start, limit)
		}
		next, ok, err := f.Next(p)
		if err != nil {
			return nil, err
		}
		if !ok {
			return path, fmt.Errorf("%w: %v", ErrUnreachable, p)
		}
		path = append(path, next)
		p = next
	}
	return path, nil
}

// Segments returns the (cell, next cell) pair for every cell with a valid
// step, in row-major order.
func (f *FlowField) Segments() ([]Segment, error) {
	if err := f.readable(); err != nil {
		return nil, err
	}
	cells := f.tiles.Cells()
	segments := make([]Segment, 0, len(cells))
	for i, t := range cells {
		p := f.tiles.Pos(i)
		if n, ok := f.step(p, t); ok {
			segments = append(segments, Segment{From: p, To: n})
		}
	}
	return segments, nil
}

// Dispose stops the worker pool and releases the tiles.
// It must be called exactly once.
func (f *FlowField) Dispose() error {
	if f.disposed {
		return ErrDisposed
	}
	f.pool.stop()
	if err := f.tiles.Dispose(); err != nil {
		return err
	}
	f.reach = nil
	f.solved = false
	f.disposed = true
	return nil
}

func (f *FlowField) readable() error {
	if f.disposed {
		return ErrDisposed
	}
	if !f.solved {
		return ErrNotSolved
	}
	return nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
