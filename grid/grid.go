// Package grid provides a fixed-size, row-major dense 2-D container.
package grid

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfBounds is returned for coordinates or flat indices outside the grid.
	ErrOutOfBounds = errors.New("grid: out of bounds")
	// ErrInvalidDimensions is returned when constructing a grid with a non-positive size.
	ErrInvalidDimensions = errors.New("grid: invalid dimensions")
	// ErrDisposed is returned when a grid is used after Dispose.
	ErrDisposed = errors.New("grid: disposed")
)

// Point is an integer cell coordinate.
type Point struct {
	X, Y int
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y int) Point {
	return Point{X: x, Y: y}
}

// Add returns p+q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Chebyshev returns the chessboard distance between p and q.
func (p Point) Chebyshev(q Point) int {
	dx := abs(p.X - q.X)
	dy := abs(p.Y - q.Y)
	if dx > dy {
		return dx
	}
	return dy
}

func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Grid stores width*height cells in row-major order.
// Dimensions are fixed at construction.
type Grid[T any] struct {
	cells    []T
	width    int
	height   int
	disposed bool
}

// New allocates a zero-initialized grid.
func New[T any](width, height int) (*Grid[T], error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	return &Grid[T]{
		cells:  make([]T, width*height),
		width:  width,
		height: height,
	}, nil
}

// Width returns the grid width in cells.
func (g *Grid[T]) Width() int { return g.width }

// Height returns the grid height in cells.
func (g *Grid[T]) Height() int { return g.height }

// Len returns width*height.
func (g *Grid[T]) Len() int { return g.width * g.height }

// Dims returns the dimensions as a Point.
func (g *Grid[T]) Dims() Point { return Point{X: g.width, Y: g.height} }

// Contains reports whether p lies in [0,W) x [0,H).
func (g *Grid[T]) Contains(p Point) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < g.width && p.Y < g.height
}

// Index returns the row-major offset of p. It does not bounds check.
func (g *Grid[T]) Index(p Point) int {
	return p.Y*g.width + p.X
}

// Pos is the inverse of Index.
func (g *Grid[T]) Pos(i int) Point {
	return Point{X: i % g.width, Y: i / g.width}
}

// Get returns the cell at p.
func (g *Grid[T]) Get(p Point) (T, error) {
	var zero T
	if err := g.checkPoint(p); err != nil {
		return zero, err
	}
	return g.cells[g.Index(p)], nil
}

// Set writes the cell at p.
func (g *Grid[T]) Set(p Point, v T) error {
	if err := g.checkPoint(p); err != nil {
		return err
	}
	g.cells[g.Index(p)] = v
	return nil
}

// GetIndex returns the cell at flat index i.
func (g *Grid[T]) GetIndex(i int) (T, error) {
	var zero T
	if err := g.checkIndex(i); err != nil {
		return zero, err
	}
	return g.cells[i], nil
}

// SetIndex writes the cell at flat index i.
func (g *Grid[T]) SetIndex(i int, v T) error {
	if err := g.checkIndex(i); err != nil {
		return err
	}
	g.cells[i] = v
	return nil
}

// Row returns the cells of row y. The slice aliases grid storage.
func (g *Grid[T]) Row(y int) ([]T, error) {
	if g.disposed {
		return nil, ErrDisposed
	}
	if y < 0 || y >= g.height {
		return nil, fmt.Errorf("%w: row %d not in [0,%d)", ErrOutOfBounds, y, g.height)
	}
	start := y * g.width
	return g.cells[start : start+g.width : start+g.width], nil
}

// Cells returns the row-major backing slice, or nil after Dispose.
// Writes through the slice are visible to the grid.
func (g *Grid[T]) Cells() []T {
	return g.cells
}

// Fill sets every cell to v.
func (g *Grid[T]) Fill(v T) error {
	if g.disposed {
		return ErrDisposed
	}
	for i := range g.cells {
		g.cells[i] = v
	}
	return nil
}

// Dispose releases the backing storage. It must be called once.
func (g *Grid[T]) Dispose() error {
	if g.disposed {
		return ErrDisposed
	}
	g.cells = nil
	g.disposed = true
	return nil
}

// Disposed reports whether Dispose has been called.
func (g *Grid[T]) Disposed() bool {
	return g.disposed
}

func (g *Grid[T]) checkPoint(p Point) error {
	if g.disposed {
		return ErrDisposed
	}
	if !g.Contains(p) {
		return fmt.Errorf("%w: %v not in %dx%d", ErrOutOfBounds, p, g.width, g.height)
	}
	return nil
}

func (g *Grid[T]) checkIndex(i int) error {
	if g.disposed {
		return ErrDisposed
	}
	if i < 0 || i >= len(g.cells) {
		return fmt.Errorf("%w: index %d not in [0,%d)", ErrOutOfBounds, i, len(g.cells))
	}
	return nil
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
