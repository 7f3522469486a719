package grid

import (
	"errors"
	"testing"
)

func TestNewInvalidDimensions(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
	}{
		{"zero width", 0, 4},
		{"zero height", 4, 0},
		{"negative", -1, -1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			g, err := New[uint8](tc.width, tc.height)
			if !errors.Is(err, ErrInvalidDimensions) {
				t.Errorf("New(%d, %d) error = %v, want ErrInvalidDimensions", tc.width, tc.height, err)
			}
			if g != nil {
				t.Errorf("New(%d, %d) returned non-nil grid", tc.width, tc.height)
			}
		})
	}
}

// TestRowMajorIndex verifies index = y*W + x and its inverse.
func TestRowMajorIndex(t *testing.T) {
	g, err := New[int](7, 3)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	for y := 0; y < 3; y++ {
		for x := 0; x < 7; x++ {
			p := Pt(x, y)
			i := g.Index(p)
			if i != y*7+x {
				t.Errorf("Index(%v) = %d, want %d", p, i, y*7+x)
			}
			if got := g.Pos(i); got != p {
				t.Errorf("Pos(%d) = %v, want %v", i, got, p)
			}
		}
	}
	if g.Len() != 21 {
		t.Errorf("Len() = %d, want 21", g.Len())
	}
	if g.Dims() != Pt(7, 3) {
		t.Errorf("Dims() = %v, want (7,3)", g.Dims())
	}
}

func TestGetSet(t *testing.T) {
	g, err := New[int](4, 4)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := g.Set(Pt(3, 2), 42); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	v, err := g.Get(Pt(3, 2))
	if err != nil || v != 42 {
		t.Errorf("Get = (%d, %v), want (42, nil)", v, err)
	}
	v, err = g.GetIndex(2*4 + 3)
	if err != nil || v != 42 {
		t.Errorf("GetIndex = (%d, %v), want (42, nil)", v, err)
	}
	if err := g.SetIndex(0, 7); err != nil {
		t.Fatalf("SetIndex failed: %v", err)
	}
	if g.Cells()[0] != 7 {
		t.Errorf("Cells()[0] = %d, want 7", g.Cells()[0])
	}
}

// TestOutOfBounds verifies accessors fail instead of clamping or wrapping.
func TestOutOfBounds(t *testing.T) {
	g, err := New[int](3, 3)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	points := []Point{{-1, 0}, {0, -1}, {3, 0}, {0, 3}, {3, 3}}
	for _, p := range points {
		if _, err := g.Get(p); !errors.Is(err, ErrOutOfBounds) {
			t.Errorf("Get(%v) error = %v, want ErrOutOfBounds", p, err)
		}
		if err := g.Set(p, 1); !errors.Is(err, ErrOutOfBounds) {
			t.Errorf("Set(%v) error = %v, want ErrOutOfBounds", p, err)
		}
	}
	for _, i := range []int{-1, 9, 100} {
		if _, err := g.GetIndex(i); !errors.Is(err, ErrOutOfBounds) {
			t.Errorf("GetIndex(%d) error = %v, want ErrOutOfBounds", i, err)
		}
		if err := g.SetIndex(i, 1); !errors.Is(err, ErrOutOfBounds) {
			t.Errorf("SetIndex(%d) error = %v, want ErrOutOfBounds", i, err)
		}
	}
	if _, err := g.Row(3); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("Row(3) error = %v, want ErrOutOfBounds", err)
	}
	for _, v := range g.Cells() {
		if v != 0 {
			t.Fatal("out-of-bounds write leaked into the grid")
		}
	}
}

func TestRowAliasesStorage(t *testing.T) {
	g, err := New[int](4, 2)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	row, err := g.Row(1)
	if err != nil {
		t.Fatalf("Row failed: %v", err)
	}
	if len(row) != 4 {
		t.Fatalf("len(row) = %d, want 4", len(row))
	}
	row[2] = 9
	if v, _ := g.Get(Pt(2, 1)); v != 9 {
		t.Errorf("Get((2,1)) = %d, want 9", v)
	}
	// Capacity is capped so appends cannot spill into the next row.
	if cap(row) != 4 {
		t.Errorf("cap(row) = %d, want 4", cap(row))
	}
}

func TestDispose(t *testing.T) {
	g, err := New[int](2, 2)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := g.Dispose(); err != nil {
		t.Fatalf("first Dispose failed: %v", err)
	}
	if !g.Disposed() {
		t.Error("Disposed() = false after Dispose")
	}
	if err := g.Dispose(); !errors.Is(err, ErrDisposed) {
		t.Errorf("second Dispose error = %v, want ErrDisposed", err)
	}
	if _, err := g.Get(Pt(0, 0)); !errors.Is(err, ErrDisposed) {
		t.Errorf("Get after Dispose error = %v, want ErrDisposed", err)
	}
	if err := g.SetIndex(0, 1); !errors.Is(err, ErrDisposed) {
		t.Errorf("SetIndex after Dispose error = %v, want ErrDisposed", err)
	}
	if err := g.Fill(1); !errors.Is(err, ErrDisposed) {
		t.Errorf("Fill after Dispose error = %v, want ErrDisposed", err)
	}
	if g.Cells() != nil {
		t.Error("Cells() != nil after Dispose")
	}
}

func TestChebyshev(t *testing.T) {
	tests := []struct {
		a, b Point
		want int
	}{
		{Pt(0, 0), Pt(0, 0), 0},
		{Pt(0, 0), Pt(2, 2), 2},
		{Pt(1, 4), Pt(3, 0), 4},
		{Pt(-2, 0), Pt(1, 1), 3},
	}
	for _, tc := range tests {
		if got := tc.a.Chebyshev(tc.b); got != tc.want {
			t.Errorf("%v.Chebyshev(%v) = %d, want %d", tc.a, tc.b, got, tc.want)
		}
	}
}
