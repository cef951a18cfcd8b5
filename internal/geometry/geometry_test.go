package geometry

import (
	"math"
	"testing"
)

func TestBoxArea(t *testing.T) {
	tests := []struct {
		name string
		box  Box
		want int
	}{
		{"normal", Box{X1: 0, Y1: 0, X2: 10, Y2: 20}, 200},
		{"unit", Box{X1: 5, Y1: 5, X2: 6, Y2: 6}, 1},
		{"degenerate width", Box{X1: 5, Y1: 0, X2: 5, Y2: 10}, 0},
		{"inverted", Box{X1: 10, Y1: 10, X2: 0, Y2: 0}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.box.Area(); got != tt.want {
				t.Errorf("Area: got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestBoxIntersect(t *testing.T) {
	a := Box{X1: 0, Y1: 0, X2: 10, Y2: 10}
	b := Box{X1: 5, Y1: 5, X2: 15, Y2: 15}

	got := a.Intersect(b)
	want := Box{X1: 5, Y1: 5, X2: 10, Y2: 10}
	if got != want {
		t.Errorf("Intersect: got %+v, want %+v", got, want)
	}

	// Disjoint boxes intersect to empty
	c := Box{X1: 20, Y1: 20, X2: 30, Y2: 30}
	if !a.Intersect(c).Empty() {
		t.Error("disjoint boxes should intersect to an empty box")
	}
}

func TestBoxClip(t *testing.T) {
	tests := []struct {
		name string
		box  Box
		want Box
	}{
		{"inside", Box{X1: 10, Y1: 10, X2: 20, Y2: 20}, Box{X1: 10, Y1: 10, X2: 20, Y2: 20}},
		{"overhang", Box{X1: -5, Y1: -5, X2: 105, Y2: 105}, Box{X1: 0, Y1: 0, X2: 100, Y2: 100}},
		{"fully outside", Box{X1: 200, Y1: 200, X2: 300, Y2: 300}, Box{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.box.Clip(100, 100); got != tt.want {
				t.Errorf("Clip: got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestIoU(t *testing.T) {
	tests := []struct {
		name string
		a, b Box
		want float64
	}{
		{"identical", Box{0, 0, 10, 10}, Box{0, 0, 10, 10}, 1.0},
		{"disjoint", Box{0, 0, 10, 10}, Box{20, 20, 30, 30}, 0.0},
		{"half overlap", Box{0, 0, 10, 10}, Box{5, 0, 15, 10}, 50.0 / 150.0},
		{"contained quarter", Box{0, 0, 10, 10}, Box{0, 0, 5, 5}, 25.0 / 100.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IoU(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("IoU: got %f, want %f", got, tt.want)
			}
			// IoU is symmetric
			if rev := IoU(tt.b, tt.a); math.Abs(rev-got) > 1e-9 {
				t.Errorf("IoU not symmetric: %f vs %f", got, rev)
			}
		})
	}
}

func TestBoundingBox(t *testing.T) {
	pts := []Point{
		{X: 10.3, Y: 5.9},
		{X: 2.1, Y: 20.0},
		{X: 15.0, Y: 8.5},
	}

	got := BoundingBox(pts)
	want := Box{X1: 2, Y1: 5, X2: 15, Y2: 20}
	if got != want {
		t.Errorf("BoundingBox: got %+v, want %+v", got, want)
	}

	if !BoundingBox(nil).Empty() {
		t.Error("BoundingBox of no points should be empty")
	}
}

func TestHomographyIdentity(t *testing.T) {
	h := Identity()
	p := Point{X: 12.5, Y: 34.5}

	got, ok := h.Apply(p)
	if !ok {
		t.Fatal("identity transform should never be degenerate")
	}
	if got != p {
		t.Errorf("identity Apply: got %+v, want %+v", got, p)
	}
}

func TestHomographyTranslation(t *testing.T) {
	// Pure translation by (30, -10)
	h := Homography{1, 0, 30, 0, 1, -10, 0, 0, 1}

	corners, ok := h.ProjectCorners(100, 50)
	if !ok {
		t.Fatal("translation should project all corners")
	}

	want := [4]Point{
		{X: 30, Y: -10},
		{X: 130, Y: -10},
		{X: 130, Y: 40},
		{X: 30, Y: 40},
	}
	for i := range corners {
		if corners[i] != want[i] {
			t.Errorf("corner %d: got %+v, want %+v", i, corners[i], want[i])
		}
	}

	box := BoundingBox(corners[:])
	wantBox := Box{X1: 30, Y1: -10, X2: 130, Y2: 40}
	if box != wantBox {
		t.Errorf("bounding box: got %+v, want %+v", box, wantBox)
	}
}

func TestHomographyDegenerate(t *testing.T) {
	// Transform with a zero bottom row maps everything to infinity.
	h := Homography{1, 0, 0, 0, 1, 0, 0, 0, 0}

	if _, ok := h.Apply(Point{X: 1, Y: 1}); ok {
		t.Error("Apply should report degenerate for zero homogeneous term")
	}
	if _, ok := h.ProjectCorners(10, 10); ok {
		t.Error("ProjectCorners should fail for a degenerate transform")
	}
}
