// Package geometry provides the box and transform primitives shared by the
// pattern localization pipeline.
//
// # Coordinate System
//
// All coordinates follow the standard image convention:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
//   - Boxes use inclusive top-left and exclusive bottom-right corners
package geometry

import "math"

// Box represents a rectangular bounding box in pixel coordinates.
//
// The coordinate convention follows standard image bounds:
//   - (X1, Y1) is the top-left corner (inclusive)
//   - (X2, Y2) is the bottom-right corner (exclusive for iteration)
type Box struct {
	X1 int `json:"x1"` // Left edge (inclusive)
	Y1 int `json:"y1"` // Top edge (inclusive)
	X2 int `json:"x2"` // Right edge
	Y2 int `json:"y2"` // Bottom edge
}

// Point represents a 2D coordinate in continuous pixel space.
//
// Unlike Box corners, points carry sub-pixel precision because feature
// locations and projected corners rarely fall on integer coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Width returns the horizontal extent of the box in pixels.
func (b Box) Width() int { return b.X2 - b.X1 }

// Height returns the vertical extent of the box in pixels.
func (b Box) Height() int { return b.Y2 - b.Y1 }

// Area returns the box area in square pixels. Degenerate boxes have area 0.
func (b Box) Area() int {
	if b.X2 <= b.X1 || b.Y2 <= b.Y1 {
		return 0
	}
	return (b.X2 - b.X1) * (b.Y2 - b.Y1)
}

// Empty reports whether the box covers no pixels.
func (b Box) Empty() bool { return b.Area() == 0 }

// Intersect returns the overlapping region of two boxes.
// If the boxes do not overlap, the result is an empty box.
func (b Box) Intersect(o Box) Box {
	r := Box{
		X1: maxInt(b.X1, o.X1),
		Y1: maxInt(b.Y1, o.Y1),
		X2: minInt(b.X2, o.X2),
		Y2: minInt(b.Y2, o.Y2),
	}
	if r.X2 <= r.X1 || r.Y2 <= r.Y1 {
		return Box{}
	}
	return r
}

// Clip constrains the box to the image bounds [0, w) x [0, h).
func (b Box) Clip(w, h int) Box {
	return b.Intersect(Box{X1: 0, Y1: 0, X2: w, Y2: h})
}

// IoU computes the Intersection-over-Union of two boxes.
//
// The result is in [0, 1]: 0 for disjoint boxes, 1 for identical boxes.
// This is the standard duplicate-detection metric used by non-maximum
// suppression.
func IoU(a, b Box) float64 {
	inter := a.Intersect(b).Area()
	if inter == 0 {
		return 0
	}
	union := a.Area() + b.Area() - inter
	if union <= 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// BoundingBox computes the axis-aligned bounding box enclosing the given
// points, rounded outward to integer pixel coordinates.
func BoundingBox(pts []Point) Box {
	if len(pts) == 0 {
		return Box{}
	}
	minX, minY := pts[0].X, pts[0].Y
	maxX, maxY := pts[0].X, pts[0].Y
	for _, p := range pts[1:] {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	return Box{
		X1: int(math.Floor(minX)),
		Y1: int(math.Floor(minY)),
		X2: int(math.Ceil(maxX)),
		Y2: int(math.Ceil(maxY)),
	}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
