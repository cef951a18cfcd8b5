package geometry

import "math"

// Homography is a 3x3 projective transform in row-major order, mapping
// reference-pattern coordinates to target-image coordinates.
//
// A point (x, y) maps to:
//
//	x' = (h0*x + h1*y + h2) / (h6*x + h7*y + h8)
//	y' = (h3*x + h4*y + h5) / (h6*x + h7*y + h8)
type Homography [9]float64

// Identity returns the identity transform.
func Identity() Homography {
	return Homography{1, 0, 0, 0, 1, 0, 0, 0, 1}
}

// Apply maps a point through the transform.
//
// The boolean result is false when the point maps through the plane at
// infinity (homogeneous w near zero); callers must discard such points.
func (h Homography) Apply(p Point) (Point, bool) {
	w := h[6]*p.X + h[7]*p.Y + h[8]
	if math.Abs(w) < 1e-10 {
		return Point{}, false
	}
	return Point{
		X: (h[0]*p.X + h[1]*p.Y + h[2]) / w,
		Y: (h[3]*p.X + h[4]*p.Y + h[5]) / w,
	}, true
}

// ProjectCorners maps the four corners of a w x h reference rectangle
// through the transform into target-image space.
//
// The boolean result is false if any corner is degenerate under the
// transform, in which case no meaningful bounding box exists.
func (h Homography) ProjectCorners(w, h2 float64) ([4]Point, bool) {
	corners := [4]Point{
		{X: 0, Y: 0},
		{X: w, Y: 0},
		{X: w, Y: h2},
		{X: 0, Y: h2},
	}
	var out [4]Point
	for i, c := range corners {
		p, ok := h.Apply(c)
		if !ok {
			return out, false
		}
		out[i] = p
	}
	return out, true
}
