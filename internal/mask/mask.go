// Package mask builds binary occupancy masks from confirmed exclusion
// regions (for example recognized-text boxes) so that later detection
// stages can reject candidates landing on already-claimed pixels.
package mask

import "github.com/mvickers/pattern-scout/internal/geometry"

// Region is an exclusion box in target-image coordinates, expressed as
// (x, y, width, height) the way upstream collaborators report it.
type Region struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Box converts the region to the shared box representation.
func (r Region) Box() geometry.Box {
	return geometry.Box{X1: r.X, Y1: r.Y, X2: r.X + r.Width, Y2: r.Y + r.Height}
}

// Mask is a fixed-size boolean occupancy grid over a target image.
//
// All cells default to false; Build marks excluded cells true. A Mask is
// immutable after construction and safe for concurrent reads.
type Mask struct {
	width  int
	height int
	cells  []bool
}

// New creates an all-clear mask covering a w x h image.
func New(w, h int) *Mask {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	return &Mask{width: w, height: h, cells: make([]bool, w*h)}
}

// Build rasterizes the given exclusion regions into a w x h mask.
//
// Each region is expanded by padding pixels on every side, clamped to the
// image bounds, and its covered cells are marked true. An empty region
// list is valid and yields an all-clear mask.
func Build(w, h int, regions []Region, padding int) *Mask {
	m := New(w, h)
	if padding < 0 {
		padding = 0
	}
	for _, r := range regions {
		b := geometry.Box{
			X1: r.X - padding,
			Y1: r.Y - padding,
			X2: r.X + r.Width + padding,
			Y2: r.Y + r.Height + padding,
		}.Clip(w, h)
		for y := b.Y1; y < b.Y2; y++ {
			row := y * m.width
			for x := b.X1; x < b.X2; x++ {
				m.cells[row+x] = true
			}
		}
	}
	return m
}

// Width returns the mask width in cells.
func (m *Mask) Width() int { return m.width }

// Height returns the mask height in cells.
func (m *Mask) Height() int { return m.height }

// At reports whether the cell at (x, y) is excluded.
// Out-of-bounds coordinates are treated as clear.
func (m *Mask) At(x, y int) bool {
	if x < 0 || x >= m.width || y < 0 || y >= m.height {
		return false
	}
	return m.cells[y*m.width+x]
}

// OverlapRatio returns the fraction of the box area covered by excluded
// cells. The box is clipped to the mask bounds first; an empty clipped
// box yields 0.
func (m *Mask) OverlapRatio(b geometry.Box) float64 {
	b = b.Clip(m.width, m.height)
	area := b.Area()
	if area == 0 {
		return 0
	}
	covered := 0
	for y := b.Y1; y < b.Y2; y++ {
		row := y * m.width
		for x := b.X1; x < b.X2; x++ {
			if m.cells[row+x] {
				covered++
			}
		}
	}
	return float64(covered) / float64(area)
}
