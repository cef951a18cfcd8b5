package ocr

import (
	"image"
	"math"

	"github.com/mvickers/pattern-scout/internal/mask"
)

// HeuristicTextRegions finds likely text regions without running OCR.
//
// It slides text-shaped windows over an edge map and scores each window
// by edge density and horizontal run structure, which is typical of
// printed text. Overlapping hits are merged into single regions.
//
// This is the fallback exclusion source for installations without
// Tesseract: coarser than real recognition, but good enough to keep
// pattern candidates off obvious text.
func HeuristicTextRegions(img image.Image, minConfidence float64) []mask.Region {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	edges := edgeMap(img, width, height)

	windowSizes := []struct{ w, h int }{
		{80, 25},  // very small text
		{100, 30}, // small text
		{150, 40}, // medium text
		{200, 50}, // large text
	}

	var hits []mask.Region
	for _, ws := range windowSizes {
		stepX, stepY := ws.w/2, ws.h/2
		for y := 0; y+ws.h <= height; y += stepY {
			for x := 0; x+ws.w <= width; x += stepX {
				edgeCount := 0
				for wy := 0; wy < ws.h; wy++ {
					row := (y + wy) * width
					for wx := 0; wx < ws.w; wx++ {
						if edges[row+x+wx] {
							edgeCount++
						}
					}
				}

				density := float64(edgeCount) / float64(ws.w*ws.h)
				// Text has medium edge density, neither blank nor solid.
				if density < 0.05 || density > 0.4 {
					continue
				}

				score := horizontalStructure(edges, width, x, y, ws.w, ws.h) *
					(1.0 - math.Abs(density-0.2)/0.2)
				if score >= minConfidence {
					hits = append(hits, mask.Region{X: x, Y: y, Width: ws.w, Height: ws.h})
				}
			}
		}
	}
	return mergeRegions(hits)
}

// edgeMap marks pixels whose horizontal or vertical gradient exceeds a
// fixed threshold. Border pixels are never edges.
func edgeMap(img image.Image, width, height int) []bool {
	bounds := img.Bounds()
	const threshold = 30.0

	lum := make([]float64, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b, _ := img.At(x+bounds.Min.X, y+bounds.Min.Y).RGBA()
			lum[y*width+x] = 0.299*float64(r>>8) + 0.587*float64(g>>8) + 0.114*float64(b>>8)
		}
	}

	edges := make([]bool, width*height)
	for y := 0; y < height-1; y++ {
		for x := 0; x < width-1; x++ {
			i := y*width + x
			dx := math.Abs(lum[i] - lum[i+1])
			dy := math.Abs(lum[i] - lum[i+width])
			if dx > threshold || dy > threshold {
				edges[i] = true
			}
		}
	}
	return edges
}

// horizontalStructure scores how horizontal the edge runs inside a window
// are. Printed text produces many short horizontal runs.
func horizontalStructure(edges []bool, width, x, y, w, h int) float64 {
	horizontal, vertical := 0, 0

	for row := y; row < y+h; row++ {
		inRun := false
		for col := x; col < x+w; col++ {
			if edges[row*width+col] {
				if !inRun {
					horizontal++
					inRun = true
				}
			} else {
				inRun = false
			}
		}
	}
	for col := x; col < x+w; col++ {
		inRun := false
		for row := y; row < y+h; row++ {
			if edges[row*width+col] {
				if !inRun {
					vertical++
					inRun = true
				}
			} else {
				inRun = false
			}
		}
	}

	if horizontal+vertical == 0 {
		return 0
	}
	return float64(horizontal) / float64(horizontal+vertical)
}

// mergeRegions unions overlapping hit windows into single regions.
func mergeRegions(regions []mask.Region) []mask.Region {
	var merged []mask.Region
	for _, r := range regions {
		found := false
		for i := range merged {
			if overlaps(r, merged[i]) {
				merged[i] = union(r, merged[i])
				found = true
				break
			}
		}
		if !found {
			merged = append(merged, r)
		}
	}
	return merged
}

func overlaps(a, b mask.Region) bool {
	return a.X < b.X+b.Width && a.X+a.Width > b.X &&
		a.Y < b.Y+b.Height && a.Y+a.Height > b.Y
}

func union(a, b mask.Region) mask.Region {
	x1 := a.X
	if b.X < x1 {
		x1 = b.X
	}
	y1 := a.Y
	if b.Y < y1 {
		y1 = b.Y
	}
	x2 := a.X + a.Width
	if b.X+b.Width > x2 {
		x2 = b.X + b.Width
	}
	y2 := a.Y + a.Height
	if b.Y+b.Height > y2 {
		y2 = b.Y + b.Height
	}
	return mask.Region{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}
