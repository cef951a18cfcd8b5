package features

import (
	"image"
	"math"
	"sort"
)

// Keypoint is a detected corner location with its response score.
type Keypoint struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Score float64 `json:"score"`
}

// DescriptorSet holds the keypoints detected in one image together with
// their appearance descriptors, index-aligned.
//
// A DescriptorSet is immutable once built and safe for concurrent reads;
// detection runs share each reference pattern's set across workers.
type DescriptorSet struct {
	Keypoints   []Keypoint
	Descriptors [][]float32
}

// Len returns the number of descriptors in the set.
func (d *DescriptorSet) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Descriptors)
}

// AppendRescaled merges a variant set detected at a different image scale,
// mapping its keypoint coordinates back into base-image space.
//
// Descriptors are appended as-is: the descriptor patch is already
// normalized, so only the locations need rescaling.
func (d *DescriptorSet) AppendRescaled(v *DescriptorSet, scale float64) {
	if v == nil || scale <= 0 {
		return
	}
	for i, kp := range v.Keypoints {
		d.Keypoints = append(d.Keypoints, Keypoint{
			X:     kp.X / scale,
			Y:     kp.Y / scale,
			Score: kp.Score,
		})
		d.Descriptors = append(d.Descriptors, v.Descriptors[i])
	}
}

const (
	// patchRadius is half the descriptor sampling window. Descriptors are
	// built from an 8x8 grid with stride 2, covering a 16x16 patch.
	patchRadius = 8
	patchGrid   = 8
	patchStride = 2

	harrisK = 0.04

	// responseFraction discards corners weaker than this fraction of the
	// strongest response in the image.
	responseFraction = 0.01
)

// Detect finds corner keypoints in an image and computes a normalized
// intensity-patch descriptor for each.
//
// Parameters:
//   - img: Source image. Converted to grayscale internally.
//   - maxFeatures: Upper bound on returned keypoints. The strongest
//     responses are kept. Values <= 0 mean no limit.
//
// Returns a DescriptorSet; an image too small to hold a descriptor patch
// yields an empty set rather than an error.
//
// # Algorithm
//
//  1. Grayscale conversion using ITU-R BT.601 luminance weights
//  2. Sobel gradients Ix, Iy
//  3. Harris corner response R = det(M) - k*trace(M)^2 over a 3x3 window
//  4. Threshold at a fraction of the maximum response, then 3x3
//     non-maximum suppression
//  5. For each surviving corner, sample a 16x16 patch on an 8x8 grid and
//     normalize it to zero mean and unit length
//
// Patch normalization makes descriptors robust to uniform brightness and
// contrast changes; it does not handle rotation, which the downstream
// robust estimator tolerates as outlier correspondences.
func Detect(img image.Image, maxFeatures int) *DescriptorSet {
	gray, w, h := toGray(img)
	set := &DescriptorSet{}
	margin := patchRadius + 1
	if w <= 2*margin || h <= 2*margin {
		return set
	}

	ix, iy := sobel(gray, w, h)

	// Harris response over a 3x3 structure-tensor window.
	resp := make([]float64, w*h)
	maxResp := 0.0
	for y := margin; y < h-margin; y++ {
		for x := margin; x < w-margin; x++ {
			var sxx, syy, sxy float64
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					i := (y+dy)*w + (x + dx)
					gx, gy := ix[i], iy[i]
					sxx += gx * gx
					syy += gy * gy
					sxy += gx * gy
				}
			}
			det := sxx*syy - sxy*sxy
			tr := sxx + syy
			r := det - harrisK*tr*tr
			resp[y*w+x] = r
			if r > maxResp {
				maxResp = r
			}
		}
	}
	if maxResp <= 0 {
		return set
	}

	threshold := responseFraction * maxResp
	var corners []Keypoint
	for y := margin; y < h-margin; y++ {
		for x := margin; x < w-margin; x++ {
			r := resp[y*w+x]
			if r < threshold {
				continue
			}
			localMax := true
			for dy := -1; dy <= 1 && localMax; dy++ {
				for dx := -1; dx <= 1 && localMax; dx++ {
					if dx == 0 && dy == 0 {
						continue
					}
					if resp[(y+dy)*w+(x+dx)] > r {
						localMax = false
					}
				}
			}
			if localMax {
				corners = append(corners, Keypoint{X: float64(x), Y: float64(y), Score: r})
			}
		}
	}

	sort.Slice(corners, func(i, j int) bool {
		return corners[i].Score > corners[j].Score
	})
	if maxFeatures > 0 && len(corners) > maxFeatures {
		corners = corners[:maxFeatures]
	}

	set.Keypoints = corners
	set.Descriptors = make([][]float32, len(corners))
	for i, kp := range corners {
		set.Descriptors[i] = describe(gray, w, int(kp.X), int(kp.Y))
	}
	return set
}

// describe samples a normalized intensity patch around a corner.
func describe(gray []float64, w, cx, cy int) []float32 {
	raw := make([]float64, 0, patchGrid*patchGrid)
	mean := 0.0
	for gy := 0; gy < patchGrid; gy++ {
		for gx := 0; gx < patchGrid; gx++ {
			x := cx - patchRadius + gx*patchStride
			y := cy - patchRadius + gy*patchStride
			v := gray[y*w+x]
			raw = append(raw, v)
			mean += v
		}
	}
	mean /= float64(len(raw))

	norm := 0.0
	for i := range raw {
		raw[i] -= mean
		norm += raw[i] * raw[i]
	}
	norm = math.Sqrt(norm)

	desc := make([]float32, len(raw))
	if norm < 1e-9 {
		// Flat patch; leave the zero descriptor. It matches nothing well,
		// which is the correct outcome for textureless corners.
		return desc
	}
	for i := range raw {
		desc[i] = float32(raw[i] / norm)
	}
	return desc
}

// toGray converts an image to a flat float64 luminance buffer.
func toGray(img image.Image) ([]float64, int, int) {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	gray := make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, _ := img.At(x+bounds.Min.X, y+bounds.Min.Y).RGBA()
			gray[y*w+x] = 0.299*float64(r>>8) + 0.587*float64(g>>8) + 0.114*float64(b>>8)
		}
	}
	return gray, w, h
}

// sobel computes horizontal and vertical Sobel gradients. Border pixels
// keep zero gradients.
func sobel(gray []float64, w, h int) (ix, iy []float64) {
	ix = make([]float64, w*h)
	iy = make([]float64, w*h)
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			tl := gray[(y-1)*w+(x-1)]
			tc := gray[(y-1)*w+x]
			tr := gray[(y-1)*w+(x+1)]
			ml := gray[y*w+(x-1)]
			mr := gray[y*w+(x+1)]
			bl := gray[(y+1)*w+(x-1)]
			bc := gray[(y+1)*w+x]
			br := gray[(y+1)*w+(x+1)]

			ix[y*w+x] = (tr + 2*mr + br) - (tl + 2*ml + bl)
			iy[y*w+x] = (bl + 2*bc + br) - (tl + 2*tc + tr)
		}
	}
	return ix, iy
}
