//go:build gocv
// +build gocv

package estimate

import (
	"fmt"

	"gocv.io/x/gocv"

	"github.com/mvickers/pattern-scout/internal/geometry"
)

// GoCV is an OpenCV-backed estimator using cv::findHomography with
// RANSAC. It requires the gocv build tag and an OpenCV installation.
//
// OpenCV's RANSAC is not seed-controllable, so runs using this estimator
// are robust but not bit-for-bit reproducible. Use the pure-Go RANSAC
// estimator when idempotence matters more than speed.
type GoCV struct {
	// MinInliers is the minimum consensus size for success. Values below
	// 4 are treated as 4.
	MinInliers int
}

// Estimate implements Estimator.
func (g GoCV) Estimate(src, dst []geometry.Point, p Params) (*Result, error) {
	n := len(src)
	if len(dst) != n {
		return nil, fmt.Errorf("estimate: point set sizes differ (%d vs %d)", n, len(dst))
	}
	if n < 4 {
		return nil, ErrTooFewPoints
	}
	def := DefaultParams()
	if p.Threshold <= 0 {
		p.Threshold = def.Threshold
	}
	if p.Confidence <= 0 || p.Confidence >= 1 {
		p.Confidence = def.Confidence
	}
	if p.MaxIterations <= 0 {
		p.MaxIterations = def.MaxIterations
	}
	minInliers := g.MinInliers
	if minInliers < 4 {
		minInliers = 4
	}

	srcMat := gocv.NewMatWithSize(n, 1, gocv.MatTypeCV64FC2)
	defer srcMat.Close()
	dstMat := gocv.NewMatWithSize(n, 1, gocv.MatTypeCV64FC2)
	defer dstMat.Close()
	for i := 0; i < n; i++ {
		srcMat.SetDoubleAt(i, 0, src[i].X)
		srcMat.SetDoubleAt(i, 1, src[i].Y)
		dstMat.SetDoubleAt(i, 0, dst[i].X)
		dstMat.SetDoubleAt(i, 1, dst[i].Y)
	}

	inlierMat := gocv.NewMat()
	defer inlierMat.Close()

	h := gocv.FindHomography(srcMat, &dstMat, gocv.HomographyMethodRANSAC,
		p.Threshold, &inlierMat, p.MaxIterations, p.Confidence)
	defer h.Close()

	if h.Empty() {
		return nil, ErrDegenerate
	}

	mask := make([]bool, n)
	count := 0
	for i := 0; i < n && i < inlierMat.Rows(); i++ {
		if inlierMat.GetUCharAt(i, 0) != 0 {
			mask[i] = true
			count++
		}
	}
	if count < minInliers {
		return nil, ErrBelowMinInliers
	}

	var out geometry.Homography
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			out[r*3+c] = h.GetDoubleAt(r, c)
		}
	}
	return &Result{Transform: out, InlierMask: mask, Inliers: count}, nil
}
