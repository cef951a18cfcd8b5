// Package estimate provides robust projective-transform estimation from
// noisy point correspondences.
//
// The default estimator is a pure-Go RANSAC over the 4-point direct
// linear transform. An OpenCV-backed estimator with the same interface is
// available behind the gocv build tag.
//
// All failure modes are explicit errors; no panic crosses this package's
// boundary. Callers branch on the sentinel errors to distinguish a pool
// that is too small from one that is geometrically degenerate.
package estimate

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/mvickers/pattern-scout/internal/geometry"
)

// Sentinel errors returned by estimators. They all mean "no usable
// transform from this input"; callers treat them uniformly as a stop
// signal for the current correspondence pool.
var (
	// ErrTooFewPoints signals fewer than four correspondences.
	ErrTooFewPoints = errors.New("estimate: need at least 4 correspondences")

	// ErrDegenerate signals that no non-degenerate sample could be drawn,
	// e.g. all points collinear or coincident.
	ErrDegenerate = errors.New("estimate: degenerate point configuration")

	// ErrBelowMinInliers signals that the best model explained too few
	// correspondences to be trusted.
	ErrBelowMinInliers = errors.New("estimate: best model has too few inliers")
)

// Params are the RANSAC tuning knobs.
type Params struct {
	// Threshold is the maximum reprojection error in pixels for a
	// correspondence to count as an inlier. Default 3.0.
	Threshold float64

	// Confidence is the desired probability of finding an outlier-free
	// sample, used to adapt the iteration count. Default 0.99.
	Confidence float64

	// MaxIterations bounds the sampling loop. Default 2000.
	MaxIterations int
}

// DefaultParams returns the standard RANSAC configuration.
func DefaultParams() Params {
	return Params{Threshold: 3.0, Confidence: 0.99, MaxIterations: 2000}
}

// Result is a successful estimation outcome.
type Result struct {
	// Transform maps reference-space points to target-space points.
	Transform geometry.Homography

	// InlierMask marks which input correspondences are consistent with
	// the transform, index-aligned with the input slices.
	InlierMask []bool

	// Inliers is the number of true entries in InlierMask.
	Inliers int
}

// Estimator produces a robust projective fit from two point sets, or an
// explicit failure. Implementations must be deterministic for a fixed
// seed so that full runs are reproducible.
type Estimator interface {
	Estimate(src, dst []geometry.Point, p Params) (*Result, error)
}

// RANSAC is the built-in pure-Go estimator.
//
// Minimal 4-point samples are solved by direct linear transform; the
// consensus set of the best sample is refit by least squares over all its
// inliers. The iteration count adapts downward as better models are
// found, capped by Params.MaxIterations.
type RANSAC struct {
	// Seed initializes the sampling source. Equal seeds and inputs give
	// equal results.
	Seed int64

	// MinInliers is the minimum consensus size for success. Values below
	// 4 are treated as 4.
	MinInliers int
}

// Estimate implements Estimator.
func (r RANSAC) Estimate(src, dst []geometry.Point, p Params) (*Result, error) {
	n := len(src)
	if len(dst) != n {
		return nil, fmt.Errorf("estimate: point set sizes differ (%d vs %d)", n, len(dst))
	}
	if n < 4 {
		return nil, ErrTooFewPoints
	}
	if p.Threshold <= 0 || p.MaxIterations <= 0 {
		def := DefaultParams()
		if p.Threshold <= 0 {
			p.Threshold = def.Threshold
		}
		if p.MaxIterations <= 0 {
			p.MaxIterations = def.MaxIterations
		}
	}
	if p.Confidence <= 0 || p.Confidence >= 1 {
		p.Confidence = DefaultParams().Confidence
	}
	minInliers := r.MinInliers
	if minInliers < 4 {
		minInliers = 4
	}

	rng := rand.New(rand.NewSource(r.Seed))
	threshSq := p.Threshold * p.Threshold

	var bestMask []bool
	var bestH geometry.Homography
	bestCount := 0
	iterations := p.MaxIterations
	sampled := false

	for iter := 0; iter < iterations; iter++ {
		idx := sampleFour(rng, n)
		if !nonDegenerate(src, idx) || !nonDegenerate(dst, idx) {
			continue
		}
		h, ok := solveMinimal(src, dst, idx)
		if !ok {
			continue
		}
		sampled = true

		mask, count := consensus(src, dst, h, threshSq)
		if count > bestCount {
			bestCount = count
			bestMask = mask
			bestH = h

			// Standard adaptive termination: shrink the iteration budget
			// as the inlier ratio improves.
			w := float64(count) / float64(n)
			if est := adaptiveIterations(p.Confidence, w); est < iterations {
				iterations = est
			}
		}
	}

	if !sampled {
		return nil, ErrDegenerate
	}
	if bestCount < minInliers {
		return nil, ErrBelowMinInliers
	}

	// Refit over the full consensus set for accuracy; fall back to the
	// minimal-sample model if the refit system is singular.
	h, mask, count := refit(src, dst, bestMask, threshSq)
	if count < bestCount {
		h, mask, count = bestH, bestMask, bestCount
	}
	if count < minInliers {
		return nil, ErrBelowMinInliers
	}
	return &Result{Transform: h, InlierMask: mask, Inliers: count}, nil
}

// sampleFour draws four distinct indices from [0, n).
func sampleFour(rng *rand.Rand, n int) [4]int {
	var idx [4]int
	for i := 0; i < 4; {
		c := rng.Intn(n)
		dup := false
		for j := 0; j < i; j++ {
			if idx[j] == c {
				dup = true
				break
			}
		}
		if !dup {
			idx[i] = c
			i++
		}
	}
	return idx
}

// nonDegenerate rejects samples where any three points are (nearly)
// collinear, which would make the DLT system singular.
func nonDegenerate(pts []geometry.Point, idx [4]int) bool {
	for a := 0; a < 2; a++ {
		for b := a + 1; b < 3; b++ {
			for c := b + 1; c < 4; c++ {
				p, q, s := pts[idx[a]], pts[idx[b]], pts[idx[c]]
				area := (q.X-p.X)*(s.Y-p.Y) - (q.Y-p.Y)*(s.X-p.X)
				if math.Abs(area) < 1e-6 {
					return false
				}
			}
		}
	}
	return true
}

// solveMinimal computes the exact homography through four point pairs by
// solving the 8x8 DLT system with h33 fixed at 1.
func solveMinimal(src, dst []geometry.Point, idx [4]int) (geometry.Homography, bool) {
	var a [8][9]float64 // augmented system
	for i, k := range idx {
		s, d := src[k], dst[k]
		a[2*i] = [9]float64{s.X, s.Y, 1, 0, 0, 0, -s.X * d.X, -s.Y * d.X, d.X}
		a[2*i+1] = [9]float64{0, 0, 0, s.X, s.Y, 1, -s.X * d.Y, -s.Y * d.Y, d.Y}
	}
	h, ok := solve8(a)
	if !ok {
		return geometry.Homography{}, false
	}
	return geometry.Homography{h[0], h[1], h[2], h[3], h[4], h[5], h[6], h[7], 1}, true
}

// refit solves the overdetermined DLT system over all masked inliers via
// normal equations, then recomputes the consensus set under the refined
// transform.
func refit(src, dst []geometry.Point, mask []bool, threshSq float64) (geometry.Homography, []bool, int) {
	var m [8][9]float64 // normal equations, augmented with A^T b
	addRow := func(row [8]float64, rhs float64) {
		for i := 0; i < 8; i++ {
			for j := 0; j < 8; j++ {
				m[i][j] += row[i] * row[j]
			}
			m[i][8] += row[i] * rhs
		}
	}

	for k := range src {
		if !mask[k] {
			continue
		}
		s, d := src[k], dst[k]
		addRow([8]float64{s.X, s.Y, 1, 0, 0, 0, -s.X * d.X, -s.Y * d.X}, d.X)
		addRow([8]float64{0, 0, 0, s.X, s.Y, 1, -s.X * d.Y, -s.Y * d.Y}, d.Y)
	}

	h8, ok := solve8(m)
	if !ok {
		// Singular refit system; signal the caller to keep the
		// minimal-sample model by returning an empty consensus.
		return geometry.Identity(), mask, 0
	}
	h := geometry.Homography{h8[0], h8[1], h8[2], h8[3], h8[4], h8[5], h8[6], h8[7], 1}
	newMask, count := consensus(src, dst, h, threshSq)
	return h, newMask, count
}

// consensus counts correspondences whose reprojection error is within
// threshold of the transform.
func consensus(src, dst []geometry.Point, h geometry.Homography, threshSq float64) ([]bool, int) {
	mask := make([]bool, len(src))
	count := 0
	for i := range src {
		p, ok := h.Apply(src[i])
		if !ok {
			continue
		}
		dx, dy := p.X-dst[i].X, p.Y-dst[i].Y
		if dx*dx+dy*dy <= threshSq {
			mask[i] = true
			count++
		}
	}
	return mask, count
}

// adaptiveIterations returns the RANSAC iteration count needed to draw an
// all-inlier 4-point sample with the given confidence, assuming inlier
// ratio w.
func adaptiveIterations(confidence, w float64) int {
	if w <= 0 {
		return math.MaxInt32
	}
	if w >= 1 {
		return 1
	}
	denom := math.Log(1 - math.Pow(w, 4))
	if denom >= 0 {
		return 1
	}
	est := math.Log(1-confidence) / denom
	if est < 1 {
		return 1
	}
	if est > float64(math.MaxInt32) {
		return math.MaxInt32
	}
	return int(math.Ceil(est))
}

// solve8 performs Gaussian elimination with partial pivoting on an 8x8
// system augmented with its right-hand side. Returns false on a singular
// matrix.
func solve8(a [8][9]float64) ([8]float64, bool) {
	var x [8]float64
	for col := 0; col < 8; col++ {
		pivot := col
		for r := col + 1; r < 8; r++ {
			if math.Abs(a[r][col]) > math.Abs(a[pivot][col]) {
				pivot = r
			}
		}
		if math.Abs(a[pivot][col]) < 1e-12 {
			return x, false
		}
		a[col], a[pivot] = a[pivot], a[col]

		for r := col + 1; r < 8; r++ {
			f := a[r][col] / a[col][col]
			for c := col; c < 9; c++ {
				a[r][c] -= f * a[col][c]
			}
		}
	}
	for row := 7; row >= 0; row-- {
		sum := a[row][8]
		for c := row + 1; c < 8; c++ {
			sum -= a[row][c] * x[c]
		}
		x[row] = sum / a[row][row]
	}
	return x, true
}
