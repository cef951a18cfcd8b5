package locate

import (
	"image"
	"log/slog"
	"math/rand"

	"github.com/mvickers/pattern-scout/internal/estimate"
	"github.com/mvickers/pattern-scout/internal/geometry"
	"github.com/mvickers/pattern-scout/internal/imaging"
	"github.com/mvickers/pattern-scout/internal/mask"
)

// Extractor runs the iterative instance-extraction loop for one reference
// pattern at a time.
//
// Each iteration estimates a robust transform over the unconsumed
// correspondence pool, converts it to a candidate box, validates the box,
// and marks the fit's inliers consumed. Consumption happens on both the
// accept and the reject path: a cluster of points that keeps producing a
// geometrically invalid fit must not starve the loop. This means nearby
// alternative fits sharing some of those points are never retried; the
// trade-off favors guaranteed termination over recall and is intentional.
type Extractor struct {
	Config    Config
	Estimator estimate.Estimator
	Validator Validator
	Logger    *slog.Logger
}

// pool tracks per-run consumption over a pattern's correspondences.
type pool struct {
	corrs    []Correspondence
	consumed []bool
}

func newPool(corrs []Correspondence) *pool {
	return &pool{corrs: corrs, consumed: make([]bool, len(corrs))}
}

// active returns the unconsumed correspondences as parallel point slices
// plus their indices into the backing pool.
func (p *pool) active() (src, dst []geometry.Point, idx []int) {
	for i, c := range p.corrs {
		if p.consumed[i] {
			continue
		}
		src = append(src, c.Ref)
		dst = append(dst, c.Target)
		idx = append(idx, i)
	}
	return src, dst, idx
}

// consume marks the pool entries behind the masked active positions.
func (p *pool) consume(idx []int, inlierMask []bool) {
	for pos, i := range idx {
		if inlierMask[pos] {
			p.consumed[i] = true
		}
	}
}

func (p *pool) remaining() int {
	n := 0
	for _, c := range p.consumed {
		if !c {
			n++
		}
	}
	return n
}

// Extract pulls validated instances of one pattern from its
// correspondence pool until no budget remains.
//
// The loop halts when the unconsumed pool drops below the minimum match
// count, the per-pattern instance budget is reached, or the estimator
// reports it cannot make further progress. It never returns an error:
// every failure narrows the pattern's scope and the (possibly empty)
// candidate list is always valid.
func (e *Extractor) Extract(target image.Image, pat *ReferencePattern, corrs []Correspondence, excl *mask.Mask) []Candidate {
	log := e.Logger
	if log == nil {
		log = slog.Default()
	}
	log = log.With("pattern", pat.Name)

	bounds := target.Bounds()
	imgW, imgH := bounds.Dx(), bounds.Dy()
	rng := rand.New(rand.NewSource(e.Config.Seed))
	p := newPool(corrs)

	log.Debug("pattern started", "correspondences", len(corrs))

	var candidates []Candidate
	for len(candidates) < e.Config.MaxInstancesPerReference {
		if p.remaining() < e.Config.MinMatchedFeatures {
			break
		}

		src, dst, idx := p.active()
		res, err := e.Estimator.Estimate(src, dst, e.Config.RANSAC)
		if err != nil {
			// Degenerate or exhausted pool; no further progress possible
			// for this pattern.
			log.Debug("estimation stopped", "remaining", len(src), "reason", err.Error())
			break
		}

		inlierRatio := float64(res.Inliers) / float64(len(src))
		if res.Inliers < e.Config.MinMatchedFeatures || inlierRatio < e.Config.MinInlierRatio {
			log.Debug("fit below thresholds", "inliers", res.Inliers, "inlier_ratio", inlierRatio)
			break
		}

		corners, ok := res.Transform.ProjectCorners(float64(pat.Width), float64(pat.Height))
		if !ok {
			// The transform maps a corner through infinity. Treat it like
			// any rejected candidate: consume and move on.
			p.consume(idx, res.InlierMask)
			log.Debug("candidate rejected", "reason", "degenerate-projection")
			continue
		}

		box := geometry.BoundingBox(corners[:])
		clipped, reason, accepted := e.Validator.Validate(box, imgW, imgH, excl)
		if !accepted {
			p.consume(idx, res.InlierMask)
			log.Debug("candidate rejected", "reason", string(reason), "box", box)
			continue
		}

		cand := Candidate{
			Pattern:     pat.Name,
			Box:         clipped,
			Transform:   res.Transform,
			Inliers:     res.Inliers,
			InlierRatio: inlierRatio,
			Confidence:  confidence(res.Inliers, pat.Descriptors.Len()),
			Color:       cropColor(target, clipped, rng),
		}
		candidates = append(candidates, cand)
		p.consume(idx, res.InlierMask)

		log.Debug("candidate accepted",
			"box", clipped,
			"inliers", res.Inliers,
			"inlier_ratio", inlierRatio,
			"confidence", cand.Confidence)
	}

	log.Debug("pattern done", "instances", len(candidates))
	return candidates
}

// cropColor summarizes the color of the accepted region from the original
// image. Any crop failure degrades to the zero color rather than aborting
// the instance.
func cropColor(target image.Image, box geometry.Box, rng *rand.Rand) imaging.RGBColor {
	crop, err := imaging.CropBox(target, box)
	if err != nil {
		return imaging.RGBColor{}
	}
	return imaging.DominantColor(crop, rng)
}

// confidence relates a fit's inlier count to the pattern's descriptor
// budget, clamped to [0, 1].
func confidence(inliers, descriptors int) float64 {
	if descriptors <= 0 {
		return 0
	}
	c := float64(inliers) / float64(descriptors)
	if c > 1 {
		return 1
	}
	return c
}
