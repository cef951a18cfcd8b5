package locate

import (
	"github.com/mvickers/pattern-scout/internal/geometry"
	"github.com/mvickers/pattern-scout/internal/mask"
)

// RejectReason explains why a candidate box failed validation.
type RejectReason string

const (
	RejectOutOfBounds RejectReason = "out-of-bounds"
	RejectTooSmall    RejectReason = "too-small"
	RejectTooLarge    RejectReason = "too-large"
	RejectExcluded    RejectReason = "excluded"
)

// Validator applies geometric sanity rules and exclusion-overlap checks to
// proposed bounding boxes. It is a pure value with no side effects.
type Validator struct {
	// MinDim is the smallest acceptable clipped box side in pixels.
	MinDim int

	// MaxDimFactor is the largest acceptable box side as a multiple of
	// the corresponding image dimension.
	MaxDimFactor float64

	// ExclusionThreshold rejects boxes whose exclusion-mask overlap ratio
	// reaches this fraction.
	ExclusionThreshold float64
}

// Validate checks a candidate box against the image bounds and exclusion
// mask. Checks run in order and the first failure decides the reason:
//
//  1. The box must intersect the image bounds non-degenerately; it is
//     clipped to those bounds.
//  2. Clipped width and height must each be >= MinDim and <= the maximum
//     derived from MaxDimFactor.
//  3. The clipped box's exclusion-mask overlap ratio must be below
//     ExclusionThreshold. A nil mask skips this check.
//
// On acceptance the returned box is the clipped box and ok is true.
func (v Validator) Validate(b geometry.Box, imgW, imgH int, m *mask.Mask) (geometry.Box, RejectReason, bool) {
	clipped := b.Clip(imgW, imgH)
	if clipped.Empty() {
		return clipped, RejectOutOfBounds, false
	}

	w, h := clipped.Width(), clipped.Height()
	if w < v.MinDim || h < v.MinDim {
		return clipped, RejectTooSmall, false
	}
	maxW := int(v.MaxDimFactor * float64(imgW))
	maxH := int(v.MaxDimFactor * float64(imgH))
	if w > maxW || h > maxH {
		return clipped, RejectTooLarge, false
	}

	if m != nil && m.OverlapRatio(clipped) >= v.ExclusionThreshold {
		return clipped, RejectExcluded, false
	}

	return clipped, "", true
}
