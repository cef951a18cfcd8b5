package locate

import (
	"github.com/mvickers/pattern-scout/internal/estimate"
	"github.com/mvickers/pattern-scout/internal/features"
	"github.com/mvickers/pattern-scout/internal/geometry"
	"github.com/mvickers/pattern-scout/internal/imaging"
)

// ReferencePattern is one known visual pattern to locate in the target
// image. It is built once during reference loading and read-only for the
// lifetime of a detection run.
type ReferencePattern struct {
	// Name identifies the pattern, typically the file stem it was loaded
	// from. Names key the final DetectionSet groups.
	Name string

	// Width and Height are the pattern's base dimensions in pixels. The
	// four corners of this rectangle are projected through estimated
	// transforms to produce candidate boxes.
	Width  int
	Height int

	// Descriptors holds the pattern's feature descriptors, including any
	// merged scaled variants mapped back to base coordinates.
	Descriptors *features.DescriptorSet
}

// Correspondence pairs a reference-space point with a target-space point.
// Consumption state lives in the extraction pool, not here, so the slice
// handed to the extractor can be shared read-only.
type Correspondence struct {
	Ref    geometry.Point // Point in reference-pattern space
	Target geometry.Point // Point in target-image space
}

// Candidate is a geometric instance proposal that passed validation and
// awaits cross-detection suppression.
type Candidate struct {
	Pattern     string
	Box         geometry.Box
	Transform   geometry.Homography
	Inliers     int
	InlierRatio float64
	Confidence  float64
	Color       imaging.RGBColor
}

// Detection is an accepted instance in the final result.
type Detection struct {
	// Box is the clipped bounding box in target-image coordinates.
	Box geometry.Box `json:"box"`

	// Confidence is the inlier count divided by the pattern's total
	// descriptor count, in [0, 1].
	Confidence float64 `json:"confidence"`

	// Inliers is the number of correspondences consistent with Transform.
	Inliers int `json:"inliers"`

	// InlierRatio is Inliers over the correspondences submitted to the
	// estimator for this instance, in [0, 1].
	InlierRatio float64 `json:"inlier_ratio"`

	// Color is the dominant color of the detected region.
	Color imaging.RGBColor `json:"dominant_color"`

	// Transform maps reference-pattern space to target-image space.
	Transform geometry.Homography `json:"transform"`
}

// PatternDetections groups the detections of one reference pattern.
type PatternDetections struct {
	Pattern    string      `json:"pattern"`
	Detections []Detection `json:"detections"`
}

// DetectionSet is the terminal output of a run: pattern groups in
// reference-pattern enumeration order. Patterns with zero accepted
// instances are omitted.
type DetectionSet struct {
	Patterns []PatternDetections `json:"patterns"`
}

// Total returns the number of detections across all groups.
func (s *DetectionSet) Total() int {
	n := 0
	for _, g := range s.Patterns {
		n += len(g.Detections)
	}
	return n
}

// Matcher produces descriptor correspondences between a reference pattern
// and the target image. features.RatioMatcher is the built-in
// implementation.
type Matcher interface {
	Match(ref, target *features.DescriptorSet) []features.Match
}

// Config is the full tuning surface of the localization engine.
type Config struct {
	// MinMatchedFeatures is the minimum inlier count to accept a fit and
	// the minimum pool size worth estimating over. Must be >= 4.
	MinMatchedFeatures int

	// MatchRatio is the Lowe ratio-test threshold for the built-in
	// correspondence provider.
	MatchRatio float64

	// MaxMatches caps correspondences per pattern before extraction.
	MaxMatches int

	// MaxFeatures caps keypoints detected per image.
	MaxFeatures int

	// RANSAC holds the robust-estimation parameters.
	RANSAC estimate.Params

	// MinInlierRatio is the minimum fraction of the submitted pool that
	// must be inliers for an instance to be kept. Inclusive boundary.
	MinInlierRatio float64

	// MaxInstancesPerReference bounds instances extracted per pattern.
	MaxInstancesPerReference int

	// NMSOverlapThreshold is the IoU at or above which the lower-scoring
	// of two candidates is suppressed, across all patterns.
	NMSOverlapThreshold float64

	// ExclusionPadding expands each exclusion region on every side before
	// rasterization, in pixels.
	ExclusionPadding int

	// ExclusionOverlapThreshold rejects candidates whose box overlaps the
	// exclusion mask by at least this fraction.
	ExclusionOverlapThreshold float64

	// MinBoxDim is the smallest acceptable clipped box side, in pixels.
	MinBoxDim int

	// MaxBoxFactor is the largest acceptable box side as a multiple of
	// the corresponding image dimension.
	MaxBoxFactor float64

	// Scales lists the reference-pattern variant scales built at load
	// time. 1.0 entries are ignored.
	Scales []float64

	// Workers bounds concurrent per-pattern extraction. Values <= 1 run
	// sequentially.
	Workers int

	// Seed drives color sampling and pure-Go RANSAC for reproducibility.
	Seed int64
}

// DefaultConfig returns the documented default configuration.
func DefaultConfig() Config {
	return Config{
		MinMatchedFeatures:        10,
		MatchRatio:                0.75,
		MaxMatches:                500,
		MaxFeatures:               1000,
		RANSAC:                    estimate.DefaultParams(),
		MinInlierRatio:            0.50,
		MaxInstancesPerReference:  8,
		NMSOverlapThreshold:       0.5,
		ExclusionPadding:          5,
		ExclusionOverlapThreshold: 0.3,
		MinBoxDim:                 10,
		MaxBoxFactor:              2.0,
		Scales:                    []float64{0.5, 0.75, 1.5},
		Workers:                   4,
		Seed:                      1,
	}
}
