package features

import (
	"math"
	"sort"
)

// Match pairs a reference descriptor with its best target descriptor.
type Match struct {
	RefIndex    int     // Index into the reference DescriptorSet
	TargetIndex int     // Index into the target DescriptorSet
	Distance    float64 // Euclidean descriptor distance (lower is better)
}

// RatioMatcher performs brute-force nearest-neighbor matching with the
// Lowe ratio test.
//
// For each reference descriptor the two nearest target descriptors are
// found; the match is kept only when the best distance is below Ratio
// times the second-best, which filters ambiguous correspondences before
// robust estimation sees them.
type RatioMatcher struct {
	// Ratio is the ratio-test threshold in (0, 1]. Typical: 0.75.
	// Lower values are stricter.
	Ratio float64

	// MaxMatches caps the number of returned matches, keeping the
	// lowest-distance ones. Values <= 0 mean no cap.
	MaxMatches int
}

// Match computes ratio-test-filtered correspondences between a reference
// pattern's descriptors and a target image's descriptors.
//
// Results are sorted by ascending distance. An empty result is valid and
// simply means no unambiguous correspondences exist; the caller treats
// that as an insufficient-match condition, not an error.
func (m RatioMatcher) Match(ref, target *DescriptorSet) []Match {
	if ref.Len() == 0 || target.Len() < 2 {
		return nil
	}

	matches := make([]Match, 0, ref.Len())
	for i, d := range ref.Descriptors {
		best, second := math.MaxFloat64, math.MaxFloat64
		bestIdx := -1
		for j, t := range target.Descriptors {
			dist := descriptorDistance(d, t)
			if dist < best {
				second = best
				best = dist
				bestIdx = j
			} else if dist < second {
				second = dist
			}
		}
		if bestIdx < 0 {
			continue
		}
		if best >= m.Ratio*second {
			continue
		}
		matches = append(matches, Match{RefIndex: i, TargetIndex: bestIdx, Distance: best})
	}

	sort.Slice(matches, func(a, b int) bool {
		return matches[a].Distance < matches[b].Distance
	})
	if m.MaxMatches > 0 && len(matches) > m.MaxMatches {
		matches = matches[:m.MaxMatches]
	}
	return matches
}

// descriptorDistance returns the Euclidean distance between descriptors.
// Descriptors of unequal length compare over the shorter prefix; sets
// built by this package always have equal lengths.
func descriptorDistance(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		d := float64(a[i] - b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}
