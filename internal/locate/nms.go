package locate

import (
	"sort"

	"github.com/mvickers/pattern-scout/internal/geometry"
)

// Suppress performs confidence-ordered non-maximum suppression over the
// full candidate pool.
//
// The threshold applies globally across all reference patterns: two
// different patterns claiming overlapping boxes on the same physical
// region still count as duplicates, and the higher-confidence claim wins.
// Candidates at exactly equal confidence keep their input order (stable
// sort), so the earlier one survives.
//
// The accepted subset is returned in descending-confidence order.
func Suppress(candidates []Candidate, threshold float64) []Candidate {
	if len(candidates) == 0 {
		return nil
	}

	ordered := make([]Candidate, len(candidates))
	copy(ordered, candidates)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Confidence > ordered[j].Confidence
	})

	accepted := make([]Candidate, 0, len(ordered))
	suppressed := make([]bool, len(ordered))
	for i, c := range ordered {
		if suppressed[i] {
			continue
		}
		accepted = append(accepted, c)
		for j := i + 1; j < len(ordered); j++ {
			if suppressed[j] {
				continue
			}
			if geometry.IoU(c.Box, ordered[j].Box) >= threshold {
				suppressed[j] = true
			}
		}
	}
	return accepted
}
