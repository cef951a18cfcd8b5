package locate

// Assemble groups accepted candidates under their owning reference
// pattern.
//
// Groups appear in the given pattern enumeration order; detections within
// a group keep the order they arrived in, which after suppression is
// descending confidence. Patterns with zero accepted instances are
// omitted; callers needing a complete enumeration must check the original
// pattern list.
func Assemble(patternOrder []string, accepted []Candidate) *DetectionSet {
	byPattern := make(map[string][]Detection, len(patternOrder))
	for _, c := range accepted {
		byPattern[c.Pattern] = append(byPattern[c.Pattern], Detection{
			Box:         c.Box,
			Confidence:  c.Confidence,
			Inliers:     c.Inliers,
			InlierRatio: c.InlierRatio,
			Color:       c.Color,
			Transform:   c.Transform,
		})
	}

	set := &DetectionSet{}
	for _, name := range patternOrder {
		if dets, ok := byPattern[name]; ok {
			set.Patterns = append(set.Patterns, PatternDetections{
				Pattern:    name,
				Detections: dets,
			})
		}
	}
	return set
}
