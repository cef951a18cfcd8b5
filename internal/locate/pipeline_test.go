package locate

import (
	"image/color"
	"reflect"
	"testing"

	"github.com/mvickers/pattern-scout/internal/features"
	"github.com/mvickers/pattern-scout/internal/geometry"
	"github.com/mvickers/pattern-scout/internal/mask"
)

// fakeMatcher returns canned matches per reference descriptor set.
type fakeMatcher struct {
	matches map[*features.DescriptorSet][]features.Match
}

func (f *fakeMatcher) Match(ref, _ *features.DescriptorSet) []features.Match {
	return f.matches[ref]
}

// pipelineFixture builds a target, two patterns, and a matcher that pairs
// each pattern's keypoints with translated target keypoints.
func pipelineFixture(t *testing.T) (*Pipeline, []*ReferencePattern, *features.DescriptorSet) {
	t.Helper()

	// Target keypoints: pattern A's grid translated by (100, 50), pattern
	// B never matches.
	patA := testPattern("logo-a", 40, 40, 30)
	patB := testPattern("logo-b", 40, 40, 30)

	target := &features.DescriptorSet{}
	matches := make([]features.Match, 0, 30)
	for i := 0; i < 30; i++ {
		x := float64(i%6) * 6
		y := float64(i/6) * 6
		patA.Descriptors.Keypoints[i] = features.Keypoint{X: x, Y: y}
		target.Keypoints = append(target.Keypoints, features.Keypoint{X: x + 100, Y: y + 50})
		target.Descriptors = append(target.Descriptors, make([]float32, 4))
		matches = append(matches, features.Match{RefIndex: i, TargetIndex: i})
	}

	cfg := DefaultConfig()
	cfg.Workers = 2
	p := New(cfg, nil)
	p.Matcher = &fakeMatcher{matches: map[*features.DescriptorSet][]features.Match{
		patA.Descriptors: matches,
	}}
	return p, []*ReferencePattern{patA, patB}, target
}

func TestPipelineRun(t *testing.T) {
	p, patterns, targetFeatures := pipelineFixture(t)
	target := uniformImage(400, 400, color.RGBA{50, 60, 70, 255})

	set := p.Run(target, targetFeatures, patterns, nil)

	if len(set.Patterns) != 1 {
		t.Fatalf("expected 1 pattern group, got %d", len(set.Patterns))
	}
	group := set.Patterns[0]
	if group.Pattern != "logo-a" {
		t.Errorf("group: got %s, want logo-a", group.Pattern)
	}
	if len(group.Detections) != 1 {
		t.Fatalf("expected 1 detection, got %d", len(group.Detections))
	}

	d := group.Detections[0]
	want := geometry.Box{X1: 100, Y1: 50, X2: 140, Y2: 90}
	if d.Box != want {
		t.Errorf("box: got %+v, want %+v", d.Box, want)
	}
	if d.Inliers != 30 {
		t.Errorf("inliers: got %d, want 30", d.Inliers)
	}
	if d.InlierRatio != 1.0 {
		t.Errorf("inlier ratio: got %f, want 1.0", d.InlierRatio)
	}
}

func TestPipelinePatternWithoutMatchesAbsent(t *testing.T) {
	p, patterns, targetFeatures := pipelineFixture(t)
	target := uniformImage(400, 400, color.White)

	set := p.Run(target, targetFeatures, patterns, nil)
	for _, g := range set.Patterns {
		if g.Pattern == "logo-b" {
			t.Error("pattern with zero correspondences must be absent from the result")
		}
	}
}

func TestPipelineAllPatternsEmpty(t *testing.T) {
	cfg := DefaultConfig()
	p := New(cfg, nil)
	p.Matcher = &fakeMatcher{matches: map[*features.DescriptorSet][]features.Match{}}
	target := uniformImage(100, 100, color.White)

	set := p.Run(target, &features.DescriptorSet{},
		[]*ReferencePattern{testPattern("a", 20, 20, 10), testPattern("b", 20, 20, 10)}, nil)

	if set.Total() != 0 {
		t.Errorf("run with no correspondences should yield an empty set, got %d", set.Total())
	}
	if set.Patterns != nil && len(set.Patterns) != 0 {
		t.Errorf("no groups expected, got %d", len(set.Patterns))
	}
}

func TestPipelineExclusionRejectsDetection(t *testing.T) {
	p, patterns, targetFeatures := pipelineFixture(t)
	target := uniformImage(400, 400, color.White)

	// The known detection box (100,50)-(140,90) sits inside this padded
	// exclusion region, so the run must come back empty.
	excl := []mask.Region{{X: 102, Y: 52, Width: 36, Height: 36}}
	set := p.Run(target, targetFeatures, patterns, excl)

	if set.Total() != 0 {
		t.Errorf("excluded region should reject the only detection, got %d", set.Total())
	}
}

func TestPipelineIdempotent(t *testing.T) {
	p, patterns, targetFeatures := pipelineFixture(t)
	target := uniformImage(400, 400, color.RGBA{90, 10, 120, 255})

	a := p.Run(target, targetFeatures, patterns, nil)
	b := p.Run(target, targetFeatures, patterns, nil)

	if !reflect.DeepEqual(a, b) {
		t.Error("identical inputs and configuration must yield identical detection sets")
	}
}
