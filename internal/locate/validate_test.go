package locate

import (
	"testing"

	"github.com/mvickers/pattern-scout/internal/geometry"
	"github.com/mvickers/pattern-scout/internal/mask"
)

func defaultValidator() Validator {
	return Validator{MinDim: 10, MaxDimFactor: 2.0, ExclusionThreshold: 0.3}
}

func TestValidateAccept(t *testing.T) {
	v := defaultValidator()

	box := geometry.Box{X1: 20, Y1: 20, X2: 80, Y2: 80}
	clipped, reason, ok := v.Validate(box, 100, 100, nil)
	if !ok {
		t.Fatalf("valid box rejected: %s", reason)
	}
	if clipped != box {
		t.Errorf("in-bounds box should be unchanged: got %+v", clipped)
	}
}

func TestValidateClipsOverhang(t *testing.T) {
	v := defaultValidator()

	box := geometry.Box{X1: -10, Y1: 50, X2: 60, Y2: 120}
	clipped, _, ok := v.Validate(box, 100, 100, nil)
	if !ok {
		t.Fatal("partially out-of-bounds box should be clipped, not rejected")
	}
	want := geometry.Box{X1: 0, Y1: 50, X2: 60, Y2: 100}
	if clipped != want {
		t.Errorf("clipped: got %+v, want %+v", clipped, want)
	}
}

func TestValidateRejectReasons(t *testing.T) {
	v := defaultValidator()
	excl := mask.Build(100, 100, []mask.Region{{X: 0, Y: 0, Width: 50, Height: 100}}, 0)

	tests := []struct {
		name string
		box  geometry.Box
		v    Validator
		want RejectReason
	}{
		{"fully outside", geometry.Box{X1: 200, Y1: 200, X2: 300, Y2: 300}, v, RejectOutOfBounds},
		{"degenerate", geometry.Box{X1: 10, Y1: 10, X2: 10, Y2: 50}, v, RejectOutOfBounds},
		{"too small", geometry.Box{X1: 10, Y1: 10, X2: 15, Y2: 50}, v, RejectTooSmall},
		{
			"too large",
			geometry.Box{X1: 0, Y1: 0, X2: 90, Y2: 90},
			Validator{MinDim: 10, MaxDimFactor: 0.5, ExclusionThreshold: 0.3},
			RejectTooLarge,
		},
		{"excluded", geometry.Box{X1: 0, Y1: 0, X2: 40, Y2: 40}, v, RejectExcluded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, reason, ok := tt.v.Validate(tt.box, 100, 100, excl)
			if ok {
				t.Fatal("expected rejection")
			}
			if reason != tt.want {
				t.Errorf("reason: got %s, want %s", reason, tt.want)
			}
		})
	}
}

func TestValidateExclusionBoundary(t *testing.T) {
	v := defaultValidator()
	// Left 30% of the candidate box is excluded: overlap ratio exactly at
	// the threshold must reject (>= comparison).
	excl := mask.Build(100, 100, []mask.Region{{X: 0, Y: 0, Width: 30, Height: 100}}, 0)

	box := geometry.Box{X1: 0, Y1: 0, X2: 100, Y2: 100}
	_, reason, ok := v.Validate(box, 100, 100, excl)
	if ok {
		t.Fatal("overlap ratio equal to threshold should reject")
	}
	if reason != RejectExcluded {
		t.Errorf("reason: got %s, want %s", reason, RejectExcluded)
	}

	// Just below the threshold passes.
	excl = mask.Build(100, 100, []mask.Region{{X: 0, Y: 0, Width: 29, Height: 100}}, 0)
	if _, _, ok := v.Validate(box, 100, 100, excl); !ok {
		t.Error("overlap ratio below threshold should pass")
	}
}

func TestValidateFullyInsidePaddedExclusion(t *testing.T) {
	// A candidate entirely inside an exclusion region padded by 5px is
	// rejected no matter how confident the fit was.
	v := defaultValidator()
	excl := mask.Build(200, 200, []mask.Region{{X: 50, Y: 50, Width: 60, Height: 60}}, 5)

	box := geometry.Box{X1: 48, Y1: 48, X2: 112, Y2: 112}
	_, reason, ok := v.Validate(box, 200, 200, excl)
	if ok {
		t.Fatal("box inside padded exclusion should be rejected")
	}
	if reason != RejectExcluded {
		t.Errorf("reason: got %s, want %s", reason, RejectExcluded)
	}
}
