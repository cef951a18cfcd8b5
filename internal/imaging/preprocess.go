package imaging

import (
	"image"

	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/effect"
)

// Preprocess applies light denoising and sharpening before feature
// detection.
//
// A small Gaussian blur suppresses sensor noise that would otherwise
// produce spurious corners, and a sharpen pass restores edge contrast so
// genuine corners keep their scores. A radius of 0 or less skips the
// blur step and returns a sharpened copy only.
func Preprocess(img image.Image, blurRadius float64) image.Image {
	out := img
	if blurRadius > 0 {
		out = blur.Gaussian(out, blurRadius)
	}
	return effect.Sharpen(out)
}

// ScaledVariants produces resized copies of a reference pattern for
// multi-scale matching.
//
// Each valid scale factor yields one variant; factors that collapse the
// image are skipped rather than reported, since a missing variant only
// narrows matching, never breaks it. The returned slice is ordered like
// the input scales.
func ScaledVariants(img image.Image, scales []float64) []ScaledImage {
	variants := make([]ScaledImage, 0, len(scales))
	for _, s := range scales {
		if s == 1.0 {
			continue
		}
		scaled, err := Rescale(img, s)
		if err != nil {
			continue
		}
		variants = append(variants, ScaledImage{Image: scaled, Scale: s})
	}
	return variants
}

// ScaledImage pairs a resized image with the factor that produced it.
type ScaledImage struct {
	Image image.Image
	Scale float64
}
