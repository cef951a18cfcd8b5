package locate

import (
	"fmt"
	"image"
	"path/filepath"
	"strings"

	"github.com/mvickers/pattern-scout/internal/features"
	"github.com/mvickers/pattern-scout/internal/imaging"
)

// BuildReferencePattern detects features on a reference image and on its
// scaled variants, merging variant keypoints back into base coordinates.
func BuildReferencePattern(name string, img image.Image, cfg Config) *ReferencePattern {
	set := features.Detect(img, cfg.MaxFeatures)
	for _, v := range imaging.ScaledVariants(img, cfg.Scales) {
		set.AppendRescaled(features.Detect(v.Image, cfg.MaxFeatures), v.Scale)
	}

	bounds := img.Bounds()
	return &ReferencePattern{
		Name:        name,
		Width:       bounds.Dx(),
		Height:      bounds.Dy(),
		Descriptors: set,
	}
}

// LoadReferenceDir loads every image directly under dir as a reference
// pattern. Pattern names are the file stems; enumeration order is the
// sorted file order, which fixes the grouping order of the final
// DetectionSet.
func LoadReferenceDir(cache *imaging.ImageCache, dir string, cfg Config) ([]*ReferencePattern, error) {
	paths, err := imaging.ListImages(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list reference images: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no reference images found in %s", dir)
	}

	patterns := make([]*ReferencePattern, 0, len(paths))
	for _, path := range paths {
		img, err := cache.Load(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load reference %s: %w", path, err)
		}
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		patterns = append(patterns, BuildReferencePattern(name, img, cfg))
	}
	return patterns, nil
}

// BuildTargetFeatures prepares the target image's descriptor set, with
// light preprocessing ahead of detection.
func BuildTargetFeatures(img image.Image, cfg Config) *features.DescriptorSet {
	return features.Detect(imaging.Preprocess(img, 0), cfg.MaxFeatures)
}
