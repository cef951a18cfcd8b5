package imaging

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	"github.com/mvickers/pattern-scout/internal/geometry"
)

// CropBox extracts the region covered by a bounding box from an image.
//
// The box is clipped to the image bounds first. An error is returned only
// when the clipped region is empty, since there is nothing to crop.
func CropBox(img image.Image, box geometry.Box) (image.Image, error) {
	bounds := img.Bounds()
	clipped := box.Clip(bounds.Dx(), bounds.Dy())
	if clipped.Empty() {
		return nil, fmt.Errorf("crop region %+v is outside image bounds %dx%d",
			box, bounds.Dx(), bounds.Dy())
	}

	rect := image.Rect(
		clipped.X1+bounds.Min.X,
		clipped.Y1+bounds.Min.Y,
		clipped.X2+bounds.Min.X,
		clipped.Y2+bounds.Min.Y,
	)
	return imaging.Crop(img, rect), nil
}

// Rescale resizes an image by a uniform scale factor using Lanczos
// resampling. Factors that would collapse a dimension to zero are
// rejected.
func Rescale(img image.Image, scale float64) (image.Image, error) {
	if scale <= 0 {
		return nil, fmt.Errorf("invalid scale factor %g", scale)
	}
	w := int(float64(img.Bounds().Dx()) * scale)
	h := int(float64(img.Bounds().Dy()) * scale)
	if w < 1 || h < 1 {
		return nil, fmt.Errorf("scale %g collapses image to %dx%d", scale, w, h)
	}
	return imaging.Resize(img, w, h, imaging.Lanczos), nil
}
