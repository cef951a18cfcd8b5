package imaging

import (
	"image"
	"image/color"
	"testing"

	"github.com/mvickers/pattern-scout/internal/geometry"
)

// twoToneImage returns a width x height image whose left half is dark
// and right half is light.
func twoToneImage(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if x < width/2 {
				img.Set(x, y, color.RGBA{20, 20, 20, 255})
			} else {
				img.Set(x, y, color.RGBA{240, 240, 240, 255})
			}
		}
	}
	return img
}

func TestCropBox(t *testing.T) {
	img := twoToneImage(100, 80)

	cropped, err := CropBox(img, geometry.Box{X1: 10, Y1: 10, X2: 40, Y2: 30})
	if err != nil {
		t.Fatalf("CropBox failed: %v", err)
	}
	if w := cropped.Bounds().Dx(); w != 30 {
		t.Errorf("width = %d, want 30", w)
	}
	if h := cropped.Bounds().Dy(); h != 20 {
		t.Errorf("height = %d, want 20", h)
	}

	// The region lies in the dark half.
	r, g, b, _ := cropped.At(cropped.Bounds().Min.X, cropped.Bounds().Min.Y).RGBA()
	if r>>8 != 20 || g>>8 != 20 || b>>8 != 20 {
		t.Errorf("cropped content = (%d,%d,%d), want (20,20,20)", r>>8, g>>8, b>>8)
	}
}

func TestCropBox_ClipsOverhang(t *testing.T) {
	img := twoToneImage(100, 80)

	cropped, err := CropBox(img, geometry.Box{X1: 80, Y1: 60, X2: 150, Y2: 120})
	if err != nil {
		t.Fatalf("CropBox failed: %v", err)
	}
	if w := cropped.Bounds().Dx(); w != 20 {
		t.Errorf("clipped width = %d, want 20", w)
	}
	if h := cropped.Bounds().Dy(); h != 20 {
		t.Errorf("clipped height = %d, want 20", h)
	}
}

func TestCropBox_OutsideBounds(t *testing.T) {
	img := twoToneImage(100, 80)

	if _, err := CropBox(img, geometry.Box{X1: 200, Y1: 200, X2: 300, Y2: 300}); err == nil {
		t.Error("expected an error for a region outside the image")
	}
	if _, err := CropBox(img, geometry.Box{X1: 30, Y1: 30, X2: 30, Y2: 50}); err == nil {
		t.Error("expected an error for a zero-width region")
	}
}

func TestRescale(t *testing.T) {
	img := twoToneImage(40, 20)

	tests := []struct {
		name      string
		scale     float64
		wantW     int
		wantH     int
		wantError bool
	}{
		{"double", 2.0, 80, 40, false},
		{"half", 0.5, 20, 10, false},
		{"identity", 1.0, 40, 20, false},
		{"zero", 0, 0, 0, true},
		{"negative", -1.5, 0, 0, true},
		{"collapses height", 0.01, 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Rescale(img, tt.scale)
			if tt.wantError {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Rescale failed: %v", err)
			}
			if out.Bounds().Dx() != tt.wantW || out.Bounds().Dy() != tt.wantH {
				t.Errorf("size = %dx%d, want %dx%d",
					out.Bounds().Dx(), out.Bounds().Dy(), tt.wantW, tt.wantH)
			}
		})
	}
}
