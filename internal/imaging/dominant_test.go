package imaging

import (
	"image"
	"image/color"
	"math/rand"
	"testing"
)

// solidImage returns a width x height RGBA image filled with one color.
func solidImage(width, height int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// tricolorImage fills 60% of the rows with primary, then 20% each with
// two other colors.
func tricolorImage(width, height int, primary, second, third color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		var c color.Color
		switch {
		case y < height*6/10:
			c = primary
		case y < height*8/10:
			c = second
		default:
			c = third
		}
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func testRNG() *rand.Rand {
	return rand.New(rand.NewSource(1))
}

func TestDominantColor_UniformLarge(t *testing.T) {
	// Too uniform to cluster; falls back to the mean, which is exact.
	img := solidImage(50, 50, color.RGBA{255, 0, 0, 255})
	got := DominantColor(img, testRNG())
	want := RGBColor{R: 255, G: 0, B: 0}
	if got != want {
		t.Errorf("DominantColor = %+v, want %+v", got, want)
	}
}

func TestDominantColor_SmallRegionUsesMean(t *testing.T) {
	img := solidImage(5, 5, color.RGBA{0, 0, 255, 255})
	got := DominantColor(img, testRNG())
	want := RGBColor{R: 0, G: 0, B: 255}
	if got != want {
		t.Errorf("DominantColor = %+v, want %+v", got, want)
	}
}

func TestDominantColor_GrayImageReturnsGrayMean(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 20, 20))
	for y := 0; y < 20; y++ {
		for x := 0; x < 20; x++ {
			img.SetGray(x, y, color.Gray{Y: 128})
		}
	}
	got := DominantColor(img, testRNG())
	want := RGBColor{R: 128, G: 128, B: 128}
	if got != want {
		t.Errorf("DominantColor = %+v, want %+v", got, want)
	}
}

func TestDominantColor_PicksLargestCluster(t *testing.T) {
	img := tricolorImage(40, 40,
		color.RGBA{200, 30, 30, 255},
		color.RGBA{30, 200, 30, 255},
		color.RGBA{30, 30, 200, 255})

	got := DominantColor(img, testRNG())

	// The majority color wins; allow rounding drift from the Lab
	// round-trip.
	if !near(got.R, 200, 2) || !near(got.G, 30, 2) || !near(got.B, 30, 2) {
		t.Errorf("DominantColor = %+v, want ~{200 30 30}", got)
	}
}

func TestDominantColor_Deterministic(t *testing.T) {
	img := tricolorImage(40, 40,
		color.RGBA{200, 30, 30, 255},
		color.RGBA{30, 200, 30, 255},
		color.RGBA{30, 30, 200, 255})

	first := DominantColor(img, rand.New(rand.NewSource(7)))
	second := DominantColor(img, rand.New(rand.NewSource(7)))
	if first != second {
		t.Errorf("same seed produced %+v and %+v", first, second)
	}
}

func TestDominantColor_EmptyImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 0, 0))
	if got := DominantColor(img, testRNG()); got != (RGBColor{}) {
		t.Errorf("DominantColor on empty image = %+v, want zero", got)
	}
}

func near(got uint8, want, tolerance int) bool {
	d := int(got) - want
	if d < 0 {
		d = -d
	}
	return d <= tolerance
}
