package imaging

import (
	"image"
	"math"
	"math/rand"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// RGBColor represents an RGB color with 8-bit components.
//
// Each component ranges from 0 to 255.
type RGBColor struct {
	R uint8 `json:"r"` // Red component (0-255)
	G uint8 `json:"g"` // Green component (0-255)
	B uint8 `json:"b"` // Blue component (0-255)
}

const (
	// dominantSampleTrigger is the sample count above which clustering is
	// used instead of a plain mean.
	dominantSampleTrigger = 100

	// dominantSampleCap bounds the number of samples fed to clustering.
	dominantSampleCap = 1000

	dominantClusters   = 3
	dominantIterations = 50
)

// DominantColor computes a single representative color for a cropped
// region.
//
// Grayscale inputs return the mean gray level replicated across all three
// channels. Color inputs are flattened to a sample list; when more than
// 100 samples exist, a bounded random subset (cap 1000) is clustered into
// three groups by k-means in CIE-Lab space, and the centroid of the
// largest cluster wins. Small inputs and failed clustering degrade to the
// arithmetic mean of all samples, so the function always returns a valid
// color and never fails.
//
// Parameters:
//   - img: The cropped region to summarize. Must be non-nil.
//   - rng: Random source for sampling and centroid seeding. Passing the
//     same seeded source yields identical results run to run.
func DominantColor(img image.Image, rng *rand.Rand) RGBColor {
	switch img.(type) {
	case *image.Gray, *image.Gray16:
		return grayMean(img)
	}

	samples := collectSamples(img)
	if len(samples) == 0 {
		return RGBColor{}
	}
	if len(samples) <= dominantSampleTrigger {
		return meanColor(samples)
	}

	subset := samples
	if len(samples) > dominantSampleCap {
		subset = make([]colorful.Color, dominantSampleCap)
		for i, j := range rng.Perm(len(samples))[:dominantSampleCap] {
			subset[i] = samples[j]
		}
	}

	if c, ok := dominantCluster(subset, rng); ok {
		return c
	}
	return meanColor(samples)
}

// collectSamples flattens an image into a list of color samples.
func collectSamples(img image.Image) []colorful.Color {
	bounds := img.Bounds()
	samples := make([]colorful.Color, 0, bounds.Dx()*bounds.Dy())
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			samples = append(samples, colorful.Color{
				R: float64(r>>8) / 255.0,
				G: float64(g>>8) / 255.0,
				B: float64(b>>8) / 255.0,
			})
		}
	}
	return samples
}

// dominantCluster runs a fixed-k k-means over the samples in Lab space and
// returns the centroid of the most populous cluster.
//
// Clustering fails (second result false) when fewer than three distinct
// samples exist to seed the centroids; callers fall back to the mean.
func dominantCluster(samples []colorful.Color, rng *rand.Rand) (RGBColor, bool) {
	type lab struct{ l, a, b float64 }

	pts := make([]lab, len(samples))
	for i, s := range samples {
		l, a, b := s.Lab()
		pts[i] = lab{l, a, b}
	}

	// Seed centroids from distinct samples; bail if the region is too
	// uniform to produce three seeds.
	centroids := make([]lab, 0, dominantClusters)
	for _, idx := range rng.Perm(len(pts)) {
		cand := pts[idx]
		distinct := true
		for _, c := range centroids {
			if c == cand {
				distinct = false
				break
			}
		}
		if distinct {
			centroids = append(centroids, cand)
			if len(centroids) == dominantClusters {
				break
			}
		}
	}
	if len(centroids) < dominantClusters {
		return RGBColor{}, false
	}

	assign := make([]int, len(pts))
	for iter := 0; iter < dominantIterations; iter++ {
		changed := false
		for i, p := range pts {
			best, bestDist := 0, math.MaxFloat64
			for k, c := range centroids {
				dl, da, db := p.l-c.l, p.a-c.a, p.b-c.b
				d := dl*dl + da*da + db*db
				if d < bestDist {
					best, bestDist = k, d
				}
			}
			if assign[i] != best {
				assign[i] = best
				changed = true
			}
		}
		if iter > 0 && !changed {
			break
		}

		var sums [dominantClusters]lab
		var counts [dominantClusters]int
		for i, p := range pts {
			k := assign[i]
			sums[k].l += p.l
			sums[k].a += p.a
			sums[k].b += p.b
			counts[k]++
		}
		for k := range centroids {
			if counts[k] == 0 {
				continue
			}
			n := float64(counts[k])
			centroids[k] = lab{sums[k].l / n, sums[k].a / n, sums[k].b / n}
		}
	}

	var counts [dominantClusters]int
	for _, k := range assign {
		counts[k]++
	}
	best := 0
	for k := 1; k < dominantClusters; k++ {
		if counts[k] > counts[best] {
			best = k
		}
	}

	c := colorful.Lab(centroids[best].l, centroids[best].a, centroids[best].b).Clamped()
	r, g, b := c.RGB255()
	return RGBColor{R: r, G: g, B: b}, true
}

// meanColor returns the arithmetic mean of the samples, rounded and
// clamped per channel.
func meanColor(samples []colorful.Color) RGBColor {
	var r, g, b float64
	for _, s := range samples {
		r += s.R
		g += s.G
		b += s.B
	}
	n := float64(len(samples))
	return RGBColor{
		R: clampChannel(r / n * 255.0),
		G: clampChannel(g / n * 255.0),
		B: clampChannel(b / n * 255.0),
	}
}

// grayMean computes the mean gray level and replicates it across channels.
func grayMean(img image.Image) RGBColor {
	bounds := img.Bounds()
	var sum float64
	var n int
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, _, _, _ := img.At(x, y).RGBA()
			sum += float64(r >> 8)
			n++
		}
	}
	if n == 0 {
		return RGBColor{}
	}
	v := clampChannel(sum / float64(n))
	return RGBColor{R: v, G: v, B: v}
}

func clampChannel(v float64) uint8 {
	v = math.Round(v)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
