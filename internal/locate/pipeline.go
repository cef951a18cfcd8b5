package locate

import (
	"image"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/mvickers/pattern-scout/internal/estimate"
	"github.com/mvickers/pattern-scout/internal/features"
	"github.com/mvickers/pattern-scout/internal/geometry"
	"github.com/mvickers/pattern-scout/internal/mask"
)

// Pipeline wires the correspondence provider, transform estimator, and
// localization core into a full detection run.
type Pipeline struct {
	Config    Config
	Matcher   Matcher
	Estimator estimate.Estimator
	Logger    *slog.Logger
}

// New builds a pipeline around the built-in ratio matcher and pure-Go
// RANSAC estimator. A nil logger falls back to slog.Default.
func New(cfg Config, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		Config: cfg,
		Matcher: features.RatioMatcher{
			Ratio:      cfg.MatchRatio,
			MaxMatches: cfg.MaxMatches,
		},
		Estimator: estimate.RANSAC{
			Seed:       cfg.Seed,
			MinInliers: 4,
		},
		Logger: logger,
	}
}

// Run locates every reference pattern in the target image and returns the
// final grouped detection set.
//
// Patterns are processed independently, sharing only the read-only target
// features and exclusion mask, so extraction runs on a bounded worker
// pool when Config.Workers > 1. Per-pattern failures (no correspondences,
// estimator giving up) narrow that pattern's scope only; the run always
// terminates with a valid, possibly empty, DetectionSet.
func (p *Pipeline) Run(target image.Image, targetFeatures *features.DescriptorSet, patterns []*ReferencePattern, exclusions []mask.Region) *DetectionSet {
	log := p.Logger
	if log == nil {
		log = slog.Default()
	}
	log = log.With("run_id", uuid.NewString())

	bounds := target.Bounds()
	excl := mask.Build(bounds.Dx(), bounds.Dy(), exclusions, p.Config.ExclusionPadding)

	extractor := &Extractor{
		Config:    p.Config,
		Estimator: p.Estimator,
		Validator: Validator{
			MinDim:             p.Config.MinBoxDim,
			MaxDimFactor:       p.Config.MaxBoxFactor,
			ExclusionThreshold: p.Config.ExclusionOverlapThreshold,
		},
		Logger: log,
	}

	// Candidates are collected per pattern index; the flattened union is
	// deterministic regardless of worker scheduling.
	perPattern := make([][]Candidate, len(patterns))

	workers := p.Config.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(patterns) {
		workers = len(patterns)
	}

	var wg sync.WaitGroup
	jobs := make(chan int)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				perPattern[i] = p.extractPattern(extractor, target, targetFeatures, patterns[i], excl, log)
			}
		}()
	}
	for i := range patterns {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	var pooled []Candidate
	for _, cands := range perPattern {
		pooled = append(pooled, cands...)
	}

	accepted := Suppress(pooled, p.Config.NMSOverlapThreshold)
	log.Debug("suppression summary",
		"candidates", len(pooled),
		"kept", len(accepted),
		"suppressed", len(pooled)-len(accepted))

	order := make([]string, len(patterns))
	for i, pat := range patterns {
		order[i] = pat.Name
	}
	return Assemble(order, accepted)
}

// extractPattern runs matching and extraction for a single pattern.
func (p *Pipeline) extractPattern(extractor *Extractor, target image.Image, targetFeatures *features.DescriptorSet, pat *ReferencePattern, excl *mask.Mask, log *slog.Logger) []Candidate {
	matches := p.Matcher.Match(pat.Descriptors, targetFeatures)
	if len(matches) < p.Config.MinMatchedFeatures {
		log.Debug("pattern skipped",
			"pattern", pat.Name,
			"matches", len(matches),
			"required", p.Config.MinMatchedFeatures)
		return nil
	}

	corrs := make([]Correspondence, len(matches))
	for i, m := range matches {
		rkp := pat.Descriptors.Keypoints[m.RefIndex]
		tkp := targetFeatures.Keypoints[m.TargetIndex]
		corrs[i] = Correspondence{
			Ref:    geometry.Point{X: rkp.X, Y: rkp.Y},
			Target: geometry.Point{X: tkp.X, Y: tkp.Y},
		}
	}
	return extractor.Extract(target, pat, corrs, excl)
}
