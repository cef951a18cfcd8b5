// Package config loads runtime configuration for pattern-scout.
//
// Configuration is layered: built-in defaults, then an optional YAML file,
// then PATTERN_SCOUT_* environment variables. Keys use dotted sections,
// e.g. "matching.ratio" or PATTERN_SCOUT_MATCHING_RATIO.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/mvickers/pattern-scout/internal/estimate"
	"github.com/mvickers/pattern-scout/internal/locate"
)

// Config is the full runtime configuration.
type Config struct {
	// Locate holds the localization pipeline parameters.
	Locate locate.Config

	// ReferenceDir is the directory of reference pattern images.
	ReferenceDir string

	// OCR controls the text exclusion source.
	OCR OCRConfig

	// Logging controls log output.
	Logging LoggingConfig
}

// OCRConfig controls text-based exclusion building.
type OCRConfig struct {
	// Enabled turns the Tesseract exclusion source on. When off, the
	// edge-density heuristic is used instead.
	Enabled bool

	// Language is the Tesseract language code.
	Language string

	// MinConfidence drops recognized words below this confidence (0-1).
	MinConfidence float64

	// NameSimilarity is the fuzzy match threshold against pattern names.
	NameSimilarity float64
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string

	// Format is "console" or "json".
	Format string
}

// Load reads configuration from the optional file at path, applying
// defaults and PATTERN_SCOUT_* environment overrides. A missing file is
// not an error when path is empty.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("pattern-scout")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("PATTERN_SCOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && path != "" {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := fromViper(v)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := locate.DefaultConfig()

	v.SetDefault("reference_dir", "references")

	v.SetDefault("matching.min_matched_features", d.MinMatchedFeatures)
	v.SetDefault("matching.ratio", d.MatchRatio)
	v.SetDefault("matching.max_matches", d.MaxMatches)
	v.SetDefault("matching.max_features", d.MaxFeatures)
	v.SetDefault("matching.scales", d.Scales)

	v.SetDefault("ransac.threshold", d.RANSAC.Threshold)
	v.SetDefault("ransac.confidence", d.RANSAC.Confidence)
	v.SetDefault("ransac.max_iterations", d.RANSAC.MaxIterations)
	v.SetDefault("ransac.min_inlier_ratio", d.MinInlierRatio)

	v.SetDefault("extraction.max_instances_per_reference", d.MaxInstancesPerReference)
	v.SetDefault("extraction.nms_overlap_threshold", d.NMSOverlapThreshold)
	v.SetDefault("extraction.min_box_dim", d.MinBoxDim)
	v.SetDefault("extraction.max_box_factor", d.MaxBoxFactor)
	v.SetDefault("extraction.workers", d.Workers)
	v.SetDefault("extraction.seed", d.Seed)

	v.SetDefault("exclusions.padding", d.ExclusionPadding)
	v.SetDefault("exclusions.overlap_threshold", d.ExclusionOverlapThreshold)

	v.SetDefault("ocr.enabled", false)
	v.SetDefault("ocr.language", "eng")
	v.SetDefault("ocr.min_confidence", 0.6)
	v.SetDefault("ocr.name_similarity", 0.7)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		ReferenceDir: v.GetString("reference_dir"),
		Locate: locate.Config{
			MinMatchedFeatures: v.GetInt("matching.min_matched_features"),
			MatchRatio:         v.GetFloat64("matching.ratio"),
			MaxMatches:         v.GetInt("matching.max_matches"),
			MaxFeatures:        v.GetInt("matching.max_features"),
			Scales:             floats(v, "matching.scales"),
			RANSAC: estimate.Params{
				Threshold:     v.GetFloat64("ransac.threshold"),
				Confidence:    v.GetFloat64("ransac.confidence"),
				MaxIterations: v.GetInt("ransac.max_iterations"),
			},
			MinInlierRatio:            v.GetFloat64("ransac.min_inlier_ratio"),
			MaxInstancesPerReference:  v.GetInt("extraction.max_instances_per_reference"),
			NMSOverlapThreshold:       v.GetFloat64("extraction.nms_overlap_threshold"),
			MinBoxDim:                 v.GetInt("extraction.min_box_dim"),
			MaxBoxFactor:              v.GetFloat64("extraction.max_box_factor"),
			Workers:                   v.GetInt("extraction.workers"),
			Seed:                      v.GetInt64("extraction.seed"),
			ExclusionPadding:          v.GetInt("exclusions.padding"),
			ExclusionOverlapThreshold: v.GetFloat64("exclusions.overlap_threshold"),
		},
		OCR: OCRConfig{
			Enabled:        v.GetBool("ocr.enabled"),
			Language:       v.GetString("ocr.language"),
			MinConfidence:  v.GetFloat64("ocr.min_confidence"),
			NameSimilarity: v.GetFloat64("ocr.name_similarity"),
		},
		Logging: LoggingConfig{
			Level:  v.GetString("logging.level"),
			Format: v.GetString("logging.format"),
		},
	}
}

// floats reads a key as []float64 regardless of whether the source stored
// strings (env) or numbers (yaml).
func floats(v *viper.Viper, key string) []float64 {
	raw := v.GetStringSlice(key)
	if len(raw) == 0 {
		return nil
	}
	out := make([]float64, 0, len(raw))
	for _, s := range raw {
		var f float64
		if _, err := fmt.Sscanf(s, "%g", &f); err == nil {
			out = append(out, f)
		}
	}
	return out
}

// Validate checks ranges that would otherwise fail deep inside the
// pipeline with a confusing symptom.
func (c *Config) Validate() error {
	l := c.Locate
	if l.MinMatchedFeatures < 4 {
		return fmt.Errorf("matching.min_matched_features must be >= 4, got %d", l.MinMatchedFeatures)
	}
	if l.MatchRatio <= 0 || l.MatchRatio >= 1 {
		return fmt.Errorf("matching.ratio must be in (0, 1), got %g", l.MatchRatio)
	}
	if l.RANSAC.Threshold <= 0 {
		return fmt.Errorf("ransac.threshold must be positive, got %g", l.RANSAC.Threshold)
	}
	if l.RANSAC.Confidence <= 0 || l.RANSAC.Confidence >= 1 {
		return fmt.Errorf("ransac.confidence must be in (0, 1), got %g", l.RANSAC.Confidence)
	}
	if l.MinInlierRatio < 0 || l.MinInlierRatio > 1 {
		return fmt.Errorf("ransac.min_inlier_ratio must be in [0, 1], got %g", l.MinInlierRatio)
	}
	if l.MaxInstancesPerReference < 1 {
		return fmt.Errorf("extraction.max_instances_per_reference must be >= 1, got %d", l.MaxInstancesPerReference)
	}
	if l.NMSOverlapThreshold <= 0 || l.NMSOverlapThreshold > 1 {
		return fmt.Errorf("extraction.nms_overlap_threshold must be in (0, 1], got %g", l.NMSOverlapThreshold)
	}
	if l.MinBoxDim < 1 {
		return fmt.Errorf("extraction.min_box_dim must be >= 1, got %d", l.MinBoxDim)
	}
	if l.MaxBoxFactor <= 0 {
		return fmt.Errorf("extraction.max_box_factor must be positive, got %g", l.MaxBoxFactor)
	}
	if c.OCR.MinConfidence < 0 || c.OCR.MinConfidence > 1 {
		return fmt.Errorf("ocr.min_confidence must be in [0, 1], got %g", c.OCR.MinConfidence)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %q", c.Logging.Level)
	}
	return nil
}
