package ocr

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/otiai10/gosseract/v2"

	"github.com/mvickers/pattern-scout/internal/mask"
)

// TextExclusionSource produces exclusion regions from recognized text.
//
// Text that names a known reference pattern has already been confirmed by
// the recognizer, so feature-based localization must not claim the same
// pixels again. The source runs Tesseract at word level, keeps confident
// words, and optionally filters them by fuzzy similarity to the known
// pattern names.
type TextExclusionSource struct {
	// Language is the Tesseract language code, e.g. "eng".
	Language string

	// MinConfidence drops words below this recognition confidence (0-1).
	MinConfidence float64

	// PatternNames, when non-empty, restricts exclusions to words whose
	// normalized similarity to one of these names reaches NameSimilarity.
	// Empty means every confident word becomes an exclusion.
	PatternNames []string

	// NameSimilarity is the normalized Levenshtein similarity threshold
	// in (0, 1] used with PatternNames. Typical: 0.7.
	NameSimilarity float64
}

// Exclusions recognizes text in the image at path and returns the regions
// to exclude from pattern localization.
func (s TextExclusionSource) Exclusions(path string) ([]mask.Region, error) {
	client := gosseract.NewClient()
	defer client.Close()

	lang := s.Language
	if lang == "" {
		lang = "eng"
	}
	if err := client.SetLanguage(lang); err != nil {
		return nil, fmt.Errorf("failed to set language: %w", err)
	}
	if err := client.SetImage(path); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("failed to get word boxes: %w", err)
	}

	regions := make([]mask.Region, 0, len(boxes))
	for _, box := range boxes {
		if box.Word == "" {
			continue
		}
		if float64(box.Confidence)/100.0 < s.MinConfidence {
			continue
		}
		if !s.matchesKnownName(box.Word) {
			continue
		}
		regions = append(regions, mask.Region{
			X:      box.Box.Min.X,
			Y:      box.Box.Min.Y,
			Width:  box.Box.Dx(),
			Height: box.Box.Dy(),
		})
	}
	return regions, nil
}

// matchesKnownName reports whether a recognized word is close enough to
// any known pattern name. An empty name list accepts every word.
func (s TextExclusionSource) matchesKnownName(word string) bool {
	if len(s.PatternNames) == 0 {
		return true
	}
	w := normalizeWord(word)
	if w == "" {
		return false
	}
	for _, name := range s.PatternNames {
		if similarity(w, normalizeWord(name)) >= s.NameSimilarity {
			return true
		}
	}
	return false
}

// normalizeWord lowercases and strips non-alphanumeric runes so that OCR
// punctuation noise does not defeat the comparison.
func normalizeWord(w string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(w) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// similarity returns 1 - normalized Levenshtein distance, in [0, 1].
func similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	d := levenshtein(a, b)
	longer := len(a)
	if len(b) > longer {
		longer = len(b)
	}
	return 1 - float64(d)/float64(longer)
}

// levenshtein computes edit distance with a rolling single-row table.
func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	row := make([]int, len(rb)+1)
	for j := range row {
		row[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		prev := row[0]
		row[0] = i
		for j := 1; j <= len(rb); j++ {
			cur := row[j]
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			row[j] = minOf(row[j]+1, row[j-1]+1, prev+cost)
			prev = cur
		}
	}
	return row[len(rb)]
}

func minOf(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
