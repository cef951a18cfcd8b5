// Package ocr builds text-based exclusion regions for pattern localization.
//
// Text in a scene that names a reference pattern is evidence the detector
// should not re-use: a candidate box sitting on such text is usually a
// label, not the pattern itself. This package produces the regions to
// exclude.
//
// # Sources
//
// Two exclusion sources are provided:
//
//   - TextExclusionSource runs Tesseract (via gosseract/v2) at word level,
//     keeps confident words, and can restrict them by fuzzy similarity to
//     the known pattern names.
//   - HeuristicTextRegions estimates likely text areas from edge density
//     and horizontal run structure without any OCR engine. It is coarser
//     but has no external dependency.
//
// # Prerequisites
//
// TextExclusionSource requires Tesseract on the system:
//   - Ubuntu/Debian: apt-get install tesseract-ocr tesseract-ocr-eng
//   - macOS: brew install tesseract
//
// The default language is English ("eng"); any Tesseract language code
// may be configured. HeuristicTextRegions has no prerequisites and is the
// fallback when Tesseract is unavailable.
package ocr
