// Package locate implements the multi-instance localization engine: it
// turns an unordered, noisy set of point correspondences between a
// reference pattern and a target image into a validated, non-overlapping
// set of geometric instances with confidence scores and color summaries.
//
// # Pipeline
//
// For each reference pattern the Extractor repeatedly asks the estimator
// for a robust projective fit over the unconsumed correspondence pool,
// projects the pattern corners through the fit, validates the resulting
// box against the image bounds and the exclusion mask, and summarizes the
// region's dominant color. Inlier correspondences are marked consumed on
// both the accept and the reject path, which bounds the loop and
// guarantees termination. Candidates from all patterns are pooled and
// passed once through global non-maximum suppression, then grouped by
// pattern into the final DetectionSet.
//
// # Termination
//
// A pattern's extraction loop runs at most min(MaxInstancesPerReference,
// N/MinMatchedFeatures) accept/reject cycles for a pool of size N: each
// cycle either consumes at least MinMatchedFeatures correspondences or
// stops the loop.
//
// # Concurrency
//
// Patterns are independent. Pipeline.Run extracts them on a bounded
// worker pool; the only shared state is the read-only target descriptor
// set and exclusion mask, both immutable before extraction begins. Within
// a single pattern the loop is strictly sequential, since each
// iteration's consumption decision depends on the previous one.
//
// # Failure Policy
//
// Failures never abort a run. A failed estimator narrows scope to the
// current pattern, an invalid candidate narrows scope to that candidate,
// and an empty correspondence input yields an empty DetectionSet. No
// error values cross this package's public entry points.
package locate
