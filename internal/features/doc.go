// Package features provides the built-in correspondence provider: corner
// detection, patch descriptors, and ratio-test matching.
//
// The output of this package is intentionally noisy. Matching makes no
// geometric claims; it only pairs descriptors that look alike. Turning
// those pairs into validated pattern instances is the job of the locate
// package, which runs robust estimation over the correspondence pool and
// tolerates the outliers this stage produces.
//
// # Pipeline
//
//  1. Detect keypoints and descriptors on the reference pattern (and its
//     scaled variants, merged back into base coordinates) and on the
//     target image
//  2. Match reference descriptors against target descriptors with the
//     Lowe ratio test and a match cap
//  3. Hand the resulting correspondences to the localization engine
//
// Any external provider (for example a gocv ORB pipeline) can replace
// this package by producing the same Match slice.
package features
