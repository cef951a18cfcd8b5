// Package imaging provides the image-handling layer of the localization
// pipeline.
//
// It covers loading and caching decoded images, cropping detection boxes,
// building scaled reference variants, preprocessing before feature
// detection, and summarizing a region by its dominant color. All
// operations work with standard Go image.Image types; resampling uses
// github.com/disintegration/imaging and preprocessing uses
// github.com/anthonynsimon/bild.
//
// # Coordinate System
//
// Coordinates are 0-based with the origin at the top-left corner, X
// increasing rightward and Y increasing downward, matching the rest of
// the pipeline.
//
// # Dominant Color
//
// DominantColor summarizes a cropped detection by k-means clustering in
// CIE-Lab space (github.com/lucasb-eyer/go-colorful), degrading to a
// plain mean for small or uniform regions. Given the same seeded random
// source it is fully deterministic.
package imaging
