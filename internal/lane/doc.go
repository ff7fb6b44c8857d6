// Package lane classifies raw line segments into left and right lane
// candidates and aggregates each side into a single drawable lane line.
//
// This package holds the decision logic of the lane detector. Everything
// upstream (grayscale, blur, edge detection, ROI masking, Hough segments) and
// downstream (drawing) lives behind capabilities in other packages.
//
// # Coordinate System
//
// All coordinates use the image convention:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
//
// Because Y grows downward, a boundary that rises toward the right of the
// frame has a negative slope. See [Classify] for how this maps to sides.
//
// # Aggregation
//
// A side's lane line is the mean of the per-segment slopes and the mean of the
// per-segment intercepts, projected onto two fixed anchor heights. This is not
// a least-squares fit through the segment endpoints; it is simple and
// reproducible, and it is the defined algorithm.
//
// # Errors
//
// Classification never fails. Aggregation fails per side with an
// [*AggregationError] wrapping [ErrNoLinesDetected] or [ErrDegenerateLine],
// so callers can still draw the side that succeeded.
package lane
