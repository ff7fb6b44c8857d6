// Package detection extracts straight line segments from binary edge maps.
//
// The lane detector feeds it the masked Canny output and consumes the
// segments it returns. Detection uses the progressive probabilistic Hough
// transform (see [HoughSegments]), which yields finite segments with
// endpoints instead of infinite (rho, theta) lines.
//
// # Coordinate System
//
// All coordinates use the standard image convention:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
//
// # Reproducibility
//
// The transform visits edge pixels in a random order. The order is drawn from
// a generator seeded by [HoughParams.Seed], so identical input and parameters
// always produce identical segments, in the same order.
//
// # Performance Considerations
//
// Every edge pixel votes once per accumulator angle, so cost grows with
// (edge pixels x angles). Masking the edge map to the road region first keeps
// the pixel count, and the run time, small.
package detection
