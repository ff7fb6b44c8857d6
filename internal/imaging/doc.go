// Package imaging provides the pure-Go image operations of the lane detector:
// loading, grayscale smoothing, Canny edge extraction and region-of-interest
// masking.
//
// All operations work with standard Go image.Image types and use a coordinate
// system where (0,0) is at the top-left corner, X increases rightward, and Y
// increases downward.
//
// # Pipeline Stages
//
// [Ops] bundles the stages consumed by the lane pipeline:
//
//  1. Blur: grayscale conversion (weighted luma) followed by a Gaussian
//     kernel convolution
//  2. DetectEdges: Canny edge detection producing a binary *image.Gray
//  3. MaskRegion: zero every edge pixel outside a polygon
//  4. DetectLineSegments: probabilistic Hough transform (see package detection)
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. Ops holds only immutable
// parameters, so one Ops value can serve many frames concurrently.
//
// # Error Handling
//
// Functions return errors for invalid inputs such as:
//   - Images with an empty bounds rectangle (ErrEmptyImage)
//   - Polygons with fewer than three vertices (ErrInvalidPolygon)
//   - File I/O errors during image loading
package imaging
