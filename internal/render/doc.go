// Package render draws detected lane lines over the original frame and
// writes the result.
//
// Lines are rasterized as anti-aliased quadrilaterals with
// golang.org/x/image/vector, so any thickness renders without gaps at steep
// angles. Images are copied before drawing; inputs are never modified.
package render
