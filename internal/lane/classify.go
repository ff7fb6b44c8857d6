package lane

import "math"

// DefaultSlopeThreshold is the minimum absolute slope of a segment to count
// as a lane marking. Flatter segments are shadows, crosswalks and similar
// clutter.
const DefaultSlopeThreshold = 0.3

// LeftWhenSlopeNegative records the side convention: with y growing downward,
// a boundary on the left of the frame rises toward the right and has a
// negative slope. This is a screen-space rule, not a guarantee about the
// physical road.
const LeftWhenSlopeNegative = true

// Fit returns the slope and intercept of the line through seg.
// ok is false for vertical segments, whose slope is undefined.
func Fit(seg LineSegment) (fit SlopeIntercept, ok bool) {
	if seg.Vertical() {
		return SlopeIntercept{}, false
	}
	slope := float64(seg.Y1-seg.Y2) / float64(seg.X1-seg.X2)
	return SlopeIntercept{
		Slope:     slope,
		Intercept: float64(seg.Y1) - float64(seg.X1)*slope,
	}, true
}

// SideOf returns the side a slope is assigned to.
func SideOf(slope float64) LaneSide {
	if (slope < 0) == LeftWhenSlopeNegative {
		return Left
	}
	return Right
}

// Classify buckets segments into left and right lane candidates.
//
// Vertical segments and segments with |slope| < slopeThreshold are dropped.
// The remaining segments go Left when their slope is negative and Right
// otherwise. Within each bucket the input order is preserved.
func Classify(segments []LineSegment, slopeThreshold float64) (left, right LaneBucket) {
	left = LaneBucket{Side: Left}
	right = LaneBucket{Side: Right}

	for _, seg := range segments {
		fit, ok := Fit(seg)
		if !ok {
			continue
		}
		if math.Abs(fit.Slope) < slopeThreshold {
			continue
		}
		if SideOf(fit.Slope) == Left {
			left.add(seg, fit)
		} else {
			right.add(seg, fit)
		}
	}

	return left, right
}
