package lane

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// slopeEpsilon is the magnitude below which an averaged slope is treated as
// zero.
const slopeEpsilon = 1e-9

// Anchors are the heights, as fractions of the image height, where an
// aggregated line is evaluated. They must agree with the ROI used upstream.
type Anchors struct {
	Bottom float64 `json:"bottom" yaml:"bottom"`
	Top    float64 `json:"top" yaml:"top"`
}

// DefaultAnchors evaluates lines at the bottom of the frame and at 70% of
// the height measured from the top.
var DefaultAnchors = Anchors{Bottom: 1.0, Top: 0.7}

// Heights converts the anchor fractions to pixel rows for an image of the
// given height, rounding half away from zero.
func (a Anchors) Heights(imageHeight int) (bottom, top int) {
	h := float64(imageHeight)
	return int(math.Round(h * a.Bottom)), int(math.Round(h * a.Top))
}

// Mean returns the per-field arithmetic mean of the bucket.
// ok is false for an empty bucket.
func Mean(b LaneBucket) (mean SlopeIntercept, ok bool) {
	if b.Len() == 0 {
		return SlopeIntercept{}, false
	}
	slopes := make([]float64, len(b.Lines))
	intercepts := make([]float64, len(b.Lines))
	for i, l := range b.Lines {
		slopes[i] = l.Slope
		intercepts[i] = l.Intercept
	}
	return SlopeIntercept{
		Slope:     stat.Mean(slopes, nil),
		Intercept: stat.Mean(intercepts, nil),
	}, true
}

// Aggregate reduces a bucket to one lane line at the default anchors.
func Aggregate(b LaneBucket, imageHeight int) (LaneLine, error) {
	return AggregateAt(b, imageHeight, DefaultAnchors)
}

// AggregateAt reduces a bucket to one lane line evaluated at anchors.
//
// The line's slope and intercept are the means of the bucket's slopes and
// intercepts. Coordinates are rounded half away from zero. Failures are
// returned as *AggregationError wrapping ErrNoLinesDetected,
// ErrDegenerateLine or ErrInvalidHeight.
func AggregateAt(b LaneBucket, imageHeight int, anchors Anchors) (LaneLine, error) {
	if imageHeight <= 0 {
		return LaneLine{}, &AggregationError{Side: b.Side, Err: ErrInvalidHeight}
	}

	avg, ok := Mean(b)
	if !ok {
		return LaneLine{}, &AggregationError{Side: b.Side, Err: ErrNoLinesDetected}
	}
	if math.Abs(avg.Slope) <= slopeEpsilon {
		return LaneLine{}, &AggregationError{Side: b.Side, Err: ErrDegenerateLine}
	}

	y1, y2 := anchors.Heights(imageHeight)
	return LaneLine{
		Side: b.Side,
		X1:   int(math.Round(avg.XAt(float64(y1)))),
		Y1:   y1,
		X2:   int(math.Round(avg.XAt(float64(y2)))),
		Y2:   y2,
	}, nil
}
