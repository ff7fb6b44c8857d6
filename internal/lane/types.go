package lane

import "fmt"

// LineSegment is a straight segment in pixel coordinates as produced by a
// line detector.
type LineSegment struct {
	X1 int `json:"x1" yaml:"x1"`
	Y1 int `json:"y1" yaml:"y1"`
	X2 int `json:"x2" yaml:"x2"`
	Y2 int `json:"y2" yaml:"y2"`
}

// Seg is shorthand for building a LineSegment.
func Seg(x1, y1, x2, y2 int) LineSegment {
	return LineSegment{X1: x1, Y1: y1, X2: x2, Y2: y2}
}

// Vertical reports whether the segment has no horizontal extent.
func (s LineSegment) Vertical() bool {
	return s.X1 == s.X2
}

func (s LineSegment) String() string {
	return fmt.Sprintf("(%d,%d)-(%d,%d)", s.X1, s.Y1, s.X2, s.Y2)
}

// SlopeIntercept describes the line y = Slope*x + Intercept.
type SlopeIntercept struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
}

// XAt returns the x coordinate where the line crosses height y.
// The caller must ensure Slope is non-zero.
func (si SlopeIntercept) XAt(y float64) float64 {
	return (y - si.Intercept) / si.Slope
}

// LaneSide identifies which lane boundary a segment or line belongs to.
type LaneSide int

const (
	Left LaneSide = iota
	Right
)

func (s LaneSide) String() string {
	switch s {
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return fmt.Sprintf("LaneSide(%d)", int(s))
	}
}

// MarshalText encodes the side as "left" or "right".
func (s LaneSide) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses "left" or "right".
func (s *LaneSide) UnmarshalText(text []byte) error {
	switch string(text) {
	case "left":
		*s = Left
	case "right":
		*s = Right
	default:
		return fmt.Errorf("unknown lane side %q", text)
	}
	return nil
}

// LaneBucket collects the fits of all segments assigned to one side.
// Lines[i] is the fit of Segments[i], in input order.
type LaneBucket struct {
	Side     LaneSide         `json:"side"`
	Lines    []SlopeIntercept `json:"lines"`
	Segments []LineSegment    `json:"segments"`
}

// Len returns the number of segments in the bucket.
func (b LaneBucket) Len() int {
	return len(b.Lines)
}

func (b *LaneBucket) add(seg LineSegment, fit SlopeIntercept) {
	b.Lines = append(b.Lines, fit)
	b.Segments = append(b.Segments, seg)
}

// LaneLine is the aggregated boundary for one side, anchored at two fixed
// heights. (X1, Y1) is the bottom anchor and (X2, Y2) the upper one.
type LaneLine struct {
	Side LaneSide `json:"side"`
	X1   int      `json:"x1"`
	Y1   int      `json:"y1"`
	X2   int      `json:"x2"`
	Y2   int      `json:"y2"`
}

// Segment returns the line's endpoints as a LineSegment.
func (l LaneLine) Segment() LineSegment {
	return LineSegment{X1: l.X1, Y1: l.Y1, X2: l.X2, Y2: l.Y2}
}
