package pipeline

import (
	"github.com/ironsheep/lane-tools/internal/lane"
)

// SideResult is the outcome of aggregating one side.
// Exactly one of Line and Err is set.
type SideResult struct {
	Side   lane.LaneSide   `json:"side"`
	Bucket lane.LaneBucket `json:"-"`
	Line   *lane.LaneLine  `json:"line,omitempty"`
	Err    error           `json:"-"`
}

// OK reports whether the side produced a lane line.
func (s SideResult) OK() bool {
	return s.Err == nil && s.Line != nil
}

// Result is the outcome of one frame.
type Result struct {
	RunID    string             `json:"run_id"`
	Width    int                `json:"width"`
	Height   int                `json:"height"`
	Segments []lane.LineSegment `json:"segments"`
	Left     SideResult         `json:"left"`
	Right    SideResult         `json:"right"`
}

// Sides returns the left and right results in that order.
func (r *Result) Sides() []SideResult {
	return []SideResult{r.Left, r.Right}
}

// Lines returns the lane lines of the sides that succeeded.
func (r *Result) Lines() []lane.LaneLine {
	lines := make([]lane.LaneLine, 0, 2)
	for _, s := range r.Sides() {
		if s.OK() {
			lines = append(lines, *s.Line)
		}
	}
	return lines
}

// FailedSides returns the sides that could not be aggregated.
func (r *Result) FailedSides() []lane.LaneSide {
	var failed []lane.LaneSide
	for _, s := range r.Sides() {
		if !s.OK() {
			failed = append(failed, s.Side)
		}
	}
	return failed
}

// Complete reports whether both sides produced a lane line.
func (r *Result) Complete() bool {
	return r.Left.OK() && r.Right.OK()
}
