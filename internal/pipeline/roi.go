package pipeline

import (
	"image"
	"math"
)

// Units selects how ROI vertex coordinates are interpreted.
type Units string

const (
	// UnitsFraction scales X by the frame width and Y by the frame height.
	UnitsFraction Units = "fraction"
	// UnitsPixel uses coordinates as absolute pixels.
	UnitsPixel Units = "pixel"
)

// Vertex is one ROI polygon corner.
type Vertex struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// ROI is the road region the edge map is masked to before line detection.
type ROI struct {
	Units    Units    `json:"units" yaml:"units"`
	Vertices []Vertex `json:"vertices" yaml:"vertices"`
}

// DefaultROI is a trapezoid anchored to both bottom corners of the frame and
// narrowing to an apex band at 60% of the height.
func DefaultROI() ROI {
	return ROI{
		Units: UnitsFraction,
		Vertices: []Vertex{
			{X: 0, Y: 1},
			{X: 0.45, Y: 0.6},
			{X: 0.55, Y: 0.6},
			{X: 1, Y: 1},
		},
	}
}

// Polygon resolves the ROI to pixel vertices for a width x height frame.
func (r ROI) Polygon(width, height int) []image.Point {
	points := make([]image.Point, len(r.Vertices))
	for i, v := range r.Vertices {
		x, y := v.X, v.Y
		if r.Units != UnitsPixel {
			x *= float64(width)
			y *= float64(height)
		}
		points[i] = image.Point{X: int(math.Round(x)), Y: int(math.Round(y))}
	}
	return points
}
