// Package diagnostics summarizes and plots the segment buckets of a lane
// detection run. It is used when tuning thresholds or the ROI for a camera.
package diagnostics

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/ironsheep/lane-tools/internal/lane"
	"github.com/ironsheep/lane-tools/internal/pipeline"
)

// SideStats describes the spread of one bucket.
type SideStats struct {
	Side            lane.LaneSide `json:"side"`
	Segments        int           `json:"segments"`
	MeanSlope       float64       `json:"mean_slope"`
	SlopeStdDev     float64       `json:"slope_std_dev"`
	MeanIntercept   float64       `json:"mean_intercept"`
	InterceptStdDev float64       `json:"intercept_std_dev"`
}

// Summary is the bucket statistics of one frame.
type Summary struct {
	RunID    string    `json:"run_id"`
	Segments int       `json:"segments"`
	Left     SideStats `json:"left"`
	Right    SideStats `json:"right"`
}

// Summarize computes per-side statistics. Empty buckets report zeros, and
// the deviations of a single-segment bucket are zero.
func Summarize(res *pipeline.Result) Summary {
	return Summary{
		RunID:    res.RunID,
		Segments: len(res.Segments),
		Left:     sideStats(res.Left.Bucket, lane.Left),
		Right:    sideStats(res.Right.Bucket, lane.Right),
	}
}

func sideStats(b lane.LaneBucket, side lane.LaneSide) SideStats {
	s := SideStats{Side: side, Segments: b.Len()}
	if b.Len() == 0 {
		return s
	}

	slopes := make([]float64, b.Len())
	intercepts := make([]float64, b.Len())
	for i, l := range b.Lines {
		slopes[i] = l.Slope
		intercepts[i] = l.Intercept
	}
	if b.Len() == 1 {
		s.MeanSlope, s.MeanIntercept = slopes[0], intercepts[0]
		return s
	}
	s.MeanSlope, s.SlopeStdDev = stat.MeanStdDev(slopes, nil)
	s.MeanIntercept, s.InterceptStdDev = stat.MeanStdDev(intercepts, nil)
	return s
}

var sideColors = map[lane.LaneSide]color.Color{
	lane.Left:  color.RGBA{R: 31, G: 119, B: 180, A: 255},
	lane.Right: color.RGBA{R: 214, G: 39, B: 40, A: 255},
}

// BucketPlot scatters each classified segment in slope/intercept space, one
// series per side, with the bucket mean drawn as a larger cross.
func BucketPlot(res *pipeline.Result) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Lane buckets %dx%d", res.Width, res.Height)
	p.X.Label.Text = "Slope"
	p.Y.Label.Text = "Intercept (px)"
	p.Add(plotter.NewGrid())

	for _, side := range res.Sides() {
		b := side.Bucket
		if b.Len() == 0 {
			continue
		}

		pts := make(plotter.XYs, b.Len())
		for i, l := range b.Lines {
			pts[i] = plotter.XY{X: l.Slope, Y: l.Intercept}
		}
		scatter, err := plotter.NewScatter(pts)
		if err != nil {
			return nil, errors.Wrapf(err, "%s scatter", side.Side)
		}
		scatter.GlyphStyle.Color = sideColors[side.Side]
		scatter.GlyphStyle.Radius = vg.Points(2)
		scatter.GlyphStyle.Shape = draw.CircleGlyph{}
		p.Add(scatter)
		p.Legend.Add(fmt.Sprintf("%s (%d)", side.Side, b.Len()), scatter)

		mean, _ := lane.Mean(b)
		centre, err := plotter.NewScatter(plotter.XYs{{X: mean.Slope, Y: mean.Intercept}})
		if err != nil {
			return nil, errors.Wrapf(err, "%s mean", side.Side)
		}
		centre.GlyphStyle.Color = sideColors[side.Side]
		centre.GlyphStyle.Radius = vg.Points(6)
		centre.GlyphStyle.Shape = draw.CrossGlyph{}
		p.Add(centre)
	}

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10

	return p, nil
}

// SaveBucketPlot writes BucketPlot as dir/<name>_buckets.png and returns
// the path.
func SaveBucketPlot(res *pipeline.Result, dir, name string) (string, error) {
	p, err := BucketPlot(res)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrap(err, "create plot directory")
	}

	path := filepath.Join(dir, name+"_buckets.png")
	if err := p.Save(8*vg.Inch, 6*vg.Inch, path); err != nil {
		return "", errors.Wrap(err, "save bucket plot")
	}
	return path, nil
}
