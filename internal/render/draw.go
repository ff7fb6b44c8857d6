package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/disintegration/imaging"
	"golang.org/x/image/vector"

	"github.com/ironsheep/lane-tools/internal/lane"
)

// Overlay returns a copy of img with each lane line drawn in style.
func Overlay(img image.Image, lines []lane.LaneLine, style Style) *image.NRGBA {
	out := imaging.Clone(img)
	for _, l := range lines {
		DrawSegment(out, l.Segment(), style)
	}
	return out
}

// DrawSegment draws seg onto dst as a thick anti-aliased stroke with flat
// caps. Segment coordinates are relative to dst's origin.
func DrawSegment(dst draw.Image, seg lane.LineSegment, style Style) {
	bounds := dst.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width == 0 || height == 0 {
		return
	}

	thickness := float64(style.Thickness)
	if thickness < 1 {
		thickness = 1
	}

	x1, y1 := float64(seg.X1)+0.5, float64(seg.Y1)+0.5
	x2, y2 := float64(seg.X2)+0.5, float64(seg.Y2)+0.5
	dx, dy := x2-x1, y2-y1
	length := math.Hypot(dx, dy)

	r := vector.NewRasterizer(width, height)
	if length == 0 {
		// A point renders as a square.
		h := thickness / 2
		r.MoveTo(float32(x1-h), float32(y1-h))
		r.LineTo(float32(x1+h), float32(y1-h))
		r.LineTo(float32(x1+h), float32(y1+h))
		r.LineTo(float32(x1-h), float32(y1+h))
	} else {
		// Perpendicular offset of half the thickness.
		px := -dy / length * thickness / 2
		py := dx / length * thickness / 2
		r.MoveTo(float32(x1+px), float32(y1+py))
		r.LineTo(float32(x2+px), float32(y2+py))
		r.LineTo(float32(x2-px), float32(y2-py))
		r.LineTo(float32(x1-px), float32(y1-py))
	}
	r.ClosePath()

	mask := image.NewAlpha(image.Rect(0, 0, width, height))
	r.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})

	src := image.NewUniform(style.Color)
	draw.DrawMask(dst, bounds, src, image.Point{}, mask, image.Point{}, draw.Over)
}

// DrawPolygon outlines a closed polygon, e.g. the region of interest.
func DrawPolygon(dst draw.Image, polygon []image.Point, c color.Color, thickness int) {
	style := Style{Color: c, Thickness: thickness}
	for i := range polygon {
		a := polygon[i]
		b := polygon[(i+1)%len(polygon)]
		DrawSegment(dst, lane.Seg(a.X, a.Y, b.X, b.Y), style)
	}
}

// DrawROI returns a copy of img with the region of interest outlined.
func DrawROI(img image.Image, polygon []image.Point, c color.Color, thickness int) *image.NRGBA {
	out := imaging.Clone(img)
	if len(polygon) > 1 {
		DrawPolygon(out, polygon, c, thickness)
	}
	return out
}
