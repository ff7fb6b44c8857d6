package imaging

import (
	"image"
	"image/draw"

	"golang.org/x/image/vector"
)

// maskCoverage is the minimum anti-aliased polygon coverage (0-255) for a
// pixel to count as inside the region.
const maskCoverage = 0x80

// PolygonMask rasterizes polygon into an alpha mask of the given size.
// Pixels fully inside have alpha 255; edge pixels carry partial coverage.
func PolygonMask(width, height int, polygon []image.Point) (*image.Alpha, error) {
	if len(polygon) < 3 {
		return nil, ErrInvalidPolygon
	}
	if width <= 0 || height <= 0 {
		return nil, ErrEmptyImage
	}

	r := vector.NewRasterizer(width, height)
	r.DrawOp = draw.Src
	r.MoveTo(float32(polygon[0].X), float32(polygon[0].Y))
	for _, p := range polygon[1:] {
		r.LineTo(float32(p.X), float32(p.Y))
	}
	r.ClosePath()

	mask := image.NewAlpha(image.Rect(0, 0, width, height))
	r.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})
	return mask, nil
}

// MaskPolygon keeps the pixels of src that fall inside polygon and zeroes the
// rest. Polygon coordinates are relative to the image origin.
func MaskPolygon(src *image.Gray, polygon []image.Point) (*image.Gray, error) {
	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width == 0 || height == 0 {
		return nil, ErrEmptyImage
	}

	mask, err := PolygonMask(width, height, polygon)
	if err != nil {
		return nil, err
	}

	out := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if mask.Pix[y*mask.Stride+x] < maskCoverage {
				continue
			}
			out.Pix[y*out.Stride+x] = src.Pix[src.PixOffset(x+bounds.Min.X, y+bounds.Min.Y)]
		}
	}
	return out, nil
}
