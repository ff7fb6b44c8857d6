package imaging

import (
	"image"
	"image/draw"
	"math"

	"github.com/anthonynsimon/bild/convolution"
	"github.com/anthonynsimon/bild/effect"
)

// GaussianKernel builds a size x size Gaussian kernel.
//
// A non-positive sigma is derived from the size the same way OpenCV does for
// GaussianBlur with sigma 0: sigma = 0.3*((size-1)*0.5 - 1) + 0.8.
// Even sizes are bumped to the next odd size so the kernel has a center.
func GaussianKernel(size int, sigma float64) *convolution.Kernel {
	if size < 1 {
		size = 1
	}
	if size%2 == 0 {
		size++
	}
	if sigma <= 0 {
		sigma = 0.3*(float64(size-1)*0.5-1) + 0.8
	}

	k := convolution.NewKernel(size, size)
	half := size / 2
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx := float64(x - half)
			dy := float64(y - half)
			k.Matrix[y*size+x] = math.Exp(-(dx*dx + dy*dy) / (2 * sigma * sigma))
		}
	}
	return k
}

// Blur converts img to grayscale and smooths it with a Gaussian kernel.
//
// Single-channel inputs skip the grayscale step. Border pixels use clamped
// (replicated) edge values.
func Blur(img image.Image, size int, sigma float64) (*image.Gray, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, ErrEmptyImage
	}

	var gray image.Image = img
	if _, ok := img.(*image.Gray); !ok {
		gray = effect.Grayscale(img)
	}

	kernel := GaussianKernel(size, sigma)
	smoothed := convolution.Convolve(gray, kernel.Normalized(), &convolution.Options{
		Bias:      0,
		Wrap:      false,
		KeepAlpha: true,
	})

	return AsGray(smoothed), nil
}

// AsGray returns img as *image.Gray, converting through the Gray color model
// when needed. The returned image is rebased to a (0,0) origin.
func AsGray(img image.Image) *image.Gray {
	bounds := img.Bounds()
	if g, ok := img.(*image.Gray); ok && bounds.Min == (image.Point{}) {
		return g
	}
	gray := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(gray, gray.Bounds(), img, bounds.Min, draw.Src)
	return gray
}
