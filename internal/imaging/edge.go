package imaging

import (
	"image"
	"math"
)

// Canny performs Canny edge detection on a smoothed grayscale image.
//
// Thresholds are in the units of the gradient magnitude computed on 0-255
// intensities with the L1 norm |Gx| + |Gy|, matching OpenCV's default, so the
// classic 130/240 pair carries over unchanged.
//
// # Algorithm
//
//  1. Gradient computation: Sobel operators for X and Y gradients
//  2. Non-maximum suppression: keep only local maxima along the gradient
//     direction, thinning edges to one pixel
//  3. Hysteresis thresholding:
//     - Pixels at or above high are strong edges (always kept)
//     - Pixels between low and high are kept only when connected, through
//     other kept pixels, to a strong edge
//     - Pixels below low are discarded
//
// The result is a binary image: 255 for edges, 0 otherwise. The input is
// expected to be blurred already; Canny does not smooth.
func Canny(src *image.Gray, low, high float64) (*image.Gray, error) {
	bounds := src.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width == 0 || height == 0 {
		return nil, ErrEmptyImage
	}
	if low > high {
		low, high = high, low
	}

	sobelX := [3][3]float64{
		{-1, 0, 1},
		{-2, 0, 2},
		{-1, 0, 1},
	}
	sobelY := [3][3]float64{
		{-1, -2, -1},
		{0, 0, 0},
		{1, 2, 1},
	}

	magnitude := make([][]float64, height)
	direction := make([][]float64, height)
	for y := 0; y < height; y++ {
		magnitude[y] = make([]float64, width)
		direction[y] = make([]float64, width)

		for x := 0; x < width; x++ {
			var gx, gy float64
			for ky := -1; ky <= 1; ky++ {
				for kx := -1; kx <= 1; kx++ {
					py := clamp(y+ky, 0, height-1)
					px := clamp(x+kx, 0, width-1)
					v := float64(src.GrayAt(px+bounds.Min.X, py+bounds.Min.Y).Y)
					gx += v * sobelX[ky+1][kx+1]
					gy += v * sobelY[ky+1][kx+1]
				}
			}
			magnitude[y][x] = math.Abs(gx) + math.Abs(gy)
			direction[y][x] = math.Atan2(gy, gx)
		}
	}

	// Non-maximum suppression. Y grows downward, so a gradient at +45 degrees
	// points toward (x+1, y+1).
	suppressed := make([][]float64, height)
	for y := 0; y < height; y++ {
		suppressed[y] = make([]float64, width)
		if y == 0 || y == height-1 {
			continue
		}
		for x := 1; x < width-1; x++ {
			mag := magnitude[y][x]
			if mag < low {
				continue
			}

			angle := direction[y][x]
			var n1, n2 float64
			switch {
			case (angle >= -math.Pi/8 && angle < math.Pi/8) || angle >= 7*math.Pi/8 || angle < -7*math.Pi/8:
				n1 = magnitude[y][x-1]
				n2 = magnitude[y][x+1]
			case (angle >= math.Pi/8 && angle < 3*math.Pi/8) || (angle >= -7*math.Pi/8 && angle < -5*math.Pi/8):
				n1 = magnitude[y-1][x-1]
				n2 = magnitude[y+1][x+1]
			case (angle >= 3*math.Pi/8 && angle < 5*math.Pi/8) || (angle >= -5*math.Pi/8 && angle < -3*math.Pi/8):
				n1 = magnitude[y-1][x]
				n2 = magnitude[y+1][x]
			default:
				n1 = magnitude[y-1][x+1]
				n2 = magnitude[y+1][x-1]
			}

			// Ties are broken toward the earlier neighbour so plateaus stay
			// one pixel wide.
			if mag > n1 && mag >= n2 {
				suppressed[y][x] = mag
			}
		}
	}

	// Hysteresis: grow from strong pixels through weak ones.
	result := image.NewGray(image.Rect(0, 0, width, height))
	stack := make([]image.Point, 0, 256)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if suppressed[y][x] < high || result.Pix[y*result.Stride+x] != 0 {
				continue
			}
			result.Pix[y*result.Stride+x] = 255
			stack = append(stack[:0], image.Point{X: x, Y: y})

			for len(stack) > 0 {
				p := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				for ky := -1; ky <= 1; ky++ {
					for kx := -1; kx <= 1; kx++ {
						nx, ny := p.X+kx, p.Y+ky
						if nx < 0 || nx >= width || ny < 0 || ny >= height {
							continue
						}
						idx := ny*result.Stride + nx
						if result.Pix[idx] != 0 || suppressed[ny][nx] == 0 || suppressed[ny][nx] < low {
							continue
						}
						result.Pix[idx] = 255
						stack = append(stack, image.Point{X: nx, Y: ny})
					}
				}
			}
		}
	}

	return result, nil
}

// clamp constrains an integer value to the range [lo, hi].
func clamp(val, lo, hi int) int {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}
