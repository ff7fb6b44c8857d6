package detection

import (
	"image"
	"math"
	"math/rand"

	"github.com/ironsheep/lane-tools/internal/lane"
)

// HoughParams configures the probabilistic Hough transform.
type HoughParams struct {
	// Rho is the distance resolution of the accumulator in pixels.
	Rho float64
	// Theta is the angle resolution of the accumulator in radians.
	Theta float64
	// Threshold is the minimum vote count for a line to be considered.
	Threshold int
	// MinLineLength drops segments shorter than this along both axes.
	MinLineLength int
	// MaxLineGap is the largest run of missing pixels bridged inside a segment.
	MaxLineGap int
	// Seed fixes the order edge pixels are visited in, so results are
	// reproducible for the same input.
	Seed int64
}

// DefaultHoughParams returns rho 2px, theta 1 degree, 50 votes, minimum length
// 10 and maximum gap 5.
func DefaultHoughParams() HoughParams {
	return HoughParams{
		Rho:           2,
		Theta:         math.Pi / 180,
		Threshold:     50,
		MinLineLength: 10,
		MaxLineGap:    5,
		Seed:          1,
	}
}

// houghShift is the fixed-point precision used when walking along a line.
const houghShift = 16

// HoughSegments finds line segments in a binary edge map with the progressive
// probabilistic Hough transform.
//
// Any non-zero pixel of edges is an edge point. Returned coordinates are
// relative to the image origin.
//
// # Algorithm
//
//  1. Visit edge points in a shuffled order and add each point's votes to
//     the (rho, theta) accumulator
//  2. When a point pushes its strongest bin to Threshold, walk the
//     corresponding line through the point in both directions, bridging up
//     to MaxLineGap missing pixels
//  3. Consume the walked pixels so they cannot vote again. If the walk spans
//     at least MinLineLength along x or y, remove their votes and emit the
//     segment
//
// Unlike the classic transform this returns finite segments, not infinite
// lines, and it stops voting for pixels already explained by a segment.
func HoughSegments(edges *image.Gray, p HoughParams) []lane.LineSegment {
	bounds := edges.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width == 0 || height == 0 || p.Rho <= 0 || p.Theta <= 0 {
		return nil
	}

	numAngle := int(math.Round(math.Pi / p.Theta))
	numRho := int(math.Round(float64((width+height)*2+1) / p.Rho))
	rhoOffset := (numRho - 1) / 2

	accumulator := make([][]int, numAngle)
	for i := range accumulator {
		accumulator[i] = make([]int, numRho)
	}

	cosTab := make([]float64, numAngle)
	sinTab := make([]float64, numAngle)
	for n := 0; n < numAngle; n++ {
		angle := float64(n) * p.Theta
		cosTab[n] = math.Cos(angle) / p.Rho
		sinTab[n] = math.Sin(angle) / p.Rho
	}

	// Collect edge points and mark them as unconsumed.
	mask := make([][]bool, height)
	points := make([]image.Point, 0)
	for y := 0; y < height; y++ {
		mask[y] = make([]bool, width)
		for x := 0; x < width; x++ {
			if edges.Pix[edges.PixOffset(x+bounds.Min.X, y+bounds.Min.Y)] != 0 {
				mask[y][x] = true
				points = append(points, image.Point{X: x, Y: y})
			}
		}
	}

	rng := rand.New(rand.NewSource(p.Seed))
	rng.Shuffle(len(points), func(i, j int) {
		points[i], points[j] = points[j], points[i]
	})

	vote := func(x, y, delta int) {
		for n := 0; n < numAngle; n++ {
			r := int(math.Round(float64(x)*cosTab[n]+float64(y)*sinTab[n])) + rhoOffset
			if r >= 0 && r < numRho {
				accumulator[n][r] += delta
			}
		}
	}

	segments := make([]lane.LineSegment, 0)

	for _, pt := range points {
		if !mask[pt.Y][pt.X] {
			continue
		}

		// Vote and remember the strongest bin for this point.
		maxVotes := p.Threshold - 1
		maxN := 0
		for n := 0; n < numAngle; n++ {
			r := int(math.Round(float64(pt.X)*cosTab[n]+float64(pt.Y)*sinTab[n])) + rhoOffset
			if r < 0 || r >= numRho {
				continue
			}
			accumulator[n][r]++
			if accumulator[n][r] > maxVotes {
				maxVotes = accumulator[n][r]
				maxN = n
			}
		}
		if maxVotes < p.Threshold {
			continue
		}

		walk := newLineWalk(pt, -sinTab[maxN], cosTab[maxN])

		// Find the segment extent in both directions.
		var ends [2]image.Point
		for k := 0; k < 2; k++ {
			gap := 0
			ends[k] = pt
			walk.each(k, func(x, y int) bool {
				if x < 0 || x >= width || y < 0 || y >= height {
					return false
				}
				if mask[y][x] {
					gap = 0
					ends[k] = image.Point{X: x, Y: y}
				} else {
					gap++
					if gap > p.MaxLineGap {
						return false
					}
				}
				return true
			})
		}

		good := abs(ends[1].X-ends[0].X) >= p.MinLineLength ||
			abs(ends[1].Y-ends[0].Y) >= p.MinLineLength

		// Consume the pixels up to each end, unvoting them for good lines.
		for k := 0; k < 2; k++ {
			walk.each(k, func(x, y int) bool {
				if x < 0 || x >= width || y < 0 || y >= height {
					return false
				}
				if mask[y][x] {
					if good {
						vote(x, y, -1)
					}
					mask[y][x] = false
				}
				return x != ends[k].X || y != ends[k].Y
			})
		}

		if good {
			segments = append(segments, lane.Seg(
				ends[0].X+bounds.Min.X, ends[0].Y+bounds.Min.Y,
				ends[1].X+bounds.Min.X, ends[1].Y+bounds.Min.Y,
			))
		}
	}

	return segments
}

// lineWalk steps pixel by pixel along a line direction in fixed point,
// always advancing by one pixel on the dominant axis.
type lineWalk struct {
	x0, y0 int
	dx0    int
	dy0    int
	xMajor bool
}

func newLineWalk(start image.Point, a, b float64) lineWalk {
	w := lineWalk{x0: start.X, y0: start.Y}
	if math.Abs(a) > math.Abs(b) {
		w.xMajor = true
		w.dx0 = 1
		if a <= 0 {
			w.dx0 = -1
		}
		w.dy0 = int(math.Round(b * (1 << houghShift) / math.Abs(a)))
		w.y0 = (w.y0 << houghShift) + (1 << (houghShift - 1))
	} else {
		w.dy0 = 1
		if b <= 0 {
			w.dy0 = -1
		}
		w.dx0 = int(math.Round(a * (1 << houghShift) / math.Abs(b)))
		w.x0 = (w.x0 << houghShift) + (1 << (houghShift - 1))
	}
	return w
}

// each visits pixels starting at the walk origin, forward for dir 0 and
// backward for dir 1, until fn returns false.
func (w lineWalk) each(dir int, fn func(x, y int) bool) {
	dx, dy := w.dx0, w.dy0
	if dir > 0 {
		dx, dy = -dx, -dy
	}
	for x, y := w.x0, w.y0; ; x, y = x+dx, y+dy {
		var px, py int
		if w.xMajor {
			px, py = x, y>>houghShift
		} else {
			px, py = x>>houghShift, y
		}
		if !fn(px, py) {
			return
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
