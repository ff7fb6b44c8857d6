package pipeline

import (
	"image"
	"image/color"
	"sync"

	"github.com/pkg/errors"

	"github.com/ironsheep/lane-tools/internal/lane"
	"github.com/ironsheep/lane-tools/internal/render"
)

// fakeOps returns fixed segments and records the calls it receives.
type fakeOps struct {
	mu       sync.Mutex
	segments []lane.LineSegment
	failAt   string
	calls    []string
	polygons [][]image.Point
}

func (f *fakeOps) record(stage string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, stage)
	if f.failAt == stage {
		return errors.Errorf("%s exploded", stage)
	}
	return nil
}

func (f *fakeOps) Blur(img image.Image) (image.Image, error) {
	return img, f.record("blur")
}

func (f *fakeOps) DetectEdges(img image.Image) (image.Image, error) {
	return img, f.record("edges")
}

func (f *fakeOps) MaskRegion(img image.Image, polygon []image.Point) (image.Image, error) {
	f.mu.Lock()
	f.polygons = append(f.polygons, polygon)
	f.mu.Unlock()
	return img, f.record("mask")
}

func (f *fakeOps) DetectLineSegments(image.Image) ([]lane.LineSegment, error) {
	if err := f.record("hough"); err != nil {
		return nil, err
	}
	return f.segments, nil
}

// recordingSink keeps what it was asked to draw.
type recordingSink struct {
	mu     sync.Mutex
	err    error
	frames []image.Image
	lines  [][]lane.LaneLine
	styles []render.Style
}

func (s *recordingSink) DrawAndShow(img image.Image, lines []lane.LaneLine, style render.Style) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames = append(s.frames, img)
	s.lines = append(s.lines, lines)
	s.styles = append(s.styles, style)
	return s.err
}

func frame(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	return img
}

// roadSegments is the canonical two-lane example for a 640x480 frame.
func roadSegments() []lane.LineSegment {
	return []lane.LineSegment{
		lane.Seg(100, 480, 200, 280),
		lane.Seg(300, 480, 200, 280),
	}
}

var green = color.NRGBA{G: 255, A: 255}
