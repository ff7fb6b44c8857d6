//go:build !opencv

package cvops

import (
	"image"

	"go.uber.org/zap"

	"github.com/ironsheep/lane-tools/internal/imaging"
	"github.com/ironsheep/lane-tools/internal/lane"
	"github.com/ironsheep/lane-tools/internal/render"
)

// Available reports whether the OpenCV backend is compiled in.
const Available = false

// Ops is a placeholder for the OpenCV operations.
type Ops struct{}

// NewOps always fails without the opencv build tag.
func NewOps(imaging.Params, *zap.Logger) (*Ops, error) {
	return nil, ErrUnavailable
}

func (*Ops) Blur(image.Image) (image.Image, error) {
	return nil, ErrUnavailable
}

func (*Ops) DetectEdges(image.Image) (image.Image, error) {
	return nil, ErrUnavailable
}

func (*Ops) MaskRegion(image.Image, []image.Point) (image.Image, error) {
	return nil, ErrUnavailable
}

func (*Ops) DetectLineSegments(image.Image) ([]lane.LineSegment, error) {
	return nil, ErrUnavailable
}

// WindowSink is a placeholder for the OpenCV display window.
type WindowSink struct{}

// NewWindowSink always fails without the opencv build tag.
func NewWindowSink(string) (*WindowSink, error) {
	return nil, ErrUnavailable
}

func (*WindowSink) DrawAndShow(image.Image, []lane.LaneLine, render.Style) error {
	return ErrUnavailable
}

func (*WindowSink) Close() error {
	return nil
}
