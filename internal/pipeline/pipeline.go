package pipeline

import (
	"context"
	"image"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/ironsheep/lane-tools/internal/lane"
	"github.com/ironsheep/lane-tools/internal/render"
)

// ImageOps is the image processing capability the pipeline drives.
type ImageOps interface {
	// Blur returns a denoised single-channel image, converting to grayscale
	// first when the input has several channels.
	Blur(img image.Image) (image.Image, error)
	// DetectEdges returns a binary edge map.
	DetectEdges(img image.Image) (image.Image, error)
	// MaskRegion zeroes every pixel outside polygon.
	MaskRegion(img image.Image, polygon []image.Point) (image.Image, error)
	// DetectLineSegments returns the straight segments of a binary image.
	DetectLineSegments(img image.Image) ([]lane.LineSegment, error)
}

// ImageSink receives the original frame and the detected lane lines.
type ImageSink interface {
	DrawAndShow(img image.Image, lines []lane.LaneLine, style render.Style) error
}

// Pipeline detects lane lines in single frames.
type Pipeline struct {
	ops            ImageOps
	sink           ImageSink
	slopeThreshold float64
	anchors        lane.Anchors
	roi            ROI
	style          render.Style
	logger         *zap.Logger
}

// New creates a pipeline over ops. sink may be nil for headless use.
func New(ops ImageOps, sink ImageSink, opts ...Option) (*Pipeline, error) {
	if ops == nil {
		return nil, ErrNoImageOps
	}

	p := &Pipeline{
		ops:            ops,
		sink:           sink,
		slopeThreshold: lane.DefaultSlopeThreshold,
		anchors:        lane.DefaultAnchors,
		roi:            DefaultROI(),
		style:          render.DefaultStyle(),
		logger:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Run detects the lane lines of img and hands them to the sink.
//
// The returned Result is non-nil whenever detection completed, even if the
// sink then failed; in that case the error wraps the sink failure.
func (p *Pipeline) Run(ctx context.Context, img image.Image) (*Result, error) {
	res, err := p.Detect(ctx, img)
	if err != nil {
		return nil, err
	}
	if err := p.show(p.sink, img, res); err != nil {
		return res, err
	}
	return res, nil
}

// Detect runs every stage except the sink.
func (p *Pipeline) Detect(ctx context.Context, img image.Image) (*Result, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, ErrEmptyFrame
	}

	bounds := img.Bounds()
	res := &Result{
		RunID:  uuid.NewString(),
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	}
	log := p.logger.With(zap.String("run_id", res.RunID))
	start := time.Now()

	segments, err := p.segments(ctx, img, res.Width, res.Height)
	if err != nil {
		log.Warn("frame aborted", zap.Error(err))
		return nil, err
	}
	res.Segments = segments

	left, right := lane.Classify(segments, p.slopeThreshold)
	res.Left = p.aggregate(left, res.Height)
	res.Right = p.aggregate(right, res.Height)

	for _, side := range res.Sides() {
		if side.Err != nil {
			log.Warn("lane side failed",
				zap.Stringer("side", side.Side),
				zap.Int("segments", side.Bucket.Len()),
				zap.Error(side.Err))
		}
	}
	log.Debug("frame processed",
		zap.Int("segments", len(segments)),
		zap.Int("left", left.Len()),
		zap.Int("right", right.Len()),
		zap.Duration("took", time.Since(start)))

	return res, nil
}

// segments runs the ImageOps stages and returns the detected segments.
func (p *Pipeline) segments(ctx context.Context, img image.Image, width, height int) ([]lane.LineSegment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	blurred, err := p.ops.Blur(img)
	if err != nil {
		return nil, errors.Wrap(err, "blur")
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	edges, err := p.ops.DetectEdges(blurred)
	if err != nil {
		return nil, errors.Wrap(err, "detect edges")
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	masked, err := p.ops.MaskRegion(edges, p.roi.Polygon(width, height))
	if err != nil {
		return nil, errors.Wrap(err, "mask region")
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	segments, err := p.ops.DetectLineSegments(masked)
	if err != nil {
		return nil, errors.Wrap(err, "detect line segments")
	}
	return segments, nil
}

func (p *Pipeline) aggregate(bucket lane.LaneBucket, height int) SideResult {
	side := SideResult{Side: bucket.Side, Bucket: bucket}
	line, err := lane.AggregateAt(bucket, height, p.anchors)
	if err != nil {
		side.Err = err
		return side
	}
	side.Line = &line
	return side
}

func (p *Pipeline) show(sink ImageSink, img image.Image, res *Result) error {
	if sink == nil {
		return nil
	}
	if err := sink.DrawAndShow(img, res.Lines(), p.style); err != nil {
		return errors.Wrap(err, "draw")
	}
	return nil
}

// ROI returns the configured region of interest.
func (p *Pipeline) ROI() ROI {
	return p.roi
}
