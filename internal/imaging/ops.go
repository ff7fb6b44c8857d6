package imaging

import (
	"image"
	"time"

	"go.uber.org/zap"

	"github.com/ironsheep/lane-tools/internal/detection"
	"github.com/ironsheep/lane-tools/internal/lane"
)

// Params holds the tuning of every pure-Go pipeline stage.
type Params struct {
	// BlurSize is the Gaussian kernel edge length in pixels.
	BlurSize int
	// BlurSigma is the Gaussian standard deviation; 0 derives it from BlurSize.
	BlurSigma float64
	// CannyLow and CannyHigh are the hysteresis thresholds.
	CannyLow  float64
	CannyHigh float64
	// Hough configures segment extraction.
	Hough detection.HoughParams
}

// DefaultParams returns the parameters the lane detector was tuned with:
// 5x5 Gaussian, Canny 130/240 and the default Hough settings.
func DefaultParams() Params {
	return Params{
		BlurSize:  5,
		BlurSigma: 0,
		CannyLow:  130,
		CannyHigh: 240,
		Hough:     detection.DefaultHoughParams(),
	}
}

// Ops implements the lane pipeline's image operations in pure Go.
type Ops struct {
	params Params
	logger *zap.Logger
}

// NewOps returns Ops using params. A nil logger disables logging.
func NewOps(params Params, logger *zap.Logger) *Ops {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ops{params: params, logger: logger.Named("imaging")}
}

// Params returns the parameters Ops was built with.
func (o *Ops) Params() Params {
	return o.params
}

// Blur returns a smoothed single-channel copy of img.
func (o *Ops) Blur(img image.Image) (image.Image, error) {
	start := time.Now()
	out, err := Blur(img, o.params.BlurSize, o.params.BlurSigma)
	if err != nil {
		return nil, err
	}
	o.logger.Debug("blurred", zap.Duration("took", time.Since(start)))
	return out, nil
}

// DetectEdges returns the Canny edge map of an already smoothed image.
func (o *Ops) DetectEdges(img image.Image) (image.Image, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, ErrEmptyImage
	}
	start := time.Now()
	out, err := Canny(AsGray(img), o.params.CannyLow, o.params.CannyHigh)
	if err != nil {
		return nil, err
	}
	o.logger.Debug("edges detected", zap.Duration("took", time.Since(start)))
	return out, nil
}

// MaskRegion zeroes edge pixels outside polygon.
func (o *Ops) MaskRegion(img image.Image, polygon []image.Point) (image.Image, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, ErrEmptyImage
	}
	return MaskPolygon(AsGray(img), polygon)
}

// DetectLineSegments runs the probabilistic Hough transform over a binary
// edge map.
func (o *Ops) DetectLineSegments(img image.Image) ([]lane.LineSegment, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, ErrEmptyImage
	}
	start := time.Now()
	segments := detection.HoughSegments(AsGray(img), o.params.Hough)
	o.logger.Debug("segments detected",
		zap.Int("count", len(segments)),
		zap.Duration("took", time.Since(start)))
	return segments, nil
}
