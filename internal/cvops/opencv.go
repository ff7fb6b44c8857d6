//go:build opencv

package cvops

import (
	"image"
	"image/color"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gocv.io/x/gocv"

	"github.com/ironsheep/lane-tools/internal/imaging"
	"github.com/ironsheep/lane-tools/internal/lane"
	"github.com/ironsheep/lane-tools/internal/render"
)

// Available reports whether the OpenCV backend is compiled in.
const Available = true

// Ops implements the lane pipeline's image operations with OpenCV.
// Every call converts to and from Go images, so Mats never escape.
type Ops struct {
	params imaging.Params
	logger *zap.Logger
}

// NewOps returns OpenCV-backed operations using params.
func NewOps(params imaging.Params, logger *zap.Logger) (*Ops, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ops{params: params, logger: logger.Named("opencv")}, nil
}

// Blur converts img to grayscale and applies a Gaussian blur.
func (o *Ops) Blur(img image.Image) (image.Image, error) {
	start := time.Now()
	src, err := toBGR(img)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(src, &gray, gocv.ColorBGRToGray)

	blurred := gocv.NewMat()
	defer blurred.Close()
	k := o.params.BlurSize
	gocv.GaussianBlur(gray, &blurred, image.Pt(k, k), o.params.BlurSigma, o.params.BlurSigma, gocv.BorderDefault)

	out, err := blurred.ToImage()
	if err != nil {
		return nil, errors.Wrap(err, "opencv: convert blurred image")
	}
	o.logger.Debug("blur", zap.Duration("took", time.Since(start)))
	return out, nil
}

// DetectEdges runs Canny with the configured thresholds.
func (o *Ops) DetectEdges(img image.Image) (image.Image, error) {
	src, err := toGray(img)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Canny(src, &edges, float32(o.params.CannyLow), float32(o.params.CannyHigh))

	out, err := edges.ToImage()
	if err != nil {
		return nil, errors.Wrap(err, "opencv: convert edge map")
	}
	return out, nil
}

// MaskRegion keeps only the pixels inside polygon.
func (o *Ops) MaskRegion(img image.Image, polygon []image.Point) (image.Image, error) {
	if len(polygon) < 3 {
		return nil, imaging.ErrInvalidPolygon
	}
	src, err := toGray(img)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	mask := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), src.Rows(), src.Cols(), gocv.MatTypeCV8UC1)
	defer mask.Close()

	pts := gocv.NewPointsVectorFromPoints([][]image.Point{polygon})
	defer pts.Close()
	gocv.FillPoly(&mask, pts, color.RGBA{R: 255, G: 255, B: 255, A: 255})

	masked := gocv.NewMat()
	defer masked.Close()
	gocv.BitwiseAnd(src, mask, &masked)

	out, err := masked.ToImage()
	if err != nil {
		return nil, errors.Wrap(err, "opencv: convert masked image")
	}
	return out, nil
}

// DetectLineSegments runs the probabilistic Hough transform.
func (o *Ops) DetectLineSegments(img image.Image) ([]lane.LineSegment, error) {
	src, err := toGray(img)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	h := o.params.Hough
	lines := gocv.NewMat()
	defer lines.Close()
	gocv.HoughLinesPWithParams(src, &lines,
		float32(h.Rho), float32(h.Theta), h.Threshold,
		float32(h.MinLineLength), float32(h.MaxLineGap))

	segments := make([]lane.LineSegment, 0, lines.Rows())
	for i := 0; i < lines.Rows(); i++ {
		v := lines.GetVeciAt(i, 0)
		segments = append(segments, lane.Seg(int(v[0]), int(v[1]), int(v[2]), int(v[3])))
	}
	o.logger.Debug("hough", zap.Int("segments", len(segments)))
	return segments, nil
}

func toBGR(img image.Image) (gocv.Mat, error) {
	if img == nil || img.Bounds().Empty() {
		return gocv.Mat{}, imaging.ErrEmptyImage
	}
	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return gocv.Mat{}, errors.Wrap(err, "opencv: convert image")
	}
	return mat, nil
}

func toGray(img image.Image) (gocv.Mat, error) {
	if img == nil || img.Bounds().Empty() {
		return gocv.Mat{}, imaging.ErrEmptyImage
	}
	mat, err := gocv.ImageGrayToMatGray(imaging.AsGray(img))
	if err != nil {
		return gocv.Mat{}, errors.Wrap(err, "opencv: convert image")
	}
	return mat, nil
}

// WindowSink shows each frame in an OpenCV window and blocks until a key is
// pressed.
type WindowSink struct {
	window *gocv.Window
}

// NewWindowSink opens a window titled title.
func NewWindowSink(title string) (*WindowSink, error) {
	return &WindowSink{window: gocv.NewWindow(title)}, nil
}

// DrawAndShow draws lines over img and waits for a key press.
func (s *WindowSink) DrawAndShow(img image.Image, lines []lane.LaneLine, style render.Style) error {
	mat, err := toBGR(render.Overlay(img, lines, style))
	if err != nil {
		return err
	}
	defer mat.Close()

	s.window.IMShow(mat)
	s.window.WaitKey(0)
	return nil
}

// Close destroys the window.
func (s *WindowSink) Close() error {
	return s.window.Close()
}
