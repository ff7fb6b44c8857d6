package render

import (
	"image"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/ironsheep/lane-tools/internal/lane"
)

// FileSink draws lane lines over the frame and writes it to Path.
// The format follows the file extension (.png, .jpg, .gif, .tif, .bmp).
// It does not block for acknowledgment, which suits headless runs.
type FileSink struct {
	Path   string
	Logger *zap.Logger
}

// DrawAndShow renders lines over img and saves the result.
func (s *FileSink) DrawAndShow(img image.Image, lines []lane.LaneLine, style Style) error {
	if s.Path == "" {
		return errors.New("file sink: no output path")
	}
	if dir := filepath.Dir(s.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(err, "file sink: create output directory")
		}
	}

	out := Overlay(img, lines, style)
	if err := imaging.Save(out, s.Path); err != nil {
		return errors.Wrapf(err, "file sink: save %s", s.Path)
	}

	if s.Logger != nil {
		s.Logger.Info("overlay written",
			zap.String("path", s.Path),
			zap.Int("lines", len(lines)))
	}
	return nil
}

// DiscardSink draws nothing. It stands in for a sink when only the detected
// coordinates are wanted.
type DiscardSink struct{}

// DrawAndShow does nothing.
func (DiscardSink) DrawAndShow(image.Image, []lane.LaneLine, Style) error {
	return nil
}
