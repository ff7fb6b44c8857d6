package pipeline

import (
	"go.uber.org/zap"

	"github.com/ironsheep/lane-tools/internal/lane"
	"github.com/ironsheep/lane-tools/internal/render"
)

// Option configures a Pipeline.
type Option func(p *Pipeline)

// WithSlopeThreshold sets the minimum absolute slope of a lane segment.
func WithSlopeThreshold(threshold float64) Option {
	return func(p *Pipeline) {
		p.slopeThreshold = threshold
	}
}

// WithAnchors sets the heights lane lines are evaluated at.
func WithAnchors(anchors lane.Anchors) Option {
	return func(p *Pipeline) {
		p.anchors = anchors
	}
}

// WithROI sets the region of interest polygon.
func WithROI(roi ROI) Option {
	return func(p *Pipeline) {
		p.roi = roi
	}
}

// WithStyle sets how the sink draws lane lines.
func WithStyle(style render.Style) Option {
	return func(p *Pipeline) {
		p.style = style
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}
