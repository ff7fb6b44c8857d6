package pipeline

import (
	"context"
	"image"
	"runtime"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Frame is one input of a batch.
type Frame struct {
	// Name identifies the frame in results and logs, typically its path.
	Name string
	// Load returns the frame's pixels. It is called from a worker goroutine.
	Load func() (image.Image, error)
	// Sink overrides the pipeline's sink for this frame when set.
	Sink ImageSink
}

// StaticFrame wraps an in-memory image as a Frame.
func StaticFrame(name string, img image.Image) Frame {
	return Frame{
		Name: name,
		Load: func() (image.Image, error) { return img, nil },
	}
}

// FrameResult is the outcome of one batch frame.
// Err holds a fatal error for this frame only.
type FrameResult struct {
	Index  int
	Name   string
	Result *Result
	Err    error

	image image.Image
}

// RunBatch processes frames independently with up to workers in parallel
// (GOMAXPROCS when workers <= 0).
//
// The returned slice is in input order. A frame's failure is recorded on its
// FrameResult and does not stop the others; only cancellation of ctx aborts
// the batch. Sinks are called after all frames are detected, in input order.
func (p *Pipeline) RunBatch(ctx context.Context, frames []Frame, workers int) ([]FrameResult, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	results := make([]FrameResult, len(frames))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, frame := range frames {
		i, frame := i, frame
		results[i] = FrameResult{Index: i, Name: frame.Name}

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if frame.Load == nil {
				results[i].Err = errors.Errorf("frame %s: no loader", frame.Name)
				return nil
			}

			img, err := frame.Load()
			if err != nil {
				results[i].Err = errors.Wrapf(err, "load %s", frame.Name)
				return nil
			}

			res, err := p.Detect(gctx, img)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				results[i].Err = errors.Wrapf(err, "frame %s", frame.Name)
				return nil
			}
			results[i].Result = res
			results[i].image = img
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, errors.Wrap(err, "batch aborted")
	}

	for i := range results {
		r := &results[i]
		if r.Err != nil {
			p.logger.Warn("frame failed", zap.String("frame", r.Name), zap.Error(r.Err))
			continue
		}
		sink := frames[i].Sink
		if sink == nil {
			sink = p.sink
		}
		if err := p.show(sink, r.image, r.Result); err != nil {
			r.Err = errors.Wrapf(err, "frame %s", r.Name)
		}
		r.image = nil
	}

	return results, nil
}
