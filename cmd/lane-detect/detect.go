package main

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ironsheep/lane-tools/internal/cvops"
	"github.com/ironsheep/lane-tools/internal/diagnostics"
	"github.com/ironsheep/lane-tools/internal/imaging"
	"github.com/ironsheep/lane-tools/internal/lane"
	"github.com/ironsheep/lane-tools/internal/pipeline"
	"github.com/ironsheep/lane-tools/internal/render"
)

type detectOptions struct {
	outDir     string
	show       bool
	plotDir    string
	roiOverlay bool
	backend    string
	workers    int
	json       bool
}

var detectOpts detectOptions

var detectCmd = &cobra.Command{
	Use:   "detect <image>...",
	Short: "Detect lane lines in one or more images",
	Long: `Runs the lane pipeline on each image and prints the left and right lane
lines. Frames are processed in parallel; output is in argument order.

A side without usable segments is reported but does not fail the frame.
The command exits non-zero only when a frame could not be processed at all.

Examples:
  lane-detect detect road.jpg
  lane-detect detect --out overlays --plot plots frames/*.png
  lane-detect detect --backend opencv --show road.jpg`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runDetect(ctx, cmd.OutOrStdout(), args, detectOpts)
	},
}

func init() {
	f := detectCmd.Flags()
	f.StringVarP(&detectOpts.outDir, "out", "o", "", "Write <name>_lanes.png overlays to this directory")
	f.BoolVar(&detectOpts.show, "show", false, "Show each overlay in a window and wait for a key (opencv builds only)")
	f.StringVar(&detectOpts.plotDir, "plot", "", "Write slope/intercept bucket plots to this directory")
	f.BoolVar(&detectOpts.roiOverlay, "roi-overlay", false, "Outline the region of interest on overlays")
	f.StringVar(&detectOpts.backend, "backend", "go", "Image operations backend: go or opencv")
	f.IntVar(&detectOpts.workers, "workers", 0, "Frames processed in parallel (default: config, then GOMAXPROCS)")
	f.BoolVar(&detectOpts.json, "json", false, "Print JSON instead of text")
}

func newImageOps(backend string) (pipeline.ImageOps, error) {
	switch backend {
	case "go", "":
		return imaging.NewOps(cfg.ImagingParams(), logger), nil
	case "opencv":
		ops, err := cvops.NewOps(cfg.ImagingParams(), logger)
		if err != nil {
			return nil, err
		}
		return ops, nil
	default:
		return nil, errors.Errorf("unknown backend %q (want go or opencv)", backend)
	}
}

func runDetect(ctx context.Context, out io.Writer, paths []string, opts detectOptions) error {
	ops, err := newImageOps(opts.backend)
	if err != nil {
		return err
	}
	pipeOpts, err := cfg.PipelineOptions(logger)
	if err != nil {
		return err
	}
	p, err := pipeline.New(ops, nil, pipeOpts...)
	if err != nil {
		return err
	}

	var window *cvops.WindowSink
	if opts.show {
		window, err = cvops.NewWindowSink("lane-detect")
		if err != nil {
			return err
		}
		defer window.Close()
	}

	cache := imaging.NewImageCache()
	frames := make([]pipeline.Frame, len(paths))
	for i, path := range paths {
		path := path
		var sinks multiSink
		if opts.outDir != "" {
			sinks = append(sinks, &render.FileSink{
				Path:   filepath.Join(opts.outDir, frameName(path)+"_lanes.png"),
				Logger: logger,
			})
		}
		if window != nil {
			sinks = append(sinks, window)
		}

		var sink pipeline.ImageSink
		if len(sinks) > 0 {
			sink = sinks
			if opts.roiOverlay {
				sink = &roiSink{roi: p.ROI(), next: sinks}
			}
		}
		frames[i] = pipeline.Frame{
			Name: path,
			Load: func() (image.Image, error) { return cache.Load(path) },
			Sink: sink,
		}
	}

	workers := opts.workers
	if workers == 0 {
		workers = cfg.Batch.Workers
	}
	results, err := p.RunBatch(ctx, frames, workers)
	if err != nil {
		return err
	}

	failed := 0
	reports := make([]frameReport, 0, len(results))
	for _, r := range results {
		cache.Evict(r.Name)
		if r.Err != nil {
			failed++
			logger.Error("frame failed", zap.String("frame", r.Name), zap.Error(r.Err))
		}
		if r.Result != nil && opts.plotDir != "" {
			path, err := diagnostics.SaveBucketPlot(r.Result, opts.plotDir, frameName(r.Name))
			if err != nil {
				return err
			}
			logger.Info("bucket plot written", zap.String("path", path))
		}
		reports = append(reports, newFrameReport(r))
	}

	if opts.json {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(reports); err != nil {
			return err
		}
	} else {
		for _, r := range reports {
			printFrameReport(out, r)
		}
	}

	if failed > 0 {
		return errors.Errorf("%d of %d frames failed", failed, len(results))
	}
	return nil
}

func frameName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

type sideLine struct {
	Line  *lane.LaneLine `json:"line,omitempty"`
	Error string         `json:"error,omitempty"`
}

type frameReport struct {
	Frame    string   `json:"frame"`
	RunID    string   `json:"run_id,omitempty"`
	Segments int      `json:"segments"`
	Left     sideLine `json:"left"`
	Right    sideLine `json:"right"`
	Error    string   `json:"error,omitempty"`
}

func newFrameReport(r pipeline.FrameResult) frameReport {
	rep := frameReport{Frame: r.Name}
	if r.Err != nil {
		rep.Error = r.Err.Error()
	}
	if r.Result == nil {
		return rep
	}
	rep.RunID = r.Result.RunID
	rep.Segments = len(r.Result.Segments)
	rep.Left = newSideLine(r.Result.Left)
	rep.Right = newSideLine(r.Result.Right)
	return rep
}

func newSideLine(s pipeline.SideResult) sideLine {
	if s.Err != nil {
		return sideLine{Error: s.Err.Error()}
	}
	return sideLine{Line: s.Line}
}

func printFrameReport(w io.Writer, r frameReport) {
	if r.RunID == "" {
		fmt.Fprintf(w, "%s: error: %s\n", r.Frame, r.Error)
		return
	}
	describe := func(s sideLine) string {
		if s.Line == nil {
			return s.Error
		}
		return s.Line.Segment().String()
	}
	fmt.Fprintf(w, "%s: %d segments\n  left:  %s\n  right: %s\n",
		r.Frame, r.Segments, describe(r.Left), describe(r.Right))
	if r.Error != "" {
		fmt.Fprintf(w, "  error: %s\n", r.Error)
	}
}

// multiSink hands a frame to several sinks in order, stopping at the first
// failure.
type multiSink []pipeline.ImageSink

func (m multiSink) DrawAndShow(img image.Image, lines []lane.LaneLine, style render.Style) error {
	for _, s := range m {
		if err := s.DrawAndShow(img, lines, style); err != nil {
			return err
		}
	}
	return nil
}

// roiSink outlines the region of interest before passing the frame on.
type roiSink struct {
	roi  pipeline.ROI
	next pipeline.ImageSink
}

func (s *roiSink) DrawAndShow(img image.Image, lines []lane.LaneLine, style render.Style) error {
	b := img.Bounds()
	outlined := render.DrawROI(img, s.roi.Polygon(b.Dx(), b.Dy()), roiColor, 2)
	return s.next.DrawAndShow(outlined, lines, style)
}

var roiColor = color.NRGBA{R: 255, G: 255, A: 255}
