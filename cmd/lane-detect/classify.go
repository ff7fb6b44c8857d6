package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/ironsheep/lane-tools/internal/lane"
)

var (
	classifyHeight int
	classifyJSON   bool
)

var classifyCmd = &cobra.Command{
	Use:   "classify --height H x1,y1,x2,y2 ...",
	Short: "Classify and aggregate line segments without an image",
	Long: `Buckets the given segments into left and right lanes by slope sign and
averages each bucket into a lane line for an image of the given height.

Example:
  lane-detect classify --height 480 100,480,140,400 300,480,260,400`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		segments := make([]lane.LineSegment, 0, len(args))
		for _, arg := range args {
			seg, err := parseSegment(arg)
			if err != nil {
				return err
			}
			segments = append(segments, seg)
		}
		if classifyHeight <= 0 {
			return lane.ErrInvalidHeight
		}

		left, right := lane.Classify(segments, cfg.Lane.SlopeThreshold)
		report := classifyReport{}
		for _, b := range []lane.LaneBucket{left, right} {
			side := classifySide{Side: b.Side, Segments: b.Len()}
			line, err := lane.AggregateAt(b, classifyHeight, cfg.Lane.Anchors)
			if err != nil {
				side.Error = err.Error()
			} else {
				side.Line = &line
			}
			report.Sides = append(report.Sides, side)
		}
		report.Dropped = len(segments) - left.Len() - right.Len()

		if classifyJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		}
		printClassify(cmd.OutOrStdout(), report)
		return nil
	},
}

func init() {
	classifyCmd.Flags().IntVar(&classifyHeight, "height", 0, "Image height in pixels (required)")
	classifyCmd.Flags().BoolVar(&classifyJSON, "json", false, "Print JSON instead of text")
	_ = classifyCmd.MarkFlagRequired("height")
}

type classifySide struct {
	Side     lane.LaneSide  `json:"side"`
	Segments int            `json:"segments"`
	Line     *lane.LaneLine `json:"line,omitempty"`
	Error    string         `json:"error,omitempty"`
}

type classifyReport struct {
	Sides   []classifySide `json:"sides"`
	Dropped int            `json:"dropped"`
}

func printClassify(w io.Writer, r classifyReport) {
	for _, s := range r.Sides {
		if s.Line == nil {
			fmt.Fprintf(w, "%-5s  %d segments  %s\n", s.Side, s.Segments, s.Error)
			continue
		}
		fmt.Fprintf(w, "%-5s  %d segments  %s\n", s.Side, s.Segments, s.Line.Segment())
	}
	fmt.Fprintf(w, "dropped %d vertical or flat segments\n", r.Dropped)
}

// parseSegment parses "x1,y1,x2,y2".
func parseSegment(s string) (lane.LineSegment, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return lane.LineSegment{}, errors.Errorf("segment %q: want x1,y1,x2,y2", s)
	}
	var v [4]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return lane.LineSegment{}, errors.Wrapf(err, "segment %q", s)
		}
		v[i] = n
	}
	return lane.Seg(v[0], v[1], v[2], v[3]), nil
}
