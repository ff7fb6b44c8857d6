package server

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"math"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/ironsheep/lane-tools/internal/diagnostics"
	"github.com/ironsheep/lane-tools/internal/imaging"
	"github.com/ironsheep/lane-tools/internal/lane"
	"github.com/ironsheep/lane-tools/internal/pipeline"
	"github.com/ironsheep/lane-tools/internal/render"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "lane_detect", "image_dimensions").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		s.logger.Warn("tool failed", zap.String("tool", params.Name), zap.Error(err))
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Lane Detection
	case "lane_detect":
		return s.handleLaneDetect(args)
	case "lane_classify":
		return s.handleLaneClassify(args)

	// Calibration
	case "lane_roi_preview":
		return s.handleLaneROIPreview(args)
	case "image_grid_overlay":
		return s.handleImageGridOverlay(args)
	case "image_edge_detect":
		return s.handleImageEdgeDetect(args)

	// Basic Image Information
	case "image_dimensions":
		return s.handleImageDimensions(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Lane Detection Handlers ===

// SideReport is one side of a lane tool result.
type SideReport struct {
	Side     lane.LaneSide  `json:"side"`
	Line     *lane.LaneLine `json:"line,omitempty"`
	Error    string         `json:"error,omitempty"`
	Segments int            `json:"segments"`
}

func sideReport(side pipeline.SideResult) SideReport {
	r := SideReport{Side: side.Side, Line: side.Line, Segments: side.Bucket.Len()}
	if side.Err != nil {
		r.Error = side.Err.Error()
	}
	return r
}

// ClassifiedSegment is a detected segment and where classification put it.
type ClassifiedSegment struct {
	lane.LineSegment
	Slope *float64 `json:"slope,omitempty"`
	Class string   `json:"class"` // left, right, vertical or flat
}

func classifySegments(segments []lane.LineSegment, threshold float64) []ClassifiedSegment {
	out := make([]ClassifiedSegment, len(segments))
	for i, seg := range segments {
		out[i] = ClassifiedSegment{LineSegment: seg}
		fit, ok := lane.Fit(seg)
		if !ok {
			out[i].Class = "vertical"
			continue
		}
		slope := fit.Slope
		out[i].Slope = &slope
		if math.Abs(slope) < threshold {
			out[i].Class = "flat"
			continue
		}
		out[i].Class = lane.SideOf(slope).String()
	}
	return out
}

// LaneDetectResult is returned by lane_detect.
type LaneDetectResult struct {
	RunID        string                `json:"run_id"`
	Width        int                   `json:"width"`
	Height       int                   `json:"height"`
	SegmentCount int                   `json:"segment_count"`
	Complete     bool                  `json:"complete"`
	Left         SideReport            `json:"left"`
	Right        SideReport            `json:"right"`
	Stats        diagnostics.Summary   `json:"stats"`
	Segments     []ClassifiedSegment   `json:"segments,omitempty"`
	Overlay      *imaging.EncodedImage `json:"overlay,omitempty"`
}

type laneDetectArgs struct {
	Path            string            `json:"path"`
	ROI             []pipeline.Vertex `json:"roi"`
	ROIUnits        pipeline.Units    `json:"roi_units"`
	SlopeThreshold  *float64          `json:"slope_threshold"`
	IncludeSegments bool              `json:"include_segments"`
	IncludeOverlay  bool              `json:"include_overlay"`
	OverlayScale    float64           `json:"overlay_scale"`
}

func (s *Server) handleLaneDetect(args json.RawMessage) (interface{}, error) {
	var a laneDetectArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.OverlayScale == 0 {
		a.OverlayScale = 1.0
	}

	opts, err := s.cfg.PipelineOptions(s.logger)
	if err != nil {
		return nil, err
	}
	threshold := s.cfg.Lane.SlopeThreshold
	if a.SlopeThreshold != nil {
		if *a.SlopeThreshold < 0 {
			return nil, errors.New("slope_threshold must not be negative")
		}
		threshold = *a.SlopeThreshold
		opts = append(opts, pipeline.WithSlopeThreshold(threshold))
	}
	if len(a.ROI) > 0 {
		roi, err := s.roiFromArgs(a.ROI, a.ROIUnits)
		if err != nil {
			return nil, err
		}
		opts = append(opts, pipeline.WithROI(roi))
	}

	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	p, err := pipeline.New(imaging.NewOps(s.cfg.ImagingParams(), s.logger), nil, opts...)
	if err != nil {
		return nil, err
	}
	res, err := p.Run(context.Background(), img)
	if err != nil {
		return nil, err
	}

	out := &LaneDetectResult{
		RunID:        res.RunID,
		Width:        res.Width,
		Height:       res.Height,
		SegmentCount: len(res.Segments),
		Complete:     res.Complete(),
		Left:         sideReport(res.Left),
		Right:        sideReport(res.Right),
		Stats:        diagnostics.Summarize(res),
	}
	if a.IncludeSegments {
		out.Segments = classifySegments(res.Segments, threshold)
	}
	if a.IncludeOverlay {
		style, err := s.cfg.Style()
		if err != nil {
			return nil, err
		}
		out.Overlay, err = imaging.EncodePNG(render.Overlay(img, res.Lines(), style), a.OverlayScale)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// LaneClassifyResult is returned by lane_classify.
type LaneClassifyResult struct {
	Left     SideReport          `json:"left"`
	Right    SideReport          `json:"right"`
	Segments []ClassifiedSegment `json:"segments"`
}

type laneClassifyArgs struct {
	Height         int                `json:"height"`
	Segments       []lane.LineSegment `json:"segments"`
	SlopeThreshold *float64           `json:"slope_threshold"`
}

func (s *Server) handleLaneClassify(args json.RawMessage) (interface{}, error) {
	var a laneClassifyArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Height <= 0 {
		return nil, lane.ErrInvalidHeight
	}
	threshold := s.cfg.Lane.SlopeThreshold
	if a.SlopeThreshold != nil {
		threshold = *a.SlopeThreshold
	}

	left, right := lane.Classify(a.Segments, threshold)
	report := func(b lane.LaneBucket) SideReport {
		r := SideReport{Side: b.Side, Segments: b.Len()}
		line, err := lane.AggregateAt(b, a.Height, s.cfg.Lane.Anchors)
		if err != nil {
			r.Error = err.Error()
			return r
		}
		r.Line = &line
		return r
	}

	return &LaneClassifyResult{
		Left:     report(left),
		Right:    report(right),
		Segments: classifySegments(a.Segments, threshold),
	}, nil
}

// === Calibration Handlers ===

// roiFromArgs builds an ROI from tool arguments, defaulting to fractions.
func (s *Server) roiFromArgs(vertices []pipeline.Vertex, units pipeline.Units) (pipeline.ROI, error) {
	if units == "" {
		units = pipeline.UnitsFraction
	}
	if units != pipeline.UnitsFraction && units != pipeline.UnitsPixel {
		return pipeline.ROI{}, errors.Errorf("roi_units must be %q or %q, got %q",
			pipeline.UnitsFraction, pipeline.UnitsPixel, units)
	}
	if len(vertices) < 3 {
		return pipeline.ROI{}, errors.Wrapf(imaging.ErrInvalidPolygon, "roi has %d vertices", len(vertices))
	}
	return pipeline.ROI{Units: units, Vertices: vertices}, nil
}

type laneROIPreviewArgs struct {
	Path     string            `json:"path"`
	ROI      []pipeline.Vertex `json:"roi"`
	ROIUnits pipeline.Units    `json:"roi_units"`
	Color    string            `json:"color"`
}

func (s *Server) handleLaneROIPreview(args json.RawMessage) (interface{}, error) {
	var a laneROIPreviewArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Color == "" {
		a.Color = "#ffff00"
	}
	outline, err := render.ParseColor(a.Color)
	if err != nil {
		return nil, err
	}

	roi := s.cfg.ROI
	if len(a.ROI) > 0 {
		if roi, err = s.roiFromArgs(a.ROI, a.ROIUnits); err != nil {
			return nil, err
		}
	}

	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	polygon := roi.Polygon(b.Dx(), b.Dy())
	return imaging.EncodePNG(render.DrawROI(img, polygon, outline, 3), 1)
}

type imageGridOverlayArgs struct {
	Path            string `json:"path"`
	GridSpacing     int    `json:"grid_spacing"`
	ShowCoordinates *bool  `json:"show_coordinates"`
	GridColor       string `json:"grid_color"`
}

func (s *Server) handleImageGridOverlay(args json.RawMessage) (interface{}, error) {
	var a imageGridOverlayArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.GridSpacing == 0 {
		a.GridSpacing = 50
	}
	if a.GridColor == "" {
		a.GridColor = "#ff0000"
	}
	showCoordinates := true
	if a.ShowCoordinates != nil {
		showCoordinates = *a.ShowCoordinates
	}
	gridColor, err := render.ParseColor(a.GridColor)
	if err != nil {
		return nil, err
	}

	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return imaging.EncodePNG(render.GridOverlay(img, a.GridSpacing, showCoordinates, gridColor), 1)
}

// EdgeDetectResult is returned by image_edge_detect.
type EdgeDetectResult struct {
	EdgePixels int                   `json:"edge_pixels"`
	EdgeRatio  float64               `json:"edge_ratio"`
	Image      *imaging.EncodedImage `json:"image"`
}

type imageEdgeDetectArgs struct {
	Path          string  `json:"path"`
	ThresholdLow  float64 `json:"threshold_low"`
	ThresholdHigh float64 `json:"threshold_high"`
}

func (s *Server) handleImageEdgeDetect(args json.RawMessage) (interface{}, error) {
	var a imageEdgeDetectArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	params := s.cfg.ImagingParams()
	if a.ThresholdLow != 0 {
		params.CannyLow = a.ThresholdLow
	}
	if a.ThresholdHigh != 0 {
		params.CannyHigh = a.ThresholdHigh
	}
	if params.CannyLow > params.CannyHigh {
		return nil, errors.Errorf("threshold_low %v exceeds threshold_high %v", params.CannyLow, params.CannyHigh)
	}

	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	ops := imaging.NewOps(params, s.logger)
	blurred, err := ops.Blur(img)
	if err != nil {
		return nil, err
	}
	edges, err := ops.DetectEdges(blurred)
	if err != nil {
		return nil, err
	}

	encoded, err := imaging.EncodePNG(edges, 1)
	if err != nil {
		return nil, err
	}
	count := countEdges(edges)
	b := edges.Bounds()
	return &EdgeDetectResult{
		EdgePixels: count,
		EdgeRatio:  float64(count) / float64(b.Dx()*b.Dy()),
		Image:      encoded,
	}, nil
}

func countEdges(img image.Image) int {
	gray := imaging.AsGray(img)
	n := 0
	for _, v := range gray.Pix {
		if v != 0 {
			n++
		}
	}
	return n
}

// === Basic Image Information Handlers ===

type imagePathArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageDimensions(args json.RawMessage) (interface{}, error) {
	var a imagePathArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.GetDimensions(s.cache, a.Path)
}
