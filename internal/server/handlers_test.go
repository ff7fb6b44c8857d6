package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// createTestImageFile writes img as PNG into a per-test temp directory.
func createTestImageFile(t *testing.T, img image.Image) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "frame.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create file: %v", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return path
}

func solidImage(width, height int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// roadImage draws two bright lane markings converging toward the middle.
func roadImage(width, height int) *image.RGBA {
	img := solidImage(width, height, color.RGBA{40, 40, 40, 255})
	marking := color.RGBA{250, 250, 250, 255}
	for y := height / 2; y < height; y++ {
		t := float64(y-height/2) / float64(height/2)
		left := int(float64(width)*0.45 - t*float64(width)*0.35)
		right := int(float64(width)*0.55 + t*float64(width)*0.35)
		for dx := -3; dx <= 3; dx++ {
			img.Set(left+dx, y, marking)
			img.Set(right+dx, y, marking)
		}
	}
	return img
}

// callTool runs a tools/call request and decodes the text content into out.
func callTool(t *testing.T, s *Server, name string, args interface{}, out interface{}) *MCPResponse {
	t.Helper()

	paramsJSON, _ := json.Marshal(map[string]interface{}{
		"name":      name,
		"arguments": args,
	})
	resp := s.handleToolsCall(&MCPRequest{JSONRPC: "2.0", ID: 1, Params: paramsJSON})
	if resp == nil {
		t.Fatal("handleToolsCall returned nil")
	}
	if resp.Error != nil || out == nil {
		return resp
	}

	result := resp.Result.(map[string]interface{})
	content := result["content"].([]map[string]interface{})
	text := content[0]["text"].(string)
	if err := json.Unmarshal([]byte(text), out); err != nil {
		t.Fatalf("result is not JSON: %v\n%s", err, text)
	}
	return resp
}

func decodePNG(t *testing.T, b64 string) image.Image {
	t.Helper()
	data, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		t.Fatalf("invalid base64: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("invalid png: %v", err)
	}
	return img
}

func TestHandleToolsCall_LaneDetect(t *testing.T) {
	s := newTestServer(t)
	path := createTestImageFile(t, roadImage(320, 240))

	var out LaneDetectResult
	resp := callTool(t, s, "lane_detect", map[string]interface{}{
		"path":             path,
		"roi":              []map[string]float64{{"x": 0, "y": 1}, {"x": 0, "y": 0.5}, {"x": 1, "y": 0.5}, {"x": 1, "y": 1}},
		"include_segments": true,
		"include_overlay":  true,
		"overlay_scale":    0.5,
	}, &out)
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %v", resp.Error)
	}

	if out.Width != 320 || out.Height != 240 {
		t.Errorf("size: got %dx%d, want 320x240", out.Width, out.Height)
	}
	if !out.Complete {
		t.Fatalf("expected both sides, got left=%q right=%q", out.Left.Error, out.Right.Error)
	}
	if out.Left.Line.X1 >= out.Right.Line.X1 {
		t.Errorf("left line (x1=%d) should be left of right line (x1=%d)", out.Left.Line.X1, out.Right.Line.X1)
	}
	if out.Left.Line.Y1 != 240 || out.Left.Line.Y2 != 168 {
		t.Errorf("anchors: got y1=%d y2=%d, want 240 and 168", out.Left.Line.Y1, out.Left.Line.Y2)
	}
	if len(out.Segments) != out.SegmentCount {
		t.Errorf("segments: got %d, want %d", len(out.Segments), out.SegmentCount)
	}
	if out.Stats.Left.Segments != out.Left.Segments {
		t.Errorf("stats disagree with report: %d vs %d", out.Stats.Left.Segments, out.Left.Segments)
	}
	if out.Overlay == nil {
		t.Fatal("overlay missing")
	}
	if got := decodePNG(t, out.Overlay.ImageBase64).Bounds(); got.Dx() != 160 || got.Dy() != 120 {
		t.Errorf("overlay size: got %v, want 160x120", got)
	}
}

func TestHandleToolsCall_LaneDetect_NoLanes(t *testing.T) {
	s := newTestServer(t)
	path := createTestImageFile(t, solidImage(100, 80, color.RGBA{90, 90, 90, 255}))

	var out LaneDetectResult
	resp := callTool(t, s, "lane_detect", map[string]interface{}{"path": path}, &out)
	if resp.Error != nil {
		t.Fatalf("missing lanes are not a tool error: %v", resp.Error)
	}
	if out.Complete {
		t.Error("flat image should not produce lanes")
	}
	if out.Left.Error != "left lane: no lines detected" {
		t.Errorf("left error: got %q", out.Left.Error)
	}
	if out.Right.Line != nil {
		t.Errorf("right line should be absent, got %+v", out.Right.Line)
	}
	if out.Segments != nil || out.Overlay != nil {
		t.Error("optional fields should be omitted by default")
	}
}

func TestHandleToolsCall_LaneDetect_BadArguments(t *testing.T) {
	s := newTestServer(t)
	path := createTestImageFile(t, solidImage(20, 20, color.Black))

	tests := []struct {
		name string
		args map[string]interface{}
	}{
		{"missing file", map[string]interface{}{"path": filepath.Join(t.TempDir(), "nope.png")}},
		{"two vertex roi", map[string]interface{}{"path": path, "roi": []map[string]float64{{"x": 0, "y": 0}, {"x": 1, "y": 1}}}},
		{"bad units", map[string]interface{}{"path": path, "roi_units": "inches", "roi": []map[string]float64{{"x": 0, "y": 0}, {"x": 1, "y": 1}, {"x": 0, "y": 1}}}},
		{"negative threshold", map[string]interface{}{"path": path, "slope_threshold": -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := callTool(t, s, "lane_detect", tt.args, nil)
			if resp.Error == nil {
				t.Fatal("expected error")
			}
			if resp.Error.Code != -32000 {
				t.Errorf("Error code: got %d, want -32000", resp.Error.Code)
			}
		})
	}
}

func TestHandleToolsCall_LaneClassify(t *testing.T) {
	s := newTestServer(t)

	var out LaneClassifyResult
	resp := callTool(t, s, "lane_classify", map[string]interface{}{
		"height": 480,
		"segments": []map[string]int{
			{"x1": 100, "y1": 480, "x2": 140, "y2": 400},
			{"x1": 300, "y1": 480, "x2": 260, "y2": 400},
			{"x1": 10, "y1": 10, "x2": 10, "y2": 90},
			{"x1": 0, "y1": 100, "x2": 100, "y2": 110},
		},
	}, &out)
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %v", resp.Error)
	}

	if out.Left.Line == nil || out.Right.Line == nil {
		t.Fatalf("expected both lines, got %+v", out)
	}
	if l := out.Left.Line; l.X1 != 100 || l.Y1 != 480 || l.X2 != 172 || l.Y2 != 336 {
		t.Errorf("left line: got %+v", *l)
	}
	if r := out.Right.Line; r.X1 != 300 || r.Y1 != 480 || r.X2 != 228 || r.Y2 != 336 {
		t.Errorf("right line: got %+v", *r)
	}

	var classes []string
	for _, seg := range out.Segments {
		classes = append(classes, seg.Class)
	}
	if got := strings.Join(classes, ","); got != "left,right,vertical,flat" {
		t.Errorf("classes: got %s", got)
	}
}

func TestHandleToolsCall_LaneClassify_Errors(t *testing.T) {
	s := newTestServer(t)

	resp := callTool(t, s, "lane_classify", map[string]interface{}{"height": 0, "segments": []interface{}{}}, nil)
	if resp.Error == nil {
		t.Error("zero height should fail")
	}

	var out LaneClassifyResult
	resp = callTool(t, s, "lane_classify", map[string]interface{}{"height": 480, "segments": []interface{}{}}, &out)
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %v", resp.Error)
	}
	if out.Left.Error == "" || out.Right.Error == "" {
		t.Error("both sides should report no lines")
	}
}

func TestHandleToolsCall_LaneROIPreview(t *testing.T) {
	s := newTestServer(t)
	path := createTestImageFile(t, solidImage(200, 100, color.Black))

	var out struct {
		Width       int    `json:"width"`
		Height      int    `json:"height"`
		ImageBase64 string `json:"image_base64"`
	}
	resp := callTool(t, s, "lane_roi_preview", map[string]interface{}{
		"path":      path,
		"roi_units": "pixel",
		"roi":       []map[string]float64{{"x": 10, "y": 90}, {"x": 100, "y": 10}, {"x": 190, "y": 90}},
		"color":     "#00ff00",
	}, &out)
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %v", resp.Error)
	}

	img := decodePNG(t, out.ImageBase64)
	_, g, _, _ := img.At(100, 90).RGBA()
	if g>>8 < 200 {
		t.Errorf("ROI bottom edge should be green at (100,90), got g=%d", g>>8)
	}
}

func TestHandleToolsCall_GridOverlay(t *testing.T) {
	s := newTestServer(t)
	path := createTestImageFile(t, solidImage(100, 100, color.White))

	var out struct {
		ImageBase64 string `json:"image_base64"`
	}
	resp := callTool(t, s, "image_grid_overlay", map[string]interface{}{
		"path":             path,
		"grid_spacing":     25,
		"show_coordinates": false,
		"grid_color":       "#0000ff",
	}, &out)
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %v", resp.Error)
	}

	img := decodePNG(t, out.ImageBase64)
	r, g, b, _ := img.At(25, 60).RGBA()
	if r>>8 != 0 || g>>8 != 0 || b>>8 != 255 {
		t.Errorf("grid line color: got %d,%d,%d", r>>8, g>>8, b>>8)
	}

	resp = callTool(t, s, "image_grid_overlay", map[string]interface{}{"path": path, "grid_color": "red"}, nil)
	if resp.Error == nil {
		t.Error("invalid color should fail")
	}
}

func TestHandleToolsCall_EdgeDetect(t *testing.T) {
	s := newTestServer(t)

	// left half black, right half white
	img := solidImage(100, 60, color.Black)
	for y := 0; y < 60; y++ {
		for x := 50; x < 100; x++ {
			img.Set(x, y, color.White)
		}
	}
	path := createTestImageFile(t, img)

	var out EdgeDetectResult
	resp := callTool(t, s, "image_edge_detect", map[string]interface{}{"path": path}, &out)
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %v", resp.Error)
	}
	if out.EdgePixels == 0 {
		t.Error("step edge should produce edge pixels")
	}
	if out.EdgeRatio <= 0 || out.EdgeRatio > 0.2 {
		t.Errorf("edge ratio out of range: %v", out.EdgeRatio)
	}
	if out.Image == nil || out.Image.Width != 100 {
		t.Errorf("edge image missing or wrong size: %+v", out.Image)
	}

	resp = callTool(t, s, "image_edge_detect", map[string]interface{}{"path": path, "threshold_low": 200, "threshold_high": 100}, nil)
	if resp.Error == nil {
		t.Error("inverted thresholds should fail")
	}
}

func TestHandleToolsCall_ImageDimensions(t *testing.T) {
	s := newTestServer(t)
	path := createTestImageFile(t, solidImage(100, 80, color.RGBA{255, 0, 0, 255}))

	var out struct {
		Width  int `json:"width"`
		Height int `json:"height"`
	}
	resp := callTool(t, s, "image_dimensions", map[string]interface{}{"path": path}, &out)
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %v", resp.Error)
	}
	if out.Width != 100 || out.Height != 80 {
		t.Errorf("dimensions: got %dx%d, want 100x80", out.Width, out.Height)
	}
}

func TestHandleToolsCall_InvalidParams(t *testing.T) {
	s := newTestServer(t)
	resp := s.handleToolsCall(&MCPRequest{JSONRPC: "2.0", ID: 1, Params: json.RawMessage(`{invalid`)})

	if resp.Error == nil {
		t.Fatal("Expected error for invalid params")
	}
	if resp.Error.Code != -32602 {
		t.Errorf("Error code: got %d, want -32602", resp.Error.Code)
	}
}

func TestExecuteTool_UnknownTool(t *testing.T) {
	s := newTestServer(t)

	_, err := s.executeTool("image_ocr_full", json.RawMessage(`{}`))
	if err == nil {
		t.Error("executeTool should fail for unknown tool")
	}
}

func TestExecuteTool_InvalidJSON(t *testing.T) {
	s := newTestServer(t)

	for _, tool := range GetToolDefinitions() {
		if _, err := s.executeTool(tool.Name, json.RawMessage(`{invalid`)); err == nil {
			t.Errorf("%s should fail for invalid JSON", tool.Name)
		}
	}
}
