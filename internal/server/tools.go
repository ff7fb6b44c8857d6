package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

var pathProperty = map[string]interface{}{
	"type":        "string",
	"description": "Absolute path to the image file",
}

var roiProperty = map[string]interface{}{
	"type":        "array",
	"description": "Optional region of interest polygon, at least 3 vertices. Defaults to the configured ROI",
	"items": map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"x": map[string]interface{}{"type": "number"},
			"y": map[string]interface{}{"type": "number"},
		},
		"required": []string{"x", "y"},
	},
}

var roiUnitsProperty = map[string]interface{}{
	"type":        "string",
	"description": "How roi coordinates are read: 'fraction' of width/height or 'pixel'. Default 'fraction'",
	"enum":        []string{"fraction", "pixel"},
	"default":     "fraction",
}

var slopeThresholdProperty = map[string]interface{}{
	"type":        "number",
	"description": "Minimum absolute slope for a segment to count as a lane marking. Defaults to the configured value (0.3)",
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Lane Detection
		{
			Name: "lane_detect",
			Description: "Detect the left and right lane lines in a road image. Returns each line's endpoints at the bottom of the frame " +
				"and at 70% of its height. A side with no usable segments reports an error while the other side is still returned.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":            pathProperty,
					"roi":             roiProperty,
					"roi_units":       roiUnitsProperty,
					"slope_threshold": slopeThresholdProperty,
					"include_segments": map[string]interface{}{
						"type":        "boolean",
						"description": "Include every Hough segment and its assigned side. Default false",
						"default":     false,
					},
					"include_overlay": map[string]interface{}{
						"type":        "boolean",
						"description": "Include the image with the lane lines drawn, as base64 PNG. Default false",
						"default":     false,
					},
					"overlay_scale": map[string]interface{}{
						"type":        "number",
						"description": "Scale factor for the overlay image. Default 1.0",
						"default":     1.0,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name: "lane_classify",
			Description: "Classify line segments into left and right lane buckets and aggregate each bucket into one lane line, " +
				"without reading an image. Negative slopes (y grows downward) are left, others right.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"height": map[string]interface{}{
						"type":        "integer",
						"description": "Image height in pixels, used for the anchor rows",
					},
					"segments": map[string]interface{}{
						"type":        "array",
						"description": "Line segments in pixel coordinates, origin top-left",
						"items": map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"x1": map[string]interface{}{"type": "integer"},
								"y1": map[string]interface{}{"type": "integer"},
								"x2": map[string]interface{}{"type": "integer"},
								"y2": map[string]interface{}{"type": "integer"},
							},
							"required": []string{"x1", "y1", "x2", "y2"},
						},
					},
					"slope_threshold": slopeThresholdProperty,
				},
				"required": []string{"height", "segments"},
			},
		},

		// Calibration
		{
			Name:        "lane_roi_preview",
			Description: "Outline a region of interest on an image and return it as base64-encoded PNG. Use this to check an ROI before running lane_detect.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":      pathProperty,
					"roi":       roiProperty,
					"roi_units": roiUnitsProperty,
					"color": map[string]interface{}{
						"type":        "string",
						"description": "Outline color in hex (#RRGGBB). Default '#ffff00'",
						"default":     "#ffff00",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_grid_overlay",
			Description: "Add a coordinate grid overlay to help read off pixel positions, e.g. ROI vertices. Returns base64-encoded PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
					"grid_spacing": map[string]interface{}{
						"type":        "integer",
						"description": "Pixels between grid lines. Default 50",
						"default":     50,
					},
					"show_coordinates": map[string]interface{}{
						"type":        "boolean",
						"description": "Label grid intersections with coordinates. Default true",
						"default":     true,
					},
					"grid_color": map[string]interface{}{
						"type":        "string",
						"description": "Grid line color in hex (#RRGGBB). Default '#ff0000'",
						"default":     "#ff0000",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_edge_detect",
			Description: "Blur an image and run Canny edge detection with the lane pipeline's settings. Returns the edge map as base64-encoded PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
					"threshold_low": map[string]interface{}{
						"type":        "number",
						"description": "Canny low threshold. Defaults to the configured value (130)",
					},
					"threshold_high": map[string]interface{}{
						"type":        "number",
						"description": "Canny high threshold. Defaults to the configured value (240)",
					},
				},
				"required": []string{"path"},
			},
		},

		// Basic Image Information
		{
			Name:        "image_dimensions",
			Description: "Get the width and height of an image file.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
				},
				"required": []string{"path"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
