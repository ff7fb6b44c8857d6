// Package server implements the MCP (Model Context Protocol) server for lane
// detection tools.
//
// This package provides a JSON-RPC 2.0 server that exposes the lane pipeline
// through the MCP protocol, so an assistant can run detection on road images,
// inspect the classified segments and tune the region of interest.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Logs go to stderr, never stdout.
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Lane Detection:
//   - lane_detect: Run the full pipeline on an image file
//   - lane_classify: Classify and aggregate caller-supplied segments
//
// Calibration:
//   - lane_roi_preview: Outline a region of interest on an image
//   - image_grid_overlay: Add a coordinate grid for reading off ROI vertices
//   - image_edge_detect: Canny edge map with the pipeline's blur
//
// Basic Image Information:
//   - image_dimensions: Get width and height
//
// # Image Caching
//
// The server maintains an in-memory cache of loaded images. Images are cached
// by path and reused across multiple tool calls, avoiding redundant disk I/O.
// The cache persists for the lifetime of the server process.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// A lane side that could not be aggregated is not a tool error: lane_detect
// reports it in that side's "error" field and still returns the other side.
//
// # Usage
//
//	srv, err := server.New(config.Default(), logger)
//	if err != nil {
//	    return err
//	}
//	return srv.Run()
package server
