// Package server implements the MCP (Model Context Protocol) server for the
// Faraway scorer.
//
// The server exposes layout analysis, scoring and a persistent score sheet as
// MCP tools, so an assistant can score a photographed table and keep a game's
// running totals.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Game Layout:
//   - layout_analyze: Detect, classify and score a table photo
//   - layout_detect: Raw detections of one registered model
//   - letterbox_compute: Resize and padding of a photo onto a model input
//
// Scoring:
//   - score_calculate: Score attribute records with a trace
//
// Score Sheet:
//   - scoresheet_new: Start a sheet for a list of players
//   - scoresheet_record: Set one player's score for a round
//   - scoresheet_add_round: Append an empty round
//   - scoresheet_summary: Totals, averages and wins
//
// Basic Image Information:
//   - image_load: Load image and get metadata
//   - image_dimensions: Get width and height
//   - image_crop: Extract rectangular region
//
// # Image Caching
//
// Images are cached by path and reused across tool calls for the lifetime of
// the server process.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: the Go error string
//
// # Usage
//
//	srv := server.New(server.WithAnalyzer(analyzer), server.WithStore(store))
//	if err := srv.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
package server
