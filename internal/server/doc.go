// Package server implements the MCP (Model Context Protocol) server for image
// pattern recognition.
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
//   - image_load: Load image and get metadata and palette
//   - pattern_recognize: Run recognition, returns a run id
//   - pattern_levels: Level matrix as JSON or text
//   - pattern_rank: Links ranked by usage or frequency
//   - pattern_hotspots: Connected regions of high level
//   - pattern_heatmap: Level matrix rendered as PNG
//   - pattern_row_levels: Local levels along one row or column
//
// # Runs
//
// Every pattern_recognize call is kept in memory under its run id, and the
// newest run per image path is remembered, so the other pattern tools accept
// either a run_id or a path. Only the most recent runs are kept.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The Go error string
package server
