// Package server implements the MCP (Model Context Protocol) server for bell
// pepper quality analysis.
//
// This package provides a JSON-RPC 2.0 server that exposes the detection and
// grading pipeline through the MCP protocol, so MCP clients can grade the
// peppers in a photo and inspect individual results.
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
// Basic Image Information:
//   - image_load: Load image and get metadata
//   - image_dimensions: Get width and height
//
// Pepper Analysis:
//   - pepper_analyze: Detect, validate, segment and grade every pepper
//   - pepper_annotate: Draw graded boxes on the photo
//   - pepper_crop: Cut one graded pepper out with a feathered edge
//
// # Caching
//
// Decoded images are cached by path, and so is the latest analysis of each
// path; pepper_annotate and pepper_crop reuse it. Pass refresh to
// pepper_analyze after the file changes on disk.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The Go error string
//
// An unreachable detector fails pepper_analyze; it is never reported as a
// photo without peppers.
package server
