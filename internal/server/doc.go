// Package server implements the MCP (Model Context Protocol) server for
// pattern localization.
//
// This package provides a JSON-RPC 2.0 server that exposes the
// localization pipeline through the MCP protocol, so MCP-compatible
// clients can find reference patterns inside screenshots and other
// target images.
//
// # Protocol
//
// The server reads line-delimited JSON-RPC 2.0 requests from its input
// and writes responses to its output. Supported methods:
//
//   - initialize: protocol handshake, returns server info
//   - notifications/initialized: client acknowledgment (no response)
//   - tools/list: enumerate available tools with JSON schemas
//   - tools/call: execute a tool
//   - ping: liveness check
//
// # Tools
//
//   - locate_patterns: run the full localization pipeline against a
//     target image, returning detections grouped by pattern name
//   - detect_text_exclusions: find text regions to exclude, via
//     Tesseract OCR or an edge-density heuristic
//   - dominant_color: k-means dominant color of an image
//   - image_info: dimensions and format of an image file
//   - list_references: inventory of the loaded reference patterns
//
// # State
//
// The server keeps two caches: decoded images keyed by path, and built
// reference-pattern sets keyed by directory. Feature extraction for a
// reference directory therefore happens once per process, not once per
// locate_patterns call.
package server
