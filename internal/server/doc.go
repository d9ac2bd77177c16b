// Package server implements an MCP (Model Context Protocol) server for the
// PGM pipeline.
//
// The server speaks JSON-RPC 2.0 over stdio, one request per line:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
//   - pgm_info: header-only inspection (dimensions, maxval, bit depth, size)
//   - pgm_stats: intensity statistics of a decoded file
//   - pgm_ascii: ASCII rendering
//   - pgm_process: the full pipeline, writing a new PGM file
//
// # Grid Caching
//
// pgm_stats and pgm_ascii decode through an in-memory cache keyed by path.
// pgm_process evicts its output path so later reads see the new file.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with code
// -32000 and the error text in data. Unparseable params yield -32602 and
// unknown methods -32601.
//
// # Usage
//
//	srv := server.New()
//	if err := srv.Serve(os.Stdin, os.Stdout); err != nil {
//	    log.Fatal(err)
//	}
package server
