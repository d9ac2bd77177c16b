package server

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/ironsheep/pgm-tools/internal/ascii"
	"github.com/ironsheep/pgm-tools/internal/imaging"
	"github.com/ironsheep/pgm-tools/internal/pipeline"
	"github.com/ironsheep/pgm-tools/internal/transform"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "pgm_info", "pgm_process").
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
	case "pgm_info":
		return s.handlePGMInfo(args)
	case "pgm_stats":
		return s.handlePGMStats(args)
	case "pgm_ascii":
		return s.handlePGMASCII(args)
	case "pgm_process":
		return s.handlePGMProcess(args)
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

type pathArgs struct {
	Path string `json:"path"`
}

func (a *pathArgs) check() error {
	if a.Path == "" {
		return &imaging.ConfigError{Field: "path", Reason: "is required"}
	}
	return nil
}

func (s *Server) handlePGMInfo(args json.RawMessage) (interface{}, error) {
	var a pathArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if err := a.check(); err != nil {
		return nil, err
	}
	return imaging.Inspect(a.Path)
}

func (s *Server) handlePGMStats(args json.RawMessage) (interface{}, error) {
	var a pathArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if err := a.check(); err != nil {
		return nil, err
	}
	g, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return transform.Summarize(g), nil
}

type pgmASCIIArgs struct {
	pathArgs
	Width int    `json:"width"`
	Ramp  string `json:"ramp"`
}

// ASCIIResult is the payload of the pgm_ascii tool.
type ASCIIResult struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Rows   int    `json:"rows"`
	Art    string `json:"art"`
}

func (s *Server) handlePGMASCII(args json.RawMessage) (interface{}, error) {
	var a pgmASCIIArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if err := a.check(); err != nil {
		return nil, err
	}

	cfg := ascii.DefaultConfig()
	if a.Width != 0 {
		cfg.Width = a.Width
	}
	if a.Ramp != "" {
		cfg.Ramp = a.Ramp
	}

	g, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	art, err := ascii.Render(g, cfg)
	if err != nil {
		return nil, err
	}
	return &ASCIIResult{
		Width:  g.Width,
		Height: g.Height,
		Rows:   len(art),
		Art:    art.String(),
	}, nil
}

type pgmProcessArgs struct {
	Input        string  `json:"input"`
	Output       string  `json:"output"`
	Invert       bool    `json:"invert"`
	Threshold    *int    `json:"threshold"`
	Contrast     bool    `json:"contrast"`
	Stats        bool    `json:"stats"`
	ASCII        bool    `json:"ascii"`
	ASCIIWidth   int     `json:"ascii_width"`
	Ramp         string  `json:"ramp"`
	LittleEndian bool    `json:"little_endian"`
	Export       string  `json:"export"`
	ExportScale  float64 `json:"export_scale"`
	Histogram    string  `json:"histogram"`
}

func (a *pgmProcessArgs) options() (pipeline.Options, error) {
	opts := pipeline.DefaultOptions()
	if a.Input == "" {
		return opts, &imaging.ConfigError{Field: "input", Reason: "is required"}
	}
	if a.Output == "" {
		return opts, &imaging.ConfigError{Field: "output", Reason: "is required"}
	}
	if a.Threshold != nil && (*a.Threshold < 0 || *a.Threshold > 255) {
		return opts, &imaging.ConfigError{Field: "threshold", Reason: fmt.Sprintf("%d is outside 0-255", *a.Threshold)}
	}
	if a.ExportScale < 0 {
		return opts, &imaging.ConfigError{Field: "export_scale", Reason: "must be positive"}
	}

	opts.Invert = a.Invert
	opts.Threshold = a.Threshold
	opts.Contrast = a.Contrast
	opts.Stats = a.Stats
	opts.ASCII = a.ASCII
	if a.ASCIIWidth != 0 {
		opts.ASCIIConfig.Width = a.ASCIIWidth
	}
	if a.Ramp != "" {
		opts.ASCIIConfig.Ramp = a.Ramp
	}
	if a.LittleEndian {
		opts.DecodeOptions = append(opts.DecodeOptions, imaging.WithByteOrder(binary.LittleEndian))
	}
	opts.ExportPath = a.Export
	if a.ExportScale != 0 {
		opts.ExportScale = a.ExportScale
	}
	opts.HistogramPath = a.Histogram
	return opts, nil
}

func (s *Server) handlePGMProcess(args json.RawMessage) (interface{}, error) {
	var a pgmProcessArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	opts, err := a.options()
	if err != nil {
		return nil, err
	}

	res, err := pipeline.New(io.Discard, io.Discard).Run(a.Input, a.Output, opts)
	// The output may be partially written even on failure.
	s.cache.Evict(a.Output)
	if err != nil {
		return nil, errors.New(pipeline.Describe(err))
	}
	return res, nil
}
