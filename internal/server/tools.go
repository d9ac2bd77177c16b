package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pathProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": description,
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name:        "pgm_info",
			Description: "Read the header of a binary PGM (P5) file and report its dimensions, maxval, bit depth and file size without decoding pixels.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty("Absolute path to the PGM file"),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "pgm_stats",
			Description: "Decode a PGM file and report mean, standard deviation, min, max and median intensity plus the CIE L* lightness of the mean.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty("Absolute path to the PGM file"),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "pgm_ascii",
			Description: "Render a PGM file as ASCII art. Dark pixels map to the first ramp character.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty("Absolute path to the PGM file"),
					"width": map[string]interface{}{
						"type":        "integer",
						"description": "Target width in characters. Default 80",
						"default":     80,
					},
					"ramp": map[string]interface{}{
						"type":        "string",
						"description": "Characters from darkest to lightest. Default \"@%#*+=-:. \"",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "pgm_process",
			Description: "Run the processing pipeline on a PGM file: decode, ASCII preview, statistics, invert, threshold, contrast stretch, ASCII preview, encode. Stages always run in that order; flags only enable them.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"input":  pathProperty("Absolute path to the source PGM file"),
					"output": pathProperty("Absolute path for the processed PGM file"),
					"invert": map[string]interface{}{
						"type":        "boolean",
						"description": "Apply inversion",
					},
					"threshold": map[string]interface{}{
						"type":        "integer",
						"description": "Apply thresholding at this value (0-255)",
						"minimum":     0,
						"maximum":     255,
					},
					"contrast": map[string]interface{}{
						"type":        "boolean",
						"description": "Apply contrast stretching",
					},
					"stats": map[string]interface{}{
						"type":        "boolean",
						"description": "Include statistics of the decoded image in the result",
					},
					"ascii": map[string]interface{}{
						"type":        "boolean",
						"description": "Include ASCII previews before and after the transforms",
					},
					"ascii_width": map[string]interface{}{
						"type":        "integer",
						"description": "ASCII preview width in characters. Default 80",
						"default":     80,
					},
					"ramp": map[string]interface{}{
						"type":        "string",
						"description": "ASCII ramp, darkest character first",
					},
					"little_endian": map[string]interface{}{
						"type":        "boolean",
						"description": "Read 16-bit samples as little-endian, the host byte order of x86 and arm64",
					},
					"export":    pathProperty("Optional extra copy in the format named by its extension (png, jpg, gif, tif, bmp)"),
					"histogram": pathProperty("Optional path for a histogram image of the result"),
					"export_scale": map[string]interface{}{
						"type":        "number",
						"description": "Scale factor for the exported copy. Default 1.0",
						"default":     1.0,
					},
				},
				"required": []string{"input", "output"},
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
