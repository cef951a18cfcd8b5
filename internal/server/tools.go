package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name:        "locate_patterns",
			Description: "Find every instance of the known reference patterns in a target image. Returns validated bounding boxes with confidence, inlier counts, dominant colors and homographies, grouped by pattern name.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"target_path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the target image",
					},
					"reference_dir": map[string]interface{}{
						"type":        "string",
						"description": "Directory of reference pattern images. Defaults to the configured directory.",
					},
					"exclusions": map[string]interface{}{
						"type":        "array",
						"description": "Regions to exclude from localization, each {x, y, width, height}",
						"items": map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"x":      map[string]interface{}{"type": "integer"},
								"y":      map[string]interface{}{"type": "integer"},
								"width":  map[string]interface{}{"type": "integer"},
								"height": map[string]interface{}{"type": "integer"},
							},
							"required": []string{"x", "y", "width", "height"},
						},
					},
					"text_exclusions": map[string]interface{}{
						"type":        "boolean",
						"description": "Detect text regions automatically and exclude them. Default false",
						"default":     false,
					},
				},
				"required": []string{"target_path"},
			},
		},
		{
			Name:        "detect_text_exclusions",
			Description: "Detect text regions in an image to use as localization exclusions. Uses Tesseract OCR when available, or an edge-density heuristic.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
					"method": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"ocr", "heuristic"},
						"description": "Detection method. Defaults to the configured one.",
					},
					"min_confidence": map[string]interface{}{
						"type":        "number",
						"description": "Minimum detection confidence (0-1). Defaults to the configured floor.",
					},
					"pattern_names": map[string]interface{}{
						"type":        "array",
						"description": "Restrict OCR exclusions to words resembling these names",
						"items":       map[string]interface{}{"type": "string"},
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "dominant_color",
			Description: "Compute the dominant color of an image by k-means clustering in Lab space. Returns RGB components and a hex string.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_info",
			Description: "Load an image file and return its dimensions and format. Sets this as the active image for subsequent operations.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "list_references",
			Description: "List the loaded reference patterns with their sizes and feature counts.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"reference_dir": map[string]interface{}{
						"type":        "string",
						"description": "Directory of reference pattern images. Defaults to the configured directory.",
					},
				},
			},
		},
	}
}

// handleToolsList responds to a tools/list request
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
