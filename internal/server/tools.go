package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the image file",
	}
}

func scaleProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "number",
		"description": "Optional scale factor for the returned PNG (e.g., 0.5 to halve it). Default 1.0",
		"default":     1.0,
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Basic Image Information
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions and format. The decoded image is cached for the pepper tools.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_dimensions",
			Description: "Get the width and height of an image file.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},

		// Pepper Analysis
		{
			Name:        "pepper_analyze",
			Description: "Detect bell peppers in a photo and grade each one. Returns per-pepper quality scores (color, size, surface, ripeness, overall 0-100 and a category), ripeness stage, shelf life, nutrition, market grade, usage and variety estimates, plus every rejected candidate with its reason. Results are cached per path.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"refresh": map[string]interface{}{
						"type":        "boolean",
						"description": "Re-read the file and re-run the analysis instead of returning the cached result",
						"default":     false,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "pepper_annotate",
			Description: "Draw the analyzed peppers on the photo as labelled boxes (pepper number, overall score, category initial) and return it as base64-encoded PNG. Runs pepper_analyze first if needed.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"show_rejected": map[string]interface{}{
						"type":        "boolean",
						"description": "Also outline rejected candidates, marked X",
						"default":     false,
					},
					"scale": scaleProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "pepper_crop",
			Description: "Return one analyzed pepper cut out of the photo with a soft transparent edge, as base64-encoded PNG. Runs pepper_analyze first if needed.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"pepper_id": map[string]interface{}{
						"type":        "string",
						"description": "Pepper identifier from pepper_analyze, e.g. pepper_1",
					},
					"scale": scaleProperty(),
				},
				"required": []string{"path", "pepper_id"},
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
