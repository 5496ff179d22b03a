package server

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ironsheep/pepper-quality-mcp/internal/imaging"
	"github.com/ironsheep/pepper-quality-mcp/internal/logger"
	"github.com/ironsheep/pepper-quality-mcp/internal/pipeline"
	"github.com/ironsheep/pepper-quality-mcp/internal/quality"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_load", "pepper_analyze").
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
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		logger.Debug("server", "tool %s failed: %v", params.Name, err)
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
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Basic Image Information
	case "image_load":
		return s.handleImageLoad(args)
	case "image_dimensions":
		return s.handleImageDimensions(args)

	// Pepper Analysis
	case "pepper_analyze":
		return s.handlePepperAnalyze(ctx, args)
	case "pepper_annotate":
		return s.handlePepperAnnotate(ctx, args)
	case "pepper_crop":
		return s.handlePepperCrop(ctx, args)

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

// === Basic Image Information Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

func (s *Server) handleImageDimensions(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.GetDimensions(s.cache, a.Path)
}

// === Pepper Analysis Handlers ===

type pepperAnalyzeArgs struct {
	Path    string `json:"path"`
	Refresh bool   `json:"refresh"`
}

func (s *Server) handlePepperAnalyze(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a pepperAnalyzeArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Refresh {
		s.cache.Evict(a.Path)
		s.results.evict(a.Path)
	}
	return s.analyze(ctx, a.Path)
}

// analyze returns the cached result for path or runs the pipeline on it.
func (s *Server) analyze(ctx context.Context, path string) (*pipeline.AnalysisResult, error) {
	if path == "" {
		return nil, fmt.Errorf("path is required")
	}
	if r, ok := s.results.get(path); ok {
		return r, nil
	}
	img, err := s.cache.Load(path)
	if err != nil {
		return nil, err
	}
	r, err := pipeline.Analyze(ctx, s.pipeline, img)
	if err != nil {
		return nil, err
	}
	s.results.put(path, r)
	return r, nil
}

type pepperAnnotateArgs struct {
	Path         string  `json:"path"`
	ShowRejected bool    `json:"show_rejected"`
	Scale        float64 `json:"scale"`
}

// Box colors by quality category.
var categoryColors = map[string]string{
	quality.Excellent: "#22C55E",
	quality.Good:      "#84CC16",
	quality.Fair:      "#F59E0B",
	quality.Poor:      "#EF4444",
}

const (
	unscoredColor = "#3B82F6"
	rejectedColor = "#6B7280"
)

func (s *Server) handlePepperAnnotate(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a pepperAnnotateArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Scale == 0 {
		a.Scale = 1.0
	}
	r, err := s.analyze(ctx, a.Path)
	if err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return imaging.EncodePNG(imaging.Annotate(img, annotations(r, a.ShowRejected)), a.Scale)
}

// annotations labels each pepper "#N score C", C being the category initial.
func annotations(r *pipeline.AnalysisResult, withRejected bool) []imaging.Annotation {
	var out []imaging.Annotation
	if withRejected {
		for _, rej := range r.Rejections {
			out = append(out, imaging.Annotation{Rect: rej.Box.Rect(), Label: "X", Color: rejectedColor})
		}
	}
	for i, p := range r.Peppers {
		a := imaging.Annotation{Rect: p.Candidate.Box.Rect(), Label: fmt.Sprintf("#%d", i+1), Color: unscoredColor}
		if p.Quality != nil {
			a.Label = fmt.Sprintf("#%d %.0f %c", i+1, p.Quality.OverallQuality, p.Quality.Category[0])
			a.Color = categoryColors[p.Quality.Category]
		}
		out = append(out, a)
	}
	return out
}

type pepperCropArgs struct {
	Path     string  `json:"path"`
	PepperID string  `json:"pepper_id"`
	Scale    float64 `json:"scale"`
}

func (s *Server) handlePepperCrop(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a pepperCropArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Scale == 0 {
		a.Scale = 1.0
	}
	r, err := s.analyze(ctx, a.Path)
	if err != nil {
		return nil, err
	}
	for _, p := range r.Peppers {
		if p.PepperID == a.PepperID {
			return imaging.EncodePNG(p.Crop.Cutout, a.Scale)
		}
	}
	return nil, fmt.Errorf("no pepper %q in %s (%d found)", a.PepperID, a.Path, len(r.Peppers))
}
