package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ironsheep/pepper-quality-mcp/internal/detection"
	"github.com/ironsheep/pepper-quality-mcp/internal/imaging"
	"github.com/ironsheep/pepper-quality-mcp/internal/imaging/imagetest"
	"github.com/ironsheep/pepper-quality-mcp/internal/pipeline"
)

// writePNG saves img in a temp dir and returns its path.
func writePNG(t *testing.T, img image.Image) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "peppers.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create file: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return path
}

// pepperPhoto draws one red pepper and returns the file with its detection box.
func pepperPhoto(t *testing.T) (string, image.Rectangle) {
	t.Helper()

	img := imagetest.Canvas(220, 190, imagetest.White)
	drawn := imagetest.Pepper(img, image.Rect(45, 35, 165, 155), imagetest.PepperRed, 6)
	return writePNG(t, img), drawn.Inset(-5)
}

func callTool(t *testing.T, s *Server, name string, args map[string]interface{}) *MCPResponse {
	t.Helper()

	params, err := json.Marshal(map[string]interface{}{"name": name, "arguments": args})
	if err != nil {
		t.Fatalf("marshal params: %v", err)
	}
	resp := s.handleRequest(context.Background(), &MCPRequest{JSONRPC: "2.0", ID: 1, Method: "tools/call", Params: params})
	if resp == nil {
		t.Fatal("handleRequest returned nil")
	}
	return resp
}

// decodeResult unmarshals the text content of a successful tool response.
func decodeResult(t *testing.T, resp *MCPResponse, v interface{}) {
	t.Helper()

	if resp.Error != nil {
		t.Fatalf("Unexpected error: %+v", resp.Error)
	}
	result := resp.Result.(map[string]interface{})
	content := result["content"].([]map[string]interface{})
	if len(content) != 1 || content[0]["type"] != "text" {
		t.Fatalf("unexpected content: %v", content)
	}
	if err := json.Unmarshal([]byte(content[0]["text"].(string)), v); err != nil {
		t.Fatalf("failed to decode tool result: %v", err)
	}
}

func decodePNG(t *testing.T, enc imaging.EncodedImage) image.Image {
	t.Helper()

	if enc.MimeType != "image/png" {
		t.Errorf("MimeType: got %s, want image/png", enc.MimeType)
	}
	data, err := base64.StdEncoding.DecodeString(enc.ImageBase64)
	if err != nil {
		t.Fatalf("invalid base64: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("invalid png: %v", err)
	}
	return img
}

func TestHandleToolsCall_ImageLoad(t *testing.T) {
	s := newTestServer(t)
	path := writePNG(t, imagetest.Canvas(100, 80, imagetest.Green))

	var info imaging.ImageInfo
	decodeResult(t, callTool(t, s, "image_load", map[string]interface{}{"path": path}), &info)

	if info.Width != 100 || info.Height != 80 {
		t.Errorf("size: got %dx%d, want 100x80", info.Width, info.Height)
	}
	if info.Format != "png" {
		t.Errorf("Format: got %s, want png", info.Format)
	}
	if s.cache.Len() != 1 {
		t.Errorf("cache: got %d entries, want 1", s.cache.Len())
	}
}

func TestHandleToolsCall_ImageDimensions(t *testing.T) {
	s := newTestServer(t)
	path := writePNG(t, imagetest.Canvas(200, 150, imagetest.White))

	var dims imaging.DimensionsResult
	decodeResult(t, callTool(t, s, "image_dimensions", map[string]interface{}{"path": path}), &dims)

	if dims.Width != 200 || dims.Height != 150 {
		t.Errorf("dimensions: got %dx%d, want 200x150", dims.Width, dims.Height)
	}
}

func TestHandleToolsCall_NonExistentFile(t *testing.T) {
	s := newTestServer(t)

	for _, tool := range []string{"image_load", "pepper_analyze", "pepper_annotate"} {
		resp := callTool(t, s, tool, map[string]interface{}{"path": "/nonexistent/image.png"})
		if resp.Error == nil {
			t.Errorf("%s: expected error for missing file", tool)
			continue
		}
		if resp.Error.Code != -32000 {
			t.Errorf("%s: error code got %d, want -32000", tool, resp.Error.Code)
		}
	}
}

func TestHandleToolsCall_UnknownTool(t *testing.T) {
	s := newTestServer(t)
	resp := callTool(t, s, "image_ocr_full", map[string]interface{}{"path": "/x.png"})

	if resp.Error == nil {
		t.Fatal("expected error for unknown tool")
	}
	if data, _ := resp.Error.Data.(string); !strings.Contains(data, "unknown tool") {
		t.Errorf("error data: got %v", resp.Error.Data)
	}
}

func TestHandleToolsCall_InvalidParams(t *testing.T) {
	s := newTestServer(t)
	resp := s.handleRequest(context.Background(), &MCPRequest{JSONRPC: "2.0", ID: 1, Method: "tools/call", Params: json.RawMessage(`[1,2]`)})

	if resp.Error == nil || resp.Error.Code != -32602 {
		t.Fatalf("expected -32602, got %+v", resp.Error)
	}
}

func TestHandleToolsCall_PepperAnalyze(t *testing.T) {
	path, box := pepperPhoto(t)
	s := newTestServer(t, box)

	var result pipeline.AnalysisResult
	decodeResult(t, callTool(t, s, "pepper_analyze", map[string]interface{}{"path": path}), &result)

	if len(result.Peppers) != 1 {
		t.Fatalf("peppers: got %d, want 1 (rejections %+v)", len(result.Peppers), result.Rejections)
	}
	p := result.Peppers[0]
	if p.PepperID != "pepper_1" {
		t.Errorf("PepperID: got %s", p.PepperID)
	}
	if p.Quality == nil || p.Quality.OverallQuality <= 0 {
		t.Errorf("quality missing: %+v", p.Quality)
	}
	if result.Summary.PeppersFound != 1 {
		t.Errorf("summary: got %+v", result.Summary)
	}

	// A second call is served from the result cache.
	var again pipeline.AnalysisResult
	decodeResult(t, callTool(t, s, "pepper_analyze", map[string]interface{}{"path": path}), &again)
	if again.AnalysisID != result.AnalysisID {
		t.Errorf("cached AnalysisID: got %s, want %s", again.AnalysisID, result.AnalysisID)
	}

	var fresh pipeline.AnalysisResult
	decodeResult(t, callTool(t, s, "pepper_analyze", map[string]interface{}{"path": path, "refresh": true}), &fresh)
	if fresh.AnalysisID == result.AnalysisID {
		t.Error("refresh should re-run the analysis")
	}
}

func TestHandleToolsCall_PepperAnalyzeDetectorDown(t *testing.T) {
	down := detection.DetectorFunc(func(context.Context, image.Image) (*detection.Detections, error) {
		return nil, os.ErrDeadlineExceeded
	})
	pc, err := pipeline.NewContext(pipeline.WithDetector(down))
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}
	s := New(pc)
	path := writePNG(t, imagetest.Canvas(60, 60, imagetest.White))

	resp := callTool(t, s, "pepper_analyze", map[string]interface{}{"path": path})
	if resp.Error == nil {
		t.Fatal("expected error when the detector is down")
	}
	if data, _ := resp.Error.Data.(string); !strings.Contains(data, "detector unavailable") {
		t.Errorf("error data: got %v", resp.Error.Data)
	}
	if _, ok := s.results.get(path); ok {
		t.Error("failed analyses must not be cached")
	}
}

func TestHandleToolsCall_PepperAnnotate(t *testing.T) {
	path, box := pepperPhoto(t)
	s := newTestServer(t, box)

	var enc imaging.EncodedImage
	decodeResult(t, callTool(t, s, "pepper_annotate", map[string]interface{}{"path": path}), &enc)

	img := decodePNG(t, enc)
	if img.Bounds().Dx() != 220 || img.Bounds().Dy() != 190 {
		t.Fatalf("annotated size: got %v", img.Bounds())
	}
	// The bottom edge of the box is drawn and is no longer white.
	r, g, b, _ := img.At((box.Min.X+box.Max.X)/2, box.Max.Y-1).RGBA()
	if r == 0xffff && g == 0xffff && b == 0xffff {
		t.Error("expected a box outline on the pepper's bottom edge")
	}

	var half imaging.EncodedImage
	decodeResult(t, callTool(t, s, "pepper_annotate", map[string]interface{}{"path": path, "scale": 0.5}), &half)
	if half.Width != 110 || half.Height != 95 {
		t.Errorf("scaled size: got %dx%d, want 110x95", half.Width, half.Height)
	}
}

func TestAnnotations(t *testing.T) {
	r := &pipeline.AnalysisResult{
		Peppers: []pipeline.ValidatedPepper{
			{Candidate: detection.Candidate{Box: detection.Box{X1: 0, Y1: 0, X2: 10, Y2: 10}}},
		},
		Rejections: []pipeline.Rejection{{Box: detection.Box{X1: 20, Y1: 20, X2: 30, Y2: 30}}},
	}

	got := annotations(r, false)
	if len(got) != 1 || got[0].Label != "#1" || got[0].Color != unscoredColor {
		t.Errorf("unscored pepper: got %+v", got)
	}
	got = annotations(r, true)
	if len(got) != 2 || got[0].Label != "X" || got[0].Color != rejectedColor {
		t.Errorf("with rejections: got %+v", got)
	}
}

func TestHandleToolsCall_PepperCrop(t *testing.T) {
	path, box := pepperPhoto(t)
	s := newTestServer(t, box)

	var enc imaging.EncodedImage
	decodeResult(t, callTool(t, s, "pepper_crop", map[string]interface{}{"path": path, "pepper_id": "pepper_1"}), &enc)

	img := decodePNG(t, enc)
	if img.Bounds().Dx() > box.Dx()+20 || img.Bounds().Dy() > box.Dy()+20 {
		t.Errorf("crop %v is larger than the padded box %v", img.Bounds(), box)
	}
	// Corners are background and fully transparent.
	if _, _, _, a := img.At(0, 0).RGBA(); a != 0 {
		t.Errorf("corner alpha: got %d, want 0", a)
	}

	resp := callTool(t, s, "pepper_crop", map[string]interface{}{"path": path, "pepper_id": "pepper_9"})
	if resp.Error == nil {
		t.Fatal("expected error for unknown pepper")
	}
}
