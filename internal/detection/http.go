package detection

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"sort"
	"strings"
	"time"
)

// HTTPModel calls a model served behind an HTTP inference endpoint. The image
// is posted as a multipart "file" field (PNG) and the response is JSON.
type HTTPModel struct {
	url    string
	client *http.Client
}

// NewHTTPModel creates a client for the inference endpoint at url. A zero
// timeout leaves requests bounded only by the caller's context.
func NewHTTPModel(url string, timeout time.Duration) *HTTPModel {
	return &HTTPModel{
		url:    strings.TrimRight(url, "/"),
		client: &http.Client{Timeout: timeout},
	}
}

// URL returns the inference endpoint.
func (m *HTTPModel) URL() string { return m.url }

func (m *HTTPModel) post(ctx context.Context, img image.Image, query string, out interface{}) error {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", "image.png")
	if err != nil {
		return fmt.Errorf("create form file: %w", err)
	}
	if err := png.Encode(part, img); err != nil {
		return fmt.Errorf("encode image: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("close multipart body: %w", err)
	}

	target := m.url
	if query != "" {
		target += "?" + query
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("inference failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// CheckHealth issues GET <url>/health and expects 200.
func (m *HTTPModel) CheckHealth(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.url+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := m.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("model service unhealthy: %d", resp.StatusCode)
	}
	return nil
}

type wireDetection struct {
	BBox       [4]float64    `json:"bbox"`
	Confidence float64       `json:"confidence"`
	ClassID    int           `json:"class_id"`
	ClassName  string        `json:"class_name"`
	Mask       *InstanceMask `json:"mask,omitempty"`
}

type wireDetections struct {
	Detections []wireDetection `json:"detections"`
	Masks      []InstanceMask  `json:"masks,omitempty"`
}

// HTTPDetector is a Detector backed by an HTTPModel.
type HTTPDetector struct {
	*HTTPModel
}

// NewHTTPDetector creates a detector client for url.
func NewHTTPDetector(url string, timeout time.Duration) *HTTPDetector {
	return &HTTPDetector{HTTPModel: NewHTTPModel(url, timeout)}
}

// Detect posts img and normalizes the response. Invalid instance masks are
// dropped rather than failing the call.
func (d *HTTPDetector) Detect(ctx context.Context, img image.Image) (*Detections, error) {
	var wire wireDetections
	if err := d.post(ctx, img, "", &wire); err != nil {
		return nil, err
	}

	out := &Detections{Candidates: make([]Candidate, 0, len(wire.Detections))}
	for _, w := range wire.Detections {
		c := Candidate{
			Box:        Box{X1: w.BBox[0], Y1: w.BBox[1], X2: w.BBox[2], Y2: w.BBox[3]},
			Confidence: w.Confidence,
			ClassID:    w.ClassID,
			ClassName:  w.ClassName,
		}
		if w.Mask.Valid() {
			c.Mask = w.Mask
		}
		out.Candidates = append(out.Candidates, c)
	}
	for i := range wire.Masks {
		if wire.Masks[i].Valid() {
			out.Masks = append(out.Masks, wire.Masks[i])
		}
	}
	return out, nil
}

// HTTPClassifier is a Classifier backed by an HTTPModel.
type HTTPClassifier struct {
	*HTTPModel
}

// NewHTTPClassifier creates a classifier client for url.
func NewHTTPClassifier(url string, timeout time.Duration) *HTTPClassifier {
	return &HTTPClassifier{HTTPModel: NewHTTPModel(url, timeout)}
}

// Classify posts img with a top_k query parameter and returns the
// predictions sorted by probability, truncated to topK.
func (c *HTTPClassifier) Classify(ctx context.Context, img image.Image, topK int) ([]Prediction, error) {
	var wire struct {
		Predictions []Prediction `json:"predictions"`
	}
	if err := c.post(ctx, img, fmt.Sprintf("top_k=%d", topK), &wire); err != nil {
		return nil, err
	}
	preds := wire.Predictions
	sort.SliceStable(preds, func(i, j int) bool { return preds[i].Probability > preds[j].Probability })
	if topK > 0 && len(preds) > topK {
		preds = preds[:topK]
	}
	return preds, nil
}
