package detection

import (
	"image"
	"math"
)

// Candidate is one raw detection as returned by a detector.
type Candidate struct {
	Box        Box     `json:"bbox"`
	Confidence float64 `json:"confidence"`
	ClassID    int     `json:"class_id"`
	ClassName  string  `json:"class_name"`

	// Mask is the instance segmentation for this detection, when the model
	// produces one.
	Mask *InstanceMask `json:"-"`
}

// InstanceMask is a per-pixel foreground confidence map at the detector's
// output resolution, row-major with values in [0,1].
type InstanceMask struct {
	Width  int       `json:"width"`
	Height int       `json:"height"`
	Data   []float32 `json:"data"`
}

// Valid reports whether the mask has a consistent, non-empty shape.
func (m *InstanceMask) Valid() bool {
	return m != nil && m.Width > 0 && m.Height > 0 && len(m.Data) == m.Width*m.Height
}

// Gray renders the confidence map as an 8-bit image (0..1 → 0..255).
func (m *InstanceMask) Gray() *image.Gray {
	g := image.NewGray(image.Rect(0, 0, m.Width, m.Height))
	for i, v := range m.Data {
		g.Pix[(i/m.Width)*g.Stride+i%m.Width] = uint8(math.Round(math.Max(0, math.Min(1, float64(v))) * 255))
	}
	return g
}

// Detections is the output of one detector invocation.
type Detections struct {
	Candidates []Candidate

	// Masks are instance masks not tied to a specific candidate; the mask
	// extractor matches them to candidates by overlap.
	Masks []InstanceMask
}

// ForbiddenZone is a region a general-purpose detector confidently labelled
// as a specific non-pepper object.
type ForbiddenZone struct {
	Box        Box     `json:"bbox"`
	ClassName  string  `json:"class_name"`
	Confidence float64 `json:"confidence"`
}

// Prediction is one label from an image classifier.
type Prediction struct {
	Label       string  `json:"label"`
	Probability float64 `json:"probability"`
}
