package detection

import (
	"context"
	"image"
)

// Detector wraps an object detection model. Implementations must not retain
// img after returning.
type Detector interface {
	Detect(ctx context.Context, img image.Image) (*Detections, error)
}

// DetectorFunc adapts a function to the Detector interface.
type DetectorFunc func(ctx context.Context, img image.Image) (*Detections, error)

// Detect calls f.
func (f DetectorFunc) Detect(ctx context.Context, img image.Image) (*Detections, error) {
	return f(ctx, img)
}

// Classifier wraps a general-purpose image classifier over a broad everyday
// object vocabulary.
type Classifier interface {
	// Classify returns up to topK predictions, highest probability first.
	Classify(ctx context.Context, img image.Image, topK int) ([]Prediction, error)
}

// ClassifierFunc adapts a function to the Classifier interface.
type ClassifierFunc func(ctx context.Context, img image.Image, topK int) ([]Prediction, error)

// Classify calls f.
func (f ClassifierFunc) Classify(ctx context.Context, img image.Image, topK int) ([]Prediction, error) {
	return f(ctx, img, topK)
}
