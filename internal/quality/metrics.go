package quality

import (
	"errors"
	"math"
	"strings"
)

var (
	// ErrInsufficientPixels means the mask holds too few pixels to score.
	ErrInsufficientPixels = errors.New("too few foreground pixels to analyze")

	// ErrGLCMUnavailable means too few foreground pixel pairs exist for a
	// co-occurrence matrix.
	ErrGLCMUnavailable = errors.New("too few pixel pairs for GLCM")
)

// Quality categories.
const (
	Excellent = "Excellent"
	Good      = "Good"
	Fair      = "Fair"
	Poor      = "Poor"
)

// Metrics are the quality scores of one pepper, each in [0,100].
type Metrics struct {
	ColorUniformity float64 `json:"color_uniformity"`
	SizeConsistency float64 `json:"size_consistency"`
	SurfaceQuality  float64 `json:"surface_quality"`
	RipenessLevel   float64 `json:"ripeness_level"`
	OverallQuality  float64 `json:"overall_quality"`
	Category        string  `json:"quality_category"`
}

// Overall weights surface highest.
func Overall(color, size, surface, ripeness float64) float64 {
	return 0.25*color + 0.25*size + 0.30*surface + 0.20*ripeness
}

// CategoryOf maps an overall score to its band.
func CategoryOf(overall float64) string {
	switch {
	case overall >= 80:
		return Excellent
	case overall >= 60:
		return Good
	case overall >= 40:
		return Fair
	default:
		return Poor
	}
}

// newMetrics clamps and rounds the sub-scores and derives the overall score
// and category from them.
func newMetrics(color, size, surface, ripeness float64) *Metrics {
	m := &Metrics{
		ColorUniformity: score(color),
		SizeConsistency: score(size),
		SurfaceQuality:  score(surface),
		RipenessLevel:   score(ripeness),
	}
	m.OverallQuality = score(Overall(m.ColorUniformity, m.SizeConsistency, m.SurfaceQuality, m.RipenessLevel))
	m.Category = CategoryOf(m.OverallQuality)
	return m
}

// score clamps v to [0,100] and rounds to one decimal.
func score(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Round(clamp(v, 0, 100)*10) / 10
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// StrategyError records why one strategy could not score a pepper.
type StrategyError struct {
	Strategy string
	Err      error
}

func (e *StrategyError) Error() string { return e.Strategy + ": " + e.Err.Error() }
func (e *StrategyError) Unwrap() error { return e.Err }

// AnalyzeError is returned when every strategy failed.
type AnalyzeError struct {
	Attempts []*StrategyError
}

func (e *AnalyzeError) Error() string {
	parts := make([]string, len(e.Attempts))
	for i, a := range e.Attempts {
		parts[i] = a.Error()
	}
	return "quality analysis failed: " + strings.Join(parts, "; ")
}

func (e *AnalyzeError) Unwrap() []error {
	errs := make([]error, len(e.Attempts))
	for i, a := range e.Attempts {
		errs[i] = a
	}
	return errs
}
