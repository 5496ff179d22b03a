package quality

import (
	"errors"
	"math"

	"github.com/ironsheep/pepper-quality-mcp/internal/detection"
	"github.com/ironsheep/pepper-quality-mcp/internal/imaging"
)

// HeuristicStrategy is a weighted-rule scorer used when CVStrategy fails.
// Its overall score uses its own weights and rule adjustments, so it is not
// comparable one-to-one with CVStrategy's overall score.
type HeuristicStrategy struct {
	MinPixels int
}

func (s *HeuristicStrategy) Name() string { return "heuristic" }

func (s *HeuristicStrategy) Analyze(in *Input) (*Metrics, error) {
	if err := checkCrop(in.Crop, s.MinPixels); err != nil {
		return nil, err
	}
	px := foreground(in.Crop)

	hues := make([]float64, len(px))
	var green, yellow, red int
	for i, c := range px {
		h := imaging.RGBToHSV(c.R, c.G, c.B).H
		hues[i] = h
		switch {
		case h <= 15 || h >= 165:
			red++
		case h >= 35 && h <= 85:
			green++
		case h >= 15 && h < 35:
			yellow++
		}
	}
	color := 100 - 2*circularHueStd(hues)

	c, ok := detection.LargestContour(in.Crop.Mask)
	if !ok || c.Perimeter == 0 {
		return nil, errors.New("mask has no measurable outline")
	}
	size := math.Min(100, c.Circularity()*100)

	edges := imaging.Canny(in.Crop.Image, 50, 150)
	surface := 100 - 500*imaging.EdgeFraction(edges, imaging.Erode(in.Crop.Mask, 1))

	n := float64(len(px))
	var ripeness float64
	switch rp, yp := float64(red)/n, float64(yellow)/n; {
	case rp > 0.6:
		ripeness = 60 + (rp-0.6)*100
	case yp > 0.4:
		ripeness = 40 + yp*50
	default:
		ripeness = float64(green) / n * 40
	}

	m := &Metrics{
		ColorUniformity: score(color),
		SizeConsistency: score(size),
		SurfaceQuality:  score(surface),
		RipenessLevel:   score(ripeness),
	}
	m.OverallQuality = score(inferHeuristic(m))
	m.Category = CategoryOf(m.OverallQuality)
	return m, nil
}

// inferHeuristic weights the sub-scores and applies the first matching rule:
// all high, weak surface, extreme ripeness.
func inferHeuristic(m *Metrics) float64 {
	weighted := 0.25*m.ColorUniformity + 0.20*m.SizeConsistency + 0.30*m.SurfaceQuality + 0.25*m.RipenessLevel
	switch {
	case m.ColorUniformity > 80 && m.SizeConsistency > 80 && m.SurfaceQuality > 80 && m.RipenessLevel > 80:
		weighted += 10
	case m.SurfaceQuality < 30:
		weighted -= 20
	case m.RipenessLevel < 20 || m.RipenessLevel > 90:
		weighted -= 10
	}
	return clamp(weighted, 0, 100)
}
