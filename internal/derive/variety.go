package derive

import (
	"math"
	"sort"
	"strings"
)

type varietyProfile struct {
	name        string
	shapeMin    float64
	shapeMax    float64
	sizeMin     float64
	sizeMax     float64
	colors      string
	marketValue float64
}

// varieties are matched in this order; the first best score wins ties.
var varieties = []varietyProfile{
	{"california_wonder", 0.8, 1.2, 80, 120, "green_to_red", 1.0},
	{"king_arthur", 0.9, 1.3, 100, 140, "deep_red", 1.2},
	{"yellow_bell", 0.85, 1.15, 70, 110, "yellow", 1.1},
	{"orange_bell", 0.8, 1.1, 75, 115, "orange", 1.15},
	{"mini_sweet", 0.7, 1.0, 30, 60, "mixed", 1.3},
}

// VarietyScore is one candidate variety.
type VarietyScore struct {
	Name       string  `json:"variety"`
	Confidence float64 `json:"confidence"`
}

// Variety is the predicted cultivar.
type Variety struct {
	Name        string  `json:"predicted_variety"`
	Confidence  float64 `json:"confidence"`
	ColorType   string  `json:"color_type"`
	ShapeRatio  float64 `json:"shape_ratio"`
	SizeIndex   float64 `json:"size_index"`
	MarketValue float64 `json:"market_value"`

	Alternatives []VarietyScore `json:"alternatives,omitempty"`
}

// PredictVariety scores each known variety on shape ratio (height/width of
// the crop), a size index from the crop dimensions, color and overall
// quality.
func PredictVariety(colorVariety string, width, height int, overall float64) Variety {
	shape := 1.0
	if width > 0 {
		shape = float64(height) / float64(width)
	}
	size := math.Sqrt(float64(width*height)) / 10
	color := strings.ToLower(colorVariety)

	scores := make([]VarietyScore, len(varieties))
	best := 0
	for i, v := range varieties {
		var s float64
		if shape >= v.shapeMin && shape <= v.shapeMax {
			s += 30
		}
		if size >= v.sizeMin && size <= v.sizeMax {
			s += 25
		}
		if v.colors == "mixed" || (color != "mixed" && strings.Contains(v.colors, color)) {
			s += 35
		}
		s += overall * 0.1
		scores[i] = VarietyScore{Name: v.name, Confidence: round1(math.Min(100, s))}
		if scores[i].Confidence > scores[best].Confidence {
			best = i
		}
	}

	out := Variety{
		Name:        varieties[best].name,
		Confidence:  scores[best].Confidence,
		ColorType:   color,
		ShapeRatio:  math.Round(shape*100) / 100,
		SizeIndex:   round1(size),
		MarketValue: varieties[best].marketValue,
	}
	var alts []VarietyScore
	for i, s := range scores {
		if i != best && s.Confidence > 30 {
			alts = append(alts, s)
		}
	}
	sort.SliceStable(alts, func(i, j int) bool { return alts[i].Confidence > alts[j].Confidence })
	if len(alts) > 2 {
		alts = alts[:2]
	}
	out.Alternatives = alts
	return out
}
