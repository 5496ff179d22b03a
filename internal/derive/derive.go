package derive

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ironsheep/pepper-quality-mcp/internal/quality"
)

// ErrMissingInput means the quality metrics or ripeness estimate are absent.
var ErrMissingInput = errors.New("derive needs quality metrics and a ripeness estimate")

// Input is everything the estimates depend on.
type Input struct {
	Metrics  *quality.Metrics
	Ripeness *quality.RipenessEstimate

	// Pixels is the mask's foreground count; Width and Height are the
	// tight crop's size.
	Pixels int
	Width  int
	Height int
}

// Estimates are the derived estimates of one pepper.
type Estimates struct {
	Severity    Severity    `json:"defect_severity"`
	ShelfLife   ShelfLife   `json:"shelf_life"`
	Nutrition   Nutrition   `json:"nutrition"`
	MarketGrade MarketGrade `json:"market_grade"`
	Usage       Usage       `json:"usage"`
	Variety     Variety     `json:"variety"`
	Advice      []string    `json:"advice"`
}

// Derive computes all estimates.
func Derive(in Input) (*Estimates, error) {
	if in.Metrics == nil || in.Ripeness == nil {
		return nil, ErrMissingInput
	}
	m, r := in.Metrics, in.Ripeness
	sev := SeverityOf(m.SurfaceQuality)

	e := &Estimates{
		Severity:  sev,
		ShelfLife: EstimateShelfLife(m.RipenessLevel, m.SurfaceQuality, sev),
		Nutrition: EstimateNutrition(r.ColorVariety, m.OverallQuality, m.RipenessLevel, sev, in.Pixels),
		Usage:     RecommendUsage(m.RipenessLevel, m.SurfaceQuality, r.ColorVariety, sev, r.Bands[quality.BandDarkSpot]),
		Variety:   PredictVariety(r.ColorVariety, in.Width, in.Height, m.OverallQuality),
	}
	e.MarketGrade = GradeMarket(m.RipenessLevel, m.SurfaceQuality, m.SizeConsistency, m.OverallQuality, sev, e.Variety.MarketValue)
	e.Advice = advise(r, e)
	return e, nil
}

func advise(r *quality.RipenessEstimate, e *Estimates) []string {
	var out []string
	switch d := r.DaysToOptimalHarvest; {
	case d > 5:
		out = append(out, fmt.Sprintf("Wait %.1f days for optimal harvest", d))
	case d > 0:
		out = append(out, "Approaching optimal harvest time")
	default:
		out = append(out, "Harvest immediately for best quality")
	}
	out = append(out, fmt.Sprintf("Optimal storage can extend shelf life to %.1f days", e.ShelfLife.OptimalStorage.Days))
	out = append(out, fmt.Sprintf("Variety: %s", title(e.Variety.Name)))
	if e.Nutrition.Per100g.VitaminC > 120 {
		out = append(out, "High vitamin C content - market as healthy choice")
	}
	if e.Usage.DiseaseSuspected {
		out = append(out, "Possible disease - inspect before sale")
	}
	return out
}

// title turns "king_arthur" into "King Arthur".
func title(name string) string {
	words := strings.Split(name, "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}
