package derive

import "math"

// BasePricePerKg is the mid-range retail price in PHP.
const BasePricePerKg = 180.0

var grades = []string{"A", "B", "C"}

var gradeDescriptions = map[string]string{
	"A": "Retail quality, supermarket grade",
	"B": "Commercial grade, processing",
	"C": "Lower grade, food service",
}

var marketAdvice = map[string][]string{
	"A": {
		"Ideal for major supermarket chains",
		"Good for wet markets and palengke",
		"Suitable for food service industry",
		"Consider vacuum packaging for longer shelf life",
	},
	"B": {
		"Perfect for food processing companies",
		"Good for wholesale markets (Divisoria, etc.)",
		"Suitable for sari-sari stores",
		"Consider bulk sales to restaurants",
	},
	"C": {
		"Focus on processing markets (sauces, pickles)",
		"Suitable for local food manufacturers",
		"Good for institutional buyers (schools, hospitals)",
		"Consider value-added products (dried, powdered)",
	},
}

// MarketGrade is the grading outcome with a price estimate.
type MarketGrade struct {
	Grade       string  `json:"grade"`
	Score       float64 `json:"score"`
	Downgraded  int     `json:"downgraded_steps"`
	Description string  `json:"description"`

	PricePerKg float64  `json:"estimated_price_per_kg"`
	Currency   string   `json:"currency"`
	Advice     []string `json:"market_recommendations"`
}

// GradeMarket weights ripeness, surface and size into a score, bands it into
// A/B/C and applies the severity downgrade. The price scales the base price
// by overall quality, variety value and ripeness.
func GradeMarket(ripeness, surface, size, overall float64, sev Severity, varietyValue float64) MarketGrade {
	score := 0.45*ripeness + 0.40*surface + 0.15*size
	idx := 2
	switch {
	case score >= 75:
		idx = 0
	case score >= 55:
		idx = 1
	}
	before := idx
	idx = min(idx+sev.GradePenalty(), len(grades)-1)
	g := grades[idx]

	price := BasePricePerKg * unit(overall) * varietyValue * (0.7 + 0.4*unit(ripeness))
	return MarketGrade{
		Grade:       g,
		Score:       round1(score),
		Downgraded:  idx - before,
		Description: gradeDescriptions[g],
		PricePerKg:  math.Round(price*100) / 100,
		Currency:    "PHP",
		Advice:      marketAdvice[g],
	}
}
