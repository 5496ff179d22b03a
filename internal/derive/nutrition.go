package derive

import (
	"fmt"
	"math"
)

// Nutrients are amounts for a fixed portion. Antioxidants are relative,
// 100 being a green pepper's baseline.
type Nutrients struct {
	Calories     float64 `json:"calories"`
	VitaminC     float64 `json:"vitamin_c_mg"`
	VitaminA     float64 `json:"vitamin_a_iu"`
	Folate       float64 `json:"folate_mcg"`
	Potassium    float64 `json:"potassium_mg"`
	Fiber        float64 `json:"fiber_g"`
	Antioxidants float64 `json:"antioxidants"`
}

// Nutrition is the estimated nutritional content of one pepper.
type Nutrition struct {
	EstimatedWeightG float64   `json:"estimated_weight_g"`
	Per100g          Nutrients `json:"per_100g"`
	PerPepper        Nutrients `json:"per_pepper"`
	Highlights       []string  `json:"highlights"`
	HealthBenefits   []string  `json:"health_benefits"`
}

// baseBenefits hold for any bell pepper.
var baseBenefits = []string{
	"Supports immune system (Vitamin C)",
	"Promotes eye health (Vitamin A)",
	"Anti-inflammatory properties",
	"Supports heart health",
	"May help reduce cancer risk",
}

var baseNutrients = Nutrients{
	Calories:     31,
	VitaminC:     120,
	VitaminA:     3131,
	Folate:       10,
	Potassium:    211,
	Fiber:        2.5,
	Antioxidants: 100,
}

// EstimateWeight maps a mask's pixel count to grams, bounded to a plausible
// bell pepper weight.
func EstimateWeight(pixels int) float64 {
	return round1(math.Max(50, math.Min(200, float64(pixels)/10)))
}

// EstimateNutrition scales per-100 g base values by color, overall quality,
// ripeness and defect severity, then by the estimated weight.
func EstimateNutrition(variety string, overall, ripeness float64, sev Severity, pixels int) Nutrition {
	n := baseNutrients
	switch variety {
	case "Red":
		n.VitaminC *= 1.5
		n.VitaminA *= 2.0
		n.Antioxidants *= 1.8
	case "Yellow", "Orange":
		n.VitaminC *= 1.3
		n.VitaminA *= 1.5
		n.Antioxidants *= 1.4
	}

	retain := (0.7 + 0.3*unit(overall)) * sev.Multiplier()
	n.VitaminC *= retain * (0.8 + 0.4*unit(ripeness))
	n.VitaminA *= retain
	n.Antioxidants *= retain * (0.7 + 0.5*unit(ripeness))

	w := EstimateWeight(pixels)
	out := Nutrition{
		EstimatedWeightG: w,
		Per100g:          n.scale(1),
		PerPepper:        n.scale(w / 100),
	}
	out.Highlights = highlights(out, variety)
	out.HealthBenefits = healthBenefits(out.Per100g)
	return out
}

func (n Nutrients) scale(f float64) Nutrients {
	return Nutrients{
		Calories:     round1(n.Calories * f),
		VitaminC:     round1(n.VitaminC * f),
		VitaminA:     round1(n.VitaminA * f),
		Folate:       round1(n.Folate * f),
		Potassium:    round1(n.Potassium * f),
		Fiber:        round1(n.Fiber * f),
		Antioxidants: round1(n.Antioxidants * f),
	}
}

func highlights(n Nutrition, variety string) []string {
	var out []string
	switch c := n.PerPepper.VitaminC; {
	case c >= 250:
		out = append(out, fmt.Sprintf("Excellent vitamin C source (%.0fmg)", c))
	case c >= 150:
		out = append(out, fmt.Sprintf("Good vitamin C source (%.0fmg)", c))
	}
	if n.Per100g.VitaminA >= 3000 {
		out = append(out, fmt.Sprintf("High in vitamin A (%.0f IU)", n.Per100g.VitaminA))
	}
	if n.Per100g.Antioxidants > 120 {
		out = append(out, "Rich in antioxidants")
	}
	if variety == "Red" {
		out = append(out, "Red peppers have highest nutrient density")
	}
	return out
}

// healthBenefits adds antioxidant protection when the per-100 g level is
// well above a green pepper's.
func healthBenefits(n Nutrients) []string {
	out := append([]string(nil), baseBenefits...)
	if n.Antioxidants > 150 {
		out = append(out, "Powerful antioxidant protection")
	}
	return out
}
