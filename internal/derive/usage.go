package derive

// Usage says what the pepper is suited for.
type Usage struct {
	Salad            bool     `json:"salad"`
	Cooking          bool     `json:"cooking"`
	Sauce            bool     `json:"sauce"`
	Tags             []string `json:"tags"`
	DiseaseSuspected bool     `json:"disease_suspected"`
}

// DarkSpotDiseaseShare is the dark-spot band share at which disease is
// suspected.
const DarkSpotDiseaseShare = 0.10

// RecommendUsage applies the salad, cooking and sauce rules. Cooking is the
// default when no rule matches.
func RecommendUsage(ripeness, surface float64, colorVariety string, sev Severity, darkSpotShare float64) Usage {
	u := Usage{DiseaseSuspected: sev == SeveritySevere || darkSpotShare >= DarkSpotDiseaseShare}

	switch colorVariety {
	case "Red", "Yellow", "Orange":
		u.Salad = ripeness >= 60 && surface >= 70 && !u.DiseaseSuspected
	}
	u.Cooking = ripeness >= 30 && ripeness <= 80
	u.Sauce = ripeness >= 80 || surface < 50
	if !u.Salad && !u.Cooking && !u.Sauce {
		u.Cooking = true
	}

	if u.Salad {
		u.Tags = append(u.Tags, "salad")
	}
	if u.Cooking {
		u.Tags = append(u.Tags, "cooking")
	}
	if u.Sauce {
		u.Tags = append(u.Tags, "sauce")
	}
	return u
}
