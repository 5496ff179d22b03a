package derive

// Severity is the defect band derived from surface quality.
type Severity string

const (
	SeverityNone     Severity = "none"
	SeverityMinor    Severity = "minor"
	SeverityModerate Severity = "moderate"
	SeveritySevere   Severity = "severe"
)

// SeverityOf bands a surface quality score.
func SeverityOf(surface float64) Severity {
	switch {
	case surface >= 80:
		return SeverityNone
	case surface >= 65:
		return SeverityMinor
	case surface >= 45:
		return SeverityModerate
	default:
		return SeveritySevere
	}
}

// Multiplier scales shelf life and nutrient retention.
func (s Severity) Multiplier() float64 {
	switch s {
	case SeverityMinor:
		return 0.85
	case SeverityModerate:
		return 0.65
	case SeveritySevere:
		return 0.4
	default:
		return 1
	}
}

// GradePenalty is the number of grade steps lost.
func (s Severity) GradePenalty() int {
	switch s {
	case SeverityModerate:
		return 1
	case SeveritySevere:
		return 2
	default:
		return 0
	}
}
