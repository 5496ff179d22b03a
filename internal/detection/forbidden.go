package detection

import "strings"

// ForbiddenConfig controls forbidden-zone computation.
type ForbiddenConfig struct {
	// Denylist holds general-detector class names that are never peppers.
	Denylist []string `json:"denylist"`

	// MinConfidence is the exclusive floor a general detection needs to
	// become a forbidden zone.
	MinConfidence float64 `json:"min_confidence"`

	// IoUThreshold is the overlap above which a candidate is rejected.
	IoUThreshold float64 `json:"iou_threshold"`
}

// DefaultForbiddenConfig returns the denylist of common look-alikes and
// body parts.
func DefaultForbiddenConfig() ForbiddenConfig {
	return ForbiddenConfig{
		Denylist: []string{
			"apple", "orange", "banana", "person", "hand", "tomato", "carrot",
			"broccoli", "donut", "sports ball", "strawberry", "lemon",
		},
		MinConfidence: 0.6,
		IoUThreshold:  0.3,
	}
}

func (c ForbiddenConfig) denied(class string) bool {
	class = strings.ToLower(strings.TrimSpace(class))
	for _, d := range c.Denylist {
		if strings.EqualFold(d, class) {
			return true
		}
	}
	return false
}

// ForbiddenZones selects the general detections that mark non-pepper
// regions: a denylisted class with confidence strictly above the floor.
func ForbiddenZones(general []Candidate, cfg ForbiddenConfig) []ForbiddenZone {
	var zones []ForbiddenZone
	for _, g := range general {
		if g.Confidence > cfg.MinConfidence && cfg.denied(g.ClassName) {
			zones = append(zones, ForbiddenZone{Box: g.Box, ClassName: g.ClassName, Confidence: g.Confidence})
		}
	}
	return zones
}

// ForbiddenHit records a candidate removed by a forbidden zone.
type ForbiddenHit struct {
	Candidate Candidate
	Zone      ForbiddenZone
	IoU       float64
}

// FilterForbidden splits cands into those clear of every zone and those
// whose IoU with some zone exceeds cfg.IoUThreshold. For a rejected
// candidate the most-overlapping zone is reported.
func FilterForbidden(cands []Candidate, zones []ForbiddenZone, cfg ForbiddenConfig) ([]Candidate, []ForbiddenHit) {
	kept := make([]Candidate, 0, len(cands))
	var hits []ForbiddenHit
	for _, c := range cands {
		best := ForbiddenHit{Candidate: c}
		for _, z := range zones {
			if iou := IoU(c.Box, z.Box); iou > best.IoU {
				best.IoU, best.Zone = iou, z
			}
		}
		if best.IoU > cfg.IoUThreshold {
			hits = append(hits, best)
			continue
		}
		kept = append(kept, c)
	}
	return kept, hits
}
