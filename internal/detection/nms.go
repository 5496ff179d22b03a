package detection

import "sort"

// NMSConfig controls NonMaxSuppression.
type NMSConfig struct {
	// ConfidenceThreshold drops detections scoring below it.
	ConfidenceThreshold float64 `json:"confidence_threshold"`

	// IoUThreshold is the maximum overlap two kept detections may have.
	IoUThreshold float64 `json:"iou_threshold"`
}

// DefaultNMSConfig returns the thresholds tuned for the pepper detector.
func DefaultNMSConfig() NMSConfig {
	return NMSConfig{ConfidenceThreshold: 0.5, IoUThreshold: 0.3}
}

// NonMaxSuppression removes duplicate detections of the same object.
//
// Detections below the confidence threshold are discarded, the rest are
// ranked by confidence (ties keep input order) and each is accepted only if
// its IoU with every already accepted detection is at most the IoU
// threshold. Suppression is class-agnostic: the pepper detector's classes
// describe the same physical object. The returned slice is in descending
// confidence order and never contains a pair overlapping above the threshold.
func NonMaxSuppression(cands []Candidate, cfg NMSConfig) []Candidate {
	ranked := make([]Candidate, 0, len(cands))
	for _, c := range cands {
		if c.Confidence >= cfg.ConfidenceThreshold {
			ranked = append(ranked, c)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Confidence > ranked[j].Confidence
	})

	kept := make([]Candidate, 0, len(ranked))
	for _, c := range ranked {
		duplicate := false
		for _, k := range kept {
			if IoU(c.Box, k.Box) > cfg.IoUThreshold {
				duplicate = true
				break
			}
		}
		if !duplicate {
			kept = append(kept, c)
		}
	}
	return kept
}
