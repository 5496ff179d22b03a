package pipeline

import (
	"fmt"

	"github.com/ironsheep/pepper-quality-mcp/internal/derive"
	"github.com/ironsheep/pepper-quality-mcp/internal/detection"
	"github.com/ironsheep/pepper-quality-mcp/internal/mask"
	"github.com/ironsheep/pepper-quality-mcp/internal/quality"
)

// Rejection stages recorded by the pipeline besides the validator's.
const (
	StageForbiddenZone = "forbidden_zone"
	StageMask          = "mask"
)

// ValidatedPepper is one pepper that survived validation and segmentation,
// with its scores. Quality is nil and Error is set when every quality
// strategy failed. When only the ripeness estimate failed, Quality is set,
// Ripeness and Derived are nil and Error says why. Candidate.Mask is always
// nil: the instance mask is released once the crop is cut.
type ValidatedPepper struct {
	PepperID  string              `json:"pepper_id"`
	Candidate detection.Candidate `json:"candidate"`

	Crop         *mask.TightCrop `json:"-"`
	CropBounds   [4]int          `json:"crop_bounds"`
	MaskPixels   int             `json:"mask_pixels"`
	MaskStrategy string          `json:"mask_strategy"`

	Quality         *quality.Metrics          `json:"quality,omitempty"`
	QualityStrategy string                    `json:"quality_strategy,omitempty"`
	Ripeness        *quality.RipenessEstimate `json:"ripeness,omitempty"`
	Derived         *derive.Estimates         `json:"derived,omitempty"`
	Recommendations []string                  `json:"recommendations,omitempty"`
	Error           string                    `json:"error,omitempty"`
}

// Rejection records a dropped candidate.
type Rejection struct {
	Box        detection.Box `json:"bbox"`
	Confidence float64       `json:"confidence"`
	ClassName  string        `json:"class_name"`
	Stage      string        `json:"stage"`
	Reason     string        `json:"reason"`
}

// Summary condenses the result.
type Summary struct {
	PeppersFound   int            `json:"bell_peppers_found"`
	TotalObjects   int            `json:"total_objects"`
	Rejected       int            `json:"rejected_candidates"`
	AverageQuality float64        `json:"avg_quality_score"`
	Categories     map[string]int `json:"categories"`
	Message        string         `json:"message"`
}

// AnalysisResult is the outcome of one Analyze call.
type AnalysisResult struct {
	AnalysisID  string `json:"analysis_id"`
	ImageWidth  int    `json:"image_width"`
	ImageHeight int    `json:"image_height"`

	Peppers        []ValidatedPepper     `json:"bell_peppers"`
	GeneralObjects []detection.Candidate `json:"general_objects"`
	Rejections     []Rejection           `json:"rejections"`
	Summary        Summary               `json:"summary"`
}

func summarize(r *AnalysisResult) Summary {
	s := Summary{
		PeppersFound: len(r.Peppers),
		TotalObjects: len(r.GeneralObjects),
		Rejected:     len(r.Rejections),
		Categories:   map[string]int{},
	}
	var sum float64
	scored := 0
	for _, p := range r.Peppers {
		if p.Quality == nil {
			continue
		}
		sum += p.Quality.OverallQuality
		s.Categories[p.Quality.Category]++
		scored++
	}
	if scored > 0 {
		s.AverageQuality = float64(int(sum/float64(scored)*10+0.5)) / 10
	}
	s.Message = fmt.Sprintf("Found %d objects, %d bell peppers", s.TotalObjects, s.PeppersFound)
	return s
}
