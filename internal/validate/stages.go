package validate

import (
	"context"
	"image"
	"sort"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/ironsheep/pepper-quality-mcp/internal/detection"
	"github.com/ironsheep/pepper-quality-mcp/internal/imaging"
	"github.com/ironsheep/pepper-quality-mcp/internal/logger"
)

// ClassifierStage cross-checks the crop with a general image classifier.
// It is advisory: a classifier failure lets the candidate through.
type ClassifierStage struct {
	Classifier detection.Classifier
	Config     ClassifierConfig
}

// Name returns StageClassifier.
func (s *ClassifierStage) Name() string { return StageClassifier }

// Check classifies the crop and applies decide to the predictions. Crop and
// classifier errors are logged and the candidate passes.
func (s *ClassifierStage) Check(ctx context.Context, in *Input) error {
	crop, err := in.Crop()
	if err != nil {
		logger.Warn("validate", "classifier skipped: %v", err)
		return nil
	}
	preds, err := s.Classifier.Classify(ctx, crop, s.Config.TopK)
	if err != nil {
		logger.Warn("validate", "classifier unavailable, accepting candidate: %v", err)
		return nil
	}
	return s.decide(preds)
}

// decide rejects when a competitor label ranks high with enough
// probability, or when a confident top prediction is not a pepper label.
// Predictions are ranked by probability here; classifiers need not sort.
func (s *ClassifierStage) decide(preds []detection.Prediction) error {
	if len(preds) == 0 {
		return nil
	}
	preds = append([]detection.Prediction(nil), preds...)
	sort.SliceStable(preds, func(i, j int) bool { return preds[i].Probability > preds[j].Probability })
	for i, p := range preds {
		if i >= s.Config.CompetitorRank {
			break
		}
		if p.Probability > s.Config.CompetitorMinProb && matchLabel(p.Label, s.Config.Competitors) {
			return &Rejection{Stage: StageClassifier, Reason: "competitor:" + normalizeLabel(p.Label)}
		}
	}
	for i, p := range preds {
		if i >= s.Config.TopK {
			break
		}
		if matchLabel(p.Label, s.Config.PepperLabels) {
			return nil
		}
	}
	if preds[0].Probability < s.Config.AmbiguousBelow {
		return nil
	}
	return &Rejection{Stage: StageClassifier, Reason: "not_pepper:" + normalizeLabel(preds[0].Label)}
}

func normalizeLabel(l string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(l)), "_", " ")
}

func matchLabel(label string, set []string) bool {
	l := normalizeLabel(label)
	for _, s := range set {
		if normalizeLabel(s) == l {
			return true
		}
	}
	return false
}

// ShapeStage checks the bounding box geometry.
type ShapeStage struct {
	Config ShapeConfig
}

// Name returns StageShape.
func (s *ShapeStage) Name() string { return StageShape }

// Check rejects degenerate, small, badly proportioned or oversized boxes.
// The aspect ratio is height over width, so upright peppers score above 1.
func (s *ShapeStage) Check(_ context.Context, in *Input) error {
	b := in.Candidate.Box
	w, h := b.Width(), b.Height()
	if w == 0 || h == 0 {
		return &Rejection{Stage: StageShape, Reason: "degenerate"}
	}
	if min(w, h) < s.Config.MinSide {
		return &Rejection{Stage: StageShape, Reason: "too_small"}
	}
	if aspect := h / w; aspect < s.Config.MinAspect || aspect > s.Config.MaxAspect {
		return &Rejection{Stage: StageShape, Reason: "bad_aspect"}
	}
	if b.Area() > in.ImageArea()*s.Config.MaxImageFraction {
		return &Rejection{Stage: StageShape, Reason: "too_large"}
	}
	return nil
}

// ColorStage rejects skin-toned crops and crops without enough pepper color.
type ColorStage struct {
	Config ColorConfig
}

// Name returns StageColor.
func (s *ColorStage) Name() string { return StageColor }

// Check measures the skin-tone and pepper-color shares of the crop.
func (s *ColorStage) Check(_ context.Context, in *Input) error {
	crop, err := in.Crop()
	if err != nil {
		return err
	}
	if skin := imaging.BandFraction(crop, nil, imaging.SkinTone); skin > s.Config.MaxSkinFraction {
		return &Rejection{Stage: StageColor, Reason: "skin_tone"}
	}
	if pepper := imaging.BandFraction(crop, nil, imaging.PepperBands...); pepper < s.Config.MinPepperFraction {
		return &Rejection{Stage: StageColor, Reason: "not_pepper_colored"}
	}
	return nil
}

// TextureStage inspects the outline of the crop's body and the spread of
// its gray levels. The body is the largest pepper-colored region, holes
// filled and speckles opened away. A crop without any pepper color falls
// back to the region enclosed by its closed Canny edges.
type TextureStage struct {
	Config TextureConfig
}

// Name returns StageTexture.
func (s *TextureStage) Name() string { return StageTexture }

// Check rejects outlines that are too round, like apples and tomatoes, or
// too simple (fewer than MinVertices polygon corners) and crops whose gray
// levels are too uniform. Outlines smaller than MinContourArea pass
// without further checks.
func (s *TextureStage) Check(_ context.Context, in *Input) error {
	crop, err := in.Crop()
	if err != nil {
		return err
	}

	contour, ok := detection.LargestContour(s.body(crop))
	if !ok {
		return &Rejection{Stage: StageTexture, Reason: "no_contour"}
	}
	if contour.Area < s.Config.MinContourArea {
		return nil
	}
	if circ := contour.Simplified(s.Config.OutlineTolerance).Circularity(); circ > s.Config.MaxCircularity {
		return &Rejection{Stage: StageTexture, Reason: "too_circular"}
	}
	poly := detection.ApproxPolygon(contour.Points, s.Config.EpsilonFraction*contour.Perimeter)
	if len(poly) < s.Config.MinVertices {
		return &Rejection{Stage: StageTexture, Reason: "too_simple"}
	}

	gray := imaging.Grayscale(crop)
	values := make([]float64, 0, len(gray.Pix))
	for y := 0; y < gray.Rect.Dy(); y++ {
		for _, v := range gray.Pix[y*gray.Stride : y*gray.Stride+gray.Rect.Dx()] {
			values = append(values, float64(v))
		}
	}
	if _, std := stat.PopMeanStdDev(values, nil); std < s.Config.MinGrayStdDev {
		return &Rejection{Stage: StageTexture, Reason: "too_smooth"}
	}
	return nil
}

// body returns the foreground whose outline is measured.
func (s *TextureStage) body(crop *image.NRGBA) *image.Gray {
	banded := imaging.FillHoles(imaging.BandMask(crop, imaging.PepperBands...))
	if colored, n := imaging.LargestComponent(imaging.Open(banded, 1)); n > 0 {
		return colored
	}
	edges := imaging.Close(imaging.Canny(crop, s.Config.CannyLow, s.Config.CannyHigh), 1)
	return imaging.FillHoles(edges)
}
