package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/pepper-quality-mcp/internal/derive"
	"github.com/ironsheep/pepper-quality-mcp/internal/detection"
	"github.com/ironsheep/pepper-quality-mcp/internal/logger"
	"github.com/ironsheep/pepper-quality-mcp/internal/mask"
	"github.com/ironsheep/pepper-quality-mcp/internal/quality"
	"github.com/ironsheep/pepper-quality-mcp/internal/validate"
)

var (
	// ErrDetectorUnavailable means a detector call failed; no peppers can be
	// reported for the image.
	ErrDetectorUnavailable = errors.New("detector unavailable")

	// ErrInvalidImage means the image is nil or has no pixels.
	ErrInvalidImage = errors.New("invalid image")
)

// outcome is the result of processing one candidate: a pepper or a
// rejection.
type outcome struct {
	pepper    *ValidatedPepper
	rejection *Rejection
}

// Analyze runs the full pipeline on img.
func Analyze(ctx context.Context, pc *PipelineContext, img image.Image) (res *AnalysisResult, err error) {
	if img == nil || img.Bounds().Empty() {
		return nil, ErrInvalidImage
	}
	start := time.Now()
	pc.observer.AnalysisStarted()
	defer func() {
		n := 0
		if res != nil {
			n = len(res.Peppers)
		}
		pc.observer.AnalysisDone(time.Since(start), n, err)
	}()

	dets, err := detect(ctx, pc.detector, img)
	if err != nil {
		return nil, err
	}
	cands := detection.NonMaxSuppression(dets.Candidates, pc.config.NMS)
	logger.Debug("pipeline", "%d detections, %d after NMS", len(dets.Candidates), len(cands))

	res = &AnalysisResult{
		AnalysisID:  uuid.NewString(),
		ImageWidth:  img.Bounds().Dx(),
		ImageHeight: img.Bounds().Dy(),
		Peppers:     []ValidatedPepper{},
		Rejections:  []Rejection{},
	}

	var general []detection.Candidate
	if pc.general != nil {
		g, err := detect(ctx, pc.general, img)
		if err != nil {
			return nil, err
		}
		general = g.Candidates
		zones := detection.ForbiddenZones(general, pc.config.Forbidden)
		var hits []detection.ForbiddenHit
		cands, hits = detection.FilterForbidden(cands, zones, pc.config.Forbidden)
		for _, h := range hits {
			res.Rejections = append(res.Rejections, *rejection(h.Candidate, StageForbiddenZone, "overlaps:"+h.Zone.ClassName))
			pc.observer.CandidateRejected(StageForbiddenZone)
		}
	}

	outcomes, err := pc.processAll(ctx, img, cands, dets.Masks)
	if err != nil {
		return nil, err
	}
	for _, o := range outcomes {
		if o.rejection != nil {
			res.Rejections = append(res.Rejections, *o.rejection)
			pc.observer.CandidateRejected(o.rejection.Stage)
			continue
		}
		o.pepper.PepperID = fmt.Sprintf("pepper_%d", len(res.Peppers)+1)
		res.Peppers = append(res.Peppers, *o.pepper)
	}

	res.GeneralObjects = retainGeneral(general, res.Peppers, pc.config.Forbidden.IoUThreshold)
	res.Summary = summarize(res)
	logger.Info("pipeline", "analysis %s: %s, %d rejected", res.AnalysisID, res.Summary.Message, len(res.Rejections))
	return res, nil
}

func detect(ctx context.Context, d detection.Detector, img image.Image) (*detection.Detections, error) {
	dets, err := d.Detect(ctx, img)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %v", ErrDetectorUnavailable, err)
	}
	if dets == nil {
		dets = &detection.Detections{}
	}
	return dets, nil
}

// processAll runs the per-candidate stages on up to Workers candidates at a
// time. Outcomes keep the candidate order.
func (pc *PipelineContext) processAll(ctx context.Context, img image.Image, cands []detection.Candidate, masks []detection.InstanceMask) ([]outcome, error) {
	outcomes := make([]outcome, len(cands))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(pc.config.Workers)
	for i, c := range cands {
		i, c := i, c
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outcomes[i] = pc.process(gctx, img, c, masks)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return outcomes, nil
}

// process validates, segments and scores one candidate.
func (pc *PipelineContext) process(ctx context.Context, img image.Image, c detection.Candidate, masks []detection.InstanceMask) outcome {
	if err := pc.validator.Validate(ctx, validate.NewInput(img, c)); err != nil {
		var rej *validate.Rejection
		if errors.As(err, &rej) {
			return outcome{rejection: rejection(c, rej.Stage, rej.Reason)}
		}
		return outcome{rejection: rejection(c, "validate", err.Error())}
	}

	crop, strategy, err := pc.extractor.Extract(ctx, &mask.Request{Image: img, Candidate: c, Masks: masks})
	if err != nil {
		logger.Debug("pipeline", "mask extraction failed for %v: %v", c.Box, err)
		return outcome{rejection: rejection(c, StageMask, err.Error())}
	}
	pc.observer.StrategyUsed("mask", strategy)

	c.Mask = nil
	p := &ValidatedPepper{
		Candidate:    c,
		Crop:         crop,
		CropBounds:   [4]int{crop.Bounds.Min.X, crop.Bounds.Min.Y, crop.Bounds.Max.X, crop.Bounds.Max.Y},
		MaskPixels:   crop.Pixels,
		MaskStrategy: strategy,
	}
	pc.score(p)
	return outcome{pepper: p}
}

// score fills in ripeness, quality and the derived estimates. Failures are
// recorded on the pepper.
func (pc *PipelineContext) score(p *ValidatedPepper) {
	ripe, err := quality.EstimateRipeness(p.Crop, pc.config.Quality.Ripeness)
	if err != nil {
		logger.Warn("pipeline", "ripeness estimate failed: %v", err)
		p.Error = "ripeness unavailable: " + err.Error()
	}
	p.Ripeness = ripe

	m, strategy, err := pc.analyzer.Analyze(&quality.Input{Crop: p.Crop, Ripeness: ripe})
	if err != nil {
		logger.Warn("pipeline", "quality analysis failed: %v", err)
		p.Error = err.Error()
		return
	}
	pc.observer.StrategyUsed("quality", strategy)
	p.Quality = m
	p.QualityStrategy = strategy
	p.Recommendations = quality.Recommendations(m)

	if ripe == nil {
		return
	}
	w, h := p.Crop.Bounds.Dx(), p.Crop.Bounds.Dy()
	d, err := derive.Derive(derive.Input{Metrics: m, Ripeness: ripe, Pixels: p.Crop.Pixels, Width: w, Height: h})
	if err != nil {
		logger.Debug("pipeline", "derived estimates unavailable: %v", err)
		return
	}
	p.Derived = d
	p.Recommendations = append(p.Recommendations, d.Advice...)
}

func rejection(c detection.Candidate, stage, reason string) *Rejection {
	return &Rejection{Box: c.Box, Confidence: c.Confidence, ClassName: c.ClassName, Stage: stage, Reason: reason}
}

// retainGeneral keeps the general detections that do not overlap any
// validated pepper by more than maxIoU, without their instance masks.
func retainGeneral(general []detection.Candidate, peppers []ValidatedPepper, maxIoU float64) []detection.Candidate {
	out := []detection.Candidate{}
	for _, g := range general {
		overlaps := false
		for _, p := range peppers {
			if detection.IoU(g.Box, p.Candidate.Box) > maxIoU {
				overlaps = true
				break
			}
		}
		if !overlaps {
			g.Mask = nil
			out = append(out, g)
		}
	}
	return out
}
