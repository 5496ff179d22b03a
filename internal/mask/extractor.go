package mask

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/ironsheep/pepper-quality-mcp/internal/detection"
	"github.com/ironsheep/pepper-quality-mcp/internal/imaging"
	"github.com/ironsheep/pepper-quality-mcp/internal/logger"
)

var (
	// ErrEmptyMask means the mask kept fewer than Config.MinPixels pixels.
	ErrEmptyMask = errors.New("mask is empty or degenerate")

	// ErrNoNativeMask means the detector supplied no instance mask that
	// overlaps the candidate.
	ErrNoNativeMask = errors.New("no usable instance mask")
)

// Request is one pepper to segment.
type Request struct {
	Image     image.Image
	Candidate detection.Candidate

	// Masks are the detector's instance masks not attached to a candidate.
	Masks []detection.InstanceMask
}

// Strategy produces a raw foreground mask for the request. region is the
// padded candidate box in image coordinates and roi holds its pixels
// (origin-anchored); the returned mask must have roi's size.
type Strategy interface {
	Name() string
	Segment(ctx context.Context, req *Request, region image.Rectangle, roi *image.NRGBA) (*image.Gray, error)
}

// TightCrop is the final cut-out of one pepper. Image, Mask and Cutout share
// the same origin-anchored size; Bounds places them in the source image.
type TightCrop struct {
	Bounds image.Rectangle
	Image  *image.NRGBA

	// Mask holds 0 or 255 and is a single 8-connected region.
	Mask *image.Gray

	// Cutout is Image with a feathered alpha channel.
	Cutout *image.NRGBA

	Pixels int
}

// StrategyError records why one strategy did not produce a mask.
type StrategyError struct {
	Strategy string
	Err      error
}

func (e *StrategyError) Error() string { return e.Strategy + ": " + e.Err.Error() }
func (e *StrategyError) Unwrap() error { return e.Err }

// ExtractError is returned when every strategy failed.
type ExtractError struct {
	Attempts []*StrategyError
}

func (e *ExtractError) Error() string {
	parts := make([]string, len(e.Attempts))
	for i, a := range e.Attempts {
		parts[i] = a.Error()
	}
	return "mask extraction failed: " + strings.Join(parts, "; ")
}

func (e *ExtractError) Unwrap() []error {
	errs := make([]error, len(e.Attempts))
	for i, a := range e.Attempts {
		errs[i] = a
	}
	return errs
}

// Extractor runs Strategies in order until one yields a usable mask.
type Extractor struct {
	Strategies []Strategy
	Config     Config
}

// NewExtractor returns the native, GrabCut, color-prior chain.
func NewExtractor(cfg Config) *Extractor {
	return &Extractor{
		Strategies: []Strategy{
			&NativeStrategy{Threshold: cfg.NativeThreshold},
			&GrabCutStrategy{Config: cfg.GrabCut, LeafMargin: cfg.LeafMargin},
			&ColorPriorStrategy{},
		},
		Config: cfg,
	}
}

// Extract segments req and returns the tight crop with the name of the
// strategy that produced it.
func (e *Extractor) Extract(ctx context.Context, req *Request) (*TightCrop, string, error) {
	region := imaging.Pad(req.Candidate.Box.Rect(), e.Config.Padding, req.Image.Bounds())
	roi, err := imaging.CropRegion(req.Image, region)
	if err != nil {
		return nil, "", &ExtractError{Attempts: []*StrategyError{{Strategy: "input", Err: err}}}
	}

	failed := &ExtractError{}
	for _, s := range e.Strategies {
		if err := ctx.Err(); err != nil {
			return nil, "", err
		}
		m, err := s.Segment(ctx, req, region, roi)
		if err == nil {
			var crop *TightCrop
			if crop, err = e.finish(roi, m, region); err == nil {
				return crop, s.Name(), nil
			}
		}
		logger.Debug("mask", "%s strategy failed for box %v: %v", s.Name(), region, err)
		failed.Attempts = append(failed.Attempts, &StrategyError{Strategy: s.Name(), Err: err})
	}
	return nil, "", failed
}

// finish applies the post-processing shared by all strategies.
func (e *Extractor) finish(roi *image.NRGBA, m *image.Gray, region image.Rectangle) (*TightCrop, error) {
	if m.Rect.Dx() != roi.Rect.Dx() || m.Rect.Dy() != roi.Rect.Dy() {
		return nil, fmt.Errorf("mask is %dx%d, region is %dx%d", m.Rect.Dx(), m.Rect.Dy(), roi.Rect.Dx(), roi.Rect.Dy())
	}
	m, _ = imaging.LargestComponent(m)
	if leafDominated(roi, m, e.Config.LeafMargin) {
		m = imaging.AndNot(m, imaging.BandMask(roi, imaging.LeafGreen))
	}
	m, n := imaging.LargestComponent(m)
	if n < e.Config.MinPixels {
		return nil, fmt.Errorf("%w: %d pixels", ErrEmptyMask, n)
	}

	tight := imaging.Pad(imaging.NonZeroBounds(m), e.Config.CropMargin, m.Rect)
	img, err := imaging.CropRegion(roi, tight)
	if err != nil {
		return nil, err
	}
	crop := &TightCrop{
		Bounds: tight.Add(region.Min),
		Image:  img,
		Mask:   imaging.CropMask(m, tight),
		Pixels: n,
	}
	crop.Cutout = cutout(img, imaging.Feather(crop.Mask, e.Config.FeatherRadius))
	return crop, nil
}

// leafDominated reports whether red and orange coverage inside m exceeds
// leaf-green coverage by more than margin.
func leafDominated(roi *image.NRGBA, m *image.Gray, margin float64) bool {
	warm := imaging.BandFraction(roi, m, imaging.RedOrange...)
	green := imaging.BandFraction(roi, m, imaging.LeafGreen)
	return warm-green > margin
}

func cutout(img *image.NRGBA, alpha *image.Gray) *image.NRGBA {
	out := image.NewNRGBA(img.Rect)
	for y := 0; y < img.Rect.Dy(); y++ {
		for x := 0; x < img.Rect.Dx(); x++ {
			c := img.NRGBAAt(x, y)
			out.SetNRGBA(x, y, color.NRGBA{c.R, c.G, c.B, alpha.Pix[y*alpha.Stride+x]})
		}
	}
	return out
}
