package mask

import (
	"context"
	"image"

	"github.com/ironsheep/pepper-quality-mcp/internal/imaging"
)

// ColorPriorStrategy keeps pepper-colored pixels and cleans them up with the
// same morphology as GrabCutStrategy. It is the last resort when
// segmentation leaves nothing.
type ColorPriorStrategy struct{}

func (s *ColorPriorStrategy) Name() string { return "color_prior" }

func (s *ColorPriorStrategy) Segment(_ context.Context, _ *Request, _ image.Rectangle, roi *image.NRGBA) (*image.Gray, error) {
	return clean(colorPrior(roi, true)), nil
}

// colorPrior marks red, orange and yellow pixels, plus green ones when
// withGreen is set.
func colorPrior(img image.Image, withGreen bool) *image.Gray {
	if withGreen {
		return imaging.BandMask(img, append(append([]imaging.HSVRange(nil), imaging.WarmPrior...), imaging.LeafGreen)...)
	}
	return imaging.BandMask(img, imaging.WarmPrior...)
}

// clean closes small gaps, drops speckles, smooths the outline and keeps the
// largest region.
func clean(m *image.Gray) *image.Gray {
	m = imaging.Median(imaging.Open(imaging.Close(m, 1), 1), 2)
	m, _ = imaging.LargestComponent(m)
	return m
}
