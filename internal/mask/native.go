package mask

import (
	"context"
	"image"
	"math"

	"github.com/ironsheep/pepper-quality-mcp/internal/detection"
	"github.com/ironsheep/pepper-quality-mcp/internal/imaging"
)

// NativeStrategy uses the detector's instance segmentation. Among the
// candidate's own mask and the detector-level masks it picks the one whose
// foreground bounding box best overlaps the candidate box.
type NativeStrategy struct {
	Threshold float64
}

func (s *NativeStrategy) Name() string { return "native" }

func (s *NativeStrategy) Segment(_ context.Context, req *Request, region image.Rectangle, _ *image.NRGBA) (*image.Gray, error) {
	var pool []*detection.InstanceMask
	if req.Candidate.Mask.Valid() {
		pool = append(pool, req.Candidate.Mask)
	}
	for i := range req.Masks {
		if req.Masks[i].Valid() {
			pool = append(pool, &req.Masks[i])
		}
	}

	b := req.Image.Bounds()
	level := uint8(math.Round(s.Threshold * 255))
	var best *image.Gray
	bestIoU := 0.0
	for _, im := range pool {
		full := imaging.ResizeToMask(im.Gray(), b.Dx(), b.Dy(), level)
		bounds := imaging.NonZeroBounds(full)
		if bounds.Empty() {
			continue
		}
		if iou := detection.IoU(req.Candidate.Box, detection.BoxFromRect(bounds.Add(b.Min))); iou > bestIoU {
			best, bestIoU = full, iou
		}
	}
	if best == nil {
		return nil, ErrNoNativeMask
	}
	return imaging.CropMask(best, region.Sub(b.Min)), nil
}
