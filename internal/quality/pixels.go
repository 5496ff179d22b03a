package quality

import (
	"image"
	"image/color"
	"math"

	"github.com/ironsheep/pepper-quality-mcp/internal/imaging"
	"github.com/ironsheep/pepper-quality-mcp/internal/mask"
)

// foreground lists the crop's masked pixels in raster order.
func foreground(crop *mask.TightCrop) []color.NRGBA {
	w, h := crop.Mask.Rect.Dx(), crop.Mask.Rect.Dy()
	out := make([]color.NRGBA, 0, crop.Pixels)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if crop.Mask.Pix[y*crop.Mask.Stride+x] != 0 {
				out = append(out, crop.Image.NRGBAAt(x, y))
			}
		}
	}
	return out
}

func checkCrop(crop *mask.TightCrop, minPixels int) error {
	if crop == nil || crop.Mask == nil || crop.Image == nil {
		return ErrInsufficientPixels
	}
	if imaging.CountNonZero(crop.Mask) < minPixels {
		return ErrInsufficientPixels
	}
	return nil
}

// circularHueStd returns the circular standard deviation of OpenCV hues
// (period 180), in the same units. Red hues on both sides of 0 count as
// close together.
func circularHueStd(hues []float64) float64 {
	if len(hues) == 0 {
		return 0
	}
	var sx, sy float64
	for _, h := range hues {
		a := h * 2 * math.Pi / 180
		sx += math.Cos(a)
		sy += math.Sin(a)
	}
	r := math.Hypot(sx, sy) / float64(len(hues))
	if r >= 1 {
		return 0
	}
	if r <= 1e-12 {
		return 90
	}
	return math.Sqrt(-2*math.Log(r)) * 180 / (2 * math.Pi)
}

// maskedGray returns the crop's luminance and a per-pixel foreground flag.
func maskedGray(crop *mask.TightCrop) (*image.Gray, []bool) {
	gray := imaging.Grayscale(crop.Image)
	w, h := gray.Rect.Dx(), gray.Rect.Dy()
	in := make([]bool, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			in[y*w+x] = crop.Mask.Pix[y*crop.Mask.Stride+x] != 0
		}
	}
	return gray, in
}
