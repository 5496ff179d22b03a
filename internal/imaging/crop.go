package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"

	"github.com/disintegration/imaging"
)

// EncodedImage is a PNG encoded as base64 for transport in tool results.
type EncodedImage struct {
	// Width of the encoded image in pixels.
	Width int `json:"width"`

	// Height of the encoded image in pixels.
	Height int `json:"height"`

	// ImageBase64 is the PNG data encoded as standard base64.
	ImageBase64 string `json:"image_base64"`

	// MimeType is always "image/png".
	MimeType string `json:"mime_type"`
}

// EncodePNG encodes img as a base64 PNG, optionally rescaled by scale
// (values <= 0 or 1.0 keep the original size). Rescaling uses Lanczos.
func EncodePNG(img image.Image, scale float64) (*EncodedImage, error) {
	out := img
	if scale > 0 && scale != 1.0 {
		w := int(float64(img.Bounds().Dx()) * scale)
		h := int(float64(img.Bounds().Dy()) * scale)
		if w < 1 || h < 1 {
			return nil, fmt.Errorf("scale %.3f collapses a %dx%d image", scale, img.Bounds().Dx(), img.Bounds().Dy())
		}
		out = imaging.Resize(img, w, h, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return &EncodedImage{
		Width:       out.Bounds().Dx(),
		Height:      out.Bounds().Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}

// Pad grows r by margin pixels on every side and clips it to bounds.
func Pad(r image.Rectangle, margin int, bounds image.Rectangle) image.Rectangle {
	return image.Rect(r.Min.X-margin, r.Min.Y-margin, r.Max.X+margin, r.Max.Y+margin).Intersect(bounds)
}

// CropRegion copies r out of img into a new origin-anchored NRGBA image.
// r is clipped to the image bounds first; an empty intersection is an error.
func CropRegion(img image.Image, r image.Rectangle) (*image.NRGBA, error) {
	clipped := r.Intersect(img.Bounds())
	if clipped.Empty() {
		return nil, fmt.Errorf("crop region %v outside image bounds %v", r, img.Bounds())
	}
	return imaging.Crop(img, clipped), nil
}

// CropMask copies r out of an origin-anchored mask.
func CropMask(m *image.Gray, r image.Rectangle) *image.Gray {
	r = r.Intersect(m.Rect)
	out := NewMask(r.Dx(), r.Dy())
	for y := 0; y < r.Dy(); y++ {
		copy(out.Pix[y*out.Stride:y*out.Stride+r.Dx()], m.Pix[(r.Min.Y+y)*m.Stride+r.Min.X:])
	}
	return out
}

// ResizeToMask resamples a single-channel confidence image to w x h and
// thresholds it: samples >= level become foreground.
func ResizeToMask(src image.Image, w, h int, level uint8) *image.Gray {
	resized := imaging.Resize(src, w, h, imaging.Linear)
	return Threshold(resized, level)
}

// Downscale shrinks img so its longer side is at most maxSide. It returns the
// (possibly unchanged) image and the applied factor (<= 1).
func Downscale(img image.Image, maxSide int) (*image.NRGBA, float64) {
	b := img.Bounds()
	long := maxInt(b.Dx(), b.Dy())
	if long <= maxSide {
		return imaging.Clone(img), 1
	}
	f := float64(maxSide) / float64(long)
	w := maxInt(1, int(float64(b.Dx())*f+0.5))
	h := maxInt(1, int(float64(b.Dy())*f+0.5))
	return imaging.Resize(img, w, h, imaging.Box), f
}

// UpscaleMask resamples a binary mask to w x h with nearest-neighbor sampling.
func UpscaleMask(m *image.Gray, w, h int) *image.Gray {
	if m.Rect.Dx() == w && m.Rect.Dy() == h {
		return m
	}
	return Threshold(imaging.Resize(m, w, h, imaging.NearestNeighbor), 128)
}
