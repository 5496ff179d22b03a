package imaging

import (
	"image"
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// HSV is a color in 8-bit OpenCV units: H in [0,180), S and V in [0,255].
//
// These units are kept because the pepper and skin-tone bands used across the
// pipeline were tuned in them:
//   - H is half the hue in degrees (0=red, 30=yellow, 60=green, 120=blue)
//   - S is 0 for gray and 255 for a fully saturated color
//   - V is 0 for black and 255 for the brightest value of the hue
type HSV struct {
	H float64 `json:"h"` // Hue: 0-180 (degrees / 2)
	S float64 `json:"s"` // Saturation: 0-255
	V float64 `json:"v"` // Value: 0-255
}

// Lab is a CIE L*a*b* color in conventional units.
//
// L*a*b* separates lightness from color, so thresholds on a* and b* hold up
// under uneven lighting better than RGB or HSV thresholds:
//   - L runs from 0 (black) to 100 (white)
//   - a runs from green (negative) to red (positive)
//   - b runs from blue (negative) to yellow (positive)
type Lab struct {
	L float64 `json:"l"` // Lightness: 0-100
	A float64 `json:"a"` // Green-red axis: about -128 to 127
	B float64 `json:"b"` // Blue-yellow axis: about -128 to 127
}

// Chroma returns sqrt(a² + b²).
func (c Lab) Chroma() float64 {
	return math.Hypot(c.A, c.B)
}

// HueAngle returns atan2(b, a) in degrees, normalized to [0,360).
//
// Pepper skins fall around 30-40° (red), 60-95° (orange to yellow) and
// 120-140° (green). The angle is meaningless for colors with a small Chroma.
func (c Lab) HueAngle() float64 {
	h := math.Atan2(c.B, c.A) * 180 / math.Pi
	if h < 0 {
		h += 360
	}
	return h
}

// ToHSV converts any color to HSV in OpenCV units. Alpha is ignored.
func ToHSV(c color.Color) HSV {
	cf, _ := colorful.MakeColor(opaque(c))
	h, s, v := cf.Hsv()
	return HSV{H: h / 2, S: s * 255, V: v * 255}
}

// RGBToHSV converts 8-bit RGB components to HSV in OpenCV units.
//
// Parameters:
//   - r, g, b: Non-premultiplied 8-bit components.
//
// Returns:
//   - HSV: H in [0,180), S and V in [0,255].
func RGBToHSV(r, g, b uint8) HSV {
	h, s, v := colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}.Hsv()
	return HSV{H: h / 2, S: s * 255, V: v * 255}
}

// RGBToLab converts 8-bit RGB components to L*a*b*.
//
// Parameters:
//   - r, g, b: Non-premultiplied sRGB components.
//
// Returns:
//   - Lab: The color under the D65 white point, L in [0,100].
func RGBToLab(r, g, b uint8) Lab {
	l, a, bb := colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}.Lab()
	return Lab{L: l * 100, A: a * 100, B: bb * 100}
}

// LabToRGB converts L*a*b* back to clamped 8-bit RGB.
func LabToRGB(c Lab) (uint8, uint8, uint8) {
	return colorful.Lab(c.L/100, c.A/100, c.B/100).Clamped().RGB255()
}

// opaque drops alpha so premultiplied transparent pixels do not convert as black.
func opaque(c color.Color) color.Color {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	n.A = 255
	return n
}

// RGB8 returns the non-premultiplied 8-bit components of c.
func RGB8(c color.Color) (uint8, uint8, uint8) {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return n.R, n.G, n.B
}

// HSVRange is an inclusive box in HSV space.
//
// A range does not wrap around hue 0; red needs two ranges, one ending at 10
// and one starting at 170.
type HSVRange struct {
	Name string // Band name reported by callers, e.g. "red" or "leaf"
	Lo   HSV    // Inclusive lower corner
	Hi   HSV    // Inclusive upper corner
}

// Contains reports whether c lies inside the range.
func (r HSVRange) Contains(c HSV) bool {
	return c.H >= r.Lo.H && c.H <= r.Hi.H &&
		c.S >= r.Lo.S && c.S <= r.Hi.S &&
		c.V >= r.Lo.V && c.V <= r.Hi.V
}

// Band sets used by validation and mask seeding.
var (
	// SkinTone flags hands and faces. It overlaps orange; the color stage
	// only rejects a crop when skin dominates it.
	SkinTone = HSVRange{Name: "skin", Lo: HSV{0, 10, 60}, Hi: HSV{25, 150, 255}}

	// Saturated pepper skin colors, by ripeness.
	PepperRedLow  = HSVRange{Name: "red", Lo: HSV{0, 80, 80}, Hi: HSV{10, 255, 255}}
	PepperRedHigh = HSVRange{Name: "red", Lo: HSV{170, 80, 80}, Hi: HSV{180, 255, 255}}
	PepperOrange  = HSVRange{Name: "orange", Lo: HSV{10, 100, 100}, Hi: HSV{20, 255, 255}}
	PepperYellow  = HSVRange{Name: "yellow", Lo: HSV{20, 100, 100}, Hi: HSV{35, 255, 255}}
	PepperGreen   = HSVRange{Name: "green", Lo: HSV{35, 50, 50}, Hi: HSV{85, 255, 255}}

	// PepperBands is the union a plausible pepper crop must mostly fall into.
	PepperBands = []HSVRange{PepperRedLow, PepperRedHigh, PepperYellow, PepperGreen, PepperOrange}

	// WarmPrior marks red, orange and yellow skin for foreground seeding.
	WarmPrior = []HSVRange{
		{Name: "red", Lo: HSV{0, 50, 50}, Hi: HSV{10, 255, 255}},
		{Name: "red", Lo: HSV{170, 50, 50}, Hi: HSV{180, 255, 255}},
		{Name: "orange", Lo: HSV{10, 50, 50}, Hi: HSV{20, 255, 255}},
		{Name: "yellow", Lo: HSV{20, 50, 50}, Hi: HSV{35, 255, 255}},
	}

	// RedOrange is the subset of WarmPrior used for leaf-dominance tests.
	RedOrange = WarmPrior[:3]

	// LeafGreen is foliage and stems, slightly wider than PepperGreen.
	LeafGreen = HSVRange{Name: "leaf", Lo: HSV{35, 40, 40}, Hi: HSV{85, 255, 255}}
)

// InAny reports whether c falls inside at least one of ranges.
func InAny(c HSV, ranges []HSVRange) bool {
	for _, r := range ranges {
		if r.Contains(c) {
			return true
		}
	}
	return false
}

// BandMask marks the pixels of img whose color falls in a set of HSV ranges.
//
// Parameters:
//   - img: The source image; any bounds origin is accepted.
//   - ranges: Color bands to match. A pixel matches when it is inside any one.
//
// Returns:
//   - *image.Gray: A mask the size of img anchored at (0,0), 255 where the
//     pixel matches and 0 elsewhere.
func BandMask(img image.Image, ranges ...HSVRange) *image.Gray {
	b := img.Bounds()
	m := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			r, g, bb := RGB8(img.At(b.Min.X+x, b.Min.Y+y))
			if InAny(RGBToHSV(r, g, bb), ranges) {
				m.Pix[y*m.Stride+x] = 255
			}
		}
	}
	return m
}

// BandFraction measures how much of an image falls in a set of HSV ranges.
//
// Parameters:
//   - img: The source image.
//   - within: Optional origin-anchored mask the size of img. Only pixels
//     where it is non-zero are counted; nil counts every pixel.
//   - ranges: Color bands to match.
//
// Returns:
//   - float64: Matching pixels over counted pixels, in [0,1]. 0 when no
//     pixel is counted.
func BandFraction(img image.Image, within *image.Gray, ranges ...HSVRange) float64 {
	b := img.Bounds()
	var hit, total int
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			if within != nil && within.Pix[y*within.Stride+x] == 0 {
				continue
			}
			total++
			r, g, bb := RGB8(img.At(b.Min.X+x, b.Min.Y+y))
			if InAny(RGBToHSV(r, g, bb), ranges) {
				hit++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(hit) / float64(total)
}
