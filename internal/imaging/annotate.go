package imaging

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strconv"
)

// Annotation is one labelled box drawn by Annotate.
type Annotation struct {
	Rect  image.Rectangle
	Label string
	// Color is a hex string such as "#22C55E"; invalid values fall back to red.
	Color string
}

// Annotate draws 2px box outlines with small labels on a copy of img.
//
// Labels use a built-in 3x5 glyph set (digits, a few capitals and '#', '.',
// '%'); unsupported runes leave a gap.
func Annotate(img image.Image, annotations []Annotation) *image.RGBA {
	bounds := img.Bounds()
	out := image.NewRGBA(bounds)
	draw.Draw(out, bounds, img, bounds.Min, draw.Src)

	for _, a := range annotations {
		c, err := parseHexColor(a.Color)
		if err != nil {
			c = color.RGBA{255, 0, 0, 255}
		}
		drawRect(out, a.Rect, 2, c)
		if a.Label != "" {
			y := a.Rect.Min.Y - 8
			if y < bounds.Min.Y {
				y = a.Rect.Min.Y + 3
			}
			drawLabel(out, a.Rect.Min.X+1, y, a.Label, color.RGBA{255, 255, 255, 255}, c)
		}
	}
	return out
}

func drawRect(img *image.RGBA, r image.Rectangle, thickness int, c color.RGBA) {
	r = r.Intersect(img.Bounds())
	if r.Empty() {
		return
	}
	for t := 0; t < thickness; t++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetRGBA(x, r.Min.Y+t, c)
			img.SetRGBA(x, r.Max.Y-1-t, c)
		}
		for y := r.Min.Y; y < r.Max.Y; y++ {
			img.SetRGBA(r.Min.X+t, y, c)
			img.SetRGBA(r.Max.X-1-t, y, c)
		}
	}
}

// parseHexColor parses "#RRGGBB" or "#RRGGBBAA".
func parseHexColor(hex string) (color.RGBA, error) {
	if len(hex) == 0 {
		return color.RGBA{}, fmt.Errorf("empty color string")
	}
	if hex[0] == '#' {
		hex = hex[1:]
	}

	val, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, err
	}
	switch len(hex) {
	case 6:
		return color.RGBA{R: uint8(val >> 16), G: uint8(val >> 8), B: uint8(val), A: 255}, nil
	case 8:
		return color.RGBA{R: uint8(val >> 24), G: uint8(val >> 16), B: uint8(val >> 8), A: uint8(val)}, nil
	default:
		return color.RGBA{}, fmt.Errorf("invalid hex color length")
	}
}

var glyphs = map[rune][]string{
	'0': {"111", "101", "101", "101", "111"},
	'1': {"010", "110", "010", "010", "111"},
	'2': {"111", "001", "111", "100", "111"},
	'3': {"111", "001", "111", "001", "111"},
	'4': {"101", "101", "111", "001", "001"},
	'5': {"111", "100", "111", "001", "111"},
	'6': {"111", "100", "111", "101", "111"},
	'7': {"111", "001", "001", "001", "001"},
	'8': {"111", "101", "111", "101", "111"},
	'9': {"111", "101", "111", "001", "111"},
	'E': {"111", "100", "111", "100", "111"},
	'G': {"111", "100", "101", "101", "111"},
	'F': {"111", "100", "111", "100", "100"},
	'P': {"111", "101", "111", "100", "100"},
	'X': {"101", "101", "010", "101", "101"},
	'#': {"101", "111", "101", "111", "101"},
	'.': {"000", "000", "000", "000", "010"},
	'%': {"101", "001", "010", "100", "101"},
}

// drawLabel draws text with the 3x5 glyph set on a filled background.
func drawLabel(img *image.RGBA, x, y int, text string, fg, bg color.RGBA) {
	bounds := img.Bounds()
	const charWidth, labelHeight = 4, 7
	set := func(px, py int, c color.RGBA) {
		if (image.Point{px, py}).In(bounds) {
			img.SetRGBA(px, py, c)
		}
	}

	for dy := -1; dy < labelHeight-1; dy++ {
		for dx := -1; dx < len(text)*charWidth; dx++ {
			set(x+dx, y+dy, bg)
		}
	}
	cx := x
	for _, ch := range text {
		for row, line := range glyphs[ch] {
			for col, pixel := range line {
				if pixel == '1' {
					set(cx+col, y+row, fg)
				}
			}
		}
		cx += charWidth
	}
}
