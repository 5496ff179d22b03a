// Package imagetest draws synthetic produce photographs for tests.
//
// Every drawing is deterministic: the "texture" added to filled shapes is a
// fixed pattern derived from pixel coordinates, never random.
package imagetest

import (
	"image"
	"image/color"
	"image/draw"
	"math"
)

var (
	White     = color.NRGBA{255, 255, 255, 255}
	PepperRed = color.NRGBA{190, 25, 30, 255}
	DeepRed   = color.NRGBA{140, 10, 20, 255}
	Green     = color.NRGBA{40, 140, 40, 255}
	Yellow    = color.NRGBA{235, 200, 20, 255}
	Skin      = color.NRGBA{224, 172, 140, 255}
	AppleRed  = color.NRGBA{200, 20, 35, 255}
)

// Canvas returns a w x h image filled with bg.
func Canvas(w, h int, bg color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: bg}, image.Point{}, draw.Src)
	return img
}

// Jitter returns c shifted by a small coordinate-derived offset of at most
// amount per channel.
func Jitter(c color.NRGBA, x, y, amount int) color.NRGBA {
	if amount <= 0 {
		return c
	}
	d := (x*31+y*17)%(2*amount+1) - amount
	ch := func(v uint8, k int) uint8 {
		n := int(v) + k
		if n < 0 {
			n = 0
		}
		if n > 255 {
			n = 255
		}
		return uint8(n)
	}
	return color.NRGBA{ch(c.R, d), ch(c.G, -d/2), ch(c.B, d/2), c.A}
}

// FillFunc paints every pixel of img inside r for which inside reports true.
func FillFunc(img *image.NRGBA, r image.Rectangle, c color.NRGBA, jitter int, inside func(x, y int) bool) {
	r = r.Intersect(img.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if inside(x, y) {
				img.SetNRGBA(x, y, Jitter(c, x, y, jitter))
			}
		}
	}
}

// Rect fills r with c.
func Rect(img *image.NRGBA, r image.Rectangle, c color.NRGBA, jitter int) {
	FillFunc(img, r, c, jitter, func(int, int) bool { return true })
}

// Disk fills a disk of the given radius.
func Disk(img *image.NRGBA, cx, cy, radius int, c color.NRGBA, jitter int) {
	r := image.Rect(cx-radius, cy-radius, cx+radius+1, cy+radius+1)
	FillFunc(img, r, c, jitter, func(x, y int) bool {
		return (x-cx)*(x-cx)+(y-cy)*(y-cy) <= radius*radius
	})
}

// Triangle fills an isosceles triangle with its apex at the top center of r.
func Triangle(img *image.NRGBA, r image.Rectangle, c color.NRGBA, jitter int) {
	cx := float64(r.Min.X+r.Max.X-1) / 2
	h := float64(r.Dy())
	half := float64(r.Dx()) / 2
	FillFunc(img, r, c, jitter, func(x, y int) bool {
		t := float64(y-r.Min.Y+1) / h
		return math.Abs(float64(x)-cx) <= t*half
	})
}

// PepperShape reports whether (x, y) lies inside a four-lobed bell pepper
// outline filling r: four overlapping circles near the corners joined by a
// central body, with shallow dents between the lobes.
func PepperShape(r image.Rectangle) func(x, y int) bool {
	cx := float64(r.Min.X+r.Max.X) / 2
	cy := float64(r.Min.Y+r.Max.Y) / 2
	w, h := float64(r.Dx()), float64(r.Dy())
	ox, oy := 0.23*w, 0.23*h
	rad := 0.26 * math.Min(w, h)
	return func(x, y int) bool {
		px, py := float64(x)+0.5, float64(y)+0.5
		if math.Abs(px-cx) <= ox && math.Abs(py-cy) <= oy {
			return true
		}
		for _, sx := range []float64{-1, 1} {
			for _, sy := range []float64{-1, 1} {
				dx, dy := px-(cx+sx*ox), py-(cy+sy*oy)
				if dx*dx+dy*dy <= rad*rad {
					return true
				}
			}
		}
		return false
	}
}

// Pepper paints a lobed pepper of color c inside r and returns the tight
// bounds of what was drawn.
func Pepper(img *image.NRGBA, r image.Rectangle, c color.NRGBA, jitter int) image.Rectangle {
	inside := PepperShape(r)
	drawn := image.Rectangle{}
	FillFunc(img, r, c, jitter, func(x, y int) bool {
		if inside(x, y) {
			drawn = drawn.Union(image.Rect(x, y, x+1, y+1))
			return true
		}
		return false
	})
	return drawn
}
