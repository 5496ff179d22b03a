package imaging

import (
	"image"

	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/effect"
)

// Binary masks throughout the pipeline are origin-anchored *image.Gray values
// holding 0 (background) or 255 (foreground).

// NewMask returns an empty w x h mask.
func NewMask(w, h int) *image.Gray {
	return image.NewGray(image.Rect(0, 0, w, h))
}

// CountNonZero returns the number of foreground pixels.
func CountNonZero(m *image.Gray) int {
	n := 0
	w, h := m.Rect.Dx(), m.Rect.Dy()
	for y := 0; y < h; y++ {
		row := m.Pix[y*m.Stride : y*m.Stride+w]
		for _, v := range row {
			if v != 0 {
				n++
			}
		}
	}
	return n
}

// NonZeroBounds returns the smallest rectangle holding every foreground
// pixel, or an empty rectangle when there is none.
func NonZeroBounds(m *image.Gray) image.Rectangle {
	w, h := m.Rect.Dx(), m.Rect.Dy()
	minX, minY, maxX, maxY := w, h, -1, -1
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if m.Pix[y*m.Stride+x] == 0 {
				continue
			}
			minX, maxX = minInt(minX, x), maxInt(maxX, x)
			minY, maxY = minInt(minY, y), maxInt(maxY, y)
		}
	}
	if maxX < 0 {
		return image.Rectangle{}
	}
	return image.Rect(minX, minY, maxX+1, maxY+1)
}

// And returns a ∩ b. Both masks must share dimensions.
func And(a, b *image.Gray) *image.Gray {
	return combine(a, b, func(x, y bool) bool { return x && y })
}

// Or returns a ∪ b.
func Or(a, b *image.Gray) *image.Gray {
	return combine(a, b, func(x, y bool) bool { return x || y })
}

// AndNot returns a minus b.
func AndNot(a, b *image.Gray) *image.Gray {
	return combine(a, b, func(x, y bool) bool { return x && !y })
}

func combine(a, b *image.Gray, op func(bool, bool) bool) *image.Gray {
	w, h := a.Rect.Dx(), a.Rect.Dy()
	out := NewMask(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if op(a.Pix[y*a.Stride+x] != 0, b.Pix[y*b.Stride+x] != 0) {
				out.Pix[y*out.Stride+x] = 255
			}
		}
	}
	return out
}

// Dilate grows the foreground; radius 1 is a 3x3 structuring element.
func Dilate(m *image.Gray, radius float64) *image.Gray {
	return Threshold(effect.Dilate(m, radius), 128)
}

// Erode shrinks the foreground; radius 1 is a 3x3 structuring element.
func Erode(m *image.Gray, radius float64) *image.Gray {
	return Threshold(effect.Erode(m, radius), 128)
}

// Close fills small gaps: dilation followed by erosion.
func Close(m *image.Gray, radius float64) *image.Gray {
	return Erode(Dilate(m, radius), radius)
}

// Open removes speckles: erosion followed by dilation.
func Open(m *image.Gray, radius float64) *image.Gray {
	return Dilate(Erode(m, radius), radius)
}

// Median smooths the mask outline with a median filter.
func Median(m *image.Gray, radius float64) *image.Gray {
	return Threshold(effect.Median(m, radius), 128)
}

// Feather returns a soft alpha version of m blurred with a Gaussian of the
// given radius.
func Feather(m *image.Gray, radius float64) *image.Gray {
	blurred := blur.Gaussian(m, radius)
	w, h := m.Rect.Dx(), m.Rect.Dy()
	out := NewMask(w, h)
	bb := blurred.Bounds()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, _, _ := RGB8(blurred.At(bb.Min.X+x, bb.Min.Y+y))
			out.Pix[y*out.Stride+x] = r
		}
	}
	return out
}

// Threshold converts any image to a binary mask: luminance >= level is
// foreground. The result is origin-anchored regardless of img's bounds.
func Threshold(img image.Image, level uint8) *image.Gray {
	b := img.Bounds()
	out := NewMask(b.Dx(), b.Dy())
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			r, g, bb := RGB8(img.At(b.Min.X+x, b.Min.Y+y))
			lum := (299*int(r) + 587*int(g) + 114*int(bb)) / 1000
			if lum >= int(level) {
				out.Pix[y*out.Stride+x] = 255
			}
		}
	}
	return out
}

// Components labels 8-connected foreground regions. It returns a label per
// pixel (0 for background, 1..n for regions) and the size of each region
// indexed by label.
func Components(m *image.Gray) ([]int, []int) {
	w, h := m.Rect.Dx(), m.Rect.Dy()
	labels := make([]int, w*h)
	sizes := []int{0}
	stack := make([]int, 0, 256)

	for start := 0; start < w*h; start++ {
		sx, sy := start%w, start/w
		if labels[start] != 0 || m.Pix[sy*m.Stride+sx] == 0 {
			continue
		}
		label := len(sizes)
		sizes = append(sizes, 0)
		labels[start] = label
		stack = append(stack[:0], start)
		for len(stack) > 0 {
			p := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			sizes[label]++
			px, py := p%w, p/w
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					nx, ny := px+dx, py+dy
					if nx < 0 || ny < 0 || nx >= w || ny >= h {
						continue
					}
					q := ny*w + nx
					if labels[q] == 0 && m.Pix[ny*m.Stride+nx] != 0 {
						labels[q] = label
						stack = append(stack, q)
					}
				}
			}
		}
	}
	return labels, sizes
}

// LargestComponent keeps only the biggest 8-connected region of m. The
// returned count is that region's size (0 for an empty mask).
func LargestComponent(m *image.Gray) (*image.Gray, int) {
	labels, sizes := Components(m)
	best := 0
	for l := 1; l < len(sizes); l++ {
		if sizes[l] > sizes[best] {
			best = l
		}
	}
	w, h := m.Rect.Dx(), m.Rect.Dy()
	out := NewMask(w, h)
	if best == 0 {
		return out, 0
	}
	for i, l := range labels {
		if l == best {
			out.Pix[(i/w)*out.Stride+i%w] = 255
		}
	}
	return out, sizes[best]
}

// FillHoles sets every background pixel not 4-connected to the mask border.
func FillHoles(m *image.Gray) *image.Gray {
	w, h := m.Rect.Dx(), m.Rect.Dy()
	outside := make([]bool, w*h)
	stack := make([]int, 0, 256)
	push := func(x, y int) {
		i := y*w + x
		if !outside[i] && m.Pix[y*m.Stride+x] == 0 {
			outside[i] = true
			stack = append(stack, i)
		}
	}
	for x := 0; x < w; x++ {
		push(x, 0)
		push(x, h-1)
	}
	for y := 0; y < h; y++ {
		push(0, y)
		push(w-1, y)
	}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		px, py := p%w, p/w
		if px > 0 {
			push(px-1, py)
		}
		if px < w-1 {
			push(px+1, py)
		}
		if py > 0 {
			push(px, py-1)
		}
		if py < h-1 {
			push(px, py+1)
		}
	}
	out := NewMask(w, h)
	for i, o := range outside {
		if !o {
			out.Pix[(i/w)*out.Stride+i%w] = 255
		}
	}
	return out
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
