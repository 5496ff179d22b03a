package imaging

import (
	"image"
	"math"
)

// Grayscale converts img to an origin-anchored 8-bit luminance image using
// ITU-R BT.601 weights (0.299 R + 0.587 G + 0.114 B).
func Grayscale(img image.Image) *image.Gray {
	b := img.Bounds()
	g := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			r, gg, bb := RGB8(img.At(b.Min.X+x, b.Min.Y+y))
			g.Pix[y*g.Stride+x] = uint8(0.299*float64(r) + 0.587*float64(gg) + 0.114*float64(bb) + 0.5)
		}
	}
	return g
}

// Canny runs Canny edge detection and returns an origin-anchored binary image
// where 255 marks an edge pixel.
//
// # Algorithm
//
//  1. Grayscale conversion (BT.601)
//  2. 5x5 Gaussian blur (sigma ≈ 1.4)
//  3. Sobel gradients, magnitude and direction
//  4. Non-maximum suppression along the gradient direction
//  5. Hysteresis: pixels at or above thresholdHigh are kept, pixels between the
//     thresholds are kept when 8-connected to a kept pixel
//
// Thresholds are on the 0-255 intensity scale, as in OpenCV (50/150 is a
// common pair for produce photos, 30/100 for blemish detection).
func Canny(img image.Image, thresholdLow, thresholdHigh int) *image.Gray {
	gray := Grayscale(img)
	width, height := gray.Rect.Dx(), gray.Rect.Dy()
	out := image.NewGray(image.Rect(0, 0, width, height))
	if width < 3 || height < 3 {
		return out
	}

	lum := make([]float64, width*height)
	for i := range lum {
		lum[i] = float64(gray.Pix[(i/width)*gray.Stride+i%width])
	}
	blurred := gaussianBlur(lum, width, height)

	magnitude := make([]float64, width*height)
	direction := make([]float64, width*height)
	sobelX := [3][3]float64{{-1, 0, 1}, {-2, 0, 2}, {-1, 0, 1}}
	sobelY := [3][3]float64{{-1, -2, -1}, {0, 0, 0}, {1, 2, 1}}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var gx, gy float64
			for ky := -1; ky <= 1; ky++ {
				for kx := -1; kx <= 1; kx++ {
					v := blurred[clamp(y+ky, 0, height-1)*width+clamp(x+kx, 0, width-1)]
					gx += v * sobelX[ky+1][kx+1]
					gy += v * sobelY[ky+1][kx+1]
				}
			}
			magnitude[y*width+x] = math.Hypot(gx, gy)
			direction[y*width+x] = math.Atan2(gy, gx)
		}
	}

	suppressed := make([]float64, width*height)
	for y := 1; y < height-1; y++ {
		for x := 1; x < width-1; x++ {
			i := y*width + x
			angle, mag := direction[i], magnitude[i]
			var n1, n2 float64
			switch {
			case (angle >= -math.Pi/8 && angle < math.Pi/8) || angle >= 7*math.Pi/8 || angle < -7*math.Pi/8:
				n1, n2 = magnitude[i-1], magnitude[i+1]
			case (angle >= math.Pi/8 && angle < 3*math.Pi/8) || (angle >= -7*math.Pi/8 && angle < -5*math.Pi/8):
				n1, n2 = magnitude[i-width+1], magnitude[i+width-1]
			case (angle >= 3*math.Pi/8 && angle < 5*math.Pi/8) || (angle >= -5*math.Pi/8 && angle < -3*math.Pi/8):
				n1, n2 = magnitude[i-width], magnitude[i+width]
			default:
				n1, n2 = magnitude[i-width-1], magnitude[i+width+1]
			}
			if mag >= n1 && mag >= n2 {
				suppressed[i] = mag
			}
		}
	}

	low := float64(thresholdLow)
	high := float64(thresholdHigh)

	stack := make([]int, 0, 256)
	for i, v := range suppressed {
		if v >= high && out.Pix[(i/width)*out.Stride+i%width] == 0 {
			out.Pix[(i/width)*out.Stride+i%width] = 255
			stack = append(stack, i)
		}
		for len(stack) > 0 {
			p := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			px, py := p%width, p/width
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					nx, ny := px+dx, py+dy
					if nx < 0 || ny < 0 || nx >= width || ny >= height {
						continue
					}
					j := ny*width + nx
					if suppressed[j] >= low && out.Pix[ny*out.Stride+nx] == 0 {
						out.Pix[ny*out.Stride+nx] = 255
						stack = append(stack, j)
					}
				}
			}
		}
	}
	return out
}

// EdgeFraction returns the share of pixels inside within (all pixels when nil)
// that are set in edges.
func EdgeFraction(edges, within *image.Gray) float64 {
	var hit, total int
	w, h := edges.Rect.Dx(), edges.Rect.Dy()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if within != nil && within.Pix[y*within.Stride+x] == 0 {
				continue
			}
			total++
			if edges.Pix[y*edges.Stride+x] != 0 {
				hit++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(hit) / float64(total)
}

// gaussianBlur applies the 5x5 kernel (sum 273) with replicated borders:
//
//	1  4  7  4  1
//	4 16 26 16  4
//	7 26 41 26  7
//	4 16 26 16  4
//	1  4  7  4  1
func gaussianBlur(src []float64, width, height int) []float64 {
	kernel := [5][5]float64{
		{1, 4, 7, 4, 1},
		{4, 16, 26, 16, 4},
		{7, 26, 41, 26, 7},
		{4, 16, 26, 16, 4},
		{1, 4, 7, 4, 1},
	}
	dst := make([]float64, len(src))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var sum float64
			for ky := -2; ky <= 2; ky++ {
				for kx := -2; kx <= 2; kx++ {
					sum += src[clamp(y+ky, 0, height-1)*width+clamp(x+kx, 0, width-1)] * kernel[ky+2][kx+2]
				}
			}
			dst[y*width+x] = sum / 273
		}
	}
	return dst
}

// clamp constrains val to [min, max].
func clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
