package quality

import (
	"image"
	"math"
)

// glcmOffsets are distance-1 neighbors at 0°, 45°, 90° and 135° (y down).
var glcmOffsets = [4]image.Point{{1, 0}, {1, -1}, {0, -1}, {-1, -1}}

// TextureStats are GLCM properties averaged over the four angles.
type TextureStats struct {
	Contrast    float64 `json:"contrast"`
	Homogeneity float64 `json:"homogeneity"`
	Energy      float64 `json:"energy"`
}

// glcmStats builds a symmetric, normalized co-occurrence matrix per angle
// over pairs whose both pixels are foreground, with gray levels quantized to
// levels bins. Fewer than minPairs pairs in total yields ErrGLCMUnavailable.
func glcmStats(gray *image.Gray, in []bool, levels, minPairs int) (TextureStats, error) {
	w, h := gray.Rect.Dx(), gray.Rect.Dy()
	q := make([]int, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			q[y*w+x] = int(gray.Pix[y*gray.Stride+x]) * levels / 256
		}
	}

	var out TextureStats
	total := 0
	used := 0
	m := make([]float64, levels*levels)
	for _, off := range glcmOffsets {
		for i := range m {
			m[i] = 0
		}
		pairs := 0
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				nx, ny := x+off.X, y+off.Y
				if nx < 0 || ny < 0 || nx >= w || ny >= h || !in[y*w+x] || !in[ny*w+nx] {
					continue
				}
				a, b := q[y*w+x], q[ny*w+nx]
				m[a*levels+b]++
				m[b*levels+a]++
				pairs++
			}
		}
		total += pairs
		if pairs == 0 {
			continue
		}
		norm := float64(2 * pairs)
		var contrast, homog, asm float64
		for i := 0; i < levels; i++ {
			for j := 0; j < levels; j++ {
				p := m[i*levels+j] / norm
				if p == 0 {
					continue
				}
				d := float64(i - j)
				contrast += p * d * d
				homog += p / (1 + d*d)
				asm += p * p
			}
		}
		out.Contrast += contrast
		out.Homogeneity += homog
		out.Energy += math.Sqrt(asm)
		used++
	}
	if total < minPairs || used == 0 {
		return TextureStats{}, ErrGLCMUnavailable
	}
	n := float64(used)
	out.Contrast /= n
	out.Homogeneity /= n
	out.Energy /= n
	return out, nil
}

// localVariance returns the mean squared deviation of each foreground pixel
// from the mean of the foreground pixels in its 5x5 window.
func localVariance(gray *image.Gray, in []bool) float64 {
	w, h := gray.Rect.Dx(), gray.Rect.Dy()
	var sum float64
	n := 0
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !in[y*w+x] {
				continue
			}
			var s float64
			c := 0
			for dy := -2; dy <= 2; dy++ {
				for dx := -2; dx <= 2; dx++ {
					nx, ny := x+dx, y+dy
					if nx < 0 || ny < 0 || nx >= w || ny >= h || !in[ny*w+nx] {
						continue
					}
					s += float64(gray.Pix[ny*gray.Stride+nx])
					c++
				}
			}
			d := float64(gray.Pix[y*gray.Stride+x]) - s/float64(c)
			sum += d * d
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
