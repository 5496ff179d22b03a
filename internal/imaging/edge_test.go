package imaging

import (
	"image"
	"image/color"
	"math"
	"testing"
)

func TestCanny_SquareOutline(t *testing.T) {
	img := createEdgeTestImage(100, 100)

	edges := Canny(img, 50, 150)
	if edges.Rect.Dx() != 100 || edges.Rect.Dy() != 100 {
		t.Fatalf("dimensions: got %v, want 100x100", edges.Rect)
	}

	// The square spans 25..75; edges should sit on its border, not inside.
	if edges.GrayAt(50, 50).Y != 0 {
		t.Error("center of a flat square should not be an edge")
	}
	onBorder := false
	for x := 22; x <= 28; x++ {
		if edges.GrayAt(x, 50).Y == 255 {
			onBorder = true
		}
	}
	if !onBorder {
		t.Error("expected an edge pixel near the left side of the square")
	}
}

func TestCanny_UniformImage(t *testing.T) {
	img := createInMemoryImage(50, 50, color.RGBA{128, 128, 128, 255})
	if n := CountNonZero(Canny(img, 50, 150)); n != 0 {
		t.Errorf("uniform image produced %d edge pixels", n)
	}
}

func TestCanny_TinyImage(t *testing.T) {
	edges := Canny(createInMemoryImage(2, 2, color.White), 50, 150)
	if edges.Rect.Dx() != 2 || CountNonZero(edges) != 0 {
		t.Errorf("tiny image: got %v with %d edges", edges.Rect, CountNonZero(edges))
	}
}

func TestCanny_LowerThresholdsFindMore(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 60, 60))
	for y := 0; y < 60; y++ {
		for x := 0; x < 60; x++ {
			v := uint8(100)
			if x >= 30 {
				v = 130 // weak step
			}
			img.Set(x, y, color.RGBA{v, v, v, 255})
		}
	}
	strict := CountNonZero(Canny(img, 100, 200))
	loose := CountNonZero(Canny(img, 10, 30))
	if strict != 0 {
		t.Errorf("a 30-level step should not pass 100/200 thresholds, got %d", strict)
	}
	if loose == 0 {
		t.Error("a 30-level step should pass 10/30 thresholds")
	}
}

func TestEdgeFraction(t *testing.T) {
	edges := NewMask(10, 10)
	for x := 0; x < 10; x++ {
		edges.Pix[x] = 255
	}
	if got := EdgeFraction(edges, nil); math.Abs(got-0.1) > 1e-9 {
		t.Errorf("EdgeFraction(all) = %v, want 0.1", got)
	}
	within := NewMask(10, 10)
	for x := 0; x < 10; x++ {
		within.Pix[x] = 255
		within.Pix[10+x] = 255
	}
	if got := EdgeFraction(edges, within); math.Abs(got-0.5) > 1e-9 {
		t.Errorf("EdgeFraction(within) = %v, want 0.5", got)
	}
	if got := EdgeFraction(edges, NewMask(10, 10)); got != 0 {
		t.Errorf("empty region should give 0, got %v", got)
	}
}

func TestGrayscale(t *testing.T) {
	g := Grayscale(createInMemoryImage(4, 4, color.RGBA{255, 0, 0, 255}))
	if v := g.GrayAt(1, 1).Y; v != 76 {
		t.Errorf("BT.601 red luminance: got %d, want 76", v)
	}
}

func TestGaussianBlur(t *testing.T) {
	width, height := 11, 11
	flat := make([]float64, width*height)
	for i := range flat {
		flat[i] = 0.5
	}
	for i, v := range gaussianBlur(flat, width, height) {
		if math.Abs(v-0.5) > 1e-9 {
			t.Fatalf("uniform input changed at %d: %v", i, v)
		}
	}

	spot := make([]float64, width*height)
	spot[5*width+5] = 1
	blurred := gaussianBlur(spot, width, height)
	if blurred[5*width+5] >= 1 {
		t.Error("bright spot should be reduced after blur")
	}
	if blurred[5*width+4] == 0 || blurred[4*width+5] == 0 {
		t.Error("neighbors should receive some brightness from blur")
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		val, min, max, want int
	}{
		{5, 0, 10, 5},
		{-1, 0, 10, 0},
		{15, 0, 10, 10},
		{0, 0, 10, 0},
		{10, 0, 10, 10},
	}
	for _, tt := range tests {
		if got := clamp(tt.val, tt.min, tt.max); got != tt.want {
			t.Errorf("clamp(%d, %d, %d): got %d, want %d", tt.val, tt.min, tt.max, got, tt.want)
		}
	}
}

// createEdgeTestImage draws a black square on white covering the middle half.
func createEdgeTestImage(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.White)
		}
	}
	for y := height / 4; y < 3*height/4; y++ {
		for x := width / 4; x < 3*width/4; x++ {
			img.Set(x, y, color.Black)
		}
	}
	return img
}
