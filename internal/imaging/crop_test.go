package imaging

import (
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
)

func TestEncodePNG(t *testing.T) {
	img := createPatternImage(40, 20)

	res, err := EncodePNG(img, 1.0)
	if err != nil {
		t.Fatalf("EncodePNG failed: %v", err)
	}
	if res.Width != 40 || res.Height != 20 || res.MimeType != "image/png" {
		t.Errorf("unexpected result header: %+v", res)
	}
	decoded, err := base64.StdEncoding.DecodeString(res.ImageBase64)
	if err != nil {
		t.Fatalf("bad base64: %v", err)
	}
	out, err := png.Decode(strings.NewReader(string(decoded)))
	if err != nil {
		t.Fatalf("bad png: %v", err)
	}
	if out.Bounds().Dx() != 40 {
		t.Errorf("decoded width: got %d", out.Bounds().Dx())
	}
}

func TestEncodePNG_Scale(t *testing.T) {
	res, err := EncodePNG(createPatternImage(40, 20), 2.0)
	if err != nil {
		t.Fatalf("EncodePNG failed: %v", err)
	}
	if res.Width != 80 || res.Height != 40 {
		t.Errorf("scaled size: got %dx%d, want 80x40", res.Width, res.Height)
	}
	if _, err := EncodePNG(createPatternImage(4, 4), 0.01); err == nil {
		t.Error("a scale collapsing the image should fail")
	}
}

func TestPad(t *testing.T) {
	bounds := image.Rect(0, 0, 100, 100)
	tests := []struct {
		name string
		in   image.Rectangle
		want image.Rectangle
	}{
		{"interior", image.Rect(20, 20, 40, 40), image.Rect(15, 15, 45, 45)},
		{"clipped at corner", image.Rect(2, 3, 30, 30), image.Rect(0, 0, 35, 35)},
		{"clipped at far edge", image.Rect(80, 80, 98, 99), image.Rect(75, 75, 100, 100)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Pad(tt.in, 5, bounds); got != tt.want {
				t.Errorf("Pad(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestCropRegion(t *testing.T) {
	img := createPatternImage(100, 100)

	crop, err := CropRegion(img, image.Rect(40, 10, 60, 30))
	if err != nil {
		t.Fatalf("CropRegion failed: %v", err)
	}
	if crop.Bounds() != image.Rect(0, 0, 20, 20) {
		t.Errorf("crop should be origin-anchored 20x20, got %v", crop.Bounds())
	}
	// Column 9 maps to x=49 (red quadrant), column 10 to x=50 (green).
	if c := crop.NRGBAAt(9, 5); c.R != 255 || c.G != 0 {
		t.Errorf("left half should be red, got %v", c)
	}
	if c := crop.NRGBAAt(10, 5); c.G != 255 || c.R != 0 {
		t.Errorf("right half should be green, got %v", c)
	}

	if _, err := CropRegion(img, image.Rect(200, 200, 250, 250)); err == nil {
		t.Error("a region outside the image should fail")
	}
}

func TestCropMask(t *testing.T) {
	m := NewMask(10, 10)
	m.SetGray(5, 5, color.Gray{255})
	c := CropMask(m, image.Rect(4, 4, 8, 8))
	if c.Rect.Dx() != 4 || c.Rect.Dy() != 4 {
		t.Fatalf("size: got %v", c.Rect)
	}
	if c.GrayAt(1, 1).Y != 255 || CountNonZero(c) != 1 {
		t.Errorf("expected single pixel at (1,1), got %d pixels", CountNonZero(c))
	}
}

func TestDownscaleAndUpscaleMask(t *testing.T) {
	img := createInMemoryImage(200, 100, color.RGBA{10, 200, 10, 255})
	small, f := Downscale(img, 50)
	if small.Bounds().Dx() != 50 || small.Bounds().Dy() != 25 {
		t.Errorf("downscaled size: got %v", small.Bounds())
	}
	if f != 0.25 {
		t.Errorf("factor: got %v, want 0.25", f)
	}

	same, f := Downscale(img, 500)
	if same.Bounds().Dx() != 200 || f != 1 {
		t.Errorf("small images should be left alone, got %v factor %v", same.Bounds(), f)
	}

	m := NewMask(10, 5)
	for x := 0; x < 5; x++ {
		for y := 0; y < 5; y++ {
			m.SetGray(x, y, color.Gray{255})
		}
	}
	up := UpscaleMask(m, 20, 10)
	if up.Rect.Dx() != 20 || CountNonZero(up) != 100 {
		t.Errorf("upscaled: %v with %d pixels, want 20x10 with 100", up.Rect, CountNonZero(up))
	}
}

func TestResizeToMask(t *testing.T) {
	conf := image.NewGray(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 2; x++ {
			conf.SetGray(x, y, color.Gray{230})
		}
	}
	m := ResizeToMask(conf, 40, 40, 128)
	if m.GrayAt(5, 20).Y != 255 || m.GrayAt(35, 20).Y != 0 {
		t.Error("left half should be foreground, right half background")
	}
}
