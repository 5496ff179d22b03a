package detection

import (
	"image"
	"math"
)

// Box is an axis-aligned rectangle in source-image pixel coordinates.
//
// Coordinates are floats because detectors report sub-pixel boxes. The
// right and bottom edges are exclusive, like image.Rectangle:
//   - (X1, Y1) is the top-left corner
//   - (X2, Y2) is the bottom-right corner
//
// A box with X2 <= X1 or Y2 <= Y1 is degenerate and has zero area.
type Box struct {
	X1 float64 `json:"x1"` // Left edge
	Y1 float64 `json:"y1"` // Top edge
	X2 float64 `json:"x2"` // Right edge (exclusive)
	Y2 float64 `json:"y2"` // Bottom edge (exclusive)
}

// BoxFromRect converts an image.Rectangle to a Box.
func BoxFromRect(r image.Rectangle) Box {
	return Box{X1: float64(r.Min.X), Y1: float64(r.Min.Y), X2: float64(r.Max.X), Y2: float64(r.Max.Y)}
}

// Width returns X2-X1, or 0 for an inverted box.
func (b Box) Width() float64 { return math.Max(0, b.X2-b.X1) }

// Height returns Y2-Y1, or 0 for an inverted box.
func (b Box) Height() float64 { return math.Max(0, b.Y2-b.Y1) }

// Area is zero for inverted or degenerate boxes.
func (b Box) Area() float64 { return b.Width() * b.Height() }

// Rect returns the smallest integer rectangle covering b.
//
// Fractional edges round outward, so a crop taken with the result never
// loses a partially covered pixel.
func (b Box) Rect() image.Rectangle {
	return image.Rect(int(math.Floor(b.X1)), int(math.Floor(b.Y1)), int(math.Ceil(b.X2)), int(math.Ceil(b.Y2)))
}

// IoU computes the intersection-over-union of two boxes.
//
// Parameters:
//   - a, b: The boxes to compare. The order does not matter.
//
// Returns:
//   - float64: Shared area over combined area, in [0,1]. It is 0 when the
//     boxes do not overlap or either has zero area, and 1 for identical
//     non-degenerate boxes.
//
// Non-maximum suppression, forbidden zones and the general-object filter
// all compare boxes with IoU.
func IoU(a, b Box) float64 {
	areaA, areaB := a.Area(), b.Area()
	if areaA <= 0 || areaB <= 0 {
		return 0
	}
	iw := math.Min(a.X2, b.X2) - math.Max(a.X1, b.X1)
	ih := math.Min(a.Y2, b.Y2) - math.Max(a.Y1, b.Y1)
	if iw <= 0 || ih <= 0 {
		return 0
	}
	inter := iw * ih
	return inter / (areaA + areaB - inter)
}
