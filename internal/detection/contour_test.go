package detection

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rectMask(w, h int, r image.Rectangle) *image.Gray {
	m := image.NewGray(image.Rect(0, 0, w, h))
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			m.SetGray(x, y, color.Gray{255})
		}
	}
	return m
}

func diskMask(w, h, cx, cy, radius int) *image.Gray {
	m := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if (x-cx)*(x-cx)+(y-cy)*(y-cy) <= radius*radius {
				m.SetGray(x, y, color.Gray{255})
			}
		}
	}
	return m
}

func TestTraceBoundary_Rectangle(t *testing.T) {
	t.Parallel()

	m := rectMask(20, 20, image.Rect(5, 5, 15, 11))
	pts := TraceBoundary(m)
	require.Len(t, pts, 28)
	assert.Equal(t, Point{5, 5}, pts[0])

	c := MeasureContour(pts)
	assert.InDelta(t, 45, c.Area, 1e-9)
	assert.InDelta(t, 28, c.Perimeter, 1e-9)
	assert.InDelta(t, 1.0, c.Convexity(), 1e-9)
	assert.Equal(t, image.Rect(5, 5, 15, 11), c.Bounds())

	poly := ApproxPolygon(pts, 0.02*c.Perimeter)
	assert.ElementsMatch(t, []Point{{5, 5}, {14, 5}, {14, 10}, {5, 10}}, poly)
}

func TestTraceBoundary_Degenerate(t *testing.T) {
	t.Parallel()

	assert.Nil(t, TraceBoundary(image.NewGray(image.Rect(0, 0, 5, 5))))

	single := rectMask(5, 5, image.Rect(2, 2, 3, 3))
	assert.Equal(t, []Point{{2, 2}}, TraceBoundary(single))

	pair := rectMask(5, 5, image.Rect(1, 1, 3, 2))
	assert.Equal(t, []Point{{1, 1}, {2, 1}}, TraceBoundary(pair))
}

func TestCircularity_DiskVersusLobes(t *testing.T) {
	t.Parallel()

	disk, ok := LargestContour(diskMask(100, 100, 50, 50, 35))
	require.True(t, ok)
	assert.Greater(t, disk.Circularity(), 0.8)
	assert.Greater(t, disk.Convexity(), 0.95)

	// A plus sign is far from round and far from convex.
	plus := rectMask(100, 100, image.Rect(40, 10, 60, 90))
	for y := 40; y < 60; y++ {
		for x := 10; x < 90; x++ {
			plus.SetGray(x, y, color.Gray{255})
		}
	}
	cross, ok := LargestContour(plus)
	require.True(t, ok)
	assert.Less(t, cross.Circularity(), disk.Circularity())
	assert.Less(t, cross.Convexity(), 0.7)
	assert.GreaterOrEqual(t, len(ApproxPolygon(cross.Points, 0.02*cross.Perimeter)), 8)
}

func TestContour_Simplified(t *testing.T) {
	t.Parallel()

	disk, ok := LargestContour(diskMask(140, 140, 70, 70, 60))
	require.True(t, ok)
	smooth := disk.Simplified(1)
	assert.Greater(t, smooth.Circularity(), 0.95)
	assert.Greater(t, smooth.Circularity(), disk.Circularity())
	assert.Less(t, len(smooth.Points), len(disk.Points))

	square, ok := LargestContour(rectMask(50, 50, image.Rect(10, 10, 40, 40)))
	require.True(t, ok)
	assert.Len(t, square.Simplified(1).Points, 4)
	assert.InDelta(t, square.Area, square.Simplified(1).Area, 1e-9)

	assert.Equal(t, square, square.Simplified(0))
}

func TestLargestContour_PicksBiggestRegion(t *testing.T) {
	t.Parallel()

	m := rectMask(50, 50, image.Rect(0, 0, 4, 4))
	big := rectMask(50, 50, image.Rect(20, 20, 40, 40))
	for i := range m.Pix {
		m.Pix[i] |= big.Pix[i]
	}
	c, ok := LargestContour(m)
	require.True(t, ok)
	assert.Equal(t, image.Rect(20, 20, 40, 40), c.Bounds())

	_, ok = LargestContour(image.NewGray(image.Rect(0, 0, 10, 10)))
	assert.False(t, ok)
}

func TestConvexHull(t *testing.T) {
	t.Parallel()

	pts := []Point{{0, 0}, {4, 0}, {2, 1}, {4, 4}, {0, 4}, {2, 2}}
	hull := ConvexHull(pts)
	assert.ElementsMatch(t, []Point{{0, 0}, {4, 0}, {4, 4}, {0, 4}}, hull)
	assert.InDelta(t, 16, PolygonArea(hull), 1e-9)
}
