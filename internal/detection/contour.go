package detection

import (
	"image"
	"math"
	"sort"
)

// Point is a pixel position.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Contour is the outer boundary of one foreground region with its basic
// measurements.
type Contour struct {
	Points []Point

	// Area is the polygon area enclosed by the boundary pixel centers
	// (shoelace formula), so it is smaller than the region's pixel count.
	Area float64

	// Perimeter is the closed chain length: 1 per axial step, √2 per
	// diagonal step.
	Perimeter float64
}

// Circularity returns 4π·area/perimeter², 1 for a perfect disk and lower
// for elongated or lobed outlines. A degenerate contour yields 0.
func (c Contour) Circularity() float64 {
	if c.Perimeter == 0 {
		return 0
	}
	return 4 * math.Pi * c.Area / (c.Perimeter * c.Perimeter)
}

// Convexity returns area / convex hull area in [0,1].
func (c Contour) Convexity() float64 {
	hull := PolygonArea(ConvexHull(c.Points))
	if hull == 0 {
		return 0
	}
	return math.Min(1, c.Area/hull)
}

// Simplified returns the contour reduced with ApproxPolygon and measured
// again. A tolerance of about one pixel removes the staircase of a traced
// boundary, whose chain length overstates the true perimeter of curved
// outlines by several percent.
func (c Contour) Simplified(tolerance float64) Contour {
	if len(c.Points) < 3 || tolerance <= 0 {
		return c
	}
	return MeasureContour(ApproxPolygon(c.Points, tolerance))
}

// Bounds returns the bounding rectangle of the contour points.
func (c Contour) Bounds() image.Rectangle {
	if len(c.Points) == 0 {
		return image.Rectangle{}
	}
	r := image.Rect(c.Points[0].X, c.Points[0].Y, c.Points[0].X+1, c.Points[0].Y+1)
	for _, p := range c.Points[1:] {
		r = r.Union(image.Rect(p.X, p.Y, p.X+1, p.Y+1))
	}
	return r
}

// clockwise neighbor offsets in y-down coordinates, starting east.
var moore = [8]Point{{1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1}, {0, -1}, {1, -1}}

// TraceBoundary follows the outer boundary of the first foreground region in
// raster order using Moore-neighbor tracing. The mask should hold a single
// 8-connected region; other regions are ignored. An empty mask gives nil.
func TraceBoundary(m *image.Gray) []Point {
	w, h := m.Rect.Dx(), m.Rect.Dy()
	fg := func(p Point) bool {
		return p.X >= 0 && p.Y >= 0 && p.X < w && p.Y < h && m.Pix[p.Y*m.Stride+p.X] != 0
	}

	start, found := Point{}, false
	for y := 0; y < h && !found; y++ {
		for x := 0; x < w; x++ {
			if m.Pix[y*m.Stride+x] != 0 {
				start, found = Point{x, y}, true
				break
			}
		}
	}
	if !found {
		return nil
	}

	contour := []Point{start}
	cur := start
	// Everything above and to the left of the raster-first pixel is
	// background, so the clockwise search starts at north-east.
	search := 7
	for iter := 0; iter < 4*w*h+8; iter++ {
		dir := -1
		for i := 0; i < 8; i++ {
			d := (search + i) % 8
			if fg(Point{cur.X + moore[d].X, cur.Y + moore[d].Y}) {
				dir = d
				break
			}
		}
		if dir < 0 {
			return contour // isolated pixel
		}
		next := Point{cur.X + moore[dir].X, cur.Y + moore[dir].Y}
		if cur == start && len(contour) > 1 && next == contour[1] {
			return contour[:len(contour)-1]
		}
		contour = append(contour, next)
		cur = next
		if dir%2 == 0 {
			search = (dir + 6) % 8
		} else {
			search = (dir + 5) % 8
		}
	}
	return contour
}

// MeasureContour computes area and perimeter for a closed boundary.
func MeasureContour(points []Point) Contour {
	c := Contour{Points: points, Area: PolygonArea(points)}
	for i := range points {
		a, b := points[i], points[(i+1)%len(points)]
		c.Perimeter += math.Hypot(float64(b.X-a.X), float64(b.Y-a.Y))
	}
	return c
}

// LargestContour returns the outer boundary of the largest 8-connected
// region in m, or false when m has no foreground.
func LargestContour(m *image.Gray) (Contour, bool) {
	region := largestRegion(m)
	points := TraceBoundary(region)
	if len(points) == 0 {
		return Contour{}, false
	}
	return MeasureContour(points), true
}

// largestRegion keeps the biggest 8-connected region of m.
func largestRegion(m *image.Gray) *image.Gray {
	w, h := m.Rect.Dx(), m.Rect.Dy()
	visited := make([]bool, w*h)
	var best []int
	stack := make([]int, 0, 256)
	for i := 0; i < w*h; i++ {
		if visited[i] || m.Pix[(i/w)*m.Stride+i%w] == 0 {
			continue
		}
		var region []int
		visited[i] = true
		stack = append(stack[:0], i)
		for len(stack) > 0 {
			p := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			region = append(region, p)
			px, py := p%w, p/w
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					nx, ny := px+dx, py+dy
					if nx < 0 || ny < 0 || nx >= w || ny >= h {
						continue
					}
					q := ny*w + nx
					if !visited[q] && m.Pix[ny*m.Stride+nx] != 0 {
						visited[q] = true
						stack = append(stack, q)
					}
				}
			}
		}
		if len(region) > len(best) {
			best = region
		}
	}
	out := image.NewGray(image.Rect(0, 0, w, h))
	for _, p := range best {
		out.Pix[(p/w)*out.Stride+p%w] = 255
	}
	return out
}

// PolygonArea returns the absolute shoelace area of a closed polygon.
func PolygonArea(points []Point) float64 {
	if len(points) < 3 {
		return 0
	}
	var sum float64
	for i := range points {
		a, b := points[i], points[(i+1)%len(points)]
		sum += float64(a.X*b.Y - b.X*a.Y)
	}
	return math.Abs(sum) / 2
}

// ConvexHull returns the convex hull of points (Andrew's monotone chain),
// counter-clockwise without collinear points.
func ConvexHull(points []Point) []Point {
	if len(points) < 3 {
		return append([]Point(nil), points...)
	}
	pts := append([]Point(nil), points...)
	sort.Slice(pts, func(i, j int) bool {
		if pts[i].X != pts[j].X {
			return pts[i].X < pts[j].X
		}
		return pts[i].Y < pts[j].Y
	})
	cross := func(o, a, b Point) int {
		return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
	}

	hull := make([]Point, 0, 2*len(pts))
	for _, p := range pts {
		for len(hull) >= 2 && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	lower := len(hull) + 1
	for i := len(pts) - 2; i >= 0; i-- {
		p := pts[i]
		for len(hull) >= lower && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	return hull[:len(hull)-1]
}

// ApproxPolygon simplifies a closed contour with Douglas–Peucker. epsilon is
// the maximum distance a dropped point may lie from the simplified outline.
func ApproxPolygon(points []Point, epsilon float64) []Point {
	n := len(points)
	if n < 3 {
		return append([]Point(nil), points...)
	}

	// Split the closed curve at the point farthest from the first one.
	far, farD := 0, -1.0
	for i, p := range points {
		if d := math.Hypot(float64(p.X-points[0].X), float64(p.Y-points[0].Y)); d > farD {
			far, farD = i, d
		}
	}
	if far == 0 {
		return []Point{points[0]}
	}

	first := douglasPeucker(points[:far+1], epsilon)
	second := douglasPeucker(append(append([]Point(nil), points[far:]...), points[0]), epsilon)
	out := append(first[:len(first)-1], second[:len(second)-1]...)
	return out
}

func douglasPeucker(points []Point, epsilon float64) []Point {
	if len(points) < 3 {
		return append([]Point(nil), points...)
	}
	a, b := points[0], points[len(points)-1]
	idx, maxD := 0, -1.0
	for i := 1; i < len(points)-1; i++ {
		if d := segmentDistance(points[i], a, b); d > maxD {
			idx, maxD = i, d
		}
	}
	if maxD <= epsilon {
		return []Point{a, b}
	}
	left := douglasPeucker(points[:idx+1], epsilon)
	right := douglasPeucker(points[idx:], epsilon)
	return append(left[:len(left)-1], right...)
}

func segmentDistance(p, a, b Point) float64 {
	dx, dy := float64(b.X-a.X), float64(b.Y-a.Y)
	if dx == 0 && dy == 0 {
		return math.Hypot(float64(p.X-a.X), float64(p.Y-a.Y))
	}
	t := (float64(p.X-a.X)*dx + float64(p.Y-a.Y)*dy) / (dx*dx + dy*dy)
	t = math.Max(0, math.Min(1, t))
	return math.Hypot(float64(p.X)-(float64(a.X)+t*dx), float64(p.Y)-(float64(a.Y)+t*dy))
}
