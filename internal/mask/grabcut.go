package mask

import (
	"context"
	"errors"
	"image"
	"math"

	"github.com/ironsheep/pepper-quality-mcp/internal/imaging"
)

type seed uint8

const (
	probBG seed = iota
	probFG
	fixedBG
)

// GrabCutStrategy segments the box without help from the detector.
//
// Seeds: red, orange and yellow pixels plus a central ellipse are probable
// foreground, everything else probable background. Leaf green is forced to
// background when warm colors dominate it by LeafMargin; otherwise green
// counts as pepper color. Foreground and background color GMMs and a
// graph min-cut are then alternated for Config.Iterations rounds on a
// downscaled working copy. The cut is intersected with dilated Canny edges
// joined with the color prior, cleaned with morphology and reduced to its
// largest region.
type GrabCutStrategy struct {
	Config     GrabCutConfig
	LeafMargin float64
}

func (s *GrabCutStrategy) Name() string { return "grabcut" }

func (s *GrabCutStrategy) Segment(ctx context.Context, _ *Request, _ image.Rectangle, roi *image.NRGBA) (*image.Gray, error) {
	w, h := roi.Rect.Dx(), roi.Rect.Dy()
	if w < 3 || h < 3 {
		return nil, errors.New("region too small to segment")
	}

	work, _ := imaging.Downscale(roi, s.Config.MaxSide)
	warm := imaging.BandFraction(work, nil, imaging.WarmPrior...)
	green := imaging.BandFraction(work, nil, imaging.LeafGreen)
	leafIsBackground := warm-green > s.LeafMargin

	seeds := s.seed(work, leafIsBackground)
	cut, err := s.iterate(ctx, work, seeds)
	if err != nil {
		return nil, err
	}

	m := imaging.UpscaleMask(cut, w, h)
	edges := imaging.Dilate(imaging.Canny(roi, s.Config.CannyLow, s.Config.CannyHigh), s.Config.EdgeDilate)
	m = imaging.And(m, imaging.Or(edges, colorPrior(roi, !leafIsBackground)))
	return clean(m), nil
}

func (s *GrabCutStrategy) seed(work *image.NRGBA, leafIsBackground bool) []seed {
	w, h := work.Rect.Dx(), work.Rect.Dy()
	warm := imaging.BandMask(work, imaging.WarmPrior...)
	leaf := imaging.BandMask(work, imaging.LeafGreen)

	cx, cy := float64(w)/2, float64(h)/2
	ax, ay := math.Max(1, s.Config.Ellipse*float64(w)), math.Max(1, s.Config.Ellipse*float64(h))
	seeds := make([]seed, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			isLeaf := leaf.Pix[y*leaf.Stride+x] != 0
			switch {
			case isLeaf && leafIsBackground:
				seeds[i] = fixedBG
			case isLeaf, warm.Pix[y*warm.Stride+x] != 0:
				seeds[i] = probFG
			default:
				dx, dy := (float64(x)+0.5-cx)/ax, (float64(y)+0.5-cy)/ay
				if dx*dx+dy*dy <= 1 {
					seeds[i] = probFG
				}
			}
		}
	}
	return seeds
}

// iterate alternates GMM fitting and min-cut and returns the final
// foreground at the working copy's size.
func (s *GrabCutStrategy) iterate(ctx context.Context, work *image.NRGBA, seeds []seed) (*image.Gray, error) {
	w, h := work.Rect.Dx(), work.Rect.Dy()
	colors := make([]imaging.Vec3, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := work.NRGBAAt(x, y)
			colors[y*w+x] = imaging.Vec3{float64(c.R), float64(c.G), float64(c.B)}
		}
	}

	fg := make([]bool, w*h)
	for i, sd := range seeds {
		fg[i] = sd == probFG
	}

	links := neighborLinks(colors, w, h, s.Config.Gamma)
	for it := 0; it < s.Config.Iterations; it++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var fgSamples, bgSamples []imaging.Vec3
		for i, c := range colors {
			if fg[i] {
				fgSamples = append(fgSamples, c)
			} else {
				bgSamples = append(bgSamples, c)
			}
		}
		// With nothing on one side there is no contrast to cut on.
		if len(fgSamples) < s.Config.Components || len(bgSamples) < s.Config.Components {
			break
		}
		fgModel, err := fitGMM(fgSamples, s.Config.Components)
		if err != nil {
			return nil, err
		}
		bgModel, err := fitGMM(bgSamples, s.Config.Components)
		if err != nil {
			return nil, err
		}
		fg = minCut(colors, seeds, links, fgModel, bgModel)
	}

	out := imaging.NewMask(w, h)
	for i, f := range fg {
		if f {
			out.Pix[(i/w)*out.Stride+i%w] = 255
		}
	}
	return out, nil
}

type link struct {
	a, b int
	w    float64
}

// neighborLinks builds the 8-connected smoothness terms
// gamma/dist · exp(-beta·|ci - cj|²), with beta the inverse of twice the
// mean squared neighbor difference.
func neighborLinks(colors []imaging.Vec3, w, h int, gamma float64) []link {
	type offset struct {
		dx, dy int
		dist   float64
	}
	offsets := []offset{{1, 0, 1}, {0, 1, 1}, {1, 1, math.Sqrt2}, {-1, 1, math.Sqrt2}}

	var links []link
	var diffs, dists []float64
	var sum float64
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			for _, o := range offsets {
				nx, ny := x+o.dx, y+o.dy
				if nx < 0 || nx >= w || ny >= h {
					continue
				}
				a, b := y*w+x, ny*w+nx
				d := sqDist(colors[a], colors[b])
				sum += d
				links = append(links, link{a: a, b: b})
				diffs = append(diffs, d)
				dists = append(dists, o.dist)
			}
		}
	}
	beta := 0.0
	if sum > 0 {
		beta = float64(len(links)) / (2 * sum)
	}
	for i := range links {
		links[i].w = gamma / dists[i] * math.Exp(-beta*diffs[i])
	}
	return links
}

func sqDist(a, b imaging.Vec3) float64 {
	d0, d1, d2 := a[0]-b[0], a[1]-b[1], a[2]-b[2]
	return d0*d0 + d1*d1 + d2*d2
}

// minCut labels every pixel by a source/sink min-cut: the source side is
// foreground.
func minCut(colors []imaging.Vec3, seeds []seed, links []link, fgModel, bgModel *gmm) []bool {
	n := len(colors)
	src, sink := n, n+1
	g := newFlowGraph(n + 2)
	const hard = 1e9
	for i, c := range colors {
		if seeds[i] == fixedBG {
			g.addEdge(i, sink, hard, 0)
			continue
		}
		// Cutting the source edge labels the pixel background, so it costs
		// the background penalty, and vice versa. Only the difference
		// matters, which keeps both capacities non-negative.
		costBG, costFG := bgModel.nll(c), fgModel.nll(c)
		low := math.Min(costBG, costFG)
		g.addEdge(src, i, costBG-low, 0)
		g.addEdge(i, sink, costFG-low, 0)
	}
	for _, l := range links {
		g.addEdge(l.a, l.b, l.w, l.w)
	}
	g.maxFlow(src, sink)
	side := g.sourceSide(src)

	fg := make([]bool, n)
	for i := range fg {
		fg[i] = side[i] && seeds[i] != fixedBG
	}
	return fg
}
