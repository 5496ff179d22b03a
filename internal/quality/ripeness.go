package quality

import (
	"fmt"
	"image/color"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/ironsheep/pepper-quality-mcp/internal/imaging"
	"github.com/ironsheep/pepper-quality-mcp/internal/mask"
)

// Ripeness stages, in maturation order.
const (
	Unripe   = "unripe"
	Ripening = "ripening"
	Ripe     = "ripe"
	Overripe = "overripe"
)

var stageOrder = []string{Unripe, Ripening, Ripe, Overripe}

// Color bands.
const (
	BandGreen        = "green"
	BandYellowOrange = "yellow_orange"
	BandRed          = "red"
	BandDeepRed      = "deep_red"
	BandDull         = "dull_overripe"
	BandDarkSpot     = "dark_spot"
)

// bandGroup maps each band to the stage it votes for.
var bandGroup = map[string]string{
	BandGreen:        Unripe,
	BandYellowOrange: Ripening,
	BandRed:          Ripe,
	BandDeepRed:      Ripe,
	BandDull:         Overripe,
	BandDarkSpot:     Overripe,
}

// RipenessConfig tunes EstimateRipeness.
type RipenessConfig struct {
	// ColorSpace is "lab" or "hsv". HSV classification is a fallback.
	ColorSpace string `json:"color_space"`
	MinPixels  int    `json:"min_pixels"`

	GainMin   float64 `json:"gain_min"`
	GainMax   float64 `json:"gain_max"`
	ClipLimit float64 `json:"clip_limit"`

	DarkL           float64 `json:"dark_l"`
	DullChroma      float64 `json:"dull_chroma"`
	DeepRedFloor    float64 `json:"deep_red_floor"`
	DeepRedQuantile float64 `json:"deep_red_quantile"`

	// HueWindow is how far, in degrees, the red/yellow and yellow/green
	// boundaries may move to follow the crop's own hue distribution. 0
	// pins them at 50° and 105°.
	HueWindow float64 `json:"hue_window"`

	SecondaryShare float64            `json:"secondary_share"`
	Weights        map[string]float64 `json:"weights"`
}

// DefaultRipenessConfig returns the tuned defaults.
func DefaultRipenessConfig() RipenessConfig {
	return RipenessConfig{
		ColorSpace:      "lab",
		MinPixels:       25,
		GainMin:         0.8,
		GainMax:         1.25,
		ClipLimit:       2.0,
		DarkL:           25,
		DullChroma:      18,
		DeepRedFloor:    45,
		DeepRedQuantile: 0.75,
		HueWindow:       10,
		SecondaryShare:  0.15,
		Weights: map[string]float64{
			BandGreen:        10,
			BandYellowOrange: 55,
			BandRed:          85,
			BandDeepRed:      100,
			BandDull:         40,
			BandDarkSpot:     15,
		},
	}
}

// TimelineStep is one stage of the projected maturation.
type TimelineStep struct {
	Stage string `json:"stage"`

	// Status is "completed", "current" or "upcoming".
	Status      string  `json:"status"`
	DaysFromNow float64 `json:"days_from_now"`
}

// RipenessEstimate is the color-band reading of one pepper.
type RipenessEstimate struct {
	Stage          string  `json:"stage"`
	Percentage     float64 `json:"percentage"`
	DominantGroup  string  `json:"dominant_group"`
	SecondaryGroup string  `json:"secondary_group,omitempty"`
	Transitional   bool    `json:"transitional"`

	DaysToOptimalHarvest float64 `json:"days_to_optimal_harvest"`

	// Bands holds each band's share of the foreground, summing to 1.
	Bands        map[string]float64 `json:"bands"`
	ColorVariety string             `json:"color_variety"`

	HarvestRecommendation string         `json:"harvest_recommendation"`
	Timeline              []TimelineStep `json:"timeline"`
}

// EstimateRipeness classifies the crop's foreground pixels into color bands
// and derives the stage and percentage from the band shares.
func EstimateRipeness(crop *mask.TightCrop, cfg RipenessConfig) (*RipenessEstimate, error) {
	if err := checkCrop(crop, cfg.MinPixels); err != nil {
		return nil, err
	}
	px := grayWorld(foreground(crop), cfg.GainMin, cfg.GainMax)

	var labels []string
	var yellow int
	switch cfg.ColorSpace {
	case "hsv":
		labels, yellow = classifyHSV(px)
	case "lab", "":
		labels, yellow = classifyLab(px, cfg)
	default:
		return nil, fmt.Errorf("unknown ripeness color space %q", cfg.ColorSpace)
	}

	est := &RipenessEstimate{Bands: make(map[string]float64, len(bandGroup))}
	for b := range bandGroup {
		est.Bands[b] = 0
	}
	share := 1 / float64(len(labels))
	for _, b := range labels {
		est.Bands[b] += share
	}
	var pct float64
	for b, s := range est.Bands {
		pct += s * cfg.Weights[b]
	}
	est.Percentage = score(pct)

	est.stage(cfg.SecondaryShare)
	est.ColorVariety = colorVariety(est.Bands, float64(yellow)/float64(len(labels)))
	est.DaysToOptimalHarvest = daysToOptimal(est.Stage, est.Percentage)
	est.HarvestRecommendation = HarvestRecommendation(est.Percentage)
	est.Timeline = timeline(est.Stage, est.DaysToOptimalHarvest)
	return est, nil
}

// stage picks the dominant and secondary groups. A riper secondary group
// moves an unripe pepper to ripening.
func (e *RipenessEstimate) stage(secondaryShare float64) {
	groups := make(map[string]float64, len(stageOrder))
	for b, s := range e.Bands {
		groups[bandGroup[b]] += s
	}
	ranked := append([]string(nil), stageOrder...)
	sort.SliceStable(ranked, func(i, j int) bool { return groups[ranked[i]] > groups[ranked[j]] })

	e.DominantGroup = ranked[0]
	e.Stage = ranked[0]
	if groups[ranked[1]] >= secondaryShare {
		e.SecondaryGroup = ranked[1]
		e.Transitional = true
		if e.Stage == Unripe && (ranked[1] == Ripening || ranked[1] == Ripe) {
			e.Stage = Ripening
		}
	}
}

// grayWorld scales each channel toward the common mean with gains clamped
// to [lo, hi].
func grayWorld(px []color.NRGBA, lo, hi float64) []color.NRGBA {
	var sr, sg, sb float64
	for _, c := range px {
		sr += float64(c.R)
		sg += float64(c.G)
		sb += float64(c.B)
	}
	gray := (sr + sg + sb) / 3
	gain := func(s float64) float64 {
		if s == 0 {
			return hi
		}
		return clamp(gray/s, lo, hi)
	}
	gr, gg, gb := gain(sr), gain(sg), gain(sb)

	out := make([]color.NRGBA, len(px))
	for i, c := range px {
		out[i] = color.NRGBA{
			R: uint8(clamp(math.Round(float64(c.R)*gr), 0, 255)),
			G: uint8(clamp(math.Round(float64(c.G)*gg), 0, 255)),
			B: uint8(clamp(math.Round(float64(c.B)*gb), 0, 255)),
			A: 255,
		}
	}
	return out
}

// equalizeL remaps lightness through a clip-limited histogram equalization.
// Bin counts above clip times the mean are cut and the excess is spread over
// all bins, which keeps the mapping close to identity for narrow histograms.
func equalizeL(ls []float64, clip float64) []float64 {
	const bins = 256
	bin := func(l float64) int {
		return int(clamp(l/100*(bins-1), 0, bins-1))
	}
	hist := make([]float64, bins)
	for _, l := range ls {
		hist[bin(l)]++
	}
	levels := 0
	for _, h := range hist {
		if h > 0 {
			levels++
		}
	}
	if levels < 2 {
		return ls
	}

	n := float64(len(ls))
	limit := clip * n / bins
	var excess float64
	for i, h := range hist {
		if h > limit {
			excess += h - limit
			hist[i] = limit
		}
	}
	cdf := make([]float64, bins)
	var run float64
	for i, h := range hist {
		run += h + excess/bins
		cdf[i] = run
	}

	out := make([]float64, len(ls))
	for i, l := range ls {
		out[i] = cdf[bin(l)] / n * 100
	}
	return out
}

// Default Lab hue-angle boundaries between the chromatic bands.
const (
	redYellowHue   = 50
	yellowGreenHue = 105
)

// classifyLab also counts the yellow-orange pixels that read as yellow
// rather than orange. The band boundaries are placed per crop by splitHue
// and the deep-red cut on a* is a quantile of the crop's red pixels.
func classifyLab(px []color.NRGBA, cfg RipenessConfig) ([]string, int) {
	labs := make([]imaging.Lab, len(px))
	ls := make([]float64, len(px))
	for i, c := range px {
		labs[i] = imaging.RGBToLab(c.R, c.G, c.B)
		ls[i] = labs[i].L
	}
	ls = equalizeL(ls, cfg.ClipLimit)

	hues := make([]float64, len(labs))
	var chromatic []float64
	for i, lab := range labs {
		hues[i] = lab.HueAngle()
		if ls[i] >= cfg.DarkL && lab.Chroma() >= cfg.DullChroma {
			chromatic = append(chromatic, hues[i])
		}
	}
	redEdge := splitHue(chromatic, redYellowHue, cfg.HueWindow)
	greenEdge := splitHue(chromatic, yellowGreenHue, cfg.HueWindow)

	labels := make([]string, len(px))
	var redA []float64
	yellow := 0
	for i, lab := range labs {
		hue := hues[i]
		switch {
		case ls[i] < cfg.DarkL:
			labels[i] = BandDarkSpot
		case lab.Chroma() < cfg.DullChroma || (hue >= 220 && hue < 330):
			labels[i] = BandDull
		case hue < redEdge || hue >= 330:
			labels[i] = BandRed
			redA = append(redA, lab.A)
		case hue < greenEdge:
			labels[i] = BandYellowOrange
			if hue >= 70 {
				yellow++
			}
		default:
			labels[i] = BandGreen
		}
	}

	if len(redA) > 0 {
		sorted := append([]float64(nil), redA...)
		sort.Float64s(sorted)
		threshold := math.Max(cfg.DeepRedFloor, stat.Quantile(cfg.DeepRedQuantile, stat.Empirical, sorted, nil))
		for i, lab := range labs {
			if labels[i] == BandRed && lab.A > threshold {
				labels[i] = BandDeepRed
			}
		}
	}
	return labels, yellow
}

// splitHue returns the boundary between two hue bands. Within window
// degrees of def it sits in the middle of the widest stretch holding none of
// the crop's hues, so a color cluster lying across def is not cut in two.
// Equally wide stretches resolve toward def. Without hues near def, or with
// a zero window, def is returned.
func splitHue(hues []float64, def, window float64) float64 {
	if window <= 0 {
		return def
	}
	lo, hi := def-window, def+window
	var near []float64
	for _, h := range hues {
		if h > lo && h < hi {
			near = append(near, h)
		}
	}
	if len(near) == 0 {
		return def
	}
	sort.Float64s(near)

	best, bestWidth := def, -1.0
	prev := lo
	for _, h := range append(near, hi) {
		width, mid := h-prev, (prev+h)/2
		if width > bestWidth+1e-9 || (math.Abs(width-bestWidth) <= 1e-9 && math.Abs(mid-def) < math.Abs(best-def)) {
			best, bestWidth = mid, width
		}
		prev = h
	}
	return best
}

// classifyHSV buckets pixels with fixed OpenCV hue ranges. There is no
// adaptive deep-red split; very saturated dark reds count as deep red.
func classifyHSV(px []color.NRGBA) ([]string, int) {
	labels := make([]string, len(px))
	yellow := 0
	for i, c := range px {
		hsv := imaging.RGBToHSV(c.R, c.G, c.B)
		switch {
		case hsv.V < 50:
			labels[i] = BandDarkSpot
		case hsv.S < 50 || (hsv.H >= 100 && hsv.H < 165):
			labels[i] = BandDull
		case hsv.H < 15 || hsv.H >= 165:
			if hsv.S > 200 && hsv.V < 170 {
				labels[i] = BandDeepRed
			} else {
				labels[i] = BandRed
			}
		case hsv.H < 35:
			labels[i] = BandYellowOrange
			if hsv.H >= 22 {
				yellow++
			}
		default:
			labels[i] = BandGreen
		}
	}
	return labels, yellow
}

// colorVariety names the dominant chromatic band. yellow is the share of all
// pixels that are yellow rather than orange.
func colorVariety(bands map[string]float64, yellow float64) string {
	red := bands[BandRed] + bands[BandDeepRed]
	orange := bands[BandYellowOrange]
	green := bands[BandGreen]
	switch {
	case red == 0 && orange == 0 && green == 0:
		return "Mixed"
	case red >= orange && red >= green:
		return "Red"
	case orange >= green:
		if yellow*2 >= orange {
			return "Yellow"
		}
		return "Orange"
	default:
		return "Green"
	}
}

func daysToOptimal(stage string, pct float64) float64 {
	var d float64
	switch stage {
	case Unripe:
		d = 7 + (50-pct)*0.2
	case Ripening:
		d = 3 + (80-pct)*0.1
	case Ripe:
		d = (100 - pct) * 0.05
	}
	return math.Round(math.Max(0, d)*10) / 10
}

// HarvestRecommendation describes harvest timing for a ripeness percentage.
func HarvestRecommendation(pct float64) string {
	switch {
	case pct < 30:
		return "Too early - allow more time to develop"
	case pct < 60:
		return "Early harvest - good for storage and transport"
	case pct < 85:
		return "Optimal harvest time - peak quality"
	default:
		return "Harvest immediately - at peak ripeness"
	}
}

func timeline(stage string, days float64) []TimelineStep {
	cur := 0
	for i, s := range stageOrder {
		if s == stage {
			cur = i
		}
	}
	steps := make([]TimelineStep, len(stageOrder))
	for i, s := range stageOrder {
		steps[i] = TimelineStep{Stage: s}
		switch {
		case i < cur:
			steps[i].Status = "completed"
		case i == cur:
			steps[i].Status = "current"
		default:
			steps[i].Status = "upcoming"
			steps[i].DaysFromNow = math.Round((days+float64(i-cur-1)*3)*10) / 10
		}
	}
	return steps
}
