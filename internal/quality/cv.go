package quality

import (
	"errors"
	"image/color"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/ironsheep/pepper-quality-mcp/internal/detection"
	"github.com/ironsheep/pepper-quality-mcp/internal/imaging"
	"github.com/ironsheep/pepper-quality-mcp/internal/logger"
)

// CVConfig tunes CVStrategy.
type CVConfig struct {
	MinPixels int `json:"min_pixels"`

	// Clusters bounds k for the k-means color split; ClusterSpread is the
	// Lab distance at which clusters count as fully distinct colors.
	Clusters      int     `json:"clusters"`
	ClusterSample int     `json:"cluster_sample"`
	ClusterSpread float64 `json:"cluster_spread"`

	ExpectedCircularity float64 `json:"expected_circularity"`
	AspectMin           float64 `json:"aspect_min"`
	AspectMax           float64 `json:"aspect_max"`

	GLCMLevels   int `json:"glcm_levels"`
	GLCMMinPairs int `json:"glcm_min_pairs"`
	CannyLow     int `json:"canny_low"`
	CannyHigh    int `json:"canny_high"`
}

// DefaultCVConfig returns the tuned defaults.
func DefaultCVConfig() CVConfig {
	return CVConfig{
		MinPixels:           25,
		Clusters:            5,
		ClusterSample:       4000,
		ClusterSpread:       40,
		ExpectedCircularity: 0.8,
		AspectMin:           0.6,
		AspectMax:           1.4,
		GLCMLevels:          64,
		GLCMMinPairs:        16,
		CannyLow:            30,
		CannyHigh:           100,
	}
}

// CVStrategy is the primary analyzer.
type CVStrategy struct {
	Config   CVConfig
	Ripeness RipenessConfig
}

func (s *CVStrategy) Name() string { return "cv" }

func (s *CVStrategy) Analyze(in *Input) (*Metrics, error) {
	if err := checkCrop(in.Crop, s.Config.MinPixels); err != nil {
		return nil, err
	}
	ripe := in.Ripeness
	if ripe == nil {
		var err error
		if ripe, err = EstimateRipeness(in.Crop, s.Ripeness); err != nil {
			return nil, err
		}
	}
	size, err := s.sizeConsistency(in)
	if err != nil {
		return nil, err
	}
	return newMetrics(s.colorUniformity(in), size, s.surfaceQuality(in), ripe.Percentage), nil
}

// colorUniformity combines hue spread, saturation spread and how many
// distinct colors k-means finds.
func (s *CVStrategy) colorUniformity(in *Input) float64 {
	px := foreground(in.Crop)
	hues := make([]float64, len(px))
	sats := make([]float64, len(px))
	for i, c := range px {
		hsv := imaging.RGBToHSV(c.R, c.G, c.B)
		hues[i], sats[i] = hsv.H, hsv.S
	}
	_, satStd := stat.PopMeanStdDev(sats, nil)

	hueU := math.Max(0, 1-circularHueStd(hues)/50)
	satU := math.Max(0, 1-satStd/100)
	return (hueU*0.5 + satU*0.3 + s.clusterUniformity(px)*0.2) * 100
}

func (s *CVStrategy) clusterUniformity(px []color.NRGBA) float64 {
	k := s.Config.Clusters
	if len(px)/10 < k {
		k = len(px) / 10
	}
	if k < 2 {
		return 1
	}
	step := 1
	if s.Config.ClusterSample > 0 && len(px) > s.Config.ClusterSample {
		step = (len(px) + s.Config.ClusterSample - 1) / s.Config.ClusterSample
	}
	var points []imaging.Vec3
	for i := 0; i < len(px); i += step {
		lab := imaging.RGBToLab(px[i].R, px[i].G, px[i].B)
		points = append(points, imaging.Vec3{lab.L, lab.A, lab.B})
	}
	cl := imaging.KMeans(points, k, 20)
	if len(cl.Centers) < 2 {
		return 1
	}

	shares := make([]float64, len(cl.Sizes))
	var spread float64
	var pairs int
	for i, n := range cl.Sizes {
		shares[i] = float64(n) / float64(len(points))
		for j := i + 1; j < len(cl.Centers); j++ {
			a, b := cl.Centers[i], cl.Centers[j]
			spread += math.Sqrt((a[0]-b[0])*(a[0]-b[0]) + (a[1]-b[1])*(a[1]-b[1]) + (a[2]-b[2])*(a[2]-b[2]))
			pairs++
		}
	}
	spread /= float64(pairs)
	entropy := stat.Entropy(shares) / math.Log(float64(len(shares)))
	return 1 - entropy*math.Min(1, spread/s.Config.ClusterSpread)
}

// sizeConsistency scores the outline: circularity near the expected value,
// a near-square bounding box and high convexity.
func (s *CVStrategy) sizeConsistency(in *Input) (float64, error) {
	c, ok := detection.LargestContour(in.Crop.Mask)
	if !ok || c.Perimeter == 0 {
		return 0, errors.New("mask has no measurable outline")
	}
	exp := s.Config.ExpectedCircularity
	circScore := math.Max(0, 1-math.Abs(c.Circularity()-exp)/exp)

	b := c.Bounds()
	aspect := float64(b.Dx()) / float64(b.Dy())
	aspectScore := 1.0
	if aspect < s.Config.AspectMin || aspect > s.Config.AspectMax {
		aspectScore = math.Max(0, 1-math.Abs(aspect-1))
	}
	return (circScore*0.4 + aspectScore*0.4 + c.Convexity()*0.2) * 100, nil
}

// surfaceQuality combines GLCM texture, edge density inside the eroded mask
// and local intensity variance.
func (s *CVStrategy) surfaceQuality(in *Input) float64 {
	gray, fg := maskedGray(in.Crop)
	localVar := localVariance(gray, fg)
	varianceScore := math.Max(0, 1-localVar/1000)

	texture := varianceScore
	if t, err := glcmStats(gray, fg, s.Config.GLCMLevels, s.Config.GLCMMinPairs); err == nil {
		texture = t.Homogeneity*0.4 + t.Energy*0.3 + (1-math.Min(t.Contrast/100, 1))*0.3
	} else {
		logger.Debug("quality", "texture falls back to local variance: %v", err)
	}

	edges := imaging.Canny(in.Crop.Image, s.Config.CannyLow, s.Config.CannyHigh)
	density := imaging.EdgeFraction(edges, imaging.Erode(in.Crop.Mask, 1))
	edgeScore := math.Max(0, 1-density*5.1)

	return (texture*0.5 + edgeScore*0.3 + varianceScore*0.2) * 100
}
