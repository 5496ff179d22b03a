package quality

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/pepper-quality-mcp/internal/imaging"
	"github.com/ironsheep/pepper-quality-mcp/internal/imaging/imagetest"
	"github.com/ironsheep/pepper-quality-mcp/internal/mask"
)

// cropOf wraps img as a tight crop whose mask is the region inside reports.
func cropOf(img *image.NRGBA, inside func(x, y int) bool) *mask.TightCrop {
	b := img.Bounds()
	m := imaging.NewMask(b.Dx(), b.Dy())
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			if inside(x, y) {
				m.Pix[y*m.Stride+x] = 255
			}
		}
	}
	return &mask.TightCrop{Bounds: b, Image: img, Mask: m, Cutout: img, Pixels: imaging.CountNonZero(m)}
}

// pepperCrop draws a lobed pepper filling a 110x110 crop.
func pepperCrop(c color.NRGBA, jitter int) *mask.TightCrop {
	img := imagetest.Canvas(110, 110, imagetest.White)
	r := image.Rect(5, 5, 105, 105)
	imagetest.Pepper(img, r, c, jitter)
	return cropOf(img, imagetest.PepperShape(r))
}

func assertBounded(t *testing.T, m *Metrics) {
	t.Helper()
	for name, v := range map[string]float64{
		"color":    m.ColorUniformity,
		"size":     m.SizeConsistency,
		"surface":  m.SurfaceQuality,
		"ripeness": m.RipenessLevel,
		"overall":  m.OverallQuality,
	} {
		assert.GreaterOrEqual(t, v, 0.0, name)
		assert.LessOrEqual(t, v, 100.0, name)
	}
	assert.Contains(t, []string{Excellent, Good, Fair, Poor}, m.Category)
}

func TestCategoryOf(t *testing.T) {
	tests := []struct {
		overall float64
		want    string
	}{
		{100, Excellent},
		{80, Excellent},
		{79.9, Good},
		{60, Good},
		{59.9, Fair},
		{40, Fair},
		{39.9, Poor},
		{0, Poor},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CategoryOf(tt.overall), "overall %v", tt.overall)
	}
}

func TestNewMetrics_ClampsAndRounds(t *testing.T) {
	m := newMetrics(120, -5, 66.66, 50)
	assert.Equal(t, 100.0, m.ColorUniformity)
	assert.Equal(t, 0.0, m.SizeConsistency)
	assert.Equal(t, 66.7, m.SurfaceQuality)
	assert.InDelta(t, Overall(100, 0, 66.7, 50), m.OverallQuality, 0.05)
	assert.Equal(t, Fair, m.Category)
}

func TestCVStrategy_HealthyRedPepper(t *testing.T) {
	a := NewAnalyzer(DefaultConfig())
	m, name, err := a.Analyze(&Input{Crop: pepperCrop(imagetest.PepperRed, 6)})
	require.NoError(t, err)
	assert.Equal(t, "cv", name)
	assertBounded(t, m)
	assert.GreaterOrEqual(t, m.OverallQuality, 60.0)
	assert.Contains(t, []string{Excellent, Good}, m.Category)
	assert.Greater(t, m.ColorUniformity, 80.0)
	assert.Greater(t, m.RipenessLevel, 75.0)
}

func TestCVStrategy_UsesSuppliedRipeness(t *testing.T) {
	s := &CVStrategy{Config: DefaultCVConfig(), Ripeness: DefaultRipenessConfig()}
	m, err := s.Analyze(&Input{
		Crop:     pepperCrop(imagetest.PepperRed, 6),
		Ripeness: &RipenessEstimate{Percentage: 42.5},
	})
	require.NoError(t, err)
	assert.Equal(t, 42.5, m.RipenessLevel)
}

func TestCVStrategy_Deterministic(t *testing.T) {
	s := &CVStrategy{Config: DefaultCVConfig(), Ripeness: DefaultRipenessConfig()}
	first, err := s.Analyze(&Input{Crop: pepperCrop(imagetest.Yellow, 8)})
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		again, err := s.Analyze(&Input{Crop: pepperCrop(imagetest.Yellow, 8)})
		require.NoError(t, err)
		if diff := cmp.Diff(first, again); diff != "" {
			t.Fatalf("run %d differs (-first +again):\n%s", i, diff)
		}
	}
}

func TestCVStrategy_BlemishesLowerSurface(t *testing.T) {
	s := &CVStrategy{Config: DefaultCVConfig(), Ripeness: DefaultRipenessConfig()}
	clean, err := s.Analyze(&Input{Crop: pepperCrop(imagetest.PepperRed, 4)})
	require.NoError(t, err)

	blemished := pepperCrop(imagetest.PepperRed, 4)
	spot := color.NRGBA{40, 20, 20, 255}
	for _, p := range []image.Point{{30, 30}, {55, 40}, {78, 32}, {35, 60}, {60, 62}, {80, 75}, {40, 82}, {62, 85}} {
		imagetest.Disk(blemished.Image, p.X, p.Y, 4, spot, 0)
	}
	spotted, err := s.Analyze(&Input{Crop: blemished})
	require.NoError(t, err)

	assert.Less(t, spotted.SurfaceQuality, clean.SurfaceQuality)
	assert.Less(t, spotted.OverallQuality, clean.OverallQuality)
}

func TestCVStrategy_SquareScoresLowerSizeThanPepper(t *testing.T) {
	s := &CVStrategy{Config: DefaultCVConfig(), Ripeness: DefaultRipenessConfig()}

	img := imagetest.Canvas(110, 40, imagetest.White)
	imagetest.Rect(img, image.Rect(5, 5, 105, 35), imagetest.PepperRed, 4)
	bar := cropOf(img, func(x, y int) bool { return x >= 5 && x < 105 && y >= 5 && y < 35 })

	long, err := s.Analyze(&Input{Crop: bar})
	require.NoError(t, err)
	lobed, err := s.Analyze(&Input{Crop: pepperCrop(imagetest.PepperRed, 4)})
	require.NoError(t, err)
	assert.Less(t, long.SizeConsistency, lobed.SizeConsistency)
}

func TestAnalyzer_FallsBackToHeuristic(t *testing.T) {
	a := &Analyzer{Strategies: []Strategy{
		failing{name: "cv", err: errors.New("boom")},
		&HeuristicStrategy{MinPixels: 25},
	}}
	m, name, err := a.Analyze(&Input{Crop: pepperCrop(imagetest.PepperRed, 6)})
	require.NoError(t, err)
	assert.Equal(t, "heuristic", name)
	assertBounded(t, m)
}

func TestAnalyzer_AllFail(t *testing.T) {
	img := imagetest.Canvas(20, 20, imagetest.White)
	imagetest.Rect(img, image.Rect(0, 0, 4, 4), imagetest.PepperRed, 0)
	tiny := cropOf(img, func(x, y int) bool { return x < 4 && y < 4 })

	m, name, err := NewAnalyzer(DefaultConfig()).Analyze(&Input{Crop: tiny})
	require.Error(t, err)
	assert.Nil(t, m)
	assert.Empty(t, name)

	var ae *AnalyzeError
	require.ErrorAs(t, err, &ae)
	require.Len(t, ae.Attempts, 2)
	assert.Equal(t, "cv", ae.Attempts[0].Strategy)
	assert.Equal(t, "heuristic", ae.Attempts[1].Strategy)
	assert.ErrorIs(t, err, ErrInsufficientPixels)
}

func TestAnalyzer_NilCrop(t *testing.T) {
	_, _, err := NewAnalyzer(DefaultConfig()).Analyze(&Input{})
	assert.ErrorIs(t, err, ErrInsufficientPixels)
}

func TestHeuristicStrategy_RedPepper(t *testing.T) {
	m, err := (&HeuristicStrategy{MinPixels: 25}).Analyze(&Input{Crop: pepperCrop(imagetest.PepperRed, 6)})
	require.NoError(t, err)
	assertBounded(t, m)
	assert.GreaterOrEqual(t, m.RipenessLevel, 90.0)
	assert.Greater(t, m.ColorUniformity, 80.0)
}

func TestInferHeuristic(t *testing.T) {
	tests := []struct {
		name string
		m    Metrics
		want float64
	}{
		{"all high", Metrics{ColorUniformity: 90, SizeConsistency: 90, SurfaceQuality: 90, RipenessLevel: 90}, 100},
		{"weak surface", Metrics{ColorUniformity: 50, SizeConsistency: 50, SurfaceQuality: 20, RipenessLevel: 50}, 21},
		{"overripe", Metrics{ColorUniformity: 70, SizeConsistency: 70, SurfaceQuality: 70, RipenessLevel: 95}, 66.25},
		{"plain", Metrics{ColorUniformity: 60, SizeConsistency: 60, SurfaceQuality: 60, RipenessLevel: 60}, 60},
		{"floor", Metrics{SurfaceQuality: 10}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, inferHeuristic(&tt.m), 1e-9)
		})
	}
}

func TestRecommendations(t *testing.T) {
	assert.Equal(t, []string{"Good quality bell pepper suitable for fresh market"},
		Recommendations(&Metrics{ColorUniformity: 70, SizeConsistency: 70, SurfaceQuality: 75, RipenessLevel: 60, OverallQuality: 70}))

	got := Recommendations(&Metrics{ColorUniformity: 40, SizeConsistency: 30, SurfaceQuality: 50, RipenessLevel: 20, OverallQuality: 35})
	assert.Equal(t, []string{
		"Consider grading as second quality due to color inconsistency",
		"Shape irregularities detected - may affect market value",
		"Surface defects detected - inspect for damage or disease",
		"Allow more time to ripen for better market value",
		"Consider alternative uses or processing applications",
	}, got)

	got = Recommendations(&Metrics{ColorUniformity: 95, SizeConsistency: 90, SurfaceQuality: 90, RipenessLevel: 90, OverallQuality: 91})
	assert.Equal(t, []string{
		"Optimal ripeness achieved - harvest soon for best quality",
		"Excellent quality - suitable for premium market",
	}, got)

	assert.Nil(t, Recommendations(nil))
}

type failing struct {
	name string
	err  error
}

func (f failing) Name() string                     { return f.name }
func (f failing) Analyze(*Input) (*Metrics, error) { return nil, f.err }
