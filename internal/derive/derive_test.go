package derive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/pepper-quality-mcp/internal/quality"
)

func TestSeverityOf(t *testing.T) {
	tests := []struct {
		surface float64
		want    Severity
		mult    float64
		penalty int
	}{
		{95, SeverityNone, 1, 0},
		{80, SeverityNone, 1, 0},
		{79.9, SeverityMinor, 0.85, 0},
		{65, SeverityMinor, 0.85, 0},
		{64.9, SeverityModerate, 0.65, 1},
		{45, SeverityModerate, 0.65, 1},
		{44.9, SeveritySevere, 0.4, 2},
		{0, SeveritySevere, 0.4, 2},
	}
	for _, tt := range tests {
		s := SeverityOf(tt.surface)
		assert.Equal(t, tt.want, s, "surface %v", tt.surface)
		assert.Equal(t, tt.mult, s.Multiplier())
		assert.Equal(t, tt.penalty, s.GradePenalty())
	}
}

func TestEstimateShelfLife(t *testing.T) {
	// r = 0.5, s = 1: room = 7 * 1.0 * 1.0.
	sl := EstimateShelfLife(50, 100, SeverityNone)
	assert.Equal(t, 7.0, sl.RoomTemperature.Days)
	assert.Equal(t, 17.5, sl.Refrigerated.Days)
	assert.Equal(t, 24.5, sl.OptimalStorage.Days)
	assert.Equal(t, 15.8, sl.Transit.TruckRefrigerated)
	assert.Equal(t, 5.6, sl.Transit.TruckAmbient)
	assert.Equal(t, 13.1, sl.Transit.Boat)
	assert.Equal(t, 16.6, sl.Transit.AirCargo)
	assert.InDelta(t, 0.125, sl.SpoilageRate, 1e-9)
	assert.Equal(t, "Likely spoiled", sl.RoomTemperature.ConditionAfterWeek)
	assert.Equal(t, "Good condition", sl.Refrigerated.ConditionAfterWeek)
	assert.Equal(t, "Good condition", sl.OptimalStorage.ConditionAfterWeek)
	assert.Len(t, sl.StorageTips, 4)
	assert.Len(t, sl.SpoilageIndicators, 5)
}

func TestEstimateShelfLife_Floors(t *testing.T) {
	sl := EstimateShelfLife(100, 0, SeveritySevere)
	assert.Equal(t, 1.0, sl.RoomTemperature.Days)
	assert.GreaterOrEqual(t, sl.Refrigerated.Days, 2.0)
	assert.GreaterOrEqual(t, sl.OptimalStorage.Days, 3.0)
	assert.InDelta(t, 0.3, sl.SpoilageRate, 1e-9)
	assert.Equal(t, "Likely spoiled", sl.RoomTemperature.ConditionAfterWeek)
}

func TestEstimateShelfLife_Ordering(t *testing.T) {
	fresh := EstimateShelfLife(20, 90, SeverityNone)
	ripe := EstimateShelfLife(90, 90, SeverityNone)
	damaged := EstimateShelfLife(20, 90, SeverityModerate)

	assert.Greater(t, fresh.RoomTemperature.Days, ripe.RoomTemperature.Days)
	assert.Greater(t, fresh.RoomTemperature.Days, damaged.RoomTemperature.Days)
	for _, sl := range []ShelfLife{fresh, ripe, damaged} {
		assert.GreaterOrEqual(t, sl.OptimalStorage.Days, sl.Refrigerated.Days)
		assert.GreaterOrEqual(t, sl.Refrigerated.Days, sl.RoomTemperature.Days)
	}
}

func TestConditionAfter(t *testing.T) {
	assert.Equal(t, "Excellent condition", ConditionAfter(1, 0.1))
	assert.Equal(t, "Good condition", ConditionAfter(3, 0.1))
	assert.Equal(t, "Fair condition", ConditionAfter(5, 0.1))
	assert.Equal(t, "Poor condition, use soon", ConditionAfter(7, 0.1))
	assert.Equal(t, "Likely spoiled", ConditionAfter(20, 0.1))
}

func TestEstimateNutrition(t *testing.T) {
	assert.Equal(t, 50.0, EstimateWeight(10))
	assert.Equal(t, 120.0, EstimateWeight(1200))
	assert.Equal(t, 200.0, EstimateWeight(50000))

	green := EstimateNutrition("Green", 100, 0, SeverityNone, 1000)
	assert.Equal(t, 100.0, green.EstimatedWeightG)
	assert.Equal(t, 96.0, green.Per100g.VitaminC)
	assert.Equal(t, 3131.0, green.Per100g.VitaminA)
	assert.Equal(t, 31.0, green.PerPepper.Calories)
	assert.NotContains(t, green.Highlights, "Red peppers have highest nutrient density")
	assert.Len(t, green.HealthBenefits, 5)
	assert.NotContains(t, green.HealthBenefits, "Powerful antioxidant protection")

	red := EstimateNutrition("Red", 100, 100, SeverityNone, 2000)
	assert.Equal(t, 216.0, red.Per100g.VitaminC)
	assert.Equal(t, 432.0, red.PerPepper.VitaminC)
	assert.Equal(t, 6262.0, red.Per100g.VitaminA)
	assert.Equal(t, []string{
		"Excellent vitamin C source (432mg)",
		"High in vitamin A (6262 IU)",
		"Rich in antioxidants",
		"Red peppers have highest nutrient density",
	}, red.Highlights)
	assert.Equal(t, 216.0, red.Per100g.Antioxidants)
	require.Len(t, red.HealthBenefits, 6)
	assert.Equal(t, "Supports immune system (Vitamin C)", red.HealthBenefits[0])
	assert.Equal(t, "Powerful antioxidant protection", red.HealthBenefits[5])

	blemished := EstimateNutrition("Red", 100, 100, SeveritySevere, 2000)
	assert.Less(t, blemished.PerPepper.VitaminC, red.PerPepper.VitaminC)
	assert.Equal(t, red.PerPepper.Calories, blemished.PerPepper.Calories)
}

func TestGradeMarket(t *testing.T) {
	a := GradeMarket(90, 90, 80, 88, SeverityNone, 1.0)
	assert.Equal(t, "A", a.Grade)
	assert.Equal(t, 0, a.Downgraded)
	assert.Equal(t, "PHP", a.Currency)
	assert.InDelta(t, 180*0.88*1.06, a.PricePerKg, 0.01)
	assert.Len(t, a.Advice, 4)

	b := GradeMarket(60, 60, 60, 60, SeverityMinor, 1.0)
	assert.Equal(t, "B", b.Grade)

	c := GradeMarket(30, 30, 30, 30, SeveritySevere, 1.0)
	assert.Equal(t, "C", c.Grade)
	assert.Equal(t, 0, c.Downgraded)

	down := GradeMarket(100, 60, 100, 80, SeverityModerate, 1.0)
	assert.Equal(t, 84.0, down.Score)
	assert.Equal(t, "B", down.Grade)
	assert.Equal(t, 1, down.Downgraded)
}

func TestGradeMarket_MonotoneInSurface(t *testing.T) {
	rank := map[string]int{"A": 0, "B": 1, "C": 2}
	for _, ripeness := range []float64{0, 25, 50, 75, 100} {
		for _, size := range []float64{0, 50, 100} {
			prev := 3
			for surface := 0.0; surface <= 100; surface += 0.5 {
				g := GradeMarket(ripeness, surface, size, 50, SeverityOf(surface), 1.0)
				assert.LessOrEqual(t, rank[g.Grade], prev, "ripeness %v size %v surface %v", ripeness, size, surface)
				prev = rank[g.Grade]
			}
		}
	}
}

func TestRecommendUsage(t *testing.T) {
	tests := []struct {
		name     string
		ripeness float64
		surface  float64
		variety  string
		dark     float64
		want     []string
		disease  bool
	}{
		{"ripe red", 75, 85, "Red", 0, []string{"salad", "cooking"}, false},
		{"very ripe", 90, 85, "Red", 0, []string{"salad", "sauce"}, false},
		{"green salad excluded", 70, 85, "Green", 0, []string{"cooking"}, false},
		{"blemished", 50, 40, "Red", 0, []string{"cooking", "sauce"}, true},
		{"dark spots", 75, 85, "Red", 0.12, []string{"cooking"}, true},
		{"default cooking", 10, 90, "Green", 0, []string{"cooking"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := RecommendUsage(tt.ripeness, tt.surface, tt.variety, SeverityOf(tt.surface), tt.dark)
			assert.Equal(t, tt.want, u.Tags)
			assert.Equal(t, tt.disease, u.DiseaseSuspected)
		})
	}
}

func TestPredictVariety(t *testing.T) {
	v := PredictVariety("Yellow", 900, 900, 80)
	assert.Equal(t, "yellow_bell", v.Name)
	assert.Equal(t, 98.0, v.Confidence)
	assert.Equal(t, 1.1, v.MarketValue)

	red := PredictVariety("Red", 1000, 1000, 80)
	assert.Equal(t, "california_wonder", red.Name)
	require.NotEmpty(t, red.Alternatives)
	assert.Equal(t, "king_arthur", red.Alternatives[0].Name)

	mini := PredictVariety("Mixed", 400, 400, 50)
	assert.Equal(t, "mini_sweet", mini.Name)

	assert.Equal(t, red, PredictVariety("Red", 1000, 1000, 80))
}

func TestDerive(t *testing.T) {
	_, err := Derive(Input{})
	assert.ErrorIs(t, err, ErrMissingInput)

	m := &quality.Metrics{ColorUniformity: 90, SizeConsistency: 85, SurfaceQuality: 88, RipenessLevel: 85, OverallQuality: 87}
	r := &quality.RipenessEstimate{
		Stage:                quality.Ripe,
		Percentage:           85,
		ColorVariety:         "Red",
		DaysToOptimalHarvest: 0.8,
		Bands:                map[string]float64{quality.BandRed: 1},
	}
	e, err := Derive(Input{Metrics: m, Ripeness: r, Pixels: 900, Width: 110, Height: 110})
	require.NoError(t, err)

	assert.Equal(t, SeverityNone, e.Severity)
	assert.Equal(t, "A", e.MarketGrade.Grade)
	assert.Contains(t, e.Usage.Tags, "salad")
	assert.Equal(t, 90.0, e.Nutrition.EstimatedWeightG)
	assert.Equal(t, "Approaching optimal harvest time", e.Advice[0])
	assert.Contains(t, e.Advice, "Variety: "+title(e.Variety.Name))
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "King Arthur", title("king_arthur"))
	assert.Equal(t, "", title(""))
}
