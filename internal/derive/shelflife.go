package derive

import "math"

// StorageLife is the expected life under one storage condition.
type StorageLife struct {
	Days float64 `json:"days"`

	// ConditionAfterWeek is the expected condition after seven days.
	ConditionAfterWeek string `json:"condition_after_week"`
}

// Transit holds carrier-specific transit life in days.
type Transit struct {
	TruckRefrigerated float64 `json:"truck_refrigerated"`
	TruckAmbient      float64 `json:"truck_ambient"`
	Boat              float64 `json:"boat"`
	AirCargo          float64 `json:"air_cargo"`
}

// ShelfLife estimates how long the pepper keeps.
type ShelfLife struct {
	RoomTemperature StorageLife `json:"room_temperature"`
	Refrigerated    StorageLife `json:"refrigerated"`
	OptimalStorage  StorageLife `json:"optimal_storage"`
	Transit         Transit     `json:"transit"`

	// SpoilageRate is the fraction of quality lost per day at room
	// temperature.
	SpoilageRate       float64  `json:"spoilage_rate"`
	StorageTips        []string `json:"storage_tips"`
	SpoilageIndicators []string `json:"spoilage_indicators"`
}

var storageTips = []string{
	"Store in crisper drawer at 45-50°F (7-10°C)",
	"Maintain 85-90% humidity",
	"Keep away from ethylene-producing fruits",
	"Store in perforated plastic bags",
}

var spoilageIndicators = []string{
	"Soft spots or wrinkling",
	"Color changes (darkening)",
	"Mold growth",
	"Slimy texture",
	"Off odors",
}

// EstimateShelfLife computes storage life from ripeness and surface scores
// in [0,100]. Riper and more blemished peppers keep for less time.
func EstimateShelfLife(ripeness, surface float64, sev Severity) ShelfLife {
	r, s := unit(ripeness), unit(surface)
	room := 7 * (1.3 - 0.6*r) * (0.5 + 0.5*s) * sev.Multiplier()
	fridge := math.Max(2, room*2.5)
	optimal := math.Max(3, room*3.5)
	room = math.Max(1, room)

	rate := 0.1 * (1 + r*0.5) * (2 - s)
	return ShelfLife{
		RoomTemperature: StorageLife{Days: round1(room), ConditionAfterWeek: ConditionAfter(7, rate)},
		Refrigerated:    StorageLife{Days: round1(fridge), ConditionAfterWeek: ConditionAfter(7, rate*0.4)},
		OptimalStorage:  StorageLife{Days: round1(optimal), ConditionAfterWeek: ConditionAfter(7, rate*0.3)},
		Transit: Transit{
			TruckRefrigerated: round1(0.9 * fridge),
			TruckAmbient:      round1(0.8 * room),
			Boat:              round1(0.75 * fridge),
			AirCargo:          round1(0.95 * fridge),
		},
		SpoilageRate:       math.Round(rate*1000) / 1000,
		StorageTips:        storageTips,
		SpoilageIndicators: spoilageIndicators,
	}
}

// ConditionAfter describes the pepper after days at the given daily
// spoilage rate.
func ConditionAfter(days, rate float64) string {
	remaining := math.Max(0, 100-rate*days*100)
	switch {
	case remaining > 80:
		return "Excellent condition"
	case remaining > 60:
		return "Good condition"
	case remaining > 40:
		return "Fair condition"
	case remaining > 20:
		return "Poor condition, use soon"
	default:
		return "Likely spoiled"
	}
}

func unit(v float64) float64 { return math.Max(0, math.Min(1, v/100)) }

func round1(v float64) float64 { return math.Round(v*10) / 10 }
