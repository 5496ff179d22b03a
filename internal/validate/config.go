package validate

// Config holds the thresholds of every stage.
type Config struct {
	Classifier ClassifierConfig `json:"classifier"`
	Shape      ShapeConfig      `json:"shape"`
	Color      ColorConfig      `json:"color"`
	Texture    TextureConfig    `json:"texture"`
}

// ClassifierConfig controls the classifier cross-check.
type ClassifierConfig struct {
	// TopK predictions are requested; the pepper label may appear anywhere
	// among them.
	TopK int `json:"top_k"`

	// Competitors within the first CompetitorRank predictions with
	// probability above CompetitorMinProb reject the candidate.
	Competitors       []string `json:"competitors"`
	CompetitorRank    int      `json:"competitor_rank"`
	CompetitorMinProb float64  `json:"competitor_min_prob"`

	PepperLabels []string `json:"pepper_labels"`

	// AmbiguousBelow: when the top prediction is below this probability the
	// classifier has no opinion and the candidate passes.
	AmbiguousBelow float64 `json:"ambiguous_below"`
}

// ShapeConfig bounds the candidate box.
type ShapeConfig struct {
	MinSide          float64 `json:"min_side"`
	MinAspect        float64 `json:"min_aspect"`
	MaxAspect        float64 `json:"max_aspect"`
	MaxImageFraction float64 `json:"max_image_fraction"`
}

// ColorConfig bounds the crop's color make-up.
type ColorConfig struct {
	MaxSkinFraction   float64 `json:"max_skin_fraction"`
	MinPepperFraction float64 `json:"min_pepper_fraction"`
}

// TextureConfig bounds the outline and gray-level spread of the crop.
type TextureConfig struct {
	CannyLow  int `json:"canny_low"`
	CannyHigh int `json:"canny_high"`

	// MinContourArea: smaller outlines pass the stage outright.
	MinContourArea float64 `json:"min_contour_area"`

	// MaxCircularity is measured on the outline simplified to within
	// OutlineTolerance pixels, which removes the staircase of the pixel
	// boundary.
	MaxCircularity   float64 `json:"max_circularity"`
	OutlineTolerance float64 `json:"outline_tolerance"`

	// EpsilonFraction of the perimeter is the polygon simplification
	// tolerance; fewer than MinVertices vertices rejects.
	EpsilonFraction float64 `json:"epsilon_fraction"`
	MinVertices     int     `json:"min_vertices"`
	MinGrayStdDev   float64 `json:"min_gray_std_dev"`
}

// DefaultConfig returns the tuned thresholds.
func DefaultConfig() Config {
	return Config{
		Classifier: ClassifierConfig{
			TopK: 5,
			Competitors: []string{
				"apple", "granny smith", "strawberry", "orange", "lemon", "fig",
				"pineapple", "banana", "cucumber", "artichoke",
			},
			CompetitorRank:    3,
			CompetitorMinProb: 0.3,
			PepperLabels:      []string{"bell pepper", "bell_pepper"},
			AmbiguousBelow:    0.5,
		},
		Shape: ShapeConfig{
			MinSide:          50,
			MinAspect:        0.8,
			MaxAspect:        2.0,
			MaxImageFraction: 0.8,
		},
		Color: ColorConfig{
			MaxSkinFraction:   0.30,
			MinPepperFraction: 0.50,
		},
		Texture: TextureConfig{
			CannyLow:         50,
			CannyHigh:        150,
			MinContourArea:   100,
			MaxCircularity:   0.88,
			OutlineTolerance: 1,
			EpsilonFraction:  0.02,
			MinVertices:      4,
			MinGrayStdDev:    15,
		},
	}
}
