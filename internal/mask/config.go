package mask

// Config controls mask extraction.
type Config struct {
	// Padding grows the candidate box before segmentation.
	Padding int `json:"padding"`

	// MinPixels is the smallest acceptable foreground.
	MinPixels int `json:"min_pixels"`

	// NativeThreshold binarizes detector masks (per-pixel confidence).
	NativeThreshold float64 `json:"native_threshold"`

	// LeafMargin: leaf green is removed when red and orange coverage exceeds
	// green coverage by more than this share of the mask.
	LeafMargin float64 `json:"leaf_margin"`

	CropMargin    int     `json:"crop_margin"`
	FeatherRadius float64 `json:"feather_radius"`

	GrabCut GrabCutConfig `json:"grabcut"`
}

// GrabCutConfig tunes the segmentation fallback.
type GrabCutConfig struct {
	Iterations int `json:"iterations"`
	Components int `json:"components"`

	// MaxSide bounds the working copy the graph is built on.
	MaxSide int `json:"max_side"`

	// Gamma weights the smoothness term.
	Gamma float64 `json:"gamma"`

	// Ellipse is the central seed's semi-axis as a share of the box size.
	Ellipse float64 `json:"ellipse"`

	CannyLow   int     `json:"canny_low"`
	CannyHigh  int     `json:"canny_high"`
	EdgeDilate float64 `json:"edge_dilate"`
}

// DefaultConfig returns the tuned defaults.
func DefaultConfig() Config {
	return Config{
		Padding:         5,
		MinPixels:       25,
		NativeThreshold: 0.5,
		LeafMargin:      0.05,
		CropMargin:      2,
		FeatherRadius:   2,
		GrabCut: GrabCutConfig{
			Iterations: 3,
			Components: 5,
			MaxSide:    96,
			Gamma:      50,
			Ellipse:    0.35,
			CannyLow:   50,
			CannyHigh:  150,
			EdgeDilate: 2,
		},
	}
}
