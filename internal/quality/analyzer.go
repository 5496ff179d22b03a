package quality

import (
	"github.com/ironsheep/pepper-quality-mcp/internal/logger"
	"github.com/ironsheep/pepper-quality-mcp/internal/mask"
)

// Input is one segmented pepper. Ripeness may be nil, in which case
// strategies that need it compute their own.
type Input struct {
	Crop     *mask.TightCrop
	Ripeness *RipenessEstimate
}

// Strategy scores one pepper.
type Strategy interface {
	Name() string
	Analyze(in *Input) (*Metrics, error)
}

// Config groups the analyzer settings.
type Config struct {
	CV       CVConfig       `json:"cv"`
	Ripeness RipenessConfig `json:"ripeness"`
}

// DefaultConfig returns the tuned defaults.
func DefaultConfig() Config {
	return Config{CV: DefaultCVConfig(), Ripeness: DefaultRipenessConfig()}
}

// Analyzer runs its strategies in order and keeps the first result.
type Analyzer struct {
	Strategies []Strategy
}

// NewAnalyzer returns the CV analyzer backed by the heuristic fallback.
func NewAnalyzer(cfg Config) *Analyzer {
	return &Analyzer{Strategies: []Strategy{
		&CVStrategy{Config: cfg.CV, Ripeness: cfg.Ripeness},
		&HeuristicStrategy{MinPixels: cfg.CV.MinPixels},
	}}
}

// Analyze returns the metrics and the name of the strategy that produced
// them, or an *AnalyzeError listing every failure.
func (a *Analyzer) Analyze(in *Input) (*Metrics, string, error) {
	var attempts []*StrategyError
	for _, s := range a.Strategies {
		m, err := s.Analyze(in)
		if err == nil {
			return m, s.Name(), nil
		}
		logger.Debug("quality", "strategy %s failed: %v", s.Name(), err)
		attempts = append(attempts, &StrategyError{Strategy: s.Name(), Err: err})
	}
	return nil, "", &AnalyzeError{Attempts: attempts}
}
