package pipeline

import (
	"errors"
	"time"

	"github.com/ironsheep/pepper-quality-mcp/internal/config"
	"github.com/ironsheep/pepper-quality-mcp/internal/detection"
	"github.com/ironsheep/pepper-quality-mcp/internal/mask"
	"github.com/ironsheep/pepper-quality-mcp/internal/quality"
	"github.com/ironsheep/pepper-quality-mcp/internal/validate"
)

// Observer receives pipeline events. *metrics.Metrics implements it.
type Observer interface {
	AnalysisStarted()
	AnalysisDone(d time.Duration, peppers int, err error)
	CandidateRejected(stage string)
	StrategyUsed(kind, name string)
}

type nopObserver struct{}

func (nopObserver) AnalysisStarted()                      {}
func (nopObserver) AnalysisDone(time.Duration, int, error) {}
func (nopObserver) CandidateRejected(string)              {}
func (nopObserver) StrategyUsed(string, string)           {}

// PipelineContext holds the adapters, settings and strategies of the
// pipeline. It is read-only after NewContext returns and may be shared by
// concurrent Analyze calls.
type PipelineContext struct {
	detector   detection.Detector
	general    detection.Detector
	classifier detection.Classifier
	config     *config.Config

	validator *validate.Validator
	extractor *mask.Extractor
	analyzer  *quality.Analyzer
	observer  Observer

	stages     []validate.Stage
	maskSteps  []mask.Strategy
	qualitySet []quality.Strategy
}

// Option configures a PipelineContext.
type Option func(*PipelineContext)

// WithDetector sets the specialist pepper detector. It is required.
func WithDetector(d detection.Detector) Option {
	return func(pc *PipelineContext) { pc.detector = d }
}

// WithGeneralDetector sets the general-purpose detector used for forbidden
// zones and the retained general objects.
func WithGeneralDetector(d detection.Detector) Option {
	return func(pc *PipelineContext) { pc.general = d }
}

// WithClassifier enables the classifier cross-check.
func WithClassifier(c detection.Classifier) Option {
	return func(pc *PipelineContext) { pc.classifier = c }
}

// WithConfig replaces the default configuration.
func WithConfig(cfg *config.Config) Option {
	return func(pc *PipelineContext) { pc.config = cfg }
}

// WithValidatorStages replaces the standard validation cascade.
func WithValidatorStages(stages ...validate.Stage) Option {
	return func(pc *PipelineContext) { pc.stages = stages }
}

// WithMaskStrategies replaces the native, GrabCut, color-prior chain.
func WithMaskStrategies(strategies ...mask.Strategy) Option {
	return func(pc *PipelineContext) { pc.maskSteps = strategies }
}

// WithQualityStrategies replaces the CV and heuristic analyzers.
func WithQualityStrategies(strategies ...quality.Strategy) Option {
	return func(pc *PipelineContext) { pc.qualitySet = strategies }
}

// WithObserver receives pipeline events.
func WithObserver(o Observer) Option {
	return func(pc *PipelineContext) { pc.observer = o }
}

// NewContext builds a PipelineContext. A detector is required; the
// configuration defaults to config.Default.
func NewContext(opts ...Option) (*PipelineContext, error) {
	pc := &PipelineContext{}
	for _, opt := range opts {
		opt(pc)
	}
	if pc.detector == nil {
		return nil, errors.New("pipeline needs a pepper detector")
	}
	if pc.config == nil {
		pc.config = config.Default()
	}
	if err := pc.config.Validate(); err != nil {
		return nil, err
	}
	if pc.observer == nil {
		pc.observer = nopObserver{}
	}

	pc.validator = validate.New(pc.config.Validation, pc.classifier)
	if pc.stages != nil {
		pc.validator = &validate.Validator{Stages: pc.stages}
	}
	pc.extractor = mask.NewExtractor(pc.config.Mask)
	if pc.maskSteps != nil {
		pc.extractor.Strategies = pc.maskSteps
	}
	pc.analyzer = quality.NewAnalyzer(pc.config.Quality)
	if pc.qualitySet != nil {
		pc.analyzer = &quality.Analyzer{Strategies: pc.qualitySet}
	}
	return pc, nil
}

// Config returns the configuration in use.
func (pc *PipelineContext) Config() *config.Config {
	return pc.config
}
