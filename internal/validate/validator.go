package validate

import (
	"context"
	"errors"
	"fmt"

	"github.com/ironsheep/pepper-quality-mcp/internal/detection"
	"github.com/ironsheep/pepper-quality-mcp/internal/logger"
)

// Stage names recorded on rejections.
const (
	StageClassifier = "classifier"
	StageShape      = "shape"
	StageColor      = "color"
	StageTexture    = "texture"
)

// Rejection reports the stage that turned a candidate down.
type Rejection struct {
	Stage  string
	Reason string

	// Err is set when the stage failed to run rather than deciding.
	Err error
}

func (r *Rejection) Error() string {
	if r.Err != nil {
		return fmt.Sprintf("rejected at %s: %s: %v", r.Stage, r.Reason, r.Err)
	}
	return fmt.Sprintf("rejected at %s: %s", r.Stage, r.Reason)
}

func (r *Rejection) Unwrap() error { return r.Err }

// Stage is one check in the cascade. Check returns nil to pass the
// candidate, a *Rejection to turn it down, or any other error when the check
// could not be carried out.
type Stage interface {
	Name() string
	Check(ctx context.Context, in *Input) error
}

// Validator runs Stages in order and stops at the first failure.
type Validator struct {
	Stages []Stage
}

// New builds the standard four-stage cascade. A nil classifier drops the
// classifier cross-check.
func New(cfg Config, classifier detection.Classifier) *Validator {
	v := &Validator{}
	if classifier != nil {
		v.Stages = append(v.Stages, &ClassifierStage{Classifier: classifier, Config: cfg.Classifier})
	}
	v.Stages = append(v.Stages,
		&ShapeStage{Config: cfg.Shape},
		&ColorStage{Config: cfg.Color},
		&TextureStage{Config: cfg.Texture},
	)
	return v
}

// Validate returns nil when every stage passes, otherwise a *Rejection.
// Errors that are not rejections are converted into one (fail-closed);
// stages that should fail open must handle their own errors.
func (v *Validator) Validate(ctx context.Context, in *Input) error {
	for _, s := range v.Stages {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := s.Check(ctx, in)
		if err == nil {
			continue
		}
		var rej *Rejection
		if !errors.As(err, &rej) {
			rej = &Rejection{Stage: s.Name(), Reason: "stage_error", Err: err}
		}
		logger.Debug("validate", "candidate %s (%.2f) rejected at %s: %s",
			in.Candidate.ClassName, in.Candidate.Confidence, rej.Stage, rej.Reason)
		return rej
	}
	return nil
}
