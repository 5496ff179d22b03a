// Package pipeline runs the full pepper analysis on one decoded image.
//
// Analyze detects candidates, removes duplicates and candidates covering
// known non-pepper objects, validates the rest, segments each survivor and
// scores it:
//
//	detect → NMS → forbidden zones → validate → mask → ripeness → quality → derive
//
// Everything the pipeline needs lives in an immutable PipelineContext built
// once with NewContext. Candidate-level failures never abort the image; they
// are recorded as rejections or, for scoring failures, as an error marker on
// the pepper. Detector failures abort the whole analysis with
// ErrDetectorUnavailable, which is distinct from finding no peppers.
package pipeline
