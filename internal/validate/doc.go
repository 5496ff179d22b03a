// Package validate rejects false-positive pepper detections.
//
// A Validator runs an ordered list of Stages against each candidate and stops
// at the first failure. The default cascade, cheapest signal first after the
// classifier cross-check:
//
//  1. ClassifierStage: a general image classifier must not name a
//     similar-shaped competitor (apple, lemon, ...). Classifier errors accept.
//  2. ShapeStage: bounding-box size, aspect ratio and share of the image.
//  3. ColorStage: skin-tone share and pepper color band coverage in HSV.
//  4. TextureStage: outline circularity and complexity, gray-level spread.
//
// A failing stage returns a *Rejection naming the stage and a short reason
// code such as "too_small" or "skin_tone". Any other error from stages 2 to 4
// also rejects the candidate.
package validate
