// Package mask isolates a validated pepper from its surroundings.
//
// An Extractor tries its Strategies in order over the candidate's padded
// bounding box:
//
//   - NativeStrategy uses the detector's own instance segmentation
//   - GrabCutStrategy seeds a foreground/background segmentation from color
//     priors and a central ellipse, then iterates GMM fitting and min-cut
//   - ColorPriorStrategy keeps pepper-colored pixels only
//
// Every strategy's output goes through the same post-processing: leaf-green
// subtraction on red and orange peppers, largest 8-connected component, a
// tight crop with a small margin and a feathered alpha cutout. Masks with
// too few pixels count as a failed attempt and the next strategy runs.
package mask
