// Package detection turns raw object-detector output into pepper candidates.
//
// It holds the detection data types (Box, Candidate, InstanceMask,
// ForbiddenZone, Prediction), the adapters that reach the external detector
// and classifier models, and the cheap geometric filters that run before any
// pixel-level validation:
//
//   - NonMaxSuppression: confidence-ranked greedy IoU suppression
//   - ForbiddenZones / FilterForbidden: rejection of candidates overlapping
//     regions a general-purpose detector confidently labelled as non-pepper
//     objects (fruit, people, hands)
//
// It also provides contour geometry on binary masks (boundary tracing,
// polygon area, convex hull, Douglas–Peucker simplification) shared by the
// validator and the quality analyzer.
//
// # Coordinate System
//
// Boxes are in source-image pixels with (0,0) at the top-left; X2/Y2 are
// exclusive. Contour points are pixel positions inside the mask they were
// traced from.
package detection
