// Package quality scores a segmented pepper.
//
// Four scores in [0,100] describe one pepper: color uniformity, size
// consistency, surface quality and ripeness level. They are combined into an
// overall score and a category (Excellent, Good, Fair, Poor).
//
// An Analyzer tries its Strategies in order. CVStrategy is the primary
// analyzer (hue statistics, k-means color clusters, contour geometry, GLCM
// texture, edge density, local variance). HeuristicStrategy is a simpler
// weighted-rule scorer with its own scale, used only when CVStrategy fails;
// the strategy that produced a result is always reported.
//
// EstimateRipeness classifies the pepper's pixels into color bands in
// L*a*b* after gray-world white balance and contrast-limited lightness
// equalization, and derives a stage, a ripeness percentage and a harvest
// outlook from the band shares.
package quality
