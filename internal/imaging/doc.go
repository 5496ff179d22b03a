// Package imaging holds the pixel-level building blocks of the pepper
// analysis pipeline.
//
// Nothing here knows about peppers as objects; the package works on images,
// color spaces and binary masks:
//
//   - loading and decoding photos (ImageCache, Decode)
//   - color conversion to OpenCV-unit HSV and CIE L*a*b* (go-colorful)
//   - HSV band tests and band masks for skin, pepper and leaf colors
//   - Canny edge detection and grayscale conversion
//   - binary mask algebra, morphology (bild), connected components and hole filling
//   - deterministic k-means clustering
//   - cropping, resampling and PNG encoding (disintegration/imaging)
//   - box annotation for result previews
//
// # Coordinate System
//
// Pixel coordinates are 0-based with (0,0) at the top-left. Rectangles follow
// image.Rectangle: Min inclusive, Max exclusive.
//
// # Masks
//
// A mask is an origin-anchored *image.Gray whose pixels are 0 or 255. Every
// function that produces a mask returns a new value; inputs are never
// modified. Masks derived from a crop share the crop's dimensions.
package imaging
