package validate

import (
	"image"

	"github.com/ironsheep/pepper-quality-mcp/internal/detection"
	"github.com/ironsheep/pepper-quality-mcp/internal/imaging"
)

// Input is one candidate under validation together with the image it came
// from. The bounding-box crop is cut on first use and shared by the stages.
type Input struct {
	Candidate detection.Candidate
	Image     image.Image

	crop    *image.NRGBA
	cropErr error
}

// NewInput prepares c for validation against img.
func NewInput(img image.Image, c detection.Candidate) *Input {
	return &Input{Candidate: c, Image: img}
}

// ImageArea returns the source image's pixel area.
func (in *Input) ImageArea() float64 {
	b := in.Image.Bounds()
	return float64(b.Dx() * b.Dy())
}

// Crop returns the candidate's bounding box cut out of the image.
func (in *Input) Crop() (*image.NRGBA, error) {
	if in.crop == nil && in.cropErr == nil {
		in.crop, in.cropErr = imaging.CropRegion(in.Image, in.Candidate.Box.Rect())
	}
	return in.crop, in.cropErr
}
