package geometry

import (
	"fmt"
	"math"
)

// Mode selects how a source image is fitted into the square model input.
type Mode string

const (
	// ModeLetterbox keeps the aspect ratio and pads with mid-gray.
	ModeLetterbox Mode = "letterbox"
	// ModeStretch resizes each axis independently to the input size.
	ModeStretch Mode = "stretch"
)

// ParseMode validates a preprocessing mode name. Empty means letterbox.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeLetterbox:
		return ModeLetterbox, nil
	case ModeStretch:
		return ModeStretch, nil
	default:
		return "", fmt.Errorf("unknown preprocess mode %q (want letterbox or stretch)", s)
	}
}

// PadGray is the 8-bit padding value the models were trained with.
const PadGray = 127

// Letterbox is the affine map between model-input space and source pixels
// for one inference call.
//
// Invariants: Scale = min(InputSize/SrcWidth, InputSize/SrcHeight),
// ResizedWidth = floor(SrcWidth*Scale), OffsetX = floor((InputSize-ResizedWidth)/2),
// and likewise for the vertical axis. The odd padding pixel, if any, is on
// the right or bottom.
type Letterbox struct {
	Scale         float64 `json:"scale"`
	OffsetX       int     `json:"offset_x"`
	OffsetY       int     `json:"offset_y"`
	ResizedWidth  int     `json:"resized_width"`
	ResizedHeight int     `json:"resized_height"`
	InputSize     int     `json:"input_size"`
	SrcWidth      int     `json:"src_width"`
	SrcHeight     int     `json:"src_height"`
}

// ComputeLetterbox computes the letterbox transform for a source image.
func ComputeLetterbox(srcWidth, srcHeight, inputSize int) (Letterbox, error) {
	if srcWidth <= 0 || srcHeight <= 0 {
		return Letterbox{}, fmt.Errorf("invalid source size %dx%d", srcWidth, srcHeight)
	}
	if inputSize <= 0 {
		return Letterbox{}, fmt.Errorf("invalid input size %d", inputSize)
	}

	s := float64(inputSize)
	scaleW := s / float64(srcWidth)
	scaleH := s / float64(srcHeight)

	lb := Letterbox{InputSize: inputSize, SrcWidth: srcWidth, SrcHeight: srcHeight}
	// The limiting axis fills the canvas exactly; computing it from the
	// product would lose a pixel to float rounding.
	if scaleW <= scaleH {
		lb.Scale = scaleW
		lb.ResizedWidth = inputSize
		lb.ResizedHeight = int(math.Floor(float64(srcHeight) * scaleW))
	} else {
		lb.Scale = scaleH
		lb.ResizedHeight = inputSize
		lb.ResizedWidth = int(math.Floor(float64(srcWidth) * scaleH))
	}
	lb.ResizedWidth = max(lb.ResizedWidth, 1)
	lb.ResizedHeight = max(lb.ResizedHeight, 1)

	lb.OffsetX = (inputSize - lb.ResizedWidth) / 2
	lb.OffsetY = (inputSize - lb.ResizedHeight) / 2
	return lb, nil
}

// ToSource maps a model-input point to source pixel coordinates.
func (lb Letterbox) ToSource(x, y float64) (float64, float64) {
	return (x - float64(lb.OffsetX)) / lb.Scale, (y - float64(lb.OffsetY)) / lb.Scale
}

// ToModel maps a source pixel point into model-input space.
func (lb Letterbox) ToModel(x, y float64) (float64, float64) {
	return x*lb.Scale + float64(lb.OffsetX), y*lb.Scale + float64(lb.OffsetY)
}

// BoxToSource applies ToSource to both corners of a box.
func (lb Letterbox) BoxToSource(b Box) Box {
	x1, y1 := lb.ToSource(b[0], b[1])
	x2, y2 := lb.ToSource(b[2], b[3])
	return Box{x1, y1, x2, y2}
}

// BoxToModel applies ToModel to both corners of a box.
func (lb Letterbox) BoxToModel(b Box) Box {
	x1, y1 := lb.ToModel(b[0], b[1])
	x2, y2 := lb.ToModel(b[2], b[3])
	return Box{x1, y1, x2, y2}
}
