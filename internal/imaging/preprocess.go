package imaging

import (
	"fmt"
	"image"
	"image/color"

	"github.com/anthonynsimon/bild/transform"
	"github.com/disintegration/imaging"
	"github.com/ironsheep/faraway-scorer/internal/detection"
	"github.com/ironsheep/faraway-scorer/internal/geometry"
)

// Prepared is a rendered model input.
type Prepared struct {
	// Input is the [1, 3, S, S] float32 tensor, channels R, G, B in [0, 1].
	Input detection.Tensor

	// Letterbox is the transform used, nil in stretch mode.
	Letterbox *geometry.Letterbox

	Mode geometry.Mode
}

// Frame returns the decode frame matching this input.
func (p *Prepared) Frame() detection.Frame {
	return detection.Frame{InputSize: p.Input.Shape[2], Letterbox: p.Letterbox}
}

// InputLen is the number of float32 values in a model input of edge size.
func InputLen(size int) int { return 3 * size * size }

// PrepareInput renders img into a square planar model input of edge size.
//
// dst receives the pixels; it must hold InputLen(size) values, or be nil to
// allocate. The returned tensor aliases dst.
func PrepareInput(img image.Image, size int, mode geometry.Mode, dst []float32) (*Prepared, error) {
	b := img.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("empty image")
	}
	if size <= 0 {
		return nil, fmt.Errorf("invalid input size %d", size)
	}
	if dst == nil {
		dst = make([]float32, InputLen(size))
	}
	if len(dst) != InputLen(size) {
		return nil, fmt.Errorf("input buffer holds %d values, need %d", len(dst), InputLen(size))
	}

	p := &Prepared{Mode: mode}
	switch mode {
	case geometry.ModeLetterbox, "":
		lb, err := geometry.ComputeLetterbox(b.Dx(), b.Dy(), size)
		if err != nil {
			return nil, err
		}
		canvas := imaging.New(size, size, color.NRGBA{geometry.PadGray, geometry.PadGray, geometry.PadGray, 255})
		resized := imaging.Resize(img, lb.ResizedWidth, lb.ResizedHeight, imaging.Linear)
		canvas = imaging.Paste(canvas, resized, image.Pt(lb.OffsetX, lb.OffsetY))
		writePlanar(dst, canvas.Pix, canvas.Stride, size)
		p.Letterbox = &lb
		p.Mode = geometry.ModeLetterbox
	case geometry.ModeStretch:
		resized := transform.Resize(img, size, size, transform.Linear)
		writePlanar(dst, resized.Pix, resized.Stride, size)
	default:
		return nil, fmt.Errorf("unknown preprocess mode %q", mode)
	}

	p.Input = detection.NewTensor([]int{1, 3, size, size}, dst)
	return p, nil
}

// writePlanar converts interleaved 8-bit RGBA rows into planar RGB floats.
func writePlanar(dst []float32, pix []uint8, stride, size int) {
	plane := size * size
	for y := 0; y < size; y++ {
		row := pix[y*stride:]
		for x := 0; x < size; x++ {
			i := y*size + x
			dst[i] = float32(row[x*4]) / 255
			dst[plane+i] = float32(row[x*4+1]) / 255
			dst[2*plane+i] = float32(row[x*4+2]) / 255
		}
	}
}
