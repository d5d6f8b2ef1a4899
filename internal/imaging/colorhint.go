package imaging

import (
	"image"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Swatch is a reference color for a color label.
type Swatch struct {
	Label string
	Color colorful.Color
}

// DefaultPalette holds the printed card colors.
var DefaultPalette = []Swatch{
	{Label: "card_blue", Color: colorful.Color{R: 0.16, G: 0.42, B: 0.72}},
	{Label: "card_green", Color: colorful.Color{R: 0.27, G: 0.58, B: 0.27}},
	{Label: "card_red", Color: colorful.Color{R: 0.76, G: 0.18, B: 0.16}},
	{Label: "card_yellow", Color: colorful.Color{R: 0.90, G: 0.74, B: 0.20}},
}

// Minimum HSV saturation and value for a pixel to count as colored.
const (
	hintMinSaturation = 0.25
	hintMinValue      = 0.2
	hintMaxSamples    = 64
)

// ColorHint is the palette entry closest to a region's dominant color.
type ColorHint struct {
	Label    string  `json:"label"`
	Distance float64 `json:"distance"`
	// Coverage is the fraction of sampled pixels that were colored.
	Coverage float64 `json:"coverage"`
}

// HintColor estimates the printed color of a crop.
//
// Pixels are sampled on a grid of at most 64x64 points; gray, black and
// white samples are ignored and the rest are averaged in linear RGB. The
// average is matched to palette by CIE L*a*b* distance. ok is false when
// the crop has no colored pixels or palette is empty.
func HintColor(img image.Image, palette []Swatch) (hint ColorHint, ok bool) {
	b := img.Bounds()
	if b.Empty() || len(palette) == 0 {
		return ColorHint{}, false
	}

	stepX := max(b.Dx()/hintMaxSamples, 1)
	stepY := max(b.Dy()/hintMaxSamples, 1)

	var r, g, bl float64
	var colored, total int
	for y := b.Min.Y; y < b.Max.Y; y += stepY {
		for x := b.Min.X; x < b.Max.X; x += stepX {
			total++
			c, ok := colorful.MakeColor(img.At(x, y))
			if !ok {
				continue
			}
			_, s, v := c.Hsv()
			if s < hintMinSaturation || v < hintMinValue {
				continue
			}
			lr, lg, lb := c.LinearRgb()
			r += lr
			g += lg
			bl += lb
			colored++
		}
	}
	if colored == 0 {
		return ColorHint{}, false
	}

	n := float64(colored)
	mean := colorful.LinearRgb(r/n, g/n, bl/n)

	hint = ColorHint{Distance: math.Inf(1), Coverage: n / float64(total)}
	for _, sw := range palette {
		if d := mean.DistanceLab(sw.Color); d < hint.Distance {
			hint.Label = sw.Label
			hint.Distance = d
		}
	}
	return hint, true
}
