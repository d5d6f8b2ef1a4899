// Package geometry provides the box and letterbox math shared by the
// detection decoder and the image preprocessing code.
package geometry

import "math"

// Box is an axis-aligned box in corner form [x1, y1, x2, y2].
type Box [4]float64

// FromCenter converts a center-form box (xc, yc, w, h) to corner form.
func FromCenter(xc, yc, w, h float64) Box {
	return Box{xc - w/2, yc - h/2, xc + w/2, yc + h/2}
}

// Area returns the box area; inverted boxes have zero area.
func (b Box) Area() float64 {
	w := b[2] - b[0]
	h := b[3] - b[1]
	if w <= 0 || h <= 0 {
		return 0
	}
	return w * h
}

// IoU returns the intersection-over-union of two boxes. Degenerate boxes
// never overlap anything.
func IoU(a, b Box) float64 {
	areaA := a.Area()
	areaB := b.Area()
	if areaA <= 0 || areaB <= 0 {
		return 0
	}
	ix1 := math.Max(a[0], b[0])
	iy1 := math.Max(a[1], b[1])
	ix2 := math.Min(a[2], b[2])
	iy2 := math.Min(a[3], b[3])
	inter := Box{ix1, iy1, ix2, iy2}.Area()
	return inter / (areaA + areaB - inter)
}

// Normalize divides x coordinates by width and y coordinates by height and
// clamps the result to [0, 1].
func (b Box) Normalize(width, height float64) Box {
	return Box{
		clamp01(b[0] / width),
		clamp01(b[1] / height),
		clamp01(b[2] / width),
		clamp01(b[3] / height),
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
