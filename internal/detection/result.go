package detection

import "github.com/ironsheep/faraway-scorer/internal/geometry"

// Detection is one decoded box.
type Detection struct {
	// Box is [xmin, ymin, xmax, ymax] normalized to the source image.
	Box     geometry.Box `json:"box"`
	Score   float64      `json:"score"`
	ClassID int          `json:"class_id"`
}

// Result holds the detections of one decode call, highest score first.
type Result struct {
	Detections []Detection `json:"detections"`
}

// Len returns the number of detections.
func (r *Result) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Detections)
}

// Filter returns the detections of classID scoring at least threshold, in
// result order.
func (r *Result) Filter(classID int, threshold float64) []Detection {
	if r == nil {
		return nil
	}
	var out []Detection
	for _, d := range r.Detections {
		if d.ClassID == classID && d.Score >= threshold {
			out = append(out, d)
		}
	}
	return out
}
