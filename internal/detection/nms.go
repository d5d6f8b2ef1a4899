package detection

import (
	"sort"

	"github.com/ironsheep/faraway-scorer/internal/geometry"
)

// Suppression parameters the detectors were tuned with.
const (
	// IoUThreshold is the overlap at or above which the lower-scored box
	// is suppressed.
	IoUThreshold = 0.45

	// MaxDetections caps the number of boxes kept per call.
	MaxDetections = 50
)

// NonMaxSuppression runs class-agnostic greedy NMS and returns the indices of
// the kept boxes, highest score first.
//
// Boxes scoring below scoreThreshold are dropped before suppression. Equal
// scores are visited in index order, so the output is deterministic for a
// given input. Boxes and scores must have the same length.
//
// Parameters:
//   - boxes: candidate boxes in corner form, any consistent unit
//   - scores: one confidence per box
//   - maxOut: maximum number of indices returned
//   - iouThreshold: a candidate overlapping a kept box by at least this much is discarded
//   - scoreThreshold: minimum score a candidate needs to be considered
func NonMaxSuppression(boxes []geometry.Box, scores []float64, maxOut int, iouThreshold, scoreThreshold float64) []int {
	if maxOut <= 0 || len(boxes) == 0 {
		return nil
	}

	order := make([]int, 0, len(scores))
	for i, s := range scores {
		if s >= scoreThreshold {
			order = append(order, i)
		}
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	kept := make([]int, 0, min(maxOut, len(order)))
	for _, cand := range order {
		suppressed := false
		for _, k := range kept {
			if geometry.IoU(boxes[cand], boxes[k]) >= iouThreshold {
				suppressed = true
				break
			}
		}
		if suppressed {
			continue
		}
		kept = append(kept, cand)
		if len(kept) == maxOut {
			break
		}
	}
	return kept
}
