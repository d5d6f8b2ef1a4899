package attributes

import (
	"github.com/ironsheep/faraway-scorer/internal/detection"
	"github.com/ironsheep/faraway-scorer/internal/taxonomy"
)

// Classification thresholds for the second detection pass.
const (
	// DefaultThreshold is used for card and temple crops.
	DefaultThreshold = 0.1
)

type best struct {
	label string
	score float64
	set   bool
}

func (b *best) offer(label string, score float64) {
	if !b.set || score > b.score {
		b.label, b.score, b.set = label, score, true
	}
}

// Aggregate reduces the detections of one crop to a Record.
//
// Detections scoring below threshold and class ids outside tax are ignored.
// Color, value and multiplier keep the single highest-scoring label; on a
// tie the earlier detection wins. Conditions and options keep every distinct
// label in first-seen order. A nil result yields an empty record.
func Aggregate(res *detection.Result, tax *taxonomy.Taxonomy, threshold float64) Record {
	rec := Record{Conditions: []string{}, Options: []string{}}
	if res == nil || tax == nil {
		return rec
	}

	var color, value, multiplier best
	seen := make(map[string]bool)

	for _, d := range res.Detections {
		if d.Score < threshold {
			continue
		}
		label, ok := tax.Label(d.ClassID)
		if !ok {
			continue
		}
		cat, _ := tax.CategoryOf(label)
		switch cat {
		case taxonomy.CategoryColor:
			color.offer(label, d.Score)
		case taxonomy.CategoryValue:
			value.offer(label, d.Score)
		case taxonomy.CategoryMultiplier:
			multiplier.offer(label, d.Score)
		case taxonomy.CategoryCondition:
			if !seen[label] {
				seen[label] = true
				rec.Conditions = append(rec.Conditions, label)
			}
		case taxonomy.CategoryOption:
			if !seen[label] {
				seen[label] = true
				rec.Options = append(rec.Options, label)
			}
		}
	}

	rec.Color = color.label
	rec.Value = ParseValue(value.label)
	rec.Multiplier = multiplier.label
	return rec
}
