// Package scoring computes the final fame of a table layout.
//
// Cards are scored from the rightmost to the leftmost. A card sees every
// temple and the cards to its right, never the cards to its left. Temples
// are scored in order and see every card but no other temple. Each card's
// conditions are checked against what it sees; an unmet condition cancels
// the card's value. A multiplier multiplies the value by the number of seen
// objects carrying its tags.
//
// Every check is written to a human-readable trace whose last line is the
// total.
package scoring

import (
	"fmt"
	"strings"

	"github.com/ironsheep/faraway-scorer/internal/attributes"
	"github.com/ironsheep/faraway-scorer/internal/taxonomy"
)

// Trace headers.
const (
	CardsHeader   = "--- CARDS (right to left) ---"
	TemplesHeader = "--- TEMPLES ---"
	Separator     = "---------------------------------"
)

// Result is a computed score and its trace.
type Result struct {
	Score   int      `json:"score"`
	Details []string `json:"details"`
}

// Calculator scores layouts with a fixed multiplier table.
type Calculator struct {
	multipliers taxonomy.MultiplierTable
}

// New creates a calculator. A nil table uses taxonomy.DefaultMultipliers.
func New(multipliers taxonomy.MultiplierTable) *Calculator {
	if multipliers == nil {
		multipliers = taxonomy.DefaultMultipliers()
	}
	return &Calculator{multipliers: multipliers}
}

var defaultCalculator = New(nil)

// Calculate scores cards and temples with the default multiplier table.
func Calculate(cards, temples []attributes.Record) Result {
	return defaultCalculator.Calculate(cards, temples)
}

// Calculate scores cards, given in placement order, and temples.
func (c *Calculator) Calculate(cards, temples []attributes.Record) Result {
	var details []string
	total := 0

	details = append(details, CardsHeader)
	visible := newTally(temples...)
	for i := len(cards) - 1; i >= 0; i-- {
		card := cards[i]
		details = append(details, fmt.Sprintf("[Card %d]", i+1))

		value := card.Value
		if !checkConditions(card.Conditions, visible, &details) {
			value = 0
			details = append(details, " -> Conditions not met. Value cancelled.")
		}
		total += c.contribution(card, value, visible, &details)
		visible.add(card)
	}

	details = append(details, TemplesHeader)
	allCards := newTally(cards...)
	for i, temple := range temples {
		details = append(details, fmt.Sprintf("[Temple %d]", i+1))
		total += c.contribution(temple, temple.Value, allCards, &details)
	}

	details = append(details, Separator, fmt.Sprintf("TOTAL SCORE: %d", total))
	return Result{Score: total, Details: details}
}

// contribution applies the multiplier of r to value and traces the result.
func (c *Calculator) contribution(r attributes.Record, value int, visible tally, details *[]string) int {
	if value > 0 && r.Multiplier != "" {
		count := c.count(r.Multiplier, visible)
		score := value * count
		*details = append(*details, fmt.Sprintf(" -> Multiplier (%s): %d x %d = %dpts", r.Multiplier, value, count, score))
		return score
	}
	*details = append(*details, fmt.Sprintf(" -> Base score: %dpts", value))
	return value
}

// count sums the visible counts of a multiplier's tags. Unknown multipliers
// count nothing.
func (c *Calculator) count(multiplier string, visible tally) int {
	tags, ok := c.multipliers.Tags(multiplier)
	if !ok {
		return 0
	}
	n := 0
	for _, tag := range tags {
		n += visible[tag]
	}
	return n
}

// checkConditions reports whether every condition target is seen at least as
// often as it is required. One trace line is written per distinct target,
// whether or not an earlier target already failed.
func checkConditions(conditions []string, visible tally, details *[]string) bool {
	var targets []string
	required := make(map[string]int)
	for _, cond := range conditions {
		if cond == "" {
			continue
		}
		target := strings.TrimPrefix(cond, taxonomy.ConditionPrefix)
		if required[target] == 0 {
			targets = append(targets, target)
		}
		required[target]++
	}

	met := true
	for _, target := range targets {
		available := visible[target]
		*details = append(*details, fmt.Sprintf(" -> Condition: %s (required: %d, available: %d)", target, required[target], available))
		if available < required[target] {
			met = false
		}
	}
	return met
}

// tally counts tags over a set of visible records: one per color and one per
// distinct option of each record.
type tally map[string]int

func newTally(records ...attributes.Record) tally {
	t := make(tally)
	for _, r := range records {
		t.add(r)
	}
	return t
}

func (t tally) add(r attributes.Record) {
	if r.Color != "" {
		t[r.Color]++
	}
	seen := make(map[string]bool, len(r.Options))
	for _, o := range r.Options {
		if o == "" || seen[o] {
			continue
		}
		seen[o] = true
		t[o]++
	}
}
