// Package attributes reduces the detections of one cropped card or temple
// into the attribute record the score calculator consumes.
package attributes

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/ironsheep/faraway-scorer/internal/taxonomy"
)

// Record is the classified properties of one card or temple.
type Record struct {
	// Color is a card_* label, empty when none was seen.
	Color string `json:"color"`
	// Value is the printed fame value, 0 when none was seen.
	Value int `json:"value"`
	// Multiplier is an each_* label, empty when none was seen.
	Multiplier string `json:"multiplier"`
	// Conditions are condition_* labels in first-seen order.
	Conditions []string `json:"conditions"`
	// Options are option labels in first-seen order.
	Options []string `json:"options"`
}

// Empty reports whether no attribute was recognized.
func (r Record) Empty() bool {
	return r.Color == "" && r.Value == 0 && r.Multiplier == "" &&
		len(r.Conditions) == 0 && len(r.Options) == 0
}

// UnmarshalJSON accepts value either as a number or as a value_<N> label,
// and options either as a list or as a map of label to bool.
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw struct {
		Color      string          `json:"color"`
		Value      json.RawMessage `json:"value"`
		Multiplier string          `json:"multiplier"`
		Conditions []string        `json:"conditions"`
		Options    json.RawMessage `json:"options"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	value, err := decodeValue(raw.Value)
	if err != nil {
		return err
	}
	options, err := decodeOptions(raw.Options)
	if err != nil {
		return err
	}

	*r = Record{
		Color:      raw.Color,
		Value:      value,
		Multiplier: raw.Multiplier,
		Conditions: raw.Conditions,
		Options:    options,
	}
	return nil
}

func decodeValue(raw json.RawMessage) (int, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, nil
	}
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		if n < 0 {
			return 0, fmt.Errorf("negative value %d", n)
		}
		return n, nil
	}
	var label string
	if err := json.Unmarshal(raw, &label); err != nil {
		return 0, fmt.Errorf("value must be a number or a value_<N> label: %s", raw)
	}
	return ParseValue(label), nil
}

func decodeOptions(raw json.RawMessage) ([]string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}
	var set map[string]bool
	if err := json.Unmarshal(raw, &set); err != nil {
		return nil, fmt.Errorf("options must be a list or a map of booleans: %s", raw)
	}
	// Map order is random; keep the taxonomy's option order.
	var out []string
	for _, o := range taxonomy.OptionLabels {
		if set[o] {
			out = append(out, o)
			delete(set, o)
		}
	}
	var rest []string
	for o, on := range set {
		if on {
			rest = append(rest, o)
		}
	}
	sort.Strings(rest)
	return append(out, rest...), nil
}

// ParseValue converts a value_<N> label to N. Anything else is 0.
func ParseValue(label string) int {
	s, ok := strings.CutPrefix(label, taxonomy.ValuePrefix)
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// Layout is the scored table: cards in placement order, left to right, and
// temples in detection order.
type Layout struct {
	Cards   []Record `json:"cards"`
	Temples []Record `json:"temples"`
}
