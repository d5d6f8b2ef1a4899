// Package taxonomy holds the class tables of the detection models.
//
// Each model (scene, card, temple) is trained on a fixed ordered list of
// labels; the position of a label in that list is the class id the model
// emits. A Taxonomy pairs that list with a partition of the labels into the
// attribute categories the aggregator understands, so changing a model only
// means shipping a new taxonomy, never touching decode or scoring code.
//
// Category membership is derived from label prefixes:
//
//	card_*       color
//	value_*      value
//	each_*       multiplier
//	condition_*  condition
//
// Option labels have no common prefix and are listed explicitly.
package taxonomy

import (
	"fmt"
	"strings"
)

// Category is one of the attribute families a class label belongs to.
type Category string

// Attribute categories.
const (
	CategoryColor      Category = "color"
	CategoryValue      Category = "value"
	CategoryMultiplier Category = "multiplier"
	CategoryCondition  Category = "condition"
	CategoryOption     Category = "option"
)

// Label prefixes used to partition class names.
const (
	ColorPrefix      = "card_"
	ValuePrefix      = "value_"
	MultiplierPrefix = "each_"
	ConditionPrefix  = "condition_"
)

// Taxonomy is the versioned class table of one model.
type Taxonomy struct {
	Name    string   `json:"name"`
	Version string   `json:"version"`
	Classes []string `json:"classes"`
	Options []string `json:"options,omitempty"`

	// AllowConditions is false for models whose objects never carry
	// conditions (temples); condition_* labels are then left uncategorized.
	AllowConditions bool `json:"allow_conditions"`

	categories map[string]Category
}

// New builds and validates a taxonomy.
func New(name, version string, classes, options []string, allowConditions bool) (*Taxonomy, error) {
	t := &Taxonomy{
		Name:            name,
		Version:         version,
		Classes:         append([]string(nil), classes...),
		Options:         append([]string(nil), options...),
		AllowConditions: allowConditions,
	}
	if err := t.build(); err != nil {
		return nil, err
	}
	return t, nil
}

func mustNew(name, version string, classes, options []string, allowConditions bool) *Taxonomy {
	t, err := New(name, version, classes, options, allowConditions)
	if err != nil {
		panic(err)
	}
	return t
}

func (t *Taxonomy) build() error {
	if len(t.Classes) == 0 {
		return fmt.Errorf("taxonomy %q: no classes", t.Name)
	}
	seen := make(map[string]int, len(t.Classes))
	for i, c := range t.Classes {
		if c == "" {
			return fmt.Errorf("taxonomy %q: empty label at class %d", t.Name, i)
		}
		if prev, ok := seen[c]; ok {
			return fmt.Errorf("taxonomy %q: label %q used by classes %d and %d", t.Name, c, prev, i)
		}
		seen[c] = i
	}

	options := make(map[string]bool, len(t.Options))
	for _, o := range t.Options {
		options[o] = true
	}

	t.categories = make(map[string]Category, len(t.Classes))
	for _, c := range t.Classes {
		switch {
		case strings.HasPrefix(c, ColorPrefix):
			t.categories[c] = CategoryColor
		case strings.HasPrefix(c, ValuePrefix):
			t.categories[c] = CategoryValue
		case strings.HasPrefix(c, MultiplierPrefix):
			t.categories[c] = CategoryMultiplier
		case strings.HasPrefix(c, ConditionPrefix):
			if t.AllowConditions {
				t.categories[c] = CategoryCondition
			}
		case options[c]:
			t.categories[c] = CategoryOption
		}
	}
	return nil
}

// Label returns the label for a class id.
func (t *Taxonomy) Label(classID int) (string, bool) {
	if classID < 0 || classID >= len(t.Classes) {
		return "", false
	}
	return t.Classes[classID], true
}

// ClassID returns the class id of a label, or -1.
func (t *Taxonomy) ClassID(label string) int {
	for i, c := range t.Classes {
		if c == label {
			return i
		}
	}
	return -1
}

// CategoryOf reports the attribute category of a label.
func (t *Taxonomy) CategoryOf(label string) (Category, bool) {
	c, ok := t.categories[label]
	return c, ok
}

// Labels returns the labels of one category in class id order.
func (t *Taxonomy) Labels(cat Category) []string {
	var out []string
	for _, c := range t.Classes {
		if t.categories[c] == cat {
			out = append(out, c)
		}
	}
	return out
}

// NumClasses returns the number of classes the model emits.
func (t *Taxonomy) NumClasses() int { return len(t.Classes) }
