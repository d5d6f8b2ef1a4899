package taxonomy

// Versions of the built-in tables. Bump when a model is retrained with a
// different class order.
const (
	SceneVersion  = "scene-2"
	CardVersion   = "card-43"
	TempleVersion = "temple-30"
)

// Scene class ids.
const (
	SceneCard   = 0
	SceneTemple = 1
)

// BaseColors are the four card colors counted by each_all_colors.
var BaseColors = []string{"card_blue", "card_green", "card_red", "card_yellow"}

// OptionLabels are the symbols that can appear on cards and temples.
var OptionLabels = []string{"chimera", "gem", "hint", "night", "thistle"}

// Scene returns the table of the scene model (cards and temples on the table).
func Scene() *Taxonomy {
	return mustNew("scene", SceneVersion, []string{"card", "temple"}, nil, false)
}

// Card returns the table of the card analysis model.
func Card() *Taxonomy {
	return mustNew("card", CardVersion, []string{
		"card_blue", "card_green", "card_red", "card_yellow",
		"chimera",
		"condition_chimera", "condition_gem", "condition_thistle",
		"each_all_colors", "each_blue", "each_chimera", "each_gem", "each_green", "each_hint",
		"each_night", "each_red", "each_thistle", "each_yellow_or_blue", "each_yellow_or_green",
		"each_yellow_or_red",
		"gem",
		"hint",
		"night",
		"thistle",
		"value_1", "value_10", "value_12", "value_13", "value_14", "value_15", "value_16",
		"value_17", "value_18", "value_19", "value_2", "value_20", "value_24", "value_3",
		"value_4", "value_5", "value_7", "value_8", "value_9",
	}, OptionLabels, true)
}

// Temple returns the table of the temple analysis model.
func Temple() *Taxonomy {
	return mustNew("temple", TempleVersion, []string{
		"card_blue", "card_gray", "card_green", "card_red", "card_yellow",
		"chimera",
		"each_all_colors", "each_blue", "each_blue_or_yellow", "each_chimera", "each_gem",
		"each_green", "each_green_or_blue", "each_green_or_red", "each_hint", "each_night",
		"each_red", "each_red_or_blue", "each_red_or_yellow", "each_thistle", "each_yellow",
		"each_yellow_or_green",
		"gem", "hint", "night", "thistle",
		"value_1", "value_2", "value_4", "value_5",
	}, OptionLabels, false)
}

// MultiplierTable maps a multiplier label to the tags it counts among the
// visible objects. A label counting several tags sums their counts.
type MultiplierTable map[string][]string

// Tags returns the countable tags of a multiplier label.
func (m MultiplierTable) Tags(label string) ([]string, bool) {
	tags, ok := m[label]
	return tags, ok
}

// DefaultMultipliers returns the multiplier table shared by cards and temples.
func DefaultMultipliers() MultiplierTable {
	return MultiplierTable{
		"each_gem":     {"gem"},
		"each_chimera": {"chimera"},
		"each_hint":    {"hint"},
		"each_night":   {"night"},
		"each_thistle": {"thistle"},

		"each_blue":   {"card_blue"},
		"each_green":  {"card_green"},
		"each_red":    {"card_red"},
		"each_yellow": {"card_yellow"},

		"each_yellow_or_blue":  {"card_yellow", "card_blue"},
		"each_yellow_or_green": {"card_yellow", "card_green"},
		"each_yellow_or_red":   {"card_yellow", "card_red"},
		"each_blue_or_yellow":  {"card_blue", "card_yellow"},
		"each_green_or_blue":   {"card_green", "card_blue"},
		"each_green_or_red":    {"card_green", "card_red"},
		"each_red_or_blue":     {"card_red", "card_blue"},
		"each_red_or_yellow":   {"card_red", "card_yellow"},

		"each_all_colors": append([]string(nil), BaseColors...),
	}
}

// Set bundles the three model tables and the multiplier table.
type Set struct {
	Scene       *Taxonomy
	Card        *Taxonomy
	Temple      *Taxonomy
	Multipliers MultiplierTable
}

// Default returns the built-in taxonomy set.
func Default() *Set {
	return &Set{
		Scene:       Scene(),
		Card:        Card(),
		Temple:      Temple(),
		Multipliers: DefaultMultipliers(),
	}
}
