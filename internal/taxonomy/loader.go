package taxonomy

import (
	"fmt"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// tableSpec is the YAML shape of one model table.
type tableSpec struct {
	Version string   `koanf:"version"`
	Classes []string `koanf:"classes"`
	Options []string `koanf:"options"`
}

// LoadFile reads a YAML taxonomy file and layers it over the built-in set.
// Sections that are absent keep their built-in value.
//
//	card:
//	  version: card-44
//	  classes: [card_blue, ...]
//	  options: [chimera, gem, hint, night, thistle]
//	multipliers:
//	  each_purple: [card_purple]
func LoadFile(path string) (*Set, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to read taxonomy file: %w", err)
	}

	set := Default()
	sections := []struct {
		key             string
		dst             **Taxonomy
		allowConditions bool
	}{
		{"scene", &set.Scene, false},
		{"card", &set.Card, true},
		{"temple", &set.Temple, false},
	}
	for _, s := range sections {
		if !k.Exists(s.key) {
			continue
		}
		var spec tableSpec
		if err := k.Unmarshal(s.key, &spec); err != nil {
			return nil, fmt.Errorf("taxonomy %s: %w", s.key, err)
		}
		if spec.Options == nil {
			spec.Options = (*s.dst).Options
		}
		t, err := New(s.key, spec.Version, spec.Classes, spec.Options, s.allowConditions)
		if err != nil {
			return nil, err
		}
		*s.dst = t
	}

	if k.Exists("multipliers") {
		var extra map[string][]string
		if err := k.Unmarshal("multipliers", &extra); err != nil {
			return nil, fmt.Errorf("taxonomy multipliers: %w", err)
		}
		for label, tags := range extra {
			set.Multipliers[label] = tags
		}
	}
	return set, nil
}
