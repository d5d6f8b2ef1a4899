package taxonomy

import (
	"os"
	"path/filepath"
	"testing"
)

func TestBuiltinSizes(t *testing.T) {
	tests := []struct {
		name string
		tax  *Taxonomy
		want int
	}{
		{"scene", Scene(), 2},
		{"card", Card(), 43},
		{"temple", Temple(), 30},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.tax.NumClasses(); got != tt.want {
				t.Errorf("NumClasses: got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCardCategories(t *testing.T) {
	card := Card()

	tests := []struct {
		label string
		want  Category
	}{
		{"card_blue", CategoryColor},
		{"value_12", CategoryValue},
		{"each_all_colors", CategoryMultiplier},
		{"condition_gem", CategoryCondition},
		{"gem", CategoryOption},
		{"thistle", CategoryOption},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			got, ok := card.CategoryOf(tt.label)
			if !ok || got != tt.want {
				t.Errorf("CategoryOf(%q): got %q,%v want %q", tt.label, got, ok, tt.want)
			}
		})
	}

	if got := len(card.Labels(CategoryColor)); got != 4 {
		t.Errorf("card colors: got %d, want 4", got)
	}
	if got := len(card.Labels(CategoryValue)); got != 19 {
		t.Errorf("card values: got %d, want 19", got)
	}
	if got := len(card.Labels(CategoryMultiplier)); got != 12 {
		t.Errorf("card multipliers: got %d, want 12", got)
	}
}

func TestTempleHasNoConditions(t *testing.T) {
	temple := Temple()
	if got := temple.Labels(CategoryCondition); len(got) != 0 {
		t.Errorf("temple conditions: got %v, want none", got)
	}
	if c, _ := temple.CategoryOf("card_gray"); c != CategoryColor {
		t.Errorf("card_gray category: got %q, want color", c)
	}
}

func TestLabel(t *testing.T) {
	scene := Scene()
	if l, ok := scene.Label(SceneTemple); !ok || l != "temple" {
		t.Errorf("Label(1): got %q,%v", l, ok)
	}
	if _, ok := scene.Label(2); ok {
		t.Error("Label(2) should be out of range")
	}
	if _, ok := scene.Label(-1); ok {
		t.Error("Label(-1) should be out of range")
	}
	if id := Card().ClassID("gem"); id != 20 {
		t.Errorf("ClassID(gem): got %d, want 20", id)
	}
}

func TestNewRejectsDuplicates(t *testing.T) {
	if _, err := New("bad", "v1", []string{"gem", "gem"}, nil, false); err == nil {
		t.Error("expected error for duplicate labels")
	}
	if _, err := New("empty", "v1", nil, nil, false); err == nil {
		t.Error("expected error for empty class list")
	}
}

func TestDefaultMultipliers(t *testing.T) {
	m := DefaultMultipliers()

	tags, ok := m.Tags("each_all_colors")
	if !ok || len(tags) != 4 {
		t.Fatalf("each_all_colors: got %v", tags)
	}
	for _, label := range Temple().Labels(CategoryMultiplier) {
		if _, ok := m.Tags(label); !ok {
			t.Errorf("temple multiplier %q missing from table", label)
		}
	}
	for _, label := range Card().Labels(CategoryMultiplier) {
		if _, ok := m.Tags(label); !ok {
			t.Errorf("card multiplier %q missing from table", label)
		}
	}
}

func TestLoadFile(t *testing.T) {
	content := `
scene:
  version: scene-3
  classes: [card, temple, sanctuary]
multipliers:
  each_purple: [card_purple]
`
	path := filepath.Join(t.TempDir(), "taxonomy.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	set, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if set.Scene.Version != "scene-3" || set.Scene.NumClasses() != 3 {
		t.Errorf("scene override not applied: %+v", set.Scene)
	}
	if set.Card.Version != CardVersion {
		t.Errorf("card should keep built-in version, got %q", set.Card.Version)
	}
	if tags, ok := set.Multipliers.Tags("each_purple"); !ok || tags[0] != "card_purple" {
		t.Errorf("multiplier override: got %v", tags)
	}
	if _, ok := set.Multipliers.Tags("each_blue"); !ok {
		t.Error("built-in multipliers should be kept")
	}
}

func TestLoadFile_Missing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
