package imaging

import (
	"image/color"
	"testing"
)

func TestHintColor(t *testing.T) {
	tests := []struct {
		name string
		c    color.NRGBA
		want string
	}{
		{"red", color.NRGBA{194, 46, 41, 255}, "card_red"},
		{"green", color.NRGBA{70, 150, 70, 255}, "card_green"},
		{"blue", color.NRGBA{40, 107, 184, 255}, "card_blue"},
		{"yellow", color.NRGBA{230, 189, 51, 255}, "card_yellow"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hint, ok := HintColor(solidImage(40, 60, tt.c), DefaultPalette)
			if !ok {
				t.Fatal("no hint for a colored crop")
			}
			if hint.Label != tt.want {
				t.Errorf("label: got %s, want %s", hint.Label, tt.want)
			}
			if hint.Coverage != 1 {
				t.Errorf("coverage: got %v, want 1", hint.Coverage)
			}
		})
	}
}

func TestHintColor_NoColor(t *testing.T) {
	if _, ok := HintColor(solidImage(20, 20, color.NRGBA{128, 128, 128, 255}), DefaultPalette); ok {
		t.Error("gray crop produced a hint")
	}
	if _, ok := HintColor(solidImage(20, 20, color.NRGBA{200, 0, 0, 255}), nil); ok {
		t.Error("empty palette produced a hint")
	}
}

func TestHintColor_IgnoresGrayBorder(t *testing.T) {
	img := solidImage(40, 40, color.NRGBA{250, 250, 250, 255})
	for y := 10; y < 30; y++ {
		for x := 10; x < 30; x++ {
			img.Set(x, y, color.NRGBA{40, 107, 184, 255})
		}
	}
	hint, ok := HintColor(img, DefaultPalette)
	if !ok || hint.Label != "card_blue" {
		t.Errorf("hint: got %+v ok=%v, want card_blue", hint, ok)
	}
	if hint.Coverage <= 0 || hint.Coverage >= 1 {
		t.Errorf("coverage: got %v, want partial", hint.Coverage)
	}
}
