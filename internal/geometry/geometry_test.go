package geometry

import (
	"math"
	"testing"
)

func TestComputeLetterbox(t *testing.T) {
	tests := []struct {
		name               string
		w, h, size         int
		wantRW, wantRH     int
		wantOffX, wantOffY int
	}{
		{"landscape", 1280, 720, 640, 640, 360, 0, 140},
		{"portrait", 720, 1280, 640, 360, 640, 140, 0},
		{"square", 100, 100, 640, 640, 640, 0, 0},
		{"odd padding", 641, 100, 640, 640, 99, 0, 270},
		{"tiny", 3, 1, 640, 640, 213, 0, 213},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lb, err := ComputeLetterbox(tt.w, tt.h, tt.size)
			if err != nil {
				t.Fatalf("ComputeLetterbox failed: %v", err)
			}
			if lb.ResizedWidth != tt.wantRW || lb.ResizedHeight != tt.wantRH {
				t.Errorf("resized: got %dx%d, want %dx%d", lb.ResizedWidth, lb.ResizedHeight, tt.wantRW, tt.wantRH)
			}
			if lb.OffsetX != tt.wantOffX || lb.OffsetY != tt.wantOffY {
				t.Errorf("offset: got (%d,%d), want (%d,%d)", lb.OffsetX, lb.OffsetY, tt.wantOffX, tt.wantOffY)
			}
		})
	}
}

func TestComputeLetterbox_Invariants(t *testing.T) {
	for w := 1; w <= 2000; w += 37 {
		for h := 1; h <= 2000; h += 53 {
			for _, size := range []int{320, 640} {
				lb, err := ComputeLetterbox(w, h, size)
				if err != nil {
					t.Fatalf("ComputeLetterbox(%d,%d,%d): %v", w, h, size, err)
				}
				if lb.OffsetX < 0 || lb.OffsetY < 0 {
					t.Fatalf("negative offset for %dx%d: %+v", w, h, lb)
				}
				if lb.ResizedWidth > size || lb.ResizedHeight > size {
					t.Fatalf("resized exceeds input for %dx%d: %+v", w, h, lb)
				}
				// Left padding never exceeds right padding, and by at most one pixel.
				right := size - lb.ResizedWidth - lb.OffsetX
				bottom := size - lb.ResizedHeight - lb.OffsetY
				if right-lb.OffsetX < 0 || right-lb.OffsetX > 1 || bottom-lb.OffsetY < 0 || bottom-lb.OffsetY > 1 {
					t.Fatalf("padding split wrong for %dx%d: %+v", w, h, lb)
				}
				wantScale := math.Min(float64(size)/float64(w), float64(size)/float64(h))
				if math.Abs(lb.Scale-wantScale) > 1e-12 {
					t.Fatalf("scale: got %v want %v", lb.Scale, wantScale)
				}
			}
		}
	}
}

func TestComputeLetterbox_Invalid(t *testing.T) {
	tests := []struct {
		name       string
		w, h, size int
	}{
		{"zero width", 0, 10, 640},
		{"negative height", 10, -1, 640},
		{"zero input", 10, 10, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ComputeLetterbox(tt.w, tt.h, tt.size); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLetterbox_RoundTrip(t *testing.T) {
	lb, err := ComputeLetterbox(1920, 1080, 640)
	if err != nil {
		t.Fatal(err)
	}
	boxes := []Box{
		{0, 0, 1920, 1080},
		{100.5, 200.25, 640, 900},
		{1900, 1000, 1920, 1080},
	}
	for _, b := range boxes {
		back := lb.BoxToSource(lb.BoxToModel(b))
		for i := range b {
			tol := 1e-3 * math.Max(1, math.Abs(b[i]))
			if math.Abs(back[i]-b[i]) > tol {
				t.Errorf("corner %d: got %v, want %v", i, back[i], b[i])
			}
		}
	}
}

func TestIoU(t *testing.T) {
	tests := []struct {
		name string
		a, b Box
		want float64
	}{
		{"identical", Box{0, 0, 10, 10}, Box{0, 0, 10, 10}, 1},
		{"disjoint", Box{0, 0, 10, 10}, Box{20, 20, 30, 30}, 0},
		{"half overlap", Box{0, 0, 10, 10}, Box{5, 0, 15, 10}, 50.0 / 150.0},
		{"touching", Box{0, 0, 10, 10}, Box{10, 0, 20, 10}, 0},
		{"degenerate", Box{0, 0, 0, 10}, Box{0, 0, 10, 10}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IoU(tt.a, tt.b); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("IoU: got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFromCenterAndNormalize(t *testing.T) {
	b := FromCenter(50, 40, 20, 10)
	if b != (Box{40, 35, 60, 45}) {
		t.Fatalf("FromCenter: got %v", b)
	}
	n := Box{-10, 50, 250, 100}.Normalize(200, 100)
	if n != (Box{0, 0.5, 1, 1}) {
		t.Errorf("Normalize: got %v", n)
	}
}

func TestParseMode(t *testing.T) {
	if m, err := ParseMode(""); err != nil || m != ModeLetterbox {
		t.Errorf("ParseMode(\"\"): got %q, %v", m, err)
	}
	if m, err := ParseMode("stretch"); err != nil || m != ModeStretch {
		t.Errorf("ParseMode(stretch): got %q, %v", m, err)
	}
	if _, err := ParseMode("crop"); err == nil {
		t.Error("expected error for unknown mode")
	}
}
