package detection

import (
	"reflect"
	"testing"

	"github.com/ironsheep/faraway-scorer/internal/geometry"
)

func TestNonMaxSuppression(t *testing.T) {
	tests := []struct {
		name   string
		boxes  []geometry.Box
		scores []float64
		maxOut int
		want   []int
	}{
		{
			name:   "sorted by score",
			boxes:  []geometry.Box{{0, 0, 10, 10}, {20, 20, 30, 30}, {40, 40, 50, 50}},
			scores: []float64{0.3, 0.9, 0.6},
			maxOut: 10,
			want:   []int{1, 2, 0},
		},
		{
			name:   "overlap suppressed",
			boxes:  []geometry.Box{{0, 0, 10, 10}, {1, 0, 11, 10}},
			scores: []float64{0.8, 0.9},
			maxOut: 10,
			want:   []int{1},
		},
		{
			name:   "iou at threshold suppresses",
			boxes:  []geometry.Box{{0, 0, 10, 10}, {0, 0, 9, 5}},
			scores: []float64{0.9, 0.8},
			maxOut: 10,
			want:   []int{0},
		},
		{
			name:   "iou below threshold kept",
			boxes:  []geometry.Box{{0, 0, 10, 10}, {0, 0, 8, 5}},
			scores: []float64{0.9, 0.8},
			maxOut: 10,
			want:   []int{0, 1},
		},
		{
			name:   "below score threshold dropped",
			boxes:  []geometry.Box{{0, 0, 10, 10}, {20, 20, 30, 30}},
			scores: []float64{0.9, 0.1},
			maxOut: 10,
			want:   []int{0},
		},
		{
			name:   "ties keep index order",
			boxes:  []geometry.Box{{0, 0, 10, 10}, {20, 20, 30, 30}, {0, 0, 10, 10}},
			scores: []float64{0.5, 0.5, 0.5},
			maxOut: 10,
			want:   []int{0, 1},
		},
		{
			name:   "capped",
			boxes:  []geometry.Box{{0, 0, 10, 10}, {20, 20, 30, 30}, {40, 40, 50, 50}},
			scores: []float64{0.9, 0.8, 0.7},
			maxOut: 2,
			want:   []int{0, 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NonMaxSuppression(tt.boxes, tt.scores, tt.maxOut, IoUThreshold, 0.25)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("kept: got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNonMaxSuppression_MaxDetections(t *testing.T) {
	var boxes []geometry.Box
	var scores []float64
	for i := 0; i < 60; i++ {
		x := float64(i * 20)
		boxes = append(boxes, geometry.Box{x, 0, x + 10, 10})
		scores = append(scores, 0.9)
	}
	got := NonMaxSuppression(boxes, scores, MaxDetections, IoUThreshold, 0.5)
	if len(got) != MaxDetections {
		t.Errorf("kept: got %d, want %d", len(got), MaxDetections)
	}
}

func TestNonMaxSuppression_Empty(t *testing.T) {
	if got := NonMaxSuppression(nil, nil, 10, IoUThreshold, 0); len(got) != 0 {
		t.Errorf("got %v, want none", got)
	}
}
