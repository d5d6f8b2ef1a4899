package imaging

import (
	"bytes"
	"fmt"
	"image"
	"math"
	"os"
	"path/filepath"
	"sort"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/disintegration/imaging"
	"github.com/ironsheep/faraway-scorer/internal/detection"
)

// JPEGQuality is the quality crops are encoded at.
const JPEGQuality = 95

// RegionOptions selects which detections become regions.
type RegionOptions struct {
	// ClassID is the scene class to extract.
	ClassID int
	// Threshold is the minimum detection score.
	Threshold float64
	// SortLeftToRight orders regions by their left edge. Otherwise regions
	// keep detection order.
	SortLeftToRight bool
}

// CroppedRegion is an independent copy of one detected area.
type CroppedRegion struct {
	Image  *image.NRGBA    `json:"-"`
	Bounds image.Rectangle `json:"bounds"`
	Score  float64         `json:"score"`
	// Detection is the index of the source detection in the result.
	Detection int `json:"detection"`
}

// ExtractRegions copies the pixels of every matching detection out of img.
//
// Normalized boxes are converted to pixels by rounding each corner
// separately, then clipped to the image. Boxes that clip to nothing are
// skipped. The returned images share no memory with img.
func ExtractRegions(img image.Image, res *detection.Result, opts RegionOptions) []CroppedRegion {
	if res == nil {
		return nil
	}
	b := img.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())

	var regions []CroppedRegion
	for i, d := range res.Detections {
		if d.ClassID != opts.ClassID || d.Score < opts.Threshold {
			continue
		}
		rect := image.Rect(
			b.Min.X+int(math.Round(d.Box[0]*w)),
			b.Min.Y+int(math.Round(d.Box[1]*h)),
			b.Min.X+int(math.Round(d.Box[2]*w)),
			b.Min.Y+int(math.Round(d.Box[3]*h)),
		).Intersect(b)
		if rect.Empty() {
			continue
		}
		regions = append(regions, CroppedRegion{
			Image:     imaging.Crop(img, rect),
			Bounds:    rect,
			Score:     d.Score,
			Detection: i,
		})
	}

	if opts.SortLeftToRight {
		sort.SliceStable(regions, func(i, j int) bool {
			return regions[i].Bounds.Min.X < regions[j].Bounds.Min.X
		})
	}
	return regions
}

// EncodeJPEG encodes img at JPEGQuality.
func EncodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imgio.JPEGEncoder(JPEGQuality)(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// SaveRegions writes each region to dir as <prefix>_<n>.jpg, n counting from
// 1 in slice order, and returns the written paths.
func SaveRegions(dir, prefix string, regions []CroppedRegion) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", dir, err)
	}
	paths := make([]string, 0, len(regions))
	for i, r := range regions {
		path := filepath.Join(dir, fmt.Sprintf("%s_%d.jpg", prefix, i+1))
		if err := imgio.Save(path, r.Image, imgio.JPEGEncoder(JPEGQuality)); err != nil {
			return paths, fmt.Errorf("failed to save region %d: %w", i+1, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
