package pipeline

import (
	"context"
	"errors"
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/ironsheep/faraway-scorer/internal/detection"
	"github.com/ironsheep/faraway-scorer/internal/geometry"
	"github.com/ironsheep/faraway-scorer/internal/inference"
	"github.com/ironsheep/faraway-scorer/internal/taxonomy"
	"github.com/ironsheep/faraway-scorer/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/smartystreets/goconvey/convey"
)

// scriptedDetector answers each model with a queue of results, one per call.
type scriptedDetector struct {
	results map[string][]*detection.Result
	errs    map[string]error
	calls   map[string]int
	sizes   map[string][]image.Point
}

func newScripted() *scriptedDetector {
	return &scriptedDetector{
		results: make(map[string][]*detection.Result),
		errs:    make(map[string]error),
		calls:   make(map[string]int),
		sizes:   make(map[string][]image.Point),
	}
}

func (s *scriptedDetector) Detect(ctx context.Context, img image.Image, threshold float64, model string, opts ...inference.DetectOption) (*detection.Result, error) {
	n := s.calls[model]
	s.calls[model]++
	s.sizes[model] = append(s.sizes[model], img.Bounds().Size())
	if err := s.errs[model]; err != nil {
		return nil, err
	}
	queue, ok := s.results[model]
	if !ok || n >= len(queue) {
		return nil, nil
	}
	return queue[n], nil
}

func labels(tax *taxonomy.Taxonomy, pairs ...string) *detection.Result {
	res := &detection.Result{}
	for _, l := range pairs {
		res.Detections = append(res.Detections, detection.Detection{ClassID: tax.ClassID(l), Score: 0.8})
	}
	return res
}

func tablePhoto() image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, 200, 100))
	for y := 0; y < 100; y++ {
		for x := 0; x < 200; x++ {
			img.Set(x, y, color.NRGBA{194, 46, 41, 255})
		}
	}
	return img
}

func sceneWithTwoCardsAndTemple() *detection.Result {
	return &detection.Result{Detections: []detection.Detection{
		{Box: geometry.Box{0.6, 0.1, 0.8, 0.9}, Score: 0.9, ClassID: taxonomy.SceneCard},
		{Box: geometry.Box{0.1, 0.1, 0.3, 0.9}, Score: 0.85, ClassID: taxonomy.SceneCard},
		{Box: geometry.Box{0.4, 0, 0.5, 0.5}, Score: 0.7, ClassID: taxonomy.SceneTemple},
		{Box: geometry.Box{0.9, 0, 1, 0.5}, Score: 0.1, ClassID: taxonomy.SceneTemple},
	}}
}

func testAnalyzer(d Detector, opts ...Option) *Analyzer {
	m := metrics.NewManager(metrics.WithPrometheusRegistry(prometheus.NewRegistry()))
	return New(d, append([]Option{WithMetrics(m)}, opts...)...)
}

func TestAnalyze(t *testing.T) {
	convey.Convey("Given a table with two cards and a temple", t, func() {
		d := newScripted()
		d.results[SceneModel] = []*detection.Result{sceneWithTwoCardsAndTemple()}
		d.results[CardModel] = []*detection.Result{
			labels(taxonomy.Card(), "value_3", "each_blue"),
			labels(taxonomy.Card(), "card_blue"),
		}
		d.results[TempleModel] = []*detection.Result{labels(taxonomy.Temple(), "card_blue")}

		convey.Convey("When the photo is analyzed", func() {
			an, err := testAnalyzer(d).Analyze(context.Background(), tablePhoto())
			convey.So(err, convey.ShouldBeNil)

			convey.Convey("Then cards are classified left to right", func() {
				convey.So(len(an.Cards), convey.ShouldEqual, 2)
				convey.So(an.Cards[0].Bounds.Min.X, convey.ShouldEqual, 20)
				convey.So(an.Cards[1].Bounds.Min.X, convey.ShouldEqual, 120)
				convey.So(an.Layout.Cards[0].Value, convey.ShouldEqual, 3)
				convey.So(an.Layout.Cards[1].Color, convey.ShouldEqual, "card_blue")
			})

			convey.Convey("And only temples above the scene threshold are kept", func() {
				convey.So(len(an.Temples), convey.ShouldEqual, 1)
				convey.So(d.calls[TempleModel], convey.ShouldEqual, 1)
			})

			convey.Convey("And each crop is classified at its own size", func() {
				convey.So(d.sizes[CardModel][0], convey.ShouldResemble, image.Pt(40, 80))
			})

			convey.Convey("And the layout is scored", func() {
				convey.So(an.Score.Score, convey.ShouldEqual, 6)
				convey.So(an.Score.Details, convey.ShouldContain, " -> Multiplier (each_blue): 3 x 2 = 6pts")
			})

			convey.Convey("And the analysis has an id and no warnings", func() {
				convey.So(an.ID, convey.ShouldNotBeEmpty)
				convey.So(an.Warnings, convey.ShouldBeEmpty)
			})
		})
	})
}

func TestAnalyze_Unavailable(t *testing.T) {
	convey.Convey("Given a detector with no scene model", t, func() {
		d := newScripted()

		convey.Convey("When the photo is analyzed", func() {
			_, err := testAnalyzer(d).Analyze(context.Background(), tablePhoto())

			convey.Convey("Then the scene is reported unavailable", func() {
				convey.So(errors.Is(err, ErrSceneUnavailable), convey.ShouldBeTrue)
			})
		})
	})

	convey.Convey("Given a detector with no card model", t, func() {
		d := newScripted()
		d.results[SceneModel] = []*detection.Result{sceneWithTwoCardsAndTemple()}
		d.results[TempleModel] = []*detection.Result{labels(taxonomy.Temple(), "value_2")}

		convey.Convey("When the photo is analyzed", func() {
			an, err := testAnalyzer(d).Analyze(context.Background(), tablePhoto())
			convey.So(err, convey.ShouldBeNil)

			convey.Convey("Then cards are left empty with a warning", func() {
				convey.So(an.Layout.Cards[0].Empty(), convey.ShouldBeTrue)
				convey.So(len(an.Warnings), convey.ShouldEqual, 1)
				convey.So(strings.HasPrefix(an.Warnings[0], CardModel), convey.ShouldBeTrue)
			})

			convey.Convey("And temples still score", func() {
				convey.So(an.Score.Score, convey.ShouldEqual, 2)
			})
		})
	})
}

func TestAnalyze_DetectError(t *testing.T) {
	convey.Convey("Given a card model that fails to decode", t, func() {
		d := newScripted()
		d.results[SceneModel] = []*detection.Result{sceneWithTwoCardsAndTemple()}
		d.errs[CardModel] = &detection.DecodeError{Shape: []int{1, 4, 10}, Reason: "no classes"}

		convey.Convey("When the photo is analyzed", func() {
			_, err := testAnalyzer(d).Analyze(context.Background(), tablePhoto())

			convey.Convey("Then the analysis is aborted with the decode error", func() {
				convey.So(errors.Is(err, detection.ErrDecodeShape), convey.ShouldBeTrue)
				convey.So(d.calls[CardModel], convey.ShouldEqual, 1)
			})
		})
	})
}

func TestAnalyze_ColorFallback(t *testing.T) {
	convey.Convey("Given a card model that sees no color", t, func() {
		d := newScripted()
		d.results[SceneModel] = []*detection.Result{sceneWithTwoCardsAndTemple()}
		d.results[CardModel] = []*detection.Result{
			labels(taxonomy.Card(), "value_1"),
			labels(taxonomy.Card(), "value_2"),
		}

		convey.Convey("When the color hint is enabled", func() {
			an, err := testAnalyzer(d, WithColorFallback(true, nil)).Analyze(context.Background(), tablePhoto())
			convey.So(err, convey.ShouldBeNil)

			convey.Convey("Then colors come from the crop pixels", func() {
				convey.So(an.Cards[0].Record.Color, convey.ShouldEqual, "card_red")
				convey.So(an.Cards[0].Hinted, convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the color hint is disabled", func() {
			an, err := testAnalyzer(d).Analyze(context.Background(), tablePhoto())
			convey.So(err, convey.ShouldBeNil)

			convey.Convey("Then colors stay empty", func() {
				convey.So(an.Cards[0].Record.Color, convey.ShouldBeEmpty)
				convey.So(an.Cards[0].Hinted, convey.ShouldBeFalse)
			})
		})
	})
}
