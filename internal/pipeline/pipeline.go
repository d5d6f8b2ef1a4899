// Package pipeline turns a photo of the table into a scored layout.
//
// One analysis runs the scene model over the whole photo, cuts out every
// card and temple, classifies each crop with its own model, and scores the
// resulting layout. Crops are classified one at a time.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/google/uuid"
	"github.com/ironsheep/faraway-scorer/internal/attributes"
	"github.com/ironsheep/faraway-scorer/internal/detection"
	"github.com/ironsheep/faraway-scorer/internal/imaging"
	"github.com/ironsheep/faraway-scorer/internal/inference"
	"github.com/ironsheep/faraway-scorer/internal/scoring"
	"github.com/ironsheep/faraway-scorer/internal/taxonomy"
	"github.com/ironsheep/faraway-scorer/pkg/logger"
	"github.com/ironsheep/faraway-scorer/pkg/metrics"
)

// Registered model names.
const (
	SceneModel  = "SCENE_MODEL"
	CardModel   = "CARD_MODEL"
	TempleModel = "TEMPLE_MODEL"
)

// Default detection thresholds.
const (
	DefaultSceneThreshold    = 0.2
	DefaultAnalysisThreshold = attributes.DefaultThreshold
)

// ErrSceneUnavailable is returned when the scene model is not loaded.
var ErrSceneUnavailable = errors.New("scene model not loaded")

// Detector runs a named model on an image. A nil result with a nil error
// means the model is not loaded.
type Detector interface {
	Detect(ctx context.Context, img image.Image, threshold float64, modelName string, opts ...inference.DetectOption) (*detection.Result, error)
}

// Region is one detected object and its classification.
type Region struct {
	imaging.CroppedRegion
	Record attributes.Record `json:"record"`
	// Hinted is set when Record.Color came from the color hint.
	Hinted bool `json:"hinted,omitempty"`
}

// Analysis is the outcome of one photo.
type Analysis struct {
	ID       string            `json:"id"`
	Layout   attributes.Layout `json:"layout"`
	Cards    []Region          `json:"cards"`
	Temples  []Region          `json:"temples"`
	Score    scoring.Result    `json:"score"`
	Warnings []string          `json:"warnings,omitempty"`
}

// Analyzer runs analyses.
type Analyzer struct {
	detector          Detector
	taxonomies        *taxonomy.Set
	calculator        *scoring.Calculator
	sceneThreshold    float64
	analysisThreshold float64
	colorFallback     bool
	palette           []imaging.Swatch
	log               logger.Logger
	metrics           *metrics.Manager
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithTaxonomies sets the class tables and multiplier table.
func WithTaxonomies(set *taxonomy.Set) Option {
	return func(a *Analyzer) { a.taxonomies = set }
}

// WithThresholds sets the scene and per-crop detection thresholds.
func WithThresholds(scene, analysis float64) Option {
	return func(a *Analyzer) {
		a.sceneThreshold = scene
		a.analysisThreshold = analysis
	}
}

// WithColorFallback fills missing card colors from the crop's pixels.
func WithColorFallback(enabled bool, palette []imaging.Swatch) Option {
	return func(a *Analyzer) {
		a.colorFallback = enabled
		if palette != nil {
			a.palette = palette
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(a *Analyzer) { a.log = l }
}

// WithMetrics sets the metrics manager.
func WithMetrics(m *metrics.Manager) Option {
	return func(a *Analyzer) { a.metrics = m }
}

// New creates an analyzer over detector.
func New(detector Detector, opts ...Option) *Analyzer {
	a := &Analyzer{
		detector:          detector,
		taxonomies:        taxonomy.Default(),
		sceneThreshold:    DefaultSceneThreshold,
		analysisThreshold: DefaultAnalysisThreshold,
		palette:           imaging.DefaultPalette,
		log:               logger.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.metrics == nil {
		a.metrics = metrics.Default()
	}
	a.calculator = scoring.New(a.taxonomies.Multipliers)
	return a
}

// Calculator returns the score calculator the analyzer uses.
func (a *Analyzer) Calculator() *scoring.Calculator { return a.calculator }

// Analyze detects, classifies and scores the layout in img.
//
// A missing scene model fails with ErrSceneUnavailable. A missing card or
// temple model leaves the affected records empty and adds a warning. A
// detection error aborts the analysis.
func (a *Analyzer) Analyze(ctx context.Context, img image.Image) (*Analysis, error) {
	start := time.Now()
	an := &Analysis{
		ID:     uuid.NewString(),
		Layout: attributes.Layout{Cards: []attributes.Record{}, Temples: []attributes.Record{}},
	}

	scene, err := a.detector.Detect(ctx, img, a.sceneThreshold, SceneModel)
	if err != nil {
		return nil, fmt.Errorf("scene detection: %w", err)
	}
	if scene == nil {
		return nil, ErrSceneUnavailable
	}

	cards := imaging.ExtractRegions(img, scene, imaging.RegionOptions{
		ClassID:         taxonomy.SceneCard,
		Threshold:       a.sceneThreshold,
		SortLeftToRight: true,
	})
	temples := imaging.ExtractRegions(img, scene, imaging.RegionOptions{
		ClassID:   taxonomy.SceneTemple,
		Threshold: a.sceneThreshold,
	})
	a.metrics.RecordRegions("card", len(cards))
	a.metrics.RecordRegions("temple", len(temples))
	a.log.Info(ctx, "scene detected",
		logger.String("analysis", an.ID),
		logger.Int("cards", len(cards)),
		logger.Int("temples", len(temples)))

	an.Cards, err = a.classify(ctx, an, cards, CardModel, a.taxonomies.Card, a.colorFallback)
	if err != nil {
		return nil, err
	}
	an.Temples, err = a.classify(ctx, an, temples, TempleModel, a.taxonomies.Temple, false)
	if err != nil {
		return nil, err
	}

	for _, r := range an.Cards {
		an.Layout.Cards = append(an.Layout.Cards, r.Record)
	}
	for _, r := range an.Temples {
		an.Layout.Temples = append(an.Layout.Temples, r.Record)
	}

	an.Score = a.calculator.Calculate(an.Layout.Cards, an.Layout.Temples)
	a.metrics.RecordScore(an.Score.Score)
	a.metrics.RecordAnalysis(time.Since(start).Seconds())
	a.log.Info(ctx, "layout scored",
		logger.String("analysis", an.ID),
		logger.Int("score", an.Score.Score))
	return an, nil
}

// classify runs model over each region in order.
func (a *Analyzer) classify(ctx context.Context, an *Analysis, regions []imaging.CroppedRegion, model string, tax *taxonomy.Taxonomy, hint bool) ([]Region, error) {
	out := make([]Region, 0, len(regions))
	unavailable := false
	for i, cr := range regions {
		res, err := a.detector.Detect(ctx, cr.Image, a.analysisThreshold, model)
		if err != nil {
			return nil, fmt.Errorf("classify %s region %d: %w", model, i+1, err)
		}
		if res == nil {
			unavailable = true
		}

		r := Region{CroppedRegion: cr, Record: attributes.Aggregate(res, tax, a.analysisThreshold)}
		if hint && r.Record.Color == "" {
			if h, ok := imaging.HintColor(cr.Image, a.palette); ok {
				r.Record.Color = h.Label
				r.Hinted = true
			}
		}
		out = append(out, r)
	}
	if unavailable {
		an.Warnings = append(an.Warnings, fmt.Sprintf("%s not loaded; %d regions left unclassified", model, len(regions)))
		a.log.Warn(ctx, "classification model missing", logger.String("model", model))
	}
	return out, nil
}
