// Package inference runs registered detector models on images.
//
// Detect is the single entry point: it fits the image to the model input,
// runs the model, and decodes the output. Every buffer used along the way,
// the rendered input, the model output and the decoder intermediates, is
// released before Detect returns.
package inference

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/ironsheep/faraway-scorer/internal/detection"
	"github.com/ironsheep/faraway-scorer/internal/imaging"
	"github.com/ironsheep/faraway-scorer/pkg/logger"
	"github.com/ironsheep/faraway-scorer/pkg/metrics"
)

// DefaultInputBuffers bounds the rendered inputs checked out at once.
const DefaultInputBuffers = 4

// Service runs detections against a model registry.
type Service struct {
	registry *detection.Registry
	decoder  *detection.Decoder
	inputs   *detection.Pool[float32]
	log      logger.Logger
	metrics  *metrics.Manager
}

// Option configures a Service.
type Option func(*Service)

// WithDecoder replaces the default decoder.
func WithDecoder(d *detection.Decoder) Option {
	return func(s *Service) { s.decoder = d }
}

// WithInputPool sets the pool rendered inputs are drawn from.
func WithInputPool(p *detection.Pool[float32]) Option {
	return func(s *Service) { s.inputs = p }
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) { s.log = l }
}

// WithMetrics sets the metrics manager.
func WithMetrics(m *metrics.Manager) Option {
	return func(s *Service) { s.metrics = m }
}

// New creates a service over registry.
func New(registry *detection.Registry, opts ...Option) *Service {
	s := &Service{
		registry: registry,
		log:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.decoder == nil {
		s.decoder = detection.NewDecoder()
	}
	if s.inputs == nil {
		s.inputs = detection.NewPool[float32](DefaultInputBuffers)
	}
	if s.metrics == nil {
		s.metrics = metrics.Default()
	}
	return s
}

// Registry returns the model registry.
func (s *Service) Registry() *detection.Registry { return s.registry }

// Outstanding returns the buffers currently checked out by in-progress calls.
func (s *Service) Outstanding() int {
	return s.inputs.Outstanding() + s.decoder.Pool().Outstanding()
}

type detectConfig struct {
	inputSize int
}

// DetectOption configures one Detect call.
type DetectOption func(*detectConfig)

// WithInputSize overrides the model input edge registered with the model.
func WithInputSize(n int) DetectOption {
	return func(c *detectConfig) { c.inputSize = n }
}

// Detect runs modelName on img and returns its detections scoring at least
// threshold.
//
// An unregistered model is not an error: Detect returns a nil result and a
// nil error, which callers must tell apart from an empty result. A malformed
// model output fails with an error wrapping detection.ErrDecodeShape; the
// registry is not affected.
func (s *Service) Detect(ctx context.Context, img image.Image, threshold float64, modelName string, opts ...DetectOption) (*detection.Result, error) {
	entry, ok := s.registry.Get(modelName)
	if !ok {
		s.metrics.RecordModelUnavailable(modelName)
		s.log.Warn(ctx, "model not loaded", logger.String("model", modelName))
		return nil, nil
	}

	cfg := detectConfig{inputSize: entry.InputSize}
	for _, opt := range opts {
		opt(&cfg)
	}

	start := time.Now()
	defer func() { s.metrics.UpdatePoolOutstanding(s.Outstanding()) }()

	scope := detection.NewScope()
	defer scope.Close()

	buf, err := detection.Acquire(scope, s.inputs, imaging.InputLen(cfg.inputSize))
	if err != nil {
		return nil, fmt.Errorf("detect %s: %w", modelName, err)
	}
	prepared, err := imaging.PrepareInput(img, cfg.inputSize, entry.Mode, buf)
	if err != nil {
		return nil, fmt.Errorf("detect %s: %w", modelName, err)
	}

	out, err := entry.Run(ctx, prepared.Input)
	if err != nil {
		s.metrics.RecordDecodeError(modelName)
		return nil, fmt.Errorf("run %s: %w", modelName, err)
	}
	scope.Defer(out.Release)

	res, err := s.decoder.Decode(out, threshold, prepared.Frame())
	if err != nil {
		s.metrics.RecordDecodeError(modelName)
		s.log.Error(ctx, "decode failed", logger.String("model", modelName), logger.Error(err))
		return nil, fmt.Errorf("detect %s: %w", modelName, err)
	}

	s.metrics.RecordDetect(modelName, time.Since(start).Seconds(), res.Len())
	s.log.Debug(ctx, "detect",
		logger.String("model", modelName),
		logger.Int("detections", res.Len()),
		logger.Float64("threshold", threshold))
	return res, nil
}
