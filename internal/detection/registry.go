package detection

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/ironsheep/faraway-scorer/internal/geometry"
	"github.com/ironsheep/faraway-scorer/pkg/logger"
	"github.com/ironsheep/faraway-scorer/pkg/metrics"
	"golang.org/x/sync/singleflight"
)

// DefaultInputSize is the model input edge used when none is given.
const DefaultInputSize = 640

// Model is a loaded detector network.
type Model interface {
	// Run executes the network on an NCHW float32 input and returns its
	// single output tensor. The caller releases the output.
	Run(ctx context.Context, input Tensor) (Tensor, error)
	Close() error
}

// Loader opens model files.
type Loader interface {
	Load(ctx context.Context, path string, inputSize int) (Model, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(ctx context.Context, path string, inputSize int) (Model, error)

// Load calls f.
func (f LoaderFunc) Load(ctx context.Context, path string, inputSize int) (Model, error) {
	return f(ctx, path, inputSize)
}

// Entry is a registered model.
type Entry struct {
	Name      string
	Path      string
	InputSize int
	Mode      geometry.Mode

	mu    sync.Mutex
	model Model
}

// Run executes the model. Calls on one entry are serialized.
func (e *Entry) Run(ctx context.Context, input Tensor) (Tensor, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return Tensor{}, err
	}
	return e.model.Run(ctx, input)
}

// Registry maps model names to loaded models.
//
// A registry starts empty. A name is added on its first successful load and
// is never removed; loading a registered name again is a no-op, and
// concurrent loads of one name share a single attempt.
type Registry struct {
	loader  Loader
	log     logger.Logger
	metrics *metrics.Manager

	mu      sync.RWMutex
	entries map[string]*Entry
	group   singleflight.Group
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithLogger sets the registry logger.
func WithLogger(l logger.Logger) RegistryOption {
	return func(r *Registry) { r.log = l }
}

// WithMetrics sets the metrics manager.
func WithMetrics(m *metrics.Manager) RegistryOption {
	return func(r *Registry) { r.metrics = m }
}

// NewRegistry creates an empty registry backed by loader.
func NewRegistry(loader Loader, opts ...RegistryOption) *Registry {
	r := &Registry{
		loader:  loader,
		log:     logger.Nop(),
		entries: make(map[string]*Entry),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.metrics == nil {
		r.metrics = metrics.Default()
	}
	return r
}

// LoadOption configures one model registration.
type LoadOption func(*Entry)

// WithPreprocess sets how source images are fitted to the model input.
// An empty mode keeps letterboxing.
func WithPreprocess(mode geometry.Mode) LoadOption {
	return func(e *Entry) {
		if mode != "" {
			e.Mode = mode
		}
	}
}

// Load opens the model at path and registers it as name.
//
// If name is already registered the existing entry is returned without
// touching path. A failed load registers nothing, so a later call retries.
func (r *Registry) Load(ctx context.Context, path, name string, inputSize int, opts ...LoadOption) (*Entry, error) {
	if name == "" {
		return nil, errors.New("model name is required")
	}
	if inputSize <= 0 {
		inputSize = DefaultInputSize
	}
	if e, ok := r.Get(name); ok {
		return e, nil
	}

	v, err, shared := r.group.Do(name, func() (interface{}, error) {
		if e, ok := r.Get(name); ok {
			return e, nil
		}
		m, err := r.loader.Load(ctx, path, inputSize)
		if err != nil {
			r.metrics.RecordModelLoad(name, "error")
			return nil, fmt.Errorf("load model %s from %s: %w", name, path, err)
		}
		e := &Entry{Name: name, Path: path, InputSize: inputSize, Mode: geometry.ModeLetterbox, model: m}
		for _, opt := range opts {
			opt(e)
		}

		r.mu.Lock()
		r.entries[name] = e
		r.mu.Unlock()

		r.metrics.RecordModelLoad(name, "ok")
		r.log.Info(ctx, "model loaded",
			logger.String("model", name),
			logger.String("path", path),
			logger.Int("input_size", inputSize),
			logger.String("mode", string(e.Mode)))
		return e, nil
	})
	if err != nil {
		r.log.Error(ctx, "model load failed", logger.String("model", name), logger.Error(err))
		return nil, err
	}
	if shared {
		r.log.Debug(ctx, "joined in-flight load", logger.String("model", name))
	}
	return v.(*Entry), nil
}

// Get returns the entry registered as name.
func (r *Registry) Get(name string) (*Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[name]
	return e, ok
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.entries))
	for n := range r.entries {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Close closes every loaded model. Entries stay registered; running a closed
// model fails in whatever way the backend reports.
func (r *Registry) Close() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var errs []error
	for _, e := range r.entries {
		e.mu.Lock()
		if err := e.model.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", e.Name, err))
		}
		e.mu.Unlock()
	}
	return errors.Join(errs...)
}
