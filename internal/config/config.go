// Package config defines the scorer configuration and how it is loaded.
//
// Values are layered, lowest precedence first: built-in defaults, a YAML
// file named by FARAWAY_CONFIG (or passed explicitly), then FARAWAY_*
// environment variables. Nested keys use a double underscore in the
// environment, so FARAWAY_SCENE_MODEL__PATH sets scene_model.path.
package config

import (
	"fmt"

	"github.com/ironsheep/faraway-scorer/internal/geometry"
	"github.com/ironsheep/faraway-scorer/internal/pipeline"
)

// ModelConfig locates one detector model.
type ModelConfig struct {
	// Path is the ONNX file; empty leaves the model unregistered.
	Path string `koanf:"path"`
	// InputSize is the square input edge in pixels.
	InputSize int `koanf:"input_size"`
	// Preprocess is "letterbox" or "stretch".
	Preprocess string `koanf:"preprocess"`
}

// Config is the process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// ONNXLibrary is the path of the onnxruntime shared library.
	ONNXLibrary string `koanf:"onnx_library"`

	SceneModel  ModelConfig `koanf:"scene_model"`
	CardModel   ModelConfig `koanf:"card_model"`
	TempleModel ModelConfig `koanf:"temple_model"`

	// SceneThreshold is the minimum score of a card or temple on the table.
	SceneThreshold float64 `koanf:"scene_threshold"`
	// AnalysisThreshold is the minimum score of an attribute on a crop.
	AnalysisThreshold float64 `koanf:"analysis_threshold"`

	// TaxonomyFile overrides the built-in class tables.
	TaxonomyFile string `koanf:"taxonomy_file"`

	// ScoresheetFile persists the score sheet; empty keeps it in memory.
	ScoresheetFile string `koanf:"scoresheet_file"`

	// MetricsAddr serves /metrics when set, e.g. "127.0.0.1:9464".
	MetricsAddr string `koanf:"metrics_addr"`

	// ColorFallback estimates missing card colors from crop pixels.
	ColorFallback bool `koanf:"color_fallback"`

	// PoolBuffers bounds the decode buffers checked out at once.
	PoolBuffers int `koanf:"pool_buffers"`

	// CropDir, when set, receives a JPEG of every extracted region.
	CropDir string `koanf:"crop_dir"`
}

// New returns the default configuration.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		SceneModel:        ModelConfig{InputSize: 640, Preprocess: string(geometry.ModeLetterbox)},
		CardModel:         ModelConfig{InputSize: 640, Preprocess: string(geometry.ModeLetterbox)},
		TempleModel:       ModelConfig{InputSize: 640, Preprocess: string(geometry.ModeLetterbox)},
		SceneThreshold:    pipeline.DefaultSceneThreshold,
		AnalysisThreshold: pipeline.DefaultAnalysisThreshold,
		PoolBuffers:       16,
	}
}

// Validate checks ranges and enumerations.
func (c *Config) Validate() error {
	for name, m := range map[string]ModelConfig{
		"scene_model":  c.SceneModel,
		"card_model":   c.CardModel,
		"temple_model": c.TempleModel,
	} {
		if m.InputSize <= 0 {
			return fmt.Errorf("%w: %s.input_size must be positive, got %d", ErrInvalidConfig, name, m.InputSize)
		}
		if _, err := geometry.ParseMode(m.Preprocess); err != nil {
			return fmt.Errorf("%w: %s.preprocess: %v", ErrInvalidConfig, name, err)
		}
	}
	if c.SceneThreshold < 0 || c.SceneThreshold > 1 {
		return fmt.Errorf("%w: scene_threshold must be in [0,1], got %v", ErrInvalidConfig, c.SceneThreshold)
	}
	if c.AnalysisThreshold < 0 || c.AnalysisThreshold > 1 {
		return fmt.Errorf("%w: analysis_threshold must be in [0,1], got %v", ErrInvalidConfig, c.AnalysisThreshold)
	}
	if c.PoolBuffers < 3 {
		return fmt.Errorf("%w: pool_buffers must be at least 3, got %d", ErrInvalidConfig, c.PoolBuffers)
	}
	return nil
}

// ModelSpecs returns the registrations for the three models.
func (c *Config) ModelSpecs() []pipeline.ModelSpec {
	spec := func(name string, m ModelConfig) pipeline.ModelSpec {
		mode, _ := geometry.ParseMode(m.Preprocess)
		return pipeline.ModelSpec{Name: name, Path: m.Path, InputSize: m.InputSize, Mode: mode}
	}
	return []pipeline.ModelSpec{
		spec(pipeline.SceneModel, c.SceneModel),
		spec(pipeline.CardModel, c.CardModel),
		spec(pipeline.TempleModel, c.TempleModel),
	}
}
