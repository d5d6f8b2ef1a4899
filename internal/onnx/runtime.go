package onnx

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/ironsheep/faraway-scorer/internal/detection"
	"github.com/ironsheep/faraway-scorer/pkg/logger"
	ort "github.com/yalue/onnxruntime_go"
)

// LibraryEnv names the environment variable consulted when no library path
// is configured.
const LibraryEnv = "ONNXRUNTIME_LIB"

// Runtime owns the process-wide ONNX Runtime environment and loads models.
type Runtime struct {
	libraryPath string
	log         logger.Logger

	once    sync.Once
	initErr error
}

// NewRuntime returns a runtime that loads the shared library at
// libraryPath on first use. An empty path falls back to $ONNXRUNTIME_LIB,
// then to the platform default search.
func NewRuntime(libraryPath string, log logger.Logger) *Runtime {
	if libraryPath == "" {
		libraryPath = os.Getenv(LibraryEnv)
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Runtime{libraryPath: libraryPath, log: log}
}

func (r *Runtime) init() error {
	r.once.Do(func() {
		if r.libraryPath != "" {
			ort.SetSharedLibraryPath(r.libraryPath)
		}
		if err := ort.InitializeEnvironment(); err != nil {
			r.initErr = fmt.Errorf("initialize onnxruntime: %w", err)
			return
		}
		r.log.Info(context.Background(), "onnxruntime initialized",
			logger.String("library", r.libraryPath),
			logger.String("version", ort.GetVersion()))
	})
	return r.initErr
}

// Load opens the model file at path. It implements detection.Loader.
//
// The model must have one image input and one output; a static output
// shape lets every run reuse the declared dimensions.
func (r *Runtime) Load(ctx context.Context, path string, inputSize int) (detection.Model, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("model file: %w", err)
	}
	if err := r.init(); err != nil {
		return nil, err
	}

	inputs, outputs, err := ort.GetInputOutputInfo(path)
	if err != nil {
		return nil, fmt.Errorf("inspect model: %w", err)
	}
	if len(inputs) != 1 || len(outputs) != 1 {
		return nil, fmt.Errorf("model has %d inputs and %d outputs, want 1 and 1", len(inputs), len(outputs))
	}

	session, err := ort.NewDynamicAdvancedSession(path,
		[]string{inputs[0].Name}, []string{outputs[0].Name}, nil)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	m := &model{
		session:   session,
		inputName: inputs[0].Name,
	}
	if static(outputs[0].Dimensions) {
		m.outputShape = outputs[0].Dimensions.Clone()
	}
	r.log.Debug(ctx, "onnx session created",
		logger.String("path", path),
		logger.String("input", inputs[0].Name),
		logger.String("output", outputs[0].Name),
		logger.String("output_shape", outputs[0].Dimensions.String()))
	return m, nil
}

// Close tears down the runtime environment. Models must be closed first.
func (r *Runtime) Close() error {
	if !ort.IsInitialized() {
		return nil
	}
	return ort.DestroyEnvironment()
}

// model is one ONNX Runtime session.
type model struct {
	session     *ort.DynamicAdvancedSession
	inputName   string
	outputShape ort.Shape
}

func (m *model) Run(ctx context.Context, in detection.Tensor) (detection.Tensor, error) {
	if err := ctx.Err(); err != nil {
		return detection.Tensor{}, err
	}
	input, err := ort.NewTensor(toShape(in.Shape), in.Data)
	if err != nil {
		return detection.Tensor{}, fmt.Errorf("input tensor: %w", err)
	}
	defer input.Destroy()

	var output *ort.Tensor[float32]
	if m.outputShape != nil {
		output, err = ort.NewEmptyTensor[float32](m.outputShape)
		if err != nil {
			return detection.Tensor{}, fmt.Errorf("output tensor: %w", err)
		}
	}

	outputs := []ort.Value{nil}
	if output != nil {
		outputs[0] = output
	}
	if err := m.session.Run([]ort.Value{input}, outputs); err != nil {
		if output != nil {
			output.Destroy()
		}
		return detection.Tensor{}, fmt.Errorf("run session: %w", err)
	}

	if output == nil {
		typed, ok := outputs[0].(*ort.Tensor[float32])
		if !ok {
			if outputs[0] != nil {
				outputs[0].Destroy()
			}
			return detection.Tensor{}, errors.New("model output is not a float32 tensor")
		}
		output = typed
	}

	return detection.NewTensor(fromShape(output.GetShape()), output.GetData()).
		WithRelease(func() { output.Destroy() }), nil
}

func (m *model) Close() error {
	return m.session.Destroy()
}

func static(s ort.Shape) bool {
	if len(s) == 0 {
		return false
	}
	for _, d := range s {
		if d <= 0 {
			return false
		}
	}
	return true
}

func toShape(dims []int) ort.Shape {
	s := make(ort.Shape, len(dims))
	for i, d := range dims {
		s[i] = int64(d)
	}
	return s
}

func fromShape(s ort.Shape) []int {
	dims := make([]int, len(s))
	for i, d := range s {
		dims[i] = int(d)
	}
	return dims
}
