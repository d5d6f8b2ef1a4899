package pipeline

import (
	"context"
	"errors"
	"sync"

	"github.com/ironsheep/faraway-scorer/internal/detection"
	"github.com/ironsheep/faraway-scorer/internal/geometry"
)

// ModelSpec names a model file to register.
type ModelSpec struct {
	Name      string
	Path      string
	InputSize int
	Mode      geometry.Mode
}

// LoadModels registers every spec with a non-empty path. Loads run
// concurrently; a failed load does not stop the others. The returned error
// joins every failure.
func LoadModels(ctx context.Context, reg *detection.Registry, specs ...ModelSpec) error {
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for _, spec := range specs {
		if spec.Path == "" {
			continue
		}
		wg.Add(1)
		go func(spec ModelSpec) {
			defer wg.Done()
			_, err := reg.Load(ctx, spec.Path, spec.Name, spec.InputSize, detection.WithPreprocess(spec.Mode))
			if err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
		}(spec)
	}
	wg.Wait()
	return errors.Join(errs...)
}
