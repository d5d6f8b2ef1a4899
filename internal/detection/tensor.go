package detection

import "fmt"

// Tensor is a dense float32 tensor in row-major order.
//
// A tensor backed by memory it does not own (a runtime-allocated output, a
// pooled buffer) carries a release function; Release must be called exactly
// once when the data is no longer needed. Release on a tensor without one is
// a no-op.
type Tensor struct {
	Shape []int
	Data  []float32

	release func()
}

// NewTensor wraps data with the given shape.
func NewTensor(shape []int, data []float32) Tensor {
	return Tensor{Shape: append([]int(nil), shape...), Data: data}
}

// WithRelease returns a copy of t that runs f on Release.
func (t Tensor) WithRelease(f func()) Tensor {
	t.release = f
	return t
}

// Release frees the backing memory if t owns any.
func (t Tensor) Release() {
	if t.release != nil {
		t.release()
	}
}

// Elements returns the product of the shape dimensions.
func (t Tensor) Elements() int {
	if len(t.Shape) == 0 {
		return 0
	}
	n := 1
	for _, d := range t.Shape {
		n *= d
	}
	return n
}

// String implements fmt.Stringer.
func (t Tensor) String() string {
	return fmt.Sprintf("Tensor%v", t.Shape)
}
