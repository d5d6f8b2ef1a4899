package detection

import (
	"errors"
	"fmt"
)

var (
	// ErrDecodeShape is wrapped by every DecodeError.
	ErrDecodeShape = errors.New("output tensor has unexpected shape")

	// ErrPoolExhausted is returned when a pool has no buffer to give.
	ErrPoolExhausted = errors.New("buffer pool exhausted")
)

// DecodeError reports a model output that does not have the [*, 4+N, K]
// layout the decoder expects.
type DecodeError struct {
	Shape  []int
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode tensor %v: %s", e.Shape, e.Reason)
}

func (e *DecodeError) Unwrap() error { return ErrDecodeShape }
