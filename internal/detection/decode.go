package detection

import (
	"fmt"

	"github.com/ironsheep/faraway-scorer/internal/geometry"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// DefaultPoolLimit bounds the decode buffers checked out at once.
const DefaultPoolLimit = 16

// Frame describes how the source image was fitted into the model input.
type Frame struct {
	// InputSize is the square model input edge in pixels.
	InputSize int
	// Letterbox is the transform applied to the source; nil means the
	// source was stretched to InputSize on both axes.
	Letterbox *geometry.Letterbox
}

// Decoder turns raw detector output into a Result.
//
// A Decoder may be shared between goroutines; each call uses its own scope.
type Decoder struct {
	pool         *Pool[float64]
	iouThreshold float64
	maxOut       int
}

// DecoderOption configures a Decoder.
type DecoderOption func(*Decoder)

// WithPool sets the buffer pool used for intermediates.
func WithPool(p *Pool[float64]) DecoderOption {
	return func(d *Decoder) { d.pool = p }
}

// WithSuppression overrides the NMS overlap threshold and output cap.
func WithSuppression(iouThreshold float64, maxOut int) DecoderOption {
	return func(d *Decoder) {
		d.iouThreshold = iouThreshold
		d.maxOut = maxOut
	}
}

// NewDecoder creates a decoder with the standard suppression parameters.
func NewDecoder(opts ...DecoderOption) *Decoder {
	d := &Decoder{
		iouThreshold: IoUThreshold,
		maxOut:       MaxDetections,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.pool == nil {
		d.pool = NewPool[float64](DefaultPoolLimit)
	}
	return d
}

// Pool returns the decoder's buffer pool.
func (d *Decoder) Pool() *Pool[float64] { return d.pool }

// Decode converts one output tensor into normalized detections.
//
// The tensor must be [1, 4+N, K] or [4+N, K] with N >= 1. Each of the K
// candidates is assigned its highest-scoring class; candidates below
// threshold are dropped and the rest go through class-agnostic NMS. Boxes
// are mapped back through frame and normalized to [0, 1].
//
// Every intermediate buffer is returned to the pool before Decode returns,
// whether or not it succeeds.
func (d *Decoder) Decode(out Tensor, threshold float64, frame Frame) (*Result, error) {
	channels, candidates, err := outputLayout(out)
	if err != nil {
		return nil, err
	}
	if frame.InputSize <= 0 {
		return nil, fmt.Errorf("invalid input size %d", frame.InputSize)
	}
	if candidates == 0 {
		return &Result{}, nil
	}

	scope := NewScope()
	defer scope.Close()

	raw, err := Acquire(scope, d.pool, channels*candidates)
	if err != nil {
		return nil, err
	}
	for i, v := range out.Data[:channels*candidates] {
		raw[i] = float64(v)
	}
	rowBuf, err := Acquire(scope, d.pool, channels*candidates)
	if err != nil {
		return nil, err
	}
	scores, err := Acquire(scope, d.pool, candidates)
	if err != nil {
		return nil, err
	}

	// [C, K] -> [K, C]: one row per candidate.
	rows := mat.NewDense(candidates, channels, rowBuf)
	rows.Copy(mat.NewDense(channels, candidates, raw).T())

	boxes := make([]geometry.Box, candidates)
	classes := make([]int, candidates)
	for i := 0; i < candidates; i++ {
		row := rows.RawRowView(i)
		cls := floats.MaxIdx(row[4:])
		classes[i] = cls
		scores[i] = row[4+cls]
		boxes[i] = geometry.FromCenter(row[0], row[1], row[2], row[3])
	}

	keep := NonMaxSuppression(boxes, scores, d.maxOut, d.iouThreshold, threshold)

	res := &Result{Detections: make([]Detection, 0, len(keep))}
	for _, i := range keep {
		res.Detections = append(res.Detections, Detection{
			Box:     frame.toSource(boxes[i]),
			Score:   scores[i],
			ClassID: classes[i],
		})
	}
	return res, nil
}

// outputLayout validates the tensor shape and returns its channel and
// candidate counts.
func outputLayout(t Tensor) (channels, candidates int, err error) {
	shape := t.Shape
	switch {
	case len(shape) == 3 && shape[0] == 1:
		channels, candidates = shape[1], shape[2]
	case len(shape) == 2:
		channels, candidates = shape[0], shape[1]
	default:
		return 0, 0, &DecodeError{Shape: shape, Reason: "want [1, 4+N, K]"}
	}
	if channels-4 <= 0 {
		return 0, 0, &DecodeError{Shape: shape, Reason: fmt.Sprintf("%d channels leave no class scores", channels)}
	}
	if candidates < 0 {
		return 0, 0, &DecodeError{Shape: shape, Reason: "negative candidate count"}
	}
	if len(t.Data) < channels*candidates {
		return 0, 0, &DecodeError{Shape: shape, Reason: fmt.Sprintf("have %d values, need %d", len(t.Data), channels*candidates)}
	}
	return channels, candidates, nil
}

// toSource maps a model-input box to normalized source coordinates.
func (f Frame) toSource(b geometry.Box) geometry.Box {
	if f.Letterbox != nil {
		lb := f.Letterbox
		return lb.BoxToSource(b).Normalize(float64(lb.SrcWidth), float64(lb.SrcHeight))
	}
	s := float64(f.InputSize)
	return b.Normalize(s, s)
}
