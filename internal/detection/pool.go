package detection

import (
	"fmt"
	"sync"
)

// Float is the element type of pooled buffers.
type Float interface {
	~float32 | ~float64
}

// Pool is a bounded pool of numeric buffers.
//
// At most limit buffers may be checked out at once; Get beyond that fails
// with ErrPoolExhausted instead of growing, which is how a leaked buffer
// surfaces. Returned buffers are kept for reuse.
//
// Pool is safe for concurrent use.
type Pool[T Float] struct {
	mu          sync.Mutex
	limit       int
	outstanding int
	free        [][]T
}

// NewPool creates a pool allowing limit outstanding buffers.
func NewPool[T Float](limit int) *Pool[T] {
	if limit <= 0 {
		limit = 1
	}
	return &Pool[T]{limit: limit}
}

// Get returns a zeroed buffer of length n.
func (p *Pool[T]) Get(n int) ([]T, error) {
	if n < 0 {
		return nil, fmt.Errorf("negative buffer length %d", n)
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.outstanding >= p.limit {
		return nil, fmt.Errorf("%w: %d buffers outstanding", ErrPoolExhausted, p.outstanding)
	}
	p.outstanding++

	for i, b := range p.free {
		if cap(b) >= n {
			p.free = append(p.free[:i], p.free[i+1:]...)
			b = b[:n]
			clear(b)
			return b, nil
		}
	}
	return make([]T, n), nil
}

// Put returns a buffer obtained from Get.
func (p *Pool[T]) Put(b []T) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.outstanding > 0 {
		p.outstanding--
	}
	if len(p.free) < p.limit {
		p.free = append(p.free, b[:0])
	}
}

// Outstanding returns the number of buffers currently checked out.
func (p *Pool[T]) Outstanding() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.outstanding
}

// Scope collects release functions and runs them together.
//
// Every buffer or tensor acquired during one call is registered on the
// call's scope; a deferred Close releases all of them on every exit path.
// A Scope is not safe for concurrent use.
type Scope struct {
	releases []func()
}

// NewScope returns an empty scope.
func NewScope() *Scope { return &Scope{} }

// Defer registers f to run on Close. Nil functions are ignored.
func (s *Scope) Defer(f func()) {
	if f != nil {
		s.releases = append(s.releases, f)
	}
}

// Close runs the registered functions in reverse order. It is safe to call
// more than once.
func (s *Scope) Close() {
	for i := len(s.releases) - 1; i >= 0; i-- {
		s.releases[i]()
	}
	s.releases = nil
}

// Len returns the number of pending releases.
func (s *Scope) Len() int { return len(s.releases) }

// Acquire takes a buffer from p and registers its return on s.
func Acquire[T Float](s *Scope, p *Pool[T], n int) ([]T, error) {
	b, err := p.Get(n)
	if err != nil {
		return nil, err
	}
	s.Defer(func() { p.Put(b) })
	return b, nil
}
