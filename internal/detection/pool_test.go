package detection

import (
	"errors"
	"testing"
)

func TestPool_Limit(t *testing.T) {
	p := NewPool[float32](2)
	a, err := p.Get(4)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := p.Get(4); err != nil {
		t.Fatal(err)
	}
	if _, err := p.Get(4); !errors.Is(err, ErrPoolExhausted) {
		t.Errorf("third Get: got %v, want ErrPoolExhausted", err)
	}
	p.Put(a)
	if p.Outstanding() != 1 {
		t.Errorf("outstanding: got %d, want 1", p.Outstanding())
	}
}

func TestPool_ReuseIsZeroed(t *testing.T) {
	p := NewPool[float64](1)
	b, _ := p.Get(3)
	b[0], b[1], b[2] = 1, 2, 3
	p.Put(b)

	again, err := p.Get(2)
	if err != nil {
		t.Fatal(err)
	}
	if len(again) != 2 || again[0] != 0 || again[1] != 0 {
		t.Errorf("reused buffer: got %v, want [0 0]", again)
	}
}

func TestScope_ReleasesInReverse(t *testing.T) {
	var order []int
	s := NewScope()
	s.Defer(func() { order = append(order, 1) })
	s.Defer(nil)
	s.Defer(func() { order = append(order, 2) })
	if s.Len() != 2 {
		t.Errorf("pending: got %d, want 2", s.Len())
	}
	s.Close()
	s.Close()
	if len(order) != 2 || order[0] != 2 || order[1] != 1 {
		t.Errorf("release order: got %v, want [2 1]", order)
	}
}

func TestAcquire(t *testing.T) {
	p := NewPool[float64](4)
	func() {
		s := NewScope()
		defer s.Close()
		for i := 0; i < 3; i++ {
			if _, err := Acquire(s, p, 8); err != nil {
				t.Fatal(err)
			}
		}
		if p.Outstanding() != 3 {
			t.Errorf("outstanding inside scope: got %d, want 3", p.Outstanding())
		}
	}()
	if p.Outstanding() != 0 {
		t.Errorf("outstanding after scope: got %d, want 0", p.Outstanding())
	}
}

func TestTensor_Release(t *testing.T) {
	released := 0
	tn := NewTensor([]int{1, 2, 3}, make([]float32, 6)).WithRelease(func() { released++ })
	if tn.Elements() != 6 {
		t.Errorf("elements: got %d, want 6", tn.Elements())
	}
	tn.Release()
	if released != 1 {
		t.Errorf("release calls: got %d, want 1", released)
	}
	NewTensor(nil, nil).Release()
}
