package engine

import (
	"sync"
	"sync/atomic"
)

// Future is the placeholder for an outcome that may not have been produced
// yet. It is settled exactly once, either with a value (Resolve) or with an
// error (Reject); later settle attempts are no-ops.
//
// A Future is returned by Engine.Request for the caller to await, and may
// also be returned by a handler as its result to defer the reply until the
// work completes.
type Future struct {
	done    chan struct{}
	settled atomic.Bool
	mu      sync.Mutex
	value   any
	err     error
}

// NewFuture creates a new unsettled Future.
func NewFuture() *Future {
	return &Future{done: make(chan struct{})}
}

// Resolve settles the future with a value. It reports whether this call was
// the one that settled it.
func (f *Future) Resolve(value any) bool {
	return f.settle(value, nil)
}

// Reject settles the future with an error. It reports whether this call was
// the one that settled it.
func (f *Future) Reject(err error) bool {
	return f.settle(nil, err)
}

func (f *Future) settle(value any, err error) bool {
	if !f.settled.CompareAndSwap(false, true) {
		return false
	}
	f.mu.Lock()
	f.value = value
	f.err = err
	f.mu.Unlock()
	close(f.done)
	return true
}

// Done returns a channel that is closed once the future settles.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Settled reports whether the future has already been settled.
func (f *Future) Settled() bool {
	return f.settled.Load()
}

// Result blocks until the future settles and returns its outcome.
func (f *Future) Result() (any, error) {
	<-f.done
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.value, f.err
}
