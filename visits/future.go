package visits

import (
	"context"

	"github.com/KamdynS/petclinic-genai/clinic"
)

// Future is the single-resolution result of an asynchronous visit lookup
type Future struct {
	done   chan struct{}
	visits clinic.Visits
	err    error
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

// resolve must be called exactly once
func (f *Future) resolve(v clinic.Visits, err error) {
	f.visits = v
	f.err = err
	close(f.done)
}

// Done is closed once the result is available
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Await blocks until the result is available or ctx is done
func (f *Future) Await(ctx context.Context) (clinic.Visits, error) {
	select {
	case <-f.done:
		return f.visits, f.err
	case <-ctx.Done():
		return clinic.Visits{}, ctx.Err()
	}
}

// Result returns the result without blocking; ok is false while still pending
func (f *Future) Result() (v clinic.Visits, err error, ok bool) {
	select {
	case <-f.done:
		return f.visits, f.err, true
	default:
		return clinic.Visits{}, nil, false
	}
}
