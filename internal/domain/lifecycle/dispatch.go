package lifecycle

import (
	"context"
	"sync"
)

// Dispatcher tracks operations started with Go so callers can join them
type Dispatcher struct {
	wg sync.WaitGroup
}

// NewDispatcher creates an empty dispatcher
func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

// Wait blocks until every operation started through d has completed and its
// callback has returned
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Go runs op in the background. The result goes to done when it is non-nil
// and is discarded otherwise. The store is updated either way, since every
// operation reduces its own outcome. A nil dispatcher runs untracked.
func Go[T any](d *Dispatcher, ctx context.Context, op func(context.Context) (T, error), done func(T, error)) {
	ctx = context.WithoutCancel(ctx)
	if d != nil {
		d.wg.Add(1)
	}
	go func() {
		if d != nil {
			defer d.wg.Done()
		}
		v, err := op(ctx)
		if done != nil {
			done(v, err)
		}
	}()
}
