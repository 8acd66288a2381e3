package gateway

import (
	"context"
	"fmt"
	"sync"
)

// call is one execution of a shared operation. err is written before done is closed.
type call struct {
	done    chan struct{}
	err     error
	waiters int
}

// flight runs at most one operation at a time. Callers that arrive while an
// operation is running attach to it and observe the same outcome.
type flight struct {
	mu   sync.Mutex
	call *call
}

// do joins the running call or starts a new one. The operation itself runs on a
// context detached from ctx, so a caller that gives up does not fail the others.
func (f *flight) do(ctx context.Context, fn func(context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f.mu.Lock()
	c := f.call
	if c == nil {
		c = &call{done: make(chan struct{})}
		f.call = c
		go f.run(context.WithoutCancel(ctx), c, fn)
	}
	c.waiters++
	f.mu.Unlock()

	select {
	case <-c.done:
		return c.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// run executes fn; the starter of a call is the only one that clears it. A
// panic in fn becomes the call's error so waiters are always released.
func (f *flight) run(ctx context.Context, c *call, fn func(context.Context) error) {
	defer func() {
		if r := recover(); r != nil {
			c.err = fmt.Errorf("gateway: shared call panicked: %v", r)
		}
		f.mu.Lock()
		if f.call == c {
			f.call = nil
		}
		f.mu.Unlock()
		close(c.done)
	}()
	c.err = fn(ctx)
}

// pending reports whether a call is running and how many callers joined it.
func (f *flight) pending() (bool, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.call == nil {
		return false, 0
	}
	return true, f.call.waiters
}

// reset detaches the running call. Its waiters still receive its result, new
// callers start a fresh one.
func (f *flight) reset() {
	f.mu.Lock()
	f.call = nil
	f.mu.Unlock()
}
