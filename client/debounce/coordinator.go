// Package debounce reconciles a group of rapidly edited inputs with values that
// are reset from outside (a "clear filters" action, back navigation).
package debounce

import (
	"sync"
	"time"
)

// DefaultDelay is the quiet period before local edits are sent outward.
const DefaultDelay = 400 * time.Millisecond

// Coordinator debounces one field group. It compares whole snapshots and keeps
// lastAcknowledged, the last value sent outward or received from outside, to
// tell an echo of its own send apart from a genuine external change. A single
// timer serves the group, so two fields edited in the same window cannot lose
// each other's update.
type Coordinator[T comparable] struct {
	mu       sync.Mutex
	delay    time.Duration
	local    T
	external T
	lastAck  T
	timer    *time.Timer
	gen      uint64
	pending  bool

	send      func(T)
	onAdopt   func(T)
	normalize func(T) T
}

// New starts in sync with initial. send is called, outside any lock, with the
// local value once it has been stable for delay.
func New[T comparable](initial T, delay time.Duration, send func(T)) *Coordinator[T] {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Coordinator[T]{
		delay:    delay,
		local:    initial,
		external: initial,
		lastAck:  initial,
		send:     send,
	}
}

// OnAdopt registers fn to be told when an external change replaced local state,
// so the caller can re-render its inputs.
func (c *Coordinator[T]) OnAdopt(fn func(T)) {
	c.mu.Lock()
	c.onAdopt = fn
	c.mu.Unlock()
}

// Normalize sets the canonical form the outside stores a value in, for example
// with surrounding whitespace trimmed. Local values are compared and sent in that
// form, while the inputs keep showing exactly what was typed.
func (c *Coordinator[T]) Normalize(fn func(T) T) {
	c.mu.Lock()
	c.normalize = fn
	c.mu.Unlock()
}

// Sync reports the current external value. A value other than lastAcknowledged
// is an external change: any pending send is dropped and the value is adopted.
// A value equal to lastAcknowledged is the echo of a send and changes nothing.
func (c *Coordinator[T]) Sync(external T) {
	c.mu.Lock()
	c.external = external
	if external == c.lastAck {
		c.mu.Unlock()
		return
	}
	c.cancelLocked()
	c.local = external
	c.lastAck = external
	adopt := c.onAdopt
	c.mu.Unlock()

	if adopt != nil {
		adopt(external)
	}
}

// Edit records a local change and (re)starts the timer. An edit back to the
// current external value cancels the pending send instead.
func (c *Coordinator[T]) Edit(local T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.local = local
	c.cancelLocked()
	if c.canonical(local) == c.external {
		return
	}
	c.pending = true
	gen := c.gen
	c.timer = time.AfterFunc(c.delay, func() { c.fire(gen) })
}

// Flush sends a pending edit now, e.g. when the user presses enter.
func (c *Coordinator[T]) Flush() {
	c.mu.Lock()
	if !c.pending {
		c.mu.Unlock()
		return
	}
	c.cancelLocked()
	v := c.acknowledgeLocked()
	c.mu.Unlock()
	c.send(v)
}

// Stop drops any pending send.
func (c *Coordinator[T]) Stop() {
	c.mu.Lock()
	c.cancelLocked()
	c.mu.Unlock()
}

// Local returns the value the inputs should display.
func (c *Coordinator[T]) Local() T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.local
}

// Acknowledged returns the last value sent outward or adopted from outside.
func (c *Coordinator[T]) Acknowledged() T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastAck
}

// Pending reports whether a send is scheduled.
func (c *Coordinator[T]) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}

func (c *Coordinator[T]) fire(gen uint64) {
	c.mu.Lock()
	if gen != c.gen || !c.pending {
		c.mu.Unlock()
		return
	}
	c.timer = nil
	v := c.acknowledgeLocked()
	c.mu.Unlock()
	c.send(v)
}

func (c *Coordinator[T]) acknowledgeLocked() T {
	c.pending = false
	c.lastAck = c.canonical(c.local)
	return c.lastAck
}

func (c *Coordinator[T]) canonical(v T) T {
	if c.normalize == nil {
		return v
	}
	return c.normalize(v)
}

// cancelLocked stops the timer. Bumping gen makes a callback that already
// started running return without sending.
func (c *Coordinator[T]) cancelLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.pending = false
	c.gen++
}
