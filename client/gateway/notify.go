package gateway

import (
	"sync"
	"time"
)

// Event is published when the session could not be renewed and the user has to
// sign in again.
type Event struct {
	Status int
	Err    error
	At     time.Time
}

type notifier struct {
	mu   sync.Mutex
	next int
	subs map[int]func(Event)
}

func (n *notifier) subscribe(fn func(Event)) func() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.subs == nil {
		n.subs = make(map[int]func(Event))
	}
	id := n.next
	n.next++
	n.subs[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			n.mu.Lock()
			delete(n.subs, id)
			n.mu.Unlock()
		})
	}
}

// publish calls subscribers outside the lock so they may unsubscribe themselves.
func (n *notifier) publish(e Event) {
	n.mu.Lock()
	fns := make([]func(Event), 0, len(n.subs))
	for _, fn := range n.subs {
		fns = append(fns, fn)
	}
	n.mu.Unlock()

	for _, fn := range fns {
		fn(e)
	}
}
