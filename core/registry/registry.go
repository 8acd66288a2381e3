// Package registry is a process-wide key/value store for the extension points
// (commands, cron jobs, API modules). A key can be locked once its consumer has
// read it, after which writers panic.
package registry

import "sync"

type Registry struct {
	mu     sync.RWMutex
	values map[string]any
	locked map[string]bool
}

// GlobalRegistry is shared by init()-time registration across packages.
var GlobalRegistry = New()

func New() *Registry {
	return &Registry{values: make(map[string]any), locked: make(map[string]bool)}
}

func (r *Registry) GetGlobal(key string) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.values[key]
	return v, ok
}

// SetGlobal stores v under key. Panics when key is locked.
func (r *Registry) SetGlobal(key string, v any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.locked[key] {
		panic("registry: " + key + " is locked")
	}
	r.values[key] = v
}

func (r *Registry) Lock(key string) {
	r.mu.Lock()
	r.locked[key] = true
	r.mu.Unlock()
}

func (r *Registry) IsLocked(key string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.locked[key]
}

// UnlockForTesting reopens key for writes.
func (r *Registry) UnlockForTesting(key string) {
	r.mu.Lock()
	delete(r.locked, key)
	r.mu.Unlock()
}
