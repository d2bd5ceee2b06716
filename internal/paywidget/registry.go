package paywidget

import (
	"sync"
	"time"
)

// DefaultIdleTimeout is how long an untouched adapter is kept.
const DefaultIdleTimeout = 2 * time.Hour

type registryEntry struct {
	adapter  *Adapter
	lastUsed time.Time
}

// Registry holds one adapter per page instance. Adapters untouched for the
// idle timeout are dropped on the next GetOrCreate after a sweep interval.
type Registry struct {
	mu        sync.Mutex
	adapters  map[string]*registryEntry
	idle      time.Duration
	now       func() time.Time
	lastSweep time.Time
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithIdleTimeout overrides DefaultIdleTimeout.
func WithIdleTimeout(d time.Duration) RegistryOption {
	return func(r *Registry) {
		if d > 0 {
			r.idle = d
		}
	}
}

// WithClock sets the time source. Tests use it to age entries.
func WithClock(now func() time.Time) RegistryOption {
	return func(r *Registry) {
		if now != nil {
			r.now = now
		}
	}
}

// NewRegistry returns an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		adapters: make(map[string]*registryEntry),
		idle:     DefaultIdleTimeout,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.lastSweep = r.now()
	return r
}

// Key identifies the page instance of a visitor's analysis.
func Key(visitorID, analysisID string) string {
	return visitorID + "|" + analysisID
}

// GetOrCreate returns the adapter for key, building it with build on first
// use.
func (r *Registry) GetOrCreate(key string, build func() *Adapter) *Adapter {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	if now.Sub(r.lastSweep) >= r.idle/4 {
		r.sweepLocked(now)
	}
	if e, ok := r.adapters[key]; ok {
		e.lastUsed = now
		return e.adapter
	}
	a := build()
	r.adapters[key] = &registryEntry{adapter: a, lastUsed: now}
	return a
}

// Get returns the adapter for key, if one exists. It never creates one.
func (r *Registry) Get(key string) (*Adapter, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.adapters[key]
	if !ok {
		return nil, false
	}
	e.lastUsed = r.now()
	return e.adapter, true
}

// Remove drops the adapter for key.
func (r *Registry) Remove(key string) {
	r.mu.Lock()
	delete(r.adapters, key)
	r.mu.Unlock()
}

// Sweep drops adapters idle longer than the timeout and reports how many
// were removed.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sweepLocked(r.now())
}

func (r *Registry) sweepLocked(now time.Time) int {
	removed := 0
	for key, e := range r.adapters {
		if now.Sub(e.lastUsed) > r.idle {
			delete(r.adapters, key)
			removed++
		}
	}
	r.lastSweep = now
	return removed
}

// Len reports how many adapters are held.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.adapters)
}
