package engine

import (
	"fmt"
	"sort"
	"sync"
)

// Registry maps runtime names to Runtime implementations.
type Registry struct {
	mu       sync.RWMutex
	runtimes map[string]Runtime
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		runtimes: make(map[string]Runtime),
	}
}

// Register adds a runtime, replacing any runtime with the same name.
func (r *Registry) Register(rt Runtime) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runtimes[rt.Name()] = rt
}

// Get returns the runtime registered under name.
func (r *Registry) Get(name string) (Runtime, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rt, ok := r.runtimes[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRuntime, name)
	}
	return rt, nil
}

// Names returns the registered runtime names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.runtimes))
	for name := range r.runtimes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var defaultRegistry = NewRegistry()

// Register adds a runtime to the default registry.
// Runtime packages call it from their init function.
func Register(rt Runtime) {
	defaultRegistry.Register(rt)
}

// GetRuntime returns a runtime from the default registry.
func GetRuntime(name string) (Runtime, error) {
	return defaultRegistry.Get(name)
}

// RuntimeNames lists the runtimes in the default registry.
func RuntimeNames() []string {
	return defaultRegistry.Names()
}
