package provider

import (
	"fmt"
	"sort"
)

// Registry manages registered Backend implementations and provides
// lookup by name.
type Registry struct {
	backends []Backend
}

// NewRegistry creates an empty backend registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a Backend implementation to the registry.
// A later registration with the same name replaces the earlier one.
func (r *Registry) Register(b Backend) {
	for i, existing := range r.backends {
		if existing.Name() == b.Name() {
			r.backends[i] = b
			return
		}
	}
	r.backends = append(r.backends, b)
}

// Get looks up a registered backend by its Name().
func (r *Registry) Get(name string) (Backend, error) {
	for _, b := range r.backends {
		if b.Name() == name {
			return b, nil
		}
	}
	return nil, fmt.Errorf("no registered backend with name: %s (available: %v)", name, r.Names())
}

// Names returns the sorted names of all registered backends.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.backends))
	for _, b := range r.backends {
		names = append(names, b.Name())
	}
	sort.Strings(names)
	return names
}
