package cache

import (
	"fmt"
	"sort"
	"sync"
)

// Region is the type-erased view the registry needs for administration.
type Region interface {
	Name() string
	InvalidateAll()
	Stats() Stats
}

// Registry indexes namespaces by name.
type Registry struct {
	mu      sync.RWMutex
	regions map[string]Region
}

func NewRegistry() *Registry {
	return &Registry{regions: make(map[string]Region)}
}

func (r *Registry) Register(region Region) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.regions[region.Name()]; exists {
		return fmt.Errorf("cache: namespace %q already registered", region.Name())
	}
	r.regions[region.Name()] = region
	return nil
}

func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.regions))
	for name := range r.regions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Stats returns one entry per namespace, ordered by name.
func (r *Registry) Stats() []Stats {
	names := r.Names()

	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := make([]Stats, 0, len(names))
	for _, name := range names {
		stats = append(stats, r.regions[name].Stats())
	}
	return stats
}

// Clear empties the named namespace and reports whether it exists.
func (r *Registry) Clear(name string) bool {
	r.mu.RLock()
	region, ok := r.regions[name]
	r.mu.RUnlock()

	if !ok {
		return false
	}
	region.InvalidateAll()
	return true
}

func (r *Registry) ClearAll() {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, region := range r.regions {
		region.InvalidateAll()
	}
}
