package backend

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Registry errors.
var (
	// ErrBackendExists is returned when registering a duplicate backend.
	ErrBackendExists = errors.New("backend already registered")

	// ErrFactoryNotFound is returned by Create for an unknown kind.
	ErrFactoryNotFound = errors.New("backend factory not found")
)

// Registry manages backend instances keyed by namespace name.
type Registry struct {
	mu        sync.RWMutex
	backends  map[string]Backend
	factories map[string]Factory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		backends:  make(map[string]Backend),
		factories: make(map[string]Factory),
	}
}

// RegisterFactory installs the factory used by Create for kind. Empty kinds
// and nil factories are ignored.
func (r *Registry) RegisterFactory(kind string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if kind == "" || factory == nil {
		return
	}
	r.factories[kind] = factory
}

// Create builds an unregistered backend for name using the factory of kind.
func (r *Registry) Create(kind, name string) (Backend, error) {
	r.mu.RLock()
	factory, ok := r.factories[kind]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrFactoryNotFound, kind)
	}
	return factory(name)
}

// Register makes b serve its namespace. A namespace has at most one backend.
func (r *Registry) Register(b Backend) error {
	if b == nil {
		return errors.New("register: nil backend")
	}
	name := b.Name()
	if name == "" {
		return errors.New("register: backend has no namespace name")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.backends[name]; exists {
		return fmt.Errorf("%w: %s", ErrBackendExists, name)
	}
	r.backends[name] = b
	return nil
}

// Get returns the backend serving namespace name.
func (r *Registry) Get(name string) (Backend, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.backends[name]
	return b, ok
}

// List returns all backends sorted by name.
func (r *Registry) List() []Backend {
	r.mu.RLock()
	out := make([]Backend, 0, len(r.backends))
	for _, b := range r.backends {
		out = append(out, b)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// ListEnabled is List without disabled backends.
func (r *Registry) ListEnabled() []Backend {
	all := r.List()
	out := make([]Backend, 0, len(all))
	for _, b := range all {
		if b.Enabled() {
			out = append(out, b)
		}
	}
	return out
}

// Names returns the served namespace names, sorted.
func (r *Registry) Names() []string {
	all := r.List()
	out := make([]string, 0, len(all))
	for _, b := range all {
		out = append(out, b.Name())
	}
	return out
}

// StopAll stops all backends, returning the first error.
func (r *Registry) StopAll() error {
	var first error
	for _, b := range r.List() {
		if err := b.Stop(); err != nil && first == nil {
			first = fmt.Errorf("stop %s: %w", b.Name(), err)
		}
	}
	return first
}
