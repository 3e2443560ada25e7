// Package registry provides namespaced name-to-implementation lookup tables.
//
// A Registry is populated during an initialization phase, frozen, and then only
// read. Duplicate keys are rejected rather than overwritten.
package registry

import (
	"fmt"
	"sort"
	"sync"
)

// Keyed is implemented by entries that carry their own canonical key.
type Keyed interface {
	TypeKey() string
}

// Registry maps string keys to implementations of T within one namespace
type Registry[T any] struct {
	namespace string

	mu      sync.RWMutex
	entries map[string]T
	frozen  bool
}

// New creates an empty registry for the given namespace (e.g. "dataset_type").
func New[T any](namespace string) *Registry[T] {
	return &Registry[T]{
		namespace: namespace,
		entries:   make(map[string]T),
	}
}

// Namespace returns the registry's namespace name
func (r *Registry[T]) Namespace() string {
	return r.namespace
}

// Register associates impl with key.
func (r *Registry[T]) Register(key string, impl T) error {
	if key == "" {
		return fmt.Errorf("cannot register %s: key is empty", r.namespace)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return &FrozenError{Namespace: r.namespace, Key: key}
	}
	if _, exists := r.entries[key]; exists {
		return &DuplicateKeyError{Namespace: r.namespace, Key: key}
	}
	r.entries[key] = impl
	return nil
}

// RegisterTyped registers impl under the key it declares through Keyed.
func (r *Registry[T]) RegisterTyped(impl T) error {
	keyed, ok := any(impl).(Keyed)
	if !ok {
		return fmt.Errorf("cannot register %s entry of type %T: no key given and it does not declare one", r.namespace, impl)
	}
	return r.Register(keyed.TypeKey(), impl)
}

// MustRegister is Register that panics on error. Only use it during initialization.
func (r *Registry[T]) MustRegister(key string, impl T) {
	if err := r.Register(key, impl); err != nil {
		panic(err)
	}
}

// Get returns the implementation registered under key.
func (r *Registry[T]) Get(key string) (T, error) {
	r.mu.RLock()
	impl, ok := r.entries[key]
	r.mu.RUnlock()

	if !ok {
		var zero T
		return zero, &UnknownTypeError{Namespace: r.namespace, Key: key, Known: r.Keys()}
	}
	return impl, nil
}

// Has reports whether key is registered
func (r *Registry[T]) Has(key string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[key]
	return ok
}

// Keys returns all registered keys in sorted order
func (r *Registry[T]) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]string, 0, len(r.entries))
	for key := range r.entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of registered entries
func (r *Registry[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Freeze ends the initialization phase; later registrations fail with FrozenError.
func (r *Registry[T]) Freeze() {
	r.mu.Lock()
	r.frozen = true
	r.mu.Unlock()
}

// Frozen reports whether Freeze has been called
func (r *Registry[T]) Frozen() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.frozen
}
