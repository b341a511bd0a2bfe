/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"fmt"
	"sort"
	"sync"
)

// Registry holds at most one live binding per entity name. Bindings are built lazily on first
// request and never replaced afterwards.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*entry
}

type entry struct {
	ready chan struct{}
	value any
	err   error
}

var defaultRegistry = New()

// New creates an empty Registry.
func New() *Registry {
	return &Registry{entries: make(map[string]*entry)}
}

// Default returns the process-wide registry.
func Default() *Registry {
	return defaultRegistry
}

// GetOrCreate returns the binding registered under name, calling build to construct it when
// none exists. Concurrent callers for the same name share a single build and observe the same
// value. A failed build leaves the name unregistered so that a later call can retry.
func (r *Registry) GetOrCreate(name string, build func() (any, error)) (any, error) {
	if name == "" {
		return nil, fmt.Errorf("model registry: empty name")
	}

	r.mu.Lock()
	e, ok := r.entries[name]
	if !ok {
		e = &entry{ready: make(chan struct{})}
		r.entries[name] = e
	}
	r.mu.Unlock()

	if ok {
		<-e.ready
		return e.value, e.err
	}

	completed := false
	defer func() {
		if !completed {
			// build panicked; waiters see an error and the name stays free.
			e.value, e.err = nil, fmt.Errorf("model registry: build of %s panicked", name)
		}
		if e.err != nil {
			r.mu.Lock()
			if r.entries[name] == e {
				delete(r.entries, name)
			}
			r.mu.Unlock()
		}
		close(e.ready)
	}()

	e.value, e.err = build()
	completed = true
	return e.value, e.err
}

// Lookup returns the binding registered under name, if it was built successfully.
func (r *Registry) Lookup(name string) (any, bool) {
	r.mu.Lock()
	e, ok := r.entries[name]
	r.mu.Unlock()
	if !ok {
		return nil, false
	}
	// Wait for an in-flight build.
	<-e.ready
	if e.err != nil {
		return nil, false
	}
	return e.value, true
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Reset drops every binding. It exists for test isolation.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = make(map[string]*entry)
}

// GetOrCreateModel is the typed form of GetOrCreate. It fails if name is already bound to a
// value of a different type.
func GetOrCreateModel[M any](r *Registry, name string, build func() (M, error)) (M, error) {
	var zero M
	v, err := r.GetOrCreate(name, func() (any, error) {
		return build()
	})
	if err != nil {
		return zero, err
	}
	m, ok := v.(M)
	if !ok {
		return zero, fmt.Errorf("model registry: %q is bound to %T, not %T", name, v, zero)
	}
	return m, nil
}
