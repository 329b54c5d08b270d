// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package imagebackend

import (
	"fmt"
	"sort"
	"sync"
)

// Name is the well-known key a capability is registered under.
type Name string

const (
	FactoryService  Name = "chatimage.factory"
	ProtocolService Name = "chatimage.protocol"
	URLService      Name = "chatimage.url"
)

// Provider constructs a capability. It is called at most once per
// Capabilities, on first use.
type Provider func() (any, error)

// Value returns a Provider that always yields v.
func Value(v any) Provider {
	return func() (any, error) { return v, nil }
}

// Registry maps capability names to providers. It is safe for
// concurrent use.
type Registry struct {
	mu        sync.RWMutex
	providers map[Name]Provider
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{providers: make(map[Name]Provider)}
}

// Provide registers provider under name. Registering a name twice is
// an error: two backends claiming the same capability is a wiring
// mistake, not something to resolve by ordering.
func (r *Registry) Provide(name Name, provider Provider) error {
	if name == "" {
		return fmt.Errorf("imagebackend: empty capability name")
	}
	if provider == nil {
		return fmt.Errorf("imagebackend: nil provider for %s", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.providers[name]; exists {
		return fmt.Errorf("imagebackend: %s is already provided", name)
	}
	r.providers[name] = provider
	return nil
}

// Lookup returns the provider registered under name.
func (r *Registry) Lookup(name Name) (Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	provider, ok := r.providers[name]
	return provider, ok
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []Name {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]Name, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}
