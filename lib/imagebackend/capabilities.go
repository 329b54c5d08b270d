// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package imagebackend

import (
	"fmt"
	"log/slog"
	"sync"
)

// Capabilities resolves backend capabilities from a Registry. Each
// capability is resolved on first use and the result, success or
// failure, is kept for the lifetime of the value. Concurrent first
// calls observe a single resolution.
type Capabilities struct {
	registry *Registry
	logger   *slog.Logger

	factory  cell[Factory]
	protocol cell[Protocol]
	urls     cell[URLResolver]
}

type cell[T any] struct {
	once  sync.Once
	value T
	err   error
}

// NewCapabilities returns a Capabilities backed by registry. A nil
// logger means slog.Default().
func NewCapabilities(registry *Registry, logger *slog.Logger) *Capabilities {
	if logger == nil {
		logger = slog.Default()
	}
	return &Capabilities{registry: registry, logger: logger}
}

// Factory returns the registered image factory.
func (c *Capabilities) Factory() (Factory, error) {
	return resolve(c, &c.factory, FactoryService)
}

// Protocol returns the registered presence protocol.
func (c *Capabilities) Protocol() (Protocol, error) {
	return resolve(c, &c.protocol, ProtocolService)
}

// URLResolver returns the registered URL resolver.
func (c *Capabilities) URLResolver() (URLResolver, error) {
	return resolve(c, &c.urls, URLService)
}

func resolve[T any](c *Capabilities, target *cell[T], name Name) (T, error) {
	target.once.Do(func() {
		target.value, target.err = lookup[T](c.registry, name)
		if target.err != nil {
			c.logger.Error("image backend capability unavailable",
				"capability", string(name),
				"error", target.err,
			)
			return
		}
		c.logger.Debug("image backend capability resolved",
			"capability", string(name),
			"implementation", fmt.Sprintf("%T", target.value),
		)
	})
	return target.value, target.err
}

func lookup[T any](registry *Registry, name Name) (T, error) {
	var zero T
	if registry == nil {
		return zero, fmt.Errorf("imagebackend: resolving %s: %w", name, ErrNoBackend)
	}
	provider, ok := registry.Lookup(name)
	if !ok {
		return zero, fmt.Errorf("imagebackend: resolving %s: %w", name, ErrNoBackend)
	}
	value, err := provider()
	if err != nil {
		return zero, fmt.Errorf("imagebackend: constructing %s: %w", name, err)
	}
	typed, ok := value.(T)
	if !ok || value == nil {
		return zero, fmt.Errorf("imagebackend: %s provider returned %T, which does not implement %T", name, value, (*T)(nil))
	}
	return typed, nil
}
