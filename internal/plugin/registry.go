// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package plugin

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Registry dispatches lifecycle hooks to registered plugins.
type Registry struct {
	logger  *slog.Logger
	mu      sync.RWMutex
	plugins []*Plugin
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{logger: logger}
}

// Register adds a plugin. Registration order is dispatch order.
func (r *Registry) Register(p *Plugin) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.plugins = append(r.plugins, p)

	r.logger.Debug("plugin registered",
		"plugin", p.about.Name,
		"version", p.about.Version,
		"enabled", p.enabled,
	)
}

// RunLifecycleHook pipes data through every enabled plugin's handler for
// the named hook. A handler error stops dispatch and is returned.
func (r *Registry) RunLifecycleHook(ctx context.Context, name string, data any) (any, error) {
	r.mu.RLock()
	plugins := r.plugins
	r.mu.RUnlock()

	current := data
	for _, p := range plugins {
		if !p.IsEnabled() {
			continue
		}
		fn := p.hook(name)
		if fn == nil {
			continue
		}

		result, err := fn(ctx, current)
		if err != nil {
			r.logger.Error("plugin hook failed",
				"hook", name,
				"plugin", p.about.Name,
				"error", err,
			)
			return nil, fmt.Errorf("hook %s plugin %s: %w", name, p.about.Name, err)
		}
		current = result
	}
	return current, nil
}

// Notify runs a hook where handlers cannot alter the payload and errors
// are logged rather than propagated. Used for after-the-fact events.
func (r *Registry) Notify(ctx context.Context, name string, data any) {
	if _, err := r.RunLifecycleHook(ctx, name, data); err != nil {
		r.logger.Warn("plugin notification failed", "hook", name, "error", err)
	}
}

// Len returns the number of registered plugins.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.plugins)
}
