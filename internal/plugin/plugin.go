// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package plugin holds the lifecycle-hook collaborators the core calls
// around authentication-sensitive operations. Plugin values can only be
// built through the validating factory, so an invalid plugin never
// exists at runtime.
package plugin

import (
	"context"
	"fmt"
)

// Lifecycle hook names the core dispatches.
const (
	HookBeforeLoggingIn = "beforeLoggingIn"
	HookLoginSucceeded  = "loginSucceeded"
	HookLoginFailed     = "loginFailed"
)

// knownHooks is the closed set of dispatchable hook names.
var knownHooks = map[string]bool{
	HookBeforeLoggingIn: true,
	HookLoginSucceeded:  true,
	HookLoginFailed:     true,
}

// HookFunc receives the event payload and returns it, possibly modified.
// An error aborts the remaining handlers for the event.
type HookFunc func(ctx context.Context, data any) (any, error)

// About describes a plugin.
type About struct {
	Name        string
	Version     string
	Description string
}

// Plugin is a validated lifecycle-hook collaborator. The zero value is
// not usable; construct with New.
type Plugin struct {
	about   About
	enabled bool
	config  map[string]any
	hooks   map[string]HookFunc
}

// Option configures a plugin under construction.
type Option func(*Plugin) error

// WithConfig attaches free-form configuration values.
func WithConfig(config map[string]any) Option {
	return func(p *Plugin) error {
		p.config = config
		return nil
	}
}

// WithHook registers a handler for a lifecycle hook. Unknown hook names
// are rejected at construction time.
func WithHook(name string, fn HookFunc) Option {
	return func(p *Plugin) error {
		if !knownHooks[name] {
			return fmt.Errorf("unknown hook %q", name)
		}
		if fn == nil {
			return fmt.Errorf("hook %q has nil handler", name)
		}
		p.hooks[name] = fn
		return nil
	}
}

// Disabled constructs the plugin in a disabled state; its hooks are
// registered but never dispatched.
func Disabled() Option {
	return func(p *Plugin) error {
		p.enabled = false
		return nil
	}
}

// New builds a validated plugin.
func New(about About, opts ...Option) (*Plugin, error) {
	if about.Name == "" {
		return nil, fmt.Errorf("plugin name is required")
	}
	p := &Plugin{
		about:   about,
		enabled: true,
		hooks:   make(map[string]HookFunc),
	}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, fmt.Errorf("plugin %q: %w", about.Name, err)
		}
	}
	return p, nil
}

// About returns the plugin's metadata.
func (p *Plugin) About() About { return p.about }

// IsEnabled reports whether the plugin's hooks should be dispatched.
func (p *Plugin) IsEnabled() bool { return p.enabled }

// Config returns a configuration value and whether it is set.
func (p *Plugin) Config(key string) (any, bool) {
	v, ok := p.config[key]
	return v, ok
}

// hook returns the handler for name, or nil.
func (p *Plugin) hook(name string) HookFunc { return p.hooks[name] }
