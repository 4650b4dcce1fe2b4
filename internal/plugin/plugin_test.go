// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package plugin

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewValidation(t *testing.T) {
	if _, err := New(About{}); err == nil {
		t.Error("New with empty name succeeded, want error")
	}
	if _, err := New(About{Name: "audit"}, WithHook("deploymentFinished", nil)); err == nil {
		t.Error("New with unknown hook succeeded, want error")
	}
	if _, err := New(About{Name: "audit"}, WithHook(HookLoginFailed, nil)); err == nil {
		t.Error("New with nil handler succeeded, want error")
	}

	p, err := New(About{Name: "audit", Version: "1.0"},
		WithHook(HookLoginSucceeded, func(_ context.Context, data any) (any, error) {
			return data, nil
		}),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !p.IsEnabled() {
		t.Error("new plugin is disabled by default")
	}
}

func TestRunLifecycleHookPipesData(t *testing.T) {
	first, err := New(About{Name: "first"},
		WithHook(HookBeforeLoggingIn, func(_ context.Context, data any) (any, error) {
			return data.(int) + 1, nil
		}),
	)
	if err != nil {
		t.Fatal(err)
	}
	second, err := New(About{Name: "second"},
		WithHook(HookBeforeLoggingIn, func(_ context.Context, data any) (any, error) {
			return data.(int) * 10, nil
		}),
	)
	if err != nil {
		t.Fatal(err)
	}

	r := NewRegistry(testLogger())
	r.Register(first)
	r.Register(second)

	got, err := r.RunLifecycleHook(context.Background(), HookBeforeLoggingIn, 1)
	if err != nil {
		t.Fatalf("RunLifecycleHook: %v", err)
	}
	if got != 20 {
		t.Errorf("hook chain result = %v, want 20", got)
	}
}

func TestRunLifecycleHookSkipsDisabled(t *testing.T) {
	called := false
	p, err := New(About{Name: "dormant"}, Disabled(),
		WithHook(HookLoginFailed, func(_ context.Context, data any) (any, error) {
			called = true
			return data, nil
		}),
	)
	if err != nil {
		t.Fatal(err)
	}

	r := NewRegistry(testLogger())
	r.Register(p)

	if _, err := r.RunLifecycleHook(context.Background(), HookLoginFailed, nil); err != nil {
		t.Fatalf("RunLifecycleHook: %v", err)
	}
	if called {
		t.Error("disabled plugin hook was dispatched")
	}
}

func TestRunLifecycleHookStopsOnError(t *testing.T) {
	hookErr := errors.New("refused")
	failing, err := New(About{Name: "gate"},
		WithHook(HookBeforeLoggingIn, func(_ context.Context, _ any) (any, error) {
			return nil, hookErr
		}),
	)
	if err != nil {
		t.Fatal(err)
	}
	reached := false
	after, err := New(About{Name: "after"},
		WithHook(HookBeforeLoggingIn, func(_ context.Context, data any) (any, error) {
			reached = true
			return data, nil
		}),
	)
	if err != nil {
		t.Fatal(err)
	}

	r := NewRegistry(testLogger())
	r.Register(failing)
	r.Register(after)

	if _, err := r.RunLifecycleHook(context.Background(), HookBeforeLoggingIn, nil); !errors.Is(err, hookErr) {
		t.Errorf("RunLifecycleHook error = %v, want %v", err, hookErr)
	}
	if reached {
		t.Error("handler after failing plugin was dispatched")
	}
}
