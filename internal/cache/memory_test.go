// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newTestCache(t *testing.T) *MemoryCache {
	t.Helper()
	c := NewMemoryCache(MemoryOptions{DefaultTTL: time.Minute})
	t.Cleanup(func() { c.Close() })
	return c
}

func TestMemoryCacheSetGet(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	if err := c.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := c.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "v" {
		t.Errorf("Get = %q, want %q", got, "v")
	}
}

func TestMemoryCacheMiss(t *testing.T) {
	c := newTestCache(t)

	_, err := c.Get(context.Background(), "absent")
	if !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Get error = %v, want ErrCacheMiss", err)
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	if err := c.Set(ctx, "k", []byte("v"), time.Nanosecond); err != nil {
		t.Fatalf("Set: %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	if _, err := c.Get(ctx, "k"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Get after expiry = %v, want ErrCacheMiss", err)
	}
}

func TestMemoryCacheDeleteByPrefix(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	for _, k := range []string{"page:home", "page:about", "post:hello"} {
		if err := c.Set(ctx, k, []byte("x"), 0); err != nil {
			t.Fatalf("Set(%q): %v", k, err)
		}
	}
	if err := c.DeleteByPrefix(ctx, "page:"); err != nil {
		t.Fatalf("DeleteByPrefix: %v", err)
	}

	if _, err := c.Get(ctx, "page:home"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("page:home survived prefix delete")
	}
	if _, err := c.Get(ctx, "post:hello"); err != nil {
		t.Errorf("post:hello removed by unrelated prefix: %v", err)
	}
}

func TestMemoryCacheGetCopies(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	if err := c.Set(ctx, "k", []byte("abc"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, _ := c.Get(ctx, "k")
	got[0] = 'z'

	again, _ := c.Get(ctx, "k")
	if string(again) != "abc" {
		t.Errorf("cached value mutated through returned slice: %q", again)
	}
}

func TestMemoryCacheClosed(t *testing.T) {
	c := NewMemoryCache(MemoryOptions{DefaultTTL: time.Minute})
	c.Close()

	if err := c.Set(context.Background(), "k", nil, 0); !errors.Is(err, ErrCacheClosed) {
		t.Errorf("Set after Close = %v, want ErrCacheClosed", err)
	}
}
