// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package cache provides the byte-value cache used for public content
// lookups. Implementations must be safe for concurrent use.
package cache

import (
	"context"
	"time"
)

// Cache is the interface shared by the memory and Redis backends.
// Values are []byte so rendered JSON can be stored without re-encoding.
type Cache interface {
	// Get returns the value for key, or ErrCacheMiss if absent or expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key. A zero ttl uses the backend default.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// DeleteByPrefix removes every key starting with prefix.
	DeleteByPrefix(ctx context.Context, prefix string) error

	// Clear removes all entries.
	Clear(ctx context.Context) error

	// Close releases any resources held by the cache.
	Close() error
}

// Error is the error type for cache operations.
type Error string

func (e Error) Error() string { return string(e) }

const (
	// ErrCacheMiss indicates the key was not found or has expired.
	ErrCacheMiss Error = "cache miss"

	// ErrCacheClosed indicates the cache has been closed.
	ErrCacheClosed Error = "cache closed"
)
