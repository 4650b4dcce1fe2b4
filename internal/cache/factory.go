// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"fmt"
	"time"
)

// Config selects and tunes the cache backend.
type Config struct {
	// RedisURL selects the Redis backend when non-empty; otherwise the
	// in-memory backend is used.
	RedisURL string

	// Prefix is the Redis key prefix.
	Prefix string

	// DefaultTTL is the default TTL for cache entries.
	DefaultTTL time.Duration

	// MaxSize caps the in-memory entry count (0 = unlimited).
	MaxSize int
}

// New creates a cache from the configuration.
func New(cfg Config) (Cache, error) {
	if cfg.RedisURL != "" {
		c, err := NewRedisCache(RedisOptions{
			URL:        cfg.RedisURL,
			Prefix:     cfg.Prefix,
			DefaultTTL: cfg.DefaultTTL,
		})
		if err != nil {
			return nil, fmt.Errorf("creating redis cache: %w", err)
		}
		return c, nil
	}

	return NewMemoryCache(MemoryOptions{
		DefaultTTL:      cfg.DefaultTTL,
		MaxSize:         cfg.MaxSize,
		CleanupInterval: time.Minute,
	}), nil
}
