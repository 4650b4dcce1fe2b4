// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log/slog"

	"github.com/caarlos0/env/v11"
)

// Backend names for the storage engine selection.
const (
	BackendSQL      = "sql"
	BackendDocument = "document"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	ServerHost string `env:"VERSO_SERVER_HOST" envDefault:"localhost"`
	ServerPort int    `env:"VERSO_SERVER_PORT" envDefault:"8080"`
	Env        string `env:"VERSO_ENV" envDefault:"development"`
	LogLevel   string `env:"VERSO_LOG_LEVEL" envDefault:"info"`

	// Backend selects the storage engine: "sql" or "document".
	Backend string `env:"VERSO_BACKEND" envDefault:"sql"`

	// Relational backend. DBPath is used by the sqlite driver; a non-empty
	// MySQLDSN switches the sql backend to MySQL.
	DBPath   string `env:"VERSO_DB_PATH" envDefault:"./data/verso.db"`
	MySQLDSN string `env:"VERSO_MYSQL_DSN"`

	// Document backend (Elasticsearch).
	ESAddresses []string `env:"VERSO_ES_ADDRESSES" envSeparator:"," envDefault:"http://localhost:9200"`
	ESUsername  string   `env:"VERSO_ES_USERNAME"`
	ESPassword  string   `env:"VERSO_ES_PASSWORD"`

	// JWTSecret signs session tokens. When empty, SecretBytes generates a
	// random secret; tokens then do not survive a process restart, so pin
	// the secret in any real deployment.
	JWTSecret string `env:"VERSO_JWT_SECRET"`

	// BlogEnabled gates the blog post routes.
	BlogEnabled bool `env:"VERSO_BLOG_ENABLED" envDefault:"true"`

	// Cache configuration. A non-empty RedisURL switches the byte cache
	// from memory to Redis; CacheTTL is in seconds, CacheMaxSize bounds
	// the memory cache entry count.
	RedisURL     string `env:"VERSO_REDIS_URL"`
	CachePrefix  string `env:"VERSO_CACHE_PREFIX" envDefault:"verso:"`
	CacheTTL     int    `env:"VERSO_CACHE_TTL" envDefault:"300"`
	CacheMaxSize int    `env:"VERSO_CACHE_MAX_SIZE" envDefault:"10000"`

	// RequestTimeout is the per-request budget in seconds; it bounds every
	// backend call through context cancellation.
	RequestTimeout int `env:"VERSO_REQUEST_TIMEOUT" envDefault:"15"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// UseMySQL returns true if the sql backend should use the MySQL driver.
func (c Config) UseMySQL() bool {
	return c.MySQLDSN != ""
}

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.Backend != BackendSQL && cfg.Backend != BackendDocument {
		return nil, fmt.Errorf("VERSO_BACKEND must be %q or %q, got %q",
			BackendSQL, BackendDocument, cfg.Backend)
	}

	return cfg, nil
}

// SecretBytes resolves the token signing secret. When neither an explicit
// value nor the environment provided one, a random secret is generated and
// a warning logged, since every issued token dies with the process.
func (c *Config) SecretBytes() ([]byte, error) {
	if c.JWTSecret != "" {
		return []byte(c.JWTSecret), nil
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return nil, fmt.Errorf("generating token secret: %w", err)
	}
	c.JWTSecret = base64.RawStdEncoding.EncodeToString(raw)

	slog.Warn("no token secret configured; generated a random one " +
		"(tokens will not verify across restarts, set VERSO_JWT_SECRET to pin)")
	return []byte(c.JWTSecret), nil
}
