// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package sqldb is the relational-store adapter. It implements the
// store contract with dynamically built, positionally bound statements
// against either SQLite or MySQL, and translates driver duplicate-entry
// errors into the shared conflict taxonomy.
package sqldb

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"strings"
	"time"

	"github.com/pressly/goose/v3"

	_ "github.com/go-sql-driver/mysql" // MySQL driver for database/sql
	_ "modernc.org/sqlite"             // SQLite driver for database/sql

	"github.com/versocms/verso/internal/model"
	"github.com/versocms/verso/internal/store"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Driver names accepted by Open.
const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

// Options configures the relational store connection.
type Options struct {
	// Driver is DriverSQLite or DriverMySQL.
	Driver string
	// DSN is the sqlite file path or the MySQL DSN (parseTime=true is
	// appended for MySQL if missing).
	DSN string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DefaultOptions returns sensible defaults for an sqlite store.
func DefaultOptions(path string) Options {
	return Options{
		Driver:          DriverSQLite,
		DSN:             path,
		MaxOpenConns:    25,
		MaxIdleConns:    10,
		ConnMaxLifetime: 30 * time.Minute,
	}
}

// Store is the relational implementation of store.Store. It owns the
// connection pool handed to it at construction.
type Store struct {
	db     *sql.DB
	driver string
}

// Open connects, configures the pool and runs pending migrations.
func Open(opts Options) (*Store, error) {
	dsn := opts.DSN
	if opts.Driver == DriverMySQL {
		if !containsParam(dsn, "parseTime") {
			dsn = appendParam(dsn, "parseTime=true")
		}
		// Report matched rows, not changed rows, so a no-op update is
		// distinguishable from a missing record.
		if !containsParam(dsn, "clientFoundRows") {
			dsn = appendParam(dsn, "clientFoundRows=true")
		}
	}

	db, err := sql.Open(opts.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		db.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}

	if opts.Driver == DriverSQLite {
		// WAL for concurrent readers, busy timeout instead of immediate
		// SQLITE_BUSY failures.
		pragmas := []string{
			"PRAGMA journal_mode=WAL",
			"PRAGMA busy_timeout=5000",
			"PRAGMA synchronous=NORMAL",
			"PRAGMA foreign_keys=ON",
		}
		for _, pragma := range pragmas {
			if _, err := db.Exec(pragma); err != nil {
				_ = db.Close()
				return nil, fmt.Errorf("setting pragma %q: %w", pragma, err)
			}
		}
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	if err := Migrate(db, opts.Driver); err != nil {
		_ = db.Close()
		return nil, err
	}

	return New(db, opts.Driver), nil
}

// New wraps an already-open connection pool. Used by tests that prepare
// their own schema.
func New(db *sql.DB, driver string) *Store {
	return &Store{db: db, driver: driver}
}

// Migrate runs all pending database migrations.
func Migrate(db *sql.DB, driver string) error {
	goose.SetBaseFS(migrations)

	dialect := "sqlite3"
	if driver == DriverMySQL {
		dialect = "mysql"
	}
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("setting dialect: %w", err)
	}

	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	return nil
}

// Users returns the user repository.
func (s *Store) Users() store.UserRepository { return &userRepo{db: s.db} }

// Pages returns the page repository.
func (s *Store) Pages() store.ContentRepository[*model.Page] {
	return &pageRepo{db: s.db}
}

// Posts returns the blog post repository.
func (s *Store) Posts() store.ContentRepository[*model.BlogPost] {
	return &postRepo{db: s.db}
}

// Ping verifies the connection.
func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

// Close releases the connection pool.
func (s *Store) Close() error { return s.db.Close() }

func containsParam(dsn, key string) bool {
	return strings.Contains(dsn, key)
}

func appendParam(dsn, param string) string {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + param
}
