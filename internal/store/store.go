// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package store defines the storage contract shared by every backend: the
// repository interfaces, patch types, pagination rules and the closed error
// taxonomy. Concrete adapters live in store/es (document store) and
// store/sqldb (relational store); controllers only ever see this package's
// types, so both backends produce identical API behavior.
package store

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/versocms/verso/internal/model"
)

// PerPage is the fixed page size for every list operation.
const PerPage = 30

// Pagination is a 1-indexed page selector.
type Pagination struct {
	Page int
}

// Offset returns the number of records to skip.
func (p Pagination) Offset() int {
	return (p.Page - 1) * PerPage
}

// PageOf parses a raw page value tolerantly: anything that is not a
// positive integer silently becomes page 1.
func PageOf(raw string) Pagination {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		n = 1
	}
	return Pagination{Page: n}
}

// MutationResult is the backend-neutral outcome of a write. Adapters map
// their driver's native result into this shape so controllers never depend
// on a specific backend.
type MutationResult struct {
	Success    bool
	Affected   int64
	InsertedID string
}

// ContentFilter narrows list queries.
type ContentFilter struct {
	// VisibleOnly restricts results to publicly visible records
	// (enabled pages, published public posts).
	VisibleOnly bool
	// DuePublish selects records whose publish_at has passed; used by the
	// scheduler.
	DuePublish bool
}

// ContentPatch carries the mutable fields of a page or blog post. Nil
// pointers mean "leave unchanged"; adapters must never overwrite an unset
// field.
type ContentPatch struct {
	Name      *string
	Slug      *string
	Enabled   *bool // pages
	Draft     *bool // blog posts
	Public    *bool // blog posts
	Content   *[]json.RawMessage
	Meta      *map[string]any
	PublishAt *time.Time
	// ClearPublishAt nulls publish_at; set by the scheduler once due.
	ClearPublishAt bool
}

// UserPatch carries the mutable fields of a user record.
type UserPatch struct {
	Username     *string
	Email        *string
	PasswordHash *string
	Role         *string
	Enabled      *bool
	Metadata     *map[string]any
}

// ContentRepository is the uniform contract both backends implement for
// pages and blog posts. T is *model.Page or *model.BlogPost.
type ContentRepository[T any] interface {
	// FindBySlugOrID resolves key first as a slug, then as a record ID.
	FindBySlugOrID(ctx context.Context, key string) (T, error)
	FindMany(ctx context.Context, f ContentFilter, p Pagination) ([]T, error)
	Insert(ctx context.Context, rec T) (MutationResult, error)
	Update(ctx context.Context, id string, patch ContentPatch) (MutationResult, error)
	Delete(ctx context.Context, id string) (MutationResult, error)
}

// UserRepository is the uniform contract both backends implement for users.
type UserRepository interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	FindMany(ctx context.Context, p Pagination) ([]*model.User, error)
	Insert(ctx context.Context, u *model.User) (MutationResult, error)
	Update(ctx context.Context, id string, patch UserPatch) (MutationResult, error)
	Delete(ctx context.Context, id string) (MutationResult, error)
}

// Store bundles the per-resource repositories of one backend. Switching
// backend means switching the Store implementation, nothing else.
type Store interface {
	Users() UserRepository
	Pages() ContentRepository[*model.Page]
	Posts() ContentRepository[*model.BlogPost]
	Ping(ctx context.Context) error
	Close() error
}
