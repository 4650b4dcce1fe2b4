// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/versocms/verso/internal/auth"
	"github.com/versocms/verso/internal/cache"
	"github.com/versocms/verso/internal/model"
	"github.com/versocms/verso/internal/store"
)

// ContentInput carries the fields of a page or blog post request. The
// type-sensitive fields stay raw JSON so validation can distinguish a
// wrong type from a wrong value; absent fields have zero length.
type ContentInput struct {
	ID        string          `json:"id"`
	Name      json.RawMessage `json:"name"`
	Slug      json.RawMessage `json:"slug"`
	Enabled   json.RawMessage `json:"enabled"`
	Draft     json.RawMessage `json:"draft"`
	Public    json.RawMessage `json:"public"`
	Content   json.RawMessage `json:"content"`
	Meta      map[string]any  `json:"meta"`
	PublishAt *time.Time      `json:"publishAt"`
}

// contentRecord is what the shared controller core needs from a page or
// blog post value.
type contentRecord interface {
	RecordID() string
	RecordSlug() string
	VisibleTo(c *model.Claim) bool
}

// contentCore is the controller pipeline shared by pages and blog posts:
// authorize, persist, keep the public-lookup cache coherent. Validation
// and record construction differ per kind and live in the wrapping
// service.
type contentCore[T contentRecord] struct {
	repo        store.ContentRepository[T]
	cache       cache.Cache
	cachePrefix string
	resource    auth.Resource
	notFoundMsg string
	logger      *slog.Logger
}

func (c *contentCore[T]) authorize(claim *model.Claim, action auth.Action) error {
	if !auth.IsAllowed(claim, c.resource, action) {
		return store.Authorization(msgNotAllowed)
	}
	return nil
}

func (c *contentCore[T]) invalidate(ctx context.Context, slugs ...string) {
	for _, slug := range slugs {
		if slug == "" {
			continue
		}
		if err := c.cache.Delete(ctx, c.cachePrefix+slug); err != nil && !errors.Is(err, cache.ErrCacheClosed) {
			c.logger.Warn("cache invalidation failed", "key", c.cachePrefix+slug, "error", err)
		}
	}
}

func (c *contentCore[T]) getOne(ctx context.Context, claim *model.Claim, key string) (T, error) {
	var zero T
	rec, err := c.repo.FindBySlugOrID(ctx, key)
	if err != nil {
		return zero, err
	}
	// Hidden records read as absent to callers without the role to see
	// them; existence is not disclosed.
	if !rec.VisibleTo(claim) {
		return zero, store.NotFound(c.notFoundMsg)
	}
	return rec, nil
}

func (c *contentCore[T]) getMany(ctx context.Context, claim *model.Claim, p store.Pagination) ([]T, error) {
	filter := store.ContentFilter{VisibleOnly: !claim.IsContentEditor()}
	return c.repo.FindMany(ctx, filter, p)
}

func (c *contentCore[T]) create(ctx context.Context, rec T) (T, error) {
	var zero T
	if _, err := c.repo.Insert(ctx, rec); err != nil {
		return zero, err
	}
	c.invalidate(ctx, rec.RecordSlug())
	return rec, nil
}

func (c *contentCore[T]) update(ctx context.Context, id string, patch store.ContentPatch) (T, error) {
	var zero T
	old, err := c.repo.FindBySlugOrID(ctx, id)
	if err != nil {
		return zero, err
	}
	if _, err := c.repo.Update(ctx, old.RecordID(), patch); err != nil {
		return zero, err
	}
	updated, err := c.repo.FindBySlugOrID(ctx, old.RecordID())
	if err != nil {
		return zero, err
	}
	c.invalidate(ctx, old.RecordSlug(), updated.RecordSlug())
	return updated, nil
}

func (c *contentCore[T]) delete(ctx context.Context, id string) (store.MutationResult, error) {
	old, err := c.repo.FindBySlugOrID(ctx, id)
	if err != nil {
		return store.MutationResult{}, err
	}
	res, err := c.repo.Delete(ctx, old.RecordID())
	if err != nil {
		return store.MutationResult{}, err
	}
	c.invalidate(ctx, old.RecordSlug())
	return res, nil
}

// publicLookup serves the anonymous slug route from the cache, falling
// back to the store and caching the rendered record on a miss.
func (c *contentCore[T]) publicLookup(ctx context.Context, slug string) ([]byte, error) {
	key := c.cachePrefix + slug
	if body, err := c.cache.Get(ctx, key); err == nil {
		return body, nil
	}

	rec, err := c.repo.FindBySlugOrID(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !rec.VisibleTo(nil) {
		return nil, store.NotFound(c.notFoundMsg)
	}

	body, err := json.Marshal(rec)
	if err != nil {
		return nil, store.Backend(err)
	}
	if err := c.cache.Set(ctx, key, body, 0); err != nil && !errors.Is(err, cache.ErrCacheClosed) {
		c.logger.Warn("cache write failed", "key", key, "error", err)
	}
	return body, nil
}

// publishDue applies the kind's publish patch to every record whose
// publish time has passed. Returns the number of records published.
func (c *contentCore[T]) publishDue(ctx context.Context, patch store.ContentPatch) (int, error) {
	due, err := c.repo.FindMany(ctx, store.ContentFilter{DuePublish: true}, store.Pagination{Page: 1})
	if err != nil {
		return 0, err
	}
	for _, rec := range due {
		if _, err := c.repo.Update(ctx, rec.RecordID(), patch); err != nil {
			return 0, err
		}
		c.invalidate(ctx, rec.RecordSlug())
	}
	return len(due), nil
}
