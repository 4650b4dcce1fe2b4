// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package es

import (
	"context"
	"encoding/json"
	"time"

	"github.com/versocms/verso/internal/store"
)

// contentRepo implements the content contract once for both pages and blog
// posts; the per-kind differences (index names, visibility filter, record
// accessors) are injected by the Store constructors.
type contentRepo[T contentRecord] struct {
	s           *Store
	index       string
	slugIndex   string
	notFoundMsg string
	visible     func() map[string]any
}

// contentRecord is the surface the generic repo needs from a content model.
type contentRecord interface {
	RecordID() string
	RecordSlug() string
	PrepareInsert(now time.Time)
}

func (r *contentRepo[T]) FindBySlugOrID(ctx context.Context, key string) (T, error) {
	var zero T

	// The slug claim index resolves slugs to record IDs; anything not
	// claimed is treated as a record ID.
	id := key
	if owner, ok, err := r.s.getClaim(ctx, r.slugIndex, key); err != nil {
		return zero, err
	} else if ok {
		id = owner
	}

	var rec T
	if ok, err := r.s.getDoc(ctx, r.index, id, &rec); err != nil {
		return zero, err
	} else if !ok {
		return zero, store.NotFound(r.notFoundMsg)
	}
	return rec, nil
}

func (r *contentRepo[T]) FindMany(ctx context.Context, f store.ContentFilter, p store.Pagination) ([]T, error) {
	query := matchAll()
	switch {
	case f.VisibleOnly:
		query = r.visible()
	case f.DuePublish:
		query = map[string]any{"range": map[string]any{
			"publish_at": map[string]any{"lte": time.Now().UTC().Format(time.RFC3339)},
		}}
	}

	records := make([]T, 0, store.PerPage)
	err := r.s.search(ctx, r.index, query, p, func(raw json.RawMessage) error {
		var rec T
		if err := json.Unmarshal(raw, &rec); err != nil {
			return err
		}
		records = append(records, rec)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *contentRepo[T]) Insert(ctx context.Context, rec T) (store.MutationResult, error) {
	rec.PrepareInsert(time.Now().UTC().Truncate(time.Second))

	if err := r.s.createClaim(ctx, r.slugIndex, rec.RecordSlug(), rec.RecordID(), "slug"); err != nil {
		return store.MutationResult{}, err
	}
	if err := r.s.indexDoc(ctx, r.index, rec.RecordID(), rec); err != nil {
		// Roll the claim back so the slug is not left orphaned.
		_ = r.s.deleteClaim(ctx, r.slugIndex, rec.RecordSlug())
		return store.MutationResult{}, err
	}
	return store.MutationResult{Success: true, Affected: 1, InsertedID: rec.RecordID()}, nil
}

func (r *contentRepo[T]) Update(ctx context.Context, id string, patch store.ContentPatch) (store.MutationResult, error) {
	// Read-modify-write at the document level; only fields present in the
	// patch are touched.
	var doc map[string]any
	if ok, err := r.s.getDoc(ctx, r.index, id, &doc); err != nil {
		return store.MutationResult{}, err
	} else if !ok {
		return store.MutationResult{}, store.NotFound(r.notFoundMsg)
	}

	// On a slug change the new slug is claimed before the document is
	// rewritten and the old claim released only after, so any failure in
	// between rolls back to a state where both slugs still resolve.
	oldSlug, _ := doc["slug"].(string)
	slugChanged := patch.Slug != nil && *patch.Slug != oldSlug
	if slugChanged {
		if err := r.s.createClaim(ctx, r.slugIndex, *patch.Slug, id, "slug"); err != nil {
			return store.MutationResult{}, err
		}
		doc["slug"] = *patch.Slug
	}

	if patch.Name != nil {
		doc["name"] = *patch.Name
	}
	if patch.Enabled != nil {
		doc["enabled"] = *patch.Enabled
	}
	if patch.Draft != nil {
		doc["draft"] = *patch.Draft
	}
	if patch.Public != nil {
		doc["public"] = *patch.Public
	}
	if patch.Content != nil {
		doc["content"] = *patch.Content
	}
	if patch.Meta != nil {
		doc["meta"] = *patch.Meta
	}
	if patch.PublishAt != nil {
		doc["publish_at"] = patch.PublishAt.UTC().Format(time.RFC3339)
	} else if patch.ClearPublishAt {
		delete(doc, "publish_at")
	}
	doc["updated_at"] = time.Now().UTC().Truncate(time.Second).Format(time.RFC3339)

	if err := r.s.indexDoc(ctx, r.index, id, doc); err != nil {
		if slugChanged {
			_ = r.s.deleteClaim(ctx, r.slugIndex, *patch.Slug)
		}
		return store.MutationResult{}, err
	}
	if slugChanged {
		if err := r.s.deleteClaim(ctx, r.slugIndex, oldSlug); err != nil {
			return store.MutationResult{}, err
		}
	}
	return store.MutationResult{Success: true, Affected: 1}, nil
}

func (r *contentRepo[T]) Delete(ctx context.Context, id string) (store.MutationResult, error) {
	// Fetch first so the slug claim can be released with the record.
	var doc map[string]any
	if ok, err := r.s.getDoc(ctx, r.index, id, &doc); err != nil {
		return store.MutationResult{}, err
	} else if !ok {
		return store.MutationResult{}, store.NotFound(r.notFoundMsg)
	}

	ok, err := r.s.deleteDoc(ctx, r.index, id)
	if err != nil {
		return store.MutationResult{}, err
	}
	if !ok {
		return store.MutationResult{}, store.NotFound(r.notFoundMsg)
	}
	if slug, _ := doc["slug"].(string); slug != "" {
		if err := r.s.deleteClaim(ctx, r.slugIndex, slug); err != nil {
			return store.MutationResult{}, err
		}
	}
	return store.MutationResult{Success: true, Affected: 1}, nil
}
