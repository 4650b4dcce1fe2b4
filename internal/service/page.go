// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"log/slog"

	"github.com/versocms/verso/internal/auth"
	"github.com/versocms/verso/internal/cache"
	"github.com/versocms/verso/internal/model"
	"github.com/versocms/verso/internal/store"
	"github.com/versocms/verso/internal/util"
	"github.com/versocms/verso/internal/validate"
)

// PageService handles page CRUD and public page lookups.
type PageService struct {
	core contentCore[*model.Page]
}

// NewPageService creates a PageService.
func NewPageService(repo store.ContentRepository[*model.Page], c cache.Cache, logger *slog.Logger) *PageService {
	return &PageService{core: contentCore[*model.Page]{
		repo:        repo,
		cache:       c,
		cachePrefix: "page:",
		resource:    auth.ResourcePage,
		notFoundMsg: "Page Not Found",
		logger:      logger,
	}}
}

// Add creates a page. When the slug is omitted it is derived from the
// name.
func (s *PageService) Add(ctx context.Context, claim *model.Claim, in ContentInput) (*model.Page, error) {
	if err := s.core.authorize(claim, auth.ActionCreate); err != nil {
		return nil, err
	}

	name, err := validate.Name(in.Name)
	if err != nil {
		return nil, err
	}

	var slug string
	if len(in.Slug) == 0 {
		slug = util.Slugify(name)
		if err := validate.SlugString(slug); err != nil {
			return nil, err
		}
	} else if slug, err = validate.Slug(in.Slug); err != nil {
		return nil, err
	}

	page := &model.Page{
		Name:      name,
		Slug:      slug,
		Meta:      in.Meta,
		PublishAt: in.PublishAt,
	}
	if len(in.Enabled) > 0 {
		if page.Enabled, err = validate.Flag(in.Enabled, "enabled"); err != nil {
			return nil, err
		}
	}
	if len(in.Content) > 0 {
		if page.Content, err = validate.Content(in.Content); err != nil {
			return nil, err
		}
	}

	created, err := s.core.create(ctx, page)
	if err != nil {
		return nil, err
	}
	s.core.logger.Info("page created", "slug", created.Slug)
	return created, nil
}

// Edit updates the fields present in the input.
func (s *PageService) Edit(ctx context.Context, claim *model.Claim, in ContentInput) (*model.Page, error) {
	if err := s.core.authorize(claim, auth.ActionUpdate); err != nil {
		return nil, err
	}
	if in.ID == "" {
		return nil, store.Validation("id must be provided")
	}

	patch, err := contentPatchOf(in)
	if err != nil {
		return nil, err
	}
	if len(in.Enabled) > 0 {
		enabled, err := validate.Flag(in.Enabled, "enabled")
		if err != nil {
			return nil, err
		}
		patch.Enabled = &enabled
	}

	return s.core.update(ctx, in.ID, patch)
}

// Delete removes a page.
func (s *PageService) Delete(ctx context.Context, claim *model.Claim, id string) (store.MutationResult, error) {
	if err := s.core.authorize(claim, auth.ActionDelete); err != nil {
		return store.MutationResult{}, err
	}
	if id == "" {
		return store.MutationResult{}, store.Validation("id must be provided")
	}
	return s.core.delete(ctx, id)
}

// Get returns one page by slug or ID, subject to the caller's visibility.
func (s *PageService) Get(ctx context.Context, claim *model.Claim, key string) (*model.Page, error) {
	return s.core.getOne(ctx, claim, key)
}

// List returns one page of pages, filtered to enabled records for callers
// without the editor role.
func (s *PageService) List(ctx context.Context, claim *model.Claim, p store.Pagination) ([]*model.Page, error) {
	return s.core.getMany(ctx, claim, p)
}

// PublicLookup serves the anonymous slug route, cached.
func (s *PageService) PublicLookup(ctx context.Context, slug string) ([]byte, error) {
	return s.core.publicLookup(ctx, slug)
}

// PublishDue enables every page whose publish time has passed.
func (s *PageService) PublishDue(ctx context.Context) (int, error) {
	enabled := true
	return s.core.publishDue(ctx, store.ContentPatch{Enabled: &enabled, ClearPublishAt: true})
}

// contentPatchOf builds the patch fields shared by pages and blog posts.
func contentPatchOf(in ContentInput) (store.ContentPatch, error) {
	var patch store.ContentPatch

	if len(in.Name) > 0 {
		name, err := validate.Name(in.Name)
		if err != nil {
			return patch, err
		}
		patch.Name = &name
	}
	if len(in.Slug) > 0 {
		slug, err := validate.Slug(in.Slug)
		if err != nil {
			return patch, err
		}
		patch.Slug = &slug
	}
	if len(in.Content) > 0 {
		content, err := validate.Content(in.Content)
		if err != nil {
			return patch, err
		}
		patch.Content = &content
	}
	if in.Meta != nil {
		patch.Meta = &in.Meta
	}
	if in.PublishAt != nil {
		patch.PublishAt = in.PublishAt
	}
	return patch, nil
}
