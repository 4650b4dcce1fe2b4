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

// PostService handles blog post CRUD and public post lookups.
type PostService struct {
	core contentCore[*model.BlogPost]
}

// NewPostService creates a PostService.
func NewPostService(repo store.ContentRepository[*model.BlogPost], c cache.Cache, logger *slog.Logger) *PostService {
	return &PostService{core: contentCore[*model.BlogPost]{
		repo:        repo,
		cache:       c,
		cachePrefix: "post:",
		resource:    auth.ResourceBlogPost,
		notFoundMsg: "Blog Post Not Found",
		logger:      logger,
	}}
}

// Add creates a blog post. New posts default to unlisted drafts unless
// the flags say otherwise.
func (s *PostService) Add(ctx context.Context, claim *model.Claim, in ContentInput) (*model.BlogPost, error) {
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

	post := &model.BlogPost{
		Name:      name,
		Slug:      slug,
		Draft:     true,
		Meta:      in.Meta,
		PublishAt: in.PublishAt,
	}
	if len(in.Draft) > 0 {
		if post.Draft, err = validate.Flag(in.Draft, "draft"); err != nil {
			return nil, err
		}
	}
	if len(in.Public) > 0 {
		if post.Public, err = validate.Flag(in.Public, "public"); err != nil {
			return nil, err
		}
	}
	if len(in.Content) > 0 {
		if post.Content, err = validate.Content(in.Content); err != nil {
			return nil, err
		}
	}

	created, err := s.core.create(ctx, post)
	if err != nil {
		return nil, err
	}
	s.core.logger.Info("blog post created", "slug", created.Slug)
	return created, nil
}

// Edit updates the fields present in the input.
func (s *PostService) Edit(ctx context.Context, claim *model.Claim, in ContentInput) (*model.BlogPost, error) {
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
	if len(in.Draft) > 0 {
		draft, err := validate.Flag(in.Draft, "draft")
		if err != nil {
			return nil, err
		}
		patch.Draft = &draft
	}
	if len(in.Public) > 0 {
		public, err := validate.Flag(in.Public, "public")
		if err != nil {
			return nil, err
		}
		patch.Public = &public
	}

	return s.core.update(ctx, in.ID, patch)
}

// Delete removes a blog post.
func (s *PostService) Delete(ctx context.Context, claim *model.Claim, id string) (store.MutationResult, error) {
	if err := s.core.authorize(claim, auth.ActionDelete); err != nil {
		return store.MutationResult{}, err
	}
	if id == "" {
		return store.MutationResult{}, store.Validation("id must be provided")
	}
	return s.core.delete(ctx, id)
}

// Get returns one post by slug or ID, subject to the caller's visibility.
func (s *PostService) Get(ctx context.Context, claim *model.Claim, key string) (*model.BlogPost, error) {
	return s.core.getOne(ctx, claim, key)
}

// List returns one page of posts, filtered to published public records
// for callers without the editor role.
func (s *PostService) List(ctx context.Context, claim *model.Claim, p store.Pagination) ([]*model.BlogPost, error) {
	return s.core.getMany(ctx, claim, p)
}

// PublicLookup serves the anonymous blog slug route, cached.
func (s *PostService) PublicLookup(ctx context.Context, slug string) ([]byte, error) {
	return s.core.publicLookup(ctx, slug)
}

// PublishDue takes every post whose publish time has passed out of draft.
func (s *PostService) PublishDue(ctx context.Context) (int, error) {
	draft := false
	return s.core.publishDue(ctx, store.ContentPatch{Draft: &draft, ClearPublishAt: true})
}
