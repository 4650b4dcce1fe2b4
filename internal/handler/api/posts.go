// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/versocms/verso/internal/middleware"
	"github.com/versocms/verso/internal/service"
	"github.com/versocms/verso/internal/store"
)

// AddBlogPost creates a blog post from a {"blogPost": {...}} payload.
func (h *Handler) AddBlogPost(w http.ResponseWriter, r *http.Request) {
	var req struct {
		BlogPost *service.ContentInput `json:"blogPost"`
	}
	if err := decode(r, &req); err != nil || req.BlogPost == nil {
		WriteError(w, http.StatusBadRequest, "blogPost must be provided")
		return
	}

	created, err := h.posts.Add(r.Context(), middleware.ClaimFrom(r), *req.BlogPost)
	if err != nil {
		h.writeStoreError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, created)
}

// EditBlogPost updates a blog post from a {"blogPost": {...}} payload.
func (h *Handler) EditBlogPost(w http.ResponseWriter, r *http.Request) {
	var req struct {
		BlogPost *service.ContentInput `json:"blogPost"`
	}
	if err := decode(r, &req); err != nil || req.BlogPost == nil {
		WriteError(w, http.StatusBadRequest, "blogPost must be provided")
		return
	}

	updated, err := h.posts.Edit(r.Context(), middleware.ClaimFrom(r), *req.BlogPost)
	if err != nil {
		h.writeStoreError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, updated)
}

// DeleteBlogPost removes the post named by {"id": "..."}.
func (h *Handler) DeleteBlogPost(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID string `json:"id"`
	}
	if err := decode(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "id must be provided")
		return
	}

	res, err := h.posts.Delete(r.Context(), middleware.ClaimFrom(r), req.ID)
	if err != nil {
		h.writeStoreError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"success": res.Success})
}

// AllBlogPosts returns one page of posts as a bare array.
func (h *Handler) AllBlogPosts(w http.ResponseWriter, r *http.Request) {
	page := store.PageOf(chi.URLParam(r, "page"))
	posts, err := h.posts.List(r.Context(), middleware.ClaimFrom(r), page)
	if err != nil {
		h.writeStoreError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, posts)
}

// PublicBlogPost serves the anonymous blog slug route from the cache.
func (h *Handler) PublicBlogPost(w http.ResponseWriter, r *http.Request) {
	body, err := h.posts.PublicLookup(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.writeStoreError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
