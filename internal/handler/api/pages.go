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

// AddPage creates a page from a {"page": {...}} payload.
func (h *Handler) AddPage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Page *service.ContentInput `json:"page"`
	}
	if err := decode(r, &req); err != nil || req.Page == nil {
		WriteError(w, http.StatusBadRequest, "page must be provided")
		return
	}

	created, err := h.pages.Add(r.Context(), middleware.ClaimFrom(r), *req.Page)
	if err != nil {
		h.writeStoreError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, created)
}

// EditPage updates a page from a {"page": {...}} payload.
func (h *Handler) EditPage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Page *service.ContentInput `json:"page"`
	}
	if err := decode(r, &req); err != nil || req.Page == nil {
		WriteError(w, http.StatusBadRequest, "page must be provided")
		return
	}

	updated, err := h.pages.Edit(r.Context(), middleware.ClaimFrom(r), *req.Page)
	if err != nil {
		h.writeStoreError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, updated)
}

// DeletePage removes the page named by {"id": "..."}.
func (h *Handler) DeletePage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID string `json:"id"`
	}
	if err := decode(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "id must be provided")
		return
	}

	res, err := h.pages.Delete(r.Context(), middleware.ClaimFrom(r), req.ID)
	if err != nil {
		h.writeStoreError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"success": res.Success})
}

// GetPage returns a single page by slug or ID.
func (h *Handler) GetPage(w http.ResponseWriter, r *http.Request) {
	page, err := h.pages.Get(r.Context(), middleware.ClaimFrom(r), chi.URLParam(r, "pageId"))
	if err != nil {
		h.writeStoreError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, page)
}

// AllPages returns one page of pages as a bare array.
func (h *Handler) AllPages(w http.ResponseWriter, r *http.Request) {
	page := store.PageOf(chi.URLParam(r, "page"))
	pages, err := h.pages.List(r.Context(), middleware.ClaimFrom(r), page)
	if err != nil {
		h.writeStoreError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, pages)
}

// PublicPage serves the anonymous slug route from the content cache.
func (h *Handler) PublicPage(w http.ResponseWriter, r *http.Request) {
	body, err := h.pages.PublicLookup(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.writeStoreError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
