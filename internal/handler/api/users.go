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

// AddUser creates a user from a {"user": {...}} payload.
func (h *Handler) AddUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		User *service.AddUserInput `json:"user"`
	}
	if err := decode(r, &req); err != nil || req.User == nil {
		WriteError(w, http.StatusBadRequest, "user must be provided")
		return
	}

	created, err := h.users.AddUser(r.Context(), middleware.ClaimFrom(r), *req.User)
	if err != nil {
		h.writeStoreError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, created)
}

// EditUser updates a user from a {"user": {...}} payload.
func (h *Handler) EditUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		User *service.EditUserInput `json:"user"`
	}
	if err := decode(r, &req); err != nil || req.User == nil {
		WriteError(w, http.StatusBadRequest, "user must be provided")
		return
	}

	updated, err := h.users.EditUser(r.Context(), middleware.ClaimFrom(r), *req.User)
	if err != nil {
		h.writeStoreError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, updated)
}

// DeleteUser removes the user named by {"id": "..."}.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID string `json:"id"`
	}
	if err := decode(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "id must be provided")
		return
	}

	res, err := h.users.DeleteUser(r.Context(), middleware.ClaimFrom(r), req.ID)
	if err != nil {
		h.writeStoreError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"success": res.Success})
}

// GetUser returns a single user by ID.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.GetUser(r.Context(), middleware.ClaimFrom(r), chi.URLParam(r, "id"))
	if err != nil {
		h.writeStoreError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, user)
}

// AllUsers returns one page of users wrapped as {"users": [...]}.
func (h *Handler) AllUsers(w http.ResponseWriter, r *http.Request) {
	page := store.PageOf(chi.URLParam(r, "page"))
	users, err := h.users.ListUsers(r.Context(), middleware.ClaimFrom(r), page)
	if err != nil {
		h.writeStoreError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"users": users})
}
