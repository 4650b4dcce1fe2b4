// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package api provides the REST handlers. Success payloads are the
// normalized records themselves; every failure is a JSON body with a
// single "error" string and a matching status code.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/versocms/verso/internal/middleware"
	"github.com/versocms/verso/internal/service"
	"github.com/versocms/verso/internal/store"
)

// Handler holds shared dependencies for all API handlers.
type Handler struct {
	users      *service.UserService
	pages      *service.PageService
	posts      *service.PostService
	protection *middleware.LoginProtection
	backend    store.Store
	logger     *slog.Logger
}

// NewHandler creates a new API handler.
func NewHandler(users *service.UserService, pages *service.PageService, posts *service.PostService, protection *middleware.LoginProtection, backend store.Store, logger *slog.Logger) *Handler {
	return &Handler{
		users:      users,
		pages:      pages,
		posts:      posts,
		protection: protection,
		backend:    backend,
		logger:     logger,
	}
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteError writes the canonical error body.
func WriteError(w http.ResponseWriter, statusCode int, message string) {
	WriteJSON(w, statusCode, map[string]string{"error": message})
}

// writeStoreError maps a store-taxonomy error onto the wire. Backend
// errors are logged with their cause; the client only ever sees the
// opaque message.
func (h *Handler) writeStoreError(w http.ResponseWriter, err error) {
	se := store.AsError(err)
	if se.Kind == store.KindBackend {
		h.logger.Error("backend failure", "error", se.Unwrap())
	}
	WriteError(w, se.HTTPStatus(), se.Message)
}

// decode parses a JSON request body into v.
func decode(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

// Health reports whether the storage backend responds.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.backend.Ping(r.Context()); err != nil {
		h.logger.Error("health check failed", "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
