// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/versocms/verso/internal/auth"
	"github.com/versocms/verso/internal/middleware"
)

// RouterConfig tunes the assembled router.
type RouterConfig struct {
	// Tokens decodes bearer headers into claims.
	Tokens *auth.TokenService
	// BlogEnabled mounts the blog routes.
	BlogEnabled bool
	// RequestTimeout bounds every request; zero disables the timeout.
	RequestTimeout time.Duration
}

// Router assembles the full HTTP surface. The bare slug route is mounted
// last so the named routes always win.
func (h *Handler) Router(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	if cfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(cfg.RequestTimeout))
	}
	r.Use(middleware.LoadClaim(cfg.Tokens))

	r.Get("/healthz", h.Health)

	r.With(h.protection.Middleware()).Post("/login", h.Login)

	// Mutation routes sit behind the token gate.
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireToken)

		r.Post("/add-user", h.AddUser)
		r.Post("/edit-user", h.EditUser)
		r.Post("/delete-user", h.DeleteUser)

		r.Post("/add-page", h.AddPage)
		r.Post("/edit-page", h.EditPage)
		r.Post("/delete-page", h.DeletePage)

		if cfg.BlogEnabled {
			r.Post("/add-blog-post", h.AddBlogPost)
			r.Post("/edit-blog-post", h.EditBlogPost)
			r.Post("/delete-blog-post", h.DeleteBlogPost)
		}
	})

	r.Get("/get-user/{id}", h.GetUser)
	r.Get("/all-users", h.AllUsers)
	r.Get("/all-users/{page}", h.AllUsers)

	r.Get("/get-page/{pageId}", h.GetPage)
	r.Get("/all-pages", h.AllPages)
	r.Get("/all-pages/{page}", h.AllPages)

	if cfg.BlogEnabled {
		r.Get("/all-blog-posts", h.AllBlogPosts)
		r.Get("/all-blog-posts/{page}", h.AllBlogPosts)
		r.Get("/blog/{slug}", h.PublicBlogPost)
	}

	r.Get("/{slug}", h.PublicPage)

	return r
}
