// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for authentication,
// login protection and request timeouts.
package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/versocms/verso/internal/auth"
	"github.com/versocms/verso/internal/model"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

// ContextKeyClaim holds the decoded *model.Claim for the request, or nil
// for anonymous callers.
const ContextKeyClaim ContextKey = "claim"

// msgInvalidToken is returned by RequireToken when no valid claim is
// present.
const msgInvalidToken = "Invalid User Token"

// LoadClaim decodes the Authorization header into the request context.
// A missing or malformed header yields a nil claim, not a rejection;
// routes that need identity gate on it with RequireToken.
func LoadClaim(tokens *auth.TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claim := tokens.FromHeader(r.Header.Get("Authorization"))
			ctx := context.WithValue(r.Context(), ContextKeyClaim, claim)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimFrom returns the claim loaded by LoadClaim, or nil.
func ClaimFrom(r *http.Request) *model.Claim {
	claim, _ := r.Context().Value(ContextKeyClaim).(*model.Claim)
	return claim
}

// RequireToken rejects requests without a verified claim. Applied to
// every mutation route.
func RequireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ClaimFrom(r) == nil {
			writeError(w, http.StatusUnauthorized, msgInvalidToken)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// writeError emits the API error body shape without importing the
// handler package.
func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
