// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"

	"github.com/versocms/verso/internal/store"
)

// Login authenticates a user and returns a session token. Account
// lockout wraps the credential check: a locked account is refused before
// the password is even compared.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	// A malformed body reads as missing credentials.
	_ = decode(r, &req)

	if req.Username != "" {
		if locked, _ := h.protection.IsAccountLocked(req.Username); locked {
			WriteError(w, http.StatusTooManyRequests, "Account Temporarily Locked")
			return
		}
	}

	token, err := h.users.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		// Only rejected credentials count toward lockout; incomplete
		// requests never reached the password check.
		if store.IsKind(err, store.KindAuthentication) && req.Username != "" && req.Password != "" {
			h.protection.RecordFailedAttempt(req.Username)
		}
		h.writeStoreError(w, err)
		return
	}

	h.protection.RecordSuccessfulLogin(req.Username)
	WriteJSON(w, http.StatusOK, map[string]string{"token": token})
}
