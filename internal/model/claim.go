// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// Claim is the decoded identity carried by a bearer token. It lives for a
// single request and is never persisted. A nil *Claim means the caller is
// anonymous; every method is nil-safe so downstream checks can treat a
// missing token as "no role".
type Claim struct {
	SubjectID string `json:"sub"`
	Username  string `json:"username"`
	Role      string `json:"role"`
}

// IsSiteModifier returns true if the claim's role may mutate users, pages
// and blog posts.
func (c *Claim) IsSiteModifier() bool {
	if c == nil {
		return false
	}
	return c.Role == RoleSuperAdmin || c.Role == RoleAdmin
}

// IsContentEditor returns true if the claim's role may view hidden content
// and the full user list.
func (c *Claim) IsContentEditor() bool {
	if c == nil {
		return false
	}
	return c.IsSiteModifier() || c.Role == RoleEditor
}

// Is reports whether the claim identifies the user with the given ID.
func (c *Claim) Is(userID string) bool {
	return c != nil && c.SubjectID == userID
}
