// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines domain models and types shared by the storage
// backends and the HTTP API: User, Page, BlogPost and the token Claim.
package model

import (
	"time"

	"github.com/google/uuid"
)

// User roles, from most to least privileged.
const (
	RoleSuperAdmin = "superAdmin"
	RoleAdmin      = "admin"
	RoleEditor     = "editor"
	RoleSubscriber = "subscriber"
)

// User represents a CMS user account.
type User struct {
	ID           string         `json:"id"`
	Username     string         `json:"username"`
	Email        string         `json:"email"`
	PasswordHash string         `json:"-"` // Never expose in JSON
	Role         string         `json:"role"`
	Enabled      bool           `json:"enabled"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// IsSiteModifier returns true if the user may create, update and delete
// users, pages and blog posts.
func (u *User) IsSiteModifier() bool {
	return u.Role == RoleSuperAdmin || u.Role == RoleAdmin
}

// IsContentEditor returns true if the user may view disabled, draft and
// non-public content and the full user list.
func (u *User) IsContentEditor() bool {
	return u.IsSiteModifier() || u.Role == RoleEditor
}

// Claim derives the token identity for this user.
func (u *User) Claim() *Claim {
	return &Claim{SubjectID: u.ID, Username: u.Username, Role: u.Role}
}

// PrepareInsert assigns a fresh ID when missing, defaults the role and
// stamps both timestamps.
func (u *User) PrepareInsert(now time.Time) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Role == "" {
		u.Role = RoleSubscriber
	}
	u.CreatedAt = now
	u.UpdatedAt = now
}
