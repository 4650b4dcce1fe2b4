// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import "github.com/versocms/verso/internal/model"

// Action is an operation a caller may attempt on a resource kind.
type Action int

const (
	// ActionCreate, ActionUpdate and ActionDelete mutate a resource.
	ActionCreate Action = iota
	ActionUpdate
	ActionDelete
	// ActionViewHidden views disabled pages, draft or non-public posts.
	ActionViewHidden
	// ActionListUsers views the full user list.
	ActionListUsers
)

// Resource names a resource kind for policy decisions.
type Resource string

const (
	ResourceUser     Resource = "user"
	ResourcePage     Resource = "page"
	ResourceBlogPost Resource = "blogPost"
)

// IsAllowed is the pure permission check run before every operation. A nil
// claim carries no role and is denied everything but public reads. The
// self-service exceptions (a user editing their own password, email or
// metadata, and the unconditional self-delete denial) are enforced by the
// user service on top of this policy.
func IsAllowed(c *model.Claim, _ Resource, a Action) bool {
	switch a {
	case ActionCreate, ActionUpdate, ActionDelete:
		return c.IsSiteModifier()
	case ActionViewHidden, ActionListUsers:
		return c.IsContentEditor()
	default:
		return false
	}
}
