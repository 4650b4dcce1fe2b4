// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// BlogPost represents a blog entry. Draft and non-public posts are only
// visible to content editors.
type BlogPost struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Slug      string            `json:"slug"`
	Draft     bool              `json:"draft"`
	Public    bool              `json:"public"`
	Content   []json.RawMessage `json:"content"`
	Meta      map[string]any    `json:"meta,omitempty"`
	PublishAt *time.Time        `json:"publish_at,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// VisibleTo reports whether the post may be returned to a caller with the
// given claim.
func (p *BlogPost) VisibleTo(c *Claim) bool {
	return (!p.Draft && p.Public) || c.IsContentEditor()
}

// RecordID returns the record identifier.
func (p *BlogPost) RecordID() string { return p.ID }

// RecordSlug returns the unique slug.
func (p *BlogPost) RecordSlug() string { return p.Slug }

// PrepareInsert assigns a fresh ID when missing and stamps both timestamps.
func (p *BlogPost) PrepareInsert(now time.Time) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Content == nil {
		p.Content = []json.RawMessage{}
	}
	p.CreatedAt = now
	p.UpdatedAt = now
}
