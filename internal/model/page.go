// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Page represents a CMS page. Content is an ordered sequence of opaque
// blocks; the resource layer never inspects block internals.
type Page struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Slug      string            `json:"slug"`
	Enabled   bool              `json:"enabled"`
	Content   []json.RawMessage `json:"content"`
	Meta      map[string]any    `json:"meta,omitempty"`
	PublishAt *time.Time        `json:"publish_at,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// VisibleTo reports whether the page may be returned to a caller with the
// given claim. Content editors see everything, everyone else only enabled
// pages.
func (p *Page) VisibleTo(c *Claim) bool {
	return p.Enabled || c.IsContentEditor()
}

// RecordID returns the record identifier.
func (p *Page) RecordID() string { return p.ID }

// RecordSlug returns the unique slug.
func (p *Page) RecordSlug() string { return p.Slug }

// PrepareInsert assigns a fresh ID when missing and stamps both timestamps.
func (p *Page) PrepareInsert(now time.Time) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Content == nil {
		p.Content = []json.RawMessage{}
	}
	p.CreatedAt = now
	p.UpdatedAt = now
}
