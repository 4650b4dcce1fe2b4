// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package validate checks the mutable fields of resource payloads. Fields
// arrive as raw JSON so that a wrong JSON type can be reported distinctly
// from a wrong value. Every failure message is client-facing and returned
// by the API verbatim, so messages are specific, never a bare "invalid".
package validate

import (
	"bytes"
	"encoding/json"

	"github.com/versocms/verso/internal/store"
)

// isNull reports whether raw is the JSON null literal, which Unmarshal
// would otherwise silently turn into the target's zero value.
func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// Field length bounds shared by name and slug.
const (
	MinFieldLen = 1
	MaxFieldLen = 512
)

// MinPasswordLen is the minimum accepted password length.
const MinPasswordLen = 8

// Name checks that raw is a string of valid length and returns it.
func Name(raw json.RawMessage) (string, error) {
	var s string
	if isNull(raw) || json.Unmarshal(raw, &s) != nil {
		return "", store.Validation("name must be a string")
	}
	if len(s) < MinFieldLen || len(s) > MaxFieldLen {
		return "", store.Validation("name has invalid length (must be 1-512 characters)")
	}
	return s, nil
}

// Slug checks that raw is a string of valid length containing only
// lowercase letters, digits and hyphens. The three failure classes (type,
// length, character set) produce three distinct messages.
func Slug(raw json.RawMessage) (string, error) {
	var s string
	if isNull(raw) || json.Unmarshal(raw, &s) != nil {
		return "", store.Validation("slug must be a string")
	}
	if err := SlugString(s); err != nil {
		return "", err
	}
	return s, nil
}

// SlugString applies the slug rules to an already-typed string.
func SlugString(s string) error {
	if len(s) < MinFieldLen || len(s) > MaxFieldLen {
		return store.Validation("slug has invalid length (must be 1-512 characters)")
	}
	for _, r := range s {
		if !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-') {
			return store.Validation("slug contains invalid characters (use lowercase letters, numbers, and hyphens)")
		}
	}
	return nil
}

// Flag checks that raw is a JSON boolean. field names the flag in the
// failure message.
func Flag(raw json.RawMessage, field string) (bool, error) {
	var b bool
	if isNull(raw) || json.Unmarshal(raw, &b) != nil {
		return false, store.Validation(field + " must be a boolean")
	}
	return b, nil
}

// Content checks that raw is an ordered sequence of blocks. Block internals
// are opaque to this layer and pass through unvalidated.
func Content(raw json.RawMessage) ([]json.RawMessage, error) {
	var blocks []json.RawMessage
	if isNull(raw) || json.Unmarshal(raw, &blocks) != nil {
		return nil, store.Validation("content must be an array of blocks")
	}
	return blocks, nil
}

// Password checks the minimum password length on create and self-edit.
func Password(pw string) error {
	if len(pw) < MinPasswordLen {
		return store.Validation("password must be at least 8 characters")
	}
	return nil
}
