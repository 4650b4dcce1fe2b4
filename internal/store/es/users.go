// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package es

import (
	"context"
	"encoding/json"
	"time"

	"github.com/versocms/verso/internal/model"
	"github.com/versocms/verso/internal/store"
)

const userNotFound = "User Not Found"

// storedUser is the document shape for users. PasswordHash is excluded
// from the model's public JSON, so the document carries it explicitly.
type storedUser struct {
	ID           string         `json:"id"`
	Username     string         `json:"username"`
	Email        string         `json:"email"`
	PasswordHash string         `json:"password_hash"`
	Role         string         `json:"role"`
	Enabled      bool           `json:"enabled"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

func toStoredUser(u *model.User) storedUser {
	return storedUser{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Role:         u.Role,
		Enabled:      u.Enabled,
		Metadata:     u.Metadata,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func (d storedUser) toModel() *model.User {
	return &model.User{
		ID:           d.ID,
		Username:     d.Username,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		Role:         d.Role,
		Enabled:      d.Enabled,
		Metadata:     d.Metadata,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

type userRepo struct {
	s *Store
}

func (r *userRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	var doc storedUser
	if ok, err := r.s.getDoc(ctx, indexUsers, id, &doc); err != nil {
		return nil, err
	} else if !ok {
		return nil, store.NotFound(userNotFound)
	}
	return doc.toModel(), nil
}

func (r *userRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	owner, ok, err := r.s.getClaim(ctx, indexUsernames, username)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, store.NotFound(userNotFound)
	}
	return r.FindByID(ctx, owner)
}

func (r *userRepo) FindMany(ctx context.Context, p store.Pagination) ([]*model.User, error) {
	users := make([]*model.User, 0, store.PerPage)
	err := r.s.search(ctx, indexUsers, matchAll(), p, func(raw json.RawMessage) error {
		var doc storedUser
		if err := json.Unmarshal(raw, &doc); err != nil {
			return err
		}
		users = append(users, doc.toModel())
		return nil
	})
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepo) Insert(ctx context.Context, u *model.User) (store.MutationResult, error) {
	u.PrepareInsert(time.Now().UTC().Truncate(time.Second))

	// Claim both unique fields before writing the record; the username
	// claim is rolled back if the email claim loses a race.
	if err := r.s.createClaim(ctx, indexUsernames, u.Username, u.ID, "username"); err != nil {
		return store.MutationResult{}, err
	}
	if err := r.s.createClaim(ctx, indexEmails, u.Email, u.ID, "email"); err != nil {
		_ = r.s.deleteClaim(ctx, indexUsernames, u.Username)
		return store.MutationResult{}, err
	}
	if err := r.s.indexDoc(ctx, indexUsers, u.ID, toStoredUser(u)); err != nil {
		_ = r.s.deleteClaim(ctx, indexUsernames, u.Username)
		_ = r.s.deleteClaim(ctx, indexEmails, u.Email)
		return store.MutationResult{}, err
	}
	return store.MutationResult{Success: true, Affected: 1, InsertedID: u.ID}, nil
}

func (r *userRepo) Update(ctx context.Context, id string, patch store.UserPatch) (store.MutationResult, error) {
	var doc storedUser
	if ok, err := r.s.getDoc(ctx, indexUsers, id, &doc); err != nil {
		return store.MutationResult{}, err
	} else if !ok {
		return store.MutationResult{}, store.NotFound(userNotFound)
	}

	// New values are claimed before the record is rewritten and the old
	// claims released only after, so a failure in between never leaves a
	// value claimed that no record carries.
	oldUsername, oldEmail := doc.Username, doc.Email
	usernameChanged := patch.Username != nil && *patch.Username != doc.Username
	emailChanged := patch.Email != nil && *patch.Email != doc.Email
	if usernameChanged {
		if err := r.s.createClaim(ctx, indexUsernames, *patch.Username, id, "username"); err != nil {
			return store.MutationResult{}, err
		}
		doc.Username = *patch.Username
	}
	if emailChanged {
		if err := r.s.createClaim(ctx, indexEmails, *patch.Email, id, "email"); err != nil {
			if usernameChanged {
				_ = r.s.deleteClaim(ctx, indexUsernames, *patch.Username)
			}
			return store.MutationResult{}, err
		}
		doc.Email = *patch.Email
	}
	if patch.PasswordHash != nil {
		doc.PasswordHash = *patch.PasswordHash
	}
	if patch.Role != nil {
		doc.Role = *patch.Role
	}
	if patch.Enabled != nil {
		doc.Enabled = *patch.Enabled
	}
	if patch.Metadata != nil {
		doc.Metadata = *patch.Metadata
	}
	doc.UpdatedAt = time.Now().UTC().Truncate(time.Second)

	if err := r.s.indexDoc(ctx, indexUsers, id, doc); err != nil {
		if usernameChanged {
			_ = r.s.deleteClaim(ctx, indexUsernames, doc.Username)
		}
		if emailChanged {
			_ = r.s.deleteClaim(ctx, indexEmails, doc.Email)
		}
		return store.MutationResult{}, err
	}
	if usernameChanged {
		if err := r.s.deleteClaim(ctx, indexUsernames, oldUsername); err != nil {
			return store.MutationResult{}, err
		}
	}
	if emailChanged {
		if err := r.s.deleteClaim(ctx, indexEmails, oldEmail); err != nil {
			return store.MutationResult{}, err
		}
	}
	return store.MutationResult{Success: true, Affected: 1}, nil
}

func (r *userRepo) Delete(ctx context.Context, id string) (store.MutationResult, error) {
	var doc storedUser
	if ok, err := r.s.getDoc(ctx, indexUsers, id, &doc); err != nil {
		return store.MutationResult{}, err
	} else if !ok {
		return store.MutationResult{}, store.NotFound(userNotFound)
	}

	ok, err := r.s.deleteDoc(ctx, indexUsers, id)
	if err != nil {
		return store.MutationResult{}, err
	}
	if !ok {
		return store.MutationResult{}, store.NotFound(userNotFound)
	}
	if err := r.s.deleteClaim(ctx, indexUsernames, doc.Username); err != nil {
		return store.MutationResult{}, err
	}
	if err := r.s.deleteClaim(ctx, indexEmails, doc.Email); err != nil {
		return store.MutationResult{}, err
	}
	return store.MutationResult{Success: true, Affected: 1}, nil
}
