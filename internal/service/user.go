// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package service implements the resource controllers: every operation
// runs the same pipeline of authorization, validation and persistence,
// and returns errors from the closed store taxonomy. Both storage
// backends sit behind the store interfaces, so the behavior here is
// identical regardless of engine.
package service

import (
	"context"
	"log/slog"

	"github.com/versocms/verso/internal/auth"
	"github.com/versocms/verso/internal/model"
	"github.com/versocms/verso/internal/plugin"
	"github.com/versocms/verso/internal/store"
	"github.com/versocms/verso/internal/validate"
)

// Client-facing error messages shared across user operations.
const (
	msgNotAllowed         = "Not Allowed"
	msgInvalidCredentials = "Invalid Credentials"
	msgNoUserData         = "User Data Not Provided"
	msgCannotDeleteSelf   = "Cannot Delete Yourself"
)

// UserService handles authentication and user CRUD.
type UserService struct {
	users   store.UserRepository
	tokens  *auth.TokenService
	plugins *plugin.Registry
	logger  *slog.Logger
}

// NewUserService creates a UserService.
func NewUserService(users store.UserRepository, tokens *auth.TokenService, plugins *plugin.Registry, logger *slog.Logger) *UserService {
	return &UserService{users: users, tokens: tokens, plugins: plugins, logger: logger}
}

// LoginEvent is the payload passed to login lifecycle hooks.
type LoginEvent struct {
	Username string
	UserID   string
}

// Login verifies credentials and issues a session token. The
// beforeLoggingIn hook runs first and may abort the attempt; the
// loginSucceeded and loginFailed hooks are notified after the outcome.
func (s *UserService) Login(ctx context.Context, username, password string) (string, error) {
	if username == "" || password == "" {
		return "", store.Authentication(msgNoUserData)
	}

	if _, err := s.plugins.RunLifecycleHook(ctx, plugin.HookBeforeLoggingIn, LoginEvent{Username: username}); err != nil {
		return "", store.Backend(err)
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if store.IsKind(err, store.KindNotFound) {
			s.plugins.Notify(ctx, plugin.HookLoginFailed, LoginEvent{Username: username})
			return "", store.Authentication(msgInvalidCredentials)
		}
		return "", err
	}

	if !user.Enabled || !auth.CheckPassword(password, user.PasswordHash) {
		s.plugins.Notify(ctx, plugin.HookLoginFailed, LoginEvent{Username: username, UserID: user.ID})
		return "", store.Authentication(msgInvalidCredentials)
	}

	token, err := s.tokens.Issue(user.Claim(), auth.TokenTTL)
	if err != nil {
		return "", store.Backend(err)
	}

	s.plugins.Notify(ctx, plugin.HookLoginSucceeded, LoginEvent{Username: username, UserID: user.ID})
	s.logger.Info("user logged in", "username", username)
	return token, nil
}

// AddUserInput carries the fields of a user create request.
type AddUserInput struct {
	Username string         `json:"username"`
	Email    string         `json:"email"`
	Password string         `json:"password"`
	Role     string         `json:"role"`
	Enabled  *bool          `json:"enabled"`
	Metadata map[string]any `json:"metadata"`
}

// AddUser creates a user. Only site-modifiers may call it.
func (s *UserService) AddUser(ctx context.Context, claim *model.Claim, in AddUserInput) (*model.User, error) {
	if !auth.IsAllowed(claim, auth.ResourceUser, auth.ActionCreate) {
		return nil, store.Authorization(msgNotAllowed)
	}

	if in.Username == "" {
		return nil, store.Validation("username must be provided")
	}
	if in.Email == "" {
		return nil, store.Validation("email must be provided")
	}
	if err := validate.Password(in.Password); err != nil {
		return nil, err
	}
	if in.Role != "" && !validRole(in.Role) {
		return nil, store.Validation("role is not recognized")
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, store.Backend(err)
	}

	user := &model.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         in.Role,
		Enabled:      true,
		Metadata:     in.Metadata,
	}
	if in.Enabled != nil {
		user.Enabled = *in.Enabled
	}

	if _, err := s.users.Insert(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info("user created", "username", user.Username, "role", user.Role)
	return user, nil
}

// EditUserInput carries the fields of a user edit request. Nil pointers
// leave the field unchanged.
type EditUserInput struct {
	ID              string          `json:"id"`
	Username        *string         `json:"username"`
	Email           *string         `json:"email"`
	Password        *string         `json:"password"`
	CurrentPassword string          `json:"currentPassword"`
	Role            *string         `json:"role"`
	Enabled         *bool           `json:"enabled"`
	Metadata        *map[string]any `json:"metadata"`
}

// selfServiceOnly reports whether the edit touches nothing beyond the
// fields a user may change on their own record.
func (in EditUserInput) selfServiceOnly() bool {
	return in.Username == nil && in.Role == nil && in.Enabled == nil
}

// EditUser updates a user. Site-modifiers may edit anyone; other callers
// may edit only their own password, email and metadata, and a password
// change on one's own record requires the current password.
func (s *UserService) EditUser(ctx context.Context, claim *model.Claim, in EditUserInput) (*model.User, error) {
	if in.ID == "" {
		return nil, store.Validation("id must be provided")
	}

	admin := auth.IsAllowed(claim, auth.ResourceUser, auth.ActionUpdate)
	self := claim.Is(in.ID)
	if !admin && !self {
		return nil, store.Authorization(msgNotAllowed)
	}
	if !admin && !in.selfServiceOnly() {
		return nil, store.Authorization(msgNotAllowed)
	}

	patch := store.UserPatch{
		Username: in.Username,
		Email:    in.Email,
		Role:     in.Role,
		Enabled:  in.Enabled,
		Metadata: in.Metadata,
	}

	if in.Role != nil && !validRole(*in.Role) {
		return nil, store.Validation("role is not recognized")
	}

	if in.Password != nil {
		if err := validate.Password(*in.Password); err != nil {
			return nil, err
		}
		// Changing one's own password requires re-proof of the current
		// one, whatever the caller's role.
		if self {
			current, err := s.users.FindByID(ctx, in.ID)
			if err != nil {
				return nil, err
			}
			if !auth.CheckPassword(in.CurrentPassword, current.PasswordHash) {
				return nil, store.Authentication(msgInvalidCredentials)
			}
		}
		hash, err := auth.HashPassword(*in.Password)
		if err != nil {
			return nil, store.Backend(err)
		}
		patch.PasswordHash = &hash
	}

	if _, err := s.users.Update(ctx, in.ID, patch); err != nil {
		return nil, err
	}
	return s.users.FindByID(ctx, in.ID)
}

// DeleteUser removes a user. Self-deletion is always denied.
func (s *UserService) DeleteUser(ctx context.Context, claim *model.Claim, id string) (store.MutationResult, error) {
	if id == "" {
		return store.MutationResult{}, store.Validation("id must be provided")
	}
	if claim.Is(id) {
		return store.MutationResult{}, store.Authorization(msgCannotDeleteSelf)
	}
	if !auth.IsAllowed(claim, auth.ResourceUser, auth.ActionDelete) {
		return store.MutationResult{}, store.Authorization(msgNotAllowed)
	}
	res, err := s.users.Delete(ctx, id)
	if err != nil {
		return store.MutationResult{}, err
	}
	s.logger.Info("user deleted", "id", id)
	return res, nil
}

// GetUser returns a single user. Content editors may read anyone; other
// callers only their own record.
func (s *UserService) GetUser(ctx context.Context, claim *model.Claim, id string) (*model.User, error) {
	if !claim.IsContentEditor() && !claim.Is(id) {
		return nil, store.Authorization(msgNotAllowed)
	}
	return s.users.FindByID(ctx, id)
}

// ListUsers returns one page of users. Content editors only.
func (s *UserService) ListUsers(ctx context.Context, claim *model.Claim, p store.Pagination) ([]*model.User, error) {
	if !auth.IsAllowed(claim, auth.ResourceUser, auth.ActionListUsers) {
		return nil, store.Authorization(msgNotAllowed)
	}
	return s.users.FindMany(ctx, p)
}

func validRole(role string) bool {
	switch role {
	case model.RoleSuperAdmin, model.RoleAdmin, model.RoleEditor, model.RoleSubscriber:
		return true
	}
	return false
}
