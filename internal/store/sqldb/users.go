// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package sqldb

import (
	"context"
	"database/sql"
	"time"

	"github.com/versocms/verso/internal/model"
	"github.com/versocms/verso/internal/store"
)

const userNotFound = "User Not Found"

const userColumns = "id, username, email, password_hash, role, enabled, metadata, created_at, updated_at"

type userRepo struct {
	db *sql.DB
}

func scanUser(row interface{ Scan(...any) error }) (*model.User, error) {
	var u model.User
	var metadata string
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash,
		&u.Role, &u.Enabled, &metadata, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	if err := jsonScan(metadata, &u.Metadata); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = ?", id)
	u, err := scanUser(row)
	if err != nil {
		return nil, translate(err, userNotFound)
	}
	return u, nil
}

func (r *userRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE username = ?", username)
	u, err := scanUser(row)
	if err != nil {
		return nil, translate(err, userNotFound)
	}
	return u, nil
}

func (r *userRepo) FindMany(ctx context.Context, p store.Pagination) ([]*model.User, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users ORDER BY created_at DESC, id LIMIT ? OFFSET ?",
		store.PerPage, p.Offset())
	if err != nil {
		return nil, store.Backend(err)
	}
	defer rows.Close()

	users := make([]*model.User, 0, store.PerPage)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, store.Backend(err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, store.Backend(err)
	}
	return users, nil
}

func (r *userRepo) Insert(ctx context.Context, u *model.User) (store.MutationResult, error) {
	u.PrepareInsert(time.Now().UTC().Truncate(time.Second))

	metadata, err := jsonColumn(u.Metadata)
	if err != nil {
		return store.MutationResult{}, store.Backend(err)
	}

	var st stmt
	st.set("id", u.ID)
	st.set("username", u.Username)
	st.set("email", u.Email)
	st.set("password_hash", u.PasswordHash)
	st.set("role", u.Role)
	st.set("enabled", u.Enabled)
	st.set("metadata", metadata)
	st.set("created_at", u.CreatedAt)
	st.set("updated_at", u.UpdatedAt)

	res, err := r.db.ExecContext(ctx, st.insertSQL("users"), st.args...)
	if err != nil {
		return store.MutationResult{}, translate(err, userNotFound, "username", "email")
	}
	affected, _ := res.RowsAffected()
	return store.MutationResult{Success: true, Affected: affected, InsertedID: u.ID}, nil
}

func (r *userRepo) Update(ctx context.Context, id string, patch store.UserPatch) (store.MutationResult, error) {
	var st stmt
	if patch.Username != nil {
		st.set("username", *patch.Username)
	}
	if patch.Email != nil {
		st.set("email", *patch.Email)
	}
	if patch.PasswordHash != nil {
		st.set("password_hash", *patch.PasswordHash)
	}
	if patch.Role != nil {
		st.set("role", *patch.Role)
	}
	if patch.Enabled != nil {
		st.set("enabled", *patch.Enabled)
	}
	if patch.Metadata != nil {
		metadata, err := jsonColumn(*patch.Metadata)
		if err != nil {
			return store.MutationResult{}, store.Backend(err)
		}
		st.set("metadata", metadata)
	}
	if st.empty() {
		return store.MutationResult{Success: true, Affected: 0}, nil
	}
	st.set("updated_at", time.Now().UTC().Truncate(time.Second))

	res, err := r.db.ExecContext(ctx, st.updateSQL("users", id), st.args...)
	if err != nil {
		return store.MutationResult{}, translate(err, userNotFound, "username", "email")
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return store.MutationResult{}, store.NotFound(userNotFound)
	}
	return store.MutationResult{Success: true, Affected: affected}, nil
}

func (r *userRepo) Delete(ctx context.Context, id string) (store.MutationResult, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return store.MutationResult{}, store.Backend(err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return store.MutationResult{}, store.NotFound(userNotFound)
	}
	return store.MutationResult{Success: true, Affected: affected}, nil
}
