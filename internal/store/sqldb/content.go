// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package sqldb

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/versocms/verso/internal/model"
	"github.com/versocms/verso/internal/store"
)

const (
	pageNotFound = "Page Not Found"
	postNotFound = "Blog Post Not Found"
)

// contentStmt builds the shared portion of a content patch. The caller adds
// the table-specific flag columns.
func contentStmt(patch store.ContentPatch) (*stmt, error) {
	var st stmt
	if patch.Name != nil {
		st.set("name", *patch.Name)
	}
	if patch.Slug != nil {
		st.set("slug", *patch.Slug)
	}
	if patch.Content != nil {
		content, err := jsonColumn(*patch.Content)
		if err != nil {
			return nil, err
		}
		st.set("content", content)
	}
	if patch.Meta != nil {
		meta, err := jsonColumn(*patch.Meta)
		if err != nil {
			return nil, err
		}
		st.set("meta", meta)
	}
	if patch.PublishAt != nil {
		st.set("publish_at", patch.PublishAt.UTC().Truncate(time.Second))
	} else if patch.ClearPublishAt {
		st.set("publish_at", nil)
	}
	return &st, nil
}

// runMutation executes a built statement and normalizes the result.
func runMutation(ctx context.Context, db *sql.DB, query, notFoundMsg string, args ...any) (store.MutationResult, error) {
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return store.MutationResult{}, translate(err, notFoundMsg, "slug")
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return store.MutationResult{}, store.NotFound(notFoundMsg)
	}
	return store.MutationResult{Success: true, Affected: affected}, nil
}

// pageRepo implements store.ContentRepository[*model.Page] over the pages
// table.
type pageRepo struct {
	db *sql.DB
}

const pageColumns = "id, name, slug, enabled, content, meta, publish_at, created_at, updated_at"

func scanPage(row interface{ Scan(...any) error }) (*model.Page, error) {
	var p model.Page
	var content, meta string
	var publishAt sql.NullTime
	if err := row.Scan(&p.ID, &p.Name, &p.Slug, &p.Enabled,
		&content, &meta, &publishAt, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if err := jsonScan(content, &p.Content); err != nil {
		return nil, err
	}
	if err := jsonScan(meta, &p.Meta); err != nil {
		return nil, err
	}
	if p.Content == nil {
		p.Content = []json.RawMessage{}
	}
	if publishAt.Valid {
		p.PublishAt = &publishAt.Time
	}
	return &p, nil
}

func (r *pageRepo) FindBySlugOrID(ctx context.Context, key string) (*model.Page, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+pageColumns+" FROM pages WHERE slug = ? OR id = ? LIMIT 1", key, key)
	p, err := scanPage(row)
	if err != nil {
		return nil, translate(err, pageNotFound)
	}
	return p, nil
}

func (r *pageRepo) FindMany(ctx context.Context, f store.ContentFilter, p store.Pagination) ([]*model.Page, error) {
	query := "SELECT " + pageColumns + " FROM pages"
	args := []any{}
	switch {
	case f.VisibleOnly:
		query += " WHERE enabled = ?"
		args = append(args, true)
	case f.DuePublish:
		query += " WHERE publish_at IS NOT NULL AND publish_at <= ?"
		args = append(args, time.Now().UTC())
	}
	query += " ORDER BY created_at DESC, id LIMIT ? OFFSET ?"
	args = append(args, store.PerPage, p.Offset())

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, store.Backend(err)
	}
	defer rows.Close()

	pages := make([]*model.Page, 0, store.PerPage)
	for rows.Next() {
		page, err := scanPage(rows)
		if err != nil {
			return nil, store.Backend(err)
		}
		pages = append(pages, page)
	}
	if err := rows.Err(); err != nil {
		return nil, store.Backend(err)
	}
	return pages, nil
}

func (r *pageRepo) Insert(ctx context.Context, p *model.Page) (store.MutationResult, error) {
	p.PrepareInsert(time.Now().UTC().Truncate(time.Second))

	content, err := jsonColumn(p.Content)
	if err != nil {
		return store.MutationResult{}, store.Backend(err)
	}
	meta, err := jsonColumn(p.Meta)
	if err != nil {
		return store.MutationResult{}, store.Backend(err)
	}

	var st stmt
	st.set("id", p.ID)
	st.set("name", p.Name)
	st.set("slug", p.Slug)
	st.set("enabled", p.Enabled)
	st.set("content", content)
	st.set("meta", meta)
	if p.PublishAt != nil {
		st.set("publish_at", p.PublishAt.UTC().Truncate(time.Second))
	}
	st.set("created_at", p.CreatedAt)
	st.set("updated_at", p.UpdatedAt)

	res, err := r.db.ExecContext(ctx, st.insertSQL("pages"), st.args...)
	if err != nil {
		return store.MutationResult{}, translate(err, pageNotFound, "slug")
	}
	affected, _ := res.RowsAffected()
	return store.MutationResult{Success: true, Affected: affected, InsertedID: p.ID}, nil
}

func (r *pageRepo) Update(ctx context.Context, id string, patch store.ContentPatch) (store.MutationResult, error) {
	st, err := contentStmt(patch)
	if err != nil {
		return store.MutationResult{}, store.Backend(err)
	}
	if patch.Enabled != nil {
		st.set("enabled", *patch.Enabled)
	}
	if st.empty() {
		return store.MutationResult{Success: true, Affected: 0}, nil
	}
	st.set("updated_at", time.Now().UTC().Truncate(time.Second))
	return runMutation(ctx, r.db, st.updateSQL("pages", id), pageNotFound, st.args...)
}

func (r *pageRepo) Delete(ctx context.Context, id string) (store.MutationResult, error) {
	return runMutation(ctx, r.db, "DELETE FROM pages WHERE id = ?", pageNotFound, id)
}

// postRepo implements store.ContentRepository[*model.BlogPost] over the
// blog_posts table.
type postRepo struct {
	db *sql.DB
}

const postColumns = "id, name, slug, draft, public, content, meta, publish_at, created_at, updated_at"

func scanPost(row interface{ Scan(...any) error }) (*model.BlogPost, error) {
	var p model.BlogPost
	var content, meta string
	var publishAt sql.NullTime
	if err := row.Scan(&p.ID, &p.Name, &p.Slug, &p.Draft, &p.Public,
		&content, &meta, &publishAt, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if err := jsonScan(content, &p.Content); err != nil {
		return nil, err
	}
	if err := jsonScan(meta, &p.Meta); err != nil {
		return nil, err
	}
	if p.Content == nil {
		p.Content = []json.RawMessage{}
	}
	if publishAt.Valid {
		p.PublishAt = &publishAt.Time
	}
	return &p, nil
}

func (r *postRepo) FindBySlugOrID(ctx context.Context, key string) (*model.BlogPost, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+postColumns+" FROM blog_posts WHERE slug = ? OR id = ? LIMIT 1", key, key)
	p, err := scanPost(row)
	if err != nil {
		return nil, translate(err, postNotFound)
	}
	return p, nil
}

func (r *postRepo) FindMany(ctx context.Context, f store.ContentFilter, p store.Pagination) ([]*model.BlogPost, error) {
	query := "SELECT " + postColumns + " FROM blog_posts"
	args := []any{}
	switch {
	case f.VisibleOnly:
		query += " WHERE draft = ? AND public = ?"
		args = append(args, false, true)
	case f.DuePublish:
		query += " WHERE publish_at IS NOT NULL AND publish_at <= ?"
		args = append(args, time.Now().UTC())
	}
	query += " ORDER BY created_at DESC, id LIMIT ? OFFSET ?"
	args = append(args, store.PerPage, p.Offset())

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, store.Backend(err)
	}
	defer rows.Close()

	posts := make([]*model.BlogPost, 0, store.PerPage)
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, store.Backend(err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, store.Backend(err)
	}
	return posts, nil
}

func (r *postRepo) Insert(ctx context.Context, p *model.BlogPost) (store.MutationResult, error) {
	p.PrepareInsert(time.Now().UTC().Truncate(time.Second))

	content, err := jsonColumn(p.Content)
	if err != nil {
		return store.MutationResult{}, store.Backend(err)
	}
	meta, err := jsonColumn(p.Meta)
	if err != nil {
		return store.MutationResult{}, store.Backend(err)
	}

	var st stmt
	st.set("id", p.ID)
	st.set("name", p.Name)
	st.set("slug", p.Slug)
	st.set("draft", p.Draft)
	st.set("public", p.Public)
	st.set("content", content)
	st.set("meta", meta)
	if p.PublishAt != nil {
		st.set("publish_at", p.PublishAt.UTC().Truncate(time.Second))
	}
	st.set("created_at", p.CreatedAt)
	st.set("updated_at", p.UpdatedAt)

	res, err := r.db.ExecContext(ctx, st.insertSQL("blog_posts"), st.args...)
	if err != nil {
		return store.MutationResult{}, translate(err, postNotFound, "slug")
	}
	affected, _ := res.RowsAffected()
	return store.MutationResult{Success: true, Affected: affected, InsertedID: p.ID}, nil
}

func (r *postRepo) Update(ctx context.Context, id string, patch store.ContentPatch) (store.MutationResult, error) {
	st, err := contentStmt(patch)
	if err != nil {
		return store.MutationResult{}, store.Backend(err)
	}
	if patch.Draft != nil {
		st.set("draft", *patch.Draft)
	}
	if patch.Public != nil {
		st.set("public", *patch.Public)
	}
	if st.empty() {
		return store.MutationResult{Success: true, Affected: 0}, nil
	}
	st.set("updated_at", time.Now().UTC().Truncate(time.Second))
	return runMutation(ctx, r.db, st.updateSQL("blog_posts", id), postNotFound, st.args...)
}

func (r *postRepo) Delete(ctx context.Context, id string) (store.MutationResult, error) {
	return runMutation(ctx, r.db, "DELETE FROM blog_posts WHERE id = ?", postNotFound, id)
}
