// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package es is the document-store adapter, backed by Elasticsearch.
//
// Records are stored one index per resource with the record ID as document
// ID. Elasticsearch has no secondary unique indexes, so each unique field
// (slug, username, email) is backed by a claim index whose document ID is
// the field value: claims are written with op_type=create, and the 409
// version-conflict the engine returns for an existing ID is the store's
// duplicate-key signal, translated into the shared conflict taxonomy.
// Exactly one of two concurrent creates can win the claim.
package es

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/versocms/verso/internal/model"
	"github.com/versocms/verso/internal/store"
)

// Index names. Claim indices hold one tiny document per claimed value.
const (
	indexUsers     = "verso-users"
	indexPages     = "verso-pages"
	indexPosts     = "verso-blog-posts"
	indexUsernames = "verso-claims-usernames"
	indexEmails    = "verso-claims-emails"
	indexPageSlugs = "verso-claims-page-slugs"
	indexPostSlugs = "verso-claims-post-slugs"
)

// Options configures the document store connection.
type Options struct {
	Addresses []string
	Username  string
	Password  string
}

// Store is the document implementation of store.Store.
type Store struct {
	client *elasticsearch.Client
}

// Open connects to the cluster and verifies it responds.
func Open(opts Options) (*Store, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: opts.Addresses,
		Username:  opts.Username,
		Password:  opts.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("creating elasticsearch client: %w", err)
	}

	res, err := client.Info()
	if err != nil {
		return nil, fmt.Errorf("connecting to elasticsearch: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("elasticsearch info: %s", res.Status())
	}

	return New(client), nil
}

// New wraps an existing client. Used by tests with a stubbed transport.
func New(client *elasticsearch.Client) *Store {
	return &Store{client: client}
}

// Users returns the user repository.
func (s *Store) Users() store.UserRepository { return &userRepo{s: s} }

// Pages returns the page repository.
func (s *Store) Pages() store.ContentRepository[*model.Page] {
	return &contentRepo[*model.Page]{
		s:           s,
		index:       indexPages,
		slugIndex:   indexPageSlugs,
		notFoundMsg: "Page Not Found",
		visible: func() map[string]any {
			return map[string]any{"term": map[string]any{"enabled": true}}
		},
	}
}

// Posts returns the blog post repository.
func (s *Store) Posts() store.ContentRepository[*model.BlogPost] {
	return &contentRepo[*model.BlogPost]{
		s:           s,
		index:       indexPosts,
		slugIndex:   indexPostSlugs,
		notFoundMsg: "Blog Post Not Found",
		visible: func() map[string]any {
			return map[string]any{"bool": map[string]any{"filter": []any{
				map[string]any{"term": map[string]any{"draft": false}},
				map[string]any{"term": map[string]any{"public": true}},
			}}}
		},
	}
}

// Ping verifies the cluster responds.
func (s *Store) Ping(ctx context.Context) error {
	res, err := s.client.Ping(s.client.Ping.WithContext(ctx))
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("elasticsearch ping: %s", res.Status())
	}
	return nil
}

// Close is a no-op; the underlying transport has no persistent resources.
func (s *Store) Close() error { return nil }

// claim is the body of a uniqueness claim document; it points back at the
// record owning the claimed value.
type claim struct {
	OwnerID string `json:"owner_id"`
}

// createClaim atomically claims value in the given index for owner. A 409
// from the engine means the value is taken.
func (s *Store) createClaim(ctx context.Context, index, value, owner, field string) error {
	body, _ := json.Marshal(claim{OwnerID: owner})
	res, err := s.client.Create(index, value, bytes.NewReader(body),
		s.client.Create.WithContext(ctx),
		s.client.Create.WithRefresh("wait_for"),
	)
	if err != nil {
		return store.Backend(err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusConflict {
		return store.Conflict(field)
	}
	if res.IsError() {
		return store.Backend(fmt.Errorf("claiming %s %q: %s", field, value, res.Status()))
	}
	return nil
}

// deleteClaim releases a claimed value. Missing claims are ignored so
// rollbacks and re-deletes stay idempotent.
func (s *Store) deleteClaim(ctx context.Context, index, value string) error {
	res, err := s.client.Delete(index, value,
		s.client.Delete.WithContext(ctx),
		s.client.Delete.WithRefresh("wait_for"),
	)
	if err != nil {
		return store.Backend(err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return store.Backend(fmt.Errorf("releasing claim %q: %s", value, res.Status()))
	}
	return nil
}

// getClaim resolves a claimed value to its owning record ID. ok is false
// when the value is unclaimed.
func (s *Store) getClaim(ctx context.Context, index, value string) (string, bool, error) {
	res, err := s.client.Get(index, value, s.client.Get.WithContext(ctx))
	if err != nil {
		return "", false, store.Backend(err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return "", false, nil
	}
	if res.IsError() {
		return "", false, store.Backend(fmt.Errorf("reading claim %q: %s", value, res.Status()))
	}

	var doc struct {
		Source claim `json:"_source"`
	}
	if err := json.NewDecoder(res.Body).Decode(&doc); err != nil {
		return "", false, store.Backend(err)
	}
	return doc.Source.OwnerID, true, nil
}

// getDoc fetches a record by document ID into out. ok is false on 404.
func (s *Store) getDoc(ctx context.Context, index, id string, out any) (bool, error) {
	res, err := s.client.Get(index, id, s.client.Get.WithContext(ctx))
	if err != nil {
		return false, store.Backend(err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if res.IsError() {
		return false, store.Backend(fmt.Errorf("reading %s/%s: %s", index, id, res.Status()))
	}

	var doc struct {
		Source json.RawMessage `json:"_source"`
	}
	if err := json.NewDecoder(res.Body).Decode(&doc); err != nil {
		return false, store.Backend(err)
	}
	if err := json.Unmarshal(doc.Source, out); err != nil {
		return false, store.Backend(err)
	}
	return true, nil
}

// indexDoc writes a full record under the given document ID.
func (s *Store) indexDoc(ctx context.Context, index, id string, record any) error {
	body, err := json.Marshal(record)
	if err != nil {
		return store.Backend(err)
	}
	res, err := s.client.Index(index, bytes.NewReader(body),
		s.client.Index.WithContext(ctx),
		s.client.Index.WithDocumentID(id),
		s.client.Index.WithRefresh("wait_for"),
	)
	if err != nil {
		return store.Backend(err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return store.Backend(fmt.Errorf("indexing %s/%s: %s", index, id, res.Status()))
	}
	return nil
}

// deleteDoc removes a record. ok is false on 404.
func (s *Store) deleteDoc(ctx context.Context, index, id string) (bool, error) {
	res, err := s.client.Delete(index, id,
		s.client.Delete.WithContext(ctx),
		s.client.Delete.WithRefresh("wait_for"),
	)
	if err != nil {
		return false, store.Backend(err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if res.IsError() {
		return false, store.Backend(fmt.Errorf("deleting %s/%s: %s", index, id, res.Status()))
	}
	return true, nil
}

// search runs a query and decodes each hit's source with decode.
func (s *Store) search(ctx context.Context, index string, query map[string]any, p store.Pagination, decode func(json.RawMessage) error) error {
	body := map[string]any{
		"query": query,
		"sort": []any{
			map[string]any{"created_at": map[string]any{"order": "desc", "unmapped_type": "date"}},
		},
		"from": p.Offset(),
		"size": store.PerPage,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return store.Backend(err)
	}

	res, err := s.client.Search(
		s.client.Search.WithContext(ctx),
		s.client.Search.WithIndex(index),
		s.client.Search.WithBody(&buf),
	)
	if err != nil {
		return store.Backend(err)
	}
	defer res.Body.Close()

	// A search against a not-yet-created index is an empty result, not a
	// failure.
	if res.StatusCode == http.StatusNotFound {
		return nil
	}
	if res.IsError() {
		raw, _ := io.ReadAll(res.Body)
		return store.Backend(fmt.Errorf("searching %s: %s: %s", index, res.Status(), raw))
	}

	var r struct {
		Hits struct {
			Hits []struct {
				Source json.RawMessage `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return store.Backend(err)
	}

	for _, hit := range r.Hits.Hits {
		if err := decode(hit.Source); err != nil {
			return store.Backend(err)
		}
	}
	return nil
}

// matchAll is the empty filter.
func matchAll() map[string]any {
	return map[string]any{"match_all": map[string]any{}}
}
