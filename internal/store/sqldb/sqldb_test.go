package sqldb

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/versocms/verso/internal/model"
	"github.com/versocms/verso/internal/store"
)

// testStore creates a Store backed by an in-memory SQLite database.
func testStore(t *testing.T) *Store {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	// A single connection keeps the in-memory database alive and shared.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	if err := Migrate(db, DriverSQLite); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return New(db, DriverSQLite)
}

func testUser(name string) *model.User {
	return &model.User{
		Username:     name,
		Email:        name + "@example.com",
		PasswordHash: "$2a$12$fakefakefakefakefakefake",
		Role:         model.RoleSubscriber,
		Enabled:      true,
		Metadata:     map[string]any{"theme": "dark"},
	}
}

func TestUserInsertAndFind(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	users := s.Users()

	u := testUser("alice")
	res, err := users.Insert(ctx, u)
	if err != nil {
		t.Fatalf("Insert() error: %v", err)
	}
	if !res.Success || res.InsertedID == "" {
		t.Fatalf("Insert() result = %+v", res)
	}

	got, err := users.FindByID(ctx, res.InsertedID)
	if err != nil {
		t.Fatalf("FindByID() error: %v", err)
	}
	if got.Username != "alice" || got.Email != "alice@example.com" {
		t.Errorf("FindByID() = %+v", got)
	}
	if got.Metadata["theme"] != "dark" {
		t.Errorf("metadata did not round-trip: %v", got.Metadata)
	}
	if got.CreatedAt.IsZero() || got.UpdatedAt.IsZero() {
		t.Error("timestamps missing after round-trip")
	}

	byName, err := users.FindByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("FindByUsername() error: %v", err)
	}
	if byName.ID != got.ID {
		t.Errorf("FindByUsername() ID = %q, want %q", byName.ID, got.ID)
	}
}

func TestUserDuplicateConflicts(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	users := s.Users()

	if _, err := users.Insert(ctx, testUser("bob")); err != nil {
		t.Fatal(err)
	}

	dupUsername := testUser("bob")
	dupUsername.Email = "other@example.com"
	_, err := users.Insert(ctx, dupUsername)
	var se *store.Error
	if !asStoreError(err, &se) || se.Kind != store.KindConflict || se.Field != "username" {
		t.Errorf("duplicate username error = %v, want conflict on username", err)
	}

	dupEmail := testUser("carol")
	dupEmail.Email = "bob@example.com"
	_, err = users.Insert(ctx, dupEmail)
	if !asStoreError(err, &se) || se.Kind != store.KindConflict || se.Field != "email" {
		t.Errorf("duplicate email error = %v, want conflict on email", err)
	}
}

func TestUserPartialUpdate(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	users := s.Users()

	res, err := users.Insert(ctx, testUser("dave"))
	if err != nil {
		t.Fatal(err)
	}

	email := "new@example.com"
	if _, err := users.Update(ctx, res.InsertedID, store.UserPatch{Email: &email}); err != nil {
		t.Fatalf("Update() error: %v", err)
	}

	got, err := users.FindByID(ctx, res.InsertedID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Email != "new@example.com" {
		t.Errorf("email = %q after patch", got.Email)
	}
	// Unset fields must survive the patch untouched.
	if got.Username != "dave" || got.Role != model.RoleSubscriber || !got.Enabled {
		t.Errorf("patch clobbered unset fields: %+v", got)
	}
	if got.Metadata["theme"] != "dark" {
		t.Errorf("patch clobbered metadata: %v", got.Metadata)
	}
}

func TestUserDeleteTwice(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	users := s.Users()

	res, err := users.Insert(ctx, testUser("erin"))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := users.Delete(ctx, res.InsertedID); err != nil {
		t.Fatalf("first Delete() error: %v", err)
	}
	_, err = users.Delete(ctx, res.InsertedID)
	if !store.IsKind(err, store.KindNotFound) {
		t.Errorf("second Delete() error = %v, want not found", err)
	}
}

func TestUserUpdateMissing(t *testing.T) {
	s := testStore(t)
	role := model.RoleEditor
	_, err := s.Users().Update(context.Background(), "no-such-id", store.UserPatch{Role: &role})
	if !store.IsKind(err, store.KindNotFound) {
		t.Errorf("Update() on missing user = %v, want not found", err)
	}
}

func testPage(slug string, enabled bool) *model.Page {
	return &model.Page{
		Name:    "Page " + slug,
		Slug:    slug,
		Enabled: enabled,
		Content: []json.RawMessage{json.RawMessage(`{"type":"text","value":"hi"}`)},
		Meta:    map[string]any{"title": slug},
	}
}

func TestPageRoundTrip(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	pages := s.Pages()

	res, err := pages.Insert(ctx, testPage("home", true))
	if err != nil {
		t.Fatalf("Insert() error: %v", err)
	}

	bySlug, err := pages.FindBySlugOrID(ctx, "home")
	if err != nil {
		t.Fatalf("FindBySlugOrID(slug) error: %v", err)
	}
	byID, err := pages.FindBySlugOrID(ctx, res.InsertedID)
	if err != nil {
		t.Fatalf("FindBySlugOrID(id) error: %v", err)
	}
	if bySlug.ID != byID.ID {
		t.Error("slug and id lookup disagree")
	}
	if len(bySlug.Content) != 1 {
		t.Errorf("content blocks = %d, want 1", len(bySlug.Content))
	}
}

func TestPageDuplicateSlug(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	pages := s.Pages()

	if _, err := pages.Insert(ctx, testPage("about", true)); err != nil {
		t.Fatal(err)
	}
	_, err := pages.Insert(ctx, testPage("about", false))
	var se *store.Error
	if !asStoreError(err, &se) || se.Kind != store.KindConflict || se.Field != "slug" {
		t.Errorf("duplicate slug error = %v, want conflict on slug", err)
	}
}

// Simultaneous inserts of the same unique value must resolve to exactly
// one winner; the loser gets a conflict naming the field, never a raw
// driver error or a double success.
func TestConcurrentDuplicateInsert(t *testing.T) {
	t.Run("page slug", func(t *testing.T) {
		s := testStore(t)
		errs := make([]error, 2)

		var wg sync.WaitGroup
		for i := 0; i < 2; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, errs[i] = s.Pages().Insert(context.Background(), testPage("landing", true))
			}(i)
		}
		wg.Wait()

		assertOneConflict(t, errs, "slug")
	})

	t.Run("username", func(t *testing.T) {
		s := testStore(t)
		errs := make([]error, 2)

		var wg sync.WaitGroup
		for i := 0; i < 2; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, errs[i] = s.Users().Insert(context.Background(), testUser("frank"))
			}(i)
		}
		wg.Wait()

		// Both unique fields collide; the constraint hit first decides
		// which one the conflict names.
		assertOneConflict(t, errs, "username", "email")
	})
}

func assertOneConflict(t *testing.T, errs []error, fields ...string) {
	t.Helper()
	var successes, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			successes++
		case store.IsKind(err, store.KindConflict):
			conflicts++
			se := store.AsError(err)
			ok := false
			for _, f := range fields {
				if se.Field == f {
					ok = true
				}
			}
			if !ok {
				t.Errorf("conflict field = %q, want one of %v", se.Field, fields)
			}
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if successes != 1 || conflicts != 1 {
		t.Errorf("successes = %d, conflicts = %d, want exactly one of each", successes, conflicts)
	}
}

func TestPageVisibilityFilter(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	pages := s.Pages()

	for i := 0; i < 3; i++ {
		if _, err := pages.Insert(ctx, testPage(fmt.Sprintf("enabled-%d", i), true)); err != nil {
			t.Fatal(err)
		}
	}
	for i := 0; i < 2; i++ {
		if _, err := pages.Insert(ctx, testPage(fmt.Sprintf("disabled-%d", i), false)); err != nil {
			t.Fatal(err)
		}
	}

	visible, err := pages.FindMany(ctx, store.ContentFilter{VisibleOnly: true}, store.Pagination{Page: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(visible) != 3 {
		t.Errorf("visible pages = %d, want 3", len(visible))
	}
	for _, p := range visible {
		if !p.Enabled {
			t.Errorf("disabled page %q leaked through the filter", p.Slug)
		}
	}

	all, err := pages.FindMany(ctx, store.ContentFilter{}, store.Pagination{Page: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 5 {
		t.Errorf("unfiltered pages = %d, want 5", len(all))
	}
}

func TestPostVisibilityFilter(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	posts := s.Posts()

	insert := func(slug string, draft, public bool) {
		t.Helper()
		_, err := posts.Insert(ctx, &model.BlogPost{
			Name: slug, Slug: slug, Draft: draft, Public: public,
			Content: []json.RawMessage{},
		})
		if err != nil {
			t.Fatal(err)
		}
	}
	insert("published", false, true)
	insert("draft", true, true)
	insert("private", false, false)

	visible, err := posts.FindMany(ctx, store.ContentFilter{VisibleOnly: true}, store.Pagination{Page: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(visible) != 1 || visible[0].Slug != "published" {
		t.Errorf("visible posts = %+v, want only published", visible)
	}
}

func TestPagePartialUpdate(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	pages := s.Pages()

	res, err := pages.Insert(ctx, testPage("docs", false))
	if err != nil {
		t.Fatal(err)
	}

	enabled := true
	if _, err := pages.Update(ctx, res.InsertedID, store.ContentPatch{Enabled: &enabled}); err != nil {
		t.Fatalf("Update() error: %v", err)
	}

	got, err := pages.FindBySlugOrID(ctx, "docs")
	if err != nil {
		t.Fatal(err)
	}
	if !got.Enabled {
		t.Error("enabled flag not updated")
	}
	if got.Name != "Page docs" || got.Slug != "docs" || len(got.Content) != 1 {
		t.Errorf("patch clobbered unset fields: %+v", got)
	}
	if !got.UpdatedAt.After(got.CreatedAt) && !got.UpdatedAt.Equal(got.CreatedAt) {
		t.Error("updated_at not refreshed")
	}
}

func TestPagination(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	pages := s.Pages()

	for i := 0; i < store.PerPage+5; i++ {
		if _, err := pages.Insert(ctx, testPage(fmt.Sprintf("page-%03d", i), true)); err != nil {
			t.Fatal(err)
		}
	}

	first, err := pages.FindMany(ctx, store.ContentFilter{}, store.Pagination{Page: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(first) != store.PerPage {
		t.Errorf("page 1 size = %d, want %d", len(first), store.PerPage)
	}

	second, err := pages.FindMany(ctx, store.ContentFilter{}, store.Pagination{Page: 2})
	if err != nil {
		t.Fatal(err)
	}
	if len(second) != 5 {
		t.Errorf("page 2 size = %d, want 5", len(second))
	}
}

func asStoreError(err error, out **store.Error) bool {
	return errors.As(err, out)
}
