package sqldb

import (
	"errors"
	"testing"

	"github.com/go-sql-driver/mysql"

	"github.com/versocms/verso/internal/store"
)

func TestStmtInsertSQL(t *testing.T) {
	var st stmt
	st.set("id", "abc")
	st.set("name", "Home")
	st.set("enabled", true)

	got := st.insertSQL("pages")
	want := "INSERT INTO pages (id, name, enabled) VALUES (?, ?, ?)"
	if got != want {
		t.Errorf("insertSQL() = %q, want %q", got, want)
	}
	if len(st.args) != 3 {
		t.Errorf("args = %d, want 3", len(st.args))
	}
}

func TestStmtUpdateSQLOnlySetColumns(t *testing.T) {
	var st stmt
	st.set("email", "a@b.c")

	got := st.updateSQL("users", "u-1")
	want := "UPDATE users SET email = ? WHERE id = ?"
	if got != want {
		t.Errorf("updateSQL() = %q, want %q", got, want)
	}
	if len(st.args) != 2 || st.args[1] != "u-1" {
		t.Errorf("args = %v, want [a@b.c u-1]", st.args)
	}
}

func TestConflictFieldMySQL(t *testing.T) {
	err := &mysql.MySQLError{
		Number:  1062,
		Message: "Duplicate entry 'alice' for key 'users.users_username'",
	}
	field, ok := conflictField(err, []string{"username", "email"})
	if !ok || field != "username" {
		t.Errorf("conflictField() = %q, %v", field, ok)
	}

	other := &mysql.MySQLError{Number: 1146, Message: "Table 'x' doesn't exist"}
	if _, ok := conflictField(other, []string{"username"}); ok {
		t.Error("non-duplicate MySQL error classified as conflict")
	}
}

func TestConflictFieldSQLite(t *testing.T) {
	err := errors.New("UNIQUE constraint failed: pages.slug")
	field, ok := conflictField(err, []string{"slug"})
	if !ok || field != "slug" {
		t.Errorf("conflictField() = %q, %v", field, ok)
	}
}

func TestTranslateUnknownErrorIsBackend(t *testing.T) {
	err := translate(errors.New("disk on fire"), "Not Found", "slug")
	se := store.AsError(err)
	if se.Kind != store.KindBackend {
		t.Errorf("kind = %v, want backend", se.Kind)
	}
	if se.Message != "Internal Server Error" {
		t.Errorf("client message %q leaks internals", se.Message)
	}
}
