package validate

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/versocms/verso/internal/store"
)

func TestSlug(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr string // substring of the expected failure message
	}{
		{
			name: "valid slug",
			raw:  `"hello-world-42"`,
			want: "hello-world-42",
		},
		{
			name: "single character",
			raw:  `"a"`,
			want: "a",
		},
		{
			name: "consecutive hyphens allowed",
			raw:  `"home--page"`,
			want: "home--page",
		},
		{
			name:    "uppercase rejected",
			raw:     `"Home"`,
			wantErr: "invalid characters",
		},
		{
			name:    "space rejected",
			raw:     `"home page"`,
			wantErr: "invalid characters",
		},
		{
			name:    "punctuation rejected",
			raw:     `"home.page"`,
			wantErr: "invalid characters",
		},
		{
			name:    "empty rejected",
			raw:     `""`,
			wantErr: "invalid length",
		},
		{
			name:    "over-length rejected",
			raw:     `"` + strings.Repeat("a", 513) + `"`,
			wantErr: "invalid length",
		},
		{
			name: "max length accepted",
			raw:  `"` + strings.Repeat("a", 512) + `"`,
			want: strings.Repeat("a", 512),
		},
		{
			name:    "number rejected as wrong type",
			raw:     `42`,
			wantErr: "must be a string",
		},
		{
			name:    "object rejected as wrong type",
			raw:     `{"slug":"x"}`,
			wantErr: "must be a string",
		},
		{
			name:    "null rejected as wrong type",
			raw:     `null`,
			wantErr: "must be a string",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Slug(json.RawMessage(tt.raw))
			if tt.wantErr != "" {
				if err == nil {
					t.Fatalf("Slug(%s) = %q, want error containing %q", tt.raw, got, tt.wantErr)
				}
				if !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("Slug(%s) error = %q, want substring %q", tt.raw, err, tt.wantErr)
				}
				if !store.IsKind(err, store.KindValidation) {
					t.Errorf("Slug(%s) error kind is not validation", tt.raw)
				}
				return
			}
			if err != nil {
				t.Fatalf("Slug(%s) unexpected error: %v", tt.raw, err)
			}
			if got != tt.want {
				t.Errorf("Slug(%s) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestSlugFailureMessagesAreDistinct(t *testing.T) {
	_, typeErr := Slug(json.RawMessage(`1`))
	_, lenErr := Slug(json.RawMessage(`""`))
	_, charErr := Slug(json.RawMessage(`"Bad Slug"`))

	msgs := map[string]bool{
		typeErr.Error(): true,
		lenErr.Error():  true,
		charErr.Error(): true,
	}
	if len(msgs) != 3 {
		t.Errorf("expected three distinct slug failure messages, got %v", msgs)
	}
}

func TestName(t *testing.T) {
	if _, err := Name(json.RawMessage(`"Home"`)); err != nil {
		t.Errorf("valid name rejected: %v", err)
	}
	if _, err := Name(json.RawMessage(`""`)); err == nil {
		t.Error("empty name accepted")
	}
	if _, err := Name(json.RawMessage(`true`)); err == nil {
		t.Error("boolean name accepted")
	}
	long := `"` + strings.Repeat("x", 513) + `"`
	if _, err := Name(json.RawMessage(long)); err == nil {
		t.Error("over-length name accepted")
	}
	if _, err := Name(json.RawMessage(`null`)); err == nil || !strings.Contains(err.Error(), "must be a string") {
		t.Errorf("null name error = %v, want the type failure", err)
	}
}

func TestFlag(t *testing.T) {
	b, err := Flag(json.RawMessage(`true`), "enabled")
	if err != nil || !b {
		t.Errorf("Flag(true) = %v, %v", b, err)
	}
	if _, err := Flag(json.RawMessage(`"true"`), "enabled"); err == nil {
		t.Error("string flag accepted")
	}
	if _, err := Flag(json.RawMessage(`1`), "draft"); err == nil {
		t.Error("numeric flag accepted")
	}
	if _, err := Flag(json.RawMessage(`"x"`), "draft"); err == nil || !strings.Contains(err.Error(), "draft") {
		t.Errorf("flag error does not name the field: %v", err)
	}
	if _, err := Flag(json.RawMessage(`null`), "enabled"); err == nil {
		t.Error("null flag accepted")
	}
}

func TestContent(t *testing.T) {
	blocks, err := Content(json.RawMessage(`[{"type":"text"},{"type":"image"}]`))
	if err != nil {
		t.Fatalf("valid content rejected: %v", err)
	}
	if len(blocks) != 2 {
		t.Errorf("expected 2 blocks, got %d", len(blocks))
	}
	if _, err := Content(json.RawMessage(`[]`)); err != nil {
		t.Errorf("empty array rejected: %v", err)
	}
	if _, err := Content(json.RawMessage(`{"type":"text"}`)); err == nil {
		t.Error("object content accepted")
	}
	if _, err := Content(json.RawMessage(`"text"`)); err == nil {
		t.Error("string content accepted")
	}
	if _, err := Content(json.RawMessage(`null`)); err == nil {
		t.Error("null content accepted")
	}
}

func TestPassword(t *testing.T) {
	if err := Password("12345678"); err != nil {
		t.Errorf("8-char password rejected: %v", err)
	}
	if err := Password("1234567"); err == nil {
		t.Error("7-char password accepted")
	}
}
