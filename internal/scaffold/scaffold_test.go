package scaffold

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/oddrun/ansuz/internal/apperr"
	"github.com/oddrun/ansuz/internal/storage"
)

func testSetup(t *testing.T) (storage.Provider, string) {
	t.Helper()
	store, err := storage.NewFS(t.TempDir())
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	templatesDir := t.TempDir()
	tmpl := "---\nid: topic.{{slug}}\ntype: topic\ntitle: \"{{title}}\"\ncreated: {{date}}\nupdated: {{date}}\n---\n# {{title}}\n\n## Summary\n\n## Key Points\n"
	if err := os.WriteFile(filepath.Join(templatesDir, "topic.md"), []byte(tmpl), 0o644); err != nil {
		t.Fatal(err)
	}
	return store, templatesDir
}

func TestSlugify(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Machine Learning", "machine_learning"},
		{"  spaced   out  ", "spaced_out"},
		{"Keep-dash_and_digits 42", "keep-dash_and_digits_42"},
		{"strip!? punctuation.", "strip_punctuation"},
	}
	for _, tt := range tests {
		if got := Slugify(tt.in); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRenderTemplate(t *testing.T) {
	got := RenderTemplate("id: {{slug}} on {{date}}: {{title}}", map[string]string{
		"slug": "s", "date": "2025-01-02", "title": "T",
	})
	if got != "id: s on 2025-01-02: T" {
		t.Errorf("rendered = %q", got)
	}
}

func TestCreate(t *testing.T) {
	store, templatesDir := testSetup(t)
	now := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)

	res, err := Create(store, templatesDir, "topic", "Machine Learning", "", now, false)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if res.Path != "topics/machine_learning.md" {
		t.Errorf("path = %q", res.Path)
	}
	if res.ID != "topic.machine_learning" {
		t.Errorf("id = %q", res.ID)
	}

	data, err := store.Read(res.Path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, "id: topic.machine_learning") {
		t.Errorf("content missing id:\n%s", content)
	}
	if !strings.Contains(content, "created: 2025-06-30") {
		t.Errorf("content missing date:\n%s", content)
	}
}

func TestCreate_RefusesOverwrite(t *testing.T) {
	store, templatesDir := testSetup(t)
	now := time.Now()

	if _, err := Create(store, templatesDir, "topic", "Dup", "", now, false); err != nil {
		t.Fatalf("first Create: %v", err)
	}
	_, err := Create(store, templatesDir, "topic", "Dup", "", now, false)
	if !errors.Is(err, apperr.ErrAlreadyExists) {
		t.Errorf("err = %v, want ErrAlreadyExists", err)
	}
	// Overwrite flag bypasses the check.
	if _, err := Create(store, templatesDir, "topic", "Dup", "", now, true); err != nil {
		t.Errorf("overwrite Create: %v", err)
	}
}

func TestCreate_UnknownType(t *testing.T) {
	store, templatesDir := testSetup(t)
	if _, err := Create(store, templatesDir, "widget", "X", "", time.Now(), false); err == nil {
		t.Error("expected error for unsupported type")
	}
}

func TestCreate_MissingTemplate(t *testing.T) {
	store, templatesDir := testSetup(t)
	if _, err := Create(store, templatesDir, "person", "X", "", time.Now(), false); err == nil {
		t.Error("expected error for missing template file")
	}
}
