package vault

import (
	"fmt"
	"log/slog"
	"testing"

	"github.com/oddrun/ansuz/internal/storage"
)

func testLogger() *slog.Logger {
	return slog.Default()
}

func TestLoad_SkipsMalformedFrontmatter(t *testing.T) {
	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}

	for i := 0; i < 9; i++ {
		content := fmt.Sprintf("---\nid: note.%d\ntitle: Note %d\n---\nbody %d\n", i, i, i)
		if err := store.Write(fmt.Sprintf("n%d.md", i), []byte(content)); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}
	// One file with syntactically invalid front matter.
	if err := store.Write("bad.md", []byte("---\n: bad: yaml: {{{\n---\nbody\n")); err != nil {
		t.Fatalf("Write: %v", err)
	}

	notes, stats, err := Load(store, testLogger())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(notes) != 9 {
		t.Errorf("len(notes) = %d, want 9", len(notes))
	}
	if stats.Skipped != 1 {
		t.Errorf("skipped = %d, want 1", stats.Skipped)
	}
}

func TestLoad_TitleFallsBackToFileName(t *testing.T) {
	dir := t.TempDir()
	store, _ := storage.NewFS(dir)
	_ = store.Write("topics/untitled_note.md", []byte("just a body, no heading\n"))

	notes, _, err := Load(store, testLogger())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(notes) != 1 {
		t.Fatalf("len(notes) = %d", len(notes))
	}
	if notes[0].Title != "untitled_note" {
		t.Errorf("title = %q, want untitled_note", notes[0].Title)
	}
}

func TestByID_LaterLoadedWins(t *testing.T) {
	dir := t.TempDir()
	store, _ := storage.NewFS(dir)
	_ = store.Write("a.md", []byte("---\nid: dup\ntitle: First\n---\n"))
	_ = store.Write("b.md", []byte("---\nid: dup\ntitle: Second\n---\n"))

	notes, _, err := Load(store, testLogger())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	byID := ByID(notes)
	if len(byID) != 1 {
		t.Fatalf("len(byID) = %d, want 1", len(byID))
	}
	// List walks in lexical order, so b.md is loaded after a.md.
	if byID["dup"].Title != "Second" {
		t.Errorf("title = %q, want Second", byID["dup"].Title)
	}
}
