// Package scaffold creates new vault notes from per-type Markdown templates.
//
// Templates are plain text with {{slug}}, {{title}}, and {{date}}
// placeholders; no template engine semantics beyond literal substitution.
package scaffold

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/oddrun/ansuz/internal/apperr"
	"github.com/oddrun/ansuz/internal/storage"
)

// typeFolders maps a note type to its vault folder.
var typeFolders = map[string]string{
	"topic":    "topics",
	"org":      "orgs",
	"person":   "people",
	"project":  "projects",
	"decision": "decisions",
	"log":      "logs",
}

// Types returns the supported note types in a stable order.
func Types() []string {
	return []string{"topic", "org", "person", "project", "decision", "log"}
}

var slugCleanRe = regexp.MustCompile(`[^\p{L}\p{N}\s_-]`)
var spaceRe = regexp.MustCompile(`\s+`)

// Slugify converts a title into a file-name-safe slug.
func Slugify(title string) string {
	s := slugCleanRe.ReplaceAllString(title, "")
	s = spaceRe.ReplaceAllString(strings.TrimSpace(s), "_")
	return strings.ToLower(s)
}

// RenderTemplate substitutes {{key}} placeholders with the given variables.
func RenderTemplate(tmpl string, vars map[string]string) string {
	out := tmpl
	for key, value := range vars {
		out = strings.ReplaceAll(out, "{{"+key+"}}", value)
	}
	return out
}

// Result describes a scaffolded note.
type Result struct {
	Path string // vault-relative path of the new note
	ID   string // canonical id: <type>.<slug>
}

// Create renders the template for noteType and writes the new note into the
// vault. An empty slug is derived from the title. Existing files are not
// overwritten unless overwrite is set.
func Create(store storage.Provider, templatesDir, noteType, title, slug string, now time.Time, overwrite bool) (*Result, error) {
	folder, ok := typeFolders[noteType]
	if !ok {
		return nil, fmt.Errorf("scaffold: unsupported note type %q (available: %s)",
			noteType, strings.Join(Types(), ", "))
	}

	if slug == "" {
		slug = Slugify(title)
	}
	if slug == "" {
		return nil, fmt.Errorf("scaffold: cannot derive slug from title %q", title)
	}

	tmplPath := filepath.Join(templatesDir, noteType+".md")
	tmpl, err := os.ReadFile(tmplPath)
	if err != nil {
		return nil, fmt.Errorf("scaffold: read template: %w", err)
	}

	content := RenderTemplate(string(tmpl), map[string]string{
		"slug":  slug,
		"title": title,
		"date":  now.Format("2006-01-02"),
	})

	relPath := filepath.Join(folder, slug+".md")
	if _, err := store.Read(relPath); err == nil && !overwrite {
		return nil, fmt.Errorf("scaffold: %s: %w", relPath, apperr.ErrAlreadyExists)
	}
	if err := store.Write(relPath, []byte(content)); err != nil {
		return nil, err
	}

	return &Result{Path: relPath, ID: noteType + "." + slug}, nil
}
