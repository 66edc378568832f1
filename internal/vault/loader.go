// Package vault loads the full note set from a storage provider into memory.
//
// The loaded slice is the immutable input of one context-pack run: notes
// with malformed front matter are skipped with a diagnostic and the load
// continues, so a single bad file never aborts the pipeline.
package vault

import (
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/oddrun/ansuz/internal/checksum"
	"github.com/oddrun/ansuz/internal/models"
	"github.com/oddrun/ansuz/internal/parser"
	"github.com/oddrun/ansuz/internal/storage"
)

// Stats summarises one load pass.
type Stats struct {
	Loaded  int
	Skipped int
}

// Load reads and parses every Markdown file in the vault.
func Load(store storage.Provider, logger *slog.Logger) ([]models.Note, Stats, error) {
	metas, err := store.List("")
	if err != nil {
		return nil, Stats{}, err
	}

	var (
		notes []models.Note
		stats Stats
	)
	for _, m := range metas {
		data, err := store.Read(m.Path)
		if err != nil {
			logger.Warn("load: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			stats.Skipped++
			continue
		}
		res, err := parser.Parse(data)
		if err != nil {
			logger.Warn("load: parse failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			stats.Skipped++
			continue
		}
		notes = append(notes, toNote(m.Path, data, res))
		stats.Loaded++
	}
	return notes, stats, nil
}

// ByID indexes notes by id, skipping notes without one.
// When ids collide the later-loaded note wins.
func ByID(notes []models.Note) map[string]models.Note {
	byID := make(map[string]models.Note, len(notes))
	for _, n := range notes {
		if n.ID != "" {
			byID[n.ID] = n
		}
	}
	return byID
}

func toNote(path string, data []byte, res *parser.Result) models.Note {
	title := res.Title
	if title == "" {
		// Filesystem-derived fallback: the file name without extension.
		title = strings.TrimSuffix(filepath.Base(path), ".md")
	}
	return models.Note{
		Path:        path,
		ID:          res.ID,
		Type:        res.Type,
		Title:       title,
		Tags:        res.Tags,
		Links:       res.Links,
		Created:     res.Created,
		Updated:     res.Updated,
		Confidence:  res.Confidence,
		Body:        res.Body,
		Frontmatter: res.Frontmatter,
		Checksum:    checksum.Sum(data),
	}
}
