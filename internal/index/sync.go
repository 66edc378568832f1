package index

import (
	"log/slog"
	"time"

	"github.com/oddrun/ansuz/internal/checksum"
	"github.com/oddrun/ansuz/internal/parser"
	"github.com/oddrun/ansuz/internal/storage"
)

// Sync walks the vault and brings the index up to date:
//   - new/changed files are parsed and upserted
//   - files removed from disk are deleted from the index
//
// Notes with malformed front matter are skipped with a diagnostic, never
// aborting the sync.
func Sync(db *DB, store storage.Provider, logger *slog.Logger) error {
	metas, err := store.List("")
	if err != nil {
		return err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		disk[m.Path] = struct{}{}

		if checksums[m.Path] == m.Checksum {
			continue
		}

		data, err := store.Read(m.Path)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		if err := IndexFile(db, m.Path, data); err != nil {
			logger.Warn("sync: index failed", slog.String("path", m.Path), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: indexed", slog.String("path", m.Path))
		}
	}

	// Remove stale entries.
	for p := range checksums {
		if _, ok := disk[p]; !ok {
			if err := db.DeleteNote(p); err != nil {
				logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("path", p))
			}
		}
	}

	return nil
}

// IndexFile parses data and upserts it into the DB.
func IndexFile(db *DB, path string, data []byte) error {
	res, err := parser.Parse(data)
	if err != nil {
		return err
	}

	row := NoteRow{
		Path:       path,
		NoteID:     res.ID,
		Type:       res.Type,
		Title:      res.Title,
		Checksum:   checksum.Sum(data),
		Tags:       res.Tags,
		Confidence: res.Confidence,
		UpdatedAt:  time.Now(),
	}
	if !res.Updated.IsZero() {
		row.Updated = res.Updated.Format(parser.DateLayout)
	}

	links := make([]Link, 0, len(res.Links))
	for _, l := range res.Links {
		links = append(links, Link{To: l.To, Rel: l.Rel})
	}
	return db.UpsertNote(row, res.Body, links)
}
