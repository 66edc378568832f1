// Package noteservice is the application layer behind the HTTP and MCP
// surfaces: vault CRUD with optimistic concurrency, index-backed queries,
// and context-pack runs over the live note set.
package noteservice

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/oddrun/ansuz/internal/apperr"
	"github.com/oddrun/ansuz/internal/checksum"
	"github.com/oddrun/ansuz/internal/distill"
	"github.com/oddrun/ansuz/internal/index"
	"github.com/oddrun/ansuz/internal/models"
	"github.com/oddrun/ansuz/internal/pack"
	"github.com/oddrun/ansuz/internal/parser"
	"github.com/oddrun/ansuz/internal/scaffold"
	"github.com/oddrun/ansuz/internal/storage"
	"github.com/oddrun/ansuz/internal/vault"
)

// Service coordinates the vault store and the SQLite index. Writes go to
// the store first; the index follows (the watcher or next sync heals any
// gap if an index update fails).
type Service struct {
	store        storage.Provider
	db           *index.DB
	logger       *slog.Logger
	templatesDir string
}

// NewService creates a Service.
func NewService(store storage.Provider, db *index.DB, templatesDir string, logger *slog.Logger) *Service {
	return &Service{
		store:        store,
		db:           db,
		logger:       logger,
		templatesDir: templatesDir,
	}
}

func validateNotePath(path string) error {
	if path == "" {
		return fmt.Errorf("noteservice: path is required")
	}
	if !strings.HasSuffix(path, ".md") {
		return fmt.Errorf("noteservice: path must end in .md: %s", path)
	}
	return nil
}

// GetNote reads a single note from the vault and parses it.
func (s *Service) GetNote(ctx context.Context, path string) (*models.Note, error) {
	if err := validateNotePath(path); err != nil {
		return nil, err
	}
	data, err := s.store.Read(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, apperr.ErrNotFound)
	}
	res, err := parser.Parse(data)
	if err != nil {
		return nil, err
	}
	n := models.Note{
		Path:        path,
		ID:          res.ID,
		Type:        res.Type,
		Title:       res.Title,
		Tags:        res.Tags,
		Links:       res.Links,
		Created:     res.Created,
		Updated:     res.Updated,
		Confidence:  res.Confidence,
		Body:        res.Body,
		Frontmatter: res.Frontmatter,
		Checksum:    checksum.Sum(data),
	}
	return &n, nil
}

// CreateNote writes a new note. Fails with ErrAlreadyExists when the path
// is taken.
func (s *Service) CreateNote(ctx context.Context, path string, content []byte) (*models.Note, error) {
	if err := validateNotePath(path); err != nil {
		return nil, err
	}
	if _, err := s.store.Read(path); err == nil {
		return nil, fmt.Errorf("%s: %w", path, apperr.ErrAlreadyExists)
	}
	// Reject malformed front matter before anything hits disk.
	if _, err := parser.Parse(content); err != nil {
		return nil, err
	}
	if err := s.store.Write(path, content); err != nil {
		return nil, err
	}
	s.reindex(path, content)
	return s.GetNote(ctx, path)
}

// UpdateNote overwrites an existing note. When ifMatch is non-empty it must
// equal the current content checksum, otherwise the update is rejected with
// ErrConflict.
func (s *Service) UpdateNote(ctx context.Context, path string, content []byte, ifMatch string) (*models.Note, error) {
	if err := validateNotePath(path); err != nil {
		return nil, err
	}
	current, err := s.store.Read(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, apperr.ErrNotFound)
	}
	if ifMatch != "" && checksum.Sum(current) != ifMatch {
		return nil, fmt.Errorf("%s: %w", path, apperr.ErrConflict)
	}
	if _, err := parser.Parse(content); err != nil {
		return nil, err
	}
	if err := s.store.Write(path, content); err != nil {
		return nil, err
	}
	s.reindex(path, content)
	return s.GetNote(ctx, path)
}

// DeleteNote removes a note from the vault and the index.
func (s *Service) DeleteNote(ctx context.Context, path string) error {
	if err := validateNotePath(path); err != nil {
		return err
	}
	if _, err := s.store.Read(path); err != nil {
		return fmt.Errorf("%s: %w", path, apperr.ErrNotFound)
	}
	if err := s.store.Delete(path); err != nil {
		return err
	}
	if err := s.db.DeleteNote(path); err != nil {
		s.logger.Warn("service: index delete failed", slog.String("path", path), slog.String("error", err.Error()))
	}
	return nil
}

// ListNotes returns a page of indexed notes.
func (s *Service) ListNotes(ctx context.Context, limit, offset int, tag, sort string) ([]index.NoteRow, int, error) {
	return s.db.ListNotes(limit, offset, tag, sort)
}

// Search runs a full-text (or fallback) search over the index.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]index.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("noteservice: search query is required")
	}
	return s.db.Search(query, limit)
}

// Graph returns the whole knowledge graph.
func (s *Service) Graph(ctx context.Context) ([]index.GraphNode, []index.GraphLink, error) {
	return s.db.Graph()
}

// Backlinks returns ids of notes linking to target.
func (s *Service) Backlinks(ctx context.Context, target string) ([]string, error) {
	if strings.TrimSpace(target) == "" {
		return nil, fmt.Errorf("noteservice: backlink target is required")
	}
	return s.db.Backlinks(target)
}

// Pack loads the full vault and runs the context-pack pipeline.
func (s *Service) Pack(ctx context.Context, p pack.Params) (pack.Result, error) {
	notes, stats, err := vault.Load(s.store, s.logger)
	if err != nil {
		return pack.Result{}, err
	}
	s.logger.Info("service: vault loaded",
		slog.Int("loaded", stats.Loaded),
		slog.Int("skipped", stats.Skipped))
	return pack.Build(notes, p, s.logger), nil
}

// ScaffoldNote creates a new note from a type template.
func (s *Service) ScaffoldNote(ctx context.Context, noteType, title, slug string, now time.Time, overwrite bool) (*scaffold.Result, error) {
	res, err := scaffold.Create(s.store, s.templatesDir, noteType, title, slug, now, overwrite)
	if err != nil {
		return nil, err
	}
	s.reindexPath(res.Path)
	return res, nil
}

// DistillLog writes a dated session log note.
func (s *Service) DistillLog(ctx context.Context, in distill.Input, now time.Time, overwrite bool) (*distill.Result, error) {
	res, err := distill.Create(s.store, in, now, overwrite)
	if err != nil {
		return nil, err
	}
	s.reindexPath(res.Path)
	return res, nil
}

func (s *Service) reindexPath(path string) {
	data, err := s.store.Read(path)
	if err != nil {
		s.logger.Warn("service: reindex read failed", slog.String("path", path), slog.String("error", err.Error()))
		return
	}
	s.reindex(path, data)
}

func (s *Service) reindex(path string, content []byte) {
	if err := index.IndexFile(s.db, path, content); err != nil {
		s.logger.Warn("service: reindex failed", slog.String("path", path), slog.String("error", err.Error()))
	}
}
