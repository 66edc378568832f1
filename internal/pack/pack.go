// Package pack assembles a bounded context pack for a question: candidates
// are discovered by link-graph expansion, recency, and keyword scoring,
// then merged, ranked, and rendered under a token budget.
//
// Everything in this package is a pure function of (notes, question,
// params); the note slice is never mutated and no state survives a run.
package pack

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/oddrun/ansuz/internal/models"
)

// Default parameter values, mirrored by the config layer and CLI flags.
const (
	DefaultHops       = 1
	DefaultRecentDays = 30
	DefaultTopK       = 10
	DefaultMaxTokens  = 8000
)

// Params carries the knobs of one context-pack run. Callers supply policy
// here; the pipeline itself enforces no defaults.
type Params struct {
	Question   string
	Seeds      []string
	Hops       int
	RecentDays int
	TopK       int
	MaxTokens  int
	Now        time.Time
}

// Result is the outcome of one context-pack run.
type Result struct {
	Document   string
	Candidates int
	Included   int
	EstTokens  int
}

// Build runs the full pipeline over an already-loaded note set.
func Build(notes []models.Note, p Params, logger *slog.Logger) Result {
	if p.Now.IsZero() {
		p.Now = time.Now()
	}
	terms := Tokenize(p.Question)
	logger.Debug("pack: query terms", slog.Int("count", len(terms)))

	candidates := Assemble(notes, p, terms)
	logger.Info("pack: candidates assembled",
		slog.Int("notes", len(notes)),
		slog.Int("candidates", len(candidates)))

	doc, included, estTokens := Render(candidates, p.Question, p.MaxTokens)
	if dropped := len(candidates) - included; dropped > 0 {
		logger.Info("pack: token budget reached",
			slog.Int("included", included),
			slog.Int("dropped", dropped),
			slog.Int("est_tokens", estTokens))
	}
	return Result{
		Document:   doc,
		Candidates: len(candidates),
		Included:   included,
		EstTokens:  estTokens,
	}
}

var slugRe = regexp.MustCompile(`[^\p{L}\p{N}_]+`)

// OutputPath returns the timestamped, question-slug-derived file path for a
// generated pack, relative to the output directory.
func OutputPath(outDir, question string, now time.Time) string {
	runes := []rune(question)
	if len(runes) > 30 {
		runes = runes[:30]
	}
	slug := strings.Trim(slugRe.ReplaceAllString(string(runes), "_"), "_")
	name := fmt.Sprintf("contextpack_%s_%s.md", now.Format("2006-01-02_150405"), slug)
	return filepath.Join(outDir, name)
}
