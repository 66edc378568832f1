// Package distill condenses a conversation or working session into a dated
// log note in the vault.
package distill

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/oddrun/ansuz/internal/apperr"
	"github.com/oddrun/ansuz/internal/parser"
	"github.com/oddrun/ansuz/internal/scaffold"
	"github.com/oddrun/ansuz/internal/storage"
)

// Input is the material of one distillation. Only Topic is required; empty
// sections are omitted from the note body.
type Input struct {
	Topic     string
	Context   string
	Decisions string
	Knowledge string
	Tasks     string
	Questions string
	Links     []string
}

// Result describes a written log note.
type Result struct {
	Path string
	ID   string
}

// Create builds the log note for in and writes it under logs/ in the vault.
// Wikilinks found in the section texts are merged into the supplied links,
// deduplicated, and recorded both as front matter link records and in the
// body's Links section. Existing files are not overwritten unless overwrite
// is set.
func Create(store storage.Provider, in Input, now time.Time, overwrite bool) (*Result, error) {
	if strings.TrimSpace(in.Topic) == "" {
		return nil, fmt.Errorf("distill: topic is required")
	}

	dateStr := now.Format("2006-01-02")
	slug := scaffold.Slugify(in.Topic)
	id := fmt.Sprintf("log.%s_%s", dateStr, slug)
	relPath := filepath.Join("logs", fmt.Sprintf("%s_%s.md", dateStr, slug))

	if _, err := store.Read(relPath); err == nil && !overwrite {
		return nil, fmt.Errorf("distill: %s: %w", relPath, apperr.ErrAlreadyExists)
	}

	links := mergeLinks(in)
	content := render(in, id, dateStr, links)
	if err := store.Write(relPath, []byte(content)); err != nil {
		return nil, err
	}
	return &Result{Path: relPath, ID: id}, nil
}

// mergeLinks combines explicit links with wikilinks auto-extracted from all
// section texts, deduplicated and sorted for a stable front matter.
func mergeLinks(in Input) []string {
	seen := make(map[string]struct{})
	for _, l := range in.Links {
		l = strings.TrimSpace(l)
		if l != "" {
			seen[l] = struct{}{}
		}
	}
	allText := strings.Join([]string{in.Context, in.Decisions, in.Knowledge, in.Tasks, in.Questions}, " ")
	for _, l := range parser.ExtractWikilinks(allText) {
		seen[l] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for l := range seen {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

func render(in Input, id, dateStr string, links []string) string {
	var b strings.Builder

	b.WriteString("---\n")
	fmt.Fprintf(&b, "id: %s\n", id)
	b.WriteString("type: log\n")
	fmt.Fprintf(&b, "title: %q\n", dateStr+" — "+in.Topic)
	b.WriteString("aliases: []\n")
	b.WriteString("tags: [\"log/distill\"]\n")
	fmt.Fprintf(&b, "created: %s\n", dateStr)
	fmt.Fprintf(&b, "updated: %s\n", dateStr)
	if len(links) == 0 {
		b.WriteString("links: []\n")
	} else {
		b.WriteString("links:\n")
		for _, l := range links {
			fmt.Fprintf(&b, "  - to: %s\n", l)
		}
	}
	b.WriteString("sources: []\n")
	b.WriteString("---\n\n")

	fmt.Fprintf(&b, "# %s Distill — %s\n", dateStr, in.Topic)
	section(&b, "Context", in.Context)
	section(&b, "Decisions", in.Decisions)
	section(&b, "New Knowledge", in.Knowledge)
	section(&b, "Tasks", in.Tasks)
	section(&b, "Open Questions", in.Questions)

	b.WriteString("\n## Links\n")
	if len(links) == 0 {
		b.WriteString("-\n")
	} else {
		for _, l := range links {
			fmt.Fprintf(&b, "- [[%s]]\n", l)
		}
	}
	return b.String()
}

func section(b *strings.Builder, header, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	fmt.Fprintf(b, "\n## %s\n%s\n", header, text)
}
