// Package parser extracts front matter, typed metadata, and wikilinks from
// Markdown content.
package parser

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/oddrun/ansuz/internal/models"
)

var wikilinkRe = regexp.MustCompile(`\[\[(.*?)\]\]`)

// DateLayout is the front matter date format for created/updated fields.
const DateLayout = "2006-01-02"

// DefaultConfidence is assumed when a note carries no confidence label.
const DefaultConfidence = "medium"

// Result holds the output of parsing a Markdown file.
type Result struct {
	Frontmatter map[string]interface{}
	Body        string
	ID          string
	Type        string
	Title       string
	Tags        []string
	Links       []models.Link
	Created     time.Time
	Updated     time.Time
	Confidence  string
	Wikilinks   []string
}

// Parse extracts front matter and typed fields from raw Markdown bytes.
// Invalid YAML between front matter fences is an error (the caller decides
// whether to skip the file); a file with no front matter at all is a valid
// body-only note.
func Parse(data []byte) (*Result, error) {
	fm, body, err := splitFrontmatter(data)
	if err != nil {
		return nil, err
	}

	r := &Result{
		Frontmatter: fm,
		Body:        body,
		ID:          strField(fm, "id"),
		Type:        strField(fm, "type"),
		Title:       strField(fm, "title"),
		Tags:        strSliceField(fm, "tags"),
		Links:       linksField(fm),
		Created:     dateField(fm, "created"),
		Updated:     dateField(fm, "updated"),
		Confidence:  strField(fm, "confidence"),
		Wikilinks:   ExtractWikilinks(body),
	}
	if r.Confidence == "" {
		r.Confidence = DefaultConfidence
	}
	if r.Title == "" {
		r.Title = firstHeading(body)
	}
	return r, nil
}

// splitFrontmatter separates YAML front matter (between leading --- fences)
// from the Markdown body. If no front matter is found the entire content is
// body. Malformed YAML inside the fences is reported as an error.
func splitFrontmatter(data []byte) (map[string]interface{}, string, error) {
	const delim = "---"
	trimmed := bytes.TrimLeft(data, "\n\r")

	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return nil, string(data), nil
	}

	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		// No closing fence — treat everything as body.
		return nil, string(data), nil
	}

	yamlBlock := rest[:idx]
	afterDelim := rest[idx+1+len(delim):]
	body := strings.TrimLeft(string(afterDelim), "\n\r")

	var fm map[string]interface{}
	if err := yaml.Unmarshal(yamlBlock, &fm); err != nil {
		return nil, "", fmt.Errorf("parser: invalid front matter: %w", err)
	}

	return fm, body, nil
}

// ExtractWikilinks returns deduplicated [[wikilink]] targets, normalising
// [[Target|Alias]] to Target.
func ExtractWikilinks(text string) []string {
	matches := wikilinkRe.FindAllStringSubmatch(text, -1)
	seen := make(map[string]struct{}, len(matches))
	var out []string
	for _, m := range matches {
		target := m[1]
		if i := strings.Index(target, "|"); i >= 0 {
			target = target[:i]
		}
		target = strings.TrimSpace(target)
		if target == "" {
			continue
		}
		if _, ok := seen[target]; ok {
			continue
		}
		seen[target] = struct{}{}
		out = append(out, target)
	}
	return out
}

func strField(fm map[string]interface{}, key string) string {
	if fm == nil {
		return ""
	}
	if s, ok := fm[key].(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

func strSliceField(fm map[string]interface{}, key string) []string {
	if fm == nil {
		return nil
	}
	raw, ok := fm[key].([]interface{})
	if !ok {
		return nil
	}
	var out []string
	for _, item := range raw {
		if s, ok := item.(string); ok {
			s = strings.TrimSpace(s)
			if s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

// linksField reads the front matter "links" sequence. Entries are either
// mappings with a "to" key (and optional "rel") or bare target strings.
// Entries without a target are dropped.
func linksField(fm map[string]interface{}) []models.Link {
	if fm == nil {
		return nil
	}
	raw, ok := fm["links"].([]interface{})
	if !ok {
		return nil
	}
	var out []models.Link
	for _, item := range raw {
		switch v := item.(type) {
		case string:
			if t := strings.TrimSpace(v); t != "" {
				out = append(out, models.Link{To: t})
			}
		case map[string]interface{}:
			to, _ := v["to"].(string)
			to = strings.TrimSpace(to)
			if to == "" {
				continue
			}
			rel, _ := v["rel"].(string)
			out = append(out, models.Link{To: to, Rel: strings.TrimSpace(rel)})
		}
	}
	return out
}

// dateField resolves a front matter date. YAML hands us a time.Time when
// the value is an unquoted date, or a string when quoted; anything that
// does not parse as YYYY-MM-DD is treated as unknown (zero time).
func dateField(fm map[string]interface{}, key string) time.Time {
	if fm == nil {
		return time.Time{}
	}
	switch v := fm[key].(type) {
	case time.Time:
		return v
	case string:
		t, err := time.Parse(DateLayout, strings.TrimSpace(v))
		if err != nil {
			return time.Time{}
		}
		return t
	default:
		return time.Time{}
	}
}

// firstHeading returns the first H1 heading of the body, or empty string.
func firstHeading(body string) string {
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(trimmed[2:])
		}
	}
	return ""
}
