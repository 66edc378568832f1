package pack

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/oddrun/ansuz/internal/models"
)

const (
	// minInclude is the minimum-inclusion floor: the first four ranked
	// candidates always make it into the pack even when the token budget
	// is pathologically small.
	minInclude = 4

	maxTagsShown  = 5
	maxLinksShown = 5
)

var constraints = []string{
	"- Answer against the vault schema: propose actions, decisions, and note links",
	"- Link existing notes where possible; suggest new notes when something is missing",
}

// Render produces the final pack document from the ranked candidate list.
// Each note block costs len(block)/4 estimated tokens; blocks are appended
// while the running total stays within maxTokens or fewer than minInclude
// notes have been included. Returns the document, the number of included
// notes, and the estimated token total.
func Render(candidates []Candidate, question string, maxTokens int) (string, int, int) {
	lines := []string{
		"# CONTEXT PACK v1\n",
		"## Question\n",
		question + "\n",
		"\n## Constraints\n",
	}
	lines = append(lines, constraints...)
	lines = append(lines, "\n## Relevant Notes\n")

	totalTokens := 0
	included := 0
	for i := range candidates {
		block := renderNote(&candidates[i].Note)
		estTokens := utf8.RuneCountInString(block) / 4
		if totalTokens+estTokens > maxTokens && included >= minInclude {
			break
		}
		lines = append(lines, block)
		totalTokens += estTokens
		included++
	}

	return strings.Join(lines, "\n"), included, totalTokens
}

// renderNote formats one candidate block: header, extracted Summary and
// Key Points sections, then the metadata lines.
func renderNote(n *models.Note) string {
	var b strings.Builder

	fmt.Fprintf(&b, "\n### [%s] %s\n", n.ID, n.Title)

	if summary := ExtractSection(n.Body, "Summary"); summary != "" {
		fmt.Fprintf(&b, "\n**Summary:**\n%s\n", summary)
	}
	if keyPoints := ExtractSection(n.Body, "Key Points"); keyPoints != "" {
		fmt.Fprintf(&b, "\n**Key Points:**\n%s\n", keyPoints)
	}

	fmt.Fprintf(&b, "\n- Type: %s", n.Type)
	fmt.Fprintf(&b, "\n- Tags: %s", strings.Join(headOf(n.Tags, maxTagsShown), ", "))
	fmt.Fprintf(&b, "\n- Path: `%s`", n.Path)
	fmt.Fprintf(&b, "\n- Confidence: %s", n.Confidence)

	if len(n.Links) > 0 {
		targets := make([]string, 0, maxLinksShown)
		for _, l := range n.Links {
			if len(targets) == maxLinksShown {
				break
			}
			targets = append(targets, "`"+l.To+"`")
		}
		fmt.Fprintf(&b, "\n- Links: %s", strings.Join(targets, ", "))
	}
	b.WriteString("\n")

	return b.String()
}

// ExtractSection returns the trimmed text between the line `## <header>`
// and the next line starting with `## ` (or the end of the body). An
// absent header yields the empty string.
func ExtractSection(body, header string) string {
	lines := strings.Split(body, "\n")
	start := -1
	for i, line := range lines {
		if strings.TrimRight(line, " \t") == "## "+header {
			start = i + 1
			break
		}
	}
	if start < 0 {
		return ""
	}
	end := len(lines)
	for i := start; i < len(lines); i++ {
		if strings.HasPrefix(lines[i], "## ") {
			end = i
			break
		}
	}
	return strings.TrimSpace(strings.Join(lines[start:end], "\n"))
}

func headOf(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}
