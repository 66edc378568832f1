package pack

import (
	"strings"

	"github.com/oddrun/ansuz/internal/models"
)

// Relevance weights. Matching is deliberately substring-based term
// frequency, not word-boundary or IDF-weighted: a short term may match
// inside a longer word, and ranking compatibility depends on that.
const (
	titleWeight = 3.0
	tagWeight   = 2.0
)

// Score computes the relevance of a note against lowercase query terms.
// Per term: a flat title bonus when the term appears anywhere in the
// title, one point per substring occurrence in title+body, and a flat tag
// bonus when the term appears in the space-joined tag list. Pure function;
// always finite and non-negative.
func Score(n *models.Note, terms []string) float64 {
	title := strings.ToLower(n.Title)
	text := strings.ToLower(n.Title + "\n" + n.Body)
	tags := strings.ToLower(strings.Join(n.Tags, " "))

	score := 0.0
	for _, term := range terms {
		if strings.Contains(title, term) {
			score += titleWeight
		}
		score += float64(strings.Count(text, term))
		if strings.Contains(tags, term) {
			score += tagWeight
		}
	}
	return score
}
