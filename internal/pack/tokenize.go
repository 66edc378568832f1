package pack

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// termRe matches runs of letters, digits, and underscores across all
// alphabets, so non-Latin questions tokenize the same way as English ones.
var termRe = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// Tokenize splits a free-text question into lowercase query terms.
// Runs shorter than two runes are dropped.
func Tokenize(question string) []string {
	matches := termRe.FindAllString(strings.ToLower(question), -1)
	terms := make([]string, 0, len(matches))
	for _, m := range matches {
		if utf8.RuneCountInString(m) >= 2 {
			terms = append(terms, m)
		}
	}
	return terms
}
