package index

import (
	"strings"
	"unicode"
)

// Normalize lower-cases text, strips punctuation, and collapses
// whitespace. Queries and document content go through the same path so
// both project into the same term space.
func Normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Tokenize splits normalized text into terms, dropping stopwords.
func Tokenize(text string) []string {
	fields := strings.Fields(Normalize(text))
	terms := fields[:0]
	for _, f := range fields {
		if stopwords[f] {
			continue
		}
		terms = append(terms, f)
	}
	return terms
}

// termCounts returns the term frequency map of the text.
func termCounts(text string) map[string]int {
	counts := make(map[string]int)
	for _, t := range Tokenize(text) {
		counts[t]++
	}
	return counts
}
