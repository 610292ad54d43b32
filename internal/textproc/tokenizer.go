// Package textproc provides text normalization and tokenization for the
// lexical index. All functions are pure and deterministic: the same input
// always yields the same token sequence, and malformed input yields fewer
// or no tokens rather than an error.
package textproc

import (
	"regexp"
	"strings"
)

var (
	// tagRegex matches HTML-like markup tags.
	tagRegex = regexp.MustCompile(`<[^>]+>`)

	// nonWordRegex matches everything that is not a letter, digit,
	// underscore, or whitespace.
	nonWordRegex = regexp.MustCompile(`[^\p{L}\p{N}_\s]+`)

	// spaceRegex matches whitespace runs.
	spaceRegex = regexp.MustCompile(`\s+`)

	// tokenRegex matches word-boundary token sequences.
	tokenRegex = regexp.MustCompile(`[\p{L}\p{N}_]+`)
)

// DefaultStopWords is the hard-coded stop-word set filtered out during
// tokenization. The set is deliberately small; swapping the retrieval
// language means swapping this table, nothing else.
var DefaultStopWords = []string{
	"a", "an", "the", "and", "or", "but", "if", "then", "else",
	"of", "to", "in", "on", "for", "with", "at", "by", "from", "as",
	"is", "are", "was", "were", "be", "been", "being",
	"it", "its", "this", "that", "these", "those",
	"do", "does", "did", "has", "have", "had",
	"will", "would", "can", "could", "should", "may", "might",
	"i", "we", "you", "he", "she", "they", "them",
	"not", "no", "nor", "so", "too", "very",
}

var stopWords = BuildStopWordMap(DefaultStopWords)

// BuildStopWordMap converts a slice of stop words to a map for efficient lookup.
func BuildStopWordMap(words []string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[strings.ToLower(w)] = struct{}{}
	}
	return m
}

// Normalize lower-cases text, strips markup tags, removes non-alphanumeric
// characters, and collapses whitespace runs to single spaces.
func Normalize(text string) string {
	text = strings.ToLower(text)
	text = tagRegex.ReplaceAllString(text, " ")
	text = nonWordRegex.ReplaceAllString(text, "")
	text = spaceRegex.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// Tokenize turns raw text into a filtered token sequence: normalized,
// split on word boundaries, stop words removed.
//
// Tokenize is idempotent over its own output:
// Tokenize(strings.Join(Tokenize(x), " ")) equals Tokenize(x).
func Tokenize(text string) []string {
	normalized := Normalize(text)
	if normalized == "" {
		return []string{}
	}

	words := tokenRegex.FindAllString(normalized, -1)
	tokens := make([]string, 0, len(words))
	for _, w := range words {
		if _, isStop := stopWords[w]; isStop {
			continue
		}
		tokens = append(tokens, w)
	}
	return tokens
}

// IsStopWord reports whether the token is in the stop-word set.
func IsStopWord(token string) bool {
	_, ok := stopWords[strings.ToLower(token)]
	return ok
}
