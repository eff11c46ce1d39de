// Package chunker splits text into pieces that fit the request limits of
// size-bounded translation backends, preferring paragraph and sentence
// boundaries over arbitrary cuts. It also extracts a trailing-words context
// snippet for LLM translators that accept continuity hints.
package chunker

import (
	"strings"
	"unicode"
)

// DefaultContextWords is the number of words ExtractContext keeps when the
// caller does not specify one.
const DefaultContextWords = 25

// Chunk splits text into pieces of at most maxChars runes each. Split points
// are chosen in order of preference: paragraph break, sentence-ending
// punctuation followed by a space, any whitespace, hard cut. maxChars <= 0
// means unlimited; short texts come back as a single-element slice.
func Chunk(text string, maxChars int) []string {
	if maxChars <= 0 || len([]rune(text)) <= maxChars {
		return []string{text}
	}

	var chunks []string
	remaining := text

	for len([]rune(remaining)) > maxChars {
		split := findSplit(remaining, maxChars)
		piece := strings.TrimSpace(remaining[:split])
		if piece != "" {
			chunks = append(chunks, piece)
		}
		remaining = strings.TrimSpace(remaining[split:])
	}

	if strings.TrimSpace(remaining) != "" {
		chunks = append(chunks, strings.TrimSpace(remaining))
	}

	return chunks
}

// findSplit returns the byte offset at which to cut text so the consumed
// prefix holds at most maxChars runes, searching backwards for the best
// boundary within that window.
func findSplit(text string, maxChars int) int {
	runes := []rune(text)
	if len(runes) <= maxChars {
		return len(text)
	}

	window := runes[:maxChars]
	candidate := string(window)

	// Paragraph break inside the window wins outright.
	if idx := strings.LastIndex(candidate, "\r\n\r\n"); idx > 0 {
		return idx + 4
	}
	if idx := strings.LastIndex(candidate, "\n\n"); idx > 0 {
		return idx + 2
	}

	// Sentence end: . ! ? followed by whitespace.
	for i := len(window) - 2; i > 0; i-- {
		r := window[i]
		if (r == '.' || r == '!' || r == '?') && unicode.IsSpace(window[i+1]) {
			return len(string(window[:i+1]))
		}
	}

	// Any whitespace.
	for i := len(window) - 1; i > 0; i-- {
		if unicode.IsSpace(window[i]) {
			return len(string(window[:i]))
		}
	}

	// No boundary found; hard cut at the rune limit.
	return len(candidate)
}

// ExtractContext returns the last wordCount words of text joined by single
// spaces, for use as a sliding-window continuity hint. Texts with fewer words
// are returned whole; wordCount <= 0 selects DefaultContextWords.
func ExtractContext(text string, wordCount int) string {
	if wordCount <= 0 {
		wordCount = DefaultContextWords
	}
	words := strings.Fields(text)
	if len(words) <= wordCount {
		return strings.TrimSpace(text)
	}
	return strings.Join(words[len(words)-wordCount:], " ")
}
