// Package textstat splits raw text into words, sentences and paragraphs
// using regular-expression heuristics.
package textstat

import (
	"regexp"
	"strings"
)

var (
	nonWord           = regexp.MustCompile(`[^\w\s]`)
	sentenceBoundary  = regexp.MustCompile(`[.!?]+\s+`)
	paragraphBoundary = regexp.MustCompile(`\n[ \t\r]*\n\s*`)
)

// Words lowercases text, strips non-word characters and splits on
// whitespace. Apostrophes are stripped too, so "don't" becomes "dont".
func Words(text string) []string {
	cleaned := nonWord.ReplaceAllString(strings.ToLower(text), "")
	return strings.Fields(cleaned)
}

// Sentences splits on '.', '!' or '?' followed by whitespace. Abbreviations
// such as "Dr. Smith" split into two sentences.
func Sentences(text string) []string {
	return splitNonEmpty(sentenceBoundary, text)
}

// Paragraphs splits on blank lines.
func Paragraphs(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return splitNonEmpty(paragraphBoundary, text)
}

func splitNonEmpty(re *regexp.Regexp, text string) []string {
	parts := re.Split(text, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
