package document

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// StrippedLen counts the runes of text after trimming surrounding whitespace.
// All density thresholds (image page, skip page, sparse document) work on
// this measure rather than byte length, since Korean runes are multi-byte.
func StrippedLen(text string) int {
	return utf8.RuneCountInString(strings.TrimSpace(text))
}

// Collapse removes all whitespace from text. Marker phrases are matched
// against the collapsed form because PDF extraction often returns Korean
// glyph runs split across lines mid-word.
func Collapse(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Lines splits page text into lines without trimming them.
func Lines(text string) []string {
	return strings.Split(text, "\n")
}
