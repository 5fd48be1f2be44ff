package segment

import (
	"strings"
	"unicode"

	"github.com/dgallion1/docsplit/internal/document"
)

// ExtractFields pulls the labeled intent and approach sub-sections plus
// the assembled body text for one topic range. Pages too thin to carry
// content stay out of the body; absent labels yield empty fields.
func ExtractFields(doc *document.Document, b Boundary, p Params) (intent, approach, content string) {
	var sb strings.Builder
	for pi := b.Start; pi <= b.End && pi < doc.PageCount(); pi++ {
		text := doc.PageText(pi)
		if document.StrippedLen(text) > p.ContentPageChars {
			sb.WriteString(text)
			sb.WriteString("\n\n")
		}
	}
	content = sb.String()
	intent = labeledField(content, markerIntent, intentTerminator)
	approach = labeledField(content, markerApproach, approachTerminator)
	return intent, approach, content
}

// labeledField captures the text after the first occurrence of a label,
// cut at the first line break whose tail the terminator accepts. The label
// may carry a colon. No terminator means no field: the sheets always close
// these sections with a blank line or the next labeled section.
func labeledField(text, label string, terminator func(tail string) bool) string {
	idx := strings.Index(text, label)
	if idx < 0 {
		return ""
	}
	rest := text[idx+len(label):]
	if strings.HasPrefix(rest, ":") {
		rest = rest[1:]
	} else if strings.HasPrefix(rest, "：") {
		rest = rest[len("："):]
	}
	rest = strings.TrimLeft(rest, " \t\r\n")

	for i := 0; i < len(rest); i++ {
		if rest[i] != '\n' {
			continue
		}
		if terminator(rest[i+1:]) {
			return collapseField(rest[:i])
		}
	}
	return ""
}

// intentTerminator ends the intent at a blank line, at a bullet line, or
// at the first line break once the approach label is known to follow.
// Intent is normally a single line; the approach check keeps a missing
// blank line from pulling the whole answer body in.
func intentTerminator(tail string) bool {
	if strings.Contains(tail, markerApproach) {
		return true
	}
	if blankRun(tail) {
		return true
	}
	return strings.HasPrefix(strings.TrimLeft(tail, " \t\r"), "-")
}

// approachTerminator ends the approach at a blank line or where a numbered
// outline item opens the answer body.
func approachTerminator(tail string) bool {
	if blankRun(tail) {
		return true
	}
	rest := strings.TrimLeft(tail, " \t\r")
	j := 0
	for j < len(rest) && rest[j] >= '0' && rest[j] <= '9' {
		j++
	}
	return j > 0 && j < len(rest) && rest[j] == '.'
}

// blankRun reports whether tail opens with whitespace containing another
// newline, i.e. the preceding line break started a blank line.
func blankRun(tail string) bool {
	for _, r := range tail {
		if r == '\n' {
			return true
		}
		if !unicode.IsSpace(r) {
			return false
		}
	}
	return false
}

func collapseField(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), "\n", " ")
}
