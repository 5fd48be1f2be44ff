// Package textbook locates question boundaries inside the 600제 workbook
// volumes. The workbooks print one question per block: a topic title line,
// a standalone 문제 marker, the question text, then labeled 도메인/출제영역
// and 키워드 rows. Questions are numbered by position, not by any printed
// number.
package textbook

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/dgallion1/docsplit/internal/document"
)

// skipPages covers the cover sheet and table of contents at the front of
// every volume.
const skipPages = 3

// contextLines bounds how far below a 문제 marker the corroborating labels
// may sit.
const contextLines = 12

// maxQuestionText caps the extracted question text in runes.
const maxQuestionText = 200

var (
	pageNumberLine = regexp.MustCompile(`^\d+$`)
	domainAfter    = regexp.MustCompile(`(?:도메인|출제영역)\s*\n\s*(.+)`)
	keywordsAfter  = regexp.MustCompile(`(?s)키워드\s*\n\s*(.+?)(?:\n\s*(?:목차|출제|참고|해설|난이도|채점)|\n\s*\n)`)
)

// Book is one workbook volume. The slice order follows the numbered
// filenames, which is also the processing order.
type Book struct {
	Subject string
	File    string
}

var Books = []Book{
	{Subject: "경영", File: "1_경영_600제_통합본_v4.0.pdf"},
	{Subject: "소공", File: "2_소공_600제_통합본_v4.0.pdf"},
	{Subject: "DB", File: "3_DB_600제_통합본_v4.0.pdf"},
	{Subject: "DS", File: "4_DS_600제_통합본_v4.0.pdf"},
	{Subject: "NW", File: "5_NW_600제_통합본_v4.0.pdf"},
	{Subject: "CAOS", File: "6_CAOS_600제_통합본_v4.0.pdf"},
	{Subject: "보안", File: "7_보안_600제_통합본_v4.0.pdf"},
	{Subject: "인알통", File: "8_인알통_600제_통합본_v4.0.pdf"},
}

// GuessSubject maps a workbook filename to its subject, UNKNOWN when no
// volume matches.
func GuessSubject(filename string) string {
	fn := norm.NFC.String(filename)
	for _, b := range Books {
		if strings.Contains(fn, b.Subject) || strings.Contains(fn, b.File) {
			return b.Subject
		}
	}
	return "UNKNOWN"
}

// Question is one located workbook question. Page and PageEnd are
// zero-based inclusive page indexes.
type Question struct {
	TopicTitle string
	QText      string
	Domain     string
	Keywords   string
	Page       int
	Line       int
	PageEnd    int
}

// Scan walks a workbook for question blocks. Pages with less text than
// minPageChars are image scans and carry no markers worth reading.
func Scan(doc *document.Document, minPageChars int) []Question {
	var questions []Question

	for pi := skipPages; pi < doc.PageCount(); pi++ {
		text := doc.PageText(pi)
		if document.StrippedLen(text) < minPageChars {
			continue
		}

		lines := document.Lines(strings.TrimSpace(text))
		for li, line := range lines {
			if strings.TrimSpace(line) != "문제" {
				continue
			}

			ctxAfter := strings.Join(lines[li:min(li+contextLines, len(lines))], "\n")
			if !strings.Contains(ctxAfter, "도메인") && !strings.Contains(ctxAfter, "출제영역") {
				continue
			}

			title := topicTitle(lines, li)
			if title == "" {
				continue
			}

			questions = append(questions, Question{
				TopicTitle: title,
				QText:      questionText(lines, li),
				Domain:     domainField(ctxAfter),
				Keywords:   keywordsField(ctxAfter),
				Page:       pi,
				Line:       li,
			})
		}
	}

	for i := range questions {
		if i+1 < len(questions) {
			questions[i].PageEnd = max(questions[i+1].Page-1, questions[i].Page)
		} else {
			questions[i].PageEnd = doc.PageCount() - 1
		}
	}
	return questions
}

// topicTitle reads the line above the 문제 marker, falling back one more
// line up when the adjacent one is a page number or separator. Only the
// adjacent line rejects bullet items.
func topicTitle(lines []string, li int) string {
	if li == 0 {
		return ""
	}
	c := strings.TrimSpace(lines[li-1])
	if titleCandidate(c) && !strings.HasPrefix(c, "•") {
		return c
	}
	if li > 1 {
		c2 := strings.TrimSpace(lines[li-2])
		if titleCandidate(c2) {
			return c2
		}
	}
	return ""
}

func titleCandidate(s string) bool {
	n := utf8.RuneCountInString(s)
	if n < 2 || n > 120 {
		return false
	}
	if strings.HasPrefix(s, "-") {
		return false
	}
	return !pageNumberLine.MatchString(s)
}

// questionText joins the lines between the 문제 marker and the first
// labeled row, capped to a summary length.
func questionText(lines []string, li int) string {
	var qlines []string
	for ql := li + 1; ql < min(li+6, len(lines)); ql++ {
		qls := strings.TrimSpace(lines[ql])
		if strings.HasPrefix(qls, "도메인") || strings.HasPrefix(qls, "출제영역") {
			break
		}
		qlines = append(qlines, qls)
	}
	joined := strings.Join(qlines, " ")
	r := []rune(joined)
	if len(r) > maxQuestionText {
		r = r[:maxQuestionText]
	}
	return string(r)
}

func domainField(ctx string) string {
	m := domainAfter.FindStringSubmatch(ctx)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

func keywordsField(ctx string) string {
	m := keywordsAfter.FindStringSubmatch(ctx)
	if m == nil {
		return ""
	}
	return strings.ReplaceAll(strings.TrimSpace(m[1]), "\n", ", ")
}
