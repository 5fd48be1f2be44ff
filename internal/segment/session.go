package segment

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/dgallion1/docsplit/internal/document"
)

// ExamSource identifies which institute produced an exam transcript. Each
// institute lays out session and question markers differently.
type ExamSource string

const (
	SourceKPC       ExamSource = "KPC"
	SourceITPE      ExamSource = "ITPE"
	SourceDongkihoe ExamSource = "동기회"
	SourceIripo     ExamSource = "아이리포"
	SourceUnknown   ExamSource = "UNKNOWN"
)

// Session is one 교시 scope inside an exam transcript, carrying its own
// numbered question set.
type Session struct {
	Number int
	Start  int
	End    int
	Exam   string // 관 (관리) or 응 (응용)
}

var (
	sessionHeaderRe = regexp.MustCompile(`(?:제\s*)?(\d)\s*교시`)
	sessionLabelRe  = regexp.MustCompile(`(\d)\s*교시`)
	fileSessionRe   = regexp.MustCompile(`(\d)교시`)
)

// DetectSource reads the institute off a transcript filename. Names arrive
// NFD-normalized from macOS volumes, so matching runs on the NFC form.
func DetectSource(filename string) ExamSource {
	fn := norm.NFC.String(filename)
	upper := strings.ToUpper(fn)
	switch {
	case strings.Contains(upper, "KPC"):
		return SourceKPC
	case strings.Contains(upper, "ITPE"):
		return SourceITPE
	case strings.Contains(fn, "동기회"):
		return SourceDongkihoe
	case strings.Contains(fn, "아이리포"):
		return SourceIripo
	}
	return SourceUnknown
}

// DetectExamType reads 관/응 off a transcript filename.
func DetectExamType(filename string) string {
	fn := norm.NFC.String(filename)
	if strings.Contains(fn, "관") {
		return "관"
	}
	if strings.Contains(fn, "응") {
		return "응"
	}
	return "?"
}

// FileSession reads an explicit N교시 tag off a filename, 0 when absent.
func FileSession(filename string) int {
	m := fileSessionRe.FindStringSubmatch(norm.NFC.String(filename))
	if m == nil {
		return 0
	}
	n, _ := strconv.Atoi(m[1])
	return n
}

// FindSessions partitions a transcript into 교시 scopes. KPC and ITPE open
// each session with a header page; 동기회 labels every content page and a
// session starts where the label changes.
func FindSessions(doc *document.Document, source ExamSource, examType string, p Params) []Session {
	switch source {
	case SourceKPC, SourceITPE:
		return SessionsByHeader(doc, examType)
	case SourceDongkihoe:
		return sessionsByFooter(doc, examType, p)
	}
	return nil
}

// SessionsByHeader finds pages carrying both a 교시 header and the
// select-marker, first occurrence per session number.
func SessionsByHeader(doc *document.Document, examType string) []Session {
	var sessions []Session
	seen := map[int]bool{}
	for pi := 0; pi < doc.PageCount(); pi++ {
		text := doc.PageText(pi)
		m := sessionHeaderRe.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if !strings.Contains(text, "문제 중") && !strings.Contains(text, "선택") {
			continue
		}
		n, _ := strconv.Atoi(m[1])
		if seen[n] {
			continue
		}
		seen[n] = true
		sessions = append(sessions, Session{Number: n, Start: pi, Exam: examType})
	}
	assignSessionEnds(sessions, doc.PageCount())
	return sessions
}

func sessionsByFooter(doc *document.Document, examType string, p Params) []Session {
	var sessions []Session
	seen := map[int]bool{}
	prev := 0
	for pi := 0; pi < doc.PageCount(); pi++ {
		text := doc.PageText(pi)
		if document.StrippedLen(text) < p.ImagePageChars {
			prev = 0
			continue
		}
		m := sessionLabelRe.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		n, _ := strconv.Atoi(m[1])
		if n == prev {
			continue
		}
		prev = n
		if seen[n] {
			continue
		}
		seen[n] = true
		sessions = append(sessions, Session{Number: n, Start: pi, Exam: examType})
	}
	assignSessionEnds(sessions, doc.PageCount())
	// Separator pages between sessions carry no text; they belong to the
	// preceding session's tail and get trimmed off.
	for i := range sessions {
		for sessions[i].End > sessions[i].Start && document.StrippedLen(doc.PageText(sessions[i].End)) < p.ImagePageChars {
			sessions[i].End--
		}
	}
	return sessions
}

// assignSessionEnds orders sessions by number (scans may bind them out of
// order) and closes each at the next one's start.
func assignSessionEnds(sessions []Session, total int) {
	sort.Slice(sessions, func(i, j int) bool { return sessions[i].Number < sessions[j].Number })
	for i := range sessions {
		if i+1 < len(sessions) {
			sessions[i].End = sessions[i+1].Start - 1
		} else {
			sessions[i].End = total - 1
		}
	}
}

// FallbackSession covers the whole document as a single session when
// header detection fails but the filename already names the 교시.
func FallbackSession(doc *document.Document, number int, examType string) Session {
	start := 0
	for pi := 0; pi < doc.PageCount(); pi++ {
		text := doc.PageText(pi)
		if strings.Contains(text, "교시") && (strings.Contains(text, "문제") || strings.Contains(text, "선택")) {
			start = pi
			break
		}
	}
	return Session{Number: number, Start: start, End: doc.PageCount() - 1, Exam: examType}
}

// SessionListing reads the numbered listing off a session's start page.
// Activation is looser than the review form: header pages carry either
// half of the select phrase, rarely both on one line.
func SessionListing(doc *document.Document, sess Session) []ListEntry {
	var entries []ListEntry
	active := false
	for _, line := range document.Lines(doc.PageText(sess.Start)) {
		ls := strings.TrimSpace(line)
		if strings.Contains(ls, "문제 중") || strings.Contains(ls, "선택") {
			active = true
			continue
		}
		if !active {
			continue
		}
		m := numberedLine.FindStringSubmatch(ls)
		if m == nil {
			continue
		}
		num, _ := strconv.Atoi(m[1])
		title := strings.TrimSpace(m[2])
		if utf8.RuneCountInString(title) > 1 {
			entries = append(entries, ListEntry{Num: num, Title: title})
		}
	}
	return entries
}

// ExpectedCount is the number of questions a session carries: 13 short
// questions in session 1, 6 essays otherwise.
func ExpectedCount(sessionNumber int) int {
	if sessionNumber == 1 {
		return 13
	}
	return 6
}

// FillExpected pads a session listing to the full expected range with
// placeholder titles, so boundary detection can still anchor questions the
// listing page failed to yield.
func FillExpected(listing []ListEntry, sessionNumber int) []ListEntry {
	out := append([]ListEntry(nil), listing...)
	have := make(map[int]bool, len(out))
	for _, e := range out {
		have[e.Num] = true
	}
	for n := 1; n <= ExpectedCount(sessionNumber); n++ {
		if !have[n] {
			out = append(out, ListEntry{Num: n, Title: "Q" + strconv.Itoa(n)})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Num < out[j].Num })
	return out
}
