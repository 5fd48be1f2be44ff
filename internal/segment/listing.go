package segment

import (
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/docsplit/internal/document"
)

// ListEntry is one (number, title) pair from a problem listing.
type ListEntry struct {
	Num   int
	Title string
}

// ExtractListing pulls the expected topic numbers and titles for a
// document. An empty result is not an error by itself: the bare strategy
// already ran as the fallback, so the caller reports a listing failure.
func ExtractListing(doc *document.Document, variant FormatVariant, p Params) []ListEntry {
	switch variant {
	case VariantStandard:
		return listingStandard(doc)
	case VariantInline:
		return listingInline(doc, p)
	case VariantCard:
		return listingCard(doc)
	default:
		return listingBare(doc, p)
	}
}

// listingStandard scans the first two pages; collection activates at the
// select-marker line. The first page yielding entries wins.
func listingStandard(doc *document.Document) []ListEntry {
	for pi := 0; pi < min(2, doc.PageCount()); pi++ {
		var entries []ListEntry
		active := false
		for _, line := range document.Lines(doc.PageText(pi)) {
			ls := strings.TrimSpace(line)
			if selectLine(ls) {
				active = true
				continue
			}
			if !active {
				continue
			}
			if m := numberedLine.FindStringSubmatch(ls); m != nil {
				num, _ := strconv.Atoi(m[1])
				entries = append(entries, ListEntry{Num: num, Title: strings.TrimSpace(m[2])})
			}
		}
		if len(entries) > 0 {
			return entries
		}
	}
	return nil
}

// listingInline reads the listing off page 1, stopping at the first intent
// label. Answer bodies contain their own numbered outlines restarting at 1,
// so only a strictly consecutive run of numbers extends the listing.
func listingInline(doc *document.Document, p Params) []ListEntry {
	var entries []ListEntry
	active := false
	stopped := false
	for _, line := range document.Lines(doc.PageText(0)) {
		ls := strings.TrimSpace(line)
		if selectLine(ls) {
			active = true
			continue
		}
		if !active {
			continue
		}
		if strings.Contains(ls, markerIntent) {
			stopped = true
		}
		if stopped {
			continue
		}
		m := numberedLine.FindStringSubmatch(ls)
		if m == nil {
			continue
		}
		num, _ := strconv.Atoi(m[1])
		if len(entries) == 0 || num == entries[len(entries)-1].Num+1 {
			entries = append(entries, ListEntry{Num: num, Title: strings.TrimSpace(m[2])})
		}
	}
	if len(entries) == 0 {
		return listingBare(doc, p)
	}
	return entries
}

// listingCard collects "문제 N. title" card headers across every page,
// first occurrence per number.
func listingCard(doc *document.Document) []ListEntry {
	var entries []ListEntry
	seen := map[int]bool{}
	for pi := 0; pi < doc.PageCount(); pi++ {
		text := doc.PageText(pi)
		if strings.TrimSpace(text) == "" {
			continue
		}
		for _, m := range cardHead.FindAllStringSubmatch(text, -1) {
			num, _ := strconv.Atoi(m[1])
			if seen[num] {
				continue
			}
			seen[num] = true
			entries = append(entries, ListEntry{Num: num, Title: strings.TrimSpace(m[2])})
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Num < entries[j].Num })
	return entries
}

// listingBare scans all pages for numbered heads near the page top,
// accepting only those corroborated by an answer-sheet label in the
// following lines.
func listingBare(doc *document.Document, p Params) []ListEntry {
	var entries []ListEntry
	seen := map[int]bool{}
	for pi := 0; pi < doc.PageCount(); pi++ {
		text := doc.PageText(pi)
		if document.StrippedLen(text) < p.SkipPageChars {
			continue
		}
		lines := document.Lines(text)
		for i, line := range lines {
			if i >= contextWindowLines {
				break
			}
			m := numberedLine.FindStringSubmatch(strings.TrimSpace(line))
			if m == nil {
				continue
			}
			num, _ := strconv.Atoi(m[1])
			title := strings.TrimSpace(m[2])
			if utf8.RuneCountInString(title) <= 3 || seen[num] {
				continue
			}
			window := strings.Join(lines[i:min(i+contextWindowLines, len(lines))], "\n")
			for _, kw := range bareContextLabels {
				if strings.Contains(window, kw) {
					seen[num] = true
					entries = append(entries, ListEntry{Num: num, Title: title})
					break
				}
			}
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Num < entries[j].Num })
	return entries
}
