package segment

import (
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/docsplit/internal/document"
)

// Candidate is one scored start-marker occurrence before resolution.
// Several candidates may claim the same topic number.
type Candidate struct {
	Num       int
	Title     string
	Page      int
	Line      int
	HasIntent bool
	NearTop   bool
	Score     int
}

// Boundary is a resolved topic range. Start and End are zero-based
// inclusive page indexes.
type Boundary struct {
	Num   int
	Title string
	Start int
	End   int
	Score int
}

// Locate finds the page range of every listed topic. Card documents use
// their own marker grammar; the other variants share the scored scan.
func Locate(doc *document.Document, listing []ListEntry, variant FormatVariant, p Params) []Boundary {
	if variant == VariantCard {
		return AssignEnds(doc, locateCard(doc, listing))
	}
	cands := scanCandidates(doc, listing, variant, p)
	return AssignEnds(doc, Resolve(cands))
}

// scanCandidates walks the document for numbered heads matching the listing
// and scores each occurrence. The listing page of a standard document
// repeats every number, so the scan starts past it.
func scanCandidates(doc *document.Document, listing []ListEntry, variant FormatVariant, p Params) []Candidate {
	nums := make(map[int]bool, len(listing))
	titles := make(map[int]string, len(listing))
	for _, e := range listing {
		nums[e.Num] = true
		if _, ok := titles[e.Num]; !ok {
			titles[e.Num] = e.Title
		}
	}

	startPage := 0
	if variant == VariantStandard {
		startPage = 1
	}

	var cands []Candidate
	for pi := startPage; pi < doc.PageCount(); pi++ {
		text := doc.PageText(pi)
		if document.StrippedLen(text) < p.SkipPageChars {
			continue
		}
		lines := document.Lines(text)
		for li, line := range lines {
			m := numberedLine.FindStringSubmatch(strings.TrimSpace(line))
			if m == nil {
				continue
			}
			num, _ := strconv.Atoi(m[1])
			if !nums[num] {
				continue
			}
			found := strings.TrimSpace(m[2])

			window := strings.Join(lines[li:min(li+contextWindowLines, len(lines))], "\n")
			hasIntent := strings.Contains(window, markerIntent) || strings.Contains(window, markerApproach)
			nearTop := li < nearTopLines
			titleMatch := titlesMatch(titles[num], found)

			score := 0
			if hasIntent {
				score += p.ScoreIntentNearby
			}
			if nearTop {
				score += p.ScoreNearTop
			}
			if titleMatch {
				score += p.ScoreTitlePrefix
			}
			if score < p.MinScore {
				continue
			}
			cands = append(cands, Candidate{
				Num:       num,
				Title:     titles[num],
				Page:      pi,
				Line:      li,
				HasIntent: hasIntent,
				NearTop:   nearTop,
				Score:     score,
			})
		}
	}
	return cands
}

// locateCard matches card headers directly: the grammar is unambiguous, so
// the first occurrence per number wins with a fixed score.
func locateCard(doc *document.Document, listing []ListEntry) []Candidate {
	titles := make(map[int]string, len(listing))
	for _, e := range listing {
		if _, ok := titles[e.Num]; !ok {
			titles[e.Num] = e.Title
		}
	}

	var cands []Candidate
	seen := map[int]bool{}
	for pi := 0; pi < doc.PageCount(); pi++ {
		text := doc.PageText(pi)
		if strings.TrimSpace(text) == "" {
			continue
		}
		lines := document.Lines(text)
		for li, line := range lines {
			ls := strings.TrimSpace(line)
			m := cardLineHead.FindStringSubmatch(ls)
			if m == nil {
				// The 문 glyph sometimes lands alone on the previous line.
				if mc := cardLineCont.FindStringSubmatch(ls); mc != nil && li > 0 && strings.TrimSpace(lines[li-1]) == "문" {
					m = mc
				}
			}
			if m == nil {
				continue
			}
			num, _ := strconv.Atoi(m[1])
			if seen[num] {
				continue
			}
			seen[num] = true
			title := titles[num]
			if title == "" {
				title = strings.TrimSpace(m[2])
			}
			cands = append(cands, Candidate{
				Num:       num,
				Title:     title,
				Page:      pi,
				Line:      li,
				HasIntent: true,
				NearTop:   true,
				Score:     cardScore,
			})
		}
	}
	sortByPosition(cands)
	return cands
}

// Resolve reduces candidates to one winner per topic number: highest
// score, earliest occurrence on ties, ordered by document position. It
// never mutates its input.
func Resolve(cands []Candidate) []Candidate {
	best := make(map[int]Candidate, len(cands))
	for _, c := range cands {
		cur, ok := best[c.Num]
		if !ok || c.Score > cur.Score {
			best[c.Num] = c
		}
	}
	out := make([]Candidate, 0, len(best))
	for _, c := range best {
		out = append(out, c)
	}
	sortByPosition(out)
	return out
}

func sortByPosition(cands []Candidate) {
	sort.Slice(cands, func(i, j int) bool {
		if cands[i].Page != cands[j].Page {
			return cands[i].Page < cands[j].Page
		}
		return cands[i].Line < cands[j].Line
	})
}

// AssignEnds turns positioned winners into contiguous page ranges: each
// topic runs up to the page before the next one, topics starting on the
// same page share it, and the last topic runs to the document's end. A
// trailing page that repeats the listing preamble is trimmed, and ranges
// that collapse below their start are discarded.
func AssignEnds(doc *document.Document, winners []Candidate) []Boundary {
	out := make([]Boundary, 0, len(winners))
	last := doc.PageCount() - 1
	for i, w := range winners {
		end := last
		if i+1 < len(winners) {
			next := winners[i+1].Page
			if next > w.Page {
				end = next - 1
			} else {
				end = next
			}
		}
		if end > w.Page && strings.Contains(doc.PageText(end), markerListingRepeat) {
			end--
		}
		if end < w.Page {
			continue
		}
		out = append(out, Boundary{Num: w.Num, Title: w.Title, Start: w.Page, End: end, Score: w.Score})
	}
	return out
}

// titlesMatch compares a found heading against the listed title. Bracketed
// qualifiers differ between listing and body, so both sides are stripped
// of them first: equal short prefixes match, as does any early word of the
// listed title appearing in the found heading.
func titlesMatch(expected, found string) bool {
	if expected == "" {
		return false
	}
	ce := strings.TrimSpace(bracketQualifier.ReplaceAllString(expected, ""))
	cf := strings.TrimSpace(bracketQualifier.ReplaceAllString(found, ""))
	if runePrefix(ce, titlePrefixRunes) == runePrefix(cf, titlePrefixRunes) {
		return true
	}
	words := strings.Fields(ce)
	if len(words) > 3 {
		words = words[:3]
	}
	for _, w := range words {
		if utf8.RuneCountInString(w) > 2 && strings.Contains(cf, w) {
			return true
		}
	}
	return false
}

func runePrefix(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		r = r[:n]
	}
	return string(r)
}
