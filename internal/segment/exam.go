package segment

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/docsplit/internal/document"
)

// Fixed confidences for the exam grammars: their markers are unambiguous
// enough that only position, not score, decides.
const (
	examScore      = 15
	dongkihoeScore = 20
)

var (
	kpcNumbered     = regexp.MustCompile(`^제\s*(\d{1,2})\.\s+(.+)`)
	twoDigitLine    = regexp.MustCompile(`^(\d{2})$`)
	dongkihoeCorner = regexp.MustCompile(`(\d)\s*교시\s*\n\s*(\d{1,2})\s*번`)
	dongkihoeTitle  = regexp.MustCompile(`(?s)문제\s*\n(.+?)\n(?:도메인|난이도|출제)`)
)

// maxQuestionsPerSession sanity-checks corner labels: session 1 carries 13
// short questions, later sessions 6 essays.
var maxQuestionsPerSession = map[int]int{1: 13, 2: 6, 3: 6, 4: 6}

// LocateExam finds question ranges inside one session scope using the
// institute's marker grammar. The listing is padded to the session's full
// expected range first, so questions the listing page missed still anchor.
func LocateExam(doc *document.Document, listing []ListEntry, sess Session, source ExamSource) []Boundary {
	listing = FillExpected(listing, sess.Number)
	switch source {
	case SourceKPC:
		return boundsKPC(doc, listing, sess)
	case SourceITPE:
		return boundsITPE(doc, listing, sess)
	}
	return nil
}

func listingMaps(listing []ListEntry) (titles map[int]string, nums map[int]bool) {
	titles = make(map[int]string, len(listing))
	nums = make(map[int]bool, len(listing))
	for _, e := range listing {
		nums[e.Num] = true
		if _, ok := titles[e.Num]; !ok {
			titles[e.Num] = e.Title
		}
	}
	return titles, nums
}

// boundsKPC matches "제N. title" heads, or a bare "N. title" when the 문제
// glyphs appear in the lines just above (headers often split).
func boundsKPC(doc *document.Document, listing []ListEntry, sess Session) []Boundary {
	titles, nums := listingMaps(listing)

	var cands []Candidate
	seen := map[int]bool{}
	for pi := sess.Start + 1; pi <= sess.End && pi < doc.PageCount(); pi++ {
		lines := document.Lines(doc.PageText(pi))
		for li := 0; li < min(20, len(lines)); li++ {
			ls := strings.TrimSpace(lines[li])

			var num int
			var found string
			if m := kpcNumbered.FindStringSubmatch(ls); m != nil {
				num, _ = strconv.Atoi(m[1])
				found = strings.TrimSpace(m[2])
			} else if m := numberedLine.FindStringSubmatch(ls); m != nil {
				var prev []string
				for _, pl := range lines[max(0, li-5):li] {
					prev = append(prev, strings.TrimSpace(pl))
				}
				joined := strings.Join(prev, "\n")
				if strings.Contains(joined, "문") && strings.Contains(joined, "제") {
					num, _ = strconv.Atoi(m[1])
					found = strings.TrimSpace(m[2])
				}
			}

			if num == 0 || !nums[num] || seen[num] {
				continue
			}
			seen[num] = true
			title := titles[num]
			if title == "" {
				title = found
			}
			cands = append(cands, Candidate{Num: num, Title: title, Page: pi, Line: li, Score: examScore})
		}
	}
	sortByPosition(cands)
	return sessionEnds(cands, sess.End)
}

// boundsITPE: question numbers stand alone as two-digit lines near the
// page top, verified by a standalone 문제 label shortly below. Page numbers
// match the same pattern and always precede question numbers, so the last
// valid match per page wins.
func boundsITPE(doc *document.Document, listing []ListEntry, sess Session) []Boundary {
	titles, nums := listingMaps(listing)

	var cands []Candidate
	for pi := sess.Start + 1; pi <= sess.End && pi < doc.PageCount(); pi++ {
		lines := document.Lines(doc.PageText(pi))

		bestLine, bestNum := -1, 0
		for li := 0; li < min(10, len(lines)); li++ {
			m := twoDigitLine.FindStringSubmatch(strings.TrimSpace(lines[li]))
			if m == nil {
				continue
			}
			num, _ := strconv.Atoi(m[1])
			if !nums[num] {
				continue
			}
			confirmed := false
			for _, al := range lines[li+1 : min(li+5, len(lines))] {
				if strings.TrimSpace(al) == "문제" {
					confirmed = true
					break
				}
			}
			if confirmed {
				bestLine, bestNum = li, num
			}
		}
		if bestLine < 0 {
			continue
		}

		var title string
		for _, nl := range lines[bestLine+1 : min(bestLine+4, len(lines))] {
			nls := strings.TrimSpace(nl)
			if utf8.RuneCountInString(nls) > 3 && nls != "문제" {
				title = nls
				break
			}
		}
		cands = append(cands, Candidate{Num: bestNum, Title: title, Page: pi, Line: bestLine, Score: examScore})
	}
	sortByPosition(cands)

	// Printed numbers carry template typos. When the count matches the
	// session's expected size, page order is more trustworthy than the
	// numbers themselves; otherwise duplicates drop, first kept.
	if len(cands) == ExpectedCount(sess.Number) {
		for i := range cands {
			correct := i + 1
			if t, ok := titles[correct]; ok {
				cands[i].Title = t
			}
			cands[i].Num = correct
		}
	} else {
		seen := map[int]bool{}
		var deduped []Candidate
		for _, c := range cands {
			if !seen[c.Num] {
				seen[c.Num] = true
				deduped = append(deduped, c)
			}
		}
		cands = deduped
	}
	return sessionEnds(cands, sess.End)
}

// sessionEnds closes each question at the page before the next one,
// bounded by the session's last page, dropping collapsed ranges.
func sessionEnds(winners []Candidate, sessionEnd int) []Boundary {
	out := make([]Boundary, 0, len(winners))
	for i, w := range winners {
		end := sessionEnd
		if i+1 < len(winners) {
			end = winners[i+1].Page - 1
		}
		if end < w.Page {
			continue
		}
		out = append(out, Boundary{Num: w.Num, Title: w.Title, Start: w.Page, End: end, Score: w.Score})
	}
	return out
}

// SessionBoundary tags a question range with the session its corner label
// assigned it to.
type SessionBoundary struct {
	Boundary
	Session int
}

// ScanDongkihoe scans every page for the N교시/M번 corner labels; session
// partitioning is unreliable for this source, so questions carry their own
// session tags instead. Out-of-range question numbers fall back to the
// page header's session.
func ScanDongkihoe(doc *document.Document, p Params) []SessionBoundary {
	type key struct{ sess, num int }
	seen := map[key]bool{}

	var bounds []SessionBoundary
	for pi := 0; pi < doc.PageCount(); pi++ {
		text := doc.PageText(pi)
		m := dongkihoeCorner.FindStringSubmatch(runePrefix(text, 500))
		if m == nil {
			continue
		}
		sessNum, _ := strconv.Atoi(m[1])
		qnum, _ := strconv.Atoi(m[2])

		maxq := 6
		if v, ok := maxQuestionsPerSession[sessNum]; ok {
			maxq = v
		}
		if qnum > maxq {
			if hm := sessionLabelRe.FindStringSubmatch(runePrefix(text, 80)); hm != nil {
				alt, _ := strconv.Atoi(hm[1])
				altMax := 13
				if v, ok := maxQuestionsPerSession[alt]; ok {
					altMax = v
				}
				if qnum <= altMax {
					sessNum = alt
				}
			}
		}

		k := key{sessNum, qnum}
		if seen[k] {
			continue
		}
		seen[k] = true

		var title string
		if tm := dongkihoeTitle.FindStringSubmatch(runePrefix(text, 1200)); tm != nil {
			first := strings.TrimSpace(tm[1])
			if i := strings.IndexByte(first, '\n'); i >= 0 {
				first = first[:i]
			}
			title = runePrefix(first, 80)
		} else {
			title = "Q" + strconv.Itoa(qnum)
		}

		bounds = append(bounds, SessionBoundary{
			Boundary: Boundary{Num: qnum, Title: title, Start: pi, Score: dongkihoeScore},
			Session:  sessNum,
		})
	}

	sort.Slice(bounds, func(i, j int) bool { return bounds[i].Start < bounds[j].Start })

	for i := range bounds {
		if i+1 < len(bounds) {
			bounds[i].End = bounds[i+1].Start - 1
		} else {
			bounds[i].End = doc.PageCount() - 1
		}
	}
	for i := range bounds {
		for bounds[i].End > bounds[i].Start && document.StrippedLen(doc.PageText(bounds[i].End)) < p.ImagePageChars {
			bounds[i].End--
		}
	}

	out := make([]SessionBoundary, 0, len(bounds))
	for _, b := range bounds {
		if b.End >= b.Start {
			out = append(out, b)
		}
	}
	return out
}

// GroupBySession buckets scan results by detected session, preserving page
// order inside each bucket.
func GroupBySession(bounds []SessionBoundary) map[int][]SessionBoundary {
	grouped := make(map[int][]SessionBoundary)
	for _, b := range bounds {
		grouped[b.Session] = append(grouped[b.Session], b)
	}
	return grouped
}
