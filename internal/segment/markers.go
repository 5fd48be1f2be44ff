package segment

import (
	"regexp"
	"strings"
)

// Marker phrases of the review-sheet templates. Checks run against
// whitespace-collapsed page text unless noted otherwise: PDF extraction
// regularly returns 출제영역 as 출\n제\n영\n역.
const (
	markerSelect     = "문제중" // collapsed listing preamble "문제 중"
	markerChoose     = "선택"
	markerIntent     = "출제의도"
	markerApproach   = "작성방안"
	markerArea       = "출제영역"
	markerDifficulty = "난이도"
	markerStar       = "★" // matched on raw text, stars never split

	// markerListingRepeat flags a trailing page that just repeats the
	// listing preamble.
	markerListingRepeat = "다음 문제 중"

	// Watermark of the bundled second source in merged documents.
	markerSecondSource  = "아이리포"
	markerSecondPrep    = "대비"
	markerSecondSociety = "기술사회"
)

// selectLine reports whether a raw stripped line opens a listing. The
// activation line keeps its original spacing, so this check does not
// collapse.
func selectLine(line string) bool {
	return strings.Contains(line, "문제 중") && strings.Contains(line, "선택")
}

var (
	// numberedLine matches "N. title" at the start of a stripped line.
	numberedLine = regexp.MustCompile(`^(\d{1,2})\.\s+(.+)`)

	// enumeratedLine counts listing entries across a raw page.
	enumeratedLine = regexp.MustCompile(`(?m)^(\d{1,2})\.\s+`)

	// cardHead finds "문제 N. title" anywhere on a card page, tolerating
	// whitespace inside the 문제 glyph pair.
	cardHead = regexp.MustCompile(`문\s*제\s+(\d{1,2})\.\s+(.+)`)

	// cardLineHead anchors cardHead to a stripped line for boundary scans.
	cardLineHead = regexp.MustCompile(`^문\s*제\s+(\d{1,2})\.\s+(.+)`)

	// cardLineCont matches "제 N. title" when the 문 glyph landed alone on
	// the previous line.
	cardLineCont = regexp.MustCompile(`^제\s+(\d{1,2})\.\s+(.+)`)

	// bracketQualifier strips parenthesized qualifiers before comparing a
	// found heading against a listed title.
	bracketQualifier = regexp.MustCompile(`[(\[（].*?[)\]）]`)
)

// bareContextLabels corroborate a topic head in listing-less documents:
// one of these must appear within the next few lines.
var bareContextLabels = []string{
	"출제의도", "작성방안", "회 ", "Keyword", "출제빈도",
	"출제배경", "풀이", "관리", "응용", "난이도",
}

// Line windows of the scoring pass.
const (
	contextWindowLines = 8
	nearTopLines       = 10
	titlePrefixRunes   = 5
)

// cardScore is the fixed confidence of a card header match: the marker
// grammar leaves no ambiguity to score.
const cardScore = 15
