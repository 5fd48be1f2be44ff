package segment

import (
	"strings"

	"github.com/dgallion1/docsplit/internal/document"
)

// Classify assigns the layout template for a document. Order matters:
// structural signals (page count, text density, a bundled second source)
// outrank the per-template marker checks.
func Classify(doc *document.Document, p Params) FormatVariant {
	if doc.PageCount() == 0 {
		return VariantBare
	}

	p1 := doc.PageText(0)
	p1c := document.Collapse(p1)

	if doc.PageCount() == 1 {
		return VariantProblemOnly
	}

	sample := min(5, doc.PageCount())
	total := 0
	for i := 0; i < sample; i++ {
		total += document.StrippedLen(doc.PageText(i))
	}
	if total < p.SparseDocChars && doc.PageCount() > 3 {
		return VariantSparse
	}

	hasSelect := strings.Contains(p1c, markerSelect) && strings.Contains(p1c, markerChoose)

	if hasSelect {
		for pi := 2; pi < min(6, doc.PageCount()); pi++ {
			if secondSourcePage(doc.PageText(pi)) {
				return VariantMerged
			}
		}
	}

	if strings.Contains(p1c, markerArea) && strings.Contains(p1c, markerDifficulty) && strings.Contains(p1, markerStar) {
		return VariantCard
	}

	if hasSelect {
		if len(enumeratedLine.FindAllString(p1, -1)) >= 4 {
			return VariantStandard
		}
		if strings.Contains(p1c, markerIntent) || strings.Contains(p1c, markerApproach) {
			return VariantInline
		}
		return VariantStandard
	}

	return VariantBare
}

// secondSourcePage reports whether a page carries the bundled second
// source's watermark.
func secondSourcePage(text string) bool {
	c := document.Collapse(text)
	return strings.Contains(c, markerSecondSource) &&
		(strings.Contains(c, markerSecondPrep) || strings.Contains(c, markerSecondSociety))
}

// MergeCut finds the first page carrying the second source's watermark,
// scanning from page 2. Returns the page count when it never appears.
func MergeCut(doc *document.Document) int {
	for pi := 2; pi < doc.PageCount(); pi++ {
		if secondSourcePage(doc.PageText(pi)) {
			return pi
		}
	}
	return doc.PageCount()
}
