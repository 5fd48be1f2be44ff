package segment

import (
	"fmt"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/dgallion1/docsplit/internal/document"
)

// Assembler runs the full segmentation pipeline for one document.
type Assembler struct {
	Params Params
}

func NewAssembler(p Params) *Assembler {
	return &Assembler{Params: p}
}

// Assemble classifies a document and produces its topic records, applying
// the template short-circuits before the listing/boundary pipeline. A
// failed document yields a typed Failure; the batch moves on either way.
func (a *Assembler) Assemble(doc *document.Document, meta Meta) ([]TopicRecord, []Failure) {
	variant := Classify(doc, a.Params)

	if variant == VariantMerged {
		cut := MergeCut(doc)
		if cut <= 2 {
			return nil, []Failure{{
				Document: doc.Path,
				Reason:   FailMergedShort,
				Detail:   fmt.Sprintf("first segment is only %d pages", cut),
			}}
		}
		// The second source's pages are gone after the cut, so the
		// truncated segment re-classifies as a normal document and the
		// short-circuits below still apply to it.
		doc = doc.Truncate(cut)
		variant = Classify(doc, a.Params)
	}

	switch variant {
	case VariantSparse:
		return nil, []Failure{{
			Document: doc.Path,
			Reason:   FailImageOnly,
			Detail:   "sparse or image-only pages, needs OCR",
		}}
	case VariantProblemOnly:
		return nil, []Failure{{
			Document: doc.Path,
			Reason:   FailProblemOnly,
			Detail:   "single-page question sheet without answers",
		}}
	}

	listing := ExtractListing(doc, variant, a.Params)
	if len(listing) == 0 {
		return nil, []Failure{{Document: doc.Path, Reason: FailNoListing}}
	}

	bounds := Locate(doc, listing, variant, a.Params)
	if len(bounds) == 0 {
		return nil, []Failure{{Document: doc.Path, Reason: FailNoBoundaries}}
	}

	records := make([]TopicRecord, 0, len(bounds))
	for _, b := range bounds {
		records = append(records, a.buildRecord(doc, b, meta))
	}
	return records, nil
}

func (a *Assembler) buildRecord(doc *document.Document, b Boundary, meta Meta) TopicRecord {
	intent, approach, content := ExtractFields(doc, b, a.Params)

	imagePages := 0
	for pi := b.Start; pi <= b.End && pi < doc.PageCount(); pi++ {
		if document.StrippedLen(doc.PageText(pi)) < a.Params.ImagePageChars {
			imagePages++
		}
	}

	return TopicRecord{
		ID:          uuid.New().String(),
		Gen:         meta.Gen,
		Week:        meta.Week,
		Subject:     meta.Subject,
		Session:     meta.Session,
		QNum:        b.Num,
		QTitle:      b.Title,
		Intent:      intent,
		Approach:    approach,
		Content:     content,
		PageStart:   b.Start + 1,
		PageEnd:     b.End + 1,
		HasOCRPages: imagePages > 0,
		SourcePDF:   filepath.Base(doc.Path),
	}
}

// ImagePages lists the zero-based pages of a range whose text falls under
// the image threshold. The OCR pass targets exactly these.
func ImagePages(doc *document.Document, b Boundary, p Params) []int {
	var pages []int
	for pi := b.Start; pi <= b.End && pi < doc.PageCount(); pi++ {
		if document.StrippedLen(doc.PageText(pi)) < p.ImagePageChars {
			pages = append(pages, pi)
		}
	}
	return pages
}
