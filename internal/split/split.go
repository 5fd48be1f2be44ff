// Package split writes each resolved topic range to its own PDF and
// verifies the produced files. Filenames carry the topic metadata so
// downstream indexing can parse it back out without opening the file.
package split

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"golang.org/x/text/unicode/norm"

	"github.com/dgallion1/docsplit/internal/document"
	"github.com/dgallion1/docsplit/internal/segment"
	"github.com/dgallion1/docsplit/internal/textbook"
)

var (
	unsafeChars = regexp.MustCompile(`[/\\:*?"<>|]`)
	spaceRun    = regexp.MustCompile(`\s+`)
)

// SafeFilename makes s usable as a filename component. The length cap is
// in runes since topic titles are Korean.
func SafeFilename(s string, maxLen int) string {
	s = norm.NFC.String(s)
	s = unsafeChars.ReplaceAllString(s, "_")
	s = strings.TrimSpace(spaceRun.ReplaceAllString(s, " "))
	if runes := []rune(s); len(runes) > maxLen {
		s = strings.TrimRight(string(runes[:maxLen]), " ")
	}
	return s
}

// ReviewName builds {gen}_{week}_{subject}_{session}_Q{NN}_{title}.pdf.
func ReviewName(gen, week, subject, session string, num int, title string) string {
	return fmt.Sprintf("%s_%s_%s_%s_Q%02d_%s.pdf",
		gen, SafeFilename(week, 20), subject, session, num, SafeFilename(title, 60))
}

// ExamName builds {source}_{exam}_{N}교시_Q{NN}_{title}.pdf.
func ExamName(source, exam string, session, num int, title string) string {
	return fmt.Sprintf("%s_%s_%d교시_Q%02d_%s.pdf",
		source, exam, session, num, SafeFilename(title, 50))
}

// BookName builds 600제_{subject}_Q{NNN}_{title}.pdf.
func BookName(subject string, seq int, title string) string {
	return fmt.Sprintf("600제_%s_Q%03d_%s.pdf", subject, seq, SafeFilename(title, 60))
}

// ReviewDir is the output folder for one review packet.
func ReviewDir(root, gen, week string) string {
	return filepath.Join(root, gen, SafeFilename(week, 30))
}

// ReviewResult describes one PDF produced from a review packet.
type ReviewResult struct {
	Filename   string `json:"filename"`
	Path       string `json:"path"`
	Gen        string `json:"gen"`
	Week       string `json:"week"`
	Subject    string `json:"subject"`
	Session    string `json:"session"`
	QNum       int    `json:"q_num"`
	QTitle     string `json:"q_title"`
	Pages      int    `json:"pages"`
	ImagePages int    `json:"image_pages"`
	NeedsOCR   bool   `json:"needs_ocr"`
	Source     string `json:"source"`
	OCRApplied bool   `json:"ocr_applied"`
}

// ExamResult describes one PDF produced from an exam transcript session.
type ExamResult struct {
	Filename   string `json:"filename"`
	Path       string `json:"path"`
	Source     string `json:"source"`
	Exam       string `json:"exam"`
	Session    int    `json:"session"`
	QNum       int    `json:"q_num"`
	QTitle     string `json:"q_title"`
	Pages      int    `json:"pages"`
	ImagePages int    `json:"image_pages"`
	NeedsOCR   bool   `json:"needs_ocr"`
	OCRApplied bool   `json:"ocr_applied"`
}

// BookResult describes one PDF produced from a workbook volume. Question
// numbers are sequential over the volume, not the printed numbering.
type BookResult struct {
	Filename   string `json:"filename"`
	Path       string `json:"path"`
	Subject    string `json:"subject"`
	QNum       int    `json:"q_num"`
	QTitle     string `json:"q_title"`
	QText      string `json:"q_text"`
	Domain     string `json:"domain"`
	Keywords   string `json:"keywords"`
	Pages      int    `json:"pages"`
	ImagePages int    `json:"image_pages"`
	NeedsOCR   bool   `json:"needs_ocr"`
	Source     string `json:"source"`
	OCRApplied bool   `json:"ocr_applied"`
}

// Splitter cuts page ranges out of a source PDF with pdfcpu.
type Splitter struct {
	imageChars int
	log        *slog.Logger
}

func NewSplitter(imageChars int, log *slog.Logger) *Splitter {
	return &Splitter{imageChars: imageChars, log: log}
}

// Review writes one PDF per boundary of a review packet into outDir.
func (s *Splitter) Review(doc *document.Document, bounds []segment.Boundary, outDir, gen, week, subject, session string) ([]ReviewResult, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	var results []ReviewResult
	for _, b := range bounds {
		start, end := b.Start, min(b.End, doc.PageCount()-1)
		if start > end {
			continue
		}
		fname := ReviewName(gen, week, subject, session, b.Num, b.Title)
		outPath := filepath.Join(outDir, fname)
		if err := s.extract(doc.Path, outPath, start, end); err != nil {
			return results, err
		}
		img := s.countImagePages(doc, start, end)
		results = append(results, ReviewResult{
			Filename:   fname,
			Path:       outPath,
			Gen:        gen,
			Week:       week,
			Subject:    subject,
			Session:    session,
			QNum:       b.Num,
			QTitle:     b.Title,
			Pages:      end - start + 1,
			ImagePages: img,
			NeedsOCR:   img > 0,
			Source:     filepath.Base(doc.Path),
		})
	}
	return results, nil
}

// Exam writes one PDF per boundary of an exam session into outDir.
func (s *Splitter) Exam(doc *document.Document, bounds []segment.Boundary, outDir string, source segment.ExamSource, examType string, sessionNum int) ([]ExamResult, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	var results []ExamResult
	for _, b := range bounds {
		start, end := b.Start, min(b.End, doc.PageCount()-1)
		if start > end {
			continue
		}
		fname := ExamName(string(source), examType, sessionNum, b.Num, b.Title)
		outPath := filepath.Join(outDir, fname)
		if err := s.extract(doc.Path, outPath, start, end); err != nil {
			return results, err
		}
		img := s.countImagePages(doc, start, end)
		results = append(results, ExamResult{
			Filename:   fname,
			Path:       outPath,
			Source:     string(source),
			Exam:       examType,
			Session:    sessionNum,
			QNum:       b.Num,
			QTitle:     b.Title,
			Pages:      end - start + 1,
			ImagePages: img,
			NeedsOCR:   img > 0,
		})
	}
	return results, nil
}

// Book writes one PDF per scanned workbook question into outDir.
func (s *Splitter) Book(doc *document.Document, questions []textbook.Question, outDir, subject string) ([]BookResult, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	var results []BookResult
	for i, q := range questions {
		start, end := q.Page, min(q.PageEnd, doc.PageCount()-1)
		if start > end {
			continue
		}
		fname := BookName(subject, i+1, q.TopicTitle)
		outPath := filepath.Join(outDir, fname)
		if err := s.extract(doc.Path, outPath, start, end); err != nil {
			return results, err
		}
		img := s.countImagePages(doc, start, end)
		results = append(results, BookResult{
			Filename:   fname,
			Path:       outPath,
			Subject:    subject,
			QNum:       i + 1,
			QTitle:     q.TopicTitle,
			QText:      q.QText,
			Domain:     q.Domain,
			Keywords:   q.Keywords,
			Pages:      end - start + 1,
			ImagePages: img,
			NeedsOCR:   img > 0,
			Source:     filepath.Base(doc.Path),
		})
	}
	return results, nil
}

func (s *Splitter) extract(srcPath, outPath string, start, end int) error {
	// pdfcpu page selections are 1-based inclusive.
	pages := []string{fmt.Sprintf("%d-%d", start+1, end+1)}
	if err := api.TrimFile(srcPath, outPath, pages, nil); err != nil {
		return fmt.Errorf("extract pages %d-%d from %s: %w", start+1, end+1, filepath.Base(srcPath), err)
	}
	return nil
}

func (s *Splitter) countImagePages(doc *document.Document, start, end int) int {
	n := 0
	for pi := start; pi <= end; pi++ {
		if document.StrippedLen(doc.PageText(pi)) < s.imageChars {
			n++
		}
	}
	return n
}

// Target is one produced file to verify.
type Target struct {
	Filename string
	Path     string
	Title    string
}

func (r ReviewResult) Target() Target { return Target{r.Filename, r.Path, r.QTitle} }
func (r ExamResult) Target() Target   { return Target{r.Filename, r.Path, r.QTitle} }
func (r BookResult) Target() Target   { return Target{r.Filename, r.Path, r.QTitle} }

// Issue is one verification finding, keyed by the produced filename.
type Issue struct {
	File   string `json:"file"`
	Detail string `json:"issue"`
}

// Verify re-opens every produced file and checks it is a usable PDF: it
// exists, has pages, carries extractable text, and still contains its
// topic title. The title check only runs when the first page had usable
// text, since image-only splits can never pass it.
func Verify(targets []Target, fallbackPdftotext bool) []Issue {
	var issues []Issue
	for _, tg := range targets {
		if _, err := os.Stat(tg.Path); err != nil {
			issues = append(issues, Issue{tg.Filename, "FILE_MISSING"})
			continue
		}

		doc, err := document.Open(tg.Path, fallbackPdftotext)
		if err != nil {
			issues = append(issues, Issue{tg.Filename, "OPEN_ERROR: " + err.Error()})
			continue
		}
		if doc.PageCount() == 0 {
			issues = append(issues, Issue{tg.Filename, "EMPTY_PDF"})
			continue
		}

		firstLen := document.StrippedLen(doc.PageText(0))
		if firstLen < 30 {
			issues = append(issues, Issue{tg.Filename,
				fmt.Sprintf("NO_TEXT (image-only: %d chars, %d pages)", firstLen, doc.PageCount())})
		}

		titleShort := runePrefix(tg.Title, 10)
		if titleShort != "" && firstLen > 50 {
			found := false
			for pi := 0; pi < doc.PageCount(); pi++ {
				if strings.Contains(doc.PageText(pi), titleShort) {
					found = true
					break
				}
			}
			if !found {
				issues = append(issues, Issue{tg.Filename,
					fmt.Sprintf("TITLE_MISMATCH (expected: %s...)", titleShort)})
			}
		}

		if st, err := os.Stat(tg.Path); err == nil && st.Size() < 1000 {
			issues = append(issues, Issue{tg.Filename,
				fmt.Sprintf("TINY_FILE (%d bytes)", st.Size())})
		}
	}
	return issues
}

func runePrefix(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
