// Package ocr recovers text from image-only PDF pages by shelling out to
// pdftoppm, tesseract, and ocrmypdf. Scanned review packets are common in
// the older cohorts, and without a text layer the segmentation engine sees
// only blank pages.
package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dgallion1/docsplit/internal/config"
	"github.com/dgallion1/docsplit/internal/document"
)

// PageOCR recovers the text of a single physical page.
type PageOCR interface {
	Page(ctx context.Context, pdfPath string, pageNum int) (string, error)
}

// Runner drives the external OCR tools. Paths and timeouts come from the
// environment so deployments can pin specific binaries.
type Runner struct {
	tesseract   string
	pdftoppm    string
	ocrmypdf    string
	language    string
	renderDPI   int
	pageTimeout time.Duration
	fileTimeout time.Duration
	tessBudget  int
	log         *slog.Logger
}

func NewRunner(cfg config.Config, log *slog.Logger) *Runner {
	return &Runner{
		tesseract:   cfg.TesseractPath,
		pdftoppm:    cfg.PdftoppmPath,
		ocrmypdf:    cfg.OCRmyPDFPath,
		language:    cfg.OCRLanguage,
		renderDPI:   cfg.OCRRenderDPI,
		pageTimeout: cfg.PageOCRTimeout,
		fileTimeout: cfg.FileOCRTimeout,
		tessBudget:  cfg.TesseractBudget,
		log:         log,
	}
}

// Page renders one page to an image and runs tesseract over it. pageNum is
// 1-based to match pdftoppm. Returns the stripped OCR output, which may be
// empty when the page holds no recognizable text.
func (r *Runner) Page(ctx context.Context, pdfPath string, pageNum int) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.pageTimeout)
	defer cancel()

	tmpDir, err := os.MkdirTemp("", "docsplit-ocr-")
	if err != nil {
		return "", fmt.Errorf("create ocr temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	prefix := filepath.Join(tmpDir, "page")
	page := strconv.Itoa(pageNum)
	render := exec.CommandContext(ctx, r.pdftoppm,
		"-f", page, "-l", page,
		"-r", strconv.Itoa(r.renderDPI),
		"-png", "-singlefile",
		pdfPath, prefix)
	if err := render.Run(); err != nil {
		return "", fmt.Errorf("render page %d: %w", pageNum, err)
	}

	out, err := exec.CommandContext(ctx, r.tesseract,
		prefix+".png", "stdout",
		"-l", r.language,
		"--psm", "6").Output()
	if err != nil {
		return "", fmt.Errorf("tesseract page %d: %w", pageNum, err)
	}
	return strings.TrimSpace(string(out)), nil
}

// File runs ocrmypdf over the whole file and replaces it in place when a
// text layer was added. Returns true when the file carries a text layer
// afterward, which includes files that already had one (ocrmypdf exit 6).
func (r *Runner) File(ctx context.Context, pdfPath string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, r.fileTimeout)
	defer cancel()

	out := pdfPath + ".ocr.pdf"
	defer os.Remove(out)

	cmd := exec.CommandContext(ctx, r.ocrmypdf,
		"--language", r.language,
		"--skip-text",
		"--optimize", "1",
		"--output-type", "pdf",
		"--tesseract-timeout", strconv.Itoa(r.tessBudget),
		pdfPath, out)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		if err := os.Rename(out, pdfPath); err != nil {
			return false, fmt.Errorf("replace %s with ocr output: %w", pdfPath, err)
		}
		return true, nil
	}
	if ctx.Err() == context.DeadlineExceeded {
		return false, fmt.Errorf("ocrmypdf timed out after %s", r.fileTimeout)
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		// Exit 6 means the file already has a text layer.
		if exitErr.ExitCode() == 6 {
			return true, nil
		}
		return false, fmt.Errorf("ocrmypdf exit %d: %s", exitErr.ExitCode(), firstRunes(strings.TrimSpace(stderr.String()), 200))
	}
	return false, fmt.Errorf("run ocrmypdf: %w", err)
}

// Enrich re-extracts every image page of doc through OCR and splices the
// recovered text back in, tagged with its page number. Pages whose OCR
// yields nothing keep their original text. Returns the enriched document
// and the 0-based pages that gained text; doc itself is never modified.
func Enrich(ctx context.Context, doc *document.Document, imageChars int, p PageOCR, log *slog.Logger) (*document.Document, []int) {
	pages := make([]string, doc.PageCount())
	for i := range doc.Pages {
		pages[i] = doc.Pages[i].Text
	}

	var enriched []int
	for i := range doc.Pages {
		if ctx.Err() != nil {
			break
		}
		if document.StrippedLen(doc.Pages[i].Text) >= imageChars {
			continue
		}
		text, err := p.Page(ctx, doc.Path, i+1)
		if err != nil {
			log.Warn("page OCR failed", "path", doc.Path, "page", i+1, "error", err)
			continue
		}
		if text == "" {
			continue
		}
		pages[i] = fmt.Sprintf("[OCR p%d]\n%s", i+1, text)
		enriched = append(enriched, i)
	}
	if len(enriched) == 0 {
		return doc, nil
	}
	return document.New(doc.Path, pages), enriched
}

func firstRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
