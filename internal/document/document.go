package document

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Page is one physical page of a source document with its extracted text.
// Image-only pages carry empty or near-empty text.
type Page struct {
	Index int
	Text  string
}

// Document is a flat page-indexed view of one source file. The segmentation
// engine only reads it; page positions must match the physical file so that
// resolved ranges can drive the PDF splitter.
type Document struct {
	Path  string
	Pages []Page
}

// New builds a Document from raw page texts, one entry per physical page.
func New(path string, pageTexts []string) *Document {
	pages := make([]Page, len(pageTexts))
	for i, t := range pageTexts {
		pages[i] = Page{Index: i, Text: t}
	}
	return &Document{Path: path, Pages: pages}
}

// Loader converts raw document bytes into a page-indexed Document.
type Loader interface {
	Load(r io.Reader, filename string) (*Document, error)
}

// SupportedExtensions lists file extensions the splitter can open.
var SupportedExtensions = map[string]bool{
	".pdf":  true,
	".docx": true,
}

// ForFile returns the loader for a filename.
func ForFile(filename string, fallbackPdftotext bool) (Loader, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".pdf":
		return &PDFLoader{FallbackPdftotext: fallbackPdftotext}, nil
	case ".docx":
		return &DOCXLoader{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// Open reads a document from disk, picking the loader by extension.
func Open(path string, fallbackPdftotext bool) (*Document, error) {
	loader, err := ForFile(path, fallbackPdftotext)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}
	defer f.Close()

	doc, err := loader.Load(f, filepath.Base(path))
	if err != nil {
		return nil, err
	}
	doc.Path = path
	return doc, nil
}

// PageCount returns the number of physical pages.
func (d *Document) PageCount() int {
	return len(d.Pages)
}

// PageText returns the text of page i, or "" when i is out of range.
func (d *Document) PageText(i int) string {
	if i < 0 || i >= len(d.Pages) {
		return ""
	}
	return d.Pages[i].Text
}

// Truncate returns a view of the first n pages. Used to cut off a bundled
// second source before segmentation.
func (d *Document) Truncate(n int) *Document {
	if n < 0 {
		n = 0
	}
	if n > len(d.Pages) {
		n = len(d.Pages)
	}
	return &Document{Path: d.Path, Pages: d.Pages[:n]}
}
