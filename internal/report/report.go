// Package report persists batch run summaries under the data directory.
// Each pipeline writes its own JSON shape; downstream analysis and the
// HTTP API read these files back, so the key names are part of the
// contract and must stay stable.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dgallion1/docsplit/internal/segment"
	"github.com/dgallion1/docsplit/internal/split"
)

// Failure records one source document a pipeline could not split.
type Failure struct {
	PDF   string `json:"pdf"`
	Error string `json:"error"`
}

// Review summarizes one review batch run.
type Review struct {
	Timestamp   string               `json:"timestamp"`
	TotalPDFs   int                  `json:"total_pdfs"`
	TotalTopics int                  `json:"total_topics"`
	OCRApplied  int                  `json:"ocr_applied"`
	Failed      []Failure            `json:"failed"`
	Results     []split.ReviewResult `json:"results"`
}

// Exam summarizes one exam round run.
type Exam struct {
	Timestamp          string             `json:"timestamp"`
	Exam               string             `json:"exam"`
	Total              int                `json:"total"`
	Results            []split.ExamResult `json:"results"`
	Failed             []Failure          `json:"failed"`
	VerificationIssues []split.Issue      `json:"verification_issues"`
}

// BookFailure records one workbook volume that produced no questions.
type BookFailure struct {
	Subject string `json:"subject"`
	File    string `json:"file"`
	Error   string `json:"error"`
}

// Textbook summarizes one workbook batch run.
type Textbook struct {
	Timestamp      string             `json:"timestamp"`
	TotalBooks     int                `json:"total_books"`
	TotalQuestions int                `json:"total_questions"`
	OCRApplied     int                `json:"ocr_applied"`
	Failed         []BookFailure      `json:"failed"`
	Results        []split.BookResult `json:"results"`
}

// InventoryEntry summarizes what one source document yielded. The
// inventory gives a quick per-file audit trail next to the full record
// dump in topics.json, which is a bare array of TopicRecord.
type InventoryEntry struct {
	Gen         string      `json:"gen"`
	Week        string      `json:"week"`
	Subject     string      `json:"subject"`
	Session     string      `json:"session"`
	Filename    string      `json:"filename"`
	TopicsFound int         `json:"topics_found"`
	TopicList   []TopicLine `json:"topic_list"`
}

// TopicLine is one inventory line: a question number and its title capped
// at 50 runes.
type TopicLine struct {
	QNum   int    `json:"q_num"`
	QTitle string `json:"q_title"`
}

// Inventory builds the audit entry for one source document's records.
func Inventory(gen, week, subject, session, filename string, records []segment.TopicRecord) InventoryEntry {
	entry := InventoryEntry{
		Gen:         gen,
		Week:        week,
		Subject:     subject,
		Session:     session,
		Filename:    filename,
		TopicsFound: len(records),
	}
	for _, r := range records {
		title := []rune(r.QTitle)
		if len(title) > 50 {
			title = title[:50]
		}
		entry.TopicList = append(entry.TopicList, TopicLine{QNum: r.QNum, QTitle: string(title)})
	}
	return entry
}

// Timestamp formats t for report headers.
func Timestamp(t time.Time) string {
	return t.Format("2006-01-02T15:04:05.000000")
}

func ReviewPath(dataDir string) string { return filepath.Join(dataDir, "split_report.json") }

func ExamPath(dataDir string, round int) string {
	return filepath.Join(dataDir, fmt.Sprintf("exam%d_report.json", round))
}

func TextbookPath(dataDir string) string { return filepath.Join(dataDir, "600je_report.json") }

func TopicsPath(dataDir string) string { return filepath.Join(dataDir, "topics.json") }

func InventoryPath(dataDir string) string { return filepath.Join(dataDir, "inventory.json") }

func AnalysisPath(dataDir string) string {
	return filepath.Join(dataDir, "fb_analysis_report.md")
}

// WriteJSON marshals v with indentation and writes it atomically, so an
// interrupted run never leaves a truncated report behind. Korean text is
// written as-is rather than escaped.
func WriteJSON(path string, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// LoadJSON reads a report back into v.
func LoadJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read report: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse report %s: %w", filepath.Base(path), err)
	}
	return nil
}
