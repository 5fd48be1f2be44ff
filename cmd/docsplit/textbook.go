package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/dgallion1/docsplit/internal/document"
	"github.com/dgallion1/docsplit/internal/ocr"
	"github.com/dgallion1/docsplit/internal/pipeline"
	"github.com/dgallion1/docsplit/internal/report"
	"github.com/dgallion1/docsplit/internal/split"
	"github.com/dgallion1/docsplit/internal/textbook"
	"github.com/spf13/cobra"
)

var (
	bookSubject string
	bookRun     bool
	bookOCR     bool
)

var textbookCmd = &cobra.Command{
	Use:   "textbook",
	Short: "Split 600제 workbook volumes into per-question PDFs",
	Long: `Scan the eight 600제 workbook volumes for question blocks and cut
one PDF per question into split_pdfs/600제/{subject}/. Without --run the
command only reports what each volume yields.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		log := newLogger()
		out := cmd.OutOrStdout()
		ctx := cmd.Context()

		books := textbook.Books
		if bookSubject != "" {
			books = nil
			for _, b := range textbook.Books {
				if b.Subject == bookSubject {
					books = append(books, b)
				}
			}
			if len(books) == 0 {
				return fmt.Errorf("unknown subject %q", bookSubject)
			}
		}

		params := pipeline.ParamsFromConfig(cfg)
		splitter := split.NewSplitter(params.ImagePageChars, log)
		runner := ocr.NewRunner(cfg, log)

		results := []split.BookResult{}
		failed := []report.BookFailure{}
		totalQuestions := 0
		totalOCR := 0

		for _, b := range books {
			path := filepath.Join(cfg.TextbookDir, b.File)
			blog := log.With("subject", b.Subject, "file", b.File)

			doc, err := document.Open(path, cfg.PDFFallbackPdftotext)
			if err != nil {
				blog.Error("open failed", "error", err)
				failed = append(failed, report.BookFailure{Subject: b.Subject, File: b.File, Error: err.Error()})
				continue
			}

			questions := textbook.Scan(doc, params.ImagePageChars)
			if len(questions) == 0 {
				blog.Warn("no questions found")
				failed = append(failed, report.BookFailure{Subject: b.Subject, File: b.File, Error: "no questions found"})
				continue
			}
			totalQuestions += len(questions)
			blog.Info("scanned", "questions", len(questions), "pages", doc.PageCount())

			if !bookRun {
				first, last := questions[0], questions[len(questions)-1]
				blog.Info("range", "first", first.TopicTitle, "last", last.TopicTitle)
				continue
			}

			outDir := filepath.Join(cfg.DataDir, "split_pdfs", "600제", b.Subject)
			res, splitErr := splitter.Book(doc, questions, outDir, b.Subject)
			if bookOCR {
				for i := range res {
					if !res[i].NeedsOCR {
						continue
					}
					ok, err := runner.File(ctx, res[i].Path)
					if err != nil {
						blog.Warn("file OCR failed", "file", res[i].Filename, "error", err)
					}
					res[i].OCRApplied = ok
					if ok {
						totalOCR++
					}
				}
			}
			results = append(results, res...)
			if splitErr != nil {
				failed = append(failed, report.BookFailure{Subject: b.Subject, File: b.File, Error: splitErr.Error()})
			}
		}

		if bookRun && len(results) > 0 {
			rep := report.Textbook{
				Timestamp:      report.Timestamp(time.Now()),
				TotalBooks:     len(books),
				TotalQuestions: totalQuestions,
				OCRApplied:     totalOCR,
				Failed:         failed,
				Results:        results,
			}
			if err := report.WriteJSON(report.TextbookPath(cfg.DataDir), rep); err != nil {
				return err
			}
		}

		lines := []string{
			kvInt("Volumes", len(books)),
			kvInt("Questions", totalQuestions),
		}
		if bookRun {
			lines = append(lines, kvInt("PDFs written", len(results)))
			if bookOCR {
				lines = append(lines, kvInt("OCR recovered", totalOCR))
			}
		}
		printSummary(out, "Workbook Split Complete", lines)

		items := make([]string, 0, len(failed))
		for _, f := range failed {
			items = append(items, fmt.Sprintf("%s (%s): %s", f.Subject, f.File, f.Error))
		}
		printFailures(out, items)
		return nil
	},
}

func init() {
	textbookCmd.Flags().StringVar(&bookSubject, "subject", "", "process one subject only (e.g. NW)")
	textbookCmd.Flags().BoolVar(&bookRun, "run", false, "write the per-question PDFs (default scans only)")
	textbookCmd.Flags().BoolVar(&bookOCR, "ocr", false, "add text layers to image-only cuts")
	rootCmd.AddCommand(textbookCmd)
}
