package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/dgallion1/docsplit/internal/discover"
	"github.com/dgallion1/docsplit/internal/document"
	"github.com/dgallion1/docsplit/internal/ocr"
	"github.com/dgallion1/docsplit/internal/pipeline"
	"github.com/dgallion1/docsplit/internal/report"
	"github.com/dgallion1/docsplit/internal/segment"
	"github.com/dgallion1/docsplit/internal/split"
	"github.com/spf13/cobra"
)

var (
	examRound int
	examRun   bool
	examOCR   bool
)

var examCmd = &cobra.Command{
	Use:   "exam",
	Short: "Split exam transcript sets into per-question PDFs",
	Long: `Process the transcript folder of one exam round. Each institute's
transcripts are cut per question into split_pdfs/{round}회/ and the run
summary lands in exam{round}_report.json. Without --run the command only
locates boundaries and reports what it would cut.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		log := newLogger()
		out := cmd.OutOrStdout()
		ctx := cmd.Context()

		examDir := filepath.Join(cfg.ExamDir, strconv.Itoa(examRound))
		files, err := discover.ExamFiles(examDir)
		if err != nil {
			return err
		}
		if len(files) == 0 {
			return fmt.Errorf("no transcripts under %s", examDir)
		}

		params := pipeline.ParamsFromConfig(cfg)
		splitter := split.NewSplitter(params.ImagePageChars, log)
		runner := ocr.NewRunner(cfg, log)
		splitDir := filepath.Join(cfg.DataDir, "split_pdfs", fmt.Sprintf("%d회", examRound))

		results := []split.ExamResult{}
		failed := []report.Failure{}
		total := 0

		for _, ef := range files {
			flog := log.With("file", ef.Filename, "source", string(ef.Source), "exam", ef.Exam)

			doc, err := document.Open(ef.Path, cfg.PDFFallbackPdftotext)
			if err != nil {
				flog.Error("open failed", "error", err)
				failed = append(failed, report.Failure{PDF: ef.Filename, Error: err.Error()})
				continue
			}

			// 동기회 transcripts carry per-question session tags instead
			// of reliable session partitions.
			if ef.Source == segment.SourceDongkihoe {
				all := segment.ScanDongkihoe(doc, params)
				if len(all) == 0 {
					flog.Warn("no question bounds")
					failed = append(failed, report.Failure{PDF: ef.Filename, Error: "no bounds"})
					continue
				}
				bySess := segment.GroupBySession(all)
				for _, sessNum := range sortedSessions(bySess) {
					tagged := bySess[sessNum]
					bounds := make([]segment.Boundary, len(tagged))
					for i := range tagged {
						bounds[i] = tagged[i].Boundary
					}
					total += len(bounds)
					flog.Info("located", "session", sessNum, "questions", len(bounds))
					if !examRun {
						continue
					}
					res, err := splitter.Exam(doc, bounds, splitDir, ef.Source, ef.Exam, sessNum)
					if examOCR {
						ocrExamResults(ctx, runner, res, log)
					}
					results = append(results, res...)
					if err != nil {
						failed = append(failed, report.Failure{PDF: ef.Filename, Error: err.Error()})
					}
				}
				continue
			}

			var sessions []segment.Session
			if ef.FileSession > 0 {
				// Per-교시 files name their session; the header scan just
				// finds where content starts.
				sessions = segment.SessionsByHeader(doc, ef.Exam)
				if len(sessions) == 0 {
					sessions = []segment.Session{segment.FallbackSession(doc, ef.FileSession, ef.Exam)}
				}
			} else {
				sessions = segment.FindSessions(doc, ef.Source, ef.Exam, params)
			}
			if len(sessions) == 0 {
				flog.Warn("no sessions")
				failed = append(failed, report.Failure{PDF: ef.Filename, Error: "no sessions"})
				continue
			}

			for _, sess := range sessions {
				listing := segment.SessionListing(doc, sess)
				bounds := segment.LocateExam(doc, listing, sess, ef.Source)
				if len(bounds) == 0 {
					flog.Warn("no question bounds", "session", sess.Number)
					failed = append(failed, report.Failure{
						PDF:   ef.Filename,
						Error: fmt.Sprintf("%d교시 no bounds", sess.Number),
					})
					continue
				}
				total += len(bounds)
				flog.Info("located", "session", sess.Number, "questions", len(bounds))
				if !examRun {
					continue
				}
				examType := sess.Exam
				if examType == "" {
					examType = ef.Exam
				}
				res, err := splitter.Exam(doc, bounds, splitDir, ef.Source, examType, sess.Number)
				if examOCR {
					ocrExamResults(ctx, runner, res, log)
				}
				results = append(results, res...)
				if err != nil {
					failed = append(failed, report.Failure{PDF: ef.Filename, Error: err.Error()})
				}
			}
		}

		issues := []split.Issue{}
		if examRun && len(results) > 0 {
			targets := make([]split.Target, len(results))
			for i, r := range results {
				targets[i] = r.Target()
			}
			issues = split.Verify(targets, cfg.PDFFallbackPdftotext)
			if issues == nil {
				issues = []split.Issue{}
			}
			rep := report.Exam{
				Timestamp:          report.Timestamp(time.Now()),
				Exam:               fmt.Sprintf("%d회", examRound),
				Total:              total,
				Results:            results,
				Failed:             failed,
				VerificationIssues: issues,
			}
			if err := report.WriteJSON(report.ExamPath(cfg.DataDir, examRound), rep); err != nil {
				return err
			}
		}

		action := "located"
		if examRun {
			action = "written"
		}
		lines := []string{
			kv("Round", fmt.Sprintf("%d회", examRound)),
			kvInt("Transcripts", len(files)),
			kvInt("Questions "+action, total),
		}
		if examRun {
			lines = append(lines, kvInt("PDFs", len(results)))
			if len(issues) > 0 {
				lines = append(lines, errorStyle.Render(fmt.Sprintf("Verification issues: %d", len(issues))))
				for _, is := range issues {
					log.Warn("verification issue", "file", is.File, "issue", is.Detail)
				}
			} else {
				lines = append(lines, successStyle.Render("All files verified"))
			}
		}
		printSummary(out, "Exam Split Complete", lines)

		items := make([]string, 0, len(failed))
		for _, f := range failed {
			items = append(items, fmt.Sprintf("%s: %s", f.PDF, f.Error))
		}
		printFailures(out, items)
		return nil
	},
}

// ocrExamResults adds text layers to the cut PDFs that need one.
func ocrExamResults(ctx context.Context, runner *ocr.Runner, results []split.ExamResult, log *slog.Logger) {
	for i := range results {
		if !results[i].NeedsOCR {
			continue
		}
		ok, err := runner.File(ctx, results[i].Path)
		if err != nil {
			log.Warn("file OCR failed", "file", results[i].Filename, "error", err)
		}
		results[i].OCRApplied = ok
	}
}

func sortedSessions(bySess map[int][]segment.SessionBoundary) []int {
	nums := make([]int, 0, len(bySess))
	for n := range bySess {
		nums = append(nums, n)
	}
	sort.Ints(nums)
	return nums
}

func init() {
	examCmd.Flags().IntVar(&examRound, "round", 137, "exam round to process")
	examCmd.Flags().BoolVar(&examRun, "run", false, "write the per-question PDFs (default locates only)")
	examCmd.Flags().BoolVar(&examOCR, "ocr", false, "add text layers to image-only cuts")
	rootCmd.AddCommand(examCmd)
}
