package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/dgallion1/docsplit/internal/discover"
	"github.com/dgallion1/docsplit/internal/pipeline"
	"github.com/dgallion1/docsplit/internal/report"
	"github.com/spf13/cobra"
)

var (
	reviewSplit  bool
	reviewOCR    bool
	reviewDryRun bool
	reviewSingle string
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Segment weekly review packets into topic records",
	Long: `Scan the source directory for weekly review packets, locate the topic
boundaries in each, and write topics.json, inventory.json and
split_report.json under the data directory. With --split each topic also
becomes its own PDF under split_pdfs/{gen}/{week}/.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		log := newLogger()
		out := cmd.OutOrStdout()

		var reviews []discover.Review
		if reviewSingle != "" {
			reviews = []discover.Review{discover.SingleReview(reviewSingle)}
		} else {
			var err error
			reviews, err = discover.Reviews(cfg.SourceDir, discover.DefaultGens, true)
			if err != nil {
				return err
			}
		}
		if len(reviews) == 0 {
			return fmt.Errorf("no review files under %s", cfg.SourceDir)
		}

		if reviewDryRun {
			for _, rev := range reviews {
				fmt.Fprintf(out, "%s %s\n",
					dimStyle.Render(fmt.Sprintf("[%s/%s/%s]", rev.Gen, rev.Week, rev.Session)),
					rev.Filename)
			}
			fmt.Fprintln(out, dimStyle.Render(fmt.Sprintf("%d files", len(reviews))))
			return nil
		}

		stats := report.NewRunStats(time.Hour)
		proc := pipeline.NewProcessor(cfg, log)
		runner := pipeline.NewRunner(proc, cfg, stats, log)
		opts := pipeline.Options{
			Split:  reviewSplit,
			OCR:    reviewOCR,
			OutDir: filepath.Join(cfg.DataDir, "split_pdfs"),
		}

		batch := runner.Reviews(cmd.Context(), reviews, opts, func(res pipeline.DocResult) {
			log.Info("segmented",
				"file", res.Review.Filename,
				"topics", len(res.Records),
				"failures", len(res.Failures),
				"ms", res.Elapsed.Milliseconds())
		})
		if err := runner.WriteReview(cfg.DataDir, batch); err != nil {
			return err
		}

		snap := stats.Snapshot()
		lines := []string{
			kvInt("Documents", batch.Report.TotalPDFs),
			kvInt("Topics", batch.Report.TotalTopics),
			kvInt("Failures", len(batch.Report.Failed)),
		}
		if reviewOCR {
			lines = append(lines, kvInt("OCR recovered", batch.Report.OCRApplied))
		}
		if reviewSplit {
			lines = append(lines, kvInt("PDFs written", len(batch.Report.Results)))
		}
		lines = append(lines, kv("Avg", fmt.Sprintf("%.0fms/doc", snap.AvgMs)))
		printSummary(out, "Review Run Complete", lines)

		failed := make([]string, 0, len(batch.Report.Failed))
		for _, f := range batch.Report.Failed {
			failed = append(failed, fmt.Sprintf("%s: %s", f.PDF, f.Error))
		}
		printFailures(out, failed)
		return nil
	},
}

func init() {
	reviewCmd.Flags().BoolVar(&reviewSplit, "split", false, "write one PDF per topic")
	reviewCmd.Flags().BoolVar(&reviewOCR, "ocr", false, "recover image-only pages before segmenting")
	reviewCmd.Flags().BoolVar(&reviewDryRun, "dry-run", false, "list discovered files without processing")
	reviewCmd.Flags().StringVar(&reviewSingle, "single", "", "process one PDF instead of scanning the source directory")
	rootCmd.AddCommand(reviewCmd)
}
