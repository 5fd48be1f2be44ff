package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/dgallion1/docsplit/internal/config"
	"github.com/dgallion1/docsplit/internal/discover"
	"github.com/dgallion1/docsplit/internal/report"
	"github.com/dgallion1/docsplit/internal/segment"
	"github.com/dgallion1/docsplit/internal/split"
)

// DocProcessor runs one review packet end-to-end.
type DocProcessor interface {
	Review(ctx context.Context, rev discover.Review, opts Options) DocResult
}

// Runner fans a discovered batch out over WORKER_COUNT workers and
// aggregates the per-document results into the run artifacts.
type Runner struct {
	proc  DocProcessor
	cfg   config.Config
	stats *report.RunStats
	log   *slog.Logger
}

func NewRunner(proc DocProcessor, cfg config.Config, stats *report.RunStats, log *slog.Logger) *Runner {
	return &Runner{proc: proc, cfg: cfg, stats: stats, log: log}
}

// Batch is everything one review run produces.
type Batch struct {
	Report    report.Review
	Topics    []segment.TopicRecord
	Inventory []report.InventoryEntry
}

// Reviews processes the batch and aggregates in input order, so the run
// artifacts are deterministic regardless of worker interleaving. The
// progress callback fires once per document from worker goroutines.
func (r *Runner) Reviews(ctx context.Context, reviews []discover.Review, opts Options, progress func(DocResult)) Batch {
	results := make([]DocResult, len(reviews))

	workers := min(r.cfg.WorkerCount, len(reviews))
	if workers < 1 {
		workers = 1
	}

	type item struct {
		idx int
		rev discover.Review
	}
	work := make(chan item)
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for it := range work {
				if err := ctx.Err(); err != nil {
					results[it.idx] = DocResult{
						Review: it.rev,
						Failures: []segment.Failure{{
							Document: it.rev.Path,
							Reason:   segment.FailOpen,
							Detail:   err.Error(),
						}},
					}
					continue
				}
				res := r.proc.Review(ctx, it.rev, opts)
				results[it.idx] = res
				if r.stats != nil {
					r.stats.Record(res.Elapsed)
				}
				if progress != nil {
					progress(res)
				}
			}
		}()
	}
	for i, rev := range reviews {
		work <- item{idx: i, rev: rev}
	}
	close(work)
	wg.Wait()

	batch := Batch{
		Report: report.Review{
			Timestamp: report.Timestamp(time.Now()),
			TotalPDFs: len(reviews),
			Failed:    []report.Failure{},
			Results:   []split.ReviewResult{},
		},
		Topics:    []segment.TopicRecord{},
		Inventory: []report.InventoryEntry{},
	}
	for _, res := range results {
		batch.Topics = append(batch.Topics, res.Records...)
		if len(res.OCRPages) > 0 {
			batch.Report.OCRApplied++
		}
		batch.Report.Results = append(batch.Report.Results, res.Splits...)
		for _, f := range res.Failures {
			batch.Report.Failed = append(batch.Report.Failed, report.Failure{
				PDF:   filepath.Base(f.Document),
				Error: failureText(f),
			})
		}
		if res.SplitErr != nil {
			batch.Report.Failed = append(batch.Report.Failed, report.Failure{
				PDF:   res.Review.Filename,
				Error: res.SplitErr.Error(),
			})
		}
		if len(res.Records) > 0 {
			rev := res.Review
			batch.Inventory = append(batch.Inventory,
				report.Inventory(rev.Gen, rev.Week, rev.Subject, rev.Session, rev.Filename, res.Records))
		}
	}
	batch.Report.TotalTopics = len(batch.Topics)
	return batch
}

// WriteReview persists the batch artifacts under dataDir.
func (r *Runner) WriteReview(dataDir string, b Batch) error {
	if err := report.WriteJSON(report.TopicsPath(dataDir), b.Topics); err != nil {
		return fmt.Errorf("write topics: %w", err)
	}
	if err := report.WriteJSON(report.InventoryPath(dataDir), b.Inventory); err != nil {
		return fmt.Errorf("write inventory: %w", err)
	}
	if err := report.WriteJSON(report.ReviewPath(dataDir), b.Report); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

func failureText(f segment.Failure) string {
	if f.Detail != "" {
		return fmt.Sprintf("%s: %s", f.Reason, f.Detail)
	}
	return string(f.Reason)
}
