package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dgallion1/docsplit/internal/config"
	"github.com/dgallion1/docsplit/internal/discover"
	"github.com/dgallion1/docsplit/internal/report"
	"github.com/dgallion1/docsplit/internal/split"
)

// Orchestrator manages the document segmentation pipeline.
type Orchestrator struct {
	jobs   *JobStore
	queue  chan *Job
	proc   *Processor
	runner *Runner
	stats  *report.RunStats
	log    *slog.Logger
	cfg    config.Config

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewOrchestrator creates the pipeline. Call Start to launch its workers.
func NewOrchestrator(cfg config.Config, log *slog.Logger) *Orchestrator {
	proc := NewProcessor(cfg, log)
	stats := report.NewRunStats(time.Hour)
	return &Orchestrator{
		jobs:   NewJobStore(cfg.JobTTL),
		queue:  make(chan *Job, cfg.MaxQueueSize),
		proc:   proc,
		runner: NewRunner(proc, cfg, stats, log),
		stats:  stats,
		log:    log,
		cfg:    cfg,
	}
}

// Start launches worker goroutines.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	for range o.cfg.WorkerCount {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			for {
				select {
				case <-workerCtx.Done():
					return
				case job, ok := <-o.queue:
					if !ok {
						return
					}
					o.process(workerCtx, job)
				}
			}
		}()
	}

	// Start job store cleanup.
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				o.jobs.Cleanup()
			}
		}
	}()
}

// Stop gracefully shuts down the pipeline.
func (o *Orchestrator) Stop() {
	if o.cancel != nil {
		o.cancel()
	}
	close(o.queue)
	o.wg.Wait()
}

// Submit queues a new job for processing.
func (o *Orchestrator) Submit(job *Job) error {
	o.jobs.Put(job)
	select {
	case o.queue <- job:
		return nil
	default:
		job.SetStatus(StatusFailed, "queue_full")
		return fmt.Errorf("job queue is full (%d)", o.cfg.MaxQueueSize)
	}
}

// GetJob returns a job by ID.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}

// Stats returns the rolling per-document timing snapshot.
func (o *Orchestrator) Stats() report.StatsSnapshot {
	return o.stats.Snapshot()
}

func (o *Orchestrator) process(ctx context.Context, job *Job) {
	switch job.Kind {
	case JobDocument:
		o.processDocument(ctx, job)
	default:
		o.processBatch(ctx, job)
	}
}

// processBatch discovers every review packet under the job's source
// directory and runs the full segment-split-report pipeline over them.
func (o *Orchestrator) processBatch(ctx context.Context, job *Job) {
	log := o.log.With("job_id", job.ID)

	job.SetStatus(StatusClassifying, "discovering review files")
	sourceDir := job.SourceDir
	if sourceDir == "" {
		sourceDir = o.cfg.SourceDir
	}
	reviews, err := discover.Reviews(sourceDir, discover.DefaultGens, true)
	if err != nil {
		log.Error("discovery failed", "error", err)
		job.AddError(fmt.Sprintf("discover: %s", err))
		job.SetStatus(StatusFailed, "discovering review files")
		return
	}
	if len(reviews) == 0 {
		log.Warn("no review files found", "source_dir", sourceDir)
		job.AddError("no review files found")
		job.SetStatus(StatusFailed, "discovering review files")
		return
	}
	job.SetTotalDocuments(len(reviews))
	log.Info("discovered review files", "count", len(reviews))

	job.SetStatus(StatusExtracting, "segmenting documents")
	opts := Options{
		Split:  job.Split,
		OCR:    job.OCR,
		OutDir: filepath.Join(o.cfg.DataDir, "split_pdfs"),
	}
	batch := o.runner.Reviews(ctx, reviews, opts, func(res DocResult) {
		job.IncrDocumentsProcessed()
		job.AddTopics(len(res.Records))
		for _, f := range res.Failures {
			job.IncrFailures()
			job.AddError(failureText(f))
		}
		if res.SplitErr != nil {
			job.IncrFailures()
			job.AddError(res.SplitErr.Error())
		}
	})

	job.SetStatus(StatusSplitting, "writing reports")
	if err := o.runner.WriteReview(o.cfg.DataDir, batch); err != nil {
		log.Error("report write failed", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "writing reports")
		return
	}

	switch {
	case len(batch.Topics) == 0:
		job.SetStatus(StatusFailed, "done")
	case len(batch.Report.Failed) > 0:
		job.SetStatus(StatusPartial, "done")
	default:
		job.SetStatus(StatusCompleted, "done")
	}
	log.Info("batch complete",
		"documents", len(reviews),
		"topics", len(batch.Topics),
		"failures", len(batch.Report.Failed))
}

// processDocument segments one uploaded PDF. Its records ride the job
// snapshot instead of the batch artifacts.
func (o *Orchestrator) processDocument(ctx context.Context, job *Job) {
	log := o.log.With("job_id", job.ID, "filename", job.Filename)

	job.SetStatus(StatusClassifying, "saving upload")
	uploadDir := filepath.Join(o.cfg.DataDir, "uploads")
	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		log.Error("upload dir create failed", "error", err)
		job.AddError(fmt.Sprintf("upload dir: %s", err))
		job.SetStatus(StatusFailed, "saving upload")
		return
	}
	path := filepath.Join(uploadDir, job.ID+"_"+split.SafeFilename(job.Filename, 80))
	if err := os.WriteFile(path, job.FileData(), 0o644); err != nil {
		log.Error("upload write failed", "error", err)
		job.AddError(fmt.Sprintf("save upload: %s", err))
		job.SetStatus(StatusFailed, "saving upload")
		return
	}
	job.SetFileData(nil)

	job.SetStatus(StatusLocating, "locating topic boundaries")
	job.SetTotalDocuments(1)
	rev := discover.SingleReview(path)
	res := o.proc.Review(ctx, rev, Options{
		Split:  job.Split,
		OCR:    job.OCR,
		OutDir: filepath.Join(o.cfg.DataDir, "split_pdfs"),
	})
	o.stats.Record(res.Elapsed)

	job.IncrDocumentsProcessed()
	job.AddTopics(len(res.Records))
	for _, f := range res.Failures {
		job.IncrFailures()
		job.AddError(failureText(f))
	}
	if res.SplitErr != nil {
		job.IncrFailures()
		job.AddError(res.SplitErr.Error())
	}
	job.SetRecords(res.Records)

	switch {
	case len(res.Records) == 0:
		job.SetStatus(StatusFailed, "done")
	case len(res.Failures) > 0 || res.SplitErr != nil:
		job.SetStatus(StatusPartial, "done")
	default:
		job.SetStatus(StatusCompleted, "done")
	}
	log.Info("document complete", "topics", len(res.Records), "failures", len(res.Failures))
}
