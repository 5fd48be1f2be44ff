package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgallion1/docsplit/internal/config"
	"github.com/dgallion1/docsplit/internal/discover"
	"github.com/dgallion1/docsplit/internal/document"
	"github.com/dgallion1/docsplit/internal/ocr"
	"github.com/dgallion1/docsplit/internal/segment"
	"github.com/dgallion1/docsplit/internal/split"
)

// Options select the optional stages of a run. OutDir is the root the
// per-topic PDFs land under; splitting needs both Split and OutDir.
type Options struct {
	Split  bool
	OCR    bool
	OutDir string
}

// DocResult is the outcome of one review packet.
type DocResult struct {
	Review   discover.Review
	Records  []segment.TopicRecord
	Splits   []split.ReviewResult
	Failures []segment.Failure
	SplitErr error
	OCRPages []int
	Elapsed  time.Duration
}

// fileOCR adds a text layer to a finished PDF in place.
type fileOCR interface {
	File(ctx context.Context, pdfPath string) (bool, error)
}

// Processor runs one source document end-to-end: open, recover image-only
// pages when OCR is on, segment into records, and optionally write the
// per-topic PDFs.
type Processor struct {
	cfg       config.Config
	params    segment.Params
	assembler *segment.Assembler
	splitter  *split.Splitter
	pageOCR   ocr.PageOCR
	fileOCR   fileOCR
	log       *slog.Logger
}

func NewProcessor(cfg config.Config, log *slog.Logger) *Processor {
	params := ParamsFromConfig(cfg)
	runner := ocr.NewRunner(cfg, log)
	return &Processor{
		cfg:       cfg,
		params:    params,
		assembler: segment.NewAssembler(params),
		splitter:  split.NewSplitter(params.ImagePageChars, log),
		pageOCR:   runner,
		fileOCR:   runner,
		log:       log,
	}
}

// ParamsFromConfig maps the environment-backed settings onto engine
// parameters.
func ParamsFromConfig(cfg config.Config) segment.Params {
	return segment.Params{
		ScoreIntentNearby: cfg.ScoreIntentNearby,
		ScoreNearTop:      cfg.ScoreNearTop,
		ScoreTitlePrefix:  cfg.ScoreTitlePrefix,
		MinScore:          cfg.MinBoundaryScore,

		SparseDocChars:   cfg.SparseDocChars,
		ImagePageChars:   cfg.ImagePageChars,
		SkipPageChars:    cfg.SkipPageChars,
		ContentPageChars: cfg.ContentPageChars,
	}
}

// Review processes one review packet. Failures land in the result, never
// abort it; the batch decides what to do with them.
func (p *Processor) Review(ctx context.Context, rev discover.Review, opts Options) DocResult {
	start := time.Now()
	res := DocResult{Review: rev}
	log := p.log.With("file", rev.Filename, "gen", rev.Gen, "week", rev.Week)

	doc, err := document.Open(rev.Path, p.cfg.PDFFallbackPdftotext)
	if err != nil {
		log.Error("open failed", "error", err)
		res.Failures = append(res.Failures, segment.Failure{
			Document: rev.Path,
			Reason:   segment.FailOpen,
			Detail:   err.Error(),
		})
		res.Elapsed = time.Since(start)
		return res
	}

	if opts.OCR {
		doc, res.OCRPages = ocr.Enrich(ctx, doc, p.params.ImagePageChars, p.pageOCR, p.log)
		if len(res.OCRPages) > 0 {
			log.Info("recovered image pages", "pages", len(res.OCRPages))
		}
	}

	meta := segment.Meta{Gen: rev.Gen, Week: rev.Week, Subject: rev.Subject, Session: rev.Session}
	records, failures := p.assembler.Assemble(doc, meta)
	res.Records = records
	res.Failures = append(res.Failures, failures...)

	if opts.Split && opts.OutDir != "" && len(records) > 0 {
		outDir := split.ReviewDir(opts.OutDir, rev.Gen, rev.Week)
		splits, err := p.splitter.Review(doc, boundsFromRecords(records), outDir, rev.Gen, rev.Week, rev.Subject, rev.Session)
		res.Splits = splits
		if err != nil {
			log.Error("split failed", "error", err)
			res.SplitErr = fmt.Errorf("split %s: %w", rev.Filename, err)
		}
		if opts.OCR {
			p.ocrSplits(ctx, res.Splits)
		}
	}

	res.Elapsed = time.Since(start)
	return res
}

// ocrSplits adds text layers to the split PDFs that need one. An OCR
// failure leaves the file readable without a text layer, so it only warns.
func (p *Processor) ocrSplits(ctx context.Context, splits []split.ReviewResult) {
	for i := range splits {
		if !splits[i].NeedsOCR {
			continue
		}
		ok, err := p.fileOCR.File(ctx, splits[i].Path)
		if err != nil {
			p.log.Warn("file OCR failed", "file", splits[i].Filename, "error", err)
		}
		splits[i].OCRApplied = ok
	}
}

// boundsFromRecords rebuilds zero-based boundaries from records, which
// carry 1-based inclusive pages.
func boundsFromRecords(records []segment.TopicRecord) []segment.Boundary {
	bounds := make([]segment.Boundary, len(records))
	for i, r := range records {
		bounds[i] = segment.Boundary{
			Num:   r.QNum,
			Title: r.QTitle,
			Start: r.PageStart - 1,
			End:   r.PageEnd - 1,
		}
	}
	return bounds
}
