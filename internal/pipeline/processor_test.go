package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/dgallion1/docsplit/internal/config"
	"github.com/dgallion1/docsplit/internal/discover"
	"github.com/dgallion1/docsplit/internal/segment"
	"github.com/dgallion1/docsplit/internal/split"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestParamsFromConfig(t *testing.T) {
	cfg := config.Config{
		ScoreIntentNearby: 10,
		ScoreNearTop:      3,
		ScoreTitlePrefix:  5,
		MinBoundaryScore:  4,
		SparseDocChars:    200,
		ImagePageChars:    50,
		SkipPageChars:     30,
		ContentPageChars:  10,
	}
	p := ParamsFromConfig(cfg)
	if p.ScoreIntentNearby != 10 || p.ScoreNearTop != 3 || p.ScoreTitlePrefix != 5 {
		t.Errorf("score params not carried over: %+v", p)
	}
	if p.MinScore != 4 {
		t.Errorf("expected MinScore 4, got %d", p.MinScore)
	}
	if p.SparseDocChars != 200 || p.ImagePageChars != 50 || p.SkipPageChars != 30 || p.ContentPageChars != 10 {
		t.Errorf("density params not carried over: %+v", p)
	}
}

func TestProcessor_Review_OpenFailure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "깨진파일.pdf")
	if err := os.WriteFile(path, []byte("this is not a pdf"), 0o644); err != nil {
		t.Fatal(err)
	}

	proc := NewProcessor(config.Config{}, testLogger())
	res := proc.Review(context.Background(), discover.SingleReview(path), Options{})

	if len(res.Records) != 0 {
		t.Errorf("expected no records, got %d", len(res.Records))
	}
	if len(res.Failures) != 1 {
		t.Fatalf("expected 1 failure, got %d", len(res.Failures))
	}
	f := res.Failures[0]
	if f.Reason != segment.FailOpen {
		t.Errorf("expected reason %q, got %q", segment.FailOpen, f.Reason)
	}
	if f.Document != path {
		t.Errorf("expected document %q, got %q", path, f.Document)
	}
	if f.Detail == "" {
		t.Error("expected failure detail to carry the open error")
	}
}

func TestBoundsFromRecords(t *testing.T) {
	records := []segment.TopicRecord{
		{QNum: 1, QTitle: "가상화", PageStart: 1, PageEnd: 3},
		{QNum: 2, QTitle: "컨테이너", PageStart: 4, PageEnd: 6},
	}
	bounds := boundsFromRecords(records)
	if len(bounds) != 2 {
		t.Fatalf("expected 2 bounds, got %d", len(bounds))
	}
	if bounds[0].Start != 0 || bounds[0].End != 2 {
		t.Errorf("expected pages 0..2, got %d..%d", bounds[0].Start, bounds[0].End)
	}
	if bounds[1].Start != 3 || bounds[1].End != 5 {
		t.Errorf("expected pages 3..5, got %d..%d", bounds[1].Start, bounds[1].End)
	}
	if bounds[0].Num != 1 || bounds[0].Title != "가상화" {
		t.Errorf("expected boundary to carry number and title, got %+v", bounds[0])
	}
}

type fakeFileOCR struct {
	calls []string
	ok    bool
	err   error
}

func (f *fakeFileOCR) File(ctx context.Context, pdfPath string) (bool, error) {
	f.calls = append(f.calls, pdfPath)
	return f.ok, f.err
}

func TestProcessor_OCRSplits(t *testing.T) {
	fake := &fakeFileOCR{ok: true}
	proc := &Processor{fileOCR: fake, log: testLogger()}

	splits := []split.ReviewResult{
		{Filename: "a.pdf", Path: "/out/a.pdf", NeedsOCR: true},
		{Filename: "b.pdf", Path: "/out/b.pdf", NeedsOCR: false},
		{Filename: "c.pdf", Path: "/out/c.pdf", NeedsOCR: true},
	}
	proc.ocrSplits(context.Background(), splits)

	if len(fake.calls) != 2 {
		t.Fatalf("expected 2 OCR calls, got %d", len(fake.calls))
	}
	if fake.calls[0] != "/out/a.pdf" || fake.calls[1] != "/out/c.pdf" {
		t.Errorf("expected OCR on a.pdf and c.pdf, got %v", fake.calls)
	}
	if !splits[0].OCRApplied || !splits[2].OCRApplied {
		t.Error("expected OCR applied on files that need it")
	}
	if splits[1].OCRApplied {
		t.Error("expected no OCR on file with a text layer")
	}
}

func TestProcessor_OCRSplits_FailureLeavesFileUsable(t *testing.T) {
	fake := &fakeFileOCR{ok: false, err: errors.New("ocrmypdf: command not found")}
	proc := &Processor{fileOCR: fake, log: testLogger()}

	splits := []split.ReviewResult{{Filename: "a.pdf", Path: "/out/a.pdf", NeedsOCR: true}}
	proc.ocrSplits(context.Background(), splits)

	if splits[0].OCRApplied {
		t.Error("expected OCRApplied false when the OCR run fails")
	}
}
