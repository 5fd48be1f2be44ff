package ocr

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dgallion1/docsplit/internal/document"
)

func fakeTool(t *testing.T, dir, name, script string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func discardLog() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestRunner_Page(t *testing.T) {
	dir := t.TempDir()
	argsFile := filepath.Join(dir, "args.txt")

	pdftoppm := fakeTool(t, dir, "pdftoppm", `#!/bin/sh
for a in "$@"; do last="$a"; done
: > "$last.png"
`)
	tesseract := fakeTool(t, dir, "tesseract", fmt.Sprintf(`#!/bin/sh
printf '%%s\n' "$@" > %q
printf ' 지능형 교통 체계 \n'
`, argsFile))

	r := &Runner{
		tesseract:   tesseract,
		pdftoppm:    pdftoppm,
		language:    "kor+eng",
		renderDPI:   150,
		pageTimeout: 5 * time.Second,
		log:         discardLog(),
	}
	got, err := r.Page(context.Background(), filepath.Join(dir, "in.pdf"), 3)
	if err != nil {
		t.Fatalf("Page: %v", err)
	}
	if got != "지능형 교통 체계" {
		t.Fatalf("expected stripped OCR text, got %q", got)
	}

	args, err := os.ReadFile(argsFile)
	if err != nil {
		t.Fatalf("read args: %v", err)
	}
	for _, want := range []string{"stdout", "kor+eng", "--psm", "6"} {
		if !strings.Contains(string(args), want) {
			t.Errorf("tesseract args missing %q: %s", want, args)
		}
	}
}

func TestRunner_Page_RenderFailure(t *testing.T) {
	dir := t.TempDir()
	pdftoppm := fakeTool(t, dir, "pdftoppm", "#!/bin/sh\nexit 1\n")
	tesseract := fakeTool(t, dir, "tesseract", "#!/bin/sh\necho unreachable\n")

	r := &Runner{
		tesseract:   tesseract,
		pdftoppm:    pdftoppm,
		language:    "kor+eng",
		renderDPI:   150,
		pageTimeout: 5 * time.Second,
		log:         discardLog(),
	}
	_, err := r.Page(context.Background(), filepath.Join(dir, "in.pdf"), 1)
	if err == nil || !strings.Contains(err.Error(), "render page 1") {
		t.Fatalf("expected render failure, got %v", err)
	}
}

func TestRunner_Page_Timeout(t *testing.T) {
	dir := t.TempDir()
	pdftoppm := fakeTool(t, dir, "pdftoppm", `#!/bin/sh
for a in "$@"; do last="$a"; done
: > "$last.png"
`)
	tesseract := fakeTool(t, dir, "tesseract", "#!/bin/sh\nsleep 5\n")

	r := &Runner{
		tesseract:   tesseract,
		pdftoppm:    pdftoppm,
		language:    "kor+eng",
		renderDPI:   150,
		pageTimeout: 200 * time.Millisecond,
		log:         discardLog(),
	}
	_, err := r.Page(context.Background(), filepath.Join(dir, "in.pdf"), 1)
	if err == nil {
		t.Fatal("expected timeout error")
	}
}

func TestRunner_File_AddsTextLayer(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "scan.pdf")
	if err := os.WriteFile(in, []byte("original bytes"), 0o644); err != nil {
		t.Fatal(err)
	}
	ocrmypdf := fakeTool(t, dir, "ocrmypdf", `#!/bin/sh
for a in "$@"; do last="$a"; done
echo "ocr output" > "$last"
`)

	r := &Runner{
		ocrmypdf:    ocrmypdf,
		language:    "kor+eng",
		fileTimeout: 5 * time.Second,
		tessBudget:  60,
		log:         discardLog(),
	}
	ok, err := r.File(context.Background(), in)
	if err != nil {
		t.Fatalf("File: %v", err)
	}
	if !ok {
		t.Fatal("expected true after successful OCR")
	}

	b, err := os.ReadFile(in)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), "ocr output") {
		t.Fatalf("expected OCR output to replace original, got %q", b)
	}
	if _, err := os.Stat(in + ".ocr.pdf"); !os.IsNotExist(err) {
		t.Fatal("temp output should be gone after rename")
	}
}

func TestRunner_File_AlreadyHasText(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "typed.pdf")
	if err := os.WriteFile(in, []byte("original bytes"), 0o644); err != nil {
		t.Fatal(err)
	}
	ocrmypdf := fakeTool(t, dir, "ocrmypdf", "#!/bin/sh\nexit 6\n")

	r := &Runner{
		ocrmypdf:    ocrmypdf,
		language:    "kor+eng",
		fileTimeout: 5 * time.Second,
		tessBudget:  60,
		log:         discardLog(),
	}
	ok, err := r.File(context.Background(), in)
	if err != nil || !ok {
		t.Fatalf("exit 6 should report an existing text layer, got ok=%v err=%v", ok, err)
	}

	b, _ := os.ReadFile(in)
	if string(b) != "original bytes" {
		t.Fatalf("original file should be untouched, got %q", b)
	}
}

func TestRunner_File_Failure(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "broken.pdf")
	if err := os.WriteFile(in, []byte("original bytes"), 0o644); err != nil {
		t.Fatal(err)
	}
	ocrmypdf := fakeTool(t, dir, "ocrmypdf", `#!/bin/sh
echo "input file is encrypted" >&2
exit 2
`)

	r := &Runner{
		ocrmypdf:    ocrmypdf,
		language:    "kor+eng",
		fileTimeout: 5 * time.Second,
		tessBudget:  60,
		log:         discardLog(),
	}
	ok, err := r.File(context.Background(), in)
	if ok {
		t.Fatal("expected false on OCR failure")
	}
	if err == nil || !strings.Contains(err.Error(), "exit 2") || !strings.Contains(err.Error(), "encrypted") {
		t.Fatalf("expected exit code and stderr in error, got %v", err)
	}
}

type fakePageOCR struct {
	texts map[int]string
	errs  map[int]error
	calls []int
}

func (f *fakePageOCR) Page(_ context.Context, _ string, n int) (string, error) {
	f.calls = append(f.calls, n)
	if err := f.errs[n]; err != nil {
		return "", err
	}
	return f.texts[n], nil
}

func TestEnrich_SplicesRecoveredText(t *testing.T) {
	rich := "지능형 교통 체계는 차량과 도로 기반 시설 사이의 실시간 정보 교환으로 교통 흐름을 최적화하는 기술이다. 본 문제에서는 구성 요소와 보안 요건을 다룬다."
	doc := document.New("/data/scan.pdf", []string{rich, "", "희미한 글자", ""})

	fake := &fakePageOCR{
		texts: map[int]string{2: "복구된 본문 내용"},
		errs:  map[int]error{4: errors.New("tesseract: empty page")},
	}
	out, enriched := Enrich(context.Background(), doc, 50, fake, discardLog())

	if len(enriched) != 1 || enriched[0] != 1 {
		t.Fatalf("expected page 1 enriched, got %v", enriched)
	}
	if got := out.Pages[1].Text; got != "[OCR p2]\n복구된 본문 내용" {
		t.Fatalf("unexpected spliced text: %q", got)
	}
	if out.Pages[0].Text != rich {
		t.Fatal("rich page should pass through unchanged")
	}
	if out.Pages[2].Text != "희미한 글자" {
		t.Fatal("page with empty OCR result should keep its original text")
	}
	if doc.Pages[1].Text != "" {
		t.Fatal("input document must not be modified")
	}
	if len(fake.calls) != 3 {
		t.Fatalf("expected OCR attempts on the 3 thin pages, got %v", fake.calls)
	}
}

func TestEnrich_NoImagePages(t *testing.T) {
	rich := "데이터베이스 정규화는 이상 현상을 제거하기 위해 릴레이션을 분해하는 과정이며 함수 종속성 분석이 선행되어야 한다. 각 정규형의 조건을 비교하여 서술한다."
	doc := document.New("/data/typed.pdf", []string{rich})

	fake := &fakePageOCR{}
	out, enriched := Enrich(context.Background(), doc, 50, fake, discardLog())
	if out != doc {
		t.Fatal("expected the same document back when nothing was enriched")
	}
	if enriched != nil {
		t.Fatalf("expected no enriched pages, got %v", enriched)
	}
	if len(fake.calls) != 0 {
		t.Fatalf("no OCR call expected, got %v", fake.calls)
	}
}
