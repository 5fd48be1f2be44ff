// Package discover walks the source tree for review packets, exam
// transcripts, and workbook volumes. Names arrive NFD-normalized from
// macOS volumes, so every name-based rule runs on the NFC form while the
// raw path is kept for opening.
package discover

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/dgallion1/docsplit/internal/segment"
)

// Review is one discovered weekly review packet with the metadata its
// path and filename carry.
type Review struct {
	Path     string
	Filename string
	Gen      string
	Week     string
	Subject  string
	Session  string
}

// DefaultGens are the cohort directories scanned under the source root.
var DefaultGens = []string{"19기", "20기", "21기"}

// weekKeywords mark a path segment as the week folder. The last matching
// segment wins: deeper folders refine the outer ones.
var weekKeywords = []string{"주차", "오리엔테이션", "멘티출제", "특강", "합반", "자체모의", "서바이벌"}

// subjectPatterns map tokens in the week folder or filename to subject
// codes, in report order. Multiple hits join with "+".
var subjectPatterns = []struct {
	Name string
	Re   *regexp.Regexp
}{
	{"SW", regexp.MustCompile(`(?i)\bSW\b`)},
	{"DS", regexp.MustCompile(`(?i)\bDS\b`)},
	{"DB", regexp.MustCompile(`(?i)\bDB\b`)},
	{"SE", regexp.MustCompile(`(?i)\bSE\b`)},
	{"AI", regexp.MustCompile(`(?i)\bAI\b`)},
	{"CAOS", regexp.MustCompile(`(?i)\bCAOS\b`)},
	{"NW", regexp.MustCompile(`(?i)\bNW\b`)},
	{"경영", regexp.MustCompile(`경영`)},
	{"AL", regexp.MustCompile(`(?i)\bAL\b`)},
	{"OT", regexp.MustCompile(`(?i)\bOT\b`)},
}

// weekFallbacks resolve the subject from the week folder alone when no
// subject token matched.
var weekFallbacks = []struct{ Keyword, Subject string }{
	{"보안", "SE"},
	{"멘티출제", "전범위"},
	{"자체모의", "전범위"},
	{"합반", "전범위"},
	{"특강", "특강"},
	{"서바이벌", "특강"},
}

var sessionTag = regexp.MustCompile(`(\d)교시`)

// Subject derives the subject code from the week folder and filename.
func Subject(week, filename string) string {
	combined := strings.ToUpper(norm.NFC.String(week + " " + filename))
	var found []string
	for _, sp := range subjectPatterns {
		if sp.Re.MatchString(combined) {
			found = append(found, sp.Name)
		}
	}
	if len(found) > 0 {
		return strings.Join(found, "+")
	}
	wk := norm.NFC.String(week)
	for _, fb := range weekFallbacks {
		if strings.Contains(wk, fb.Keyword) {
			return fb.Subject
		}
	}
	return "ETC"
}

// Session reads the N교시 tag off a filename, "0교시" when untagged.
func Session(filename string) string {
	m := sessionTag.FindStringSubmatch(norm.NFC.String(filename))
	if m == nil {
		return "0교시"
	}
	return m[1] + "교시"
}

// Reviews walks the cohort directories under root for review packets.
// Files need 리뷰 in their name; 복사본 copies are skipped. bak folders
// hold misfiled packets for some cohorts, so the caller chooses whether
// to descend into them.
func Reviews(root string, gens []string, includeBak bool) ([]Review, error) {
	var reviews []Review
	for _, gen := range gens {
		genPath := filepath.Join(root, gen)
		if _, err := os.Stat(genPath); err != nil {
			continue
		}
		err := filepath.WalkDir(genPath, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if !includeBak && d.Name() == "bak" {
					return fs.SkipDir
				}
				return nil
			}
			fn := norm.NFC.String(d.Name())
			if !strings.HasSuffix(fn, ".pdf") {
				return nil
			}
			if !strings.Contains(fn, "리뷰") || strings.Contains(fn, "복사본") {
				return nil
			}
			week := weekFromPath(filepath.Dir(path))
			reviews = append(reviews, Review{
				Path:     path,
				Filename: fn,
				Gen:      gen,
				Week:     week,
				Subject:  Subject(week, fn),
				Session:  Session(fn),
			})
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", genPath, err)
		}
	}
	sort.Slice(reviews, func(i, j int) bool {
		a, b := reviews[i], reviews[j]
		if a.Gen != b.Gen {
			return a.Gen < b.Gen
		}
		if a.Week != b.Week {
			return a.Week < b.Week
		}
		return a.Session < b.Session
	})
	return reviews, nil
}

// SingleReview wraps one explicit path as a review entry.
func SingleReview(path string) Review {
	fn := norm.NFC.String(filepath.Base(path))
	return Review{
		Path:     path,
		Filename: fn,
		Gen:      "single",
		Week:     "single",
		Subject:  Subject("", fn),
		Session:  Session(fn),
	}
}

func weekFromPath(dir string) string {
	parts := strings.Split(norm.NFC.String(filepath.ToSlash(dir)), "/")
	week := "UNKNOWN"
	for _, p := range parts {
		for _, kw := range weekKeywords {
			if strings.Contains(p, kw) {
				week = p
				break
			}
		}
	}
	return week
}

// ExamFile is one discovered exam transcript.
type ExamFile struct {
	Path        string
	Filename    string
	Source      segment.ExamSource
	Exam        string
	FileSession int
}

// ExamFiles lists the transcripts of one exam round. The bak folder scans
// first so the main directory overrides it, and within a directory later
// versions of the same transcript override earlier ones. 아이리포 files
// resist text extraction and stay out.
func ExamFiles(examDir string) ([]ExamFile, error) {
	type key struct {
		source  segment.ExamSource
		exam    string
		session int
	}
	fileMap := map[key]ExamFile{}

	dirs := []string{}
	bak := filepath.Join(examDir, "bak")
	if st, err := os.Stat(bak); err == nil && st.IsDir() {
		dirs = append(dirs, bak)
	}
	dirs = append(dirs, examDir)

	for _, d := range dirs {
		entries, err := os.ReadDir(d)
		if err != nil {
			return nil, fmt.Errorf("read exam dir %s: %w", d, err)
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			fn := norm.NFC.String(e.Name())
			if !strings.HasSuffix(fn, ".pdf") {
				continue
			}
			src := segment.DetectSource(fn)
			if src == segment.SourceUnknown || src == segment.SourceIripo {
				continue
			}
			ef := ExamFile{
				Path:        filepath.Join(d, e.Name()),
				Filename:    fn,
				Source:      src,
				Exam:        segment.DetectExamType(fn),
				FileSession: segment.FileSession(fn),
			}
			fileMap[key{ef.Source, ef.Exam, ef.FileSession}] = ef
		}
	}

	files := make([]ExamFile, 0, len(fileMap))
	for _, ef := range fileMap {
		files = append(files, ef)
	}
	sort.Slice(files, func(i, j int) bool {
		a, b := files[i], files[j]
		if a.Source != b.Source {
			return a.Source < b.Source
		}
		if a.Exam != b.Exam {
			return a.Exam < b.Exam
		}
		return a.FileSession < b.FileSession
	})
	return files, nil
}
