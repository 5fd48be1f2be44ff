package segment

import (
	"testing"

	"github.com/dgallion1/docsplit/internal/document"
)

func TestLocateExam_KPCHeadsAndSplitHeaders(t *testing.T) {
	doc := document.New("KPC_138관.pdf", []string{
		"제2교시\n다음 문제 중 4문제를 선택하여 기술하시오",
		"제1. 클라우드 거버넌스 체계 수립\n해설 본문이 이어집니다",
		"문\n제\n2. 데이터 품질 관리 방안\n해설 본문",
		"제1. 중복으로 등장한 헤더\n이어지는 해설 페이지",
		"제 3. 아키텍처 평가 모델 적용\n마무리 해설",
	})
	sess := Session{Number: 2, Start: 0, End: 4, Exam: "관"}
	listing := []ListEntry{{Num: 1, Title: ""}}

	bounds := LocateExam(doc, listing, sess, SourceKPC)
	if len(bounds) != 3 {
		t.Fatalf("expected 3 questions, got %d: %+v", len(bounds), bounds)
	}
	if bounds[0].Num != 1 || bounds[0].Start != 1 || bounds[0].End != 1 {
		t.Errorf("unexpected question 1: %+v", bounds[0])
	}
	if bounds[0].Title != "클라우드 거버넌스 체계 수립" {
		t.Errorf("empty listing title should fall back to the found head: %q", bounds[0].Title)
	}
	if bounds[1].Num != 2 || bounds[1].Start != 2 || bounds[1].End != 3 {
		t.Errorf("split 문제 header missed: %+v", bounds[1])
	}
	if bounds[1].Title != "Q2" {
		t.Errorf("padded placeholder expected, got %q", bounds[1].Title)
	}
	if bounds[2].Num != 3 || bounds[2].Start != 4 || bounds[2].End != 4 {
		t.Errorf("unexpected question 3: %+v", bounds[2])
	}
}

func TestLocateExam_ITPELastStandaloneNumberWins(t *testing.T) {
	// Printed page numbers match the same two-digit pattern and sit above
	// the question number, so the last confirmed match per page counts.
	doc := document.New("ITPE 138관-2교시.pdf", []string{
		"제2교시\n다음 문제 중 4문제를 선택하여 기술하시오",
		"ITPE 기술사 모임\n수험 자료 안내\n03\n01\n문제\n클라우드 네이티브 전략 수립\n해설이 이어집니다",
		"05\n02\n문제\n데이터 거버넌스 체계 정립\n본문",
	})
	sess := Session{Number: 2, Start: 0, End: 2, Exam: "관"}

	bounds := LocateExam(doc, nil, sess, SourceITPE)
	if len(bounds) != 2 {
		t.Fatalf("expected 2 questions, got %d: %+v", len(bounds), bounds)
	}
	if bounds[0].Num != 1 || bounds[0].Start != 1 || bounds[0].End != 1 {
		t.Errorf("page number beat the question number: %+v", bounds[0])
	}
	if bounds[0].Title != "클라우드 네이티브 전략 수립" {
		t.Errorf("unexpected title: %q", bounds[0].Title)
	}
	if bounds[1].Num != 2 || bounds[1].Start != 2 || bounds[1].End != 2 {
		t.Errorf("unexpected question 2: %+v", bounds[1])
	}
}

func TestLocateExam_ITPERenumbersFullSessions(t *testing.T) {
	// Six candidates for a six-question session: page order outranks the
	// printed numbers, which carry a copy-paste duplicate here.
	printed := []string{"01", "02", "02", "04", "05", "06"}
	pages := []string{"제2교시\n다음 문제 중 6문제를 선택하여 기술하시오"}
	for i, nn := range printed {
		pages = append(pages, "머리말\n"+nn+"\n문제\n길게 쓰인 문제 제목 "+string(rune('가'+i))+"입니다\n본문 해설")
	}
	doc := document.New("ITPE 138관-2교시.pdf", pages)
	sess := Session{Number: 2, Start: 0, End: 6, Exam: "관"}
	listing := []ListEntry{{Num: 3, Title: "정확한 세번째 제목"}}

	bounds := LocateExam(doc, listing, sess, SourceITPE)
	if len(bounds) != 6 {
		t.Fatalf("expected 6 questions, got %d: %+v", len(bounds), bounds)
	}
	for i, b := range bounds {
		if b.Num != i+1 {
			t.Errorf("expected sequential renumbering, got %+v", bounds)
			break
		}
	}
	if bounds[2].Num != 3 || bounds[2].Start != 3 || bounds[2].Title != "정확한 세번째 제목" {
		t.Errorf("listing title not applied to renumbered slot: %+v", bounds[2])
	}
}

func TestScanDongkihoe_CornerLabelsAndSessionFallback(t *testing.T) {
	doc := document.New("137회 동기회.pdf", []string{
		"1 교시\n1 번\n문제\n디지털 서비스 안정성 확보 방안\n도메인\n정보시스템",
		"1 교시 답안 계속\n본문 서술 내용\n2 교시\n9 번\n문제\n연속 작성된 답안 문항입니다\n난이도\n중",
		"2 교시\n1 번\n문제\n새로운 교시의 첫 문항\n난이도\n상",
		"3 교시\n2 번\n본문만 서술된 페이지입니다",
		"",
	})
	bounds := ScanDongkihoe(doc, DefaultParams())
	if len(bounds) != 4 {
		t.Fatalf("expected 4 questions, got %d: %+v", len(bounds), bounds)
	}

	if bounds[0].Session != 1 || bounds[0].Num != 1 || bounds[0].Title != "디지털 서비스 안정성 확보 방안" {
		t.Errorf("unexpected first question: %+v", bounds[0])
	}
	if bounds[0].End != 0 {
		t.Errorf("expected question 1 closed before the next page, got end %d", bounds[0].End)
	}

	// 9번 exceeds session 2's six essays; the page header names 교시 1,
	// whose thirteen short questions admit it.
	if bounds[1].Session != 1 || bounds[1].Num != 9 {
		t.Errorf("out-of-range corner label not reassigned: %+v", bounds[1])
	}

	if bounds[2].Session != 2 || bounds[2].Num != 1 {
		t.Errorf("unexpected third question: %+v", bounds[2])
	}

	if bounds[3].Title != "Q2" {
		t.Errorf("missing 문제 block should yield placeholder title, got %q", bounds[3].Title)
	}
	if bounds[3].End != 3 {
		t.Errorf("trailing empty page should be trimmed, got end %d", bounds[3].End)
	}

	grouped := GroupBySession(bounds)
	if len(grouped[1]) != 2 || len(grouped[2]) != 1 || len(grouped[3]) != 1 {
		t.Errorf("unexpected grouping: %+v", grouped)
	}
}

func TestLocateExam_UnknownSource(t *testing.T) {
	doc := document.New("misc.pdf", []string{"제1교시", "제1. 문항"})
	if got := LocateExam(doc, nil, Session{Number: 1, Start: 0, End: 1}, SourceUnknown); got != nil {
		t.Fatalf("expected nil for unknown source, got %+v", got)
	}
}
