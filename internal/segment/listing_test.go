package segment

import (
	"testing"

	"github.com/dgallion1/docsplit/internal/document"
)

func TestListingStandard_ActivatesAtSelectLine(t *testing.T) {
	doc := document.New("review.pdf", []string{
		"0. 표지 안내\n다음 문제 중 2문제를 선택하시오\n1. 클라우드 네이티브 전환\n2. 제로트러스트 보안 모델\n맺음말",
		"본문 페이지",
	})
	got := ExtractListing(doc, VariantStandard, DefaultParams())
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	if got[0].Num != 1 || got[0].Title != "클라우드 네이티브 전환" {
		t.Errorf("unexpected first entry: %+v", got[0])
	}
	if got[1].Num != 2 || got[1].Title != "제로트러스트 보안 모델" {
		t.Errorf("unexpected second entry: %+v", got[1])
	}
}

func TestListingStandard_SecondPageWhenFirstYieldsNothing(t *testing.T) {
	doc := document.New("review.pdf", []string{
		"표지만 있는 페이지",
		"다음 문제 중 1문제를 선택하시오\n1. 디지털 플랫폼 전환 전략",
	})
	got := ExtractListing(doc, VariantStandard, DefaultParams())
	if len(got) != 1 || got[0].Num != 1 {
		t.Fatalf("expected entry from page 2, got %+v", got)
	}
}

func TestListingInline_StopsAtIntentAndRequiresConsecutive(t *testing.T) {
	doc := document.New("inline.pdf", []string{
		"다음 문제 중 1문제를 선택\n1. 디지털 트윈 아키텍처\n5. 페이지 하단 번호\n2. 연합학습 모델 구성\n출제의도: 개념 비교\n1. 정의\n2. 특징",
	})
	got := ExtractListing(doc, VariantInline, DefaultParams())
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d: %+v", len(got), got)
	}
	if got[0].Num != 1 || got[1].Num != 2 {
		t.Errorf("expected consecutive numbers 1,2, got %+v", got)
	}
	if got[1].Title != "연합학습 모델 구성" {
		t.Errorf("unexpected title: %q", got[1].Title)
	}
}

func TestListingInline_FallsBackToBareScan(t *testing.T) {
	doc := document.New("inline.pdf", []string{
		"다음 문제 중 선택\n출제의도: 바로 답이 시작됨",
		"3. 블록체인 합의 알고리즘\n출제의도: 합의 메커니즘의 이해\n본문이 이어지는 답안 페이지입니다",
	})
	got := ExtractListing(doc, VariantInline, DefaultParams())
	if len(got) != 1 || got[0].Num != 3 {
		t.Fatalf("expected bare fallback entry 3, got %+v", got)
	}
}

func TestListingCard_DedupesAndSorts(t *testing.T) {
	doc := document.New("cards.pdf", []string{
		"문제 2. 동형암호 활용\n출제영역 보안\n난이도 상",
		"문제 1. 제로트러스트 아키텍처\n출제영역 보안\n난이도 중",
		"문제 1. 제로트러스트 아키텍처 복습\n요약 페이지",
	})
	got := ExtractListing(doc, VariantCard, DefaultParams())
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	if got[0].Num != 1 || got[0].Title != "제로트러스트 아키텍처" {
		t.Errorf("expected first occurrence of 1 to win, got %+v", got[0])
	}
	if got[1].Num != 2 {
		t.Errorf("expected sorted order, got %+v", got)
	}
}

func TestListingBare_RequiresCorroboratingLabel(t *testing.T) {
	doc := document.New("bare.pdf", []string{
		"1. 양자내성암호 대응 전략\n출제의도 : 암호 전환 계획 수립\n본문이 이어지는 답안 페이지입니다",
		"3. 충분히 긴 제목이지만 근거 없음\n그냥 서술만 있는 페이지라서 채택되지 않아야 합니다",
	})
	got := ExtractListing(doc, VariantBare, DefaultParams())
	if len(got) != 1 {
		t.Fatalf("expected 1 entry, got %d: %+v", len(got), got)
	}
	if got[0].Num != 1 || got[0].Title != "양자내성암호 대응 전략" {
		t.Errorf("unexpected entry: %+v", got[0])
	}
}

func TestListingBare_RejectsShortTitlesAndThinPages(t *testing.T) {
	doc := document.New("bare.pdf", []string{
		"2. 짧다\n출제의도 : 제목이 세 글자 이하라 걸러져야 하는 경우입니다",
		"4. 목차",
	})
	got := ExtractListing(doc, VariantBare, DefaultParams())
	if len(got) != 0 {
		t.Fatalf("expected no entries, got %+v", got)
	}
}
