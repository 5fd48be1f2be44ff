package analyze

import (
	"strings"
	"testing"
	"time"

	"github.com/dgallion1/docsplit/internal/segment"
)

func buildFixture() ([]segment.TopicRecord, []Catalog) {
	topics := []segment.TopicRecord{
		{
			Gen: "19기", Week: "1주차", Subject: "DB", Session: "1교시",
			QTitle: "디지털트윈 개념", Intent: "137회 기출", Approach: "작성방안 내용",
		},
		{
			Gen: "19기", Week: "2주차", Subject: "NW", Session: "2교시",
			QTitle: "네트워크 개요", Intent: "미출제 최신 AI 토픽", Content: "본문",
		},
		{
			Gen: "20기", Week: "1주차", Subject: "DB", Session: "1교시",
			QTitle: "무관 토픽",
		},
	}
	catalogs := []Catalog{
		{Round: 137, Entries: map[Key]Entry{
			{"관", 1, 1}: {Terms: []string{"디지털트윈"}, Label: "디지털 트윈"},
			{"관", 1, 2}: {Terms: []string{"텐서가속"}, Label: "텐서 가속"},
			{"관", 2, 5}: {Terms: []string{"Q5"}, Label: "2교시 Q5 (제목 미추출)"},
		}},
		{Round: 138, Entries: map[Key]Entry{
			{"관", 1, 1}: {Terms: []string{"엣지컴퓨팅"}, Label: "엣지 컴퓨팅"},
		}},
	}
	return topics, catalogs
}

func mustContain(t *testing.T, report string, wants ...string) {
	t.Helper()
	for _, w := range wants {
		if !strings.Contains(report, w) {
			t.Errorf("report missing %q", w)
		}
	}
}

func TestBuild_HeaderAndSummary(t *testing.T) {
	topics, catalogs := buildFixture()
	now := time.Date(2026, 2, 14, 9, 30, 0, 0, time.UTC)

	report := Build(topics, catalogs, now)
	mustContain(t, report,
		"title: FB반 자료 분석 리포트",
		"date: 2026-02-14 09:30",
		"> 생성일: 2026-02-14 09:30",
		"| 총 토픽 수 | **3**개 |",
		"| 19기 | 2개 (2주차) |",
		"| 20기 | 1개 (1주차) |",
		"| 출제의도 있음 | 2개 |",
		"| 작성방안 있음 | 1개 |",
		"| 본문 있음 | 1개 |",
		"| 미출제 토픽 | 1개 |",
	)
}

func TestBuild_SubjectAndGenSections(t *testing.T) {
	topics, catalogs := buildFixture()
	report := Build(topics, catalogs, time.Now())

	mustContain(t, report,
		"| 과목 | 전체 | 19기 | 20기 |",
		"| DB | **2** ░░░░░░░░░░ | 1 | 1 |",
		"| NW | **1** ░░░░░░░░░░ | 1 | 0 |",
		"### 19기 (2개 토픽, 2주차)",
		"- 교시 분포: 1교시:1, 2교시:1",
		"- 과목 분포: DB:1, NW:1",
		"### 20기 (1개 토픽, 1주차)",
	)
}

func TestBuild_HitRateTables(t *testing.T) {
	topics, catalogs := buildFixture()
	report := Build(topics, catalogs, time.Now())

	mustContain(t, report,
		"### 4-1. 137회 적중률",
		"| ✅ 확실 (제목 매칭) | 1 | 50% |",
		"| 🟡 간접 (본문 매칭) | 0 | 0% |",
		"| ❌ 미커버 | 1 | 50% |",
		"| ⏭️ 미추출 | 1 | - |",
		"| **총 적중** | **1/2** | **50%** |",
		"| 1교시 | Q01 | 디지털 트윈 | ✅ 확실 | [19기] 디지털트윈 개념 📌 |",
		"| 1교시 | Q02 | 텐서 가속 | ❌ | *미커버* |",
		"| 2교시 | Q05 | 2교시 Q5 (제목 미추출) | ⏭️ 미추출 | - |",
		"### 4-2. 138회 적중률",
		"| **총 적중** | **0/1** | **0%** |",
	)

	if got := strings.Count(report, "> ✅ 확실 = FB 토픽 제목에서 키워드 직접 발견"); got != 1 {
		t.Errorf("expected legend exactly once, got %d", got)
	}
	if got := strings.Count(report, "| ⏭️ 미추출 | 1 | - |"); got != 1 {
		t.Errorf("expected skipped summary row only for rounds with placeholders, got %d", got)
	}
}

func TestBuild_GapsAndRecommendations(t *testing.T) {
	topics, catalogs := buildFixture()
	report := Build(topics, catalogs, time.Now())

	mustContain(t, report,
		"### 5-1. 137회 기출 중 FB반 미커버 토픽",
		"- **1교시 Q02**: 텐서 가속",
		"### 5-2. 138회 기출 중 FB반 미커버 토픽",
		"- **1교시 Q01**: 엣지 컴퓨팅",
		"> 출제의도에 '미출제'로 명시된 **1개** 토픽",
		"| 1 | 19기 | 2주차 | NW | 네트워크 개요 |",
		"| 137회 | 1 |",
		"### 137회 직접 참조 토픽",
		"- [19기] 디지털트윈 개념",
		"### 🔴 우선 보강 필요 (기출 미커버)",
		"- 텐서 가속",
		"- 엣지 컴퓨팅",
		"### 🟡 미출제 최신 토픽 (출제 예상)",
		"- [19기] 네트워크 개요",
		"### 🟢 고빈도 과목 (충분한 학습량)",
		"- DB: 2개 토픽",
	)
}

func TestBuild_FullCoverageGapLine(t *testing.T) {
	topics := []segment.TopicRecord{
		{Gen: "19기", Week: "1주차", Subject: "DB", Session: "1교시", QTitle: "디지털트윈 개념"},
	}
	catalogs := []Catalog{{Round: 137, Entries: map[Key]Entry{
		{"관", 1, 1}: {Terms: []string{"디지털트윈"}, Label: "디지털 트윈"},
		{"관", 2, 5}: {Terms: []string{"Q5"}, Label: "2교시 Q5 (제목 미추출)"},
	}}}

	report := Build(topics, catalogs, time.Now())
	mustContain(t, report, "- 없음 (모든 추출 문제 커버)")
	if strings.Contains(report, "### 🔴 우선 보강 필요") {
		t.Error("expected no reinforcement section when nothing is uncovered")
	}
}

func TestBuild_NoTopics(t *testing.T) {
	report := Build(nil, DefaultCatalogs(), time.Now())
	mustContain(t, report,
		"| 총 토픽 수 | **0**개 |",
		"| ❌ 미커버 | 25 | 100% |",
		"| ❌ 미커버 | 31 | 100% |",
		"## 8. 학습 추천",
	)
	if strings.Contains(report, "없음 (모든 추출 문제 커버)") {
		t.Error("expected every question reported as a gap when no topics exist")
	}
}
