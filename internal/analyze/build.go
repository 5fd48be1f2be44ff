package analyze

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dgallion1/docsplit/internal/segment"
)

// trendKeywords flag unexamined topics likely to appear in upcoming
// rounds.
var trendKeywords = []string{"가트너", "AI", "클라우드", "보안", "양자", "블록체인", "6G"}

type countEntry struct {
	name  string
	count int
}

// sortedCounts orders by count descending, name ascending on ties.
func sortedCounts(m map[string]int) []countEntry {
	entries := make([]countEntry, 0, len(m))
	for name, count := range m {
		entries = append(entries, countEntry{name, count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].name < entries[j].name
	})
	return entries
}

type reportStats struct {
	byGen         map[string]int
	weeksByGen    map[string]map[string]struct{}
	sessionsByGen map[string]map[string]int
	bySubject     map[string]int
	subjectsByGen map[string]map[string]int
	withIntent    int
	withApproach  int
	withContent   int
}

func tally(topics []segment.TopicRecord) reportStats {
	st := reportStats{
		byGen:         map[string]int{},
		weeksByGen:    map[string]map[string]struct{}{},
		sessionsByGen: map[string]map[string]int{},
		bySubject:     map[string]int{},
		subjectsByGen: map[string]map[string]int{},
	}
	for _, t := range topics {
		gen := t.Gen
		st.byGen[gen]++
		if st.weeksByGen[gen] == nil {
			st.weeksByGen[gen] = map[string]struct{}{}
		}
		st.weeksByGen[gen][t.Week] = struct{}{}

		sess := t.Session
		if sess == "" {
			sess = "UNKNOWN"
		}
		if st.sessionsByGen[gen] == nil {
			st.sessionsByGen[gen] = map[string]int{}
		}
		st.sessionsByGen[gen][sess]++

		subj := t.Subject
		if subj == "" {
			subj = "UNKNOWN"
		}
		st.bySubject[subj]++
		if st.subjectsByGen[gen] == nil {
			st.subjectsByGen[gen] = map[string]int{}
		}
		st.subjectsByGen[gen][subj]++

		if strings.TrimSpace(t.Intent) != "" {
			st.withIntent++
		}
		if strings.TrimSpace(t.Approach) != "" {
			st.withApproach++
		}
		if strings.TrimSpace(t.Content) != "" {
			st.withContent++
		}
	}
	return st
}

// Build renders the coverage report as markdown: overall summary, subject
// distribution, per-cohort evolution, hit rate against each catalog round,
// gap and unexamined-topic lists, intent references, and study
// recommendations.
func Build(topics []segment.TopicRecord, catalogs []Catalog, now time.Time) string {
	var lines []string
	add := func(format string, args ...any) {
		if len(args) == 0 {
			lines = append(lines, format)
			return
		}
		lines = append(lines, fmt.Sprintf(format, args...))
	}

	stamp := now.Format("2006-01-02 15:04")
	add("---")
	add("title: FB반 자료 분석 리포트")
	add("date: %s", stamp)
	add("tags: [분석, FB반, 기출, 적중률]")
	add("---")
	add("")
	add("# FB반 자료 분석 리포트")
	add("> 생성일: %s", stamp)
	add("")

	st := tally(topics)
	unexam := Unexamined(topics)
	gens := make([]string, 0, len(st.byGen))
	for g := range st.byGen {
		gens = append(gens, g)
	}
	sort.Strings(gens)

	add("## 1. 전체 요약")
	add("")
	add("| 항목 | 값 |")
	add("|---|---|")
	add("| 총 토픽 수 | **%d**개 |", len(topics))
	for _, g := range gens {
		add("| %s | %d개 (%d주차) |", g, st.byGen[g], len(st.weeksByGen[g]))
	}
	add("| 출제의도 있음 | %d개 |", st.withIntent)
	add("| 작성방안 있음 | %d개 |", st.withApproach)
	add("| 본문 있음 | %d개 |", st.withContent)
	add("| 미출제 토픽 | %d개 |", len(unexam))
	add("")

	add("## 2. 과목별 토픽 분포")
	add("")
	add("| 과목 | 전체 | " + strings.Join(gens, " | ") + " |")
	add("|---|---|" + strings.Repeat("---|", len(gens)))
	for _, e := range sortedCounts(st.bySubject) {
		bar := strings.Repeat("█", e.count/5) + strings.Repeat("░", max(0, 10-e.count/5))
		row := fmt.Sprintf("| %s | **%d** %s |", e.name, e.count, bar)
		for _, g := range gens {
			row += fmt.Sprintf(" %d |", st.subjectsByGen[g][e.name])
		}
		add(row)
	}
	add("")

	add("## 3. 기수별 학습 진화 분석")
	add("")
	for _, g := range gens {
		add("### %s (%d개 토픽, %d주차)", g, st.byGen[g], len(st.weeksByGen[g]))
		sessions := make([]string, 0, len(st.sessionsByGen[g]))
		for s := range st.sessionsByGen[g] {
			sessions = append(sessions, s)
		}
		sort.Strings(sessions)
		parts := make([]string, 0, len(sessions))
		for _, s := range sessions {
			parts = append(parts, fmt.Sprintf("%s:%d", s, st.sessionsByGen[g][s]))
		}
		add("- 교시 분포: %s", strings.Join(parts, ", "))
		parts = parts[:0]
		for _, e := range sortedCounts(st.subjectsByGen[g]) {
			parts = append(parts, fmt.Sprintf("%s:%d", e.name, e.count))
		}
		add("- 과목 분포: %s", strings.Join(parts, ", "))
		add("")
	}

	add("## 4. 기출 적중률 분석")
	add("")
	allMatches := make([]RoundMatches, len(catalogs))
	for i, cat := range catalogs {
		allMatches[i] = MatchRound(topics, cat)
	}
	for i, m := range allMatches {
		sum := m.Summary()
		hit := sum.Direct + sum.Indirect
		div := max(sum.Scorable, 1)

		add("### 4-%d. %d회 적중률", i+1, m.Round)
		add("")
		add("| 구분 | 수 | 비율 |")
		add("|---|---|---|")
		add("| ✅ 확실 (제목 매칭) | %d | %d%% |", sum.Direct, sum.Direct*100/div)
		add("| 🟡 간접 (본문 매칭) | %d | %d%% |", sum.Indirect, sum.Indirect*100/div)
		add("| ❌ 미커버 | %d | %d%% |", sum.Missed, sum.Missed*100/div)
		if sum.Skipped > 0 {
			add("| ⏭️ 미추출 | %d | - |", sum.Skipped)
		}
		add("| **총 적중** | **%d/%d** | **%d%%** |", hit, sum.Scorable, hit*100/div)
		add("")
		add("| 교시 | 문번 | 기출 토픽 | 매칭 | FB반 토픽 (최고 매칭) |")
		add("|---|---|---|---|---|")
		for _, key := range m.SortedKeys() {
			v := m.Results[key]
			switch {
			case v.Skipped:
				add("| %d교시 | Q%02d | %s | ⏭️ 미추출 | - |", key.Session, key.QNum, v.Label)
			case len(v.Matches) > 0:
				best := v.Matches[0]
				verdict := "🟡 간접"
				if best.TitleHits >= 1 {
					verdict = "✅ 확실"
				}
				icon := ""
				if best.IntentRef {
					icon = "📌"
				}
				add("| %d교시 | Q%02d | %s | %s | [%s] %s %s |", key.Session, key.QNum, v.Label, verdict, best.Gen, best.Title, icon)
			default:
				add("| %d교시 | Q%02d | %s | ❌ | *미커버* |", key.Session, key.QNum, v.Label)
			}
		}
		add("")
		if i == 0 {
			add("> ✅ 확실 = FB 토픽 제목에서 키워드 직접 발견")
			add("> 🟡 간접 = FB 토픽 본문에서만 발견 (같은 리뷰 세션에 포함된 다른 토픽일 수 있음)")
			add("> 📌 = 출제의도에서 해당 회차 직접 언급")
			add("")
		}
	}

	add("## 5. 학습 갭 분석")
	add("")
	var allGaps []Gap
	for i, m := range allMatches {
		add("### 5-%d. %d회 기출 중 FB반 미커버 토픽", i+1, m.Round)
		add("")
		gaps := m.Gaps()
		if len(gaps) > 0 {
			for _, g := range gaps {
				add("- **%d교시 Q%02d**: %s", g.Key.Session, g.Key.QNum, g.Label)
			}
		} else {
			add("- 없음 (모든 추출 문제 커버)")
		}
		add("")
		allGaps = append(allGaps, gaps...)
	}

	add("## 6. 미출제 토픽 목록 (향후 출제 대비)")
	add("")
	add("> 출제의도에 '미출제'로 명시된 **%d개** 토픽", len(unexam))
	add("")
	add("| # | 기수 | 주차 | 과목 | 토픽명 |")
	add("|---|---|---|---|---|")
	for i, u := range unexam {
		add("| %d | %s | %s | %s | %s |", i+1, u.Gen, u.Week, u.Subject, u.Title)
	}
	add("")

	add("## 7. 기출 회차별 FB반 참조 현황")
	add("")
	refs := IntentRefs(topics)
	nums := make([]int, 0, len(refs))
	for n := range refs {
		nums = append(nums, n)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(nums)))
	add("| 회차 | 참조 토픽 수 |")
	add("|---|---|")
	for _, n := range nums {
		if n >= 100 {
			add("| %d회 | %d |", n, len(refs[n]))
		}
	}
	add("")
	if len(catalogs) > 0 {
		if detail, ok := refs[catalogs[0].Round]; ok {
			add("### %d회 직접 참조 토픽", catalogs[0].Round)
			add("")
			for _, ref := range detail {
				add("- [%s] %s", ref.Gen, ref.Title)
			}
			add("")
		}
	}

	add("## 8. 학습 추천")
	add("")
	if len(allGaps) > 0 {
		add("### 🔴 우선 보강 필요 (기출 미커버)")
		add("")
		for _, g := range allGaps {
			add("- %s", g.Label)
		}
		add("")
	}
	add("### 🟡 미출제 최신 토픽 (출제 예상)")
	add("")
	for _, u := range unexam {
		for _, kw := range trendKeywords {
			if strings.Contains(u.Title, kw) || strings.Contains(u.Intent, kw) {
				add("- [%s] %s", u.Gen, u.Title)
				break
			}
		}
	}
	add("")
	add("### 🟢 고빈도 과목 (충분한 학습량)")
	add("")
	subjects := sortedCounts(st.bySubject)
	if len(subjects) > 5 {
		subjects = subjects[:5]
	}
	for _, e := range subjects {
		add("- %s: %d개 토픽", e.name, e.count)
	}
	add("")

	return strings.Join(lines, "\n")
}
