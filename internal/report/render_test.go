package report

import (
	"bytes"
	"strings"
	"testing"

	"golang.org/x/net/html"
)

// collectTags walks a parsed document and counts element occurrences.
func collectTags(n *html.Node, counts map[string]int) {
	if n.Type == html.ElementNode {
		counts[n.Data]++
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectTags(c, counts)
	}
}

func TestRenderMarkdown_DocumentStructure(t *testing.T) {
	md := []byte(strings.Join([]string{
		"# 기출 분석 리포트",
		"",
		"## 1. 요약",
		"",
		"총 120개 토픽을 분석했다.",
		"",
		"## 2. 라운드별 매칭",
		"",
		"| 교시 | 문제 | 매칭 토픽 |",
		"|---|---|---|",
		"| 1 | 샤딩 | DB 샤딩 전략 |",
		"| 2 | QUIC | HTTP/3와 QUIC |",
		"| 3 | 제로트러스트 | - |",
		"",
	}, "\n"))

	out, err := RenderMarkdown(md)
	if err != nil {
		t.Fatalf("RenderMarkdown: %v", err)
	}

	doc, err := html.Parse(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("output is not parseable HTML: %v", err)
	}
	counts := map[string]int{}
	collectTags(doc, counts)

	if counts["h1"] != 1 {
		t.Fatalf("expected 1 h1, got %d", counts["h1"])
	}
	if counts["h2"] != 2 {
		t.Fatalf("expected 2 h2, got %d", counts["h2"])
	}
	if counts["table"] != 1 {
		t.Fatalf("expected 1 table, got %d", counts["table"])
	}
	// Header row plus three data rows.
	if counts["tr"] != 4 {
		t.Fatalf("expected 4 table rows, got %d", counts["tr"])
	}
}
