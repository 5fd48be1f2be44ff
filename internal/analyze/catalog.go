// Package analyze matches extracted review topics against past exam
// questions to measure how well the cohorts covered what was actually
// asked, and builds the markdown coverage report.
package analyze

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// Key identifies one exam question: exam type (관/응), session, number.
type Key struct {
	Exam    string
	Session int
	QNum    int
}

// Entry is the hand-curated keyword set for one exam question. Terms are
// matched against normalized topic text. Entries whose terms are only
// Q-number placeholders mark questions whose title could not be extracted
// from any transcript.
type Entry struct {
	Terms []string
	Label string
}

// Catalog is the question keyword set of one exam round.
type Catalog struct {
	Round   int
	Entries map[Key]Entry
}

func keyLess(a, b Key) bool {
	if a.Exam != b.Exam {
		return a.Exam < b.Exam
	}
	if a.Session != b.Session {
		return a.Session < b.Session
	}
	return a.QNum < b.QNum
}

// SortedKeys returns the catalog keys in (exam, session, number) order.
func (c Catalog) SortedKeys() []Key {
	keys := make([]Key, 0, len(c.Entries))
	for k := range c.Entries {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keyLess(keys[i], keys[j]) })
	return keys
}

// DefaultCatalogs returns the embedded catalogs for rounds 137 and 138.
func DefaultCatalogs() []Catalog {
	return []Catalog{catalog137(), catalog138()}
}

func catalog137() Catalog {
	return Catalog{Round: 137, Entries: map[Key]Entry{
		// 관 1교시
		{"관", 1, 1}:  {[]string{"IGP", "EGP", "동적라우팅"}, "IGP/EGP 동적 라우팅 프로토콜"},
		{"관", 1, 2}:  {[]string{"디지털포렌식", "아트팩트", "FORENSIC"}, "디지털 포렌식 아트팩트"},
		{"관", 1, 3}:  {[]string{"MODBUS"}, "MODBUS 프로토콜"},
		{"관", 1, 4}:  {[]string{"암호문공격", "CIPHERTEXTATTACK"}, "암호문 공격(Ciphertext Attack)"},
		{"관", 1, 5}:  {[]string{"GNN", "GRAPHNEURALNETWORK", "그래프신경망"}, "GNN(Graph Neural Network)"},
		{"관", 1, 6}:  {[]string{"AI거버넌스", "AIGOVERNANCE"}, "AI 거버넌스"},
		{"관", 1, 7}:  {[]string{"트랜스포머", "TRANSFORMER", "MOE", "MIXTUREOFEXPERTS"}, "트랜스포머/MoE"},
		{"관", 1, 8}:  {[]string{"AI신뢰성검인증", "신뢰성검증제도"}, "AI 신뢰성 검인증 제도(CAT)"},
		{"관", 1, 9}:  {[]string{"AB테스팅", "AB테스트", "ABTESTING"}, "A/B 테스팅"},
		{"관", 1, 10}: {[]string{"데이터늪", "DATASWAMP"}, "데이터 늪(Data Swamp)"},
		{"관", 1, 11}: {[]string{"역공학", "재공학", "REVERSEENGINEERING", "REENGINEERING"}, "소프트웨어 역공학/재공학"},
		{"관", 1, 12}: {[]string{"이진탐색트리", "BINARYSEARCHTREE"}, "이진 탐색 트리"},
		{"관", 1, 13}: {[]string{"연관규칙", "ASSOCIATIONRULE"}, "데이터마이닝 연관 규칙 분석"},
		// 관 2교시
		{"관", 2, 1}: {[]string{"캐시메모리", "CACHEMEMORY", "캐시일관성", "CACHECOHERENCE"}, "캐시메모리"},
		{"관", 2, 2}: {[]string{"운영전환", "전자상거래"}, "전자상거래 시스템 운영전환"},
		{"관", 2, 3}: {[]string{"MCP", "MODELCONTEXTPROTOCOL"}, "MCP(Model Context Protocol) 보안"},
		{"관", 2, 4}: {[]string{"초거대AI", "AI도입가이드라인"}, "공공부문 초거대AI 도입 가이드라인"},
		{"관", 2, 5}: {[]string{"Q5"}, "2교시 Q5 (제목 미추출)"},
		{"관", 2, 6}: {[]string{"Q6"}, "2교시 Q6 (제목 미추출)"},
		// 관 3교시
		{"관", 3, 1}: {[]string{"스케줄링기법", "프로세스스케줄링"}, "운영체제 스케줄링 기법"},
		{"관", 3, 2}: {[]string{"정보시스템감리", "운영감리", "유지보수감리"}, "정보시스템 운영/유지보수 감리"},
		{"관", 3, 3}: {[]string{"MULTIREGION", "멀티리전", "재해복구시스템"}, "Multi-Region Active-Active 재해복구"},
		{"관", 3, 4}: {[]string{"Q4"}, "3교시 Q4 (제목 미추출)"},
		{"관", 3, 5}: {[]string{"Q5"}, "3교시 Q5 (제목 미추출)"},
		{"관", 3, 6}: {[]string{"Q6"}, "3교시 Q6 (제목 미추출)"},
		// 관 4교시
		{"관", 4, 1}: {[]string{"BPF", "BERKELEYPACKETFILTER"}, "BPF 악성코드"},
		{"관", 4, 2}: {[]string{"벡터데이터베이스", "HNSW", "VECTORDATABASE"}, "벡터 데이터베이스/HNSW"},
		{"관", 4, 3}: {[]string{"쿠버네티스", "KUBERNETES", "K8S"}, "쿠버네티스(Kubernetes)"},
		{"관", 4, 4}: {[]string{"UML", "행위다이어그램"}, "UML 행위 다이어그램"},
		{"관", 4, 5}: {[]string{"Q5"}, "4교시 Q5 (제목 미추출)"},
		{"관", 4, 6}: {[]string{"대가산정"}, "소프트웨어 사업 대가산정"},
	}}
}

func catalog138() Catalog {
	return Catalog{Round: 138, Entries: map[Key]Entry{
		// 관 1교시
		{"관", 1, 1}:  {[]string{"AIRMF", "AI위험관리프레임워크"}, "AI RMF(Risk Management Framework)"},
		{"관", 1, 2}:  {[]string{"프로젝트위험관리", "위험관리프로세스"}, "프로젝트 위험관리"},
		{"관", 1, 3}:  {[]string{"ISO42001", "IEC42001", "42001"}, "ISO/IEC 42001:2023"},
		{"관", 1, 4}:  {[]string{"베이즈정리", "베이즈", "BAYES"}, "베이즈 정리"},
		{"관", 1, 5}:  {[]string{"안면인식", "얼굴인식결제"}, "안면인식 결제 서비스"},
		{"관", 1, 6}:  {[]string{"테일러링", "TAILORING"}, "개발방법론 테일러링"},
		{"관", 1, 7}:  {[]string{"자기회귀모형", "AUTOREGRESSIVE", "이동평균모형", "ARIMA"}, "자기회귀모형/이동평균모형"},
		{"관", 1, 8}:  {[]string{"의사결정나무", "DECISIONTREE"}, "분류 알고리즘 의사결정나무"},
		{"관", 1, 9}:  {[]string{"제로트러스트", "ZEROTRUST"}, "제로 트러스트"},
		{"관", 1, 10}: {[]string{"기능안전", "IEC61508", "FUNCTIONALSAFETY"}, "기능안전(IEC 61508)"},
		{"관", 1, 11}: {[]string{"소프트웨어정의", "SDX", "SDV", "소프트웨어정의기술"}, "소프트웨어 정의 기술(SDx)"},
		{"관", 1, 12}: {[]string{"디지털트윈", "DIGITALTWIN"}, "디지털 트윈"},
		{"관", 1, 13}: {[]string{"CCPA", "GDPR", "개인정보보호법비교"}, "개인정보보호법 비교 (CCPA/GDPR)"},
		// 2교시
		{"관", 2, 1}: {[]string{"AIBOM", "AIBILLOFMATERIALS"}, "AI-BOM"},
		{"관", 2, 2}: {[]string{"형상관리", "CONFIGURATIONMANAGEMENT"}, "형상관리"},
		{"관", 2, 3}: {[]string{"CMMI", "CAPABILITYMATURITYMODEL"}, "CMMI 3.0"},
		{"관", 2, 4}: {[]string{"데이터품질관리", "데이터품질"}, "데이터 품질관리"},
		{"관", 2, 5}: {[]string{"멀티클라우드", "MULTICLOUD"}, "멀티 클라우드"},
		{"관", 2, 6}: {[]string{"자율주행", "AUTONOMOUSDRIVING"}, "자율주행"},
		// 3교시
		{"관", 3, 1}: {[]string{"SAAS", "SOFTWAREASASERVICE"}, "SaaS"},
		{"관", 3, 2}: {[]string{"블록체인", "BLOCKCHAIN"}, "블록체인"},
		{"관", 3, 3}: {[]string{"RAG", "RETRIEVALAUGMENTED"}, "RAG(검색 증강 생성)"},
		{"관", 3, 4}: {[]string{"로드밸런싱", "LOADBALANCING"}, "로드밸런싱"},
		{"관", 3, 5}: {[]string{"클라우드네이티브", "CLOUDNATIVE"}, "전자정부 클라우드 네이티브"},
		{"관", 3, 6}: {[]string{"OSPF", "BGP"}, "OSPF/BGP"},
		// 4교시
		{"관", 4, 1}: {[]string{"ISP", "ISMP"}, "ISP/ISMP"},
		{"관", 4, 2}: {[]string{"AGENTICAI", "에이전틱"}, "Agentic AI"},
		{"관", 4, 3}: {[]string{"마이크로서비스", "MSA", "MICROSERVICE"}, "마이크로서비스(MSA)"},
		{"관", 4, 4}: {[]string{"양자컴퓨팅", "QUANTUMCOMPUTING", "양자"}, "양자 컴퓨팅"},
		{"관", 4, 5}: {[]string{"온디바이스AI", "ONDEVICEAI"}, "온디바이스 AI"},
		{"관", 4, 6}: {[]string{"DEVSECOPS"}, "DevSecOps"},
	}}
}

// LoadCatalogCSV reads catalog rows of the form
// round,exam,session,q_num,label,term[,term...]; rows for several rounds
// may be mixed. A leading header row is skipped.
func LoadCatalogCSV(r io.Reader) ([]Catalog, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse catalog csv: %w", err)
	}

	byRound := map[int]Catalog{}
	for i, row := range records {
		if i == 0 && len(row) > 0 && strings.EqualFold(strings.TrimSpace(row[0]), "round") {
			continue
		}
		if len(row) < 6 {
			return nil, fmt.Errorf("catalog csv row %d: expected at least 6 columns, got %d", i+1, len(row))
		}
		round, err := strconv.Atoi(strings.TrimSpace(row[0]))
		if err != nil {
			return nil, fmt.Errorf("catalog csv row %d: bad round %q", i+1, row[0])
		}
		session, err := strconv.Atoi(strings.TrimSpace(row[2]))
		if err != nil {
			return nil, fmt.Errorf("catalog csv row %d: bad session %q", i+1, row[2])
		}
		qnum, err := strconv.Atoi(strings.TrimSpace(row[3]))
		if err != nil {
			return nil, fmt.Errorf("catalog csv row %d: bad q_num %q", i+1, row[3])
		}

		var terms []string
		for _, c := range row[5:] {
			if c = strings.TrimSpace(c); c != "" {
				terms = append(terms, c)
			}
		}
		if len(terms) == 0 {
			return nil, fmt.Errorf("catalog csv row %d: no terms", i+1)
		}

		cat, ok := byRound[round]
		if !ok {
			cat = Catalog{Round: round, Entries: map[Key]Entry{}}
			byRound[round] = cat
		}
		key := Key{Exam: strings.TrimSpace(row[1]), Session: session, QNum: qnum}
		cat.Entries[key] = Entry{Terms: terms, Label: strings.TrimSpace(row[4])}
	}

	rounds := make([]int, 0, len(byRound))
	for r := range byRound {
		rounds = append(rounds, r)
	}
	sort.Ints(rounds)

	catalogs := make([]Catalog, 0, len(rounds))
	for _, r := range rounds {
		catalogs = append(catalogs, byRound[r])
	}
	return catalogs, nil
}
