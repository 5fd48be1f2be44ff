package analyze

import (
	"strings"
	"testing"
)

func TestDefaultCatalogs(t *testing.T) {
	cats := DefaultCatalogs()
	if len(cats) != 2 {
		t.Fatalf("expected 2 catalogs, got %d", len(cats))
	}
	if cats[0].Round != 137 || cats[1].Round != 138 {
		t.Fatalf("expected rounds 137 and 138, got %d and %d", cats[0].Round, cats[1].Round)
	}
	for _, cat := range cats {
		if len(cat.Entries) != 31 {
			t.Errorf("round %d: expected 31 entries, got %d", cat.Round, len(cat.Entries))
		}
	}

	if got := cats[0].Entries[Key{"관", 1, 3}].Label; got != "MODBUS 프로토콜" {
		t.Errorf("137 (1,3) label = %q", got)
	}
	if got := cats[1].Entries[Key{"관", 4, 6}].Terms; len(got) != 1 || got[0] != "DEVSECOPS" {
		t.Errorf("138 (4,6) terms = %v", got)
	}

	placeholders := 0
	for _, e := range cats[0].Entries {
		if placeholderOnly(e.Terms) {
			placeholders++
		}
	}
	if placeholders != 6 {
		t.Errorf("expected 6 placeholder questions in round 137, got %d", placeholders)
	}
	for _, e := range cats[1].Entries {
		if placeholderOnly(e.Terms) {
			t.Errorf("round 138 should have no placeholders, found %v", e.Terms)
		}
	}
}

func TestCatalogSortedKeys(t *testing.T) {
	cat := catalog137()
	keys := cat.SortedKeys()
	if len(keys) != 31 {
		t.Fatalf("expected 31 keys, got %d", len(keys))
	}
	if keys[0] != (Key{"관", 1, 1}) {
		t.Errorf("first key = %+v", keys[0])
	}
	if keys[len(keys)-1] != (Key{"관", 4, 6}) {
		t.Errorf("last key = %+v", keys[len(keys)-1])
	}
	for i := 1; i < len(keys); i++ {
		if !keyLess(keys[i-1], keys[i]) {
			t.Fatalf("keys out of order at %d: %+v before %+v", i, keys[i-1], keys[i])
		}
	}
}

func TestLoadCatalogCSV(t *testing.T) {
	csvData := `round,exam,session,q_num,label,terms
138,관,1,9,제로 트러스트,제로트러스트,ZEROTRUST
137,관,1,3,MODBUS 프로토콜,MODBUS
137,관,2,5,2교시 Q5 (제목 미추출),Q5
137,관,1,5,"GNN(Graph Neural Network)",GNN,그래프신경망,
`
	cats, err := LoadCatalogCSV(strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("LoadCatalogCSV: %v", err)
	}
	if len(cats) != 2 {
		t.Fatalf("expected 2 catalogs, got %d", len(cats))
	}
	if cats[0].Round != 137 || cats[1].Round != 138 {
		t.Fatalf("expected rounds sorted ascending, got %d then %d", cats[0].Round, cats[1].Round)
	}
	if len(cats[0].Entries) != 3 {
		t.Fatalf("expected 3 entries for round 137, got %d", len(cats[0].Entries))
	}

	gnn := cats[0].Entries[Key{"관", 1, 5}]
	if len(gnn.Terms) != 2 || gnn.Terms[0] != "GNN" || gnn.Terms[1] != "그래프신경망" {
		t.Errorf("expected trailing empty column dropped, got terms %v", gnn.Terms)
	}
	zt := cats[1].Entries[Key{"관", 1, 9}]
	if zt.Label != "제로 트러스트" || len(zt.Terms) != 2 {
		t.Errorf("138 (1,9) = %+v", zt)
	}
}

func TestLoadCatalogCSV_Errors(t *testing.T) {
	tests := []struct {
		name string
		csv  string
	}{
		{"bad round", "13x,관,1,1,라벨,용어\n"},
		{"bad session", "137,관,one,1,라벨,용어\n"},
		{"too few columns", "137,관,1,1,라벨\n"},
		{"no terms", "137,관,1,1,라벨, ,\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadCatalogCSV(strings.NewReader(tt.csv)); err == nil {
				t.Fatal("expected error, got nil")
			}
		})
	}
}
