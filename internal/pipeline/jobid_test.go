package pipeline

import (
	"strings"
	"testing"
	"time"
)

func TestNewJobID_Format(t *testing.T) {
	id := newJobID()
	if len(id) != 26 {
		t.Fatalf("expected 26 characters, got %d (%q)", len(id), id)
	}
	for i, c := range id {
		if !strings.ContainsRune(crockford, c) {
			t.Errorf("character %d (%q) not in Crockford alphabet", i, c)
		}
	}
}

func TestNewJobID_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for range 1000 {
		id := newJobID()
		if seen[id] {
			t.Fatalf("duplicate ID generated: %q", id)
		}
		seen[id] = true
	}
}

func TestNewJobID_SortsBySubmissionTime(t *testing.T) {
	first := newJobID()
	time.Sleep(2 * time.Millisecond)
	second := newJobID()
	if !(first < second) {
		t.Errorf("expected %q < %q", first, second)
	}
}
