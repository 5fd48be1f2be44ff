package pipeline

import (
	"testing"
	"time"

	"github.com/dgallion1/docsplit/internal/segment"
)

func TestJob_StateTransitions(t *testing.T) {
	job := &Job{
		ID:        "test-1",
		Kind:      JobBatch,
		Status:    StatusQueued,
		Phase:     "queued",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	transitions := []struct {
		status JobStatus
		phase  string
	}{
		{StatusClassifying, "discovering review files"},
		{StatusExtracting, "segmenting documents"},
		{StatusSplitting, "writing reports"},
		{StatusCompleted, "done"},
	}

	for _, tr := range transitions {
		before := job.UpdatedAt
		// Small sleep to ensure time difference is detectable.
		time.Sleep(time.Millisecond)
		job.SetStatus(tr.status, tr.phase)

		if job.Status != tr.status {
			t.Errorf("expected status %q, got %q", tr.status, job.Status)
		}
		if job.Phase != tr.phase {
			t.Errorf("expected phase %q, got %q", tr.phase, job.Phase)
		}
		if !job.UpdatedAt.After(before) {
			t.Errorf("expected UpdatedAt to advance after SetStatus(%q)", tr.status)
		}
	}
}

func TestJob_SetStatusFailed(t *testing.T) {
	job := &Job{
		ID:        "test-fail",
		Status:    StatusExtracting,
		UpdatedAt: time.Now(),
	}
	job.SetStatus(StatusFailed, "segmenting documents")
	if job.Status != StatusFailed {
		t.Errorf("expected status %q, got %q", StatusFailed, job.Status)
	}
}

func TestJob_AddError(t *testing.T) {
	job := &Job{ID: "err-test", UpdatedAt: time.Now()}
	job.AddError("no_boundaries_found: 3주차.pdf")
	job.AddError("image_only_document: 5주차.pdf")

	snap := job.Snapshot()
	if len(snap.Progress.Errors) != 2 {
		t.Fatalf("expected 2 errors, got %d", len(snap.Progress.Errors))
	}
	if snap.Progress.Errors[0] != "no_boundaries_found: 3주차.pdf" {
		t.Errorf("expected first error %q, got %q", "no_boundaries_found: 3주차.pdf", snap.Progress.Errors[0])
	}
}

func TestJob_ProgressCounters(t *testing.T) {
	job := &Job{ID: "progress-test", UpdatedAt: time.Now()}
	job.SetTotalDocuments(42)
	job.IncrDocumentsProcessed()
	job.IncrDocumentsProcessed()
	job.IncrDocumentsProcessed()
	job.AddTopics(5)
	job.AddTopics(3)
	job.IncrFailures()

	snap := job.Snapshot()
	if snap.Progress.TotalDocuments != 42 {
		t.Errorf("expected 42 total documents, got %d", snap.Progress.TotalDocuments)
	}
	if snap.Progress.DocumentsProcessed != 3 {
		t.Errorf("expected 3 documents processed, got %d", snap.Progress.DocumentsProcessed)
	}
	if snap.Progress.TopicsFound != 8 {
		t.Errorf("expected 8 topics found, got %d", snap.Progress.TopicsFound)
	}
	if snap.Progress.Failures != 1 {
		t.Errorf("expected 1 failure, got %d", snap.Progress.Failures)
	}
}

func TestJob_FileData(t *testing.T) {
	job := &Job{ID: "data-test"}
	data := []byte("file content here")
	job.SetFileData(data)
	got := job.FileData()
	if string(got) != string(data) {
		t.Errorf("expected file data %q, got %q", data, got)
	}
}

func TestJob_SnapshotErrorsNotNil(t *testing.T) {
	// Snapshot should always return non-nil errors slice.
	job := &Job{ID: "snap-test", UpdatedAt: time.Now()}
	snap := job.Snapshot()
	if snap.Progress.Errors == nil {
		t.Error("expected non-nil errors slice in snapshot")
	}
	if len(snap.Progress.Errors) != 0 {
		t.Errorf("expected empty errors, got %d", len(snap.Progress.Errors))
	}
}

func TestJob_SnapshotRecordsOnlyWhenDone(t *testing.T) {
	job := &Job{ID: "rec-test", Kind: JobDocument, UpdatedAt: time.Now()}
	job.SetRecords([]segment.TopicRecord{{QNum: 1, QTitle: "가상화 기술"}})

	job.SetStatus(StatusLocating, "locating topic boundaries")
	if snap := job.Snapshot(); snap.Records != nil {
		t.Errorf("expected no records while running, got %d", len(snap.Records))
	}

	job.SetStatus(StatusCompleted, "done")
	snap := job.Snapshot()
	if len(snap.Records) != 1 {
		t.Fatalf("expected 1 record after completion, got %d", len(snap.Records))
	}
	if snap.Records[0].QTitle != "가상화 기술" {
		t.Errorf("expected record title %q, got %q", "가상화 기술", snap.Records[0].QTitle)
	}

	job.SetStatus(StatusPartial, "done")
	if snap := job.Snapshot(); len(snap.Records) != 1 {
		t.Errorf("expected records on partial job, got %d", len(snap.Records))
	}
}

func TestJobStore_PutGet(t *testing.T) {
	store := NewJobStore(time.Hour)
	job := &Job{ID: "store-1", UpdatedAt: time.Now()}
	store.Put(job)

	got := store.Get("store-1")
	if got == nil {
		t.Fatal("expected to get job back")
	}
	if got.ID != "store-1" {
		t.Errorf("expected ID %q, got %q", "store-1", got.ID)
	}
}

func TestJobStore_GetMissing(t *testing.T) {
	store := NewJobStore(time.Hour)
	if store.Get("nonexistent") != nil {
		t.Error("expected nil for missing job")
	}
}

func TestJobStore_TTLCleanup(t *testing.T) {
	store := NewJobStore(50 * time.Millisecond)

	expired := &Job{ID: "old", UpdatedAt: time.Now()}
	store.Put(expired)

	// Wait for the TTL to pass.
	time.Sleep(100 * time.Millisecond)

	// Add a fresh job.
	fresh := &Job{ID: "new", UpdatedAt: time.Now()}
	store.Put(fresh)

	store.Cleanup()

	if store.Get("old") != nil {
		t.Error("expected expired job to be cleaned up")
	}
	if store.Get("new") == nil {
		t.Error("expected fresh job to survive cleanup")
	}
}

func TestJobStore_CleanupEmpty(t *testing.T) {
	store := NewJobStore(time.Hour)
	// Should not panic on empty store.
	store.Cleanup()
}
