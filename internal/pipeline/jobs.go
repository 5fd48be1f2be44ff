package pipeline

import (
	"sync"
	"time"

	"github.com/dgallion1/docsplit/internal/segment"
)

// JobStatus represents the state of a splitting job.
type JobStatus string

const (
	StatusQueued      JobStatus = "queued"
	StatusClassifying JobStatus = "classifying"
	StatusLocating    JobStatus = "locating"
	StatusExtracting  JobStatus = "extracting"
	StatusSplitting   JobStatus = "splitting"
	StatusCompleted   JobStatus = "completed"
	StatusFailed      JobStatus = "failed"
	StatusPartial     JobStatus = "partial"
)

// JobKind selects what a job operates on.
type JobKind string

const (
	// JobBatch segments every review packet under a source directory.
	JobBatch JobKind = "batch"
	// JobDocument segments one uploaded document.
	JobDocument JobKind = "document"
)

// Job tracks the state of one submitted run.
type Job struct {
	mu sync.Mutex

	ID   string  `json:"job_id"`
	Kind JobKind `json:"kind"`

	SourceDir string `json:"source_dir,omitempty"`
	Filename  string `json:"filename,omitempty"`
	Split     bool   `json:"split"`
	OCR       bool   `json:"ocr"`

	Status JobStatus `json:"status"`
	Phase  string    `json:"phase"`

	Progress Progress `json:"progress"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Internal: not serialized.
	fileData []byte
	records  []segment.TopicRecord
	errors   []string
}

// NewJob creates a queued job of the given kind with a fresh ID.
func NewJob(kind JobKind) *Job {
	now := time.Now()
	return &Job{
		ID:        newJobID(),
		Kind:      kind,
		Status:    StatusQueued,
		Phase:     "queued",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Progress tracks per-run counters.
type Progress struct {
	TotalDocuments     int      `json:"total_documents"`
	DocumentsProcessed int      `json:"documents_processed"`
	TopicsFound        int      `json:"topics_found"`
	Failures           int      `json:"failures"`
	Errors             []string `json:"errors"`
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		if now.Sub(job.UpdatedAt) > s.ttl {
			delete(s.jobs, id)
		}
	}
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// SetTotalDocuments records how many documents the run covers.
func (j *Job) SetTotalDocuments(n int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.TotalDocuments = n
	j.UpdatedAt = time.Now()
}

// IncrDocumentsProcessed atomically bumps the processed counter.
func (j *Job) IncrDocumentsProcessed() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.DocumentsProcessed++
	j.UpdatedAt = time.Now()
}

// AddTopics adds to the extracted topic count.
func (j *Job) AddTopics(n int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.TopicsFound += n
	j.UpdatedAt = time.Now()
}

// IncrFailures bumps the failed-document counter.
func (j *Job) IncrFailures() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.Failures++
	j.UpdatedAt = time.Now()
}

// SetFileData sets the raw upload bytes for processing.
func (j *Job) SetFileData(data []byte) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.fileData = data
}

// FileData returns the raw upload bytes.
func (j *Job) FileData() []byte {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.fileData
}

// SetRecords stores the extracted records of a single-document job.
func (j *Job) SetRecords(records []segment.TopicRecord) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.records = records
}

// JobSnapshot is a read-only, JSON-safe copy of job state. Records are
// present only for completed single-document jobs.
type JobSnapshot struct {
	ID        string                `json:"job_id"`
	Kind      JobKind               `json:"kind"`
	SourceDir string                `json:"source_dir,omitempty"`
	Filename  string                `json:"filename,omitempty"`
	Split     bool                  `json:"split"`
	OCR       bool                  `json:"ocr"`
	Status    JobStatus             `json:"status"`
	Phase     string                `json:"phase"`
	Progress  Progress              `json:"progress"`
	CreatedAt time.Time             `json:"created_at"`
	UpdatedAt time.Time             `json:"updated_at"`
	Records   []segment.TopicRecord `json:"records,omitempty"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := j.Progress.Errors
	if errs == nil {
		errs = []string{}
	}
	var records []segment.TopicRecord
	if j.Status == StatusCompleted || j.Status == StatusPartial {
		records = j.records
	}
	return JobSnapshot{
		ID:        j.ID,
		Kind:      j.Kind,
		SourceDir: j.SourceDir,
		Filename:  j.Filename,
		Split:     j.Split,
		OCR:       j.OCR,
		Status:    j.Status,
		Phase:     j.Phase,
		Progress: Progress{
			TotalDocuments:     j.Progress.TotalDocuments,
			DocumentsProcessed: j.Progress.DocumentsProcessed,
			TopicsFound:        j.Progress.TopicsFound,
			Failures:           j.Progress.Failures,
			Errors:             errs,
		},
		CreatedAt: j.CreatedAt,
		UpdatedAt: j.UpdatedAt,
		Records:   records,
	}
}
