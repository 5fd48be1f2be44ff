package segment

// FailureReason classifies why a document or session scope produced no
// records. Failures are collected, never fatal to a batch.
type FailureReason string

const (
	FailOpen         FailureReason = "document_open_failure"
	FailNoListing    FailureReason = "no_listing_found"
	FailNoBoundaries FailureReason = "no_boundaries_found"
	FailImageOnly    FailureReason = "image_only_document"
	FailProblemOnly  FailureReason = "problem_list_only_sheet"
	FailMergedShort  FailureReason = "merged_segment_too_short"
	FailNoSessions   FailureReason = "no_sessions_found"
)

// Failure records one skipped document with its reason.
type Failure struct {
	Document string        `json:"document"`
	Reason   FailureReason `json:"reason"`
	Detail   string        `json:"detail,omitempty"`
}
