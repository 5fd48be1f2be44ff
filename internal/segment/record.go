package segment

// Meta identifies where a source document came from. Discovery derives the
// values from the source tree's naming conventions; the engine treats them
// as opaque strings.
type Meta struct {
	Gen     string `json:"gen"`
	Week    string `json:"week"`
	Subject string `json:"subject"`
	Session string `json:"session"`
}

// TopicRecord is one extracted topic, final once built. Page numbers are
// 1-based and inclusive in serialized form.
type TopicRecord struct {
	ID          string `json:"id"`
	Gen         string `json:"gen"`
	Week        string `json:"week"`
	Subject     string `json:"subject"`
	Session     string `json:"session"`
	QNum        int    `json:"q_num"`
	QTitle      string `json:"q_title"`
	Intent      string `json:"intent"`
	Approach    string `json:"approach"`
	Content     string `json:"content"`
	PageStart   int    `json:"page_start"`
	PageEnd     int    `json:"page_end"`
	HasOCRPages bool   `json:"has_ocr_pages"`
	SourcePDF   string `json:"source_pdf"`
}
