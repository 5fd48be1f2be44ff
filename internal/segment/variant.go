package segment

// FormatVariant identifies which layout template a document follows.
// Classification assigns exactly one per document; every later stage
// dispatches on it.
type FormatVariant string

const (
	// VariantStandard has a listing page ("다음 문제 중 N문제를 선택") followed
	// by one answer body per topic.
	VariantStandard FormatVariant = "standard"
	// VariantInline puts the listing and the first answers on the same page.
	VariantInline FormatVariant = "inline"
	// VariantCard lays out one topic per card with 출제영역/난이도/★ headers.
	VariantCard FormatVariant = "card"
	// VariantBare has no listing; topics start directly.
	VariantBare FormatVariant = "bare"
	// VariantSparse is image-only or near-empty; it needs OCR before any
	// text strategy can work.
	VariantSparse FormatVariant = "sparse"
	// VariantMerged bundles an unrelated second source after the first.
	VariantMerged FormatVariant = "merged"
	// VariantProblemOnly is a single-page question sheet with no answers.
	VariantProblemOnly FormatVariant = "problem_only"
)
