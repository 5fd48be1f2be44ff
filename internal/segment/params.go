package segment

// Params carries the tunable weights and thresholds of the engine. The
// defaults are the empirically chosen values the review corpus was tuned
// on; the service maps environment overrides onto them.
type Params struct {
	// Boundary confidence scoring.
	ScoreIntentNearby int
	ScoreNearTop      int
	ScoreTitlePrefix  int
	MinScore          int

	// Text density thresholds, in runes of end-trimmed page text.
	SparseDocChars   int // aggregate over the probe pages marking a sparse doc
	ImagePageChars   int // below this a page counts as image-only
	SkipPageChars    int // below this a page is skipped by scans
	ContentPageChars int // below this a page is left out of assembled bodies
}

func DefaultParams() Params {
	return Params{
		ScoreIntentNearby: 10,
		ScoreNearTop:      3,
		ScoreTitlePrefix:  5,
		MinScore:          3,

		SparseDocChars:   200,
		ImagePageChars:   50,
		SkipPageChars:    30,
		ContentPageChars: 10,
	}
}
