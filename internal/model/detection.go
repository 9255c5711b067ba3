package model

// ReferenceSource is any document checked for overlap against submitted
// text: a static corpus entry or a web-fetched page. Immutable once built.
type ReferenceSource struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

// MatchSegment is a contiguous span of the submitted text attributed to one
// source. Start/End are byte offsets into the original string, End exclusive.
// Segments from the same source never overlap or touch; segments from
// different sources may cover the same span.
type MatchSegment struct {
	Start       int    `json:"start"`
	End         int    `json:"end"`
	SourceID    string `json:"source_id"`
	SourceTitle string `json:"source_title"`
}

// Len returns the character length of the segment.
func (m MatchSegment) Len() int { return m.End - m.Start }

// SourceSummary aggregates per-source match evidence. Exactness is the mean
// character-level similarity (0..1) between matched submitted spans and the
// corresponding source regions; 1.0 means verbatim reuse.
type SourceSummary struct {
	SourceID     string  `json:"source_id"`
	Title        string  `json:"title"`
	URL          string  `json:"url"`
	SegmentCount int     `json:"segment_count"`
	MatchedChars int     `json:"matched_chars"`
	Exactness    float64 `json:"exactness"`
}

// RiskLevel is the discrete classification derived from the similarity score.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// DetectionResult is the outcome of a single detection request. It is
// assembled field by field by the detector and never mutated afterwards.
type DetectionResult struct {
	ReportID        string          `json:"report_id,omitempty"`
	Similarity      int             `json:"similarity"`
	Risk            RiskLevel       `json:"risk"`
	Matches         []MatchSegment  `json:"matches"`
	Sources         []SourceSummary `json:"sources"`
	Recommendations []string        `json:"recommendations"`
	Summary         string          `json:"summary"`
}
