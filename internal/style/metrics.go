// Package style measures writing style heuristically: per-document
// metrics from Analyze and a corpus-wide profile from Aggregate.
package style

// Metrics describes one document's writing style.
type Metrics struct {
	AverageSentenceLength  float64  `json:"averageSentenceLength"`
	AverageParagraphLength float64  `json:"averageParagraphLength"`
	VocabularyDiversity    float64  `json:"vocabularyDiversity"`
	FormalityScore         float64  `json:"formalityScore"`
	ComplexWords           []string `json:"complexWords"`
	TransitionPhrases      []string `json:"transitionPhrases"`
}

// Profile is the style of a whole corpus.
type Profile struct {
	HasDocuments           bool     `json:"hasDocuments"`
	AverageSentenceLength  float64  `json:"averageSentenceLength"`
	AverageParagraphLength float64  `json:"averageParagraphLength"`
	FormalityScore         float64  `json:"formalityScore"`
	VocabularyDiversity    float64  `json:"vocabularyDiversity"`
	CommonComplexWords     []string `json:"commonComplexWords"`
	CommonTransitions      []string `json:"commonTransitions"`
	SampleText             string   `json:"sampleText"`
}

// Sample pairs a document's text with its measured metrics.
type Sample struct {
	Content string
	Metrics Metrics
}

const (
	// MaxListLength caps the complex word and transition lists of a document.
	MaxListLength = 20
	// MaxProfileListLength caps the merged lists of a profile.
	MaxProfileListLength = 10
	// SampleTextLength is the number of characters kept as profile sample.
	SampleTextLength = 500
	// NeutralFormality is reported when there is nothing to measure.
	NeutralFormality = 5.0
)
