package style

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeEmpty(t *testing.T) {
	m := Analyze("")
	assert.Zero(t, m.AverageSentenceLength)
	assert.Zero(t, m.AverageParagraphLength)
	assert.Zero(t, m.VocabularyDiversity)
	assert.Equal(t, NeutralFormality, m.FormalityScore)
	assert.Empty(t, m.ComplexWords)
	assert.Empty(t, m.TransitionPhrases)
}

func TestAnalyzeBasicCounts(t *testing.T) {
	m := Analyze("One two three. Four five six.\n\nSeven eight.")
	assert.InDelta(t, 8.0/3.0, m.AverageSentenceLength, 1e-9)
	assert.InDelta(t, 4.0, m.AverageParagraphLength, 1e-9)
	assert.Equal(t, 1.0, m.VocabularyDiversity)
}

func TestAnalyzeNoSentenceTerminators(t *testing.T) {
	// A fragment without punctuation still counts as one sentence.
	m := Analyze("just some words")
	assert.InDelta(t, 3.0, m.AverageSentenceLength, 1e-9)
}

func TestVocabularyDiversityBounds(t *testing.T) {
	texts := []string{
		"the the the the",
		"alpha beta gamma",
		"A quick brown fox jumps over the lazy dog. The dog sleeps.",
	}
	for _, text := range texts {
		d := Analyze(text).VocabularyDiversity
		assert.GreaterOrEqual(t, d, 0.0, text)
		assert.LessOrEqual(t, d, 1.0, text)
	}
	assert.Equal(t, 1.0, Analyze("alpha beta gamma").VocabularyDiversity)
	assert.Less(t, Analyze("alpha beta alpha").VocabularyDiversity, 1.0)
}

func TestFormalityAlwaysInRange(t *testing.T) {
	texts := []string{
		"",
		"I I I I me my mine we us our",
		"don't can't won't I'm you're we've they'll",
		"Notwithstanding considerable institutional complexity, organizational accountability necessitates comprehensive documentation.",
		strings.Repeat("extraordinarily ", 50),
		"!!! ??? ...",
	}
	for _, text := range texts {
		f := Analyze(text).FormalityScore
		assert.GreaterOrEqual(t, f, 0.0, text)
		assert.LessOrEqual(t, f, 10.0, text)
	}
}

func TestFormalityFirstPersonPullsDown(t *testing.T) {
	casual := Analyze("I think this is really very good").FormalityScore
	plain := Analyze("think this is good").FormalityScore
	assert.Less(t, casual, plain)
}

func TestFormalityContractionsPullDown(t *testing.T) {
	withContractions := Analyze("It's fine and they're done, aren't they").FormalityScore
	without := Analyze("It is fine and they are done, are they not").FormalityScore
	assert.Less(t, withContractions, without)
}

func TestComplexWords(t *testing.T) {
	m := Analyze("The beautiful, beautiful and different idea was simple.")
	assert.Equal(t, []string{"beautiful", "different"}, m.ComplexWords)
}

func TestComplexWordsCapped(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 30; i++ {
		b.WriteString("abacadabra")
		b.WriteByte(byte('a' + i%26))
		b.WriteString(strings.Repeat("x", i/26+1))
		b.WriteString(" ")
	}
	m := Analyze(b.String())
	assert.Len(t, m.ComplexWords, MaxListLength)
}

func TestTransitionPhrases(t *testing.T) {
	m := Analyze("However, we left. For example, the car broke. Thusly is not a word.")
	assert.Equal(t, []string{"however", "for example"}, m.TransitionPhrases)
}

func TestSyllables(t *testing.T) {
	cases := map[string]int{
		"":          0,
		"cat":       1,
		"make":      1,
		"jumped":    1,
		"beautiful": 3,
		"different": 3,
		"yellow":    2,
		"rhythm":    1,
	}
	for word, want := range cases {
		assert.Equal(t, want, Syllables(word), word)
	}
}

func TestAggregateEmpty(t *testing.T) {
	p := Aggregate(nil)
	assert.False(t, p.HasDocuments)
	assert.Equal(t, 5.0, p.FormalityScore)
	assert.Empty(t, p.CommonComplexWords)
	assert.Empty(t, p.CommonTransitions)
	assert.Empty(t, p.SampleText)
}

func TestAggregateAveragesAndRanks(t *testing.T) {
	samples := []Sample{
		{Content: strings.Repeat("a", 600), Metrics: Metrics{
			AverageSentenceLength: 10, AverageParagraphLength: 40, FormalityScore: 4, VocabularyDiversity: 0.5,
			ComplexWords:      []string{"elephant", "umbrella"},
			TransitionPhrases: []string{"however"},
		}},
		{Content: "second", Metrics: Metrics{
			AverageSentenceLength: 20, AverageParagraphLength: 60, FormalityScore: 8, VocabularyDiversity: 0.7,
			ComplexWords:      []string{"umbrella", "hospital"},
			TransitionPhrases: []string{"therefore", "however"},
		}},
	}
	p := Aggregate(samples)
	require.True(t, p.HasDocuments)
	assert.InDelta(t, 15.0, p.AverageSentenceLength, 1e-9)
	assert.InDelta(t, 50.0, p.AverageParagraphLength, 1e-9)
	assert.InDelta(t, 6.0, p.FormalityScore, 1e-9)
	assert.InDelta(t, 0.6, p.VocabularyDiversity, 1e-9)
	assert.Equal(t, []string{"umbrella", "elephant", "hospital"}, p.CommonComplexWords)
	assert.Equal(t, []string{"however", "therefore"}, p.CommonTransitions)
	assert.Len(t, p.SampleText, SampleTextLength)
}

func TestAggregateTruncatesToTen(t *testing.T) {
	words := make([]string, 15)
	for i := range words {
		words[i] = strings.Repeat("w", i+5)
	}
	p := Aggregate([]Sample{{Content: "x", Metrics: Metrics{ComplexWords: words}}})
	assert.Len(t, p.CommonComplexWords, MaxProfileListLength)
	assert.Equal(t, words[:10], p.CommonComplexWords)
}
