package style

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/kakuhq/kaku/internal/textstat"
)

// TransitionPhrases is the fixed list of transitions Analyze looks for.
var TransitionPhrases = []string{
	"however", "therefore", "furthermore", "moreover", "consequently",
	"nevertheless", "in addition", "for example", "for instance", "in contrast",
	"on the other hand", "as a result", "in conclusion", "similarly", "likewise",
	"meanwhile", "subsequently", "additionally", "thus", "hence", "accordingly",
}

var transitionPatterns = compileTransitions(TransitionPhrases)

var firstPerson = map[string]bool{
	"i": true, "me": true, "my": true, "mine": true, "myself": true,
	"we": true, "us": true, "our": true, "ours": true, "ourselves": true,
}

var contraction = regexp.MustCompile(`(?i)\b[a-z]+['’](?:t|s|re|ve|ll|d|m)\b`)

// Formality weights. They sum to 10 so the weighted components land in 0..10.
const (
	weightComplex     = 3.0
	weightWordLength  = 2.0
	weightFirstPerson = 2.5
	weightContraction = 2.5

	complexSaturation     = 0.2
	firstPersonSaturation = 0.1
	contractionSaturation = 0.05
	maxWordLength         = 10.0
)

func compileTransitions(phrases []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(phrases))
	for i, p := range phrases {
		out[i] = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(p) + `\b`)
	}
	return out
}

// Analyze computes Metrics for text. Empty text yields zero metrics with a
// neutral formality score.
func Analyze(text string) Metrics {
	words := textstat.Words(text)
	sentences := textstat.Sentences(text)
	paragraphs := textstat.Paragraphs(text)

	m := Metrics{
		ComplexWords:      []string{},
		TransitionPhrases: []string{},
	}
	if len(words) == 0 {
		m.FormalityScore = NeutralFormality
		return m
	}

	if len(sentences) > 0 {
		m.AverageSentenceLength = float64(len(words)) / float64(len(sentences))
	}
	if len(paragraphs) > 0 {
		m.AverageParagraphLength = float64(len(words)) / float64(len(paragraphs))
	}

	unique := make(map[string]bool, len(words))
	var complexCount, firstPersonCount, letters int
	for _, w := range words {
		letters += utf8.RuneCountInString(w)
		if firstPerson[w] {
			firstPersonCount++
		}
		if isComplex(w) {
			complexCount++
			if !unique[w] && len(m.ComplexWords) < MaxListLength {
				m.ComplexWords = append(m.ComplexWords, w)
			}
		}
		unique[w] = true
	}
	m.VocabularyDiversity = float64(len(unique)) / float64(len(words))

	for i, re := range transitionPatterns {
		if len(m.TransitionPhrases) == MaxListLength {
			break
		}
		if re.MatchString(text) {
			m.TransitionPhrases = append(m.TransitionPhrases, TransitionPhrases[i])
		}
	}

	total := float64(len(words))
	contractions := float64(len(contraction.FindAllStringIndex(text, -1)))
	avgWordLength := float64(letters) / total

	score := weightComplex*saturate(float64(complexCount)/total, complexSaturation) +
		weightWordLength*saturate(avgWordLength, maxWordLength) +
		weightFirstPerson*(1-saturate(float64(firstPersonCount)/total, firstPersonSaturation)) +
		weightContraction*(1-saturate(contractions/total, contractionSaturation))
	m.FormalityScore = clamp(score, 0, 10)

	return m
}

func isComplex(word string) bool {
	return len(word) > 4 && Syllables(word) >= 3
}

// saturate maps v onto 0..1, reaching 1 at limit.
func saturate(v, limit float64) float64 {
	if limit <= 0 {
		return 0
	}
	return clamp(v/limit, 0, 1)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

var (
	silentSuffix = regexp.MustCompile(`(?:[^laeiouy]es|ed|[^laeiouy]e)$`)
	leadingY     = regexp.MustCompile(`^y`)
	vowelGroup   = regexp.MustCompile(`[aeiouy]+`)
)

// Syllables estimates the syllable count of a single word by counting vowel
// groups after dropping a trailing silent e, "ed" or "es".
func Syllables(word string) int {
	word = strings.ToLower(strings.TrimSpace(word))
	if word == "" {
		return 0
	}
	if len(word) <= 3 {
		return 1
	}
	word = silentSuffix.ReplaceAllString(word, "")
	word = leadingY.ReplaceAllString(word, "")
	n := len(vowelGroup.FindAllStringIndex(word, -1))
	if n == 0 {
		return 1
	}
	return n
}
