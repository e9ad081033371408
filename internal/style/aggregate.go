package style

import "sort"

// Aggregate merges per-document metrics into one profile. Scalars are
// averaged; complex words and transitions are ranked by how many documents
// use them. An empty corpus yields a neutral profile.
func Aggregate(samples []Sample) Profile {
	if len(samples) == 0 {
		return Profile{
			FormalityScore:     NeutralFormality,
			CommonComplexWords: []string{},
			CommonTransitions:  []string{},
		}
	}

	var p Profile
	p.HasDocuments = true
	complexLists := make([][]string, 0, len(samples))
	transitionLists := make([][]string, 0, len(samples))
	for _, s := range samples {
		p.AverageSentenceLength += s.Metrics.AverageSentenceLength
		p.AverageParagraphLength += s.Metrics.AverageParagraphLength
		p.FormalityScore += s.Metrics.FormalityScore
		p.VocabularyDiversity += s.Metrics.VocabularyDiversity
		complexLists = append(complexLists, s.Metrics.ComplexWords)
		transitionLists = append(transitionLists, s.Metrics.TransitionPhrases)
	}
	n := float64(len(samples))
	p.AverageSentenceLength /= n
	p.AverageParagraphLength /= n
	p.FormalityScore /= n
	p.VocabularyDiversity /= n

	p.CommonComplexWords = topByFrequency(complexLists, MaxProfileListLength)
	p.CommonTransitions = topByFrequency(transitionLists, MaxProfileListLength)

	runes := []rune(samples[0].Content)
	if len(runes) > SampleTextLength {
		runes = runes[:SampleTextLength]
	}
	p.SampleText = string(runes)

	return p
}

// topByFrequency counts occurrences across lists and returns the limit most
// frequent entries. Ties keep first-seen order.
func topByFrequency(lists [][]string, limit int) []string {
	counts := make(map[string]int)
	var order []string
	for _, list := range lists {
		for _, item := range list {
			if counts[item] == 0 {
				order = append(order, item)
			}
			counts[item]++
		}
	}
	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > limit {
		order = order[:limit]
	}
	if order == nil {
		return []string{}
	}
	return order
}
