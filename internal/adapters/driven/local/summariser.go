package local

import (
	"context"
	"sort"
	"strings"

	"github.com/custodia-labs/grasp/internal/core/ports/driven"
	"github.com/custodia-labs/grasp/internal/core/text"
)

// Ensure FrequencySummariser implements the interface.
var _ driven.Summariser = (*FrequencySummariser)(nil)

// FrequencySummariser keeps the sentences whose content terms are most
// frequent in the text, in document order.
type FrequencySummariser struct{}

// NewFrequencySummariser creates a sentence-ranking summariser.
func NewFrequencySummariser() *FrequencySummariser {
	return &FrequencySummariser{}
}

type rankedSentence struct {
	pos   int
	text  string
	words int
	score float64
}

// Summarise selects sentences up to maxWords. Text already within maxWords
// is returned unchanged.
func (s *FrequencySummariser) Summarise(ctx context.Context, content string, maxWords, _ int) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	content = strings.TrimSpace(content)
	if maxWords <= 0 || text.WordCount(content) <= maxWords {
		return content, nil
	}

	sentences := text.Sentences(content)
	freq := make(map[string]int)
	for _, t := range terms(content) {
		freq[t]++
	}

	ranked := make([]rankedSentence, len(sentences))
	for i, sentence := range sentences {
		sentenceTerms := terms(sentence)
		score := 0.0
		for _, t := range sentenceTerms {
			score += float64(freq[t])
		}
		if len(sentenceTerms) > 0 {
			score /= float64(len(sentenceTerms))
		}
		ranked[i] = rankedSentence{pos: i, text: sentence, words: text.WordCount(sentence), score: score}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	var picked []rankedSentence
	budget := maxWords
	for _, r := range ranked {
		if r.words <= budget {
			picked = append(picked, r)
			budget -= r.words
		}
	}
	if len(picked) == 0 {
		return text.TrimToSentence(ranked[0].text, maxWords), nil
	}

	sort.Slice(picked, func(i, j int) bool { return picked[i].pos < picked[j].pos })
	parts := make([]string, len(picked))
	for i, p := range picked {
		parts[i] = p.text
	}
	return strings.Join(parts, " "), nil
}
