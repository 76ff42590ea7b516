package local

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/custodia-labs/grasp/internal/core/domain"
	"github.com/custodia-labs/grasp/internal/core/ports/driven"
	"github.com/custodia-labs/grasp/internal/core/text"
)

// Ensure ClozeGenerator implements the interface.
var _ driven.QuestionGenerator = (*ClozeGenerator)(nil)

// Blank replaces the hidden term in a cloze question.
const Blank = "_____"

const clozePrefix = "Fill in the blank: "

// minClozeTermLen keeps short words like "cat" eligible while skipping noise.
const minClozeTermLen = 3

// ClozeGenerator writes fill-in-the-blank questions: the most salient term
// of each excerpt is hidden in the sentence that uses it.
type ClozeGenerator struct{}

// NewClozeGenerator creates a fill-in-the-blank generator.
func NewClozeGenerator() *ClozeGenerator {
	return &ClozeGenerator{}
}

// GenerateQuestions returns one question per excerpt with the excerpt as context.
func (g *ClozeGenerator) GenerateQuestions(ctx context.Context, excerpts []string) ([]domain.ChallengeQuestion, error) {
	questions := make([]domain.ChallengeQuestion, 0, len(excerpts))
	for _, excerpt := range excerpts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		questions = append(questions, domain.ChallengeQuestion{
			Question: clozeQuestion(excerpt),
			Context:  excerpt,
		})
	}
	return questions, nil
}

// clozeQuestion hides the most frequent content term of excerpt.
func clozeQuestion(excerpt string) string {
	term := salientTerm(excerpt)
	if term != "" {
		for _, sentence := range text.Sentences(excerpt) {
			if blanked, ok := blankTerm(sentence, term); ok {
				return clozePrefix + blanked
			}
		}
	}
	return fmt.Sprintf("In your own words, what does the passage beginning %q describe?", text.TruncateWords(excerpt, 8))
}

// salientTerm returns the stemmed content term that occurs most often,
// preferring longer terms and then the earliest.
func salientTerm(excerpt string) string {
	counts := make(map[string]int)
	var order []string
	for _, t := range terms(excerpt) {
		if len(t) < minClozeTermLen || isNumeric(t) {
			continue
		}
		if counts[t] == 0 {
			order = append(order, t)
		}
		counts[t]++
	}

	best := ""
	for _, t := range order {
		switch {
		case best == "":
			best = t
		case counts[t] > counts[best]:
			best = t
		case counts[t] == counts[best] && len(t) > len(best):
			best = t
		}
	}
	return best
}

// blankTerm replaces the first word of sentence whose stem is term,
// keeping surrounding punctuation.
func blankTerm(sentence, term string) (string, bool) {
	words := strings.Fields(sentence)
	for i, w := range words {
		core := strings.TrimFunc(w, func(r rune) bool { return !unicode.IsLetter(r) && !unicode.IsNumber(r) })
		if core == "" {
			continue
		}
		if stem(core) != term {
			continue
		}
		words[i] = strings.Replace(w, core, Blank, 1)
		return strings.Join(words, " "), true
	}
	return "", false
}

func isNumeric(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
