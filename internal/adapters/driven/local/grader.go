package local

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/grasp/internal/core/domain"
	"github.com/custodia-labs/grasp/internal/core/ports/driven"
	"github.com/custodia-labs/grasp/internal/core/text"
)

// Ensure LexicalGrader implements the interface.
var _ driven.AnswerGrader = (*LexicalGrader)(nil)

// LexicalGrader grades answers by term overlap with the part of the
// context the question is about.
//
// Cloze questions are graded against the hidden word, recovered by
// matching the blanked sentence against the context. Other questions
// compare the answer's new terms (those not already in the question)
// with the context sentences that share the most terms with the question.
type LexicalGrader struct {
	threshold float64
}

// NewLexicalGrader creates a grader requiring the given share of answer
// terms in the context. Values outside (0,1] use the default.
func NewLexicalGrader(threshold float64) *LexicalGrader {
	if threshold <= 0 || threshold > 1 {
		threshold = domain.DefaultMatchThreshold
	}
	return &LexicalGrader{threshold: threshold}
}

// Grade returns a verdict for answer.
func (g *LexicalGrader) Grade(ctx context.Context, question, source, answer string) (*domain.Verdict, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if hidden, sentence, ok := ClozeAnswer(question, source); ok {
		return gradeCloze(hidden, sentence, answer), nil
	}

	asked := termSet(question)
	focus := focusSentences(source, asked)
	reference := bestSentence(strings.Join(focus, " "), termSet(question+" "+answer), termSet)

	want := termSet(answer)
	for t := range asked {
		delete(want, t)
	}
	if len(want) == 0 {
		return &domain.Verdict{
			Feedback:  "Your answer only repeats the question and adds nothing to check against the document.",
			Reference: reference,
		}, nil
	}

	have := make(map[string]struct{})
	for _, sentence := range focus {
		for t := range termSet(sentence) {
			have[t] = struct{}{}
		}
	}
	found := 0
	for t := range want {
		if _, ok := have[t]; ok {
			found++
		}
	}
	recall := float64(found) / float64(len(want))

	v := &domain.Verdict{
		IsCorrect: found > 0 && recall >= g.threshold,
		Reference: reference,
	}
	if v.IsCorrect {
		v.Feedback = fmt.Sprintf("Correct. %d of %d key terms in your answer match the passage.", found, len(want))
	} else {
		v.Feedback = fmt.Sprintf("Not supported by the passage. Only %d of %d key terms in your answer match it.", found, len(want))
	}
	return v, nil
}

func gradeCloze(hidden, sentence, answer string) *domain.Verdict {
	v := &domain.Verdict{Reference: sentence}
	if _, ok := termSet(answer)[stem(hidden)]; ok {
		v.IsCorrect = true
		v.Feedback = fmt.Sprintf("Correct. The missing word is %q.", hidden)
		return v
	}
	v.Feedback = fmt.Sprintf("Not quite. The missing word is %q.", hidden)
	return v
}

// ClozeAnswer finds the sentence of source that a fill-in-the-blank
// question was cut from and returns the hidden word and that sentence.
func ClozeAnswer(question, source string) (hidden, sentence string, ok bool) {
	blanked, found := strings.CutPrefix(question, clozePrefix)
	if !found || !strings.Contains(blanked, Blank) {
		return "", "", false
	}
	qWords := strings.Fields(blanked)
	at := -1
	for i, w := range qWords {
		if strings.Contains(w, Blank) {
			at = i
			break
		}
	}
	before, after, _ := strings.Cut(qWords[at], Blank)

	for _, s := range text.Sentences(source) {
		sWords := strings.Fields(s)
		if len(sWords) != len(qWords) || !sameExcept(sWords, qWords, at) {
			continue
		}
		w := sWords[at]
		if !strings.HasPrefix(w, before) || !strings.HasSuffix(w, after) || len(w) <= len(before)+len(after) {
			continue
		}
		return w[len(before) : len(w)-len(after)], s, true
	}
	return "", "", false
}

func sameExcept(a, b []string, skip int) bool {
	for i := range a {
		if i != skip && a[i] != b[i] {
			return false
		}
	}
	return true
}

// focusSentences returns the sentences of source sharing the most terms
// with asked, or every sentence when none share any.
func focusSentences(source string, asked map[string]struct{}) []string {
	sentences := text.Sentences(source)
	best := 0
	scores := make([]int, len(sentences))
	for i, s := range sentences {
		for t := range termSet(s) {
			if _, ok := asked[t]; ok {
				scores[i]++
			}
		}
		best = max(best, scores[i])
	}
	if best == 0 {
		return sentences
	}
	var out []string
	for i, s := range sentences {
		if scores[i] == best {
			out = append(out, s)
		}
	}
	return out
}

// BestSentence returns the sentence of passage sharing the most analysed
// terms with query, or the first sentence when none do.
func BestSentence(passage, query string) string {
	return bestSentence(passage, termSet(query), termSet)
}
