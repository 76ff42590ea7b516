package comprehension

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/custodia-labs/grasp/internal/adapters/driven/local"
	"github.com/custodia-labs/grasp/internal/core/domain"
	"github.com/custodia-labs/grasp/internal/core/ports/driven"
	"github.com/custodia-labs/grasp/internal/core/text"
	"github.com/custodia-labs/grasp/internal/logger"
)

// Ensure LLMAnswerer implements the interfaces.
var (
	_ driven.AnswerBackend    = (*LLMAnswerer)(nil)
	_ driven.PromptStoreAware = (*LLMAnswerer)(nil)
)

// noAnswerSentinel is what the answer prompt asks the model to reply when
// the document holds no answer.
const noAnswerSentinel = "NO_ANSWER"

// LLMAnswerer synthesises narrative answers with a language model.
type LLMAnswerer struct {
	llm driven.LLMService
	cfg config
}

// NewLLMAnswerer creates a narrative answerer.
func NewLLMAnswerer(llm driven.LLMService, opts ...Option) *LLMAnswerer {
	return &LLMAnswerer{llm: llm, cfg: newConfig(opts)}
}

// SetPromptStore sets the prompt store.
func (a *LLMAnswerer) SetPromptStore(store driven.PromptStore) {
	a.cfg.prompts = store
}

// Answer asks the model. It returns nil when the model finds no answer.
func (a *LLMAnswerer) Answer(ctx context.Context, documentText, question string) (*domain.AnswerResult, error) {
	excerpt, err := a.reduce(ctx, documentText, question)
	if err != nil {
		return nil, err
	}

	prompt := fmt.Sprintf(driven.LoadPrompt(a.cfg.prompts, driven.PromptAnswer), excerpt, question)
	reply, err := a.llm.Generate(ctx, prompt, driven.GenerateOptions{Temperature: 0.2})
	if err != nil {
		return nil, err
	}

	reply = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(reply), "Answer:"))
	if reply == "" || strings.HasPrefix(reply, noAnswerSentinel) {
		return nil, nil
	}
	return domain.NewNarrativeAnswer(reply), nil
}

// Strategy reports narrative answers.
func (a *LLMAnswerer) Strategy() domain.AnswerStrategy {
	return domain.StrategyNarrative
}

// reduce keeps documents within the context budget by selecting the
// passages that rank best against question, in document order.
func (a *LLMAnswerer) reduce(ctx context.Context, documentText, question string) (string, error) {
	if text.WordCount(documentText) <= a.cfg.contextWords {
		return documentText, nil
	}

	idx, err := local.NewPassageIndex(documentText, a.cfg.passageWords)
	if err != nil {
		return "", err
	}
	defer idx.Close()

	hits, err := idx.Search(ctx, question, idx.Len())
	if err != nil {
		return "", err
	}
	if len(hits) == 0 {
		return text.TruncateWords(documentText, a.cfg.contextWords), nil
	}

	var picked []local.Hit
	budget := a.cfg.contextWords
	for _, h := range hits {
		n := text.WordCount(h.Text)
		if n > budget {
			continue
		}
		picked = append(picked, h)
		budget -= n
	}
	sort.Slice(picked, func(i, j int) bool { return picked[i].Position < picked[j].Position })

	parts := make([]string, len(picked))
	for i, h := range picked {
		parts[i] = h.Text
	}
	logger.Debug("answer context reduced to %d of %d passages", len(picked), idx.Len())
	return strings.Join(parts, "\n\n"), nil
}
