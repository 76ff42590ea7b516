package comprehension

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/custodia-labs/grasp/internal/core/domain"
	"github.com/custodia-labs/grasp/internal/core/ports/driven"
)

// Ensure LLMQuestionGenerator implements the interfaces.
var (
	_ driven.QuestionGenerator = (*LLMQuestionGenerator)(nil)
	_ driven.PromptStoreAware  = (*LLMQuestionGenerator)(nil)
)

// LLMQuestionGenerator asks a language model for comprehension questions.
type LLMQuestionGenerator struct {
	llm driven.LLMService
	cfg config
}

// NewLLMQuestionGenerator creates a question generator.
func NewLLMQuestionGenerator(llm driven.LLMService, opts ...Option) *LLMQuestionGenerator {
	return &LLMQuestionGenerator{llm: llm, cfg: newConfig(opts)}
}

// SetPromptStore sets the prompt store.
func (g *LLMQuestionGenerator) SetPromptStore(store driven.PromptStore) {
	g.cfg.prompts = store
}

// GenerateQuestions writes one question per excerpt. A question keeps the
// context the model quoted when that quote comes from one of the excerpts;
// otherwise it takes the excerpt at its position. Extra questions beyond
// the excerpts keep an empty Context.
func (g *LLMQuestionGenerator) GenerateQuestions(ctx context.Context, excerpts []string) ([]domain.ChallengeQuestion, error) {
	var numbered strings.Builder
	for i, e := range excerpts {
		fmt.Fprintf(&numbered, "%d. %s\n\n", i+1, e)
	}

	prompt := fmt.Sprintf(driven.LoadPrompt(g.cfg.prompts, driven.PromptQuestions), len(excerpts), numbered.String())
	reply, err := g.llm.Generate(ctx, prompt, driven.GenerateOptions{Temperature: 0.5, JSON: true})
	if err != nil {
		return nil, err
	}

	questions, err := parseQuestions(reply)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrBackend, err)
	}
	attribute(questions, excerpts)
	return questions, nil
}

// attribute ties each question to the excerpt it was written from.
func attribute(questions []domain.ChallengeQuestion, excerpts []string) {
	for i := range questions {
		if quotedFrom(questions[i].Context, excerpts) {
			continue
		}
		questions[i].Context = ""
		if i < len(excerpts) {
			questions[i].Context = excerpts[i]
		}
	}
}

// quotedFrom reports whether quote appears in one of excerpts, ignoring
// case and spacing.
func quotedFrom(quote string, excerpts []string) bool {
	if strings.TrimSpace(quote) == "" {
		return false
	}
	for _, e := range excerpts {
		if containsFold(e, quote) {
			return true
		}
	}
	return false
}
