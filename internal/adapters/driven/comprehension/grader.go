package comprehension

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/custodia-labs/grasp/internal/adapters/driven/local"
	"github.com/custodia-labs/grasp/internal/core/domain"
	"github.com/custodia-labs/grasp/internal/core/ports/driven"
)

// Ensure LLMGrader implements the interfaces.
var (
	_ driven.AnswerGrader     = (*LLMGrader)(nil)
	_ driven.PromptStoreAware = (*LLMGrader)(nil)
)

// LLMGrader asks a language model for a verdict.
type LLMGrader struct {
	llm driven.LLMService
	cfg config
}

// NewLLMGrader creates a grader.
func NewLLMGrader(llm driven.LLMService, opts ...Option) *LLMGrader {
	return &LLMGrader{llm: llm, cfg: newConfig(opts)}
}

// SetPromptStore sets the prompt store.
func (g *LLMGrader) SetPromptStore(store driven.PromptStore) {
	g.cfg.prompts = store
}

// gradeReply accepts both "is_correct" and "correct" for the verdict.
type gradeReply struct {
	IsCorrect *bool  `json:"is_correct"`
	Correct   *bool  `json:"correct"`
	Feedback  string `json:"feedback"`
	Reference string `json:"reference"`
}

// Grade asks the model whether answer is supported by source.
// A reference quoted from outside source is replaced by the source
// sentence closest to the question and answer.
func (g *LLMGrader) Grade(ctx context.Context, question, source, answer string) (*domain.Verdict, error) {
	prompt := fmt.Sprintf(driven.LoadPrompt(g.cfg.prompts, driven.PromptGrade), question, source, answer)
	reply, err := g.llm.Generate(ctx, prompt, driven.GenerateOptions{Temperature: 0, JSON: true})
	if err != nil {
		return nil, err
	}

	raw := extractJSON(reply)
	if !strings.HasPrefix(raw, "{") {
		return nil, fmt.Errorf("%w: grade reply is not a JSON object: %q", domain.ErrBackend, truncate(reply, 80))
	}
	var r gradeReply
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		return nil, fmt.Errorf("%w: decode grade: %w", domain.ErrBackend, err)
	}

	verdict := r.IsCorrect
	if verdict == nil {
		verdict = r.Correct
	}
	if verdict == nil {
		return nil, fmt.Errorf("%w: grade reply has no verdict", domain.ErrBackend)
	}

	v := &domain.Verdict{
		IsCorrect: *verdict,
		Feedback:  strings.TrimSpace(r.Feedback),
		Reference: strings.TrimSpace(r.Reference),
	}
	if v.Feedback == "" {
		if v.IsCorrect {
			v.Feedback = "Correct."
		} else {
			v.Feedback = "Incorrect."
		}
	}
	if v.Reference != "" && !containsFold(source, v.Reference) {
		v.Reference = local.BestSentence(source, question+" "+answer)
	}
	return v, nil
}

// containsFold reports whether needle occurs in haystack ignoring case and
// runs of whitespace.
func containsFold(haystack, needle string) bool {
	squash := func(s string) string {
		return strings.ToLower(strings.Join(strings.Fields(s), " "))
	}
	return strings.Contains(squash(haystack), squash(needle))
}
