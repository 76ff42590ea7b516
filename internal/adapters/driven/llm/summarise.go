package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/grasp/internal/core/ports/driven"
)

// Generator is the part of an LLM service that summaries need.
type Generator interface {
	Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error)
}

// SummaryTokens is the completion budget for a summary of maxWords words.
func SummaryTokens(maxWords int) int {
	return maxWords*2 + 64
}

// Summarise asks g for a summary of content between minWords and maxWords long.
func Summarise(
	ctx context.Context,
	g Generator,
	store driven.PromptStore,
	content string,
	maxWords, minWords int,
) (string, error) {
	if minWords > maxWords {
		minWords = maxWords
	}
	prompt := fmt.Sprintf(driven.LoadPrompt(store, driven.PromptSummarise), minWords, maxWords, content)

	result, err := g.Generate(ctx, prompt, driven.GenerateOptions{
		MaxTokens:   SummaryTokens(maxWords),
		Temperature: 0.3,
	})
	if err != nil {
		return "", fmt.Errorf("summarise: %w", err)
	}

	return strings.TrimSpace(result), nil
}
