package local

import (
	"context"
	"strings"
	"sync"

	"github.com/custodia-labs/grasp/internal/core/domain"
	"github.com/custodia-labs/grasp/internal/core/ports/driven"
)

// Ensure ExtractiveAnswerer implements the interface.
var _ driven.AnswerBackend = (*ExtractiveAnswerer)(nil)

// ExtractiveAnswerer answers by selecting the best sentence of the best
// ranked passage.
type ExtractiveAnswerer struct {
	passageWords int

	mu      sync.Mutex
	content string
	index   *PassageIndex
}

// NewExtractiveAnswerer creates an answerer that indexes passages of up to
// passageWords words.
func NewExtractiveAnswerer(passageWords int) *ExtractiveAnswerer {
	if passageWords <= 0 {
		passageWords = domain.DefaultPassageWords
	}
	return &ExtractiveAnswerer{passageWords: passageWords}
}

// Answer ranks the document's passages against question.
// It returns nil when no passage matches.
func (a *ExtractiveAnswerer) Answer(ctx context.Context, documentText, question string) (*domain.AnswerResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	idx, err := a.indexFor(documentText)
	if err != nil {
		return nil, err
	}

	hits, err := idx.Search(ctx, question, 2)
	if err != nil {
		return nil, err
	}
	if len(hits) == 0 {
		return nil, nil
	}

	top := hits[0]
	answer := strings.TrimSpace(idx.BestSentence(top.Text, question))
	if answer == "" {
		return nil, nil
	}
	return domain.NewScoredAnswer(answer, idx.Confidence(question, hits), top.Text), nil
}

// Strategy reports extractive answers.
func (a *ExtractiveAnswerer) Strategy() domain.AnswerStrategy {
	return domain.StrategyExtractive
}

// Close releases the cached index.
func (a *ExtractiveAnswerer) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.index == nil {
		return nil
	}
	err := a.index.Close()
	a.index, a.content = nil, ""
	return err
}

// indexFor returns the index of content, rebuilding it when the document changed.
// Callers hold a.mu.
func (a *ExtractiveAnswerer) indexFor(content string) (*PassageIndex, error) {
	if a.index != nil && a.content == content {
		return a.index, nil
	}
	idx, err := NewPassageIndex(content, a.passageWords)
	if err != nil {
		return nil, err
	}
	if a.index != nil {
		_ = a.index.Close()
	}
	a.index, a.content = idx, content
	return idx, nil
}
