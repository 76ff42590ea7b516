package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/grasp/internal/core/domain"
	"github.com/custodia-labs/grasp/internal/core/ports/driven"
	"github.com/custodia-labs/grasp/internal/postprocessors"
	"github.com/custodia-labs/grasp/internal/postprocessors/chunker"
)

// mockSummariser returns the first maxWords words of its input unless fn is set.
type mockSummariser struct {
	mu    sync.Mutex
	calls []summariseCall
	fn    func(ctx context.Context, text string, maxWords, minWords int) (string, error)
}

type summariseCall struct {
	words    int
	maxWords int
	minWords int
}

func (m *mockSummariser) Summarise(ctx context.Context, text string, maxWords, minWords int) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, summariseCall{words: len(strings.Fields(text)), maxWords: maxWords, minWords: minWords})
	m.mu.Unlock()
	if m.fn != nil {
		return m.fn(ctx, text, maxWords, minWords)
	}
	words := strings.Fields(text)
	if len(words) > maxWords {
		words = words[:maxWords]
	}
	return strings.Join(words, " "), nil
}

func (m *mockSummariser) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

type mockAnswerer struct {
	result   *domain.AnswerResult
	err      error
	strategy domain.AnswerStrategy
	delay    time.Duration
	gotDoc   string
	gotQ     string
}

func (m *mockAnswerer) Answer(ctx context.Context, documentText, question string) (*domain.AnswerResult, error) {
	m.gotDoc, m.gotQ = documentText, question
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return m.result, m.err
}

func (m *mockAnswerer) Strategy() domain.AnswerStrategy {
	if m.strategy == "" {
		return domain.StrategyExtractive
	}
	return m.strategy
}

// mockGenerator writes one question per excerpt unless questions is set.
type mockGenerator struct {
	questions []domain.ChallengeQuestion
	err       error
	excerpts  []string
}

func (m *mockGenerator) GenerateQuestions(_ context.Context, excerpts []string) ([]domain.ChallengeQuestion, error) {
	m.excerpts = excerpts
	if m.err != nil {
		return nil, m.err
	}
	if m.questions != nil {
		return m.questions, nil
	}
	out := make([]domain.ChallengeQuestion, len(excerpts))
	for i, e := range excerpts {
		out[i] = domain.ChallengeQuestion{Question: fmt.Sprintf("Question %d?", i+1), Context: e}
	}
	return out, nil
}

// mockGrader marks an answer correct when the context contains it.
type mockGrader struct {
	mu       sync.Mutex
	calls    int
	failOn   int
	contexts []string
}

func (m *mockGrader) Grade(_ context.Context, _, reference, answer string) (*domain.Verdict, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.contexts = append(m.contexts, reference)
	if m.failOn > 0 && m.calls == m.failOn {
		return nil, fmt.Errorf("grader exploded")
	}
	ok := strings.Contains(strings.ToLower(reference), strings.ToLower(answer))
	return &domain.Verdict{IsCorrect: ok, Feedback: fmt.Sprintf("correct=%t", ok)}, nil
}

type observedCall struct {
	op  string
	err error
}

type mockObserver struct {
	mu    sync.Mutex
	calls []observedCall
}

func (m *mockObserver) ObserveCall(op, _ string, _ time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, observedCall{op: op, err: err})
}

// mockRegistry returns fixed content for any supported file.
type mockRegistry struct {
	content string
	err     error
}

func (m *mockRegistry) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	content := m.content
	if content == "" {
		content = string(raw.Content)
	}
	return &driven.NormaliseResult{Document: domain.Document{Content: content, Metadata: map[string]any{}}}, nil
}

func (m *mockRegistry) Register(driven.Normaliser) {}

func (m *mockRegistry) SupportedExtensions() []string {
	return []string{domain.ExtensionPDF, domain.ExtensionText}
}

func testBackendSettings() domain.BackendSettings {
	return domain.BackendSettings{Preferred: domain.PreferLocal, Timeout: 5 * time.Second}
}

func newTestSummaryService(backend driven.Summariser, settings domain.SummarySettings, observer driven.BackendObserver) *SummaryService {
	pipeline := postprocessors.NewPipeline(chunker.New(
		chunker.WithChunkWords(settings.ChunkWords),
		chunker.WithTriggerWords(settings.TriggerWords),
	))
	return NewSummaryService(pipeline, backend, settings, testBackendSettings(), "test", observer)
}

func wordsText(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("w%d", i)
	}
	return strings.Join(parts, " ")
}
