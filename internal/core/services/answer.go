package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/grasp/internal/core/domain"
	"github.com/custodia-labs/grasp/internal/core/ports/driven"
	"github.com/custodia-labs/grasp/internal/core/ports/driving"
	"github.com/custodia-labs/grasp/internal/logger"
)

// Ensure AnswerService implements the interface.
var _ driving.AnswerService = (*AnswerService)(nil)

// AnswerService answers questions with whichever backend was selected,
// and guarantees the result shape regardless of backend.
type AnswerService struct {
	backend driven.AnswerBackend
	call    caller
}

// NewAnswerService creates an answer service.
func NewAnswerService(
	backend driven.AnswerBackend,
	backendSettings domain.BackendSettings,
	backendName string,
	observer driven.BackendObserver,
) *AnswerService {
	return &AnswerService{
		backend: backend,
		call:    newCaller(backendSettings.Timeout, backendName, observer),
	}
}

// Strategy reports the active answer strategy.
func (s *AnswerService) Strategy() domain.AnswerStrategy {
	return s.backend.Strategy()
}

// Ask answers question from documentText.
func (s *AnswerService) Ask(ctx context.Context, documentText, question string) (*domain.AnswerResult, error) {
	logger.Section("Answer")

	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("%w: question is empty", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(documentText) == "" {
		return nil, domain.ErrNoDocument
	}
	logger.Debug("Question: %q, strategy: %s", question, s.backend.Strategy())

	var result *domain.AnswerResult
	err := s.call.run(ctx, opAnswer, func(ctx context.Context) error {
		var err error
		result, err = s.backend.Answer(ctx, documentText, question)
		return err
	})
	if err != nil {
		return nil, err
	}

	result = conform(result)
	logger.Debug("Answer: %q, confidence: %d", result.Answer, result.ConfidenceValue())
	return result, nil
}

// conform enforces the answer invariants on a backend result.
func conform(r *domain.AnswerResult) *domain.AnswerResult {
	if r == nil || strings.TrimSpace(r.Answer) == "" || r.IsNoAnswer() {
		return domain.NoAnswer()
	}
	answer := strings.TrimSpace(r.Answer)
	if r.IsComprehensive {
		return domain.NewNarrativeAnswer(answer)
	}
	return domain.NewScoredAnswer(answer, r.ConfidenceValue(), r.Context)
}
