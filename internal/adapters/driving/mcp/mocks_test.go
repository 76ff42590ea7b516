package mcp

import (
	"context"
	"strings"

	"github.com/custodia-labs/grasp/internal/core/domain"
	"github.com/custodia-labs/grasp/internal/core/ports/driving"
)

// mockSessionService is a hand-rolled SessionService for handler tests.
type mockSessionService struct {
	info      *driving.DocumentInfo
	summary   *domain.Summary
	answer    *domain.AnswerResult
	questions *domain.QuestionSet
	status    string
	err       error

	loadedName string
	loadedData []byte
	asked      string
	submitted  bool
}

func (m *mockSessionService) Load(_ context.Context, name string, data []byte) (*driving.DocumentInfo, error) {
	m.loadedName, m.loadedData = name, data
	return m.info, m.err
}

func (m *mockSessionService) Document() *domain.Document { return nil }

func (m *mockSessionService) Summary() *domain.Summary { return m.summary }

func (m *mockSessionService) Ask(_ context.Context, question string) (*domain.AnswerResult, error) {
	m.asked = question
	return m.answer, m.err
}

func (m *mockSessionService) History() []domain.ChatMessage { return nil }

func (m *mockSessionService) ClearHistory() {}

func (m *mockSessionService) GenerateChallenge(_ context.Context) (*domain.QuestionSet, error) {
	return m.questions, m.err
}

func (m *mockSessionService) Questions() *domain.QuestionSet {
	if m.questions == nil {
		return nil
	}
	return m.questions.Clone()
}

func (m *mockSessionService) SetAnswer(i int, answer string) error {
	return m.questions.SetAnswer(i, answer)
}

func (m *mockSessionService) ResetAnswers() error { return nil }

func (m *mockSessionService) HideResults() error { return nil }

func (m *mockSessionService) Submit(_ context.Context) (*domain.QuestionSet, error) {
	m.submitted = true
	if m.err != nil {
		return nil, m.err
	}
	evaluations := make([]*domain.Evaluation, m.questions.Len())
	for i := range evaluations {
		evaluations[i] = &domain.Evaluation{
			IsCorrect: i == 0,
			Feedback:  "checked",
			Reference: m.questions.Questions[i].Context,
		}
	}
	if err := m.questions.Attach(evaluations); err != nil {
		return nil, err
	}
	return m.questions.Clone(), nil
}

func (m *mockSessionService) Snapshot() driving.SessionSnapshot {
	return driving.SessionSnapshot{
		Document: m.info,
		Summary:  m.summary,
		Status:   m.status,
		Strategy: "extractive",
	}
}

func (m *mockSessionService) Status() string { return m.status }

func (m *mockSessionService) SubmitAnswers(ctx context.Context, answers []string) (*domain.QuestionSet, error) {
	if m.questions == nil {
		return nil, domain.ErrNoQuestions
	}
	if len(answers) != m.questions.Len() {
		return nil, domain.ErrUnansweredQuestions
	}
	for _, a := range answers {
		if strings.TrimSpace(a) == "" {
			return nil, domain.ErrUnansweredQuestions
		}
	}
	for i, a := range answers {
		if err := m.questions.SetAnswer(i, a); err != nil {
			return nil, err
		}
	}
	return m.Submit(ctx)
}
