package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/custodia-labs/grasp/internal/core/domain"
	"github.com/custodia-labs/grasp/internal/core/ports/driving"
)

// mockSession implements driving.SessionService for command tests.
type mockSession struct {
	summary   *domain.Summary
	answer    *domain.AnswerResult
	questions []domain.ChallengeQuestion
	correct   func(answer string) bool

	set        *domain.QuestionSet
	generated  int
	resets     int
	loadedName string
	err        error
}

func (m *mockSession) Load(_ context.Context, name string, data []byte) (*driving.DocumentInfo, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.loadedName = name
	return &driving.DocumentInfo{ID: "doc-1", Title: name, Words: len(strings.Fields(string(data))), Chars: len(data)}, nil
}

func (m *mockSession) Document() *domain.Document { return nil }

func (m *mockSession) Summary() *domain.Summary { return m.summary }

func (m *mockSession) Ask(_ context.Context, _ string) (*domain.AnswerResult, error) {
	return m.answer, nil
}

func (m *mockSession) History() []domain.ChatMessage { return nil }

func (m *mockSession) ClearHistory() {}

func (m *mockSession) GenerateChallenge(_ context.Context) (*domain.QuestionSet, error) {
	m.generated++
	m.set = domain.NewQuestionSet(append([]domain.ChallengeQuestion(nil), m.questions...))
	return m.set.Clone(), nil
}

func (m *mockSession) Questions() *domain.QuestionSet { return m.set.Clone() }

func (m *mockSession) SetAnswer(i int, answer string) error { return m.set.SetAnswer(i, answer) }

func (m *mockSession) ResetAnswers() error {
	m.resets++
	m.set.ResetAnswers()
	return nil
}

func (m *mockSession) HideResults() error {
	m.set.HideResults()
	return nil
}

func (m *mockSession) Submit(_ context.Context) (*domain.QuestionSet, error) {
	if !m.set.AllAnswered() {
		return nil, domain.ErrUnansweredQuestions
	}
	evaluations := make([]*domain.Evaluation, m.set.Len())
	for i, q := range m.set.Questions {
		ok := m.correct != nil && m.correct(m.set.Answers[i].Answer)
		evaluations[i] = &domain.Evaluation{IsCorrect: ok, Feedback: "graded", Reference: q.Context}
	}
	if err := m.set.Attach(evaluations); err != nil {
		return nil, err
	}
	return m.set.Clone(), nil
}

func (m *mockSession) SubmitAnswers(ctx context.Context, answers []string) (*domain.QuestionSet, error) {
	if len(answers) != m.set.Len() {
		return nil, domain.ErrUnansweredQuestions
	}
	working := m.set.Clone()
	for i, a := range answers {
		if err := working.SetAnswer(i, a); err != nil {
			return nil, err
		}
	}
	if !working.AllAnswered() {
		return nil, domain.ErrUnansweredQuestions
	}
	m.set = working
	return m.Submit(ctx)
}

func (m *mockSession) Snapshot() driving.SessionSnapshot { return driving.SessionSnapshot{} }

func (m *mockSession) Status() string { return "Using local extractive engine" }

// useSession installs a runtime factory serving session and returns the
// options it was last called with.
func useSession(t *testing.T, session driving.SessionService) *RuntimeOptions {
	t.Helper()
	var got RuntimeOptions
	original := newRuntime
	SetRuntimeFactory(func(_ context.Context, opts RuntimeOptions) (*Runtime, error) {
		got = opts
		return &Runtime{Session: session}, nil
	})
	t.Cleanup(func() { newRuntime = original })
	return &got
}

// writeDoc writes a text document into a temp dir and returns its path.
func writeDoc(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

// execute runs the root command with args and stdin, returning stdout and stderr.
func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	stdout, stderr := new(bytes.Buffer), new(bytes.Buffer)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		summarizeMaxWords = 0
		summarizeJSON = false
		askJSON = false
		mcpAddr = ""
	})
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}
