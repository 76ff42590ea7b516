// Package tuitest provides an in-memory session for TUI tests.
package tuitest

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/grasp/internal/core/domain"
	"github.com/custodia-labs/grasp/internal/core/ports/driving"
)

// Ensure Session implements the interface.
var _ driving.SessionService = (*Session)(nil)

// Session is a SessionService whose backend calls return canned results.
// Questions, answers and history behave like the real session.
type Session struct {
	mu sync.Mutex

	Doc      *domain.Document
	Sum      *domain.Summary
	Answer   *domain.AnswerResult
	Prompts  []domain.ChallengeQuestion
	Correct  func(i int, answer string) bool
	StatusOf string

	// Err is returned by Ask, GenerateChallenge and Submit when set.
	Err error

	history []domain.ChatMessage
	set     *domain.QuestionSet

	Asked     []string
	Generated int
	Submitted int
}

// NewSession returns a session with doc loaded and three questions.
func NewSession() *Session {
	content := "The river rises in the northern hills. It flows south through the valley. " +
		"Farmers use its water for rice and wheat."
	return &Session{
		Doc: &domain.Document{ID: "doc-1", Title: "river.txt", Content: content},
		Sum: &domain.Summary{Text: "A river flows south and waters farms.", MaxWords: 150, ChunkCount: 1},
		Answer: &domain.AnswerResult{
			Answer:          "south",
			IsComprehensive: false,
			Confidence:      intPtr(85),
			Context:         "It flows south through the valley.",
		},
		Prompts: []domain.ChallengeQuestion{
			{Question: "Where does the river rise?", Context: "The river rises in the northern hills."},
			{Question: "Which way does it flow?", Context: "It flows south through the valley."},
			{Question: "What do farmers grow?", Context: "Farmers use its water for rice and wheat."},
		},
		StatusOf: "Using local extractive engine (test)",
	}
}

func intPtr(n int) *int { return &n }

func (s *Session) Load(_ context.Context, name string, data []byte) (*driving.DocumentInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Doc = &domain.Document{ID: name, Title: name, Content: string(data)}
	s.history = nil
	s.set = nil
	return &driving.DocumentInfo{ID: name, Title: name, Words: s.Doc.WordCount(), Chars: s.Doc.CharCount()}, nil
}

func (s *Session) Document() *domain.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Doc
}

func (s *Session) Summary() *domain.Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Sum
}

func (s *Session) Ask(_ context.Context, question string) (*domain.AnswerResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Asked = append(s.Asked, question)
	if s.Err != nil {
		return nil, s.Err
	}
	now := time.Now()
	s.history = append(s.history,
		domain.ChatMessage{Role: domain.ChatRoleUser, Content: question, At: now},
		domain.ChatMessage{Role: domain.ChatRoleAssistant, Content: s.Answer.Answer, Result: s.Answer, At: now},
	)
	return s.Answer, nil
}

func (s *Session) History() []domain.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.ChatMessage(nil), s.history...)
}

func (s *Session) ClearHistory() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = nil
}

func (s *Session) GenerateChallenge(_ context.Context) (*domain.QuestionSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Generated++
	if s.Err != nil {
		return nil, s.Err
	}
	s.set = domain.NewQuestionSet(append([]domain.ChallengeQuestion(nil), s.Prompts...))
	return s.set.Clone(), nil
}

func (s *Session) Questions() *domain.QuestionSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.set == nil {
		return nil
	}
	return s.set.Clone()
}

func (s *Session) SetAnswer(i int, answer string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.set == nil {
		return domain.ErrNoQuestions
	}
	return s.set.SetAnswer(i, answer)
}

func (s *Session) ResetAnswers() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.set == nil {
		return domain.ErrNoQuestions
	}
	s.set.ResetAnswers()
	return nil
}

func (s *Session) HideResults() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.set == nil {
		return domain.ErrNoQuestions
	}
	s.set.HideResults()
	return nil
}

func (s *Session) Submit(_ context.Context) (*domain.QuestionSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Submitted++
	if s.set == nil {
		return nil, domain.ErrNoQuestions
	}
	if s.Err != nil {
		return nil, s.Err
	}
	if !s.set.AllAnswered() {
		return nil, domain.ErrUnansweredQuestions
	}
	if err := s.grade(s.set); err != nil {
		return nil, err
	}
	return s.set.Clone(), nil
}

func (s *Session) SubmitAnswers(_ context.Context, answers []string) (*domain.QuestionSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Submitted++
	if s.set == nil {
		return nil, domain.ErrNoQuestions
	}
	if s.Err != nil {
		return nil, s.Err
	}
	if len(answers) != s.set.Len() {
		return nil, domain.ErrUnansweredQuestions
	}
	working := s.set.Clone()
	for i, a := range answers {
		if strings.TrimSpace(a) == "" {
			return nil, domain.ErrUnansweredQuestions
		}
		if err := working.SetAnswer(i, a); err != nil {
			return nil, err
		}
	}
	if err := s.grade(working); err != nil {
		return nil, err
	}
	s.set = working
	return s.set.Clone(), nil
}

func (s *Session) grade(set *domain.QuestionSet) error {
	evaluations := make([]*domain.Evaluation, set.Len())
	for i, q := range set.Questions {
		correct := true
		if s.Correct != nil {
			correct = s.Correct(i, set.Answers[i].Answer)
		}
		evaluations[i] = &domain.Evaluation{
			IsCorrect:   correct,
			Feedback:    "Checked against the text.",
			Reference:   q.Context,
			FullContext: q.Context,
		}
	}
	return set.Attach(evaluations)
}

func (s *Session) Snapshot() driving.SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := driving.SessionSnapshot{
		Summary:  s.Sum,
		History:  append([]domain.ChatMessage(nil), s.history...),
		Status:   s.StatusOf,
		Strategy: "extractive",
	}
	if s.Doc != nil {
		snap.Document = &driving.DocumentInfo{ID: s.Doc.ID, Title: s.Doc.Title,
			Words: s.Doc.WordCount(), Chars: s.Doc.CharCount()}
	}
	if s.set != nil {
		snap.Questions = s.set.Clone()
	}
	return snap
}

func (s *Session) Status() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.StatusOf
}
