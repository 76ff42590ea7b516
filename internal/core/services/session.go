package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/grasp/internal/core/domain"
	"github.com/custodia-labs/grasp/internal/core/ports/driven"
	"github.com/custodia-labs/grasp/internal/core/ports/driving"
	"github.com/custodia-labs/grasp/internal/core/text"
	"github.com/custodia-labs/grasp/internal/logger"
)

// Ensure Session implements the interface.
var _ driving.SessionService = (*Session)(nil)

// Session holds the single active document, its summary, the challenge and
// the question history. State is replaced only after an operation succeeds.
type Session struct {
	normalisers driven.NormaliserRegistry
	summaries   driving.SummaryService
	answers     driving.AnswerService
	challenges  driving.ChallengeService
	selection   domain.BackendSelection
	maxWords    int

	// busy is held for the whole of a long operation.
	busy sync.Mutex

	mu        sync.RWMutex
	doc       *domain.Document
	info      *driving.DocumentInfo
	summary   *domain.Summary
	questions *domain.QuestionSet
	history   []domain.ChatMessage
}

// NewSession creates a session over the given services.
func NewSession(
	normalisers driven.NormaliserRegistry,
	summaries driving.SummaryService,
	answers driving.AnswerService,
	challenges driving.ChallengeService,
	selection domain.BackendSelection,
	maxWords int,
) *Session {
	return &Session{
		normalisers: normalisers,
		summaries:   summaries,
		answers:     answers,
		challenges:  challenges,
		selection:   selection,
		maxWords:    maxWords,
	}
}

func (s *Session) begin() (func(), error) {
	if !s.busy.TryLock() {
		return nil, domain.ErrOperationInProgress
	}
	return s.busy.Unlock, nil
}

// Load extracts, normalises and summarises a file.
func (s *Session) Load(ctx context.Context, name string, data []byte) (*driving.DocumentInfo, error) {
	done, err := s.begin()
	if err != nil {
		return nil, err
	}
	defer done()

	logger.Section("Load Document")
	raw := &domain.RawDocument{Name: name, Content: data}
	if !domain.IsSupportedExtension(raw.Extension()) {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, raw.Extension())
	}

	result, err := s.normalisers.Normalise(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", filepath.Base(name), err)
	}

	doc := result.Document
	doc.Content = text.Normalise(doc.Content)
	if doc.Content == "" {
		return nil, fmt.Errorf("load %s: %w", filepath.Base(name), domain.ErrEmptyDocument)
	}
	if doc.ID == "" {
		doc.ID = uuid.New().String()
	}
	if doc.Title == "" {
		doc.Title = filepath.Base(name)
	}
	if doc.URI == "" {
		doc.URI = name
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now()
	}
	logger.Debug("Extracted %d words from %s", doc.WordCount(), doc.Title)

	summary, err := s.summaries.Summarise(ctx, doc.Content, s.maxWords)
	if err != nil {
		return nil, fmt.Errorf("summarise %s: %w", doc.Title, err)
	}

	info := &driving.DocumentInfo{
		ID:        doc.ID,
		Title:     doc.Title,
		Words:     doc.WordCount(),
		Chars:     doc.CharCount(),
		MIMEType:  raw.MIMEType,
		Extension: raw.Extension(),
	}
	if mime, ok := doc.Metadata["mime_type"].(string); ok {
		info.MIMEType = mime
	}

	s.mu.Lock()
	s.doc = &doc
	s.info = info
	s.summary = summary
	s.questions = nil
	s.history = nil
	s.mu.Unlock()

	cp := *info
	return &cp, nil
}

// Document returns the loaded document, or nil.
func (s *Session) Document() *domain.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc
}

// Summary returns the summary of the loaded document, or nil.
func (s *Session) Summary() *domain.Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.summary == nil {
		return nil
	}
	cp := *s.summary
	return &cp
}

// Ask answers a question about the loaded document.
func (s *Session) Ask(ctx context.Context, question string) (*domain.AnswerResult, error) {
	done, err := s.begin()
	if err != nil {
		return nil, err
	}
	defer done()

	doc := s.Document()
	if doc == nil {
		return nil, domain.ErrNoDocument
	}

	result, err := s.answers.Ask(ctx, doc.Content, question)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	s.mu.Lock()
	s.history = append(s.history,
		domain.ChatMessage{Role: domain.ChatRoleUser, Content: strings.TrimSpace(question), At: now},
		domain.ChatMessage{Role: domain.ChatRoleAssistant, Content: result.Answer, Result: result, At: now},
	)
	s.mu.Unlock()

	return result, nil
}

// History returns the question and answer history.
func (s *Session) History() []domain.ChatMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.ChatMessage(nil), s.history...)
}

// ClearHistory forgets the question and answer history.
func (s *Session) ClearHistory() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = nil
}

// GenerateChallenge replaces the question set with a fresh one.
func (s *Session) GenerateChallenge(ctx context.Context) (*domain.QuestionSet, error) {
	done, err := s.begin()
	if err != nil {
		return nil, err
	}
	defer done()

	doc := s.Document()
	if doc == nil {
		return nil, domain.ErrNoDocument
	}

	questions, err := s.challenges.Generate(ctx, doc)
	if err != nil {
		return nil, err
	}

	set := domain.NewQuestionSet(questions)
	s.mu.Lock()
	s.questions = set
	s.mu.Unlock()

	return set.Clone(), nil
}

// Questions returns a copy of the current question set, or nil.
func (s *Session) Questions() *domain.QuestionSet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.questions.Clone()
}

// SetAnswer records the answer to question i.
func (s *Session) SetAnswer(i int, answer string) error {
	return s.mutateQuestions(func(set *domain.QuestionSet) error {
		return set.SetAnswer(i, answer)
	})
}

// ResetAnswers clears all answers and results.
func (s *Session) ResetAnswers() error {
	return s.mutateQuestions(func(set *domain.QuestionSet) error {
		set.ResetAnswers()
		return nil
	})
}

// HideResults hides results so the user can try again.
func (s *Session) HideResults() error {
	return s.mutateQuestions(func(set *domain.QuestionSet) error {
		set.HideResults()
		return nil
	})
}

func (s *Session) mutateQuestions(fn func(set *domain.QuestionSet) error) error {
	done, err := s.begin()
	if err != nil {
		return err
	}
	defer done()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.questions == nil {
		return domain.ErrNoQuestions
	}
	return fn(s.questions)
}

// Submit grades all answers. Nothing changes unless every grade succeeds.
func (s *Session) Submit(ctx context.Context) (*domain.QuestionSet, error) {
	done, err := s.begin()
	if err != nil {
		return nil, err
	}
	defer done()

	s.mu.RLock()
	doc := s.doc
	working := s.questions.Clone()
	s.mu.RUnlock()

	if working == nil {
		return nil, domain.ErrNoQuestions
	}
	if err := s.challenges.Submit(ctx, doc, working); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.questions = working
	s.mu.Unlock()

	return working.Clone(), nil
}

// SubmitAnswers grades answers against a copy of the current set and
// publishes it only when every evaluation succeeded.
func (s *Session) SubmitAnswers(ctx context.Context, answers []string) (*domain.QuestionSet, error) {
	done, err := s.begin()
	if err != nil {
		return nil, err
	}
	defer done()

	s.mu.RLock()
	doc := s.doc
	working := s.questions.Clone()
	s.mu.RUnlock()

	if working == nil {
		return nil, domain.ErrNoQuestions
	}
	if len(answers) != working.Len() {
		return nil, fmt.Errorf("%w: got %d answers for %d questions",
			domain.ErrUnansweredQuestions, len(answers), working.Len())
	}
	for _, answer := range answers {
		if strings.TrimSpace(answer) == "" {
			return nil, domain.ErrUnansweredQuestions
		}
	}

	for i, answer := range answers {
		if err := working.SetAnswer(i, answer); err != nil {
			return nil, err
		}
	}
	if err := s.challenges.Submit(ctx, doc, working); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.questions = working
	s.mu.Unlock()

	return working.Clone(), nil
}

// Snapshot returns a copy of the whole session state.
func (s *Session) Snapshot() driving.SessionSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := driving.SessionSnapshot{
		Questions: s.questions.Clone(),
		History:   append([]domain.ChatMessage(nil), s.history...),
		Status:    s.selection.Status(),
		Strategy:  s.selection.Strategy().String(),
	}
	if s.info != nil {
		info := *s.info
		snap.Document = &info
	}
	if s.summary != nil {
		summary := *s.summary
		snap.Summary = &summary
	}
	return snap
}

// Status returns the one-line backend indicator.
func (s *Session) Status() string {
	return s.selection.Status()
}
