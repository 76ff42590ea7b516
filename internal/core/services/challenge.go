package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/grasp/internal/core/domain"
	"github.com/custodia-labs/grasp/internal/core/ports/driven"
	"github.com/custodia-labs/grasp/internal/core/ports/driving"
	"github.com/custodia-labs/grasp/internal/core/text"
	"github.com/custodia-labs/grasp/internal/logger"
)

// Ensure ChallengeService implements the interface.
var _ driving.ChallengeService = (*ChallengeService)(nil)

// minExcerptWords is the length below which an excerpt is skipped when
// longer ones are available.
const minExcerptWords = 6

// ChallengeService generates comprehension questions and grades answers.
type ChallengeService struct {
	generator driven.QuestionGenerator
	grader    driven.AnswerGrader
	settings  domain.ChallengeSettings
	call      caller
}

// NewChallengeService creates a challenge service.
func NewChallengeService(
	generator driven.QuestionGenerator,
	grader driven.AnswerGrader,
	settings domain.ChallengeSettings,
	backendSettings domain.BackendSettings,
	backendName string,
	observer driven.BackendObserver,
) *ChallengeService {
	if settings.QuestionCount <= 0 {
		settings.QuestionCount = domain.DefaultQuestionCount
	}
	if settings.ExcerptWords <= 0 {
		settings.ExcerptWords = domain.DefaultExcerptWords
	}
	return &ChallengeService{
		generator: generator,
		grader:    grader,
		settings:  settings,
		call:      newCaller(backendSettings.Timeout, backendName, observer),
	}
}

// Generate returns exactly the configured number of questions about doc.
// Each question carries the excerpt it was written from, or the start of
// the document when the generator could not say.
func (s *ChallengeService) Generate(ctx context.Context, doc *domain.Document) ([]domain.ChallengeQuestion, error) {
	logger.Section("Challenge Generation")

	if doc == nil || strings.TrimSpace(doc.Content) == "" {
		return nil, domain.ErrNoDocument
	}

	want := s.settings.QuestionCount
	excerpts := SelectExcerpts(doc.Content, want, s.settings.ExcerptWords)
	logger.Debug("Excerpts: %d of up to %d words", len(excerpts), s.settings.ExcerptWords)

	var questions []domain.ChallengeQuestion
	err := s.call.run(ctx, opGenerate, func(ctx context.Context) error {
		var err error
		questions, err = s.generator.GenerateQuestions(ctx, excerpts)
		return err
	})
	if err != nil {
		return nil, err
	}

	kept := questions[:0:0]
	for _, q := range questions {
		q.Question = strings.TrimSpace(q.Question)
		if q.Question != "" {
			kept = append(kept, q)
		}
	}
	if len(kept) < want {
		return nil, fmt.Errorf("%s: %w: got %d of %d questions", opGenerate, domain.ErrBackend, len(kept), want)
	}
	kept = kept[:want]

	for i := range kept {
		kept[i].ID = uuid.New().String()
	}
	return domain.NormaliseQuestions(kept, doc), nil
}

// Evaluate grades a single answer against the question's context.
func (s *ChallengeService) Evaluate(
	ctx context.Context,
	doc *domain.Document,
	q domain.ChallengeQuestion,
	answer string,
) (*domain.Evaluation, error) {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return nil, fmt.Errorf("%w: answer is empty", domain.ErrInvalidInput)
	}

	reference := q.Context
	if strings.TrimSpace(reference) == "" && doc != nil {
		reference = doc.Excerpt(domain.FallbackContextChars)
	}

	var verdict *domain.Verdict
	err := s.call.run(ctx, opGrade, func(ctx context.Context) error {
		var err error
		verdict, err = s.grader.Grade(ctx, q.Question, reference, answer)
		return err
	})
	if err != nil {
		return nil, err
	}
	if verdict == nil {
		return nil, fmt.Errorf("%s: %w: no verdict", opGrade, domain.ErrBackend)
	}

	ev := &domain.Evaluation{
		IsCorrect:   verdict.IsCorrect,
		Feedback:    strings.TrimSpace(verdict.Feedback),
		Reference:   strings.TrimSpace(verdict.Reference),
		FullContext: reference,
	}
	if ev.Reference == "" {
		ev.Reference = reference
	}
	return ev, nil
}

// Submit grades every answer in set and attaches the evaluations.
// It refuses to start while any answer is blank, and attaches nothing
// unless every evaluation succeeded.
func (s *ChallengeService) Submit(ctx context.Context, doc *domain.Document, set *domain.QuestionSet) error {
	logger.Section("Evaluation")

	if set == nil || set.Len() == 0 {
		return domain.ErrNoQuestions
	}
	if !set.AllAnswered() {
		logger.Debug("Unanswered questions: %v", set.Unanswered())
		return domain.ErrUnansweredQuestions
	}

	evaluations := make([]*domain.Evaluation, set.Len())
	for i, q := range set.Questions {
		ev, err := s.Evaluate(ctx, doc, q, set.Answers[i].Answer)
		if err != nil {
			return fmt.Errorf("question %d: %w", i+1, err)
		}
		logger.Debug("Question %d correct: %t", i+1, ev.IsCorrect)
		evaluations[i] = ev
	}

	return set.Attach(evaluations)
}

// SelectExcerpts picks count sentence-aligned excerpts of at most
// excerptWords words, spread evenly across content. Very short passages are
// skipped when enough longer ones exist. A document with fewer passages than
// count yields repeated excerpts.
func SelectExcerpts(content string, count, excerptWords int) []string {
	if count <= 0 {
		return nil
	}
	passages := text.Passages(content, excerptWords)
	if len(passages) == 0 {
		return nil
	}

	candidates := make([]string, 0, len(passages))
	for _, p := range passages {
		if text.WordCount(p) >= minExcerptWords {
			candidates = append(candidates, p)
		}
	}
	if len(candidates) == 0 {
		candidates = passages
	}

	out := make([]string, count)
	n := len(candidates)
	for i := range out {
		if n >= count {
			out[i] = candidates[(2*i+1)*n/(2*count)]
		} else {
			out[i] = candidates[i%n]
		}
	}
	return out
}
