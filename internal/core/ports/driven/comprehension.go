package driven

import (
	"context"

	"github.com/custodia-labs/grasp/internal/core/domain"
)

// Summariser condenses one piece of text.
type Summariser interface {
	// Summarise returns a summary aimed at minWords..maxWords words.
	// The bound is a request, not a guarantee.
	Summarise(ctx context.Context, text string, maxWords, minWords int) (string, error)
}

// AnswerBackend answers free-form questions from document text.
type AnswerBackend interface {
	// Answer returns the answer to question using only documentText.
	// A nil result means the document holds no answer.
	Answer(ctx context.Context, documentText, question string) (*domain.AnswerResult, error)

	// Strategy reports whether answers are narrative or extractive.
	Strategy() domain.AnswerStrategy
}

// QuestionGenerator writes comprehension questions.
type QuestionGenerator interface {
	// GenerateQuestions returns one question per excerpt, in order.
	// A question's Context may be left empty when it cannot be attributed.
	GenerateQuestions(ctx context.Context, excerpts []string) ([]domain.ChallengeQuestion, error)
}

// AnswerGrader judges a user's answer against reference context.
type AnswerGrader interface {
	// Grade decides whether answer is supported by context.
	Grade(ctx context.Context, question, context, answer string) (*domain.Verdict, error)
}

// Backend bundles the four capabilities served by one selected backend.
type Backend struct {
	Selection  domain.BackendSelection
	Summariser Summariser
	Answerer   AnswerBackend
	Generator  QuestionGenerator
	Grader     AnswerGrader

	// Closer releases the underlying service. May be nil.
	Closer func() error
}

// Close releases the backend's resources.
func (b *Backend) Close() error {
	if b == nil || b.Closer == nil {
		return nil
	}
	return b.Closer()
}
