package driving

import (
	"context"

	"github.com/custodia-labs/grasp/internal/core/domain"
)

// SummaryService produces length-bounded summaries.
type SummaryService interface {
	// Summarise condenses text. Multi-chunk results never exceed maxWords.
	// A maxWords of zero uses the configured default.
	Summarise(ctx context.Context, text string, maxWords int) (*domain.Summary, error)
}

// AnswerService answers questions about a document.
type AnswerService interface {
	// Ask answers question from documentText.
	Ask(ctx context.Context, documentText, question string) (*domain.AnswerResult, error)

	// Strategy reports the active answer strategy.
	Strategy() domain.AnswerStrategy
}

// ChallengeService generates and grades comprehension questions.
type ChallengeService interface {
	// Generate returns exactly the configured number of questions, each with context.
	Generate(ctx context.Context, doc *domain.Document) ([]domain.ChallengeQuestion, error)

	// Evaluate grades a single answer.
	Evaluate(ctx context.Context, doc *domain.Document, q domain.ChallengeQuestion, answer string) (*domain.Evaluation, error)

	// Submit grades every answer of set, or none.
	Submit(ctx context.Context, doc *domain.Document, set *domain.QuestionSet) error
}
