package driving

import (
	"context"

	"github.com/custodia-labs/grasp/internal/core/domain"
)

// DocumentInfo is the document card shown after loading.
type DocumentInfo struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Words     int    `json:"words"`
	Chars     int    `json:"chars"`
	MIMEType  string `json:"mime_type,omitempty"`
	Extension string `json:"extension"`
}

// SessionSnapshot is a consistent copy of the session state.
type SessionSnapshot struct {
	Document  *DocumentInfo        `json:"document,omitempty"`
	Summary   *domain.Summary      `json:"summary,omitempty"`
	Questions *domain.QuestionSet  `json:"questions,omitempty"`
	History   []domain.ChatMessage `json:"history,omitempty"`
	Status    string               `json:"status"`
	Strategy  string               `json:"strategy"`
}

// SessionService owns the single active document and everything derived
// from it. Long operations are exclusive: a second one started while the
// first is running fails with domain.ErrOperationInProgress.
type SessionService interface {
	// Load extracts, normalises and summarises a file, replacing the
	// current document. On failure the previous state is kept.
	Load(ctx context.Context, name string, data []byte) (*DocumentInfo, error)

	// Document returns the loaded document, or nil.
	Document() *domain.Document

	// Summary returns the summary of the loaded document, or nil.
	Summary() *domain.Summary

	// Ask answers a question about the loaded document and records it in the history.
	Ask(ctx context.Context, question string) (*domain.AnswerResult, error)

	// History returns the question and answer history.
	History() []domain.ChatMessage

	// ClearHistory forgets the question and answer history.
	ClearHistory()

	// GenerateChallenge replaces the question set with a fresh one.
	GenerateChallenge(ctx context.Context) (*domain.QuestionSet, error)

	// Questions returns a copy of the current question set, or nil.
	Questions() *domain.QuestionSet

	// SetAnswer records the answer to question i.
	SetAnswer(i int, answer string) error

	// ResetAnswers clears all answers and results.
	ResetAnswers() error

	// HideResults hides results so the user can try again.
	HideResults() error

	// Submit grades all answers. Every answer must be non-empty.
	Submit(ctx context.Context) (*domain.QuestionSet, error)

	// SubmitAnswers records one answer per question and grades them as a
	// single step. Nothing is recorded unless grading succeeds, so a blank
	// answer or a backend failure leaves earlier results in place.
	SubmitAnswers(ctx context.Context, answers []string) (*domain.QuestionSet, error)

	// Snapshot returns a copy of the whole session state.
	Snapshot() SessionSnapshot

	// Status returns the one-line backend indicator.
	Status() string
}
