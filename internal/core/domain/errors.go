package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown provider or processor type.
	ErrUnsupportedType = errors.New("unsupported type")

	// Input Errors.

	// ErrUnsupportedFormat indicates the file extension is not .pdf or .txt.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrExtraction indicates the file could not be turned into text.
	ErrExtraction = errors.New("text extraction failed")

	// ErrEmptyDocument indicates extraction produced no usable text.
	ErrEmptyDocument = errors.New("document contains no text")

	// ErrNoDocument indicates an operation needs a loaded document.
	ErrNoDocument = errors.New("no document loaded")

	// ErrNoQuestions indicates an operation needs a generated question set.
	ErrNoQuestions = errors.New("no challenge questions generated")

	// ErrQuestionIndex indicates an answer was given for a question that does not exist.
	ErrQuestionIndex = errors.New("question index out of range")

	// Backend Errors.

	// ErrBackend indicates the inference backend failed.
	ErrBackend = errors.New("backend failure")

	// ErrBackendTimeout indicates a backend call exceeded its deadline.
	// It always wraps ErrBackend.
	ErrBackendTimeout = fmt.Errorf("%w: deadline exceeded", ErrBackend)

	// ErrLLMUnavailable indicates the LLM service is not configured or unreachable.
	// The local extractive engine is used instead.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// Precondition Errors.

	// ErrUnansweredQuestions indicates a submission with at least one empty answer.
	ErrUnansweredQuestions = errors.New("please answer all questions before submitting")

	// ErrOperationInProgress indicates another long-running operation holds the session.
	ErrOperationInProgress = errors.New("operation in progress")
)

// ErrorKind groups domain errors by who can fix them.
type ErrorKind string

// Error kinds.
const (
	// KindNone is returned for a nil error.
	KindNone ErrorKind = ""

	// KindInput means the caller supplied something unusable.
	KindInput ErrorKind = "input"

	// KindBackend means the inference backend failed.
	KindBackend ErrorKind = "backend"

	// KindPrecondition means the operation is not allowed in the current state.
	KindPrecondition ErrorKind = "precondition"

	// KindInternal covers everything else.
	KindInternal ErrorKind = "internal"
)

// KindOf classifies err into one of the error kinds.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrUnsupportedFormat),
		errors.Is(err, ErrExtraction),
		errors.Is(err, ErrEmptyDocument),
		errors.Is(err, ErrNoDocument),
		errors.Is(err, ErrNoQuestions),
		errors.Is(err, ErrQuestionIndex):
		return KindInput
	case errors.Is(err, ErrBackend), errors.Is(err, ErrLLMUnavailable):
		return KindBackend
	case errors.Is(err, ErrUnansweredQuestions), errors.Is(err, ErrOperationInProgress):
		return KindPrecondition
	default:
		return KindInternal
	}
}
