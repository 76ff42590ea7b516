package domain

import "fmt"

// NoAnswerText is the answer reported when the document does not answer a question.
const NoAnswerText = "No answer found in document."

// AnswerStrategy identifies how an answer backend produces answers.
type AnswerStrategy string

// Available answer strategies.
const (
	// StrategyNarrative synthesises a free-form answer. No confidence, no context.
	StrategyNarrative AnswerStrategy = "narrative"

	// StrategyExtractive selects a span of the document with a confidence score.
	StrategyExtractive AnswerStrategy = "extractive"
)

// String returns the string representation.
func (s AnswerStrategy) String() string {
	return string(s)
}

// AnswerResult is the single result shape shared by every answer backend.
type AnswerResult struct {
	// Answer is the answer text. Never empty.
	Answer string `json:"answer"`

	// IsComprehensive is true for narrative answers.
	IsComprehensive bool `json:"is_comprehensive"`

	// Confidence is present only for extractive answers, in [0,100].
	Confidence *int `json:"confidence,omitempty"`

	// Context is the supporting excerpt, present only for extractive answers.
	Context string `json:"context,omitempty"`
}

// NewNarrativeAnswer builds a comprehensive answer.
func NewNarrativeAnswer(answer string) *AnswerResult {
	return &AnswerResult{Answer: answer, IsComprehensive: true}
}

// NewScoredAnswer builds an extractive answer, clamping confidence into [0,100].
func NewScoredAnswer(answer string, confidence int, context string) *AnswerResult {
	c := ClampConfidence(confidence)
	return &AnswerResult{Answer: answer, Confidence: &c, Context: context}
}

// NoAnswer is the result for a question the document does not answer.
func NoAnswer() *AnswerResult {
	return NewScoredAnswer(NoAnswerText, 0, "")
}

// IsNoAnswer reports whether r is the no-answer result.
func (r *AnswerResult) IsNoAnswer() bool {
	return r.Answer == NoAnswerText
}

// ConfidenceValue returns the confidence, or 0 when absent.
func (r *AnswerResult) ConfidenceValue() int {
	if r.Confidence == nil {
		return 0
	}
	return *r.Confidence
}

// Band returns the confidence band of an extractive answer.
func (r *AnswerResult) Band() ConfidenceBand {
	return BandFor(r.ConfidenceValue())
}

// Validate checks the answer invariants.
func (r *AnswerResult) Validate() error {
	if r.Answer == "" {
		return fmt.Errorf("%w: empty answer", ErrInvalidInput)
	}
	if r.IsComprehensive {
		if r.Confidence != nil || r.Context != "" {
			return fmt.Errorf("%w: comprehensive answer carries confidence or context", ErrInvalidInput)
		}
		return nil
	}
	if r.Confidence == nil {
		return fmt.Errorf("%w: extractive answer without confidence", ErrInvalidInput)
	}
	if *r.Confidence < 0 || *r.Confidence > 100 {
		return fmt.Errorf("%w: confidence %d out of range", ErrInvalidInput, *r.Confidence)
	}
	return nil
}

// ClampConfidence limits c to [0,100].
func ClampConfidence(c int) int {
	switch {
	case c < 0:
		return 0
	case c > 100:
		return 100
	default:
		return c
	}
}

// ConfidenceBand is a coarse grouping of confidence scores for display.
type ConfidenceBand string

// Confidence bands.
const (
	BandHigh   ConfidenceBand = "high"
	BandMedium ConfidenceBand = "medium"
	BandLow    ConfidenceBand = "low"
)

// BandFor maps a confidence score to its band.
// Above 70 is high, above 30 is medium, everything else is low.
func BandFor(confidence int) ConfidenceBand {
	switch {
	case confidence > 70:
		return BandHigh
	case confidence > 30:
		return BandMedium
	default:
		return BandLow
	}
}

// String returns the string representation.
func (b ConfidenceBand) String() string {
	return string(b)
}

// Description returns a human-readable label.
func (b ConfidenceBand) Description() string {
	switch b {
	case BandHigh:
		return "High confidence"
	case BandMedium:
		return "Medium confidence"
	default:
		return "Low confidence"
	}
}
