package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ChallengeQuestion is a generated comprehension question.
type ChallengeQuestion struct {
	// ID is the unique identifier for the question.
	ID string `json:"id,omitempty"`

	// Question is the question text.
	Question string `json:"question"`

	// Context is the excerpt the question was generated from.
	// Empty until the question set is normalised.
	Context string `json:"context,omitempty"`
}

// UnmarshalJSON accepts both the object form and the legacy bare-string form.
func (q *ChallengeQuestion) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, `"`) {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		*q = ChallengeQuestion{Question: text}
		return nil
	}
	type plain ChallengeQuestion
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*q = ChallengeQuestion(p)
	return nil
}

// NormaliseQuestions returns a copy of qs in which every empty context is
// replaced with the first FallbackContextChars characters of doc.
func NormaliseQuestions(qs []ChallengeQuestion, doc *Document) []ChallengeQuestion {
	out := make([]ChallengeQuestion, len(qs))
	for i, q := range qs {
		if strings.TrimSpace(q.Context) == "" && doc != nil {
			q.Context = doc.Excerpt(FallbackContextChars)
		}
		out[i] = q
	}
	return out
}

// Verdict is what an answer grader decides about one answer.
type Verdict struct {
	IsCorrect bool
	Feedback  string
	Reference string
}

// Evaluation is the graded outcome for one user answer.
type Evaluation struct {
	// IsCorrect is the grader's verdict.
	IsCorrect bool `json:"is_correct"`

	// Feedback is a short explanation for the user.
	Feedback string `json:"feedback"`

	// Reference is the part of the context that supports the verdict.
	Reference string `json:"reference"`

	// FullContext is the whole reference context used for grading.
	FullContext string `json:"full_context"`
}

// UserAnswer is the user's answer to one challenge question.
type UserAnswer struct {
	Answer     string      `json:"answer"`
	Evaluation *Evaluation `json:"evaluation,omitempty"`
}

// QuestionSet is a published challenge together with the user's answers.
// Every question has an Answers entry from the moment the set is created.
type QuestionSet struct {
	Questions   []ChallengeQuestion `json:"questions"`
	Answers     map[int]*UserAnswer `json:"answers"`
	ShowResults bool                `json:"show_results"`
	CreatedAt   time.Time           `json:"created_at"`
}

// NewQuestionSet creates a set with an empty answer for every question.
func NewQuestionSet(questions []ChallengeQuestion) *QuestionSet {
	qs := &QuestionSet{
		Questions: questions,
		Answers:   make(map[int]*UserAnswer, len(questions)),
		CreatedAt: time.Now(),
	}
	for i := range questions {
		qs.Answers[i] = &UserAnswer{}
	}
	return qs
}

// Len returns the number of questions.
func (qs *QuestionSet) Len() int {
	return len(qs.Questions)
}

// SetAnswer records the user's answer to question i.
// Editing an answer invalidates any previous results.
func (qs *QuestionSet) SetAnswer(i int, answer string) error {
	ua, ok := qs.Answers[i]
	if !ok {
		return fmt.Errorf("%w: %d", ErrQuestionIndex, i)
	}
	ua.Answer = answer
	qs.clearEvaluations()
	return nil
}

// ResetAnswers clears every answer and evaluation.
func (qs *QuestionSet) ResetAnswers() {
	for _, ua := range qs.Answers {
		ua.Answer = ""
	}
	qs.clearEvaluations()
}

// HideResults hides the evaluations without discarding the answers.
func (qs *QuestionSet) HideResults() {
	qs.ShowResults = false
}

// Unanswered returns the indices of questions whose answer is blank.
func (qs *QuestionSet) Unanswered() []int {
	var missing []int
	for i := range qs.Questions {
		if ua := qs.Answers[i]; ua == nil || strings.TrimSpace(ua.Answer) == "" {
			missing = append(missing, i)
		}
	}
	return missing
}

// AllAnswered reports whether every answer is non-empty after trimming.
func (qs *QuestionSet) AllAnswered() bool {
	return len(qs.Unanswered()) == 0
}

// Attach stores one evaluation per question and shows the results.
func (qs *QuestionSet) Attach(evaluations []*Evaluation) error {
	if len(evaluations) != len(qs.Questions) {
		return fmt.Errorf("%w: %d evaluations for %d questions", ErrInvalidInput, len(evaluations), len(qs.Questions))
	}
	for i, ev := range evaluations {
		qs.Answers[i].Evaluation = ev
	}
	qs.ShowResults = true
	return nil
}

// Score returns the number of correct answers.
func (qs *QuestionSet) Score() int {
	n := 0
	for _, ua := range qs.Answers {
		if ua.Evaluation != nil && ua.Evaluation.IsCorrect {
			n++
		}
	}
	return n
}

// Clone returns a deep copy safe to hand to presentation code.
func (qs *QuestionSet) Clone() *QuestionSet {
	if qs == nil {
		return nil
	}
	out := &QuestionSet{
		Questions:   append([]ChallengeQuestion(nil), qs.Questions...),
		Answers:     make(map[int]*UserAnswer, len(qs.Answers)),
		ShowResults: qs.ShowResults,
		CreatedAt:   qs.CreatedAt,
	}
	for i, ua := range qs.Answers {
		cp := *ua
		if ua.Evaluation != nil {
			ev := *ua.Evaluation
			cp.Evaluation = &ev
		}
		out.Answers[i] = &cp
	}
	return out
}

func (qs *QuestionSet) clearEvaluations() {
	for _, ua := range qs.Answers {
		ua.Evaluation = nil
	}
	qs.ShowResults = false
}
