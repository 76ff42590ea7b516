// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/grasp/internal/core/domain"
)

// ViewChanged is sent when switching tabs.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which tab is currently active.
type ViewType int

const (
	// ViewSummary shows the document summary.
	ViewSummary ViewType = iota
	// ViewAsk is the question box and answer history.
	ViewAsk
	// ViewChallenge is the comprehension challenge.
	ViewChallenge
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// Tabs are the views reachable with tab and shift+tab, in order.
var Tabs = []ViewType{ViewSummary, ViewAsk, ViewChallenge}

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewSummary:
		return "summary"
	case ViewAsk:
		return "ask"
	case ViewChallenge:
		return "challenge"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// Title returns the tab label.
func (v ViewType) Title() string {
	switch v {
	case ViewSummary:
		return "Summary"
	case ViewAsk:
		return "Ask"
	case ViewChallenge:
		return "Challenge"
	case ViewHelp:
		return "Help"
	default:
		return "?"
	}
}

// AnswerReceived carries the answer to a question.
type AnswerReceived struct {
	Question string
	Result   *domain.AnswerResult
	Err      error
}

// ChallengeGenerated carries a fresh question set.
type ChallengeGenerated struct {
	Set *domain.QuestionSet
	Err error
}

// ChallengeGraded carries the graded question set.
type ChallengeGraded struct {
	Set *domain.QuestionSet
	Err error
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
