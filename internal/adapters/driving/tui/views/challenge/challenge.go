// Package challenge provides the challenge tab of the TUI.
package challenge

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"github.com/custodia-labs/grasp/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/grasp/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/grasp/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/grasp/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/grasp/internal/core/domain"
	"github.com/custodia-labs/grasp/internal/core/ports/driving"
)

// View is the challenge tab: one answer field per question, then results.
type View struct {
	styles   *styles.Styles
	keymap   *keymap.KeyMap
	session  driving.SessionService
	ctx      context.Context
	set      *domain.QuestionSet
	fields   []*input.Field
	focus    int
	viewport viewport.Model
	width    int
	busy     string
	err      error
}

// NewView creates a new challenge view.
func NewView(s *styles.Styles, km *keymap.KeyMap, session driving.SessionService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	v := &View{
		styles:   s,
		keymap:   km,
		session:  session,
		ctx:      context.Background(),
		viewport: viewport.New(80, 20),
		width:    80,
	}
	v.setQuestions(session.Questions())
	return v
}

// WithContext sets the context for backend calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return nil
}

// Activate is called when the tab is shown. It generates questions the
// first time.
func (v *View) Activate() tea.Cmd {
	if v.set != nil || v.busy != "" || v.session.Document() == nil {
		return v.focusCurrent()
	}
	return v.generate()
}

// Update handles keys and backend results.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.ChallengeGenerated:
		v.busy = ""
		v.err = msg.Err
		if msg.Err == nil {
			v.setQuestions(msg.Set)
		}
		v.refresh()
		return v, v.focusCurrent()

	case messages.ChallengeGraded:
		v.busy = ""
		v.err = msg.Err
		if msg.Err == nil {
			v.set = msg.Set
			v.blurAll()
		}
		v.refresh()
		return v, nil
	}

	if f := v.current(); f != nil {
		var cmd tea.Cmd
		_, cmd = f.Update(msg)
		return v, cmd
	}
	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	keyStr := msg.String()
	if v.busy != "" {
		return v, nil
	}

	switch {
	case keymap.Matches(keyStr, v.keymap.NewQuestions):
		if v.set != nil {
			_ = v.session.HideResults()
		}
		return v, v.generate()

	case keymap.Matches(keyStr, v.keymap.Reset):
		if v.set == nil {
			return v, nil
		}
		if err := v.session.ResetAnswers(); err != nil {
			v.err = err
			return v, nil
		}
		v.setQuestions(v.session.Questions())
		v.focus = 0
		v.refresh()
		return v, v.focusCurrent()

	case keymap.Matches(keyStr, v.keymap.Up):
		return v, v.moveFocus(-1)

	case keymap.Matches(keyStr, v.keymap.Down):
		return v, v.moveFocus(1)

	case keyStr == "pgup", keyStr == "pgdown":
		var cmd tea.Cmd
		v.viewport, cmd = v.viewport.Update(msg)
		return v, cmd

	case keymap.Matches(keyStr, v.keymap.Submit):
		if v.set == nil || v.set.ShowResults {
			return v, nil
		}
		if v.focus < len(v.fields)-1 {
			return v, v.moveFocus(1)
		}
		return v, v.submit()
	}

	f := v.current()
	if f == nil || (v.set != nil && v.set.ShowResults) {
		return v, nil
	}
	_, cmd := f.Update(msg)
	v.refresh()
	return v, cmd
}

func (v *View) generate() tea.Cmd {
	v.busy = "Generating questions..."
	v.err = nil
	v.refresh()
	ctx, session := v.ctx, v.session
	return func() tea.Msg {
		set, err := session.GenerateChallenge(ctx)
		return messages.ChallengeGenerated{Set: set, Err: err}
	}
}

// submit grades the fields as one set. Blank answers are reported without
// calling the backend.
func (v *View) submit() tea.Cmd {
	answers := make([]string, len(v.fields))
	blank := false
	for i, f := range v.fields {
		answers[i] = strings.TrimSpace(f.Value())
		if answers[i] == "" {
			blank = true
		}
	}
	if blank {
		v.err = fmt.Errorf("%w: answer every question before submitting", domain.ErrUnansweredQuestions)
		v.refresh()
		return nil
	}

	v.busy = "Evaluating answers..."
	v.err = nil
	v.refresh()
	ctx, session := v.ctx, v.session
	return func() tea.Msg {
		set, err := session.SubmitAnswers(ctx, answers)
		return messages.ChallengeGraded{Set: set, Err: err}
	}
}

func (v *View) setQuestions(set *domain.QuestionSet) {
	v.set = set
	v.fields = nil
	v.focus = 0
	if set == nil {
		v.refresh()
		return
	}
	for i := range set.Questions {
		f := input.NewField(v.styles, "", "Your answer...")
		f.SetWidth(v.width)
		if a := set.Answers[i]; a != nil {
			f.SetValue(a.Answer)
		}
		v.fields = append(v.fields, f)
	}
	v.refresh()
}

func (v *View) current() *input.Field {
	if v.focus < 0 || v.focus >= len(v.fields) {
		return nil
	}
	return v.fields[v.focus]
}

func (v *View) focusCurrent() tea.Cmd {
	v.blurAll()
	if v.set == nil || v.set.ShowResults {
		return nil
	}
	f := v.current()
	if f == nil {
		return nil
	}
	cmd := f.Focus()
	v.refresh()
	return cmd
}

func (v *View) blurAll() {
	for _, f := range v.fields {
		f.Blur()
	}
}

func (v *View) moveFocus(delta int) tea.Cmd {
	if len(v.fields) == 0 {
		return nil
	}
	v.focus = (v.focus + delta + len(v.fields)) % len(v.fields)
	return v.focusCurrent()
}

// View renders the questions.
func (v *View) View() string {
	return v.viewport.View()
}

// SetDimensions sets the area available to the view.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.viewport.Width = width
	v.viewport.Height = max(height, 1)
	for _, f := range v.fields {
		f.SetWidth(width)
	}
	v.refresh()
}

// Busy returns what the view is waiting for, or "".
func (v *View) Busy() string {
	return v.busy
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}

// Set returns the question set shown, or nil.
func (v *View) Set() *domain.QuestionSet {
	return v.set
}

// Focus returns the index of the focused field.
func (v *View) Focus() int {
	return v.focus
}

// Fields returns the answer fields.
func (v *View) Fields() []*input.Field {
	return v.fields
}

func (v *View) refresh() {
	v.viewport.SetContent(v.render())
}

func (v *View) render() string {
	if v.set == nil {
		switch {
		case v.busy != "":
			return v.styles.Muted.Render(v.busy)
		case v.err != nil:
			return v.styles.Error.Render("Could not generate questions: " + v.err.Error())
		case v.session.Document() == nil:
			return v.styles.Muted.Render("No document loaded.")
		default:
			return v.styles.Muted.Render("Press ctrl+n to generate questions.")
		}
	}

	width := max(v.width-2, 20)
	var b strings.Builder
	for i, q := range v.set.Questions {
		b.WriteString(v.styles.Question.Render(ansi.Wordwrap(fmt.Sprintf("%d. %s", i+1, q.Question), width, "")))
		b.WriteString("\n")
		if v.set.ShowResults {
			b.WriteString(v.renderResult(v.set.Answers[i], width))
		} else if i < len(v.fields) {
			b.WriteString(v.fields[i].View())
		}
		b.WriteString("\n\n")
	}

	if v.set.ShowResults {
		b.WriteString(v.styles.Subtitle.Render(fmt.Sprintf("Score: %d/%d", v.set.Score(), v.set.Len())))
		b.WriteString("\n")
		b.WriteString(v.styles.Muted.Render("ctrl+r retry  ctrl+n new questions"))
	} else if v.err != nil && !errors.Is(v.err, domain.ErrOperationInProgress) {
		b.WriteString(v.styles.Error.Render(v.err.Error()))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (v *View) renderResult(a *domain.UserAnswer, width int) string {
	if a == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(v.styles.Muted.Render("Your answer: "))
	b.WriteString(ansi.Wordwrap(a.Answer, width, ""))
	if a.Evaluation == nil {
		return b.String()
	}
	ev := a.Evaluation
	b.WriteString("\n")
	b.WriteString(v.styles.Verdict(ev.IsCorrect))
	if ev.Feedback != "" {
		b.WriteString(" ")
		b.WriteString(ansi.Wordwrap(ev.Feedback, width, ""))
	}
	if ev.Reference != "" {
		b.WriteString("\n")
		b.WriteString(v.styles.Context.Render(ansi.Wordwrap("Reference: "+ev.Reference, width-2, "")))
	}
	return b.String()
}
