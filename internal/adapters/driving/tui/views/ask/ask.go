// Package ask provides the question tab of the TUI: an input box above
// the answer history.
package ask

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/custodia-labs/grasp/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/grasp/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/grasp/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/grasp/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/grasp/internal/core/domain"
	"github.com/custodia-labs/grasp/internal/core/ports/driving"
	"github.com/custodia-labs/grasp/internal/core/text"
)

// inputHeight is the rows taken by the bordered input box and a gap.
const inputHeight = 4

// View is the ask-anything tab.
type View struct {
	styles   *styles.Styles
	keymap   *keymap.KeyMap
	session  driving.SessionService
	ctx      context.Context
	input    *input.Field
	viewport viewport.Model
	width    int
	busy     bool
	err      error
}

// NewView creates a new ask view.
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
		input:    input.NewField(s, "Ask:", "Ask anything about the document..."),
		viewport: viewport.New(80, 16),
		width:    80,
	}
	v.refresh()
	return v
}

// WithContext sets the context for backend calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init focuses the input.
func (v *View) Init() tea.Cmd {
	return tea.Batch(v.input.Focus(), v.input.Init())
}

// Update handles keys and answers.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.AnswerReceived:
		v.busy = false
		v.err = msg.Err
		if msg.Err == nil {
			v.input.Reset()
		}
		v.refresh()
		v.viewport.GotoBottom()
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	keyStr := msg.String()
	switch {
	case keymap.Matches(keyStr, v.keymap.Submit):
		question := strings.TrimSpace(v.input.Value())
		if question == "" || v.busy {
			return v, nil
		}
		v.busy = true
		v.err = nil
		return v, v.ask(question)

	case keymap.Matches(keyStr, v.keymap.ClearHistory):
		v.session.ClearHistory()
		v.refresh()
		return v, nil

	case keymap.Matches(keyStr, v.keymap.Up), keymap.Matches(keyStr, v.keymap.Down),
		keyStr == "pgup", keyStr == "pgdown":
		var cmd tea.Cmd
		v.viewport, cmd = v.viewport.Update(msg)
		return v, cmd
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// ask runs the question in the background.
func (v *View) ask(question string) tea.Cmd {
	ctx, session := v.ctx, v.session
	return func() tea.Msg {
		res, err := session.Ask(ctx, question)
		return messages.AnswerReceived{Question: question, Result: res, Err: err}
	}
}

// View renders the input above the history.
func (v *View) View() string {
	return lipgloss.JoinVertical(lipgloss.Left, v.input.View(), "", v.viewport.View())
}

// SetDimensions sets the area available to the view.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.input.SetWidth(width)
	v.viewport.Width = width
	v.viewport.Height = max(height-inputHeight, 1)
	v.refresh()
}

// Busy reports whether a question is being answered.
func (v *View) Busy() bool {
	return v.busy
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}

// Input returns the question field.
func (v *View) Input() *input.Field {
	return v.input
}

func (v *View) refresh() {
	v.viewport.SetContent(v.renderHistory())
}

func (v *View) renderHistory() string {
	history := v.session.History()
	if len(history) == 0 {
		return v.styles.Muted.Render("Answers come only from the document. Ask a question to begin.")
	}

	width := max(v.width-2, 20)
	var b strings.Builder
	for _, m := range history {
		if m.Role == domain.ChatRoleUser {
			b.WriteString(v.styles.Question.Render(ansi.Wordwrap("Q: "+m.Content, width, "")))
			b.WriteString("\n")
			continue
		}
		b.WriteString(v.renderAnswer(m.Result, width))
		b.WriteString("\n\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (v *View) renderAnswer(res *domain.AnswerResult, width int) string {
	if res == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(ansi.Wordwrap(res.Answer, width, ""))
	if res.IsNoAnswer() || res.Confidence == nil {
		return b.String()
	}

	band := res.Band()
	b.WriteString("\n")
	b.WriteString(v.styles.Band(band).Render(fmt.Sprintf("%s (%d%%)", band.Description(), *res.Confidence)))
	if res.Context != "" {
		b.WriteString("\n")
		b.WriteString(v.styles.Muted.Render("Source context:"))
		b.WriteString("\n")
		mark := func(s string) string { return v.styles.Mark.Render(s) }
		source := text.Highlight(res.Context, res.Answer, mark)
		b.WriteString(v.styles.Context.Render(ansi.Wordwrap(source, width-2, "")))
	}
	return b.String()
}
