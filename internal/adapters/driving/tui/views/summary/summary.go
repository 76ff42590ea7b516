// Package summary provides the summary tab of the TUI.
package summary

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"github.com/custodia-labs/grasp/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/grasp/internal/core/ports/driving"
)

// View shows the document summary in a scrollable viewport.
type View struct {
	styles   *styles.Styles
	session  driving.SessionService
	viewport viewport.Model
	width    int
	height   int
}

// NewView creates a new summary view.
func NewView(s *styles.Styles, session driving.SessionService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	v := &View{
		styles:   s,
		session:  session,
		viewport: viewport.New(80, 20),
		width:    80,
		height:   20,
	}
	v.Refresh()
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return nil
}

// Update scrolls the summary.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	var cmd tea.Cmd
	v.viewport, cmd = v.viewport.Update(msg)
	return v, cmd
}

// View renders the summary.
func (v *View) View() string {
	return v.viewport.View()
}

// SetDimensions sets the area available to the view.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.viewport.Width = width
	v.viewport.Height = max(height, 1)
	v.Refresh()
}

// Refresh re-reads the summary from the session.
func (v *View) Refresh() {
	v.viewport.SetContent(v.render())
}

func (v *View) render() string {
	summary := v.session.Summary()
	if summary == nil {
		return v.styles.Muted.Render("No document loaded.")
	}

	var b strings.Builder
	b.WriteString(v.styles.Subtitle.Render("Summary"))
	b.WriteString("\n\n")
	b.WriteString(ansi.Wordwrap(summary.Text, max(v.width-2, 20), ""))
	b.WriteString("\n\n")

	detail := fmt.Sprintf("%d words, bound %d", len(strings.Fields(summary.Text)), summary.MaxWords)
	if summary.ChunkCount > 1 {
		detail += fmt.Sprintf(", %d chunks, %d recombination passes", summary.ChunkCount, summary.Passes)
	}
	b.WriteString(v.styles.Muted.Render(detail))
	return b.String()
}
