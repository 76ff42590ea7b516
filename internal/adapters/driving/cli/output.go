package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"golang.org/x/term"

	"github.com/custodia-labs/grasp/internal/core/domain"
	"github.com/custodia-labs/grasp/internal/core/ports/driving"
	"github.com/custodia-labs/grasp/internal/core/text"
)

const (
	defaultWidth = 80
	maxWidth     = 100
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	mutedStyle   = lipgloss.NewStyle().Faint(true)
	markStyle    = lipgloss.NewStyle().Bold(true).Underline(true)
	correctStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	wrongStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
)

// outputWidth is the terminal width of w, or a default when w is not a terminal.
func outputWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return defaultWidth
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return defaultWidth
	}
	return min(width, maxWidth)
}

// wrap word-wraps s to the width of w.
func wrap(w io.Writer, s string) string {
	return ansi.Wordwrap(s, outputWidth(w), "")
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printDocumentCard(w io.Writer, info *driving.DocumentInfo) {
	fmt.Fprintln(w, titleStyle.Render(info.Title))
	fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("%d words, %d characters", info.Words, info.Chars)))
	fmt.Fprintln(w)
}

func printAnswer(w io.Writer, res *domain.AnswerResult) {
	fmt.Fprintln(w, wrap(w, res.Answer))
	if res.IsNoAnswer() {
		return
	}
	if res.Confidence != nil {
		fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("Confidence: %d%% (%s)", *res.Confidence, res.Band().Description())))
	}
	if res.Context != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, titleStyle.Render("Source context"))
		mark := func(s string) string { return markStyle.Render(s) }
		fmt.Fprintln(w, wrap(w, text.Highlight(res.Context, res.Answer, mark)))
	}
}
