package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/grasp/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/grasp/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/grasp/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/grasp/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/grasp/internal/adapters/driving/tui/views/ask"
	"github.com/custodia-labs/grasp/internal/adapters/driving/tui/views/challenge"
	"github.com/custodia-labs/grasp/internal/adapters/driving/tui/views/summary"
	"github.com/custodia-labs/grasp/internal/core/domain"
)

// chromeHeight is the rows used by the header, tab bar and status bar.
const chromeHeight = 5

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// ports provides access to core services via driving ports.
	ports *Ports

	// ctx is the context for cancellation.
	ctx context.Context

	styles *styles.Styles
	keymap *keymap.KeyMap

	summaryView   *summary.View
	askView       *ask.View
	challengeView *challenge.View
	statusBar     *status.Bar

	// currentView tracks which tab is active.
	currentView messages.ViewType

	// previousView is restored when help is closed.
	previousView messages.ViewType

	// err holds the last error that occurred.
	err error

	// width and height are terminal dimensions.
	width  int
	height int

	// ready indicates if the app has initialised.
	ready bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()
	bar := status.NewBar(s, km)
	bar.SetBackend(ports.Session.Status())

	return &App{
		ports:         ports,
		ctx:           context.Background(),
		styles:        s,
		keymap:        km,
		summaryView:   summary.NewView(s, ports.Session),
		askView:       ask.NewView(s, km, ports.Session),
		challengeView: challenge.NewView(s, km, ports.Session),
		statusBar:     bar,
		currentView:   messages.ViewSummary,
	}, nil
}

// WithContext sets the context for the app and its views.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.askView.WithContext(ctx)
	a.challengeView.WithContext(ctx)
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	title := "grasp"
	if doc := a.ports.Session.Document(); doc != nil {
		title = "grasp - " + doc.Title
	}
	return tea.Batch(tea.EnterAltScreen, tea.SetWindowTitle(title))
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		cmd = a.handleKeyMsg(msg)

	case messages.ViewChanged:
		cmd = a.switchTo(msg.View)

	case messages.AnswerReceived:
		a.askView, cmd = a.askView.Update(msg)

	case messages.ChallengeGenerated, messages.ChallengeGraded:
		a.challengeView, cmd = a.challengeView.Update(msg)

	case messages.ErrorOccurred:
		a.err = msg.Err

	case messages.Quit:
		return a, tea.Quit

	default:
		cmd = a.forward(msg)
	}

	a.syncStatus()
	return a, cmd
}

func (a *App) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	keyStr := msg.String()
	switch {
	case keymap.Matches(keyStr, a.keymap.Quit):
		return tea.Quit

	case keymap.Matches(keyStr, a.keymap.NextTab):
		return a.switchTo(a.tabAfter(1))

	case keymap.Matches(keyStr, a.keymap.PrevTab):
		return a.switchTo(a.tabAfter(-1))

	// Only tabs without a text field take "?".
	case keymap.Matches(keyStr, a.keymap.Help) && !a.capturesText():
		if a.currentView == messages.ViewHelp {
			return a.switchTo(a.previousView)
		}
		a.previousView = a.currentView
		a.currentView = messages.ViewHelp
		return nil

	case msg.Type == tea.KeyEsc && a.currentView == messages.ViewHelp:
		return a.switchTo(a.previousView)
	}
	return a.forward(msg)
}

// forward passes msg to the active tab.
func (a *App) forward(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch a.currentView {
	case messages.ViewSummary:
		a.summaryView, cmd = a.summaryView.Update(msg)
	case messages.ViewAsk:
		a.askView, cmd = a.askView.Update(msg)
	case messages.ViewChallenge:
		a.challengeView, cmd = a.challengeView.Update(msg)
	case messages.ViewHelp:
		// Static.
	}
	return cmd
}

func (a *App) switchTo(view messages.ViewType) tea.Cmd {
	a.currentView = view
	a.err = nil
	switch view {
	case messages.ViewSummary:
		a.summaryView.Refresh()
	case messages.ViewAsk:
		return a.askView.Init()
	case messages.ViewChallenge:
		return a.challengeView.Activate()
	case messages.ViewHelp:
	}
	return nil
}

// tabAfter returns the tab delta steps from the current one. From help
// it counts from the tab help was opened over.
func (a *App) tabAfter(delta int) messages.ViewType {
	current := a.currentView
	if current == messages.ViewHelp {
		current = a.previousView
	}
	n := len(messages.Tabs)
	for i, t := range messages.Tabs {
		if t == current {
			return messages.Tabs[(i+delta+n)%n]
		}
	}
	return messages.Tabs[0]
}

func (a *App) capturesText() bool {
	return a.currentView == messages.ViewAsk || a.currentView == messages.ViewChallenge
}

// syncStatus derives the status bar from the active views.
func (a *App) syncStatus() {
	a.statusBar.SetBackend(a.ports.Session.Status())

	switch a.currentView {
	case messages.ViewAsk:
		a.statusBar.SetHints(a.keymap.AskHelp())
	case messages.ViewChallenge:
		a.statusBar.SetHints(a.keymap.ChallengeHelp())
	case messages.ViewSummary, messages.ViewHelp:
		a.statusBar.SetHints(nil)
	}

	switch {
	case a.askView.Busy():
		a.statusBar.Busy("Thinking...")
	case a.challengeView.Busy() != "":
		a.statusBar.Busy(a.challengeView.Busy())
	case a.err != nil:
		a.statusBar.Fail(a.err)
	case a.currentView == messages.ViewAsk && a.askView.Err() != nil:
		a.statusBar.Fail(a.askView.Err())
	case a.currentView == messages.ViewChallenge && a.challengeView.Err() != nil:
		a.statusBar.Fail(a.challengeView.Err())
	default:
		a.statusBar.Clear()
	}
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	var body string
	switch a.currentView {
	case messages.ViewSummary:
		body = a.summaryView.View()
	case messages.ViewAsk:
		body = a.askView.View()
	case messages.ViewChallenge:
		body = a.challengeView.View()
	case messages.ViewHelp:
		body = a.viewHelp()
	}

	body = lipgloss.NewStyle().Height(max(a.height-chromeHeight, 1)).Render(body)
	return lipgloss.JoinVertical(lipgloss.Left,
		a.viewHeader(),
		a.viewTabs(),
		"",
		body,
		a.statusBar.View(),
	)
}

func (a *App) viewHeader() string {
	doc := a.ports.Session.Document()
	if doc == nil {
		return a.styles.Title.Render("grasp") + "\n" + a.styles.Muted.Render(a.ports.Session.Status())
	}
	card := fmt.Sprintf("%d words, %d characters", doc.WordCount(), doc.CharCount())
	return a.styles.Title.Render(doc.Title) + "\n" +
		a.styles.Muted.Render(card+"  |  "+a.ports.Session.Status())
}

func (a *App) viewTabs() string {
	tabs := make([]string, 0, len(messages.Tabs))
	for _, t := range messages.Tabs {
		if t == a.currentView {
			tabs = append(tabs, a.styles.ActiveTab.Render(t.Title()))
			continue
		}
		tabs = append(tabs, a.styles.Tab.Render(t.Title()))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

// viewHelp renders the help view from the keymap.
func (a *App) viewHelp() string {
	var b strings.Builder
	b.WriteString(a.styles.Subtitle.Render("Help"))
	b.WriteString("\n\n")
	for _, group := range a.keymap.FullHelp() {
		for _, binding := range group {
			h := binding.Help()
			b.WriteString(fmt.Sprintf("  %-12s %s\n", h.Key, h.Desc))
		}
		b.WriteString("\n")
	}
	b.WriteString(a.styles.Muted.Render("[esc] or [?] back"))
	return b.String()
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// StatusMessage returns what the status bar shows on its left.
func (a *App) StatusMessage() string {
	return a.statusBar.Message()
}

// SetDimensions sets the terminal dimensions and resizes every view.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true

	bodyHeight := max(height-chromeHeight, 1)
	a.summaryView.SetDimensions(width, bodyHeight)
	a.askView.SetDimensions(width, bodyHeight)
	a.challengeView.SetDimensions(width, bodyHeight)
	a.statusBar.SetWidth(width)
}

// Document returns the document shown, or nil.
func (a *App) Document() *domain.Document {
	return a.ports.Session.Document()
}
