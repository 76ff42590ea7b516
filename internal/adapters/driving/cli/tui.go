package cli

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/grasp/internal/adapters/driving/tui"
	"github.com/custodia-labs/grasp/internal/logger"
)

// tuiCmd represents the tui command.
var tuiCmd = &cobra.Command{
	Use:   "tui FILE",
	Short: "Launch the interactive terminal UI",
	Long: `Launch the interactive terminal user interface for a document.

The TUI has three tabs: the summary, a question box with the answer history,
and a comprehension challenge with graded answers.

Controls:
  Tab/Shift+Tab - Switch tab
  Enter         - Ask / Next answer / Submit
  Ctrl+R        - Reset answers
  Ctrl+N        - New questions
  ?             - Toggle help
  Ctrl+C        - Quit`,
	Args: cobra.ExactArgs(1),
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	// Add panic recovery to get stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	rt, _, err := openDocument(cmd, args[0], RuntimeOptions{})
	if err != nil {
		return err
	}
	defer rt.Close() //nolint:errcheck

	// Log lines would corrupt the alternate screen.
	if !logger.IsVerbose() {
		logger.SetOutput(io.Discard)
	}

	watchPrompts(cmd.Context(), rt)

	app, err := tui.NewApp(&tui.Ports{Session: rt.Session})
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	app.WithContext(cmd.Context())

	if err := app.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
