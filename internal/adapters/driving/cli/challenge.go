package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/grasp/internal/core/domain"
	"github.com/custodia-labs/grasp/internal/core/ports/driving"
)

var challengeCmd = &cobra.Command{
	Use:   "challenge FILE",
	Short: "Quiz yourself on a document",
	Long: `Generate comprehension questions about a document, read your answers
from the terminal and grade them against the passages the questions came from.

After grading you can retry the same questions, ask for new ones, or quit.`,
	Args: cobra.ExactArgs(1),
	RunE: runChallenge,
}

func init() {
	rootCmd.AddCommand(challengeCmd)
}

// errQuit ends the challenge loop without an error.
var errQuit = errors.New("quit")

func runChallenge(cmd *cobra.Command, args []string) error {
	rt, info, err := openDocument(cmd, args[0], RuntimeOptions{})
	if err != nil {
		return err
	}
	defer rt.Close() //nolint:errcheck

	out := cmd.OutOrStdout()
	printDocumentCard(out, info)

	reader := bufio.NewReader(cmd.InOrStdin())
	err = challengeLoop(cmd, rt.Session, reader)
	if errors.Is(err, errQuit) {
		return nil
	}
	return err
}

func challengeLoop(cmd *cobra.Command, session driving.SessionService, reader *bufio.Reader) error {
	out := cmd.OutOrStdout()
	fresh := true

	for {
		if fresh {
			fmt.Fprintln(out, mutedStyle.Render("Generating questions..."))
			if _, err := session.GenerateChallenge(cmd.Context()); err != nil {
				return err
			}
		}

		set := session.Questions()
		if set == nil {
			return domain.ErrNoQuestions
		}
		if err := collectAnswers(cmd, session, set, reader); err != nil {
			return err
		}

		graded, err := session.Submit(cmd.Context())
		if err != nil {
			return err
		}
		printResults(out, graded)

		fmt.Fprint(out, "\n[r]etry, [n]ew questions, [q]uit: ")
		choice, err := readAnswer(reader)
		if err != nil {
			return errQuit
		}
		switch strings.ToLower(choice) {
		case "r", "retry":
			if err := session.ResetAnswers(); err != nil {
				return err
			}
			fresh = false
		case "n", "new":
			if err := session.HideResults(); err != nil {
				return err
			}
			fresh = true
		default:
			return errQuit
		}
		fmt.Fprintln(out)
	}
}

// collectAnswers prompts for every question, repeating the prompt until
// the answer is not blank.
func collectAnswers(cmd *cobra.Command, session driving.SessionService, set *domain.QuestionSet, reader *bufio.Reader) error {
	out := cmd.OutOrStdout()
	for i, q := range set.Questions {
		fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("Q%d. ", i+1))+wrap(out, q.Question))
		for {
			fmt.Fprint(out, "> ")
			answer, err := readAnswer(reader)
			if err != nil {
				return errQuit
			}
			if answer == "" {
				continue
			}
			if err := session.SetAnswer(i, answer); err != nil {
				return err
			}
			break
		}
		fmt.Fprintln(out)
	}
	return nil
}

// readAnswer reads one trimmed line. It returns io.EOF only when the input
// ended with nothing left to read.
func readAnswer(reader *bufio.Reader) (string, error) {
	line, err := reader.ReadString('\n')
	line = strings.TrimSpace(line)
	if err != nil && line == "" {
		if errors.Is(err, io.EOF) {
			return "", io.EOF
		}
		return "", err
	}
	return line, nil
}

func printResults(w io.Writer, set *domain.QuestionSet) {
	for i, q := range set.Questions {
		ua := set.Answers[i]
		if ua == nil || ua.Evaluation == nil {
			continue
		}
		ev := ua.Evaluation

		verdict := correctStyle.Render("Correct")
		if !ev.IsCorrect {
			verdict = wrongStyle.Render("Incorrect")
		}
		fmt.Fprintf(w, "Q%d. %s\n", i+1, q.Question)
		fmt.Fprintf(w, "  %s: %s\n", verdict, ev.Feedback)
		if ev.Reference != "" {
			fmt.Fprintln(w, mutedStyle.Render(wrap(w, "  Reference: "+ev.Reference)))
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("Score: %d/%d", set.Score(), set.Len())))
}
