package cli

import (
	"github.com/spf13/cobra"
)

var askJSON bool

var askCmd = &cobra.Command{
	Use:   "ask FILE QUESTION",
	Short: "Answer a question using only the document",
	Long: `Answer a question using only the content of a PDF or text document.

With an LLM the answer is written in full. With the local engine the answer
is the best matching sentence, with a confidence score and the passage it
came from.`,
	Args: cobra.ExactArgs(2),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	rt, _, err := openDocument(cmd, args[0], RuntimeOptions{})
	if err != nil {
		return err
	}
	defer rt.Close() //nolint:errcheck

	res, err := rt.Session.Ask(cmd.Context(), args[1])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if askJSON {
		return printJSON(out, res)
	}
	printAnswer(out, res)
	return nil
}
