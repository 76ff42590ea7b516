package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/grasp/internal/core/domain"
	"github.com/custodia-labs/grasp/internal/core/ports/driving"
)

var (
	summarizeMaxWords int
	summarizeJSON     bool
)

var summarizeCmd = &cobra.Command{
	Use:     "summarize FILE",
	Aliases: []string{"summarise"},
	Short:   "Summarise a PDF or text document",
	Long: `Summarise a PDF or text document.

Short documents are summarised in one call. Longer ones are split into
chunks, summarised chunk by chunk and recombined until the summary fits
--max-words.`,
	Args: cobra.ExactArgs(1),
	RunE: runSummarize,
}

func init() {
	summarizeCmd.Flags().IntVarP(&summarizeMaxWords, "max-words", "n", 0, "summary word bound (0 = configured default)")
	summarizeCmd.Flags().BoolVar(&summarizeJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(summarizeCmd)
}

type summaryOutput struct {
	Document *driving.DocumentInfo `json:"document"`
	Summary  *domain.Summary       `json:"summary"`
}

func runSummarize(cmd *cobra.Command, args []string) error {
	rt, info, err := openDocument(cmd, args[0], RuntimeOptions{MaxWords: summarizeMaxWords})
	if err != nil {
		return err
	}
	defer rt.Close() //nolint:errcheck

	summary := rt.Session.Summary()
	if summary == nil {
		return domain.ErrNoDocument
	}

	out := cmd.OutOrStdout()
	if summarizeJSON {
		return printJSON(out, summaryOutput{Document: info, Summary: summary})
	}

	printDocumentCard(out, info)
	fmt.Fprintln(out, wrap(out, summary.Text))
	return nil
}
