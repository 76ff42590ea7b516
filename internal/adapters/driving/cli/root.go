// Package cli provides the grasp command line interface.
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/grasp/internal/logger"
)

// version is set at build time.
var version = "dev"

var (
	verbose bool
	envFile string
)

var rootCmd = &cobra.Command{
	Use:   "grasp",
	Short: "Summarise, question and quiz yourself on a document",
	Long: `grasp reads a PDF or text document, summarises it, answers questions
using only its content and generates comprehension questions it can grade.

It uses a configured LLM (Ollama, OpenAI or Anthropic) when one is reachable
and falls back to a local extractive engine otherwise.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		logger.SetVerbose(verbose)
		return loadEnvFile(envFile, cmd.Flags().Changed("env-file"))
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log pipeline steps to stderr")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "environment file to load")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command. ctx is cancelled on interrupt and
// reaches every command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// loadEnvFile loads path into the process environment. A missing default
// file is ignored; a missing file the user asked for is an error.
func loadEnvFile(path string, explicit bool) error {
	if path == "" {
		return nil
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve env file: %w", err)
	}
	info, err := os.Stat(absPath)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return nil
		}
		return fmt.Errorf("env file %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("env file path '%s' is not a regular file", path)
	}
	if err := godotenv.Load(absPath); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", absPath, err)
	}
	logger.Debug("Loaded environment from %s", absPath)
	return nil
}
