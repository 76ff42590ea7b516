// Command grasp summarises documents, answers questions about them and
// quizzes the reader.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/custodia-labs/grasp/internal/adapters/driven/ai"
	"github.com/custodia-labs/grasp/internal/adapters/driven/config/file"
	"github.com/custodia-labs/grasp/internal/adapters/driven/metrics"
	"github.com/custodia-labs/grasp/internal/adapters/driving/cli"
	"github.com/custodia-labs/grasp/internal/core/domain"
	"github.com/custodia-labs/grasp/internal/core/services"
	"github.com/custodia-labs/grasp/internal/normalisers"
	"github.com/custodia-labs/grasp/internal/postprocessors"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	configStore, err := file.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	prompts, err := file.NewPromptStore("")
	if err != nil {
		return fmt.Errorf("open prompts: %w", err)
	}

	settings := services.NewSettingsService(configStore, os.LookupEnv)

	cli.SetVersion(version)
	cli.SetSettingsService(settings)
	cli.SetLLMValidator(ai.NewConfigValidator())
	cli.SetRuntimeFactory(func(ctx context.Context, opts cli.RuntimeOptions) (*cli.Runtime, error) {
		return newRuntime(ctx, settings, prompts, opts)
	})

	return cli.Execute(ctx)
}

// newRuntime selects the backend and assembles the session around it.
func newRuntime(
	ctx context.Context,
	settingsService *services.SettingsService,
	prompts *file.PromptStore,
	opts cli.RuntimeOptions,
) (*cli.Runtime, error) {
	settings, err := settingsService.Effective()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	if opts.MaxWords > 0 {
		settings.Summary.MaxWords = opts.MaxWords
	}

	registry := postprocessors.NewRegistry()
	postprocessors.RegisterDefaults(registry)
	pipeline, err := postprocessors.BuildPipeline(registry, domain.PipelineConfigFor(settings.Summary))
	if err != nil {
		return nil, fmt.Errorf("build chunker: %w", err)
	}

	backend := ai.Init(ctx, settings, ai.WithPromptStore(prompts))
	observer := metrics.NewObserver()
	name := backendName(backend.Selection)

	summaries := services.NewSummaryService(pipeline, backend.Summariser, settings.Summary, settings.Backend, name, observer)
	answers := services.NewAnswerService(backend.Answerer, settings.Backend, name, observer)
	challenges := services.NewChallengeService(
		backend.Generator, backend.Grader, settings.Challenge, settings.Backend, name, observer,
	)

	session := services.NewSession(
		normalisers.NewDefaultRegistry(),
		summaries,
		answers,
		challenges,
		backend.Selection,
		settings.Summary.MaxWords,
	)

	return &cli.Runtime{
		Session: session,
		Metrics: observer.Handler(),
		Watch:   prompts.Watch,
		Close:   backend.Close,
	}, nil
}

// backendName labels metrics: the provider for an LLM, "local" otherwise.
func backendName(sel domain.BackendSelection) string {
	if sel.Kind == domain.BackendLLM {
		return string(sel.Provider)
	}
	return string(sel.Kind)
}
