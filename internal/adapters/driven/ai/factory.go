// Package ai selects the inference backend and builds the services behind it.
package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/custodia-labs/grasp/internal/adapters/driven/comprehension"
	anthropicllm "github.com/custodia-labs/grasp/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/custodia-labs/grasp/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/grasp/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/grasp/internal/adapters/driven/local"
	"github.com/custodia-labs/grasp/internal/core/domain"
	"github.com/custodia-labs/grasp/internal/core/ports/driven"
	"github.com/custodia-labs/grasp/internal/logger"
)

// pingTimeout is the maximum time to wait for one connectivity check.
const pingTimeout = 5 * time.Second

// Probe defaults.
const (
	DefaultProbeRetries = 2
	DefaultProbeBackoff = 250 * time.Millisecond
)

type initConfig struct {
	prompts      driven.PromptStore
	probeRetries uint64
	probeBackoff time.Duration
}

// InitOption configures Init.
type InitOption func(*initConfig)

// WithPromptStore gives LLM adapters customisable prompts.
func WithPromptStore(store driven.PromptStore) InitOption {
	return func(c *initConfig) {
		c.prompts = store
	}
}

// WithProbe sets how often and how patiently the LLM is pinged at start.
func WithProbe(retries uint64, backoff time.Duration) InitOption {
	return func(c *initConfig) {
		c.probeRetries = retries
		if backoff > 0 {
			c.probeBackoff = backoff
		}
	}
}

// Init selects the backend once. When the LLM is preferred, configured and
// answers a ping, every capability uses it. Otherwise the local extractive
// engine is used and the selection records why.
func Init(ctx context.Context, settings *domain.AppSettings, opts ...InitOption) *driven.Backend {
	cfg := initConfig{probeRetries: DefaultProbeRetries, probeBackoff: DefaultProbeBackoff}
	for _, opt := range opts {
		opt(&cfg)
	}

	if settings == nil {
		defaults := domain.DefaultAppSettings()
		settings = &defaults
	}

	if settings.Backend.Preferred == domain.PreferLocal {
		return NewLocalBackend(settings, "")
	}
	if !settings.LLM.IsConfigured() {
		return NewLocalBackend(settings, fmt.Sprintf("%s is not configured", settings.LLM.Provider))
	}

	svc, err := CreateLLMService(settings)
	if err != nil {
		logger.Warn("LLM setup failed: %v", err)
		return NewLocalBackend(settings, fmt.Sprintf("%s setup failed", settings.LLM.Provider))
	}

	if err := probe(ctx, svc, cfg); err != nil {
		svc.Close()
		logger.Warn("LLM unavailable: %v", err)
		return NewLocalBackend(settings, fmt.Sprintf("%s not reachable", settings.LLM.Provider))
	}

	if ensurer, ok := svc.(driven.ModelEnsurer); ok && settings.LLM.AutoPull {
		if err := ensurer.EnsureModel(ctx); err != nil {
			svc.Close()
			logger.Warn("model %s unavailable: %v", svc.ModelName(), err)
			return NewLocalBackend(settings, fmt.Sprintf("model %s unavailable", svc.ModelName()))
		}
	}

	return NewLLMBackend(svc, settings, cfg.prompts)
}

// probe pings svc, retrying with exponential backoff.
func probe(ctx context.Context, svc driven.LLMService, cfg initConfig) error {
	backoff := retry.WithMaxRetries(cfg.probeRetries, retry.NewExponential(cfg.probeBackoff))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		defer cancel()

		if err := svc.Ping(pingCtx); err != nil {
			logger.Debug("ping %s: %v", svc.ModelName(), err)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrLLMUnavailable, err)
	}
	return nil
}

// NewLLMBackend serves every capability from svc.
func NewLLMBackend(svc driven.LLMService, settings *domain.AppSettings, prompts driven.PromptStore) *driven.Backend {
	if aware, ok := svc.(driven.PromptStoreAware); ok && prompts != nil {
		aware.SetPromptStore(prompts)
	}

	opts := []comprehension.Option{
		comprehension.WithPromptStore(prompts),
		comprehension.WithContextWords(settings.Answer.ContextWords),
		comprehension.WithPassageWords(settings.Answer.PassageWords),
	}
	return &driven.Backend{
		Selection: domain.BackendSelection{
			Kind:     domain.BackendLLM,
			Provider: settings.LLM.Provider,
			Model:    svc.ModelName(),
		},
		Summariser: svc,
		Answerer:   comprehension.NewLLMAnswerer(svc, opts...),
		Generator:  comprehension.NewLLMQuestionGenerator(svc, opts...),
		Grader:     comprehension.NewLLMGrader(svc, opts...),
		Closer:     svc.Close,
	}
}

// NewLocalBackend serves every capability from the local extractive engine.
func NewLocalBackend(settings *domain.AppSettings, reason string) *driven.Backend {
	answerer := local.NewExtractiveAnswerer(settings.Answer.PassageWords)
	return &driven.Backend{
		Selection: domain.BackendSelection{
			Kind:   domain.BackendLocal,
			Reason: reason,
		},
		Summariser: local.NewFrequencySummariser(),
		Answerer:   answerer,
		Generator:  local.NewClozeGenerator(),
		Grader:     local.NewLexicalGrader(settings.Evaluation.MatchThreshold),
		Closer:     answerer.Close,
	}
}

// ValidateLLMConfig creates an LLM service from settings and pings it once.
func ValidateLLMConfig(ctx context.Context, settings *domain.AppSettings) error {
	if settings == nil || !settings.LLM.IsConfigured() {
		return fmt.Errorf("%w: provider not configured", domain.ErrLLMUnavailable)
	}

	svc, err := CreateLLMService(settings)
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := svc.Ping(ctx); err != nil {
		return fmt.Errorf("%w: service unreachable (%w)", domain.ErrLLMUnavailable, err)
	}
	return nil
}

// CreateLLMService creates the appropriate LLM service based on settings.
func CreateLLMService(settings *domain.AppSettings) (driven.LLMService, error) {
	if settings == nil || !settings.LLM.IsConfigured() {
		return nil, errors.New("LLM provider not configured")
	}

	llm := settings.LLM
	switch llm.Provider {
	case domain.AIProviderOllama:
		return ollamallm.NewLLMService(ollamallm.LLMConfig{
			BaseURL: llm.BaseURL,
			Model:   llm.Model,
			Timeout: settings.Backend.Timeout,
		}), nil

	case domain.AIProviderOpenAI:
		return openaillm.NewLLMService(openaillm.LLMConfig{
			APIKey:            llm.APIKey,
			BaseURL:           llm.BaseURL,
			Model:             llm.Model,
			Timeout:           settings.Backend.Timeout,
			RequestsPerSecond: llm.RequestsPerSecond,
		})

	case domain.AIProviderAnthropic:
		return anthropicllm.NewLLMService(anthropicllm.Config{
			APIKey:            llm.APIKey,
			BaseURL:           llm.BaseURL,
			Model:             llm.Model,
			Timeout:           settings.Backend.Timeout,
			RequestsPerSecond: llm.RequestsPerSecond,
		})

	default:
		return nil, fmt.Errorf("%w: LLM provider %s", domain.ErrUnsupportedType, llm.Provider)
	}
}
