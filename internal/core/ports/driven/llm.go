package driven

import (
	"context"

	"github.com/custodia-labs/grasp/internal/core/domain"
)

// LLMService provides language model operations.
// When it cannot be reached at start, the local extractive engine is used
// and no LLMService is constructed at all.
//
// Implementations include:
//   - Ollama (local models)
//   - OpenAI
//   - Anthropic
type LLMService interface {
	// Generate produces text completion from a prompt.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	// Chat conducts a multi-turn conversation.
	Chat(ctx context.Context, messages []ChatMessage, opts ChatOptions) (string, error)

	// Summarise creates a summary of content between minWords and maxWords long.
	Summarise(ctx context.Context, content string, maxWords, minWords int) (string, error)

	// ModelName returns the name of the LLM model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	// Used by the startup probe before committing to the LLM backend.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// ModelEnsurer is implemented by providers that can download a missing model.
type ModelEnsurer interface {
	// EnsureModel makes the configured model available, pulling it if needed.
	EnsureModel(ctx context.Context) error
}

// GenerateOptions configures text generation behaviour.
type GenerateOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64

	// StopWords are sequences that stop generation when encountered.
	StopWords []string

	// JSON asks the provider for a JSON reply where it supports that.
	JSON bool
}

// ChatMessage represents a single message in a conversation.
type ChatMessage struct {
	// Role is one of "system", "user", or "assistant".
	Role string

	// Content is the message text.
	Content string
}

// ChatOptions configures chat behaviour.
type ChatOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64

	// JSON asks the provider for a JSON reply where it supports that.
	JSON bool
}

// LLMConfigValidator checks LLM settings against the live provider.
type LLMConfigValidator interface {
	// ValidateLLM returns an error when the configured provider cannot be used.
	ValidateLLM(ctx context.Context, settings *domain.AppSettings) error
}
