package domain

import "time"

const unknownDescription = "Unknown"

// AIProvider identifies an LLM service provider.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// BackendPreference says which inference backend to try first.
type BackendPreference string

// Backend preferences.
const (
	// PreferLLM probes the configured LLM and falls back to local on failure.
	PreferLLM BackendPreference = "llm"

	// PreferLocal always uses the local extractive engine.
	PreferLocal BackendPreference = "local"
)

// IsValid returns true if the preference is recognised.
func (p BackendPreference) IsValid() bool {
	return p == PreferLLM || p == PreferLocal
}

// String returns the string representation.
func (p BackendPreference) String() string {
	return string(p)
}

// BackendSettings holds backend selection configuration.
type BackendSettings struct {
	// Preferred is the backend to try first.
	Preferred BackendPreference `validate:"oneof=llm local"`

	// Timeout bounds every single backend call.
	Timeout time.Duration `validate:"min=1s"`
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string `validate:"omitempty,url"`

	// APIKey is the API key (for OpenAI/Anthropic).
	APIKey string

	// RequestsPerSecond limits calls to cloud providers. Zero uses the provider default.
	RequestsPerSecond float64 `validate:"gte=0"`

	// AutoPull asks Ollama to download the model when it is missing.
	AutoPull bool
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// SummarySettings holds summariser configuration.
type SummarySettings struct {
	// MaxWords bounds multi-chunk summaries.
	MaxWords int `validate:"gte=10"`

	// ChunkWords is the word budget of each chunk.
	ChunkWords int `validate:"gte=50"`

	// TriggerWords is the word count above which a document is chunked.
	TriggerWords int `validate:"gtefield=ChunkWords"`

	// CallMaxWords and CallMinWords are the per-call length envelope.
	CallMaxWords int `validate:"gtefield=CallMinWords"`
	CallMinWords int `validate:"gte=1"`

	// MaxPasses bounds the number of recombination passes.
	MaxPasses int `validate:"gte=1,lte=10"`

	// Concurrency is how many chunk calls may run at once.
	Concurrency int `validate:"gte=1,lte=16"`
}

// AnswerSettings holds answerer configuration.
type AnswerSettings struct {
	// PassageWords is the size of indexed passages for extractive answers.
	PassageWords int `validate:"gte=10"`

	// ContextWords bounds how much document text is sent to an LLM.
	ContextWords int `validate:"gte=100"`
}

// ChallengeSettings holds challenge generator configuration.
type ChallengeSettings struct {
	// QuestionCount is how many questions each challenge has.
	QuestionCount int `validate:"gte=3,lte=5"`

	// ExcerptWords is the size of the excerpts questions are generated from.
	ExcerptWords int `validate:"gte=20"`
}

// EvaluationSettings holds answer evaluator configuration.
type EvaluationSettings struct {
	// MatchThreshold is the share of answer terms that must appear in the context.
	MatchThreshold float64 `validate:"gt=0,lte=1"`
}

// AppSettings holds all application settings.
type AppSettings struct {
	Backend    BackendSettings
	LLM        LLMSettings
	Summary    SummarySettings
	Answer     AnswerSettings
	Challenge  ChallengeSettings
	Evaluation EvaluationSettings
}

// Defaults used by DefaultAppSettings.
const (
	DefaultBackendTimeout = 120 * time.Second
	DefaultSummaryWords   = 150
	DefaultChunkWords     = 800
	DefaultTriggerWords   = 1024
	DefaultCallMaxWords   = 150
	DefaultCallMinWords   = 30
	DefaultMaxPasses      = 3
	DefaultPassageWords   = 80
	DefaultContextWords   = 1500
	DefaultQuestionCount  = 3
	DefaultExcerptWords   = 120
	DefaultMatchThreshold = 0.5
)

// DefaultAppSettings returns settings with sensible defaults.
// The LLM points at a local Ollama; if it is not running the local
// extractive engine takes over.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Backend: BackendSettings{
			Preferred: PreferLLM,
			Timeout:   DefaultBackendTimeout,
		},
		LLM: LLMSettings{
			Provider: AIProviderOllama,
			Model:    DefaultLLMModels()[AIProviderOllama],
			AutoPull: false,
		},
		Summary: SummarySettings{
			MaxWords:     DefaultSummaryWords,
			ChunkWords:   DefaultChunkWords,
			TriggerWords: DefaultTriggerWords,
			CallMaxWords: DefaultCallMaxWords,
			CallMinWords: DefaultCallMinWords,
			MaxPasses:    DefaultMaxPasses,
			Concurrency:  1,
		},
		Answer: AnswerSettings{
			PassageWords: DefaultPassageWords,
			ContextWords: DefaultContextWords,
		},
		Challenge: ChallengeSettings{
			QuestionCount: DefaultQuestionCount,
			ExcerptWords:  DefaultExcerptWords,
		},
		Evaluation: EvaluationSettings{
			MatchThreshold: DefaultMatchThreshold,
		},
	}
}

// AllLLMProviders returns providers that support LLM operations.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3:instruct",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
	}
}

// PipelineConfig holds post-processor pipeline configuration.
// Uses generic map-based config so processors can be added without
// modifying this struct.
type PipelineConfig struct {
	// Processors is the ordered list of processor names to run.
	Processors []string

	// ProcessorConfigs holds per-processor configuration as generic maps.
	ProcessorConfigs map[string]map[string]any
}

// GetProcessorConfig returns config for a specific processor, or nil if not set.
func (c *PipelineConfig) GetProcessorConfig(name string) map[string]any {
	if c.ProcessorConfigs == nil {
		return nil
	}
	return c.ProcessorConfigs[name]
}

// PipelineConfigFor derives the chunking pipeline from summary settings.
func PipelineConfigFor(s SummarySettings) PipelineConfig {
	return PipelineConfig{
		Processors: []string{"chunker"},
		ProcessorConfigs: map[string]map[string]any{
			"chunker": {
				"chunk_words":   s.ChunkWords,
				"trigger_words": s.TriggerWords,
			},
		},
	}
}
