package driving

import "github.com/custodia-labs/grasp/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings, defaults filled in.
	Get() (*domain.AppSettings, error)

	// Effective is Get with environment overrides applied.
	Effective() (*domain.AppSettings, error)

	// Value returns the textual form of one setting of settings.
	Value(settings *domain.AppSettings, key string) (string, bool)

	// Save validates and persists application settings.
	Save(settings *domain.AppSettings) error

	// Set updates one setting from its textual form, e.g. ("summary.max_words", "120").
	Set(key, value string) error

	// Keys returns every supported setting key, sorted.
	Keys() []string

	// SetLLMProvider configures the LLM provider.
	SetLLMProvider(provider domain.AIProvider, model, apiKey string) error

	// Validate checks the current settings.
	Validate() error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings
}
