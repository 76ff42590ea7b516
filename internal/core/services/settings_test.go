package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/grasp/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/grasp/internal/core/domain"
)

func envFrom(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestSettingsService_Get_ReturnsDefaults(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore(), nil)

	settings, err := service.Get()

	require.NoError(t, err)
	defaults := domain.DefaultAppSettings()
	assert.Equal(t, defaults.Summary, settings.Summary)
	assert.Equal(t, defaults.Challenge, settings.Challenge)
	assert.Equal(t, defaults.LLM.Provider, settings.LLM.Provider)
	assert.Equal(t, DefaultOllamaURL, settings.LLM.BaseURL)
}

func TestSettingsService_Get_ReturnsStoredValues(t *testing.T) {
	store := memory.NewConfigStore(map[string]any{
		"backend.preferred":          "local",
		"backend.timeout_seconds":    int64(30),
		"llm.provider":               "openai",
		"llm.model":                  "gpt-4o",
		"summary.max_words":          int64(90),
		"evaluation.match_threshold": 0.7,
		"llm.auto_pull":              true,
	})
	service := NewSettingsService(store, nil)

	settings, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, domain.PreferLocal, settings.Backend.Preferred)
	assert.Equal(t, 30*time.Second, settings.Backend.Timeout)
	assert.Equal(t, domain.AIProviderOpenAI, settings.LLM.Provider)
	assert.Equal(t, "gpt-4o", settings.LLM.Model)
	assert.Empty(t, settings.LLM.BaseURL)
	assert.Equal(t, 90, settings.Summary.MaxWords)
	assert.InDelta(t, 0.7, settings.Evaluation.MatchThreshold, 1e-9)
	assert.True(t, settings.LLM.AutoPull)
}

func TestSettingsService_Get_InvalidValuesReturnDefaults(t *testing.T) {
	store := memory.NewConfigStore(map[string]any{
		"backend.preferred": "gpu",
		"llm.provider":      "cohere",
		"summary.max_words": -5,
	})
	service := NewSettingsService(store, nil)

	settings, err := service.Get()

	require.NoError(t, err)
	defaults := domain.DefaultAppSettings()
	assert.Equal(t, defaults.Backend.Preferred, settings.Backend.Preferred)
	assert.Equal(t, defaults.LLM.Provider, settings.LLM.Provider)
	assert.Equal(t, defaults.Summary.MaxWords, settings.Summary.MaxWords)
}

func TestSettingsService_Save(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store, nil)

	settings := domain.DefaultAppSettings()
	settings.Summary.MaxWords = 200
	settings.Backend.Timeout = 45 * time.Second

	require.NoError(t, service.Save(&settings))

	assert.Equal(t, 200, store.GetInt("summary.max_words"))
	assert.Equal(t, 45, store.GetInt("backend.timeout_seconds"))
	assert.Equal(t, "ollama", store.GetString("llm.provider"))
	_, hasKey := store.Get("llm.api_key")
	assert.False(t, hasKey, "empty API key must not be written")
	assert.Equal(t, 1, store.Saves())
}

func TestSettingsService_Save_RejectsInvalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(s *domain.AppSettings)
		key    string
	}{
		{"question count too high", func(s *domain.AppSettings) { s.Challenge.QuestionCount = 9 }, "challenge.question_count"},
		{"question count too low", func(s *domain.AppSettings) { s.Challenge.QuestionCount = 2 }, "challenge.question_count"},
		{"trigger below chunk", func(s *domain.AppSettings) { s.Summary.TriggerWords = 100 }, "summary.trigger_words"},
		{"threshold above one", func(s *domain.AppSettings) { s.Evaluation.MatchThreshold = 1.5 }, "evaluation.match_threshold"},
		{"bad url", func(s *domain.AppSettings) { s.LLM.BaseURL = "not a url" }, "llm.base_url"},
		{"short timeout", func(s *domain.AppSettings) { s.Backend.Timeout = time.Millisecond }, "backend.timeout_seconds"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memory.NewConfigStore()
			service := NewSettingsService(store, nil)
			settings := domain.DefaultAppSettings()
			tt.mutate(&settings)

			err := service.Save(&settings)

			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrInvalidInput))
			assert.Contains(t, err.Error(), tt.key)
			assert.Zero(t, store.Saves())
		})
	}
}

func TestSettingsService_Set(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store, nil)

	require.NoError(t, service.Set("summary.max_words", "120"))
	require.NoError(t, service.Set("llm.auto_pull", "true"))
	require.NoError(t, service.Set("backend.timeout_seconds", "60"))

	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, 120, settings.Summary.MaxWords)
	assert.True(t, settings.LLM.AutoPull)
	assert.Equal(t, time.Minute, settings.Backend.Timeout)

	v, ok := service.Value(settings, "backend.timeout_seconds")
	assert.True(t, ok)
	assert.Equal(t, "60", v)
}

func TestSettingsService_Set_ProviderResetsModel(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore(), nil)

	require.NoError(t, service.Set("llm.provider", "anthropic"))

	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderAnthropic, settings.LLM.Provider)
	assert.Equal(t, domain.DefaultLLMModels()[domain.AIProviderAnthropic], settings.LLM.Model)
}

func TestSettingsService_Set_Errors(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore(), nil)

	assert.True(t, errors.Is(service.Set("nope", "1"), domain.ErrInvalidInput))
	assert.True(t, errors.Is(service.Set("summary.max_words", "many"), domain.ErrInvalidInput))
	assert.True(t, errors.Is(service.Set("summary.max_words", "3"), domain.ErrInvalidInput))
	assert.True(t, errors.Is(service.Set("backend.preferred", "gpu"), domain.ErrInvalidInput))
}

func TestSettingsService_Keys(t *testing.T) {
	keys := NewSettingsService(memory.NewConfigStore(), nil).Keys()

	assert.Len(t, keys, len(settingsTable))
	assert.Contains(t, keys, "summary.max_words")
	assert.IsIncreasing(t, keys)
}

func TestSettingsService_SetLLMProvider(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store, nil)

	err := service.SetLLMProvider(domain.AIProviderOpenAI, "", "")
	assert.Error(t, err)

	require.NoError(t, service.SetLLMProvider(domain.AIProviderOpenAI, "", "sk-test"))
	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", settings.LLM.Model)
	assert.Equal(t, "sk-test", settings.LLM.APIKey)
	assert.Empty(t, settings.LLM.BaseURL)

	require.NoError(t, service.SetLLMProvider(domain.AIProviderOllama, "mistral", ""))
	settings, err = service.Get()
	require.NoError(t, err)
	assert.Equal(t, "mistral", settings.LLM.Model)
	assert.Equal(t, DefaultOllamaURL, settings.LLM.BaseURL)

	assert.Error(t, service.SetLLMProvider(domain.AIProvider("x"), "", ""))
}

func TestSettingsService_Effective(t *testing.T) {
	store := memory.NewConfigStore(map[string]any{"llm.provider": "openai"})
	service := NewSettingsService(store, envFrom(map[string]string{
		"OPENAI_API_KEY":     "sk-env",
		"GRASP_LLM_BASE_URL": "http://proxy:8080",
		"GRASP_BACKEND":      "local",
	}))

	settings, err := service.Effective()
	require.NoError(t, err)
	assert.Equal(t, "sk-env", settings.LLM.APIKey)
	assert.Equal(t, "http://proxy:8080", settings.LLM.BaseURL)
	assert.Equal(t, domain.PreferLocal, settings.Backend.Preferred)

	stored, err := service.Get()
	require.NoError(t, err)
	assert.Empty(t, stored.LLM.APIKey, "overrides must not leak into Get")
}

func TestSettingsService_Effective_ProviderOverride(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore(), envFrom(map[string]string{
		"GRASP_LLM_PROVIDER": "anthropic",
		"GRASP_LLM_API_KEY":  "key",
	}))

	settings, err := service.Effective()
	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderAnthropic, settings.LLM.Provider)
	assert.Equal(t, domain.DefaultLLMModels()[domain.AIProviderAnthropic], settings.LLM.Model)
	assert.Equal(t, "key", settings.LLM.APIKey)
}

func TestSettingsService_Validate(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store, nil)
	require.NoError(t, service.Validate())

	_ = store.Set("summary.call_min_words", 500)
	assert.Error(t, service.Validate())
}
