package services

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/custodia-labs/grasp/internal/core/domain"
	"github.com/custodia-labs/grasp/internal/core/ports/driven"
	"github.com/custodia-labs/grasp/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// DefaultOllamaURL is the base URL used for a local Ollama when none is set.
const DefaultOllamaURL = "http://localhost:11434"

// setting binds a config key to a field of domain.AppSettings.
type setting struct {
	key   string
	field string
	ptr   func(s *domain.AppSettings) any
}

// settingsTable lists every supported key.
//
//nolint:gosec // G101: llm.api_key is a key name, not a credential.
var settingsTable = []setting{
	{"backend.preferred", "Backend.Preferred", func(s *domain.AppSettings) any { return &s.Backend.Preferred }},
	{"backend.timeout_seconds", "Backend.Timeout", func(s *domain.AppSettings) any { return &s.Backend.Timeout }},
	{"llm.provider", "LLM.Provider", func(s *domain.AppSettings) any { return &s.LLM.Provider }},
	{"llm.model", "LLM.Model", func(s *domain.AppSettings) any { return &s.LLM.Model }},
	{"llm.base_url", "LLM.BaseURL", func(s *domain.AppSettings) any { return &s.LLM.BaseURL }},
	{"llm.api_key", "LLM.APIKey", func(s *domain.AppSettings) any { return &s.LLM.APIKey }},
	{"llm.requests_per_second", "LLM.RequestsPerSecond", func(s *domain.AppSettings) any { return &s.LLM.RequestsPerSecond }},
	{"llm.auto_pull", "LLM.AutoPull", func(s *domain.AppSettings) any { return &s.LLM.AutoPull }},
	{"summary.max_words", "Summary.MaxWords", func(s *domain.AppSettings) any { return &s.Summary.MaxWords }},
	{"summary.chunk_words", "Summary.ChunkWords", func(s *domain.AppSettings) any { return &s.Summary.ChunkWords }},
	{"summary.trigger_words", "Summary.TriggerWords", func(s *domain.AppSettings) any { return &s.Summary.TriggerWords }},
	{"summary.call_max_words", "Summary.CallMaxWords", func(s *domain.AppSettings) any { return &s.Summary.CallMaxWords }},
	{"summary.call_min_words", "Summary.CallMinWords", func(s *domain.AppSettings) any { return &s.Summary.CallMinWords }},
	{"summary.max_passes", "Summary.MaxPasses", func(s *domain.AppSettings) any { return &s.Summary.MaxPasses }},
	{"summary.concurrency", "Summary.Concurrency", func(s *domain.AppSettings) any { return &s.Summary.Concurrency }},
	{"answer.passage_words", "Answer.PassageWords", func(s *domain.AppSettings) any { return &s.Answer.PassageWords }},
	{"answer.context_words", "Answer.ContextWords", func(s *domain.AppSettings) any { return &s.Answer.ContextWords }},
	{"challenge.question_count", "Challenge.QuestionCount", func(s *domain.AppSettings) any { return &s.Challenge.QuestionCount }},
	{"challenge.excerpt_words", "Challenge.ExcerptWords", func(s *domain.AppSettings) any { return &s.Challenge.ExcerptWords }},
	{"evaluation.match_threshold", "Evaluation.MatchThreshold", func(s *domain.AppSettings) any { return &s.Evaluation.MatchThreshold }},
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	lookupEnv   func(string) (string, bool)
	validate    *validator.Validate
}

// NewSettingsService creates a new settings service.
// lookupEnv supplies environment overrides for Effective; it may be nil.
func NewSettingsService(configStore driven.ConfigStore, lookupEnv func(string) (string, bool)) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		lookupEnv:   lookupEnv,
		validate:    validator.New(),
	}
}

// Get retrieves current application settings. Missing or invalid stored
// values fall back to defaults.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	settings := domain.DefaultAppSettings()
	for _, st := range settingsTable {
		s.load(st, &settings)
	}
	if settings.LLM.Provider.IsLocal() && settings.LLM.BaseURL == "" {
		settings.LLM.BaseURL = DefaultOllamaURL
	}
	return &settings, nil
}

// Effective returns the stored settings with environment overrides applied.
// Overrides are never written back by Save.
func (s *SettingsService) Effective() (*domain.AppSettings, error) {
	settings, err := s.Get()
	if err != nil {
		return nil, err
	}
	if s.lookupEnv == nil {
		return settings, nil
	}

	if v, ok := s.env("GRASP_LLM_PROVIDER"); ok {
		if p := domain.AIProvider(v); p.IsValid() {
			settings.LLM.Provider = p
			if _, set := s.env("GRASP_LLM_MODEL"); !set {
				settings.LLM.Model = domain.DefaultLLMModels()[p]
			}
		}
	}
	if v, ok := s.env("GRASP_LLM_MODEL"); ok {
		settings.LLM.Model = v
	}
	if v, ok := s.env("GRASP_LLM_BASE_URL"); ok {
		settings.LLM.BaseURL = v
	}
	if v, ok := s.env("GRASP_LLM_API_KEY"); ok {
		settings.LLM.APIKey = v
	} else if settings.LLM.APIKey == "" {
		switch settings.LLM.Provider {
		case domain.AIProviderOpenAI:
			settings.LLM.APIKey, _ = s.env("OPENAI_API_KEY")
		case domain.AIProviderAnthropic:
			settings.LLM.APIKey, _ = s.env("ANTHROPIC_API_KEY")
		}
	}
	if v, ok := s.env("GRASP_BACKEND"); ok {
		if p := domain.BackendPreference(v); p.IsValid() {
			settings.Backend.Preferred = p
		}
	}
	return settings, nil
}

func (s *SettingsService) env(key string) (string, bool) {
	v, ok := s.lookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return strings.TrimSpace(v), true
}

// Save validates and persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	if err := s.check(settings); err != nil {
		return err
	}

	for _, st := range settingsTable {
		value := stored(st.ptr(settings))
		if st.key == "llm.api_key" && value == "" {
			continue
		}
		if err := s.configStore.Set(st.key, value); err != nil {
			return fmt.Errorf("save %s: %w", st.key, err)
		}
	}

	if err := s.configStore.Save(); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// Set updates one setting from its textual form.
func (s *SettingsService) Set(key, value string) error {
	st, ok := lookupSetting(key)
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}
	if err := parseInto(st.ptr(settings), strings.TrimSpace(value)); err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, key, err)
	}
	if key == "llm.provider" {
		settings.LLM.Model = domain.DefaultLLMModels()[settings.LLM.Provider]
	}

	return s.Save(settings)
}

// Keys returns every supported setting key, sorted.
func (s *SettingsService) Keys() []string {
	keys := make([]string, 0, len(settingsTable))
	for _, st := range settingsTable {
		keys = append(keys, st.key)
	}
	sort.Strings(keys)
	return keys
}

// Value returns the textual form of one setting.
func (s *SettingsService) Value(settings *domain.AppSettings, key string) (string, bool) {
	st, ok := lookupSetting(key)
	if !ok {
		return "", false
	}
	return fmt.Sprint(stored(st.ptr(settings))), true
}

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: invalid LLM provider: %s", domain.ErrInvalidInput, provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("%w: API key required for %s", domain.ErrInvalidInput, provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.LLM.Provider = provider
	settings.LLM.Model = model
	if model == "" {
		settings.LLM.Model = domain.DefaultLLMModels()[provider]
	}

	if provider.IsLocal() {
		if settings.LLM.BaseURL == "" {
			settings.LLM.BaseURL = DefaultOllamaURL
		}
	} else {
		settings.LLM.BaseURL = ""
	}
	settings.LLM.APIKey = apiKey

	return s.Save(settings)
}

// Validate checks the current settings.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.check(settings)
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

func (s *SettingsService) check(settings *domain.AppSettings) error {
	if !settings.LLM.Provider.IsValid() {
		return fmt.Errorf("%w: llm.provider: unknown provider %q", domain.ErrInvalidInput, settings.LLM.Provider)
	}

	err := s.validate.Struct(settings)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s must satisfy %s=%s", keyForField(fe.StructNamespace()), fe.Tag(), fe.Param()))
	}
	return fmt.Errorf("%w: %s", domain.ErrInvalidInput, strings.Join(msgs, "; "))
}

func (s *SettingsService) load(st setting, settings *domain.AppSettings) {
	if _, ok := s.configStore.Get(st.key); !ok {
		return
	}
	switch p := st.ptr(settings).(type) {
	case *string:
		*p = s.configStore.GetString(st.key)
	case *int:
		if v := s.configStore.GetInt(st.key); v > 0 {
			*p = v
		}
	case *float64:
		if v := s.configStore.GetFloat(st.key); v > 0 {
			*p = v
		}
	case *bool:
		*p = s.configStore.GetBool(st.key)
	case *time.Duration:
		if v := s.configStore.GetInt(st.key); v > 0 {
			*p = time.Duration(v) * time.Second
		}
	case *domain.AIProvider:
		if v := domain.AIProvider(s.configStore.GetString(st.key)); v.IsValid() {
			*p = v
		}
	case *domain.BackendPreference:
		if v := domain.BackendPreference(s.configStore.GetString(st.key)); v.IsValid() {
			*p = v
		}
	}
}

// stored converts a settings field to the value kept in the config store.
func stored(ptr any) any {
	switch p := ptr.(type) {
	case *string:
		return *p
	case *int:
		return *p
	case *float64:
		return *p
	case *bool:
		return *p
	case *time.Duration:
		return int(p.Seconds())
	case *domain.AIProvider:
		return p.String()
	case *domain.BackendPreference:
		return p.String()
	default:
		return nil
	}
}

func parseInto(ptr any, value string) error {
	switch p := ptr.(type) {
	case *string:
		*p = value
	case *int:
		v, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		*p = v
	case *float64:
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		*p = v
	case *bool:
		v, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		*p = v
	case *time.Duration:
		v, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		*p = time.Duration(v) * time.Second
	case *domain.AIProvider:
		v := domain.AIProvider(value)
		if !v.IsValid() {
			return fmt.Errorf("unknown provider %q", value)
		}
		*p = v
	case *domain.BackendPreference:
		v := domain.BackendPreference(value)
		if !v.IsValid() {
			return fmt.Errorf("unknown backend %q", value)
		}
		*p = v
	default:
		return fmt.Errorf("unsupported setting type %T", ptr)
	}
	return nil
}

func lookupSetting(key string) (setting, bool) {
	for _, st := range settingsTable {
		if st.key == key {
			return st, true
		}
	}
	return setting{}, false
}

func keyForField(namespace string) string {
	field := strings.TrimPrefix(namespace, "AppSettings.")
	for _, st := range settingsTable {
		if st.field == field {
			return st.key
		}
	}
	return field
}
