package comprehension

import (
	"github.com/custodia-labs/grasp/internal/core/domain"
	"github.com/custodia-labs/grasp/internal/core/ports/driven"
)

// config is shared by every adapter in the package.
type config struct {
	prompts      driven.PromptStore
	contextWords int
	passageWords int
}

func defaultConfig() config {
	return config{
		contextWords: domain.DefaultContextWords,
		passageWords: domain.DefaultPassageWords,
	}
}

// Option configures an adapter.
type Option func(*config)

// WithPromptStore loads prompt templates from store instead of the defaults.
func WithPromptStore(store driven.PromptStore) Option {
	return func(c *config) {
		c.prompts = store
	}
}

// WithContextWords bounds the document text sent with a question.
func WithContextWords(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.contextWords = n
		}
	}
}

// WithPassageWords sets the passage size used to reduce long documents.
func WithPassageWords(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.passageWords = n
		}
	}
}

func newConfig(opts []Option) config {
	c := defaultConfig()
	for _, opt := range opts {
		opt(&c)
	}
	return c
}
