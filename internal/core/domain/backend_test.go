package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBackendSelection_Status(t *testing.T) {
	llm := BackendSelection{Kind: BackendLLM, Provider: AIProviderOllama, Model: "llama3:instruct"}
	assert.Equal(t, "Using ollama (llama3:instruct)", llm.Status())
	assert.Equal(t, StrategyNarrative, llm.Strategy())

	local := BackendSelection{Kind: BackendLocal}
	assert.Equal(t, "Using local extractive engine", local.Status())
	assert.Equal(t, StrategyExtractive, local.Strategy())

	fallback := BackendSelection{Kind: BackendLocal, Reason: "LLM unreachable"}
	assert.Equal(t, "Using local extractive engine (LLM unreachable)", fallback.Status())
}
