package domain

import "fmt"

// BackendKind identifies the inference backend in use.
type BackendKind string

// Backend kinds.
const (
	BackendLLM   BackendKind = "llm"
	BackendLocal BackendKind = "local"
)

// BackendSelection is the outcome of the startup backend probe.
// It is computed once and passed to every component that needs it.
type BackendSelection struct {
	// Kind is the backend that will serve every capability.
	Kind BackendKind

	// Provider and Model describe the LLM when Kind is BackendLLM.
	Provider AIProvider
	Model    string

	// Reason explains a fallback to the local engine. Empty otherwise.
	Reason string
}

// Strategy returns the answer strategy implied by the backend.
func (b BackendSelection) Strategy() AnswerStrategy {
	if b.Kind == BackendLLM {
		return StrategyNarrative
	}
	return StrategyExtractive
}

// Status is the one-line indicator shown to the user at startup.
func (b BackendSelection) Status() string {
	if b.Kind == BackendLLM {
		return fmt.Sprintf("Using %s (%s)", b.Provider, b.Model)
	}
	if b.Reason != "" {
		return fmt.Sprintf("Using local extractive engine (%s)", b.Reason)
	}
	return "Using local extractive engine"
}
