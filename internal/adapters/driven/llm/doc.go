// Package llm holds what the provider adapters share: an HTTP client with
// rate limiting and retries, and prompt rendering for summaries.
//
// Provider adapters live in the ollama, openai and anthropic sub-packages.
package llm
