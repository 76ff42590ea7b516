// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Comprehension Backends
//
// Exactly one backend serves all four capabilities, selected once at start:
//
//   - Summariser: Produces a length-bounded summary of one chunk
//   - AnswerBackend: Answers a question from document text
//   - QuestionGenerator: Writes comprehension questions from excerpts
//   - AnswerGrader: Judges a user answer against reference context
//
// The LLM-backed implementations sit on LLMService. The local extractive
// implementations need nothing but the document text.
//
// # Supporting Interfaces
//
//   - Normaliser, NormaliserRegistry: Extract text from an uploaded file
//   - PostProcessor, PostProcessorPipeline: Chunk normalised text
//   - ConfigStore, PromptStore: Settings and prompt templates
//   - BackendObserver: Optional call metrics. May be nil.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or normaliser package
package driven
