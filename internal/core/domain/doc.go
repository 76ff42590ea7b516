// Package domain defines the core business entities for Grasp.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: A loaded, normalised document
//   - Chunk: A contiguous word window of a document
//   - Summary: A length-bounded digest of a document
//   - AnswerResult: The outcome of asking a question
//   - QuestionSet: A generated challenge with the user's answers
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
