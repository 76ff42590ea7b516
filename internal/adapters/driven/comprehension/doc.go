// Package comprehension adapts an LLMService to the answering, question
// generation and grading ports. Summaries need no adapter: every
// LLMService is already a driven.Summariser.
package comprehension
