// Package local is the extractive engine used when no language model is
// available. It serves all four comprehension capabilities from the document
// text alone: sentence-ranking summaries, bleve-ranked passage answers,
// fill-in-the-blank questions and lexical grading.
package local
