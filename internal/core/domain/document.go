package domain

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/custodia-labs/grasp/internal/core/text"
)

// FallbackContextChars is the length of the document prefix used as
// reference context when nothing more specific is known.
const FallbackContextChars = 1000

// Document represents a loaded document after extraction and normalisation.
// It is immutable once produced; loading a new file replaces it.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// URI is the original location (file path, upload name).
	URI string

	// Title is the human-readable title, usually the file name.
	Title string

	// Content is the full normalised text.
	Content string

	// Metadata contains extractor-specific key-value pairs.
	Metadata map[string]any

	// CreatedAt is when the document was loaded.
	CreatedAt time.Time
}

// WordCount returns the number of whitespace-separated words in Content.
func (d *Document) WordCount() int {
	return len(strings.Fields(d.Content))
}

// CharCount returns the number of characters (runes) in Content.
func (d *Document) CharCount() int {
	return utf8.RuneCountInString(d.Content)
}

// Excerpt returns the first n characters of Content.
func (d *Document) Excerpt(n int) string {
	return text.Prefix(d.Content, n)
}

// Chunk represents a contiguous window of a document's words.
// The chunks of a document partition its word sequence exactly.
type Chunk struct {
	// Position is the ordinal position within the document.
	Position int

	// StartWord is the index of the first word of this chunk.
	StartWord int

	// Words are the words of this chunk, in order.
	Words []string

	// Content is Words joined by single spaces.
	Content string
}

// WordCount returns the number of words in the chunk.
func (c Chunk) WordCount() int {
	return len(c.Words)
}

// Summary is a length-bounded digest of a document.
type Summary struct {
	// Text is the summary itself.
	Text string `json:"text"`

	// MaxWords is the bound requested by the caller.
	MaxWords int `json:"max_words"`

	// ChunkCount is how many chunks the document was split into.
	ChunkCount int `json:"chunk_count"`

	// Passes is how many recombination passes were needed (0 for one chunk).
	Passes int `json:"passes"`
}

// WordCount returns the number of words in the summary.
func (s *Summary) WordCount() int {
	return len(strings.Fields(s.Text))
}

// WithinBound reports whether the summary honours its word bound.
// Single-chunk summaries are returned verbatim from the backend and are exempt.
func (s *Summary) WithinBound() bool {
	return s.ChunkCount <= 1 || s.WordCount() <= s.MaxWords
}
