// Package chunker provides a word-window chunking processor.
package chunker

import (
	"context"
	"strings"

	"github.com/custodia-labs/grasp/internal/core/domain"
)

// DefaultChunkWords is the default number of words per chunk.
const DefaultChunkWords = domain.DefaultChunkWords

// DefaultTriggerWords is the word count above which text is split at all.
const DefaultTriggerWords = domain.DefaultTriggerWords

// Processor splits document content into consecutive word windows.
// It implements the PostProcessor interface.
type Processor struct {
	chunkWords   int
	triggerWords int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkWords sets the word budget of each chunk.
func WithChunkWords(n int) Option {
	return func(p *Processor) {
		if n > 0 {
			p.chunkWords = n
		}
	}
}

// WithTriggerWords sets the word count at or below which text stays whole.
func WithTriggerWords(n int) Option {
	return func(p *Processor) {
		if n > 0 {
			p.triggerWords = n
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkWords:   DefaultChunkWords,
		triggerWords: DefaultTriggerWords,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// Process splits the document content into chunks.
// Input chunks are ignored; this processor creates new chunks from document content.
func (p *Processor) Process(_ context.Context, doc *domain.Document, _ []domain.Chunk) ([]domain.Chunk, error) {
	return p.Split(doc.Content), nil
}

// Split returns the chunks of text. Text of at most triggerWords words is a
// single chunk whose Content is text itself; longer text is cut into windows
// of chunkWords words, the last one possibly shorter. Empty text has no chunks.
func (p *Processor) Split(text string) []domain.Chunk {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	if len(words) <= p.triggerWords {
		return []domain.Chunk{{
			Position:  0,
			StartWord: 0,
			Words:     words,
			Content:   text,
		}}
	}

	chunks := make([]domain.Chunk, 0, len(words)/p.chunkWords+1)
	for start, position := 0, 0; start < len(words); start, position = start+p.chunkWords, position+1 {
		end := start + p.chunkWords
		if end > len(words) {
			end = len(words)
		}
		window := words[start:end]
		chunks = append(chunks, domain.Chunk{
			Position:  position,
			StartWord: start,
			Words:     window,
			Content:   strings.Join(window, " "),
		})
	}

	return chunks
}
