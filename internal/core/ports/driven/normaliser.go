package driven

import (
	"context"

	"github.com/custodia-labs/grasp/internal/core/domain"
)

// Normaliser extracts text from one kind of uploaded file.
type Normaliser interface {
	// SupportedExtensions returns the file extensions handled, with the dot.
	SupportedExtensions() []string

	// SupportedMIMETypes returns the content types accepted after sniffing.
	SupportedMIMETypes() []string

	// Priority returns the selection priority (higher = preferred).
	Priority() int

	// Normalise turns the raw file into a document with Content populated.
	Normalise(ctx context.Context, raw *domain.RawDocument) (*NormaliseResult, error)
}

// NormaliseResult contains the output of extraction.
// Content is the extractor's text; the core normalises it afterwards.
type NormaliseResult struct {
	Document domain.Document
}
