package driven

import (
	"context"

	"github.com/custodia-labs/grasp/internal/core/domain"
)

// NormaliserRegistry selects the normaliser for an uploaded file.
type NormaliserRegistry interface {
	// Normalise extracts text using the best matching normaliser.
	// Returns domain.ErrUnsupportedFormat for unknown extensions.
	Normalise(ctx context.Context, raw *domain.RawDocument) (*NormaliseResult, error)

	// Register adds a normaliser to the registry.
	Register(normaliser Normaliser)

	// SupportedExtensions returns every extension that can be loaded.
	SupportedExtensions() []string
}
