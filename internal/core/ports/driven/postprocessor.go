package driven

import (
	"context"

	"github.com/custodia-labs/grasp/internal/core/domain"
)

// PostProcessor turns a normalised document into summary chunks, or
// refines the chunks an earlier stage produced. The chunker always runs
// first and is handed nil.
type PostProcessor interface {
	// Name is the key used in the pipeline configuration.
	Name() string

	// Process returns the chunks after this stage.
	Process(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) ([]domain.Chunk, error)
}

// PostProcessorPipeline runs the configured stages in order.
type PostProcessorPipeline interface {
	// Process chunks doc. The chunks partition the document's words.
	Process(ctx context.Context, doc *domain.Document) ([]domain.Chunk, error)
}
