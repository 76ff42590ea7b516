package services

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/grasp/internal/core/domain"
	"github.com/custodia-labs/grasp/internal/core/ports/driven"
	"github.com/custodia-labs/grasp/internal/core/ports/driving"
	"github.com/custodia-labs/grasp/internal/core/text"
	"github.com/custodia-labs/grasp/internal/logger"
)

// Ensure SummaryService implements the interface.
var _ driving.SummaryService = (*SummaryService)(nil)

// SummaryService condenses documents of any length into a bounded summary.
type SummaryService struct {
	pipeline driven.PostProcessorPipeline
	backend  driven.Summariser
	settings domain.SummarySettings
	call     caller
}

// NewSummaryService creates a summary service.
// The pipeline must start with the chunker.
func NewSummaryService(
	pipeline driven.PostProcessorPipeline,
	backend driven.Summariser,
	settings domain.SummarySettings,
	backendSettings domain.BackendSettings,
	backendName string,
	observer driven.BackendObserver,
) *SummaryService {
	if settings.Concurrency < 1 {
		settings.Concurrency = 1
	}
	if settings.MaxPasses < 1 {
		settings.MaxPasses = 1
	}
	return &SummaryService{
		pipeline: pipeline,
		backend:  backend,
		settings: settings,
		call:     newCaller(backendSettings.Timeout, backendName, observer),
	}
}

// Summarise condenses text to at most maxWords words.
//
// Text up to the chunk trigger is summarised in a single call and returned
// as the backend produced it. Longer text is summarised chunk by chunk; the
// chunk summaries are joined in order and compressed again while they exceed
// maxWords. If the backend still overshoots after the last pass, the result
// is cut back at a sentence boundary.
func (s *SummaryService) Summarise(ctx context.Context, content string, maxWords int) (*domain.Summary, error) {
	logger.Section("Summarise")

	if maxWords <= 0 {
		maxWords = s.settings.MaxWords
	}
	if strings.TrimSpace(content) == "" {
		return nil, domain.ErrEmptyDocument
	}

	chunks, err := s.chunk(ctx, content)
	if err != nil {
		return nil, err
	}
	logger.Debug("Words: %d, chunks: %d, bound: %d", text.WordCount(content), len(chunks), maxWords)

	parts, err := s.summariseChunks(ctx, chunks, s.settings.CallMaxWords, s.settings.CallMinWords)
	if err != nil {
		return nil, err
	}

	if len(chunks) == 1 {
		return &domain.Summary{Text: parts[0], MaxWords: maxWords, ChunkCount: 1}, nil
	}

	joined := strings.Join(parts, " ")
	passes := 0
	for text.WordCount(joined) > maxWords && passes < s.settings.MaxPasses {
		passes++
		logger.Debug("Recombination pass %d: %d words", passes, text.WordCount(joined))
		joined, err = s.recombine(ctx, joined, maxWords)
		if err != nil {
			return nil, err
		}
	}

	if text.WordCount(joined) > maxWords {
		logger.Debug("Trimming %d words to %d", text.WordCount(joined), maxWords)
		joined = text.TrimToSentence(joined, maxWords)
	}

	return &domain.Summary{
		Text:       joined,
		MaxWords:   maxWords,
		ChunkCount: len(chunks),
		Passes:     passes,
	}, nil
}

// recombine compresses joined chunk summaries once. Text still too long
// for one call is chunked and summarised again.
func (s *SummaryService) recombine(ctx context.Context, joined string, maxWords int) (string, error) {
	chunks, err := s.chunk(ctx, joined)
	if err != nil {
		return "", err
	}
	if len(chunks) == 1 {
		parts, err := s.summariseChunks(ctx, chunks, maxWords, min(s.settings.CallMinWords, maxWords))
		if err != nil {
			return "", err
		}
		return parts[0], nil
	}
	parts, err := s.summariseChunks(ctx, chunks, s.settings.CallMaxWords, s.settings.CallMinWords)
	if err != nil {
		return "", err
	}
	return strings.Join(parts, " "), nil
}

func (s *SummaryService) chunk(ctx context.Context, content string) ([]domain.Chunk, error) {
	chunks, err := s.pipeline.Process(ctx, &domain.Document{Content: content})
	if err != nil {
		return nil, fmt.Errorf("chunk document: %w", err)
	}
	if len(chunks) == 0 {
		return nil, domain.ErrEmptyDocument
	}
	return chunks, nil
}

// summariseChunks summarises every chunk, keeping results in chunk order.
// Any failure cancels the remaining calls and fails the whole operation.
func (s *SummaryService) summariseChunks(ctx context.Context, chunks []domain.Chunk, maxWords, minWords int) ([]string, error) {
	results := make([]string, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.settings.Concurrency)
	for i, c := range chunks {
		g.Go(func() error {
			var out string
			err := s.call.run(gctx, opSummarise, func(ctx context.Context) error {
				var err error
				out, err = s.backend.Summarise(ctx, c.Content, maxWords, minWords)
				return err
			})
			if err != nil {
				return fmt.Errorf("chunk %d: %w", c.Position, err)
			}
			out = strings.TrimSpace(out)
			if out == "" {
				return fmt.Errorf("chunk %d: %w: empty summary", c.Position, domain.ErrBackend)
			}
			results[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}
