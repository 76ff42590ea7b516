package services

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/grasp/internal/core/domain"
)

func TestSummaryService_SingleChunkReturnedVerbatim(t *testing.T) {
	backend := &mockSummariser{fn: func(_ context.Context, _ string, _, _ int) (string, error) {
		return strings.Repeat("long ", 300), nil
	}}
	svc := newTestSummaryService(backend, domain.DefaultAppSettings().Summary, nil)

	summary, err := svc.Summarise(context.Background(), wordsText(1024), 150)

	require.NoError(t, err)
	assert.Equal(t, 1, summary.ChunkCount)
	assert.Equal(t, 0, summary.Passes)
	assert.Equal(t, 300, summary.WordCount(), "single chunk output is not trimmed")
	assert.True(t, summary.WithinBound())
	require.Equal(t, 1, backend.callCount())
	assert.Equal(t, 150, backend.calls[0].maxWords)
	assert.Equal(t, 30, backend.calls[0].minWords)
}

func TestSummaryService_MultiChunkRespectsBound(t *testing.T) {
	backend := &mockSummariser{}
	svc := newTestSummaryService(backend, domain.DefaultAppSettings().Summary, nil)

	summary, err := svc.Summarise(context.Background(), wordsText(2000), 150)

	require.NoError(t, err)
	assert.Equal(t, 3, summary.ChunkCount)
	assert.LessOrEqual(t, summary.WordCount(), 150)
	assert.Equal(t, 1, summary.Passes)
	// three chunk calls plus one recombination call
	assert.Equal(t, 4, backend.callCount())
	assert.Equal(t, 150, backend.calls[3].maxWords)
}

func TestSummaryService_MultiChunkKeepsOrder(t *testing.T) {
	backend := &mockSummariser{fn: func(_ context.Context, text string, _, _ int) (string, error) {
		return strings.Fields(text)[0] + ".", nil
	}}
	settings := domain.DefaultAppSettings().Summary
	settings.Concurrency = 4
	svc := newTestSummaryService(backend, settings, nil)

	summary, err := svc.Summarise(context.Background(), wordsText(2500), 150)

	require.NoError(t, err)
	assert.Equal(t, "w0. w800. w1600. w2400.", summary.Text)
	assert.Equal(t, 0, summary.Passes)
}

func TestSummaryService_TrimsWhenBackendOvershoots(t *testing.T) {
	backend := &mockSummariser{fn: func(_ context.Context, _ string, _, _ int) (string, error) {
		return strings.Repeat("Ten words in this sentence make it quite long indeed. ", 10), nil
	}}
	settings := domain.DefaultAppSettings().Summary
	settings.MaxPasses = 2
	svc := newTestSummaryService(backend, settings, nil)

	summary, err := svc.Summarise(context.Background(), wordsText(1700), 25)

	require.NoError(t, err)
	assert.Equal(t, 3, summary.ChunkCount)
	assert.Equal(t, 2, summary.Passes)
	assert.Equal(t, 20, summary.WordCount())
	assert.True(t, strings.HasSuffix(summary.Text, "indeed."))
	assert.True(t, summary.WithinBound())
}

func TestSummaryService_RecombinationRechunksLongText(t *testing.T) {
	// chunk calls halve their input; the final single-call pass collapses it
	backend := &mockSummariser{fn: func(_ context.Context, text string, maxWords, _ int) (string, error) {
		if maxWords < 50 {
			return "short.", nil
		}
		words := strings.Fields(text)
		return strings.Join(words[:len(words)/2], " "), nil
	}}
	settings := domain.SummarySettings{
		MaxWords: 10, ChunkWords: 100, TriggerWords: 120,
		CallMaxWords: 100, CallMinWords: 5, MaxPasses: 3, Concurrency: 2,
	}
	svc := newTestSummaryService(backend, settings, nil)

	summary, err := svc.Summarise(context.Background(), wordsText(350), 10)

	require.NoError(t, err)
	assert.Equal(t, "short.", summary.Text)
	assert.Equal(t, 4, summary.ChunkCount)
	assert.Equal(t, 2, summary.Passes)
}

func TestSummaryService_BackendFailureIsAtomic(t *testing.T) {
	var n atomic.Int32
	backend := &mockSummariser{fn: func(_ context.Context, text string, _, _ int) (string, error) {
		if n.Add(1) == 2 {
			return "", errors.New("connection refused")
		}
		return "ok.", nil
	}}
	observer := &mockObserver{}
	svc := newTestSummaryService(backend, domain.DefaultAppSettings().Summary, observer)

	summary, err := svc.Summarise(context.Background(), wordsText(2000), 150)

	assert.Nil(t, summary)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBackend))
	assert.Equal(t, domain.KindBackend, domain.KindOf(err))
	assert.NotEmpty(t, observer.calls)
}

func TestSummaryService_EmptyReplyIsBackendError(t *testing.T) {
	backend := &mockSummariser{fn: func(_ context.Context, _ string, _, _ int) (string, error) {
		return "   ", nil
	}}
	svc := newTestSummaryService(backend, domain.DefaultAppSettings().Summary, nil)

	_, err := svc.Summarise(context.Background(), "some text here", 150)

	assert.True(t, errors.Is(err, domain.ErrBackend))
}

func TestSummaryService_Timeout(t *testing.T) {
	backend := &mockSummariser{fn: func(ctx context.Context, _ string, _, _ int) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}}
	svc := newTestSummaryService(backend, domain.DefaultAppSettings().Summary, nil)
	svc.call = newCaller(20*time.Millisecond, "test", nil)

	_, err := svc.Summarise(context.Background(), "text to summarise", 150)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBackendTimeout))
	assert.True(t, errors.Is(err, domain.ErrBackend))
}

func TestSummaryService_EmptyText(t *testing.T) {
	svc := newTestSummaryService(&mockSummariser{}, domain.DefaultAppSettings().Summary, nil)

	_, err := svc.Summarise(context.Background(), "  ", 150)

	assert.True(t, errors.Is(err, domain.ErrEmptyDocument))
}

func TestSummaryService_DefaultBound(t *testing.T) {
	svc := newTestSummaryService(&mockSummariser{}, domain.DefaultAppSettings().Summary, nil)

	summary, err := svc.Summarise(context.Background(), wordsText(3000), 0)

	require.NoError(t, err)
	assert.Equal(t, 150, summary.MaxWords)
	assert.LessOrEqual(t, summary.WordCount(), 150)
}
