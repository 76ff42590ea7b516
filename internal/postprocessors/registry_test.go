package postprocessors

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/grasp/internal/core/domain"
	"github.com/custodia-labs/grasp/internal/core/ports/driven"
)

func TestRegistry_RegisterAndBuild(t *testing.T) {
	r := NewRegistry()
	assert.False(t, r.Has("stub"))

	r.Register("stub", func(cfg map[string]any) (driven.PostProcessor, error) {
		name, _ := cfg["name"].(string)
		return &stubProcessor{name: name}, nil
	})

	assert.True(t, r.Has("stub"))
	assert.Equal(t, []string{"stub"}, r.Names())

	proc, err := r.Build("stub", map[string]any{"name": "custom"})
	require.NoError(t, err)
	assert.Equal(t, "custom", proc.Name())

	_, err = r.Build("unknown", nil)
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
	assert.Contains(t, err.Error(), "have stub")
}

func TestRegisterDefaults(t *testing.T) {
	r := NewRegistry()
	RegisterDefaults(r)

	assert.True(t, r.Has("chunker"))

	proc, err := r.Build("chunker", nil)
	require.NoError(t, err)
	assert.Equal(t, "chunker", proc.Name())
}

func TestBuildPipeline_ChunkerFromSettings(t *testing.T) {
	r := NewRegistry()
	RegisterDefaults(r)

	cfg := domain.PipelineConfigFor(domain.SummarySettings{ChunkWords: 2, TriggerWords: 3})
	p, err := BuildPipeline(r, cfg)
	require.NoError(t, err)
	require.Equal(t, 1, p.Len())

	chunks, err := p.Process(context.Background(), &domain.Document{Content: "a b c d e"})
	require.NoError(t, err)
	require.Len(t, chunks, 3)
	assert.Equal(t, "a b", chunks[0].Content)
	assert.Equal(t, "e", chunks[2].Content)
}

func TestBuildPipeline_UnknownProcessor(t *testing.T) {
	_, err := BuildPipeline(NewRegistry(), domain.PipelineConfig{Processors: []string{"stemmer"}})
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}

func TestBuildPipeline_Defaults(t *testing.T) {
	r := NewRegistry()
	RegisterDefaults(r)

	p, err := BuildPipeline(r, domain.PipelineConfigFor(domain.DefaultAppSettings().Summary))
	require.NoError(t, err)

	parts := make([]string, 1500)
	for i := range parts {
		parts[i] = fmt.Sprintf("w%d", i)
	}
	chunks, err := p.Process(context.Background(), &domain.Document{Content: strings.Join(parts, " ")})
	require.NoError(t, err)
	assert.Len(t, chunks, 2)
}

func TestGetIntFromConfig(t *testing.T) {
	tests := []struct {
		name     string
		cfg      map[string]any
		expected int
	}{
		{"int value", map[string]any{"n": 100}, 100},
		{"int64 value", map[string]any{"n": int64(200)}, 200},
		{"float64 value", map[string]any{"n": float64(300)}, 300},
		{"string value", map[string]any{"n": "400"}, 0},
		{"missing key", map[string]any{"other": 100}, 0},
		{"nil config", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, getIntFromConfig(tt.cfg, "n"))
		})
	}
}
