package summary

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/grasp/internal/adapters/driving/tui/tuitest"
	"github.com/custodia-labs/grasp/internal/core/domain"
)

func TestView_RendersSummary(t *testing.T) {
	v := NewView(nil, tuitest.NewSession())
	v.SetDimensions(80, 20)

	out := v.View()

	assert.Contains(t, out, "Summary")
	assert.Contains(t, out, "A river flows south and waters farms.")
	assert.Contains(t, out, "7 words, bound 150")
	assert.NotContains(t, out, "chunks")
}

func TestView_MultiChunkDetail(t *testing.T) {
	session := tuitest.NewSession()
	session.Sum = &domain.Summary{Text: "Short.", MaxWords: 50, ChunkCount: 4, Passes: 2}
	v := NewView(nil, session)
	v.SetDimensions(80, 20)

	assert.Contains(t, v.View(), "4 chunks, 2 recombination passes")
}

func TestView_NoDocument(t *testing.T) {
	session := tuitest.NewSession()
	session.Sum = nil
	v := NewView(nil, session)

	assert.Contains(t, v.View(), "No document loaded.")
}

func TestView_Refresh(t *testing.T) {
	session := tuitest.NewSession()
	v := NewView(nil, session)
	v.SetDimensions(80, 20)

	session.Sum = &domain.Summary{Text: "Replaced summary.", MaxWords: 10, ChunkCount: 1}
	v.Refresh()

	assert.Contains(t, v.View(), "Replaced summary.")
}

func TestView_InitAndUpdate(t *testing.T) {
	v := NewView(nil, tuitest.NewSession())

	assert.Nil(t, v.Init())
	got, _ := v.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, v, got)
}
