package keymap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultKeyMap(t *testing.T) {
	km := DefaultKeyMap()
	require.NotNil(t, km)

	tests := []struct {
		name    string
		keyStr  string
		binding func(*KeyMap) bool
	}{
		{"ctrl+c quits", "ctrl+c", func(k *KeyMap) bool { return Matches("ctrl+c", k.Quit) }},
		{"tab switches", "tab", func(k *KeyMap) bool { return Matches("tab", k.NextTab) }},
		{"shift+tab switches back", "shift+tab", func(k *KeyMap) bool { return Matches("shift+tab", k.PrevTab) }},
		{"enter submits", "enter", func(k *KeyMap) bool { return Matches("enter", k.Submit) }},
		{"ctrl+r resets", "ctrl+r", func(k *KeyMap) bool { return Matches("ctrl+r", k.Reset) }},
		{"ctrl+n regenerates", "ctrl+n", func(k *KeyMap) bool { return Matches("ctrl+n", k.NewQuestions) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.binding(km))
		})
	}
}

func TestMatches_NoMatch(t *testing.T) {
	km := DefaultKeyMap()
	assert.False(t, Matches("q", km.Quit))
	assert.False(t, Matches("x", km.Submit))
}

func TestHelpSets(t *testing.T) {
	km := DefaultKeyMap()

	assert.Len(t, km.ShortHelp(), 3)
	assert.Contains(t, km.ChallengeHelp(), km.Reset)
	assert.Contains(t, km.AskHelp(), km.ClearHistory)

	full := km.FullHelp()
	require.Len(t, full, 3)
	for _, col := range full {
		assert.NotEmpty(t, col)
	}
}
