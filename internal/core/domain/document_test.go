package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestDocument_Counts tests word and character counts
func TestDocument_Counts(t *testing.T) {
	doc := Document{Content: "The cat sat on the mat."}

	assert.Equal(t, 6, doc.WordCount())
	assert.Equal(t, 23, doc.CharCount())
}

// TestDocument_CharCountRunes tests that characters are counted as runes
func TestDocument_CharCountRunes(t *testing.T) {
	doc := Document{Content: "café über"}

	assert.Equal(t, 9, doc.CharCount())
}

// TestDocument_Excerpt tests the prefix helper
func TestDocument_Excerpt(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		n        int
		expected string
	}{
		{"shorter than n", "short", 1000, "short"},
		{"exact", "abcde", 5, "abcde"},
		{"cut", "abcdefgh", 3, "abc"},
		{"zero", "abc", 0, ""},
		{"multibyte", "ééééé", 2, "éé"},
		{"negative", "abc", -1, ""},
		{"emoji", "a🙂b", 2, "a🙂"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := Document{Content: tt.content}
			assert.Equal(t, tt.expected, doc.Excerpt(tt.n))
		})
	}
}

// TestDocument_FallbackExcerpt tests the 1000 character fallback length
func TestDocument_FallbackExcerpt(t *testing.T) {
	doc := Document{Content: strings.Repeat("a", 2500)}

	assert.Len(t, doc.Excerpt(FallbackContextChars), 1000)
}

// TestSummary_WithinBound tests the multi-chunk word bound
func TestSummary_WithinBound(t *testing.T) {
	long := strings.Repeat("word ", 20)

	single := Summary{Text: long, MaxWords: 5, ChunkCount: 1}
	assert.True(t, single.WithinBound())

	multi := Summary{Text: long, MaxWords: 5, ChunkCount: 2}
	assert.False(t, multi.WithinBound())

	fits := Summary{Text: "one two three", MaxWords: 5, ChunkCount: 3}
	assert.True(t, fits.WithinBound())
	assert.Equal(t, 3, fits.WordCount())
}

// TestRawDocument_Extension tests extension detection
func TestRawDocument_Extension(t *testing.T) {
	assert.Equal(t, ".pdf", (&RawDocument{Name: "Report.PDF"}).Extension())
	assert.Equal(t, ".txt", (&RawDocument{Name: "/tmp/notes.txt"}).Extension())
	assert.Equal(t, "", (&RawDocument{Name: "README"}).Extension())

	assert.True(t, IsSupportedExtension(".PDF"))
	assert.True(t, IsSupportedExtension(".txt"))
	assert.False(t, IsSupportedExtension(".docx"))
}
